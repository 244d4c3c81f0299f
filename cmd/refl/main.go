// refl CLI - inspect Go type layouts, generate registration code and manage
// descriptor snapshots
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/udrefl/manifest"
)

// options are the global flags shared by every subcommand.
type options struct {
	arch     string
	manifest *manifest.Manifest
}

func main() {
	verbosity := flag.Int("v", -1, "Log verbosity (overrides refl.toml)")
	arch := flag.String("arch", "", "GOARCH to compute layouts for (overrides refl.toml)")
	dir := flag.String("C", ".", "Directory to search for refl.toml")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: refl [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  layout [packages...]            Print size, alignment and field offsets\n")
		fmt.Fprintf(os.Stderr, "  gen [-o dir] [packages...]      Write registration code\n")
		fmt.Fprintf(os.Stderr, "  snapshot [-o file] [-put] [packages...]\n")
		fmt.Fprintf(os.Stderr, "                                  Write a CBOR descriptor snapshot\n")
		fmt.Fprintf(os.Stderr, "  catalog put|list|show|delete    Manage the snapshot catalog\n")
		fmt.Fprintf(os.Stderr, "  demo                            Register, construct and inspect a sample type\n")
		fmt.Fprintf(os.Stderr, "\nPackages default to [wrap].packages in refl.toml.\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  refl layout image               # Layout of image's exported types\n")
		fmt.Fprintf(os.Stderr, "  refl -arch 386 layout image     # Same, as laid out on 386\n")
		fmt.Fprintf(os.Stderr, "  refl gen -o ./reflgen image     # Write ./reflgen/imagerefl/refl_image.go\n")
		fmt.Fprintf(os.Stderr, "  refl snapshot -put image        # Snapshot and store in the catalog\n")
		fmt.Fprintf(os.Stderr, "  refl catalog list               # List stored snapshots\n")
	}
	flag.Parse()

	m, err := manifest.FindAndLoad(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if m == nil {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m = manifest.Default(wd)
	}

	level := m.Log.Verbosity
	if *verbosity >= 0 {
		level = *verbosity
	}
	commonlog.Configure(level, m.LogPath())

	opts := &options{arch: m.Wrap.Arch, manifest: m}
	if *arch != "" {
		opts.arch = *arch
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	switch args[0] {
	case "layout":
		err = handleLayoutCommand(args[1:], opts)
	case "gen":
		err = handleGenCommand(args[1:], opts)
	case "snapshot":
		err = handleSnapshotCommand(args[1:], opts)
	case "catalog":
		err = handleCatalogCommand(args[1:], opts)
	case "demo":
		err = handleDemoCommand(opts)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// packagesOrManifest returns the packages named on the command line, or the
// configured ones.
func packagesOrManifest(args []string, m *manifest.Manifest) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(m.Wrap.Packages) == 0 {
		return nil, fmt.Errorf("no packages specified and no [wrap].packages in %s", manifest.FileName)
	}
	return m.Wrap.Packages, nil
}
