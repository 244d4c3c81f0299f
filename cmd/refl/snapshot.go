package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/udrefl/catalog"
	"github.com/chazu/udrefl/gowrap"
	"github.com/chazu/udrefl/snapshot"
)

// handleSnapshotCommand processes the `refl snapshot` subcommand.
// Usage:
//
//	refl snapshot image               # write types.cbor
//	refl snapshot -o out.cbor image   # custom output file
//	refl snapshot -put image          # also store in the catalog
func handleSnapshotCommand(args []string, opts *options) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	output := fs.String("o", opts.manifest.SnapshotPath(), "Output file")
	put := fs.Bool("put", false, "Store the snapshot in the catalog")
	fs.Parse(args)

	pkgs, err := packagesOrManifest(fs.Args(), opts.manifest)
	if err != nil {
		return err
	}

	var snaps []*snapshot.Snapshot
	for _, pkg := range pkgs {
		model, err := gowrap.IntrospectPackage(pkg, gowrap.Options{Arch: opts.arch})
		if err != nil {
			return fmt.Errorf("introspecting %s: %w", pkg, err)
		}
		snaps = append(snaps, snapshot.FromModel(model))
	}
	s := snaps[0]
	if len(snaps) > 1 {
		s = snapshot.Merge(strings.Join(pkgs, ","), snaps...)
	}

	data, err := snapshot.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(*output, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	fmt.Printf("Wrote snapshot %s (%d types) to %s\n", s.ID, len(s.Types), *output)

	if *put {
		c, err := catalog.Open(opts.manifest.CatalogPath())
		if err != nil {
			return err
		}
		defer c.Close()
		if err := c.Put(s); err != nil {
			return err
		}
		fmt.Printf("Stored in %s\n", c.Path())
	}
	return nil
}
