package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/udrefl/gowrap"
)

// handleGenCommand processes the `refl gen` subcommand.
// Usage:
//
//	refl gen                  # all packages from refl.toml
//	refl gen image            # single package, ad-hoc
//	refl gen -o ./gen image   # custom output dir
func handleGenCommand(args []string, opts *options) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	output := fs.String("o", opts.manifest.OutputDir(), "Output directory")
	fs.Parse(args)

	pkgs, err := packagesOrManifest(fs.Args(), opts.manifest)
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		path, err := genPackage(pkg, *output, opts.arch)
		if err != nil {
			return fmt.Errorf("generating %s: %w", pkg, err)
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

func genPackage(importPath, outputDir, arch string) (string, error) {
	model, err := gowrap.IntrospectPackage(importPath, gowrap.Options{Arch: arch})
	if err != nil {
		return "", fmt.Errorf("introspecting: %w", err)
	}

	src, err := gowrap.GenerateRegistration(model, "")
	if err != nil {
		return "", err
	}

	dir := filepath.Join(outputDir, gowrap.OutputPackageName(model.ImportPath))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, gowrap.OutputFileName(model.ImportPath))
	if err := os.WriteFile(path, src, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
