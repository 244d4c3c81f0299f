package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chazu/udrefl/gowrap"
)

// handleLayoutCommand processes the `refl layout` subcommand.
// Usage:
//
//	refl layout                   # all packages from refl.toml
//	refl layout image image/color # ad-hoc
func handleLayoutCommand(args []string, opts *options) error {
	pkgs, err := packagesOrManifest(args, opts.manifest)
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		model, err := gowrap.IntrospectPackage(pkg, gowrap.Options{Arch: opts.arch})
		if err != nil {
			return fmt.Errorf("introspecting %s: %w", pkg, err)
		}
		printLayout(os.Stdout, model)
	}
	return nil
}

func printLayout(out io.Writer, model *gowrap.PackageModel) {
	fmt.Fprintf(out, "package %s (%s)\n", model.ImportPath, model.Arch)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, tm := range model.Types {
		fmt.Fprintf(w, "\n%s\tsize=%d\talign=%d\n", tm.Name, tm.Size, tm.Align)
		for _, e := range tm.Embedded {
			fmt.Fprintf(w, "  base %s\t%s\t@%d\n", e.Name, e.TypeStr, e.Offset)
		}
		for _, f := range tm.Fields {
			fmt.Fprintf(w, "  %s\t%s\t@%d\n", f.Name, f.TypeStr, f.Offset)
		}
		for _, m := range tm.Methods {
			if !m.Callable() {
				continue
			}
			fmt.Fprintf(w, "  %s\t%s\t\n", m.Name, methodString(m))
		}
	}
	w.Flush()
}

func methodString(m gowrap.FunctionModel) string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.TypeStr
	}
	s := "func(" + strings.Join(params, ", ") + ")"
	switch len(m.Results) {
	case 0:
		return s
	case 1:
		return s + " " + m.Results[0].TypeStr
	}
	results := make([]string, len(m.Results))
	for i, r := range m.Results {
		results[i] = r.TypeStr
	}
	return s + " (" + strings.Join(results, ", ") + ")"
}
