package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/udrefl/catalog"
	"github.com/chazu/udrefl/snapshot"
)

// handleCatalogCommand processes the `refl catalog` subcommand.
// Usage:
//
//	refl catalog put <file.cbor>   Store a snapshot file
//	refl catalog list              List stored snapshots, newest first
//	refl catalog show <id>         Print a stored snapshot
//	refl catalog delete <id>       Remove a stored snapshot
func handleCatalogCommand(args []string, opts *options) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: refl catalog [put|list|show|delete] ...")
		fmt.Fprintln(os.Stderr, "  put <file.cbor>   Store a snapshot file")
		fmt.Fprintln(os.Stderr, "  list              List stored snapshots")
		fmt.Fprintln(os.Stderr, "  show <id>         Print a stored snapshot")
		fmt.Fprintln(os.Stderr, "  delete <id>       Remove a stored snapshot")
		os.Exit(1)
	}

	c, err := catalog.Open(opts.manifest.CatalogPath())
	if err != nil {
		return err
	}
	defer c.Close()

	switch args[0] {
	case "put":
		if len(args) < 2 {
			return fmt.Errorf("usage: refl catalog put <file.cbor>")
		}
		return catalogPut(c, args[1])
	case "list":
		list, err := c.List()
		if err != nil {
			return err
		}
		printSummaries(os.Stdout, list)
		return nil
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("usage: refl catalog show <id>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("bad snapshot id: %w", err)
		}
		s, err := c.Get(id)
		if err != nil {
			return err
		}
		printSnapshot(os.Stdout, s)
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: refl catalog delete <id>")
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("bad snapshot id: %w", err)
		}
		return c.Delete(id)
	default:
		return fmt.Errorf("unknown catalog subcommand: %s", args[0])
	}
}

func catalogPut(c *catalog.Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := snapshot.Unmarshal(data)
	if err != nil {
		return err
	}
	if err := c.Put(s); err != nil {
		return err
	}
	fmt.Printf("Stored snapshot %s\n", s.ID)
	return nil
}

func printSummaries(out io.Writer, list []catalog.Summary) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tARCH\tTYPES\tCREATED")
	for _, s := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Source, s.Arch, s.Types, s.CreatedAt.Format(time.RFC3339))
	}
	w.Flush()
}

func printSnapshot(out io.Writer, s *snapshot.Snapshot) {
	fmt.Fprintf(out, "snapshot %s of %s", s.ID, s.Source)
	if s.Arch != "" {
		fmt.Fprintf(out, " (%s)", s.Arch)
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, t := range s.Types {
		fmt.Fprintf(w, "\n%s\t%#016x\tsize=%d align=%d\n", t.Name, t.ID, t.Size, t.Align)
		for _, b := range t.Bases {
			fmt.Fprintf(w, "  base %s\t%#016x\t@%d\n", b.Name, b.ID, b.Offset)
		}
		for _, f := range t.Fields {
			switch f.Shape {
			case "func":
				fmt.Fprintf(w, "  %s\t%s\t%s\n", f.Name, f.Shape, f.Signature)
			case "var":
				fmt.Fprintf(w, "  %s\t%s %s\t@%d\n", f.Name, f.Shape, f.Type, f.Offset)
			default:
				fmt.Fprintf(w, "  %s\t%s %s\t\n", f.Name, f.Shape, f.Type)
			}
		}
	}
	w.Flush()
}
