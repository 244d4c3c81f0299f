package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/chazu/udrefl/bind"
	"github.com/chazu/udrefl/catalog"
	"github.com/chazu/udrefl/gowrap"
	"github.com/chazu/udrefl/manifest"
	"github.com/chazu/udrefl/refl"
	"github.com/chazu/udrefl/snapshot"
)

func testOptions(t *testing.T) *options {
	t.Helper()
	return &options{manifest: manifest.Default(t.TempDir())}
}

func TestDemo(t *testing.T) {
	if err := handleDemoCommand(testOptions(t)); err != nil {
		t.Fatalf("demo: %v", err)
	}
}

func TestDeleteInstanceReportsFailure(t *testing.T) {
	ti, err := bind.Struct[vec3](refl.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	obj, err := ti.New()
	if err != nil {
		t.Fatal(err)
	}

	var first error
	deleteInstance(ti, obj, &first)
	if first != nil {
		t.Fatalf("first delete: %v", first)
	}

	second := errors.New("earlier")
	deleteInstance(ti, obj, &second)
	if !errors.Is(second, refl.ErrUnknownPointer) {
		t.Errorf("second delete err = %v, want ErrUnknownPointer", second)
	}
	if !strings.Contains(second.Error(), "earlier") {
		t.Errorf("earlier error lost: %v", second)
	}
}

func TestPackagesOrManifest(t *testing.T) {
	m := manifest.Default(t.TempDir())
	if _, err := packagesOrManifest(nil, m); err == nil {
		t.Error("expected error without packages")
	}
	m.Wrap.Packages = []string{"image"}
	pkgs, err := packagesOrManifest(nil, m)
	if err != nil || len(pkgs) != 1 || pkgs[0] != "image" {
		t.Errorf("packages = %v, %v", pkgs, err)
	}
	pkgs, _ = packagesOrManifest([]string{"strings"}, m)
	if pkgs[0] != "strings" {
		t.Errorf("command-line packages should win, got %v", pkgs)
	}
}

func TestPrintLayout(t *testing.T) {
	model := &gowrap.PackageModel{
		ImportPath: "example.com/shapes",
		Arch:       "amd64",
		Types: []gowrap.TypeModel{{
			Name:  "Circle",
			Size:  16,
			Align: 8,
			Fields: []gowrap.FieldModel{
				{Name: "R", TypeStr: "float64", Offset: 8},
			},
			Methods: []gowrap.FunctionModel{
				{Name: "Area", Results: []gowrap.ParamModel{{TypeStr: "float64"}}},
				{Name: "Sum", Variadic: true},
			},
		}},
	}
	var buf bytes.Buffer
	printLayout(&buf, model)
	out := buf.String()
	for _, want := range []string{"package example.com/shapes (amd64)", "size=16", "@8", "func() float64"} {
		if !strings.Contains(out, want) {
			t.Errorf("layout lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sum") {
		t.Errorf("variadic method should not be listed:\n%s", out)
	}
}

func TestCatalogPutShow(t *testing.T) {
	opts := testOptions(t)
	s := &snapshot.Snapshot{ID: uuid.New(), Source: "example", Types: []snapshot.TypeRecord{{ID: 1, Name: "example.T", Size: 8}}}
	data, err := snapshot.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(t.TempDir(), "s.cbor")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := handleCatalogCommand([]string{"put", file}, opts); err != nil {
		t.Fatalf("catalog put: %v", err)
	}
	if err := handleCatalogCommand([]string{"show", s.ID.String()}, opts); err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	if err := handleCatalogCommand([]string{"show", "not-a-uuid"}, opts); err == nil {
		t.Error("expected error for malformed id")
	}

	c, err := catalog.Open(opts.manifest.CatalogPath())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	list, err := c.List()
	if err != nil || len(list) != 1 || list[0].ID != s.ID {
		t.Fatalf("List = %v, %v", list, err)
	}

	var buf bytes.Buffer
	printSummaries(&buf, list)
	if !strings.Contains(buf.String(), s.ID.String()) {
		t.Errorf("summary lacks id:\n%s", buf.String())
	}
}

func TestPrintSnapshot(t *testing.T) {
	s := &snapshot.Snapshot{
		ID:     uuid.New(),
		Source: "example",
		Arch:   "arm64",
		Types: []snapshot.TypeRecord{{
			ID: 1, Name: "example.T", Size: 16, Align: 8,
			Bases: []snapshot.BaseRecord{{Name: "B", ID: 2}},
			Fields: []snapshot.FieldRecord{
				{Name: "X", Shape: "var", Type: "int", Offset: 8},
				{Name: "Count", Shape: "static", Type: "int"},
				{Name: "F", Shape: "func", Signature: "func(refl.Object)"},
			},
		}},
	}
	var buf bytes.Buffer
	printSnapshot(&buf, s)
	out := buf.String()
	for _, want := range []string{"(arm64)", "base B", "var int", "static int", "func(refl.Object)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}
