package gowrap

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"
)

func TestIntrospectPackage_Strings(t *testing.T) {
	model, err := IntrospectPackage("strings", Options{})
	if err != nil {
		t.Fatalf("IntrospectPackage(strings): %v", err)
	}

	if model.ImportPath != "strings" {
		t.Errorf("expected import path 'strings', got %q", model.ImportPath)
	}
	if model.Name != "strings" {
		t.Errorf("expected package name 'strings', got %q", model.Name)
	}

	// Should have well-known functions
	foundContains := false
	foundReplace := false
	for _, fn := range model.Functions {
		switch fn.Name {
		case "Contains":
			foundContains = true
			if len(fn.Params) != 2 {
				t.Errorf("Contains: expected 2 params, got %d", len(fn.Params))
			}
			if len(fn.Results) != 1 {
				t.Errorf("Contains: expected 1 result, got %d", len(fn.Results))
			}
		case "Replace":
			foundReplace = true
		}
	}
	if !foundContains {
		t.Error("expected to find Contains function")
	}
	if !foundReplace {
		t.Error("expected to find Replace function")
	}

	// Should have types like Builder, Reader, Replacer
	foundBuilder := false
	for _, tp := range model.Types {
		if tp.Name == "Builder" {
			foundBuilder = true
			// Builder should have methods
			if len(tp.Methods) == 0 {
				t.Error("Builder: expected methods")
			}
		}
	}
	if !foundBuilder {
		t.Error("expected to find Builder type")
	}
}

func TestIntrospectPackage_WithFilter(t *testing.T) {
	filter := map[string]bool{
		"Contains":  true,
		"HasPrefix": true,
	}
	model, err := IntrospectPackage("strings", Options{Include: filter})
	if err != nil {
		t.Fatalf("IntrospectPackage(strings, filter): %v", err)
	}

	if len(model.Functions) != 2 {
		t.Errorf("expected 2 functions with filter, got %d", len(model.Functions))
	}
	if len(model.Types) != 0 {
		t.Errorf("expected 0 types with filter, got %d", len(model.Types))
	}
}

func TestIntrospectPackage_EncodingJson(t *testing.T) {
	model, err := IntrospectPackage("encoding/json", Options{})
	if err != nil {
		t.Fatalf("IntrospectPackage(encoding/json): %v", err)
	}

	if model.Name != "json" {
		t.Errorf("expected package name 'json', got %q", model.Name)
	}

	// Should have Marshal function
	foundMarshal := false
	for _, fn := range model.Functions {
		if fn.Name == "Marshal" {
			foundMarshal = true
			if !fn.ReturnsErr {
				t.Error("Marshal should return error")
			}
		}
	}
	if !foundMarshal {
		t.Error("expected to find Marshal function")
	}

	// Should have Decoder type with Decode method
	foundDecoder := false
	for _, tp := range model.Types {
		if tp.Name == "Decoder" {
			foundDecoder = true
			foundDecode := false
			for _, m := range tp.Methods {
				if m.Name == "Decode" {
					foundDecode = true
					if !m.ReturnsErr {
						t.Error("Decode should return error")
					}
				}
			}
			if !foundDecode {
				t.Error("expected Decoder to have Decode method")
			}
		}
	}
	if !foundDecoder {
		t.Error("expected to find Decoder type")
	}
}

func TestIntrospectPackage_BadPath(t *testing.T) {
	_, err := IntrospectPackage("nonexistent/package/path", Options{})
	if err == nil {
		t.Error("expected error for nonexistent package")
	}
}

func TestIntrospectPackage_Constants(t *testing.T) {
	model, err := IntrospectPackage("math", Options{})
	if err != nil {
		t.Fatalf("IntrospectPackage(math): %v", err)
	}

	foundPi := false
	for _, c := range model.Constants {
		if c.Name == "Pi" {
			foundPi = true
			if c.Value == "" {
				t.Error("Pi should have a value")
			}
		}
	}
	if !foundPi {
		t.Error("expected to find Pi constant")
	}
}

func TestIntrospectPackage_Layout(t *testing.T) {
	model, err := IntrospectPackage("image", Options{Include: map[string]bool{"Point": true, "Rectangle": true}, Arch: "386"})
	if err != nil {
		t.Fatalf("IntrospectPackage(image): %v", err)
	}
	if model.Arch != "386" {
		t.Errorf("Arch = %q", model.Arch)
	}

	pt := model.Type("Point")
	if pt == nil {
		t.Fatal("expected to find Point type")
	}
	if !pt.IsStruct || pt.Size != 8 || pt.Align != 4 {
		t.Errorf("Point layout: struct=%v size=%d align=%d", pt.IsStruct, pt.Size, pt.Align)
	}
	if len(pt.Fields) != 2 || pt.Fields[1].Name != "Y" || pt.Fields[1].Offset != 4 {
		t.Errorf("Point fields: %+v", pt.Fields)
	}

	rect := model.Type("Rectangle")
	if rect == nil {
		t.Fatal("expected to find Rectangle type")
	}
	if rect.Size != 16 || len(rect.Fields) != 2 || rect.Fields[1].Offset != 8 {
		t.Errorf("Rectangle layout: size=%d fields=%+v", rect.Size, rect.Fields)
	}
	if rect.Fields[0].TypeStr != "Point" {
		t.Errorf("Rectangle.Min type = %q, want Point", rect.Fields[0].TypeStr)
	}
}

func TestIntrospectPackage_BadArch(t *testing.T) {
	if _, err := IntrospectPackage("image", Options{Arch: "pdp11"}); err == nil {
		t.Error("expected error for unknown architecture")
	}
}

const shapesSrc = `package shapes

type Base struct {
	ID   int32
	Tags []string
}

type hidden struct{ n int }

type Circle struct {
	Base
	hidden
	R     float64
	label string
}

func (c *Circle) Area() float64                 { return 3 * c.R * c.R }
func (c *Circle) Grow(k float64) error          { c.R *= k; return nil }
func (c *Circle) Sum(xs ...float64) float64     { return 0 }
func (c *Circle) Split() (float64, float64)     { return c.R, c.R }
func (b *Base) Describe() string                { return "" }

type Pair[T any] struct{ A, B T }

type Celsius float64

type Shape interface{ Area() float64 }
`

func checkShapes(t *testing.T) (*types.Package, types.Sizes) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "shapes.go", shapesSrc, 0)
	if err != nil {
		t.Fatal(err)
	}
	pkg, err := (&types.Config{}).Check("example.com/shapes", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return pkg, types.SizesFor("gc", "amd64")
}

func TestExtractType_Struct(t *testing.T) {
	pkg, sizes := checkShapes(t)
	tm := extractType(pkg.Scope().Lookup("Circle").(*types.TypeName), pkg, sizes)
	if tm == nil {
		t.Fatal("Circle not extracted")
	}

	// Base{int32, []string} = 32, hidden = 8, R = 8, label = 16
	if tm.Size != 64 || tm.Align != 8 {
		t.Errorf("Circle size=%d align=%d, want 64/8", tm.Size, tm.Align)
	}
	if len(tm.Embedded) != 1 || tm.Embedded[0].Name != "Base" || tm.Embedded[0].Offset != 0 {
		t.Errorf("Embedded = %+v, want [Base@0]", tm.Embedded)
	}
	if len(tm.Fields) != 1 || tm.Fields[0].Name != "R" || tm.Fields[0].Offset != 40 {
		t.Errorf("Fields = %+v, want [R@40]", tm.Fields)
	}

	methods := map[string]FunctionModel{}
	for _, m := range tm.Methods {
		methods[m.Name] = m
	}
	if _, ok := methods["Describe"]; ok {
		t.Error("promoted method Describe should not be listed")
	}
	if m := methods["Grow"]; !m.ReturnsErr || !m.Callable() || m.RecvType != "*Circle" {
		t.Errorf("Grow = %+v", m)
	}
	if m := methods["Sum"]; !m.Variadic || m.Callable() {
		t.Errorf("Sum should be variadic and not callable: %+v", m)
	}
	if m := methods["Split"]; m.Callable() {
		t.Error("Split returns two values and should not be callable")
	}
}

func TestExtractType_Skips(t *testing.T) {
	pkg, sizes := checkShapes(t)
	for _, name := range []string{"Pair", "Shape"} {
		if tm := extractType(pkg.Scope().Lookup(name).(*types.TypeName), pkg, sizes); tm != nil {
			t.Errorf("%s should be skipped", name)
		}
	}
	tm := extractType(pkg.Scope().Lookup("Celsius").(*types.TypeName), pkg, sizes)
	if tm == nil || tm.IsStruct || tm.Size != 8 {
		t.Errorf("Celsius = %+v", tm)
	}
}
