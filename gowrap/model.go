// Package gowrap introspects Go packages and generates refl registration
// code for their exported types.
package gowrap

import "go/types"

// PackageModel is the in-memory representation of a Go package's exported API
// together with the memory layout of its types.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g., "image")
	Arch       string // GOARCH the layout was computed for
	Functions  []FunctionModel
	Types      []TypeModel
	Constants  []ConstantModel
}

// Type returns the type named name, or nil.
func (m *PackageModel) Type(name string) *TypeModel {
	for i := range m.Types {
		if m.Types[i].Name == name {
			return &m.Types[i]
		}
	}
	return nil
}

// TypeModel represents an exported, non-generic named type.
type TypeModel struct {
	Name     string
	GoType   types.Type
	IsStruct bool
	Size     int64
	Align    int64
	Fields   []FieldModel    // exported, non-embedded fields
	Embedded []FieldModel    // embedded struct fields, in declaration order
	Methods  []FunctionModel // pointer-receiver methods declared on the type
}

// FunctionModel represents an exported function or method.
type FunctionModel struct {
	Name       string
	IsMethod   bool
	RecvType   string // non-empty for methods (e.g., "*Point")
	Params     []ParamModel
	Results    []ParamModel
	Variadic   bool
	ReturnsErr bool // true if last result is error
}

// ParamModel represents a function parameter or result.
type ParamModel struct {
	Name    string
	GoType  types.Type
	TypeStr string // human-readable type string (e.g., "string", "*image.RGBA")
}

// FieldModel represents a struct field and where it lives in the struct.
type FieldModel struct {
	Name     string
	GoType   types.Type
	TypeStr  string
	Offset   int64
	Size     int64
	Exported bool
}

// ConstantModel represents an exported constant.
type ConstantModel struct {
	Name    string
	TypeStr string
	Value   string // literal value
}

// Callable reports whether fn can be registered as a refl callable: it is
// not variadic and returns nothing, one value, an error, or a value and an
// error.
func (fn FunctionModel) Callable() bool {
	if fn.Variadic {
		return false
	}
	switch len(fn.Results) {
	case 0, 1:
		return true
	case 2:
		return fn.ReturnsErr
	}
	return false
}
