package gowrap

import (
	"strings"
	"unicode"
)

// CanonicalTypeName returns the name a type is registered under: its import
// path and type name joined by a dot, e.g. "image/color.RGBA". It agrees with
// ident.TypeName for the same type.
func CanonicalTypeName(importPath, typeName string) string {
	return importPath + "." + typeName
}

// OutputPackageName converts a Go import path to the name of the package
// holding its generated registration code.
// e.g., "image/color" → "colorrefl", "github.com/x/go-yaml" → "goyamlrefl"
func OutputPackageName(importPath string) string {
	parts := strings.Split(importPath, "/")
	last := parts[len(parts)-1]
	var b strings.Builder
	for _, r := range last {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 || unicode.IsDigit(rune(b.String()[0])) {
		return "pkg" + b.String() + "refl"
	}
	return b.String() + "refl"
}

// OutputFileName is the file generated code for importPath is written to.
// e.g., "image/color" → "refl_color.go"
func OutputFileName(importPath string) string {
	return "refl_" + strings.TrimSuffix(OutputPackageName(importPath), "refl") + ".go"
}

// RegisterFuncName returns the name of a per-type registration function.
// e.g., "RGBA" → "registerRGBA", "point_3d" → "registerPoint3d"
func RegisterFuncName(typeName string) string {
	return "register" + toPascal(typeName)
}

// toPascal converts a string to PascalCase.
// Handles hyphenated and underscore-separated names.
func toPascal(s string) string {
	if len(s) == 0 {
		return s
	}

	var b strings.Builder
	nextUpper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			nextUpper = true
			continue
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
