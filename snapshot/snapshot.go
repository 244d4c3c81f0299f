// Package snapshot captures type descriptors as plain data that can be
// stored, compared and shipped to tools that have no access to the live
// registry. Snapshots are encoded as canonical CBOR.
package snapshot

import (
	"fmt"
	"go/types"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/chazu/udrefl/gowrap"
	"github.com/chazu/udrefl/ident"
	"github.com/chazu/udrefl/refl"
)

// Snapshot is a read-only record of a set of type descriptors.
type Snapshot struct {
	ID     uuid.UUID    `cbor:"1,keyasint"`
	Source string       `cbor:"2,keyasint"`           // registry or package the types came from
	Arch   string       `cbor:"3,keyasint,omitempty"` // set when layouts were computed rather than observed
	Types  []TypeRecord `cbor:"4,keyasint"`
}

// TypeRecord is one descriptor.
type TypeRecord struct {
	ID     uint64        `cbor:"1,keyasint"`
	Name   string        `cbor:"2,keyasint"`
	Size   uint64        `cbor:"3,keyasint"`
	Align  uint64        `cbor:"4,keyasint"`
	Bases  []BaseRecord  `cbor:"5,keyasint,omitempty"`
	Fields []FieldRecord `cbor:"6,keyasint,omitempty"`
}

// BaseRecord is one base of a type.
type BaseRecord struct {
	Name    string `cbor:"1,keyasint"`
	ID      uint64 `cbor:"2,keyasint"`
	Offset  uint64 `cbor:"3,keyasint"`
	Virtual bool   `cbor:"4,keyasint,omitempty"`
}

// FieldRecord is one field. Type is set for variables, Offset for instance
// variables and Signature for callables.
type FieldRecord struct {
	Name      string `cbor:"1,keyasint"`
	Shape     string `cbor:"2,keyasint"`
	Type      string `cbor:"3,keyasint,omitempty"`
	Offset    uint64 `cbor:"4,keyasint,omitempty"`
	Signature string `cbor:"5,keyasint,omitempty"`
}

// Find returns the record of the type named name.
func (s *Snapshot) Find(name string) (*TypeRecord, bool) {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i], true
		}
	}
	return nil, false
}

// FromRegistry records every descriptor in reg, in identity order.
func FromRegistry(reg *refl.Registry, source string) *Snapshot {
	s := &Snapshot{ID: uuid.New(), Source: source}
	for _, ti := range reg.Types() {
		rec := TypeRecord{
			ID:    uint64(ti.ID()),
			Name:  ti.Name,
			Size:  uint64(ti.Size),
			Align: uint64(ti.Alignment),
		}
		for name, b := range ti.Bases {
			if b.Info == nil {
				continue
			}
			rec.Bases = append(rec.Bases, BaseRecord{
				Name:    name,
				ID:      uint64(b.Info.ID()),
				Offset:  uint64(b.Offset),
				Virtual: b.Virtual,
			})
		}
		sortBases(rec.Bases)
		for name, f := range ti.Fields.All() {
			if f.Value == nil {
				continue
			}
			rec.Fields = append(rec.Fields, fieldRecord(name, f.Value))
		}
		s.Types = append(s.Types, rec)
	}
	return s
}

func fieldRecord(name string, v refl.FieldValue) FieldRecord {
	fr := FieldRecord{Name: name, Shape: v.Shape().String()}
	switch v := v.(type) {
	case refl.NonStaticVar:
		fr.Type = typeString(v.Type)
		fr.Offset = uint64(v.Offset)
	case refl.StaticVar:
		fr.Type = typeString(v.Data.Type())
	case refl.Func:
		fr.Signature = v.Signature().String()
	}
	return fr
}

func typeString(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

// FromModel records the types of an introspected package as the registration
// code generated from it would describe them.
func FromModel(model *gowrap.PackageModel) *Snapshot {
	s := &Snapshot{ID: uuid.New(), Source: model.ImportPath, Arch: model.Arch}
	for _, tm := range model.Types {
		name := gowrap.CanonicalTypeName(model.ImportPath, tm.Name)
		rec := TypeRecord{
			ID:    uint64(ident.TypeID(name)),
			Name:  name,
			Size:  uint64(tm.Size),
			Align: uint64(tm.Align),
		}
		for _, e := range tm.Embedded {
			rec.Bases = append(rec.Bases, BaseRecord{
				Name:   e.Name,
				ID:     uint64(ident.TypeID(typeName(e.GoType))),
				Offset: uint64(e.Offset),
			})
		}
		sortBases(rec.Bases)
		for _, f := range tm.Fields {
			rec.Fields = append(rec.Fields, FieldRecord{
				Name:   f.Name,
				Shape:  refl.ShapeNonStaticVar.String(),
				Type:   types.TypeString(f.GoType, pkgName),
				Offset: uint64(f.Offset),
			})
		}
		if tm.Size > 0 {
			for _, name := range []string{refl.DefaultConstructor, refl.CopyConstructor, refl.MoveConstructor, refl.Destructor} {
				rec.Fields = append(rec.Fields, FieldRecord{Name: name, Shape: refl.ShapeFunc.String(), Signature: lifecycleSig(name)})
			}
		}
		for _, m := range tm.Methods {
			if !m.Callable() {
				continue
			}
			rec.Fields = append(rec.Fields, FieldRecord{Name: m.Name, Shape: refl.ShapeFunc.String(), Signature: methodSig(m)})
		}
		sortFields(rec.Fields)
		s.Types = append(s.Types, rec)
	}
	sortTypes(s.Types)
	return s
}

// typeName is the canonical name of a named type, as ident.TypeName gives
// for its reflect.Type.
func typeName(t types.Type) string {
	if n, ok := types.Unalias(t).(*types.Named); ok && n.Obj().Pkg() != nil {
		return gowrap.CanonicalTypeName(n.Obj().Pkg().Path(), n.Obj().Name())
	}
	return types.TypeString(t, pkgName)
}

// pkgName qualifies types the way reflect.Type.String does.
func pkgName(p *types.Package) string { return p.Name() }

func lifecycleSig(name string) string {
	if name == refl.DefaultConstructor || name == refl.Destructor {
		return "func(refl.Object)"
	}
	return "func(refl.Object, refl.Object)"
}

// methodSig formats m the way refl.Signature.String formats the callable
// registered for it.
func methodSig(m gowrap.FunctionModel) string {
	var b strings.Builder
	b.WriteString("func(refl.Object")
	for _, p := range m.Params {
		b.WriteString(", ")
		b.WriteString(types.TypeString(p.GoType, pkgName))
	}
	b.WriteString(")")
	results := m.Results
	if m.ReturnsErr {
		results = results[:len(results)-1]
	}
	switch {
	case len(results) == 1 && m.ReturnsErr:
		fmt.Fprintf(&b, " (%s, error)", types.TypeString(results[0].GoType, pkgName))
	case len(results) == 1:
		b.WriteString(" " + types.TypeString(results[0].GoType, pkgName))
	case m.ReturnsErr:
		b.WriteString(" error")
	}
	return b.String()
}

// Merge combines snapshots into a new one under source. When several
// snapshots describe the same identity the first one wins.
func Merge(source string, snaps ...*Snapshot) *Snapshot {
	out := &Snapshot{ID: uuid.New(), Source: source}
	seen := make(map[uint64]bool)
	for _, s := range snaps {
		if out.Arch == "" {
			out.Arch = s.Arch
		}
		for _, t := range s.Types {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out.Types = append(out.Types, t)
		}
	}
	sortTypes(out.Types)
	return out
}
