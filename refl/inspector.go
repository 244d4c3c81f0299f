package refl

import (
	"fmt"
	"sort"
)

// DefaultMaxDepth is the default recursion depth into bases.
const DefaultMaxDepth = 3

// Inspection is a structured view of one instance, read through its
// descriptor.
type Inspection struct {
	Type   string
	ID     TypeID
	Object Object
	Fields []FieldInfo
	Bases  []BaseInfo
	Elided bool // bases were not expanded because the depth ran out
}

// FieldInfo describes one field of an inspected instance.
type FieldInfo struct {
	Name      string
	Shape     Shape
	Type      string
	Offset    uintptr // instance variables only
	Value     string  // instance variables and static values
	Signature string  // callables only
	Err       error   // reading the value failed
}

// BaseInfo is an inspected base sub-object.
type BaseInfo struct {
	Name    string
	Offset  uintptr
	Virtual bool
	Value   *Inspection // nil for virtual bases
}

// Inspect inspects obj with the default depth.
func Inspect(t *TypeInfo, obj Object) *Inspection {
	return InspectDepth(t, obj, DefaultMaxDepth)
}

// InspectDepth inspects obj, recursing into at most depth levels of bases.
func InspectDepth(t *TypeInfo, obj Object, depth int) *Inspection {
	result := &Inspection{Type: t.Name, ID: t.id, Object: obj}

	for name, f := range t.Fields.All() {
		if f.Value == nil {
			continue
		}
		result.Fields = append(result.Fields, inspectField(name, f, obj))
	}

	if depth <= 0 {
		result.Elided = len(t.Bases) > 0
		return result
	}

	names := make([]string, 0, len(t.Bases))
	for name := range t.Bases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := t.Bases[name]
		bi := BaseInfo{Name: name, Offset: b.Offset, Virtual: b.Virtual}
		if !b.Virtual && b.Info != nil && obj.ptr != nil {
			sub, err := t.UpCast(obj, b.Info.id)
			if err == nil {
				bi.Value = InspectDepth(b.Info, sub, depth-1)
			}
		}
		result.Bases = append(result.Bases, bi)
	}
	return result
}

func inspectField(name string, f Field, obj Object) FieldInfo {
	info := FieldInfo{Name: name}
	switch v := f.Value.(type) {
	case NonStaticVar:
		info.Shape = ShapeNonStaticVar
		info.Type = typeName(v.Type)
		info.Offset = v.Offset
		if obj.ptr == nil {
			break
		}
		a, err := v.Get(obj)
		if err != nil {
			info.Err = err
			break
		}
		info.Value = fmt.Sprint(a.Interface())
	case StaticVar:
		info.Shape = ShapeStaticVar
		info.Type = typeName(v.Data.Type())
		info.Value = fmt.Sprint(v.Data.Interface())
	case Func:
		info.Shape = ShapeFunc
		info.Signature = v.Signature().String()
	}
	return info
}

// String renders the inspection as an indented tree.
func (in *Inspection) String() string {
	var b []byte
	b = in.appendTo(b, "")
	return string(b)
}

func (in *Inspection) appendTo(b []byte, indent string) []byte {
	b = fmt.Appendf(b, "%s%s (%s)\n", indent, in.Type, in.ID)
	for _, f := range in.Fields {
		switch f.Shape {
		case ShapeNonStaticVar:
			if f.Err != nil {
				b = fmt.Appendf(b, "%s  %s %s @%d = <%v>\n", indent, f.Name, f.Type, f.Offset, f.Err)
			} else {
				b = fmt.Appendf(b, "%s  %s %s @%d = %s\n", indent, f.Name, f.Type, f.Offset, f.Value)
			}
		case ShapeStaticVar:
			b = fmt.Appendf(b, "%s  static %s %s = %s\n", indent, f.Name, f.Type, f.Value)
		case ShapeFunc:
			b = fmt.Appendf(b, "%s  %s %s\n", indent, f.Name, f.Signature)
		}
	}
	for _, base := range in.Bases {
		switch {
		case base.Virtual:
			b = fmt.Appendf(b, "%s  base %s (virtual)\n", indent, base.Name)
		case base.Value != nil:
			b = fmt.Appendf(b, "%s  base %s @%d:\n", indent, base.Name, base.Offset)
			b = base.Value.appendTo(b, indent+"    ")
		default:
			b = fmt.Appendf(b, "%s  base %s @%d\n", indent, base.Name, base.Offset)
		}
	}
	if in.Elided {
		b = fmt.Appendf(b, "%s  ...\n", indent)
	}
	return b
}
