package refl

import (
	"strings"
	"testing"
	"unsafe"
)

func TestInspect(t *testing.T) {
	type inner struct{ N int }
	type outer struct {
		V int
		inner
	}

	reg := NewRegistry()
	innerTI := reg.GetTypeInfo(1)
	innerTI.Name = "inner"
	innerTI.Size = unsafe.Sizeof(inner{})
	must(t, AddVar[int](innerTI, "N", 0))

	outerTI := reg.GetTypeInfo(2)
	outerTI.Name = "outer"
	outerTI.Size = unsafe.Sizeof(outer{})
	must(t, AddVar[int](outerTI, "V", unsafe.Offsetof(outer{}.V)))
	AddStatic(outerTI, "Kind", "demo")
	must(t, outerTI.AddFunc("Twice", func(o Object) int { return 0 }))
	outerTI.AddBase("inner", innerTI, unsafe.Offsetof(outer{}.inner), false)

	o := &outer{V: 3}
	o.N = 4
	in := Inspect(outerTI, ObjectOf(2, o))

	if in.Type != "outer" || len(in.Fields) != 3 {
		t.Fatalf("unexpected inspection %+v", in)
	}
	// Fields are ordered by name: Kind, Twice, V
	if in.Fields[0].Shape != ShapeStaticVar || in.Fields[0].Value != "demo" {
		t.Errorf("Kind = %+v", in.Fields[0])
	}
	if in.Fields[1].Signature != "func(refl.Object) int" {
		t.Errorf("Twice signature = %q", in.Fields[1].Signature)
	}
	if in.Fields[2].Value != "3" {
		t.Errorf("V = %q, want 3", in.Fields[2].Value)
	}
	if len(in.Bases) != 1 || in.Bases[0].Value == nil {
		t.Fatalf("bases = %+v", in.Bases)
	}
	if got := in.Bases[0].Value.Fields[0].Value; got != "4" {
		t.Errorf("inner.N = %q, want 4", got)
	}

	s := in.String()
	for _, want := range []string{"outer", "static Kind string = demo", "V int", "base inner", "N int"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}

	shallow := InspectDepth(outerTI, ObjectOf(2, o), 0)
	if !shallow.Elided || len(shallow.Bases) != 0 {
		t.Errorf("depth 0 should elide bases: %+v", shallow)
	}
}

func TestInspectSkipsEmptyField(t *testing.T) {
	ti := NewRegistry().GetTypeInfo(1)
	ti.Name = "holder"
	ti.Size = 8
	ti.Fields.AddValue("empty", nil)
	must(t, AddVar[int](ti, "N", 0))

	n := 4
	got := Inspect(ti, ObjectOf(1, &n))
	if len(got.Fields) != 1 || got.Fields[0].Name != "N" || got.Fields[0].Value != "4" {
		t.Errorf("Fields = %+v", got.Fields)
	}
}
