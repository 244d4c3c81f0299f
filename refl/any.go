package refl

import (
	"fmt"
	"reflect"
)

// Any holds one value together with the static type it was stored as.
// It is recovered with Cast, which only succeeds for that exact type.
//
// The zero Any holds nothing; it is what void callables return.
type Any struct {
	typ reflect.Type
	val any
}

// Void stands in for "no result" in Invoke and other type-parameterised calls.
type Void struct{}

var voidType = reflect.TypeFor[Void]()

// MakeAny stores v as a T. For interface types T the interface type, not the
// dynamic type of v, is what Cast must ask for.
func MakeAny[T any](v T) Any {
	return Any{typ: reflect.TypeFor[T](), val: v}
}

// anyOf wraps a reflect.Value as a value of the declared type typ.
func anyOf(v reflect.Value, typ reflect.Type) Any {
	return Any{typ: typ, val: v.Interface()}
}

// Type returns the stored type, or nil for an empty Any.
func (a Any) Type() reflect.Type { return a.typ }

// HasValue reports whether a holds a value.
func (a Any) HasValue() bool { return a.typ != nil }

// Interface returns the stored value as a plain interface.
func (a Any) Interface() any { return a.val }

func (a Any) String() string {
	if a.typ == nil {
		return "<empty>"
	}
	return fmt.Sprintf("%v (%s)", a.val, a.typ)
}

// Cast extracts a T. It fails with ErrTypeMismatch unless a was stored as
// exactly T; no conversions are attempted.
func Cast[T any](a Any) (T, error) {
	var zero T
	want := reflect.TypeFor[T]()
	if a.typ != want {
		return zero, violation("Cast", typeName(want), fmt.Errorf("%w: holds %s", ErrTypeMismatch, typeName(a.typ)))
	}
	if a.val == nil {
		// nil interface, pointer, map, slice, func or chan stored as T
		return zero, nil
	}
	return a.val.(T), nil
}

// value returns the stored value as a reflect.Value of the stored type.
func (a Any) value() reflect.Value {
	if a.val == nil {
		return reflect.Zero(a.typ)
	}
	v := reflect.ValueOf(a.val)
	if v.Type() != a.typ {
		// stored as an interface type
		iv := reflect.New(a.typ).Elem()
		iv.Set(v)
		return iv
	}
	return v
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "nothing"
	}
	return t.String()
}
