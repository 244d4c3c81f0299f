package refl

import (
	"fmt"
	"reflect"
)

// AttrList holds named attributes attached to a type or a field.
type AttrList map[string]Any

// Shape identifies which variant a Field holds.
type Shape int

const (
	ShapeNonStaticVar Shape = iota
	ShapeStaticVar
	ShapeFunc
)

func (s Shape) String() string {
	switch s {
	case ShapeNonStaticVar:
		return "var"
	case ShapeStaticVar:
		return "static"
	case ShapeFunc:
		return "func"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// FieldValue is implemented by exactly NonStaticVar, StaticVar and Func.
// Pointers to them satisfy the interface too; FieldList stores them by value.
type FieldValue interface {
	Shape() Shape
	sealed()
}

// fieldValue returns v with pointer variants dereferenced. A nil pointer
// becomes a nil FieldValue.
func fieldValue(v FieldValue) FieldValue {
	switch p := v.(type) {
	case *NonStaticVar:
		if p == nil {
			return nil
		}
		return *p
	case *StaticVar:
		if p == nil {
			return nil
		}
		return *p
	case *Func:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

// Field is one named member of a type.
type Field struct {
	Value FieldValue
	Attrs AttrList
}

// ---------------------------------------------------------------------------
// NonStaticVar: instance variable at a fixed offset
// ---------------------------------------------------------------------------

// NonStaticVar is a view of an instance variable: a byte offset into the
// instance and accessors closed over it. It never owns the instance.
type NonStaticVar struct {
	Offset uintptr
	Type   reflect.Type

	get func(Object) (Any, error)
	set func(Object, Any) error
}

func (NonStaticVar) Shape() Shape { return ShapeNonStaticVar }
func (NonStaticVar) sealed()      {}

// InitNonStaticVar describes a T stored at offset.
func InitNonStaticVar[T any](offset uintptr) NonStaticVar {
	return NonStaticVar{
		Offset: offset,
		Type:   reflect.TypeFor[T](),
		get: func(obj Object) (Any, error) {
			p, err := Var[T](obj, offset)
			if err != nil {
				return Any{}, err
			}
			return MakeAny(*p), nil
		},
		set: func(obj Object, value Any) error {
			v, err := Cast[T](value)
			if err != nil {
				return err
			}
			p, err := Var[T](obj, offset)
			if err != nil {
				return err
			}
			*p = v
			return nil
		},
	}
}

// NonStaticVarOf is InitNonStaticVar for a type known only at runtime.
func NonStaticVarOf(typ reflect.Type, offset uintptr) NonStaticVar {
	return NonStaticVar{
		Offset: offset,
		Type:   typ,
		get: func(obj Object) (Any, error) {
			v, err := varOf(obj, offset, typ)
			if err != nil {
				return Any{}, err
			}
			return anyOf(v, typ), nil
		},
		set: func(obj Object, value Any) error {
			if value.typ != typ {
				return violation("Set", typeName(typ), fmt.Errorf("%w: holds %s", ErrTypeMismatch, typeName(value.typ)))
			}
			v, err := varOf(obj, offset, typ)
			if err != nil {
				return err
			}
			v.Set(value.value())
			return nil
		},
	}
}

// Get reads the variable from obj.
func (v NonStaticVar) Get(obj Object) (Any, error) {
	if v.get == nil {
		return Any{}, violation("Get", "", ErrFieldShape)
	}
	return v.get(obj)
}

// Set writes value into obj. value must hold exactly the variable's type.
func (v NonStaticVar) Set(obj Object, value Any) error {
	if v.set == nil {
		return violation("Set", "", ErrFieldShape)
	}
	return v.set(obj, value)
}

// ---------------------------------------------------------------------------
// StaticVar: value shared by every instance
// ---------------------------------------------------------------------------

// StaticVar is a value independent of any instance.
type StaticVar struct {
	Data Any
}

func (StaticVar) Shape() Shape { return ShapeStaticVar }
func (StaticVar) sealed()      {}

// InitStaticVar stores v once; every read returns it.
func InitStaticVar[T any](v T) StaticVar {
	return StaticVar{Data: MakeAny(v)}
}

// ---------------------------------------------------------------------------
// Func: callable with an erased signature
// ---------------------------------------------------------------------------

// Func is a function value plus its erased signature.
type Func struct {
	fn  reflect.Value
	sig Signature
}

func (Func) Shape() Shape { return ShapeFunc }
func (Func) sealed()      {}

// NewFunc wraps fn, which must be a non-variadic function returning nothing,
// one value, an error, or a value and an error.
func NewFunc(fn any) (Func, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return Func{}, violation("NewFunc", fmt.Sprintf("%T", fn), ErrUnsupportedSignature)
	}
	sig, err := signatureFromType(v.Type())
	if err != nil {
		if strict.Load() {
			panic(err)
		}
		return Func{}, err
	}
	return Func{fn: v, sig: sig}, nil
}

// MustFunc is NewFunc that panics on error, for static registration tables.
func MustFunc(fn any) Func {
	f, err := NewFunc(fn)
	if err != nil {
		panic(err)
	}
	return f
}

// Signature returns the erased signature.
func (f Func) Signature() Signature { return f.sig }

// TypeIs reports whether f's signature is exactly sig.
func (f Func) TypeIs(sig Signature) bool {
	return f.fn.IsValid() && f.sig.Equal(sig)
}

// Call invokes f after checking that sig is its exact signature. Arguments
// are bound to the declared parameter types: a nil argument binds the zero
// value of a nillable parameter and an Any binds the value it holds. The
// result is returned as an Any of the declared result type, or an empty Any
// when there is none.
func (f Func) Call(sig Signature, args ...any) (Any, error) {
	return f.call("", sig, args)
}

func (f Func) call(name string, sig Signature, args []any) (Any, error) {
	if !f.TypeIs(sig) {
		return Any{}, violation("Call", name, fmt.Errorf("%w: have %s, want %s", ErrSignatureMismatch, f.sig, sig))
	}
	in, err := bindArgs(f.sig.Params, args)
	if err != nil {
		return Any{}, violation("Call", name, err)
	}
	out := f.fn.Call(in)
	if f.sig.Fallible {
		if e := out[len(out)-1]; !e.IsNil() {
			return Any{}, &CallError{Name: name, Err: e.Interface().(error)}
		}
	}
	if f.sig.Ret == nil {
		return Any{}, nil
	}
	return anyOf(out[0], f.sig.Ret), nil
}

func bindArgs(params []reflect.Type, args []any) ([]reflect.Value, error) {
	if len(args) != len(params) {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArgument, len(params), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := params[i]
		if a == nil {
			switch pt.Kind() {
			case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
				in[i] = reflect.Zero(pt)
				continue
			}
			return nil, fmt.Errorf("%w: argument %d is nil, want %s", ErrArgument, i, pt)
		}
		if av, ok := a.(Any); ok && pt != reflect.TypeFor[Any]() {
			if av.typ != pt {
				return nil, fmt.Errorf("%w: argument %d holds %s, want %s", ErrArgument, i, typeName(av.typ), pt)
			}
			in[i] = av.value()
			continue
		}
		v := reflect.ValueOf(a)
		switch {
		case v.Type() == pt:
		case pt.Kind() == reflect.Interface && v.Type().Implements(pt):
		default:
			return nil, fmt.Errorf("%w: argument %d is %s, want %s", ErrArgument, i, v.Type(), pt)
		}
		in[i] = v
	}
	return in, nil
}
