// Package bind describes Go types to a refl.Registry using package reflect.
//
// It is the runtime counterpart of the code that gowrap generates: exported
// struct fields become instance variables at their real offsets, embedded
// structs become bases, pointer-receiver methods become callables taking a
// refl.Object receiver, and lifecycle callables are derived from the type.
//
// Struct tags control field names: `refl:"name"` renames a field and
// `refl:"-"` leaves it out.
package bind

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tliron/commonlog"

	"github.com/chazu/udrefl/ident"
	"github.com/chazu/udrefl/refl"
)

var log = commonlog.GetLogger("udrefl.bind")

// ErrNotStruct is returned when a non-struct type is bound with Struct.
var ErrNotStruct = errors.New("bind: not a struct type")

// ErrConflict is returned when a type identity is already bound to a
// different Go type.
var ErrConflict = errors.New("bind: identity already bound to another type")

var objectType = reflect.TypeFor[refl.Object]()

var names = ident.NewRegistry()

// Names returns the registry of every type name bound so far. Two bound
// type names that share an identity are reported by Struct as an
// *ident.CollisionError.
func Names() *ident.Registry { return names }

// TypeID returns the refl identity of a Go type.
func TypeID(t reflect.Type) refl.TypeID {
	return refl.TypeID(ident.TypeID(ident.TypeName(t)))
}

// TypeName returns the canonical name T is registered under.
func TypeName[T any]() string {
	return ident.TypeName(reflect.TypeFor[T]())
}

// TypeIDOf returns the refl identity of T.
func TypeIDOf[T any]() refl.TypeID {
	return TypeID(reflect.TypeFor[T]())
}

// Struct registers the struct type T and, recursively, its embedded structs.
// Binding the same type twice returns the existing descriptor.
func Struct[T any](reg *refl.Registry) (*refl.TypeInfo, error) {
	return bindStruct(reg, reflect.TypeFor[T](), Lifecycle[T])
}

// StructOf is Struct for a type known only at runtime.
func StructOf(reg *refl.Registry, t reflect.Type) (*refl.TypeInfo, error) {
	return bindStruct(reg, t, func(ti *refl.TypeInfo) error {
		return LifecycleOf(ti, t)
	})
}

func bindStruct(reg *refl.Registry, t reflect.Type, lifecycle func(*refl.TypeInfo) error) (*refl.TypeInfo, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	ti := reg.GetTypeInfo(TypeID(t))
	switch {
	case ti.GoType == t:
		return ti, nil
	case ti.GoType != nil:
		return nil, fmt.Errorf("%w: %s is %s", ErrConflict, ti.ID(), ti.GoType)
	}

	name := ident.TypeName(t)
	if _, err := names.Register(name); err != nil {
		return nil, fmt.Errorf("bind: %s: %w", t, err)
	}

	if err := populate(reg, ti, t, name, lifecycle); err != nil {
		reset(ti)
		return nil, err
	}
	ti.GoType = t
	return ti, nil
}

// populate fills ti from t. GoType is set by the caller once everything
// else has succeeded.
func populate(reg *refl.Registry, ti *refl.TypeInfo, t reflect.Type, name string, lifecycle func(*refl.TypeInfo) error) error {
	ti.Name = name
	ti.Size = t.Size()
	ti.Alignment = uintptr(t.Align())

	for i := range t.NumField() {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			base, err := StructOf(reg, f.Type)
			if err != nil {
				return fmt.Errorf("bind: base %s of %s: %w", f.Name, t, err)
			}
			ti.AddBase(f.Name, base, f.Offset, false)
			log.Debugf("%s: base %s at %d", ti.Name, f.Name, f.Offset)
			continue
		}
		fname, ok := fieldName(f)
		if !ok {
			log.Debugf("%s: skipping field %s", ti.Name, f.Name)
			continue
		}
		if err := ti.AddVarOf(fname, f.Type, f.Offset); err != nil {
			return err
		}
		log.Debugf("%s: var %s %s at %d", ti.Name, fname, f.Type, f.Offset)
	}

	if ti.Size > 0 {
		if err := lifecycle(ti); err != nil {
			return err
		}
	}
	return Methods(ti, t)
}

// reset returns a descriptor whose binding failed to its empty state.
func reset(ti *refl.TypeInfo) {
	ti.Name = ""
	ti.Size = 0
	ti.Alignment = refl.MaxAlign
	ti.Bases = nil
	ti.Fields = refl.NewFieldList()
}

func fieldName(f reflect.StructField) (string, bool) {
	if !f.IsExported() {
		return "", false
	}
	switch tag := f.Tag.Get("refl"); tag {
	case "-":
		return "", false
	case "":
		return f.Name, true
	default:
		return tag, true
	}
}

// Methods registers every exported method of *T (t is T) whose results are
// supported by refl.NewFunc. Each callable takes the receiver as a
// refl.Object in place of *T. Unsupported methods are skipped with a warning.
func Methods(ti *refl.TypeInfo, t reflect.Type) error {
	pt := reflect.PointerTo(t)
	for i := range pt.NumMethod() {
		m := pt.Method(i)
		fn, err := receiverFunc(t, m.Func)
		if err != nil {
			log.Warningf("%s: skipping method %s: %s", ti.Name, m.Name, err)
			continue
		}
		if err := ti.AddFunc(m.Name, fn); err != nil {
			log.Warningf("%s: skipping method %s: %s", ti.Name, m.Name, err)
			continue
		}
		log.Debugf("%s: method %s", ti.Name, m.Name)
	}
	return nil
}

// Method registers fn, whose first parameter must be *T, as a callable named
// name on ti. This is how free functions such as operators are attached to
// a type.
func Method[T any](ti *refl.TypeInfo, name string, fn any) error {
	v := reflect.ValueOf(fn)
	t := reflect.TypeFor[T]()
	if v.Kind() != reflect.Func || v.Type().NumIn() == 0 || v.Type().In(0) != reflect.PointerTo(t) {
		return fmt.Errorf("bind: %s: first parameter must be *%s", name, t)
	}
	wrapped, err := receiverFunc(t, v)
	if err != nil {
		return fmt.Errorf("bind: %s: %w", name, err)
	}
	return ti.AddFunc(name, wrapped)
}

// receiverFunc turns fn(*T, args...) into func(refl.Object, args...) with
// the same results.
func receiverFunc(t reflect.Type, fn reflect.Value) (any, error) {
	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, errors.New("variadic")
	}
	in := make([]reflect.Type, ft.NumIn())
	in[0] = objectType
	for i := 1; i < ft.NumIn(); i++ {
		in[i] = ft.In(i)
	}
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	wt := reflect.FuncOf(in, out, false)
	wrapped := reflect.MakeFunc(wt, func(args []reflect.Value) []reflect.Value {
		obj := args[0].Interface().(refl.Object)
		args[0] = reflect.NewAt(t, obj.Pointer())
		return fn.Call(args)
	})
	if _, err := refl.NewFunc(wrapped.Interface()); err != nil {
		return nil, err
	}
	return wrapped.Interface(), nil
}

// Static registers a class-wide value on ti.
func Static[T any](ti *refl.TypeInfo, name string, v T) {
	refl.AddStatic(ti, name, v)
}
