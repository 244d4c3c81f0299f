package bind

import (
	"io"
	"reflect"

	"github.com/chazu/udrefl/refl"
)

// Destroyer is implemented by types that release resources when destructed.
type Destroyer interface {
	Destroy()
}

// Lifecycle registers the four lifecycle callables for T: default
// construction zeroes the storage, copy assigns, move assigns and zeroes the
// source, and destruction calls Destroy or Close (if *T has one) and then
// zeroes the storage.
func Lifecycle[T any](ti *refl.TypeInfo) error {
	fns := map[string]any{
		refl.DefaultConstructor: func(o refl.Object) {
			if p := ptr[T](ti, o); p != nil {
				var zero T
				*p = zero
			}
		},
		refl.CopyConstructor: func(dst, src refl.Object) {
			d, s := ptr[T](ti, dst), ptr[T](ti, src)
			if d != nil && s != nil {
				*d = *s
			}
		},
		refl.MoveConstructor: func(dst, src refl.Object) {
			d, s := ptr[T](ti, dst), ptr[T](ti, src)
			if d != nil && s != nil {
				var zero T
				*d, *s = *s, zero
			}
		},
		refl.Destructor: func(o refl.Object) {
			if p := ptr[T](ti, o); p != nil {
				release(ti, any(p))
				var zero T
				*p = zero
			}
		},
	}
	return addLifecycle(ti, fns)
}

// LifecycleOf is Lifecycle for a type known only at runtime.
func LifecycleOf(ti *refl.TypeInfo, t reflect.Type) error {
	at := func(o refl.Object) (reflect.Value, bool) {
		if o.Pointer() == nil {
			log.Warningf("%s: lifecycle callable on a nil handle", ti.Name)
			return reflect.Value{}, false
		}
		return reflect.NewAt(t, o.Pointer()), true
	}
	fns := map[string]any{
		refl.DefaultConstructor: func(o refl.Object) {
			if p, ok := at(o); ok {
				p.Elem().SetZero()
			}
		},
		refl.CopyConstructor: func(dst, src refl.Object) {
			d, ok1 := at(dst)
			s, ok2 := at(src)
			if ok1 && ok2 {
				d.Elem().Set(s.Elem())
			}
		},
		refl.MoveConstructor: func(dst, src refl.Object) {
			d, ok1 := at(dst)
			s, ok2 := at(src)
			if ok1 && ok2 {
				d.Elem().Set(s.Elem())
				s.Elem().SetZero()
			}
		},
		refl.Destructor: func(o refl.Object) {
			if p, ok := at(o); ok {
				release(ti, p.Interface())
				p.Elem().SetZero()
			}
		},
	}
	return addLifecycle(ti, fns)
}

func addLifecycle(ti *refl.TypeInfo, fns map[string]any) error {
	for _, name := range []string{refl.DefaultConstructor, refl.CopyConstructor, refl.MoveConstructor, refl.Destructor} {
		if err := ti.AddFunc(name, fns[name]); err != nil {
			return err
		}
	}
	return nil
}

func ptr[T any](ti *refl.TypeInfo, o refl.Object) *T {
	p, err := refl.Var[T](o, 0)
	if err != nil {
		log.Warningf("%s: lifecycle callable: %s", ti.Name, err)
		return nil
	}
	return p
}

func release(ti *refl.TypeInfo, p any) {
	switch v := p.(type) {
	case Destroyer:
		v.Destroy()
	case io.Closer:
		if err := v.Close(); err != nil {
			log.Warningf("%s: close during destruct: %s", ti.Name, err)
		}
	}
}
