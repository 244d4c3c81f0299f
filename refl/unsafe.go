package refl

import (
	"reflect"
	"unsafe"
)

// This file holds every reinterpretation of raw instance storage in the
// package. Nothing else converts addresses to typed pointers.
//
// The checks below catch nil handles and misaligned addresses. They cannot
// prove that the bytes at the offset really hold a T: that is established by
// whoever registered the offset, and trusted from then on.

// Var reinterprets the bytes at obj.Pointer()+offset as a *T.
func Var[T any](obj Object, offset uintptr) (*T, error) {
	if obj.ptr == nil {
		return nil, violation("Var", "", ErrInvalidObject)
	}
	p := unsafe.Add(obj.ptr, offset)
	var zero T
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		return nil, violation("Var", "", ErrMisaligned)
	}
	return (*T)(p), nil
}

// varOf is the reflect counterpart of Var: it returns an addressable,
// settable reflect.Value of type typ living at obj.Pointer()+offset.
func varOf(obj Object, offset uintptr, typ reflect.Type) (reflect.Value, error) {
	if obj.ptr == nil {
		return reflect.Value{}, violation("Var", "", ErrInvalidObject)
	}
	p := unsafe.Add(obj.ptr, offset)
	if uintptr(p)%uintptr(typ.Align()) != 0 {
		return reflect.Value{}, violation("Var", "", ErrMisaligned)
	}
	return reflect.NewAt(typ, p).Elem(), nil
}

// alignUp rounds p up to a multiple of align, which must be a power of two.
func alignUp(p, align uintptr) uintptr {
	return (p + align - 1) &^ (align - 1)
}
