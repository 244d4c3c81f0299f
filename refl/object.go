package refl

import (
	"fmt"
	"math"
	"unsafe"
)

// TypeID is the process-wide numeric identity of a described type.
type TypeID uint64

// InvalidTypeID is the identity carried by the invalid Object sentinel.
const InvalidTypeID TypeID = math.MaxUint64

func (id TypeID) String() string {
	if id == InvalidTypeID {
		return "invalid"
	}
	return fmt.Sprintf("%#016x", uint64(id))
}

// Object is a non-owning reference to an instance: the identity of the type
// it claims to be and the address of its storage. An Object never allocates,
// constructs or frees anything on its own.
type Object struct {
	id  TypeID
	ptr unsafe.Pointer
}

// NewObject pairs a type identity with an address. The caller guarantees the
// address points to storage laid out as the identified type describes.
func NewObject(id TypeID, ptr unsafe.Pointer) Object {
	return Object{id: id, ptr: ptr}
}

// ObjectOf returns a handle for a live Go value.
func ObjectOf[T any](id TypeID, v *T) Object {
	return Object{id: id, ptr: unsafe.Pointer(v)}
}

// InvalidObject returns the sentinel handle: InvalidTypeID and a nil address.
func InvalidObject() Object {
	return Object{id: InvalidTypeID}
}

// Pointer returns the raw address. It is nil only for invalid handles.
func (o Object) Pointer() unsafe.Pointer { return o.ptr }

// ID returns the type identity.
func (o Object) ID() TypeID { return o.id }

// IsValid reports whether the handle has an address and a real identity.
// The zero Object is not valid.
func (o Object) IsValid() bool {
	return o.ptr != nil && o.id != InvalidTypeID
}

func (o Object) String() string {
	return fmt.Sprintf("Object(%s @ %p)", o.id, o.ptr)
}
