package refl

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"unsafe"
)

// Base records that a type embeds a parent's sub-object. Virtual bases have
// no fixed offset; their placement is decided elsewhere.
type Base struct {
	Info    *TypeInfo
	Offset  uintptr
	Virtual bool
}

// BaseList maps a base's name to the relationship.
type BaseList map[string]Base

// TypeInfo is the reflection record of one type. It starts as a shell holding
// only its identity and is filled in by registration code; only the identity
// is immutable.
//
// TypeInfo is not synchronized. Finish registration before dispatching on it
// from several goroutines.
type TypeInfo struct {
	id TypeID

	Name      string
	Size      uintptr
	Alignment uintptr
	// GoType optionally names the Go type stored in instances. Allocators
	// use it to give instances collector-visible storage.
	GoType reflect.Type

	Bases  BaseList
	Attrs  AttrList
	Fields *FieldList

	alloc Allocator
}

func newTypeInfo(id TypeID, alloc Allocator) *TypeInfo {
	return &TypeInfo{
		id:        id,
		Alignment: MaxAlign,
		Bases:     make(BaseList),
		Attrs:     make(AttrList),
		Fields:    NewFieldList(),
		alloc:     alloc,
	}
}

// ID returns the type's identity.
func (t *TypeInfo) ID() TypeID { return t.id }

func (t *TypeInfo) String() string {
	name := t.Name
	if name == "" {
		name = "?"
	}
	return fmt.Sprintf("%s[%s size=%d align=%d]", name, t.id, t.Size, t.Alignment)
}

// ---------------------------------------------------------------------------
// Registration helpers
// ---------------------------------------------------------------------------

// AddVar registers an instance variable of type T at offset. When the
// type's Size is already known the variable must fit inside it.
func AddVar[T any](t *TypeInfo, name string, offset uintptr) error {
	var zero T
	if t.Size != 0 && offset+unsafe.Sizeof(zero) > t.Size {
		return violation("AddVar", name, fmt.Errorf("%w: offset %d + %d > size %d", ErrOutOfBounds, offset, unsafe.Sizeof(zero), t.Size))
	}
	t.Fields.AddValue(name, InitNonStaticVar[T](offset))
	return nil
}

// AddVarOf is AddVar for a type known only at runtime.
func (t *TypeInfo) AddVarOf(name string, typ reflect.Type, offset uintptr) error {
	if t.Size != 0 && offset+typ.Size() > t.Size {
		return violation("AddVar", name, fmt.Errorf("%w: offset %d + %d > size %d", ErrOutOfBounds, offset, typ.Size(), t.Size))
	}
	t.Fields.AddValue(name, NonStaticVarOf(typ, offset))
	return nil
}

// AddStatic registers a static value.
func AddStatic[T any](t *TypeInfo, name string, v T) {
	t.Fields.AddValue(name, InitStaticVar(v))
}

// AddFunc registers a callable. Several callables may share a name.
func (t *TypeInfo) AddFunc(name string, fn any) error {
	return t.Fields.AddFunc(name, fn)
}

// AddBase records that t embeds base at offset.
func (t *TypeInfo) AddBase(name string, base *TypeInfo, offset uintptr, virtual bool) {
	if t.Bases == nil {
		t.Bases = make(BaseList)
	}
	t.Bases[name] = Base{Info: base, Offset: offset, Virtual: virtual}
}

// IsDerivedFrom reports whether other is t or one of its transitive bases.
func (t *TypeInfo) IsDerivedFrom(other *TypeInfo) bool {
	if t == other {
		return true
	}
	for _, b := range t.Bases {
		if b.Info != nil && b.Info.IsDerivedFrom(other) {
			return true
		}
	}
	return false
}

// UpCast returns a handle to the sub-object of obj whose type is base.
// Offsets along the path are summed. A base reached only through a virtual
// base is ErrVirtualBase; a base reached along more than one path is
// ErrAmbiguousBase.
func (t *TypeInfo) UpCast(obj Object, base TypeID) (Object, error) {
	if obj.ptr == nil {
		return InvalidObject(), violation("UpCast", t.Name, ErrInvalidObject)
	}
	if base == t.id {
		return obj, nil
	}
	off, err := t.baseOffset(base)
	if err != nil {
		return InvalidObject(), violation("UpCast", t.Name, err)
	}
	return Object{id: base, ptr: unsafe.Add(obj.ptr, off)}, nil
}

func (t *TypeInfo) baseOffset(base TypeID) (uintptr, error) {
	var paths basePaths
	t.collectPaths(base, 0, false, &paths)
	switch {
	case len(paths.offsets)+paths.virtual > 1:
		return 0, fmt.Errorf("%w: %s reached along %d paths", ErrAmbiguousBase, base, len(paths.offsets)+paths.virtual)
	case paths.virtual > 0:
		return 0, ErrVirtualBase
	case len(paths.offsets) == 0:
		return 0, fmt.Errorf("%w: %s", ErrNoSuchBase, base)
	}
	return paths.offsets[0], nil
}

type basePaths struct {
	offsets []uintptr // non-virtual paths
	virtual int       // paths through a virtual base
}

// collectPaths records every path from t to base, visiting bases in name
// order.
func (t *TypeInfo) collectPaths(base TypeID, off uintptr, virtual bool, paths *basePaths) {
	names := make([]string, 0, len(t.Bases))
	for name := range t.Bases {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		b := t.Bases[name]
		if b.Info == nil {
			continue
		}
		v := virtual || b.Virtual
		if b.Info.id == base {
			if v {
				paths.virtual++
			} else {
				paths.offsets = append(paths.offsets, off+b.Offset)
			}
			continue
		}
		b.Info.collectPaths(base, off+b.Offset, v, paths)
	}
}

// ---------------------------------------------------------------------------
// Allocation and lifecycle
// ---------------------------------------------------------------------------

func (t *TypeInfo) allocator() Allocator {
	if t.alloc == nil {
		t.alloc = defaultAllocator
	}
	return t.alloc
}

// Malloc allocates Size bytes for an instance without constructing it.
func (t *TypeInfo) Malloc() (Object, error) {
	if t.Size == 0 {
		return InvalidObject(), violation("Malloc", t.Name, ErrZeroSize)
	}
	p, err := t.allocator().Allocate(t.Size, t.Alignment, t.GoType)
	if err != nil {
		return InvalidObject(), err
	}
	return Object{id: t.id, ptr: p}, nil
}

// Free releases obj's storage without destructing it. A nil pointer is a
// no-op.
func (t *TypeInfo) Free(obj Object) error {
	if obj.ptr == nil {
		return nil
	}
	return t.allocator().Release(obj.ptr)
}

// New allocates an instance and runs the default constructor on it. If the
// constructor fails the storage is left allocated and returned with the
// error; releasing it is up to the caller.
func (t *TypeInfo) New() (Object, error) {
	obj, err := t.Malloc()
	if err != nil {
		return obj, err
	}
	return obj, t.Fields.DefaultConstruct(obj)
}

// NewWith allocates an instance and constructs it with the callable name,
// which must accept (Object, args...) and return nothing. Failure leaves the
// storage allocated, as with New.
func (t *TypeInfo) NewWith(name string, args ...any) (Object, error) {
	sig, err := signatureFor(voidType, args)
	if err != nil {
		return InvalidObject(), violation("New", name, err)
	}
	sig.Params = append([]reflect.Type{objectType}, sig.Params...)

	obj, err := t.Malloc()
	if err != nil {
		return obj, err
	}
	_, err = t.Fields.Call(name, sig, append([]any{obj}, args...)...)
	return obj, err
}

// Delete destructs and frees obj. Free runs even if the destructor fails;
// both errors are reported. A nil pointer skips the destructor.
func (t *TypeInfo) Delete(obj Object) error {
	var derr error
	if obj.ptr != nil {
		derr = t.Fields.Destruct(obj)
	}
	return errors.Join(derr, t.Free(obj))
}
