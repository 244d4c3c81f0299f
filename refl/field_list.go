package refl

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// Reserved names of the lifecycle callables.
const (
	DefaultConstructor = "_default_constructor"
	CopyConstructor    = "_copy_constructor"
	MoveConstructor    = "_move_constructor"
	Destructor         = "_destructor"
)

var (
	unarySig  = NewSignature(nil, objectType)
	binarySig = NewSignature(nil, objectType, objectType)
)

// FieldList is a type's members, ordered by name. A name may carry several
// fields: overloaded callables and shadowed members live side by side, in
// the order they were added.
//
// FieldList is not safe for concurrent mutation. Populate it first, then
// dispatch from as many goroutines as needed.
type FieldList struct {
	names []string // sorted, unique
	data  map[string][]Field
	count int
}

// NewFieldList creates an empty field list.
func NewFieldList() *FieldList {
	return &FieldList{data: make(map[string][]Field)}
}

// Add appends f under name, after any fields already registered there.
// A pointer variant in f.Value is stored as the value it points to.
func (fl *FieldList) Add(name string, f Field) {
	f.Value = fieldValue(f.Value)
	if fl.data == nil {
		fl.data = make(map[string][]Field)
	}
	if _, ok := fl.data[name]; !ok {
		i, _ := slices.BinarySearch(fl.names, name)
		fl.names = slices.Insert(fl.names, i, name)
	}
	fl.data[name] = append(fl.data[name], f)
	fl.count++
}

// AddValue is Add for a field without attributes.
func (fl *FieldList) AddValue(name string, v FieldValue) {
	fl.Add(name, Field{Value: v})
}

// AddFunc wraps fn with NewFunc and adds it under name.
func (fl *FieldList) AddFunc(name string, fn any) error {
	f, err := NewFunc(fn)
	if err != nil {
		return err
	}
	fl.AddValue(name, f)
	return nil
}

// Count returns the number of fields registered under name.
func (fl *FieldList) Count(name string) int {
	return len(fl.data[name])
}

// Len returns the total number of fields.
func (fl *FieldList) Len() int { return fl.count }

// Names returns the distinct field names in order.
func (fl *FieldList) Names() []string {
	return slices.Clone(fl.names)
}

// Lookup returns the fields under name in insertion order.
func (fl *FieldList) Lookup(name string) []Field {
	return slices.Clone(fl.data[name])
}

// All yields every field ordered by name, then by insertion.
func (fl *FieldList) All() iter.Seq2[string, Field] {
	return func(yield func(string, Field) bool) {
		for _, name := range fl.names {
			for _, f := range fl.data[name] {
				if !yield(name, f) {
					return
				}
			}
		}
	}
}

// single resolves name to its only field, which must have the given shape.
func (fl *FieldList) single(op, name string, shape Shape) (FieldValue, error) {
	fields := fl.data[name]
	if len(fields) != 1 {
		return nil, violation(op, name, fmt.Errorf("%w: found %d", ErrFieldCount, len(fields)))
	}
	v := fields[0].Value
	if v == nil || v.Shape() != shape {
		return nil, violation(op, name, fmt.Errorf("%w: want %s", ErrFieldShape, shape))
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// Instance variables
// ---------------------------------------------------------------------------

// GetAny reads the instance variable name from obj.
func (fl *FieldList) GetAny(name string, obj Object) (Any, error) {
	v, err := fl.single("Get", name, ShapeNonStaticVar)
	if err != nil {
		return Any{}, err
	}
	nv, ok := v.(NonStaticVar)
	if !ok {
		return Any{}, violation("Get", name, ErrFieldShape)
	}
	return nv.Get(obj)
}

// SetAny writes value into the instance variable name of obj.
func (fl *FieldList) SetAny(name string, obj Object, value Any) error {
	v, err := fl.single("Set", name, ShapeNonStaticVar)
	if err != nil {
		return err
	}
	nv, ok := v.(NonStaticVar)
	if !ok {
		return violation("Set", name, ErrFieldShape)
	}
	return nv.Set(obj, value)
}

// Get reads the instance variable name of obj as a T.
func Get[T any](fl *FieldList, name string, obj Object) (T, error) {
	a, err := fl.GetAny(name, obj)
	if err != nil {
		var zero T
		return zero, err
	}
	return Cast[T](a)
}

// Set writes a T into the instance variable name of obj.
func Set[T any](fl *FieldList, name string, obj Object, value T) error {
	return fl.SetAny(name, obj, MakeAny(value))
}

// ---------------------------------------------------------------------------
// Static values
// ---------------------------------------------------------------------------

// Static returns the static value registered under name.
func (fl *FieldList) Static(name string) (Any, error) {
	v, err := fl.single("Static", name, ShapeStaticVar)
	if err != nil {
		return Any{}, err
	}
	sv, ok := v.(StaticVar)
	if !ok {
		return Any{}, violation("Static", name, ErrFieldShape)
	}
	return sv.Data, nil
}

// GetStatic returns the static value name as a T.
func GetStatic[T any](fl *FieldList, name string) (T, error) {
	a, err := fl.Static(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return Cast[T](a)
}

// ---------------------------------------------------------------------------
// Overload resolution
// ---------------------------------------------------------------------------

// Resolve returns the first callable under name whose signature is exactly
// sig. Non-callable fields under the same name are skipped.
func (fl *FieldList) Resolve(name string, sig Signature) (Func, bool) {
	for _, f := range fl.data[name] {
		if fn, ok := f.Value.(Func); ok && fn.TypeIs(sig) {
			return fn, true
		}
	}
	return Func{}, false
}

// Call invokes the first callable under name whose signature is exactly sig.
// Candidates are tried in insertion order; there are no partial or
// converting matches. When none matches the result is ErrNoMatchingOverload.
func (fl *FieldList) Call(name string, sig Signature, args ...any) (Any, error) {
	fn, ok := fl.Resolve(name, sig)
	if !ok {
		return Any{}, violation("Call", name, fmt.Errorf("%w for %s", ErrNoMatchingOverload, sig))
	}
	return fn.call(name, sig, args)
}

// Invoke calls name with a signature built from R and the dynamic types of
// args, and returns the result as an R. Use Void for callables without a
// result. Parameters of interface type cannot be matched this way; use Call
// with an explicit Signature for those.
func Invoke[R any](fl *FieldList, name string, args ...any) (R, error) {
	var zero R
	ret := reflect.TypeFor[R]()
	sig, err := signatureFor(ret, args)
	if err != nil {
		return zero, violation("Call", name, err)
	}
	a, err := fl.Call(name, sig, args...)
	if err != nil {
		return zero, err
	}
	if ret == voidType {
		return zero, nil
	}
	return Cast[R](a)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// DefaultConstruct runs the default constructor on obj.
func (fl *FieldList) DefaultConstruct(obj Object) error {
	_, err := fl.Call(DefaultConstructor, unarySig, obj)
	return err
}

// CopyConstruct constructs dst as a copy of src.
func (fl *FieldList) CopyConstruct(dst, src Object) error {
	_, err := fl.Call(CopyConstructor, binarySig, dst, src)
	return err
}

// MoveConstruct constructs dst from src, leaving src in a moved-from state.
func (fl *FieldList) MoveConstruct(dst, src Object) error {
	_, err := fl.Call(MoveConstructor, binarySig, dst, src)
	return err
}

// Destruct runs the destructor on obj.
func (fl *FieldList) Destruct(obj Object) error {
	_, err := fl.Call(Destructor, unarySig, obj)
	return err
}
