package refl

import (
	"fmt"
	"reflect"
	"strings"
)

var (
	errorType  = reflect.TypeFor[error]()
	objectType = reflect.TypeFor[Object]()
)

// Signature is the erased type of a callable: its result type (nil for none),
// its ordered parameter types, and whether a trailing error result follows.
type Signature struct {
	Ret      reflect.Type
	Params   []reflect.Type
	Fallible bool
}

// NewSignature builds a signature. Pass a nil ret for callables with no result.
func NewSignature(ret reflect.Type, params ...reflect.Type) Signature {
	return Signature{Ret: ret, Params: params}
}

// SignatureOf returns the signature of the function type F, e.g.
// SignatureOf[func(int) int](). F must be a function type accepted by NewFunc;
// anything else is a programming error at the call site and panics.
func SignatureOf[F any]() Signature {
	sig, err := signatureFromType(reflect.TypeFor[F]())
	if err != nil {
		panic(err)
	}
	return sig
}

func signatureFromType(t reflect.Type) (Signature, error) {
	if t == nil || t.Kind() != reflect.Func {
		return Signature{}, &ContractError{Op: "Signature", Name: typeName(t), Err: ErrUnsupportedSignature}
	}
	if t.IsVariadic() {
		return Signature{}, &ContractError{Op: "Signature", Name: t.String(), Err: ErrUnsupportedSignature}
	}
	var sig Signature
	if n := t.NumIn(); n > 0 {
		sig.Params = make([]reflect.Type, n)
		for i := range n {
			sig.Params[i] = t.In(i)
		}
	}
	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) == errorType {
			sig.Fallible = true
		} else {
			sig.Ret = t.Out(0)
		}
	case 2:
		if t.Out(1) != errorType {
			return Signature{}, &ContractError{Op: "Signature", Name: t.String(), Err: ErrUnsupportedSignature}
		}
		sig.Ret = t.Out(0)
		sig.Fallible = true
	default:
		return Signature{}, &ContractError{Op: "Signature", Name: t.String(), Err: ErrUnsupportedSignature}
	}
	return sig, nil
}

// Equal is exact equality: same result type, same parameter types in the
// same order, same fallibility. There is no covariance and no conversion.
func (s Signature) Equal(o Signature) bool {
	if s.Ret != o.Ret || s.Fallible != o.Fallible || len(s.Params) != len(o.Params) {
		return false
	}
	for i, p := range s.Params {
		if p != o.Params[i] {
			return false
		}
	}
	return true
}

// FuncType returns the Go function type with this signature.
func (s Signature) FuncType() reflect.Type {
	var out []reflect.Type
	if s.Ret != nil {
		out = append(out, s.Ret)
	}
	if s.Fallible {
		out = append(out, errorType)
	}
	return reflect.FuncOf(s.Params, out, false)
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	switch {
	case s.Ret != nil && s.Fallible:
		b.WriteString(" (" + s.Ret.String() + ", error)")
	case s.Ret != nil:
		b.WriteString(" " + s.Ret.String())
	case s.Fallible:
		b.WriteString(" error")
	}
	return b.String()
}

// signatureFor derives a call signature from a result type parameter and
// the dynamic types of the arguments. An Any argument contributes its stored
// type.
func signatureFor(ret reflect.Type, args []any) (Signature, error) {
	sig := Signature{}
	if ret != voidType {
		sig.Ret = ret
	}
	if len(args) > 0 {
		sig.Params = make([]reflect.Type, len(args))
	}
	for i, a := range args {
		switch a := a.(type) {
		case nil:
			return Signature{}, fmt.Errorf("%w: argument %d is nil, its type cannot be inferred", ErrArgument, i)
		case Any:
			if !a.HasValue() {
				return Signature{}, fmt.Errorf("%w: argument %d is an empty Any", ErrArgument, i)
			}
			sig.Params[i] = a.typ
		default:
			sig.Params[i] = reflect.TypeOf(a)
		}
	}
	return sig, nil
}
