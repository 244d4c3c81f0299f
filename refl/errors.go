package refl

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Contract violations. These are programmer errors: the registration or the
// call site disagrees with what was registered.
var (
	ErrFieldCount           = errors.New("name must resolve to exactly one field")
	ErrFieldShape           = errors.New("field has the wrong shape")
	ErrSignatureMismatch    = errors.New("signature mismatch")
	ErrNoMatchingOverload   = errors.New("no matching overload")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrZeroSize             = errors.New("type has zero size")
	ErrInvalidObject        = errors.New("invalid object handle")
	ErrMisaligned           = errors.New("misaligned address")
	ErrArgument             = errors.New("bad argument")
	ErrUnsupportedSignature = errors.New("unsupported function signature")
	ErrUnknownPointer       = errors.New("pointer was not allocated by this allocator")
	ErrVirtualBase          = errors.New("virtual base offsets are not resolvable")
	ErrNoSuchBase           = errors.New("no such base")
	ErrAmbiguousBase        = errors.New("base is reachable along more than one path")
	ErrOutOfBounds          = errors.New("field lies outside the type's storage")
)

// ErrOutOfMemory is the resource failure returned when an allocation cannot
// be satisfied.
var ErrOutOfMemory = errors.New("out of memory")

// ContractError reports a contract violation detected at runtime.
type ContractError struct {
	Op   string // operation, e.g. "Call", "Get", "Malloc"
	Name string // field or type name involved, may be empty
	Err  error  // one of the Err* sentinels
}

func (e *ContractError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("refl: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("refl: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

// AllocError reports an allocation that could not be satisfied.
type AllocError struct {
	Size uintptr
	Err  error
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("refl: allocate %d bytes: %v", e.Size, e.Err)
}

func (e *AllocError) Unwrap() error { return e.Err }

// CallError wraps an error returned by a registered callable.
type CallError struct {
	Name string
	Err  error
}

func (e *CallError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("refl: call: %v", e.Err)
	}
	return fmt.Sprintf("refl: call %q: %v", e.Name, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

var strict atomic.Bool

// SetStrict switches contract violations from returned errors to panics.
// Resource failures and errors returned by callables are unaffected.
func SetStrict(on bool) { strict.Store(on) }

// Strict reports whether contract violations panic.
func Strict() bool { return strict.Load() }

// violation builds a ContractError, panicking with it in strict mode.
func violation(op, name string, err error) error {
	e := &ContractError{Op: op, Name: name, Err: err}
	if strict.Load() {
		panic(e)
	}
	return e
}

// IsContractViolation reports whether err is, or wraps, a ContractError.
func IsContractViolation(err error) bool {
	var ce *ContractError
	return errors.As(err, &ce)
}
