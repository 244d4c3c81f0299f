package refl

import (
	"errors"
	"testing"
	"unsafe"
)

func TestInvalidObject(t *testing.T) {
	obj := InvalidObject()
	if obj.IsValid() {
		t.Error("InvalidObject should not be valid")
	}
	if obj.ID() != InvalidTypeID {
		t.Errorf("ID = %v, want InvalidTypeID", obj.ID())
	}
	if obj.Pointer() != nil {
		t.Error("InvalidObject should have a nil pointer")
	}
	var zero Object
	if zero.IsValid() {
		t.Error("zero Object should not be valid")
	}
}

func TestVar(t *testing.T) {
	type pair struct {
		A int32
		B int64
	}
	p := &pair{A: 1, B: 2}
	obj := ObjectOf(7, p)
	if !obj.IsValid() || obj.ID() != 7 {
		t.Fatalf("unexpected handle %v", obj)
	}

	b, err := Var[int64](obj, unsafe.Offsetof(p.B))
	if err != nil {
		t.Fatalf("Var: %v", err)
	}
	if *b != 2 {
		t.Errorf("*b = %d, want 2", *b)
	}
	*b = 40
	if p.B != 40 {
		t.Errorf("write through Var not visible, B = %d", p.B)
	}
}

func TestVarChecks(t *testing.T) {
	if _, err := Var[int](InvalidObject(), 0); !errors.Is(err, ErrInvalidObject) {
		t.Errorf("nil handle: err = %v, want ErrInvalidObject", err)
	}

	var buf [4]uint64
	obj := NewObject(1, unsafe.Pointer(&buf[0]))
	if _, err := Var[uint64](obj, 1); !errors.Is(err, ErrMisaligned) {
		t.Errorf("offset 1: err = %v, want ErrMisaligned", err)
	}
	if _, err := Var[byte](obj, 1); err != nil {
		t.Errorf("byte at offset 1 should be fine: %v", err)
	}
	if !IsContractViolation(func() error { _, err := Var[uint64](obj, 1); return err }()) {
		t.Error("misaligned access should be a contract violation")
	}
}

func TestStrictModePanics(t *testing.T) {
	SetStrict(true)
	defer SetStrict(false)

	defer func() {
		r := recover()
		ce, ok := r.(*ContractError)
		if !ok {
			t.Fatalf("recovered %v, want *ContractError", r)
		}
		if !errors.Is(ce, ErrInvalidObject) {
			t.Errorf("panic error = %v, want ErrInvalidObject", ce)
		}
	}()
	Var[int](InvalidObject(), 0)
	t.Fatal("expected panic")
}
