package refl

import (
	"errors"
	"fmt"
	"testing"
)

func TestCastExact(t *testing.T) {
	a := MakeAny(42)
	v, err := Cast[int](a)
	if err != nil {
		t.Fatalf("Cast[int]: %v", err)
	}
	if v != 42 {
		t.Errorf("v = %d, want 42", v)
	}

	if _, err := Cast[int64](a); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Cast[int64] err = %v, want ErrTypeMismatch", err)
	}

	type myInt int
	if _, err := Cast[myInt](a); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Cast[myInt] err = %v, want ErrTypeMismatch", err)
	}
}

func TestCastInterfaceType(t *testing.T) {
	var s fmt.Stringer = TypeID(5)
	a := MakeAny(s)

	if _, err := Cast[TypeID](a); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("dynamic type should not match, err = %v", err)
	}
	got, err := Cast[fmt.Stringer](a)
	if err != nil {
		t.Fatalf("Cast[fmt.Stringer]: %v", err)
	}
	if got != s {
		t.Errorf("got %v, want %v", got, s)
	}

	var nilStringer fmt.Stringer
	got, err = Cast[fmt.Stringer](MakeAny(nilStringer))
	if err != nil || got != nil {
		t.Errorf("nil interface round trip = %v, %v", got, err)
	}
}

func TestEmptyAny(t *testing.T) {
	var a Any
	if a.HasValue() {
		t.Error("zero Any should be empty")
	}
	if _, err := Cast[int](a); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Cast on empty Any err = %v", err)
	}
	if a.String() != "<empty>" {
		t.Errorf("String() = %q", a.String())
	}
}
