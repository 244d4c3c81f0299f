package refl

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// MaxAlign is the default alignment of a TypeInfo and the largest alignment
// HeapAllocator provides without over-allocating.
const MaxAlign = unsafe.Alignof(uint64(0))

// Allocator provides untyped storage for TypeInfo.Malloc.
type Allocator interface {
	// Allocate returns size bytes aligned to align. goType, when non-nil
	// and of the same size, describes what will live there so the storage
	// can be made visible to the garbage collector.
	Allocate(size, align uintptr, goType reflect.Type) (unsafe.Pointer, error)
	// Release gives back storage returned by Allocate. A nil pointer is a
	// no-op.
	Release(p unsafe.Pointer) error
}

// HeapAllocator allocates from the Go heap and keeps each block reachable
// until it is released.
//
// Storage allocated without a goType is a plain word array: the collector
// does not scan it, so it must not hold the only reference to Go memory.
type HeapAllocator struct {
	// MaxBytes caps the bytes live at once; zero means no limit.
	MaxBytes uintptr

	mu    sync.Mutex
	live  map[unsafe.Pointer]block
	inUse uintptr
}

type block struct {
	keep any // backing allocation, referenced so it stays alive
	size uintptr
}

// NewHeapAllocator creates an allocator capped at maxBytes (0 = unlimited).
func NewHeapAllocator(maxBytes uintptr) *HeapAllocator {
	return &HeapAllocator{MaxBytes: maxBytes}
}

// Allocate implements Allocator.
func (h *HeapAllocator) Allocate(size, align uintptr, goType reflect.Type) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, violation("Allocate", "", ErrZeroSize)
	}
	if align == 0 {
		align = MaxAlign
	}
	if align&(align-1) != 0 {
		return nil, violation("Allocate", "", fmt.Errorf("%w: alignment %d is not a power of two", ErrArgument, align))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.MaxBytes != 0 && h.inUse+size > h.MaxBytes {
		return nil, &AllocError{Size: size, Err: ErrOutOfMemory}
	}

	var (
		p    unsafe.Pointer
		keep any
	)
	if goType != nil && goType.Size() == size && uintptr(goType.Align()) >= align {
		v := reflect.New(goType)
		p, keep = v.UnsafePointer(), v.Interface()
	} else {
		words := (size + MaxAlign - 1) / MaxAlign
		if align > MaxAlign {
			words += (align - MaxAlign) / MaxAlign
		}
		buf := make([]uint64, words)
		base := uintptr(unsafe.Pointer(&buf[0]))
		p, keep = unsafe.Add(unsafe.Pointer(&buf[0]), alignUp(base, align)-base), buf
	}

	if h.live == nil {
		h.live = make(map[unsafe.Pointer]block)
	}
	h.live[p] = block{keep: keep, size: size}
	h.inUse += size
	return p, nil
}

// Release implements Allocator. Releasing a pointer twice, or one this
// allocator did not return, is ErrUnknownPointer.
func (h *HeapAllocator) Release(p unsafe.Pointer) error {
	if p == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.live[p]
	if !ok {
		return violation("Release", "", ErrUnknownPointer)
	}
	delete(h.live, p)
	h.inUse -= b.size
	return nil
}

// InUse returns the bytes currently allocated.
func (h *HeapAllocator) InUse() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inUse
}

// Live returns the number of blocks currently allocated.
func (h *HeapAllocator) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}
