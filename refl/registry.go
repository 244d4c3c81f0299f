package refl

import (
	"cmp"
	"slices"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("udrefl.refl")

var defaultAllocator Allocator = NewHeapAllocator(0)

// Registry owns every TypeInfo, keyed by identity. Entries are created on
// first request and live as long as the registry; the pointers it hands out
// are stable and may be cached.
type Registry struct {
	mu    sync.RWMutex
	types map[TypeID]*TypeInfo
	alloc Allocator
}

// Option configures a Registry.
type Option func(*Registry)

// WithAllocator makes every TypeInfo of the registry allocate through a.
func WithAllocator(a Allocator) Option {
	return func(r *Registry) { r.alloc = a }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		types: make(map[TypeID]*TypeInfo),
		alloc: defaultAllocator,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return NewRegistry() })

// Default returns the process-wide registry, creating it on first use. It
// is never torn down. Prefer passing a *Registry explicitly; Default exists
// for code that has no other way to reach one.
func Default() *Registry { return defaultRegistry() }

// GetTypeInfo returns the descriptor for id, creating an empty one if none
// exists yet.
func (r *Registry) GetTypeInfo(id TypeID) *TypeInfo {
	// Fast path: read-only lookup
	r.mu.RLock()
	if t, ok := r.types[id]; ok {
		r.mu.RUnlock()
		return t
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if t, ok := r.types[id]; ok {
		return t
	}
	t := newTypeInfo(id, r.alloc)
	r.types[id] = t
	log.Debugf("created type info %s", id)
	return t
}

// Lookup returns the descriptor for id without creating one.
func (r *Registry) Lookup(id TypeID) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Types returns every descriptor ordered by identity.
func (r *Registry) Types() []*TypeInfo {
	r.mu.RLock()
	result := make([]*TypeInfo, 0, len(r.types))
	for _, t := range r.types {
		result = append(result, t)
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b *TypeInfo) int {
		return cmp.Compare(a.id, b.id)
	})
	return result
}
