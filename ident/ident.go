// Package ident assigns stable numeric identifiers to names.
//
// An ID is the 64-bit xxh3 hash of the name, so every process computes the
// same ID for the same name without coordinating. The Registry remembers
// which names it has seen, detects hash collisions, and comes pre-populated
// with the well-known operation names in Meta.
package ident

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/zeebo/xxh3"
)

// ID is a stable, process-wide identifier for a name.
type ID uint64

// Hash returns the ID of name. It is a pure function of the string.
func Hash(name string) ID {
	return ID(xxh3.HashString(name))
}

// CollisionError reports two names that hash to the same ID.
type CollisionError struct {
	ID       ID
	Existing string
	Name     string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("ident: %q collides with %q at %#x", e.Name, e.Existing, uint64(e.ID))
}

// Registry interns names. Registered IDs are never revoked.
//
// The registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]ID
	byID   map[ID]string
}

// NewRegistry creates a registry holding the Meta vocabulary.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	for _, name := range MetaNames() {
		r.MustRegister(name)
	}
	return r
}

// NewEmptyRegistry creates a registry with no names.
func NewEmptyRegistry() *Registry {
	return &Registry{
		byName: make(map[string]ID, 128),
		byID:   make(map[ID]string, 128),
	}
}

// Register returns the ID for name, recording it on first use. Registering
// the same name again returns the same ID. A different name with the same
// hash is a *CollisionError.
func (r *Registry) Register(name string) (ID, error) {
	// Fast path: read-only lookup
	r.mu.RLock()
	if id, ok := r.byName[name]; ok {
		r.mu.RUnlock()
		return id, nil
	}
	r.mu.RUnlock()

	id := Hash(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[id]; ok {
		if existing == name {
			return id, nil
		}
		return 0, &CollisionError{ID: id, Existing: existing, Name: name}
	}
	r.byName[name] = id
	r.byID[id] = name
	return id, nil
}

// MustRegister is Register for static vocabularies; it panics on collision.
func (r *Registry) MustRegister(name string) ID {
	id, err := r.Register(name)
	if err != nil {
		panic(err)
	}
	return id
}

// RegisterAll registers several names and returns their IDs in order.
func (r *Registry) RegisterAll(names ...string) ([]ID, error) {
	ids := make([]ID, len(names))
	for i, name := range names {
		id, err := r.Register(name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// Lookup returns the ID of a registered name.
func (r *Registry) Lookup(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the name registered for id.
func (r *Registry) Name(id ID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byID[id]
	return name, ok
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	result := make([]string, 0, len(r.byName))
	for name := range r.byName {
		result = append(result, name)
	}
	r.mu.RUnlock()
	sort.Strings(result)
	return result
}

// ---------------------------------------------------------------------------
// Type identities
// ---------------------------------------------------------------------------

// TypeName returns the canonical name of a Go type: "import/path.Name" for
// named types and reflect's spelling for everything else.
func TypeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// TypeID returns the identity of the type with the given canonical name.
func TypeID(name string) ID {
	return Hash(name)
}

// TypeIDOf returns the identity of T.
func TypeIDOf[T any]() ID {
	return TypeID(TypeName(reflect.TypeFor[T]()))
}
