// Package refl implements runtime type descriptors and type-erased dispatch.
//
// This package contains:
//   - Object handles: non-owning (type ID, address) pairs
//   - Any: opaque values recoverable only by exact type
//   - Fields: instance variables, static values and callables
//   - FieldList: name-ordered multimap with first-exact-match overload resolution
//   - TypeInfo: per-type layout record with an allocate/construct/destruct facade
//   - Registry: get-or-create store of TypeInfo keyed by TypeID
//
// Registration (filling in TypeInfo and its FieldList) is not synchronized and
// must complete before dispatch runs concurrently. Only the Registry map itself
// is guarded.
package refl
