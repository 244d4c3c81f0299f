package snapshot

import (
	"cmp"
	"slices"
)

func sortTypes(ts []TypeRecord) {
	slices.SortFunc(ts, func(a, b TypeRecord) int { return cmp.Compare(a.ID, b.ID) })
}

func sortBases(bs []BaseRecord) {
	slices.SortFunc(bs, func(a, b BaseRecord) int { return cmp.Compare(a.Name, b.Name) })
}

// sortFields orders fields by name, keeping same-named fields in insertion
// order as a FieldList does.
func sortFields(fs []FieldRecord) {
	slices.SortStableFunc(fs, func(a, b FieldRecord) int { return cmp.Compare(a.Name, b.Name) })
}
