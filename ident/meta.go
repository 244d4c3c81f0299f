package ident

// Meta names the operations every participant agrees on. Member names
// follow the convention of a double-underscore prefix.
var Meta = struct {
	Malloc, Free, AlignedMalloc, AlignedFree string

	Ctor, Dtor string

	Add, Sub, Mul, Div, Mod string

	Eq, Ne, Lt, Le, Gt, Ge string

	And, Or, Not string

	Pos, Neg, Deref, Ref string

	Inc, Dec string

	BAnd, BOr, BNot, BXor, Shl, Shr string

	Assign, AssignAdd, AssignSub, AssignMul, AssignDiv, AssignMod    string
	AssignBAnd, AssignBOr, AssignBXor, AssignShl, AssignShr          string
	New, NewArray, Delete, DeleteArray                               string
	Member, Call, Comma, Subscript                                   string
	DefaultConstructor, CopyConstructor, MoveConstructor, Destructor string
}{
	Malloc:        "malloc",
	Free:          "free",
	AlignedMalloc: "aligned_malloc",
	AlignedFree:   "aligned_free",

	Ctor: "__ctor",
	Dtor: "__dtor",

	Add: "__add",
	Sub: "__sub",
	Mul: "__mul",
	Div: "__div",
	Mod: "__mod",

	Eq: "__eq",
	Ne: "__ne",
	Lt: "__lt",
	Le: "__le",
	Gt: "__gt",
	Ge: "__ge",

	And: "__and",
	Or:  "__or",
	Not: "__not",

	Pos:   "__pos",
	Neg:   "__neg",
	Deref: "__deref",
	Ref:   "__ref",

	Inc: "__inc",
	Dec: "__dec",

	BAnd: "__band",
	BOr:  "__bor",
	BNot: "__bnot",
	BXor: "__bxor",
	Shl:  "__shl",
	Shr:  "__shr",

	Assign:     "__assign",
	AssignAdd:  "__assign_add",
	AssignSub:  "__assign_sub",
	AssignMul:  "__assign_mul",
	AssignDiv:  "__assign_div",
	AssignMod:  "__assign_mod",
	AssignBAnd: "__assign_band",
	AssignBOr:  "__assign_bor",
	AssignBXor: "__assign_bxor",
	AssignShl:  "__assign_shl",
	AssignShr:  "__assign_shr",

	New:         "__new",
	NewArray:    "__new_array",
	Delete:      "__delete",
	DeleteArray: "__delete_array",

	Member:    "__member",
	Call:      "__call",
	Comma:     "__comma",
	Subscript: "__subscript",

	// Must match the reserved names in package refl.
	DefaultConstructor: "_default_constructor",
	CopyConstructor:    "_copy_constructor",
	MoveConstructor:    "_move_constructor",
	Destructor:         "_destructor",
}

// MetaNames returns the Meta vocabulary in declaration order.
func MetaNames() []string {
	m := Meta
	return []string{
		m.Malloc, m.Free, m.AlignedMalloc, m.AlignedFree,
		m.Ctor, m.Dtor,
		m.Add, m.Sub, m.Mul, m.Div, m.Mod,
		m.Eq, m.Ne, m.Lt, m.Le, m.Gt, m.Ge,
		m.And, m.Or, m.Not,
		m.Pos, m.Neg, m.Deref, m.Ref,
		m.Inc, m.Dec,
		m.BAnd, m.BOr, m.BNot, m.BXor, m.Shl, m.Shr,
		m.Assign, m.AssignAdd, m.AssignSub, m.AssignMul, m.AssignDiv, m.AssignMod,
		m.AssignBAnd, m.AssignBOr, m.AssignBXor, m.AssignShl, m.AssignShr,
		m.New, m.NewArray, m.Delete, m.DeleteArray,
		m.Member, m.Call, m.Comma, m.Subscript,
		m.DefaultConstructor, m.CopyConstructor, m.MoveConstructor, m.Destructor,
	}
}
