package ast

func (*WildcardPattern) patternNode() {}
func (*IdentPattern) patternNode()    {}
func (*LiteralPattern) patternNode()  {}
func (*TuplePattern) patternNode()    {}
func (*StructPattern) patternNode()   {}
func (*EnumPattern) patternNode()     {}
func (*OrPattern) patternNode()       {}
func (*RangePattern) patternNode()    {}
func (*ArrayPattern) patternNode()    {}

// WildcardPattern is `_`.
type WildcardPattern struct{ base }

// IdentPattern binds a name, optionally `mut`, with an optional
// `@`-style sub-binding pattern (`name @ pattern`).
type IdentPattern struct {
	base
	Name string
	Mut  bool
	Sub  Pattern // nil if no sub-binding
}

// LiteralPattern matches a literal value exactly.
type LiteralPattern struct {
	base
	Value Expr // one of the literal Expr kinds
}

// TuplePattern destructures a tuple; Rest marks the position of a
// `..` rest pattern, or -1 if none is present.
type TuplePattern struct {
	base
	Elems []Pattern
	Rest  int
}

// StructFieldPattern binds one field of a StructPattern.
type StructFieldPattern struct {
	Name    string
	Pattern Pattern // nil means shorthand `name` binds a same-named variable
}

// StructPattern destructures a struct; Rest indicates a trailing `..`
// was present, leaving unmatched fields in their current state.
type StructPattern struct {
	base
	Type   *Path
	Fields []StructFieldPattern
	Rest   bool
}

// EnumPattern matches an enum variant with optional payload
// sub-patterns.
type EnumPattern struct {
	base
	Type    *Path
	Variant string
	Payload []Pattern // nil if the variant carries no payload
}

// OrPattern is `p1 | p2 | …`, legal only at the top level of a match
// arm per spec.md §4.2.
type OrPattern struct {
	base
	Alternatives []Pattern
}

// RangePattern matches an exclusive (`to`) or inclusive (`through`)
// range.
type RangePattern struct {
	base
	Low, High Expr
	Inclusive bool
}

// ArrayPattern destructures a fixed array or slice; Rest is the index
// of a `..` rest element, or -1 if none. RestName is the identifier
// bound to the rest slice, if the rest pattern was named.
type ArrayPattern struct {
	base
	Elems    []Pattern
	Rest     int
	RestName string
}
