// Package ast defines the Language's abstract syntax tree: five
// node families (types, patterns, expressions, statements,
// declarations), each a tagged sum realized as a Go interface with
// one concrete struct per variant — the sum-type-with-exhaustive-switch
// shape spec.md §9 calls for, replacing the source compiler's
// variant-plus-`is<T>()`/`as<T>()` accessor idiom.
//
// Every node owns its children exclusively (spec.md §9: "no arenas
// are required for the AST itself"); every node carries a Span.
package ast

import "github.com/hivellm/tml/internal/source"

// Node is the base of every AST node.
type Node interface {
	Span() source.Span
}

// Type is any type-node variant (spec.md §3.3 "Type nodes").
type Type interface {
	Node
	typeNode()
}

// Pattern is any pattern-node variant (spec.md §3.3 "Pattern nodes").
type Pattern interface {
	Node
	patternNode()
}

// Expr is any expression-node variant (spec.md §3.3 "Expression
// nodes").
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement-node variant (spec.md §3.3 "Statement
// nodes").
type Stmt interface {
	Node
	stmtNode()
}

// Decl is any declaration-node variant (spec.md §3.3 "Declaration
// nodes", including the OOP overlay).
type Decl interface {
	Node
	declNode()
}

// base embeds the span every node must carry.
type base struct{ Sp source.Span }

func (b base) Span() source.Span { return b.Sp }

// Ident is a bare identifier, reused across every node family that
// needs a name (parameter names, field names, pattern bindings, …).
type Ident struct {
	base
	Name string
}

// Path is a qualified name, e.g. `a::b::c` (used by both type nodes and
// path expressions). It holds only the segments; generic and
// const-generic arguments live on the enclosing NamedType or PathExpr.
type Path struct {
	base
	Segments []string
}

func (p *Path) String() string {
	s := ""
	for i, seg := range p.Segments {
		if i > 0 {
			s += "::"
		}
		s += seg
	}
	return s
}
