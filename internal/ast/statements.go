package ast

func (*LetStmt) stmtNode()    {}
func (*VarStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()   {}
func (*DeclStmt) stmtNode()   {}

// LetStmt is an immutable binding. The parser accepts a missing type
// annotation and leaves Type nil; the checker then binds the
// initializer's type and reports no diagnostic for the omission.
type LetStmt struct {
	base
	Pattern Pattern
	Type    Type // nil if omitted
	Value   Expr
}

// VarStmt is a mutable binding. `var x = e` is sugar for
// `let mut x = e` and is desugared by the parser into the same
// Pattern shape (an IdentPattern with Mut set), so the checker only
// ever sees one binding-statement kind's semantics split across
// Let/Var by lexical keyword, not by a third AST shape.
type VarStmt struct {
	base
	Pattern Pattern
	Type    Type
	Value   Expr
}

// ExprStmt is an expression used as a statement via a trailing `;`
// (or a block's non-tail position).
type ExprStmt struct {
	base
	X Expr
}

// DeclStmt is a declaration nested inside a block (e.g. a local
// `fn`, `struct`, or `const`).
type DeclStmt struct {
	base
	D Decl
}
