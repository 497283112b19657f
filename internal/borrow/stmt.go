package borrow

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

// checkStmt dispatches one statement and advances currentStmt
// afterward, matching the original's per-statement NLL location
// counter.
func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.checkLet(n.Pattern, n.Type, n.Value, n.Span())
	case *ast.VarStmt:
		c.checkLet(n.Pattern, n.Type, n.Value, n.Span())
	case *ast.ExprStmt:
		c.checkExpr(n.X)
	case *ast.DeclStmt:
		if fd, ok := n.D.(*ast.FuncDecl); ok {
			c.checkFuncDecl(fd)
		}
	}
	c.currentStmt++
}

// checkLet checks a let/var binding. The initializer is checked
// before the pattern is bound, so the new name cannot be referenced
// by its own initializer (`let x = x + 1` is an undefined-name use of
// x, not a self-reference).
func (c *Checker) checkLet(pat ast.Pattern, declared ast.Type, value ast.Expr, span source.Span) {
	loc := c.currentLocation(span)
	if value != nil {
		c.checkExpr(value)
		c.moveIdentIfNeeded(value, loc)
	}
	c.bindPattern(pat, c.resolveType(declared), loc)
}

// bindPattern introduces every place a pattern binds, recursing into
// destructuring patterns the way a struct/tuple `let` binding would.
// t is the pattern's overall type when statically known (nil for
// nested destructured fields, whose individual types this pass does
// not re-derive).
func (c *Checker) bindPattern(pat ast.Pattern, t types.Type, loc Location) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		c.env.DefineTyped(p.Name, p.Mut, t, loc)
		if p.Sub != nil {
			c.bindPattern(p.Sub, t, loc)
		}
	case *ast.TuplePattern:
		for _, e := range p.Elems {
			c.bindPattern(e, nil, loc)
		}
	case *ast.ArrayPattern:
		for _, e := range p.Elems {
			c.bindPattern(e, nil, loc)
		}
		if p.RestName != "" {
			c.env.Define(p.RestName, false, loc)
		}
	case *ast.StructPattern:
		for _, f := range p.Fields {
			if f.Pattern != nil {
				c.bindPattern(f.Pattern, nil, loc)
			} else {
				c.env.Define(f.Name, false, loc)
			}
		}
	case *ast.EnumPattern:
		for _, sub := range p.Payload {
			c.bindPattern(sub, nil, loc)
		}
	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			c.bindPattern(alt, t, loc)
		}
	}
	// WildcardPattern, LiteralPattern, RangePattern bind nothing.
}
