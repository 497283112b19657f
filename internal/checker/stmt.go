package checker

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// CheckBlock type checks every statement in b in its own scope and
// returns the type of its tail expression (Unit if there is none).
func (c *Checker) CheckBlock(b *ast.BlockExpr) types.Type {
	if b == nil {
		return types.Primitive{Kind: types.Unit}
	}
	c.Env.PushScope()
	defer c.Env.PopScope()
	for _, s := range b.Stmts {
		c.CheckStmt(s)
	}
	if b.Tail != nil {
		return c.CheckExpr(b.Tail)
	}
	return types.Primitive{Kind: types.Unit}
}

// CheckStmt type checks one statement.
func (c *Checker) CheckStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.checkBinding(n.Pattern, n.Type, n.Value)
	case *ast.VarStmt:
		c.checkBinding(n.Pattern, n.Type, n.Value)
	case *ast.ExprStmt:
		c.CheckExpr(n.X)
	case *ast.DeclStmt:
		c.registerDecl(n.D)
		c.checkDeclBody(n.D)
	}
}

func (c *Checker) checkBinding(pat ast.Pattern, declared ast.Type, value ast.Expr) {
	valueType := c.CheckExpr(value)
	if declared != nil {
		r := types.NewResolver(c.Env, nil)
		want := r.Resolve(declared)
		if !c.Env.Unify(valueType, want) {
			c.errorf(value, "T021", "cannot assign %s to a binding declared %s", valueType, want)
		}
		c.BindPattern(pat, want)
		return
	}
	c.BindPattern(pat, valueType)
}
