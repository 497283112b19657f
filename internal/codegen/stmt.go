package codegen

import (
	"fmt"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// genBlockInline emits a block's statements inside a drop scope of its
// own. No alloca hoisting is done: each `let` emits its alloca at the
// point where the binding appears (see genLet), not in the function's
// entry block.
func (g *Generator) genBlockInline(b *ast.BlockExpr) string {
	g.pushScope()
	for _, s := range b.Stmts {
		g.genStmt(s)
		if g.blockTerminated {
			break
		}
	}
	result := "void"
	if b.Tail != nil && !g.blockTerminated {
		result = g.genExpr(b.Tail)
	}
	if !g.blockTerminated {
		g.emitScopeDrops()
	}
	g.popScope()
	return result
}

func (g *Generator) genStmt(s ast.Stmt) {
	g.emitCoverageLine(s.Span())
	switch n := s.(type) {
	case *ast.LetStmt:
		g.genLet(n.Pattern, n.Type, n.Value)
	case *ast.VarStmt:
		g.genLet(n.Pattern, n.Type, n.Value)
	case *ast.ExprStmt:
		g.genExpr(n.X)
	case *ast.DeclStmt:
		if fd, ok := n.D.(*ast.FuncDecl); ok {
			g.genFunc(fd, nil, fd.Name)
		}
	}
}

func (g *Generator) genLet(pat ast.Pattern, declared ast.Type, value ast.Expr) {
	ident, ok := pat.(*ast.IdentPattern)
	if !ok {
		// A non-identifier pattern is not bound: the initializer is
		// evaluated for its side effects and no locals are created.
		if value != nil {
			g.genExpr(value)
		}
		return
	}
	var t types.Type
	if declared != nil {
		t = g.resolveType(declared)
	}
	var init string
	if value != nil {
		init = g.genExpr(value)
		if t == nil {
			t = g.inferType(value)
		}
	}
	llt := g.LowerType(t)
	slot := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", slot, llt))
	if value != nil {
		g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", llt, init, slot))
	}
	g.defineLocal(ident.Name, slot, t)
	g.recordDrop(slot, t)
}
