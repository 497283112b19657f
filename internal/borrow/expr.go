package borrow

import "github.com/hivellm/tml/internal/ast"

// checkExpr dispatches one expression node to its borrow-checking
// handler. Expression kinds with no borrow-relevant content (literals,
// path/type expressions, casts of an already-checked operand, etc.)
// fall through the switch with no effect, mirroring the original's
// "other expressions handled as needed" comment.
func (c *Checker) checkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		c.checkIdent(n)
	case *ast.BinaryExpr:
		c.checkBinary(n)
	case *ast.AssignExpr:
		c.checkAssign(n)
	case *ast.UnaryExpr:
		c.checkUnary(n)
	case *ast.PostfixExpr:
		c.checkExpr(n.X)
	case *ast.CallExpr:
		c.checkCall(n)
	case *ast.MethodCallExpr:
		c.checkMethodCall(n)
	case *ast.NewExpr:
		for _, a := range n.Args {
			c.checkExpr(a)
		}
	case *ast.BaseCallExpr:
		for _, a := range n.Args {
			c.checkExpr(a)
		}
	case *ast.FieldExpr:
		c.checkExpr(n.X)
	case *ast.IndexExpr:
		c.checkExpr(n.X)
		c.checkExpr(n.Index)
	case *ast.StructLit:
		c.checkStructLit(n)
	case *ast.TupleLit:
		for _, el := range n.Elems {
			c.checkExpr(el)
			c.moveIdentIfNeeded(el, c.currentLocation(n.Span()))
		}
	case *ast.ArrayLit:
		for _, el := range n.Elems {
			c.checkExpr(el)
			c.moveIdentIfNeeded(el, c.currentLocation(n.Span()))
		}
	case *ast.ArrayRepeatLit:
		c.checkExpr(n.Elem)
		c.checkExpr(n.Count)
	case *ast.BlockExpr:
		c.checkBlock(n)
	case *ast.IfExpr:
		c.checkIf(n)
	case *ast.IfLetExpr:
		c.checkExpr(n.Value)
		c.checkExpr(n.Then)
		if n.Else != nil {
			c.checkExpr(n.Else)
		}
	case *ast.TernaryExpr:
		c.checkExpr(n.Cond)
		c.checkExpr(n.Then)
		c.checkExpr(n.Else)
	case *ast.WhenExpr:
		c.checkWhen(n)
	case *ast.LoopExpr:
		c.checkLoop(n)
	case *ast.WhileExpr:
		c.checkExpr(n.Cond)
		c.loopDepth++
		c.checkExpr(n.Body)
		c.loopDepth--
	case *ast.ForExpr:
		c.checkFor(n)
	case *ast.ReturnExpr:
		if n.Value != nil {
			c.checkExpr(n.Value)
			c.moveIdentIfNeeded(n.Value, c.currentLocation(n.Span()))
		}
	case *ast.BreakExpr:
		if n.Value != nil {
			c.checkExpr(n.Value)
		}
	case *ast.ThrowExpr:
		c.checkExpr(n.Value)
	case *ast.ClosureExpr:
		c.checkClosure(n)
	case *ast.CastExpr:
		c.checkExpr(n.X)
	}
}

func (c *Checker) checkIdent(n *ast.IdentExpr) {
	place, ok := c.env.Lookup(n.Name)
	if !ok {
		// Not a local place — a function/const/builtin name; the type
		// checker already validated the reference.
		return
	}
	loc := c.currentLocation(n.Span())
	c.checkCanUse(place, loc)
	c.env.MarkUsed(place, loc)
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) {
	c.checkExpr(n.Left)
	c.checkExpr(n.Right)
}

func (c *Checker) checkAssign(n *ast.AssignExpr) {
	c.checkExpr(n.Value)
	c.moveIdentIfNeeded(n.Value, c.currentLocation(n.Span()))
	if ident, ok := n.Target.(*ast.IdentExpr); ok {
		if place, ok := c.env.Lookup(ident.Name); ok {
			c.checkCanMutate(place, c.currentLocation(n.Span()))
		}
		return
	}
	c.checkExpr(n.Target)
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) {
	c.checkExpr(n.X)
	if n.Op != ast.OpRef && n.Op != ast.OpMutRef {
		return
	}
	ident, ok := n.X.(*ast.IdentExpr)
	if !ok {
		return
	}
	place, ok := c.env.Lookup(ident.Name)
	if !ok {
		return
	}
	kind := Shared
	if n.Op == ast.OpMutRef {
		kind = Mutable
	}
	loc := c.currentLocation(n.Span())
	c.checkCanBorrow(place, kind, loc)
	c.createBorrow(place, kind, loc)
}

func (c *Checker) checkCall(n *ast.CallExpr) {
	c.checkExpr(n.Callee)
	for _, a := range n.Args {
		c.checkExpr(a)
		c.moveIdentIfNeeded(a, c.currentLocation(a.Span()))
	}
}

// checkMethodCall brackets argument evaluation in a two-phase borrow:
// a method call's receiver is effectively mutably borrowed for the
// whole call, but its arguments may still read it
// (`vec.push(vec.len())`).
func (c *Checker) checkMethodCall(n *ast.MethodCallExpr) {
	c.beginTwoPhaseBorrow()
	c.checkExpr(n.Receiver)
	for _, a := range n.Args {
		c.checkExpr(a)
		c.moveIdentIfNeeded(a, c.currentLocation(a.Span()))
	}
	c.endTwoPhaseBorrow()
}

func (c *Checker) checkStructLit(n *ast.StructLit) {
	for _, f := range n.Fields {
		c.checkExpr(f.Value)
		c.moveIdentIfNeeded(f.Value, c.currentLocation(n.Span()))
	}
	if n.Spread != nil {
		c.checkExpr(n.Spread)
	}
}

func (c *Checker) checkBlock(b *ast.BlockExpr) {
	c.env.PushScope()
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.Tail != nil {
		c.checkExpr(b.Tail)
	}
	c.dropScopePlaces()
	c.env.PopScope()
}

func (c *Checker) checkIf(n *ast.IfExpr) {
	c.checkExpr(n.Cond)
	c.checkExpr(n.Then)
	if n.Else != nil {
		c.checkExpr(n.Else)
	}
}

func (c *Checker) checkWhen(n *ast.WhenExpr) {
	c.checkExpr(n.Scrutinee)
	for _, arm := range n.Arms {
		c.env.PushScope()
		c.bindPattern(arm.Pattern, nil, c.currentLocation(n.Span()))
		if arm.Guard != nil {
			c.checkExpr(arm.Guard)
		}
		c.checkExpr(arm.Body)
		c.dropScopePlaces()
		c.env.PopScope()
	}
}

func (c *Checker) checkLoop(n *ast.LoopExpr) {
	c.loopDepth++
	c.env.PushScope()
	c.checkExpr(n.Body)
	c.dropScopePlaces()
	c.env.PopScope()
	c.loopDepth--
}

func (c *Checker) checkFor(n *ast.ForExpr) {
	c.checkExpr(n.Iterable)
	c.loopDepth++
	c.env.PushScope()
	c.bindPattern(n.Pattern, nil, c.currentLocation(n.Span()))
	c.checkExpr(n.Body)
	c.dropScopePlaces()
	c.env.PopScope()
	c.loopDepth--
}

func (c *Checker) checkClosure(n *ast.ClosureExpr) {
	c.env.PushScope()
	for _, p := range n.Params {
		c.env.DefineTyped(p.Name, false, c.resolveType(p.Type), c.currentLocation(n.Span()))
	}
	c.checkExpr(n.Body)
	c.dropScopePlaces()
	c.env.PopScope()
}
