package borrow

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/types"
)

// Checker is the ownership/borrow-checking pass. One Checker checks
// an entire file; env is reset between top-level function bodies
// (each function's places are local to it) but errs accumulates
// across all of them.
//
// Grounded on
// _examples/original_source/packages/compiler/include/tml/borrow/checker.hpp's
// BorrowChecker class.
type Checker struct {
	env *Env
	tenv *types.Env // the type checker's env, for Copy/struct-field lookups
	errs *diag.Bag

	currentStmt          int
	loopDepth            int
	twoPhaseBorrowActive bool
}

// New returns a Checker that reports into errs and resolves type
// information (for Copy-type decisions and struct field lookups)
// through tenv.
func New(tenv *types.Env, errs *diag.Bag) *Checker {
	return &Checker{env: NewEnv(), tenv: tenv, errs: errs}
}

// CheckFile borrow-checks every function, method, and class
// constructor body declared at the top level of file.
func (c *Checker) CheckFile(file *ast.File) {
	for _, d := range file.Decls {
		c.checkTopDecl(d)
	}
}

func (c *Checker) checkTopDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		c.checkFuncDecl(n)
	case *ast.ImplDecl:
		c.checkImplDecl(n)
	case *ast.ClassDecl:
		c.checkClassDecl(n)
	}
}

// checkFuncDecl checks one free function's body in a fresh place
// environment seeded with its parameters.
func (c *Checker) checkFuncDecl(f *ast.FuncDecl) {
	if f.Body == nil {
		return
	}
	c.env = NewEnv()
	c.currentStmt = 0
	for _, p := range f.Params {
		c.defineParam(p.Name, p.Type)
	}
	c.checkBlockBody(f.Body)
}

func (c *Checker) checkImplDecl(impl *ast.ImplDecl) {
	for _, m := range impl.Methods {
		c.checkMethodDecl(m)
	}
}

func (c *Checker) checkClassDecl(cl *ast.ClassDecl) {
	if cl.Constructor != nil {
		c.env = NewEnv()
		c.currentStmt = 0
		for _, p := range cl.Constructor.Params {
			c.defineParam(p.Name, p.Type)
		}
		c.checkBlockBody(cl.Constructor.Body)
	}
	for _, m := range cl.Methods {
		c.checkMethodDecl(m.Decl)
	}
}

func (c *Checker) checkMethodDecl(f *ast.FuncDecl) {
	if f == nil || f.Body == nil {
		return
	}
	c.env = NewEnv()
	c.currentStmt = 0
	selfMut := false
	for _, p := range f.Params {
		if p.Name == "self" {
			if rt, ok := p.Type.(*ast.RefType); ok {
				selfMut = rt.Mutable
			}
			c.env.Define("self", selfMut, c.currentLocation(f.Span()))
			continue
		}
		c.defineParam(p.Name, p.Type)
	}
	c.checkBlockBody(f.Body)
}

// defineParam introduces a function parameter as a place; mutability
// for a by-value binding is never implied by the parameter's own
// declared type the way a local `let mut` is — a parameter is always
// an immutable binding unless its type is `mut ref`.
func (c *Checker) defineParam(name string, t ast.Type) {
	mut := false
	if rt, ok := t.(*ast.RefType); ok {
		mut = rt.Mutable
	}
	resolved := c.resolveType(t)
	c.env.DefineTyped(name, mut, resolved, Location{})
}

// resolveType converts an AST type node into a semantic type using
// the checker's registry, with no generic parameters in scope (the
// borrow pass only needs this to decide Copy-vs-Move, never to
// unify).
func (c *Checker) resolveType(t ast.Type) types.Type {
	if t == nil {
		return nil
	}
	return types.NewResolver(c.tenv, nil).Resolve(t)
}

// checkBlockBody checks a function/method body's block directly,
// without the extra scope push checkBlock(*ast.BlockExpr) would add —
// the parameters already live in the outermost scope.
func (c *Checker) checkBlockBody(b *ast.BlockExpr) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
	if b.Tail != nil {
		c.checkExpr(b.Tail)
	}
}

// isCopyType reports whether a value of type t is implicitly copied
// on use rather than moved, per spec.md's Copy-type list: every
// primitive except Str, raw pointers, references, Unit, and any
// Named type that derives Copy. Tuples and fixed arrays are Copy iff
// every element type is.
func (c *Checker) isCopyType(t types.Type) bool {
	switch tt := t.(type) {
	case types.Primitive:
		return tt.Kind != types.Str
	case types.Ref, types.Ptr:
		return true
	case types.Tuple:
		for _, e := range tt.Elems {
			if !c.isCopyType(e) {
				return false
			}
		}
		return true
	case types.Array:
		return c.isCopyType(tt.Elem)
	case types.Named:
		if def, ok := c.tenv.LookupStruct(tt.Name); ok {
			return hasDerive(def.Derives, "Copy")
		}
		if def, ok := c.tenv.LookupEnum(tt.Name); ok {
			return hasDerive(def.Derives, "Copy")
		}
		return false
	default:
		return false
	}
}

func hasDerive(derives []string, name string) bool {
	for _, d := range derives {
		if d == name {
			return true
		}
	}
	return false
}
