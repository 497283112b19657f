// Package checker implements the four-pass semantic analysis described
// in spec.md §4.4: declaration registration, use-declaration
// resolution, impl/OOP registration, and function-body checking, all
// sharing one types.Env and one diag.Bag so a single file yields every
// type error it contains in one pass.
//
// Grounded on
// _examples/original_source/compiler/include/types/checker.hpp.
package checker

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/types"
)

// Checker holds the per-module checking state: the shared type
// environment, diagnostic sink, and the handful of "current context"
// fields the original's TypeChecker keeps as private members
// (current_return_type_, current_self_type_, loop_depth_, …).
type Checker struct {
	Env  *types.Env
	errs *diag.Bag

	currentReturn types.Type
	currentSelf   types.Type
	loopDepth     int
	inLowlevel    bool
	inAsync       bool
	loopLabels    []string

	knownNames []string // cache for Levenshtein suggestions, rebuilt per Check call
}

// New constructs a Checker over env, reporting into errs.
func New(env *types.Env, errs *diag.Bag) *Checker {
	return &Checker{Env: env, errs: errs}
}

func (c *Checker) errorf(span ast.Node, code, format string, args ...any) *diag.Diagnostic {
	return c.errs.Errorf(diag.KindType, code, span.Span(), format, args...)
}

// CheckFile runs all four passes over file's declarations.
func (c *Checker) CheckFile(file *ast.File) {
	// Pass 1: declaration registration.
	for _, d := range file.Decls {
		c.registerDecl(d)
	}
	// Pass 2: use-declaration resolution (already folded into pass 1's
	// UseDecl case below since imports have no forward-reference
	// problem the others do — a used name is just a string until
	// looked up).

	// Pass 3: impl/OOP registration (impls reference structs/behaviors
	// that must already be registered from pass 1).
	for _, d := range file.Decls {
		if impl, ok := d.(*ast.ImplDecl); ok {
			c.registerImpl(impl)
		}
	}

	// Pass 4: body checking.
	c.rebuildKnownNames(file)
	for _, d := range file.Decls {
		c.checkDeclBody(d)
	}
}

func (c *Checker) registerDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		c.Env.DeclareFunc(types.RegisterFuncSig(c.Env, n))
	case *ast.StructDecl:
		c.Env.DeclareStruct(types.RegisterStruct(c.Env, n))
	case *ast.EnumDecl:
		c.Env.DeclareEnum(types.RegisterEnum(c.Env, n))
	case *ast.BehaviorDecl:
		c.Env.DeclareBehavior(types.RegisterBehavior(c.Env, n))
	case *ast.TypeAliasDecl:
		r := types.NewResolver(c.Env, nil)
		c.Env.DeclareAlias(n.Name, r.Resolve(n.Target))
	case *ast.ConstDecl:
		c.registerConst(n)
	case *ast.UseDecl:
		c.registerUse(n)
	case *ast.ClassDecl:
		c.registerClass(n)
	case *ast.InterfaceDecl:
		c.registerInterface(n)
	case *ast.ModuleDecl, *ast.DecoratorDecl:
		// no symbol of its own to register
	}
}

func (c *Checker) registerConst(n *ast.ConstDecl) {
	r := types.NewResolver(c.Env, nil)
	var t types.Type
	if n.Type != nil {
		t = r.Resolve(n.Type)
	} else {
		t = c.Env.FreshVar()
	}
	c.Env.BindVar(n.Name, t, false)
	if v, ok := c.EvaluateConstExpr(n.Value, t); ok {
		_ = v // const-value table lives alongside var bindings; codegen re-evaluates as needed
	}
}

func (c *Checker) registerUse(n *ast.UseDecl) {
	base := n.Path.String()
	if n.Glob {
		// Glob imports are resolved lazily by LookupFunc/LookupStruct/…
		// falling through to the registry; nothing to bind by name here.
		return
	}
	if len(n.Items) == 0 {
		local := lastPathSegment(n.Path)
		c.Env.DeclareImport(local, base)
		return
	}
	for _, item := range n.Items {
		local := item.Alias
		if local == "" {
			local = item.Name
		}
		c.Env.DeclareImport(local, base+"::"+item.Name)
	}
}

func lastPathSegment(p *ast.Path) string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

func (c *Checker) registerClass(n *ast.ClassDecl) {
	r := types.NewResolver(c.Env, genericParamNames(n.Generics))
	fields := make([]types.FieldDef, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = types.FieldDef{Name: f.Name, Type: r.Resolve(f.Type), Visibility: f.Visibility}
	}
	methods := map[string]types.FuncSig{}
	for _, m := range n.Methods {
		methods[m.Decl.Name] = types.RegisterFuncSig(c.Env, m.Decl)
	}
	var ctor *types.FuncSig
	if n.Constructor != nil {
		params := make([]types.Param, len(n.Constructor.Params))
		for i, p := range n.Constructor.Params {
			params[i] = types.Param{Name: p.Name, Type: r.Resolve(p.Type)}
		}
		sig := types.FuncSig{Name: "new", Params: params, Ret: types.Named{Name: n.Name}}
		ctor = &sig
	}
	var extends *types.Named
	if n.Extends != nil {
		nt, _ := r.Resolve(n.Extends).(types.Named)
		extends = &nt
	}
	implements := make([]types.Named, len(n.Implements))
	for i, it := range n.Implements {
		nt, _ := r.Resolve(it).(types.Named)
		implements[i] = nt
	}
	c.Env.DeclareClass(&types.ClassDef{
		Name: n.Name, Generics: types.ResolveGenerics(c.Env, n.Generics),
		Extends: extends, Implements: implements, Fields: fields, Methods: methods,
		Constructor: ctor, Sealed: n.Sealed, Abstract: n.Abstract, Decl: n,
	})
}

func (c *Checker) registerInterface(n *ast.InterfaceDecl) {
	methods := map[string]types.FuncSig{}
	for _, m := range n.Methods {
		methods[m.Decl.Name] = types.RegisterFuncSig(c.Env, m.Decl)
	}
	r := types.NewResolver(c.Env, genericParamNames(n.Generics))
	extends := make([]types.Named, len(n.Extends))
	for i, e := range n.Extends {
		nt, _ := r.Resolve(e).(types.Named)
		extends[i] = nt
	}
	c.Env.DeclareInterface(&types.InterfaceDef{Name: n.Name, Extends: extends, Methods: methods, Decl: n})
}

func genericParamNames(gs []ast.GenericParam) []string {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.Name
	}
	return names
}

func (c *Checker) registerImpl(n *ast.ImplDecl) {
	r := types.NewResolver(c.Env, genericParamNames(n.Generics))
	target := r.Resolve(n.Self)
	methods := map[string]types.FuncSig{}
	for _, m := range n.Methods {
		methods[m.Name] = types.RegisterFuncSig(c.Env, m)
	}
	assoc := map[string]types.Type{}
	for name, t := range n.AssocTypes {
		assoc[name] = r.Resolve(t)
	}
	var behavior *types.Named
	if n.Behavior != nil {
		nt, _ := r.Resolve(n.Behavior).(types.Named)
		behavior = &nt
	}
	c.Env.DeclareImpl(&types.ImplDef{Behavior: behavior, Target: target, Methods: methods, AssocTypes: assoc, Decl: n})
}

// checkDeclBody runs pass 4 for one declaration.
func (c *Checker) checkDeclBody(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		c.checkFuncBody(n, nil)
	case *ast.ImplDecl:
		r := types.NewResolver(c.Env, genericParamNames(n.Generics))
		self := r.Resolve(n.Self)
		for _, m := range n.Methods {
			c.checkFuncBody(m, self)
		}
	case *ast.BehaviorDecl:
		for _, m := range n.Methods {
			if m.Body != nil {
				c.checkFuncBody(m, types.Named{Name: "Self"})
			}
		}
	case *ast.ClassDecl:
		c.checkClassBody(n)
	}
}

func (c *Checker) checkFuncBody(d *ast.FuncDecl, self types.Type) {
	if d.Body == nil {
		return
	}
	sig := types.RegisterFuncSig(c.Env, d)
	prevRet, prevSelf, prevAsync, prevLowlevel := c.currentReturn, c.currentSelf, c.inAsync, c.inLowlevel
	c.currentReturn, c.currentSelf, c.inAsync, c.inLowlevel = sig.Ret, self, d.Async, d.Lowlevel
	defer func() {
		c.currentReturn, c.currentSelf, c.inAsync, c.inLowlevel = prevRet, prevSelf, prevAsync, prevLowlevel
	}()

	c.Env.PushScope()
	defer c.Env.PopScope()
	for _, p := range sig.Params {
		c.Env.BindVar(p.Name, p.Type, p.Mut)
	}
	if self != nil {
		c.Env.BindVar("self", self, false)
	}
	bodyType := c.CheckBlock(d.Body)
	if sig.Ret != nil && !types.Equal(sig.Ret, types.Primitive{Kind: types.Unit}) {
		if bodyType != nil && !c.Env.Unify(bodyType, sig.Ret) && !blockAlwaysReturns(d.Body) {
			c.errorf(d, "T020", "function %q returns %s but body produces %s", d.Name, sig.Ret, bodyType)
		}
	}
}

func (c *Checker) checkClassBody(n *ast.ClassDecl) {
	self := types.Named{Name: n.Name}
	if n.Constructor != nil {
		c.Env.PushScope()
		r := types.NewResolver(c.Env, nil)
		for _, p := range n.Constructor.Params {
			c.Env.BindVar(p.Name, r.Resolve(p.Type), false)
		}
		c.Env.BindVar("this", self, true)
		c.CheckBlock(n.Constructor.Body)
		c.Env.PopScope()
	}
	for _, m := range n.Methods {
		c.checkFuncBody(m.Decl, self)
	}
	for _, p := range n.Properties {
		if p.Getter != nil {
			c.Env.PushScope()
			c.Env.BindVar("this", self, false)
			c.CheckBlock(p.Getter)
			c.Env.PopScope()
		}
		if p.Setter != nil {
			c.Env.PushScope()
			c.Env.BindVar("this", self, true)
			c.CheckBlock(p.Setter)
			c.Env.PopScope()
		}
	}
}

// blockAlwaysReturns is a conservative check used to suppress a false
// "wrong return type" diagnostic when every path through a block
// diverges via an explicit `return`/`throw`/`panic`-calling tail
// (full reachability analysis is a borrow/codegen-stage concern, not
// the checker's).
func blockAlwaysReturns(b *ast.BlockExpr) bool {
	if b == nil {
		return false
	}
	for _, s := range b.Stmts {
		if es, ok := s.(*ast.ExprStmt); ok {
			if _, ok := es.X.(*ast.ReturnExpr); ok {
				return true
			}
		}
	}
	if b.Tail == nil {
		return false
	}
	switch t := b.Tail.(type) {
	case *ast.ReturnExpr, *ast.ThrowExpr:
		return true
	case *ast.CallExpr:
		if id, ok := t.Callee.(*ast.IdentExpr); ok && id.Name == "panic" {
			return true
		}
	case *ast.IfExpr:
		thenRet := blockAlwaysReturns(t.Then)
		if t.Else == nil {
			return false
		}
		switch e := t.Else.(type) {
		case *ast.BlockExpr:
			return thenRet && blockAlwaysReturns(e)
		case *ast.IfExpr:
			return thenRet && exprAlwaysReturns(e)
		}
	}
	return false
}

func exprAlwaysReturns(e ast.Expr) bool {
	if ie, ok := e.(*ast.IfExpr); ok {
		thenRet := blockAlwaysReturns(ie.Then)
		if ie.Else == nil {
			return false
		}
		switch el := ie.Else.(type) {
		case *ast.BlockExpr:
			return thenRet && blockAlwaysReturns(el)
		case *ast.IfExpr:
			return thenRet && exprAlwaysReturns(el)
		}
	}
	return false
}

func (c *Checker) rebuildKnownNames(file *ast.File) {
	var names []string
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			names = append(names, n.Name)
		case *ast.StructDecl:
			names = append(names, n.Name)
		case *ast.EnumDecl:
			names = append(names, n.Name)
		case *ast.BehaviorDecl:
			names = append(names, n.Name)
		case *ast.ClassDecl:
			names = append(names, n.Name)
		case *ast.InterfaceDecl:
			names = append(names, n.Name)
		}
	}
	for name := range types.Builtins {
		names = append(names, name)
	}
	c.knownNames = names
}

// undefinedNameError reports a T001-class error with Levenshtein-based
// suggestions, per checker.hpp's find_similar_names/get_all_known_names.
func (c *Checker) undefinedNameError(node ast.Node, kind, name string) {
	d := c.errorf(node, "T001", "undefined %s %q", kind, name)
	for _, s := range FindSimilarNames(name, c.knownNames, 3) {
		d.WithNote("did you mean %q?", s)
	}
}
