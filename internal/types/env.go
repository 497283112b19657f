package types

// Env is the checker's working type environment for one module: local
// symbol tables overlaid on a shared Registry for cross-module lookup,
// plus lexical variable scopes and the unification state for inference
// variables.
//
// Grounded on
// _examples/original_source/packages/compiler/src/types/env_lookups.cpp
// (TypeEnv::lookup_* falling through to the module registry on a miss)
// and .../compiler/include/types/env_stability.hpp (module-local
// symbol tables alongside a registry pointer).
type Env struct {
	registry   *Registry
	modulePath string

	funcs      map[string][]FuncSig
	structs    map[string]*StructDef
	enums      map[string]*EnumDef
	behaviors  map[string]*BehaviorDef
	classes    map[string]*ClassDef
	interfaces map[string]*InterfaceDef
	aliases    map[string]Type
	impls      []*ImplDef

	imports map[string]string // local name -> "module::path::Symbol"

	scopes []map[string]varBinding
	nextTV uint32
	subst  map[uint32]Type
}

type varBinding struct {
	Type Type
	Mut  bool
}

// NewEnv creates an environment for modulePath backed by registry.
func NewEnv(registry *Registry, modulePath string) *Env {
	return &Env{
		registry: registry, modulePath: modulePath,
		funcs: map[string][]FuncSig{}, structs: map[string]*StructDef{},
		enums: map[string]*EnumDef{}, behaviors: map[string]*BehaviorDef{},
		classes: map[string]*ClassDef{}, interfaces: map[string]*InterfaceDef{},
		aliases: map[string]Type{}, imports: map[string]string{},
		scopes: []map[string]varBinding{{}}, subst: map[uint32]Type{},
	}
}

// --- declaration registration ---

func (e *Env) DeclareFunc(sig FuncSig)           { e.funcs[sig.Name] = append(e.funcs[sig.Name], sig) }
func (e *Env) DeclareStruct(d *StructDef)        { e.structs[d.Name] = d }
func (e *Env) DeclareEnum(d *EnumDef)            { e.enums[d.Name] = d }
func (e *Env) DeclareBehavior(d *BehaviorDef)    { e.behaviors[d.Name] = d }
func (e *Env) DeclareClass(d *ClassDef)          { e.classes[d.Name] = d }
func (e *Env) DeclareInterface(d *InterfaceDef)  { e.interfaces[d.Name] = d }
func (e *Env) DeclareAlias(name string, t Type)  { e.aliases[name] = t }
func (e *Env) DeclareImpl(impl *ImplDef)         { e.impls = append(e.impls, impl) }
func (e *Env) DeclareImport(local, fullPath string) { e.imports[local] = fullPath }

// --- lookup, falling through to the registry on a local miss ---

func (e *Env) resolveImported(name string) (modulePath, symbol string, ok bool) {
	full, ok := e.imports[name]
	if !ok {
		return "", "", false
	}
	return parentPath(full), lastSegment(full), true
}

func (e *Env) LookupFunc(name string) (FuncSig, bool) {
	if sigs, ok := e.funcs[name]; ok && len(sigs) > 0 {
		return sigs[0], true
	}
	if mp, sym, ok := e.resolveImported(name); ok {
		if s, ok := e.registry.LookupSymbol(mp, sym); ok && s.Func != nil {
			return *s.Func, true
		}
	}
	return FuncSig{}, false
}

// LookupFuncOverload returns the first registered overload of name
// whose parameter types structurally match argTypes.
func (e *Env) LookupFuncOverload(name string, argTypes []Type) (FuncSig, bool) {
	for _, sig := range e.funcs[name] {
		if len(sig.Params) != len(argTypes) {
			continue
		}
		match := true
		for i, a := range argTypes {
			if !Equal(a, sig.Params[i].Type) {
				match = false
				break
			}
		}
		if match {
			return sig, true
		}
	}
	if sig, ok := Lookup(name); ok {
		return sig, true
	}
	return FuncSig{}, false
}

func (e *Env) LookupStruct(name string) (*StructDef, bool) {
	if d, ok := e.structs[name]; ok {
		return d, true
	}
	if mp, sym, ok := e.resolveImported(name); ok {
		if s, ok := e.registry.LookupSymbol(mp, sym); ok && s.Struct != nil {
			return s.Struct, true
		}
	}
	return nil, false
}

func (e *Env) LookupEnum(name string) (*EnumDef, bool) {
	if d, ok := e.enums[name]; ok {
		return d, true
	}
	if mp, sym, ok := e.resolveImported(name); ok {
		if s, ok := e.registry.LookupSymbol(mp, sym); ok && s.Enum != nil {
			return s.Enum, true
		}
	}
	return nil, false
}

func (e *Env) LookupBehavior(name string) (*BehaviorDef, bool) {
	if d, ok := e.behaviors[name]; ok {
		return d, true
	}
	if mp, sym, ok := e.resolveImported(name); ok {
		if s, ok := e.registry.LookupSymbol(mp, sym); ok && s.Behavior != nil {
			return s.Behavior, true
		}
	}
	return nil, false
}

func (e *Env) LookupClass(name string) (*ClassDef, bool) {
	d, ok := e.classes[name]
	return d, ok
}

func (e *Env) LookupInterface(name string) (*InterfaceDef, bool) {
	d, ok := e.interfaces[name]
	return d, ok
}

func (e *Env) LookupAlias(name string) (Type, bool) {
	t, ok := e.aliases[name]
	return t, ok
}

// FindImpl returns the impl block providing method on target, and the
// method signature, preferring an inherent impl over a behavior impl.
func (e *Env) FindImpl(target Type, method string) (*ImplDef, FuncSig, bool) {
	var behaviorMatch *ImplDef
	var behaviorSig FuncSig
	for _, impl := range e.impls {
		if !Equal(impl.Target, target) {
			continue
		}
		sig, ok := impl.Methods[method]
		if !ok {
			continue
		}
		if impl.Behavior == nil {
			return impl, sig, true
		}
		behaviorMatch, behaviorSig = impl, sig
	}
	if behaviorMatch != nil {
		return behaviorMatch, behaviorSig, true
	}
	return nil, FuncSig{}, false
}

// --- lexical variable scopes ---

func (e *Env) PushScope() { e.scopes = append(e.scopes, map[string]varBinding{}) }

func (e *Env) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

func (e *Env) BindVar(name string, t Type, mut bool) {
	e.scopes[len(e.scopes)-1][name] = varBinding{Type: t, Mut: mut}
}

func (e *Env) LookupVar(name string) (Type, bool, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if b, ok := e.scopes[i][name]; ok {
			return b.Type, b.Mut, true
		}
	}
	return nil, false, false
}

// --- inference variables and unification ---

// FreshVar allocates a new unbound inference variable.
func (e *Env) FreshVar() Var {
	e.nextTV++
	return Var{ID: e.nextTV}
}

// Resolve follows a chain of substitutions to the most specific type
// known for t, leaving unresolved Vars as-is.
func (e *Env) Resolve(t Type) Type {
	for {
		v, ok := t.(Var)
		if !ok {
			return t
		}
		next, ok := e.subst[v.ID]
		if !ok {
			return t
		}
		t = next
	}
}

// Unify attempts to make a and b equal, binding any free Vars
// encountered. Returns false if the two types are structurally
// incompatible.
func (e *Env) Unify(a, b Type) bool {
	a, b = e.Resolve(a), e.Resolve(b)
	if av, ok := a.(Var); ok {
		e.subst[av.ID] = b
		return true
	}
	if bv, ok := b.(Var); ok {
		e.subst[bv.ID] = a
		return true
	}
	switch at := a.(type) {
	case Ref:
		bt, ok := b.(Ref)
		return ok && at.Mut == bt.Mut && e.Unify(at.Elem, bt.Elem)
	case Ptr:
		bt, ok := b.(Ptr)
		return ok && at.Mut == bt.Mut && e.Unify(at.Elem, bt.Elem)
	case Slice:
		bt, ok := b.(Slice)
		return ok && e.Unify(at.Elem, bt.Elem)
	case Array:
		bt, ok := b.(Array)
		return ok && at.Size == bt.Size && e.Unify(at.Elem, bt.Elem)
	case Tuple:
		bt, ok := b.(Tuple)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !e.Unify(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case Named:
		bt, ok := b.(Named)
		if !ok || at.Name != bt.Name || at.ModulePath != bt.ModulePath || len(at.TypeArgs) != len(bt.TypeArgs) {
			return false
		}
		for i := range at.TypeArgs {
			if !e.Unify(at.TypeArgs[i], bt.TypeArgs[i]) {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}

// Substitute replaces every Generic in t whose Name is a key of args
// with the corresponding concrete type, for monomorphizing a generic
// declaration's signature at a call site. Closure, DynBehavior and
// ImplBehavior types are returned unchanged.
func Substitute(t Type, args map[string]Type) Type {
	switch v := t.(type) {
	case Generic:
		if repl, ok := args[v.Name]; ok {
			return repl
		}
		return v
	case Ref:
		v.Elem = Substitute(v.Elem, args)
		return v
	case Ptr:
		v.Elem = Substitute(v.Elem, args)
		return v
	case Slice:
		v.Elem = Substitute(v.Elem, args)
		return v
	case Array:
		v.Elem = Substitute(v.Elem, args)
		return v
	case Tuple:
		elems := make([]Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Substitute(e, args)
		}
		return Tuple{Elems: elems}
	case Named:
		typeArgs := make([]Type, len(v.TypeArgs))
		for i, a := range v.TypeArgs {
			typeArgs[i] = Substitute(a, args)
		}
		v.TypeArgs = typeArgs
		return v
	case Func:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = Substitute(p, args)
		}
		v.Params = params
		if v.Ret != nil {
			v.Ret = Substitute(v.Ret, args)
		}
		return v
	default:
		return t
	}
}
