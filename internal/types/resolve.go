package types

import (
	"github.com/hivellm/tml/internal/ast"
)

// Resolver turns AST type nodes into semantic Type values, substituting
// any generic parameter name currently in scope with its Generic
// placeholder and any type alias with its target.
type Resolver struct {
	Env      *Env
	Generics map[string]bool // names in scope bound as a Generic/ConstGeneric
}

// NewResolver builds a Resolver over env with generics bound in scope.
func NewResolver(env *Env, generics []string) *Resolver {
	bound := make(map[string]bool, len(generics))
	for _, g := range generics {
		bound[g] = true
	}
	return &Resolver{Env: env, Generics: bound}
}

// Resolve converts one AST type node to its semantic Type.
func (r *Resolver) Resolve(t ast.Type) Type {
	switch n := t.(type) {
	case nil:
		return Primitive{Unit}
	case *ast.InferType:
		return r.Env.FreshVar()
	case *ast.TemplateType:
		return Primitive{Str}
	case *ast.RefType:
		return Ref{Mut: n.Mutable, Elem: r.Resolve(n.Elem), Lifetime: n.Lifetime}
	case *ast.PointerType:
		return Ptr{Mut: n.Mutable, Elem: r.Resolve(n.Elem)}
	case *ast.SliceType:
		return Slice{Elem: r.Resolve(n.Elem)}
	case *ast.ArrayType:
		return Array{Elem: r.Resolve(n.Elem), Size: r.evalConstSize(n.Size)}
	case *ast.TupleType:
		elems := make([]Type, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = r.Resolve(e)
		}
		return Tuple{Elems: elems}
	case *ast.FuncType:
		params := make([]Type, len(n.Params))
		for i, p := range n.Params {
			params[i] = r.Resolve(p)
		}
		return Func{Params: params, Ret: r.Resolve(n.Ret)}
	case *ast.DynType:
		return DynBehavior{BehaviorName: n.Behavior.Path.String(), TypeArgs: r.resolveArgs(n.Behavior.TypeArgs), Mut: n.Mutable}
	case *ast.ImplType:
		return ImplBehavior{BehaviorName: n.Behavior.Path.String(), TypeArgs: r.resolveArgs(n.Behavior.TypeArgs)}
	case *ast.NamedType:
		return r.resolveNamed(n)
	default:
		return Primitive{Unit}
	}
}

func (r *Resolver) resolveArgs(args []ast.Type) []Type {
	out := make([]Type, len(args))
	for i, a := range args {
		out[i] = r.Resolve(a)
	}
	return out
}

func (r *Resolver) resolveNamed(n *ast.NamedType) Type {
	name := n.Path.String()
	if len(n.Path.Segments) == 1 {
		if p, ok := PrimitiveTypeOf(name); ok {
			return p
		}
		if name == "Self" {
			return Named{Name: "Self"}
		}
		if r.Generics[name] {
			return Generic{Name: name}
		}
		if alias, ok := r.Env.LookupAlias(name); ok {
			return alias
		}
	}
	return Named{Name: lastSegment(name), ModulePath: parentPath(name), TypeArgs: r.resolveArgs(n.TypeArgs)}
}

// evalConstSize evaluates a simple compile-time-constant array-size
// expression: an integer literal gives its value; any other expression,
// such as a bare const-generic identifier, gives -1, which is kept as
// the array's Size.
func (r *Resolver) evalConstSize(e ast.Expr) int64 {
	if lit, ok := e.(*ast.IntLit); ok {
		return lit.Value
	}
	return -1
}
