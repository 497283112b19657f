package codegen

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// inferType derives an expression's semantic type from codegen's own
// local symbol table and the shared type environment. The type
// checker has already validated the whole file; this is a lightweight
// re-derivation (the pass keeps no annotated-AST side channel, the
// same "resolve on demand" approach internal/borrow takes for
// declared types) covering exactly the cases codegen's own emission
// needs: picking an LLVM type for an alloca/return/operator, not a
// full re-implementation of the checker's inference.
func (g *Generator) inferType(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		if n.Suffix != "" {
			if p, ok := types.PrimitiveTypeOf(n.Suffix); ok {
				return p
			}
		}
		return types.Primitive{Kind: types.I32}
	case *ast.FloatLit:
		if n.Suffix != "" {
			if p, ok := types.PrimitiveTypeOf(n.Suffix); ok {
				return p
			}
		}
		return types.Primitive{Kind: types.F64}
	case *ast.BoolLit:
		return types.Primitive{Kind: types.Bool}
	case *ast.CharLit:
		return types.Primitive{Kind: types.Char}
	case *ast.StringLit:
		return types.Primitive{Kind: types.Str}
	case *ast.NullLit:
		return types.Ptr{Elem: types.Primitive{Kind: types.Unit}}
	case *ast.IdentExpr:
		if l, ok := g.lookupLocal(n.Name); ok && l.typ != nil {
			return l.typ
		}
		if sig, ok := g.tenv.LookupFunc(n.Name); ok {
			return types.Func{Params: paramTypes(sig.Params), Ret: sig.Ret}
		}
		return nil
	case *ast.BinaryExpr:
		if isCmpOp(n.Op) || n.Op == ast.OpAnd || n.Op == ast.OpOr {
			return types.Primitive{Kind: types.Bool}
		}
		return g.inferType(n.Left)
	case *ast.UnaryExpr:
		switch n.Op {
		case ast.OpRef:
			return types.Ref{Elem: g.inferType(n.X)}
		case ast.OpMutRef:
			return types.Ref{Mut: true, Elem: g.inferType(n.X)}
		case ast.OpDeref:
			if r, ok := g.inferType(n.X).(types.Ref); ok {
				return r.Elem
			}
			if p, ok := g.inferType(n.X).(types.Ptr); ok {
				return p.Elem
			}
			return nil
		case ast.OpNot:
			return types.Primitive{Kind: types.Bool}
		}
		return g.inferType(n.X)
	case *ast.PostfixExpr:
		return g.inferType(n.X)
	case *ast.AssignExpr:
		return g.inferType(n.Target)
	case *ast.CallExpr:
		if ident, ok := n.Callee.(*ast.IdentExpr); ok {
			if sig, ok := g.tenv.LookupFunc(ident.Name); ok {
				return sig.Ret
			}
		}
		return nil
	case *ast.MethodCallExpr:
		recvType := g.inferType(n.Receiver)
		if _, sig, ok := g.tenv.FindImpl(recvType, n.Method); ok {
			return sig.Ret
		}
		return nil
	case *ast.FieldExpr:
		baseType := g.inferType(n.X)
		if named, ok := baseType.(types.Named); ok {
			if def, ok := g.tenv.LookupStruct(named.Name); ok {
				if f, ok := def.Field(n.Field); ok {
					return f.Type
				}
			}
		}
		return nil
	case *ast.IndexExpr:
		switch bt := g.inferType(n.X).(type) {
		case types.Array:
			return bt.Elem
		case types.Slice:
			return bt.Elem
		}
		return nil
	case *ast.StructLit:
		typeArgs := make([]types.Type, len(n.Type.TypeArgs))
		for i, a := range n.Type.TypeArgs {
			typeArgs[i] = g.resolveType(a)
		}
		return types.Named{Name: n.Type.Path.String(), TypeArgs: typeArgs}
	case *ast.TupleLit:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = g.inferType(el)
		}
		return types.Tuple{Elems: elems}
	case *ast.ArrayLit:
		var elem types.Type
		if len(n.Elems) > 0 {
			elem = g.inferType(n.Elems[0])
		}
		return types.Array{Elem: elem, Size: int64(len(n.Elems))}
	case *ast.BlockExpr:
		if n.Tail != nil {
			return g.inferType(n.Tail)
		}
		return types.Primitive{Kind: types.Unit}
	case *ast.IfExpr:
		if n.Then.Tail != nil {
			return g.inferType(n.Then.Tail)
		}
		return types.Primitive{Kind: types.Unit}
	case *ast.TernaryExpr:
		return g.inferType(n.Then)
	case *ast.CastExpr:
		return g.resolveType(n.Type)
	case *ast.ClosureExpr:
		var params []types.Type
		for _, p := range n.Params {
			params = append(params, g.resolveType(p.Type))
		}
		return types.Closure{Params: params, Ret: g.resolveType(n.RetType)}
	}
	return nil
}

func paramTypes(params []types.Param) []types.Type {
	out := make([]types.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}
