package checker

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// EvaluateConstExpr folds a compile-time-constant expression into a
// types.ConstValue, for `const` declarations and const-generic
// arguments. Only the small subset spec.md §3.4 requires at compile
// time is handled: literals and the arithmetic/comparison operators
// applied to other integer constants; anything else fails to fold and is left
// to the checker's ordinary (runtime) expression typing.
//
// Grounded on
// _examples/original_source/compiler/include/types/checker.hpp's
// `evaluate_const_expr` declaration; folding rules follow
// _examples/original_source/compiler/src/types/checker/const_eval.cpp.
func (c *Checker) EvaluateConstExpr(e ast.Expr, expected types.Type) (types.ConstValue, bool) {
	switch n := e.(type) {
	case *ast.IntLit:
		kind := types.I32
		if p, ok := expected.(types.Primitive); ok && p.Kind.IsInt() {
			kind = p.Kind
		}
		if n.Uint != 0 && n.Value == 0 {
			return types.ConstValue{Uint: n.Uint, Kind: kind}, true
		}
		return types.ConstValue{Int: n.Value, Kind: kind, IsInt: true}, true
	case *ast.BoolLit:
		return types.ConstValue{Bool: n.Value, Kind: types.Bool}, true
	case *ast.CharLit:
		return types.ConstValue{Char: n.Value, Kind: types.Char}, true
	case *ast.UnaryExpr:
		if n.Op == ast.OpNeg {
			v, ok := c.EvaluateConstExpr(n.X, expected)
			if !ok {
				return types.ConstValue{}, false
			}
			v.Int = -v.AsI64()
			v.IsInt = true
			return v, true
		}
	case *ast.BinaryExpr:
		lv, ok1 := c.EvaluateConstExpr(n.Left, expected)
		rv, ok2 := c.EvaluateConstExpr(n.Right, expected)
		if !ok1 || !ok2 {
			return types.ConstValue{}, false
		}
		result, ok := foldConstBinary(n.Op, lv, rv)
		return result, ok
	}
	return types.ConstValue{}, false
}

func foldConstBinary(op ast.BinaryOp, l, r types.ConstValue) (types.ConstValue, bool) {
	a, b := l.AsI64(), r.AsI64()
	switch op {
	case ast.OpAdd:
		return types.ConstValue{Int: a + b, IsInt: true, Kind: l.Kind}, true
	case ast.OpSub:
		return types.ConstValue{Int: a - b, IsInt: true, Kind: l.Kind}, true
	case ast.OpMul:
		return types.ConstValue{Int: a * b, IsInt: true, Kind: l.Kind}, true
	case ast.OpDiv:
		if b == 0 {
			return types.ConstValue{}, false
		}
		return types.ConstValue{Int: a / b, IsInt: true, Kind: l.Kind}, true
	case ast.OpMod:
		if b == 0 {
			return types.ConstValue{}, false
		}
		return types.ConstValue{Int: a % b, IsInt: true, Kind: l.Kind}, true
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		if !l.Kind.IsInt() || !r.Kind.IsInt() {
			return types.ConstValue{}, false
		}
		res := map[ast.BinaryOp]bool{ast.OpEq: a == b, ast.OpNotEq: a != b, ast.OpLt: a < b,
			ast.OpLtEq: a <= b, ast.OpGt: a > b, ast.OpGtEq: a >= b}[op]
		return types.ConstValue{Bool: res, Kind: types.Bool}, true
	default:
		return types.ConstValue{}, false
	}
}
