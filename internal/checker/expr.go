package checker

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// CheckExpr type checks e and returns its resolved type, reporting a
// diagnostic and returning a fresh inference variable on failure so
// that checking can keep going (spec.md §4.4 "Error Recovery").
//
// Grounded on
// _examples/original_source/compiler/include/types/checker.hpp's
// `check_expr`/`check_*` method family.
func (c *Checker) CheckExpr(e ast.Expr) types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		if n.Suffix != "" {
			if p, ok := types.PrimitiveTypeOf(suffixToPrimitive(n.Suffix)); ok {
				return p
			}
		}
		return c.Env.FreshVar()
	case *ast.FloatLit:
		if n.Suffix == "f32" {
			return types.Primitive{Kind: types.F32}
		}
		return types.Primitive{Kind: types.F64}
	case *ast.StringLit:
		return types.Primitive{Kind: types.Str}
	case *ast.CharLit:
		return types.Primitive{Kind: types.Char}
	case *ast.BoolLit:
		return types.Primitive{Kind: types.Bool}
	case *ast.NullLit:
		return types.Named{Name: "Maybe", TypeArgs: []types.Type{c.Env.FreshVar()}}
	case *ast.IdentExpr:
		return c.checkIdent(n)
	case *ast.PathExpr:
		return c.checkPath(n)
	case *ast.UnaryExpr:
		return c.checkUnary(n)
	case *ast.PostfixExpr:
		return c.CheckExpr(n.X)
	case *ast.BinaryExpr:
		return c.checkBinary(n)
	case *ast.AssignExpr:
		return c.checkAssign(n)
	case *ast.CallExpr:
		return c.checkCall(n)
	case *ast.MethodCallExpr:
		return c.checkMethodCall(n)
	case *ast.NewExpr:
		return c.checkNew(n)
	case *ast.BaseCallExpr:
		for _, a := range n.Args {
			c.CheckExpr(a)
		}
		return types.Primitive{Kind: types.Unit}
	case *ast.FieldExpr:
		return c.checkField(n)
	case *ast.IndexExpr:
		return c.checkIndex(n)
	case *ast.StructLit:
		return c.checkStructLit(n)
	case *ast.TupleLit:
		elems := make([]types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.CheckExpr(el)
		}
		return types.Tuple{Elems: elems}
	case *ast.ArrayLit:
		var elemType types.Type = c.Env.FreshVar()
		for i, el := range n.Elems {
			t := c.CheckExpr(el)
			if i == 0 {
				elemType = t
			} else {
				c.Env.Unify(elemType, t)
			}
		}
		return types.Array{Elem: elemType, Size: int64(len(n.Elems))}
	case *ast.ArrayRepeatLit:
		elemType := c.CheckExpr(n.Elem)
		size := int64(-1)
		if v, ok := c.EvaluateConstExpr(n.Count, types.Primitive{Kind: types.U64}); ok {
			size = v.AsI64()
		}
		return types.Array{Elem: elemType, Size: size}
	case *ast.BlockExpr:
		return c.CheckBlock(n)
	case *ast.IfExpr:
		return c.checkIf(n)
	case *ast.IfLetExpr:
		return c.checkIfLet(n)
	case *ast.TernaryExpr:
		c.CheckExpr(n.Cond)
		thenT := c.CheckExpr(n.Then)
		elseT := c.CheckExpr(n.Else)
		c.Env.Unify(thenT, elseT)
		return thenT
	case *ast.WhenExpr:
		return c.checkWhen(n)
	case *ast.LoopExpr:
		return c.checkLoop(n.Label, n.Body)
	case *ast.WhileExpr:
		c.CheckExpr(n.Cond)
		return c.checkLoop(n.Label, n.Body)
	case *ast.ForExpr:
		return c.checkFor(n)
	case *ast.ReturnExpr:
		if n.Value != nil {
			t := c.CheckExpr(n.Value)
			if c.currentReturn != nil {
				c.Env.Unify(t, c.currentReturn)
			}
		}
		return types.Primitive{Kind: types.Never}
	case *ast.BreakExpr:
		if n.Value != nil {
			c.CheckExpr(n.Value)
		}
		if c.loopDepth == 0 {
			c.errorf(n, "T030", "'break' outside of a loop")
		}
		return types.Primitive{Kind: types.Never}
	case *ast.ContinueExpr:
		if c.loopDepth == 0 {
			c.errorf(n, "T030", "'continue' outside of a loop")
		}
		return types.Primitive{Kind: types.Never}
	case *ast.ThrowExpr:
		c.CheckExpr(n.Value)
		return types.Primitive{Kind: types.Never}
	case *ast.ClosureExpr:
		return c.checkClosure(n)
	case *ast.CastExpr:
		c.CheckExpr(n.X)
		r := types.NewResolver(c.Env, nil)
		return r.Resolve(n.Type)
	case *ast.TypeCheckExpr:
		c.CheckExpr(n.X)
		return types.Primitive{Kind: types.Bool}
	case *ast.RangeExpr:
		if n.Low != nil {
			c.CheckExpr(n.Low)
		}
		if n.High != nil {
			c.CheckExpr(n.High)
		}
		return types.Named{Name: "Range"}
	case *ast.TryExpr:
		inner := c.CheckExpr(n.X)
		if named, ok := c.Env.Resolve(inner).(types.Named); ok && len(named.TypeArgs) > 0 {
			return named.TypeArgs[0]
		}
		return inner
	case *ast.InterpStringExpr:
		c.checkInterp(n.Segments)
		return types.Primitive{Kind: types.Str}
	case *ast.TemplateLitExpr:
		c.checkInterp(n.Segments)
		return types.Named{Name: "Text"}
	case *ast.LowlevelExpr:
		prev := c.inLowlevel
		c.inLowlevel = true
		t := c.CheckBlock(n.Body)
		c.inLowlevel = prev
		return t
	case *ast.AwaitExpr:
		if !c.inAsync {
			c.errorf(n, "T031", "'.await' used outside an async function")
		}
		inner := c.CheckExpr(n.X)
		if named, ok := c.Env.Resolve(inner).(types.Named); ok && len(named.TypeArgs) > 0 {
			return named.TypeArgs[0]
		}
		return inner
	default:
		return c.Env.FreshVar()
	}
}

func (c *Checker) checkInterp(segs []ast.InterpSegment) {
	for _, s := range segs {
		if s.Expr != nil {
			c.CheckExpr(s.Expr)
		}
	}
}

func suffixToPrimitive(suffix string) string {
	switch suffix {
	case "i8":
		return "I8"
	case "i16":
		return "I16"
	case "i32":
		return "I32"
	case "i64":
		return "I64"
	case "i128":
		return "I128"
	case "u8":
		return "U8"
	case "u16":
		return "U16"
	case "u32":
		return "U32"
	case "u64":
		return "U64"
	case "u128":
		return "U128"
	default:
		return ""
	}
}

func (c *Checker) checkIdent(n *ast.IdentExpr) types.Type {
	if n.Name == "this" || n.Name == "self" {
		if c.currentSelf != nil {
			return c.currentSelf
		}
	}
	if t, _, ok := c.Env.LookupVar(n.Name); ok {
		return t
	}
	if sig, ok := c.Env.LookupFunc(n.Name); ok {
		return funcSigType(sig)
	}
	if sig, ok := types.Lookup(n.Name); ok {
		return funcSigType(sig)
	}
	c.undefinedNameError(n, "name", n.Name)
	return c.Env.FreshVar()
}

func funcSigType(sig types.FuncSig) types.Type {
	params := make([]types.Type, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.Type
	}
	return types.Func{Params: params, Ret: sig.Ret, IsAsync: sig.IsAsync}
}

func (c *Checker) checkPath(n *ast.PathExpr) types.Type {
	name := n.Path.String()
	if len(n.Path.Segments) == 2 {
		typeName, member := n.Path.Segments[0], n.Path.Segments[1]
		if def, ok := c.Env.LookupEnum(typeName); ok {
			if _, ok := def.Variant(member); ok {
				return types.Named{Name: typeName}
			}
		}
		if sig, ok := c.Env.LookupFunc(name); ok {
			return funcSigType(sig)
		}
	}
	if sig, ok := c.Env.LookupFunc(name); ok {
		return funcSigType(sig)
	}
	c.undefinedNameError(n, "path", name)
	return c.Env.FreshVar()
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) types.Type {
	t := c.CheckExpr(n.X)
	switch n.Op {
	case ast.OpNeg, ast.OpBitNot:
		return t
	case ast.OpNot:
		return types.Primitive{Kind: types.Bool}
	case ast.OpDeref:
		if r, ok := c.Env.Resolve(t).(types.Ref); ok {
			return r.Elem
		}
		if p, ok := c.Env.Resolve(t).(types.Ptr); ok {
			return p.Elem
		}
		return t
	case ast.OpRef:
		return types.Ref{Elem: t}
	case ast.OpMutRef:
		return types.Ref{Mut: true, Elem: t}
	}
	return t
}

var binResultOverride = map[ast.BinaryOp]bool{
	ast.OpEq: true, ast.OpNotEq: true, ast.OpLt: true, ast.OpLtEq: true,
	ast.OpGt: true, ast.OpGtEq: true, ast.OpAnd: true, ast.OpOr: true,
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) types.Type {
	lt := c.CheckExpr(n.Left)
	rt := c.CheckExpr(n.Right)
	if !c.Env.Unify(lt, rt) {
		c.errorf(n, "T040", "mismatched operand types %s and %s", lt, rt)
	}
	if binResultOverride[n.Op] {
		return types.Primitive{Kind: types.Bool}
	}
	return lt
}

func (c *Checker) checkAssign(n *ast.AssignExpr) types.Type {
	targetType := c.CheckExpr(n.Target)
	if id, ok := n.Target.(*ast.IdentExpr); ok {
		if _, mut, ok := c.Env.LookupVar(id.Name); ok && !mut {
			c.errorf(n, "T050", "cannot assign to immutable binding %q", id.Name)
		}
	}
	valueType := c.CheckExpr(n.Value)
	if !c.Env.Unify(targetType, valueType) {
		c.errorf(n, "T041", "cannot assign %s to %s", valueType, targetType)
	}
	return types.Primitive{Kind: types.Unit}
}

func (c *Checker) checkCall(n *ast.CallExpr) types.Type {
	calleeType := c.CheckExpr(n.Callee)
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.CheckExpr(a)
	}
	if ft, ok := c.Env.Resolve(calleeType).(types.Func); ok {
		for i, p := range ft.Params {
			if i < len(argTypes) {
				c.Env.Unify(p, argTypes[i])
			}
		}
		if len(n.Args) != len(ft.Params) {
			c.errorf(n, "T060", "expected %d argument(s), got %d", len(ft.Params), len(n.Args))
		}
		return ft.Ret
	}
	if id, ok := n.Callee.(*ast.IdentExpr); ok {
		if sig, ok := c.Env.LookupFuncOverload(id.Name, argTypes); ok {
			return sig.Ret
		}
	}
	return c.Env.FreshVar()
}

func (c *Checker) checkMethodCall(n *ast.MethodCallExpr) types.Type {
	recvType := c.CheckExpr(n.Receiver)
	for _, a := range n.Args {
		c.CheckExpr(a)
	}
	target := c.Env.Resolve(recvType)
	if ref, ok := target.(types.Ref); ok {
		target = c.Env.Resolve(ref.Elem)
	}
	if cls, ok := target.(types.Named); ok {
		if classDef, ok := c.Env.LookupClass(cls.Name); ok {
			if sig, ok := classDef.Methods[n.Method]; ok {
				return sig.Ret
			}
		}
	}
	if _, sig, ok := c.Env.FindImpl(target, n.Method); ok {
		return sig.Ret
	}
	c.errorf(n, "T061", "no method %q on %s", n.Method, target)
	return c.Env.FreshVar()
}

func (c *Checker) checkNew(n *ast.NewExpr) types.Type {
	r := types.NewResolver(c.Env, nil)
	t := r.Resolve(n.Type)
	for _, a := range n.Args {
		c.CheckExpr(a)
	}
	return t
}

func (c *Checker) checkField(n *ast.FieldExpr) types.Type {
	xt := c.Env.Resolve(c.CheckExpr(n.X))
	if ref, ok := xt.(types.Ref); ok {
		xt = c.Env.Resolve(ref.Elem)
	}
	switch t := xt.(type) {
	case types.Named:
		if def, ok := c.Env.LookupStruct(t.Name); ok {
			if f, ok := def.Field(n.Field); ok {
				return f.Type
			}
			c.errorf(n, "T012", "struct %q has no field %q", t.Name, n.Field)
			return c.Env.FreshVar()
		}
		if cls, ok := c.Env.LookupClass(t.Name); ok {
			for _, f := range cls.Fields {
				if f.Name == n.Field {
					return f.Type
				}
			}
		}
	case types.Tuple:
		// numeric tuple-index access parses as a FieldExpr with a
		// digit-string Field name.
		if idx, ok := tupleIndex(n.Field); ok && idx < len(t.Elems) {
			return t.Elems[idx]
		}
	}
	return c.Env.FreshVar()
}

func tupleIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}

func (c *Checker) checkIndex(n *ast.IndexExpr) types.Type {
	xt := c.Env.Resolve(c.CheckExpr(n.X))
	c.CheckExpr(n.Index)
	switch t := xt.(type) {
	case types.Array:
		return t.Elem
	case types.Slice:
		return t.Elem
	default:
		return c.Env.FreshVar()
	}
}

func (c *Checker) checkStructLit(n *ast.StructLit) types.Type {
	name := n.Type.Path.String()
	def, ok := c.Env.LookupStruct(name)
	if !ok {
		c.undefinedNameError(n, "struct", name)
		for _, f := range n.Fields {
			c.CheckExpr(f.Value)
		}
		return c.Env.FreshVar()
	}
	for _, f := range n.Fields {
		valueType := c.CheckExpr(f.Value)
		if fd, ok := def.Field(f.Name); ok {
			c.Env.Unify(valueType, fd.Type)
		} else {
			c.errorf(n, "T012", "struct %q has no field %q", name, f.Name)
		}
	}
	if n.Spread != nil {
		c.CheckExpr(n.Spread)
	}
	r := types.NewResolver(c.Env, nil)
	typeArgs := make([]types.Type, len(n.Type.TypeArgs))
	for i, a := range n.Type.TypeArgs {
		typeArgs[i] = r.Resolve(a)
	}
	return types.Named{Name: name, TypeArgs: typeArgs}
}

func (c *Checker) checkIf(n *ast.IfExpr) types.Type {
	c.CheckExpr(n.Cond)
	thenT := c.CheckBlock(n.Then)
	if n.Else == nil {
		return types.Primitive{Kind: types.Unit}
	}
	elseT := c.CheckExpr(n.Else)
	c.Env.Unify(thenT, elseT)
	return thenT
}

func (c *Checker) checkIfLet(n *ast.IfLetExpr) types.Type {
	valueType := c.CheckExpr(n.Value)
	c.Env.PushScope()
	c.BindPattern(n.Pattern, valueType)
	thenT := c.CheckBlock(n.Then)
	c.Env.PopScope()
	if n.Else == nil {
		return types.Primitive{Kind: types.Unit}
	}
	elseT := c.CheckExpr(n.Else)
	c.Env.Unify(thenT, elseT)
	return thenT
}

func (c *Checker) checkWhen(n *ast.WhenExpr) types.Type {
	scrutType := c.CheckExpr(n.Scrutinee)
	var result types.Type = c.Env.FreshVar()
	for i, arm := range n.Arms {
		c.Env.PushScope()
		c.BindPattern(arm.Pattern, scrutType)
		if arm.Guard != nil {
			c.CheckExpr(arm.Guard)
		}
		bodyT := c.CheckExpr(arm.Body)
		c.Env.PopScope()
		if i == 0 {
			result = bodyT
		} else {
			c.Env.Unify(result, bodyT)
		}
	}
	return result
}

func (c *Checker) checkLoop(label string, body *ast.BlockExpr) types.Type {
	c.loopDepth++
	if label != "" {
		c.loopLabels = append(c.loopLabels, label)
	}
	c.CheckBlock(body)
	if label != "" {
		c.loopLabels = c.loopLabels[:len(c.loopLabels)-1]
	}
	c.loopDepth--
	return types.Primitive{Kind: types.Unit}
}

func (c *Checker) checkFor(n *ast.ForExpr) types.Type {
	iterT := c.Env.Resolve(c.CheckExpr(n.Iterable))
	var elemType types.Type = c.Env.FreshVar()
	switch t := iterT.(type) {
	case types.Array:
		elemType = t.Elem
	case types.Slice:
		elemType = t.Elem
	case types.Named:
		if t.Name == "Range" {
			elemType = types.Primitive{Kind: types.I32}
		}
	}
	c.Env.PushScope()
	c.BindPattern(n.Pattern, elemType)
	c.loopDepth++
	c.CheckBlock(n.Body)
	c.loopDepth--
	c.Env.PopScope()
	return types.Primitive{Kind: types.Unit}
}

func (c *Checker) checkClosure(n *ast.ClosureExpr) types.Type {
	r := types.NewResolver(c.Env, nil)
	params := make([]types.Param, len(n.Params))
	c.Env.PushScope()
	for i, p := range n.Params {
		var pt types.Type = c.Env.FreshVar()
		if p.Type != nil {
			pt = r.Resolve(p.Type)
		}
		params[i] = types.Param{Name: p.Name, Type: pt}
		c.Env.BindVar(p.Name, pt, false)
	}
	bodyType := c.CheckExpr(n.Body)
	c.Env.PopScope()
	ret := bodyType
	if n.RetType != nil {
		ret = r.Resolve(n.RetType)
	}
	paramTypes := make([]types.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	return types.Closure{Params: paramTypes, Ret: ret}
}
