package codegen

import (
	"fmt"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// genBinary lowers a binary operator per spec.md §4.6 "Operators":
// integer add/sub/mul/sdiv-or-udiv/srem-or-urem with signedness-aware
// icmp, float fadd/fsub/fmul/fdiv/frem with ordered fcmp, bitwise
// direct mapping, and short-circuiting and/or lowered to br.
func (g *Generator) genBinary(n *ast.BinaryExpr) string {
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		return g.genShortCircuit(n)
	}
	left := g.genExpr(n.Left)
	right := g.genExpr(n.Right)
	t := g.inferType(n.Left)
	if (n.Op == ast.OpEq || n.Op == ast.OpNotEq) && isStructType(g.tenv, t) {
		return g.genStructEq(n.Op, left, right, t)
	}
	return g.emitBinaryOp(n.Op, left, right, t)
}

// isStructType reports whether t names a struct (not an enum, which
// shares the same %struct.* aggregate shape but is never a derived-eq
// target), so struct equality routes to the derived __eq function
// instead of an invalid `icmp` on an aggregate value.
func isStructType(tenv *types.Env, t types.Type) bool {
	named, ok := t.(types.Named)
	if !ok {
		return false
	}
	_, ok = tenv.LookupStruct(named.Name)
	return ok
}

// genStructEq compares two already-loaded struct aggregates by value
// via the struct's derived `__eq` function, which expects pointers:
// each operand is spilled to a fresh alloca first. Grounded on
// spec.md §4.6's derive-macro description of PartialEq as
// field-by-field structural equality — comparing the aggregate
// directly with `icmp` is not valid LLVM IR for a struct type, so
// equality goes through the same __eq lowered in derive.go.
func (g *Generator) genStructEq(op ast.BinaryOp, left, right string, t types.Type) string {
	named := t.(types.Named)
	mangled := g.requireStructInstantiation(named.Name, named.TypeArgs)
	llt := g.LowerType(t)
	leftPtr := g.spillToPtr(left, llt)
	rightPtr := g.spillToPtr(right, llt)
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call i1 @%s__eq(ptr %s, ptr %s)", reg, mangled, leftPtr, rightPtr))
	if op == ast.OpEq {
		return reg
	}
	negated := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = xor i1 %s, true", negated, reg))
	return negated
}

// spillToPtr allocas a fresh slot of llvmType and stores val into it,
// used where a call site needs a pointer to an already-materialized
// aggregate value.
func (g *Generator) spillToPtr(val, llvmType string) string {
	ptr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", ptr, llvmType))
	g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", llvmType, val, ptr))
	return ptr
}

func (g *Generator) emitBinaryOp(op ast.BinaryOp, left, right string, t types.Type) string {
	llt := g.LowerType(t)
	isFloat := isFloatType(t)
	signed := isSignedType(t)
	reg := g.w.FreshReg()

	if isCmpOp(op) {
		pred := cmpPredicate(op, isFloat, signed)
		instr := "icmp"
		cmpType := llt
		if isFloat {
			instr = "fcmp"
		}
		g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s %s, %s", reg, instr, pred, cmpType, left, right))
		return reg
	}

	instr, ok := arithInstr(op, isFloat, signed)
	if !ok {
		g.w.EmitLine(fmt.Sprintf("  %s = add %s %s, %s", reg, llt, left, right))
		return reg
	}
	g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s, %s", reg, instr, llt, left, right))
	return reg
}

func isCmpOp(op ast.BinaryOp) bool {
	switch op {
	case ast.OpEq, ast.OpNotEq, ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq:
		return true
	}
	return false
}

func cmpPredicate(op ast.BinaryOp, isFloat, signed bool) string {
	if isFloat {
		switch op {
		case ast.OpEq:
			return "oeq"
		case ast.OpNotEq:
			return "one"
		case ast.OpLt:
			return "olt"
		case ast.OpLtEq:
			return "ole"
		case ast.OpGt:
			return "ogt"
		case ast.OpGtEq:
			return "oge"
		}
	}
	switch op {
	case ast.OpEq:
		return "eq"
	case ast.OpNotEq:
		return "ne"
	case ast.OpLt:
		if signed {
			return "slt"
		}
		return "ult"
	case ast.OpLtEq:
		if signed {
			return "sle"
		}
		return "ule"
	case ast.OpGt:
		if signed {
			return "sgt"
		}
		return "ugt"
	case ast.OpGtEq:
		if signed {
			return "sge"
		}
		return "uge"
	}
	return "eq"
}

func arithInstr(op ast.BinaryOp, isFloat, signed bool) (string, bool) {
	if isFloat {
		switch op {
		case ast.OpAdd:
			return "fadd", true
		case ast.OpSub:
			return "fsub", true
		case ast.OpMul:
			return "fmul", true
		case ast.OpDiv:
			return "fdiv", true
		case ast.OpMod:
			return "frem", true
		}
		return "", false
	}
	switch op {
	case ast.OpAdd:
		return "add", true
	case ast.OpSub:
		return "sub", true
	case ast.OpMul:
		return "mul", true
	case ast.OpDiv:
		if signed {
			return "sdiv", true
		}
		return "udiv", true
	case ast.OpMod:
		if signed {
			return "srem", true
		}
		return "urem", true
	case ast.OpBitAnd:
		return "and", true
	case ast.OpBitOr:
		return "or", true
	case ast.OpBitXor:
		return "xor", true
	case ast.OpShl:
		return "shl", true
	case ast.OpShr:
		if signed {
			return "ashr", true
		}
		return "lshr", true
	}
	return "", false
}

// genShortCircuit lowers `and`/`or` to a branch over the right
// operand rather than an eager bitwise op, per spec.md §4.6
// ("short-circuiting and/or lower to br over the right operand").
func (g *Generator) genShortCircuit(n *ast.BinaryExpr) string {
	left := g.genExpr(n.Left)
	rightL := g.w.FreshLabel("sc.rhs.")
	endL := g.w.FreshLabel("sc.end.")
	resultSlot := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca i1", resultSlot))
	g.w.EmitLine(fmt.Sprintf("  store i1 %s, ptr %s", left, resultSlot))
	if n.Op == ast.OpAnd {
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", left, rightL, endL))
	} else {
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", left, endL, rightL))
	}
	g.w.EmitLine(rightL + ":")
	right := g.genExpr(n.Right)
	g.w.EmitLine(fmt.Sprintf("  store i1 %s, ptr %s", right, resultSlot))
	g.w.EmitLine("  br label %" + endL)
	g.w.EmitLine(endL + ":")
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load i1, ptr %s", reg, resultSlot))
	return reg
}

// genUnary lowers `-`, `not`, `~`, `*` (deref), `ref`, `mut ref`.
func (g *Generator) genUnary(n *ast.UnaryExpr) string {
	switch n.Op {
	case ast.OpRef, ast.OpMutRef:
		// A reference is the operand's address, not its value — no
		// load is emitted (spec.md §4.6 "returns the alloca or
		// getelementptr without loading").
		return g.genLValue(n.X)
	case ast.OpDeref:
		ptr := g.genExpr(n.X)
		t := g.inferType(n)
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", reg, g.LowerType(t), ptr))
		return reg
	}
	val := g.genExpr(n.X)
	t := g.inferType(n.X)
	llt := g.LowerType(t)
	reg := g.w.FreshReg()
	switch n.Op {
	case ast.OpNeg:
		if isFloatType(t) {
			g.w.EmitLine(fmt.Sprintf("  %s = fneg %s %s", reg, llt, val))
		} else {
			g.w.EmitLine(fmt.Sprintf("  %s = sub %s 0, %s", reg, llt, val))
		}
	case ast.OpNot:
		g.w.EmitLine(fmt.Sprintf("  %s = xor i1 %s, 1", reg, val))
	case ast.OpBitNot:
		g.w.EmitLine(fmt.Sprintf("  %s = xor %s %s, -1", reg, llt, val))
	}
	return reg
}

// genCompoundOp lowers the value-producing half of a compound
// assignment (`+=`, `&=`, …) given the current and new-operand values.
func (g *Generator) genCompoundOp(op ast.AssignOp, cur, val string, t types.Type) string {
	bop := compoundToBinary(op)
	return g.emitBinaryOp(bop, cur, val, t)
}

func compoundToBinary(op ast.AssignOp) ast.BinaryOp {
	switch op {
	case ast.OpAddAssign:
		return ast.OpAdd
	case ast.OpSubAssign:
		return ast.OpSub
	case ast.OpMulAssign:
		return ast.OpMul
	case ast.OpDivAssign:
		return ast.OpDiv
	case ast.OpModAssign:
		return ast.OpMod
	case ast.OpShlAssign:
		return ast.OpShl
	case ast.OpShrAssign:
		return ast.OpShr
	case ast.OpBitAndAssign:
		return ast.OpBitAnd
	case ast.OpBitOrAssign:
		return ast.OpBitOr
	case ast.OpBitXorAssign:
		return ast.OpBitXor
	}
	return ast.OpAdd
}

// genCast lowers `as`: sign-extend/zero-extend/truncate for integer
// width changes, fp<->int conversions, and ptr<->int, per spec.md
// §4.6 "Cast (as)".
func (g *Generator) genCast(n *ast.CastExpr) string {
	val := g.genExpr(n.X)
	from := g.inferType(n.X)
	to := g.resolveType(n.Type)
	fromLL, toLL := g.LowerType(from), g.LowerType(to)
	if fromLL == toLL {
		return val
	}
	reg := g.w.FreshReg()
	instr := castInstr(from, to, fromLL, toLL)
	g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s to %s", reg, instr, fromLL, val, toLL))
	return reg
}

func castInstr(from, to types.Type, fromLL, toLL string) string {
	fromFloat, toFloat := isFloatType(from), isFloatType(to)
	switch {
	case fromFloat && toFloat:
		if bitWidth(fromLL) < bitWidth(toLL) {
			return "fpext"
		}
		return "fptrunc"
	case fromFloat && !toFloat:
		if isSignedType(to) {
			return "fptosi"
		}
		return "fptoui"
	case !fromFloat && toFloat:
		if isSignedType(from) {
			return "sitofp"
		}
		return "uitofp"
	case fromLL == "ptr" && toLL != "ptr":
		return "ptrtoint"
	case fromLL != "ptr" && toLL == "ptr":
		return "inttoptr"
	default:
		if bitWidth(fromLL) < bitWidth(toLL) {
			if isSignedType(from) {
				return "sext"
			}
			return "zext"
		}
		return "trunc"
	}
}

func bitWidth(llvmType string) int {
	switch llvmType {
	case "i1":
		return 1
	case "i8":
		return 8
	case "i16":
		return 16
	case "i32", "float":
		return 32
	case "i64", "double":
		return 64
	case "i128":
		return 128
	}
	return 64
}

func isFloatType(t types.Type) bool {
	p, ok := t.(types.Primitive)
	return ok && p.Kind.IsFloat()
}

func isSignedType(t types.Type) bool {
	p, ok := t.(types.Primitive)
	if !ok {
		return true
	}
	if p.Kind.IsFloat() {
		return true
	}
	return p.Kind.IsSigned()
}
