package parser

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/lexer"
	"github.com/hivellm/tml/internal/source"
)

// Precedence levels for the Pratt/precedence-climbing expression
// parser (spec.md §4.2's table, lowest to highest binding power).
const (
	PrecNone int = iota
	PrecAssign
	PrecTernary
	PrecOr
	PrecAnd
	PrecComparison
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecUnary
	PrecPostfix
	PrecPrimary
)

// span returns the span from start to the end of the most recently
// consumed token, used by every node constructor that needs its full
// source extent.
func span(p *Parser, start source.Span) source.Span {
	if p.pos == 0 {
		return start
	}
	last := p.toks[p.pos-1].Span
	return source.Span{Start: start.Start, End: last.End}
}

type binOpInfo struct {
	prec  int
	op    ast.BinaryOp
	right bool // right-associative (only `**`)
}

var binOps = map[lexer.Kind]binOpInfo{
	lexer.KwOr:       {PrecOr, ast.OpOr, false},
	lexer.PipePipe:   {PrecOr, ast.OpOr, false},
	lexer.KwAnd:      {PrecAnd, ast.OpAnd, false},
	lexer.AmpAmp:     {PrecAnd, ast.OpAnd, false},
	lexer.Eq:         {PrecComparison, ast.OpEq, false},
	lexer.NotEq:      {PrecComparison, ast.OpNotEq, false},
	lexer.Lt:         {PrecComparison, ast.OpLt, false},
	lexer.LtEq:       {PrecComparison, ast.OpLtEq, false},
	lexer.Gt:         {PrecComparison, ast.OpGt, false},
	lexer.GtEq:       {PrecComparison, ast.OpGtEq, false},
	lexer.Pipe:       {PrecBitOr, ast.OpBitOr, false},
	lexer.Caret:      {PrecBitXor, ast.OpBitXor, false},
	lexer.KwXor:      {PrecBitXor, ast.OpBitXor, false},
	lexer.Amp:        {PrecBitAnd, ast.OpBitAnd, false},
	lexer.Shl:        {PrecShift, ast.OpShl, false},
	lexer.Shr:        {PrecShift, ast.OpShr, false},
	lexer.KwShl:      {PrecShift, ast.OpShl, false},
	lexer.KwShr:      {PrecShift, ast.OpShr, false},
	lexer.Plus:       {PrecAdditive, ast.OpAdd, false},
	lexer.Minus:      {PrecAdditive, ast.OpSub, false},
	lexer.Star:       {PrecMultiplicative, ast.OpMul, false},
	lexer.Slash:      {PrecMultiplicative, ast.OpDiv, false},
	lexer.Percent:    {PrecMultiplicative, ast.OpMod, false},
	lexer.StarStar:   {PrecMultiplicative, ast.OpPow, true},
}

var assignOps = map[lexer.Kind]ast.AssignOp{
	lexer.Assign:         ast.OpAssign,
	lexer.PlusAssign:     ast.OpAddAssign,
	lexer.MinusAssign:    ast.OpSubAssign,
	lexer.StarAssign:     ast.OpMulAssign,
	lexer.SlashAssign:    ast.OpDivAssign,
	lexer.PercentAssign:  ast.OpModAssign,
	lexer.StarStarAssign: ast.OpPowAssign,
	lexer.ShlAssign:      ast.OpShlAssign,
	lexer.ShrAssign:      ast.OpShrAssign,
	lexer.AmpAssign:      ast.OpBitAndAssign,
	lexer.PipeAssign:     ast.OpBitOrAssign,
	lexer.CaretAssign:    ast.OpBitXorAssign,
}

// ParseExpr parses an expression binding at least as tightly as
// minPrec, the single entry point the rest of the parser (and types.go,
// for array sizes and const-generic arguments) calls into.
func (p *Parser) ParseExpr(minPrec int) ast.Expr {
	if minPrec <= PrecAssign {
		return p.parseAssign()
	}
	return p.parseBinary(minPrec)
}

// parseAssign handles `=` and compound-assignment, which are
// right-associative and bind loosest of all operators (spec.md §4.2).
func (p *Parser) parseAssign() ast.Expr {
	start := p.cur().Span
	left := p.parseTernary()
	if op, ok := assignOps[p.cur().Kind]; ok {
		p.Advance()
		value := p.parseAssign()
		return &ast.AssignExpr{Sp: span(p, start), Op: op, Target: left, Value: value}
	}
	return left
}

// parseTernary handles `cond ? then : else`, binding tighter than
// assignment but looser than every binary operator.
func (p *Parser) parseTernary() ast.Expr {
	start := p.cur().Span
	cond := p.parseRange()
	if p.Optional(lexer.Question) {
		then := p.ParseExpr(PrecAssign)
		p.Expect(lexer.Colon, "':'")
		els := p.ParseExpr(PrecAssign)
		return &ast.TernaryExpr{Sp: span(p, start), Cond: cond, Then: then, Else: els}
	}
	return cond
}

// parseRange handles `a..b`, `a..=b`, `a to b`, `a through b`, and
// their open-ended forms, sitting between ternary and the binary
// operator chain (spec.md GLOSSARY "Range").
func (p *Parser) parseRange() ast.Expr {
	start := p.cur().Span
	if p.isRangeStart() {
		return p.parseRangeTail(start, nil)
	}
	low := p.parseBinary(PrecOr)
	if p.isRangeStart() {
		return p.parseRangeTail(start, low)
	}
	return low
}

func (p *Parser) isRangeStart() bool {
	return p.IsAny(lexer.DotDot, lexer.DotDotEq, lexer.KwTo, lexer.KwThrough)
}

func (p *Parser) parseRangeTail(start source.Span, low ast.Expr) ast.Expr {
	inclusive := p.IsAny(lexer.DotDotEq, lexer.KwThrough)
	p.Advance()
	var high ast.Expr
	if !p.isExprEnd() {
		high = p.parseBinary(PrecOr)
	}
	return &ast.RangeExpr{Sp: span(p, start), Low: low, High: high, Inclusive: inclusive}
}

// isExprEnd reports whether the current token cannot start an
// expression, used to detect an open-ended range's missing bound.
func (p *Parser) isExprEnd() bool {
	switch p.cur().Kind {
	case lexer.RBracket, lexer.RParen, lexer.RBrace, lexer.Comma, lexer.Semicolon,
		lexer.Newline, lexer.Eof, lexer.Colon, lexer.FatArrow:
		return true
	}
	return false
}

// parseBinary is the precedence-climbing core over the symmetric
// binary-operator table.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	start := p.cur().Span
	left := p.parseUnary()
	for {
		info, ok := binOps[p.cur().Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		p.Advance()
		nextMin := info.prec + 1
		if info.right {
			nextMin = info.prec
		}
		right := p.parseBinary(nextMin)
		left = &ast.BinaryExpr{Sp: span(p, start), Op: info.op, Left: left, Right: right}
	}
}

// parseUnary handles prefix operators, recursing on itself so chains
// like `- - x` or `not not b` parse, then hands off to postfix.
func (p *Parser) parseUnary() ast.Expr {
	start := p.cur().Span
	switch {
	case p.Is(lexer.Minus):
		p.Advance()
		return p.finishUnary(start, ast.OpNeg)
	case p.IsAny(lexer.KwNot, lexer.Bang):
		p.Advance()
		return p.finishUnary(start, ast.OpNot)
	case p.Is(lexer.Tilde):
		p.Advance()
		return p.finishUnary(start, ast.OpBitNot)
	case p.Is(lexer.Star):
		p.Advance()
		return p.finishUnary(start, ast.OpDeref)
	case p.Is(lexer.KwRef):
		p.Advance()
		if p.Optional(lexer.KwMut) {
			return p.finishUnary(start, ast.OpMutRef)
		}
		return p.finishUnary(start, ast.OpRef)
	case p.Is(lexer.KwMove) && p.peekAt(1).Kind == lexer.KwDo:
		return p.parseClosure(start, true)
	case p.Is(lexer.KwDo):
		return p.parseClosure(start, false)
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) finishUnary(start source.Span, op ast.UnaryOp) ast.Expr {
	x := p.parseUnary()
	return p.parsePostfix(&ast.UnaryExpr{Sp: span(p, start), Op: op, X: x})
}

// parsePostfix chains field/index/call/cast/try/await/increment
// suffixes onto x until none apply.
func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
	start := x.Span()
	for {
		switch {
		case p.Is(lexer.Dot):
			p.Advance()
			name := p.Expect(lexer.Ident, "field or method name").Lexeme
			if p.Is(lexer.LBracket) {
				// Explicit generic arguments on a method call: `.name[T](args)`.
				p.Advance()
				var typeArgs []ast.Type
				for !p.Is(lexer.RBracket) && !p.Is(lexer.Eof) {
					typeArgs = append(typeArgs, p.ParseType())
					if !p.Optional(lexer.Comma) {
						break
					}
				}
				p.Expect(lexer.RBracket, "']'")
				args := p.parseArgList()
				x = &ast.MethodCallExpr{Sp: span(p, start), Receiver: x, Method: name, TypeArgs: typeArgs, Args: args}
				continue
			}
			if p.Is(lexer.LParen) {
				args := p.parseArgList()
				x = &ast.MethodCallExpr{Sp: span(p, start), Receiver: x, Method: name, Args: args}
				continue
			}
			x = &ast.FieldExpr{Sp: span(p, start), X: x, Field: name}
		case p.Is(lexer.DotAwait):
			p.Advance()
			x = &ast.AwaitExpr{Sp: span(p, start), X: x}
		case p.Is(lexer.LBracket):
			p.Advance()
			saved := p.noStructLit
			p.noStructLit = false
			idx := p.ParseExpr(PrecAssign)
			p.noStructLit = saved
			p.Expect(lexer.RBracket, "']'")
			x = &ast.IndexExpr{Sp: span(p, start), X: x, Index: idx}
		case p.Is(lexer.LParen):
			args := p.parseArgList()
			x = &ast.CallExpr{Sp: span(p, start), Callee: x, Args: args}
		case p.IsAny(lexer.Bang, lexer.Question):
			p.Advance()
			x = &ast.TryExpr{Sp: span(p, start), X: x}
		case p.Is(lexer.KwAs):
			p.Advance()
			t := p.ParseType()
			x = &ast.CastExpr{Sp: span(p, start), X: x, Type: t}
		case p.Is(lexer.KwIs):
			p.Advance()
			t := p.ParseType()
			x = &ast.TypeCheckExpr{Sp: span(p, start), X: x, Type: t}
		case p.Is(lexer.PlusPlus):
			p.Advance()
			x = &ast.PostfixExpr{Sp: span(p, start), Op: ast.OpPostInc, X: x}
		case p.Is(lexer.MinusMinus):
			p.Advance()
			x = &ast.PostfixExpr{Sp: span(p, start), Op: ast.OpPostDec, X: x}
		default:
			return x
		}
	}
}

func (p *Parser) parseArgList() []ast.Expr {
	saved := p.noStructLit
	p.noStructLit = false
	p.Expect(lexer.LParen, "'('")
	args := SeparatedList(p, lexer.RParen, func() ast.Expr {
		return p.ParseExpr(PrecAssign)
	}, func(e ast.Expr) bool { return e == nil })
	p.Expect(lexer.RParen, "')'")
	p.noStructLit = saved
	return args
}

// parseClosure parses `do(params) body` / `move do(params) body`
// (spec.md GLOSSARY "Closure").
func (p *Parser) parseClosure(start source.Span, move bool) ast.Expr {
	if move {
		p.Advance() // 'move'
	}
	p.Advance() // 'do'
	p.Expect(lexer.LParen, "'('")
	params := SeparatedList(p, lexer.RParen, func() ast.ClosureParam {
		name := p.Expect(lexer.Ident, "parameter name").Lexeme
		var t ast.Type
		if p.Optional(lexer.Colon) {
			t = p.ParseType()
		}
		return ast.ClosureParam{Name: name, Type: t}
	}, func(c ast.ClosureParam) bool { return c.Name == "" })
	p.Expect(lexer.RParen, "')'")
	var ret ast.Type
	if p.Optional(lexer.Arrow) {
		ret = p.ParseType()
	}
	body := p.ParseExpr(PrecAssign)
	return &ast.ClosureExpr{Sp: span(p, start), Params: params, RetType: ret, Body: body, Move: move}
}

// parsePrimary parses every expression form that cannot itself begin
// with a prefix or infix operator: literals, names, grouped/composite
// literals, and the block-shaped control-flow expressions.
func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span
	switch {
	case p.Is(lexer.IntLiteral):
		tok := p.Advance()
		return &ast.IntLit{Sp: tok.Span, Value: tok.Value.Int, Uint: tok.Value.Uint, Base: tok.Value.Base, Suffix: tok.Value.Suffix}
	case p.Is(lexer.FloatLiteral):
		tok := p.Advance()
		return &ast.FloatLit{Sp: tok.Span, Value: tok.Value.Float, Suffix: tok.Value.Suffix}
	case p.Is(lexer.StringLit):
		tok := p.Advance()
		return &ast.StringLit{Sp: tok.Span, Value: tok.Value.Str}
	case p.Is(lexer.RawStringLit):
		tok := p.Advance()
		return &ast.StringLit{Sp: tok.Span, Value: tok.Value.Str, Raw: true}
	case p.Is(lexer.CharLiteral):
		tok := p.Advance()
		return &ast.CharLit{Sp: tok.Span, Value: rune(tok.Value.Int)}
	case p.Is(lexer.BoolLiteral):
		tok := p.Advance()
		return &ast.BoolLit{Sp: tok.Span, Value: tok.Value.Bool}
	case p.Is(lexer.NullLiteral):
		tok := p.Advance()
		return &ast.NullLit{Sp: tok.Span}
	case p.IsAny(lexer.InterpStringStart, lexer.TemplateLiteralStart):
		isTemplate := p.Is(lexer.TemplateLiteralStart)
		return p.parseInterpolated(isTemplate)
	case p.Is(lexer.KwThis):
		tok := p.Advance()
		return &ast.IdentExpr{Sp: tok.Span, Name: "this"}
	case p.Is(lexer.KwBase):
		return p.parseBaseExpr(start)
	case p.Is(lexer.KwNew):
		return p.parseNewExpr(start)
	case p.Is(lexer.KwReturn):
		p.Advance()
		var v ast.Expr
		if !p.isExprEnd() {
			v = p.ParseExpr(PrecAssign)
		}
		return &ast.ReturnExpr{Sp: span(p, start), Value: v}
	case p.Is(lexer.KwBreak):
		p.Advance()
		label := p.optionalLabel()
		var v ast.Expr
		if !p.isExprEnd() {
			v = p.ParseExpr(PrecAssign)
		}
		return &ast.BreakExpr{Sp: span(p, start), Label: label, Value: v}
	case p.Is(lexer.KwContinue):
		p.Advance()
		label := p.optionalLabel()
		return &ast.ContinueExpr{Sp: span(p, start), Label: label}
	case p.Is(lexer.KwThrow):
		p.Advance()
		v := p.ParseExpr(PrecAssign)
		return &ast.ThrowExpr{Sp: span(p, start), Value: v}
	case p.Is(lexer.KwAwait):
		p.Advance()
		x := p.parseUnary()
		return &ast.AwaitExpr{Sp: span(p, start), X: x}
	case p.Is(lexer.KwLowlevel):
		p.Advance()
		body := p.ParseBlock()
		return &ast.LowlevelExpr{Sp: span(p, start), Body: body}
	case p.Is(lexer.KwIf):
		return p.parseIfExpr()
	case p.Is(lexer.KwWhen):
		return p.parseWhenExpr()
	case p.Is(lexer.KwLoop):
		return p.parseLoopExpr("")
	case p.Is(lexer.KwWhile):
		return p.parseWhileExpr("")
	case p.Is(lexer.KwFor):
		return p.parseForExpr("")
	case p.Is(lexer.At) && p.peekAt(1).Kind == lexer.Ident:
		// Labeled loop: `@label: loop { … }` / `while` / `for`.
		p.Advance()
		label := p.Expect(lexer.Ident, "label name").Lexeme
		p.Expect(lexer.Colon, "':'")
		switch {
		case p.Is(lexer.KwLoop):
			return p.parseLoopExpr(label)
		case p.Is(lexer.KwWhile):
			return p.parseWhileExpr(label)
		case p.Is(lexer.KwFor):
			return p.parseForExpr(label)
		default:
			p.errorf("expected 'loop', 'while', or 'for' after label")
			return &ast.NullLit{Sp: span(p, start)}
		}
	case p.Is(lexer.LBrace):
		return p.ParseBlock()
	case p.Is(lexer.LBracket):
		return p.parseArrayLit(start)
	case p.Is(lexer.LParen):
		return p.parseParenExpr(start)
	case p.Is(lexer.Ident):
		return p.parseIdentOrStructLit(start)
	default:
		p.errorf("expected an expression")
		p.Advance()
		return &ast.NullLit{Sp: span(p, start)}
	}
}

func (p *Parser) optionalLabel() string {
	if p.Is(lexer.At) && p.peekAt(1).Kind == lexer.Ident {
		p.Advance()
		return p.Advance().Lexeme
	}
	return ""
}

func (p *Parser) parseBaseExpr(start source.Span) ast.Expr {
	p.Advance() // 'base'
	if p.Is(lexer.LParen) {
		args := p.parseArgList()
		return &ast.BaseCallExpr{Sp: span(p, start), Args: args}
	}
	if p.Optional(lexer.Dot) {
		method := p.Expect(lexer.Ident, "method name").Lexeme
		args := p.parseArgList()
		return &ast.BaseCallExpr{Sp: span(p, start), Method: method, Args: args}
	}
	return &ast.IdentExpr{Sp: span(p, start), Name: "base"}
}

func (p *Parser) parseNewExpr(start source.Span) ast.Expr {
	p.Advance() // 'new'
	t := p.ParseType()
	args := p.parseArgList()
	return &ast.NewExpr{Sp: span(p, start), Type: t, Args: args}
}

func (p *Parser) parseArrayLit(start source.Span) ast.Expr {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	p.Advance() // '['
	if p.Is(lexer.RBracket) {
		p.Advance()
		return &ast.ArrayLit{Sp: span(p, start)}
	}
	first := p.ParseExpr(PrecAssign)
	if p.Optional(lexer.Semicolon) {
		count := p.ParseExpr(PrecAssign)
		p.Expect(lexer.RBracket, "']'")
		return &ast.ArrayRepeatLit{Sp: span(p, start), Elem: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.Optional(lexer.Comma) {
		if p.Is(lexer.RBracket) {
			break
		}
		elems = append(elems, p.ParseExpr(PrecAssign))
	}
	p.Expect(lexer.RBracket, "']'")
	return &ast.ArrayLit{Sp: span(p, start), Elems: elems}
}

// parseParenExpr parses `(e)` (a grouped expression) or `(e0, e1, …)`
// (a tuple literal); a single trailing comma `(e,)` still yields a
// one-element tuple.
func (p *Parser) parseParenExpr(start source.Span) ast.Expr {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	p.Advance() // '('
	if p.Is(lexer.RParen) {
		p.Advance()
		return &ast.TupleLit{Sp: span(p, start)}
	}
	first := p.ParseExpr(PrecAssign)
	if !p.Is(lexer.Comma) {
		p.Expect(lexer.RParen, "')'")
		return first
	}
	elems := []ast.Expr{first}
	for p.Optional(lexer.Comma) {
		if p.Is(lexer.RParen) {
			break
		}
		elems = append(elems, p.ParseExpr(PrecAssign))
	}
	p.Expect(lexer.RParen, "')'")
	return &ast.TupleLit{Sp: span(p, start), Elems: elems}
}

// parseIdentOrStructLit disambiguates a bare/path identifier from a
// struct literal `Type { field: value, … }`. Struct literals are not
// recognized in positions where `{` would instead open a block (the
// caller suppresses them there by setting noStructLit; otherwise one is
// accepted whenever an identifier/path is immediately followed by `{`).
func (p *Parser) parseIdentOrStructLit(start source.Span) ast.Expr {
	nt := p.parseNamedType(start)
	if p.Is(lexer.LBrace) && !p.noStructLit {
		return p.parseStructLitBody(start, nt)
	}
	if len(nt.TypeArgs) == 0 && len(nt.ConstArgs) == 0 && len(nt.Path.Segments) == 1 {
		return &ast.IdentExpr{Sp: nt.Sp, Name: nt.Path.Segments[0]}
	}
	return &ast.PathExpr{Sp: nt.Sp, Path: nt.Path, TypeArgs: nt.TypeArgs, ConstArgs: nt.ConstArgs}
}

func (p *Parser) parseStructLitBody(start source.Span, nt *ast.NamedType) ast.Expr {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	p.Advance() // '{'
	var fields []ast.StructFieldInit
	var spread ast.Expr
	p.skipNewlines()
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		if p.Optional(lexer.DotDot) {
			spread = p.ParseExpr(PrecAssign)
			p.skipNewlines()
			break
		}
		name := p.Expect(lexer.Ident, "field name").Lexeme
		var value ast.Expr
		if p.Optional(lexer.Colon) {
			value = p.ParseExpr(PrecAssign)
		} else {
			value = &ast.IdentExpr{Sp: span(p, start), Name: name}
		}
		fields = append(fields, ast.StructFieldInit{Name: name, Value: value})
		p.skipNewlines()
		if !p.Optional(lexer.Comma) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	p.Expect(lexer.RBrace, "'}'")
	return &ast.StructLit{Sp: span(p, start), Type: nt, Fields: fields, Spread: spread}
}

// ParseBlock parses a `{ … }` block expression: a sequence of
// statements with an optional trailing tail expression.
func (p *Parser) ParseBlock() *ast.BlockExpr {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	start := p.cur().Span
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	var stmts []ast.Stmt
	var tail ast.Expr
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		s, trailing := p.parseBlockMember()
		if trailing != nil {
			tail = trailing
			p.skipNewlines()
			break
		}
		if s != nil {
			stmts = append(stmts, s)
		}
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.BlockExpr{Sp: span(p, start), Stmts: stmts, Tail: tail}
}

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.Advance() // 'if'
	if p.Is(lexer.KwLet) {
		p.Advance()
		pat := p.ParsePattern()
		p.Expect(lexer.Assign, "'='")
		saved := p.noStructLit
		p.noStructLit = true
		value := p.ParseExpr(PrecAssign)
		p.noStructLit = saved
		then := p.ParseBlock()
		var els ast.Expr
		if p.Optional(lexer.KwElse) {
			els = p.parseElseTail()
		}
		return &ast.IfLetExpr{Sp: span(p, start), Pattern: pat, Value: value, Then: then, Else: els}
	}
	cond := p.parseCondExpr()
	then := p.ParseBlock()
	var els ast.Expr
	if p.Optional(lexer.KwElse) {
		els = p.parseElseTail()
	}
	return &ast.IfExpr{Sp: span(p, start), Cond: cond, Then: then, Else: els}
}

// parseCondExpr parses an if/while/for/when condition or scrutinee
// with struct-literal recognition suppressed, so its trailing `{`
// belongs to the body block instead.
func (p *Parser) parseCondExpr() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = true
	e := p.ParseExpr(PrecTernary)
	p.noStructLit = saved
	return e
}

func (p *Parser) parseElseTail() ast.Expr {
	if p.Is(lexer.KwIf) {
		return p.parseIfExpr()
	}
	return p.ParseBlock()
}

func (p *Parser) parseWhenExpr() ast.Expr {
	start := p.cur().Span
	p.Advance() // 'when'
	scrutinee := p.parseCondExpr()
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	var arms []ast.WhenArm
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		pat := p.ParsePattern()
		for p.Is(lexer.Pipe) {
			p.Advance()
			alts := []ast.Pattern{pat, p.ParsePattern()}
			for p.Is(lexer.Pipe) {
				p.Advance()
				alts = append(alts, p.ParsePattern())
			}
			pat = &ast.OrPattern{Sp: span(p, pat.Span()), Alternatives: alts}
		}
		var guard ast.Expr
		if p.Optional(lexer.KwIf) {
			guard = p.ParseExpr(PrecTernary)
		}
		p.Expect(lexer.FatArrow, "'=>'")
		body := p.ParseExpr(PrecAssign)
		arms = append(arms, ast.WhenArm{Pattern: pat, Guard: guard, Body: body})
		p.skipNewlines()
		p.Optional(lexer.Comma)
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.WhenExpr{Sp: span(p, start), Scrutinee: scrutinee, Arms: arms}
}

func (p *Parser) parseLoopExpr(label string) ast.Expr {
	start := p.cur().Span
	p.Advance() // 'loop'
	body := p.ParseBlock()
	return &ast.LoopExpr{Sp: span(p, start), Label: label, Body: body}
}

func (p *Parser) parseWhileExpr(label string) ast.Expr {
	start := p.cur().Span
	p.Advance() // 'while'
	cond := p.parseCondExpr()
	body := p.ParseBlock()
	return &ast.WhileExpr{Sp: span(p, start), Label: label, Cond: cond, Body: body}
}

func (p *Parser) parseForExpr(label string) ast.Expr {
	start := p.cur().Span
	p.Advance() // 'for'
	pat := p.ParsePattern()
	p.Expect(lexer.KwIn, "'in'")
	iterable := p.parseCondExpr()
	body := p.ParseBlock()
	return &ast.ForExpr{Sp: span(p, start), Label: label, Pattern: pat, Iterable: iterable, Body: body}
}

// parseInterpolated assembles an InterpStringExpr/TemplateLitExpr from
// the lexer's Start/Middle/End segment tokens, re-entering expression
// parsing for each embedded `{expr}` (spec.md §4.1/§4.2).
func (p *Parser) parseInterpolated(isTemplate bool) ast.Expr {
	start := p.cur().Span
	first := p.Advance() // Start token
	var segments []ast.InterpSegment
	text := first.Value.Str
	for {
		expr := p.ParseExpr(PrecAssign)
		next := p.cur()
		switch next.Kind {
		case lexer.InterpStringMiddle, lexer.TemplateLiteralMiddle:
			p.Advance()
			segments = append(segments, ast.InterpSegment{Text: text, Expr: expr})
			text = next.Value.Str
		case lexer.InterpStringEnd, lexer.TemplateLiteralEnd:
			p.Advance()
			segments = append(segments, ast.InterpSegment{Text: text, Expr: expr})
			segments = append(segments, ast.InterpSegment{Text: next.Value.Str})
			return p.finishInterpolated(start, isTemplate, segments)
		default:
			p.errorf("expected interpolation continuation")
			segments = append(segments, ast.InterpSegment{Text: text, Expr: expr})
			return p.finishInterpolated(start, isTemplate, segments)
		}
	}
}

func (p *Parser) finishInterpolated(start source.Span, isTemplate bool, segments []ast.InterpSegment) ast.Expr {
	if isTemplate {
		return &ast.TemplateLitExpr{Sp: span(p, start), Segments: segments}
	}
	return &ast.InterpStringExpr{Sp: span(p, start), Segments: segments}
}

// parseBlockMember parses one block member: either a statement (bound
// into stmts) or, for the last expression with no trailing separator,
// the block's tail expression (returned as the second value).
func (p *Parser) parseBlockMember() (ast.Stmt, ast.Expr) {
	return p.parseStmtOrTail()
}
