package parser

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/lexer"
	"github.com/hivellm/tml/internal/source"
)

// ParsePattern parses a single pattern. Or-patterns (`p1 | p2`) are
// only assembled by callers that permit them (match arms); ParsePattern
// itself always returns one alternative, per spec.md §4.2 "or-patterns
// are legal only at the top level of a match arm".
func (p *Parser) ParsePattern() ast.Pattern {
	start := p.cur().Span
	pat := p.parsePrimaryPattern(start)
	if p.Is(lexer.At) {
		p.Advance()
		if ip, ok := pat.(*ast.IdentPattern); ok {
			ip.Sub = p.ParsePattern()
			ip.Sp = span(p, start)
			return ip
		}
		p.errorf("'@' sub-binding requires a name on its left")
	}
	if p.IsAny(lexer.KwTo, lexer.KwThrough) {
		return p.parseRangePatternTail(start, patternToExpr(pat))
	}
	return pat
}

func (p *Parser) parsePrimaryPattern(start source.Span) ast.Pattern {
	switch {
	case p.Is(lexer.Ident) && p.cur().Lexeme == "_":
		p.Advance()
		return &ast.WildcardPattern{Sp: span(p, start)}
	case p.Is(lexer.KwMut):
		p.Advance()
		name := p.Expect(lexer.Ident, "identifier").Lexeme
		return &ast.IdentPattern{Sp: span(p, start), Name: name, Mut: true}
	case p.Is(lexer.LParen):
		return p.parseTuplePattern(start)
	case p.Is(lexer.LBracket):
		return p.parseArrayPattern(start)
	case p.IsAny(lexer.IntLiteral, lexer.FloatLiteral, lexer.StringLit, lexer.CharLiteral,
		lexer.BoolLiteral, lexer.NullLiteral, lexer.Minus):
		return p.parseLiteralOrRangePattern(start)
	case p.Is(lexer.Ident):
		return p.parsePathOrBindingPattern(start)
	default:
		p.errorf("expected a pattern")
		p.Advance()
		return &ast.WildcardPattern{Sp: span(p, start)}
	}
}

func (p *Parser) parseLiteralOrRangePattern(start source.Span) ast.Pattern {
	lit := p.parseLiteralExpr()
	if p.IsAny(lexer.KwTo, lexer.KwThrough) {
		return p.parseRangePatternTail(start, lit)
	}
	return &ast.LiteralPattern{Sp: span(p, start), Value: lit}
}

// parseLiteralExpr parses the small subset of expressions legal as a
// pattern literal: signed numeric/string/char/bool/null literals.
func (p *Parser) parseLiteralExpr() ast.Expr {
	start := p.cur().Span
	neg := p.Optional(lexer.Minus)
	tok := p.Advance()
	var lit ast.Expr
	switch tok.Kind {
	case lexer.IntLiteral:
		v := tok.Value.Int
		if neg {
			v = -v
		}
		lit = &ast.IntLit{Sp: span(p, start), Value: v, Uint: tok.Value.Uint, Base: tok.Value.Base, Suffix: tok.Value.Suffix}
	case lexer.FloatLiteral:
		v := tok.Value.Float
		if neg {
			v = -v
		}
		lit = &ast.FloatLit{Sp: span(p, start), Value: v, Suffix: tok.Value.Suffix}
	case lexer.StringLit:
		lit = &ast.StringLit{Sp: span(p, start), Value: tok.Value.Str}
	case lexer.CharLiteral:
		lit = &ast.CharLit{Sp: span(p, start), Value: rune(tok.Value.Int)}
	case lexer.BoolLiteral:
		lit = &ast.BoolLit{Sp: span(p, start), Value: tok.Value.Bool}
	case lexer.NullLiteral:
		lit = &ast.NullLit{Sp: span(p, start)}
	default:
		p.errorf("expected a literal pattern")
		lit = &ast.NullLit{Sp: span(p, start)}
	}
	return lit
}

func (p *Parser) parseRangePatternTail(start source.Span, low ast.Expr) ast.Pattern {
	inclusive := p.Is(lexer.KwThrough)
	p.Advance()
	high := p.parseLiteralExpr()
	return &ast.RangePattern{Sp: span(p, start), Low: low, High: high, Inclusive: inclusive}
}

// patternToExpr recovers the expression a (possibly bare) literal
// pattern wraps, for use as a range pattern's low bound when the
// pattern was first parsed as an identifier/literal ambiguity.
func patternToExpr(pat ast.Pattern) ast.Expr {
	if lp, ok := pat.(*ast.LiteralPattern); ok {
		return lp.Value
	}
	return nil
}

// parsePathOrBindingPattern disambiguates a plain binding name from a
// struct/enum pattern qualified by a type path.
func (p *Parser) parsePathOrBindingPattern(start source.Span) ast.Pattern {
	var segs []string
	segs = append(segs, p.Advance().Lexeme)
	for p.Is(lexer.ColonColon) {
		p.Advance()
		segs = append(segs, p.Expect(lexer.Ident, "identifier").Lexeme)
	}
	if len(segs) == 1 && !p.IsAny(lexer.LBrace, lexer.LParen) {
		return &ast.IdentPattern{Sp: span(p, start), Name: segs[0]}
	}
	path := &ast.Path{Sp: span(p, start), Segments: segs}
	switch {
	case p.Is(lexer.LBrace):
		return p.parseStructPattern(start, path)
	case p.Is(lexer.LParen):
		variant := segs[len(segs)-1]
		typ := &ast.Path{Sp: path.Sp, Segments: segs[:len(segs)-1]}
		p.Advance()
		var payload []ast.Pattern
		for !p.Is(lexer.RParen) && !p.Is(lexer.Eof) {
			payload = append(payload, p.ParsePattern())
			if !p.Optional(lexer.Comma) {
				break
			}
		}
		p.Expect(lexer.RParen, "')'")
		return &ast.EnumPattern{Sp: span(p, start), Type: typ, Variant: variant, Payload: payload}
	default:
		variant := segs[len(segs)-1]
		typ := &ast.Path{Sp: path.Sp, Segments: segs[:len(segs)-1]}
		return &ast.EnumPattern{Sp: span(p, start), Type: typ, Variant: variant}
	}
}

func (p *Parser) parseStructPattern(start source.Span, path *ast.Path) ast.Pattern {
	p.Advance() // '{'
	p.skipNewlines()
	var fields []ast.StructFieldPattern
	rest := false
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		if p.Optional(lexer.DotDot) {
			rest = true
			p.skipNewlines()
			break
		}
		name := p.Expect(lexer.Ident, "field name").Lexeme
		var sub ast.Pattern
		if p.Optional(lexer.Colon) {
			sub = p.ParsePattern()
		}
		fields = append(fields, ast.StructFieldPattern{Name: name, Pattern: sub})
		p.skipNewlines()
		if !p.Optional(lexer.Comma) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	p.Expect(lexer.RBrace, "'}'")
	return &ast.StructPattern{Sp: span(p, start), Type: path, Fields: fields, Rest: rest}
}

func (p *Parser) parseTuplePattern(start source.Span) ast.Pattern {
	p.Advance() // '('
	var elems []ast.Pattern
	rest := -1
	for !p.Is(lexer.RParen) && !p.Is(lexer.Eof) {
		if p.Is(lexer.DotDot) {
			p.Advance()
			rest = len(elems)
		} else {
			elems = append(elems, p.ParsePattern())
		}
		if !p.Optional(lexer.Comma) {
			break
		}
	}
	p.Expect(lexer.RParen, "')'")
	return &ast.TuplePattern{Sp: span(p, start), Elems: elems, Rest: rest}
}

func (p *Parser) parseArrayPattern(start source.Span) ast.Pattern {
	p.Advance() // '['
	var elems []ast.Pattern
	rest := -1
	restName := ""
	for !p.Is(lexer.RBracket) && !p.Is(lexer.Eof) {
		if p.Is(lexer.DotDot) {
			p.Advance()
			rest = len(elems)
			if p.Is(lexer.Ident) {
				restName = p.Advance().Lexeme
			}
		} else {
			elems = append(elems, p.ParsePattern())
		}
		if !p.Optional(lexer.Comma) {
			break
		}
	}
	p.Expect(lexer.RBracket, "']'")
	return &ast.ArrayPattern{Sp: span(p, start), Elems: elems, Rest: rest, RestName: restName}
}
