package parser

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/lexer"
	"github.com/hivellm/tml/internal/source"
)

// ParseType parses any of the type-node forms in spec.md §3.3/§4.2.
func (p *Parser) ParseType() ast.Type {
	start := p.cur().Span
	switch {
	case p.Is(lexer.KwRef):
		p.Advance()
		mut := p.Optional(lexer.KwMut)
		lifetime := ""
		if p.Optional(lexer.LBracket) {
			lifetime = p.Expect(lexer.Ident, "lifetime name").Lexeme
			p.Expect(lexer.RBracket, "']'")
		}
		elem := p.ParseType()
		return &ast.RefType{Sp: span(p, start), Mutable: mut, Lifetime: lifetime, Elem: elem}
	case p.Is(lexer.KwMut) && p.peekAt(1).Kind == lexer.KwRef:
		p.Advance()
		p.Advance()
		lifetime := ""
		if p.Optional(lexer.LBracket) {
			lifetime = p.Expect(lexer.Ident, "lifetime name").Lexeme
			p.Expect(lexer.RBracket, "']'")
		}
		elem := p.ParseType()
		return &ast.RefType{Sp: span(p, start), Mutable: true, Lifetime: lifetime, Elem: elem}
	case p.Is(lexer.Star):
		p.Advance()
		mut := p.Optional(lexer.KwMut)
		elem := p.ParseType()
		return &ast.PointerType{Sp: span(p, start), Mutable: mut, Elem: elem}
	case p.Is(lexer.LBracket):
		return p.parseArrayOrSliceType(start)
	case p.Is(lexer.LParen):
		return p.parseTupleOrFuncType(start)
	case p.Is(lexer.KwDyn):
		p.Advance()
		behavior := p.parseNamedType(start)
		return &ast.DynType{Sp: span(p, start), Behavior: behavior}
	case p.Is(lexer.KwImpl):
		p.Advance()
		behavior := p.parseNamedType(start)
		return &ast.ImplType{Sp: span(p, start), Behavior: behavior}
	case p.Is(lexer.Ident):
		if p.cur().Lexeme == "_" {
			p.Advance()
			return &ast.InferType{Sp: span(p, start)}
		}
		return p.parseNamedType(start)
	default:
		p.errorf("expected a type")
		p.Advance()
		return &ast.InferType{Sp: span(p, start)}
	}
}

func (p *Parser) parseNamedType(start source.Span) *ast.NamedType {
	var segs []string
	segs = append(segs, p.Expect(lexer.Ident, "type name").Lexeme)
	for p.Is(lexer.ColonColon) {
		p.Advance()
		segs = append(segs, p.Expect(lexer.Ident, "identifier").Lexeme)
	}
	path := &ast.Path{Sp: span(p, start), Segments: segs}

	var typeArgs []ast.Type
	var constArgs []ast.Expr
	if p.Is(lexer.LBracket) {
		p.Advance()
		for !p.Is(lexer.RBracket) && !p.Is(lexer.Eof) {
			if looksLikeConstArg(p) {
				constArgs = append(constArgs, p.ParseExpr(PrecAssign))
			} else {
				typeArgs = append(typeArgs, p.ParseType())
			}
			if !p.Optional(lexer.Comma) {
				break
			}
		}
		p.Expect(lexer.RBracket, "']'")
	}
	return &ast.NamedType{Sp: span(p, start), Path: path, TypeArgs: typeArgs, ConstArgs: constArgs}
}

// looksLikeConstArg heuristically distinguishes a const-generic
// argument (an integer literal or a boolean literal) from a type
// argument at a `[...]` generic-argument position.
func looksLikeConstArg(p *Parser) bool {
	return p.Is(lexer.IntLiteral) || p.Is(lexer.KwTrue) || p.Is(lexer.KwFalse)
}

func (p *Parser) parseArrayOrSliceType(start source.Span) ast.Type {
	p.Advance() // '['
	elem := p.ParseType()
	if p.Optional(lexer.Semicolon) {
		size := p.ParseExpr(PrecAssign)
		p.Expect(lexer.RBracket, "']'")
		return &ast.ArrayType{Sp: span(p, start), Elem: elem, Size: size}
	}
	p.Expect(lexer.RBracket, "']'")
	return &ast.SliceType{Sp: span(p, start), Elem: elem}
}

func (p *Parser) parseTupleOrFuncType(start source.Span) ast.Type {
	p.Advance() // '('
	var elems []ast.Type
	for !p.Is(lexer.RParen) && !p.Is(lexer.Eof) {
		elems = append(elems, p.ParseType())
		if !p.Optional(lexer.Comma) {
			break
		}
	}
	p.Expect(lexer.RParen, "')'")
	if p.Optional(lexer.Arrow) {
		ret := p.ParseType()
		return &ast.FuncType{Sp: span(p, start), Params: elems, Ret: ret}
	}
	return &ast.TupleType{Sp: span(p, start), Elems: elems}
}
