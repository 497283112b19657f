package parser

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/lexer"
)

// parseClassDecl parses the OOP overlay's `class` declaration: fields,
// properties, methods (each with its own visibility/modifiers), and at
// most one constructor, plus `extends`/`implements` lists (spec.md
// GLOSSARY "Class").
func (p *Parser) parseClassDecl(doc string, decorators []ast.Decorator) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'class'
	sealed := false
	abstract := false
	name := p.Expect(lexer.Ident, "class name").Lexeme
	generics := p.parseGenericParams()
	var extends *ast.NamedType
	if p.Optional(lexer.KwExtends) {
		extends = p.parseNamedType(p.cur().Span)
	}
	var implements []*ast.NamedType
	if p.Optional(lexer.KwImplements) {
		implements = append(implements, p.parseNamedType(p.cur().Span))
		for p.Optional(lexer.Comma) {
			implements = append(implements, p.parseNamedType(p.cur().Span))
		}
	}
	for _, d := range decorators {
		switch d.Name {
		case "sealed":
			sealed = true
		case "abstract":
			abstract = true
		}
	}
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	decl := &ast.ClassDecl{
		Sp: start, Doc: doc, Decorators: decorators, Name: name, Generics: generics,
		Extends: extends, Implements: implements, Sealed: sealed, Abstract: abstract,
	}
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		p.parseClassMember(decl)
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	decl.Sp = span(p, start)
	return decl
}

func (p *Parser) parseClassMember(decl *ast.ClassDecl) {
	p.parseDocComment()
	vis := p.parseVisibility()
	mods := p.parseMethodModifiers()
	switch {
	case p.Is(lexer.KwNew):
		p.Advance()
		params := p.parseParamList()
		var baseArgs []ast.Expr
		if p.Optional(lexer.Colon) {
			p.Expect(lexer.KwBase, "'base'")
			baseArgs = p.parseArgList()
		}
		body := p.ParseBlock()
		decl.Constructor = &ast.ClassConstructor{Visibility: vis, Params: params, BaseArgs: baseArgs, Body: body}
	case p.Is(lexer.KwFn):
		p.Advance()
		fd := p.parseFuncDeclAfterFn("", nil, false, false)
		decl.Methods = append(decl.Methods, ast.ClassMethod{Visibility: vis, Modifiers: mods, Decl: fd})
	case p.Is(lexer.Ident) && p.peekAt(1).Kind == lexer.LBrace:
		// property: `name { get { … } set { … } }`
		name := p.Advance().Lexeme
		p.Advance() // '{'
		p.skipNewlines()
		prop := ast.ClassProperty{Visibility: vis, Name: name}
		for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
			switch {
			case p.Is(lexer.Ident) && p.cur().Lexeme == "get":
				p.Advance()
				prop.Getter = p.ParseBlock()
			case p.Is(lexer.Ident) && p.cur().Lexeme == "set":
				p.Advance()
				prop.Setter = p.ParseBlock()
			default:
				p.errorf("expected 'get' or 'set'")
				p.Advance()
			}
			p.skipNewlines()
		}
		p.Expect(lexer.RBrace, "'}'")
		decl.Properties = append(decl.Properties, prop)
	default:
		name := p.Expect(lexer.Ident, "field or method name").Lexeme
		p.Expect(lexer.Colon, "':'")
		t := p.ParseType()
		var init ast.Expr
		if p.Optional(lexer.Assign) {
			init = p.ParseExpr(PrecAssign)
		}
		p.Optional(lexer.Semicolon)
		decl.Fields = append(decl.Fields, ast.ClassField{Visibility: vis, Static: mods.Static, Name: name, Type: t, Init: init})
	}
}

func (p *Parser) parseMethodModifiers() ast.MethodModifiers {
	var m ast.MethodModifiers
	for {
		switch {
		case p.Optional(lexer.KwVirtual):
			m.Virtual = true
		case p.Optional(lexer.KwOverride):
			m.Override = true
		case p.Optional(lexer.KwAbstract):
			m.Abstract = true
		case p.Optional(lexer.KwSealed):
			m.Sealed = true
		case p.Optional(lexer.KwStatic):
			m.Static = true
		default:
			return m
		}
	}
}

// parseInterfaceDecl parses an `interface` declaration: method
// signatures (optionally with default bodies) and `extends` bases.
func (p *Parser) parseInterfaceDecl(doc string) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'interface'
	name := p.Expect(lexer.Ident, "interface name").Lexeme
	generics := p.parseGenericParams()
	var extends []*ast.NamedType
	if p.Optional(lexer.KwExtends) {
		extends = append(extends, p.parseNamedType(p.cur().Span))
		for p.Optional(lexer.Comma) {
			extends = append(extends, p.parseNamedType(p.cur().Span))
		}
	}
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	var methods []ast.InterfaceMethod
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		mdoc := p.parseDocComment()
		p.Expect(lexer.KwFn, "'fn'")
		fd := p.parseFuncDeclAfterFn(mdoc, nil, false, false)
		methods = append(methods, ast.InterfaceMethod{Decl: fd})
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.InterfaceDecl{Sp: span(p, start), Doc: doc, Name: name, Generics: generics, Extends: extends, Methods: methods}
}
