package parser

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/lexer"
)

// ParseFile parses one complete source file: an optional module-doc
// block, an optional `module` declaration, and the ordered top-level
// declaration list (spec.md §4.2 "Contract").
func (p *Parser) ParseFile() *ast.File {
	f := &ast.File{}
	p.skipNewlines()
	for p.Is(lexer.DocModule) {
		if f.ModuleDoc != "" {
			f.ModuleDoc += "\n"
		}
		f.ModuleDoc += p.Advance().Value.Str
		p.skipNewlines()
	}
	for !p.Is(lexer.Eof) {
		d := p.parseDecl()
		if md, ok := d.(*ast.ModuleDecl); ok && f.Module == nil && len(f.Decls) == 0 {
			f.Module = md
		} else {
			f.Decls = append(f.Decls, d)
		}
		p.skipNewlines()
	}
	return f
}

// parseDocComment collects a run of consecutive `///` doc-comment
// tokens preceding a declaration into one newline-joined string.
func (p *Parser) parseDocComment() string {
	var doc string
	for p.Is(lexer.DocItem) {
		if doc != "" {
			doc += "\n"
		}
		doc += p.Advance().Value.Str
		p.skipNewlines()
	}
	return doc
}

func (p *Parser) parseDecorators() []ast.Decorator {
	var decs []ast.Decorator
	for p.Is(lexer.At) {
		p.Advance()
		name := p.Expect(lexer.Ident, "decorator name").Lexeme
		var args []ast.Expr
		if p.Is(lexer.LParen) {
			args = p.parseArgList()
		}
		decs = append(decs, ast.Decorator{Name: name, Args: args})
		p.skipNewlines()
	}
	return decs
}

// parseDecl dispatches on the current top-level (or block-nested)
// declaration keyword.
func (p *Parser) parseDecl() ast.Decl {
	doc := p.parseDocComment()
	decorators := p.parseDecorators()
	// A leading pub/private/protected is consumed; the declaration
	// nodes built below do not record it.
	p.parseVisibility()
	switch {
	case p.Is(lexer.KwFn):
		return p.parseFuncDecl(doc, decorators, false, false)
	case p.Is(lexer.KwAsync):
		p.Advance()
		p.Expect(lexer.KwFn, "'fn'")
		return p.parseFuncDeclAfterFn(doc, decorators, true, false)
	case p.Is(lexer.KwLowlevel) && p.peekAt(1).Kind == lexer.KwFn:
		p.Advance()
		p.Advance()
		return p.parseFuncDeclAfterFn(doc, decorators, false, true)
	case p.Is(lexer.KwStruct):
		return p.parseStructDecl(doc, decorators)
	case p.Is(lexer.KwEnum):
		return p.parseEnumDecl(doc, decorators)
	case p.Is(lexer.KwBehavior):
		return p.parseBehaviorDecl(doc, decorators)
	case p.Is(lexer.KwImpl):
		return p.parseImplDecl()
	case p.Is(lexer.KwClass):
		return p.parseClassDecl(doc, decorators)
	case p.Is(lexer.KwInterface):
		return p.parseInterfaceDecl(doc)
	case p.Is(lexer.KwType):
		return p.parseTypeAliasDecl(doc)
	case p.Is(lexer.KwConst):
		return p.parseConstDecl(doc)
	case p.Is(lexer.KwUse):
		return p.parseUseDecl()
	case p.Is(lexer.KwModule):
		return p.parseModuleDecl()
	default:
		start := p.cur().Span
		p.errorf("expected a declaration")
		p.SyncToDeclBoundary()
		return &ast.ConstDecl{Sp: span(p, start), Name: "", Value: &ast.NullLit{Sp: span(p, start)}}
	}
}

func (p *Parser) parseFuncDecl(doc string, decorators []ast.Decorator, async, lowlevel bool) ast.Decl {
	p.Advance() // 'fn'
	return p.parseFuncDeclAfterFn(doc, decorators, async, lowlevel)
}

func (p *Parser) parseFuncDeclAfterFn(doc string, decorators []ast.Decorator, async, lowlevel bool) *ast.FuncDecl {
	start := p.cur().Span
	name := p.Expect(lexer.Ident, "function name").Lexeme
	generics := p.parseGenericParams()
	params := p.parseParamList()
	var ret ast.Type
	if p.Optional(lexer.Arrow) {
		ret = p.ParseType()
	}
	where := p.parseWhereClauses()
	var body *ast.BlockExpr
	if p.Is(lexer.LBrace) {
		body = p.ParseBlock()
	} else {
		p.Optional(lexer.Semicolon)
	}
	return &ast.FuncDecl{
		Sp: span(p, start), Doc: doc, Decorators: decorators, Name: name,
		Generics: generics, Params: params, RetType: ret, Where: where,
		Async: async, Lowlevel: lowlevel, Body: body,
	}
}

func (p *Parser) parseGenericParams() []ast.GenericParam {
	if !p.Optional(lexer.LBracket) {
		return nil
	}
	var params []ast.GenericParam
	for !p.Is(lexer.RBracket) && !p.Is(lexer.Eof) {
		if p.Optional(lexer.KwConst) {
			name := p.Expect(lexer.Ident, "const parameter name").Lexeme
			p.Expect(lexer.Colon, "':'")
			t := p.ParseType()
			params = append(params, ast.GenericParam{Name: name, Const: true, Type: t})
		} else {
			name := p.Expect(lexer.Ident, "type parameter name").Lexeme
			params = append(params, ast.GenericParam{Name: name})
		}
		if !p.Optional(lexer.Comma) {
			break
		}
	}
	p.Expect(lexer.RBracket, "']'")
	return params
}

func (p *Parser) parseWhereClauses() []ast.WhereClause {
	if !p.Optional(lexer.KwWhere) {
		return nil
	}
	var clauses []ast.WhereClause
	for {
		name := p.Expect(lexer.Ident, "type parameter").Lexeme
		p.Expect(lexer.Colon, "':'")
		var bounds []*ast.NamedType
		bounds = append(bounds, p.parseNamedType(p.cur().Span))
		for p.Optional(lexer.Plus) {
			bounds = append(bounds, p.parseNamedType(p.cur().Span))
		}
		clauses = append(clauses, ast.WhereClause{Param: name, Bounds: bounds})
		if !p.Optional(lexer.Comma) {
			break
		}
	}
	return clauses
}

func (p *Parser) parseParamList() []ast.Param {
	p.Expect(lexer.LParen, "'('")
	var params []ast.Param
	for !p.Is(lexer.RParen) && !p.Is(lexer.Eof) {
		name := p.Expect(lexer.Ident, "parameter name").Lexeme
		p.Expect(lexer.Colon, "':'")
		t := p.ParseType()
		params = append(params, ast.Param{Name: name, Type: t})
		if !p.Optional(lexer.Comma) {
			break
		}
	}
	p.Expect(lexer.RParen, "')'")
	return params
}

func (p *Parser) parseStructDecl(doc string, decorators []ast.Decorator) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'struct'
	name := p.Expect(lexer.Ident, "struct name").Lexeme
	generics := p.parseGenericParams()
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	var fields []ast.StructField
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		fname := p.Expect(lexer.Ident, "field name").Lexeme
		p.Expect(lexer.Colon, "':'")
		t := p.ParseType()
		fields = append(fields, ast.StructField{Name: fname, Type: t})
		p.skipNewlines()
		if !p.Optional(lexer.Comma) {
			p.skipNewlines()
			continue
		}
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.StructDecl{Sp: span(p, start), Doc: doc, Decorators: decorators, Name: name, Generics: generics, Fields: fields}
}

func (p *Parser) parseEnumDecl(doc string, decorators []ast.Decorator) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'enum'
	name := p.Expect(lexer.Ident, "enum name").Lexeme
	generics := p.parseGenericParams()
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	var variants []ast.EnumVariant
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		vname := p.Expect(lexer.Ident, "variant name").Lexeme
		var payload []ast.Type
		if p.Optional(lexer.LParen) {
			for !p.Is(lexer.RParen) && !p.Is(lexer.Eof) {
				payload = append(payload, p.ParseType())
				if !p.Optional(lexer.Comma) {
					break
				}
			}
			p.Expect(lexer.RParen, "')'")
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Payload: payload})
		p.skipNewlines()
		if !p.Optional(lexer.Comma) {
			p.skipNewlines()
			continue
		}
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.EnumDecl{Sp: span(p, start), Doc: doc, Decorators: decorators, Name: name, Generics: generics, Variants: variants}
}

func (p *Parser) parseBehaviorDecl(doc string, decorators []ast.Decorator) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'behavior'
	name := p.Expect(lexer.Ident, "behavior name").Lexeme
	generics := p.parseGenericParams()
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	var assoc []ast.AssocType
	var methods []*ast.FuncDecl
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		mdoc := p.parseDocComment()
		if p.Is(lexer.KwType) {
			p.Advance()
			tname := p.Expect(lexer.Ident, "associated type name").Lexeme
			var def ast.Type
			if p.Optional(lexer.Assign) {
				def = p.ParseType()
			}
			p.Optional(lexer.Semicolon)
			assoc = append(assoc, ast.AssocType{Name: tname, Default: def})
		} else {
			p.Expect(lexer.KwFn, "'fn'")
			fd := p.parseFuncDeclAfterFn(mdoc, nil, false, false)
			methods = append(methods, fd)
		}
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.BehaviorDecl{Sp: span(p, start), Doc: doc, Decorators: decorators, Name: name, Generics: generics, AssocTypes: assoc, Methods: methods}
}

func (p *Parser) parseImplDecl() ast.Decl {
	start := p.cur().Span
	p.Advance() // 'impl'
	generics := p.parseGenericParams()
	first := p.ParseType()
	var behavior *ast.NamedType
	var self ast.Type
	if p.Optional(lexer.KwFor) {
		nt, ok := first.(*ast.NamedType)
		if !ok {
			p.errorf("expected a behavior name before 'for'")
		}
		behavior = nt
		self = p.ParseType()
	} else {
		self = first
	}
	where := p.parseWhereClauses()
	p.Expect(lexer.LBrace, "'{'")
	p.skipNewlines()
	assoc := map[string]ast.Type{}
	var methods []*ast.FuncDecl
	var consts []*ast.ConstDecl
	for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
		mdoc := p.parseDocComment()
		switch {
		case p.Is(lexer.KwType):
			p.Advance()
			tname := p.Expect(lexer.Ident, "associated type name").Lexeme
			p.Expect(lexer.Assign, "'='")
			t := p.ParseType()
			p.Optional(lexer.Semicolon)
			assoc[tname] = t
		case p.Is(lexer.KwConst):
			consts = append(consts, p.parseConstDecl(mdoc).(*ast.ConstDecl))
		default:
			p.Expect(lexer.KwFn, "'fn'")
			methods = append(methods, p.parseFuncDeclAfterFn(mdoc, nil, false, false))
		}
		p.skipNewlines()
	}
	p.Expect(lexer.RBrace, "'}'")
	return &ast.ImplDecl{Sp: span(p, start), Generics: generics, Behavior: behavior, Self: self, Where: where, AssocTypes: assoc, Methods: methods, Consts: consts}
}

func (p *Parser) parseTypeAliasDecl(doc string) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'type'
	name := p.Expect(lexer.Ident, "type alias name").Lexeme
	generics := p.parseGenericParams()
	p.Expect(lexer.Assign, "'='")
	target := p.ParseType()
	p.Optional(lexer.Semicolon)
	return &ast.TypeAliasDecl{Sp: span(p, start), Doc: doc, Name: name, Generics: generics, Target: target}
}

func (p *Parser) parseConstDecl(doc string) ast.Decl {
	start := p.cur().Span
	p.Advance() // 'const'
	name := p.Expect(lexer.Ident, "constant name").Lexeme
	var t ast.Type
	if p.Optional(lexer.Colon) {
		t = p.ParseType()
	}
	p.Expect(lexer.Assign, "'='")
	value := p.ParseExpr(PrecAssign)
	p.Optional(lexer.Semicolon)
	return &ast.ConstDecl{Sp: span(p, start), Doc: doc, Name: name, Type: t, Value: value}
}

func (p *Parser) parseUseDecl() ast.Decl {
	start := p.cur().Span
	p.Advance() // 'use'
	var segs []string
	segs = append(segs, p.Expect(lexer.Ident, "module segment").Lexeme)
	for p.Is(lexer.ColonColon) {
		p.Advance()
		if p.Is(lexer.Star) {
			p.Advance()
			p.Optional(lexer.Semicolon)
			return &ast.UseDecl{Sp: span(p, start), Path: &ast.Path{Sp: span(p, start), Segments: segs}, Glob: true}
		}
		if p.Is(lexer.LBrace) {
			p.Advance()
			var items []ast.UseItem
			for !p.Is(lexer.RBrace) && !p.Is(lexer.Eof) {
				iname := p.Expect(lexer.Ident, "identifier").Lexeme
				alias := ""
				if p.Optional(lexer.KwAs) {
					alias = p.Expect(lexer.Ident, "alias").Lexeme
				}
				items = append(items, ast.UseItem{Name: iname, Alias: alias})
				if !p.Optional(lexer.Comma) {
					break
				}
			}
			p.Expect(lexer.RBrace, "'}'")
			p.Optional(lexer.Semicolon)
			return &ast.UseDecl{Sp: span(p, start), Path: &ast.Path{Sp: span(p, start), Segments: segs}, Items: items}
		}
		segs = append(segs, p.Expect(lexer.Ident, "identifier").Lexeme)
	}
	alias := ""
	if p.Optional(lexer.KwAs) {
		alias = p.Expect(lexer.Ident, "alias").Lexeme
	}
	path := &ast.Path{Sp: span(p, start), Segments: segs[:len(segs)-1]}
	item := ast.UseItem{Name: segs[len(segs)-1], Alias: alias}
	p.Optional(lexer.Semicolon)
	return &ast.UseDecl{Sp: span(p, start), Path: path, Items: []ast.UseItem{item}}
}

func (p *Parser) parseModuleDecl() ast.Decl {
	start := p.cur().Span
	p.Advance() // 'module'
	var segs []string
	segs = append(segs, p.Expect(lexer.Ident, "module segment").Lexeme)
	for p.Is(lexer.ColonColon) {
		p.Advance()
		segs = append(segs, p.Expect(lexer.Ident, "identifier").Lexeme)
	}
	p.Optional(lexer.Semicolon)
	return &ast.ModuleDecl{Sp: span(p, start), Path: &ast.Path{Sp: span(p, start), Segments: segs}}
}

// parseVisibility consumes an optional leading pub/private/protected
// modifier, defaulting to VisDefault (module-private).
func (p *Parser) parseVisibility() ast.Visibility {
	switch {
	case p.Optional(lexer.KwPub):
		return ast.VisPub
	case p.Optional(lexer.KwPrivate):
		return ast.VisPrivate
	case p.Optional(lexer.KwProtected):
		return ast.VisProtected
	}
	return ast.VisDefault
}
