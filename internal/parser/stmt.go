package parser

import (
	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/lexer"
)

// parseStmtOrTail parses one block member. It returns a non-nil Stmt
// for ordinary statements, or a nil Stmt and a non-nil Expr when the
// member is the block's trailing tail expression (no terminator before
// the closing `}`), per spec.md §4.2 "a block's last expression with
// no trailing `;` is its value".
func (p *Parser) parseStmtOrTail() (ast.Stmt, ast.Expr) {
	switch {
	case p.Is(lexer.KwLet):
		return p.parseLetStmt(false), nil
	case p.Is(lexer.KwVar):
		return p.parseLetStmt(true), nil
	case p.isDeclStart():
		d := p.parseDecl()
		return &ast.DeclStmt{Sp: d.Span(), D: d}, nil
	default:
		start := p.cur().Span
		expr := p.ParseExpr(PrecAssign)
		if p.Optional(lexer.Semicolon) {
			return &ast.ExprStmt{Sp: span(p, start), X: expr}, nil
		}
		if p.Is(lexer.RBrace) || p.Is(lexer.Eof) {
			return nil, expr
		}
		return &ast.ExprStmt{Sp: span(p, start), X: expr}, nil
	}
}

func (p *Parser) isDeclStart() bool {
	switch p.cur().Kind {
	case lexer.KwFn, lexer.KwStruct, lexer.KwEnum, lexer.KwBehavior, lexer.KwImpl,
		lexer.KwClass, lexer.KwInterface, lexer.KwConst, lexer.KwType, lexer.KwUse,
		lexer.KwModule, lexer.At, lexer.DocItem:
		return true
	}
	return false
}

// parseLetStmt parses `let [mut] pattern [: Type] [= expr];` or its
// `var` sugar, which the parser desugars into the same IdentPattern
// shape with Mut forced true (spec.md §3.3 "VarStmt").
func (p *Parser) parseLetStmt(isVar bool) ast.Stmt {
	start := p.cur().Span
	p.Advance() // 'let' / 'var'
	mut := false
	if !isVar {
		mut = p.Optional(lexer.KwMut)
	} else {
		mut = true
	}
	pat := p.ParsePattern()
	if mut {
		if ip, ok := pat.(*ast.IdentPattern); ok {
			ip.Mut = true
		}
	}
	var typ ast.Type
	if p.Optional(lexer.Colon) {
		typ = p.ParseType()
	}
	var value ast.Expr
	if p.Optional(lexer.Assign) {
		value = p.ParseExpr(PrecAssign)
	}
	p.Optional(lexer.Semicolon)
	if isVar {
		return &ast.VarStmt{Sp: span(p, start), Pattern: pat, Type: typ, Value: value}
	}
	return &ast.LetStmt{Sp: span(p, start), Pattern: pat, Type: typ, Value: value}
}
