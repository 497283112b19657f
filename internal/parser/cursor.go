// Package parser builds a Language module AST from a token stream: a
// Pratt expression parser over a recursive-descent statement/decl
// grammar, with declaration- and statement-boundary recovery so one
// file yields every syntax error it contains in a single pass.
//
// The buffered-lookahead cursor (tokens pulled lazily from the lexer,
// indexed rather than re-lexed on backtrack) generalizes the teacher's
// internal/parser/cursor.go TokenCursor; the Optional/Many/
// SeparatedList helpers generalize its internal/parser/combinators.go.
package parser

import (
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/lexer"
	"github.com/hivellm/tml/internal/source"
)

// Parser holds the buffered token stream and diagnostic sink for one
// file's parse.
type Parser struct {
	file   *source.File
	lx     *lexer.Lexer
	toks   []lexer.Token
	pos    int
	errs   *diag.Bag

	// bracketDepth counts unclosed () and [] so that Newline tokens
	// are ignored while it is > 0 (spec.md §4.2 "Statement separation").
	bracketDepth int

	// noStructLit suppresses struct-literal recognition (`Ident { … }`)
	// while parsing an if/while/for/when condition, so that its brace
	// is read as the start of the body block instead (spec.md §4.2
	// "struct literals are disallowed directly in condition position").
	noStructLit bool
}

// New constructs a Parser over file, reporting into errs.
func New(file *source.File, errs *diag.Bag) *Parser {
	p := &Parser{file: file, lx: lexer.New(file, errs), errs: errs}
	p.fill(1)
	return p
}

// fill ensures at least n tokens are buffered ahead of pos.
func (p *Parser) fill(n int) {
	for len(p.toks) < n {
		p.toks = append(p.toks, p.lx.NextToken())
	}
}

// normalize drops any buffered Newline token sitting at pos while
// bracketDepth > 0: inside unclosed brackets, newlines are never
// statement separators (spec.md §4.2).
func (p *Parser) normalize() {
	for p.bracketDepth > 0 {
		p.fill(p.pos + 1)
		if p.toks[p.pos].Kind != lexer.Newline {
			return
		}
		p.pos++
	}
}

func (p *Parser) cur() lexer.Token {
	p.normalize()
	p.fill(p.pos + 1)
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.Token {
	p.normalize()
	p.fill(p.pos + offset + 1)
	idx := p.pos
	seen := 0
	for {
		if p.toks[idx].Kind == lexer.Newline && p.bracketDepth > 0 {
			idx++
			p.fill(idx + 1)
			continue
		}
		if seen == offset {
			return p.toks[idx]
		}
		seen++
		idx++
		p.fill(idx + 1)
	}
}

// advanceRaw consumes exactly one buffered token (possibly a Newline)
// and returns it.
func (p *Parser) advanceRaw() lexer.Token {
	p.normalize()
	p.fill(p.pos + 1)
	t := p.toks[p.pos]
	p.pos++
	p.trackBrackets(t)
	return t
}

func (p *Parser) trackBrackets(t lexer.Token) {
	switch t.Kind {
	case lexer.LParen, lexer.LBracket:
		p.bracketDepth++
	case lexer.RParen, lexer.RBracket:
		if p.bracketDepth > 0 {
			p.bracketDepth--
		}
	}
}

// Advance consumes and returns the next significant token.
func (p *Parser) Advance() lexer.Token { return p.advanceRaw() }

// skipNewlines consumes any number of pending Newline tokens (used at
// statement boundaries, where a run of blank lines is one separator).
func (p *Parser) skipNewlines() {
	for p.cur().Kind == lexer.Newline {
		p.advanceRaw()
	}
}

// Is reports whether the current token (after skipping suppressed or
// separator newlines as appropriate) has kind k. At statement
// boundaries callers should skipNewlines first.
func (p *Parser) Is(k lexer.Kind) bool { return p.cur().Kind == k }

// IsAny reports whether the current token matches any of ks.
func (p *Parser) IsAny(ks ...lexer.Kind) bool {
	c := p.cur().Kind
	for _, k := range ks {
		if c == k {
			return true
		}
	}
	return false
}

// Optional consumes and returns true if the current token is k.
func (p *Parser) Optional(k lexer.Kind) bool {
	if p.cur().Kind == k {
		p.advanceRaw()
		return true
	}
	return false
}

// Expect consumes the current token if it is k, otherwise reports a
// parse error and returns an Illegal token carrying the current span,
// without consuming.
func (p *Parser) Expect(k lexer.Kind, what string) lexer.Token {
	if p.cur().Kind == k {
		return p.advanceRaw()
	}
	p.errorf("expected %s", what)
	return lexer.Token{Kind: lexer.Illegal, Span: p.cur().Span}
}

func (p *Parser) errorf(format string, args ...any) *diag.Diagnostic {
	return p.errs.Errorf(diag.KindParse, "", p.cur().Span, format, args...)
}

// SeparatedList parses a comma-separated list of items terminated by
// term, calling parseItem for each element. It stops on `term`, Eof,
// or a parseItem failure (nil return with no progress), to avoid
// infinite loops during error recovery.
func SeparatedList[T any](p *Parser, term lexer.Kind, parseItem func() T, isZero func(T) bool) []T {
	var items []T
	p.skipNewlines()
	if p.Is(term) {
		return items
	}
	for {
		p.skipNewlines()
		item := parseItem()
		if isZero != nil && isZero(item) {
			break
		}
		items = append(items, item)
		p.skipNewlines()
		if !p.Optional(lexer.Comma) {
			break
		}
		p.skipNewlines()
		if p.Is(term) {
			break
		}
	}
	return items
}

// SyncToDeclBoundary advances past tokens until a plausible
// declaration-starting keyword, a decorator `@`, or Eof, for parser error
// recovery at the top level (spec.md §4.2 "Recover at declaration and
// statement boundaries").
func (p *Parser) SyncToDeclBoundary() {
	for {
		switch p.cur().Kind {
		case lexer.Eof, lexer.KwFn, lexer.KwStruct, lexer.KwEnum, lexer.KwBehavior,
			lexer.KwImpl, lexer.KwClass, lexer.KwInterface, lexer.KwConst,
			lexer.KwType, lexer.KwUse, lexer.KwModule, lexer.At:
			return
		}
		p.advanceRaw()
	}
}

// SyncToStmtBoundary advances until a Newline, `;`, `}`, or Eof, for
// statement-level recovery inside a block.
func (p *Parser) SyncToStmtBoundary() {
	for {
		switch p.cur().Kind {
		case lexer.Eof, lexer.Semicolon, lexer.RBrace, lexer.Newline:
			return
		}
		p.advanceRaw()
	}
}
