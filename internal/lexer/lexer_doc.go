package lexer

import (
	"strings"

	"github.com/hivellm/tml/internal/source"
)

// scanDocComment scans `/// …` (item doc) or `//! …` (module doc).
// Consecutive doc-comment lines of the same kind are merged into a
// single token, stripping one leading space per line, per
// spec.md §4.1.
func (l *Lexer) scanDocComment() Token {
	start := l.pos
	isModule := l.peekAt(1) == '!'
	var lines []string

	for {
		l.advance() // first '/'
		l.advance() // second '/'
		l.advance() // third '/' or '!'
		if l.ch == ' ' {
			l.advance()
		}
		lineStart := l.pos
		for l.ch != '\n' && l.ch != eofRune {
			l.advance()
		}
		lines = append(lines, l.input[lineStart:l.pos])

		// Peek ahead across the newline and any blank/indentation to
		// see whether another doc comment line of the same kind
		// follows immediately (no intervening non-whitespace code).
		save := l.saveState()
		if l.ch == '\n' {
			l.advance()
		}
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.advance()
		}
		sameKind := l.ch == '/' && l.peek() == '/' &&
			((isModule && l.peekAt(1) == '!') || (!isModule && l.peekAt(1) == '/'))
		if !sameKind {
			l.restoreState(save)
			break
		}
	}

	kind := DocItem
	if isModule {
		kind = DocModule
	}
	text := strings.Join(lines, "\n")
	return Token{Kind: kind, Span: source.Span{Start: start, End: l.pos}, Lexeme: l.input[start:l.pos], Value: Value{Str: text}}
}
