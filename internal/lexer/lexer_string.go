package lexer

import (
	"strings"

	"github.com/hivellm/tml/internal/source"
)

// scanStringStart scans the first segment of a (possibly
// interpolated) string or template literal, beginning just after the
// opening quote/backtick. `{` is only treated as interpolation when
// immediately followed by an identifier-start rune; a literal `{` or
// `}` otherwise passes through verbatim, per spec.md §4.1.
func (l *Lexer) scanStringStart(start int, quote byte, isTemplate bool) Token {
	var buf strings.Builder
	for {
		if l.ch == eofRune {
			l.errf("L002", source.Span{Start: start, End: l.pos}, "unterminated string literal")
			return l.closeLiteral(start, isTemplate, true, buf.String())
		}
		if byte(l.ch) == quote && l.ch < 128 {
			l.advance()
			return l.closeLiteral(start, isTemplate, true, buf.String())
		}
		if l.ch == '{' && isIdentStart(l.peek()) {
			l.advance() // consume '{'
			l.interps = append(l.interps, interpFrame{quote: quote, isTemplate: isTemplate, baseBraceDepth: l.braceDepth})
			return l.openLiteral(start, isTemplate, buf.String())
		}
		if l.ch == '\\' {
			r, ok := l.scanEscapedRune(start)
			if !ok {
				continue
			}
			buf.WriteRune(r)
			continue
		}
		buf.WriteRune(l.ch)
		l.advance()
	}
}

// scanStringContinuation resumes scanning after the matching `}` that
// closed an interpolated expression, producing a Middle or End
// segment depending on whether another interpolation trigger is
// found before the closing quote.
func (l *Lexer) scanStringContinuation() Token {
	n := len(l.interps)
	frame := l.interps[n-1]
	start := l.pos
	var buf strings.Builder
	for {
		if l.ch == eofRune {
			l.errf("L002", source.Span{Start: start, End: l.pos}, "unterminated string literal")
			l.interps = l.interps[:n-1]
			return l.closeLiteral(start, frame.isTemplate, false, buf.String())
		}
		if byte(l.ch) == frame.quote && l.ch < 128 {
			l.advance()
			l.interps = l.interps[:n-1]
			return l.closeLiteral(start, frame.isTemplate, false, buf.String())
		}
		if l.ch == '{' && isIdentStart(l.peek()) {
			l.advance()
			l.interps[n-1].baseBraceDepth = l.braceDepth
			return l.middleLiteral(start, frame.isTemplate, buf.String())
		}
		if l.ch == '\\' {
			r, ok := l.scanEscapedRune(start)
			if !ok {
				continue
			}
			buf.WriteRune(r)
			continue
		}
		buf.WriteRune(l.ch)
		l.advance()
	}
}

func (l *Lexer) openLiteral(start int, isTemplate bool, text string) Token {
	kind := InterpStringStart
	if isTemplate {
		kind = TemplateLiteralStart
	}
	return Token{Kind: kind, Span: source.Span{Start: start, End: l.pos}, Lexeme: l.input[start:l.pos], Value: Value{Str: text}}
}

func (l *Lexer) middleLiteral(start int, isTemplate bool, text string) Token {
	kind := InterpStringMiddle
	if isTemplate {
		kind = TemplateLiteralMiddle
	}
	return Token{Kind: kind, Span: source.Span{Start: start, End: l.pos}, Lexeme: l.input[start:l.pos], Value: Value{Str: text}}
}

// closeLiteral emits either a plain literal (StringLit, when this
// segment was never part of an interpolation) or the terminating
// *End segment of an interpolated/template literal.
func (l *Lexer) closeLiteral(start int, isTemplate, isFirstSegment bool, text string) Token {
	if isFirstSegment {
		kind := StringLit
		if isTemplate {
			kind = StringLit // a template literal with no interpolation is still plain text
		}
		return Token{Kind: kind, Span: source.Span{Start: start, End: l.pos}, Lexeme: l.input[start:l.pos], Value: Value{Str: text}}
	}
	kind := InterpStringEnd
	if isTemplate {
		kind = TemplateLiteralEnd
	}
	return Token{Kind: kind, Span: source.Span{Start: start, End: l.pos}, Lexeme: l.input[start:l.pos], Value: Value{Str: text}}
}

// scanRawString scans `r"…"`: no escape processing at all.
func (l *Lexer) scanRawString(start int) Token {
	var buf strings.Builder
	for {
		if l.ch == eofRune {
			l.errf("L013", source.Span{Start: start, End: l.pos}, "unterminated raw string literal")
			break
		}
		if l.ch == '"' {
			l.advance()
			break
		}
		buf.WriteRune(l.ch)
		l.advance()
	}
	return Token{Kind: RawStringLit, Span: source.Span{Start: start, End: l.pos}, Lexeme: l.input[start:l.pos], Value: Value{Str: buf.String()}}
}
