package lexer

import (
	"strconv"
	"strings"

	"github.com/hivellm/tml/internal/source"
)

var intSuffixes = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
}
var floatSuffixes = map[string]bool{"f32": true, "f64": true}

// scanNumber scans an integer or float literal, honoring the four
// numeric bases, underscore separators, and explicit width suffixes
// described in spec.md §4.1. Grounded on
// original_source/compiler/src/lexer/lexer_number.cpp.
func (l *Lexer) scanNumber() Token {
	start := l.pos
	base := 10
	digitsStart := l.pos

	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		base = 16
		l.advance()
		l.advance()
		digitsStart = l.pos
		l.consumeDigitsOfBase(16)
	} else if l.ch == '0' && (l.peek() == 'b' || l.peek() == 'B') {
		base = 2
		l.advance()
		l.advance()
		digitsStart = l.pos
		l.consumeDigitsOfBase(2)
	} else if l.ch == '0' && (l.peek() == 'o' || l.peek() == 'O') {
		base = 8
		l.advance()
		l.advance()
		digitsStart = l.pos
		l.consumeDigitsOfBase(8)
	} else {
		l.consumeDigitsOfBase(10)
	}

	isFloat := false
	if base == 10 {
		// '.' starts a fractional part only when followed by a digit,
		// disambiguating from the range operator '..'.
		if l.ch == '.' && isDigit(l.peek()) {
			isFloat = true
			l.advance()
			l.consumeDigitsOfBase(10)
		}
		if l.ch == 'e' || l.ch == 'E' {
			save := l.saveState()
			l.advance()
			if l.ch == '+' || l.ch == '-' {
				l.advance()
			}
			if isDigit(l.ch) {
				isFloat = true
				l.consumeDigitsOfBase(10)
			} else {
				l.restoreState(save)
			}
		}
	}

	digitsEnd := l.pos
	rawDigits := l.input[digitsStart:digitsEnd]

	suffix := ""
	if isIdentStart(l.ch) {
		suffixStart := l.pos
		for isIdentContinue(l.ch) {
			l.advance()
		}
		suffix = l.input[suffixStart:l.pos]
		if floatSuffixes[suffix] {
			isFloat = true
		} else if !intSuffixes[suffix] {
			l.errf("L009", source.Span{Start: suffixStart, End: l.pos}, "invalid numeric literal suffix %q", suffix)
		}
	}

	span := source.Span{Start: start, End: l.pos}
	lexeme := l.input[start:l.pos]
	cleanDigits := strings.ReplaceAll(rawDigits, "_", "")

	if isFloat {
		f, err := strconv.ParseFloat(cleanDigits, 64)
		if err != nil {
			l.errf("L003", span, "invalid float literal %q", lexeme)
		}
		return Token{Kind: FloatLiteral, Span: span, Lexeme: lexeme, Value: Value{Float: f, Suffix: suffix, IsFloat: true}}
	}

	if cleanDigits == "" {
		l.errf("L003", span, "invalid integer literal %q", lexeme)
		return Token{Kind: IntLiteral, Span: span, Lexeme: lexeme, Value: Value{Base: base, Suffix: suffix}}
	}
	v, err := strconv.ParseUint(cleanDigits, base, 64)
	if err != nil {
		if !digitsValidForBase(cleanDigits, base) {
			l.errf(codeForBase(base), span, "invalid digit for base %d in %q", base, lexeme)
		} else {
			l.errf("L003", span, "integer literal %q overflows 64 bits", lexeme)
		}
	}
	return Token{Kind: IntLiteral, Span: span, Lexeme: lexeme, Value: Value{Int: int64(v), Uint: v, Base: base, Suffix: suffix}}
}

func (l *Lexer) consumeDigitsOfBase(base int) {
	for isDigitOfBase(l.ch, base) || l.ch == '_' {
		l.advance()
	}
}

func isDigitOfBase(r rune, base int) bool {
	switch base {
	case 2:
		return r == '0' || r == '1'
	case 8:
		return r >= '0' && r <= '7'
	case 16:
		_, ok := hexDigit(r)
		return ok
	default:
		return isDigit(r)
	}
}

func digitsValidForBase(digits string, base int) bool {
	for _, r := range digits {
		if !isDigitOfBase(r, base) {
			return false
		}
	}
	return true
}

func codeForBase(base int) string {
	switch base {
	case 16:
		return "L010"
	case 2:
		return "L010"
	case 8:
		return "L010"
	default:
		return "L003"
	}
}

// saveState/restoreState support the lexer's small amounts of
// backtracking, such as scanNumber disambiguating a trailing 'e' as an
// exponent vs. the start of an identifier suffix or unrelated token.
type savedState struct {
	pos, rdPos int
	ch         rune
}

func (l *Lexer) saveState() savedState {
	return savedState{pos: l.pos, rdPos: l.rdPos, ch: l.ch}
}

func (l *Lexer) restoreState(s savedState) {
	l.pos, l.rdPos, l.ch = s.pos, s.rdPos, s.ch
}
