package lexer

import (
	"testing"

	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/source"
)

func lexAll(t *testing.T, text string) ([]Token, *diag.Bag) {
	t.Helper()
	file := source.NewFile("test.tml", text)
	bag := &diag.Bag{}
	l := New(file, bag)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == Eof {
			break
		}
	}
	return toks, bag
}

func TestNextTokenBasics(t *testing.T) {
	toks, bag := lexAll(t, "let x: I32 = 5\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", bag.Items())
	}
	want := []Kind{KwLet, Ident, Colon, Ident, Assign, IntLiteral, Newline, Eof}
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token[%d].Kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

// Scenario 1 from spec.md §8.2: hex literal with suffix.
func TestHexLiteralWithSuffix(t *testing.T) {
	toks, bag := lexAll(t, "0xFFi32")
	if bag.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", bag.Items())
	}
	if len(toks) != 2 {
		t.Fatalf("token count = %d, want 2 (%v)", len(toks), toks)
	}
	if toks[0].Kind != IntLiteral {
		t.Fatalf("toks[0].Kind = %v, want IntLiteral", toks[0].Kind)
	}
	if toks[0].Value.Int != 255 {
		t.Errorf("value = %d, want 255", toks[0].Value.Int)
	}
	if toks[0].Value.Base != 16 {
		t.Errorf("base = %d, want 16", toks[0].Value.Base)
	}
	if toks[0].Value.Suffix != "i32" {
		t.Errorf("suffix = %q, want i32", toks[0].Value.Suffix)
	}
	if toks[1].Kind != Eof {
		t.Errorf("toks[1].Kind = %v, want Eof", toks[1].Kind)
	}
}

// Scenario 2 from spec.md §8.2: interpolation with a literal brace.
func TestInterpolationWithLiteralBrace(t *testing.T) {
	toks, bag := lexAll(t, `"{ not interp } {name}"`)
	if bag.HasErrors() {
		t.Fatalf("unexpected lex errors: %v", bag.Items())
	}
	if len(toks) < 4 {
		t.Fatalf("expected at least 4 tokens, got %d: %v", len(toks), toks)
	}
	if toks[0].Kind != InterpStringStart {
		t.Fatalf("toks[0].Kind = %v, want InterpStringStart", toks[0].Kind)
	}
	if toks[0].Value.Str != "{ not interp } " {
		t.Errorf("toks[0] text = %q, want %q", toks[0].Value.Str, "{ not interp } ")
	}
	if toks[1].Kind != Ident || toks[1].Lexeme != "name" {
		t.Fatalf("toks[1] = %+v, want Ident(name)", toks[1])
	}
	if toks[2].Kind != InterpStringEnd {
		t.Fatalf("toks[2].Kind = %v, want InterpStringEnd", toks[2].Kind)
	}
	if toks[2].Value.Str != "" {
		t.Errorf("toks[2] text = %q, want empty", toks[2].Value.Str)
	}
}

func TestRoundTripLexemes(t *testing.T) {
	src := "let mut_x: ref I32 = foo.bar(1, 2) // comment\n"
	file := source.NewFile("t.tml", src)
	bag := &diag.Bag{}
	l := New(file, bag)
	for {
		tok := l.NextToken()
		if tok.Kind == Eof {
			break
		}
		got := file.Slice(tok.Span)
		if got != tok.Lexeme {
			t.Errorf("span slice %q != lexeme %q for kind %v", got, tok.Lexeme, tok.Kind)
		}
	}
}

func TestUnicodeEscape(t *testing.T) {
	toks, bag := lexAll(t, `'\u{48}'`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if toks[0].Kind != CharLiteral || toks[0].Value.Int != 'H' {
		t.Fatalf("got %+v, want CharLiteral('H')", toks[0])
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, bag := lexAll(t, "/* never closed")
	if !bag.HasErrors() {
		t.Fatal("expected an error for unterminated block comment")
	}
	if bag.Items()[0].Code != "L012" {
		t.Errorf("code = %s, want L012", bag.Items()[0].Code)
	}
}

func TestDocCommentMerging(t *testing.T) {
	toks, bag := lexAll(t, "/// line one\n/// line two\nfn f() {}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if toks[0].Kind != DocItem {
		t.Fatalf("toks[0].Kind = %v, want DocItem", toks[0].Kind)
	}
	if toks[0].Value.Str != "line one\nline two" {
		t.Errorf("doc text = %q", toks[0].Value.Str)
	}
}

func TestRangeOperators(t *testing.T) {
	toks, _ := lexAll(t, "0..5 0..=5")
	wantKinds := []Kind{IntLiteral, DotDot, IntLiteral, IntLiteral, DotDotEq, IntLiteral, Eof}
	if len(toks) != len(wantKinds) {
		t.Fatalf("token count = %d, want %d: %v", len(toks), len(wantKinds), toks)
	}
	for i, k := range wantKinds {
		if toks[i].Kind != k {
			t.Errorf("token[%d] = %v, want %v", i, toks[i].Kind, k)
		}
	}
}
