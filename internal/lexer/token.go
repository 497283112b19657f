// Package lexer tokenizes Language source text: a UTF-8 aware,
// single-pass scanner with an interpolated-string/template-literal
// state machine, producing a flat token stream terminated by Eof.
//
// The scanning loop's shape (rune-at-a-time advance, functional
// Option constructors, explicit State save/restore for lookahead) is
// grounded on the teacher's internal/lexer/lexer.go; the token kinds
// and literal/escape/interpolation semantics are grounded on
// _examples/original_source/compiler/src/lexer/{lexer_core,
// lexer_number,lexer_string,lexer_operator}.cpp.
package lexer

import "github.com/hivellm/tml/internal/source"

// Kind is the tag of a Token.
type Kind int

const (
	Illegal Kind = iota
	Eof
	Newline // significant newline: statement separator outside brackets

	// Literals
	IntLiteral
	FloatLiteral
	StringLit
	RawStringLit
	CharLiteral
	BoolLiteral
	NullLiteral

	Ident

	// Interpolated-string segments
	InterpStringStart
	InterpStringMiddle
	InterpStringEnd

	// Template-literal segments (backtick-delimited)
	TemplateLiteralStart
	TemplateLiteralMiddle
	TemplateLiteralEnd

	// Documentation comments
	DocItem   // `/// ...`
	DocModule // `//! ...`

	kindKeywordBegin
	// Keywords
	KwLet
	KwVar
	KwMut
	KwRef
	KwFn
	KwReturn
	KwIf
	KwElse
	KwWhen
	KwLoop
	KwWhile
	KwFor
	KwIn
	KwBreak
	KwContinue
	KwThrow
	KwStruct
	KwEnum
	KwBehavior
	KwImpl
	KwClass
	KwInterface
	KwExtends
	KwImplements
	KwVirtual
	KwOverride
	KwAbstract
	KwSealed
	KwStatic
	KwPrivate
	KwProtected
	KwPub
	KwConst
	KwType
	KwUse
	KwAs
	KwModule
	KwAsync
	KwAwait
	KwLowlevel
	KwUnsafe
	KwNew
	KwBase
	KwThis
	KwTrue
	KwFalse
	KwNull
	KwAnd
	KwOr
	KwNot
	KwXor
	KwShl
	KwShr
	KwTo
	KwThrough
	KwDo
	KwMove
	KwIs
	KwWhere
	KwDyn
	kindKeywordEnd

	// Operators & punctuation
	Plus
	Minus
	Star
	StarStar
	Slash
	Percent
	PlusPlus
	MinusMinus
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	PercentAssign
	StarStarAssign
	ShlAssign
	ShrAssign
	AmpAssign
	PipeAssign
	CaretAssign
	Eq
	NotEq
	Lt
	LtEq
	Gt
	GtEq
	AmpAmp
	PipePipe
	Bang
	Amp
	Pipe
	Caret
	Tilde
	Shl
	Shr
	Dot
	DotDot
	DotDotEq
	DotAwait
	Question
	Arrow      // ->
	FatArrow   // =>
	ColonColon // ::
	Colon
	Semicolon
	Comma
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	At       // @
	Dollar   // $
	DollarLBrace
)

// IsKeyword reports whether k is one of the closed keyword set.
func (k Kind) IsKeyword() bool { return k > kindKeywordBegin && k < kindKeywordEnd }

var keywords = map[string]Kind{
	"let": KwLet, "var": KwVar, "mut": KwMut, "ref": KwRef, "fn": KwFn,
	"return": KwReturn, "if": KwIf, "else": KwElse, "when": KwWhen,
	"loop": KwLoop, "while": KwWhile, "for": KwFor, "in": KwIn,
	"break": KwBreak, "continue": KwContinue, "throw": KwThrow,
	"struct": KwStruct, "enum": KwEnum, "behavior": KwBehavior, "impl": KwImpl,
	"class": KwClass, "interface": KwInterface, "extends": KwExtends,
	"implements": KwImplements, "virtual": KwVirtual, "override": KwOverride,
	"abstract": KwAbstract, "sealed": KwSealed, "static": KwStatic,
	"private": KwPrivate, "protected": KwProtected, "pub": KwPub,
	"const": KwConst, "type": KwType, "use": KwUse, "as": KwAs,
	"module": KwModule, "async": KwAsync, "await": KwAwait,
	"lowlevel": KwLowlevel, "unsafe": KwUnsafe, "new": KwNew, "base": KwBase,
	"this": KwThis, "true": KwTrue, "false": KwFalse, "null": KwNull,
	"and": KwAnd, "or": KwOr, "not": KwNot, "xor": KwXor, "shl": KwShl,
	"shr": KwShr, "to": KwTo, "through": KwThrough, "do": KwDo,
	"move": KwMove, "is": KwIs, "where": KwWhere, "dyn": KwDyn,
}

// LookupIdent classifies ident as a keyword Kind, or Ident if it is
// not one of the closed keyword set.
func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Ident
}

// Value is the tagged value union a literal token carries.
type Value struct {
	Int     int64
	Uint    uint64
	Float   float64
	Str     string
	Bool    bool
	Base    int    // 10, 16, 2, 8 — for IntLiteral only
	Suffix  string // explicit width suffix, e.g. "i32", "u64", "f64"; "" if none
	IsFloat bool   // set on every FloatLiteral (fraction, exponent, or f32/f64 suffix)
}

// Token is one lexical unit: its kind, span, raw lexeme, and decoded
// value (for literals).
type Token struct {
	Kind   Kind
	Span   source.Span
	Lexeme string
	Value  Value
}
