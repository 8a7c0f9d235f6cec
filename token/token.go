// Package token defines the lexical tokens produced by the lexer and
// consumed by the compiler.
package token

import "fmt"

// Kind classifies a token. Values mirror the grammar's terminal symbols.
type Kind int

const (
	// single-character
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// one or two character
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// literals
	Identifier
	String
	Number

	// keywords
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	Error
	EOF
)

// names is used only for String(); it is not consulted by the lexer or
// compiler.
var names = map[Kind]string{
	LeftParen: "LeftParen", RightParen: "RightParen",
	LeftBrace: "LeftBrace", RightBrace: "RightBrace",
	Comma: "Comma", Dot: "Dot", Minus: "Minus", Plus: "Plus",
	Semicolon: "Semicolon", Slash: "Slash", Star: "Star",
	Bang: "Bang", BangEqual: "BangEqual",
	Equal: "Equal", EqualEqual: "EqualEqual",
	Greater: "Greater", GreaterEqual: "GreaterEqual",
	Less: "Less", LessEqual: "LessEqual",
	Identifier: "Identifier", String: "String", Number: "Number",
	And: "And", Class: "Class", Else: "Else", False: "False",
	For: "For", Fun: "Fun", If: "If", Nil: "Nil", Or: "Or",
	Print: "Print", Return: "Return", Super: "Super", This: "This",
	True: "True", Var: "Var", While: "While",
	Error: "Error", EOF: "EOF",
}

func (k Kind) String() string {
	if name, ok := names[k]; ok {
		return name
	}
	return "Unknown"
}

// Keywords maps the reserved words of the language to their token kind.
// The lexer consults this after scanning an identifier-shaped run of
// bytes; anything not present here is an Identifier.
var Keywords = map[string]Kind{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// Token is a lexeme plus its classification and source line.
//
// Lexeme is a slice of the original source string rather than a
// pointer/length pair: Go strings are already immutable views, so slicing
// one is the zero-copy borrow spec.md asks for — the
// source string must still outlive the Token, exactly as spec.md's Design
// Notes describe for languages with a GC.
//
// For String tokens, Lexeme includes the surrounding quotes; the compiler
// strips them before interning (spec.md §9, "string token length").
// For Error tokens, Lexeme holds the diagnostic message itself, not a
// source excerpt.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%s %q line=%d}", t.Kind, t.Lexeme, t.Line)
}
