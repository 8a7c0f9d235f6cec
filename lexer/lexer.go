// Package lexer implements the lazy, single-pass scanner that turns source
// bytes into a stream of token.Token values, one at a time.
package lexer

import "nilan/token"

// commentStart is the first byte of a "//" line comment.
const commentStart = '/'

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// Scanner is a stateful single-pass tokenizer over the source text's bytes.
// Unlike the teacher's lexer, which eagerly tokenizes the whole input into a
// slice up front, Scanner hands back one token per call to ScanToken — the
// compiler drives it with a single byte of lookahead, per spec.md §4.1.
type Scanner struct {
	source string
	start  int // beginning of the current lexeme
	curr   int // cursor
	line   int
}

// New creates a Scanner positioned at the beginning of source.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

func (s *Scanner) isAtEnd() bool {
	return s.curr >= len(s.source)
}

func (s *Scanner) advance() byte {
	c := s.source[s.curr]
	s.curr++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.curr]
}

func (s *Scanner) peekNext() byte {
	if s.curr+1 >= len(s.source) {
		return 0
	}
	return s.source[s.curr+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.curr] != expected {
		return false
	}
	s.curr++
	return true
}

func (s *Scanner) lexeme() string {
	return s.source[s.start:s.curr]
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: s.lexeme(), Line: s.line}
}

func (s *Scanner) errorToken(message string) token.Token {
	return token.Token{Kind: token.Error, Lexeme: message, Line: s.line}
}

// skipWhitespace consumes spaces, tabs, carriage returns, newlines, and
// "// ..." line comments, tracking line numbers as it goes.
func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case commentStart:
			if s.peekNext() == commentStart {
				for s.peek() != '\n' && !s.isAtEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) identifierKind() token.Kind {
	word := s.lexeme()
	if kind, ok := token.Keywords[word]; ok {
		return kind
	}
	return token.Identifier
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(s.identifierKind())
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.Number)
}

// string scans until the matching closing quote or EOF, counting embedded
// newlines. The resulting token's Lexeme includes both surrounding quotes;
// the compiler is responsible for stripping them (spec.md §9).
func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // the closing quote
	return s.make(token.String)
}

// ScanToken returns the next token in the stream. Once the input is
// exhausted it returns EOF tokens forever.
func (s *Scanner) ScanToken() token.Token {
	s.skipWhitespace()
	s.start = s.curr

	if s.isAtEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()

	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case ';':
		return s.make(token.Semicolon)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case '/':
		return s.make(token.Slash)
	case '*':
		return s.make(token.Star)
	case '!':
		if s.match('=') {
			return s.make(token.BangEqual)
		}
		return s.make(token.Bang)
	case '=':
		if s.match('=') {
			return s.make(token.EqualEqual)
		}
		return s.make(token.Equal)
	case '<':
		if s.match('=') {
			return s.make(token.LessEqual)
		}
		return s.make(token.Less)
	case '>':
		if s.match('=') {
			return s.make(token.GreaterEqual)
		}
		return s.make(token.Greater)
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}
