// Package scanner implements Ember's on-demand, byte-oriented lexer: ASCII
// source with UTF-8 pass-through inside string literals, a hand-rolled
// character-trie keyword matcher, and string-interpolation segmentation.
package scanner

import (
	"github.com/mna/ember/lang/token"
)

// maxInterpolationDepth bounds how many "${" segments may nest inside a
// single string literal before the scanner reports an error.
const maxInterpolationDepth = 15

// Scanner produces Token values lazily from a source buffer. Each token's
// lexeme is copied out of src into its own string, so tokens remain valid
// independently of the buffer.
type Scanner struct {
	src     []byte
	start   int
	current int
	line    int

	// interpBraceDepth[i] counts unmatched '{' seen while scanning normal
	// code at interpolation nesting level i+1. A '}' only closes the
	// interpolation segment when its level's counter is zero; otherwise it
	// is an ordinary block-closing brace nested inside the "${ ... }"
	// expression (e.g. a function literal's body).
	interpBraceDepth [maxInterpolationDepth]int
	interpDepth      int
}

// New creates a Scanner positioned at the start of src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, line: 1}
}

func (s *Scanner) isAtEnd() bool { return s.current >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) lexeme() string { return string(s.src[s.start:s.current]) }

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: s.lexeme(), Line: s.line}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: msg, Line: s.line}
}

// Next scans and returns the next token in the source.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current

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
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		if s.interpDepth > 0 {
			s.interpBraceDepth[s.interpDepth-1]++
		}
		return s.make(token.LBRACE)
	case '}':
		if s.interpDepth > 0 && s.interpBraceDepth[s.interpDepth-1] == 0 {
			return s.resumeString()
		}
		if s.interpDepth > 0 {
			s.interpBraceDepth[s.interpDepth-1]--
		}
		return s.make(token.RBRACE)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case ';':
		return s.make(token.SEMICOLON)
	case '/':
		return s.make(token.SLASH)
	case '*':
		return s.make(token.STAR)
	case '%':
		return s.make(token.PERCENT)
	case ':':
		return s.make(token.COLON)
	case '?':
		return s.make(token.QUESTION)
	case '!':
		if s.match('=') {
			return s.make(token.BANG_EQUAL)
		}
		return s.make(token.BANG)
	case '=':
		if s.match('=') {
			return s.make(token.EQUAL_EQUAL)
		}
		return s.make(token.EQUAL)
	case '<':
		if s.match('=') {
			return s.make(token.LESS_EQUAL)
		}
		return s.make(token.LESS)
	case '>':
		if s.match('=') {
			return s.make(token.GREATER_EQUAL)
		}
		return s.make(token.GREATER)
	case '"':
		return s.beginString()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.isAtEnd() {
					s.advance()
				}
			} else if s.peekNext() == '*' {
				s.advance()
				s.advance()
				for !s.isAtEnd() && !(s.peek() == '*' && s.peekNext() == '/') {
					if s.peek() == '\n' {
						s.line++
					}
					s.advance()
				}
				if !s.isAtEnd() {
					s.advance()
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

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(s.identifierKind())
}

// checkKeyword compares the remainder of the identifier at rest against
// the candidate keyword tail, returning kind on a match or token.IDENT
// otherwise. Mirrors the hand-rolled trie dispatch of a clox-family
// scanner: only the branch matching the identifier's leading bytes is
// ever taken, so the whole keyword set costs a handful of comparisons.
func (s *Scanner) checkKeyword(start, length int, rest string, kind token.Kind) token.Kind {
	if s.current-s.start == start+length && string(s.src[s.start+start:s.current]) == rest {
		return kind
	}
	return token.IDENT
}

func (s *Scanner) identifierKind() token.Kind {
	if s.current == s.start {
		return token.IDENT
	}
	switch s.src[s.start] {
	case 'a':
		return s.checkKeyword(1, 2, "nd", token.AND)
	case 'b':
		return s.checkKeyword(1, 4, "reak", token.BREAK)
	case 'c':
		if s.current-s.start > 1 {
			switch s.src[s.start+1] {
			case 'a':
				return s.checkKeyword(2, 2, "se", token.CASE)
			case 'l':
				return s.checkKeyword(2, 3, "ass", token.CLASS)
			case 'o':
				if s.current-s.start > 2 {
					switch s.src[s.start+2] {
					case 'n':
						if s.current-s.start > 3 {
							switch s.src[s.start+3] {
							case 's':
								return s.checkKeyword(4, 1, "t", token.CONST)
							case 't':
								return s.checkKeyword(4, 4, "inue", token.CONTINUE)
							}
						}
					}
				}
			}
		}
	case 'd':
		return s.checkKeyword(1, 6, "efault", token.DEFAULT)
	case 'e':
		return s.checkKeyword(1, 3, "lse", token.ELSE)
	case 'f':
		if s.current-s.start > 1 {
			switch s.src[s.start+1] {
			case 'a':
				return s.checkKeyword(2, 3, "lse", token.FALSE)
			case 'o':
				return s.checkKeyword(2, 1, "r", token.FOR)
			case 'u':
				return s.checkKeyword(2, 1, "n", token.FUN)
			}
		}
	case 'i':
		return s.checkKeyword(1, 1, "f", token.IF)
	case 'l':
		return s.checkKeyword(1, 2, "et", token.LET)
	case 'n':
		return s.checkKeyword(1, 2, "il", token.NIL)
	case 'o':
		return s.checkKeyword(1, 1, "r", token.OR)
	case 'p':
		if s.current-s.start > 1 && s.src[s.start+1] == 'r' {
			if s.current-s.start >= 5 && string(s.src[s.start+2:s.start+5]) == "int" {
				if s.current-s.start == 7 {
					return s.checkKeyword(5, 2, "ln", token.PRINTLN)
				}
				return s.checkKeyword(2, 3, "int", token.PRINT)
			}
		}
	case 'r':
		return s.checkKeyword(1, 5, "eturn", token.RETURN)
	case 's':
		if s.current-s.start > 1 {
			switch s.src[s.start+1] {
			case 'u':
				return s.checkKeyword(2, 3, "per", token.SUPER)
			case 'w':
				return s.checkKeyword(2, 4, "itch", token.SWITCH)
			}
		}
	case 't':
		if s.current-s.start > 1 {
			switch s.src[s.start+1] {
			case 'h':
				return s.checkKeyword(2, 2, "is", token.THIS)
			case 'r':
				return s.checkKeyword(2, 2, "ue", token.TRUE)
			}
		}
	case 'w':
		return s.checkKeyword(1, 4, "hile", token.WHILE)
	}
	return token.IDENT
}
