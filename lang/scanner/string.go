package scanner

import "github.com/mna/ember/lang/token"

// beginString scans a string literal (the opening '"' has already been
// consumed). It either runs to the closing '"' and returns a STRING token,
// or hits "${" first and returns an INTERPOLATION token whose lexeme is
// the literal segment preceding the interpolation.
func (s *Scanner) beginString() token.Token {
	return s.scanStringSegment()
}

// resumeString is called when a '}' closes the current interpolation
// expression; it resumes scanning the string literal from just past that
// brace, which has already been consumed by Next.
func (s *Scanner) resumeString() token.Token {
	s.interpDepth--
	s.start = s.current
	return s.scanStringSegment()
}

// scanStringSegment scans literal string content starting at s.current
// until a closing '"' (STRING), a "${" (INTERPOLATION), or EOF
// (unterminated error).
func (s *Scanner) scanStringSegment() token.Token {
	segStart := s.current
	for {
		if s.isAtEnd() {
			return s.errorToken("Unterminated string.")
		}
		c := s.peek()
		if c == '"' {
			lit := string(s.src[segStart:s.current])
			s.advance() // closing quote
			return token.Token{Kind: token.STRING, Lexeme: lit, Line: s.line}
		}
		if c == '$' && s.peekNext() == '{' {
			lit := string(s.src[segStart:s.current])
			s.advance() // '$'
			s.advance() // '{'
			if s.interpDepth >= maxInterpolationDepth {
				return s.errorToken("Interpolation may only nest 15 levels depths.")
			}
			s.interpBraceDepth[s.interpDepth] = 0
			s.interpDepth++
			return token.Token{Kind: token.INTERPOLATION, Lexeme: lit, Line: s.line}
		}
		if c == '\n' {
			s.line++
		}
		s.advance()
	}
}
