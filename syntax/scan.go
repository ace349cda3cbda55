// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"strings"
)

// A ScanError is a tokenization failure with source context.
type ScanError struct {
	Filename string
	Line     int32
	Msg      string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s, line %d: %s", e.Filename, e.Line, e.Msg)
}

// Tokenize scans an entire Gulf source file into a flat token sequence
// ending with an EOF token. Whitespace and comments are discarded;
// newlines advance the line counter but produce no tokens (statements
// terminate with ! or ?).
func Tokenize(filename, src string) ([]Token, error) {
	s := scanner{filename: filename, src: src, line: 1, lineStart: -1}
	return s.scan()
}

type scanner struct {
	filename  string
	src       string
	pos       int
	line      int32
	lineStart int // offset of the newline preceding the current line
	tokens    []Token
}

func (s *scanner) errorf(format string, args ...interface{}) error {
	return &ScanError{Filename: s.filename, Line: s.line, Msg: fmt.Sprintf(format, args...)}
}

// emit records a token whose text began at offset start.
func (s *scanner) emit(kind TokenKind, value string, start int) {
	s.tokens = append(s.tokens, Token{
		Kind:  kind,
		Value: value,
		Pos:   Position{Line: s.line, Col: int32(start - s.lineStart)},
	})
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// Dots are name characters: property access like x.push is scanned as
// a single dotted name and resolved by the evaluator.
func isNameChar(c byte) bool { return isNameStart(c) || isDigit(c) || c == '.' }

// valueEnd reports whether a token kind can end an operand, which
// disambiguates '-' as subtraction from '-' as a negative-number sign.
func valueEnd(k TokenKind) bool {
	switch k {
	case NAME, NUMBER, STRING, ISTRING, RPAREN, RBRACK:
		return true
	}
	return false
}

func (s *scanner) lastKind() TokenKind {
	if len(s.tokens) == 0 {
		return ILLEGAL
	}
	return s.tokens[len(s.tokens)-1].Kind
}

func (s *scanner) scan() ([]Token, error) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			s.line++
			s.lineStart = s.pos
			s.pos++
		case c == ' ' || c == '\t' || c == '\r':
			s.pos++
		case c == '/' && s.peek(1) == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '"' || c == '\'':
			if err := s.scanString(); err != nil {
				return nil, err
			}
		case isDigit(c), c == '.' && isDigit(s.peek(1)):
			s.scanNumber(false)
		case c == '-' && (isDigit(s.peek(1)) || s.peek(1) == '.' && isDigit(s.peek(2))) && !valueEnd(s.lastKind()):
			s.scanNumber(true)
		case isNameStart(c):
			start := s.pos
			for s.pos < len(s.src) && isNameChar(s.src[s.pos]) {
				s.pos++
			}
			s.emit(NAME, s.src[start:s.pos], start)
		default:
			if err := s.scanPunct(c); err != nil {
				return nil, err
			}
		}
	}
	s.emit(EOF, "", s.pos)
	return s.tokens, nil
}

func (s *scanner) scanNumber(negative bool) {
	start := s.pos
	if negative {
		s.pos++
	}
	dot := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isDigit(c) {
			s.pos++
		} else if c == '.' && !dot && isDigit(s.peek(1)) {
			dot = true
			s.pos++
		} else {
			break
		}
	}
	s.emit(NUMBER, s.src[start:s.pos], start)
}

func (s *scanner) scanPunct(c byte) error {
	start := s.pos
	var kind TokenKind
	n := 1 // bytes consumed
	switch c {
	case '{':
		kind = LBRACE
	case '}':
		kind = RBRACE
	case '[':
		kind = LBRACK
	case ']':
		kind = RBRACK
	case '(':
		kind = LPAREN
	case ')':
		kind = RPAREN
	case ',':
		kind = COMMA
	case ':':
		kind = COLON
	case '!':
		kind = BANG
	case '?':
		kind = QUESTION
	case '^':
		kind = CARET
	case '|':
		kind = PIPE
	case '&':
		kind = AMP
	case '*':
		kind = STAR
	case '/':
		kind = SLASH
	case '+':
		if s.peek(1) == '+' {
			kind, n = PLUSPLUS, 2
		} else {
			kind = PLUS
		}
	case '-':
		if s.peek(1) == '-' {
			kind, n = MINUSMINUS, 2
		} else {
			kind = MINUS
		}
	case '<':
		if s.peek(1) == '=' {
			kind, n = LE, 2
		} else {
			kind = LT
		}
	case '>':
		if s.peek(1) == '=' {
			kind, n = GE, 2
		} else {
			kind = GT
		}
	case ';':
		// ;= ;== ;=== scan as the not-equal family; a bare ; is logical not.
		eqs := 0
		for s.peek(1+eqs) == '=' {
			eqs++
		}
		switch eqs {
		case 0:
			kind = SEMICOLON
		case 1:
			kind = NEQ
		case 2:
			kind = NEQEQ
		default:
			kind = NEQEQEQ
			eqs = 3
		}
		n = 1 + eqs
	case '=':
		if s.peek(1) == '>' {
			kind, n = ARROW, 2
		} else {
			eqs := 1
			for s.peek(eqs) == '=' {
				eqs++
			}
			switch eqs {
			case 1:
				kind = EQ
			case 2:
				kind = EQEQ
			case 3:
				kind = EQEQEQ
			default:
				// Longer runs clamp to the strictest form.
				kind = EQEQEQEQ
				eqs = 4
			}
			n = eqs
		}
	default:
		return s.errorf("unexpected character %q", c)
	}
	s.pos += n
	s.emit(kind, kind.String(), start)
	return nil
}

// quoteUnits measures a run of quote characters: a double quote counts
// as two units and a single quote as one, so "x", 'x', ''x'' and even
// "x'' all form balanced strings.
func quoteUnits(quotes string) int {
	n := 0
	for i := 0; i < len(quotes); i++ {
		if quotes[i] == '"' {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// emptyQuoteRun reports whether a full quote run forms a complete,
// empty string literal: its units split evenly at some boundary.
func emptyQuoteRun(quotes string) bool {
	total := quoteUnits(quotes)
	if total%2 != 0 {
		return false
	}
	for i := 0; i <= len(quotes); i++ {
		if quoteUnits(quotes[:i]) == total/2 {
			return true
		}
	}
	return false
}

// contentFollows reports whether the character at the scan position
// could begin string content, which disambiguates a run like '' that
// splits evenly: `''!` is an empty literal, `''hi''` opens a
// two-unit string.
func (s *scanner) contentFollows() bool {
	if s.pos >= len(s.src) {
		return false
	}
	switch c := s.src[s.pos]; c {
	case ' ', '\t', '\r', '\n', '!', '?', ',', ')', ']', '}', ';':
		return false
	default:
		return true
	}
}

func (s *scanner) scanString() error {
	startLine := s.line
	start := s.pos

	// Opening quote run.
	qstart := s.pos
	for s.pos < len(s.src) && (s.src[s.pos] == '"' || s.src[s.pos] == '\'') {
		s.pos++
	}
	quotes := s.src[qstart:s.pos]
	if emptyQuoteRun(quotes) && !s.contentFollows() {
		s.emitString("", start)
		return nil
	}
	open := quoteUnits(quotes)

	var value strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '"' || c == '\'' {
			// A closing run must supply exactly the opening units.
			// A quote that cannot start such a run is content.
			units, n := 0, 0
			for s.pos+n < len(s.src) && (s.src[s.pos+n] == '"' || s.src[s.pos+n] == '\'') {
				if s.src[s.pos+n] == '"' {
					units += 2
				} else {
					units++
				}
				n++
				if units == open {
					s.pos += n
					s.emitString(value.String(), start)
					return nil
				}
			}
			value.WriteByte(c)
			s.pos++
			continue
		}
		if c == '\n' {
			s.line++
			s.lineStart = s.pos
		}
		value.WriteByte(c)
		s.pos++
	}
	s.line = startLine
	return s.errorf("invalid string: starting quotes do not match closing quotes")
}

func (s *scanner) emitString(value string, start int) {
	if strings.Contains(value, "${") {
		s.emit(ISTRING, value, start)
	} else {
		s.emit(STRING, value, start)
	}
}
