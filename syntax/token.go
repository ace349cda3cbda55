// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import "fmt"

// A TokenKind classifies a lexical token.
type TokenKind int8

const (
	ILLEGAL TokenKind = iota
	EOF
	NEWLINE

	NAME    // identifier, possibly dotted: x, foo_bar, list.push
	NUMBER  // 123, 4.5, -2
	STRING  // "abc", 'abc', ''abc''
	ISTRING // string literal containing ${...} interpolation

	LBRACE // {
	RBRACE // }
	LBRACK // [
	RBRACK // ]
	LPAREN // (
	RPAREN // )

	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	BANG      // !
	QUESTION  // ?
	CARET     // ^
	ARROW     // =>

	PLUS       // +
	PLUSPLUS   // ++
	MINUS      // -
	MINUSMINUS // --
	STAR       // *
	SLASH      // /

	EQ       // =
	EQEQ     // ==
	EQEQEQ   // ===
	EQEQEQEQ // ====
	NEQ      // ;=
	NEQEQ    // ;==
	NEQEQEQ  // ;===

	LT   // <
	GT   // >
	LE   // <=
	GE   // >=
	PIPE // |
	AMP  // &

	maxTokenKind
)

var kindNames = [...]string{
	ILLEGAL:    "illegal",
	EOF:        "end of file",
	NEWLINE:    "newline",
	NAME:       "name",
	NUMBER:     "number",
	STRING:     "string",
	ISTRING:    "interpolated string",
	LBRACE:     "{",
	RBRACE:     "}",
	LBRACK:     "[",
	RBRACK:     "]",
	LPAREN:     "(",
	RPAREN:     ")",
	COMMA:      ",",
	COLON:      ":",
	SEMICOLON:  ";",
	BANG:       "!",
	QUESTION:   "?",
	CARET:      "^",
	ARROW:      "=>",
	PLUS:       "+",
	PLUSPLUS:   "++",
	MINUS:      "-",
	MINUSMINUS: "--",
	STAR:       "*",
	SLASH:      "/",
	EQ:         "=",
	EQEQ:       "==",
	EQEQEQ:     "===",
	EQEQEQEQ:   "====",
	NEQ:        ";=",
	NEQEQ:      ";==",
	NEQEQEQ:    ";===",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	PIPE:       "|",
	AMP:        "&",
}

func (k TokenKind) String() string {
	if 0 <= k && k < maxTokenKind {
		return kindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// A Position identifies a location in a source file.
// Lines and columns are 1-based.
type Position struct {
	Line int32
	Col  int32
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// A Token is one lexical token of a Gulf source file.
// Value holds the token's text: the identifier spelling, the number
// literal, or the string contents without quotes. For punctuation it
// holds the punctuation itself.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   Position
}

func (t Token) String() string {
	switch t.Kind {
	case NAME, NUMBER, STRING, ISTRING:
		return fmt.Sprintf("%s %q", t.Kind, t.Value)
	}
	return t.Kind.String()
}

// An Op identifies a binary operator as used by the evaluator.
type Op int8

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpExp           // ^
	OpGt            // >
	OpGe            // >=
	OpLt            // <
	OpLe            // <=
	OpOr            // |
	OpAnd           // &
	OpEq            // =   (assignment or loose equality)
	OpEqEq          // ==
	OpEqEqEq        // ===
	OpEqEqEqEq      // ====
	OpNe            // ;=
	OpNeEq          // ;==
	OpNeEqEq        // ;===
)

var opNames = [...]string{
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpExp:      "^",
	OpGt:       ">",
	OpGe:       ">=",
	OpLt:       "<",
	OpLe:       "<=",
	OpOr:       "|",
	OpAnd:      "&",
	OpEq:       "=",
	OpEqEq:     "==",
	OpEqEqEq:   "===",
	OpEqEqEqEq: "====",
	OpNe:       ";=",
	OpNeEq:     ";==",
	OpNeEqEq:   ";===",
}

func (op Op) String() string { return opNames[op] }
