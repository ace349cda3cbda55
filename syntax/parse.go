// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"strings"
)

// A ParseError is a syntax failure with enough context to render a
// caret diagnostic.
type ParseError struct {
	Filename string
	Tok      Token
	Msg      string
	src      string
}

func (e *ParseError) Error() string {
	return Caret(e.Filename, e.src, e.Tok.Pos, len(e.Tok.Value), e.Msg)
}

// Parse turns a token sequence into a statement sequence. src is the
// original source text, used only for error rendering.
func Parse(filename string, tokens []Token, src string) ([]Stmt, error) {
	p := &parser{filename: filename, tokens: tokens, src: src}
	stmts, err := p.parseStmts(EOF)
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

// ParseExpr parses a single expression, as found inside a ${...}
// interpolation hole. The whole token sequence must be consumed.
func ParseExpr(filename string, tokens []Token, src string) (Expr, error) {
	p := &parser{filename: filename, tokens: tokens, src: src}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != EOF {
		return nil, p.errorf(t, "unexpected %s after expression", t)
	}
	return x, nil
}

type parser struct {
	filename string
	tokens   []Token
	src      string
	pos      int
}

func (p *parser) errorf(tok Token, format string, args ...interface{}) error {
	return &ParseError{Filename: p.filename, Tok: tok, Msg: fmt.Sprintf(format, args...), src: p.src}
}

func (p *parser) peek() Token { return p.at(0) }

func (p *parser) at(off int) Token {
	if p.pos+off < len(p.tokens) {
		return p.tokens[p.pos+off]
	}
	return Token{Kind: EOF}
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.peek()
	if t.Kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, t)
	}
	return p.next(), nil
}

// terminator consumes a statement terminator: a run of ! or a single ?.
// It returns the bang count and whether the ? debug form was used.
// When require is false a missing terminator is not an error (blocks
// need none).
func (p *parser) terminator(require bool) (bangs int, debug bool, err error) {
	for p.peek().Kind == BANG {
		p.next()
		bangs++
	}
	if bangs == 0 && p.peek().Kind == QUESTION {
		p.next()
		debug = true
		// Extra question marks intensify the debug dump but change nothing.
		for p.peek().Kind == QUESTION {
			p.next()
		}
	}
	if require && bangs == 0 && !debug {
		return 0, false, p.errorf(p.peek(), "expected ! or ? to end the statement")
	}
	return bangs, debug, nil
}

// parseStmts parses statements until the given closing token kind,
// which is left unconsumed.
func (p *parser) parseStmts(until TokenKind) ([]Stmt, error) {
	var stmts []Stmt
	for p.peek().Kind != until && p.peek().Kind != EOF {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if p.peek().Kind != until {
		return nil, p.errorf(p.peek(), "expected %s", until)
	}
	return stmts, nil
}

func (p *parser) parseBlock() ([]Stmt, error) {
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmts(RBRACE)
	if err != nil {
		return nil, err
	}
	p.next() // }
	// A block may carry a gratuitous terminator.
	p.terminator(false)
	return stmts, nil
}

// IsFunctionKeyword reports whether name is a non-empty subsequence of
// the word "function" (function, func, fn, fctn, ...), the language's
// entire family of function keywords.
func IsFunctionKeyword(name string) bool {
	if name == "" {
		return false
	}
	const word = "function"
	i := 0
	for j := 0; j < len(word) && i < len(name); j++ {
		if name[i] == word[j] {
			i++
		}
	}
	return i == len(name)
}

func isDeclKeyword(name string) bool { return name == "const" || name == "var" }

func (p *parser) parseStmt() (Stmt, error) {
	tok := p.peek()
	if tok.Kind == NAME {
		name := tok.Value
		switch {
		case name == "async" && IsFunctionKeyword(p.at(1).Value) && p.at(2).Kind == NAME && p.at(3).Kind == LPAREN:
			p.next()
			return p.parseFuncDef(true)
		case IsFunctionKeyword(name) && p.at(1).Kind == NAME && p.at(2).Kind == LPAREN:
			return p.parseFuncDef(false)
		case name == "class" || name == "className":
			return p.parseClassDecl()
		case name == "if":
			return p.parseIf()
		case name == "when":
			return p.parseWhen()
		case name == "after":
			return p.parseAfter()
		case name == "return":
			return p.parseReturn()
		case name == "delete":
			return p.parseDelete()
		case name == "export":
			return p.parseExport()
		case name == "import" && p.at(1).Kind == NAME:
			return p.parseImport()
		case name == "reverse" && (p.at(1).Kind == BANG || p.at(1).Kind == QUESTION):
			p.next()
			if _, _, err := p.terminator(true); err != nil {
				return nil, err
			}
			return &ReverseStmt{ReversePos: tok.Pos}, nil
		case isDeclKeyword(name):
			return p.parseVarDecl()
		}
	}
	return p.parseSimpleStmt()
}

func (p *parser) parseFuncDef(isAsync bool) (Stmt, error) {
	p.next() // function keyword
	nameTok, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for p.peek().Kind != RPAREN {
		param, err := p.expect(NAME)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Value)
		if p.peek().Kind == COMMA {
			p.next()
		}
	}
	p.next() // )
	if _, err := p.expect(ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseArrowBody()
	if err != nil {
		return nil, err
	}
	return &FuncDefStmt{NamePos: nameTok.Pos, Name: nameTok.Value, Params: params, Body: body, IsAsync: isAsync}, nil
}

// parseArrowBody parses either a block or a single statement; a sole
// expression statement becomes the function's return value.
func (p *parser) parseArrowBody() ([]Stmt, error) {
	if p.peek().Kind == LBRACE {
		return p.parseBlock()
	}
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if es, ok := s.(*ExprStmt); ok {
		return []Stmt{&ReturnStmt{ReturnPos: ExprPos(es.X), Value: es.X}}, nil
	}
	return []Stmt{s}, nil
}

func (p *parser) parseClassDecl() (Stmt, error) {
	p.next() // class keyword
	nameTok, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ClassDeclStmt{NamePos: nameTok.Pos, Name: nameTok.Value, Body: body}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	ifTok := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{IfPos: ifTok.Pos, Cond: cond, True: body}
	if p.peek().Kind == NAME && p.peek().Value == "else" {
		p.next()
		if p.peek().Kind == NAME && p.peek().Value == "if" {
			nested, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			stmt.False = []Stmt{nested}
		} else {
			stmt.False, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
	}
	return stmt, nil
}

func (p *parser) parseWhen() (Stmt, error) {
	whenTok := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhenStmt{WhenPos: whenTok.Pos, Cond: cond, Body: body}, nil
}

func (p *parser) parseAfter() (Stmt, error) {
	afterTok := p.next()
	ev, err := p.expect(STRING)
	if err != nil {
		return nil, p.errorf(p.peek(), "after requires a quoted event name")
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &AfterStmt{AfterPos: afterTok.Pos, Event: ev.Value, Body: body}, nil
}

func (p *parser) parseReturn() (Stmt, error) {
	retTok := p.next()
	stmt := &ReturnStmt{ReturnPos: retTok.Pos}
	if k := p.peek().Kind; k != BANG && k != QUESTION && k != RBRACE && k != EOF {
		var err error
		stmt.Value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, _, err := p.terminator(false); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseDelete() (Stmt, error) {
	delTok := p.next()
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.terminator(true); err != nil {
		return nil, err
	}
	return &DeleteStmt{DeletePos: delTok.Pos, Target: target}, nil
}

func (p *parser) parseExport() (Stmt, error) {
	expTok := p.next()
	nameTok, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	to, err := p.expect(NAME)
	if err != nil || to.Value != "to" {
		return nil, p.errorf(to, "expected 'to' in export statement")
	}
	file, err := p.expect(STRING)
	if err != nil {
		return nil, err
	}
	if _, _, err := p.terminator(true); err != nil {
		return nil, err
	}
	return &ExportStmt{ExportPos: expTok.Pos, Name: nameTok.Value, File: file.Value}, nil
}

func (p *parser) parseImport() (Stmt, error) {
	impTok := p.next()
	nameTok, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	if _, _, err := p.terminator(true); err != nil {
		return nil, err
	}
	return &ImportStmt{ImportPos: impTok.Pos, Name: nameTok.Value}, nil
}

func (p *parser) parseVarDecl() (Stmt, error) {
	var modifiers []string
	for p.peek().Kind == NAME && isDeclKeyword(p.peek().Value) && len(modifiers) < 3 {
		modifiers = append(modifiers, p.next().Value)
	}
	nameTok, err := p.expect(NAME)
	if err != nil {
		return nil, err
	}
	stmt := &VarDeclStmt{NamePos: nameTok.Pos, Name: nameTok.Value, Modifiers: modifiers}

	// Optional angle-bracket lifetime: <Infinity>, <20s>, <5>.
	if p.peek().Kind == LT {
		p.next()
		var raw strings.Builder
		for p.peek().Kind != GT {
			if p.peek().Kind == EOF {
				return nil, p.errorf(p.peek(), "unterminated lifetime")
			}
			raw.WriteString(p.next().Value)
		}
		p.next() // >
		stmt.Lifetime = raw.String()
	}

	if p.peek().Kind == EQ {
		p.next()
		stmt.Value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	stmt.Bangs, stmt.Debug, err = p.terminator(true)
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseSimpleStmt parses an expression or assignment statement,
// including the paren-free call-statement form `print x, y!`.
func (p *parser) parseSimpleStmt() (Stmt, error) {
	tok := p.peek()
	if tok.Kind == NAME && startsJuxtaposedArg(p.at(1).Kind) {
		p.next()
		var args []Expr
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Kind != COMMA {
				break
			}
			p.next()
		}
		_, debug, err := p.terminator(true)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: &CallExpr{Func: tok, Args: args}, Debug: debug}, nil
	}

	// Statement-level increment/decrement sugar: x++! / x--!.
	if tok.Kind == NAME && (p.at(1).Kind == PLUSPLUS || p.at(1).Kind == MINUSMINUS) {
		p.next()
		opTok := p.next()
		op := OpAdd
		if opTok.Kind == MINUSMINUS {
			op = OpSub
		}
		_, debug, err := p.terminator(true)
		if err != nil {
			return nil, err
		}
		one := &Literal{Token: Token{Kind: NUMBER, Value: "1", Pos: opTok.Pos}}
		return &AssignStmt{
			OpPos:  opTok.Pos,
			Target: &Literal{Token: tok},
			Value:  &BinaryExpr{X: &Literal{Token: tok}, Op: op, OpTok: opTok, Y: one},
			Debug:  debug,
		}, nil
	}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	_, debug, err := p.terminator(true)
	if err != nil {
		return nil, err
	}

	// Statement-level = with an assignable left operand is assignment;
	// any other shape stays an expression (and compares for equality).
	if b, ok := x.(*BinaryExpr); ok && b.Op == OpEq && assignable(b.X) {
		return &AssignStmt{OpPos: b.OpTok.Pos, Target: b.X, Value: b.Y, Debug: debug}, nil
	}
	return &ExprStmt{X: x, Debug: debug}, nil
}

func assignable(e Expr) bool {
	switch e := e.(type) {
	case *Literal:
		return e.Token.Kind == NAME
	case *IndexExpr:
		return true
	}
	return false
}

// startsJuxtaposedArg reports whether a token kind can begin the
// argument of a paren-free call statement. Brackets and parens are
// excluded: those bind as postfix index/call syntax.
func startsJuxtaposedArg(k TokenKind) bool {
	switch k {
	case NAME, NUMBER, STRING, ISTRING:
		return true
	}
	return false
}

// Binary precedence levels, loosest first. The = family is the
// loosest so that `x = a > b` assigns the comparison's result.
var precedence = [][]Op{
	{OpEq, OpEqEq, OpEqEqEq, OpEqEqEqEq, OpNe, OpNeEq, OpNeEqEq},
	{OpOr},
	{OpAnd},
	{OpGt, OpGe, OpLt, OpLe},
	{OpAdd, OpSub},
	{OpMul, OpDiv},
	{OpExp},
}

var tokenOps = map[TokenKind]Op{
	PLUS:     OpAdd,
	MINUS:    OpSub,
	STAR:     OpMul,
	SLASH:    OpDiv,
	CARET:    OpExp,
	GT:       OpGt,
	GE:       OpGe,
	LT:       OpLt,
	LE:       OpLe,
	PIPE:     OpOr,
	AMP:      OpAnd,
	EQ:       OpEq,
	EQEQ:     OpEqEq,
	EQEQEQ:   OpEqEqEq,
	EQEQEQEQ: OpEqEqEqEq,
	NEQ:      OpNe,
	NEQEQ:    OpNeEq,
	NEQEQEQ:  OpNeEqEq,
}

func (p *parser) parseExpr() (Expr, error) { return p.parseBinary(0) }

func (p *parser) parseBinary(level int) (Expr, error) {
	if level == len(precedence) {
		return p.parseUnary()
	}
	x, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.peek()
		op, ok := tokenOps[opTok.Kind]
		if !ok || !opInLevel(op, level) {
			return x, nil
		}
		p.next()
		y, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		x = &BinaryExpr{X: x, Op: op, OpTok: opTok, Y: y}
	}
}

func opInLevel(op Op, level int) bool {
	for _, o := range precedence[level] {
		if o == op {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Kind == MINUS || tok.Kind == SEMICOLON {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{OpTok: tok, X: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == LBRACK {
		p.next()
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACK); err != nil {
			return nil, err
		}
		x = &IndexExpr{X: x, Index: index}
	}
	return x, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case NUMBER, STRING, ISTRING:
		p.next()
		return &Literal{Token: tok}, nil
	case NAME:
		p.next()
		if p.peek().Kind == LPAREN {
			p.next()
			var args []Expr
			for p.peek().Kind != RPAREN {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.peek().Kind == COMMA {
					p.next()
				}
			}
			p.next() // )
			return &CallExpr{Func: tok, Args: args}, nil
		}
		return &Literal{Token: tok}, nil
	case LPAREN:
		p.next()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	case LBRACK:
		p.next()
		list := &ListExpr{LbrackPos: tok.Pos}
		for p.peek().Kind != RBRACK {
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			list.Elems = append(list.Elems, el)
			if p.peek().Kind == COMMA {
				p.next()
			}
		}
		p.next() // ]
		return list, nil
	}
	return nil, p.errorf(tok, "expected an expression, found %s", tok)
}
