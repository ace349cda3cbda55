// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package syntax provides a Gulf of Mexico scanner, parser, and
// abstract syntax tree.
//
// The language is statement-oriented: statements terminate with one or
// more ! (or ? for the debug form) and group into {...} blocks. The
// parser performs no name resolution; identifiers, including dotted
// member paths, are resolved by the evaluator.
package syntax

// A Stmt is a Gulf statement.
type Stmt interface {
	stmt()
	// Pos returns the position of the statement's first token.
	Pos() Position
}

func (*FuncDefStmt) stmt()   {}
func (*ClassDeclStmt) stmt() {}
func (*VarDeclStmt) stmt()   {}
func (*AssignStmt) stmt()    {}
func (*IfStmt) stmt()        {}
func (*WhenStmt) stmt()      {}
func (*AfterStmt) stmt()     {}
func (*ReturnStmt) stmt()    {}
func (*DeleteStmt) stmt()    {}
func (*ExportStmt) stmt()    {}
func (*ImportStmt) stmt()    {}
func (*ReverseStmt) stmt()   {}
func (*ExprStmt) stmt()      {}

// A FuncDefStmt binds a function. Any non-empty subsequence of the
// word "function" (fn, func, fun, functi, ...) introduces one; an
// async prefix marks the function for interleaved execution.
type FuncDefStmt struct {
	NamePos Position
	Name    string
	Params  []string
	Body    []Stmt
	IsAsync bool
}

func (s *FuncDefStmt) Pos() Position { return s.NamePos }

// A ClassDeclStmt declares a class. Classes are singletons: the body
// executes once in a fresh namespace which collapses into a single
// Object value.
type ClassDeclStmt struct {
	NamePos Position
	Name    string
	Body    []Stmt
}

func (s *ClassDeclStmt) Pos() Position { return s.NamePos }

// A VarDeclStmt declares a variable:
//
//	const const x<10> = 5!
//
// Modifiers holds the one to three const/var keywords. Lifetime holds
// the raw text between angle brackets ("Infinity", "20s", "5"), or ""
// when absent. Bangs counts the terminating exclamation points; Debug
// is set for the ? form.
type VarDeclStmt struct {
	NamePos   Position
	Name      string
	Modifiers []string
	Lifetime  string
	Value     Expr // nil when the declaration has no initializer
	Bangs     int
	Debug     bool
}

func (s *VarDeclStmt) Pos() Position { return s.NamePos }

// An AssignStmt assigns to a bare identifier or an index expression.
// Expressions whose top-level = has any other left operand shape stay
// ExprStmts and degrade to equality comparison at evaluation.
type AssignStmt struct {
	OpPos  Position
	Target Expr // *Literal (NAME) or *IndexExpr
	Value  Expr
	Debug  bool
}

func (s *AssignStmt) Pos() Position { return s.OpPos }

// An IfStmt executes True only on an exactly-true condition,
// otherwise False when present.
type IfStmt struct {
	IfPos Position
	Cond  Expr
	True  []Stmt
	False []Stmt
}

func (s *IfStmt) Pos() Position { return s.IfPos }

// A WhenStmt registers a persistently reactive condition/body pair.
type WhenStmt struct {
	WhenPos Position
	Cond    Expr
	Body    []Stmt
}

func (s *WhenStmt) Pos() Position { return s.WhenPos }

// An AfterStmt defers a body until a matching input event (or the
// end-of-batch flush).
type AfterStmt struct {
	AfterPos Position
	Event    string
	Body     []Stmt
}

func (s *AfterStmt) Pos() Position { return s.AfterPos }

type ReturnStmt struct {
	ReturnPos Position
	Value     Expr // nil for a bare return
}

func (s *ReturnStmt) Pos() Position { return s.ReturnPos }

type DeleteStmt struct {
	DeletePos Position
	Target    Expr
}

func (s *DeleteStmt) Pos() Position { return s.DeletePos }

// An ExportStmt serializes a variable to a file as Gulf source:
//
//	export x to "x.gulf"!
type ExportStmt struct {
	ExportPos Position
	Name      string
	File      string
}

func (s *ExportStmt) Pos() Position { return s.ExportPos }

// An ImportStmt executes another file in the current namespace stack.
type ImportStmt struct {
	ImportPos Position
	Name      string
}

func (s *ImportStmt) Pos() Position { return s.ImportPos }

// A ReverseStmt undoes the most recent previous value of some variable.
type ReverseStmt struct {
	ReversePos Position
}

func (s *ReverseStmt) Pos() Position { return s.ReversePos }

// An ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X     Expr
	Debug bool
}

func (s *ExprStmt) Pos() Position { return exprPos(s.X) }

// An Expr is a Gulf expression.
type Expr interface{ expr() }

func (*Literal) expr()    {}
func (*UnaryExpr) expr()  {}
func (*BinaryExpr) expr() {}
func (*CallExpr) expr()   {}
func (*IndexExpr) expr()  {}
func (*ListExpr) expr()   {}

// A Literal is a leaf: a NAME reference, or a NUMBER, STRING, or
// ISTRING literal. The token's kind dictates evaluation.
type Literal struct {
	Token Token
}

// A UnaryExpr is -x or ;x (logical not).
type UnaryExpr struct {
	OpTok Token
	X     Expr
}

// A BinaryExpr applies Op to two operands. OpEq is context-sensitive:
// assignment when the left operand is a bare name or index expression,
// loose equality otherwise.
type BinaryExpr struct {
	X     Expr
	Op    Op
	OpTok Token
	Y     Expr
}

// A CallExpr calls a named (possibly dotted) function.
type CallExpr struct {
	Func Token // a NAME token
	Args []Expr
}

// An IndexExpr is x[i]. Indexing is 1-shifted-negative: the conceptual
// first element lives at index -1, and list indices may be fractional.
type IndexExpr struct {
	X     Expr
	Index Expr
}

// A ListExpr is a bracket literal [a, b, c].
type ListExpr struct {
	LbrackPos Position
	Elems     []Expr
}

func exprPos(e Expr) Position {
	switch e := e.(type) {
	case *Literal:
		return e.Token.Pos
	case *UnaryExpr:
		return e.OpTok.Pos
	case *BinaryExpr:
		return exprPos(e.X)
	case *CallExpr:
		return e.Func.Pos
	case *IndexExpr:
		return exprPos(e.X)
	case *ListExpr:
		return e.LbrackPos
	}
	return Position{}
}

// ExprPos returns the position of the leftmost token of e.
func ExprPos(e Expr) Position { return exprPos(e) }

// WalkNames calls f for every bare-identifier leaf reachable from e,
// including callee names and names nested in arguments, indices, and
// list elements. The when-statement dependency engine uses this to
// collect a condition's dependency set.
func WalkNames(e Expr, f func(name string)) {
	switch e := e.(type) {
	case *Literal:
		if e.Token.Kind == NAME {
			f(e.Token.Value)
		}
	case *UnaryExpr:
		WalkNames(e.X, f)
	case *BinaryExpr:
		WalkNames(e.X, f)
		WalkNames(e.Y, f)
	case *CallExpr:
		f(e.Func.Value)
		for _, arg := range e.Args {
			WalkNames(arg, f)
		}
	case *IndexExpr:
		WalkNames(e.X, f)
		WalkNames(e.Index, f)
	case *ListExpr:
		for _, el := range e.Elems {
			WalkNames(el, f)
		}
	}
}
