// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gulf provides the Gulf of Mexico value model, binding model,
// and tree-walking evaluator.
//
// Gulf values form a tagged union: numbers, strings, tri-state
// booleans, lists, maps, functions, builtins, objects, undefined, the
// blank value, keywords, and promises. Lists and strings carry a
// signed index map: the conceptual first element lives at index -1,
// and fractional indices splice new elements between neighbors.
package gulf

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.gulfofmexico.net/syntax"
)

// floatToIntPrec is the tolerance under which a float prints and
// behaves as an integer, absorbing accumulated float error.
const floatToIntPrec = 1e-8

func isInt(x float64) bool {
	_, frac := math.Modf(math.Abs(x))
	return frac < floatToIntPrec || 1-frac < floatToIntPrec
}

// Value is a value in the Gulf of Mexico language.
type Value interface {
	// Type returns the variant tag ("Number", "String", ...).
	Type() string
	// String returns the display form used by print and string coercion.
	String() string
	// Truth returns the tri-state boolean coercion of the value.
	Truth() Bool
}

// A Callable is a value that may be invoked with arguments. Builtins
// implement it directly; user-defined Functions are applied by the
// evaluator, which must push a call frame first.
type Callable interface {
	Value
	Name() string
	// Arity returns the required argument count, or -1 for variadic.
	Arity() int
	Invoke(args []Value) (Value, error)
}

// Bool is the tri-state boolean: true, false, or maybe.
type Bool int8

const (
	False Bool = iota
	True
	Maybe
)

func (b Bool) Type() string { return "Boolean" }
func (b Bool) Truth() Bool  { return b }
func (b Bool) String() string {
	switch b {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "maybe"
}

// Not maps true to false and false to true; maybe stays maybe.
func Not(b Bool) Bool {
	switch b {
	case True:
		return False
	case False:
		return True
	}
	return Maybe
}

// UndefinedType is the type of the Undefined value.
type UndefinedType byte

// Undefined is the undefined value.
const Undefined UndefinedType = 0

func (UndefinedType) Type() string   { return "Undefined" }
func (UndefinedType) String() string { return "undefined" }
func (UndefinedType) Truth() Bool    { return False }

// BlankType is the type of the special blank value, which marks an
// omitted optional argument.
type BlankType byte

// Blank is the special blank value.
const Blank BlankType = 0

func (BlankType) Type() string   { return "SpecialBlank" }
func (BlankType) String() string { return "" }
func (BlankType) Truth() Bool    { return Maybe }

// A Keyword is a reserved word carried as a value, so that keywords
// themselves are inspectable (and deletable) bindings.
type Keyword string

func (k Keyword) Type() string   { return "Keyword" }
func (k Keyword) String() string { return string(k) }
func (k Keyword) Truth() Bool    { return Maybe }

// A Number is a float64 with digit-level indexing. The digit string
// (sign and decimal point stripped) indexes from -1 like everything
// else in this language.
type Number struct {
	Val float64
}

func NewNumber(f float64) *Number { return &Number{Val: f} }

func (n *Number) Type() string   { return "Number" }
func (n *Number) String() string { return FormatNumber(n.Val) }

func (n *Number) Truth() Bool {
	if math.Round(n.Val) != 0 {
		return True
	}
	if math.Abs(n.Val) > floatToIntPrec {
		return Maybe // a small nonzero fraction is merely probable
	}
	return False
}

// FormatNumber renders a float: values within 1e-8 of an integer print
// without a fractional part.
func FormatNumber(f float64) string {
	if isInt(f) && !math.IsInf(f, 0) {
		return strconv.FormatInt(int64(math.Round(f)), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (n *Number) digits() string {
	s := FormatNumber(n.Val)
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, ".", "")
}

// Index returns the digit at the given signed index.
func (n *Number) Index(idx float64) (Value, error) {
	digits := n.digits()
	if !isInt(idx) {
		return nil, fmt.Errorf("expected integer for number indexing")
	}
	if !(-1 <= idx && idx <= float64(len(digits)-2)) {
		return nil, fmt.Errorf("indexing out of number bounds")
	}
	d := digits[int(math.Round(idx))+1]
	return NewNumber(float64(d - '0')), nil
}

// SetIndex writes a digit (0-9) into the number, or splices one in at
// a fractional index.
func (n *Number) SetIndex(idx float64, v Value) error {
	if !isInt(n.Val) {
		return fmt.Errorf("cannot assign into a non-integer number")
	}
	digit, ok := v.(*Number)
	if !ok || !isInt(digit.Val) || digit.Val < 0 || digit.Val > 9 {
		return fmt.Errorf("cannot assign into a number with a non-digit value")
	}
	sign := 1.0
	if n.Val < 0 {
		sign = -1
	}
	digits := n.digits()
	d := strconv.Itoa(int(math.Round(digit.Val)))
	if isInt(idx) {
		if !(-1 <= idx && idx <= float64(len(digits)-2)) {
			return fmt.Errorf("indexing out of number bounds")
		}
		at := int(math.Round(idx)) + 1
		digits = digits[:at] + d + digits[at+1:]
	} else {
		at := int(math.Floor(idx)) + 2
		if at < 0 {
			at = 0
		} else if at > len(digits) {
			at = len(digits)
		}
		digits = digits[:at] + d + digits[at:]
	}
	parsed, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return err
	}
	n.Val = sign * parsed
	return nil
}

// strSlot records where a user index lands in the underlying text:
// the byte position of its first character plus any extra characters
// absorbed by a multi-character assignment.
type strSlot struct {
	pos   int
	extra string
}

// A String is text with a signed, possibly fractional index map.
type String struct {
	Val   string
	index map[float64]strSlot
}

func NewString(s string) *String {
	str := &String{Val: s}
	str.reindex()
	return str
}

func (s *String) reindex() {
	s.index = make(map[float64]strSlot, len(s.Val))
	for i := 0; i < len(s.Val); i++ {
		s.index[float64(i-1)] = strSlot{pos: i}
	}
}

func (s *String) Type() string   { return "String" }
func (s *String) String() string { return s.Val }

func (s *String) Truth() Bool {
	if s.Val == "" {
		return False
	}
	if strings.TrimSpace(s.Val) == "" {
		return Maybe // all-blank content: who can say
	}
	return True
}

func (s *String) Length() int { return len(s.Val) }

// Index returns the character (plus any absorbed extras) at a signed,
// possibly fractional index.
func (s *String) Index(idx float64) (Value, error) {
	if !(-1 <= idx && idx <= float64(len(s.Val)-1)) {
		return nil, fmt.Errorf("indexing out of string bounds")
	}
	slot, ok := s.index[idx]
	if !ok || slot.pos >= len(s.Val) {
		return nil, fmt.Errorf("no value assigned to that index")
	}
	return NewString(string(s.Val[slot.pos]) + slot.extra), nil
}

// SetIndex writes text at an index: replacing at an existing index, or
// splicing adjacent to the floor-indexed neighbor at a fresh
// fractional index. Later indices renumber to match.
func (s *String) SetIndex(idx float64, v Value) error {
	text := AsString(v)
	if slot, ok := s.index[idx]; ok {
		width := 1 + len(slot.extra)
		s.Val = s.Val[:slot.pos] + text + s.Val[slot.pos+width:]
		if text == "" {
			// The character is gone; the index no longer resolves.
			delete(s.index, idx)
		} else {
			extra := ""
			if len(text) > 1 {
				extra = text[1:]
			}
			s.index[idx] = strSlot{pos: slot.pos, extra: extra}
		}
		delta := len(text) - width
		for k, sl := range s.index {
			if k > idx {
				s.index[k] = strSlot{pos: sl.pos + delta, extra: sl.extra}
			}
		}
		return nil
	}
	if !(-1 <= idx && idx <= float64(len(s.Val)-1)) {
		return errStringBounds
	}
	if text == "" {
		return nil // splicing nothing is a no-op
	}
	at := int(math.Floor(idx)) + 2
	if at < 0 {
		at = 0
	} else if at > len(s.Val) {
		at = len(s.Val)
	}
	s.Val = s.Val[:at] + text + s.Val[at:]
	extra := ""
	if len(text) > 1 {
		extra = text[1:]
	}
	for k, sl := range s.index {
		if k > idx {
			s.index[k] = strSlot{pos: sl.pos + len(text), extra: sl.extra}
		}
	}
	s.index[idx] = strSlot{pos: at, extra: extra}
	return nil
}

// Push appends text to the string under the next integer index.
func (s *String) Push(v Value) {
	text := AsString(v)
	key := s.maxKey() + 1
	extra := ""
	if len(text) > 1 {
		extra = text[1:]
	}
	s.index[key] = strSlot{pos: len(s.Val), extra: extra}
	s.Val += text
}

// Pop removes and returns the character at the given index, or the
// final character when idx is the blank value.
func (s *String) Pop(idx Value) (Value, error) {
	if _, blank := idx.(BlankType); blank || idx == nil {
		if s.Val == "" {
			return nil, errStringBounds
		}
		last := s.Val[len(s.Val)-1:]
		s.Val = s.Val[:len(s.Val)-1]
		s.reindex()
		return NewString(last), nil
	}
	n, ok := idx.(*Number)
	if !ok || !isInt(n.Val) {
		return nil, fmt.Errorf("expected integer for string popping")
	}
	if !(-1 <= n.Val && n.Val <= float64(len(s.Val)-2)) {
		return nil, errStringBounds
	}
	at := int(math.Round(n.Val)) + 1
	ch := s.Val[at : at+1]
	s.Val = s.Val[:at] + s.Val[at+1:]
	s.reindex()
	return NewString(ch), nil
}

func (s *String) maxKey() float64 {
	max := -2.0
	for k := range s.index {
		if k > max {
			max = k
		}
	}
	return max
}

var errStringBounds = fmt.Errorf("indexing out of string bounds")

// A List is an ordered sequence with a signed, possibly fractional
// index map. Elems is the real storage; index maps user indices to
// positions in Elems.
type List struct {
	Elems []Value
	index map[float64]int
}

func NewList(elems []Value) *List {
	l := &List{Elems: elems}
	l.reindex()
	return l
}

func (l *List) reindex() {
	l.index = make(map[float64]int, len(l.Elems))
	for i := range l.Elems {
		l.index[float64(i-1)] = i
	}
}

func (l *List) Type() string { return "List" }

func (l *List) String() string {
	parts := make([]string, len(l.Elems))
	for i, v := range l.Elems {
		parts[i] = AsString(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) Truth() Bool {
	if len(l.Elems) == 0 {
		return False
	}
	return True
}

func (l *List) Length() int { return len(l.Elems) }

func (l *List) Index(idx float64) (Value, error) {
	if !(-1 <= idx && idx <= float64(len(l.Elems)-1)) {
		return nil, errListBounds
	}
	pos, ok := l.index[idx]
	if !ok {
		return nil, fmt.Errorf("no value assigned to that index")
	}
	return l.Elems[pos], nil
}

// SetIndex assigns at an existing index, or splices a new element in
// at a fractional one, renumbering every index after the insertion
// point.
func (l *List) SetIndex(idx float64, v Value) error {
	if pos, ok := l.index[idx]; ok {
		l.Elems[pos] = v
		return nil
	}
	if !(-1 <= idx && idx <= float64(len(l.Elems)-1)) {
		return errListBounds
	}
	at := int(math.Floor(idx)) + 2
	if at < 0 {
		at = 0
	} else if at > len(l.Elems) {
		at = len(l.Elems)
	}
	l.Elems = append(l.Elems, nil)
	copy(l.Elems[at+1:], l.Elems[at:])
	l.Elems[at] = v
	for k, pos := range l.index {
		if k > idx {
			l.index[k] = pos + 1
		}
	}
	l.index[idx] = at
	return nil
}

// Push appends a value under the next integer index.
func (l *List) Push(v Value) {
	key := l.maxKey() + 1
	l.index[key] = len(l.Elems)
	l.Elems = append(l.Elems, v)
}

// Pop removes and returns the element at the given index, or the last
// element when idx is the blank value.
func (l *List) Pop(idx Value) (Value, error) {
	if _, blank := idx.(BlankType); blank || idx == nil {
		if len(l.Elems) == 0 {
			return nil, errListBounds
		}
		last := l.Elems[len(l.Elems)-1]
		l.Elems = l.Elems[:len(l.Elems)-1]
		l.reindex()
		return last, nil
	}
	n, ok := idx.(*Number)
	if !ok || !isInt(n.Val) {
		return nil, fmt.Errorf("expected integer for list popping")
	}
	if !(-1 <= n.Val && n.Val <= float64(len(l.Elems)-2)) {
		return nil, errListBounds
	}
	at := int(math.Round(n.Val)) + 1
	v := l.Elems[at]
	l.Elems = append(l.Elems[:at], l.Elems[at+1:]...)
	l.reindex()
	return v, nil
}

func (l *List) maxKey() float64 {
	max := -2.0
	for k := range l.index {
		if k > max {
			max = k
		}
	}
	return max
}

var errListBounds = fmt.Errorf("indexing out of list bounds")

// A Map is a string-keyed dictionary. Number keys are admitted and
// stored under their formatted text.
type Map struct {
	Entries map[string]Value
}

func NewMap() *Map { return &Map{Entries: make(map[string]Value)} }

func (m *Map) Type() string { return "Map" }

func (m *Map) String() string {
	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + AsString(m.Entries[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Map) Truth() Bool {
	if len(m.Entries) == 0 {
		return False
	}
	return True
}

// MapKey converts an index value to a map key.
func MapKey(v Value) (string, error) {
	switch v := v.(type) {
	case *String:
		return v.Val, nil
	case *Number:
		return FormatNumber(v.Val), nil
	}
	return "", fmt.Errorf("keys of a map must be a string or a number")
}

// A Function is a user-defined function. It is applied by the
// evaluator, which binds parameters as Names in a fresh namespace.
type Function struct {
	FuncName string
	Params   []string
	Body     []syntax.Stmt
	IsAsync  bool
}

func (f *Function) Type() string { return "Function" }
func (f *Function) String() string {
	return "<function (" + strings.Join(f.Params, ", ") + ")>"
}
func (f *Function) Truth() Bool { return Maybe }

// A Builtin is a native function exposed to Gulf code. It carries a
// callback rather than being compared by pointer identity: two
// Builtins are equal when their names are.
type Builtin struct {
	name  string
	arity int // -1 variadic
	fn    func(args []Value) (Value, error)
}

// NewBuiltin returns a builtin with the given name and arity contract.
func NewBuiltin(name string, arity int, fn func(args []Value) (Value, error)) *Builtin {
	return &Builtin{name: name, arity: arity, fn: fn}
}

func (b *Builtin) Type() string   { return "BuiltinFunction" }
func (b *Builtin) String() string { return "<builtin " + b.name + ">" }
func (b *Builtin) Truth() Bool    { return Maybe }
func (b *Builtin) Name() string   { return b.name }
func (b *Builtin) Arity() int     { return b.arity }

func (b *Builtin) Invoke(args []Value) (Value, error) {
	if b.arity >= 0 {
		// Trailing blanks satisfy missing arguments.
		for len(args) < b.arity {
			args = append(args, Blank)
		}
		if len(args) > b.arity {
			return nil, fmt.Errorf("%s takes %d arguments, got %d", b.name, b.arity, len(args))
		}
	}
	return b.fn(args)
}

// An Object is a singleton class instance: a class tag plus a flat
// property bag.
type Object struct {
	ClassName string
	Props     map[string]Value
}

func (o *Object) Type() string   { return "Object" }
func (o *Object) String() string { return "<object " + o.ClassName + ">" }
func (o *Object) Truth() Bool    { return Maybe }

// A Promise is a placeholder for a value that may resolve later.
type Promise struct {
	Resolved bool
	Val      Value
}

func (p *Promise) Type() string { return "Promise" }
func (p *Promise) String() string {
	if p.Resolved {
		return "<promise " + AsString(p.Val) + ">"
	}
	return "<promise>"
}
func (p *Promise) Truth() Bool { return Maybe }

// AsString converts any value to its display text.
func AsString(v Value) string { return v.String() }

// AsNumber converts a value to a float64, or fails for values with no
// numeric reading.
func AsNumber(v Value) (float64, error) {
	switch v := v.(type) {
	case *Number:
		return v.Val, nil
	case *String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot turn %q into a number", v.Val)
		}
		return f, nil
	case Bool:
		switch v {
		case True:
			return 1, nil
		case Maybe:
			return 0.5, nil
		}
		return 0, nil
	case UndefinedType:
		return 0, nil
	case *List:
		if len(v.Elems) > 0 {
			return 0, fmt.Errorf("cannot turn a non-empty list into a number")
		}
		return 0, nil
	case *Map:
		if len(v.Entries) > 0 {
			return 0, fmt.Errorf("cannot turn a non-empty map into a number")
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot turn type %s into a number", v.Type())
}

// Clone deep-copies mutable values so undo history is insulated from
// later in-place edits. Immutable variants return themselves.
func Clone(v Value) Value {
	switch v := v.(type) {
	case *Number:
		return NewNumber(v.Val)
	case *String:
		return NewString(v.Val)
	case *List:
		elems := make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = Clone(e)
		}
		return NewList(elems)
	case *Map:
		m := NewMap()
		for k, e := range v.Entries {
			m.Entries[k] = Clone(e)
		}
		return m
	case *Object:
		props := make(map[string]Value, len(v.Props))
		for k, e := range v.Props {
			props[k] = Clone(e)
		}
		return &Object{ClassName: v.ClassName, Props: props}
	}
	return v
}

// Equal implements the loose equality of = (in comparison position)
// and ==: same-variant values compare structurally; numbers, strings,
// and booleans cross-compare through numeric coercion; anything else
// is incomparable and yields maybe.
func Equal(x, y Value) Bool {
	if x.Type() == y.Type() {
		return StrictEqual(x, y)
	}
	if coercible(x) && coercible(y) {
		a, err1 := AsNumber(x)
		b, err2 := AsNumber(y)
		if err1 != nil || err2 != nil {
			return Maybe
		}
		if a == b {
			return True
		}
		return False
	}
	return Maybe
}

func coercible(v Value) bool {
	switch v.(type) {
	case *Number, *String, Bool:
		return true
	}
	return false
}

// StrictEqual implements === and ====: structural equality per
// variant, with cross-variant comparisons always false.
func StrictEqual(x, y Value) Bool {
	if x.Type() != y.Type() {
		return False
	}
	switch x := x.(type) {
	case *Number:
		if x.Val == y.(*Number).Val {
			return True
		}
		return False
	case *String:
		if x.Val == y.(*String).Val {
			return True
		}
		return False
	case Bool:
		if x == y.(Bool) {
			return True
		}
		return False
	case UndefinedType, BlankType:
		return True
	case Keyword:
		if x == y.(Keyword) {
			return True
		}
		return False
	case *List:
		yl := y.(*List)
		if len(x.Elems) != len(yl.Elems) {
			return False
		}
		for i := range x.Elems {
			if StrictEqual(x.Elems[i], yl.Elems[i]) != True {
				return False
			}
		}
		return True
	case *Map:
		ym := y.(*Map)
		if len(x.Entries) != len(ym.Entries) {
			return False
		}
		for k, v := range x.Entries {
			w, ok := ym.Entries[k]
			if !ok || StrictEqual(v, w) != True {
				return False
			}
		}
		return True
	case *Object:
		yo := y.(*Object)
		if x.ClassName != yo.ClassName || len(x.Props) != len(yo.Props) {
			return False
		}
		for k, v := range x.Props {
			w, ok := yo.Props[k]
			if !ok || StrictEqual(v, w) != True {
				return False
			}
		}
		return True
	case *Builtin:
		if x.name == y.(*Builtin).name {
			return True
		}
		return False
	case *Function:
		if x == y.(*Function) {
			return True
		}
		return False
	case *Promise:
		if x == y.(*Promise) {
			return True
		}
		return False
	}
	return False
}
