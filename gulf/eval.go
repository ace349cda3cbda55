// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.gulfofmexico.net/alias"
	"go.gulfofmexico.net/events"
	"go.gulfofmexico.net/storage"
	"go.gulfofmexico.net/syntax"
)

// ErrExit is returned through the evaluator when a program calls
// exit(). Callers treat it as a clean stop.
var ErrExit = errors.New("exit")

// An EvalError is a runtime failure with enough context to render a
// caret diagnostic.
type EvalError struct {
	Filename string
	Pos      syntax.Position
	Msg      string
	src      string
}

func (e *EvalError) Error() string {
	return syntax.Caret(e.Filename, e.src, e.Pos, 1, e.Msg)
}

// Options configures an interpreter. The zero value selects stdout,
// stderr, no event bus, an in-memory alias table, and no persistence.
type Options struct {
	Output  io.Writer      // print destination
	Debug   io.Writer      // ? statement dumps
	Bus     *events.Bus    // input events; nil disables after matching by event
	Aliases *alias.Table   // keyword aliases; nil means none
	Store   *storage.Store // persisted globals; nil disables persistence
}

// An Interp evaluates Gulf programs. One Interp holds the namespace
// stack, the statement counter driving line-based lifetimes, and the
// pending reactive state (when conditions, after blocks, async tasks).
// It is not safe for concurrent use.
type Interp struct {
	filename string
	src      string
	out, dbg io.Writer
	bus      *events.Bus
	aliases  *alias.Table
	store    *storage.Store

	stack []Namespace
	line  int // statement counter

	whens   []*reactiveWhen
	afters  []*afterBlock
	tasks   []*asyncTask
	pumping bool

	lastValue Value // last expression-statement value, for REPL echo
}

type reactiveWhen struct {
	cond syntax.Expr
	body []syntax.Stmt
	deps map[string]bool
}

type afterBlock struct {
	event string
	body  []syntax.Stmt
}

type asyncTask struct {
	body  []syntax.Stmt
	idx   int
	frame Namespace
}

// New returns an interpreter whose global namespace holds the builtin
// universe plus any persisted triple-const globals.
func New(filename string, opts *Options) *Interp {
	if opts == nil {
		opts = &Options{}
	}
	ip := &Interp{
		filename: filename,
		out:      opts.Output,
		dbg:      opts.Debug,
		bus:      opts.Bus,
		aliases:  opts.Aliases,
		store:    opts.Store,
	}
	if ip.out == nil {
		ip.out = os.Stdout
	}
	if ip.dbg == nil {
		ip.dbg = os.Stderr
	}
	ip.stack = []Namespace{universe(ip)}
	if ip.store != nil {
		ip.loadGlobals()
	}
	return ip
}

func (ip *Interp) loadGlobals() {
	now := time.Now()
	for name, entry := range ip.store.LoadGlobals() {
		conf := FullConfidence
		if entry.Confidence != nil {
			conf = int(*entry.Confidence * FullConfidence)
		}
		ip.stack[0][name] = NewVariable(name, &Lifetime{
			Value:      valueFromStored(entry.Value),
			Duration:   Forever,
			Confidence: conf,
			Created:    now,
		})
	}
}

// Line returns the current statement counter.
func (ip *Interp) Line() int { return ip.line }

func (ip *Interp) errorf(pos syntax.Position, format string, args ...interface{}) error {
	return &EvalError{
		Filename: ip.filename,
		Pos:      pos,
		Msg:      fmt.Sprintf(format, args...),
		src:      ip.src,
	}
}

func (ip *Interp) parseSource(filename, src string) ([]syntax.Stmt, error) {
	tokens, err := syntax.Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	if ip.aliases != nil {
		ip.aliases.Canonicalize(tokens)
	}
	return syntax.Parse(filename, tokens, src)
}

// ExecFile parses and runs a whole source batch: the statements, then
// the end-of-batch flush of pending after blocks, then one event
// drain. ErrExit is absorbed as a clean stop.
func (ip *Interp) ExecFile(src string) error {
	_, err := ip.ExecChunk(ip.filename, src)
	if errors.Is(err, ErrExit) {
		return nil
	}
	return err
}

// ExecChunk runs one source batch and returns the value of its last
// expression statement, for REPL echo. A batch with no expression
// statements returns Undefined.
func (ip *Interp) ExecChunk(chunkName, src string) (Value, error) {
	stmts, err := ip.parseSource(chunkName, src)
	if err != nil {
		return nil, err
	}
	ip.filename, ip.src = chunkName, src
	ip.lastValue = nil
	if _, err := ip.execBlock(stmts); err != nil {
		return nil, err
	}
	if err := ip.flushAfters(); err != nil {
		return nil, err
	}
	if err := ip.DrainEvents(); err != nil {
		return nil, err
	}
	if ip.lastValue == nil {
		return Undefined, nil
	}
	return ip.lastValue, nil
}

// WaitForEvents keeps the session alive, polling the event bus at the
// given interval (0 selects 50ms) and running matching after blocks.
// It returns only on an evaluation error or exit().
func (ip *Interp) WaitForEvents(interval time.Duration) error {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	for {
		time.Sleep(interval)
		if err := ip.DrainEvents(); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
	}
}

// execBlock runs a statement sequence with the full per-statement
// cadence: expiry sweep, event drain, the statement itself, counter
// increment, and one async-task turn. A return statement stops the
// block and propagates its value.
func (ip *Interp) execBlock(stmts []syntax.Stmt) (ret Value, err error) {
	for _, s := range stmts {
		ip.sweep()
		if err := ip.DrainEvents(); err != nil {
			return nil, err
		}
		ret, err = ip.execStmt(s)
		ip.line++
		if err != nil {
			return nil, err
		}
		if err := ip.pumpAsync(); err != nil {
			return nil, err
		}
		if ret != nil {
			return ret, nil
		}
	}
	return nil, nil
}

// sweep drops expired lifetimes, and with them any variable whose
// lifetimes are all gone.
func (ip *Interp) sweep() {
	now := time.Now()
	for _, ns := range ip.stack {
		for name, b := range ns {
			if v, ok := b.(*Variable); ok {
				v.ClearExpired(now, ip.line)
				if len(v.Lifetimes) == 0 {
					delete(ns, name)
				}
			}
		}
	}
}

// DrainEvents empties the event bus, running the after blocks whose
// event matches each drained name.
func (ip *Interp) DrainEvents() error {
	if ip.bus == nil {
		return nil
	}
	for {
		ev, ok := ip.bus.Poll()
		if !ok {
			return nil
		}
		if err := ip.dispatchEvent(events.Normalize(ev)); err != nil {
			return err
		}
	}
}

func (ip *Interp) dispatchEvent(ev string) error {
	var run []*afterBlock
	kept := ip.afters[:0]
	for _, a := range ip.afters {
		if a.event == ev {
			run = append(run, a)
		} else {
			kept = append(kept, a)
		}
	}
	ip.afters = kept
	for _, a := range run {
		if _, err := ip.execBlock(a.body); err != nil {
			return err
		}
	}
	return nil
}

// flushAfters runs every still-pending after block. This is the
// end-of-batch flush: a block whose event never arrived still runs
// once before the session ends or goes idle.
func (ip *Interp) flushAfters() error {
	pending := ip.afters
	ip.afters = nil
	for _, a := range pending {
		if _, err := ip.execBlock(a.body); err != nil {
			return err
		}
	}
	return nil
}

// pumpAsync gives every live async task one statement's worth of
// progress.
func (ip *Interp) pumpAsync() error {
	if ip.pumping || len(ip.tasks) == 0 {
		return nil
	}
	ip.pumping = true
	defer func() { ip.pumping = false }()

	kept := ip.tasks[:0]
	var firstErr error
	for _, t := range ip.tasks {
		if firstErr != nil {
			kept = append(kept, t)
			continue
		}
		if t.idx >= len(t.body) {
			continue
		}
		ip.stack = append(ip.stack, t.frame)
		ret, err := ip.execStmt(t.body[t.idx])
		ip.stack = ip.stack[:len(ip.stack)-1]
		ip.line++
		t.idx++
		if err != nil {
			firstErr = err
			continue
		}
		if ret == nil && t.idx < len(t.body) {
			kept = append(kept, t)
		}
	}
	ip.tasks = kept
	return firstErr
}

func (ip *Interp) execStmt(stmt syntax.Stmt) (ret Value, err error) {
	switch s := stmt.(type) {
	case *syntax.ExprStmt:
		v, err := ip.eval(s.X)
		if err != nil {
			return nil, err
		}
		ip.lastValue = v
		if s.Debug {
			ip.dump(stmt.Pos(), "", v)
		}
		return nil, nil

	case *syntax.VarDeclStmt:
		return nil, ip.execVarDecl(s)

	case *syntax.FuncDefStmt:
		fn := &Function{FuncName: s.Name, Params: s.Params, Body: s.Body, IsAsync: s.IsAsync}
		ip.declare(s.Name, &Lifetime{
			Value:      fn,
			Duration:   Forever,
			Confidence: FullConfidence,
			CanBeReset: true,
			Created:    time.Now(),
			Line:       ip.line,
		})
		return nil, nil

	case *syntax.ClassDeclStmt:
		return nil, ip.execClassDecl(s)

	case *syntax.AssignStmt:
		v, err := ip.eval(s.Value)
		if err != nil {
			return nil, err
		}
		if _, err := ip.assign(s.Target, v, s.OpPos); err != nil {
			return nil, err
		}
		if s.Debug {
			ip.dump(s.OpPos, "", v)
		}
		return nil, nil

	case *syntax.IfStmt:
		cond, err := ip.eval(s.Cond)
		if err != nil {
			return nil, err
		}
		// Only an exactly-true condition selects the true branch;
		// maybe falls through with false.
		if cond.Truth() == True {
			return ip.execBlock(s.True)
		}
		if s.False != nil {
			return ip.execBlock(s.False)
		}
		return nil, nil

	case *syntax.WhenStmt:
		return nil, ip.execWhen(s)

	case *syntax.AfterStmt:
		ip.afters = append(ip.afters, &afterBlock{
			event: events.Normalize(s.Event),
			body:  s.Body,
		})
		return nil, nil

	case *syntax.ReturnStmt:
		if s.Value == nil {
			return Undefined, nil
		}
		return ip.eval(s.Value)

	case *syntax.DeleteStmt:
		// Deleting anything that is not a bound name is accepted and
		// does nothing.
		if lit, ok := s.Target.(*syntax.Literal); ok && lit.Token.Kind == syntax.NAME {
			for i := len(ip.stack) - 1; i >= 0; i-- {
				if _, ok := ip.stack[i][lit.Token.Value]; ok {
					delete(ip.stack[i], lit.Token.Value)
					break
				}
			}
		}
		return nil, nil

	case *syntax.ExportStmt:
		return nil, ip.execExport(s)

	case *syntax.ImportStmt:
		return nil, ip.execImport(s)

	case *syntax.ReverseStmt:
		ip.execReverse()
		return nil, nil
	}
	return nil, ip.errorf(stmt.Pos(), "cannot execute %T", stmt)
}

func (ip *Interp) execVarDecl(s *syntax.VarDeclStmt) error {
	val := Value(Undefined)
	if s.Value != nil {
		var err error
		val, err = ip.eval(s.Value)
		if err != nil {
			return err
		}
	}

	duration := Forever
	timeBased := false
	if raw := s.Lifetime; raw != "" && raw != "Infinity" {
		digits := raw
		if strings.HasSuffix(raw, "s") {
			digits = raw[:len(raw)-1]
			timeBased = true
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || n < 0 {
			return ip.errorf(s.NamePos, "invalid lifetime <%s>", raw)
		}
		duration = n
	}

	lt := &Lifetime{
		Value:        val,
		Duration:     duration,
		Confidence:   FullConfidence,
		CanBeReset:   s.Modifiers[0] == "var",
		CanEditValue: s.Modifiers[len(s.Modifiers)-1] == "var",
		Created:      time.Now(),
		Line:         ip.line,
		TimeBased:    timeBased,
	}
	if err := ip.declareChecked(s.Name, lt, s.NamePos); err != nil {
		return err
	}

	// A triple-const declaration is a global constant for every
	// session on this machine.
	if len(s.Modifiers) == 3 && allConst(s.Modifiers) && ip.store != nil {
		if err := ip.persistGlobal(s.Name, val, lt.Confidence); err != nil {
			return ip.errorf(s.NamePos, "cannot persist %s: %v", s.Name, err)
		}
	}

	if s.Debug {
		ip.dump(s.NamePos, s.Name, val)
	}
	return nil
}

func allConst(mods []string) bool {
	for _, m := range mods {
		if m != "const" {
			return false
		}
	}
	return true
}

// declare binds name in the innermost namespace, layering a lifetime
// onto an existing resettable variable.
func (ip *Interp) declare(name string, lt *Lifetime) {
	ns := ip.stack[len(ip.stack)-1]
	if v, ok := ns[name].(*Variable); ok && v.CanBeReset() {
		v.AddLifetime(lt)
		return
	}
	ns[name] = NewVariable(name, lt)
}

func (ip *Interp) declareChecked(name string, lt *Lifetime, pos syntax.Position) error {
	ns := ip.stack[len(ip.stack)-1]
	if v, ok := ns[name].(*Variable); ok && !v.CanBeReset() {
		return ip.errorf(pos, "cannot redeclare constant %s", name)
	}
	ip.declare(name, lt)
	return nil
}

func (ip *Interp) execClassDecl(s *syntax.ClassDeclStmt) error {
	// The body runs once in a fresh namespace; the class is its
	// single instance.
	frame := make(Namespace)
	ip.stack = append(ip.stack, frame)
	_, err := ip.execBlock(s.Body)
	ip.stack = ip.stack[:len(ip.stack)-1]
	if err != nil {
		return err
	}
	obj := &Object{ClassName: s.Name, Props: make(map[string]Value, len(frame))}
	for name, b := range frame {
		v, err := BindingValue(b)
		if err != nil {
			continue
		}
		obj.Props[name] = v
	}
	ip.declare(s.Name, &Lifetime{
		Value:        obj,
		Duration:     Forever,
		Confidence:   FullConfidence,
		CanEditValue: true,
		Created:      time.Now(),
		Line:         ip.line,
	})
	return nil
}

func (ip *Interp) execWhen(s *syntax.WhenStmt) error {
	deps := make(map[string]bool)
	syntax.WalkNames(s.Cond, func(name string) {
		deps[name] = true
		if i := strings.IndexByte(name, '.'); i > 0 {
			deps[name[:i]] = true
		}
	})
	w := &reactiveWhen{cond: s.Cond, body: s.Body, deps: deps}
	ip.whens = append(ip.whens, w)
	return ip.fireWhen(w)
}

// fireWhen evaluates a when condition and runs the body if it holds.
// Unlike if, a maybe condition counts as holding. A condition that
// cannot be evaluated (a dependency is not bound yet) stays armed.
// A body whose assignments retrigger its own condition recurses; an
// infinite reactive loop is the program's own doing.
func (ip *Interp) fireWhen(w *reactiveWhen) error {
	cond, err := ip.eval(w.cond)
	if err != nil {
		return nil
	}
	if t := cond.Truth(); t == True || t == Maybe {
		_, err := ip.execBlock(w.body)
		return err
	}
	return nil
}

// checkWhens re-fires every when condition depending on name. Called
// after each successful plain-variable assignment.
func (ip *Interp) checkWhens(name string) error {
	for _, w := range ip.whens {
		if w.deps[name] {
			if err := ip.fireWhen(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ip *Interp) execExport(s *syntax.ExportStmt) error {
	b, _, ok := ip.lookup(s.Name)
	if !ok {
		return ip.errorf(s.ExportPos, "cannot export undefined name %s", s.Name)
	}
	v, err := BindingValue(b)
	if err != nil {
		return ip.errorf(s.ExportPos, "cannot export %s: %v", s.Name, err)
	}
	src, err := ExportSource(s.Name, v)
	if err != nil {
		return ip.errorf(s.ExportPos, "cannot export %s: %v", s.Name, err)
	}
	if err := os.WriteFile(s.File, []byte(src), 0o644); err != nil {
		return ip.errorf(s.ExportPos, "cannot export %s: %v", s.Name, err)
	}
	return nil
}

// execImport reads another source file and executes it in the current
// namespace stack, so its declarations land in the importing scope.
func (ip *Interp) execImport(s *syntax.ImportStmt) error {
	var data []byte
	var err error
	for _, candidate := range []string{s.Name, s.Name + ".gom", s.Name + ".gulf", s.Name + ".db"} {
		data, err = os.ReadFile(candidate)
		if err == nil {
			break
		}
	}
	if err != nil {
		return ip.errorf(s.ImportPos, "cannot import %s: no such file", s.Name)
	}
	stmts, err := ip.parseSource(s.Name, string(data))
	if err != nil {
		return err
	}
	savedFile, savedSrc := ip.filename, ip.src
	ip.filename, ip.src = s.Name, string(data)
	_, err = ip.execBlock(stmts)
	ip.filename, ip.src = savedFile, savedSrc
	return err
}

// execReverse restores the most recent previous value of the first
// variable, scanning namespaces outermost first and names in sorted
// order, that has an undo history. With no history anywhere it is a
// no-op.
func (ip *Interp) execReverse() {
	for _, ns := range ip.stack {
		names := make([]string, 0, len(ns))
		for name := range ns {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if v, ok := ns[name].(*Variable); ok && v.Revert() {
				return
			}
		}
	}
}

// lookup finds the innermost binding of name.
func (ip *Interp) lookup(name string) (Binding, Namespace, bool) {
	for i := len(ip.stack) - 1; i >= 0; i-- {
		if b, ok := ip.stack[i][name]; ok {
			return b, ip.stack[i], true
		}
	}
	return nil, nil, false
}

// assign writes val through an assignment target: a bare name, a
// dotted member path, or an index expression.
func (ip *Interp) assign(target syntax.Expr, val Value, pos syntax.Position) (Value, error) {
	switch t := target.(type) {
	case *syntax.Literal:
		if t.Token.Kind != syntax.NAME {
			return nil, ip.errorf(pos, "cannot assign to %s", t.Token)
		}
		name := t.Token.Value
		if strings.Contains(name, ".") {
			if err := ip.assignMember(name, val, pos); err != nil {
				return nil, err
			}
			return val, nil
		}
		b, _, ok := ip.lookup(name)
		if !ok {
			return nil, ip.nameError(name, pos)
		}
		switch b := b.(type) {
		case *Name:
			b.Value = val
		case *Variable:
			if !b.CanBeReset() {
				return nil, ip.errorf(pos, "cannot reset constant %s", name)
			}
			active := b.Lifetimes[0]
			b.AddLifetime(&Lifetime{
				Value:        val,
				Duration:     Forever,
				Confidence:   FullConfidence,
				CanBeReset:   active.CanBeReset,
				CanEditValue: active.CanEditValue,
				Created:      time.Now(),
				Line:         ip.line,
			})
		}
		if err := ip.checkWhens(name); err != nil {
			return nil, err
		}
		return val, nil

	case *syntax.IndexExpr:
		// Index assignment edits in place. It needs edit permission
		// on the root variable and records the pre-edit value, but
		// does not re-fire when conditions.
		if root, ok := rootName(t); ok {
			if v, _, found := ip.lookup(root); found {
				if v, ok := v.(*Variable); ok {
					if !v.CanEditValue() {
						return nil, ip.errorf(pos, "cannot edit the value of %s", root)
					}
					if cur, err := v.Value(); err == nil {
						v.PrevValues = append(v.PrevValues, Clone(cur))
					}
				}
			}
		}
		container, err := ip.eval(t.X)
		if err != nil {
			return nil, err
		}
		idx, err := ip.eval(t.Index)
		if err != nil {
			return nil, err
		}
		if err := setIndex(container, idx, val); err != nil {
			return nil, ip.errorf(pos, "%v", err)
		}
		return val, nil
	}
	return nil, ip.errorf(pos, "cannot assign to this expression")
}

// rootName returns the base identifier of a chain of index
// expressions, when there is one.
func rootName(e syntax.Expr) (string, bool) {
	for {
		switch x := e.(type) {
		case *syntax.IndexExpr:
			e = x.X
		case *syntax.Literal:
			if x.Token.Kind == syntax.NAME {
				name := x.Token.Value
				if i := strings.IndexByte(name, '.'); i > 0 {
					name = name[:i]
				}
				return name, true
			}
			return "", false
		default:
			return "", false
		}
	}
}

func setIndex(container, idx, val Value) error {
	switch c := container.(type) {
	case *Map:
		key, err := MapKey(idx)
		if err != nil {
			return err
		}
		c.Entries[key] = val
		return nil
	case *List:
		f, err := AsNumber(idx)
		if err != nil {
			return err
		}
		return c.SetIndex(f, val)
	case *String:
		f, err := AsNumber(idx)
		if err != nil {
			return err
		}
		return c.SetIndex(f, val)
	case *Number:
		f, err := AsNumber(idx)
		if err != nil {
			return err
		}
		return c.SetIndex(f, val)
	}
	return fmt.Errorf("cannot assign into a value of type %s", container.Type())
}

// assignMember writes through a dotted path: the head resolves as a
// variable, the middle segments as members, and the last segment is
// set on the resulting object or map.
func (ip *Interp) assignMember(path string, val Value, pos syntax.Position) error {
	segs := strings.Split(path, ".")
	head, last := segs[0], segs[len(segs)-1]
	b, _, ok := ip.lookup(head)
	if !ok {
		return ip.nameError(head, pos)
	}
	if v, ok := b.(*Variable); ok {
		if !v.CanEditValue() {
			return ip.errorf(pos, "cannot edit the value of %s", head)
		}
		if cur, err := v.Value(); err == nil {
			v.PrevValues = append(v.PrevValues, Clone(cur))
		}
	}
	parent, err := BindingValue(b)
	if err != nil {
		return ip.errorf(pos, "%s: %v", head, err)
	}
	for _, seg := range segs[1 : len(segs)-1] {
		parent, err = ip.member(parent, seg, pos)
		if err != nil {
			return err
		}
	}
	switch p := parent.(type) {
	case *Object:
		p.Props[last] = val
	case *Map:
		p.Entries[last] = val
	default:
		return ip.errorf(pos, "cannot set .%s on a value of type %s", last, parent.Type())
	}
	return nil
}

func (ip *Interp) nameError(name string, pos syntax.Position) error {
	var candidates []string
	for _, ns := range ip.stack {
		for n := range ns {
			candidates = append(candidates, n)
		}
	}
	msg := fmt.Sprintf("undefined: %s", name)
	if sugg := nearest(name, candidates); sugg != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", sugg)
	}
	return ip.errorf(pos, "%s", msg)
}

// resolveName resolves an identifier, following dotted member paths.
// A whole dotted name bound directly (a persisted "math.pi" style
// global) wins over member traversal.
func (ip *Interp) resolveName(name string, pos syntax.Position) (Value, error) {
	if b, _, ok := ip.lookup(name); ok {
		v, err := BindingValue(b)
		if err != nil {
			return Undefined, nil
		}
		return v, nil
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		segs := strings.Split(name, ".")
		b, _, ok := ip.lookup(segs[0])
		if !ok {
			return nil, ip.nameError(segs[0], pos)
		}
		v, err := BindingValue(b)
		if err != nil {
			return Undefined, nil
		}
		for _, seg := range segs[1:] {
			v, err = ip.member(v, seg, pos)
			if err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	return nil, ip.nameError(name, pos)
}

// member resolves one member access. Lists and strings expose length
// plus push and pop bound to the receiver; objects and maps expose
// their entries.
func (ip *Interp) member(v Value, field string, pos syntax.Position) (Value, error) {
	switch v := v.(type) {
	case *Object:
		if p, ok := v.Props[field]; ok {
			return p, nil
		}
		var names []string
		for name := range v.Props {
			names = append(names, name)
		}
		msg := fmt.Sprintf("%s has no .%s field", v.ClassName, field)
		if sugg := nearest(field, names); sugg != "" {
			msg += fmt.Sprintf(" (did you mean .%s?)", sugg)
		}
		return nil, ip.errorf(pos, "%s", msg)
	case *Map:
		if field == "length" {
			return NewNumber(float64(len(v.Entries))), nil
		}
		if e, ok := v.Entries[field]; ok {
			return e, nil
		}
		return Undefined, nil
	case *List:
		switch field {
		case "length":
			return NewNumber(float64(v.Length())), nil
		case "push":
			return NewBuiltin("push", 1, func(args []Value) (Value, error) {
				v.Push(args[0])
				return Undefined, nil
			}), nil
		case "pop":
			return NewBuiltin("pop", 1, func(args []Value) (Value, error) {
				return v.Pop(args[0])
			}), nil
		}
	case *String:
		switch field {
		case "length":
			return NewNumber(float64(v.Length())), nil
		case "push":
			return NewBuiltin("push", 1, func(args []Value) (Value, error) {
				v.Push(args[0])
				return Undefined, nil
			}), nil
		case "pop":
			return NewBuiltin("pop", 1, func(args []Value) (Value, error) {
				return v.Pop(args[0])
			}), nil
		}
	}
	return nil, ip.errorf(pos, "value of type %s has no member %q", v.Type(), field)
}

func (ip *Interp) eval(e syntax.Expr) (Value, error) {
	switch e := e.(type) {
	case *syntax.Literal:
		switch e.Token.Kind {
		case syntax.NUMBER:
			f, err := strconv.ParseFloat(e.Token.Value, 64)
			if err != nil {
				return nil, ip.errorf(e.Token.Pos, "bad number literal %q", e.Token.Value)
			}
			return NewNumber(f), nil
		case syntax.STRING:
			return NewString(e.Token.Value), nil
		case syntax.ISTRING:
			return NewString(ip.interpolate(e.Token.Value)), nil
		case syntax.NAME:
			return ip.resolveName(e.Token.Value, e.Token.Pos)
		}
		return nil, ip.errorf(e.Token.Pos, "cannot evaluate %s", e.Token)

	case *syntax.UnaryExpr:
		x, err := ip.eval(e.X)
		if err != nil {
			return nil, err
		}
		switch e.OpTok.Kind {
		case syntax.MINUS:
			f, err := AsNumber(x)
			if err != nil {
				return nil, ip.errorf(e.OpTok.Pos, "%v", err)
			}
			return NewNumber(-f), nil
		case syntax.SEMICOLON:
			return Not(x.Truth()), nil
		}
		return nil, ip.errorf(e.OpTok.Pos, "unknown unary operator %s", e.OpTok)

	case *syntax.BinaryExpr:
		// = with an assignable left operand assigns even in
		// expression position; any other left shape compares.
		if e.Op == syntax.OpEq && isAssignTarget(e.X) {
			v, err := ip.eval(e.Y)
			if err != nil {
				return nil, err
			}
			return ip.assign(e.X, v, e.OpTok.Pos)
		}
		x, err := ip.eval(e.X)
		if err != nil {
			return nil, err
		}
		y, err := ip.eval(e.Y)
		if err != nil {
			return nil, err
		}
		return ip.binop(e.Op, x, y, e.OpTok.Pos)

	case *syntax.CallExpr:
		return ip.evalCall(e)

	case *syntax.IndexExpr:
		container, err := ip.eval(e.X)
		if err != nil {
			return nil, err
		}
		idx, err := ip.eval(e.Index)
		if err != nil {
			return nil, err
		}
		v, err := getIndex(container, idx)
		if err != nil {
			return nil, ip.errorf(syntax.ExprPos(e), "%v", err)
		}
		return v, nil

	case *syntax.ListExpr:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := ip.eval(el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return NewList(elems), nil
	}
	return nil, fmt.Errorf("cannot evaluate %T", e)
}

func isAssignTarget(e syntax.Expr) bool {
	switch e := e.(type) {
	case *syntax.Literal:
		return e.Token.Kind == syntax.NAME
	case *syntax.IndexExpr:
		return true
	}
	return false
}

func getIndex(container, idx Value) (Value, error) {
	switch c := container.(type) {
	case *Map:
		key, err := MapKey(idx)
		if err != nil {
			return nil, err
		}
		if v, ok := c.Entries[key]; ok {
			return v, nil
		}
		return Undefined, nil
	case *List:
		f, err := AsNumber(idx)
		if err != nil {
			return nil, err
		}
		return c.Index(f)
	case *String:
		f, err := AsNumber(idx)
		if err != nil {
			return nil, err
		}
		return c.Index(f)
	case *Number:
		f, err := AsNumber(idx)
		if err != nil {
			return nil, err
		}
		return c.Index(f)
	}
	return nil, fmt.Errorf("cannot index a value of type %s", container.Type())
}

func (ip *Interp) binop(op syntax.Op, x, y Value, pos syntax.Position) (Value, error) {
	switch op {
	case syntax.OpAdd:
		if _, ok := x.(*String); ok {
			return NewString(AsString(x) + AsString(y)), nil
		}
		if _, ok := y.(*String); ok {
			return NewString(AsString(x) + AsString(y)), nil
		}
		return ip.arith(x, y, pos, func(a, b float64) float64 { return a + b })
	case syntax.OpSub:
		return ip.arith(x, y, pos, func(a, b float64) float64 { return a - b })
	case syntax.OpMul:
		return ip.arith(x, y, pos, func(a, b float64) float64 { return a * b })
	case syntax.OpDiv:
		a, err := AsNumber(x)
		if err != nil {
			return nil, ip.errorf(pos, "%v", err)
		}
		b, err := AsNumber(y)
		if err != nil {
			return nil, ip.errorf(pos, "%v", err)
		}
		// Division by zero is undefined, not an error.
		if b == 0 {
			return Undefined, nil
		}
		return NewNumber(a / b), nil
	case syntax.OpExp:
		return ip.arith(x, y, pos, pow)

	case syntax.OpGt, syntax.OpGe, syntax.OpLt, syntax.OpLe:
		a, err1 := AsNumber(x)
		b, err2 := AsNumber(y)
		if err1 != nil || err2 != nil {
			return Maybe, nil
		}
		var r bool
		switch op {
		case syntax.OpGt:
			r = a > b
		case syntax.OpGe:
			r = a >= b
		case syntax.OpLt:
			r = a < b
		case syntax.OpLe:
			r = a <= b
		}
		if r {
			return True, nil
		}
		return False, nil

	case syntax.OpAnd:
		tx, ty := x.Truth(), y.Truth()
		if tx == False || ty == False {
			return False, nil
		}
		if tx == Maybe || ty == Maybe {
			return Maybe, nil
		}
		return True, nil
	case syntax.OpOr:
		tx, ty := x.Truth(), y.Truth()
		if tx == True || ty == True {
			return True, nil
		}
		if tx == Maybe || ty == Maybe {
			return Maybe, nil
		}
		return False, nil

	case syntax.OpEq, syntax.OpEqEq:
		return Equal(x, y), nil
	case syntax.OpEqEqEq, syntax.OpEqEqEqEq:
		return StrictEqual(x, y), nil
	case syntax.OpNe:
		return Not(Equal(x, y)), nil
	case syntax.OpNeEq, syntax.OpNeEqEq:
		return Not(StrictEqual(x, y)), nil
	}
	return nil, ip.errorf(pos, "unknown operator %s", op)
}

func (ip *Interp) arith(x, y Value, pos syntax.Position, f func(a, b float64) float64) (Value, error) {
	a, err := AsNumber(x)
	if err != nil {
		return nil, ip.errorf(pos, "%v", err)
	}
	b, err := AsNumber(y)
	if err != nil {
		return nil, ip.errorf(pos, "%v", err)
	}
	return NewNumber(f(a, b)), nil
}

func (ip *Interp) evalCall(e *syntax.CallExpr) (Value, error) {
	name := e.Func.Value
	pos := e.Func.Pos

	// The temporal pseudo-functions read a variable's history rather
	// than its value, so their argument is not evaluated normally.
	switch name {
	case "current":
		if len(e.Args) != 1 {
			return nil, ip.errorf(pos, "current takes one argument")
		}
		return ip.eval(e.Args[0])
	case "previous":
		if len(e.Args) != 1 {
			return nil, ip.errorf(pos, "previous takes one argument")
		}
		if lit, ok := e.Args[0].(*syntax.Literal); ok && lit.Token.Kind == syntax.NAME {
			if b, _, found := ip.lookup(lit.Token.Value); found {
				if v, ok := b.(*Variable); ok {
					return v.Previous(0), nil
				}
			}
		}
		return Undefined, nil
	case "next":
		// Future values are not observable; the safe answer is
		// undefined.
		return Undefined, nil
	}

	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		v, err := ip.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	fn, err := ip.resolveName(name, pos)
	if err != nil {
		return nil, err
	}
	switch f := fn.(type) {
	case Callable:
		v, err := f.Invoke(args)
		if err != nil {
			if errors.Is(err, ErrExit) {
				return nil, err
			}
			return nil, ip.errorf(pos, "%v", err)
		}
		return v, nil
	case *Function:
		if f.IsAsync {
			if len(f.Body) > 0 {
				ip.tasks = append(ip.tasks, &asyncTask{
					body:  f.Body,
					frame: paramFrame(f.Params, args),
				})
			}
			return Undefined, nil
		}
		return ip.callFunction(f, args)
	}
	return nil, ip.errorf(pos, "%s is not a function (it is a %s)", name, fn.Type())
}

func paramFrame(params []string, args []Value) Namespace {
	frame := make(Namespace, len(params))
	for i, p := range params {
		var a Value = Undefined
		if i < len(args) {
			a = args[i]
		}
		frame[p] = &Name{Name: p, Value: a}
	}
	return frame
}

func (ip *Interp) callFunction(f *Function, args []Value) (Value, error) {
	ip.stack = append(ip.stack, paramFrame(f.Params, args))
	ret, err := ip.execBlock(f.Body)
	ip.stack = ip.stack[:len(ip.stack)-1]
	if err != nil {
		return nil, err
	}
	if ret == nil {
		ret = Value(Undefined)
	}
	return ret, nil
}

// interpolate substitutes every ${...} hole with its evaluated text.
// Holes are found by brace depth, so nested braces inside the
// expression are fine. A hole that fails to parse or evaluate renders
// an inline error marker instead of aborting the whole string.
func (ip *Interp) interpolate(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '{' {
			depth := 1
			j := i + 2
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				j++
			}
			if depth != 0 {
				b.WriteString(s[i:])
				break
			}
			b.WriteString(ip.interpolateExpr(s[i+2 : j-1]))
			i = j
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func (ip *Interp) interpolateExpr(src string) string {
	tokens, err := syntax.Tokenize(ip.filename, src)
	if err != nil {
		return interpError(err)
	}
	if ip.aliases != nil {
		ip.aliases.Canonicalize(tokens)
	}
	x, err := syntax.ParseExpr(ip.filename, tokens, src)
	if err != nil {
		return interpError(err)
	}
	v, err := ip.eval(x)
	if err != nil {
		return interpError(err)
	}
	return AsString(v)
}

func interpError(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return "<error: " + msg + ">"
}

// dump writes a ? statement's diagnostic line.
func (ip *Interp) dump(pos syntax.Position, name string, v Value) {
	if name != "" {
		fmt.Fprintf(ip.dbg, "%s:%s: %s = %s (%s)\n", ip.filename, pos, name, AsString(v), v.Type())
		return
	}
	fmt.Fprintf(ip.dbg, "%s:%s: %s (%s)\n", ip.filename, pos, AsString(v), v.Type())
}
