// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import (
	"fmt"
	"time"
)

// Forever is the sentinel duration of a binding that never expires.
const Forever int64 = 100000000000

// FullConfidence is the default confidence of a declaration.
const FullConfidence = 100

// A Lifetime is one version of a variable's value together with its
// expiry policy. A time-based lifetime expires on wall-clock elapsed
// seconds; a line-based one expires on the statement counter,
// regardless of how much real time passes.
type Lifetime struct {
	Value        Value
	Duration     int64 // statement count, or whole seconds when TimeBased
	Confidence   int   // 0-100; carried and persisted, never evaluated
	CanBeReset   bool
	CanEditValue bool
	Created      time.Time
	Line         int // statement counter at creation
	TimeBased    bool
}

// Expired reports whether the lifetime has lapsed at the given
// wall-clock instant and statement counter.
func (l *Lifetime) Expired(now time.Time, line int) bool {
	if l.Duration >= Forever {
		return false
	}
	if l.TimeBased {
		return now.Sub(l.Created) >= time.Duration(l.Duration)*time.Second
	}
	return line >= l.Line+int(l.Duration)
}

// A Variable is a mutable, lifetime-tracked, versioned binding.
// Lifetimes[0] is the active lifetime; overlapping lifetimes are kept
// ordered by descending confidence but only the first is consulted.
// PrevValues is the undo stack consumed by reverse.
type Variable struct {
	Name       string
	Lifetimes  []*Lifetime
	PrevValues []Value
}

// NewVariable returns a variable with a single lifetime.
func NewVariable(name string, lt *Lifetime) *Variable {
	return &Variable{Name: name, Lifetimes: []*Lifetime{lt}}
}

var errVarUndefined = fmt.Errorf("variable is undefined")

// Value returns the active lifetime's value.
func (v *Variable) Value() (Value, error) {
	if len(v.Lifetimes) == 0 {
		return nil, errVarUndefined
	}
	return v.Lifetimes[0].Value, nil
}

func (v *Variable) CanBeReset() bool {
	return len(v.Lifetimes) > 0 && v.Lifetimes[0].CanBeReset
}

func (v *Variable) CanEditValue() bool {
	return len(v.Lifetimes) > 0 && v.Lifetimes[0].CanEditValue
}

// AddLifetime inserts a lifetime ordered by confidence (ties go in
// front of equal-confidence entries). When the insertion displaces the
// active lifetime, the displaced value is pushed onto the undo stack.
func (v *Variable) AddLifetime(lt *Lifetime) {
	at := len(v.Lifetimes)
	for i, old := range v.Lifetimes {
		if old.Confidence <= lt.Confidence {
			at = i
			break
		}
	}
	if at == 0 && len(v.Lifetimes) > 0 {
		v.PrevValues = append(v.PrevValues, v.Lifetimes[0].Value)
	}
	v.Lifetimes = append(v.Lifetimes, nil)
	copy(v.Lifetimes[at+1:], v.Lifetimes[at:])
	v.Lifetimes[at] = lt
}

// SetValue replaces the active lifetime's value in place, pushing the
// pre-mutation value onto the undo stack. It is the edit path (index
// assignment and member mutation) and requires CanEditValue.
func (v *Variable) SetValue(val Value) error {
	if len(v.Lifetimes) == 0 {
		return errVarUndefined
	}
	if !v.Lifetimes[0].CanEditValue {
		return fmt.Errorf("cannot edit the value of variable %q", v.Name)
	}
	v.PrevValues = append(v.PrevValues, v.Lifetimes[0].Value)
	v.Lifetimes[0].Value = val
	return nil
}

// Previous returns the n-th most recent previous value (0 = most
// recent), or Undefined when the history is shorter.
func (v *Variable) Previous(n int) Value {
	if n < 0 || n >= len(v.PrevValues) {
		return Undefined
	}
	return v.PrevValues[len(v.PrevValues)-1-n]
}

// Revert pops the most recent previous value and restores it as the
// active value. It reports whether there was anything to restore.
func (v *Variable) Revert() bool {
	if len(v.PrevValues) == 0 || len(v.Lifetimes) == 0 {
		return false
	}
	last := len(v.PrevValues) - 1
	v.Lifetimes[0].Value = v.PrevValues[last]
	v.PrevValues = v.PrevValues[:last]
	return true
}

// ClearExpired drops lapsed lifetimes. Expiry is checked lazily: a
// long-idle session expires time-based lifetimes at the next sweep.
func (v *Variable) ClearExpired(now time.Time, line int) {
	kept := v.Lifetimes[:0]
	for _, lt := range v.Lifetimes {
		if !lt.Expired(now, line) {
			kept = append(kept, lt)
		}
	}
	v.Lifetimes = kept
}

// A Name is an immutable alias to a value: function parameters,
// builtins, and keyword bindings. Unlike a Variable it enforces no
// reset or edit policy and never expires; redeclaration simply
// replaces it.
type Name struct {
	Name  string
	Value Value
}

// A Binding is a namespace entry: a *Variable or a *Name.
type Binding interface{ binding() }

func (*Variable) binding() {}
func (*Name) binding()     {}

// A Namespace maps identifiers to bindings.
type Namespace map[string]Binding

// BindingValue extracts the current value of a namespace entry.
func BindingValue(b Binding) (Value, error) {
	switch b := b.(type) {
	case *Variable:
		return b.Value()
	case *Name:
		return b.Value, nil
	}
	return nil, fmt.Errorf("unknown binding")
}
