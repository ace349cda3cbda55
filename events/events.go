// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package events carries input events from their producers (the
// terminal key listener, the trigger builtin) to the interpreter.
//
// Event names are flat strings with a kind prefix: "keydown:A",
// "keyup:Enter", "click:left", "release:left". The interpreter drains
// the bus between statements and matches names against pending after
// blocks by exact string equality.
package events

import "strings"

// DefaultCapacity is the bus buffer size. Producers never block: an
// event arriving on a full bus is dropped.
const DefaultCapacity = 64

// A Bus is a buffered multi-producer single-consumer event queue.
type Bus struct {
	ch chan string
}

// NewBus returns a bus with the given capacity (0 selects
// DefaultCapacity).
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{ch: make(chan string, capacity)}
}

// Send enqueues an event without blocking. It reports whether the
// event was accepted or dropped on a full buffer.
func (b *Bus) Send(event string) bool {
	select {
	case b.ch <- event:
		return true
	default:
		return false
	}
}

// Poll dequeues one event without blocking. ok is false when the bus
// is empty.
func (b *Bus) Poll() (event string, ok bool) {
	select {
	case event = <-b.ch:
		return event, true
	default:
		return "", false
	}
}

// C exposes the receive side for callers that want to block.
func (b *Bus) C() <-chan string { return b.ch }

// Normalize canonicalizes an event name: the kind prefix is lowered,
// the payload kept as written. A name without a kind prefix is
// returned unchanged.
func Normalize(event string) string {
	i := strings.IndexByte(event, ':')
	if i < 0 {
		return event
	}
	return strings.ToLower(event[:i]) + event[i:]
}
