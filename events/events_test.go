// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import "testing"

func TestSendPoll(t *testing.T) {
	b := NewBus(2)
	if _, ok := b.Poll(); ok {
		t.Error("Poll on an empty bus reported an event")
	}
	if !b.Send("keydown:A") || !b.Send("keyup:A") {
		t.Fatal("Send dropped within capacity")
	}
	if ev, ok := b.Poll(); !ok || ev != "keydown:A" {
		t.Errorf("first Poll = %q, %v", ev, ok)
	}
	if ev, ok := b.Poll(); !ok || ev != "keyup:A" {
		t.Errorf("second Poll = %q, %v", ev, ok)
	}
}

func TestSendDropsWhenFull(t *testing.T) {
	b := NewBus(1)
	if !b.Send("a") {
		t.Fatal("first Send dropped")
	}
	if b.Send("b") {
		t.Error("Send on a full bus reported accepted")
	}
	if ev, _ := b.Poll(); ev != "a" {
		t.Errorf("got %q, want the first event", ev)
	}
}

func TestDefaultCapacity(t *testing.T) {
	b := NewBus(0)
	for i := 0; i < DefaultCapacity; i++ {
		if !b.Send("e") {
			t.Fatalf("Send %d dropped under the default capacity", i)
		}
	}
	if b.Send("overflow") {
		t.Error("Send past the default capacity accepted")
	}
}

func TestNormalize(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"KeyDown:A", "keydown:A"},
		{"KEYUP:Enter", "keyup:Enter"},
		{"click:left", "click:left"},
		{"tick", "tick"},
		{"KeyDown:A:B", "keydown:A:B"},
	} {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
