// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"strings"
	"testing"
)

// kindsOf tokenizes src and returns the token kinds, excluding EOF.
func kindsOf(t *testing.T, src string) []TokenKind {
	t.Helper()
	tokens, err := Tokenize("test.gom", src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	kinds := make([]TokenKind, 0, len(tokens)-1)
	for _, tok := range tokens[:len(tokens)-1] {
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func valuesOf(t *testing.T, src string) []string {
	t.Helper()
	tokens, err := Tokenize("test.gom", src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	values := make([]string, 0, len(tokens)-1)
	for _, tok := range tokens[:len(tokens)-1] {
		values = append(values, tok.Value)
	}
	return values
}

func TestTokenizeBasic(t *testing.T) {
	got := kindsOf(t, "const const x = 5!")
	want := []TokenKind{NAME, NAME, NAME, EQ, NUMBER, BANG}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestEqualsRuns(t *testing.T) {
	for _, test := range []struct {
		src  string
		want TokenKind
	}{
		{"a = b", EQ},
		{"a == b", EQEQ},
		{"a === b", EQEQEQ},
		{"a ==== b", EQEQEQEQ},
		{"a ;= b", NEQ},
		{"a ;== b", NEQEQ},
		{"a ;=== b", NEQEQEQ},
	} {
		kinds := kindsOf(t, test.src)
		if kinds[1] != test.want {
			t.Errorf("%q: middle token is %s, want %s", test.src, kinds[1], test.want)
		}
	}
}

func TestFlexibleQuotes(t *testing.T) {
	for _, test := range []struct {
		src  string
		want string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`''hello''`, "hello"},
		{`'"hello"'`, "hello"}, // three units on each side
		{`"say 'hi'"`, "say 'hi'"},
	} {
		tokens, err := Tokenize("test.gom", test.src)
		if err != nil {
			t.Errorf("Tokenize(%q): %v", test.src, err)
			continue
		}
		if tokens[0].Kind != STRING {
			t.Errorf("%q: got %s, want string", test.src, tokens[0].Kind)
			continue
		}
		if tokens[0].Value != test.want {
			t.Errorf("%q: got %q, want %q", test.src, tokens[0].Value, test.want)
		}
	}
}

func TestInterpolatedString(t *testing.T) {
	tokens, err := Tokenize("test.gom", `"hi ${name}"`)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != ISTRING {
		t.Errorf("got %s, want interpolated string", tokens[0].Kind)
	}
	if tokens[0].Value != "hi ${name}" {
		t.Errorf("got %q, want %q", tokens[0].Value, "hi ${name}")
	}
}

func TestNegativeNumbers(t *testing.T) {
	// After a value, '-' is subtraction; elsewhere it signs the number.
	kinds := kindsOf(t, "x[-1]")
	want := []TokenKind{NAME, LBRACK, NUMBER, RBRACK}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("x[-1]: token %d is %s, want %s", i, kinds[i], want[i])
		}
	}

	kinds = kindsOf(t, "a -1")
	if kinds[1] != MINUS {
		t.Errorf("a -1: got %s after name, want -", kinds[1])
	}

	values := valuesOf(t, "x = -2.5")
	if values[2] != "-2.5" {
		t.Errorf("got %q, want -2.5", values[2])
	}
}

func TestDottedNames(t *testing.T) {
	values := valuesOf(t, "player.health.max")
	if len(values) != 1 || values[0] != "player.health.max" {
		t.Errorf("got %v, want a single dotted name", values)
	}
}

func TestComments(t *testing.T) {
	kinds := kindsOf(t, "x! // the rest is ignored\ny!")
	want := []TokenKind{NAME, BANG, NAME, BANG}
	if len(kinds) != len(want) {
		t.Fatalf("got %v tokens, want %v", kinds, want)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize("test.gom", `"oops`)
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	if !strings.Contains(err.Error(), "test.gom") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestPositions(t *testing.T) {
	tokens, err := Tokenize("test.gom", "a!\n  b!")
	if err != nil {
		t.Fatal(err)
	}
	if got := tokens[0].Pos; got.Line != 1 || got.Col != 1 {
		t.Errorf("a at %s, want 1:1", got)
	}
	if got := tokens[2].Pos; got.Line != 2 || got.Col != 3 {
		t.Errorf("b at %s, want 2:3", got)
	}
}
