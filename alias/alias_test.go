// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alias

import (
	"strings"
	"testing"

	"go.gulfofmexico.net/storage"
	"go.gulfofmexico.net/syntax"
)

func TestAliasValidation(t *testing.T) {
	tab := New()
	for _, tc := range []struct {
		original, alias string
		want            bool
	}{
		{"function", "metodo", true},
		{"function", "método", false}, // ASCII letters only
		{"print", "say", false},       // print is not a keyword
		{"if", "when", false},         // alias may not shadow a keyword
		{"if", "metodo", false},       // alias already taken
		{"if", "si", true},
		{"const", "", false},
		{"const", "x2", false},
		{"const", strings.Repeat("a", 33), false},
		{"const", strings.Repeat("a", 32), true},
	} {
		if got := tab.Alias(tc.original, tc.alias); got != tc.want {
			t.Errorf("Alias(%q, %q) = %v, want %v", tc.original, tc.alias, got, tc.want)
		}
	}
}

func TestUnalias(t *testing.T) {
	tab := New()
	tab.Alias("function", "metodo")
	if !tab.Unalias("metodo") {
		t.Error("Unalias did not find the alias")
	}
	if tab.Unalias("metodo") {
		t.Error("Unalias removed a missing alias")
	}
}

func TestResolveAndList(t *testing.T) {
	tab := New()
	tab.Alias("function", "metodo")
	tab.Alias("if", "si")
	if got := tab.Resolve("metodo"); got != "function" {
		t.Errorf("Resolve(metodo) = %q", got)
	}
	if got := tab.Resolve("unrelated"); got != "unrelated" {
		t.Errorf("Resolve(unrelated) = %q", got)
	}
	pairs := tab.List()
	if len(pairs) != 2 || pairs[0] != [2]string{"metodo", "function"} || pairs[1] != [2]string{"si", "if"} {
		t.Errorf("List() = %v", pairs)
	}
}

func TestCanonicalize(t *testing.T) {
	tab := New()
	tab.Alias("function", "metodo")

	src := `metodo add(a, b) => { return a + b! }`
	tokens, err := syntax.Tokenize("test.gom", src)
	if err != nil {
		t.Fatal(err)
	}
	tab.Canonicalize(tokens)
	if tokens[0].Kind != syntax.NAME || tokens[0].Value != "function" {
		t.Errorf("first token is %v, want the canonical keyword", tokens[0])
	}
	if _, err := syntax.Parse("test.gom", tokens, src); err != nil {
		t.Errorf("canonicalized program failed to parse: %v", err)
	}
}

func TestPersistence(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tab := Load(store)
	tab.Alias("function", "metodo")

	reloaded := Load(store)
	if got := reloaded.Resolve("metodo"); got != "function" {
		t.Errorf("reloaded Resolve(metodo) = %q", got)
	}

	reloaded.Unalias("metodo")
	if got := Load(store).Resolve("metodo"); got != "metodo" {
		t.Errorf("alias survived removal: Resolve(metodo) = %q", got)
	}
}
