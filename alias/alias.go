// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alias maintains user-defined renamings of the language's
// canonical keywords. An alias is a pure token rewrite: after scanning
// and before parsing, every NAME token matching an alias is replaced
// by its canonical keyword. Aliases persist across sessions when the
// table is backed by a storage.Store.
package alias

import (
	"sort"

	"go.gulfofmexico.net/storage"
	"go.gulfofmexico.net/syntax"
)

// canonicalKeywords are the only words that may be aliased. Aliasing
// anything else fails.
var canonicalKeywords = []string{
	"function", "func", "fun", "fn",
	"if", "when", "after", "class", "return", "delete",
	"export", "import", "reverse", "var", "const",
}

func isCanonical(name string) bool {
	for _, kw := range canonicalKeywords {
		if name == kw {
			return true
		}
	}
	return false
}

// A Table maps alias names to canonical keywords. The zero table is
// unusable; construct with New or Load.
type Table struct {
	aliases map[string]string // alias -> canonical
	store   *storage.Store    // nil for an in-memory table
}

// New returns an empty in-memory table.
func New() *Table {
	return &Table{aliases: make(map[string]string)}
}

// Load returns a table backed by the given store, seeded with its
// persisted aliases. Mutations write through.
func Load(store *storage.Store) *Table {
	return &Table{aliases: store.LoadAliases(), store: store}
}

// Alias registers newName as an alias for the canonical keyword
// original. It reports whether the registration was accepted:
// the original must be canonical; the alias must be 1-32 ASCII
// letters; and the alias may not collide with a canonical keyword,
// an existing alias, or another alias's original (no chains).
func (t *Table) Alias(original, newName string) bool {
	if !isCanonical(original) {
		return false
	}
	if !validAliasName(newName) {
		return false
	}
	if isCanonical(newName) {
		return false
	}
	if _, ok := t.aliases[newName]; ok {
		return false
	}
	for _, canon := range t.aliases {
		if canon == newName {
			return false
		}
	}
	t.aliases[newName] = original
	t.save()
	return true
}

// Unalias removes an alias, reporting whether it existed.
func (t *Table) Unalias(name string) bool {
	if _, ok := t.aliases[name]; !ok {
		return false
	}
	delete(t.aliases, name)
	t.save()
	return true
}

// List returns the alias map in sorted pairs (alias, canonical).
func (t *Table) List() [][2]string {
	names := make([]string, 0, len(t.aliases))
	for name := range t.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([][2]string, len(names))
	for i, name := range names {
		pairs[i] = [2]string{name, t.aliases[name]}
	}
	return pairs
}

// Resolve returns the canonical keyword for name, or name itself.
func (t *Table) Resolve(name string) string {
	if canon, ok := t.aliases[name]; ok {
		return canon
	}
	return name
}

// Canonicalize rewrites NAME tokens in place, replacing aliases with
// their canonical keywords.
func (t *Table) Canonicalize(tokens []syntax.Token) {
	if len(t.aliases) == 0 {
		return
	}
	for i, tok := range tokens {
		if tok.Kind == syntax.NAME {
			if canon, ok := t.aliases[tok.Value]; ok {
				tokens[i].Value = canon
			}
		}
	}
}

func (t *Table) save() {
	if t.store != nil {
		t.store.SaveAliases(t.aliases)
	}
}

func validAliasName(name string) bool {
	if name == "" || len(name) > 32 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
