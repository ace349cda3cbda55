// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package storage persists runtime state across sessions: keyword
// aliases and triple-const global declarations. State lives in JSON
// files under a per-user directory, $HOME/.gulfofmexico_runtime by
// default. Corrupt or missing files degrade to empty state rather
// than failing.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// A StoredValue is the neutral on-disk form of a runtime value: a type
// tag plus a tag-dependent payload. Numbers store a float64, strings a
// string, booleans true/false/null (null is the maybe state), lists a
// nested array of stored values. Functions and objects store the tag
// alone and restore as undefined.
type StoredValue struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value,omitempty"`
}

// A GlobalEntry is one persisted triple-const global. Confidence is a
// 0-1 fraction, or nil for a full-confidence declaration.
type GlobalEntry struct {
	Value      StoredValue `json:"value"`
	Confidence *float64    `json:"confidence"`
}

// A Store reads and writes the runtime-state directory.
type Store struct {
	dir string
}

// DefaultDir returns the per-user runtime-state directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".gulfofmexico_runtime")
}

// Open returns a store rooted at dir, creating it if needed. An empty
// dir selects DefaultDir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) aliasesFile() string { return filepath.Join(s.dir, "aliases.json") }
func (s *Store) globalsFile() string { return filepath.Join(s.dir, "immutable_globals.json") }

type aliasFile struct {
	Aliases map[string]string `json:"aliases"`
}

// LoadAliases returns the persisted alias map (alias name to canonical
// keyword). A missing or corrupt file yields an empty map.
func (s *Store) LoadAliases() map[string]string {
	var f aliasFile
	data, err := os.ReadFile(s.aliasesFile())
	if err == nil {
		json.Unmarshal(data, &f)
	}
	if f.Aliases == nil {
		f.Aliases = make(map[string]string)
	}
	return f.Aliases
}

// SaveAliases writes the alias map, replacing the previous contents.
func (s *Store) SaveAliases(aliases map[string]string) error {
	data, err := json.MarshalIndent(aliasFile{Aliases: aliases}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.aliasesFile(), data, 0o644)
}

// LoadGlobals returns all persisted triple-const globals. A missing or
// corrupt file yields an empty map.
func (s *Store) LoadGlobals() map[string]GlobalEntry {
	globals := make(map[string]GlobalEntry)
	data, err := os.ReadFile(s.globalsFile())
	if err == nil {
		json.Unmarshal(data, &globals)
	}
	return globals
}

// StoreGlobal inserts or overwrites one global using read-modify-write
// so concurrent sessions do not clobber each other's unrelated names.
func (s *Store) StoreGlobal(name string, entry GlobalEntry) error {
	globals := s.LoadGlobals()
	globals[name] = entry
	data, err := json.MarshalIndent(globals, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.globalsFile(), data, 0o644)
}
