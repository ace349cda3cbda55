// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAliasRoundTrip(t *testing.T) {
	s := open(t)
	want := map[string]string{"metodo": "function", "si": "if"}
	if err := s.SaveAliases(want); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, s.LoadAliases()); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingFilesAreEmpty(t *testing.T) {
	s := open(t)
	if got := s.LoadAliases(); len(got) != 0 {
		t.Errorf("LoadAliases on a fresh dir = %v", got)
	}
	if got := s.LoadGlobals(); len(got) != 0 {
		t.Errorf("LoadGlobals on a fresh dir = %v", got)
	}
}

func TestCorruptFilesAreEmpty(t *testing.T) {
	s := open(t)
	for _, name := range []string{"aliases.json", "immutable_globals.json"} {
		if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.LoadAliases(); len(got) != 0 {
		t.Errorf("LoadAliases on a corrupt file = %v", got)
	}
	if got := s.LoadGlobals(); len(got) != 0 {
		t.Errorf("LoadGlobals on a corrupt file = %v", got)
	}
}

func TestStoreGlobalPreservesOthers(t *testing.T) {
	s := open(t)
	if err := s.StoreGlobal("pi", GlobalEntry{Value: StoredValue{Type: "number", Value: 3.14}}); err != nil {
		t.Fatal(err)
	}
	conf := 0.5
	if err := s.StoreGlobal("greeting", GlobalEntry{
		Value:      StoredValue{Type: "string", Value: "hi"},
		Confidence: &conf,
	}); err != nil {
		t.Fatal(err)
	}

	globals := s.LoadGlobals()
	if len(globals) != 2 {
		t.Fatalf("got %d globals, want 2", len(globals))
	}
	if got := globals["pi"].Value; got.Type != "number" || got.Value != 3.14 {
		t.Errorf("pi = %+v", got)
	}
	g := globals["greeting"]
	if g.Value.Value != "hi" || g.Confidence == nil || *g.Confidence != 0.5 {
		t.Errorf("greeting = %+v", g)
	}
	if globals["pi"].Confidence != nil {
		t.Errorf("pi confidence = %v, want nil", *globals["pi"].Confidence)
	}
}

func TestStoreGlobalOverwrite(t *testing.T) {
	s := open(t)
	s.StoreGlobal("x", GlobalEntry{Value: StoredValue{Type: "number", Value: 1.0}})
	s.StoreGlobal("x", GlobalEntry{Value: StoredValue{Type: "number", Value: 2.0}})
	if got := s.LoadGlobals()["x"].Value.Value; got != 2.0 {
		t.Errorf("x = %v, want 2", got)
	}
}
