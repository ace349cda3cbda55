// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportScalar(t *testing.T) {
	src, err := ExportSource("score", NewNumber(42))
	if err != nil {
		t.Fatal(err)
	}
	if src != "const const score = 42!\n" {
		t.Errorf("got %q", src)
	}

	got := run(t, src+"print score!")
	if got != "42\n" {
		t.Errorf("re-imported program printed %q", got)
	}
}

func TestExportStringQuoting(t *testing.T) {
	for _, tc := range []struct {
		val  string
		want string
	}{
		{"plain", `const const s = "plain"!` + "\n"},
		{"it's", `const const s = "it's"!` + "\n"},
		{`say "hi"`, `const const s = 'say "hi"'!` + "\n"},
		{`don't say "hi"`, `const const s = "don't say 'hi'"!` + "\n"},
	} {
		src, err := ExportSource("s", NewString(tc.val))
		if err != nil {
			t.Fatal(err)
		}
		if src != tc.want {
			t.Errorf("ExportSource(%q) = %q, want %q", tc.val, src, tc.want)
		}
	}
}

func TestExportList(t *testing.T) {
	src, err := ExportSource("l", NewList([]Value{NewNumber(1), NewString("two"), True}))
	if err != nil {
		t.Fatal(err)
	}
	if src != `const const l = [1, "two", true]!`+"\n" {
		t.Errorf("got %q", src)
	}

	got := run(t, src+"print l[0]!")
	if got != "two\n" {
		t.Errorf("re-imported program printed %q", got)
	}
}

func TestExportMap(t *testing.T) {
	m := NewMap()
	m.Entries["a"] = NewNumber(1)
	m.Entries["b"] = NewString("two")
	src, err := ExportSource("m", m)
	if err != nil {
		t.Fatal(err)
	}
	want := "const var m = Map()!\n" +
		`m["a"] = 1!` + "\n" +
		`m["b"] = "two"!` + "\n"
	if src != want {
		t.Errorf("got %q, want %q", src, want)
	}

	got := run(t, src+`print m["b"]!`)
	if got != "two\n" {
		t.Errorf("re-imported program printed %q", got)
	}
}

func TestExportFunctionDegrades(t *testing.T) {
	src, err := ExportSource("f", &Function{FuncName: "f"})
	if err != nil {
		t.Fatal(err)
	}
	if src != "const const f = undefined!\n" {
		t.Errorf("got %q", src)
	}
}

func TestExportStatement(t *testing.T) {
	file := filepath.Join(t.TempDir(), "x.gom")
	run(t, "const const x = 7!\n"+`export x to "`+file+`"!`)

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "const const x = 7!\n" {
		t.Errorf("exported file holds %q", data)
	}
}

func TestImportStatement(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "score.gom"), []byte("const const best = 99!\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	got := run(t, "import score!\nprint best!")
	if got != "99\n" {
		t.Errorf("got %q", got)
	}
}

func TestImportMissing(t *testing.T) {
	var out bytes.Buffer
	ip := New("test.gom", &Options{Output: &out, Debug: io.Discard})
	err := ip.ExecFile("import no_such_module_anywhere!")
	if err == nil || !strings.Contains(err.Error(), "cannot import") {
		t.Errorf("error %v", err)
	}
}
