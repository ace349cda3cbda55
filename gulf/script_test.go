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

	"go.gulfofmexico.net/events"
	"gopkg.in/yaml.v3"
)

// A scriptCase is one conformance fixture: a program and either the
// exact output it prints or a fragment of the error it fails with.
type scriptCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Error  string `yaml:"error"`
}

func TestScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no fixtures under testdata")
	}
	for _, file := range files {
		file := file
		t.Run(filepath.Base(file), func(t *testing.T) {
			data, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			var cases []scriptCase
			if err := yaml.Unmarshal(data, &cases); err != nil {
				t.Fatal(err)
			}
			for _, tc := range cases {
				tc := tc
				t.Run(tc.Name, func(t *testing.T) {
					var out bytes.Buffer
					ip := New(tc.Name, &Options{
						Output: &out,
						Debug:  io.Discard,
						Bus:    events.NewBus(0),
					})
					err := ip.ExecFile(tc.Source)
					if tc.Error != "" {
						if err == nil {
							t.Fatalf("expected an error containing %q, program printed %q", tc.Error, out.String())
						}
						if !strings.Contains(err.Error(), tc.Error) {
							t.Fatalf("error %q does not contain %q", err, tc.Error)
						}
						return
					}
					if err != nil {
						t.Fatal(err)
					}
					if out.String() != tc.Output {
						t.Errorf("output %q, want %q", out.String(), tc.Output)
					}
				})
			}
		})
	}
}
