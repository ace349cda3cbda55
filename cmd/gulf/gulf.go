// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The gulf command interprets a Gulf of Mexico file.
// With no arguments, it starts a read-eval-print loop (REPL).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.gulfofmexico.net/alias"
	"go.gulfofmexico.net/events"
	"go.gulfofmexico.net/gulf"
	"go.gulfofmexico.net/repl"
	"go.gulfofmexico.net/storage"
)

// flags
var (
	execprog   = flag.String("c", "", "execute program `prog`")
	wait       = flag.Bool("wait", false, "after the program finishes, keep polling for input events")
	runtimeDir = flag.String("runtime-dir", "", "directory for persisted aliases and globals (default $HOME/.gulfofmexico_runtime)")
	noPersist  = flag.Bool("no-persist", false, "disable persisted aliases and triple-const globals")
)

func main() {
	os.Exit(doMain())
}

func doMain() int {
	log.SetPrefix("gulf: ")
	log.SetFlags(0)
	flag.Parse()

	opts := &gulf.Options{Bus: events.NewBus(0)}
	if !*noPersist {
		store, err := storage.Open(*runtimeDir)
		if err != nil {
			log.Printf("cannot open runtime state: %v (continuing without persistence)", err)
		} else {
			opts.Store = store
			opts.Aliases = alias.Load(store)
		}
	}
	if opts.Aliases == nil {
		opts.Aliases = alias.New()
	}

	var last *gulf.Interp
	switch {
	case flag.NArg() == 1 || *execprog != "":
		var filename, src string
		if *execprog != "" {
			filename, src = "<cmdline>", *execprog
		} else {
			filename = flag.Arg(0)
			data, err := os.ReadFile(filename)
			if err != nil {
				log.Print(err)
				return 1
			}
			src = string(data)
		}
		// A source file may bundle several programs separated by
		// ===== name ===== lines; each runs in a fresh interpreter.
		for _, batch := range splitBatches(filename, src) {
			ip := gulf.New(batch.name, opts)
			if err := ip.ExecFile(batch.src); err != nil {
				log.Print(err)
				return 1
			}
			last = ip
		}
	case flag.NArg() == 0:
		last = gulf.New("<stdin>", opts)
		repl.REPL(last)
		return 0
	default:
		log.Print("want at most one Gulf file name")
		return 1
	}

	if *wait && last != nil {
		listener, err := events.Listen(opts.Bus, os.Stdin)
		if err != nil {
			log.Printf("cannot listen for key events: %v", err)
		} else {
			defer listener.Close()
		}
		fmt.Fprintln(os.Stderr, "Code has finished executing. Waiting for events; press Ctrl+C to stop.")
		if err := last.WaitForEvents(0); err != nil {
			log.Print(err)
			return 1
		}
	}
	return 0
}

type batch struct {
	name string
	src  string
}

// splitBatches splits a bundled source file on ===== name =====
// separator lines. A file with no separators is a single batch under
// its own name.
func splitBatches(filename, src string) []batch {
	var batches []batch
	var cur strings.Builder
	name := filename
	seen := false

	flush := func() {
		if seen {
			batches = append(batches, batch{name: name, src: cur.String()})
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(src, "\n") {
		trimmed := strings.TrimSpace(line)
		// A separator needs five equals signs on each side of a
		// non-empty name; a bare run of equals signs is program text.
		if inner := strings.TrimSpace(strings.Trim(trimmed, "=")); inner != "" &&
			len(trimmed) >= len(inner)+10 &&
			strings.HasPrefix(trimmed, "=====") && strings.HasSuffix(trimmed, "=====") {
			flush()
			seen = true
			name = inner
			continue
		}
		cur.WriteString(line)
	}
	if seen {
		flush()
		return batches
	}
	return []batch{{name: filename, src: src}}
}
