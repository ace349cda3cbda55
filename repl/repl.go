// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package repl provides a read/eval/print loop for Gulf of Mexico.
//
// It supports readline-style command editing, and interrupts through
// Control-C. Each submitted chunk runs against a persistent
// interpreter, so declarations survive between lines. When the last
// statement of a chunk is an expression, the REPL prints its value.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"go.gulfofmexico.net/gulf"
)

// REPL executes a read, eval, print loop against ip until EOF or
// exit().
func REPL(ip *gulf.Interp) {
	rl, err := readline.New("> ")
	if err != nil {
		PrintError(err)
		return
	}
	defer rl.Close()
	for {
		if err := rep(rl, ip); err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("^C")
				continue
			}
			break
		}
	}
	fmt.Println()
}

// rep reads, evaluates, and prints one chunk. A line that opens more
// blocks than it closes keeps reading with a continuation prompt.
// It returns an error only when readline failed or the program called
// exit(); evaluation errors are printed.
func rep(rl *readline.Instance, ip *gulf.Interp) error {
	rl.SetPrompt("> ")
	line, err := rl.Readline()
	if err != nil {
		if err == io.EOF {
			return io.EOF
		}
		return err
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}

	chunk := line
	for braceDepth(chunk) > 0 {
		rl.SetPrompt("... ")
		more, err := rl.Readline()
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return err
		}
		chunk += "\n" + more
	}

	v, err := ip.ExecChunk("<stdin>", chunk)
	if err != nil {
		if errors.Is(err, gulf.ErrExit) {
			return err
		}
		PrintError(err)
		return nil
	}
	if _, isUndef := v.(gulf.UndefinedType); !isUndef {
		fmt.Println(gulf.AsString(v))
	}
	return nil
}

// braceDepth counts unclosed braces outside string literals.
func braceDepth(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

// PrintError prints the error to stderr.
func PrintError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
