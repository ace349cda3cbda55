// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import (
	"io"
	"os"

	"golang.org/x/term"
)

// A Listener reads raw keyboard input and publishes keydown/keyup
// event pairs on a bus. Terminals report keypresses, not transitions,
// so each byte read produces an immediate down/up pair.
type Listener struct {
	bus      *Bus
	in       io.Reader
	fd       int
	oldState *term.State
	stop     chan struct{}
	done     chan struct{}
}

// Listen starts a listener on the given reader. When the reader is a
// terminal it is switched to raw mode until Close.
func Listen(bus *Bus, in io.Reader) (*Listener, error) {
	l := &Listener{
		bus:  bus,
		in:   in,
		fd:   -1,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	if f, ok := in.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			state, err := term.MakeRaw(fd)
			if err != nil {
				return nil, err
			}
			l.fd = fd
			l.oldState = state
		}
	}
	go l.loop()
	return l, nil
}

func (l *Listener) loop() {
	defer close(l.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-l.stop:
			return
		default:
		}
		n, err := l.in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		name := keyName(buf[0])
		if name == "" {
			continue
		}
		l.bus.Send("keydown:" + name)
		l.bus.Send("keyup:" + name)
	}
}

// Close restores the terminal state. It does not wait for a pending
// blocking read to finish.
func (l *Listener) Close() error {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	if l.oldState != nil {
		return term.Restore(l.fd, l.oldState)
	}
	return nil
}

// keyName maps a raw input byte to an event payload. Printable keys
// use their character; a few control bytes get symbolic names; the
// rest are ignored.
func keyName(b byte) string {
	switch b {
	case '\r', '\n':
		return "Enter"
	case '\t':
		return "Tab"
	case 0x7f, 0x08:
		return "Backspace"
	case 0x1b:
		return "Escape"
	case ' ':
		return "Space"
	}
	if b >= 0x20 && b < 0x7f {
		return string(rune(b))
	}
	return ""
}
