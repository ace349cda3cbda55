// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package syntax

import (
	"fmt"
	"strings"
)

// Caret renders a caret-pointing diagnostic:
//
//	file.gulf, line 3
//
//	  const const x = !
//	                  ^
//	expected an expression
//
// width is the number of carets (usually the offending token's length);
// it is clamped to at least one. If src is empty or pos is out of
// range the message renders without source context.
func Caret(filename, src string, pos Position, width int, msg string) string {
	if width < 1 {
		width = 1
	}
	if src == "" || pos.Line < 1 {
		return msg
	}
	lines := strings.Split(src, "\n")
	if int(pos.Line) > len(lines) {
		return msg
	}
	line := lines[pos.Line-1]
	spaces := int(pos.Col) - 1
	if spaces < 0 {
		spaces = 0
	}
	return fmt.Sprintf("%s, line %d\n\n  %s\n  %s%s\n%s",
		filename, pos.Line, line, strings.Repeat(" ", spaces), strings.Repeat("^", width), msg)
}
