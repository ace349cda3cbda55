// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

// This file suggests likely candidates for name errors
// ("undefined: prnt (did you mean print?)").

import (
	"strings"
	"unicode"
)

// nearest returns the candidate closest to x by edit distance, or ""
// when nothing comes within half of x's length. Candidates are
// namespace bindings and may be dotted (persisted globals, member
// paths); a name matching only the last segment of a dotted binding
// still suggests the full binding.
func nearest(x string, candidates []string) string {
	target := foldName(x)

	var best string
	bestD := (len(target) + 1) / 2
	for _, c := range candidates {
		d := editDistance(target, foldName(c), bestD)
		if i := strings.LastIndexByte(c, '.'); i >= 0 {
			if tail := editDistance(target, foldName(c[i+1:]), bestD); tail < d {
				d = tail
			}
		}
		if d < bestD {
			bestD = d
			best = c
		}
	}
	return best
}

// foldName normalizes an identifier for comparison: case and
// underscores do not count as typos.
func foldName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// editDistance returns the Levenshtein distance between x and y,
// giving up with a value > max once the distance cannot come in
// under it.
func editDistance(x, y string, max int) int {
	nx, ny := len(x), len(y)
	if nx-ny > max || ny-nx > max {
		return max + 1
	}

	prev := make([]int, ny+1)
	curr := make([]int, ny+1)
	for j := 0; j <= ny; j++ {
		prev[j] = j
	}
	for i := 1; i <= nx; i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= ny; j++ {
			d := prev[j-1]
			if x[i-1] != y[j-1] {
				d++
			}
			if del := prev[j] + 1; del < d {
				d = del
			}
			if ins := curr[j-1] + 1; ins < d {
				d = ins
			}
			curr[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > max {
			return rowMin
		}
		prev, curr = curr, prev
	}
	return prev[ny]
}
