// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import "testing"

func TestNearest(t *testing.T) {
	for _, test := range []struct {
		x          string
		candidates []string
		want       string
	}{
		{"prnt", []string{"print", "push", "pop"}, "print"},
		{"countt", []string{"count", "current"}, "count"},
		// Case and underscores do not count as typos.
		{"myvalue", []string{"my_value"}, "my_value"},
		{"PLAYER", []string{"player"}, "player"},
		// A dotted binding matches by its last segment and is
		// suggested in full.
		{"pi", []string{"math.pi", "math.e"}, "math.pi"},
		{"twoPie", []string{"math.two_pi"}, "math.two_pi"},
		// Beyond half the name's length, no suggestion.
		{"zz", []string{"print"}, ""},
		{"score", []string{"unrelated"}, ""},
		{"x", nil, ""},
	} {
		if got := nearest(test.x, test.candidates); got != test.want {
			t.Errorf("nearest(%q, %q) = %q, want %q",
				test.x, test.candidates, got, test.want)
		}
	}
}

func TestEditDistance(t *testing.T) {
	for _, test := range []struct {
		x, y string
		max  int
		want int
	}{
		{"", "", 5, 0},
		{"abc", "abc", 5, 0},
		{"abc", "abd", 5, 1},
		{"abc", "ac", 5, 1},
		{"abc", "xabc", 5, 1},
		{"kitten", "sitting", 5, 3},
	} {
		if got := editDistance(test.x, test.y, test.max); got != test.want {
			t.Errorf("editDistance(%q, %q, %d) = %d, want %d",
				test.x, test.y, test.max, got, test.want)
		}
	}

	// Once the distance cannot come in under max, the exact value no
	// longer matters, only that it exceeds max.
	if got := editDistance("a", "aaaaaaaa", 3); got <= 3 {
		t.Errorf("editDistance beyond max = %d, want > 3", got)
	}
}
