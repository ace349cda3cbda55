// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import (
	"fmt"
	"sort"
	"strings"
)

// exportDepthCap bounds recursion when rendering nested structures,
// so cyclic values terminate.
const exportDepthCap = 10

// ExportSource renders a value as source text that redeclares it
// under the given name. Numbers, strings, booleans, and lists
// round-trip; maps and objects render as a map declaration followed
// by property assignments; functions degrade to undefined.
func ExportSource(name string, v Value) (string, error) {
	switch v := v.(type) {
	case *Map:
		return exportEntries(name, v.Entries), nil
	case *Object:
		return exportEntries(name, v.Props), nil
	}
	return fmt.Sprintf("const const %s = %s!\n", name, exportExpr(v, 0)), nil
}

func exportEntries(name string, entries map[string]Value) string {
	var b strings.Builder
	fmt.Fprintf(&b, "const var %s = Map()!\n", name)
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s[%s] = %s!\n", name, exportString(k), exportExpr(entries[k], 1))
	}
	return b.String()
}

func exportExpr(v Value, depth int) string {
	if depth > exportDepthCap {
		return "undefined"
	}
	switch v := v.(type) {
	case *Number:
		return FormatNumber(v.Val)
	case *String:
		return exportString(v.Val)
	case Bool:
		return v.String()
	case *List:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = exportExpr(e, depth+1)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return "undefined"
}

// exportString picks a quote the contents do not use; the scanner has
// no escape sequences. A string using both kinds of quote cannot be
// regenerated exactly and is emitted double-quoted best effort.
func exportString(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + strings.ReplaceAll(s, `"`, "'") + `"`
}
