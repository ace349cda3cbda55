// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
	"time"

	"go.gulfofmexico.net/events"
)

// universe builds the global namespace an interpreter starts from:
// builtin functions, builtin values, word numbers, the math table,
// and the language keywords bound as keyword values.
func universe(ip *Interp) Namespace {
	ns := make(Namespace)
	bind := func(name string, v Value) {
		ns[name] = &Name{Name: name, Value: v}
	}

	bind("true", True)
	bind("false", False)
	bind("maybe", Maybe)
	bind("undefined", Undefined)

	bind("print", NewBuiltin("print", -1, func(args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = AsString(a)
		}
		fmt.Fprintln(ip.out, strings.Join(parts, " "))
		return Undefined, nil
	}))
	bind("exit", NewBuiltin("exit", 0, func(args []Value) (Value, error) {
		return nil, ErrExit
	}))
	bind("sleep", NewBuiltin("sleep", 1, func(args []Value) (Value, error) {
		n, ok := args[0].(*Number)
		if !ok {
			return nil, fmt.Errorf("sleep requires numerical input")
		}
		time.Sleep(time.Duration(n.Val * float64(time.Second)))
		return Undefined, nil
	}))
	bind("read", NewBuiltin("read", 1, func(args []Value) (Value, error) {
		path, ok := args[0].(*String)
		if !ok {
			return nil, fmt.Errorf("read requires its argument to be a string")
		}
		data, err := os.ReadFile(path.Val)
		if err != nil {
			return nil, err
		}
		return NewString(string(data)), nil
	}))
	bind("write", NewBuiltin("write", 2, func(args []Value) (Value, error) {
		path, ok := args[0].(*String)
		if !ok {
			return nil, fmt.Errorf("write requires its path to be a string")
		}
		if err := os.WriteFile(path.Val, []byte(AsString(args[1])), 0o644); err != nil {
			return nil, err
		}
		return Undefined, nil
	}))

	bind("Number", NewBuiltin("Number", 1, func(args []Value) (Value, error) {
		f, err := AsNumber(args[0])
		if err != nil {
			return nil, err
		}
		return NewNumber(f), nil
	}))
	bind("String", NewBuiltin("String", 1, func(args []Value) (Value, error) {
		return NewString(AsString(args[0])), nil
	}))
	bind("Boolean", NewBuiltin("Boolean", 1, func(args []Value) (Value, error) {
		return args[0].Truth(), nil
	}))
	bind("Map", NewBuiltin("Map", 0, func(args []Value) (Value, error) {
		return NewMap(), nil
	}))
	bind("new", NewBuiltin("new", 1, func(args []Value) (Value, error) {
		return args[0], nil
	}))

	// use(x) makes a signal: calling it with a value stores it,
	// calling it blank reads it back.
	bind("use", NewBuiltin("use", 1, func(args []Value) (Value, error) {
		cell := args[0]
		return NewBuiltin("signal", 1, func(args []Value) (Value, error) {
			if _, blank := args[0].(BlankType); blank {
				return cell, nil
			}
			cell = args[0]
			return Undefined, nil
		}), nil
	}))

	bind("trigger", NewBuiltin("trigger", 1, func(args []Value) (Value, error) {
		name, ok := args[0].(*String)
		if !ok {
			return nil, fmt.Errorf("trigger requires an event name string")
		}
		if ip.bus == nil {
			return False, nil
		}
		if ip.bus.Send(events.Normalize(name.Val)) {
			return True, nil
		}
		return False, nil
	}))

	bind("alias", NewBuiltin("alias", 2, func(args []Value) (Value, error) {
		orig, ok1 := args[0].(*String)
		name, ok2 := args[1].(*String)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("alias requires two strings")
		}
		if ip.aliases == nil || !ip.aliases.Alias(orig.Val, name.Val) {
			return False, nil
		}
		return True, nil
	}))
	bind("unalias", NewBuiltin("unalias", 1, func(args []Value) (Value, error) {
		name, ok := args[0].(*String)
		if !ok {
			return nil, fmt.Errorf("unalias requires a string")
		}
		if ip.aliases == nil || !ip.aliases.Unalias(name.Val) {
			return False, nil
		}
		return True, nil
	}))
	bind("list_aliases", NewBuiltin("list_aliases", 0, func(args []Value) (Value, error) {
		m := NewMap()
		if ip.aliases != nil {
			for _, pair := range ip.aliases.List() {
				m.Entries[pair[0]] = NewString(pair[1])
			}
		}
		return m, nil
	}))

	// The regex builtins take one comma-packed string argument:
	// regex_match("pattern,string").
	bind("regex_match", NewBuiltin("regex_match", 1, func(args []Value) (Value, error) {
		pattern, rest, err := splitRegexArg(args[0], "regex_match", 1)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %v", err)
		}
		if re.MatchString(rest[0]) {
			return True, nil
		}
		return False, nil
	}))
	bind("regex_findall", NewBuiltin("regex_findall", 1, func(args []Value) (Value, error) {
		pattern, rest, err := splitRegexArg(args[0], "regex_findall", 1)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %v", err)
		}
		var elems []Value
		for _, m := range re.FindAllString(rest[0], -1) {
			elems = append(elems, NewString(m))
		}
		return NewList(elems), nil
	}))
	bind("regex_replace", NewBuiltin("regex_replace", 1, func(args []Value) (Value, error) {
		pattern, rest, err := splitRegexArg(args[0], "regex_replace", 2)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %v", err)
		}
		return NewString(re.ReplaceAllString(rest[1], rest[0])), nil
	}))

	bindMath(bind)
	bindWordNumbers(bind)
	bindKeywords(bind)
	return ns
}

// splitRegexArg unpacks a comma-packed regex argument into the
// pattern and n trailing parts.
func splitRegexArg(v Value, fn string, n int) (pattern string, rest []string, err error) {
	s, ok := v.(*String)
	if !ok {
		return "", nil, fmt.Errorf("%s requires a comma-packed string argument", fn)
	}
	parts := strings.SplitN(s.Val, ",", n+1)
	if len(parts) != n+1 {
		return "", nil, fmt.Errorf("%s requires a comma-packed string argument", fn)
	}
	return parts[0], parts[1:], nil
}

func mathFn1(name string, f func(float64) float64) *Builtin {
	return NewBuiltin(name, 1, func(args []Value) (Value, error) {
		n, ok := args[0].(*Number)
		if !ok {
			return nil, fmt.Errorf("cannot pass a non-number value into a math function")
		}
		return NewNumber(f(n.Val)), nil
	})
}

func mathFn2(name string, f func(a, b float64) float64) *Builtin {
	return NewBuiltin(name, 2, func(args []Value) (Value, error) {
		a, ok1 := args[0].(*Number)
		b, ok2 := args[1].(*Number)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("cannot pass a non-number value into a math function")
		}
		return NewNumber(f(a.Val, b.Val)), nil
	})
}

func bindMath(bind func(string, Value)) {
	bind("pi", NewNumber(math.Pi))
	bind("e", NewNumber(math.E))
	bind("tau", NewNumber(2*math.Pi))
	bind("inf", NewNumber(math.Inf(1)))
	bind("nan", NewNumber(math.NaN()))

	bind("sqrt", mathFn1("sqrt", math.Sqrt))
	bind("cbrt", mathFn1("cbrt", math.Cbrt))
	bind("fabs", mathFn1("fabs", math.Abs))
	bind("floor", mathFn1("floor", math.Floor))
	bind("ceil", mathFn1("ceil", math.Ceil))
	bind("trunc", mathFn1("trunc", math.Trunc))
	bind("exp", mathFn1("exp", math.Exp))
	bind("log", mathFn1("log", math.Log))
	bind("log2", mathFn1("log2", math.Log2))
	bind("log10", mathFn1("log10", math.Log10))
	bind("sin", mathFn1("sin", math.Sin))
	bind("cos", mathFn1("cos", math.Cos))
	bind("tan", mathFn1("tan", math.Tan))
	bind("asin", mathFn1("asin", math.Asin))
	bind("acos", mathFn1("acos", math.Acos))
	bind("atan", mathFn1("atan", math.Atan))
	bind("sinh", mathFn1("sinh", math.Sinh))
	bind("cosh", mathFn1("cosh", math.Cosh))
	bind("tanh", mathFn1("tanh", math.Tanh))
	bind("degrees", mathFn1("degrees", func(x float64) float64 { return x * 180 / math.Pi }))
	bind("radians", mathFn1("radians", func(x float64) float64 { return x * math.Pi / 180 }))

	bind("pow", mathFn2("pow", math.Pow))
	bind("atan2", mathFn2("atan2", math.Atan2))
	bind("hypot", mathFn2("hypot", math.Hypot))
	bind("fmod", mathFn2("fmod", math.Mod))
	bind("copysign", mathFn2("copysign", math.Copysign))
}

var oneWords = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven",
	"eight", "nine", "ten", "eleven", "twelve", "thirteen", "fourteen",
	"fifteen", "sixteen", "seventeen", "eighteen", "ninteen",
}

var tenWords = []string{
	"twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// bindWordNumbers binds zero through ninteen as numbers and the tens
// as builders: twenty(three) is 23, twenty() alone is 20.
func bindWordNumbers(bind func(string, Value)) {
	for i, word := range oneWords {
		bind(word, NewNumber(float64(i)))
	}
	for i, word := range tenWords {
		base := float64(20 + 10*i)
		word := word
		bind(word, NewBuiltin(word, 1, func(args []Value) (Value, error) {
			if _, blank := args[0].(BlankType); blank {
				return NewNumber(base), nil
			}
			n, ok := args[0].(*Number)
			if !ok {
				return nil, fmt.Errorf("expected a number in the ones digit, received a %s", args[0].Type())
			}
			return NewNumber(base + n.Val), nil
		}))
	}
}

var keywordNames = []string{
	"class", "className", "after", "const", "var", "when", "if", "else",
	"async", "return", "delete", "await", "previous", "next", "current",
	"reverse", "export", "import", "to",
}

// bindKeywords binds the statement keywords as keyword values so a
// bare keyword in expression position still resolves.
func bindKeywords(bind func(string, Value)) {
	for _, kw := range keywordNames {
		bind(kw, Keyword(kw))
	}
	for _, kw := range functionKeywords() {
		bind(kw, Keyword(kw))
	}
}

// functionKeywords enumerates every non-empty subsequence of the word
// "function" that the parser accepts as a function keyword.
func functionKeywords() []string {
	const word = "function"
	seen := make(map[string]bool)
	var out []string
	for mask := 1; mask < 1<<len(word); mask++ {
		var b strings.Builder
		for i := 0; i < len(word); i++ {
			if mask&(1<<i) != 0 {
				b.WriteByte(word[i])
			}
		}
		kw := b.String()
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// pow is the ^ operator.
func pow(a, b float64) float64 { return math.Pow(a, b) }
