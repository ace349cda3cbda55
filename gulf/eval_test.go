// Copyright 2024 The Gulf Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gulf

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"go.gulfofmexico.net/events"
	"go.gulfofmexico.net/storage"
)

// run executes a program and returns what it printed.
func run(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	ip := New("test.gom", &Options{Output: &out, Debug: io.Discard, Bus: events.NewBus(0)})
	if err := ip.ExecFile(src); err != nil {
		t.Fatalf("ExecFile(%q): %v", src, err)
	}
	return out.String()
}

// runErr executes a program expected to fail and returns the output so
// far alongside the error.
func runErr(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	ip := New("test.gom", &Options{Output: &out, Debug: io.Discard})
	err := ip.ExecFile(src)
	if err == nil {
		t.Fatalf("ExecFile(%q): no error", src)
	}
	return out.String(), err
}

func TestHello(t *testing.T) {
	got := run(t, "const const x = 5!\nprint x!")
	if got != "5\n" {
		t.Errorf("got %q, want %q", got, "5\n")
	}
}

func TestPrintVariadic(t *testing.T) {
	got := run(t, `print 1, "and", 2!`)
	if got != "1 and 2\n" {
		t.Errorf("got %q", got)
	}
}

func TestStringConcat(t *testing.T) {
	got := run(t, `print "a" + "b"!`+"\n"+`print 1 + "b"!`)
	if got != "ab\n1b\n" {
		t.Errorf("got %q", got)
	}
}

func TestDivisionByZero(t *testing.T) {
	got := run(t, "print 3 / 0!")
	if got != "undefined\n" {
		t.Errorf("got %q, want undefined", got)
	}
}

func TestMaybeArithmetic(t *testing.T) {
	got := run(t, "print maybe + 1!")
	if got != "1.5\n" {
		t.Errorf("got %q, want 1.5", got)
	}
}

func TestNotOperator(t *testing.T) {
	got := run(t, "print(;false)!\nprint(1 ;= 2)!")
	if got != "true\ntrue\n" {
		t.Errorf("got %q", got)
	}
}

func TestEqualityPrecision(t *testing.T) {
	got := run(t, `print 1 == "1"!`+"\n"+`print 1 === "1"!`+"\n"+"print([1] == 1)!")
	if got != "true\nfalse\nmaybe\n" {
		t.Errorf("got %q", got)
	}
}

func TestIfMaybeTakesElse(t *testing.T) {
	got := run(t, `if maybe { print "yes"! } else { print "no"! }`)
	if got != "no\n" {
		t.Errorf("got %q, want the else branch", got)
	}
}

func TestIndexAssignment(t *testing.T) {
	got := run(t, "const var x = [1, 2, 3]!\nx[-1] = 9!\nprint x[-1]!")
	if got != "9\n" {
		t.Errorf("got %q", got)
	}
}

func TestStringIndexing(t *testing.T) {
	got := run(t, `const const s = "abc"!`+"\nprint s[-1]!")
	if got != "a\n" {
		t.Errorf("got %q", got)
	}
}

func TestStringEmptyAssignment(t *testing.T) {
	_, err := runErr(t, `const var s = "a"!`+"\n"+`s[-1] = ""!`+"\nprint s[-1]!")
	if !strings.Contains(err.Error(), "no value assigned") {
		t.Errorf("error %q", err)
	}
}

func TestNumberDigits(t *testing.T) {
	got := run(t, "const var n = 345!\nprint n[0]!")
	if got != "4\n" {
		t.Errorf("got %q", got)
	}
}

func TestListPushLength(t *testing.T) {
	got := run(t, "const var x = [1]!\nx.push(2)!\nprint x.length!")
	if got != "2\n" {
		t.Errorf("got %q", got)
	}
}

func TestWordNumbers(t *testing.T) {
	got := run(t, "print twenty(three)!\nprint thirty()!\nprint ninteen!")
	if got != "23\n30\n19\n" {
		t.Errorf("got %q", got)
	}
}

func TestFunctionCall(t *testing.T) {
	got := run(t, "fn add(a, b) => { return a + b! }\nprint add(3, 4)!")
	if got != "7\n" {
		t.Errorf("got %q", got)
	}
}

func TestFunctionKeywordVariants(t *testing.T) {
	got := run(t, "functi double(n) => { return n * 2! }\nprint double(4)!")
	if got != "8\n" {
		t.Errorf("got %q", got)
	}
}

func TestAsyncInterleaving(t *testing.T) {
	src := `async fn count() => {
	print 1!
	print 2!
	print 3!
}
count()!
print "a"!
print "b"!`
	got := run(t, src)
	if got != "1\na\n2\nb\n3\n" {
		t.Errorf("got %q", got)
	}
}

func TestAsyncEmptyBody(t *testing.T) {
	got := run(t, "async fn f() => {}\nf()!\nprint 1!")
	if got != "1\n" {
		t.Errorf("got %q", got)
	}
}

func TestIncrementSugar(t *testing.T) {
	got := run(t, "var var x = 1!\nx++!\nprint x!")
	if got != "2\n" {
		t.Errorf("got %q", got)
	}
}

func TestWhenRefires(t *testing.T) {
	src := `var var x = 3!
when x > 4 { print "hot"! }
x = 5!
x = 2!`
	got := run(t, src)
	if got != "hot\n" {
		t.Errorf("got %q, want exactly one firing", got)
	}
}

func TestReverse(t *testing.T) {
	src := `var var x = 1!
x = 2!
print x!
reverse!
print x!`
	got := run(t, src)
	if got != "2\n1\n" {
		t.Errorf("got %q", got)
	}
}

func TestLineLifetimeExpires(t *testing.T) {
	out, err := runErr(t, "var var x<2> = 1!\nprint x!\nprint x!")
	if out != "1\n" {
		t.Errorf("output before expiry = %q, want 1", out)
	}
	if !strings.Contains(err.Error(), "undefined: x") {
		t.Errorf("error %q does not report x undefined", err)
	}
}

func TestConstRedeclaration(t *testing.T) {
	_, err := runErr(t, "const const x = 1!\nconst const x = 2!")
	if !strings.Contains(err.Error(), "cannot redeclare constant x") {
		t.Errorf("error %q", err)
	}
}

func TestConstValueEdit(t *testing.T) {
	_, err := runErr(t, "var const x = [1]!\nx[-1] = 2!")
	if !strings.Contains(err.Error(), "cannot edit the value of x") {
		t.Errorf("error %q", err)
	}
}

func TestSpellSuggestion(t *testing.T) {
	_, err := runErr(t, "const const count = 3!\nprint countt!")
	if !strings.Contains(err.Error(), "did you mean count") {
		t.Errorf("error %q has no suggestion", err)
	}
}

func TestDelete(t *testing.T) {
	_, err := runErr(t, "delete three!\nprint three!")
	if !strings.Contains(err.Error(), "undefined: three") {
		t.Errorf("error %q", err)
	}
	// Deleting an unbound target is a no-op.
	got := run(t, "delete 3!\nprint 3!")
	if got != "3\n" {
		t.Errorf("got %q", got)
	}
}

func TestClassSingleton(t *testing.T) {
	src := `class Player {
	const var health = 10!
}
print Player.health!
Player.health = 5!
print Player.health!`
	got := run(t, src)
	if got != "10\n5\n" {
		t.Errorf("got %q", got)
	}
}

func TestSignal(t *testing.T) {
	src := `const const score = use(9)!
print score()!
score(42)!
print score()!`
	got := run(t, src)
	if got != "9\n42\n" {
		t.Errorf("got %q", got)
	}
}

func TestPreviousCurrent(t *testing.T) {
	src := `var var x = 1!
x = 2!
print previous(x)!
print current(x)!
print next(x)!`
	got := run(t, src)
	if got != "1\n2\nundefined\n" {
		t.Errorf("got %q", got)
	}
}

func TestInterpolation(t *testing.T) {
	got := run(t, `const const name = "world"!`+"\n"+`print "hello ${name}"!`)
	if got != "hello world\n" {
		t.Errorf("got %q", got)
	}
}

func TestInterpolationError(t *testing.T) {
	got := run(t, `print "x is ${nope}"!`)
	if !strings.HasPrefix(got, "x is <error:") {
		t.Errorf("got %q, want an inline error marker", got)
	}
}

func TestAfterTrigger(t *testing.T) {
	src := `after "tick" { print "ticked"! }
trigger("tick")!
print "end"!`
	got := run(t, src)
	if got != "ticked\nend\n" {
		t.Errorf("got %q", got)
	}
}

func TestAfterFlushAtEnd(t *testing.T) {
	got := run(t, `after "boom" { print "boom"! }`+"\n"+`print "x"!`)
	if got != "x\nboom\n" {
		t.Errorf("got %q, want the pending block flushed last", got)
	}
}

func TestAfterEventCase(t *testing.T) {
	src := `after "KeyDown:A" { print "pressed"! }
trigger("keydown:A")!
print "end"!`
	got := run(t, src)
	if got != "pressed\nend\n" {
		t.Errorf("got %q", got)
	}
}

func TestExit(t *testing.T) {
	got := run(t, "print 1!\nexit()!\nprint 2!")
	if got != "1\n" {
		t.Errorf("got %q, want a clean stop after 1", got)
	}
}

func TestRegexBuiltins(t *testing.T) {
	src := `print regex_match("ab+,abbb")!
print regex_replace("b+,x,abbbc")!`
	got := run(t, src)
	if got != "true\naxc\n" {
		t.Errorf("got %q", got)
	}
}

func TestChunkValue(t *testing.T) {
	ip := New("<stdin>", &Options{Output: io.Discard, Debug: io.Discard})
	v, err := ip.ExecChunk("<stdin>", "1 + 2!")
	if err != nil {
		t.Fatal(err)
	}
	if AsString(v) != "3" {
		t.Errorf("chunk value = %s, want 3", AsString(v))
	}
	v, err = ip.ExecChunk("<stdin>", "const const y = 1!")
	if err != nil {
		t.Fatal(err)
	}
	if v != Value(Undefined) {
		t.Errorf("declaration chunk value = %s, want undefined", AsString(v))
	}
}

func TestDebugDump(t *testing.T) {
	var dbg bytes.Buffer
	ip := New("test.gom", &Options{Output: io.Discard, Debug: &dbg})
	if err := ip.ExecFile("const const x = 5?"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dbg.String(), "x = 5 (Number)") {
		t.Errorf("debug output %q", dbg.String())
	}
}

func TestPersistedGlobals(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var out1 bytes.Buffer
	ip1 := New("a.gom", &Options{Output: &out1, Debug: io.Discard, Store: store})
	if err := ip1.ExecFile(`const const const greeting = "hi"!`); err != nil {
		t.Fatal(err)
	}

	var out2 bytes.Buffer
	ip2 := New("b.gom", &Options{Output: &out2, Debug: io.Discard, Store: store})
	if err := ip2.ExecFile("print greeting!"); err != nil {
		t.Fatal(err)
	}
	if out2.String() != "hi\n" {
		t.Errorf("second session printed %q, want hi", out2.String())
	}
}

func TestPersistedListGlobal(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ip1 := New("a.gom", &Options{Output: io.Discard, Debug: io.Discard, Store: store})
	if err := ip1.ExecFile(`const const const data = [1, "two", true]!`); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ip2 := New("b.gom", &Options{Output: &out, Debug: io.Discard, Store: store})
	if err := ip2.ExecFile("print data!"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "[1, two, true]\n" {
		t.Errorf("second session printed %q", out.String())
	}
}

func TestTimeLifetimeSurvivesLines(t *testing.T) {
	// A wall-clock lifetime outlives any number of statements.
	src := `var var x<20s> = 1!
print x!
print x!
print x!`
	got := run(t, src)
	if got != "1\n1\n1\n" {
		t.Errorf("got %q", got)
	}
}

func TestMathBuiltins(t *testing.T) {
	got := run(t, "print sqrt(9)!\nprint pow(2, 10)!")
	if got != "3\n1024\n" {
		t.Errorf("got %q", got)
	}
}
