package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/wesly-lang/wesly/pkg/wesly/evaluator"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

func testSession() (*session, *bytes.Buffer) {
	var out bytes.Buffer
	return newSession(&out, Options{}), &out
}

func TestSessionEval(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var x = 1;", ""},
		{"1 + 1;", "2\n"},
		{`"hi";`, "\"hi\"\n"},
		{"'c';", "'c'\n"},
		{"nil;", "nil\n"},
		{`println("out");`, "out\n"},
		{"[1, 2];", "[1, 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, out := testSession()
			s.eval(tt.input)
			if out.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, out.String())
			}
		})
	}
}

func TestSessionKeepsBindings(t *testing.T) {
	s, out := testSession()
	s.eval("var count = 1;")
	s.eval("func inc() { count++; }")
	s.eval("inc(); inc();")
	s.eval("count;")
	if out.String() != "3\n" {
		t.Errorf("expected bindings to persist, got %q", out.String())
	}
}

func TestSessionErrors(t *testing.T) {
	s, out := testSession()
	s.eval("y;")
	if !strings.HasPrefix(out.String(), "Runtime error:\n  in: <repl>") || !strings.Contains(out.String(), "y is not defined") {
		t.Errorf("unexpected runtime error output %q", out.String())
	}

	out.Reset()
	s.eval("var = 1;")
	if !strings.HasPrefix(out.String(), "Parser error") {
		t.Errorf("unexpected parse error output %q", out.String())
	}

	// a failed entry leaves earlier bindings usable
	out.Reset()
	s.eval("var ok = 2;")
	s.eval("ok / 0;")
	s.eval("ok;")
	if !strings.HasSuffix(out.String(), "2\n") {
		t.Errorf("session did not survive the error: %q", out.String())
	}
}

func TestCommands(t *testing.T) {
	s, out := testSession()

	if s.command(":help") {
		t.Error(":help must not quit")
	}
	if !strings.Contains(out.String(), ":env") {
		t.Errorf("help output missing commands: %q", out.String())
	}

	out.Reset()
	s.command(":bogus")
	if out.String() != "Unknown command: :bogus (type :help for commands)\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	for _, cmd := range []string{":quit", ":q", ":exit"} {
		if !s.command(cmd) {
			t.Errorf("%s should quit", cmd)
		}
	}
}

func TestEnvCommand(t *testing.T) {
	s, out := testSession()
	s.command(":env")
	if out.String() != "(no user variables)\n" {
		t.Errorf("expected empty environment, got %q", out.String())
	}

	s.eval(`var x = 1; const greeting = "hello";`)
	out.Reset()
	s.command(":env")
	expected := "  const greeting string = hello\n  var x int = 1\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}

	out.Reset()
	s.command(":clear")
	s.command(":env")
	if out.String() != "Environment cleared\n(no user variables)\n" {
		t.Errorf("unexpected output after clear %q", out.String())
	}
}

func TestEnvCommandTruncatesLongValues(t *testing.T) {
	s, out := testSession()
	s.eval(`var long = "` + strings.Repeat("a", 100) + `";`)
	s.command(":env")

	line := strings.TrimSuffix(out.String(), "\n")
	value := line[strings.Index(line, "= ")+2:]
	if len(value) != envValueWidth || !strings.HasSuffix(value, "...") {
		t.Errorf("expected a %d column truncated value, got %q", envValueWidth, value)
	}
}

func TestComplete(t *testing.T) {
	s, _ := testSession()
	s.eval("var value = 1;")

	tests := []struct {
		line     string
		expected []string
	}{
		{"va", []string{"value", "var"}},
		{"x = pr", []string{"x = print", "x = println"}},
		{"co", []string{"const", "continue", "copy"}},
		{"zzz", nil},
		{"f(", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if diff := deep.Equal(s.complete(tt.line), tt.expected); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestLastWord(t *testing.T) {
	tests := []struct {
		line, word, head string
	}{
		{"x = pri", "pri", "x = "},
		{"", "", ""},
		{"foo(", "", "foo("},
		{"a_b1", "a_b1", ""},
	}
	for _, tt := range tests {
		word, head := lastWord(tt.line)
		if word != tt.word || head != tt.head {
			t.Errorf("lastWord(%q) = %q, %q", tt.line, word, head)
		}
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"func f() {", true},
		{"func f() {}", false},
		{"[1, 2,", true},
		{"f(1,\n2", true},
		{`var s = "{";`, false},
		{`var s = "a\"{";`, false},
		{"var c = '(';", false},
		{"var c = '\\'';", false},
		{"x; // {", false},
		{"/* open", true},
		{"/* {} */ x;", false},
		{"loop {\n  // }\n", true},
	}
	for _, tt := range tests {
		if got := needsMoreInput(tt.input); got != tt.expected {
			t.Errorf("needsMoreInput(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected string
	}{
		{evaluator.Value{Type: types.String, Object: &evaluator.String{Value: "a\nb"}}, `"a\nb"`},
		{evaluator.Value{Type: types.Char, Object: &evaluator.Char{Value: 'z'}}, "'z'"},
		{evaluator.Value{Type: types.Int, Object: &evaluator.Integer{Value: 4}}, "4"},
		{evaluator.Value{Type: types.Float, Object: &evaluator.Float{Value: 4}}, "4.0"},
	}
	for _, tt := range tests {
		if got := displayValue(tt.value); got != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, got)
		}
	}
}

func TestWriteHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	history := strings.NewReader("one\ntwo\nthree\nfour\nfive\n")

	if err := writeHistoryFile(history, path, 3); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "three\nfour\nfive\n" {
		t.Errorf("unexpected history %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	if err := writeHistoryFile(strings.NewReader("a\nb\n"), path, 0); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "a\nb\n" {
		t.Errorf("limit 0 should keep everything, got %q", data)
	}
}
