package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI runs the command with an isolated home directory and no config
func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut, func(string) string { return "" })
	return code, out.String(), errOut.String()
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunInline(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{"result is printed", []string{"-e", "1 + 2;"}, 0, "3\n"},
		{"long flag", []string{"--eval", `"a" + "b";`}, 0, "ab\n"},
		{"void result is silent", []string{"-e", `println("hi");`}, 0, "hi\n"},
		{"nil result is silent", []string{"-e", "nil;"}, 0, ""},
		{"short circuit flag", []string{"--short-circuit", "-e", "var n = 0; func f() bool { n++; return true; } false && f(); n;"}, 0, "0\n"},
		{"version", []string{"-V"}, 0, "wesly version 0.3.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Fatalf("expected exit %d, got %d (stderr %q)", tt.code, code, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("expected %q, got %q", tt.stdout, stdout)
			}
		})
	}
}

func TestRunReportsErrors(t *testing.T) {
	code, _, stderr := runCLI(t, "", "-e", "var a = 1;\na / 0;")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.HasPrefix(stderr, "Runtime error:\n  in: <eval>\n  at: line 2") {
		t.Errorf("unexpected error header %q", stderr)
	}
	if !strings.Contains(stderr, "\n    a / 0;\n") {
		t.Errorf("expected the offending line, got %q", stderr)
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"unknown flag", []string{"--nope"}, 2, "flag provided but not defined"},
		{"check without files", []string{"--check"}, 2, "--check requires at least one file"},
		{"missing config", []string{"--config", "/no/such/wesly.yaml", "-e", "1;"}, 1, "config file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
			if !strings.Contains(stderr, tt.stderr) {
				t.Errorf("expected stderr containing %q, got %q", tt.stderr, stderr)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--help")
	if code != 0 || !strings.Contains(stdout, "wesly fmt [-w|-l|-d] <file>...") {
		t.Errorf("unexpected help (exit %d): %q", code, stdout)
	}
}

func TestRunFileAndStdin(t *testing.T) {
	path := writeSource(t, "main.wes", "func twice(x int) int { return x * 2; }\nprintln(twice(21));\n")
	code, stdout, stderr := runCLI(t, "", path)
	if code != 0 || stdout != "42\n" {
		t.Errorf("file run: exit %d, stdout %q, stderr %q", code, stdout, stderr)
	}

	code, stdout, _ = runCLI(t, `print("from "); println("stdin");`)
	if code != 0 || stdout != "from stdin\n" {
		t.Errorf("stdin run: exit %d, stdout %q", code, stdout)
	}

	code, _, stderr = runCLI(t, "", filepath.Join(t.TempDir(), "missing.wes"))
	if code != 1 || !strings.Contains(stderr, "Error reading file") {
		t.Errorf("missing file: exit %d, stderr %q", code, stderr)
	}
}

func TestRunCheck(t *testing.T) {
	good := writeSource(t, "good.wes", "var x = 1;\n")
	bad := writeSource(t, "bad.wes", "var x;\n")

	code, _, stderr := runCLI(t, "", "--check", good)
	if code != 0 || stderr != "" {
		t.Errorf("clean check: exit %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCLI(t, "", "--check", good, bad)
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr, "Parser error:\n  in: "+bad) || !strings.Contains(stderr, "    var x;\n") {
		t.Errorf("unexpected check output %q", stderr)
	}

	code, _, _ = runCLI(t, "", "--check", bad, filepath.Join(t.TempDir(), "missing.wes"))
	if code != 2 {
		t.Errorf("unreadable files should exit 2, got %d", code)
	}
}

func TestRunCheckJSON(t *testing.T) {
	good := writeSource(t, "good.wes", "var x = 1;\n")
	bad := writeSource(t, "bad.wes", "var x;\n")
	missing := filepath.Join(t.TempDir(), "missing.wes")

	code, stdout, stderr := runCLI(t, "", "--check", "--json", good, bad, missing)
	if code != 2 {
		t.Errorf("expected exit 2, got %d", code)
	}
	if stderr != "" {
		t.Errorf("JSON mode should keep stderr quiet, got %q", stderr)
	}

	var report []checkResult
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if len(report) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(report))
	}
	if !report[0].OK || report[0].File != good {
		t.Errorf("unexpected entry %+v", report[0])
	}
	if report[1].OK || len(report[1].Errors) != 1 || report[1].Errors[0].Code != "PARSE-0007" {
		t.Errorf("unexpected entry %+v", report[1])
	}
	if report[2].OK || report[2].Error == "" {
		t.Errorf("unexpected entry %+v", report[2])
	}
}

func TestFmtCommand(t *testing.T) {
	const messy = "var   x=1;\nfunc f(){return x;}\n"
	const tidy = "var x = 1;\n\nfunc f() {\n\treturn x;\n}\n"

	t.Run("stdout", func(t *testing.T) {
		path := writeSource(t, "a.wes", messy)
		code, stdout, _ := runCLI(t, "", "fmt", path)
		if code != 0 || stdout != tidy {
			t.Errorf("exit %d, got %q", code, stdout)
		}
	})

	t.Run("list", func(t *testing.T) {
		path := writeSource(t, "a.wes", messy)
		clean := writeSource(t, "b.wes", tidy)
		code, stdout, _ := runCLI(t, "", "fmt", "-l", path, clean)
		if code != 0 || stdout != path+"\n" {
			t.Errorf("exit %d, got %q", code, stdout)
		}
	})

	t.Run("diff", func(t *testing.T) {
		path := writeSource(t, "a.wes", messy)
		code, stdout, _ := runCLI(t, "", "fmt", "-d", path)
		if code != 0 || !strings.HasPrefix(stdout, "diff "+path+"\n-1: var   x=1;\n+1: var x = 1;\n") {
			t.Errorf("exit %d, got %q", code, stdout)
		}
	})

	t.Run("write", func(t *testing.T) {
		path := writeSource(t, "a.wes", messy)
		code, stdout, _ := runCLI(t, "", "fmt", "-w", path)
		if code != 0 || stdout != "" {
			t.Errorf("exit %d, got %q", code, stdout)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != tidy {
			t.Errorf("file not rewritten: %q", data)
		}
	})

	t.Run("errors", func(t *testing.T) {
		code, _, stderr := runCLI(t, "", "fmt")
		if code != 2 || !strings.Contains(stderr, "no files specified") {
			t.Errorf("exit %d, stderr %q", code, stderr)
		}

		bad := writeSource(t, "bad.wes", "var x;\n")
		code, _, stderr = runCLI(t, "", "fmt", bad)
		if code != 1 || !strings.Contains(stderr, "Error formatting "+bad+": parse errors") {
			t.Errorf("exit %d, stderr %q", code, stderr)
		}
	})
}

func TestPrintSourceContext(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		line     int
		col      int
		expected string
	}{
		{"caret under column", []string{"x = y + z;"}, 1, 5, "    x = y + z;\n        ^\n"},
		{"leading tabs are trimmed", []string{"\t\tfoo;"}, 1, 3, "    foo;\n    ^\n"},
		{"out of range", []string{"x;"}, 3, 1, ""},
		{"no column", []string{"x;"}, 1, 0, "    x;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printSourceContext(&buf, tt.lines, tt.line, tt.col)
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}
