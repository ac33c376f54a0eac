package wesly

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/wesly-lang/wesly/pkg/wesly/evaluator"
)

func TestEval(t *testing.T) {
	res, err := Eval("func sq(x int) int { return x * x; } sq(7);")
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Inspect() != "49" {
		t.Errorf("expected 49, got %s", res.Value.Inspect())
	}
	if res.Stats.Calls != 1 || res.Stats.Nodes == 0 {
		t.Errorf("unexpected stats %+v", res.Stats)
	}
	if res.Env == nil || res.Env.Filename != "<input>" {
		t.Errorf("expected a fresh environment named <input>")
	}
}

func TestEvalOutput(t *testing.T) {
	log := NewBufferedLogger()
	_, err := Eval(`print("a", 1); println(); println("done");`, WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(log.Lines(), []string{"a1", "done"}); diff != nil {
		t.Error(diff)
	}
	if log.String() != "a1\ndone\n" {
		t.Errorf("unexpected output %q", log.String())
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		code  string
		parse bool
	}{
		{"parse", "var x;", "PARSE-0007", true},
		{"runtime", "1 / 0;", "ARITH-0001", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Eval(tt.src, WithFilename("prog.wes"))
			we, ok := AsWeslyError(err)
			if !ok {
				t.Fatalf("expected a WeslyError, got %v", err)
			}
			if we.Code != tt.code || we.File != "prog.wes" || we.IsParseError() != tt.parse {
				t.Errorf("unexpected error %+v", we)
			}
		})
	}
}

func TestEvalOptions(t *testing.T) {
	_, err := Eval("func f() { f(); } f();", WithMaxCallDepth(10), WithLogger(NullLogger()))
	we, ok := AsWeslyError(err)
	if !ok || we.Code != "CTRL-0002" {
		t.Fatalf("expected CTRL-0002, got %v", err)
	}

	src := "var hits = 0; func hit() bool { hits++; return true; } true || hit(); hits;"
	eager, err := Eval(src)
	if err != nil {
		t.Fatal(err)
	}
	short, err := Eval(src, WithShortCircuit(true))
	if err != nil {
		t.Fatal(err)
	}
	if eager.Value.Inspect() != "1" || short.Value.Inspect() != "0" {
		t.Errorf("eager %s, short circuit %s", eager.Value.Inspect(), short.Value.Inspect())
	}
}

func TestEvalWithEnvironment(t *testing.T) {
	env := evaluator.NewEnvironment()
	env.Logger = NullLogger()
	if _, err := Eval("var total = 10;", WithEnvironment(env)); err != nil {
		t.Fatal(err)
	}
	res, err := Eval("total += 5; total;", WithEnvironment(env))
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Inspect() != "15" || res.Env != env {
		t.Errorf("environment not reused: %s", res.Value.Inspect())
	}
}

func TestEvalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.wes")
	if err := os.WriteFile(path, []byte("var a = [1, 2, 3];\nlen(a) + a[2];\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := EvalFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value.Inspect() != "6" || res.Env.Filename != path {
		t.Errorf("unexpected result %s in %s", res.Value.Inspect(), res.Env.Filename)
	}

	if _, err := EvalFile(filepath.Join(t.TempDir(), "missing.wes")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseAndCheck(t *testing.T) {
	program, err := Parse("var x = 1; x;", "a.wes")
	if err != nil {
		t.Fatal(err)
	}
	if len(program.Statements) != 2 {
		t.Errorf("expected 2 statements, got %d", len(program.Statements))
	}

	if errs := Check("var ok = 1;", "a.wes"); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	errs := Check("if (x) y;", "b.wes")
	if len(errs) != 1 || errs[0].File != "b.wes" || errs[0].Code != "PARSE-0001" {
		t.Errorf("unexpected check result %v", errs)
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	var paths []string
	for i := range 20 {
		src := "var x = 1;"
		if i%5 == 0 {
			src = "var x;"
		}
		paths = append(paths, write(strings.Repeat("f", i+1)+".wes", src))
	}
	paths = append(paths, filepath.Join(dir, "missing.wes"))

	results, err := CheckFiles(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Fatalf("result %d is for %s, want %s", i, r.Path, paths[i])
		}
		switch {
		case i == len(paths)-1:
			if r.ReadErr == nil || r.OK() {
				t.Errorf("expected a read error for %s", r.Path)
			}
		case i%5 == 0:
			if r.OK() || len(r.Errors) != 1 {
				t.Errorf("expected a syntax error for %s", r.Path)
			}
		default:
			if !r.OK() {
				t.Errorf("expected %s to pass, got %v %v", r.Path, r.ReadErr, r.Errors)
			}
		}
	}
}

func TestCheckFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CheckFiles(ctx, []string{"a.wes", "b.wes"}); err == nil {
		t.Error("expected the cancelled context to surface")
	}
}

func TestBufferedLogger(t *testing.T) {
	l := NewBufferedLogger()
	l.Log("partial", 1)
	if l.String() != "partial 1" {
		t.Errorf("unexpected pending output %q", l.String())
	}
	l.LogLine(" end")
	l.LogLine("second")
	if diff := deep.Equal(l.Lines(), []string{"partial 1 end", "second"}); diff != nil {
		t.Error(diff)
	}
	l.Reset()
	if l.String() != "" || len(l.Lines()) != 0 {
		t.Error("Reset did not clear the logger")
	}
}

func TestWriterLogger(t *testing.T) {
	var sb strings.Builder
	l := WriterLogger(&sb)
	l.Log("a", "b")
	l.LogLine("c")
	if sb.String() != "a bc\n" {
		t.Errorf("unexpected output %q", sb.String())
	}
	if StdoutLogger() != evaluator.DefaultLogger {
		t.Error("StdoutLogger should be the evaluator default")
	}
}
