package format

import (
	"testing"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/parser"
)

func parserProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse %q: %v", src, errs)
	}
	return program
}

func TestSource(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "declarations",
			input:    "var   x=1;var y int;const  c='a';",
			expected: "var x = 1;\nvar y int;\nconst c = 'a';\n",
		},
		{
			name:     "grouped declarations expand",
			input:    "var a, b int = 1, 2;",
			expected: "var a int = 1, b int = 2;\n",
		},
		{
			name:     "parentheses are kept",
			input:    "x=(1+2)*3;",
			expected: "x = (1 + 2) * 3;\n",
		},
		{
			name:  "definitions get blank lines",
			input: "var a = 1;\nfunc f(a, b int) int { return a+b; }\nvar b = 2;",
			expected: `var a = 1;

func f(a int, b int) int {
	return a + b;
}

var b = 2;
`,
		},
		{
			name:  "object declaration",
			input: "object P { x, y int; next P }",
			expected: `object P {
	x, y int
	next P
}
`,
		},
		{
			name:  "if chain",
			input: "if (a) { b; } else if (c) { d; } else {}",
			expected: `if (a) {
	b;
} else if (c) {
	d;
} else {}
`,
		},
		{
			name:     "loop keywords are kept",
			input:    "while (x) { x--; }\nfor (;;) {}\nloop{break;}",
			expected: "while (x) {\n\tx--;\n}\nfor {}\nloop {\n\tbreak;\n}\n",
		},
		{
			name:     "for header",
			input:    "for(var i=0;i<3;i++,j--){continue;}",
			expected: "for (var i = 0; i < 3; i++, j--) {\n\tcontinue;\n}\n",
		},
		{
			name:     "for without init",
			input:    "for (; i < 3;) {}",
			expected: "for (; i < 3;) {}\n",
		},
		{
			name:     "blank lines collapse to one",
			input:    "var a = 1;\n\n\n\nvar b = 2;",
			expected: "var a = 1;\n\nvar b = 2;\n",
		},
		{
			name:     "nested blocks indent with tabs",
			input:    "func f() { loop { if (x) { return; } } }",
			expected: "func f() {\n\tloop {\n\t\tif (x) {\n\t\t\treturn;\n\t\t}\n\t}\n}\n",
		},
		{
			name:     "literals",
			input:    `var m = [2][2]int{{1,2},{3,4}}; var o = object{a int}{a: 1}; var l = [1, 'c', "s"];`,
			expected: "var m = [2][2]int{{1, 2}, {3, 4}};\nvar o = object{a int}{a: 1};\nvar l = [1, 'c', \"s\"];\n",
		},
		{
			name:     "escapes",
			input:    `var s = "a\"b\n"; var c = '\'';`,
			expected: "var s = \"a\\\"b\\n\";\nvar c = '\\'';\n",
		},
		{
			name:     "expressions",
			input:    "p.x.(float)+f(1,2)[0]; a,b=b,a; x+=1; c?1:2; var g = func(xs ...int) {};",
			expected: "p.x.(float) + f(1, 2)[0];\na, b = b, a;\nx += 1;\nc ? 1 : 2;\nvar g = func(xs ...int) {};\n",
		},
		{
			name:     "nested unary minus keeps a space",
			input:    "var x = - -1;",
			expected: "var x = - -1;\n",
		},
		{
			name:     "float literals",
			input:    "var f = 2.50; var g = 3.0;",
			expected: "var f = 2.5;\nvar g = 3.0;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Source(tt.input, "test.wes")
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tt.expected {
				t.Errorf("expected:\n%s\ngot:\n%s", tt.expected, got)
			}
		})
	}
}

func TestComments(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "leading comment",
			input:    "// top\nvar x = 1;",
			expected: "// top\nvar x = 1;\n",
		},
		{
			name:     "trailing comment moves to the next line",
			input:    "var x = 1; // note\nvar y = 2;",
			expected: "var x = 1;\n// note\nvar y = 2;\n",
		},
		{
			name:     "comments at the end of a block",
			input:    "func f() {\n// later\n}",
			expected: "func f() {\n\t// later\n}\n",
		},
		{
			name:     "comments at the end of the program",
			input:    "x;\n// end",
			expected: "x;\n\n// end\n",
		},
		{
			name:     "comment only",
			input:    "/* just this */",
			expected: "/* just this */\n",
		},
		{
			name:     "comments inside blocks keep indentation",
			input:    "loop {\n// first\nbreak;\n}",
			expected: "loop {\n\t// first\n\tbreak;\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Source(tt.input, "test.wes")
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tt.expected {
				t.Errorf("expected:\n%q\ngot:\n%q", tt.expected, got)
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{
		"var a = 1;\nfunc f(a, b int) int { return a+b; }\n// trailing\n",
		"object Node { val int; next Node }\nvar n = Node{val: 1, next: nil};\n",
		"for (var i = 0; i < 3; i++) { if (i % 2 == 0) { continue; } println(i); }",
		"var s = \"tab\\there\"; var c = '\\n'; x = -(-1);",
		"{ var inner = [][]int{{1}, {2, 3}}; }\n\n\nreturn inner;",
	}

	for _, input := range inputs {
		first, err := Source(input, "in.wes")
		if err != nil {
			t.Fatalf("format %q: %s", input, err)
		}
		second, err := Source(first, "in.wes")
		if err != nil {
			t.Fatalf("reformat %q: %s", first, err)
		}
		if first != second {
			t.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
		}
	}
}

func TestFormattingPreservesMeaning(t *testing.T) {
	input := "var x = 1 + 2 * 3; if (x > 2 && !done) { x <<= 1; } else { x = x.(float).(int); }"
	first, err := Source(input, "in.wes")
	if err != nil {
		t.Fatal(err)
	}

	if !parserProgram(t, input).Equals(parserProgram(t, first)) {
		t.Errorf("formatted program differs from the original:\n%s", first)
	}
}

func TestSourceError(t *testing.T) {
	_, err := Source("var x;", "bad.wes")
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Code != "PARSE-0007" || err.File != "bad.wes" {
		t.Errorf("unexpected error %s (%s)", err.Code, err.File)
	}
}

func TestFormatNode(t *testing.T) {
	expr := &ast.BinaryExpression{
		Left:     &ast.Identifier{Value: "a"},
		Operator: "+",
		Right:    &ast.IntegerLiteral{Value: 1},
	}
	if got := FormatNode(expr); got != "a + 1" {
		t.Errorf("expected %q, got %q", "a + 1", got)
	}
	stmt := &ast.BreakStatement{Token: lexer.Token{Type: lexer.BREAK, Literal: "break"}}
	if got := FormatNode(stmt); got != "break;" {
		t.Errorf("expected %q, got %q", "break;", got)
	}
	if FormatNode(nil) != "" {
		t.Error("expected empty output for nil")
	}
}

func TestPrinterTracksColumn(t *testing.T) {
	p := NewPrinter()
	p.indentInc()
	p.writeIndent()
	p.write("abc")
	if p.col != IndentWidth+3 {
		t.Errorf("expected column %d, got %d", IndentWidth+3, p.col)
	}
	p.write("x\nyz")
	if p.col != 2 {
		t.Errorf("expected column 2, got %d", p.col)
	}
	p.indentDec()
	p.indentDec()
	if p.depth != 0 {
		t.Errorf("depth went below zero: %d", p.depth)
	}
	p.Reset()
	if p.String() != "" || p.col != 0 {
		t.Error("Reset did not clear the printer")
	}
}
