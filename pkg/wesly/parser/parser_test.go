package parser

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return program
}

func statementStrings(program *ast.Program) []string {
	out := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		out[i] = s.String()
	}
	return out
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"typed var", "var x int = 5;", []string{"var x int = 5;"}},
		{"grouped values", "var a, b = 1, 2;", []string{"var a = 1, b = 2;"}},
		{"grouped type", "var a, b int;", []string{"var a int, b int;"}},
		{"mixed specs", `var a int, s = "x";`, []string{`var a int, s = "x";`}},
		{"const", "const c = 'x';", []string{"const c = 'x';"}},
		{"swap", "a, b = b, a;", []string{"a, b = b, a;"}},
		{"compound", "x += 2;", []string{"x += 2;"}},
		{"postfix", "i++; j--;", []string{"i++;", "j--;"}},
		{"object decl", "object P { x, y int; next P }", []string{"object P {x, y int; next P}"}},
		{"func decl", "func add(a, b int) int { return a + b; }", []string{"func add(a int, b int) int { return (a + b); }"}},
		{"func literal", "var f = func(xs ...int) { };", []string{"var f = func(xs ...int) {};"}},
		{"bare return", "return;", []string{"return;"}},
		{
			"if chain",
			"if (a) { b; } else if (c) { d; } else { e; }",
			[]string{"if (a) { b; } else if (c) { d; } else { e; }"},
		},
		{"infinite loop", "loop { break; }", []string{"loop { break; }"}},
		{"while loop", "loop (i < 3) { i++; }", []string{"loop ((i < 3)) { i++; }"}},
		{"while alias", "while (x) {}", []string{"loop (x) {}"}},
		{
			"for loop",
			"for (var i = 0; i < 3; i++) { continue; }",
			[]string{"loop (var i = 0; (i < 3); i++) { continue; }"},
		},
		{
			"for loop with expression init and two posts",
			"loop (i = 0; i < n; i++, j--) {}",
			[]string{"loop (i = 0; (i < n); i++, j--) {}"},
		},
		{"empty for header", "for (;;) {}", []string{"loop {}"}},
		{"nested block", "{ var x = 1; }", []string{"{ var x = 1; }"}},
		{"empty statements", ";;x;", []string{"x;"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statementStrings(parse(t, tt.input))
			if diff := deep.Equal(got, tt.expected); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3));"},
		{"(1 + 2) * 3;", "((1 + 2) * 3);"},
		{"-a * b;", "((-a) * b);"},
		{"!true == false;", "((!true) == false);"},
		{"~a & b;", "((~a) & b);"},
		{"a || b && c;", "(a || (b && c));"},
		{"a ? b : c ? d : e;", "(a ? b : (c ? d : e));"},
		{"x = a > b ? a : b;", "x = ((a > b) ? a : b);"},
		{"1 << 2 + 3;", "(1 << (2 + 3));"},
		{"a & b == c;", "(a & (b == c));"},
		{"a | b ^ c & d;", "(a | (b ^ (c & d)));"},
		{"a < b == c >= d;", "((a < b) == (c >= d));"},
		{"a - b - c;", "((a - b) - c);"},
		{"a % b * c;", "((a % b) * c);"},
		{"f(1, g(2))[0].x.y;", "f(1, g(2))[0].x.y;"},
		{"a[i][j] = b.c.d;", "a[i][j] = b.c.d;"},
		{"x.(float) + 1;", "(x.(float) + 1);"},
		{"-x.(int);", "(-x.(int));"},
		{"p.count++;", "p.count++;"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			if len(program.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(program.Statements))
			}
			if got := program.Statements[0].String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[]int{1, 2};", "[]int{1, 2};"},
		{"[2][2]int{{1, 2}, {3, 4}};", "[2][2]int{{1, 2}, {3, 4}};"},
		{"[1, 'a', \"s\"];", `[1, 'a', "s"];`},
		{"[];", "[];"},
		{"[3];", "[3];"},
		{"Point{x: 1, y: 2};", "Point{x: 1, y: 2};"},
		{"Point{};", "Point{};"},
		{"object{a int}{a: 1};", "object{a int}{a: 1};"},
		{"2.50;", "2.5;"},
		{"'';", "'';"},
		{"nil;", "nil;"},
		{"f(1, 2,);", "f(1, 2);"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			if got := program.Statements[0].String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIfBodyIsNotRecordInit(t *testing.T) {
	program := parse(t, "if (x) { y; }")
	is, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", program.Statements[0])
	}
	if _, ok := is.Condition.(*ast.Identifier); !ok {
		t.Errorf("expected identifier condition, got %T", is.Condition)
	}
}

func TestDeclaredTypes(t *testing.T) {
	tests := []struct {
		input    string
		expected types.Type
	}{
		{"var a int;", types.Int},
		{"var a P;", &types.Ref{Name: "P"}},
		{"var m [3][]string;", &types.Array{Elem: &types.Array{Elem: types.String, Length: -1}, Length: 3}},
		{
			"var f func(int, ...string) bool;",
			&types.Function{Params: []types.Type{types.Int, &types.Variadic{Elem: types.String}}, Return: types.Bool},
		},
		{"var g func();", &types.Function{Params: []types.Type{}, Return: types.Void}},
		{
			"var o object{a int; b P};",
			&types.Object{Fields: []types.Field{{Name: "a", Type: types.Int}, {Name: "b", Type: &types.Ref{Name: "P"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			decl, ok := program.Statements[0].(*ast.DeclStatement)
			if !ok {
				t.Fatalf("expected DeclStatement, got %T", program.Statements[0])
			}
			if diff := deep.Equal(decl.Specs[0].Type, tt.expected); diff != nil {
				t.Error(diff)
			}
		})
	}
}

func TestFunctionParams(t *testing.T) {
	program := parse(t, "func f(a, b int, rest ...any) {}")
	fd := program.Statements[0].(*ast.FuncDecl)

	got := fd.Function.FuncType()
	want := &types.Function{
		Params: []types.Type{types.Int, types.Int, &types.Variadic{Elem: types.Any}},
		Return: types.Void,
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
	if !got.IsVariadic() {
		t.Error("expected variadic signature")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   string
		line   int
		column int
	}{
		{"var without type or value", "var x;", "PARSE-0007", 1, 6},
		{"const without value", "const c int;", "PARSE-0005", 1, 7},
		{"variadic not last", "func f(a ...int, b int) {}", "PARSE-0006", 1, 8},
		{"too few values", "a, b = 1;", "PARSE-0008", 1, 6},
		{"compound with many targets", "a, b += 1, 2;", "PARSE-0008", 1, 6},
		{"missing operand", "1 +;", "PARSE-0002", 1, 4},
		{"unterminated string", `var x = "abc`, "PARSE-0004", 1, 9},
		{"missing block", "if (x) y;", "PARSE-0001", 1, 8},
		{"integer overflow", "99999999999999999999;", "PARSE-0003", 1, 1},
		{"unclosed block", "{ x;", "PARSE-0001", 1, 4},
		{"list without assignment", "a, b;", "PARSE-0001", 1, 5},
		{"field without type", "object P { x }", "PARSE-0007", 1, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.input))
			p.ParseProgram()
			errs := p.StructuredErrors()
			if len(errs) != 1 {
				t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), p.Errors())
			}
			err := errs[0]
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s (%s)", tt.code, err.Code, err.Message)
			}
			if err.Line != tt.line || err.Column != tt.column {
				t.Errorf("expected position %d:%d, got %d:%d", tt.line, tt.column, err.Line, err.Column)
			}
		})
	}
}

func TestOnlyFirstErrorIsKept(t *testing.T) {
	p := New(lexer.New("1 +; 2 +; var;"))
	p.ParseProgram()
	if n := len(p.StructuredErrors()); n != 1 {
		t.Errorf("expected 1 error, got %d: %v", n, p.Errors())
	}
}

func TestCommentsAreKept(t *testing.T) {
	input := `// leading
func f() {
	// inside
}
var x = 1;
// trailing
`
	program := parse(t, input)
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}

	fd := program.Statements[0].(*ast.FuncDecl)
	if diff := deep.Equal(fd.Token.LeadingComments, []string{"// leading"}); diff != nil {
		t.Errorf("leading comments: %v", diff)
	}
	if diff := deep.Equal(fd.Function.Body.EndComments, []string{"// inside"}); diff != nil {
		t.Errorf("block end comments: %v", diff)
	}
	if diff := deep.Equal(program.EndComments, []string{"// trailing"}); diff != nil {
		t.Errorf("program end comments: %v", diff)
	}
}

func TestPositionsOnNodes(t *testing.T) {
	program := parse(t, "var a = 1;\n  a = a + 2;")
	stmt := program.Statements[1].(*ast.ExpressionStatement)
	assign := stmt.Expression.(*ast.AssignExpression)

	if line, col := assign.Position(); line != 2 || col != 5 {
		t.Errorf("assignment at %d:%d, want 2:5", line, col)
	}
	bin := assign.Values[0].(*ast.BinaryExpression)
	if line, col := bin.Position(); line != 2 || col != 9 {
		t.Errorf("binary at %d:%d, want 2:9", line, col)
	}
}
