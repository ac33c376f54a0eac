package format

import (
	"strconv"
	"strings"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/parser"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// Source parses src and returns it in canonical form.
// Comments are kept; each one is moved onto its own line before the code that follows it.
func Source(src, filename string) (string, *werrors.WeslyError) {
	p := parser.New(lexer.NewWithFilename(src, filename))
	program := p.ParseProgram()
	if errs := p.StructuredErrors(); len(errs) > 0 {
		return "", errs[0].WithFile(filename)
	}
	return FormatProgram(program), nil
}

// FormatProgram formats an entire program. The result ends with a newline
// unless the program is empty.
func FormatProgram(prog *ast.Program) string {
	if prog == nil || (len(prog.Statements) == 0 && len(prog.EndComments) == 0) {
		return ""
	}
	p := NewPrinter()
	p.formatStatements(prog.Statements, true)
	if len(prog.EndComments) > 0 {
		if len(prog.Statements) > 0 {
			p.newline()
		}
		p.writeComments(prog.EndComments)
	}
	return p.String()
}

// FormatNode formats a single node at indentation zero
func FormatNode(node ast.Node) string {
	if node == nil {
		return ""
	}
	p := NewPrinter()
	switch n := node.(type) {
	case *ast.Program:
		return FormatProgram(n)
	case ast.Statement:
		p.formatStatement(n)
	case ast.Expression:
		p.formatExpression(n)
	}
	return p.String()
}

// statementToken is the first token of a statement, which carries its comments
func statementToken(stmt ast.Statement) lexer.Token {
	switch s := stmt.(type) {
	case *ast.DeclStatement:
		return s.Token
	case *ast.FuncDecl:
		return s.Token
	case *ast.ObjectDecl:
		return s.Token
	case *ast.BlockStatement:
		return s.Token
	case *ast.ExpressionStatement:
		return s.Token
	case *ast.ReturnStatement:
		return s.Token
	case *ast.BreakStatement:
		return s.Token
	case *ast.ContinueStatement:
		return s.Token
	case *ast.IfStatement:
		return s.Token
	case *ast.LoopStatement:
		return s.Token
	}
	return lexer.Token{}
}

func isDefinition(stmt ast.Statement) bool {
	switch stmt.(type) {
	case *ast.FuncDecl, *ast.ObjectDecl:
		return true
	}
	return false
}

// formatStatements writes one statement per line, each ending in a newline.
// Blank lines in the source are kept (collapsed to one); at top level a blank
// line also separates definitions from their neighbours.
func (p *Printer) formatStatements(stmts []ast.Statement, topLevel bool) {
	for i, stmt := range stmts {
		tok := statementToken(stmt)
		if i > 0 {
			blank := tok.BlankLinesBefore > 0
			if topLevel && (isDefinition(stmt) || isDefinition(stmts[i-1])) {
				blank = true
			}
			if blank {
				for range BlankLinesBetweenDefs {
					p.newline()
				}
			}
		}
		p.writeComments(tok.LeadingComments)
		p.writeIndent()
		p.formatStatement(stmt)
		p.newline()
	}
}

// ============================================================================
// Statements
// ============================================================================

func (p *Printer) formatStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.DeclStatement:
		p.formatDecl(s)
		p.write(";")
	case *ast.FuncDecl:
		p.write("func " + s.Name.Value)
		p.formatFunctionRest(s.Function)
	case *ast.ObjectDecl:
		p.formatObjectDecl(s)
	case *ast.BlockStatement:
		p.formatBlock(s)
	case *ast.ExpressionStatement:
		if s.Expression != nil {
			p.formatExpression(s.Expression)
		}
		p.write(";")
	case *ast.ReturnStatement:
		p.write("return")
		if s.Value != nil {
			p.write(" ")
			p.formatExpression(s.Value)
		}
		p.write(";")
	case *ast.BreakStatement:
		p.write("break;")
	case *ast.ContinueStatement:
		p.write("continue;")
	case *ast.IfStatement:
		p.formatIf(s)
	case *ast.LoopStatement:
		p.formatLoop(s)
	}
}

// formatDecl writes a declaration without its terminating semicolon
func (p *Printer) formatDecl(ds *ast.DeclStatement) {
	if ds.Const {
		p.write("const ")
	} else {
		p.write("var ")
	}
	for i, spec := range ds.Specs {
		if i > 0 {
			p.write(", ")
		}
		p.write(spec.Name.Value)
		if spec.Type != nil {
			p.write(" " + formatType(spec.Type))
		}
		if spec.Value != nil {
			p.write(" = ")
			p.formatExpression(spec.Value)
		}
	}
}

func (p *Printer) formatObjectDecl(od *ast.ObjectDecl) {
	p.write("object " + od.Name.Value + " {")
	if len(od.Fields) == 0 {
		p.write("}")
		return
	}
	p.newline()
	p.indentInc()
	for _, f := range od.Fields {
		names := make([]string, len(f.Names))
		for i, n := range f.Names {
			names[i] = n.Value
		}
		p.writeIndent()
		p.write(strings.Join(names, ", ") + " " + formatType(f.Type))
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

func (p *Printer) formatBlock(bs *ast.BlockStatement) {
	if len(bs.Statements) == 0 && len(bs.EndComments) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.newline()
	p.indentInc()
	p.formatStatements(bs.Statements, false)
	p.writeComments(bs.EndComments)
	p.indentDec()
	p.writeIndent()
	p.write("}")
}

func (p *Printer) formatIf(is *ast.IfStatement) {
	p.write("if (")
	p.formatExpression(is.Condition)
	p.write(") ")
	p.formatBlock(is.Consequence)
	if is.Alternative == nil {
		return
	}
	p.write(" else ")
	switch alt := is.Alternative.(type) {
	case *ast.IfStatement:
		p.formatIf(alt)
	case *ast.BlockStatement:
		p.formatBlock(alt)
	default:
		p.formatStatement(alt)
	}
}

func (p *Printer) formatLoop(ls *ast.LoopStatement) {
	p.write(ls.Token.Literal)
	switch ls.LoopKind {
	case ast.LoopWhile:
		p.write(" (")
		p.formatExpression(ls.Condition)
		p.write(")")
	case ast.LoopFor:
		p.write(" (")
		p.formatSimpleStatement(ls.Init)
		p.write(";")
		if ls.Condition != nil {
			p.write(" ")
			p.formatExpression(ls.Condition)
		}
		p.write(";")
		if len(ls.Post) > 0 {
			p.write(" ")
			p.formatExpressionList(ls.Post)
		}
		p.write(")")
	}
	p.write(" ")
	p.formatBlock(ls.Body)
}

// formatSimpleStatement writes a loop init clause without a semicolon
func (p *Printer) formatSimpleStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil:
	case *ast.DeclStatement:
		p.formatDecl(s)
	case *ast.ExpressionStatement:
		if s.Expression != nil {
			p.formatExpression(s.Expression)
		}
	}
}

// ============================================================================
// Expressions
// ============================================================================

func (p *Printer) formatExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Identifier:
		p.write(e.Value)
	case *ast.IntegerLiteral:
		p.write(strconv.FormatInt(e.Value, 10))
	case *ast.FloatLiteral:
		p.write(ast.FormatFloat(e.Value))
	case *ast.CharLiteral:
		p.write(quoteChar(e.Value))
	case *ast.StringLiteral:
		p.write(quoteString(e.Value))
	case *ast.BooleanLiteral:
		p.write(strconv.FormatBool(e.Value))
	case *ast.NilLiteral:
		p.write("nil")
	case *ast.ArrayLiteral:
		p.formatArrayLiteral(e)
	case *ast.FuncLiteral:
		p.write("func")
		p.formatFunctionRest(e)
	case *ast.ObjectInit:
		p.write(e.Name.Value)
		p.formatFieldValues(e.Fields)
	case *ast.InlineObjectInit:
		p.write(formatType(e.Type))
		p.formatFieldValues(e.Fields)
	case *ast.GroupExpression:
		p.write("(")
		p.formatExpression(e.Expression)
		p.write(")")
	case *ast.UnaryExpression:
		p.write(e.Operator)
		if inner, ok := e.Right.(*ast.UnaryExpression); ok && (e.Operator == "-" || e.Operator == "+") &&
			(inner.Operator == "-" || inner.Operator == "+") {
			// keep '- -x' from lexing as '--'
			p.write(" ")
		}
		p.formatExpression(e.Right)
	case *ast.BinaryExpression:
		p.formatExpression(e.Left)
		p.write(" " + e.Operator + " ")
		p.formatExpression(e.Right)
	case *ast.LogicalExpression:
		p.formatExpression(e.Left)
		p.write(" " + e.Operator + " ")
		p.formatExpression(e.Right)
	case *ast.AssignExpression:
		p.formatExpressionList(e.Targets)
		p.write(" " + e.Operator + " ")
		p.formatExpressionList(e.Values)
	case *ast.UpdateExpression:
		p.formatExpression(e.Target)
		p.write(e.Operator)
	case *ast.ConditionalExpression:
		p.formatExpression(e.Condition)
		p.write(" ? ")
		p.formatExpression(e.Consequence)
		p.write(" : ")
		p.formatExpression(e.Alternative)
	case *ast.CastExpression:
		p.formatExpression(e.Value)
		p.write(".(" + formatType(e.Type) + ")")
	case *ast.CallExpression:
		p.formatExpression(e.Function)
		p.write("(")
		p.formatExpressionList(e.Arguments)
		p.write(")")
	case *ast.ArrayMember:
		p.formatExpression(e.Array)
		for _, idx := range e.Indices {
			p.write("[")
			p.formatExpression(idx)
			p.write("]")
		}
	case *ast.ObjectMember:
		p.formatExpression(e.Object)
		for _, f := range e.Fields {
			p.write("." + f.Value)
		}
	default:
		if expr != nil {
			p.write(expr.String())
		}
	}
}

func (p *Printer) formatExpressionList(exprs []ast.Expression) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.formatExpression(e)
	}
}

func (p *Printer) formatArrayLiteral(al *ast.ArrayLiteral) {
	switch {
	case al.Row:
		p.write("{")
	case al.Type != nil:
		p.write(formatType(al.Type) + "{")
	default:
		p.write("[")
		p.formatExpressionList(al.Elements)
		p.write("]")
		return
	}
	p.formatExpressionList(al.Elements)
	p.write("}")
}

func (p *Printer) formatFieldValues(fields []*ast.FieldValue) {
	p.write("{")
	for i, f := range fields {
		if i > 0 {
			p.write(", ")
		}
		p.write(f.Name.Value + ": ")
		p.formatExpression(f.Value)
	}
	p.write("}")
}

// formatFunctionRest writes '(params) ret { body }'
func (p *Printer) formatFunctionRest(fl *ast.FuncLiteral) {
	p.write("(")
	for i, param := range fl.Params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name.Value + " " + formatType(param.Type))
	}
	p.write(")")
	if fl.Return != nil && fl.Return != types.Void {
		p.write(" " + formatType(fl.Return))
	}
	p.write(" ")
	p.formatBlock(fl.Body)
}

func formatType(t types.Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

// quoteString renders a string literal using the escapes the lexer understands
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func quoteChar(r rune) string {
	switch r {
	case 0:
		return "''"
	case '\'':
		return `'\''`
	case '\\':
		return `'\\'`
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case '\r':
		return `'\r'`
	}
	return "'" + string(r) + "'"
}
