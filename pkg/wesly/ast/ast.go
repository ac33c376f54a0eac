package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// Node represents any node in the AST
type Node interface {
	TokenLiteral() string
	String() string
	Kind() Kind
	Copy() Node
	Equals(other Node) bool
	Position() (line, column int)
}

// Statement represents statement nodes
type Statement interface {
	Node
	statementNode()
}

// Expression represents expression nodes
type Expression interface {
	Node
	expressionNode()
}

// sameNode is structural equality: same kind and same canonical rendering.
// Positions are deliberately not compared.
func sameNode(a, b Node) bool {
	if b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
}

func copyExpr(e Expression) Expression {
	if e == nil {
		return nil
	}
	return e.Copy().(Expression)
}

func copyStmt(s Statement) Statement {
	if s == nil {
		return nil
	}
	return s.Copy().(Statement)
}

func copyExprs(es []Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = copyExpr(e)
	}
	return out
}

func copyBlock(b *BlockStatement) *BlockStatement {
	if b == nil {
		return nil
	}
	return b.Copy().(*BlockStatement)
}

func copyType(t types.Type) types.Type {
	if t == nil {
		return nil
	}
	return t.Copy()
}

func joinExprs(es []Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Program represents the root node of every AST
type Program struct {
	Statements  []Statement
	EndComments []string // comments after the last statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

func (p *Program) Kind() Kind { return KindProgram }

func (p *Program) Copy() Node {
	stmts := make([]Statement, len(p.Statements))
	for i, s := range p.Statements {
		stmts[i] = copyStmt(s)
	}
	return &Program{Statements: stmts, EndComments: p.EndComments}
}

func (p *Program) Equals(o Node) bool { return sameNode(p, o) }

func (p *Program) Position() (int, int) {
	if len(p.Statements) > 0 {
		return p.Statements[0].Position()
	}
	return 0, 0
}

// ============================================================================
// Declarations
// ============================================================================

// ValueSpec is one 'name [type] [= value]' entry of a var or const declaration
type ValueSpec struct {
	Name  *Identifier
	Type  types.Type // nil when inferred from the value
	Value Expression // nil when the declaration has no initializer
}

func (vs *ValueSpec) copy() *ValueSpec {
	return &ValueSpec{
		Name:  vs.Name.Copy().(*Identifier),
		Type:  copyType(vs.Type),
		Value: copyExpr(vs.Value),
	}
}

func (vs *ValueSpec) String() string {
	var out bytes.Buffer
	out.WriteString(vs.Name.String())
	if vs.Type != nil {
		out.WriteString(" " + vs.Type.String())
	}
	if vs.Value != nil {
		out.WriteString(" = " + vs.Value.String())
	}
	return out.String()
}

// DeclStatement represents 'var a int = 1, b = 2;' and 'const c = 3;'
type DeclStatement struct {
	Token lexer.Token // the 'var' or 'const' token
	Const bool
	Specs []*ValueSpec
}

func (ds *DeclStatement) statementNode()       {}
func (ds *DeclStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DeclStatement) Kind() Kind {
	if ds.Const {
		return KindConstDecl
	}
	return KindVarDecl
}
func (ds *DeclStatement) Position() (int, int) { return ds.Token.Line, ds.Token.Column }
func (ds *DeclStatement) Equals(o Node) bool   { return sameNode(ds, o) }

func (ds *DeclStatement) Copy() Node {
	specs := make([]*ValueSpec, len(ds.Specs))
	for i, s := range ds.Specs {
		specs[i] = s.copy()
	}
	return &DeclStatement{Token: ds.Token, Const: ds.Const, Specs: specs}
}

func (ds *DeclStatement) String() string {
	keyword := "var"
	if ds.Const {
		keyword = "const"
	}
	parts := make([]string, len(ds.Specs))
	for i, s := range ds.Specs {
		parts[i] = s.String()
	}
	return keyword + " " + strings.Join(parts, ", ") + ";"
}

// FuncDecl represents 'func name(params) ret { body }'
type FuncDecl struct {
	Token    lexer.Token // the 'func' token
	Name     *Identifier
	Function *FuncLiteral
}

func (fd *FuncDecl) statementNode()       {}
func (fd *FuncDecl) TokenLiteral() string { return fd.Token.Literal }
func (fd *FuncDecl) Kind() Kind           { return KindFuncDecl }
func (fd *FuncDecl) Position() (int, int) { return fd.Token.Line, fd.Token.Column }
func (fd *FuncDecl) Equals(o Node) bool   { return sameNode(fd, o) }

func (fd *FuncDecl) Copy() Node {
	return &FuncDecl{
		Token:    fd.Token,
		Name:     fd.Name.Copy().(*Identifier),
		Function: fd.Function.Copy().(*FuncLiteral),
	}
}

func (fd *FuncDecl) String() string {
	return "func " + fd.Name.String() + fd.Function.signature() + " " + fd.Function.Body.String()
}

// FieldDecl is one 'a, b type' group inside an object declaration
type FieldDecl struct {
	Names []*Identifier
	Type  types.Type
}

func (fd *FieldDecl) String() string {
	names := make([]string, len(fd.Names))
	for i, n := range fd.Names {
		names[i] = n.String()
	}
	return strings.Join(names, ", ") + " " + fd.Type.String()
}

func copyFields(fields []*FieldDecl) []*FieldDecl {
	out := make([]*FieldDecl, len(fields))
	for i, f := range fields {
		names := make([]*Identifier, len(f.Names))
		for j, n := range f.Names {
			names[j] = n.Copy().(*Identifier)
		}
		out[i] = &FieldDecl{Names: names, Type: copyType(f.Type)}
	}
	return out
}

// FieldTypes flattens grouped field declarations into the ordered record field list
func FieldTypes(fields []*FieldDecl) []types.Field {
	var out []types.Field
	for _, f := range fields {
		for _, n := range f.Names {
			out = append(out, types.Field{Name: n.Value, Type: copyType(f.Type)})
		}
	}
	return out
}

// ObjectDecl represents 'object User { id int; name string }'
type ObjectDecl struct {
	Token  lexer.Token // the 'object' token
	Name   *Identifier
	Fields []*FieldDecl
}

func (od *ObjectDecl) statementNode()       {}
func (od *ObjectDecl) TokenLiteral() string { return od.Token.Literal }
func (od *ObjectDecl) Kind() Kind           { return KindObjectDecl }
func (od *ObjectDecl) Position() (int, int) { return od.Token.Line, od.Token.Column }
func (od *ObjectDecl) Equals(o Node) bool   { return sameNode(od, o) }

func (od *ObjectDecl) Copy() Node {
	return &ObjectDecl{Token: od.Token, Name: od.Name.Copy().(*Identifier), Fields: copyFields(od.Fields)}
}

func (od *ObjectDecl) String() string {
	parts := make([]string, len(od.Fields))
	for i, f := range od.Fields {
		parts[i] = f.String()
	}
	return "object " + od.Name.String() + " {" + strings.Join(parts, "; ") + "}"
}

// ============================================================================
// Statements
// ============================================================================

// BlockStatement represents block statements like '{...}'
type BlockStatement struct {
	Token       lexer.Token // the '{' token
	Statements  []Statement
	EndComments []string // comments before the closing '}'
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Kind() Kind           { return KindBlock }
func (bs *BlockStatement) Position() (int, int) { return bs.Token.Line, bs.Token.Column }
func (bs *BlockStatement) Equals(o Node) bool   { return sameNode(bs, o) }

func (bs *BlockStatement) Copy() Node {
	stmts := make([]Statement, len(bs.Statements))
	for i, s := range bs.Statements {
		stmts[i] = copyStmt(s)
	}
	return &BlockStatement{Token: bs.Token, Statements: stmts, EndComments: bs.EndComments}
}

func (bs *BlockStatement) String() string {
	if len(bs.Statements) == 0 {
		return "{}"
	}
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// ExpressionStatement represents expression statements
type ExpressionStatement struct {
	Token      lexer.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Kind() Kind           { return KindExpressionStmt }
func (es *ExpressionStatement) Position() (int, int) { return es.Token.Line, es.Token.Column }
func (es *ExpressionStatement) Equals(o Node) bool   { return sameNode(es, o) }

func (es *ExpressionStatement) Copy() Node {
	return &ExpressionStatement{Token: es.Token, Expression: copyExpr(es.Expression)}
}

func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ";"
}

// ReturnStatement represents 'return;' and 'return x;'
type ReturnStatement struct {
	Token lexer.Token // the 'return' token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Kind() Kind           { return KindReturn }
func (rs *ReturnStatement) Position() (int, int) { return rs.Token.Line, rs.Token.Column }
func (rs *ReturnStatement) Equals(o Node) bool   { return sameNode(rs, o) }

func (rs *ReturnStatement) Copy() Node {
	return &ReturnStatement{Token: rs.Token, Value: copyExpr(rs.Value)}
}

func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

// BreakStatement represents 'break;'
type BreakStatement struct {
	Token lexer.Token
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Kind() Kind           { return KindBreak }
func (bs *BreakStatement) Position() (int, int) { return bs.Token.Line, bs.Token.Column }
func (bs *BreakStatement) Equals(o Node) bool   { return sameNode(bs, o) }
func (bs *BreakStatement) Copy() Node           { return &BreakStatement{Token: bs.Token} }
func (bs *BreakStatement) String() string       { return "break;" }

// ContinueStatement represents 'continue;'
type ContinueStatement struct {
	Token lexer.Token
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Kind() Kind           { return KindContinue }
func (cs *ContinueStatement) Position() (int, int) { return cs.Token.Line, cs.Token.Column }
func (cs *ContinueStatement) Equals(o Node) bool   { return sameNode(cs, o) }
func (cs *ContinueStatement) Copy() Node           { return &ContinueStatement{Token: cs.Token} }
func (cs *ContinueStatement) String() string       { return "continue;" }

// IfStatement represents 'if (cond) { } else { }'; Alternative is a block, another if, or nil
type IfStatement struct {
	Token       lexer.Token // the 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Kind() Kind           { return KindIf }
func (is *IfStatement) Position() (int, int) { return is.Token.Line, is.Token.Column }
func (is *IfStatement) Equals(o Node) bool   { return sameNode(is, o) }

func (is *IfStatement) Copy() Node {
	return &IfStatement{
		Token:       is.Token,
		Condition:   copyExpr(is.Condition),
		Consequence: copyBlock(is.Consequence),
		Alternative: copyStmt(is.Alternative),
	}
}

func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (" + is.Condition.String() + ") " + is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else " + is.Alternative.String())
	}
	return out.String()
}

// LoopStatement represents the three loop shapes
type LoopStatement struct {
	Token     lexer.Token // the 'loop', 'for' or 'while' token
	LoopKind  LoopKind
	Init      Statement    // LoopFor only, may be nil
	Condition Expression   // LoopWhile and LoopFor, may be nil for LoopFor
	Post      []Expression // LoopFor only
	Body      *BlockStatement
}

func (ls *LoopStatement) statementNode()       {}
func (ls *LoopStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LoopStatement) Kind() Kind           { return KindLoop }
func (ls *LoopStatement) Position() (int, int) { return ls.Token.Line, ls.Token.Column }
func (ls *LoopStatement) Equals(o Node) bool   { return sameNode(ls, o) }

func (ls *LoopStatement) Copy() Node {
	return &LoopStatement{
		Token:     ls.Token,
		LoopKind:  ls.LoopKind,
		Init:      copyStmt(ls.Init),
		Condition: copyExpr(ls.Condition),
		Post:      copyExprs(ls.Post),
		Body:      copyBlock(ls.Body),
	}
}

func (ls *LoopStatement) String() string {
	switch ls.LoopKind {
	case LoopWhile:
		return "loop (" + ls.Condition.String() + ") " + ls.Body.String()
	case LoopFor:
		var out bytes.Buffer
		out.WriteString("loop (")
		if ls.Init != nil {
			out.WriteString(strings.TrimSuffix(ls.Init.String(), ";"))
		}
		out.WriteString("; ")
		if ls.Condition != nil {
			out.WriteString(ls.Condition.String())
		}
		out.WriteString("; ")
		out.WriteString(joinExprs(ls.Post))
		out.WriteString(") ")
		out.WriteString(ls.Body.String())
		return out.String()
	}
	return "loop " + ls.Body.String()
}

// ============================================================================
// Expressions
// ============================================================================

// Identifier represents identifier expressions
type Identifier struct {
	Token lexer.Token // the lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Kind() Kind           { return KindIdentifier }
func (i *Identifier) Position() (int, int) { return i.Token.Line, i.Token.Column }
func (i *Identifier) Equals(o Node) bool   { return sameNode(i, o) }
func (i *Identifier) Copy() Node           { return &Identifier{Token: i.Token, Value: i.Value} }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral represents integer literals
type IntegerLiteral struct {
	Token lexer.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Kind() Kind           { return KindIntegerLiteral }
func (il *IntegerLiteral) Position() (int, int) { return il.Token.Line, il.Token.Column }
func (il *IntegerLiteral) Equals(o Node) bool   { return sameNode(il, o) }
func (il *IntegerLiteral) Copy() Node           { return &IntegerLiteral{Token: il.Token, Value: il.Value} }
func (il *IntegerLiteral) String() string       { return strconv.FormatInt(il.Value, 10) }

// FloatLiteral represents float literals
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()      {}
func (fl *FloatLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLiteral) Kind() Kind           { return KindFloatLiteral }
func (fl *FloatLiteral) Position() (int, int) { return fl.Token.Line, fl.Token.Column }
func (fl *FloatLiteral) Equals(o Node) bool   { return sameNode(fl, o) }
func (fl *FloatLiteral) Copy() Node           { return &FloatLiteral{Token: fl.Token, Value: fl.Value} }
func (fl *FloatLiteral) String() string       { return FormatFloat(fl.Value) }

// FormatFloat renders a float so that it always reads back as a float
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// CharLiteral represents 'a'; the zero char renders as ''
type CharLiteral struct {
	Token lexer.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()      {}
func (cl *CharLiteral) TokenLiteral() string { return cl.Token.Literal }
func (cl *CharLiteral) Kind() Kind           { return KindCharLiteral }
func (cl *CharLiteral) Position() (int, int) { return cl.Token.Line, cl.Token.Column }
func (cl *CharLiteral) Equals(o Node) bool   { return sameNode(cl, o) }
func (cl *CharLiteral) Copy() Node           { return &CharLiteral{Token: cl.Token, Value: cl.Value} }
func (cl *CharLiteral) String() string {
	if cl.Value == 0 {
		return "''"
	}
	return strconv.QuoteRune(cl.Value)
}

// StringLiteral represents string literals
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Kind() Kind           { return KindStringLiteral }
func (sl *StringLiteral) Position() (int, int) { return sl.Token.Line, sl.Token.Column }
func (sl *StringLiteral) Equals(o Node) bool   { return sameNode(sl, o) }
func (sl *StringLiteral) Copy() Node           { return &StringLiteral{Token: sl.Token, Value: sl.Value} }
func (sl *StringLiteral) String() string       { return strconv.Quote(sl.Value) }

// BooleanLiteral represents true and false
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Kind() Kind           { return KindBooleanLiteral }
func (bl *BooleanLiteral) Position() (int, int) { return bl.Token.Line, bl.Token.Column }
func (bl *BooleanLiteral) Equals(o Node) bool   { return sameNode(bl, o) }
func (bl *BooleanLiteral) Copy() Node           { return &BooleanLiteral{Token: bl.Token, Value: bl.Value} }
func (bl *BooleanLiteral) String() string       { return strconv.FormatBool(bl.Value) }

// NilLiteral represents nil
type NilLiteral struct {
	Token lexer.Token
}

func (nl *NilLiteral) expressionNode()      {}
func (nl *NilLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NilLiteral) Kind() Kind           { return KindNilLiteral }
func (nl *NilLiteral) Position() (int, int) { return nl.Token.Line, nl.Token.Column }
func (nl *NilLiteral) Equals(o Node) bool   { return sameNode(nl, o) }
func (nl *NilLiteral) Copy() Node           { return &NilLiteral{Token: nl.Token} }
func (nl *NilLiteral) String() string       { return "nil" }

// ArrayLiteral represents '[]int{1, 2}', '[2]int{1, 2}' and bare '[1, 2]'.
// Nested '{...}' rows inside a typed literal are ArrayLiterals with Row set.
type ArrayLiteral struct {
	Token    lexer.Token
	Type     *types.Array // nil for a bare literal
	Row      bool
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Kind() Kind           { return KindArrayLiteral }
func (al *ArrayLiteral) Position() (int, int) { return al.Token.Line, al.Token.Column }
func (al *ArrayLiteral) Equals(o Node) bool   { return sameNode(al, o) }

func (al *ArrayLiteral) Copy() Node {
	c := &ArrayLiteral{Token: al.Token, Row: al.Row, Elements: copyExprs(al.Elements)}
	if al.Type != nil {
		c.Type = al.Type.Copy().(*types.Array)
	}
	return c
}

func (al *ArrayLiteral) String() string {
	switch {
	case al.Row:
		return "{" + joinExprs(al.Elements) + "}"
	case al.Type != nil:
		return al.Type.String() + "{" + joinExprs(al.Elements) + "}"
	}
	return "[" + joinExprs(al.Elements) + "]"
}

// Param is one declared function parameter
type Param struct {
	Name *Identifier
	Type types.Type
}

// FuncLiteral represents 'func(a int, b ...any) int { body }'
type FuncLiteral struct {
	Token  lexer.Token // the 'func' token
	Params []*Param
	Return types.Type // nil means void
	Body   *BlockStatement
}

func (fl *FuncLiteral) expressionNode()      {}
func (fl *FuncLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FuncLiteral) Kind() Kind           { return KindFuncLiteral }
func (fl *FuncLiteral) Position() (int, int) { return fl.Token.Line, fl.Token.Column }
func (fl *FuncLiteral) Equals(o Node) bool   { return sameNode(fl, o) }

func (fl *FuncLiteral) Copy() Node {
	params := make([]*Param, len(fl.Params))
	for i, p := range fl.Params {
		params[i] = &Param{Name: p.Name.Copy().(*Identifier), Type: copyType(p.Type)}
	}
	return &FuncLiteral{Token: fl.Token, Params: params, Return: copyType(fl.Return), Body: copyBlock(fl.Body)}
}

func (fl *FuncLiteral) signature() string {
	params := make([]string, len(fl.Params))
	for i, p := range fl.Params {
		params[i] = p.Name.String() + " " + p.Type.String()
	}
	ret := ""
	if fl.Return != nil && fl.Return != types.Void {
		ret = " " + fl.Return.String()
	}
	return "(" + strings.Join(params, ", ") + ")" + ret
}

func (fl *FuncLiteral) String() string {
	return "func" + fl.signature() + " " + fl.Body.String()
}

// FuncType is the function type descriptor of the literal
func (fl *FuncLiteral) FuncType() *types.Function {
	params := make([]types.Type, len(fl.Params))
	for i, p := range fl.Params {
		params[i] = copyType(p.Type)
	}
	ret := fl.Return
	if ret == nil {
		ret = types.Void
	}
	return &types.Function{Params: params, Return: copyType(ret)}
}

// FieldValue is one 'name: value' pair in a record initializer
type FieldValue struct {
	Name  *Identifier
	Value Expression
}

func copyFieldValues(fvs []*FieldValue) []*FieldValue {
	out := make([]*FieldValue, len(fvs))
	for i, fv := range fvs {
		out[i] = &FieldValue{Name: fv.Name.Copy().(*Identifier), Value: copyExpr(fv.Value)}
	}
	return out
}

func fieldValuesString(fvs []*FieldValue) string {
	parts := make([]string, len(fvs))
	for i, fv := range fvs {
		parts[i] = fv.Name.String() + ": " + fv.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ObjectInit represents 'User{id: 1, name: "x"}'
type ObjectInit struct {
	Token  lexer.Token // the type name token
	Name   *Identifier
	Fields []*FieldValue
}

func (oi *ObjectInit) expressionNode()      {}
func (oi *ObjectInit) TokenLiteral() string { return oi.Token.Literal }
func (oi *ObjectInit) Kind() Kind           { return KindObjectInit }
func (oi *ObjectInit) Position() (int, int) { return oi.Token.Line, oi.Token.Column }
func (oi *ObjectInit) Equals(o Node) bool   { return sameNode(oi, o) }

func (oi *ObjectInit) Copy() Node {
	return &ObjectInit{Token: oi.Token, Name: oi.Name.Copy().(*Identifier), Fields: copyFieldValues(oi.Fields)}
}

func (oi *ObjectInit) String() string { return oi.Name.String() + fieldValuesString(oi.Fields) }

// InlineObjectInit represents an anonymous record 'object{a int}{a: 1}'
type InlineObjectInit struct {
	Token  lexer.Token // the 'object' token
	Type   *types.Object
	Fields []*FieldValue
}

func (io *InlineObjectInit) expressionNode()      {}
func (io *InlineObjectInit) TokenLiteral() string { return io.Token.Literal }
func (io *InlineObjectInit) Kind() Kind           { return KindInlineObjectInit }
func (io *InlineObjectInit) Position() (int, int) { return io.Token.Line, io.Token.Column }
func (io *InlineObjectInit) Equals(o Node) bool   { return sameNode(io, o) }

func (io *InlineObjectInit) Copy() Node {
	return &InlineObjectInit{Token: io.Token, Type: io.Type.Copy().(*types.Object), Fields: copyFieldValues(io.Fields)}
}

func (io *InlineObjectInit) String() string {
	return io.Type.String() + fieldValuesString(io.Fields)
}

// GroupExpression represents '(expr)'
type GroupExpression struct {
	Token      lexer.Token // the '(' token
	Expression Expression
}

func (ge *GroupExpression) expressionNode()      {}
func (ge *GroupExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupExpression) Kind() Kind           { return KindGroup }
func (ge *GroupExpression) Position() (int, int) { return ge.Token.Line, ge.Token.Column }
func (ge *GroupExpression) Equals(o Node) bool   { return sameNode(ge, o) }
func (ge *GroupExpression) Copy() Node {
	return &GroupExpression{Token: ge.Token, Expression: copyExpr(ge.Expression)}
}
func (ge *GroupExpression) String() string { return "(" + ge.Expression.String() + ")" }

// UnaryExpression represents '-x', '!x', '~x' and '+x'
type UnaryExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Right    Expression
}

func (ue *UnaryExpression) expressionNode()      {}
func (ue *UnaryExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UnaryExpression) Kind() Kind           { return KindUnary }
func (ue *UnaryExpression) Position() (int, int) { return ue.Token.Line, ue.Token.Column }
func (ue *UnaryExpression) Equals(o Node) bool   { return sameNode(ue, o) }
func (ue *UnaryExpression) Copy() Node {
	return &UnaryExpression{Token: ue.Token, Operator: ue.Operator, Right: copyExpr(ue.Right)}
}
func (ue *UnaryExpression) String() string { return "(" + ue.Operator + ue.Right.String() + ")" }

// BinaryExpression represents arithmetic, bitwise, comparison and equality operators
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Kind() Kind           { return KindBinary }
func (be *BinaryExpression) Position() (int, int) { return be.Token.Line, be.Token.Column }
func (be *BinaryExpression) Equals(o Node) bool   { return sameNode(be, o) }
func (be *BinaryExpression) Copy() Node {
	return &BinaryExpression{Token: be.Token, Left: copyExpr(be.Left), Operator: be.Operator, Right: copyExpr(be.Right)}
}
func (be *BinaryExpression) String() string {
	return "(" + be.Left.String() + " " + be.Operator + " " + be.Right.String() + ")"
}

// LogicalExpression represents '&&' and '||'
type LogicalExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (le *LogicalExpression) expressionNode()      {}
func (le *LogicalExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LogicalExpression) Kind() Kind           { return KindLogical }
func (le *LogicalExpression) Position() (int, int) { return le.Token.Line, le.Token.Column }
func (le *LogicalExpression) Equals(o Node) bool   { return sameNode(le, o) }
func (le *LogicalExpression) Copy() Node {
	return &LogicalExpression{Token: le.Token, Left: copyExpr(le.Left), Operator: le.Operator, Right: copyExpr(le.Right)}
}
func (le *LogicalExpression) String() string {
	return "(" + le.Left.String() + " " + le.Operator + " " + le.Right.String() + ")"
}

// AssignExpression represents 'a = 1', 'a += 1' and 'a, b = b, a'
type AssignExpression struct {
	Token    lexer.Token // the assignment operator token
	Operator string      // "=", "+=", ...
	Targets  []Expression
	Values   []Expression
}

func (ae *AssignExpression) expressionNode()      {}
func (ae *AssignExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignExpression) Kind() Kind           { return KindAssign }
func (ae *AssignExpression) Position() (int, int) { return ae.Token.Line, ae.Token.Column }
func (ae *AssignExpression) Equals(o Node) bool   { return sameNode(ae, o) }
func (ae *AssignExpression) Copy() Node {
	return &AssignExpression{Token: ae.Token, Operator: ae.Operator, Targets: copyExprs(ae.Targets), Values: copyExprs(ae.Values)}
}
func (ae *AssignExpression) String() string {
	return joinExprs(ae.Targets) + " " + ae.Operator + " " + joinExprs(ae.Values)
}

// UpdateExpression represents postfix 'x++' and 'x--'
type UpdateExpression struct {
	Token    lexer.Token // the '++' or '--' token
	Operator string
	Target   Expression
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) Kind() Kind           { return KindUpdate }
func (ue *UpdateExpression) Position() (int, int) { return ue.Token.Line, ue.Token.Column }
func (ue *UpdateExpression) Equals(o Node) bool   { return sameNode(ue, o) }
func (ue *UpdateExpression) Copy() Node {
	return &UpdateExpression{Token: ue.Token, Operator: ue.Operator, Target: copyExpr(ue.Target)}
}
func (ue *UpdateExpression) String() string { return ue.Target.String() + ue.Operator }

// ConditionalExpression represents 'cond ? a : b'
type ConditionalExpression struct {
	Token       lexer.Token // the '?' token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ce *ConditionalExpression) expressionNode()      {}
func (ce *ConditionalExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *ConditionalExpression) Kind() Kind           { return KindConditional }
func (ce *ConditionalExpression) Position() (int, int) { return ce.Token.Line, ce.Token.Column }
func (ce *ConditionalExpression) Equals(o Node) bool   { return sameNode(ce, o) }
func (ce *ConditionalExpression) Copy() Node {
	return &ConditionalExpression{
		Token:       ce.Token,
		Condition:   copyExpr(ce.Condition),
		Consequence: copyExpr(ce.Consequence),
		Alternative: copyExpr(ce.Alternative),
	}
}
func (ce *ConditionalExpression) String() string {
	return "(" + ce.Condition.String() + " ? " + ce.Consequence.String() + " : " + ce.Alternative.String() + ")"
}

// CastExpression represents 'x.(int)'
type CastExpression struct {
	Token lexer.Token // the '.' token
	Value Expression
	Type  types.Type
}

func (ce *CastExpression) expressionNode()      {}
func (ce *CastExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CastExpression) Kind() Kind           { return KindCast }
func (ce *CastExpression) Position() (int, int) { return ce.Token.Line, ce.Token.Column }
func (ce *CastExpression) Equals(o Node) bool   { return sameNode(ce, o) }
func (ce *CastExpression) Copy() Node {
	return &CastExpression{Token: ce.Token, Value: copyExpr(ce.Value), Type: copyType(ce.Type)}
}
func (ce *CastExpression) String() string { return ce.Value.String() + ".(" + ce.Type.String() + ")" }

// CallExpression represents 'f(a, b)'
type CallExpression struct {
	Token     lexer.Token // the '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Kind() Kind           { return KindCall }
func (ce *CallExpression) Position() (int, int) { return ce.Token.Line, ce.Token.Column }
func (ce *CallExpression) Equals(o Node) bool   { return sameNode(ce, o) }
func (ce *CallExpression) Copy() Node {
	return &CallExpression{Token: ce.Token, Function: copyExpr(ce.Function), Arguments: copyExprs(ce.Arguments)}
}
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

// ArrayMember represents an index chain 'a[i][j]'
type ArrayMember struct {
	Token   lexer.Token // the first '[' token
	Array   Expression
	Indices []Expression
}

func (am *ArrayMember) expressionNode()      {}
func (am *ArrayMember) TokenLiteral() string { return am.Token.Literal }
func (am *ArrayMember) Kind() Kind           { return KindArrayMember }
func (am *ArrayMember) Position() (int, int) { return am.Token.Line, am.Token.Column }
func (am *ArrayMember) Equals(o Node) bool   { return sameNode(am, o) }
func (am *ArrayMember) Copy() Node {
	return &ArrayMember{Token: am.Token, Array: copyExpr(am.Array), Indices: copyExprs(am.Indices)}
}
func (am *ArrayMember) String() string {
	var out bytes.Buffer
	out.WriteString(am.Array.String())
	for _, idx := range am.Indices {
		out.WriteString("[" + idx.String() + "]")
	}
	return out.String()
}

// ObjectMember represents a field chain 'a.b.c'
type ObjectMember struct {
	Token  lexer.Token // the first '.' token
	Object Expression
	Fields []*Identifier
}

func (om *ObjectMember) expressionNode()      {}
func (om *ObjectMember) TokenLiteral() string { return om.Token.Literal }
func (om *ObjectMember) Kind() Kind           { return KindObjectMember }
func (om *ObjectMember) Position() (int, int) { return om.Token.Line, om.Token.Column }
func (om *ObjectMember) Equals(o Node) bool   { return sameNode(om, o) }
func (om *ObjectMember) Copy() Node {
	fields := make([]*Identifier, len(om.Fields))
	for i, f := range om.Fields {
		fields[i] = f.Copy().(*Identifier)
	}
	return &ObjectMember{Token: om.Token, Object: copyExpr(om.Object), Fields: fields}
}
func (om *ObjectMember) String() string {
	return om.Object.String() + "." + strings.Join(om.Path(), ".")
}

// Path returns the field names of the chain in order
func (om *ObjectMember) Path() []string {
	path := make([]string, len(om.Fields))
	for i, f := range om.Fields {
		path[i] = f.Value
	}
	return path
}
