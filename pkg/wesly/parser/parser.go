package parser

import (
	"strconv"
	"unicode/utf8"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	TERNARY     // ?:
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X !X ~X
	POSTFIX     // f(x) a[i] a.b x.(T) x++ Name{...}
)

var precedences = map[lexer.TokenType]int{
	lexer.QUESTION: TERNARY,
	lexer.OR:       LOGIC_OR,
	lexer.AND:      LOGIC_AND,
	lexer.BIT_OR:   BIT_OR,
	lexer.BIT_XOR:  BIT_XOR,
	lexer.BIT_AND:  BIT_AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       LESSGREATER,
	lexer.GT:       LESSGREATER,
	lexer.LTE:      LESSGREATER,
	lexer.GTE:      LESSGREATER,
	lexer.SHL:      SHIFT,
	lexer.SHR:      SHIFT,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.LPAREN:   POSTFIX,
	lexer.LBRACKET: POSTFIX,
	lexer.DOT:      POSTFIX,
	lexer.INC:      POSTFIX,
	lexer.DEC:      POSTFIX,
	lexer.LBRACE:   POSTFIX,
}

// Parser represents the parser
type Parser struct {
	l *lexer.Lexer

	errors []*werrors.WeslyError

	curToken  lexer.Token
	peekToken lexer.Token
	ahead     []lexer.Token // tokens read past peekToken by lookahead

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new parser instance
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.INT, p.parseIntegerLiteral)
	p.registerPrefix(lexer.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.CHAR, p.parseCharLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBoolean)
	p.registerPrefix(lexer.FALSE, p.parseBoolean)
	p.registerPrefix(lexer.NIL, p.parseNil)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.PLUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.TILDE, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.OBJECT, p.parseInlineObjectInit)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, tt := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
		lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE,
		lexer.BIT_AND, lexer.BIT_OR, lexer.BIT_XOR, lexer.SHL, lexer.SHR,
	} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.AND, p.parseLogicalExpression)
	p.registerInfix(lexer.OR, p.parseLogicalExpression)
	p.registerInfix(lexer.QUESTION, p.parseConditionalExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseDotExpression)
	p.registerInfix(lexer.INC, p.parseUpdateExpression)
	p.registerInfix(lexer.DEC, p.parseUpdateExpression)
	p.registerInfix(lexer.LBRACE, p.parseObjectInit)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Errors returns parser errors as strings (convenience method for tests).
func (p *Parser) Errors() []string {
	result := make([]string, len(p.errors))
	for i, err := range p.errors {
		result[i] = err.String()
	}
	return result
}

// StructuredErrors returns the recorded parse errors.
func (p *Parser) StructuredErrors() []*werrors.WeslyError {
	return p.errors
}

// addError records a catalog error at tok.
// Only the first error is recorded - subsequent errors are usually cascading noise.
func (p *Parser) addError(code string, tok lexer.Token, data map[string]any) {
	if len(p.errors) > 0 {
		return
	}
	p.errors = append(p.errors, werrors.NewWithPosition(code, tok.Line, tok.Column, data))
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if len(p.ahead) > 0 {
		p.peekToken = p.ahead[0]
		p.ahead = p.ahead[1:]
		return
	}
	p.peekToken = p.l.NextToken()
}

// tokenAt looks n tokens ahead: 0 is curToken, 1 is peekToken.
func (p *Parser) tokenAt(n int) lexer.Token {
	switch n {
	case 0:
		return p.curToken
	case 1:
		return p.peekToken
	}
	for len(p.ahead) < n-1 {
		p.ahead = append(p.ahead, p.l.NextToken())
	}
	return p.ahead[n-2]
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t.String())
	return false
}

func (p *Parser) peekError(expected string) {
	got := p.peekToken.Literal
	if p.peekTokenIs(lexer.EOF) {
		got = "end of input"
	}
	p.addError("PARSE-0001", p.peekToken, map[string]any{"Expected": "'" + expected + "'", "Got": got})
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the program and returns the AST
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.errors) > 0 {
			break
		}
		p.nextToken()
	}
	if p.curTokenIs(lexer.EOF) {
		program.EndComments = p.curToken.LeadingComments
	}

	return program
}

// ============================================================================
// Statements
// ============================================================================

// parseStatement parses one statement and swallows its optional terminating ';'
func (p *Parser) parseStatement() ast.Statement {
	stmt := p.parseBareStatement()
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseBareStatement() ast.Statement {
	switch p.curToken.Type {
	case lexer.SEMICOLON:
		return nil
	case lexer.VAR, lexer.CONST:
		if decl := p.parseDeclStatement(); decl != nil {
			return decl
		}
		return nil
	case lexer.FUNCTION:
		if p.peekTokenIs(lexer.IDENT) {
			if fd := p.parseFuncDecl(); fd != nil {
				return fd
			}
			return nil
		}
	case lexer.OBJECT:
		if p.peekTokenIs(lexer.IDENT) {
			if od := p.parseObjectDecl(); od != nil {
				return od
			}
			return nil
		}
	case lexer.LBRACE:
		if block := p.parseBlockStatement(); block != nil {
			return block
		}
		return nil
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case lexer.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case lexer.IF:
		if is := p.parseIfStatement(); is != nil {
			return is
		}
		return nil
	case lexer.LOOP, lexer.FOR, lexer.WHILE:
		if ls := p.parseLoopStatement(); ls != nil {
			return ls
		}
		return nil
	}
	return p.parseExpressionStatement()
}

// parseDeclStatement parses 'var a int = 1, b = 2' and 'var a, b = 1, 2'.
// Names without their own type or value form a group with the next name that
// has one: the group shares its type, and a value list supplies one value per name.
func (p *Parser) parseDeclStatement() *ast.DeclStatement {
	decl := &ast.DeclStatement{Token: p.curToken, Const: p.curTokenIs(lexer.CONST)}

	var group []*ast.ValueSpec
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		spec := &ast.ValueSpec{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		group = append(group, spec)
		decl.Specs = append(decl.Specs, spec)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}

		if p.typeStartAt(1) {
			p.nextToken()
			t := p.parseType()
			if t == nil {
				return nil
			}
			for _, s := range group {
				s.Type = t
			}
		}

		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			for i, s := range group {
				if i > 0 && !p.expectPeek(lexer.COMMA) {
					return nil
				}
				p.nextToken()
				s.Value = p.parseExpression(LOWEST)
				if s.Value == nil {
					return nil
				}
			}
		}

		for _, s := range group {
			if s.Type == nil && s.Value == nil {
				p.addError("PARSE-0007", p.peekToken, map[string]any{"Got": p.peekToken.Literal})
				return nil
			}
			if decl.Const && s.Value == nil {
				p.addError("PARSE-0005", s.Name.Token, map[string]any{"Name": s.Name.Value})
				return nil
			}
		}
		group = nil

		if !p.peekTokenIs(lexer.COMMA) {
			return decl
		}
		p.nextToken()
	}
}

// parseFuncDecl parses 'func name(params) ret { body }'
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	fd := &ast.FuncDecl{Token: p.curToken}
	p.nextToken()
	fd.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	fd.Function = p.parseFunctionRest(fd.Token)
	if fd.Function == nil {
		return nil
	}
	return fd
}

// parseObjectDecl parses 'object Name { a, b int; c string }'
func (p *Parser) parseObjectDecl() *ast.ObjectDecl {
	od := &ast.ObjectDecl{Token: p.curToken}
	p.nextToken()
	od.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	fields, ok := p.parseFieldDecls()
	if !ok {
		return nil
	}
	od.Fields = fields
	return od
}

// parseFieldDecls parses field groups up to the closing '}'; curToken starts on '{'.
// Groups are separated by ';', ',' or nothing.
func (p *Parser) parseFieldDecls() ([]*ast.FieldDecl, bool) {
	var fields []*ast.FieldDecl
	for {
		for p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		}
		if p.peekTokenIs(lexer.RBRACE) {
			p.nextToken()
			return fields, true
		}
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		fd := &ast.FieldDecl{Names: []*ast.Identifier{{Token: p.curToken, Value: p.curToken.Literal}}}
		for p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			if !p.expectPeek(lexer.IDENT) {
				return nil, false
			}
			fd.Names = append(fd.Names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		}
		p.nextToken()
		fd.Type = p.parseType()
		if fd.Type == nil {
			return nil, false
		}
		fields = append(fields, fd)
	}
}

// parseBlockStatement parses '{ statements }'; curToken is '{'
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken, Statements: []ast.Statement{}}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) {
		if p.curTokenIs(lexer.EOF) {
			p.addError("PARSE-0001", p.curToken, map[string]any{"Expected": "'}'", "Got": "end of input"})
			return nil
		}
		stmt := p.parseStatement()
		if len(p.errors) > 0 {
			return nil
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	block.EndComments = p.curToken.LeadingComments
	return block
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseIfStatement parses 'if (cond) { } else if (cond) { } else { }'
func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if stmt.Condition == nil || !p.expectPeek(lexer.RPAREN) || !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Consequence = p.parseBlockStatement()
	if stmt.Consequence == nil {
		return nil
	}

	if !p.peekTokenIs(lexer.ELSE) {
		return stmt
	}
	p.nextToken()
	switch {
	case p.peekTokenIs(lexer.IF):
		p.nextToken()
		alt := p.parseIfStatement()
		if alt == nil {
			return nil
		}
		stmt.Alternative = alt
	case p.expectPeek(lexer.LBRACE):
		alt := p.parseBlockStatement()
		if alt == nil {
			return nil
		}
		stmt.Alternative = alt
	default:
		return nil
	}
	return stmt
}

// parseLoopStatement parses the three loop shapes:
//
//	loop { }
//	loop (cond) { }
//	loop (init; cond; post, post) { }
//
// 'for' and 'while' are accepted as aliases for 'loop'.
func (p *Parser) parseLoopStatement() *ast.LoopStatement {
	stmt := &ast.LoopStatement{Token: p.curToken, LoopKind: ast.LoopUndef}

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		if !p.parseLoopHeader(stmt) {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseLoopHeader fills in the clauses between '(' and ')'; curToken starts on '('
func (p *Parser) parseLoopHeader(stmt *ast.LoopStatement) bool {
	p.nextToken()

	switch {
	case p.curTokenIs(lexer.SEMICOLON):
		// for loop without init
	case p.curTokenIs(lexer.VAR):
		decl := p.parseDeclStatement()
		if decl == nil || !p.expectPeek(lexer.SEMICOLON) {
			return false
		}
		stmt.Init = decl
	default:
		tok := p.curToken
		expr := p.parseSimpleStatement(true)
		if expr == nil {
			return false
		}
		if _, isAssign := expr.(*ast.AssignExpression); !isAssign && p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			stmt.LoopKind = ast.LoopWhile
			stmt.Condition = expr
			return true
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return false
		}
		stmt.Init = &ast.ExpressionStatement{Token: tok, Expression: expr}
	}

	// curToken is the first ';'
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
		if stmt.Condition == nil {
			return false
		}
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return false
	}

	for !p.peekTokenIs(lexer.RPAREN) {
		if len(stmt.Post) > 0 && !p.expectPeek(lexer.COMMA) {
			return false
		}
		p.nextToken()
		post := p.parseSimpleStatement(false)
		if post == nil {
			return false
		}
		stmt.Post = append(stmt.Post, post)
	}
	p.nextToken()

	if stmt.Init != nil || stmt.Condition != nil || len(stmt.Post) > 0 {
		stmt.LoopKind = ast.LoopFor
	}
	return true
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseSimpleStatement(true)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseSimpleStatement parses an expression, optionally followed by an
// assignment. With list set, 'a, b = b, a' is accepted.
func (p *Parser) parseSimpleStatement(list bool) ast.Expression {
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	targets := []ast.Expression{first}
	for list && p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		target := p.parseExpression(LOWEST)
		if target == nil {
			return nil
		}
		targets = append(targets, target)
	}

	if !lexer.IsAssignment(p.peekToken.Type) {
		if len(targets) > 1 {
			p.peekError("=")
			return nil
		}
		return first
	}

	p.nextToken()
	assign := &ast.AssignExpression{Token: p.curToken, Operator: p.curToken.Literal, Targets: targets}
	for {
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		assign.Values = append(assign.Values, value)
		if !list || !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	compound := assign.Operator != "="
	if len(assign.Values) != len(targets) || (compound && len(targets) > 1) {
		p.addError("PARSE-0008", assign.Token, map[string]any{"Targets": len(targets), "Values": len(assign.Values)})
		return nil
	}
	return assign
}

// ============================================================================
// Expressions
// ============================================================================

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		// '{' only continues an expression as a record initializer after a type name
		if p.peekTokenIs(lexer.LBRACE) {
			if _, ok := leftExp.(*ast.Identifier); !ok {
				return leftExp
			}
		}

		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	switch tok.Type {
	case lexer.ILLEGAL:
		p.addError("PARSE-0004", tok, map[string]any{"Message": tok.Literal})
	case lexer.EOF:
		p.addError("PARSE-0001", tok, map[string]any{"Expected": "expression", "Got": "end of input"})
	default:
		p.addError("PARSE-0002", tok, map[string]any{"Token": tok.Literal})
	}
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError("PARSE-0003", p.curToken, map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("PARSE-0003", p.curToken, map[string]any{"Literal": p.curToken.Literal})
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// parseCharLiteral maps the empty literal '' to the zero char
func (p *Parser) parseCharLiteral() ast.Expression {
	r, _ := utf8.DecodeRuneInString(p.curToken.Literal)
	if p.curToken.Literal == "" {
		r = 0
	}
	return &ast.CharLiteral{Token: p.curToken, Value: r}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNil() ast.Expression {
	return &ast.NilLiteral{Token: p.curToken}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expr := &ast.UnaryExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.GroupExpression{Token: p.curToken}
	p.nextToken()
	group.Expression = p.parseExpression(LOWEST)
	if group.Expression == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return group
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expr := &ast.BinaryExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expr := &ast.LogicalExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseConditionalExpression parses 'cond ? a : b'; it is right-associative
func (p *Parser) parseConditionalExpression(cond ast.Expression) ast.Expression {
	expr := &ast.ConditionalExpression{Token: p.curToken, Condition: cond}
	p.nextToken()
	expr.Consequence = p.parseExpression(LOWEST)
	if expr.Consequence == nil || !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expr.Alternative = p.parseExpression(TERNARY - 1)
	if expr.Alternative == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(fn ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: fn}
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}

// parseExpressionList parses comma-separated expressions up to end; a trailing comma is allowed
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}
	for !p.peekTokenIs(end) {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

// parseIndexExpression flattens consecutive indexes into one ArrayMember
func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil || !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	if am, ok := left.(*ast.ArrayMember); ok {
		am.Indices = append(am.Indices, index)
		return am
	}
	return &ast.ArrayMember{Token: tok, Array: left, Indices: []ast.Expression{index}}
}

// parseDotExpression handles both 'a.b' member chains and 'x.(T)' casts
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	tok := p.curToken

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		p.nextToken()
		t := p.parseType()
		if t == nil || !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return &ast.CastExpression{Token: tok, Value: left, Type: t}
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	field := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if om, ok := left.(*ast.ObjectMember); ok {
		om.Fields = append(om.Fields, field)
		return om
	}
	return &ast.ObjectMember{Token: tok, Object: left, Fields: []*ast.Identifier{field}}
}

func (p *Parser) parseUpdateExpression(target ast.Expression) ast.Expression {
	return &ast.UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Target: target}
}

// parseObjectInit parses 'Name{f: v, ...}'; curToken is '{'
func (p *Parser) parseObjectInit(left ast.Expression) ast.Expression {
	name := left.(*ast.Identifier)
	fields, ok := p.parseFieldValues()
	if !ok {
		return nil
	}
	return &ast.ObjectInit{Token: name.Token, Name: name, Fields: fields}
}

// parseInlineObjectInit parses 'object{a int}{a: 1}'
func (p *Parser) parseInlineObjectInit() ast.Expression {
	tok := p.curToken
	t := p.parseType()
	if t == nil {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	fields, ok := p.parseFieldValues()
	if !ok {
		return nil
	}
	return &ast.InlineObjectInit{Token: tok, Type: t.(*types.Object), Fields: fields}
}

// parseFieldValues parses 'name: value' pairs up to '}'; curToken starts on '{'
func (p *Parser) parseFieldValues() ([]*ast.FieldValue, bool) {
	fields := []*ast.FieldValue{}
	for !p.peekTokenIs(lexer.RBRACE) {
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		fv := &ast.FieldValue{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if !p.expectPeek(lexer.COLON) {
			return nil, false
		}
		p.nextToken()
		fv.Value = p.parseExpression(LOWEST)
		if fv.Value == nil {
			return nil, false
		}
		fields = append(fields, fv)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil, false
	}
	return fields, true
}

// parseArrayLiteral parses '[]T{...}', '[N]T{...}' and the bare '[a, b]'
func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken

	if !p.typeStartAt(0) {
		elems, ok := p.parseExpressionList(lexer.RBRACKET)
		if !ok {
			return nil
		}
		return &ast.ArrayLiteral{Token: tok, Elements: elems}
	}

	t := p.parseType()
	if t == nil || !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	return p.parseArrayBody(tok, t.(*types.Array), false)
}

// parseArrayBody parses '{e, e, {row}, ...}' for an array of type t; curToken is '{'
func (p *Parser) parseArrayBody(tok lexer.Token, t *types.Array, row bool) ast.Expression {
	lit := &ast.ArrayLiteral{Token: tok, Type: t, Row: row, Elements: []ast.Expression{}}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		var elem ast.Expression
		if p.curTokenIs(lexer.LBRACE) {
			inner, ok := t.Elem.(*types.Array)
			if !ok {
				p.addError("PARSE-0002", p.curToken, map[string]any{"Token": "{"})
				return nil
			}
			elem = p.parseArrayBody(p.curToken, inner, true)
		} else {
			elem = p.parseExpression(LOWEST)
		}
		if elem == nil {
			return nil
		}
		lit.Elements = append(lit.Elements, elem)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	fl := p.parseFunctionRest(p.curToken)
	if fl == nil {
		return nil
	}
	return fl
}

// parseFunctionRest parses '(params) ret { body }'; peekToken must be '('
func (p *Parser) parseFunctionRest(tok lexer.Token) *ast.FuncLiteral {
	fl := &ast.FuncLiteral{Token: tok}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	fl.Params = params

	if p.typeStartAt(1) {
		p.nextToken()
		fl.Return = p.parseType()
		if fl.Return == nil {
			return nil
		}
	}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	fl.Body = p.parseBlockStatement()
	if fl.Body == nil {
		return nil
	}
	return fl
}

// parseParams parses '(a int, b, c string, rest ...any)'; curToken starts on '('
func (p *Parser) parseParams() ([]*ast.Param, bool) {
	params := []*ast.Param{}
	var pending []*ast.Param

	for !p.peekTokenIs(lexer.RPAREN) {
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		param := &ast.Param{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		params = append(params, param)
		pending = append(pending, param)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}

		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil, false
		}
		for _, pp := range pending {
			pp.Type = t
		}
		pending = nil

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if len(pending) > 0 {
		p.addError("PARSE-0007", p.peekToken, map[string]any{"Got": p.peekToken.Literal})
		return nil, false
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}

	for i, param := range params {
		if _, ok := param.Type.(*types.Variadic); ok && i != len(params)-1 {
			p.addError("PARSE-0006", param.Name.Token, nil)
			return nil, false
		}
	}
	return params, true
}

// ============================================================================
// Types
// ============================================================================

// typeStartAt reports whether a type begins n tokens ahead.
// '[' only starts a type when it reads as '[]T' or '[N]T'.
func (p *Parser) typeStartAt(n int) bool {
	tok := p.tokenAt(n)
	switch {
	case tok.Type.IsTypeName(), tok.Type == lexer.IDENT, tok.Type == lexer.FUNCTION, tok.Type == lexer.OBJECT:
		return true
	case tok.Type == lexer.DOTDOTDOT:
		return p.typeStartAt(n + 1)
	case tok.Type == lexer.LBRACKET:
		next := p.tokenAt(n + 1)
		if next.Type == lexer.RBRACKET {
			return p.typeStartAt(n + 2)
		}
		if next.Type == lexer.INT && p.tokenAt(n+2).Type == lexer.RBRACKET {
			return p.typeStartAt(n + 3)
		}
	}
	return false
}

var basicTypes = map[lexer.TokenType]types.Basic{
	lexer.TYPE_INT:    types.Int,
	lexer.TYPE_FLOAT:  types.Float,
	lexer.TYPE_CHAR:   types.Char,
	lexer.TYPE_STRING: types.String,
	lexer.TYPE_BOOL:   types.Bool,
	lexer.TYPE_VOID:   types.Void,
	lexer.TYPE_ANY:    types.Any,
}

// parseType parses a type starting at curToken and leaves curToken on its last token
func (p *Parser) parseType() types.Type {
	tok := p.curToken

	if b, ok := basicTypes[tok.Type]; ok {
		return b
	}

	switch tok.Type {
	case lexer.IDENT:
		return &types.Ref{Name: tok.Literal}

	case lexer.DOTDOTDOT:
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		return &types.Variadic{Elem: elem}

	case lexer.LBRACKET:
		length := -1
		if p.peekTokenIs(lexer.INT) {
			p.nextToken()
			n, err := strconv.Atoi(p.curToken.Literal)
			if err != nil {
				p.addError("PARSE-0003", p.curToken, map[string]any{"Literal": p.curToken.Literal})
				return nil
			}
			length = n
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		p.nextToken()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		return &types.Array{Elem: elem, Length: length}

	case lexer.FUNCTION:
		if !p.expectPeek(lexer.LPAREN) {
			return nil
		}
		fn := &types.Function{Params: []types.Type{}, Return: types.Void}
		for !p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			param := p.parseType()
			if param == nil {
				return nil
			}
			fn.Params = append(fn.Params, param)
			if !p.peekTokenIs(lexer.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		if p.typeStartAt(1) {
			p.nextToken()
			fn.Return = p.parseType()
			if fn.Return == nil {
				return nil
			}
		}
		return fn

	case lexer.OBJECT:
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		fields, ok := p.parseFieldDecls()
		if !ok {
			return nil
		}
		return &types.Object{Fields: ast.FieldTypes(fields)}
	}

	p.addError("PARSE-0007", tok, map[string]any{"Got": tok.Literal})
	return nil
}
