package lexer

import "fmt"

// TokenType represents different types of tokens
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers and literals
	IDENT  // add, foobar, x, y, ...
	INT    // 1343456
	FLOAT  // 3.14159
	STRING // "foobar"
	CHAR   // 'a'

	// Operators
	ASSIGN   // =
	PLUS     // +
	MINUS    // -
	BANG     // !
	TILDE    // ~
	ASTERISK // *
	SLASH    // /
	PERCENT  // %
	LT       // <
	GT       // >
	LTE      // <=
	GTE      // >=
	EQ       // ==
	NOT_EQ   // !=
	AND      // &&
	OR       // ||
	BIT_AND  // &
	BIT_OR   // |
	BIT_XOR  // ^
	SHL      // <<
	SHR      // >>
	INC      // ++
	DEC      // --
	QUESTION // ?

	// Compound assignment
	PLUS_ASSIGN     // +=
	MINUS_ASSIGN    // -=
	ASTERISK_ASSIGN // *=
	SLASH_ASSIGN    // /=
	PERCENT_ASSIGN  // %=
	AND_ASSIGN      // &=
	OR_ASSIGN       // |=
	XOR_ASSIGN      // ^=
	SHL_ASSIGN      // <<=
	SHR_ASSIGN      // >>=

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	DOT       // .
	DOTDOTDOT // ...
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	// Keywords
	VAR      // "var"
	CONST    // "const"
	FUNCTION // "func"
	OBJECT   // "object"
	RETURN   // "return"
	IF       // "if"
	ELSE     // "else"
	LOOP     // "loop"
	FOR      // "for"
	WHILE    // "while"
	BREAK    // "break"
	CONTINUE // "continue"
	TRUE     // "true"
	FALSE    // "false"
	NIL      // "nil"

	// Type names
	TYPE_INT    // "int"
	TYPE_FLOAT  // "float"
	TYPE_CHAR   // "char"
	TYPE_STRING // "string"
	TYPE_BOOL   // "bool"
	TYPE_VOID   // "void"
	TYPE_ANY    // "any"
)

var tokenNames = map[TokenType]string{
	ILLEGAL:         "ILLEGAL",
	EOF:             "EOF",
	IDENT:           "IDENT",
	INT:             "INT",
	FLOAT:           "FLOAT",
	STRING:          "STRING",
	CHAR:            "CHAR",
	ASSIGN:          "=",
	PLUS:            "+",
	MINUS:           "-",
	BANG:            "!",
	TILDE:           "~",
	ASTERISK:        "*",
	SLASH:           "/",
	PERCENT:         "%",
	LT:              "<",
	GT:              ">",
	LTE:             "<=",
	GTE:             ">=",
	EQ:              "==",
	NOT_EQ:          "!=",
	AND:             "&&",
	OR:              "||",
	BIT_AND:         "&",
	BIT_OR:          "|",
	BIT_XOR:         "^",
	SHL:             "<<",
	SHR:             ">>",
	INC:             "++",
	DEC:             "--",
	QUESTION:        "?",
	PLUS_ASSIGN:     "+=",
	MINUS_ASSIGN:    "-=",
	ASTERISK_ASSIGN: "*=",
	SLASH_ASSIGN:    "/=",
	PERCENT_ASSIGN:  "%=",
	AND_ASSIGN:      "&=",
	OR_ASSIGN:       "|=",
	XOR_ASSIGN:      "^=",
	SHL_ASSIGN:      "<<=",
	SHR_ASSIGN:      ">>=",
	COMMA:           ",",
	SEMICOLON:       ";",
	COLON:           ":",
	DOT:             ".",
	DOTDOTDOT:       "...",
	LPAREN:          "(",
	RPAREN:          ")",
	LBRACE:          "{",
	RBRACE:          "}",
	LBRACKET:        "[",
	RBRACKET:        "]",
	VAR:             "var",
	CONST:           "const",
	FUNCTION:        "func",
	OBJECT:          "object",
	RETURN:          "return",
	IF:              "if",
	ELSE:            "else",
	LOOP:            "loop",
	FOR:             "for",
	WHILE:           "while",
	BREAK:           "break",
	CONTINUE:        "continue",
	TRUE:            "true",
	FALSE:           "false",
	NIL:             "nil",
	TYPE_INT:        "int",
	TYPE_FLOAT:      "float",
	TYPE_CHAR:       "char",
	TYPE_STRING:     "string",
	TYPE_BOOL:       "bool",
	TYPE_VOID:       "void",
	TYPE_ANY:        "any",
}

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsTypeName reports whether the token names a builtin type
func (tt TokenType) IsTypeName() bool {
	return tt >= TYPE_INT && tt <= TYPE_ANY
}

// CompoundOperator maps a compound assignment token to the binary operator it desugars to.
// The second result is false for plain '=' and non-assignment tokens.
func CompoundOperator(tt TokenType) (TokenType, bool) {
	switch tt {
	case PLUS_ASSIGN:
		return PLUS, true
	case MINUS_ASSIGN:
		return MINUS, true
	case ASTERISK_ASSIGN:
		return ASTERISK, true
	case SLASH_ASSIGN:
		return SLASH, true
	case PERCENT_ASSIGN:
		return PERCENT, true
	case AND_ASSIGN:
		return BIT_AND, true
	case OR_ASSIGN:
		return BIT_OR, true
	case XOR_ASSIGN:
		return BIT_XOR, true
	case SHL_ASSIGN:
		return SHL, true
	case SHR_ASSIGN:
		return SHR, true
	}
	return ILLEGAL, false
}

// IsAssignment reports whether tt is '=' or a compound assignment operator
func IsAssignment(tt TokenType) bool {
	if tt == ASSIGN {
		return true
	}
	_, ok := CompoundOperator(tt)
	return ok
}

// Token represents a single token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int

	BlankLinesBefore int      // 1 when at least one blank line precedes the token
	LeadingComments  []string // comments between the previous token and this one
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %s, Line: %d, Column: %d}",
		t.Type.String(), t.Literal, t.Line, t.Column)
}

var keywords = map[string]TokenType{
	"var":      VAR,
	"const":    CONST,
	"func":     FUNCTION,
	"object":   OBJECT,
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"loop":     LOOP,
	"for":      FOR,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"true":     TRUE,
	"false":    FALSE,
	"nil":      NIL,
	"int":      TYPE_INT,
	"float":    TYPE_FLOAT,
	"char":     TYPE_CHAR,
	"string":   TYPE_STRING,
	"bool":     TYPE_BOOL,
	"void":     TYPE_VOID,
	"any":      TYPE_ANY,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns every reserved word, for completion and suggestions
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	return words
}
