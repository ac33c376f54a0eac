package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Lexer represents the lexical analyzer
type Lexer struct {
	filename     string
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination (first byte)
	chRune       rune // current character as a rune
	chSize       int  // byte size of current character
	line         int
	column       int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "<input>")
}

// NewWithFilename creates a new lexer instance with a specific filename
func NewWithFilename(input string, filename string) *Lexer {
	l := &Lexer{
		filename: filename,
		input:    input,
		line:     1,
		column:   0,
	}
	l.readChar()
	return l
}

// Filename returns the name the lexer was created with
func (l *Lexer) Filename() string {
	return l.filename
}

// readChar reads the next character and advances position.
// ASCII takes a single-byte fast path; anything else is decoded as UTF-8.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.chRune = 0
		l.chSize = 0
		l.position = l.readPosition
		return
	}

	b := l.input[l.readPosition]
	if b < utf8.RuneSelf {
		l.ch = b
		l.chRune = rune(b)
		l.chSize = 1
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = b
		l.chRune = r
		l.chSize = size
	}
	l.position = l.readPosition
	l.readPosition += l.chSize

	if l.ch == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharN returns the character n positions ahead without advancing position
func (l *Lexer) peekCharN(n int) byte {
	pos := l.readPosition + n - 1
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// NextToken scans the input and returns the next token. Comments and blank
// lines skipped on the way are attached to the token for the formatter.
func (l *Lexer) NextToken() Token {
	comments, blank := l.skipWhitespaceAndComments()
	tok := l.scanToken()
	tok.LeadingComments = comments
	tok.BlankLinesBefore = blank
	return tok
}

func (l *Lexer) scanToken() Token {
	line, column := l.line, l.column
	tok := Token{Line: line, Column: column}

	// two- and three-character operators first
	switch l.ch {
	case '=':
		tok = l.either('=', EQ, ASSIGN)
	case '+':
		switch l.peekChar() {
		case '+':
			tok = l.twoChar(INC)
		case '=':
			tok = l.twoChar(PLUS_ASSIGN)
		default:
			tok = l.single(PLUS)
		}
	case '-':
		switch l.peekChar() {
		case '-':
			tok = l.twoChar(DEC)
		case '=':
			tok = l.twoChar(MINUS_ASSIGN)
		default:
			tok = l.single(MINUS)
		}
	case '*':
		tok = l.either('=', ASTERISK_ASSIGN, ASTERISK)
	case '/':
		tok = l.either('=', SLASH_ASSIGN, SLASH)
	case '%':
		tok = l.either('=', PERCENT_ASSIGN, PERCENT)
	case '!':
		tok = l.either('=', NOT_EQ, BANG)
	case '~':
		tok = l.single(TILDE)
	case '^':
		tok = l.either('=', XOR_ASSIGN, BIT_XOR)
	case '&':
		switch l.peekChar() {
		case '&':
			tok = l.twoChar(AND)
		case '=':
			tok = l.twoChar(AND_ASSIGN)
		default:
			tok = l.single(BIT_AND)
		}
	case '|':
		switch l.peekChar() {
		case '|':
			tok = l.twoChar(OR)
		case '=':
			tok = l.twoChar(OR_ASSIGN)
		default:
			tok = l.single(BIT_OR)
		}
	case '<':
		switch {
		case l.peekChar() == '<' && l.peekCharN(2) == '=':
			tok = l.threeChar(SHL_ASSIGN)
		case l.peekChar() == '<':
			tok = l.twoChar(SHL)
		case l.peekChar() == '=':
			tok = l.twoChar(LTE)
		default:
			tok = l.single(LT)
		}
	case '>':
		switch {
		case l.peekChar() == '>' && l.peekCharN(2) == '=':
			tok = l.threeChar(SHR_ASSIGN)
		case l.peekChar() == '>':
			tok = l.twoChar(SHR)
		case l.peekChar() == '=':
			tok = l.twoChar(GTE)
		default:
			tok = l.single(GT)
		}
	case '.':
		if l.peekChar() == '.' && l.peekCharN(2) == '.' {
			tok = l.threeChar(DOTDOTDOT)
		} else {
			tok = l.single(DOT)
		}
	case '?':
		tok = l.single(QUESTION)
	case ':':
		tok = l.single(COLON)
	case ',':
		tok = l.single(COMMA)
	case ';':
		tok = l.single(SEMICOLON)
	case '(':
		tok = l.single(LPAREN)
	case ')':
		tok = l.single(RPAREN)
	case '{':
		tok = l.single(LBRACE)
	case '}':
		tok = l.single(RBRACE)
	case '[':
		tok = l.single(LBRACKET)
	case ']':
		tok = l.single(RBRACKET)
	case '"':
		str, ok := l.readString()
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = "unterminated string"
		} else {
			tok.Type = STRING
			tok.Literal = str
		}
		l.readChar()
	case '\'':
		ch, ok := l.readCharLiteral()
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = "invalid character literal"
		} else {
			tok.Type = CHAR
			tok.Literal = ch
		}
		l.readChar()
	case 0:
		tok.Type = EOF
		tok.Literal = ""
	default:
		if isLetterRune(l.chRune) {
			ident := norm.NFC.String(l.readIdentifier())
			tok.Type = LookupIdent(ident)
			tok.Literal = ident
			return tok
		}
		if isDigit(l.ch) {
			lit, isFloat := l.readNumber()
			tok.Literal = lit
			if isFloat {
				tok.Type = FLOAT
			} else {
				tok.Type = INT
			}
			return tok
		}
		tok.Type = ILLEGAL
		tok.Literal = string(l.chRune)
		l.readChar()
	}

	tok.Line = line
	tok.Column = column
	return tok
}

// single consumes the current char as a one-character token
func (l *Lexer) single(tt TokenType) Token {
	tok := Token{Type: tt, Literal: string(l.ch)}
	l.readChar()
	return tok
}

// twoChar consumes the current and next char as one token
func (l *Lexer) twoChar(tt TokenType) Token {
	start := l.position
	l.readChar()
	l.readChar()
	return Token{Type: tt, Literal: l.input[start:l.position]}
}

func (l *Lexer) threeChar(tt TokenType) Token {
	start := l.position
	l.readChar()
	l.readChar()
	l.readChar()
	return Token{Type: tt, Literal: l.input[start:l.position]}
}

// either produces matched when the next char is next, otherwise fallback
func (l *Lexer) either(next byte, matched, fallback TokenType) Token {
	if l.peekChar() == next {
		return l.twoChar(matched)
	}
	return l.single(fallback)
}

func (l *Lexer) skipWhitespaceAndComments() (comments []string, blankLines int) {
	newlines := 0
	for {
		switch {
		case l.ch == '\n':
			newlines++
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			if newlines > 1 {
				blankLines = 1
			}
			start := l.position
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			comments = append(comments, strings.TrimRight(l.input[start:l.position], " \t\r"))
			newlines = 0
		case l.ch == '/' && l.peekChar() == '*':
			if newlines > 1 {
				blankLines = 1
			}
			start := l.position
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			comments = append(comments, l.input[start:l.position])
			newlines = 0
		default:
			if newlines > 1 {
				blankLines = 1
			}
			return comments, blankLines
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetterRune(l.chRune) || unicode.IsDigit(l.chRune) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or a float; a '.' only continues the number when a digit follows it
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readString reads a double-quoted string, leaving the lexer on the closing quote
func (l *Lexer) readString() (string, bool) {
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0, '\n':
			return out.String(), false
		case '"':
			return out.String(), true
		case '\\':
			l.readChar()
			out.WriteRune(unescape(l.chRune))
		default:
			out.WriteRune(l.chRune)
		}
	}
}

// readCharLiteral reads 'x', '\n' or the empty char ''
func (l *Lexer) readCharLiteral() (string, bool) {
	l.readChar()
	if l.ch == '\'' {
		return "", true
	}
	if l.ch == 0 || l.ch == '\n' {
		return "", false
	}
	r := l.chRune
	if l.ch == '\\' {
		l.readChar()
		r = unescape(l.chRune)
	}
	l.readChar()
	if l.ch != '\'' {
		return "", false
	}
	return string(r), true
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return r
}

func isLetterRune(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
