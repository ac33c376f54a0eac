// Package errors provides the structured error type shared by the wesly
// parser and evaluator.
//
// Every failure is a *WeslyError carrying a class, a catalog code, the rendered
// message, optional hints and the source position. Errors travel as ordinary
// return values; nothing in the interpreter panics to report them.
package errors

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorClass categorizes errors for filtering and display.
type ErrorClass string

const (
	ClassParse      ErrorClass = "parse"      // syntax errors
	ClassBinding    ErrorClass = "binding"    // declarations, lookups, const
	ClassType       ErrorClass = "type"       // operand, index and conversion mismatches
	ClassIndex      ErrorClass = "index"      // out of bounds
	ClassField      ErrorClass = "field"      // unknown or missing record fields
	ClassCall       ErrorClass = "call"       // non-callable, arity, builtin misuse
	ClassArithmetic ErrorClass = "arithmetic" // division by zero, bad shifts
	ClassControl    ErrorClass = "control"    // misplaced break/continue, call depth
)

// WeslyError represents any error from parsing or evaluation.
type WeslyError struct {
	Class   ErrorClass     `json:"class"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hints   []string       `json:"hints,omitempty"`
	Line    int            `json:"line"`   // 1-based, 0 if unknown
	Column  int            `json:"column"` // 1-based, 0 if unknown
	File    string         `json:"file,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

func (e *WeslyError) Error() string {
	return e.String()
}

// String renders 'file: line L, column C: message' followed by indented hints.
func (e *WeslyError) String() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d, column %d: ", e.Line, e.Column)
	}
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// PrettyString returns the multi-line form the CLI prints.
func (e *WeslyError) PrettyString() string {
	var sb strings.Builder

	if e.Class == ClassParse {
		sb.WriteString("Parser error")
	} else {
		sb.WriteString("Runtime error")
	}

	switch {
	case e.File != "":
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&sb, "\n  at: line %d, column %d", e.Line, e.Column)
		}
		sb.WriteString("\n  ")
	case e.Line > 0:
		fmt.Fprintf(&sb, ": line %d, column %d\n  ", e.Line, e.Column)
	default:
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *WeslyError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ToJSONIndent returns the error as indented JSON bytes.
func (e *WeslyError) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}

// WithFile returns a copy of the error with the file path set.
func (e *WeslyError) WithFile(file string) *WeslyError {
	c := *e
	c.File = file
	return &c
}

// WithPosition returns a copy of the error with line and column set.
func (e *WeslyError) WithPosition(line, column int) *WeslyError {
	c := *e
	c.Line = line
	c.Column = column
	return &c
}

// HasPosition reports whether a position was already attached.
// The innermost failing node wins; outer nodes leave it alone.
func (e *WeslyError) HasPosition() bool {
	return e.Line > 0
}

// IsParseError reports whether this is a syntax error.
func (e *WeslyError) IsParseError() bool {
	return e.Class == ClassParse
}

// IsRuntimeError reports whether this error came from evaluation.
func (e *WeslyError) IsRuntimeError() bool {
	return e.Class != ClassParse
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass
	Template string   // message template with {{.placeholders}}
	Hints    []string // hint templates
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Parse errors
	"PARSE-0001": {Class: ClassParse, Template: "expected {{.Expected}}, got '{{.Got}}'"},
	"PARSE-0002": {Class: ClassParse, Template: "unexpected token '{{.Token}}'"},
	"PARSE-0003": {Class: ClassParse, Template: "invalid number literal: {{.Literal}}"},
	"PARSE-0004": {Class: ClassParse, Template: "{{.Message}}"},
	"PARSE-0005": {
		Class:    ClassParse,
		Template: "missing init expr for const declaration",
		Hints:    []string{"const {{.Name}} = ..."},
	},
	"PARSE-0006": {Class: ClassParse, Template: "can only use ... with final parameter in list"},
	"PARSE-0007": {Class: ClassParse, Template: "expected type, got '{{.Got}}'"},
	"PARSE-0008": {Class: ClassParse, Template: "assignment mismatch: {{.Targets}} variables but {{.Values}} values"},

	// Binding errors
	"BIND-0001": {Class: ClassBinding, Template: "'{{.Name}}': already defined"},
	"BIND-0002": {Class: ClassBinding, Template: "'{{.Name}}': redeclared in this block"},
	"BIND-0003": {Class: ClassBinding, Template: "{{.Name}} is not defined"},
	"BIND-0004": {
		Class:    ClassBinding,
		Template: "assignment to constant variable",
		Hints:    []string{"'{{.Name}}' was declared with const"},
	},

	// Type errors
	"TYPE-0001": {Class: ClassType, Template: "bad operand types for binary operator '{{.Operator}}': {{.Left}} and {{.Right}}"},
	"TYPE-0002": {Class: ClassType, Template: "{{.Operator}}: operands must be numbers"},
	"TYPE-0003": {Class: ClassType, Template: "array index access must be an integer, got: {{.Got}}"},
	"TYPE-0004": {Class: ClassType, Template: "cannot convert {{.Value}} (type {{.From}}) to type {{.To}}"},
	"TYPE-0005": {Class: ClassType, Template: "cannot use {{.Value}} (type {{.Got}}) as type {{.Want}} in {{.Context}}"},
	"TYPE-0006": {Class: ClassType, Template: "invalid operation: cannot index {{.Value}} (type {{.Type}})"},
	"TYPE-0007": {Class: ClassType, Template: "invalid operation: operator {{.Operator}} not defined on {{.Value}} (type {{.Type}})"},
	"TYPE-0008": {Class: ClassType, Template: "invalid operation: cannot assign to {{.Target}}"},
	"TYPE-0009": {Class: ClassType, Template: "not a TypeSpec: {{.Name}}"},
	"TYPE-0010": {Class: ClassType, Template: "{{.Value}} (type {{.Type}}) has no fields"},

	// Index errors
	"INDEX-0001": {Class: ClassIndex, Template: "out of bounds {{.Index}} : {{.Array}}"},
	"INDEX-0002": {Class: ClassIndex, Template: "too many indices ({{.Count}}) for {{.Array}}"},

	// Field errors
	"FIELD-0001": {Class: ClassField, Template: "unknown field {{.Field}} in object: {{.Spec}}"},
	"FIELD-0002": {Class: ClassField, Template: "{{.Name}} does not have field: {{.Field}}"},

	// Call errors
	"CALL-0001": {Class: ClassCall, Template: "invalid operation: cannot call non-function: {{.Callee}}"},
	"CALL-0002": {Class: ClassCall, Template: "wrong number of arguments in call to {{.Callee}}: have {{.Got}}, want {{.Want}}"},
	"CALL-0003": {Class: ClassCall, Template: "len() should receive only one argument"},
	"CALL-0004": {Class: ClassCall, Template: "len(): invalid argument ({{.Value}})"},
	"CALL-0005": {Class: ClassCall, Template: "{{.Name}}() should receive only one argument"},

	// Arithmetic errors
	"ARITH-0001": {Class: ClassArithmetic, Template: "division by zero"},
	"ARITH-0002": {Class: ClassArithmetic, Template: "negative shift count {{.Count}}"},

	// Control errors
	"CTRL-0001": {
		Class:    ClassControl,
		Template: "{{.Keyword}} is not in a loop",
		Hints:    []string{"{{.Keyword}} may only appear inside loop, for or while"},
	},
	"CTRL-0002": {
		Class:    ClassControl,
		Template: "maximum call depth of {{.Max}} exceeded",
		Hints:    []string{"raise evaluator.max_call_depth in wesly.yaml if the recursion is intended"},
	},
}

// New creates a WeslyError from the catalog.
// An unknown code produces a generic type error whose message is data["message"] or the code.
func New(code string, data map[string]any) *WeslyError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if m, ok := data["message"].(string); ok {
			msg = m
		}
		return &WeslyError{Class: ClassType, Code: code, Message: msg, Data: data}
	}

	var hints []string
	for _, h := range def.Hints {
		if rendered := renderTemplate(h, data); rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &WeslyError{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
		Hints:   hints,
		Data:    data,
	}
}

// NewWithPosition creates a catalog error at a source position.
func NewWithPosition(code string, line, column int, data map[string]any) *WeslyError {
	err := New(code, data)
	err.Line = line
	err.Column = column
	return err
}

// NewSimple creates an error without going through the catalog.
func NewSimple(class ErrorClass, message string) *WeslyError {
	return &WeslyError{Class: class, Message: message}
}

func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}
	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings, rune-wise.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// FindClosestMatch returns the candidate nearest to input, or "" when nothing is close enough.
// Short names tolerate one edit, medium names two, long names three.
func FindClosestMatch(input string, candidates []string) string {
	if input == "" || len(candidates) == 0 {
		return ""
	}

	lower := strings.ToLower(input)
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshteinDistance(lower, strings.ToLower(c))
		if bestDist == -1 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}

	threshold := 1
	switch n := len([]rune(input)); {
	case n >= 7:
		threshold = 3
	case n >= 4:
		threshold = 2
	}
	if bestDist <= 0 || bestDist > threshold {
		return ""
	}
	return best
}

// NewUndefinedIdentifier creates a "not defined" error with a did-you-mean hint when one fits.
func NewUndefinedIdentifier(name string, visible []string) *WeslyError {
	err := New("BIND-0003", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, visible); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
