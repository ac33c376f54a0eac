package ast

import (
	"github.com/wesly-lang/wesly/pkg/wesly/lexer"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// ZeroValue synthesizes the literal a typed declaration without an initializer is bound to.
// Sized arrays are filled with the zero value of their element type; everything
// not covered below is nil.
func ZeroValue(t types.Type, tok lexer.Token) Expression {
	switch tt := t.(type) {
	case types.Basic:
		switch tt {
		case types.Int:
			return &IntegerLiteral{Token: tok, Value: 0}
		case types.Float:
			return &FloatLiteral{Token: tok, Value: 0}
		case types.Char:
			return &CharLiteral{Token: tok, Value: 0}
		case types.String:
			return &StringLiteral{Token: tok, Value: ""}
		case types.Bool:
			return &BooleanLiteral{Token: tok, Value: false}
		}
	case *types.Array:
		if tt.Length < 0 {
			break
		}
		elems := make([]Expression, tt.Length)
		for i := range elems {
			elems[i] = ZeroValue(tt.Elem, tok)
		}
		return &ArrayLiteral{Token: tok, Type: tt.Copy().(*types.Array), Elements: elems}
	}
	return &NilLiteral{Token: tok}
}
