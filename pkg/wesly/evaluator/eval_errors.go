package evaluator

import (
	"strconv"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// controlError reports a break or continue that escaped every loop
func controlError(keyword string, node ast.Node) *werrors.WeslyError {
	return atNode(werrors.New("CTRL-0001", map[string]any{"Keyword": keyword}), node)
}

// atNode positions err at node unless it already carries a position
func atNode(err *werrors.WeslyError, node ast.Node) *werrors.WeslyError {
	if err == nil || err.HasPosition() || node == nil {
		return err
	}
	line, col := node.Position()
	return err.WithPosition(line, col)
}

// dynamicType is the descriptor recovered from the runtime object
func dynamicType(v Value) types.Type {
	return typeOfObject(v.Object)
}

// typeName names v's type for messages; nil has no type of its own.
func typeName(v Value) string {
	if _, ok := v.Object.(*Nil); ok {
		return "nil"
	}
	t := v.Type
	if t == nil || t == types.Any {
		t = dynamicType(v)
	}
	return t.String()
}

// quoteIfString renders obj for messages, quoting strings and chars
func quoteIfString(obj Object) string {
	switch o := obj.(type) {
	case *String:
		return strconv.Quote(o.Value)
	case *Char:
		return strconv.QuoteRune(o.Value)
	}
	return obj.Inspect()
}
