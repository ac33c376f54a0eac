package evaluator

import (
	"math"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// ============================================================================
// Unary
// ============================================================================

func (ev *Evaluator) evalUnary(node *ast.UnaryExpression, env *Environment) (Value, *werrors.WeslyError) {
	right, err := ev.Eval(node.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch node.Operator {
	case "!":
		return nativeBoolToBoolean(!IsTruthy(right.Object)), nil
	case "-":
		switch r := right.Object.(type) {
		case *Integer:
			return Value{Type: types.Int, Object: &Integer{Value: -r.Value}}, nil
		case *Float:
			return Value{Type: types.Float, Object: &Float{Value: -r.Value}}, nil
		}
	case "+":
		switch right.Object.(type) {
		case *Integer, *Float:
			return right, nil
		}
	case "~":
		if r, ok := right.Object.(*Integer); ok {
			return Value{Type: types.Int, Object: &Integer{Value: ^r.Value}}, nil
		}
	}

	return Value{}, werrors.New("TYPE-0007", map[string]any{
		"Operator": node.Operator, "Value": quoteIfString(right.Object), "Type": typeName(right),
	})
}

// ============================================================================
// Binary
// ============================================================================

func (ev *Evaluator) evalBinary(node *ast.BinaryExpression, env *Environment) (Value, *werrors.WeslyError) {
	left, err := ev.Eval(node.Left, env)
	if err != nil {
		return Value{}, err
	}
	right, err := ev.Eval(node.Right, env)
	if err != nil {
		return Value{}, err
	}
	return evalBinaryOp(node.Operator, left, right)
}

// evalBinaryOp applies a non-logical binary operator to two evaluated operands
func evalBinaryOp(op string, left, right Value) (Value, *werrors.WeslyError) {
	switch op {
	case "==":
		return nativeBoolToBoolean(left.Object.Equals(right.Object)), nil
	case "!=":
		return nativeBoolToBoolean(!left.Object.Equals(right.Object)), nil
	case "&", "|", "^", "<<", ">>":
		return evalBitwise(op, left, right)
	case "<", ">", "<=", ">=":
		return evalComparison(op, left, right)
	}

	if op == "+" && (isText(left.Object) || isText(right.Object)) {
		if concatable(left.Object) && concatable(right.Object) {
			return Value{Type: types.String, Object: &String{Value: left.Object.Inspect() + right.Object.Inspect()}}, nil
		}
		return Value{}, badOperands(op, left, right)
	}

	switch l := left.Object.(type) {
	case *Integer:
		switch r := right.Object.(type) {
		case *Integer:
			return evalIntegerArithmetic(op, l.Value, r.Value, left, right)
		case *Float:
			return evalFloatArithmetic(op, float64(l.Value), r.Value, left, right)
		}
	case *Float:
		switch r := right.Object.(type) {
		case *Integer:
			return evalFloatArithmetic(op, l.Value, float64(r.Value), left, right)
		case *Float:
			return evalFloatArithmetic(op, l.Value, r.Value, left, right)
		}
	}
	return Value{}, badOperands(op, left, right)
}

func evalIntegerArithmetic(op string, l, r int64, left, right Value) (Value, *werrors.WeslyError) {
	var out int64
	switch op {
	case "+":
		out = l + r
	case "-":
		out = l - r
	case "*":
		out = l * r
	case "/":
		if r == 0 {
			return Value{}, werrors.New("ARITH-0001", nil)
		}
		out = l / r
	case "%":
		if r == 0 {
			return Value{}, werrors.New("ARITH-0001", nil)
		}
		out = l % r
	default:
		return Value{}, badOperands(op, left, right)
	}
	return Value{Type: types.Int, Object: &Integer{Value: out}}, nil
}

func evalFloatArithmetic(op string, l, r float64, left, right Value) (Value, *werrors.WeslyError) {
	var out float64
	switch op {
	case "+":
		out = l + r
	case "-":
		out = l - r
	case "*":
		out = l * r
	case "/":
		if r == 0 {
			return Value{}, werrors.New("ARITH-0001", nil)
		}
		out = l / r
	case "%":
		if r == 0 {
			return Value{}, werrors.New("ARITH-0001", nil)
		}
		out = math.Mod(l, r)
	default:
		return Value{}, badOperands(op, left, right)
	}
	return Value{Type: types.Float, Object: &Float{Value: out}}, nil
}

func evalBitwise(op string, left, right Value) (Value, *werrors.WeslyError) {
	l, lok := left.Object.(*Integer)
	r, rok := right.Object.(*Integer)
	if !lok || !rok {
		return Value{}, badOperands(op, left, right)
	}

	var out int64
	switch op {
	case "&":
		out = l.Value & r.Value
	case "|":
		out = l.Value | r.Value
	case "^":
		out = l.Value ^ r.Value
	case "<<", ">>":
		if r.Value < 0 {
			return Value{}, werrors.New("ARITH-0002", map[string]any{"Count": r.Value})
		}
		if op == "<<" {
			out = l.Value << uint64(r.Value)
		} else {
			out = l.Value >> uint64(r.Value)
		}
	}
	return Value{Type: types.Int, Object: &Integer{Value: out}}, nil
}

// evalComparison orders numbers against numbers and chars against chars
func evalComparison(op string, left, right Value) (Value, *werrors.WeslyError) {
	if lc, ok := left.Object.(*Char); ok {
		if rc, ok := right.Object.(*Char); ok {
			return nativeBoolToBoolean(compare(op, float64(lc.Value), float64(rc.Value))), nil
		}
	}

	l, lok := numericValue(left.Object)
	r, rok := numericValue(right.Object)
	if !lok || !rok {
		return Value{}, werrors.New("TYPE-0002", map[string]any{"Operator": op})
	}

	li, lInt := left.Object.(*Integer)
	ri, rInt := right.Object.(*Integer)
	if lInt && rInt {
		// compare exactly; large int64 values lose precision as float64
		var res bool
		switch op {
		case "<":
			res = li.Value < ri.Value
		case ">":
			res = li.Value > ri.Value
		case "<=":
			res = li.Value <= ri.Value
		case ">=":
			res = li.Value >= ri.Value
		}
		return nativeBoolToBoolean(res), nil
	}
	return nativeBoolToBoolean(compare(op, l, r)), nil
}

func compare(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	case ">=":
		return l >= r
	}
	return false
}

func numericValue(obj Object) (float64, bool) {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value), true
	case *Float:
		return o.Value, true
	}
	return 0, false
}

func isText(obj Object) bool {
	switch obj.(type) {
	case *String, *Char:
		return true
	}
	return false
}

// concatable reports whether obj may join a string concatenation
func concatable(obj Object) bool {
	switch obj.(type) {
	case *String, *Char, *Integer, *Float:
		return true
	}
	return false
}

func badOperands(op string, left, right Value) *werrors.WeslyError {
	return werrors.New("TYPE-0001", map[string]any{
		"Operator": op, "Left": typeName(left), "Right": typeName(right),
	})
}

// ============================================================================
// Logical, conditional and cast
// ============================================================================

// evalLogical evaluates both operands unless short-circuiting is enabled
func (ev *Evaluator) evalLogical(node *ast.LogicalExpression, env *Environment) (Value, *werrors.WeslyError) {
	left, err := ev.Eval(node.Left, env)
	if err != nil {
		return Value{}, err
	}
	l := IsTruthy(left.Object)

	if ev.opts.ShortCircuit {
		if node.Operator == "&&" && !l {
			return nativeBoolToBoolean(false), nil
		}
		if node.Operator == "||" && l {
			return nativeBoolToBoolean(true), nil
		}
	}

	right, err := ev.Eval(node.Right, env)
	if err != nil {
		return Value{}, err
	}
	r := IsTruthy(right.Object)

	if node.Operator == "&&" {
		return nativeBoolToBoolean(l && r), nil
	}
	return nativeBoolToBoolean(l || r), nil
}

func (ev *Evaluator) evalConditional(node *ast.ConditionalExpression, env *Environment) (Value, *werrors.WeslyError) {
	cond, err := ev.Eval(node.Condition, env)
	if err != nil {
		return Value{}, err
	}
	if IsTruthy(cond.Object) {
		return ev.Eval(node.Consequence, env)
	}
	return ev.Eval(node.Alternative, env)
}

// evalCast implements 'x.(T)'. Numeric conversions truncate; anything converts
// to string through its printed form.
func (ev *Evaluator) evalCast(node *ast.CastExpression, env *Environment) (Value, *werrors.WeslyError) {
	v, err := ev.Eval(node.Value, env)
	if err != nil {
		return Value{}, err
	}
	target, err := resolveType(node.Type, env, "")
	if err != nil {
		return Value{}, err
	}

	if target == types.Any {
		return Value{Type: types.Any, Object: v.Object}, nil
	}
	if _, isBasic := target.(types.Basic); !isBasic {
		if _, isNil := v.Object.(*Nil); isNil {
			return Value{Type: target, Object: v.Object}, nil
		}
	}
	from := dynamicType(v)
	if from != types.Any && target.Equals(from) {
		return Value{Type: target, Object: v.Object.Copy()}, nil
	}

	switch target {
	case types.Int:
		switch o := v.Object.(type) {
		case *Float:
			return Value{Type: types.Int, Object: &Integer{Value: int64(o.Value)}}, nil
		case *Char:
			return Value{Type: types.Int, Object: &Integer{Value: int64(o.Value)}}, nil
		}
	case types.Float:
		if o, ok := v.Object.(*Integer); ok {
			return Value{Type: types.Float, Object: &Float{Value: float64(o.Value)}}, nil
		}
	case types.Char:
		if o, ok := v.Object.(*Integer); ok {
			return Value{Type: types.Char, Object: &Char{Value: rune(o.Value)}}, nil
		}
	case types.String:
		return Value{Type: types.String, Object: &String{Value: v.Object.Inspect()}}, nil
	}

	return Value{}, werrors.New("TYPE-0004", map[string]any{
		"Value": quoteIfString(v.Object), "From": typeName(v), "To": target.String(),
	})
}
