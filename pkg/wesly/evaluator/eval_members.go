package evaluator

import (
	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// ============================================================================
// Array literals and indexing
// ============================================================================

// evalArrayLiteral builds a fresh array. Typed literals check every element and
// pad sized arrays with zero values; bare literals infer their element type.
func (ev *Evaluator) evalArrayLiteral(node *ast.ArrayLiteral, env *Environment) (Value, *werrors.WeslyError) {
	if node.Type == nil {
		elems := make([]Object, len(node.Elements))
		var elemType types.Type
		for i, e := range node.Elements {
			v, err := ev.Eval(e, env)
			if err != nil {
				return Value{}, err
			}
			elems[i] = bindable(v).Object
			t := dynamicType(v)
			switch {
			case i == 0:
				elemType = t
			case !elemType.Equals(t) || !t.Equals(elemType):
				elemType = types.Any
			}
		}
		if elemType == nil {
			elemType = types.Any
		}
		return Value{Type: types.NewArray(elemType), Object: &Array{Elements: elems, ElemType: elemType}}, nil
	}

	resolved, err := resolveType(node.Type, env, "")
	if err != nil {
		return Value{}, err
	}
	arrType := resolved.(*types.Array)

	if arrType.Length >= 0 && len(node.Elements) > arrType.Length {
		return Value{}, werrors.New("INDEX-0001", map[string]any{
			"Index": arrType.Length, "Array": node.String(),
		})
	}

	elems := make([]Object, 0, max(len(node.Elements), arrType.Length))
	for _, e := range node.Elements {
		v, err := ev.Eval(e, env)
		if err != nil {
			return Value{}, err
		}
		v, err = coerce(arrType.Elem, v, "array literal")
		if err != nil {
			return Value{}, atNode(err, e)
		}
		elems = append(elems, bindable(v).Object)
	}
	for len(elems) < arrType.Length {
		zero, err := ev.Eval(ast.ZeroValue(arrType.Elem, node.Token), env)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, zero.Object)
	}

	return Value{Type: arrType, Object: &Array{Elements: elems, ElemType: arrType.Elem}}, nil
}

// evalIndices evaluates index expressions, all of which must be integers
func (ev *Evaluator) evalIndices(exprs []ast.Expression, env *Environment) ([]int64, *werrors.WeslyError) {
	indices := make([]int64, len(exprs))
	for i, e := range exprs {
		v, err := ev.Eval(e, env)
		if err != nil {
			return nil, err
		}
		n, ok := v.Object.(*Integer)
		if !ok {
			return nil, atNode(werrors.New("TYPE-0003", map[string]any{"Got": typeName(v)}), e)
		}
		indices[i] = n.Value
	}
	return indices, nil
}

// evalArrayMember reads a[i][j]... Strings index to their i-th character.
func (ev *Evaluator) evalArrayMember(node *ast.ArrayMember, env *Environment) (Value, *werrors.WeslyError) {
	base, err := ev.Eval(node.Array, env)
	if err != nil {
		return Value{}, err
	}
	indices, err := ev.evalIndices(node.Indices, env)
	if err != nil {
		return Value{}, err
	}
	return indexInto(base, indices)
}

// indexInto walks already evaluated indices down from base
func indexInto(base Value, indices []int64) (Value, *werrors.WeslyError) {
	current := base
	for _, idx := range indices {
		switch o := current.Object.(type) {
		case *Array:
			if idx < 0 || idx >= int64(len(o.Elements)) {
				return Value{}, werrors.New("INDEX-0001", map[string]any{"Index": idx, "Array": o.Inspect()})
			}
			elem := o.Elements[idx]
			current = Value{Type: fieldValueType(o.ElemType, elem), Object: elem}

		case *String:
			runes := []rune(o.Value)
			if idx < 0 || idx >= int64(len(runes)) {
				return Value{}, werrors.New("INDEX-0001", map[string]any{"Index": idx, "Array": o.Value})
			}
			current = Value{Type: types.Char, Object: &Char{Value: runes[idx]}}

		default:
			return Value{}, werrors.New("TYPE-0006", map[string]any{
				"Value": quoteIfString(current.Object), "Type": typeName(current),
			})
		}
	}
	return current, nil
}

// ============================================================================
// Records
// ============================================================================

// evalObjectInit builds 'Name{field: value, ...}'. Values are evaluated before
// the spec is looked up.
func (ev *Evaluator) evalObjectInit(node *ast.ObjectInit, env *Environment) (Value, *werrors.WeslyError) {
	names, values, err := ev.evalFieldValues(node.Fields, env)
	if err != nil {
		return Value{}, err
	}

	v, err := env.Get(node.Name.Value)
	if err != nil {
		return Value{}, err
	}
	spec, ok := v.Object.(*ObjectSpec)
	if !ok {
		return Value{}, werrors.New("TYPE-0009", map[string]any{"Name": node.Name.Value})
	}
	return instantiate(spec, names, values, node.Fields)
}

// evalInlineObjectInit builds 'object{a int; b string}{a: 1, b: "x"}' against an anonymous spec
func (ev *Evaluator) evalInlineObjectInit(node *ast.InlineObjectInit, env *Environment) (Value, *werrors.WeslyError) {
	resolved, err := resolveType(node.Type, env, "")
	if err != nil {
		return Value{}, err
	}
	obj := resolved.(*types.Object)

	names, values, err := ev.evalFieldValues(node.Fields, env)
	if err != nil {
		return Value{}, err
	}
	return instantiate(&ObjectSpec{Name: obj.Name, Fields: obj.Fields}, names, values, node.Fields)
}

func (ev *Evaluator) evalFieldValues(fields []*ast.FieldValue, env *Environment) ([]string, []Value, *werrors.WeslyError) {
	names := make([]string, len(fields))
	values := make([]Value, len(fields))
	for i, f := range fields {
		v, err := ev.Eval(f.Value, env)
		if err != nil {
			return nil, nil, err
		}
		names[i] = f.Name.Value
		values[i] = bindable(v)
	}
	return names, values, nil
}

func instantiate(spec *ObjectSpec, names []string, values []Value, fields []*ast.FieldValue) (Value, *werrors.WeslyError) {
	objs := make([]Object, len(values))
	for i, v := range values {
		declared, ok := spec.FieldType(names[i])
		if !ok {
			return Value{}, atNode(werrors.New("FIELD-0001", map[string]any{"Field": names[i], "Spec": spec.Inspect()}), fields[i].Name)
		}
		cv, err := coerce(declared, v, "field "+names[i])
		if err != nil {
			return Value{}, atNode(err, fields[i].Name)
		}
		objs[i] = cv.Object
	}

	inst, err := spec.CallWithNamedArgs(names, objs)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: spec.Descriptor(), Object: inst}, nil
}

// evalObjectMember reads r.a.b...
func (ev *Evaluator) evalObjectMember(node *ast.ObjectMember, env *Environment) (Value, *werrors.WeslyError) {
	base, err := ev.Eval(node.Object, env)
	if err != nil {
		return Value{}, err
	}
	inst, ok := base.Object.(*ObjectInstance)
	if !ok {
		return Value{}, werrors.New("TYPE-0010", map[string]any{"Value": quoteIfString(base.Object), "Type": typeName(base)})
	}
	return inst.GetFieldIn(node.Path())
}
