package evaluator

import (
	"strings"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// ============================================================================
// Declarations
// ============================================================================

// evalDeclStatement binds every spec of a var or const declaration in order.
// All names are checked before anything is bound.
func (ev *Evaluator) evalDeclStatement(node *ast.DeclStatement, env *Environment) (Value, *werrors.WeslyError) {
	seen := make(map[string]bool, len(node.Specs))
	for _, spec := range node.Specs {
		name := spec.Name.Value
		if seen[name] {
			return Value{}, atNode(werrors.New("BIND-0002", map[string]any{"Name": name}), spec.Name)
		}
		seen[name] = true
		if env.Exists(name) {
			return Value{}, atNode(werrors.New("BIND-0001", map[string]any{"Name": name}), spec.Name)
		}
	}

	for _, spec := range node.Specs {
		var declared types.Type
		if spec.Type != nil {
			t, err := resolveType(spec.Type, env, "")
			if err != nil {
				return Value{}, atNode(err, spec.Name)
			}
			declared = t
		}

		init := spec.Value
		if init == nil {
			init = ast.ZeroValue(declared, spec.Name.Token)
		}
		v, err := ev.Eval(init, env)
		if err != nil {
			return Value{}, err
		}
		v, err = coerce(declared, v, "declaration")
		if err != nil {
			return Value{}, atNode(err, spec.Name)
		}

		v = bindable(v)
		if declared != nil {
			v.Type = declared
		}
		env.Define(spec.Name.Value, v, node.Const)
	}
	return Void(), nil
}

func (ev *Evaluator) evalFuncDecl(node *ast.FuncDecl, env *Environment) (Value, *werrors.WeslyError) {
	name := node.Name.Value
	if env.Exists(name) {
		return Value{}, atNode(werrors.New("BIND-0001", map[string]any{"Name": name}), node.Name)
	}
	// the closure captures env itself, so the function can see its own name
	env.Define(name, ev.evalFuncLiteral(node.Function, name, env), false)
	return Void(), nil
}

func (ev *Evaluator) evalFuncLiteral(node *ast.FuncLiteral, name string, env *Environment) Value {
	fn := &Function{
		Name:   name,
		Env:    env,
		Params: node.Params,
		Body:   node.Body,
		FnType: node.FuncType(),
	}
	return Value{Type: fn.FnType, Object: fn}
}

// evalObjectDecl binds a record spec. Field types naming other specs are resolved
// now; a field naming the record itself stays a reference.
func (ev *Evaluator) evalObjectDecl(node *ast.ObjectDecl, env *Environment) (Value, *werrors.WeslyError) {
	name := node.Name.Value
	if env.Exists(name) {
		return Value{}, atNode(werrors.New("BIND-0001", map[string]any{"Name": name}), node.Name)
	}

	fields := ast.FieldTypes(node.Fields)
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if seen[f.Name] {
			return Value{}, werrors.New("BIND-0002", map[string]any{"Name": f.Name})
		}
		seen[f.Name] = true
		t, err := resolveType(f.Type, env, name)
		if err != nil {
			return Value{}, err
		}
		fields[i].Type = t
	}

	spec := &ObjectSpec{Name: name, Fields: fields}
	env.Define(name, Value{Type: spec.Descriptor(), Object: spec}, false)
	return Void(), nil
}

// resolveType replaces references to declared record specs with their descriptors.
// References to self are left alone so recursive records stay finite.
func resolveType(t types.Type, env *Environment, self string) (types.Type, *werrors.WeslyError) {
	switch tt := t.(type) {
	case *types.Ref:
		if tt.Name == self {
			return tt, nil
		}
		v, err := env.Get(tt.Name)
		if err != nil {
			return nil, err
		}
		spec, ok := v.Object.(*ObjectSpec)
		if !ok {
			return nil, werrors.New("TYPE-0009", map[string]any{"Name": tt.Name})
		}
		return spec.Descriptor(), nil

	case *types.Array:
		elem, err := resolveType(tt.Elem, env, self)
		if err != nil {
			return nil, err
		}
		return &types.Array{Elem: elem, Length: tt.Length}, nil

	case *types.Variadic:
		elem, err := resolveType(tt.Elem, env, self)
		if err != nil {
			return nil, err
		}
		return &types.Variadic{Elem: elem}, nil

	case *types.Function:
		fn := &types.Function{Params: make([]types.Type, len(tt.Params))}
		for i, p := range tt.Params {
			rp, err := resolveType(p, env, self)
			if err != nil {
				return nil, err
			}
			fn.Params[i] = rp
		}
		ret, err := resolveType(tt.Return, env, self)
		if err != nil {
			return nil, err
		}
		fn.Return = ret
		return fn, nil

	case *types.Object:
		obj := &types.Object{Name: tt.Name, Fields: make([]types.Field, len(tt.Fields))}
		for i, f := range tt.Fields {
			ft, err := resolveType(f.Type, env, self)
			if err != nil {
				return nil, err
			}
			obj.Fields[i] = types.Field{Name: f.Name, Type: ft}
		}
		return obj, nil
	}
	return t, nil
}

// coerce checks that v may be stored where declared is expected, widening int to float.
// nil fits 'any' and every non-basic type, never int, float, char, string or bool.
func coerce(declared types.Type, v Value, context string) (Value, *werrors.WeslyError) {
	if declared == nil {
		return v, nil
	}
	if declared == types.Float {
		if i, ok := v.Object.(*Integer); ok {
			return Value{Type: types.Float, Object: &Float{Value: float64(i.Value)}}, nil
		}
	}
	if _, isNil := v.Object.(*Nil); isNil {
		if _, basic := declared.(types.Basic); !basic || declared == types.Any {
			return Value{Type: declared, Object: v.Object}, nil
		}
		return Value{}, werrors.New("TYPE-0005", map[string]any{
			"Value":   "nil",
			"Got":     "nil",
			"Want":    declared.String(),
			"Context": context,
		})
	}

	src := v.Type
	if src == nil || src == types.Any {
		src = dynamicType(v)
	}
	if !types.Assignable(declared, src) {
		return Value{}, werrors.New("TYPE-0005", map[string]any{
			"Value":   quoteIfString(v.Object),
			"Got":     src.String(),
			"Want":    declared.String(),
			"Context": context,
		})
	}
	return v, nil
}

// ============================================================================
// Assignment
// ============================================================================

// evalAssign evaluates every right-hand side before writing any target.
// For 'a op= b' the target's base and indices are evaluated once and serve
// both the read of the old value and the write.
func (ev *Evaluator) evalAssign(node *ast.AssignExpression, env *Environment) (Value, *werrors.WeslyError) {
	values := make([]Value, len(node.Targets))
	places := make([]*place, len(node.Targets))
	for i, target := range node.Targets {
		if node.Operator == "=" {
			v, err := ev.Eval(node.Values[i], env)
			if err != nil {
				return Value{}, err
			}
			values[i] = bindable(v)
			continue
		}

		p, err := ev.resolvePlace(target, env)
		if err != nil {
			return Value{}, atNode(err, target)
		}
		old, err := p.read()
		if err != nil {
			return Value{}, atNode(err, target)
		}
		rhs, err := ev.Eval(node.Values[i], env)
		if err != nil {
			return Value{}, err
		}
		v, err := evalBinaryOp(strings.TrimSuffix(node.Operator, "="), old, rhs)
		if err != nil {
			return Value{}, atNode(err, node)
		}
		values[i], places[i] = bindable(v), p
	}

	for i, target := range node.Targets {
		p := places[i]
		if p == nil {
			var err *werrors.WeslyError
			if p, err = ev.resolvePlace(target, env); err != nil {
				return Value{}, atNode(err, target)
			}
		}
		if err := p.write(values[i]); err != nil {
			return Value{}, atNode(err, target)
		}
	}
	return Void(), nil
}

// place is an assignment target whose base object and indices are already
// evaluated
type place struct {
	read  func() (Value, *werrors.WeslyError)
	write func(Value) *werrors.WeslyError
}

func (ev *Evaluator) resolvePlace(target ast.Expression, env *Environment) (*place, *werrors.WeslyError) {
	switch t := target.(type) {
	case *ast.Identifier:
		return &place{
			read: func() (Value, *werrors.WeslyError) { return ev.evalIdentifier(t, env) },
			write: func(v Value) *werrors.WeslyError {
				b, ok := env.Binding(t.Value)
				if !ok {
					return werrors.NewUndefinedIdentifier(t.Value, env.AllIdentifiers())
				}
				if b.Const {
					return werrors.New("BIND-0004", map[string]any{"Name": t.Value})
				}
				cv, err := coerce(b.Type, v, "assignment")
				if err != nil {
					return err
				}
				if b.Type != nil {
					cv.Type = b.Type
				}
				return env.Assign(t.Value, cv)
			},
		}, nil

	case *ast.ObjectMember:
		base, err := ev.Eval(t.Object, env)
		if err != nil {
			return nil, err
		}
		inst, ok := base.Object.(*ObjectInstance)
		if !ok {
			return nil, werrors.New("TYPE-0010", map[string]any{"Value": base.Inspect(), "Type": typeName(base)})
		}
		path := t.Path()
		parentPath, final := path[:len(path)-1], path[len(path)-1]
		return &place{
			read: func() (Value, *werrors.WeslyError) { return inst.GetFieldIn(path) },
			write: func(v Value) *werrors.WeslyError {
				holder := inst
				if len(parentPath) > 0 {
					parent, err := inst.GetFieldIn(parentPath)
					if err != nil {
						return err
					}
					if holder, ok = parent.Object.(*ObjectInstance); !ok {
						return werrors.New("TYPE-0010", map[string]any{"Value": parent.Inspect(), "Type": typeName(parent)})
					}
				}
				if declared, ok := holder.Spec.FieldType(final); ok {
					var err *werrors.WeslyError
					if v, err = coerce(declared, v, "assignment"); err != nil {
						return err
					}
				}
				return inst.FindAndSet(parentPath, final, v.Object)
			},
		}, nil

	case *ast.ArrayMember:
		base, err := ev.Eval(t.Array, env)
		if err != nil {
			return nil, err
		}
		arr, ok := base.Object.(*Array)
		if !ok {
			return nil, werrors.New("TYPE-0006", map[string]any{"Value": base.Inspect(), "Type": typeName(base)})
		}
		indices, err := ev.evalIndices(t.Indices, env)
		if err != nil {
			return nil, err
		}
		return &place{
			read: func() (Value, *werrors.WeslyError) { return indexInto(base, indices) },
			write: func(v Value) *werrors.WeslyError {
				if declared := elemTypeAt(arr, len(indices)); declared != nil {
					var err *werrors.WeslyError
					if v, err = coerce(declared, v, "assignment"); err != nil {
						return err
					}
				}
				return arr.FindIndexAndSetValue(indices, v.Object)
			},
		}, nil

	case *ast.GroupExpression:
		return ev.resolvePlace(t.Expression, env)
	}

	return nil, werrors.New("TYPE-0008", map[string]any{"Target": target.String()})
}

// elemTypeAt peels depth levels of element type off arr's static type.
// It returns nil when the type is unknown at that depth.
func elemTypeAt(arr *Array, depth int) types.Type {
	t := arr.ElemType
	for i := 1; i < depth; i++ {
		at, ok := t.(*types.Array)
		if !ok {
			return nil
		}
		t = at.Elem
	}
	if t == types.Any {
		return nil
	}
	return t
}

// evalUpdate implements postfix ++ and --: the old value is the result and the
// new one is written back through the assignment path, so const is enforced.
func (ev *Evaluator) evalUpdate(node *ast.UpdateExpression, env *Environment) (Value, *werrors.WeslyError) {
	switch node.Target.(type) {
	case *ast.Identifier, *ast.ObjectMember, *ast.ArrayMember:
	default:
		return Value{}, werrors.New("TYPE-0008", map[string]any{"Target": node.Target.String()})
	}

	p, err := ev.resolvePlace(node.Target, env)
	if err != nil {
		return Value{}, atNode(err, node.Target)
	}
	old, err := p.read()
	if err != nil {
		return Value{}, atNode(err, node.Target)
	}

	delta := int64(1)
	if node.Operator == "--" {
		delta = -1
	}

	var next Value
	switch o := old.Object.(type) {
	case *Integer:
		next = Value{Type: types.Int, Object: &Integer{Value: o.Value + delta}}
	case *Float:
		next = Value{Type: types.Float, Object: &Float{Value: o.Value + float64(delta)}}
	case *Char:
		next = Value{Type: types.Char, Object: &Char{Value: o.Value + rune(delta)}}
	default:
		return Value{}, werrors.New("TYPE-0007", map[string]any{
			"Operator": node.Operator, "Value": old.Inspect(), "Type": typeName(old),
		})
	}

	if err := p.write(next); err != nil {
		return Value{}, atNode(err, node.Target)
	}
	return old, nil
}
