package evaluator

import (
	"strconv"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// evalCall evaluates the callee, then the arguments left to right, then applies.
func (ev *Evaluator) evalCall(node *ast.CallExpression, env *Environment) (Value, *werrors.WeslyError) {
	callee, err := ev.Eval(node.Function, env)
	if err != nil {
		return Value{}, err
	}
	switch callee.Object.(type) {
	case *Function, *Builtin:
	default:
		return Value{}, werrors.New("CALL-0001", map[string]any{"Callee": node.Function.String()})
	}

	args := make([]Value, len(node.Arguments))
	for i, a := range node.Arguments {
		v, err := ev.Eval(a, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	return ev.apply(callee.Object, node.Function.String(), args, env)
}

// Call invokes a wesly function value from Go, for embedders holding one.
func (ev *Evaluator) Call(fn Value, args []Value, env *Environment) (Value, error) {
	v, err := ev.apply(fn.Object, fn.Inspect(), args, env)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

func (ev *Evaluator) apply(callee Object, name string, args []Value, env *Environment) (Value, *werrors.WeslyError) {
	switch fn := callee.(type) {
	case *Builtin:
		return fn.Fn(env, args...)
	case *Function:
		return ev.callFunction(fn, name, args)
	}
	return Value{}, werrors.New("CALL-0001", map[string]any{"Callee": name})
}

// callFunction binds arguments in a child of the closure's environment and runs
// the body directly in that frame.
func (ev *Evaluator) callFunction(fn *Function, name string, args []Value) (Value, *werrors.WeslyError) {
	if ev.depth >= ev.opts.MaxCallDepth {
		return Value{}, werrors.New("CTRL-0002", map[string]any{"Max": ev.opts.MaxCallDepth})
	}
	ev.depth++
	defer func() { ev.depth-- }()
	ev.stats.Calls++
	ev.stats.MaxDepth = max(ev.stats.MaxDepth, ev.depth)

	callEnv, err := bindParams(fn, name, args)
	if err != nil {
		return Value{}, err
	}

	v, err := ev.evalStatements(fn.Body.Statements, callEnv)
	if err != nil {
		return Value{}, err
	}

	switch sig := v.Object.(type) {
	case *BreakSignal:
		return Value{}, werrors.New("CTRL-0001", map[string]any{"Keyword": "break"})
	case *ContinueSignal:
		return Value{}, werrors.New("CTRL-0001", map[string]any{"Keyword": "continue"})
	case *ReturnSignal:
		if sig.Value == nil {
			return Void(), nil
		}
		result := *sig.Value
		if ret := fn.FnType.Return; ret != nil && ret != types.Void {
			if _, isRef := ret.(*types.Ref); !isRef {
				resolved, err := resolveType(ret, fn.Env, "")
				if err != nil {
					return Value{}, err
				}
				if result, err = coerce(resolved, result, "return"); err != nil {
					return Value{}, err
				}
				result.Type = resolved
			}
		}
		return result, nil
	}
	return Void(), nil
}

func bindParams(fn *Function, name string, args []Value) (*Environment, *werrors.WeslyError) {
	params := fn.Params
	variadic := fn.FnType.IsVariadic()

	fixed := len(params)
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) > fixed) {
		want := strconv.Itoa(fixed)
		if variadic {
			want = "at least " + want
		}
		return nil, werrors.New("CALL-0002", map[string]any{"Callee": name, "Got": len(args), "Want": want})
	}

	callEnv := NewEnclosedEnvironment(fn.Env)
	for i := 0; i < fixed; i++ {
		p := params[i]
		declared, err := resolveType(p.Type, fn.Env, "")
		if err != nil {
			return nil, err
		}
		v, err := coerce(declared, args[i], "argument to "+name)
		if err != nil {
			return nil, err
		}
		v = bindable(v)
		if declared != nil {
			v.Type = declared
		}
		callEnv.Define(p.Name.Value, v, false)
	}

	if variadic {
		p := params[len(params)-1]
		declared, err := resolveType(p.Type, fn.Env, "")
		if err != nil {
			return nil, err
		}
		elem := declared.(*types.Variadic).Elem
		rest := make([]Object, 0, len(args)-fixed)
		for _, a := range args[fixed:] {
			v, err := coerce(elem, a, "argument to "+name)
			if err != nil {
				return nil, err
			}
			rest = append(rest, bindable(v).Object)
		}
		callEnv.Define(p.Name.Value, Value{Type: types.NewArray(elem), Object: &Array{Elements: rest, ElemType: elem}}, false)
	}

	return callEnv, nil
}
