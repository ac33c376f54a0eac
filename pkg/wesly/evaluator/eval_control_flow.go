package evaluator

import (
	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

func (ev *Evaluator) evalReturn(node *ast.ReturnStatement, env *Environment) (Value, *werrors.WeslyError) {
	if node.Value == nil {
		v := Void()
		return Value{Type: types.Void, Object: &ReturnSignal{Value: &v}}, nil
	}
	v, err := ev.Eval(node.Value, env)
	if err != nil {
		return Value{}, err
	}
	return Value{Type: v.Type, Object: &ReturnSignal{Value: &v}}, nil
}

// evalIf runs exactly one branch, or none when the condition fails and there is no else
func (ev *Evaluator) evalIf(node *ast.IfStatement, env *Environment) (Value, *werrors.WeslyError) {
	cond, err := ev.Eval(node.Condition, env)
	if err != nil {
		return Value{}, err
	}
	if IsTruthy(cond.Object) {
		return ev.evalBlock(node.Consequence, env)
	}
	if node.Alternative != nil {
		return ev.Eval(node.Alternative, env)
	}
	return Void(), nil
}

// loopOutcome tells a loop what to do after one run of its body
type loopOutcome int

const (
	loopNext loopOutcome = iota
	loopExit
	loopPropagate
)

// runBody runs one iteration's body in its own scope and classifies the result
func (ev *Evaluator) runBody(body *ast.BlockStatement, env *Environment) (Value, loopOutcome, *werrors.WeslyError) {
	v, err := ev.evalBlock(body, env)
	if err != nil {
		return Value{}, loopExit, err
	}
	switch v.Object.(type) {
	case *BreakSignal:
		return Void(), loopExit, nil
	case *ReturnSignal:
		return v, loopPropagate, nil
	}
	// a continue signal simply ends the body early
	return Void(), loopNext, nil
}

func (ev *Evaluator) evalLoop(node *ast.LoopStatement, env *Environment) (Value, *werrors.WeslyError) {
	switch node.LoopKind {
	case ast.LoopWhile:
		return ev.evalWhileLoop(node, env)
	case ast.LoopFor:
		return ev.evalForLoop(node, env)
	}

	for {
		v, outcome, err := ev.runBody(node.Body, env)
		if err != nil || outcome != loopNext {
			return v, err
		}
	}
}

func (ev *Evaluator) evalWhileLoop(node *ast.LoopStatement, env *Environment) (Value, *werrors.WeslyError) {
	for {
		cond, err := ev.Eval(node.Condition, env)
		if err != nil {
			return Value{}, err
		}
		if !IsTruthy(cond.Object) {
			return Void(), nil
		}
		v, outcome, err := ev.runBody(node.Body, env)
		if err != nil || outcome != loopNext {
			return v, err
		}
	}
}

// evalForLoop opens one scope for the init clause; each iteration's body gets its own child of it.
// Post clauses run after every iteration that was not broken out of, continue included.
func (ev *Evaluator) evalForLoop(node *ast.LoopStatement, env *Environment) (Value, *werrors.WeslyError) {
	loopEnv := NewEnclosedEnvironment(env)

	if node.Init != nil {
		if _, err := ev.Eval(node.Init, loopEnv); err != nil {
			return Value{}, err
		}
	}

	for {
		if node.Condition != nil {
			cond, err := ev.Eval(node.Condition, loopEnv)
			if err != nil {
				return Value{}, err
			}
			if !IsTruthy(cond.Object) {
				return Void(), nil
			}
		}

		v, outcome, err := ev.runBody(node.Body, loopEnv)
		if err != nil || outcome != loopNext {
			return v, err
		}

		for _, post := range node.Post {
			if _, err := ev.Eval(post, loopEnv); err != nil {
				return Value{}, err
			}
		}
	}
}
