// Package evaluator walks a wesly syntax tree and produces values.
//
// Every evaluation step returns a Value and a *errors.WeslyError. Errors are
// never panicked; they are checked and returned at each composition point.
// return, break and continue travel as signal objects inside Value.Object and
// are consumed by the function call or loop that owns them.
package evaluator

import (
	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// DefaultMaxCallDepth bounds function recursion unless configured otherwise
const DefaultMaxCallDepth = 10000

// Options tunes an Evaluator
type Options struct {
	// MaxCallDepth is the deepest allowed call nesting; zero means DefaultMaxCallDepth.
	MaxCallDepth int
	// ShortCircuit makes && and || skip the right operand once the result is known.
	ShortCircuit bool
}

// Stats counts work done by an Evaluator
type Stats struct {
	Nodes    int64 // nodes evaluated
	Calls    int64 // user function calls
	MaxDepth int   // deepest call nesting reached
}

// Evaluator holds the state of one run. It is not safe for concurrent use.
type Evaluator struct {
	opts  Options
	depth int
	stats Stats
}

// New creates an evaluator
func New(opts Options) *Evaluator {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Evaluator{opts: opts}
}

// Stats returns the counters collected so far
func (ev *Evaluator) Stats() Stats {
	return ev.stats
}

// Run evaluates a program with default options
func Run(program *ast.Program, env *Environment) (Value, error) {
	return New(Options{}).Run(program, env)
}

// Run evaluates the top-level statements in order against env.
// The first error stops the run. A top-level return ends it early and its
// payload becomes the result; otherwise the result is the value of the last statement.
func (ev *Evaluator) Run(program *ast.Program, env *Environment) (Value, error) {
	v, err := ev.evalProgram(program, env)
	if err != nil {
		if err.File == "" && env.Filename != "" {
			err = err.WithFile(env.Filename)
		}
		return Value{}, err
	}
	return v, nil
}

// Eval evaluates one node. The returned error, if any, carries the position
// of the innermost node that failed.
func (ev *Evaluator) Eval(node ast.Node, env *Environment) (Value, *werrors.WeslyError) {
	ev.stats.Nodes++
	v, err := ev.eval(node, env)
	if err != nil {
		if !err.HasPosition() {
			line, col := node.Position()
			err = err.WithPosition(line, col)
		}
		return Value{}, err
	}
	return v, nil
}

func (ev *Evaluator) eval(node ast.Node, env *Environment) (Value, *werrors.WeslyError) {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return ev.evalProgram(node, env)
	case *ast.DeclStatement:
		return ev.evalDeclStatement(node, env)
	case *ast.FuncDecl:
		return ev.evalFuncDecl(node, env)
	case *ast.ObjectDecl:
		return ev.evalObjectDecl(node, env)
	case *ast.BlockStatement:
		return ev.evalBlock(node, env)
	case *ast.ExpressionStatement:
		if node.Expression == nil {
			return Void(), nil
		}
		return ev.Eval(node.Expression, env)
	case *ast.ReturnStatement:
		return ev.evalReturn(node, env)
	case *ast.BreakStatement:
		return Value{Type: types.Void, Object: &BreakSignal{}}, nil
	case *ast.ContinueStatement:
		return Value{Type: types.Void, Object: &ContinueSignal{}}, nil
	case *ast.IfStatement:
		return ev.evalIf(node, env)
	case *ast.LoopStatement:
		return ev.evalLoop(node, env)

	// Literals
	case *ast.Identifier:
		return ev.evalIdentifier(node, env)
	case *ast.IntegerLiteral:
		return Value{Type: types.Int, Object: &Integer{Value: node.Value}}, nil
	case *ast.FloatLiteral:
		return Value{Type: types.Float, Object: &Float{Value: node.Value}}, nil
	case *ast.CharLiteral:
		return Value{Type: types.Char, Object: &Char{Value: node.Value}}, nil
	case *ast.StringLiteral:
		return Value{Type: types.String, Object: &String{Value: node.Value}}, nil
	case *ast.BooleanLiteral:
		return nativeBoolToBoolean(node.Value), nil
	case *ast.NilLiteral:
		return Value{Type: types.Any, Object: NIL}, nil
	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(node, env)
	case *ast.FuncLiteral:
		return ev.evalFuncLiteral(node, "", env), nil
	case *ast.ObjectInit:
		return ev.evalObjectInit(node, env)
	case *ast.InlineObjectInit:
		return ev.evalInlineObjectInit(node, env)

	// Expressions
	case *ast.GroupExpression:
		return ev.Eval(node.Expression, env)
	case *ast.UnaryExpression:
		return ev.evalUnary(node, env)
	case *ast.BinaryExpression:
		return ev.evalBinary(node, env)
	case *ast.LogicalExpression:
		return ev.evalLogical(node, env)
	case *ast.AssignExpression:
		return ev.evalAssign(node, env)
	case *ast.UpdateExpression:
		return ev.evalUpdate(node, env)
	case *ast.ConditionalExpression:
		return ev.evalConditional(node, env)
	case *ast.CastExpression:
		return ev.evalCast(node, env)
	case *ast.CallExpression:
		return ev.evalCall(node, env)
	case *ast.ArrayMember:
		return ev.evalArrayMember(node, env)
	case *ast.ObjectMember:
		return ev.evalObjectMember(node, env)
	}

	return Value{}, werrors.NewSimple(werrors.ClassType, "unknown node type: "+node.Kind().String())
}

func (ev *Evaluator) evalProgram(program *ast.Program, env *Environment) (Value, *werrors.WeslyError) {
	result := Void()
	for _, stmt := range program.Statements {
		v, err := ev.Eval(stmt, env)
		if err != nil {
			return Value{}, err
		}
		switch sig := v.Object.(type) {
		case *ReturnSignal:
			if sig.Value == nil {
				return Void(), nil
			}
			return *sig.Value, nil
		case *BreakSignal:
			return Value{}, controlError("break", stmt)
		case *ContinueSignal:
			return Value{}, controlError("continue", stmt)
		}
		result = v
	}
	return result, nil
}

// evalBlock runs a block in a fresh child scope
func (ev *Evaluator) evalBlock(block *ast.BlockStatement, env *Environment) (Value, *werrors.WeslyError) {
	return ev.evalStatements(block.Statements, NewEnclosedEnvironment(env))
}

// evalStatements runs statements in env, stopping at the first error or signal
func (ev *Evaluator) evalStatements(stmts []ast.Statement, env *Environment) (Value, *werrors.WeslyError) {
	for _, stmt := range stmts {
		v, err := ev.Eval(stmt, env)
		if err != nil {
			return Value{}, err
		}
		if isSignal(v.Object) {
			return v, nil
		}
	}
	return Void(), nil
}

func (ev *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) (Value, *werrors.WeslyError) {
	v, err := env.Get(node.Value)
	if err != nil {
		return Value{}, err
	}
	if v.Type == nil || v.Type == types.Any {
		v.Type = dynamicType(v)
	}
	return v, nil
}
