package evaluator

import (
	"strings"
	"unicode/utf8"

	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

var (
	printType = &types.Function{Params: []types.Type{&types.Variadic{Elem: types.Any}}, Return: types.Void}
	unaryType = func(ret types.Type) *types.Function {
		return &types.Function{Params: []types.Type{types.Any}, Return: ret}
	}
)

// builtins are bound as constants in every root environment
var builtins = map[string]*Builtin{
	"println": {Name: "println", FnType: printType, Fn: func(env *Environment, args ...Value) (Value, *werrors.WeslyError) {
		env.Logger.LogLine(joinInspect(args))
		return Void(), nil
	}},

	"print": {Name: "print", FnType: printType, Fn: func(env *Environment, args ...Value) (Value, *werrors.WeslyError) {
		env.Logger.Log(joinInspect(args))
		return Void(), nil
	}},

	"len": {Name: "len", FnType: unaryType(types.Int), Fn: func(env *Environment, args ...Value) (Value, *werrors.WeslyError) {
		if len(args) != 1 {
			return Value{}, werrors.New("CALL-0003", nil)
		}
		switch arg := args[0].Object.(type) {
		case *String:
			return Value{Type: types.Int, Object: &Integer{Value: int64(utf8.RuneCountInString(arg.Value))}}, nil
		case *Array:
			return Value{Type: types.Int, Object: &Integer{Value: int64(len(arg.Elements))}}, nil
		}
		return Value{}, werrors.New("CALL-0004", map[string]any{"Value": quoteIfString(args[0].Object)})
	}},

	"copy": {Name: "copy", FnType: unaryType(types.Any), Fn: func(env *Environment, args ...Value) (Value, *werrors.WeslyError) {
		if len(args) != 1 {
			return Value{}, werrors.New("CALL-0005", map[string]any{"Name": "copy"})
		}
		return args[0].Copy(), nil
	}},

	"typeof": {Name: "typeof", FnType: unaryType(types.String), Fn: func(env *Environment, args ...Value) (Value, *werrors.WeslyError) {
		if len(args) != 1 {
			return Value{}, werrors.New("CALL-0005", map[string]any{"Name": "typeof"})
		}
		return Value{Type: types.String, Object: &String{Value: typeName(args[0])}}, nil
	}},
}

// BuiltinNames lists the builtin functions, for completion and help output
func BuiltinNames() []string {
	return []string{"copy", "len", "print", "println", "typeof"}
}

func joinInspect(args []Value) string {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(a.Inspect())
	}
	return sb.String()
}
