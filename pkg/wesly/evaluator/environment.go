package evaluator

import (
	"sort"

	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// Binding is a mutable cell in one scope frame
type Binding struct {
	Type   types.Type
	Object Object
	Const  bool
}

// Environment is one frame of the lexical scope chain
type Environment struct {
	store    map[string]*Binding
	outer    *Environment
	Filename string
	Logger   Logger // receives print/println output
}

// NewEnvironment creates a root environment seeded with the builtins
func NewEnvironment() *Environment {
	env := newFrame(nil)
	env.Logger = DefaultLogger
	for name, b := range builtins {
		env.Define(name, Value{Type: b.FnType, Object: b}, true)
	}
	return env
}

// NewEnclosedEnvironment creates a child frame of outer
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return newFrame(outer)
}

func newFrame(outer *Environment) *Environment {
	env := &Environment{store: make(map[string]*Binding), outer: outer}
	if outer != nil {
		env.Filename = outer.Filename
		env.Logger = outer.Logger
	}
	return env
}

// Define inserts name into this frame unconditionally. Redeclaration checks are the caller's job.
func (e *Environment) Define(name string, v Value, isConst bool) {
	e.store[name] = &Binding{Type: v.Type, Object: v.Object, Const: isConst}
}

// Get looks name up through the chain
func (e *Environment) Get(name string) (Value, *werrors.WeslyError) {
	b, ok := e.lookup(name)
	if !ok {
		return Value{}, werrors.NewUndefinedIdentifier(name, e.AllIdentifiers())
	}
	return Value{Type: b.Type, Object: b.Object}, nil
}

// Binding returns the cell for name, searching the chain
func (e *Environment) Binding(name string) (*Binding, bool) {
	return e.lookup(name)
}

func (e *Environment) lookup(name string) (*Binding, bool) {
	for env := e; env != nil; env = env.outer {
		if b, ok := env.store[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// Assign updates the cell owning name in place
func (e *Environment) Assign(name string, v Value) *werrors.WeslyError {
	b, ok := e.lookup(name)
	if !ok {
		return werrors.NewUndefinedIdentifier(name, e.AllIdentifiers())
	}
	if b.Const {
		return werrors.New("BIND-0004", map[string]any{"Name": name})
	}
	b.Object = v.Object
	if v.Type != nil {
		b.Type = v.Type
	}
	return nil
}

// Exists checks only this frame, so shadowing an outer name stays legal
func (e *Environment) Exists(name string) bool {
	_, ok := e.store[name]
	return ok
}

// IsConst reports whether the visible binding for name is const
func (e *Environment) IsConst(name string) bool {
	b, ok := e.lookup(name)
	return ok && b.Const
}

// Outer returns the enclosing frame, nil at the root
func (e *Environment) Outer() *Environment {
	return e.outer
}

// AllIdentifiers returns every visible name, sorted, inner shadowing outer
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// LocalIdentifiers returns the names defined in this frame only, sorted
func (e *Environment) LocalIdentifiers() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
