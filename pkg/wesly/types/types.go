// Package types defines the structural type descriptors that tag every wesly value.
//
// Descriptors are pure values: Copy, Equals and String never fail and never
// touch runtime state. Any compares equal to every other descriptor.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every descriptor variant.
type Type interface {
	Copy() Type
	Equals(other Type) bool
	String() string
}

// Basic is one of the atomic descriptors.
type Basic int

const (
	Int Basic = iota
	Float
	Char
	String
	Bool
	Void
	Any
)

var basicNames = [...]string{
	Int:    "int",
	Float:  "float",
	Char:   "char",
	String: "string",
	Bool:   "bool",
	Void:   "void",
	Any:    "any",
}

func (b Basic) Copy() Type { return b }

func (b Basic) Equals(other Type) bool {
	if b == Any || isAny(other) {
		return true
	}
	o, ok := other.(Basic)
	return ok && o == b
}

func (b Basic) String() string {
	if int(b) < len(basicNames) {
		return basicNames[b]
	}
	return fmt.Sprintf("basic(%d)", int(b))
}

// Variadic is the type of a trailing '...T' parameter.
type Variadic struct {
	Elem Type
}

func (v *Variadic) Copy() Type { return &Variadic{Elem: copyOf(v.Elem)} }

func (v *Variadic) Equals(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*Variadic)
	return ok && equal(v.Elem, o.Elem)
}

func (v *Variadic) String() string { return "..." + stringOf(v.Elem) }

// Function describes a callable's parameter list and result.
type Function struct {
	Params []Type
	Return Type
}

func (f *Function) Copy() Type {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = copyOf(p)
	}
	return &Function{Params: params, Return: copyOf(f.Return)}
}

func (f *Function) Equals(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*Function)
	if !ok || len(f.Params) != len(o.Params) {
		return false
	}
	for i := range f.Params {
		if !equal(f.Params[i], o.Params[i]) {
			return false
		}
	}
	return equal(f.Return, o.Return)
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = stringOf(p)
	}
	ret := ""
	if f.Return != nil && !isVoid(f.Return) {
		ret = " " + stringOf(f.Return)
	}
	return "func(" + strings.Join(params, ", ") + ")" + ret
}

// IsVariadic reports whether the last parameter collects the remaining arguments.
func (f *Function) IsVariadic() bool {
	if len(f.Params) == 0 {
		return false
	}
	_, ok := f.Params[len(f.Params)-1].(*Variadic)
	return ok
}

// Array is a homogeneous sequence. Length < 0 means the length is not part of the type.
type Array struct {
	Elem   Type
	Length int
}

// NewArray returns an unsized array type.
func NewArray(elem Type) *Array {
	return &Array{Elem: elem, Length: -1}
}

func (a *Array) Copy() Type { return &Array{Elem: copyOf(a.Elem), Length: a.Length} }

// Equals compares element types; lengths only matter when both sides are sized.
func (a *Array) Equals(other Type) bool {
	if isAny(other) {
		return true
	}
	o, ok := other.(*Array)
	if !ok {
		return false
	}
	if a.Length >= 0 && o.Length >= 0 && a.Length != o.Length {
		return false
	}
	return equal(a.Elem, o.Elem)
}

func (a *Array) String() string {
	if a.Length >= 0 {
		return fmt.Sprintf("[%d]%s", a.Length, stringOf(a.Elem))
	}
	return "[]" + stringOf(a.Elem)
}

// Field is one named, typed member of a record.
type Field struct {
	Name string
	Type Type
}

// Object is a record type. An empty Name marks an anonymous, structurally typed record.
type Object struct {
	Name   string
	Fields []Field
}

func (o *Object) Copy() Type {
	fields := make([]Field, len(o.Fields))
	for i, f := range o.Fields {
		fields[i] = Field{Name: f.Name, Type: copyOf(f.Type)}
	}
	return &Object{Name: o.Name, Fields: fields}
}

// Equals is structural when either side is anonymous and nominal plus shape otherwise.
func (o *Object) Equals(other Type) bool {
	if isAny(other) {
		return true
	}
	switch t := other.(type) {
	case *Object:
		if o == t {
			return true
		}
		if o.Name != "" && t.Name != "" && o.Name != t.Name {
			return false
		}
		return sameFields(o.Fields, t.Fields)
	case *Ref:
		return o.Name != "" && o.Name == t.Name
	}
	return false
}

func (o *Object) String() string {
	if o.Name != "" {
		return o.Name
	}
	return "object" + o.FieldString()
}

// FieldString renders the field list as '{a int; b string}'.
func (o *Object) FieldString() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = f.Name + " " + stringOf(f.Type)
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Field looks up a field's declared type.
func (o *Object) Field(name string) (Type, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Ref names a declared object type before the evaluator resolves it.
type Ref struct {
	Name string
}

func (r *Ref) Copy() Type { return &Ref{Name: r.Name} }

func (r *Ref) Equals(other Type) bool {
	if isAny(other) {
		return true
	}
	switch t := other.(type) {
	case *Ref:
		return t.Name == r.Name
	case *Object:
		return t.Name == r.Name
	}
	return false
}

func (r *Ref) String() string { return r.Name }

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	b, ok := t.(Basic)
	return ok && (b == Int || b == Float)
}

// Assignable reports whether a value of type src may be stored where dst is declared.
// Beyond equality, an int widens into a float.
func Assignable(dst, src Type) bool {
	if dst == nil || src == nil {
		return true
	}
	if dst.Equals(src) {
		return true
	}
	return dst == Float && src == Int
}

func sameFields(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func isAny(t Type) bool {
	b, ok := t.(Basic)
	return ok && b == Any
}

func isVoid(t Type) bool {
	b, ok := t.(Basic)
	return ok && b == Void
}

func equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

func copyOf(t Type) Type {
	if t == nil {
		return nil
	}
	return t.Copy()
}

func stringOf(t Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
