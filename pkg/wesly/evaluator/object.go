package evaluator

import (
	"strconv"
	"strings"

	"github.com/wesly-lang/wesly/pkg/wesly/ast"
	werrors "github.com/wesly-lang/wesly/pkg/wesly/errors"
	"github.com/wesly-lang/wesly/pkg/wesly/types"
)

// ObjectType represents the type of objects in our language
type ObjectType string

const (
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	CHAR_OBJ     = "CHAR"
	STRING_OBJ   = "STRING"
	BOOLEAN_OBJ  = "BOOLEAN"
	NIL_OBJ      = "NIL"
	ARRAY_OBJ    = "ARRAY"
	INSTANCE_OBJ = "OBJECT"
	SPEC_OBJ     = "TYPE_SPEC"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	RETURN_OBJ   = "RETURN"
	BREAK_OBJ    = "BREAK"
	CONTINUE_OBJ = "CONTINUE"
)

// Object represents all runtime values.
type Object interface {
	Type() ObjectType
	Inspect() string
	Copy() Object
	Equals(other Object) bool
}

// Value pairs a runtime object with the type descriptor it was produced under.
// Every evaluation step yields one.
type Value struct {
	Type   types.Type
	Object Object
}

// NIL is shared by evaluations that produce nothing.
var NIL = &Nil{}

// Void is the value of statements, loops and bare returns.
func Void() Value {
	return Value{Type: types.Void, Object: NIL}
}

// Copy deep-copies the object and type of v.
func (v Value) Copy() Value {
	c := Value{Object: v.Object.Copy()}
	if v.Type != nil {
		c.Type = v.Type.Copy()
	}
	return c
}

func (v Value) Inspect() string {
	if v.Object == nil {
		return "nil"
	}
	return v.Object.Inspect()
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Copy() Object     { return &Integer{Value: i.Value} }
func (i *Integer) Equals(o Object) bool {
	other, ok := o.(*Integer)
	return ok && other.Value == i.Value
}

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return ast.FormatFloat(f.Value) }
func (f *Float) Copy() Object     { return &Float{Value: f.Value} }
func (f *Float) Equals(o Object) bool {
	other, ok := o.(*Float)
	return ok && other.Value == f.Value
}

// Char holds a single rune; the zero char renders as nothing
type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType { return CHAR_OBJ }
func (c *Char) Copy() Object     { return &Char{Value: c.Value} }
func (c *Char) Equals(o Object) bool {
	other, ok := o.(*Char)
	return ok && other.Value == c.Value
}
func (c *Char) Inspect() string {
	if c.Value == 0 {
		return ""
	}
	return string(c.Value)
}

// String represents string objects
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }
func (s *String) Copy() Object     { return &String{Value: s.Value} }
func (s *String) Equals(o Object) bool {
	other, ok := o.(*String)
	return ok && other.Value == s.Value
}

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }
func (b *Boolean) Copy() Object     { return &Boolean{Value: b.Value} }
func (b *Boolean) Equals(o Object) bool {
	other, ok := o.(*Boolean)
	return ok && other.Value == b.Value
}

// Nil is the absent value
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }
func (n *Nil) Copy() Object     { return &Nil{} }
func (n *Nil) Equals(o Object) bool {
	_, ok := o.(*Nil)
	return ok
}

// ============================================================================
// Arrays
// ============================================================================

// Array is an ordered, mutable sequence shared by reference between bindings
type Array struct {
	Elements []Object
	ElemType types.Type
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }

func (a *Array) Inspect() string { return inspectIn(a, map[Object]bool{}) }

func (a *Array) inspectIn(seen map[Object]bool) string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = inspectIn(e, seen)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) Copy() Object { return copyIn(a, map[Object]Object{}) }

func (a *Array) copyIn(memo map[Object]Object) Object {
	c := &Array{Elements: make([]Object, len(a.Elements))}
	if a.ElemType != nil {
		c.ElemType = a.ElemType.Copy()
	}
	memo[a] = c
	for i, e := range a.Elements {
		c.Elements[i] = copyIn(e, memo)
	}
	return c
}

func (a *Array) Equals(o Object) bool { return equalsIn(a, o, map[[2]Object]bool{}) }

func (a *Array) equalsIn(o Object, seen map[[2]Object]bool) bool {
	other, ok := o.(*Array)
	if !ok || len(other.Elements) != len(a.Elements) {
		return false
	}
	for i := range a.Elements {
		if !equalsIn(a.Elements[i], other.Elements[i], seen) {
			return false
		}
	}
	return true
}

// DimensionSize is the deepest array nesting reachable from a; a flat array is 1.
// An array that contains itself counts once.
func (a *Array) DimensionSize() int {
	return a.dimensionIn(map[*Array]bool{})
}

func (a *Array) dimensionIn(onPath map[*Array]bool) int {
	onPath[a] = true
	defer delete(onPath, a)
	deepest := 0
	for _, e := range a.Elements {
		if inner, ok := e.(*Array); ok && !onPath[inner] {
			deepest = max(deepest, inner.dimensionIn(onPath))
		}
	}
	return deepest + 1
}

// FindIndexAndSetValue walks indices level by level and stores value at the last one.
func (a *Array) FindIndexAndSetValue(indices []int64, value Object) *werrors.WeslyError {
	if len(indices) == 0 {
		return nil
	}
	if len(indices) > a.DimensionSize()+1 {
		return werrors.New("INDEX-0002", map[string]any{"Count": len(indices), "Array": a.Inspect()})
	}

	current := a
	for level, idx := range indices {
		if idx < 0 || idx >= int64(len(current.Elements)) {
			return werrors.New("INDEX-0001", map[string]any{"Index": idx, "Array": current.Inspect()})
		}
		if level == len(indices)-1 {
			current.Elements[idx] = value
			return nil
		}
		next, ok := current.Elements[idx].(*Array)
		if !ok {
			return werrors.New("TYPE-0006", map[string]any{
				"Value": current.Elements[idx].Inspect(),
				"Type":  typeOfObject(current.Elements[idx]).String(),
			})
		}
		current = next
	}
	return nil
}

// ============================================================================
// Records
// ============================================================================

// ObjectSpec is a record type at runtime; calling it builds instances
type ObjectSpec struct {
	Name   string
	Fields []types.Field
}

func (s *ObjectSpec) Type() ObjectType { return SPEC_OBJ }

func (s *ObjectSpec) Inspect() string {
	return "<TypeSpec: " + s.Name + s.descriptor().FieldString() + ">"
}

func (s *ObjectSpec) Copy() Object {
	return &ObjectSpec{Name: s.Name, Fields: s.descriptor().Copy().(*types.Object).Fields}
}

func (s *ObjectSpec) Equals(o Object) bool {
	other, ok := o.(*ObjectSpec)
	if !ok {
		return false
	}
	return s == other || s.descriptor().Equals(other.descriptor())
}

func (s *ObjectSpec) descriptor() *types.Object {
	return &types.Object{Name: s.Name, Fields: s.Fields}
}

// Descriptor is the record type instances of s carry
func (s *ObjectSpec) Descriptor() *types.Object {
	return s.descriptor().Copy().(*types.Object)
}

// DisplayName is the spec name, or its field list for anonymous records
func (s *ObjectSpec) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.descriptor().String()
}

// FieldType returns the declared type of a field
func (s *ObjectSpec) FieldType(name string) (types.Type, bool) {
	return s.descriptor().Field(name)
}

// Call builds an empty instance
func (s *ObjectSpec) Call() *ObjectInstance {
	return &ObjectInstance{Spec: s, Fields: map[string]Object{}}
}

// CallWithNamedArgs builds an instance from name/value pairs. Omitted fields stay absent.
func (s *ObjectSpec) CallWithNamedArgs(names []string, values []Object) (*ObjectInstance, *werrors.WeslyError) {
	inst := s.Call()
	for i, name := range names {
		if _, ok := s.FieldType(name); !ok {
			return nil, werrors.New("FIELD-0001", map[string]any{"Field": name, "Spec": s.Inspect()})
		}
		inst.Fields[name] = values[i]
	}
	return inst, nil
}

// ObjectInstance is a record value. Its field table is shared between bindings until copied.
type ObjectInstance struct {
	Spec   *ObjectSpec
	Fields map[string]Object
}

func (oi *ObjectInstance) Type() ObjectType { return INSTANCE_OBJ }

// Inspect renders fields in declaration order; absent fields are skipped
func (oi *ObjectInstance) Inspect() string { return inspectIn(oi, map[Object]bool{}) }

func (oi *ObjectInstance) inspectIn(seen map[Object]bool) string {
	var parts []string
	for _, f := range oi.Spec.Fields {
		if v, ok := oi.Fields[f.Name]; ok {
			parts = append(parts, f.Name+": "+inspectIn(v, seen))
		}
	}
	return "<Object: " + oi.Spec.DisplayName() + " {" + strings.Join(parts, ", ") + "}>"
}

// Copy is deep and keeps the shape of the graph: shared and cyclic
// references in the original are shared and cyclic in the copy.
func (oi *ObjectInstance) Copy() Object { return copyIn(oi, map[Object]Object{}) }

func (oi *ObjectInstance) copyIn(memo map[Object]Object) Object {
	c := &ObjectInstance{Spec: oi.Spec, Fields: make(map[string]Object, len(oi.Fields))}
	memo[oi] = c
	for k, v := range oi.Fields {
		c.Fields[k] = copyIn(v, memo)
	}
	return c
}

func (oi *ObjectInstance) Equals(o Object) bool { return equalsIn(oi, o, map[[2]Object]bool{}) }

func (oi *ObjectInstance) equalsIn(o Object, seen map[[2]Object]bool) bool {
	other, ok := o.(*ObjectInstance)
	if !ok || !oi.Spec.Equals(other.Spec) || len(oi.Fields) != len(other.Fields) {
		return false
	}
	for k, v := range oi.Fields {
		ov, ok := other.Fields[k]
		if !ok || !equalsIn(v, ov, seen) {
			return false
		}
	}
	return true
}

// composite is implemented by the objects that hold other objects by
// reference and so can reach themselves
type composite interface {
	inspectIn(seen map[Object]bool) string
	copyIn(memo map[Object]Object) Object
	equalsIn(o Object, seen map[[2]Object]bool) bool
}

// inspectIn renders o, printing <cycle> for a composite already being rendered
// further up the same path
func inspectIn(o Object, seen map[Object]bool) string {
	c, ok := o.(composite)
	if !ok {
		return o.Inspect()
	}
	if seen[o] {
		return "<cycle>"
	}
	seen[o] = true
	defer delete(seen, o)
	return c.inspectIn(seen)
}

func copyIn(o Object, memo map[Object]Object) Object {
	c, ok := o.(composite)
	if !ok {
		return o.Copy()
	}
	if done, ok := memo[o]; ok {
		return done
	}
	return c.copyIn(memo)
}

// equalsIn compares structurally. A pair already under comparison is assumed
// equal, so two cycles of the same shape compare equal.
func equalsIn(a, b Object, seen map[[2]Object]bool) bool {
	c, ok := a.(composite)
	if !ok {
		return a.Equals(b)
	}
	if a == b {
		return true
	}
	pair := [2]Object{a, b}
	if seen[pair] {
		return true
	}
	seen[pair] = true
	return c.equalsIn(b, seen)
}

// GetFieldIn follows path through nested records and returns the final field
// with its declared type.
func (oi *ObjectInstance) GetFieldIn(path []string) (Value, *werrors.WeslyError) {
	current := oi
	for i, name := range path {
		obj, ok := current.Fields[name]
		if !ok {
			return Value{}, werrors.New("FIELD-0002", map[string]any{"Name": current.Spec.DisplayName(), "Field": name})
		}
		if i == len(path)-1 {
			t, _ := current.Spec.FieldType(name)
			return Value{Type: fieldValueType(t, obj), Object: obj}, nil
		}
		next, ok := obj.(*ObjectInstance)
		if !ok {
			return Value{}, werrors.New("TYPE-0010", map[string]any{"Value": obj.Inspect(), "Type": typeOfObject(obj).String()})
		}
		current = next
	}
	return Value{Type: oi.Spec.Descriptor(), Object: oi}, nil
}

// FindAndSet walks path and writes final into the record reached.
// The final field may be absent as long as the spec declares it.
func (oi *ObjectInstance) FindAndSet(path []string, final string, value Object) *werrors.WeslyError {
	current := oi
	for _, name := range path {
		obj, ok := current.Fields[name]
		if !ok {
			return werrors.New("FIELD-0002", map[string]any{"Name": current.Spec.DisplayName(), "Field": name})
		}
		next, ok := obj.(*ObjectInstance)
		if !ok {
			return werrors.New("TYPE-0010", map[string]any{"Value": obj.Inspect(), "Type": typeOfObject(obj).String()})
		}
		current = next
	}
	if _, ok := current.Spec.FieldType(final); !ok {
		return werrors.New("FIELD-0002", map[string]any{"Name": current.Spec.DisplayName(), "Field": final})
	}
	current.Fields[final] = value
	return nil
}

// ============================================================================
// Callables
// ============================================================================

// Function is a closure over the environment it was defined in
type Function struct {
	Name   string
	Env    *Environment
	Params []*ast.Param
	Body   *ast.BlockStatement
	FnType *types.Function
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<Func: " + f.FnType.String() + ">" }

// Copy shares the captured environment; closures are never re-captured.
func (f *Function) Copy() Object {
	return &Function{Name: f.Name, Env: f.Env, Params: f.Params, Body: f.Body, FnType: f.FnType.Copy().(*types.Function)}
}

func (f *Function) Equals(o Object) bool {
	switch other := o.(type) {
	case *Function:
		return f.FnType.Equals(other.FnType)
	case *Builtin:
		return f.FnType.Equals(other.FnType)
	}
	return false
}

// BuiltinFunction is the Go implementation behind a Builtin
type BuiltinFunction func(env *Environment, args ...Value) (Value, *werrors.WeslyError)

// Builtin is a function implemented in Go
type Builtin struct {
	Name   string
	Fn     BuiltinFunction
	FnType *types.Function
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<Func: " + b.FnType.String() + ">" }
func (b *Builtin) Copy() Object     { return b }
func (b *Builtin) Equals(o Object) bool {
	switch other := o.(type) {
	case *Builtin:
		return b.FnType.Equals(other.FnType)
	case *Function:
		return b.FnType.Equals(other.FnType)
	}
	return false
}

// ============================================================================
// Control signals
// ============================================================================

// ReturnSignal carries a return statement's payload up to the function boundary
type ReturnSignal struct {
	Value *Value
}

func (r *ReturnSignal) Type() ObjectType { return RETURN_OBJ }

func (r *ReturnSignal) Inspect() string {
	if r.Value == nil {
		return ""
	}
	return r.Value.Inspect()
}

func (r *ReturnSignal) Copy() Object {
	if r.Value == nil {
		return &ReturnSignal{}
	}
	v := r.Value.Copy()
	return &ReturnSignal{Value: &v}
}

func (r *ReturnSignal) Equals(o Object) bool {
	other, ok := o.(*ReturnSignal)
	if !ok {
		return false
	}
	if r.Value == nil || other.Value == nil {
		return r.Value == nil && other.Value == nil
	}
	return r.Value.Object.Equals(other.Value.Object)
}

// BreakSignal ends the innermost loop
type BreakSignal struct{}

func (b *BreakSignal) Type() ObjectType { return BREAK_OBJ }
func (b *BreakSignal) Inspect() string  { return "break" }
func (b *BreakSignal) Copy() Object     { return &BreakSignal{} }
func (b *BreakSignal) Equals(o Object) bool {
	_, ok := o.(*BreakSignal)
	return ok
}

// ContinueSignal ends the current loop iteration
type ContinueSignal struct{}

func (c *ContinueSignal) Type() ObjectType { return CONTINUE_OBJ }
func (c *ContinueSignal) Inspect() string  { return "continue" }
func (c *ContinueSignal) Copy() Object     { return &ContinueSignal{} }
func (c *ContinueSignal) Equals(o Object) bool {
	_, ok := o.(*ContinueSignal)
	return ok
}

// isSignal reports whether obj is a control signal that must stop a block
func isSignal(obj Object) bool {
	switch obj.(type) {
	case *ReturnSignal, *BreakSignal, *ContinueSignal:
		return true
	}
	return false
}

// ============================================================================
// Helpers
// ============================================================================

// IsTruthy: nil is false, bools are themselves, numbers are false at zero, anything else is true.
func IsTruthy(obj Object) bool {
	switch o := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return o.Value
	case *Integer:
		return o.Value != 0
	case *Float:
		return o.Value != 0
	}
	return true
}

// isScalar reports whether obj is copied, rather than shared, when bound.
func isScalar(obj Object) bool {
	switch obj.(type) {
	case *Integer, *Float, *Char, *String, *Boolean, *Nil:
		return true
	}
	return false
}

// bindable applies the copy discipline: scalars are copied, composites shared.
func bindable(v Value) Value {
	if isScalar(v.Object) {
		return Value{Type: v.Type, Object: v.Object.Copy()}
	}
	return v
}

// typeOfObject recovers a descriptor from the object alone, for values held
// in 'any' slots where the static type says nothing.
func typeOfObject(obj Object) types.Type {
	switch o := obj.(type) {
	case *Integer:
		return types.Int
	case *Float:
		return types.Float
	case *Char:
		return types.Char
	case *String:
		return types.String
	case *Boolean:
		return types.Bool
	case *Array:
		elem := o.ElemType
		if elem == nil {
			elem = types.Any
		}
		return types.NewArray(elem)
	case *ObjectInstance:
		return o.Spec.Descriptor()
	case *ObjectSpec:
		return o.Descriptor()
	case *Function:
		return o.FnType
	case *Builtin:
		return o.FnType
	}
	return types.Any
}

// fieldValueType prefers the declared type unless it is unresolved or 'any'
func fieldValueType(declared types.Type, obj Object) types.Type {
	switch declared.(type) {
	case nil, *types.Ref:
		return typeOfObject(obj)
	}
	if declared == types.Any {
		return typeOfObject(obj)
	}
	return declared
}

func nativeBoolToBoolean(b bool) Value {
	return Value{Type: types.Bool, Object: &Boolean{Value: b}}
}
