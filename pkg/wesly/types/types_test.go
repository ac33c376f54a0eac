package types

import "testing"

func point() *Object {
	return &Object{Name: "Point", Fields: []Field{{"x", Int}, {"y", Int}}}
}

func TestEquals(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Type
		expected bool
	}{
		{"same basic", Int, Int, true},
		{"different basic", Int, Float, false},
		{"any left", Any, String, true},
		{"any right", &Array{Elem: Int, Length: 3}, Any, true},
		{"unsized arrays", NewArray(Int), NewArray(Int), true},
		{"sized vs unsized", &Array{Elem: Int, Length: 3}, NewArray(Int), true},
		{"sized mismatch", &Array{Elem: Int, Length: 3}, &Array{Elem: Int, Length: 4}, false},
		{"array elem mismatch", NewArray(Int), NewArray(String), false},
		{"nested arrays", NewArray(NewArray(Char)), NewArray(NewArray(Char)), true},
		{"array of any", NewArray(Any), NewArray(Float), true},
		{"function", &Function{Params: []Type{Int}, Return: Bool}, &Function{Params: []Type{Int}, Return: Bool}, true},
		{"function arity", &Function{Params: []Type{Int}}, &Function{Params: []Type{Int, Int}}, false},
		{"function return", &Function{Return: Int}, &Function{Return: String}, false},
		{"variadic", &Variadic{Elem: Int}, &Variadic{Elem: Int}, true},
		{"variadic vs basic", &Variadic{Elem: Int}, Int, false},
		{"nominal same", point(), point(), true},
		{"nominal different names", point(), &Object{Name: "Vec", Fields: point().Fields}, false},
		{"anonymous matches shape", point(), &Object{Fields: point().Fields}, true},
		{"anonymous shape mismatch", &Object{Fields: []Field{{"x", Int}}}, point(), false},
		{"object vs ref", point(), &Ref{Name: "Point"}, true},
		{"ref vs object", &Ref{Name: "Point"}, point(), true},
		{"ref names differ", &Ref{Name: "Point"}, &Ref{Name: "Vec"}, false},
		{"object vs basic", point(), Int, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.expected {
				t.Errorf("%s.Equals(%s) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{Int, "int"},
		{Void, "void"},
		{Any, "any"},
		{NewArray(String), "[]string"},
		{&Array{Elem: NewArray(Int), Length: 2}, "[2][]int"},
		{&Function{Params: []Type{Int, &Variadic{Elem: String}}, Return: Bool}, "func(int, ...string) bool"},
		{&Function{Params: nil, Return: Void}, "func()"},
		{point(), "Point"},
		{&Object{Fields: []Field{{"a", Int}, {"b", String}}}, "object{a int; b string}"},
		{&Ref{Name: "Node"}, "Node"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCopyIsIndependent(t *testing.T) {
	orig := &Object{Name: "Box", Fields: []Field{{"items", NewArray(Int)}}}
	c := orig.Copy().(*Object)

	c.Fields[0].Name = "other"
	c.Fields[0].Type.(*Array).Elem = String

	if orig.Fields[0].Name != "items" {
		t.Errorf("copy shares field slice with original")
	}
	if !orig.Fields[0].Type.(*Array).Elem.Equals(Int) || orig.Fields[0].Type.(*Array).Elem != Int {
		t.Errorf("copy shares nested array type with original")
	}
}

func TestAssignable(t *testing.T) {
	tests := []struct {
		name     string
		dst, src Type
		expected bool
	}{
		{"same", Int, Int, true},
		{"int widens to float", Float, Int, true},
		{"float does not narrow", Int, Float, false},
		{"any destination", Any, point(), true},
		{"nil destination", nil, Int, true},
		{"string into char", Char, String, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assignable(tt.dst, tt.src); got != tt.expected {
				t.Errorf("Assignable(%v, %v) = %v, want %v", tt.dst, tt.src, got, tt.expected)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	if !IsNumeric(Int) || !IsNumeric(Float) || IsNumeric(Char) {
		t.Error("IsNumeric misclassified a type")
	}
	f := &Function{Params: []Type{Int, &Variadic{Elem: Int}}}
	if !f.IsVariadic() {
		t.Error("expected variadic function")
	}
	if (&Function{}).IsVariadic() {
		t.Error("empty function is not variadic")
	}
	if ft, ok := point().Field("y"); !ok || ft != Int {
		t.Errorf("Field(y) = %v, %v", ft, ok)
	}
	if _, ok := point().Field("z"); ok {
		t.Error("expected missing field")
	}
}
