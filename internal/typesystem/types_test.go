package typesystem

import (
	"testing"
)

func TestTypeStrings(t *testing.T) {
	box := &Decl{Name: "Box", TypeParams: []string{"T"}}

	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"named", TNamed{Decl: StringDecl}, "String"},
		{"instance", TInstance{Decl: box, Args: []Type{TNamed{Decl: IntegerDecl}}}, "Box<Integer>"},
		{"nested instance", TInstance{Decl: box, Args: []Type{TInstance{Decl: box, Args: []Type{TVar{Name: "T"}}}}}, "Box<Box<T>>"},
		{"array", TArray{Elem: TNamed{Decl: NumberDecl}}, "[]Number"},
		{"variable", TVar{Name: "E"}, "E"},
		{"wildcard", TWildcard{}, "?"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	box := &Decl{Name: "Box", TypeParams: []string{"T"}}
	otherBox := &Decl{Name: "Box", TypeParams: []string{"T"}}

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same decl", TNamed{Decl: box}, TNamed{Decl: box}, true},
		{"distinct decls with same name", TNamed{Decl: box}, TNamed{Decl: otherBox}, false},
		{"equal instances", TInstance{Decl: box, Args: []Type{TNamed{Decl: StringDecl}}}, TInstance{Decl: box, Args: []Type{TNamed{Decl: StringDecl}}}, true},
		{"different args", TInstance{Decl: box, Args: []Type{TNamed{Decl: StringDecl}}}, TInstance{Decl: box, Args: []Type{TNamed{Decl: IntegerDecl}}}, false},
		{"arrays", TArray{Elem: TVar{Name: "T"}}, TArray{Elem: TVar{Name: "T"}}, true},
		{"variable names", TVar{Name: "T"}, TVar{Name: "U"}, false},
		{"variant mismatch", TNamed{Decl: box}, TInstance{Decl: box}, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equal(%s, %s) = %v, want %v", tt.name, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAssignableTo(t *testing.T) {
	// Chain: Leaf -> Middle -> Sequence, plus an unrelated decl.
	middle := &Decl{
		Name:       "Middle",
		TypeParams: []string{"M"},
		Interfaces: []Type{TInstance{Decl: SequenceDecl, Args: []Type{TVar{Name: "M"}}}},
	}
	leaf := &Decl{
		Name:       "Leaf",
		TypeParams: []string{"L"},
		Super:      TInstance{Decl: middle, Args: []Type{TVar{Name: "L"}}},
	}
	unrelated := &Decl{Name: "Unrelated"}

	tests := []struct {
		name string
		from *Decl
		to   *Decl
		want bool
	}{
		{"reflexive", leaf, leaf, true},
		{"via superclass", leaf, middle, true},
		{"via superclass then interface", leaf, SequenceDecl, true},
		{"direct interface", middle, SequenceDecl, true},
		{"unrelated", unrelated, SequenceDecl, false},
		{"reverse direction", SequenceDecl, leaf, false},
	}
	for _, tt := range tests {
		if got := tt.from.AssignableTo(tt.to); got != tt.want {
			t.Errorf("%s: %s.AssignableTo(%s) = %v, want %v", tt.name, tt.from.Name, tt.to.Name, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Lookup("Sequence"); !ok {
		t.Fatalf("builtin Sequence not registered")
	}

	box := &Decl{Name: "Box", TypeParams: []string{"T"}}
	if err := reg.Register(box); err != nil {
		t.Fatalf("Register(Box) failed: %v", err)
	}
	if d, ok := reg.Lookup("Box"); !ok || d != box {
		t.Errorf("Lookup(Box) = %v, %v, want the registered decl", d, ok)
	}
	if err := reg.Register(&Decl{Name: "Box"}); err == nil {
		t.Errorf("registering a duplicate name should fail")
	}

	names := reg.Names()
	if names[len(names)-1] != "Box" {
		t.Errorf("Names() should end with the latest registration, got %v", names)
	}
}
