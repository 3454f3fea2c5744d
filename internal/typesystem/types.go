package typesystem

import (
	"fmt"
	"strings"
)

// Type is the interface for all declaration-level type references.
// The concrete variants form a closed set; consumers dispatch with an
// exhaustive type switch.
type Type interface {
	String() string
}

// TNamed is a reference to a declared nominal type without type arguments.
type TNamed struct {
	Decl *Decl
}

func (t TNamed) String() string {
	if t.Decl == nil {
		return "<nil>"
	}
	return t.Decl.Name
}

// TInstance is a nominal type applied to an ordered list of type arguments
// (e.g. Box<Integer>, Sequence<E>). Arguments may themselves be any variant,
// including nested instances.
type TInstance struct {
	Decl *Decl
	Args []Type
}

func (t TInstance) String() string {
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	name := "<nil>"
	if t.Decl != nil {
		name = t.Decl.Name
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(args, ", "))
}

// TArray is an array or slice of a component type. Arrays have no nominal
// declaration of their own.
type TArray struct {
	Elem Type
}

func (t TArray) String() string {
	return "[]" + t.Elem.String()
}

// TVar is an unresolved type-parameter reference, meaningful only relative
// to a VarContext.
type TVar struct {
	Name string
}

func (t TVar) String() string {
	return t.Name
}

// TWildcard is any other declaration-level type expression. The engine never
// resolves this variant.
type TWildcard struct {
	// Expr is an optional description of the original expression, used only
	// in error messages.
	Expr string
}

func (t TWildcard) String() string {
	if t.Expr == "" {
		return "?"
	}
	return t.Expr
}

// Equal reports structural equality of two type references. Declarations are
// compared by identity.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case TNamed:
		bt, ok := b.(TNamed)
		return ok && at.Decl == bt.Decl
	case TInstance:
		bt, ok := b.(TInstance)
		if !ok || at.Decl != bt.Decl || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Equal(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case TArray:
		bt, ok := b.(TArray)
		return ok && Equal(at.Elem, bt.Elem)
	case TVar:
		bt, ok := b.(TVar)
		return ok && at.Name == bt.Name
	case TWildcard:
		_, ok := b.(TWildcard)
		return ok
	default:
		return false
	}
}

// Category classifies how a declaration is rendered in a schema document.
type Category int

const (
	CategoryObject Category = iota
	CategoryString
	CategoryInteger
	CategoryNumber
	CategoryBoolean
	CategoryEnum
	CategoryAny
	CategorySequence
	CategoryOption
	CategoryMap
)

func (c Category) String() string {
	switch c {
	case CategoryObject:
		return "object"
	case CategoryString:
		return "string"
	case CategoryInteger:
		return "integer"
	case CategoryNumber:
		return "number"
	case CategoryBoolean:
		return "boolean"
	case CategoryEnum:
		return "enum"
	case CategoryAny:
		return "any"
	case CategorySequence:
		return "sequence"
	case CategoryOption:
		return "option"
	case CategoryMap:
		return "map"
	default:
		return "unknown"
	}
}

// Decl is the declaration-time metadata record for a nominal type: its own
// type parameters, its declared ancestors and its members. Decls are built
// once by a loader and never mutated afterwards; they are compared by
// identity.
type Decl struct {
	Name     string
	Category Category

	// TypeParams holds the names of the declaration's own type parameters,
	// in declared order.
	TypeParams []string

	// Super is the declared superclass link (TNamed or TInstance), nil when
	// the declaration has none.
	Super Type

	// Interfaces holds the directly declared interface links in declared
	// order. The order is significant: ancestor resolution picks the first
	// qualifying entry.
	Interfaces []Type

	Fields []Field

	// EnumValues is set for CategoryEnum declarations.
	EnumValues []string

	Doc string
}

// Field is a named member of an object declaration.
type Field struct {
	Name     string
	Type     Type
	Doc      string
	Required bool
}

// AssignableTo reports whether d is base itself or declares base as a
// (possibly indirect) superclass or interface.
func (d *Decl) AssignableTo(base *Decl) bool {
	return d.assignableTo(base, make(map[*Decl]bool))
}

func (d *Decl) assignableTo(base *Decl, visited map[*Decl]bool) bool {
	if d == base {
		return true
	}
	if visited[d] {
		return false
	}
	visited[d] = true
	for _, link := range d.ancestorLinks() {
		raw, err := RawType(link)
		if err != nil || raw == nil {
			continue
		}
		if raw.assignableTo(base, visited) {
			return true
		}
	}
	return false
}

func (d *Decl) ancestorLinks() []Type {
	if d.Super == nil {
		return d.Interfaces
	}
	links := make([]Type, 0, len(d.Interfaces)+1)
	links = append(links, d.Interfaces...)
	links = append(links, d.Super)
	return links
}
