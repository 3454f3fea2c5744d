package typesystem

import "fmt"

// UnsupportedTypeError indicates raw-type extraction was attempted on a
// variant that carries no nominal declaration (type variables, wildcards).
type UnsupportedTypeError struct {
	Type Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type: %s", e.Type)
}

// UnresolvedComponentError indicates element extraction was invoked on a
// handle that does not satisfy the corresponding predicate.
type UnresolvedComponentError struct {
	Op   string
	Type Type
}

func (e *UnresolvedComponentError) Error() string {
	return fmt.Sprintf("cannot determine %s for: %s", e.Op, e.Type)
}

// UnresolvableBaseError indicates ancestor resolution was requested against
// a base the type does not implement or extend, or on a handle that carries
// no type arguments to specialize.
type UnresolvableBaseError struct {
	Type Type
	Base *Decl
}

func (e *UnresolvableBaseError) Error() string {
	return fmt.Sprintf("cannot resolve %s to base type %s", e.Type, e.Base.Name)
}

// UnboundTypeVarError indicates a type-variable reference with no binding
// anywhere in the applicable context chain.
type UnboundTypeVarError struct {
	Name string
}

func (e *UnboundTypeVarError) Error() string {
	return fmt.Sprintf("unbound type variable: %s", e.Name)
}
