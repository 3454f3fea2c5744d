package typesystem

import (
	"sort"
	"strings"
)

// VarContext maps type-parameter names to their bound types, chained to the
// context of the enclosing scope. Lookups resolve innermost-first: a name
// found in the local bindings shadows the same name in the parent chain.
//
// Contexts are created once at the point a parameterized type is encountered
// and never mutated afterwards, so they can be shared read-only between any
// number of handles.
type VarContext struct {
	names    []string
	bindings map[string]Type
	parent   *VarContext
}

// Resolved pairs a type reference with the variable context applicable at
// its point of discovery. It is the unit of currency passed between all
// resolution operations. A nil Vars field means no type parameters are in
// scope.
type Resolved struct {
	Type Type
	Vars *VarContext
}

func (r Resolved) String() string {
	if r.Type == nil {
		return "<nil>"
	}
	return r.Type.String()
}

// ContextForType builds the variable context introduced by a handle's own
// type arguments: each of the declaration's type-parameter names is bound to
// the corresponding argument, chained to the context already carried by the
// handle. Handles whose type is not a TInstance introduce no bindings and
// keep their original context.
func ContextForType(r Resolved) *VarContext {
	inst, ok := r.Type.(TInstance)
	if !ok {
		return r.Vars
	}
	return contextForInstance(inst, r.Vars)
}

// contextForInstance rebinds an instance's type parameters using base as the
// parent scope. Used while climbing an ancestor chain, where every step
// introduces its own parameter scope. Arguments are substituted through the
// outer scope before being (re)bound, so a binding may capture a still-open
// variable of an enclosing declaration.
func contextForInstance(inst TInstance, base *VarContext) *VarContext {
	n := len(inst.Decl.TypeParams)
	if len(inst.Args) < n {
		n = len(inst.Args)
	}
	ctx := &VarContext{
		names:    inst.Decl.TypeParams[:n],
		bindings: make(map[string]Type, n),
		parent:   base,
	}
	for i := 0; i < n; i++ {
		ctx.bindings[inst.Decl.TypeParams[i]] = base.substitute(inst.Args[i])
	}
	return ctx
}

// Resolve recursively substitutes every type-variable reference reachable
// within t through the context chain. Non-variable variants pass through
// unchanged, except that instance arguments and array components are
// substituted too. A variable with no binding anywhere in the chain is a
// contract violation reported as UnboundTypeVarError.
func (c *VarContext) Resolve(t Type) (Type, error) {
	return c.walk(t, true)
}

// substitute is the lenient counterpart of Resolve: unknown variables are
// left open instead of failing, so contexts for partially-instantiated
// declarations remain constructible.
func (c *VarContext) substitute(t Type) Type {
	out, _ := c.walk(t, false)
	return out
}

func (c *VarContext) walk(t Type, strict bool) (Type, error) {
	switch typ := t.(type) {
	case TVar:
		for ctx := c; ctx != nil; ctx = ctx.parent {
			bound, ok := ctx.bindings[typ.Name]
			if !ok {
				continue
			}
			if v, selfBound := bound.(TVar); selfBound && v.Name == typ.Name {
				// A parameter bound to a variable of the same name defers
				// to the enclosing scope.
				continue
			}
			// Any variables remaining in the binding belong to the scope
			// the binding was captured in.
			return ctx.parent.walk(bound, strict)
		}
		if strict {
			return nil, &UnboundTypeVarError{Name: typ.Name}
		}
		return typ, nil
	case TInstance:
		args := make([]Type, len(typ.Args))
		for i, arg := range typ.Args {
			resolved, err := c.walk(arg, strict)
			if err != nil {
				return nil, err
			}
			args[i] = resolved
		}
		return TInstance{Decl: typ.Decl, Args: args}, nil
	case TArray:
		elem, err := c.walk(typ.Elem, strict)
		if err != nil {
			return nil, err
		}
		return TArray{Elem: elem}, nil
	default:
		// TNamed and TWildcard carry no variables.
		return t, nil
	}
}

// Lookup returns the binding for name, searching innermost-first through the
// chain.
func (c *VarContext) Lookup(name string) (Type, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if bound, ok := ctx.bindings[name]; ok {
			return bound, true
		}
	}
	return nil, false
}

func (c *VarContext) String() string {
	if c == nil {
		return "{}"
	}
	parts := make([]string, 0, len(c.names))
	names := append([]string(nil), c.names...)
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, name+"="+c.bindings[name].String())
	}
	out := "{" + strings.Join(parts, ", ") + "}"
	if c.parent != nil {
		out += " -> " + c.parent.String()
	}
	return out
}
