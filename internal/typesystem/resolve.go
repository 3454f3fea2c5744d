package typesystem

// The resolution operations below are pure functions over immutable handles:
// no internal state, no caching. Callers memoize per handle if they need to.

// RawType returns the nominal declaration underlying a named or instance
// reference. Arrays have no nominal declaration, so the result is nil for
// TArray. Type variables and wildcards must be resolved before being passed
// in; presenting one is a contract violation.
func RawType(t Type) (*Decl, error) {
	switch typ := t.(type) {
	case TNamed:
		return typ.Decl, nil
	case TInstance:
		return typ.Decl, nil
	case TArray:
		return nil, nil
	default:
		return nil, &UnsupportedTypeError{Type: t}
	}
}

// IsSequence reports whether the handle should be rendered as a list of
// items: either an array reference, or a type assignable to the Sequence
// base declaration.
func IsSequence(r Resolved) (bool, error) {
	if _, ok := r.Type.(TArray); ok {
		return true, nil
	}
	raw, err := RawType(r.Type)
	if err != nil {
		return false, err
	}
	return raw != nil && raw.AssignableTo(SequenceDecl), nil
}

// SequenceElem determines the element type of a sequence handle. The array
// and container cases are deliberately separate: an array carries its
// component directly, while a container's element parameter has to be
// recovered by resolving the handle against the Sequence base.
func SequenceElem(r Resolved) (Resolved, error) {
	seq, err := IsSequence(r)
	if err != nil {
		return Resolved{}, err
	}
	if !seq {
		return Resolved{}, &UnresolvedComponentError{Op: "sequence element type", Type: r.Type}
	}
	if arr, ok := r.Type.(TArray); ok {
		switch arr.Elem.(type) {
		case TVar, TInstance, TArray:
			elem, err := r.Vars.Resolve(arr.Elem)
			if err != nil {
				return Resolved{}, err
			}
			return Resolved{Type: elem, Vars: r.Vars}, nil
		default:
			// A plain nominal component carries no open variables.
			return Resolved{Type: arr.Elem, Vars: r.Vars}, nil
		}
	}
	base, err := ResolveBase(r, SequenceDecl)
	if err != nil {
		return Resolved{}, err
	}
	// The element argument may use the container's own parameter name, so it
	// resolves through the specialization's context, not the handle's.
	return instanceArg(base, 0)
}

// IsOptional reports whether the handle's raw type is assignable to the
// Option base declaration, the single-value wrapper.
func IsOptional(r Resolved) (bool, error) {
	raw, err := RawType(r.Type)
	if err != nil {
		return false, err
	}
	return raw != nil && raw.AssignableTo(OptionDecl), nil
}

// OptionElem determines the wrapped type of an optional handle.
func OptionElem(r Resolved) (Resolved, error) {
	opt, err := IsOptional(r)
	if err != nil {
		return Resolved{}, err
	}
	if !opt {
		return Resolved{}, &UnresolvedComponentError{Op: "option element type", Type: r.Type}
	}
	base, err := ResolveBase(r, OptionDecl)
	if err != nil {
		return Resolved{}, err
	}
	return instanceArg(base, 0)
}

// ResolveBase walks from the handle's type up its declared ancestors until
// the raw type equals base, composing a fresh variable context at every
// parameterized link. The returned handle is base instantiated with the type
// arguments visible from the starting point, paired with the accumulated
// context.
//
// At each step the first declared interface assignable to base is preferred;
// the superclass link is the fallback. The interface order is the declared
// order, which keeps the choice deterministic when several interfaces
// qualify.
func ResolveBase(r Resolved, base *Decl) (Resolved, error) {
	raw, err := RawType(r.Type)
	if err != nil {
		return Resolved{}, err
	}
	inst, ok := r.Type.(TInstance)
	if raw == nil || !ok || !raw.AssignableTo(base) {
		return Resolved{}, &UnresolvableBaseError{Type: r.Type, Base: base}
	}
	// Each level's parameters are bound exactly once, starting from the
	// handle's original scope.
	vars := r.Vars
	cur := inst
	for cur.Decl != base {
		vars = contextForInstance(cur, vars)
		next := nextLinkToward(cur.Decl, base)
		if named, ok := next.(TNamed); ok {
			next = TInstance{Decl: named.Decl}
		}
		ninst, ok := next.(TInstance)
		if !ok {
			return Resolved{}, &UnresolvableBaseError{Type: r.Type, Base: base}
		}
		cur = ninst
	}
	return Resolved{Type: cur, Vars: vars}, nil
}

func nextLinkToward(d *Decl, base *Decl) Type {
	for _, iface := range d.Interfaces {
		raw, err := RawType(iface)
		if err != nil || raw == nil {
			continue
		}
		if raw.AssignableTo(base) {
			return iface
		}
	}
	return d.Super
}

// instanceArg extracts argument i of a specialization handle, substituted
// through the specialization's own context.
func instanceArg(r Resolved, i int) (Resolved, error) {
	inst, ok := r.Type.(TInstance)
	if !ok || i >= len(inst.Args) {
		return Resolved{}, &UnresolvedComponentError{Op: "type argument", Type: r.Type}
	}
	arg, err := r.Vars.Resolve(inst.Args[i])
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Type: arg, Vars: r.Vars}, nil
}
