package typesystem

import "fmt"

// Builtin declarations shared by every registry. The Sequence and Option
// declarations are the capability bases consulted by IsSequence/IsOptional;
// loaders attach them as ancestors of host container types.
var (
	AnyDecl     = &Decl{Name: "Any", Category: CategoryAny}
	StringDecl  = &Decl{Name: "String", Category: CategoryString}
	IntegerDecl = &Decl{Name: "Integer", Category: CategoryInteger}
	NumberDecl  = &Decl{Name: "Number", Category: CategoryNumber}
	BooleanDecl = &Decl{Name: "Boolean", Category: CategoryBoolean}

	// DateTimeDecl is a string with the date-time format annotation.
	DateTimeDecl = &Decl{Name: "DateTime", Category: CategoryString}

	SequenceDecl = &Decl{Name: "Sequence", Category: CategorySequence, TypeParams: []string{"E"}}
	OptionDecl   = &Decl{Name: "Option", Category: CategoryOption, TypeParams: []string{"T"}}
	MapDecl      = &Decl{Name: "Map", Category: CategoryMap, TypeParams: []string{"K", "V"}}
)

func builtinDecls() []*Decl {
	return []*Decl{
		AnyDecl, StringDecl, IntegerDecl, NumberDecl, BooleanDecl, DateTimeDecl,
		SequenceDecl, OptionDecl, MapDecl,
	}
}

// Registry holds the declarations known to a generation run, keyed by name.
// Loaders populate it; after loading it is only read.
type Registry struct {
	decls map[string]*Decl
	order []string
}

// NewRegistry returns a registry seeded with the builtin declarations.
func NewRegistry() *Registry {
	r := &Registry{decls: make(map[string]*Decl)}
	for _, d := range builtinDecls() {
		r.decls[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r
}

// Register adds a declaration. Registering a name twice is an error so that
// loaders surface colliding type names instead of silently overwriting.
func (r *Registry) Register(d *Decl) error {
	if _, exists := r.decls[d.Name]; exists {
		return fmt.Errorf("type %q already registered", d.Name)
	}
	r.decls[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Lookup returns the declaration for name.
func (r *Registry) Lookup(name string) (*Decl, bool) {
	d, ok := r.decls[name]
	return d, ok
}

// Names returns all registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// DeclaredNames returns the names registered after the builtins, in
// registration order.
func (r *Registry) DeclaredNames() []string {
	return append([]string(nil), r.order[len(builtinDecls()):]...)
}
