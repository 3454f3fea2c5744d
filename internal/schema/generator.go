package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/opbokel/jsonschema-generator/internal/config"
	"github.com/opbokel/jsonschema-generator/internal/typesystem"
)

// Generator assembles schema documents from registered declarations. The
// resolution engine itself never caches, so the memoization of repeated and
// recursive object types (the $defs map) lives here.
//
// A Generator is not safe for concurrent use; create one per goroutine.
type Generator struct {
	reg  *typesystem.Registry
	opts Options

	defs map[string]*Node
}

// NewGenerator returns a generator over the given registry.
func NewGenerator(reg *typesystem.Registry, opts Options) *Generator {
	return &Generator{reg: reg, opts: opts}
}

// Generate produces a standalone schema document for the named declaration.
// Type parameters of a generic declaration are bound to Any.
func (g *Generator) Generate(name string) (*Node, error) {
	decl, ok := g.reg.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	uri, err := g.opts.draftURI()
	if err != nil {
		return nil, err
	}

	g.defs = make(map[string]*Node)
	root, err := g.nodeFor(handleFor(decl))
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", name, err)
	}

	root.Schema = uri
	switch {
	case g.opts.ID != "":
		root.ID = g.opts.ID
	case g.opts.StampID:
		root.ID = "urn:uuid:" + uuid.NewString()
	}
	if len(g.defs) > 0 {
		root.Defs = g.defs
	}
	return root, nil
}

// handleFor builds the root handle for a declaration: an instance with every
// own type parameter bound to Any.
func handleFor(decl *typesystem.Decl) typesystem.Resolved {
	args := make([]typesystem.Type, len(decl.TypeParams))
	for i := range args {
		args[i] = typesystem.TNamed{Decl: typesystem.AnyDecl}
	}
	return typesystem.Resolved{Type: typesystem.TInstance{Decl: decl, Args: args}}
}

// normalize substitutes every type variable reachable in the handle and
// rewrites plain named references as argument-less instances, so that
// ancestor resolution applies to non-generic uses of container types too.
// Substituting up front also keeps $defs keys concrete: a Box<T> use site
// becomes Box<Integer> before it is named.
func normalize(r typesystem.Resolved) (typesystem.Resolved, error) {
	resolved, err := r.Vars.Resolve(r.Type)
	if err != nil {
		return typesystem.Resolved{}, err
	}
	r = typesystem.Resolved{Type: resolved, Vars: r.Vars}
	if named, ok := r.Type.(typesystem.TNamed); ok {
		r = typesystem.Resolved{Type: typesystem.TInstance{Decl: named.Decl}, Vars: r.Vars}
	}
	return r, nil
}

func (g *Generator) nodeFor(r typesystem.Resolved) (*Node, error) {
	r, err := normalize(r)
	if err != nil {
		return nil, err
	}
	if _, ok := r.Type.(typesystem.TWildcard); ok {
		// Unresolvable expressions accept anything.
		return &Node{}, nil
	}

	seq, err := typesystem.IsSequence(r)
	if err != nil {
		return nil, err
	}
	if seq {
		elem, err := typesystem.SequenceElem(r)
		if err != nil {
			return nil, err
		}
		items, err := g.nodeFor(elem)
		if err != nil {
			return nil, err
		}
		return &Node{Type: config.TypeArray, Items: items}, nil
	}

	opt, err := typesystem.IsOptional(r)
	if err != nil {
		return nil, err
	}
	if opt {
		elem, err := typesystem.OptionElem(r)
		if err != nil {
			return nil, err
		}
		wrapped, err := g.nodeFor(elem)
		if err != nil {
			return nil, err
		}
		if !g.opts.NullableOptions {
			return wrapped, nil
		}
		return &Node{AnyOf: []*Node{wrapped, {Type: config.TypeNull}}}, nil
	}

	raw, err := typesystem.RawType(r.Type)
	if err != nil {
		return nil, err
	}
	if raw == typesystem.DateTimeDecl {
		return &Node{Type: config.TypeString, Format: "date-time"}, nil
	}
	switch raw.Category {
	case typesystem.CategoryString:
		return &Node{Type: config.TypeString}, nil
	case typesystem.CategoryInteger:
		return &Node{Type: config.TypeInteger}, nil
	case typesystem.CategoryNumber:
		return &Node{Type: config.TypeNumber}, nil
	case typesystem.CategoryBoolean:
		return &Node{Type: config.TypeBoolean}, nil
	case typesystem.CategoryAny:
		return &Node{}, nil
	case typesystem.CategoryEnum:
		return g.enumNode(raw), nil
	case typesystem.CategoryMap:
		return g.mapNode(r)
	case typesystem.CategoryObject:
		return g.objectRef(r)
	default:
		return nil, fmt.Errorf("cannot render %s (%s)", r.Type, raw.Category)
	}
}

func (g *Generator) enumNode(decl *typesystem.Decl) *Node {
	n := &Node{Type: config.TypeString, Enum: decl.EnumValues}
	if g.opts.Descriptions && decl.Doc != "" {
		n.Description = decl.Doc
	}
	return n
}

func (g *Generator) mapNode(r typesystem.Resolved) (*Node, error) {
	base, err := typesystem.ResolveBase(r, typesystem.MapDecl)
	if err != nil {
		return nil, err
	}
	inst := base.Type.(typesystem.TInstance)
	if len(inst.Args) < 2 {
		return &Node{Type: config.TypeObject}, nil
	}
	value, err := base.Vars.Resolve(inst.Args[1])
	if err != nil {
		return nil, err
	}
	valueNode, err := g.nodeFor(typesystem.Resolved{Type: value, Vars: base.Vars})
	if err != nil {
		return nil, err
	}
	return &Node{Type: config.TypeObject, AdditionalProperties: valueNode}, nil
}

// objectRef returns a $ref into $defs for an object declaration, building
// the definition on first use. The placeholder inserted before the build
// breaks recursive type cycles.
func (g *Generator) objectRef(r typesystem.Resolved) (*Node, error) {
	inst := r.Type.(typesystem.TInstance)
	name := defName(inst)
	if _, done := g.defs[name]; !done {
		placeholder := &Node{}
		g.defs[name] = placeholder
		built, err := g.objectNode(r)
		if err != nil {
			delete(g.defs, name)
			return nil, err
		}
		*placeholder = *built
	}
	return &Node{Ref: config.DefsPrefix + name}, nil
}

func (g *Generator) objectNode(r typesystem.Resolved) (*Node, error) {
	inst := r.Type.(typesystem.TInstance)
	node := &Node{
		Type:       config.TypeObject,
		Properties: make(map[string]*Node),
	}
	if g.opts.Title {
		node.Title = inst.Decl.Name
	}
	if g.opts.Descriptions && inst.Decl.Doc != "" {
		node.Description = inst.Decl.Doc
	}
	if g.opts.DenyAdditionalProperties {
		node.AdditionalProperties = false
	}
	if err := g.collectFields(r, node); err != nil {
		return nil, err
	}
	if len(node.Properties) == 0 {
		node.Properties = nil
	}
	return node, nil
}

// collectFields walks the superclass chain root-first so that a subtype's
// fields shadow inherited ones, resolving every field type through the
// context in force at its declaration site.
func (g *Generator) collectFields(r typesystem.Resolved, node *Node) error {
	inst := r.Type.(typesystem.TInstance)
	ctx := typesystem.ContextForType(r)

	links := make([]typesystem.Type, 0, len(inst.Decl.Interfaces)+1)
	if inst.Decl.Super != nil {
		links = append(links, inst.Decl.Super)
	}
	links = append(links, inst.Decl.Interfaces...)
	for _, link := range links {
		ancestor, err := normalize(typesystem.Resolved{Type: link, Vars: ctx})
		if err != nil {
			return err
		}
		raw, err := typesystem.RawType(ancestor.Type)
		if err != nil || raw == nil || raw.Category != typesystem.CategoryObject {
			continue
		}
		if err := g.collectFields(ancestor, node); err != nil {
			return err
		}
	}

	for _, field := range inst.Decl.Fields {
		prop, err := g.nodeFor(typesystem.Resolved{Type: field.Type, Vars: ctx})
		if err != nil {
			return fmt.Errorf("field %s.%s: %w", inst.Decl.Name, field.Name, err)
		}
		if g.opts.Descriptions && field.Doc != "" && prop.Ref == "" {
			prop.Description = field.Doc
		}
		node.Properties[field.Name] = prop
		if field.Required && !contains(node.Required, field.Name) {
			node.Required = append(node.Required, field.Name)
		}
	}
	return nil
}

// defName derives a stable $defs key for an instantiated declaration, e.g.
// Box<Integer> becomes Box_Integer.
func defName(inst typesystem.TInstance) string {
	if len(inst.Args) == 0 {
		return inst.Decl.Name
	}
	var b strings.Builder
	b.WriteString(inst.Decl.Name)
	for _, arg := range inst.Args {
		b.WriteString("_")
		b.WriteString(sanitize(arg.String()))
	}
	return b.String()
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '[' || r == ']':
			// []Integer -> ListOfInteger reads better than a bare underscore.
			if r == '[' {
				b.WriteString("ListOf")
			}
		default:
			b.WriteString("_")
		}
	}
	return strings.Trim(b.String(), "_")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
