// Package inspect builds declaration metadata from Go source. It loads
// packages with go/packages and converts go/types declarations into the
// typesystem registry consumed by schema generation: named types, their type
// parameters, instantiated generics, embedded types and struct fields.
package inspect

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/opbokel/jsonschema-generator/internal/typesystem"
)

// Inspector converts Go type declarations into typesystem declarations.
type Inspector struct {
	reg *typesystem.Registry

	// decls caches converted declarations by their origin type object, so
	// recursive and mutually referential types converge.
	decls map[*types.TypeName]*typesystem.Decl

	// docs holds doc comments harvested from syntax, keyed by type name.
	docs map[string]declDoc
}

type declDoc struct {
	doc    string
	fields map[string]string
}

// NewInspector returns an inspector registering into reg.
func NewInspector(reg *typesystem.Registry) *Inspector {
	return &Inspector{
		reg:   reg,
		decls: make(map[*types.TypeName]*typesystem.Decl),
		docs:  make(map[string]declDoc),
	}
}

// CollectDocs records type and struct-field doc comments from parsed files,
// so inspected declarations carry them into generated descriptions. Files
// must have been parsed with comments retained.
func (ins *Inspector) CollectDocs(files []*ast.File) {
	for _, file := range files {
		for _, d := range file.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, s := range gen.Specs {
				spec, ok := s.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := spec.Doc
				if doc == nil {
					doc = gen.Doc
				}
				entry := declDoc{
					doc:    strings.TrimSpace(doc.Text()),
					fields: make(map[string]string),
				}
				if st, ok := spec.Type.(*ast.StructType); ok {
					for _, f := range st.Fields.List {
						text := strings.TrimSpace(f.Doc.Text())
						if text == "" {
							text = strings.TrimSpace(f.Comment.Text())
						}
						if text == "" {
							continue
						}
						for _, ident := range f.Names {
							entry.fields[ident.Name] = text
						}
					}
				}
				ins.docs[spec.Name.Name] = entry
			}
		}
	}
}

// InspectPackage loads the package matching pattern and converts the named
// types. With no typeNames every exported type in the package is converted.
func (ins *Inspector) InspectPackage(pattern string, typeNames []string) error {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax |
			packages.NeedImports |
			packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return fmt.Errorf("loading %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no packages match %s", pattern)
	}
	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}
	scopes := make([]*types.Scope, len(pkgs))
	for i, pkg := range pkgs {
		ins.CollectDocs(pkg.Syntax)
		scopes[i] = pkg.Types.Scope()
	}
	return ins.inspectScopes(scopes, typeNames, pattern)
}

// inspectScopes converts types across every matched package scope. Named
// types are looked up in whichever scope declares them.
func (ins *Inspector) inspectScopes(scopes []*types.Scope, typeNames []string, where string) error {
	if len(typeNames) == 0 {
		for _, scope := range scopes {
			if err := ins.InspectScope(scope, nil); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range typeNames {
		scope := scopeDeclaring(scopes, name)
		if scope == nil {
			return fmt.Errorf("no type %q in packages matching %s", name, where)
		}
		if err := ins.InspectScope(scope, []string{name}); err != nil {
			return err
		}
	}
	return nil
}

func scopeDeclaring(scopes []*types.Scope, name string) *types.Scope {
	for _, scope := range scopes {
		if _, ok := scope.Lookup(name).(*types.TypeName); ok {
			return scope
		}
	}
	return nil
}

// InspectScope converts the named types found in a package scope.
func (ins *Inspector) InspectScope(scope *types.Scope, typeNames []string) error {
	if len(typeNames) == 0 {
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !obj.Exported() || obj.IsAlias() {
				continue
			}
			typeNames = append(typeNames, name)
		}
	}
	for _, name := range typeNames {
		obj, ok := scope.Lookup(name).(*types.TypeName)
		if !ok {
			return fmt.Errorf("no type %q in package scope", name)
		}
		named, ok := obj.Type().(*types.Named)
		if !ok {
			// An alias: follow it, schemas only care about the target.
			if target, ok := types.Unalias(obj.Type()).(*types.Named); ok {
				named = target
			} else {
				return fmt.Errorf("%s is not a named type", name)
			}
		}
		if _, err := ins.declFor(named); err != nil {
			return fmt.Errorf("inspecting %s: %w", name, err)
		}
	}
	return nil
}

// declFor converts a named type's origin declaration, creating the record up
// front so recursive references resolve to the same declaration.
func (ins *Inspector) declFor(named *types.Named) (*typesystem.Decl, error) {
	named = named.Origin()
	obj := named.Obj()
	if d, ok := ins.decls[obj]; ok {
		return d, nil
	}

	decl := &typesystem.Decl{Name: obj.Name(), Doc: ins.docs[obj.Name()].doc}
	ins.decls[obj] = decl
	if err := ins.reg.Register(decl); err != nil {
		delete(ins.decls, obj)
		return nil, err
	}

	tparams := named.TypeParams()
	for i := 0; i < tparams.Len(); i++ {
		decl.TypeParams = append(decl.TypeParams, tparams.At(i).Obj().Name())
	}

	if err := ins.fillDecl(decl, named); err != nil {
		return nil, err
	}
	return decl, nil
}

func (ins *Inspector) fillDecl(decl *typesystem.Decl, named *types.Named) error {
	switch u := named.Underlying().(type) {
	case *types.Struct:
		decl.Category = typesystem.CategoryObject
		return ins.fillStruct(decl, u)
	case *types.Interface:
		if u.Empty() {
			decl.Category = typesystem.CategoryAny
			return nil
		}
		decl.Category = typesystem.CategoryObject
		for i := 0; i < u.NumEmbeddeds(); i++ {
			link, err := ins.typeRef(u.EmbeddedType(i))
			if err != nil {
				return err
			}
			decl.Interfaces = append(decl.Interfaces, link)
		}
		return nil
	case *types.Slice:
		return ins.fillSequence(decl, u.Elem())
	case *types.Array:
		return ins.fillSequence(decl, u.Elem())
	case *types.Map:
		key, err := ins.typeRef(u.Key())
		if err != nil {
			return err
		}
		value, err := ins.typeRef(u.Elem())
		if err != nil {
			return err
		}
		decl.Category = typesystem.CategoryMap
		decl.Super = typesystem.TInstance{Decl: typesystem.MapDecl, Args: []typesystem.Type{key, value}}
		return nil
	case *types.Pointer:
		elem, err := ins.typeRef(u.Elem())
		if err != nil {
			return err
		}
		decl.Category = typesystem.CategoryOption
		decl.Super = typesystem.TInstance{Decl: typesystem.OptionDecl, Args: []typesystem.Type{elem}}
		return nil
	case *types.Basic:
		decl.Category = basicCategory(u)
		return nil
	default:
		decl.Category = typesystem.CategoryAny
		return nil
	}
}

func (ins *Inspector) fillSequence(decl *typesystem.Decl, elem types.Type) error {
	ref, err := ins.typeRef(elem)
	if err != nil {
		return err
	}
	decl.Category = typesystem.CategorySequence
	decl.Super = typesystem.TInstance{Decl: typesystem.SequenceDecl, Args: []typesystem.Type{ref}}
	return nil
}

func (ins *Inspector) fillStruct(decl *typesystem.Decl, u *types.Struct) error {
	for i := 0; i < u.NumFields(); i++ {
		f := u.Field(i)
		if !f.Exported() {
			continue
		}
		if f.Embedded() {
			link, err := ins.typeRef(deref(f.Type()))
			if err != nil {
				return err
			}
			if decl.Super == nil {
				decl.Super = link
			} else {
				decl.Interfaces = append(decl.Interfaces, link)
			}
			continue
		}
		name, omitempty, skip := jsonName(u.Tag(i), f.Name())
		if skip {
			continue
		}
		ref, err := ins.typeRef(f.Type())
		if err != nil {
			return err
		}
		optional := isOptionRef(ref)
		decl.Fields = append(decl.Fields, typesystem.Field{
			Name:     name,
			Type:     ref,
			Doc:      ins.docs[decl.Name].fields[f.Name()],
			Required: !omitempty && !optional,
		})
	}
	return nil
}

// typeRef converts a go/types reference into a typesystem reference.
func (ins *Inspector) typeRef(t types.Type) (typesystem.Type, error) {
	t = types.Unalias(t)
	switch typ := t.(type) {
	case *types.TypeParam:
		return typesystem.TVar{Name: typ.Obj().Name()}, nil
	case *types.Basic:
		return basicRef(typ), nil
	case *types.Slice:
		if isByteType(typ.Elem()) {
			// []byte marshals as a base64 string.
			return typesystem.TNamed{Decl: typesystem.StringDecl}, nil
		}
		elem, err := ins.typeRef(typ.Elem())
		if err != nil {
			return nil, err
		}
		return typesystem.TArray{Elem: elem}, nil
	case *types.Array:
		elem, err := ins.typeRef(typ.Elem())
		if err != nil {
			return nil, err
		}
		return typesystem.TArray{Elem: elem}, nil
	case *types.Pointer:
		elem, err := ins.typeRef(typ.Elem())
		if err != nil {
			return nil, err
		}
		return typesystem.TInstance{Decl: typesystem.OptionDecl, Args: []typesystem.Type{elem}}, nil
	case *types.Map:
		key, err := ins.typeRef(typ.Key())
		if err != nil {
			return nil, err
		}
		value, err := ins.typeRef(typ.Elem())
		if err != nil {
			return nil, err
		}
		return typesystem.TInstance{Decl: typesystem.MapDecl, Args: []typesystem.Type{key, value}}, nil
	case *types.Named:
		return ins.namedRef(typ)
	case *types.Interface:
		if typ.Empty() {
			return typesystem.TNamed{Decl: typesystem.AnyDecl}, nil
		}
		return typesystem.TWildcard{Expr: t.String()}, nil
	default:
		return typesystem.TWildcard{Expr: t.String()}, nil
	}
}

func (ins *Inspector) namedRef(typ *types.Named) (typesystem.Type, error) {
	obj := typ.Obj()
	switch {
	case obj.Pkg() == nil && obj.Name() == "error":
		return typesystem.TWildcard{Expr: "error"}, nil
	case obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Time":
		return typesystem.TNamed{Decl: typesystem.DateTimeDecl}, nil
	}

	decl, err := ins.declFor(typ)
	if err != nil {
		return nil, err
	}
	targs := typ.TypeArgs()
	if targs.Len() == 0 {
		return typesystem.TNamed{Decl: decl}, nil
	}
	args := make([]typesystem.Type, targs.Len())
	for i := 0; i < targs.Len(); i++ {
		arg, err := ins.typeRef(targs.At(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return typesystem.TInstance{Decl: decl, Args: args}, nil
}

func basicCategory(b *types.Basic) typesystem.Category {
	switch {
	case b.Info()&types.IsBoolean != 0:
		return typesystem.CategoryBoolean
	case b.Info()&types.IsInteger != 0:
		return typesystem.CategoryInteger
	case b.Info()&types.IsFloat != 0:
		return typesystem.CategoryNumber
	case b.Info()&types.IsString != 0:
		return typesystem.CategoryString
	default:
		return typesystem.CategoryAny
	}
}

func basicRef(b *types.Basic) typesystem.Type {
	switch basicCategory(b) {
	case typesystem.CategoryBoolean:
		return typesystem.TNamed{Decl: typesystem.BooleanDecl}
	case typesystem.CategoryInteger:
		return typesystem.TNamed{Decl: typesystem.IntegerDecl}
	case typesystem.CategoryNumber:
		return typesystem.TNamed{Decl: typesystem.NumberDecl}
	case typesystem.CategoryString:
		return typesystem.TNamed{Decl: typesystem.StringDecl}
	default:
		return typesystem.TWildcard{Expr: b.String()}
	}
}

func isByteType(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Byte
}

func isOptionRef(t typesystem.Type) bool {
	inst, ok := t.(typesystem.TInstance)
	return ok && inst.Decl == typesystem.OptionDecl
}

func deref(t types.Type) types.Type {
	if p, ok := types.Unalias(t).(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

// jsonName applies the json struct tag: a renamed field, the omitempty flag
// and the "-" skip marker.
func jsonName(tag, fallback string) (name string, omitempty, skip bool) {
	name = fallback
	value := reflect.StructTag(tag).Get("json")
	if value == "" {
		return name, false, false
	}
	parts := strings.Split(value, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", false, true
	}
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}
