// Package jsonschema is the high-level embedding API. It wires the type
// registry, the Go and protobuf loaders, the schema generator and the
// document stores behind one entry point.
package jsonschema

import (
	"fmt"

	"github.com/opbokel/jsonschema-generator/internal/inspect"
	"github.com/opbokel/jsonschema-generator/internal/protosrc"
	"github.com/opbokel/jsonschema-generator/internal/repository"
	"github.com/opbokel/jsonschema-generator/internal/schema"
	"github.com/opbokel/jsonschema-generator/internal/typesystem"
)

// Aliases for the types callers interact with.
type (
	Options  = schema.Options
	Node     = schema.Node
	Registry = typesystem.Registry
	Store    = repository.Store
)

// DefaultOptions returns the generator defaults.
func DefaultOptions() Options { return schema.DefaultOptions() }

// LoadOptions reads generator options from a YAML file.
func LoadOptions(path string) (Options, error) { return schema.LoadOptions(path) }

// NewMemoryStore returns a transient document store.
func NewMemoryStore() Store { return repository.NewMemoryStore() }

// NewFileStore returns a store writing one JSON file per schema under dir.
func NewFileStore(dir string) (Store, error) { return repository.NewFileStore(dir) }

// NewSQLiteStore returns a store backed by a SQLite database at path.
func NewSQLiteStore(path string) (Store, error) { return repository.NewSQLiteStore(path) }

// Toolkit accumulates type declarations from one or more sources and
// generates schema documents for them.
type Toolkit struct {
	reg  *typesystem.Registry
	opts Options
}

// New creates a toolkit with an empty registry (builtins preloaded).
func New(opts Options) *Toolkit {
	return &Toolkit{reg: typesystem.NewRegistry(), opts: opts}
}

// Registry exposes the underlying declaration registry.
func (tk *Toolkit) Registry() *Registry { return tk.reg }

// LoadGoPackage loads type declarations from a Go package. pattern is a
// package path or pattern as understood by the go tool; typeNames limits
// which declarations are converted (nil means all exported types).
func (tk *Toolkit) LoadGoPackage(pattern string, typeNames []string) error {
	return inspect.NewInspector(tk.reg).InspectPackage(pattern, typeNames)
}

// LoadProtoFiles parses .proto files and loads their messages and enums.
func (tk *Toolkit) LoadProtoFiles(importPaths []string, filenames ...string) error {
	return protosrc.NewLoader(tk.reg).LoadFiles(importPaths, filenames...)
}

// Generate produces the schema document for one registered declaration.
func (tk *Toolkit) Generate(name string) (*Node, error) {
	return schema.NewGenerator(tk.reg, tk.opts).Generate(name)
}

// GenerateJSON produces the indented JSON document for one declaration.
func (tk *Toolkit) GenerateJSON(name string) ([]byte, error) {
	doc, err := tk.Generate(name)
	if err != nil {
		return nil, err
	}
	return doc.MarshalIndent()
}

// GenerateAll generates documents for the given names (all registered
// non-builtin declarations when names is empty) and writes them to store.
func (tk *Toolkit) GenerateAll(store Store, names []string) error {
	if len(names) == 0 {
		names = tk.reg.DeclaredNames()
	}
	for _, name := range names {
		data, err := tk.GenerateJSON(name)
		if err != nil {
			return fmt.Errorf("generate %s: %w", name, err)
		}
		if err := store.Put(name, data); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
	}
	return nil
}
