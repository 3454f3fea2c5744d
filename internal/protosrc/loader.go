// Package protosrc builds declaration metadata from protobuf definitions.
// Messages become object declarations, repeated fields become arrays, map
// fields use the Map base and enums carry their value names. Protobuf has no
// generics, so the loader never produces type variables.
package protosrc

import (
	"fmt"
	"strings"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/opbokel/jsonschema-generator/internal/typesystem"
)

// Loader converts protobuf descriptors into typesystem declarations.
type Loader struct {
	reg *typesystem.Registry

	messages map[string]*typesystem.Decl
	enums    map[string]*typesystem.Decl
}

// NewLoader returns a loader registering into reg.
func NewLoader(reg *typesystem.Registry) *Loader {
	return &Loader{
		reg:      reg,
		messages: make(map[string]*typesystem.Decl),
		enums:    make(map[string]*typesystem.Decl),
	}
}

// LoadFiles parses the given .proto files and converts every message and
// enum they declare. Declarations are keyed by their fully qualified proto
// name (e.g. "example.Person").
func (l *Loader) LoadFiles(importPaths []string, filenames ...string) error {
	parser := protoparse.Parser{ImportPaths: importPaths, IncludeSourceCodeInfo: true}
	fds, err := parser.ParseFiles(filenames...)
	if err != nil {
		return fmt.Errorf("parse proto: %w", err)
	}
	for _, fd := range fds {
		if err := l.AddFile(fd); err != nil {
			return err
		}
	}
	return nil
}

// AddFile converts one parsed file descriptor.
func (l *Loader) AddFile(fd *desc.FileDescriptor) error {
	for _, md := range fd.GetMessageTypes() {
		if _, err := l.messageDecl(md); err != nil {
			return err
		}
	}
	for _, ed := range fd.GetEnumTypes() {
		if _, err := l.enumDecl(ed); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) messageDecl(md *desc.MessageDescriptor) (*typesystem.Decl, error) {
	name := md.GetFullyQualifiedName()
	if d, ok := l.messages[name]; ok {
		return d, nil
	}
	if name == "google.protobuf.Timestamp" {
		l.messages[name] = typesystem.DateTimeDecl
		return typesystem.DateTimeDecl, nil
	}

	decl := &typesystem.Decl{
		Name:     name,
		Category: typesystem.CategoryObject,
		Doc:      leadingComment(md.GetSourceInfo()),
	}
	l.messages[name] = decl
	if err := l.reg.Register(decl); err != nil {
		delete(l.messages, name)
		return nil, err
	}

	for _, nested := range md.GetNestedMessageTypes() {
		if nested.IsMapEntry() {
			continue
		}
		if _, err := l.messageDecl(nested); err != nil {
			return nil, err
		}
	}
	for _, nested := range md.GetNestedEnumTypes() {
		if _, err := l.enumDecl(nested); err != nil {
			return nil, err
		}
	}
	for _, fld := range md.GetFields() {
		field, err := l.fieldFor(fld)
		if err != nil {
			return nil, err
		}
		decl.Fields = append(decl.Fields, field)
	}
	return decl, nil
}

func (l *Loader) fieldFor(fld *desc.FieldDescriptor) (typesystem.Field, error) {
	doc := leadingComment(fld.GetSourceInfo())
	if fld.IsMap() {
		key, err := l.scalarOrRef(fld.GetMapKeyType())
		if err != nil {
			return typesystem.Field{}, err
		}
		value, err := l.scalarOrRef(fld.GetMapValueType())
		if err != nil {
			return typesystem.Field{}, err
		}
		return typesystem.Field{
			Name: fld.GetJSONName(),
			Type: typesystem.TInstance{Decl: typesystem.MapDecl, Args: []typesystem.Type{key, value}},
			Doc:  doc,
		}, nil
	}

	base, err := l.scalarOrRef(fld)
	if err != nil {
		return typesystem.Field{}, err
	}
	if fld.IsRepeated() {
		return typesystem.Field{Name: fld.GetJSONName(), Type: typesystem.TArray{Elem: base}, Doc: doc}, nil
	}

	optional := fld.GetOneOf() != nil || fld.AsFieldDescriptorProto().GetProto3Optional()
	if fld.GetMessageType() != nil || optional {
		// Message fields and optional scalars have presence semantics.
		return typesystem.Field{
			Name: fld.GetJSONName(),
			Type: typesystem.TInstance{Decl: typesystem.OptionDecl, Args: []typesystem.Type{base}},
			Doc:  doc,
		}, nil
	}
	return typesystem.Field{Name: fld.GetJSONName(), Type: base, Doc: doc, Required: true}, nil
}

// scalarOrRef maps one field descriptor to its unwrapped element type,
// ignoring cardinality.
func (l *Loader) scalarOrRef(fld *desc.FieldDescriptor) (typesystem.Type, error) {
	switch fld.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_STRING,
		descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return typesystem.TNamed{Decl: typesystem.StringDecl}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return typesystem.TNamed{Decl: typesystem.BooleanDecl}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
		descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return typesystem.TNamed{Decl: typesystem.NumberDecl}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return typesystem.TNamed{Decl: typesystem.IntegerDecl}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		decl, err := l.enumDecl(fld.GetEnumType())
		if err != nil {
			return nil, err
		}
		return typesystem.TNamed{Decl: decl}, nil
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		decl, err := l.messageDecl(fld.GetMessageType())
		if err != nil {
			return nil, err
		}
		return typesystem.TNamed{Decl: decl}, nil
	default:
		return typesystem.TWildcard{Expr: fld.GetType().String()}, nil
	}
}

func (l *Loader) enumDecl(ed *desc.EnumDescriptor) (*typesystem.Decl, error) {
	name := ed.GetFullyQualifiedName()
	if d, ok := l.enums[name]; ok {
		return d, nil
	}
	decl := &typesystem.Decl{
		Name:     name,
		Category: typesystem.CategoryEnum,
		Doc:      leadingComment(ed.GetSourceInfo()),
	}
	for _, v := range ed.GetValues() {
		decl.EnumValues = append(decl.EnumValues, v.GetName())
	}
	if err := l.reg.Register(decl); err != nil {
		return nil, err
	}
	l.enums[name] = decl
	return decl, nil
}

// leadingComment extracts the comment block preceding a declaration, empty
// when source info was not retained.
func leadingComment(loc *descriptorpb.SourceCodeInfo_Location) string {
	return strings.TrimSpace(loc.GetLeadingComments())
}
