package schema

import (
	"strings"
	"testing"

	ts "github.com/opbokel/jsonschema-generator/internal/typesystem"
)

func str() ts.Type     { return ts.TNamed{Decl: ts.StringDecl} }
func integer() ts.Type { return ts.TNamed{Decl: ts.IntegerDecl} }
func number() ts.Type  { return ts.TNamed{Decl: ts.NumberDecl} }

func testRegistry(t *testing.T) *ts.Registry {
	t.Helper()
	reg := ts.NewRegistry()

	color := &ts.Decl{Name: "Color", Category: ts.CategoryEnum, EnumValues: []string{"red", "green", "blue"}}
	address := &ts.Decl{
		Name: "Address",
		Fields: []ts.Field{
			{Name: "street", Type: str(), Required: true},
			{Name: "city", Type: str()},
		},
	}
	person := &ts.Decl{
		Name: "Person",
		Doc:  "A person record.",
		Fields: []ts.Field{
			{Name: "name", Type: str(), Required: true},
			{Name: "age", Type: integer()},
			{Name: "nick", Type: ts.TInstance{Decl: ts.OptionDecl, Args: []ts.Type{str()}}},
			{Name: "tags", Type: ts.TArray{Elem: str()}},
			{Name: "address", Type: ts.TNamed{Decl: address}},
			{Name: "scores", Type: ts.TInstance{Decl: ts.MapDecl, Args: []ts.Type{str(), number()}}},
			{Name: "color", Type: ts.TNamed{Decl: color}},
		},
	}
	employee := &ts.Decl{
		Name:  "Employee",
		Super: ts.TNamed{Decl: person},
		Fields: []ts.Field{
			{Name: "role", Type: str(), Required: true},
		},
	}
	tree := &ts.Decl{Name: "Tree"}
	tree.Fields = []ts.Field{
		{Name: "value", Type: str()},
		{Name: "children", Type: ts.TArray{Elem: ts.TNamed{Decl: tree}}},
	}
	box := &ts.Decl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []ts.Field{{Name: "items", Type: ts.TArray{Elem: ts.TVar{Name: "T"}}}},
	}
	holder := &ts.Decl{
		Name:   "Holder",
		Fields: []ts.Field{{Name: "intBox", Type: ts.TInstance{Decl: box, Args: []ts.Type{integer()}}}},
	}

	for _, d := range []*ts.Decl{color, address, person, employee, tree, box, holder} {
		if err := reg.Register(d); err != nil {
			t.Fatalf("Register(%s) failed: %v", d.Name, err)
		}
	}
	return reg
}

func TestGeneratePerson(t *testing.T) {
	reg := testRegistry(t)
	g := NewGenerator(reg, DefaultOptions())

	doc, err := g.Generate("Person")
	if err != nil {
		t.Fatalf("Generate(Person) failed: %v", err)
	}
	if doc.Schema == "" || !strings.Contains(doc.Schema, "2020-12") {
		t.Errorf("$schema = %q, want the 2020-12 dialect", doc.Schema)
	}
	if doc.Ref != "#/$defs/Person" {
		t.Errorf("$ref = %q, want #/$defs/Person", doc.Ref)
	}

	person := doc.Defs["Person"]
	if person == nil {
		t.Fatalf("$defs has no Person entry; keys: %v", defKeys(doc))
	}
	if person.Type != "object" || person.Title != "Person" {
		t.Errorf("Person def: type=%q title=%q", person.Type, person.Title)
	}
	if person.Description != "A person record." {
		t.Errorf("description = %q", person.Description)
	}
	if len(person.Required) != 1 || person.Required[0] != "name" {
		t.Errorf("required = %v, want [name]", person.Required)
	}

	if got := person.Properties["name"]; got == nil || got.Type != "string" {
		t.Errorf("name property = %+v, want string", got)
	}
	if got := person.Properties["age"]; got == nil || got.Type != "integer" {
		t.Errorf("age property = %+v, want integer", got)
	}
	if got := person.Properties["tags"]; got == nil || got.Type != "array" || got.Items == nil || got.Items.Type != "string" {
		t.Errorf("tags property = %+v, want array of string", got)
	}

	nick := person.Properties["nick"]
	if nick == nil || len(nick.AnyOf) != 2 {
		t.Fatalf("nick property = %+v, want anyOf with two branches", nick)
	}
	if nick.AnyOf[0].Type != "string" || nick.AnyOf[1].Type != "null" {
		t.Errorf("nick anyOf = [%q, %q], want [string, null]", nick.AnyOf[0].Type, nick.AnyOf[1].Type)
	}

	scores := person.Properties["scores"]
	if scores == nil || scores.Type != "object" {
		t.Fatalf("scores property = %+v, want object", scores)
	}
	if value, ok := scores.AdditionalProperties.(*Node); !ok || value.Type != "number" {
		t.Errorf("scores additionalProperties = %+v, want a number schema", scores.AdditionalProperties)
	}

	color := person.Properties["color"]
	if color == nil || color.Type != "string" || len(color.Enum) != 3 {
		t.Errorf("color property = %+v, want a three-value string enum", color)
	}

	if got := person.Properties["address"]; got == nil || got.Ref != "#/$defs/Address" {
		t.Errorf("address property = %+v, want a $ref to Address", got)
	}
	if doc.Defs["Address"] == nil {
		t.Errorf("Address definition missing; keys: %v", defKeys(doc))
	}
}

func TestGenerateInheritedFields(t *testing.T) {
	reg := testRegistry(t)
	g := NewGenerator(reg, DefaultOptions())

	doc, err := g.Generate("Employee")
	if err != nil {
		t.Fatalf("Generate(Employee) failed: %v", err)
	}
	employee := doc.Defs["Employee"]
	if employee == nil {
		t.Fatalf("Employee definition missing; keys: %v", defKeys(doc))
	}
	if got := employee.Properties["name"]; got == nil || got.Type != "string" {
		t.Errorf("inherited name property = %+v, want string", got)
	}
	if got := employee.Properties["role"]; got == nil || got.Type != "string" {
		t.Errorf("own role property = %+v, want string", got)
	}
	if !contains(employee.Required, "name") || !contains(employee.Required, "role") {
		t.Errorf("required = %v, want inherited name and own role", employee.Required)
	}
}

func TestGenerateRecursiveType(t *testing.T) {
	reg := testRegistry(t)
	g := NewGenerator(reg, DefaultOptions())

	doc, err := g.Generate("Tree")
	if err != nil {
		t.Fatalf("Generate(Tree) failed: %v", err)
	}
	tree := doc.Defs["Tree"]
	if tree == nil {
		t.Fatalf("Tree definition missing")
	}
	children := tree.Properties["children"]
	if children == nil || children.Type != "array" {
		t.Fatalf("children property = %+v, want array", children)
	}
	if children.Items == nil || children.Items.Ref != "#/$defs/Tree" {
		t.Errorf("children items = %+v, want a self reference", children.Items)
	}
}

func TestGenerateGenericInstantiation(t *testing.T) {
	reg := testRegistry(t)
	g := NewGenerator(reg, DefaultOptions())

	doc, err := g.Generate("Holder")
	if err != nil {
		t.Fatalf("Generate(Holder) failed: %v", err)
	}
	holder := doc.Defs["Holder"]
	if holder == nil {
		t.Fatalf("Holder definition missing; keys: %v", defKeys(doc))
	}
	ref := holder.Properties["intBox"]
	if ref == nil || ref.Ref != "#/$defs/Box_Integer" {
		t.Fatalf("intBox property = %+v, want a $ref to Box_Integer", ref)
	}
	box := doc.Defs["Box_Integer"]
	if box == nil {
		t.Fatalf("Box_Integer definition missing; keys: %v", defKeys(doc))
	}
	items := box.Properties["items"]
	if items == nil || items.Type != "array" || items.Items == nil || items.Items.Type != "integer" {
		t.Errorf("Box_Integer items = %+v, want array of integer", items)
	}
}

func TestGenerateOptionVariants(t *testing.T) {
	reg := testRegistry(t)
	opts := DefaultOptions()
	opts.NullableOptions = false
	g := NewGenerator(reg, opts)

	doc, err := g.Generate("Person")
	if err != nil {
		t.Fatalf("Generate(Person) failed: %v", err)
	}
	nick := doc.Defs["Person"].Properties["nick"]
	if nick == nil || nick.Type != "string" || nick.AnyOf != nil {
		t.Errorf("with NullableOptions off, nick = %+v, want a plain string schema", nick)
	}
}

func TestGenerateOptionsApplied(t *testing.T) {
	reg := testRegistry(t)
	opts := DefaultOptions()
	opts.Draft = "7"
	opts.ID = "https://example.com/schemas/person"
	opts.DenyAdditionalProperties = true
	opts.Title = false
	g := NewGenerator(reg, opts)

	doc, err := g.Generate("Address")
	if err != nil {
		t.Fatalf("Generate(Address) failed: %v", err)
	}
	if !strings.Contains(doc.Schema, "draft-07") {
		t.Errorf("$schema = %q, want draft-07", doc.Schema)
	}
	if doc.ID != "https://example.com/schemas/person" {
		t.Errorf("$id = %q", doc.ID)
	}
	address := doc.Defs["Address"]
	if address.Title != "" {
		t.Errorf("title = %q, want empty with Title off", address.Title)
	}
	if deny, ok := address.AdditionalProperties.(bool); !ok || deny {
		t.Errorf("additionalProperties = %v, want false", address.AdditionalProperties)
	}
}

func TestGenerateStampedID(t *testing.T) {
	reg := testRegistry(t)
	opts := DefaultOptions()
	opts.StampID = true
	g := NewGenerator(reg, opts)

	doc, err := g.Generate("Address")
	if err != nil {
		t.Fatalf("Generate(Address) failed: %v", err)
	}
	if !strings.HasPrefix(doc.ID, "urn:uuid:") {
		t.Errorf("$id = %q, want a urn:uuid value", doc.ID)
	}
}

func TestGenerateErrors(t *testing.T) {
	reg := testRegistry(t)

	if _, err := NewGenerator(reg, DefaultOptions()).Generate("Nope"); err == nil {
		t.Errorf("Generate of an unknown type should fail")
	}

	opts := DefaultOptions()
	opts.Draft = "99"
	if _, err := NewGenerator(reg, opts).Generate("Person"); err == nil {
		t.Errorf("Generate with an unknown draft should fail")
	}
}

func defKeys(doc *Node) []string {
	keys := make([]string, 0, len(doc.Defs))
	for k := range doc.Defs {
		keys = append(keys, k)
	}
	return keys
}
