package types

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Kind is the primitive kind of a schema node.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Format is a string constraint checked by validators.
type Format string

const (
	FormatEmail    Format = "email"
	FormatURL      Format = "uri"
	FormatDate     Format = "date"
	FormatDateTime Format = "date-time"
)

// Schema describes the expected shape of a tool argument. Properties keep
// declaration order so advertised schemas and validation messages are stable.
type Schema struct {
	Kind        Kind
	Description string
	Format      Format
	Enum        []string
	Default     any
	Items       *Schema
	Properties  []Property
}

// Property is a named member of an object schema.
type Property struct {
	Name     string
	Required bool
	Schema   *Schema
}

func String(description string) *Schema {
	return &Schema{Kind: KindString, Description: description}
}

func Number(description string) *Schema {
	return &Schema{Kind: KindNumber, Description: description}
}

func Integer(description string) *Schema {
	return &Schema{Kind: KindInteger, Description: description}
}

func Boolean(description string) *Schema {
	return &Schema{Kind: KindBoolean, Description: description}
}

func Email(description string) *Schema {
	return &Schema{Kind: KindString, Format: FormatEmail, Description: description}
}

func URL(description string) *Schema {
	return &Schema{Kind: KindString, Format: FormatURL, Description: description}
}

func Date(description string) *Schema {
	return &Schema{Kind: KindString, Format: FormatDate, Description: description}
}

func DateTime(description string) *Schema {
	return &Schema{Kind: KindString, Format: FormatDateTime, Description: description}
}

func Enum(description string, values ...string) *Schema {
	return &Schema{Kind: KindString, Description: description, Enum: values}
}

func ArrayOf(items *Schema, description string) *Schema {
	return &Schema{Kind: KindArray, Description: description, Items: items}
}

// Object builds an object schema. An object without properties accepts any
// members, which suits free-form maps such as contact attributes.
func Object(description string, properties ...Property) *Schema {
	return &Schema{Kind: KindObject, Description: description, Properties: properties}
}

// Req declares a required property.
func Req(name string, schema *Schema) Property {
	return Property{Name: name, Required: true, Schema: schema}
}

// Opt declares an optional property.
func Opt(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}

// WithDefault returns a copy of s advertising value as its default.
func (s *Schema) WithDefault(value any) *Schema {
	clone := *s
	clone.Default = value
	return &clone
}

// Property looks up a declared property by name.
func (s *Schema) Property(name string) (Property, bool) {
	for _, prop := range s.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// RequiredNames lists required property names in declaration order.
func (s *Schema) RequiredNames() []string {
	var names []string
	for _, prop := range s.Properties {
		if prop.Required {
			names = append(names, prop.Name)
		}
	}
	return names
}

// JSONSchema converts the node to the JSON Schema advertised to clients.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	if s == nil {
		return nil
	}
	out := &jsonschema.Schema{
		Type:        string(s.Kind),
		Description: s.Description,
		Format:      string(s.Format),
	}
	for _, value := range s.Enum {
		out.Enum = append(out.Enum, value)
	}
	if s.Default != nil {
		if raw, err := json.Marshal(s.Default); err == nil {
			out.Default = raw
		}
	}
	if s.Items != nil {
		out.Items = s.Items.JSONSchema()
	}
	if s.Kind == KindObject {
		out.Properties = make(map[string]*jsonschema.Schema, len(s.Properties))
		for _, prop := range s.Properties {
			out.Properties[prop.Name] = prop.Schema.JSONSchema()
		}
		out.Required = s.RequiredNames()
	}
	return out
}
