package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/slighter12/brevo-mcp-go/tools/types"
)

// SchemaValidator checks arguments against a tool schema. A first pass walks
// the declared properties, coerces scalars sent as strings and reports the
// first broken rule with the field name. A second pass runs the resolved JSON
// Schema over the coerced arguments.
type SchemaValidator struct {
	resolved sync.Map // *types.Schema -> *jsonschema.Resolved
}

func NewValidator() *SchemaValidator {
	return &SchemaValidator{}
}

// Validate returns a coerced copy of args. Null optional arguments are
// dropped; undeclared arguments pass through untouched.
func (v *SchemaValidator) Validate(schema *types.Schema, args map[string]any) (map[string]any, error) {
	if schema == nil {
		schema = types.Object("")
	}
	if args == nil {
		args = map[string]any{}
	}

	out, err := coerceObject("", schema, args)
	if err != nil {
		return nil, err
	}

	resolved, err := v.resolve(schema)
	if err != nil {
		return nil, &types.ValidationError{Rule: types.RuleSchema, Message: err.Error()}
	}
	if err := resolved.Validate(out); err != nil {
		return nil, &types.ValidationError{Rule: types.RuleSchema, Message: err.Error()}
	}
	return out, nil
}

func (v *SchemaValidator) resolve(schema *types.Schema) (*jsonschema.Resolved, error) {
	if cached, ok := v.resolved.Load(schema); ok {
		return cached.(*jsonschema.Resolved), nil
	}
	resolved, err := schema.JSONSchema().Resolve(nil)
	if err != nil {
		return nil, err
	}
	actual, _ := v.resolved.LoadOrStore(schema, resolved)
	return actual.(*jsonschema.Resolved), nil
}

func coerceObject(prefix string, schema *types.Schema, in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		if _, declared := schema.Property(key); !declared {
			out[key] = value
		}
	}
	for _, prop := range schema.Properties {
		field := join(prefix, prop.Name)
		value, present := in[prop.Name]
		if !present || value == nil {
			if prop.Required {
				return nil, &types.ValidationError{Field: field, Rule: types.RuleRequired, Message: "is required"}
			}
			continue
		}
		coerced, err := coerce(field, prop.Schema, value)
		if err != nil {
			return nil, err
		}
		out[prop.Name] = coerced
	}
	return out, nil
}

func coerce(field string, schema *types.Schema, value any) (any, error) {
	if schema == nil {
		return value, nil
	}
	switch schema.Kind {
	case types.KindString:
		return coerceString(field, schema, value)
	case types.KindInteger:
		return coerceInteger(field, value)
	case types.KindNumber:
		return coerceNumber(field, value)
	case types.KindBoolean:
		return coerceBoolean(field, value)
	case types.KindArray:
		items, ok := value.([]any)
		if !ok {
			return nil, typeError(field, "array", value)
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			coerced, err := coerce(fmt.Sprintf("%s[%d]", field, i), schema.Items, item)
			if err != nil {
				return nil, err
			}
			out = append(out, coerced)
		}
		return out, nil
	case types.KindObject:
		members, ok := value.(map[string]any)
		if !ok {
			return nil, typeError(field, "object", value)
		}
		return coerceObject(field, schema, members)
	default:
		return value, nil
	}
}

func coerceString(field string, schema *types.Schema, value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, typeError(field, "string", value)
	}

	if len(schema.Enum) > 0 && !slices.Contains(schema.Enum, s) {
		return nil, &types.ValidationError{
			Field:   field,
			Rule:    types.RuleEnum,
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(schema.Enum, ", "), s),
		}
	}
	if err := checkFormat(schema.Format, s); err != nil {
		return nil, &types.ValidationError{Field: field, Rule: types.RuleFormat, Message: err.Error()}
	}
	return s, nil
}

func checkFormat(format types.Format, s string) error {
	switch format {
	case types.FormatEmail:
		addr, err := mail.ParseAddress(s)
		if err != nil || addr.Address != s {
			return fmt.Errorf("%q is not a valid email address", s)
		}
	case types.FormatURL:
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%q is not an absolute URL", s)
		}
	case types.FormatDate:
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return fmt.Errorf("%q is not a date in YYYY-MM-DD form", s)
		}
	case types.FormatDateTime:
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return fmt.Errorf("%q is not an RFC 3339 date-time", s)
		}
	}
	return nil
}

func coerceInteger(field string, value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, typeError(field, "integer", value)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, typeError(field, "integer", value)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, typeError(field, "integer", value)
		}
		return n, nil
	default:
		return nil, typeError(field, "integer", value)
	}
}

func coerceNumber(field string, value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, typeError(field, "number", value)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, typeError(field, "number", value)
		}
		return f, nil
	default:
		return nil, typeError(field, "number", value)
	}
}

func coerceBoolean(field string, value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, typeError(field, "boolean", value)
		}
		return b, nil
	default:
		return nil, typeError(field, "boolean", value)
	}
}

func typeError(field, want string, got any) error {
	return &types.ValidationError{
		Field:   field,
		Rule:    types.RuleType,
		Message: fmt.Sprintf("expected %s, got %s", want, jsonKind(got)),
	}
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
