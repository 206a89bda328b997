package endpoint

import (
	"encoding/json"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// WrapArray moves a top-level array response under field and records its
// length as count, so list normalization applies. Object responses pass
// through unchanged.
func WrapArray(field string) Transform {
	return func(_ map[string]any, body json.RawMessage) (json.RawMessage, error) {
		parsed := gjson.ParseBytes(body)
		if !parsed.IsArray() {
			return body, nil
		}
		out, err := sjson.SetRawBytes([]byte(`{}`), field, body)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(out, "count", len(parsed.Array()))
	}
}

// Project builds a new object from gjson paths of the response. Keys of
// fields are output names; values are paths into body.
func Project(fields map[string]string) Transform {
	return func(_ map[string]any, body json.RawMessage) (json.RawMessage, error) {
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		out := []byte(`{}`)
		for _, name := range names {
			value := gjson.GetBytes(body, fields[name])
			if !value.Exists() {
				continue
			}
			var err error
			if out, err = sjson.SetRawBytes(out, name, []byte(value.Raw)); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// EchoArgs copies the named arguments into the response object.
func EchoArgs(names ...string) Transform {
	return func(args map[string]any, body json.RawMessage) (json.RawMessage, error) {
		out := []byte(body)
		if !gjson.ParseBytes(body).IsObject() {
			return body, nil
		}
		for _, name := range names {
			value, ok := args[name]
			if !ok {
				continue
			}
			var err error
			if out, err = sjson.SetBytes(out, name, value); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// Chain applies transforms in order.
func Chain(transforms ...Transform) Transform {
	return func(args map[string]any, body json.RawMessage) (json.RawMessage, error) {
		var err error
		for _, transform := range transforms {
			if body, err = transform(args, body); err != nil {
				return nil, err
			}
		}
		return body, nil
	}
}
