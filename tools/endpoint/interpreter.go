package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/tools/types"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

// Bind turns an endpoint into a descriptor executed against caller.
func Bind(group string, e Endpoint, caller brevo.Caller) types.Descriptor {
	return types.Descriptor{
		Name:        e.Name,
		Description: e.Description,
		Group:       group,
		InputSchema: e.InputSchema(),
		Execute: func(ctx context.Context, args map[string]any) (types.Output, error) {
			return e.Execute(ctx, caller, args)
		},
	}
}

// BindGroup binds every endpoint of g in order.
func BindGroup(g Group, caller brevo.Caller) []types.Descriptor {
	out := make([]types.Descriptor, 0, len(g.Endpoints))
	for _, e := range g.Endpoints {
		out = append(out, Bind(g.Name, e, caller))
	}
	return out
}

// Execute performs the call described by e with already validated args.
func (e Endpoint) Execute(ctx context.Context, caller brevo.Caller, args map[string]any) (types.Output, error) {
	req, err := e.Request(args)
	if err != nil {
		return types.Output{}, err
	}

	body, err := caller.Do(ctx, req)
	if err != nil {
		return types.Output{}, err
	}

	if e.Transform != nil {
		if body, err = e.Transform(args, body); err != nil {
			return types.Output{}, fmt.Errorf("%s: reshape response: %w", e.Name, err)
		}
	}

	if e.ListField != "" {
		page := brevo.Paginate(body, e.ListField)
		page.Limit, page.Offset = brevo.PageWindow(req.Query)
		if body, err = json.Marshal(page); err != nil {
			return types.Output{}, fmt.Errorf("%s: encode page: %w", e.Name, err)
		}
	}

	out := types.Output{Data: body}
	if e.Summary != "" {
		out.Summary = Summarize(e.Summary, body)
	}
	return out, nil
}

// Request maps args onto the HTTP request of e.
func (e Endpoint) Request(args map[string]any) (brevo.Request, error) {
	method := e.Method
	if method == "" {
		method = http.MethodGet
	}

	path, err := e.expandPath(args)
	if err != nil {
		return brevo.Request{}, err
	}

	query := url.Values{}
	var (
		body    = []byte(`{}`)
		hasBody bool
	)
	for _, p := range e.Params {
		value, ok := args[p.Name]
		if !ok || value == nil {
			continue
		}
		switch p.In {
		case InQuery:
			encoded, err := queryValue(value, p.AsJSON)
			if err != nil {
				return brevo.Request{}, fmt.Errorf("%s: encode query %q: %w", e.Name, p.Name, err)
			}
			query.Set(p.wireName(), encoded)
		case InBody:
			if body, err = sjson.SetBytes(body, p.wireName(), value); err != nil {
				return brevo.Request{}, fmt.Errorf("%s: set body field %q: %w", e.Name, p.Name, err)
			}
			hasBody = true
		}
	}

	keys := make([]string, 0, len(e.Fixed))
	for key := range e.Fixed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if body, err = sjson.SetBytes(body, key, e.Fixed[key]); err != nil {
			return brevo.Request{}, fmt.Errorf("%s: set fixed field %q: %w", e.Name, key, err)
		}
		hasBody = true
	}

	if e.ListField != "" && e.hasParam("limit") {
		query = brevo.WithPageDefaults(query)
	}

	req := brevo.Request{Method: method, Path: path}
	if len(query) > 0 {
		req.Query = query
	}
	if hasBody || (e.declaresBody() && method != http.MethodGet && method != http.MethodDelete) {
		req.Body = json.RawMessage(body)
	}
	return req, nil
}

func (e Endpoint) declaresBody() bool {
	for _, p := range e.Params {
		if p.In == InBody {
			return true
		}
	}
	return false
}

func (e Endpoint) expandPath(args map[string]any) (string, error) {
	var missing, blank string
	path := placeholderPattern.ReplaceAllStringFunc(e.Path, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := args[name]
		if !ok || value == nil {
			missing = name
			return match
		}
		segment := strings.TrimSpace(scalarString(value))
		if segment == "" {
			blank = name
			return match
		}
		return url.PathEscape(segment)
	})
	if missing != "" {
		return "", &types.ValidationError{Field: missing, Rule: types.RuleRequired, Message: "path parameter is missing"}
	}
	// An empty segment would address the collection instead of one item.
	if blank != "" {
		return "", &types.ValidationError{Field: blank, Rule: types.RuleRequired, Message: "path parameter must not be empty"}
	}
	return path, nil
}

// Summarize fills {field} placeholders of template from body. Fields may be
// gjson paths; absent fields render as "unknown".
func Summarize(template string, body []byte) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		value := gjson.GetBytes(body, match[1:len(match)-1])
		if !value.Exists() {
			return "unknown"
		}
		return value.String()
	})
}

func queryValue(value any, asJSON bool) (string, error) {
	if asJSON {
		raw, err := json.Marshal(value)
		return string(raw), err
	}
	switch v := value.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarString(item))
		}
		return strings.Join(parts, ","), nil
	case map[string]any:
		raw, err := json.Marshal(v)
		return string(raw), err
	default:
		return scalarString(v), nil
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
