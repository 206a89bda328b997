package brevo

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

// ListFields are the collection names Brevo uses for list responses, in the
// order Paginate tries them when the caller names none.
var ListFields = []string{
	"contacts",
	"campaigns",
	"lists",
	"folders",
	"templates",
	"senders",
	"workflows",
	"webhooks",
	"deals",
	"pipelines",
	"stages",
}

// Page is the uniform shape of a list response. Total is nil when the
// response carried no count.
type Page struct {
	Items  []json.RawMessage `json:"items"`
	Total  *int64            `json:"total,omitempty"`
	Limit  int               `json:"limit,omitempty"`
	Offset int               `json:"offset,omitempty"`
}

// Paginate extracts the first array-valued field among fields (ListFields if
// none are given) as Items and the "count" field as Total. A body without a
// matching array yields an empty page, not an error.
func Paginate(body []byte, fields ...string) Page {
	if len(fields) == 0 {
		fields = ListFields
	}
	page := Page{Items: []json.RawMessage{}}
	if !gjson.ValidBytes(body) {
		return page
	}
	parsed := gjson.ParseBytes(body)
	for _, field := range fields {
		value := parsed.Get(gjson.Escape(field))
		if !value.IsArray() {
			continue
		}
		for _, item := range value.Array() {
			page.Items = append(page.Items, json.RawMessage(item.Raw))
		}
		break
	}
	if count := parsed.Get("count"); count.Type == gjson.Number {
		total := count.Int()
		page.Total = &total
	}
	return page
}

// WithPageDefaults copies query and fills in the default limit and offset.
func WithPageDefaults(query url.Values) url.Values {
	out := url.Values{}
	for key, values := range query {
		out[key] = append([]string(nil), values...)
	}
	if out.Get("limit") == "" {
		out.Set("limit", strconv.Itoa(DefaultLimit))
	}
	if out.Get("offset") == "" {
		out.Set("offset", strconv.Itoa(DefaultOffset))
	}
	return out
}

// PageWindow reads the limit and offset back out of query.
func PageWindow(query url.Values) (limit, offset int) {
	limit, _ = strconv.Atoi(query.Get("limit"))
	offset, _ = strconv.Atoi(query.Get("offset"))
	return limit, offset
}
