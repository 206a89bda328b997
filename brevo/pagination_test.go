package brevo

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rawItems(items ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item))
	}
	return out
}

func TestPaginate(t *testing.T) {
	total := func(n int64) *int64 { return &n }

	tests := []struct {
		name   string
		body   string
		fields []string
		want   Page
	}{
		{
			name:   "explicit field with count",
			body:   `{"contacts":[{"id":1},{"id":2}],"count":2}`,
			fields: []string{"contacts"},
			want:   Page{Items: rawItems(`{"id":1}`, `{"id":2}`), Total: total(2)},
		},
		{
			name:   "explicit field ignores other arrays",
			body:   `{"lists":[{"id":9}],"campaigns":[{"id":3}]}`,
			fields: []string{"campaigns"},
			want:   Page{Items: rawItems(`{"id":3}`)},
		},
		{
			name: "default order picks first known field",
			body: `{"lists":[{"id":9}],"campaigns":[{"id":3}],"count":11}`,
			want: Page{Items: rawItems(`{"id":3}`), Total: total(11)},
		},
		{
			name:   "no matching field is empty not error",
			body:   `{"events":[{"id":1}]}`,
			fields: []string{"contacts"},
			want:   Page{Items: rawItems()},
		},
		{
			name:   "non array field is skipped",
			body:   `{"deals":{"id":1},"pipelines":[{"pipeline":"p1"}]}`,
			fields: []string{"deals", "pipelines"},
			want:   Page{Items: rawItems(`{"pipeline":"p1"}`)},
		},
		{
			name:   "count must be numeric",
			body:   `{"webhooks":[],"count":"many"}`,
			fields: []string{"webhooks"},
			want:   Page{Items: rawItems()},
		},
		{
			name:   "invalid json",
			body:   `not json`,
			fields: []string{"contacts"},
			want:   Page{Items: rawItems()},
		},
		{
			name:   "dotted field names are literal",
			body:   `{"a.b":[1],"a":{"b":[2]}}`,
			fields: []string{"a.b"},
			want:   Page{Items: rawItems(`1`)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Paginate([]byte(tc.body), tc.fields...)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Paginate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPaginateIsPure(t *testing.T) {
	body := []byte(`{"senders":[{"id":1}],"count":1}`)
	first := Paginate(body, "senders")
	second := Paginate(body, "senders")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Paginate is not deterministic:\n%s", diff)
	}
	if string(body) != `{"senders":[{"id":1}],"count":1}` {
		t.Errorf("Paginate mutated its input: %s", body)
	}
}

func TestWithPageDefaults(t *testing.T) {
	in := url.Values{"limit": {"10"}}
	out := WithPageDefaults(in)
	if out.Get("limit") != "10" || out.Get("offset") != "0" {
		t.Errorf("unexpected defaults: %v", out)
	}
	if in.Get("offset") != "" {
		t.Error("WithPageDefaults must not modify its argument")
	}
	limit, offset := PageWindow(WithPageDefaults(nil))
	if limit != DefaultLimit || offset != DefaultOffset {
		t.Errorf("unexpected window %d/%d", limit, offset)
	}
}
