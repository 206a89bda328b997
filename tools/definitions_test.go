package tools

import (
	"strings"
	"testing"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
)

func TestCatalogNamesAreUniqueAndSnakeCase(t *testing.T) {
	seen := map[string]string{}
	for _, group := range Groups() {
		if len(group.Endpoints) == 0 {
			t.Errorf("group %s has no endpoints", group.Name)
		}
		for _, e := range group.Endpoints {
			if prev, dup := seen[e.Name]; dup {
				t.Errorf("tool %s declared in %s and %s", e.Name, prev, group.Name)
			}
			seen[e.Name] = group.Name
			if e.Name != strings.ToLower(e.Name) || strings.ContainsAny(e.Name, " -") {
				t.Errorf("tool name %q is not snake_case", e.Name)
			}
			if e.Description == "" {
				t.Errorf("tool %s has no description", e.Name)
			}
		}
	}
	for _, name := range []string{"create_contact", "get_contact", "send_transactional_sms", "list_lists", "get_account"} {
		if _, ok := seen[name]; !ok {
			t.Errorf("catalog is missing %s", name)
		}
	}
}

func TestCatalogPathParamsAreDeclared(t *testing.T) {
	for _, group := range Groups() {
		for _, e := range group.Endpoints {
			for _, match := range placeholderNames(e.Path) {
				found := false
				for _, p := range e.Params {
					if p.Name == match && p.In == endpoint.InPath && p.Required {
						found = true
					}
				}
				if !found {
					t.Errorf("%s: path placeholder {%s} has no required path param", e.Name, match)
				}
			}
		}
	}
}

func placeholderNames(path string) []string {
	var names []string
	for {
		start := strings.IndexByte(path, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(path[start:], '}')
		if end < 0 {
			return names
		}
		names = append(names, path[start+1:start+end])
		path = path[start+end+1:]
	}
}

func TestDescriptorsApplySelection(t *testing.T) {
	groups, err := Descriptors(nil, Selection{Prefix: "brevo_", Groups: []string{"sms", "account"}})
	if err != nil {
		t.Fatalf("Descriptors: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0][0].Group != "sms" || groups[1][0].Group != "account" {
		t.Errorf("groups out of catalog order: %s, %s", groups[0][0].Group, groups[1][0].Group)
	}
	for _, group := range groups {
		for _, desc := range group {
			if !strings.HasPrefix(desc.Name, "brevo_") {
				t.Errorf("tool %s is missing the prefix", desc.Name)
			}
		}
	}

	if _, err := Descriptors(nil, Selection{Groups: []string{"nope"}}); err == nil {
		t.Error("expected an error for an unknown group")
	}
}
