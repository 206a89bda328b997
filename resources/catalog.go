// Package resources exposes read-only MCP resources: the live Brevo account
// and the dashboard templates.
package resources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/dashboards"
	"github.com/slighter12/brevo-mcp-go/mcp"
)

const (
	AccountURI         = "brevo://account"
	DashboardURIPrefix = "brevo://dashboards/"

	MIMEJSON     = "application/json"
	MIMEMarkdown = "text/markdown"
)

// ErrNotFound is returned for URIs no resource answers to.
var ErrNotFound = errors.New("resource not found")

// Catalog lists and reads resources. The dashboard catalog may be nil.
type Catalog struct {
	caller     brevo.Caller
	dashboards *dashboards.Catalog
}

func NewCatalog(caller brevo.Caller, dash *dashboards.Catalog) *Catalog {
	return &Catalog{caller: caller, dashboards: dash}
}

// List returns the account resource followed by one resource per dashboard.
func (c *Catalog) List() []mcp.Resource {
	out := []mcp.Resource{{
		URI:         AccountURI,
		Name:        "Account Information",
		Description: "Current Brevo account details, plan, and credits",
		MIMEType:    MIMEJSON,
	}}
	for _, dashboard := range c.dashboards.List() {
		out = append(out, mcp.Resource{
			URI:         DashboardURIPrefix + dashboard.Name,
			Name:        dashboard.Title,
			Description: dashboard.Description,
			MIMEType:    MIMEMarkdown,
		})
	}
	return out
}

// Read fetches one resource. Remote failures surface as *brevo.APIError.
func (c *Catalog) Read(ctx context.Context, uri string) (mcp.ResourceContents, error) {
	switch {
	case uri == AccountURI:
		return c.readAccount(ctx)
	case strings.HasPrefix(uri, DashboardURIPrefix):
		name := strings.TrimPrefix(uri, DashboardURIPrefix)
		dashboard, ok := c.dashboards.Get(name)
		if !ok {
			return mcp.ResourceContents{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
		}
		return mcp.ResourceContents{URI: uri, MIMEType: MIMEMarkdown, Text: dashboard.Template}, nil
	default:
		return mcp.ResourceContents{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
}

func (c *Catalog) readAccount(ctx context.Context) (mcp.ResourceContents, error) {
	if c.caller == nil {
		return mcp.ResourceContents{}, errors.New("account resource needs an API client")
	}
	raw, err := c.caller.Do(ctx, brevo.Request{Method: http.MethodGet, Path: "/account"})
	if err != nil {
		return mcp.ResourceContents{}, err
	}
	return mcp.ResourceContents{
		URI:      AccountURI,
		MIMEType: MIMEJSON,
		Text:     gjson.GetBytes(raw, "@pretty").Raw,
	}, nil
}
