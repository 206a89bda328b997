package tools

import (
	"fmt"
	"slices"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/tools/account"
	"github.com/slighter12/brevo-mcp-go/tools/automations"
	"github.com/slighter12/brevo-mcp-go/tools/campaigns"
	"github.com/slighter12/brevo-mcp-go/tools/contacts"
	"github.com/slighter12/brevo-mcp-go/tools/crm"
	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	"github.com/slighter12/brevo-mcp-go/tools/folders"
	"github.com/slighter12/brevo-mcp-go/tools/inbound"
	"github.com/slighter12/brevo-mcp-go/tools/lists"
	"github.com/slighter12/brevo-mcp-go/tools/senders"
	"github.com/slighter12/brevo-mcp-go/tools/sms"
	"github.com/slighter12/brevo-mcp-go/tools/templates"
	"github.com/slighter12/brevo-mcp-go/tools/transactional"
	"github.com/slighter12/brevo-mcp-go/tools/types"
	"github.com/slighter12/brevo-mcp-go/tools/webhooks"
)

// Groups returns every tool group in the order tools are advertised.
func Groups() []endpoint.Group {
	return []endpoint.Group{
		contacts.Group(),
		lists.Group(),
		folders.Group(),
		campaigns.Group(),
		transactional.Group(),
		templates.Group(),
		senders.Group(),
		sms.Group(),
		automations.Group(),
		crm.Group(),
		webhooks.Group(),
		account.Group(),
		inbound.Group(),
	}
}

// GroupNames lists the known group names in advertised order.
func GroupNames() []string {
	groups := Groups()
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

// Selection narrows and renames the exposed tools.
type Selection struct {
	// Prefix is prepended to every tool name, e.g. "brevo_".
	Prefix string
	// Groups limits the catalog to the named groups. Empty means all.
	Groups []string
}

// Descriptors binds the selected groups to caller, one slice per group.
func Descriptors(caller brevo.Caller, sel Selection) ([][]types.Descriptor, error) {
	known := GroupNames()
	for _, name := range sel.Groups {
		if !slices.Contains(known, name) {
			return nil, fmt.Errorf("unknown tool group %q (known: %v)", name, known)
		}
	}

	var out [][]types.Descriptor
	for _, g := range Groups() {
		if len(sel.Groups) > 0 && !slices.Contains(sel.Groups, g.Name) {
			continue
		}
		bound := endpoint.BindGroup(g, caller)
		if sel.Prefix != "" {
			for i := range bound {
				bound[i].Name = sel.Prefix + bound[i].Name
			}
		}
		out = append(out, bound)
	}
	return out, nil
}

// NewCatalog builds the registry of Brevo tools for caller.
func NewCatalog(caller brevo.Caller, sel Selection) (*Registry, error) {
	groups, err := Descriptors(caller, sel)
	if err != nil {
		return nil, err
	}
	return NewRegistry(groups...)
}
