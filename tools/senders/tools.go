package senders

import (
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "senders"

var (
	senderID   = endpoint.Path("senderId", t.Integer("Sender ID"))
	domainName = endpoint.Path("domainName", t.String("Domain name, e.g. example.com"))
)

func ips() *t.Schema {
	return t.ArrayOf(t.Object("Dedicated IP",
		t.Req("ip", t.String("IP address")),
		t.Req("domain", t.String("Domain of the IP")),
		t.Opt("weight", t.Integer("Share of traffic, 1 to 100")),
	), "Dedicated IPs of the sender")
}

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_senders",
			Description: "List senders, optionally filtered by dedicated IP or domain",
			Method:      http.MethodGet,
			Path:        "/senders",
			Params: []endpoint.Param{
				endpoint.Query("ip", t.String("Dedicated IP")),
				endpoint.Query("domain", t.String("Sender domain")),
			},
			ListField: "senders",
		},
		{
			Name:        "get_sender",
			Description: "Get the details of a sender",
			Method:      http.MethodGet,
			Path:        "/senders/{senderId}",
			Params:      []endpoint.Param{senderID},
		},
		{
			Name:        "create_sender",
			Description: "Create a sender",
			Method:      http.MethodPost,
			Path:        "/senders",
			Params: []endpoint.Param{
				endpoint.Body("name", t.String("Sender name")).Require(),
				endpoint.Body("email", t.Email("Sender email")).Require(),
				endpoint.Body("ips", ips()),
			},
			Summary: "Sender created with ID: {id}",
		},
		{
			Name:        "update_sender",
			Description: "Update a sender",
			Method:      http.MethodPut,
			Path:        "/senders/{senderId}",
			Params: []endpoint.Param{
				senderID,
				endpoint.Body("name", t.String("Sender name")),
				endpoint.Body("email", t.Email("Sender email")),
				endpoint.Body("ips", ips()),
			},
			Summary: "Sender updated successfully",
		},
		{
			Name:        "delete_sender",
			Description: "Delete a sender",
			Method:      http.MethodDelete,
			Path:        "/senders/{senderId}",
			Params:      []endpoint.Param{senderID},
			Summary:     "Sender deleted successfully",
		},
		{
			Name:        "validate_sender",
			Description: "Check whether a sender's domain passes SPF and DKIM",
			Method:      http.MethodGet,
			Path:        "/senders/{senderId}",
			Params:      []endpoint.Param{senderID},
			Transform:   Authentication,
			Summary:     "Sender {email} validated: {validated}",
		},
		{
			Name:        "list_sender_domains",
			Description: "List sender domains and their authentication state",
			Method:      http.MethodGet,
			Path:        "/senders/domains",
			ListField:   "domains",
		},
		{
			Name:        "validate_sender_domain",
			Description: "Check the DNS configuration of a sender domain",
			Method:      http.MethodGet,
			Path:        "/senders/domains/{domainName}",
			Params:      []endpoint.Param{domainName},
		},
		{
			Name:        "authenticate_sender_domain",
			Description: "Start authentication of a sender domain",
			Method:      http.MethodPut,
			Path:        "/senders/domains/{domainName}/authenticate",
			Params:      []endpoint.Param{domainName},
			Summary:     "Domain authentication requested: {message}",
		},
	}
}

// Authentication reduces a sender to its SPF and DKIM state. A sender is
// validated when both checks pass.
func Authentication(_ map[string]any, body json.RawMessage) (json.RawMessage, error) {
	spf := gjson.GetBytes(body, "spf").Bool()
	dkim := gjson.GetBytes(body, "dkim").Bool()

	out := []byte(`{}`)
	var err error
	for _, field := range []string{"id", "email", "name"} {
		value := gjson.GetBytes(body, field)
		if !value.Exists() {
			continue
		}
		if out, err = sjson.SetRawBytes(out, field, []byte(value.Raw)); err != nil {
			return nil, err
		}
	}
	if out, err = sjson.SetBytes(out, "spf", spf); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "dkim", dkim); err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "validated", spf && dkim)
}
