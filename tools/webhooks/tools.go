package webhooks

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "webhooks"

var webhookID = endpoint.Path("webhookId", t.Integer("Webhook ID"))

func settings() []endpoint.Param {
	return []endpoint.Param{
		endpoint.Body("description", t.String("Webhook description")),
		endpoint.Body("batched", t.Boolean("Deliver events in batches")),
		endpoint.Body("auth", t.Object("Authentication sent with each call",
			t.Opt("type", t.Enum("Authentication scheme", "bearer")),
			t.Opt("token", t.String("Bearer token")),
		)),
		endpoint.Body("headers", t.ArrayOf(t.Object("Header",
			t.Req("key", t.String("Header name")),
			t.Req("value", t.String("Header value")),
		), "Custom headers sent with each call")),
		endpoint.Body("domain", t.String("Inbound domain, for inbound webhooks")),
	}
}

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_webhooks",
			Description: "List webhooks",
			Method:      http.MethodGet,
			Path:        "/webhooks",
			Params: []endpoint.Param{
				endpoint.Query("type", t.Enum("Webhook type", "marketing", "transactional", "inbound")),
				endpoint.Sort("Sort by creation date"),
			},
			ListField: "webhooks",
		},
		{
			Name:        "get_webhook",
			Description: "Get the details of a webhook",
			Method:      http.MethodGet,
			Path:        "/webhooks/{webhookId}",
			Params:      []endpoint.Param{webhookID},
		},
		{
			Name:        "create_webhook",
			Description: "Create a webhook called on marketing, transactional or inbound events",
			Method:      http.MethodPost,
			Path:        "/webhooks",
			Params: append([]endpoint.Param{
				endpoint.Body("url", t.URL("URL called for each event")).Require(),
				endpoint.Body("events", t.ArrayOf(t.String("Event name, e.g. delivered or unsubscribed"), "Events triggering the webhook")).Require(),
				endpoint.Body("type", t.Enum("Webhook type", "marketing", "transactional", "inbound")),
			}, settings()...),
			Summary: "Webhook created with ID: {id}",
		},
		{
			Name:        "update_webhook",
			Description: "Update a webhook",
			Method:      http.MethodPut,
			Path:        "/webhooks/{webhookId}",
			Params: append([]endpoint.Param{
				webhookID,
				endpoint.Body("url", t.URL("URL called for each event")),
				endpoint.Body("events", t.ArrayOf(t.String("Event name"), "Events triggering the webhook")),
			}, settings()...),
			Summary: "Webhook updated successfully",
		},
		{
			Name:        "delete_webhook",
			Description: "Delete a webhook",
			Method:      http.MethodDelete,
			Path:        "/webhooks/{webhookId}",
			Params:      []endpoint.Param{webhookID},
			Summary:     "Webhook deleted successfully",
		},
		{
			Name:        "export_webhook_events",
			Description: "Export webhook events to a CSV file delivered to a notify URL",
			Method:      http.MethodPost,
			Path:        "/webhooks/export",
			Params: []endpoint.Param{
				endpoint.Body("type", t.Enum("Webhook type", "transactional", "marketing")).Require(),
				endpoint.Body("event", t.String("Event to export, e.g. delivered")).Require(),
				endpoint.Body("notifyURL", t.URL("URL notified when the export is ready")).Require(),
				endpoint.Body("days", t.Integer("Number of past days")),
				endpoint.Body("startDate", t.Date("Start date (YYYY-MM-DD)")),
				endpoint.Body("endDate", t.Date("End date (YYYY-MM-DD)")),
				endpoint.Body("email", t.Email("Only events for this recipient")),
				endpoint.Body("messageId", t.Integer("Only events for this message")),
			},
			Summary: "Export started with process ID: {processId}",
		},
	}
}
