package transactional

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "transactional"

func address(description string) *t.Schema {
	return t.Object(description,
		t.Req("email", t.Email("Email address")),
		t.Opt("name", t.String("Display name")),
	)
}

func addresses(description string) *t.Schema {
	return t.ArrayOf(address("Recipient"), description)
}

func reportWindow() []endpoint.Param {
	return []endpoint.Param{
		endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
		endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
		endpoint.Query("days", t.Integer("Number of past days, exclusive with the date range")),
		endpoint.Query("tag", t.String("Only messages with this tag")),
	}
}

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "send_transactional_email",
			Description: "Send a transactional email from HTML content or a template",
			Method:      http.MethodPost,
			Path:        "/smtp/email",
			Params: []endpoint.Param{
				endpoint.Body("to", addresses("Recipients")).Require(),
				endpoint.Body("sender", address("Sender, required unless the template defines one")),
				endpoint.Body("subject", t.String("Email subject")),
				endpoint.Body("htmlContent", t.String("HTML body")),
				endpoint.Body("textContent", t.String("Plain text body")),
				endpoint.Body("templateId", t.Integer("Template used as the body")),
				endpoint.Body("params", t.Object("Template parameters")),
				endpoint.Body("cc", addresses("Carbon copy recipients")),
				endpoint.Body("bcc", addresses("Blind carbon copy recipients")),
				endpoint.Body("replyTo", address("Reply-to address")),
				endpoint.Body("attachment", t.ArrayOf(t.Object("Attachment",
					t.Opt("url", t.URL("Absolute URL of the file")),
					t.Opt("content", t.String("Base64 encoded file content")),
					t.Opt("name", t.String("File name, required with content")),
				), "Attachments")),
				endpoint.Body("headers", t.Object("Custom headers")),
				endpoint.Body("tags", t.ArrayOf(t.String("Tag"), "Tags for filtering statistics")),
				endpoint.Body("scheduledAt", t.DateTime("Send date-time in UTC (RFC 3339)")),
			},
			Summary: "Email sent with message ID: {messageId}",
		},
		{
			Name:        "list_transactional_emails",
			Description: "List sent transactional emails filtered by recipient, template or message ID",
			Method:      http.MethodGet,
			Path:        "/smtp/emails",
			Params: append([]endpoint.Param{
				endpoint.Query("email", t.Email("Recipient email")),
				endpoint.Query("templateId", t.Integer("Template ID")),
				endpoint.Query("messageId", t.String("Message ID")),
				endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
				endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
				endpoint.Sort("Sort by send date"),
			}, endpoint.Paging(500)...),
			ListField: "transactionalEmails",
		},
		{
			Name:        "get_transactional_email",
			Description: "Get the content and events of a sent transactional email",
			Method:      http.MethodGet,
			Path:        "/smtp/emails/{uuid}",
			Params: []endpoint.Param{
				endpoint.Path("uuid", t.String("UUID of the sent email")),
			},
		},
		{
			Name:        "delete_scheduled_email",
			Description: "Cancel a scheduled transactional email by message ID or batch ID",
			Method:      http.MethodDelete,
			Path:        "/smtp/email/{identifier}",
			Params: []endpoint.Param{
				endpoint.Path("identifier", t.String("Message ID or batch ID")),
			},
			Summary: "Scheduled email deleted successfully",
		},
		{
			Name:        "list_transactional_events",
			Description: "List transactional email events such as deliveries, opens and bounces",
			Method:      http.MethodGet,
			Path:        "/smtp/statistics/events",
			Params: append(append(endpoint.Paging(5000),
				endpoint.Query("email", t.Email("Recipient email")),
				endpoint.Query("event", t.Enum("Event type",
					"bounces", "hardBounces", "softBounces", "delivered", "spam", "requests", "opened",
					"clicks", "invalid", "deferred", "blocked", "unsubscribed", "error", "loadedByProxy")),
				endpoint.Query("tags", t.String("Comma separated tags")),
				endpoint.Query("messageId", t.String("Message ID")),
				endpoint.Query("templateId", t.Integer("Template ID")),
				endpoint.Sort("Sort by event date"),
			), reportWindow()[:3]...),
			ListField: "events",
		},
		{
			Name:        "get_aggregated_report",
			Description: "Get aggregated transactional email statistics over a period",
			Method:      http.MethodGet,
			Path:        "/smtp/statistics/aggregatedReport",
			Params:      reportWindow(),
		},
		{
			Name:        "get_transactional_reports",
			Description: "Get transactional email statistics broken down by day",
			Method:      http.MethodGet,
			Path:        "/smtp/statistics/reports",
			Params:      append(append(endpoint.Paging(30), endpoint.Sort("Sort by date")), reportWindow()...),
			ListField:   "reports",
		},
		{
			Name:        "list_blocked_contacts",
			Description: "List contacts blocked or unsubscribed from transactional emails",
			Method:      http.MethodGet,
			Path:        "/smtp/blockedContacts",
			Params: append(append(endpoint.Paging(100),
				endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
				endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
				endpoint.Query("senders", t.ArrayOf(t.Email("Sender email"), "Only contacts blocked for these senders")),
			), endpoint.Sort("Sort by block date")),
			ListField: "contacts",
		},
		{
			Name:        "unblock_contact",
			Description: "Unblock a contact from transactional emails",
			Method:      http.MethodDelete,
			Path:        "/smtp/blockedContacts/{email}",
			Params: []endpoint.Param{
				endpoint.Path("email", t.Email("Contact email")),
			},
			Summary: "Contact unblocked successfully",
		},
		{
			Name:        "list_blocked_domains",
			Description: "List domains blocked from transactional emails",
			Method:      http.MethodGet,
			Path:        "/smtp/blockedDomains",
		},
		{
			Name:        "block_email_domain",
			Description: "Block a domain from receiving transactional emails",
			Method:      http.MethodPost,
			Path:        "/smtp/blockedDomains",
			Params: []endpoint.Param{
				endpoint.Body("domain", t.String("Domain name, e.g. example.com")).Require(),
			},
			Summary: "Domain blocked successfully",
		},
		{
			Name:        "unblock_email_domain",
			Description: "Remove a domain from the blocked list",
			Method:      http.MethodDelete,
			Path:        "/smtp/blockedDomains/{domain}",
			Params: []endpoint.Param{
				endpoint.Path("domain", t.String("Domain name")),
			},
			Summary: "Domain unblocked successfully",
		},
	}
}
