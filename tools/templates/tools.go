package templates

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "templates"

var templateID = endpoint.Path("templateId", t.Integer("Template ID"))

func sender() *t.Schema {
	return t.Object("Template sender",
		t.Opt("name", t.String("Sender name")),
		t.Opt("email", t.Email("Sender email")),
		t.Opt("id", t.Integer("Sender ID, used instead of email")),
	)
}

func contentParams() []endpoint.Param {
	return []endpoint.Param{
		endpoint.Body("htmlContent", t.String("HTML body")),
		endpoint.Body("htmlUrl", t.URL("URL of the HTML body")),
		endpoint.Body("replyTo", t.Email("Reply-to address")),
		endpoint.Body("toField", t.String("Personalized To field, e.g. {FNAME} {LNAME}")),
		endpoint.Body("tag", t.String("Template tag")),
		endpoint.Body("attachmentUrl", t.URL("Absolute URL of an attachment")),
		endpoint.Body("isActive", t.Boolean("Whether the template can be used")),
	}
}

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_email_templates",
			Description: "List transactional email templates",
			Method:      http.MethodGet,
			Path:        "/smtp/templates",
			Params: append([]endpoint.Param{
				endpoint.Query("templateStatus", t.Boolean("Only active (true) or inactive (false) templates")),
				endpoint.Sort("Sort by creation date"),
			}, endpoint.Paging(1000)...),
			ListField: "templates",
		},
		{
			Name:        "get_email_template",
			Description: "Get the details of an email template",
			Method:      http.MethodGet,
			Path:        "/smtp/templates/{templateId}",
			Params:      []endpoint.Param{templateID},
		},
		{
			Name:        "create_email_template",
			Description: "Create an email template",
			Method:      http.MethodPost,
			Path:        "/smtp/templates",
			Params: append([]endpoint.Param{
				endpoint.Body("name", t.String("Template name")).As("templateName").Require(),
				endpoint.Body("subject", t.String("Email subject")).Require(),
				endpoint.Body("sender", sender()).Require(),
			}, contentParams()...),
			Summary: "Template created with ID: {id}",
		},
		{
			Name:        "update_email_template",
			Description: "Update an email template",
			Method:      http.MethodPut,
			Path:        "/smtp/templates/{templateId}",
			Params: append([]endpoint.Param{
				templateID,
				endpoint.Body("name", t.String("Template name")).As("templateName"),
				endpoint.Body("subject", t.String("Email subject")),
				endpoint.Body("sender", sender()),
			}, contentParams()...),
			Summary: "Template updated successfully",
		},
		{
			Name:        "delete_email_template",
			Description: "Delete an inactive email template",
			Method:      http.MethodDelete,
			Path:        "/smtp/templates/{templateId}",
			Params:      []endpoint.Param{templateID},
			Summary:     "Template deleted successfully",
		},
		{
			Name:        "send_test_template",
			Description: "Send a test email rendered from a template",
			Method:      http.MethodPost,
			Path:        "/smtp/templates/{templateId}/sendTest",
			Params: []endpoint.Param{
				templateID,
				endpoint.Body("emailTo", t.ArrayOf(t.Email("Recipient"), "Test recipients")),
			},
			Summary: "Test email sent successfully",
		},
	}
}
