package campaigns

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "campaigns"

var campaignID = endpoint.Path("campaignId", t.Integer("Email campaign ID"))

func sender() *t.Schema {
	return t.Object("Campaign sender",
		t.Opt("name", t.String("Sender name")),
		t.Opt("email", t.Email("Sender email")),
		t.Opt("id", t.Integer("Sender ID, used instead of email")),
	)
}

func recipients() *t.Schema {
	return t.Object("Campaign recipients",
		t.Opt("listIds", t.ArrayOf(t.Integer("List ID"), "Lists receiving the campaign")),
		t.Opt("exclusionListIds", t.ArrayOf(t.Integer("List ID"), "Lists excluded from the campaign")),
		t.Opt("segmentIds", t.ArrayOf(t.Integer("Segment ID"), "Segments receiving the campaign")),
	)
}

// contentParams are the fields shared by campaign create and update.
func contentParams() []endpoint.Param {
	return []endpoint.Param{
		endpoint.Body("htmlContent", t.String("HTML body of the campaign")),
		endpoint.Body("htmlUrl", t.URL("URL of the HTML body")),
		endpoint.Body("templateId", t.Integer("Template used as the body")),
		endpoint.Body("scheduledAt", t.DateTime("Send date-time in UTC (RFC 3339)")),
		endpoint.Body("recipients", recipients()),
		endpoint.Body("replyTo", t.Email("Reply-to address")),
		endpoint.Body("toField", t.String("Personalized To field, e.g. {FNAME} {LNAME}")),
		endpoint.Body("tag", t.String("Campaign tag")),
		endpoint.Body("previewText", t.String("Preview text shown by mail clients")),
		endpoint.Body("inlineImageActivation", t.Boolean("Embed images as attachments")),
		endpoint.Body("mirrorActive", t.Boolean("Enable the web mirror link")),
		endpoint.Body("recurring", t.Boolean("Allow contacts to receive the campaign several times")),
		endpoint.Body("abTesting", t.Boolean("Enable A/B testing of subjects")),
		endpoint.Body("subjectA", t.String("Subject of version A")),
		endpoint.Body("subjectB", t.String("Subject of version B")),
		endpoint.Body("splitRule", t.Integer("Percentage of recipients in the test group")),
		endpoint.Body("winnerCriteria", t.Enum("Criteria picking the winning version", "open", "click")),
		endpoint.Body("winnerDelay", t.Integer("Hours before the winning version is sent")),
		endpoint.Body("params", t.Object("Template parameters")),
	}
}

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_email_campaigns",
			Description: "List email campaigns with optional type and status filters",
			Method:      http.MethodGet,
			Path:        "/emailCampaigns",
			Params: append([]endpoint.Param{
				endpoint.Query("type", t.Enum("Campaign type", "classic", "trigger")),
				endpoint.Query("status", t.Enum("Campaign status", "suspended", "archive", "sent", "queued", "draft", "inProcess", "inReview")),
				endpoint.Query("startDate", t.DateTime("Only campaigns sent after this date-time")),
				endpoint.Query("endDate", t.DateTime("Only campaigns sent before this date-time")),
				endpoint.Sort("Sort by creation date"),
			}, endpoint.Paging(100)...),
			ListField: "campaigns",
		},
		{
			Name:        "get_email_campaign",
			Description: "Get the details of an email campaign",
			Method:      http.MethodGet,
			Path:        "/emailCampaigns/{campaignId}",
			Params:      []endpoint.Param{campaignID},
		},
		{
			Name:        "create_email_campaign",
			Description: "Create an email campaign",
			Method:      http.MethodPost,
			Path:        "/emailCampaigns",
			Params: append([]endpoint.Param{
				endpoint.Body("name", t.String("Campaign name")).Require(),
				endpoint.Body("subject", t.String("Email subject")).Require(),
				endpoint.Body("sender", sender()).Require(),
			}, contentParams()...),
			Summary: "Campaign created with ID: {id}",
		},
		{
			Name:        "update_email_campaign",
			Description: "Update an email campaign that has not been sent",
			Method:      http.MethodPut,
			Path:        "/emailCampaigns/{campaignId}",
			Params: append([]endpoint.Param{
				campaignID,
				endpoint.Body("name", t.String("Campaign name")),
				endpoint.Body("subject", t.String("Email subject")),
				endpoint.Body("sender", sender()),
			}, contentParams()...),
			Summary: "Campaign updated successfully",
		},
		{
			Name:        "delete_email_campaign",
			Description: "Delete an email campaign",
			Method:      http.MethodDelete,
			Path:        "/emailCampaigns/{campaignId}",
			Params:      []endpoint.Param{campaignID},
			Summary:     "Campaign deleted successfully",
		},
		{
			Name:        "send_email_campaign",
			Description: "Send an email campaign immediately",
			Method:      http.MethodPost,
			Path:        "/emailCampaigns/{campaignId}/sendNow",
			Params:      []endpoint.Param{campaignID},
			Summary:     "Campaign sent successfully",
		},
		{
			Name:        "schedule_email_campaign",
			Description: "Schedule an email campaign for a later date-time",
			Method:      http.MethodPut,
			Path:        "/emailCampaigns/{campaignId}",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("scheduledAt", t.DateTime("Send date-time in UTC (RFC 3339)")).Require(),
			},
			Summary: "Campaign scheduled successfully",
		},
		{
			Name:        "send_test_email",
			Description: "Send a test version of an email campaign",
			Method:      http.MethodPost,
			Path:        "/emailCampaigns/{campaignId}/sendTest",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("emailTo", t.ArrayOf(t.Email("Recipient"), "Test recipients, who must exist as contacts")).Require(),
			},
			Summary: "Test email sent successfully",
		},
		{
			Name:        "update_email_campaign_status",
			Description: "Change the status of an email campaign",
			Method:      http.MethodPut,
			Path:        "/emailCampaigns/{campaignId}/status",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("status", t.Enum("New status", "suspended", "archive", "darchive", "sent", "queued", "replicate", "replicateTemplate", "draft")).Require(),
			},
			Summary: "Campaign status updated successfully",
		},
		{
			Name:        "get_email_campaign_report",
			Description: "Get the statistics report of an email campaign",
			Method:      http.MethodGet,
			Path:        "/emailCampaigns/{campaignId}/report",
			Params:      []endpoint.Param{campaignID},
		},
		{
			Name:        "list_campaign_links",
			Description: "List the tracked links of an email campaign with their click statistics",
			Method:      http.MethodGet,
			Path:        "/emailCampaigns/{campaignId}",
			Params:      []endpoint.Param{campaignID},
			Transform: endpoint.Project(map[string]string{
				"links":     "statistics.linksStats.@keys",
				"linkStats": "statistics.linksStats",
				"name":      "name",
			}),
		},
		{
			Name:        "export_campaign_recipients",
			Description: "Export the recipients of an email campaign",
			Method:      http.MethodPost,
			Path:        "/emailCampaigns/{campaignId}/exportRecipients",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("recipientsType", t.Enum("Recipients to export",
					"all", "nonClickers", "nonOpeners", "clickers", "openers", "softBounces", "hardBounces", "unsubscribed")).Require(),
				endpoint.Body("notifyURL", t.URL("URL notified when the export is ready")),
			},
			Summary: "Export started with process ID: {processId}",
		},
	}
}
