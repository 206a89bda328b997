package sms

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "sms"

var campaignID = endpoint.Path("campaignId", t.Integer("SMS campaign ID"))

func statsWindow() []endpoint.Param {
	return []endpoint.Param{
		endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
		endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
		endpoint.Query("days", t.Integer("Number of past days, exclusive with the date range")),
		endpoint.Query("tag", t.String("Only messages with this tag")),
	}
}

func recipients() *t.Schema {
	return t.Object("Campaign recipients",
		t.Req("listIds", t.ArrayOf(t.Integer("List ID"), "Lists receiving the campaign")),
		t.Opt("exclusionListIds", t.ArrayOf(t.Integer("List ID"), "Lists excluded from the campaign")),
	)
}

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "send_transactional_sms",
			Description: "Send a transactional SMS to a single mobile number",
			Method:      http.MethodPost,
			Path:        "/transactionalSMS/sms",
			Params: []endpoint.Param{
				endpoint.Body("sender", t.String("Sender name, at most 11 alphanumeric or 15 numeric characters")).Require(),
				endpoint.Body("recipient", t.String("Mobile number with country code, e.g. +15551234567")).Require(),
				endpoint.Body("content", t.String("Message text")).Require(),
				endpoint.Body("type", t.Enum("Message type", "transactional", "marketing")),
				endpoint.Body("tag", t.String("Tag for filtering statistics")),
				endpoint.Body("webUrl", t.URL("Webhook called for delivery events")),
				endpoint.Body("unicodeEnabled", t.Boolean("Send as unicode")),
				endpoint.Body("organisationPrefix", t.String("Prefix required by some countries")),
			},
			Summary: "SMS sent. Message ID: {messageId}, Used credits: {usedCredits}",
		},
		{
			Name:        "list_transactional_sms_events",
			Description: "List transactional SMS events such as deliveries and replies",
			Method:      http.MethodGet,
			Path:        "/transactionalSMS/statistics/events",
			Params: append(append(endpoint.Paging(100),
				endpoint.Query("phoneNumber", t.String("Recipient mobile number")),
				endpoint.Query("event", t.Enum("Event type",
					"bounces", "hardBounces", "softBounces", "delivered", "sent", "accepted",
					"unsubscription", "replies", "blocked", "rejected", "skipped")),
				endpoint.Query("tags", t.String("Comma separated tags")),
				endpoint.Sort("Sort by event date"),
			), statsWindow()[:3]...),
			ListField: "events",
		},
		{
			Name:        "get_transactional_sms_reports",
			Description: "Get transactional SMS statistics broken down by day",
			Method:      http.MethodGet,
			Path:        "/transactionalSMS/statistics/reports",
			Params:      append(statsWindow(), endpoint.Sort("Sort by date")),
			ListField:   "reports",
		},
		{
			Name:        "get_transactional_sms_aggregated_report",
			Description: "Get aggregated transactional SMS statistics over a period",
			Method:      http.MethodGet,
			Path:        "/transactionalSMS/statistics/aggregatedReport",
			Params:      statsWindow(),
		},
		{
			Name:        "list_sms_campaigns",
			Description: "List SMS campaigns",
			Method:      http.MethodGet,
			Path:        "/smsCampaigns",
			Params: append([]endpoint.Param{
				endpoint.Query("status", t.Enum("Campaign status", "suspended", "archive", "sent", "queued", "draft", "inProcess")),
				endpoint.Query("startDate", t.DateTime("Only campaigns sent after this date-time")),
				endpoint.Query("endDate", t.DateTime("Only campaigns sent before this date-time")),
				endpoint.Sort("Sort by creation date"),
			}, endpoint.Paging(1000)...),
			ListField: "campaigns",
		},
		{
			Name:        "get_sms_campaign",
			Description: "Get the details of an SMS campaign",
			Method:      http.MethodGet,
			Path:        "/smsCampaigns/{campaignId}",
			Params:      []endpoint.Param{campaignID},
		},
		{
			Name:        "create_sms_campaign",
			Description: "Create an SMS campaign",
			Method:      http.MethodPost,
			Path:        "/smsCampaigns",
			Params: []endpoint.Param{
				endpoint.Body("name", t.String("Campaign name")).Require(),
				endpoint.Body("sender", t.String("Sender name")).Require(),
				endpoint.Body("content", t.String("Message text")).Require(),
				endpoint.Body("recipients", recipients()),
				endpoint.Body("scheduledAt", t.DateTime("Send date-time in UTC (RFC 3339)")),
				endpoint.Body("unicodeEnabled", t.Boolean("Send as unicode")),
				endpoint.Body("organisationPrefix", t.String("Prefix required by some countries")),
				endpoint.Body("unsubscribeInstruction", t.String("Opt-out instruction appended to the message")),
			},
			Summary: "SMS campaign created with ID: {id}",
		},
		{
			Name:        "update_sms_campaign",
			Description: "Update an SMS campaign that has not been sent",
			Method:      http.MethodPut,
			Path:        "/smsCampaigns/{campaignId}",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("name", t.String("Campaign name")),
				endpoint.Body("sender", t.String("Sender name")),
				endpoint.Body("content", t.String("Message text")),
				endpoint.Body("recipients", recipients()),
				endpoint.Body("scheduledAt", t.DateTime("Send date-time in UTC (RFC 3339)")),
				endpoint.Body("unicodeEnabled", t.Boolean("Send as unicode")),
				endpoint.Body("organisationPrefix", t.String("Prefix required by some countries")),
				endpoint.Body("unsubscribeInstruction", t.String("Opt-out instruction appended to the message")),
			},
			Summary: "SMS campaign updated successfully",
		},
		{
			Name:        "delete_sms_campaign",
			Description: "Delete an SMS campaign",
			Method:      http.MethodDelete,
			Path:        "/smsCampaigns/{campaignId}",
			Params:      []endpoint.Param{campaignID},
			Summary:     "SMS campaign deleted successfully",
		},
		{
			Name:        "send_sms_campaign",
			Description: "Send an SMS campaign immediately",
			Method:      http.MethodPost,
			Path:        "/smsCampaigns/{campaignId}/sendNow",
			Params:      []endpoint.Param{campaignID},
			Summary:     "SMS campaign sent successfully",
		},
		{
			Name:        "send_test_sms",
			Description: "Send a test version of an SMS campaign to one number",
			Method:      http.MethodPost,
			Path:        "/smsCampaigns/{campaignId}/sendTest",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("phoneNumber", t.String("Mobile number with country code")).Require(),
			},
			Summary: "Test SMS sent successfully",
		},
		{
			Name:        "update_sms_campaign_status",
			Description: "Change the status of an SMS campaign",
			Method:      http.MethodPut,
			Path:        "/smsCampaigns/{campaignId}/status",
			Params: []endpoint.Param{
				campaignID,
				endpoint.Body("status", t.Enum("New status", "suspended", "archive", "darchive", "sent", "queued", "replicate", "draft")).Require(),
			},
			Summary: "SMS campaign status updated successfully",
		},
		{
			Name:        "get_sms_campaign_report",
			Description: "Get the statistics of an SMS campaign",
			Method:      http.MethodGet,
			Path:        "/smsCampaigns/{campaignId}",
			Params:      []endpoint.Param{campaignID},
			Transform: endpoint.Project(map[string]string{
				"id":         "id",
				"name":       "name",
				"status":     "status",
				"statistics": "statistics",
			}),
		},
	}
}
