package contacts

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "contacts"

var identifier = endpoint.Path("identifier", t.String("Contact email address, numeric ID or SMS attribute value"))

func listIDs(description string) *t.Schema {
	return t.ArrayOf(t.Integer("List ID"), description)
}

// Group returns the contact tools.
func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_contacts",
			Description: "List contacts with optional filtering by modification date and list membership",
			Method:      http.MethodGet,
			Path:        "/contacts",
			Params: append(endpoint.Paging(1000),
				endpoint.Query("modifiedSince", t.DateTime("Only contacts modified after this date-time")),
				endpoint.Query("listIds", listIDs("Only contacts belonging to these lists")),
				endpoint.Sort("Sort by creation date"),
			),
			ListField: "contacts",
		},
		{
			Name:        "get_contact",
			Description: "Get the details of a contact by email, ID or SMS attribute",
			Method:      http.MethodGet,
			Path:        "/contacts/{identifier}",
			Params:      []endpoint.Param{identifier},
		},
		{
			Name:        "create_contact",
			Description: "Create a new contact",
			Method:      http.MethodPost,
			Path:        "/contacts",
			Params: []endpoint.Param{
				endpoint.Body("email", t.Email("Contact email address")).Require(),
				endpoint.Body("attributes", t.Object("Contact attributes such as FIRSTNAME, LASTNAME or SMS")),
				endpoint.Body("emailBlacklisted", t.Boolean("Blacklist the contact for emails")),
				endpoint.Body("smsBlacklisted", t.Boolean("Blacklist the contact for SMS")),
				endpoint.Body("listIds", listIDs("Lists to add the contact to")),
				endpoint.Body("updateEnabled", t.Boolean("Update the contact if it already exists")),
				endpoint.Body("smtpBlacklistSender", t.ArrayOf(t.Email("Sender email"), "Transactional senders blocked for this contact")),
			},
			Summary: "Contact created with ID: {id}",
		},
		{
			Name:        "update_contact",
			Description: "Update an existing contact",
			Method:      http.MethodPut,
			Path:        "/contacts/{identifier}",
			Params: []endpoint.Param{
				identifier,
				endpoint.Body("attributes", t.Object("Attributes to update")),
				endpoint.Body("emailBlacklisted", t.Boolean("Blacklist the contact for emails")),
				endpoint.Body("smsBlacklisted", t.Boolean("Blacklist the contact for SMS")),
				endpoint.Body("listIds", listIDs("Lists to add the contact to")),
				endpoint.Body("unlinkListIds", listIDs("Lists to remove the contact from")),
				endpoint.Body("smtpBlacklistSender", t.ArrayOf(t.Email("Sender email"), "Transactional senders blocked for this contact")),
			},
			Summary: "Contact updated successfully",
		},
		{
			Name:        "delete_contact",
			Description: "Delete a contact",
			Method:      http.MethodDelete,
			Path:        "/contacts/{identifier}",
			Params:      []endpoint.Param{identifier},
			Summary:     "Contact deleted successfully",
		},
		{
			Name:        "search_contacts",
			Description: "Search contacts by email, modification date or list membership",
			Method:      http.MethodGet,
			Path:        "/contacts",
			Params: append([]endpoint.Param{
				endpoint.Query("email", t.String("Email address or fragment to match")),
				endpoint.Query("modifiedSince", t.DateTime("Only contacts modified after this date-time")),
				endpoint.Query("listIds", listIDs("Only contacts belonging to these lists")),
			}, endpoint.Paging(1000)...),
			ListField: "contacts",
		},
		{
			Name:        "import_contacts",
			Description: "Import contacts from a CSV file URL",
			Method:      http.MethodPost,
			Path:        "/contacts/import",
			Params: []endpoint.Param{
				endpoint.Body("fileUrl", t.URL("URL of the CSV file to import")).Require(),
				endpoint.Body("listIds", listIDs("Lists to add the imported contacts to")),
				endpoint.Body("notifyUrl", t.URL("URL notified when the import finishes")),
				endpoint.Body("emailBlacklist", t.Boolean("Blacklist all imported contacts for emails")),
				endpoint.Body("smsBlacklist", t.Boolean("Blacklist all imported contacts for SMS")),
				endpoint.Body("updateExistingContacts", t.Boolean("Update contacts that already exist")),
				endpoint.Body("emptyContactsAttributes", t.Boolean("Clear attributes missing from the file")),
			},
			Summary: "Import started with process ID: {processId}",
		},
		{
			Name:        "export_contacts",
			Description: "Export contacts to a CSV file",
			Method:      http.MethodPost,
			Path:        "/contacts/export",
			Params: []endpoint.Param{
				endpoint.Body("exportAttributes", t.ArrayOf(t.String("Attribute name"), "Attributes to include in the export")),
				endpoint.Body("listId", t.Integer("List to export")).As("customContactFilter.listId"),
				endpoint.Body("actionForContacts", t.Enum("Contact segment to export", "allContacts", "subscribed", "unsubscribed", "unsubscribedPerList")).As("customContactFilter.actionForContacts"),
				endpoint.Body("notifyUrl", t.URL("URL notified when the export is ready")),
			},
			Summary: "Export started with process ID: {processId}",
		},
		{
			Name:        "get_contact_stats",
			Description: "Get email campaign statistics for a contact",
			Method:      http.MethodGet,
			Path:        "/contacts/{identifier}/campaignStats",
			Params: []endpoint.Param{
				identifier,
				endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
				endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
			},
		},
		{
			Name:        "list_contact_attributes",
			Description: "List all contact attributes",
			Method:      http.MethodGet,
			Path:        "/contacts/attributes",
		},
		{
			Name:        "create_contact_attribute",
			Description: "Create a contact attribute",
			Method:      http.MethodPost,
			Path:        "/contacts/attributes/{category}/{name}",
			Params: []endpoint.Param{
				endpoint.Path("category", t.Enum("Attribute category", "normal", "transactional", "category", "calculated", "global")),
				endpoint.Path("name", t.String("Attribute name")),
				endpoint.Body("type", t.Enum("Attribute type", "text", "date", "float", "id", "boolean")),
				endpoint.Body("value", t.String("Formula of a calculated or global attribute")),
				endpoint.Body("enumeration", t.ArrayOf(t.Object("Enumeration entry",
					t.Req("value", t.Integer("Stored value")),
					t.Req("label", t.String("Display label")),
				), "Values of a category attribute")),
			},
			Summary: "Contact attribute created successfully",
		},
		{
			Name:        "delete_contact_attribute",
			Description: "Delete a contact attribute",
			Method:      http.MethodDelete,
			Path:        "/contacts/attributes/{category}/{name}",
			Params: []endpoint.Param{
				endpoint.Path("category", t.Enum("Attribute category", "normal", "transactional", "category", "calculated", "global")),
				endpoint.Path("name", t.String("Attribute name")),
			},
			Summary: "Contact attribute deleted successfully",
		},
		{
			Name:        "create_doi_contact",
			Description: "Create a contact through the double opt-in flow",
			Method:      http.MethodPost,
			Path:        "/contacts/doubleOptinConfirmation",
			Params: []endpoint.Param{
				endpoint.Body("email", t.Email("Contact email address")).Require(),
				endpoint.Body("attributes", t.Object("Contact attributes")),
				endpoint.Body("includeListIds", listIDs("Lists the contact joins after confirming")).Require(),
				endpoint.Body("excludeListIds", listIDs("Lists the contact is removed from")),
				endpoint.Body("templateId", t.Integer("Double opt-in template ID")).Require(),
				endpoint.Body("redirectionUrl", t.URL("URL the contact is sent to after confirming")).Require(),
			},
			Summary: "DOI contact created successfully. Confirmation email sent.",
		},
	}
}
