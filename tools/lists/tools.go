package lists

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "lists"

var listID = endpoint.Path("listId", t.Integer("List ID"))

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_lists",
			Description: "List all contact lists",
			Method:      http.MethodGet,
			Path:        "/contacts/lists",
			Params:      append(endpoint.Paging(50), endpoint.Sort("Sort by creation date")),
			ListField:   "lists",
		},
		{
			Name:        "get_list",
			Description: "Get the details of a contact list",
			Method:      http.MethodGet,
			Path:        "/contacts/lists/{listId}",
			Params:      []endpoint.Param{listID},
		},
		{
			Name:        "create_list",
			Description: "Create a contact list inside a folder",
			Method:      http.MethodPost,
			Path:        "/contacts/lists",
			Params: []endpoint.Param{
				endpoint.Body("name", t.String("List name")).Require(),
				endpoint.Body("folderId", t.Integer("Parent folder ID")).Require(),
			},
			Summary: "List created with ID: {id}",
		},
		{
			Name:        "update_list",
			Description: "Rename a list or move it to another folder",
			Method:      http.MethodPut,
			Path:        "/contacts/lists/{listId}",
			Params: []endpoint.Param{
				listID,
				endpoint.Body("name", t.String("New list name")),
				endpoint.Body("folderId", t.Integer("New parent folder ID")),
			},
			Summary: "List updated successfully",
		},
		{
			Name:        "delete_list",
			Description: "Delete a contact list",
			Method:      http.MethodDelete,
			Path:        "/contacts/lists/{listId}",
			Params:      []endpoint.Param{listID},
			Summary:     "List deleted successfully",
		},
		{
			Name:        "get_list_contacts",
			Description: "List the contacts of a list",
			Method:      http.MethodGet,
			Path:        "/contacts/lists/{listId}/contacts",
			Params: append([]endpoint.Param{
				listID,
				endpoint.Query("modifiedSince", t.DateTime("Only contacts modified after this date-time")),
				endpoint.Sort("Sort by creation date"),
			}, endpoint.Paging(500)...),
			ListField: "contacts",
		},
		{
			Name:        "add_contacts_to_list",
			Description: "Add existing contacts to a list by email or ID",
			Method:      http.MethodPost,
			Path:        "/contacts/lists/{listId}/contacts/add",
			Params: []endpoint.Param{
				listID,
				endpoint.Body("emails", t.ArrayOf(t.Email("Contact email"), "Emails of the contacts to add (max 150)")),
				endpoint.Body("ids", t.ArrayOf(t.Integer("Contact ID"), "IDs of the contacts to add (max 150)")),
			},
		},
		{
			Name:        "remove_contacts_from_list",
			Description: "Remove contacts from a list by email or ID",
			Method:      http.MethodPost,
			Path:        "/contacts/lists/{listId}/contacts/remove",
			Params: []endpoint.Param{
				listID,
				endpoint.Body("emails", t.ArrayOf(t.Email("Contact email"), "Emails of the contacts to remove (max 150)")),
				endpoint.Body("ids", t.ArrayOf(t.Integer("Contact ID"), "IDs of the contacts to remove (max 150)")),
				endpoint.Body("all", t.Boolean("Remove every contact from the list")),
			},
		},
	}
}
