package folders

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "folders"

var folderID = endpoint.Path("folderId", t.Integer("Folder ID"))

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_folders",
			Description: "List all contact folders",
			Method:      http.MethodGet,
			Path:        "/contacts/folders",
			Params:      append(endpoint.Paging(50), endpoint.Sort("Sort by creation date")),
			ListField:   "folders",
		},
		{
			Name:        "get_folder",
			Description: "Get the details of a contact folder",
			Method:      http.MethodGet,
			Path:        "/contacts/folders/{folderId}",
			Params:      []endpoint.Param{folderID},
		},
		{
			Name:        "create_folder",
			Description: "Create a contact folder",
			Method:      http.MethodPost,
			Path:        "/contacts/folders",
			Params: []endpoint.Param{
				endpoint.Body("name", t.String("Folder name")).Require(),
			},
			Summary: "Folder created with ID: {id}",
		},
		{
			Name:        "update_folder",
			Description: "Rename a contact folder",
			Method:      http.MethodPut,
			Path:        "/contacts/folders/{folderId}",
			Params: []endpoint.Param{
				folderID,
				endpoint.Body("name", t.String("New folder name")).Require(),
			},
			Summary: "Folder updated successfully",
		},
		{
			Name:        "delete_folder",
			Description: "Delete a contact folder and the lists it contains",
			Method:      http.MethodDelete,
			Path:        "/contacts/folders/{folderId}",
			Params:      []endpoint.Param{folderID},
			Summary:     "Folder deleted successfully",
		},
		{
			Name:        "list_folder_lists",
			Description: "List the contact lists inside a folder",
			Method:      http.MethodGet,
			Path:        "/contacts/folders/{folderId}/lists",
			Params:      append([]endpoint.Param{folderID, endpoint.Sort("Sort by creation date")}, endpoint.Paging(50)...),
			ListField:   "lists",
		},
	}
}
