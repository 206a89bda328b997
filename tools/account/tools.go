package account

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "account"

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "get_account",
			Description: "Get account details including plan and remaining credits",
			Method:      http.MethodGet,
			Path:        "/account",
		},
		{
			Name:        "list_processes",
			Description: "List background processes such as imports and exports",
			Method:      http.MethodGet,
			Path:        "/processes",
			Params:      append(endpoint.Paging(50), endpoint.Sort("Sort by creation date")),
			ListField:   "processes",
		},
		{
			Name:        "get_process",
			Description: "Get the status of a background process",
			Method:      http.MethodGet,
			Path:        "/processes/{processId}",
			Params: []endpoint.Param{
				endpoint.Path("processId", t.Integer("Process ID")),
			},
			Summary: "Process {id} ({name}) status: {status}",
		},
	}
}
