package automations

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "automations"

var workflowID = endpoint.Path("workflowId", t.Integer("Workflow ID"))

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_workflows",
			Description: "List automation workflows",
			Method:      http.MethodGet,
			Path:        "/automation/workflows",
			Params: append([]endpoint.Param{
				endpoint.Query("status", t.Enum("Workflow status", "draft", "active", "inactive")),
			}, endpoint.Paging(100)...),
			ListField: "workflows",
		},
		{
			Name:        "get_workflow",
			Description: "Get the details of an automation workflow",
			Method:      http.MethodGet,
			Path:        "/automation/workflows/{workflowId}",
			Params:      []endpoint.Param{workflowID},
		},
		{
			Name:        "activate_workflow",
			Description: "Activate an automation workflow",
			Method:      http.MethodPatch,
			Path:        "/automation/workflows/{workflowId}",
			Params:      []endpoint.Param{workflowID},
			Fixed:       map[string]any{"status": "active"},
			Summary:     "Workflow activated successfully",
		},
		{
			Name:        "deactivate_workflow",
			Description: "Deactivate an automation workflow",
			Method:      http.MethodPatch,
			Path:        "/automation/workflows/{workflowId}",
			Params:      []endpoint.Param{workflowID},
			Fixed:       map[string]any{"status": "inactive"},
			Summary:     "Workflow deactivated successfully",
		},
		{
			Name:        "get_workflow_stats",
			Description: "Get the statistics of an automation workflow",
			Method:      http.MethodGet,
			Path:        "/automation/workflows/{workflowId}/stats",
			Params: []endpoint.Param{
				workflowID,
				endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
				endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
			},
		},
		{
			Name:        "delete_workflow",
			Description: "Delete an automation workflow",
			Method:      http.MethodDelete,
			Path:        "/automation/workflows/{workflowId}",
			Params:      []endpoint.Param{workflowID},
			Summary:     "Workflow deleted successfully",
		},
	}
}
