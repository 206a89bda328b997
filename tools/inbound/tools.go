package inbound

import (
	"net/http"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "inbound"

func Group() endpoint.Group {
	return endpoint.Group{Name: GroupName, Endpoints: Endpoints()}
}

func Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_inbound_events",
			Description: "List inbound parsing events",
			Method:      http.MethodGet,
			Path:        "/inbound/events",
			Params: append([]endpoint.Param{
				endpoint.Query("sender", t.Email("Only emails from this sender")),
				endpoint.Query("startDate", t.Date("Start date (YYYY-MM-DD)")),
				endpoint.Query("endDate", t.Date("End date (YYYY-MM-DD)")),
				endpoint.Sort("Sort by receive date"),
			}, endpoint.Paging(500)...),
			ListField: "events",
		},
		{
			Name:        "get_inbound_event",
			Description: "Get the details of an inbound email by UUID",
			Method:      http.MethodGet,
			Path:        "/inbound/events/{uuid}",
			Params: []endpoint.Param{
				endpoint.Path("uuid", t.String("UUID of the received email")),
			},
		},
	}
}
