// Package crm holds the deal, company, task and note tools. CRM list
// endpoints return their records under "items".
package crm

import (
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/slighter12/brevo-mcp-go/tools/endpoint"
	t "github.com/slighter12/brevo-mcp-go/tools/types"
)

const GroupName = "crm"

func id(name, description string) endpoint.Param {
	return endpoint.Path(name, t.String(description))
}

func contactIDs(description string) *t.Schema {
	return t.ArrayOf(t.Integer("Contact ID"), description)
}

func objectIDs(item, description string) *t.Schema {
	return t.ArrayOf(t.String(item), description)
}

func filters() endpoint.Param {
	return endpoint.Query("filters", t.Object("Attribute filters, e.g. {\"attributes.deal_name\": \"Renewal\"}")).JSONEncoded()
}

func sortBy() endpoint.Param {
	return endpoint.Query("sortBy", t.String("Attribute to sort by"))
}

func Group() endpoint.Group {
	endpoints := append(deals(), pipelines()...)
	endpoints = append(endpoints, companies()...)
	endpoints = append(endpoints, tasks()...)
	endpoints = append(endpoints, notes()...)
	return endpoint.Group{Name: GroupName, Endpoints: endpoints}
}

func deals() []endpoint.Endpoint {
	dealID := id("dealId", "Deal ID")
	return []endpoint.Endpoint{
		{
			Name:        "list_deals",
			Description: "List CRM deals",
			Method:      http.MethodGet,
			Path:        "/crm/deals",
			Params: append([]endpoint.Param{
				filters(),
				endpoint.Query("linkedCompaniesIds", t.String("Only deals linked to this company")),
				endpoint.Query("linkedContactsIds", t.Integer("Only deals linked to this contact")),
				endpoint.Sort("Sort order"),
				sortBy(),
			}, endpoint.Paging(0)...),
			ListField: "items",
		},
		{
			Name:        "get_deal",
			Description: "Get a CRM deal",
			Method:      http.MethodGet,
			Path:        "/crm/deals/{dealId}",
			Params:      []endpoint.Param{dealID},
		},
		{
			Name:        "create_deal",
			Description: "Create a CRM deal",
			Method:      http.MethodPost,
			Path:        "/crm/deals",
			Params: []endpoint.Param{
				endpoint.Body("name", t.String("Deal name")).Require(),
				endpoint.Body("attributes", t.Object("Deal attributes such as deal_owner, amount or pipeline")),
				endpoint.Body("linkedContactsIds", contactIDs("Contacts linked to the deal")),
				endpoint.Body("linkedCompaniesIds", objectIDs("Company ID", "Companies linked to the deal")),
			},
			Summary: "Deal created with ID: {id}",
		},
		{
			Name:        "update_deal",
			Description: "Update a CRM deal",
			Method:      http.MethodPatch,
			Path:        "/crm/deals/{dealId}",
			Params: []endpoint.Param{
				dealID,
				endpoint.Body("name", t.String("Deal name")),
				endpoint.Body("attributes", t.Object("Deal attributes to update")),
				endpoint.Body("linkedContactsIds", contactIDs("Contacts linked to the deal")),
				endpoint.Body("linkedCompaniesIds", objectIDs("Company ID", "Companies linked to the deal")),
			},
			Summary: "Deal updated successfully",
		},
		{
			Name:        "delete_deal",
			Description: "Delete a CRM deal",
			Method:      http.MethodDelete,
			Path:        "/crm/deals/{dealId}",
			Params:      []endpoint.Param{dealID},
			Summary:     "Deal deleted successfully",
		},
		{
			Name:        "link_deal",
			Description: "Link or unlink contacts and companies on a deal",
			Method:      http.MethodPatch,
			Path:        "/crm/deals/link-unlink/{dealId}",
			Params: []endpoint.Param{
				dealID,
				endpoint.Body("linkContactIds", contactIDs("Contacts to link")),
				endpoint.Body("unlinkContactIds", contactIDs("Contacts to unlink")),
				endpoint.Body("linkCompanyIds", objectIDs("Company ID", "Companies to link")),
				endpoint.Body("unlinkCompanyIds", objectIDs("Company ID", "Companies to unlink")),
			},
			Summary: "Deal links updated successfully",
		},
		{
			Name:        "list_deal_attributes",
			Description: "List the attributes available on deals",
			Method:      http.MethodGet,
			Path:        "/crm/attributes/deals",
		},
	}
}

func pipelines() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:        "list_pipelines",
			Description: "List CRM pipelines with their stages",
			Method:      http.MethodGet,
			Path:        "/crm/pipeline/details/all",
			Transform:   endpoint.WrapArray("pipelines"),
			ListField:   "pipelines",
		},
		{
			Name:        "list_deal_stages",
			Description: "List the stages of a CRM pipeline",
			Method:      http.MethodGet,
			Path:        "/crm/pipeline/details/{pipelineId}",
			Params:      []endpoint.Param{id("pipelineId", "Pipeline ID")},
			Transform:   Stages,
			ListField:   "stages",
		},
	}
}

func companies() []endpoint.Endpoint {
	companyID := id("companyId", "Company ID")
	return []endpoint.Endpoint{
		{
			Name:        "list_companies",
			Description: "List CRM companies",
			Method:      http.MethodGet,
			Path:        "/crm/companies",
			Params: append([]endpoint.Param{
				filters(),
				endpoint.Query("linkedContactsIds", t.Integer("Only companies linked to this contact")),
				endpoint.Query("linkedDealsIds", t.String("Only companies linked to this deal")),
				endpoint.Query("page", t.Integer("Page number")),
				endpoint.Sort("Sort order"),
				sortBy(),
			}, endpoint.Paging(0)...),
			ListField: "items",
		},
		{
			Name:        "get_company",
			Description: "Get a CRM company",
			Method:      http.MethodGet,
			Path:        "/crm/companies/{companyId}",
			Params:      []endpoint.Param{companyID},
		},
		{
			Name:        "create_company",
			Description: "Create a CRM company",
			Method:      http.MethodPost,
			Path:        "/crm/companies",
			Params: []endpoint.Param{
				endpoint.Body("name", t.String("Company name")).Require(),
				endpoint.Body("attributes", t.Object("Company attributes such as domain or industry")),
				endpoint.Body("countryCode", t.Integer("Country calling code of the phone number")),
				endpoint.Body("linkedContactsIds", contactIDs("Contacts linked to the company")),
				endpoint.Body("linkedDealsIds", objectIDs("Deal ID", "Deals linked to the company")),
			},
			Summary: "Company created with ID: {id}",
		},
		{
			Name:        "update_company",
			Description: "Update a CRM company",
			Method:      http.MethodPatch,
			Path:        "/crm/companies/{companyId}",
			Params: []endpoint.Param{
				companyID,
				endpoint.Body("name", t.String("Company name")),
				endpoint.Body("attributes", t.Object("Company attributes to update")),
				endpoint.Body("countryCode", t.Integer("Country calling code of the phone number")),
				endpoint.Body("linkedContactsIds", contactIDs("Contacts linked to the company")),
				endpoint.Body("linkedDealsIds", objectIDs("Deal ID", "Deals linked to the company")),
			},
			Summary: "Company updated successfully",
		},
		{
			Name:        "delete_company",
			Description: "Delete a CRM company",
			Method:      http.MethodDelete,
			Path:        "/crm/companies/{companyId}",
			Params:      []endpoint.Param{companyID},
			Summary:     "Company deleted successfully",
		},
		{
			Name:        "link_company",
			Description: "Link or unlink contacts and deals on a company",
			Method:      http.MethodPatch,
			Path:        "/crm/companies/link-unlink/{companyId}",
			Params: []endpoint.Param{
				companyID,
				endpoint.Body("linkContactIds", contactIDs("Contacts to link")),
				endpoint.Body("unlinkContactIds", contactIDs("Contacts to unlink")),
				endpoint.Body("linkDealsIds", objectIDs("Deal ID", "Deals to link")),
				endpoint.Body("unlinkDealsIds", objectIDs("Deal ID", "Deals to unlink")),
			},
			Summary: "Company links updated successfully",
		},
		{
			Name:        "list_company_attributes",
			Description: "List the attributes available on companies",
			Method:      http.MethodGet,
			Path:        "/crm/attributes/companies",
		},
	}
}

func tasks() []endpoint.Endpoint {
	taskID := id("taskId", "Task ID")
	fields := func(required bool) []endpoint.Param {
		name := endpoint.Body("name", t.String("Task name"))
		taskType := endpoint.Body("taskTypeId", t.String("Task type ID, see list_task_types"))
		date := endpoint.Body("date", t.DateTime("Due date-time (RFC 3339)"))
		if required {
			name, taskType, date = name.Require(), taskType.Require(), date.Require()
		}
		return []endpoint.Param{
			name, taskType, date,
			endpoint.Body("duration", t.Integer("Duration in milliseconds")),
			endpoint.Body("notes", t.String("Task notes")),
			endpoint.Body("done", t.Boolean("Whether the task is done")),
			endpoint.Body("assignToId", t.String("User the task is assigned to")),
			endpoint.Body("contactsIds", contactIDs("Contacts linked to the task")),
			endpoint.Body("dealsIds", objectIDs("Deal ID", "Deals linked to the task")),
			endpoint.Body("companiesIds", objectIDs("Company ID", "Companies linked to the task")),
		}
	}
	return []endpoint.Endpoint{
		{
			Name:        "list_tasks",
			Description: "List CRM tasks",
			Method:      http.MethodGet,
			Path:        "/crm/tasks",
			Params: append([]endpoint.Param{
				endpoint.Query("filterType", t.String("Only tasks of this type ID")).As("filter[type]"),
				endpoint.Query("filterStatus", t.Enum("Only done or undone tasks", "done", "undone")).As("filter[status]"),
				endpoint.Query("filterDate", t.Enum("Due date window", "overdue", "today", "tomorrow", "week", "range")).As("filter[date]"),
				endpoint.Query("filterAssignTo", t.String("Only tasks assigned to this user")).As("filter[assignTo]"),
				endpoint.Query("filterContacts", t.String("Only tasks linked to this contact")).As("filter[contacts]"),
				endpoint.Query("filterDeals", t.String("Only tasks linked to this deal")).As("filter[deals]"),
				endpoint.Query("filterCompanies", t.String("Only tasks linked to this company")).As("filter[companies]"),
				endpoint.Query("dateFrom", t.Integer("Range start as a unix timestamp in milliseconds")),
				endpoint.Query("dateTo", t.Integer("Range end as a unix timestamp in milliseconds")),
				endpoint.Sort("Sort order"),
				sortBy(),
			}, endpoint.Paging(0)...),
			ListField: "items",
		},
		{
			Name:        "get_task",
			Description: "Get a CRM task",
			Method:      http.MethodGet,
			Path:        "/crm/tasks/{taskId}",
			Params:      []endpoint.Param{taskID},
		},
		{
			Name:        "create_task",
			Description: "Create a CRM task",
			Method:      http.MethodPost,
			Path:        "/crm/tasks",
			Params:      fields(true),
			Summary:     "Task created with ID: {id}",
		},
		{
			Name:        "update_task",
			Description: "Update a CRM task",
			Method:      http.MethodPatch,
			Path:        "/crm/tasks/{taskId}",
			Params:      append([]endpoint.Param{taskID}, fields(false)...),
			Summary:     "Task updated successfully",
		},
		{
			Name:        "delete_task",
			Description: "Delete a CRM task",
			Method:      http.MethodDelete,
			Path:        "/crm/tasks/{taskId}",
			Params:      []endpoint.Param{taskID},
			Summary:     "Task deleted successfully",
		},
		{
			Name:        "list_task_types",
			Description: "List the CRM task types",
			Method:      http.MethodGet,
			Path:        "/crm/tasktypes",
		},
	}
}

func notes() []endpoint.Endpoint {
	noteID := id("noteId", "Note ID")
	links := func() []endpoint.Param {
		return []endpoint.Param{
			endpoint.Body("contactIds", contactIDs("Contacts linked to the note")),
			endpoint.Body("dealIds", objectIDs("Deal ID", "Deals linked to the note")),
			endpoint.Body("companyIds", objectIDs("Company ID", "Companies linked to the note")),
		}
	}
	return []endpoint.Endpoint{
		{
			Name:        "list_notes",
			Description: "List CRM notes",
			Method:      http.MethodGet,
			Path:        "/crm/notes",
			Params: append([]endpoint.Param{
				endpoint.Query("entity", t.Enum("Entity type the notes belong to", "companies", "deals", "contacts")),
				endpoint.Query("entityIds", t.String("Comma separated IDs of the entity")),
				endpoint.Query("dateFrom", t.Integer("Range start as a unix timestamp in milliseconds")),
				endpoint.Query("dateTo", t.Integer("Range end as a unix timestamp in milliseconds")),
				endpoint.Sort("Sort order"),
			}, endpoint.Paging(0)...),
			Transform: endpoint.WrapArray("notes"),
			ListField: "notes",
		},
		{
			Name:        "get_note",
			Description: "Get a CRM note",
			Method:      http.MethodGet,
			Path:        "/crm/notes/{noteId}",
			Params:      []endpoint.Param{noteID},
		},
		{
			Name:        "create_note",
			Description: "Create a CRM note",
			Method:      http.MethodPost,
			Path:        "/crm/notes",
			Params:      append([]endpoint.Param{endpoint.Body("text", t.String("Note text")).Require()}, links()...),
			Summary:     "Note created with ID: {id}",
		},
		{
			Name:        "update_note",
			Description: "Update a CRM note",
			Method:      http.MethodPatch,
			Path:        "/crm/notes/{noteId}",
			Params:      append([]endpoint.Param{noteID, endpoint.Body("text", t.String("Note text")).Require()}, links()...),
			Summary:     "Note updated successfully",
		},
		{
			Name:        "delete_note",
			Description: "Delete a CRM note",
			Method:      http.MethodDelete,
			Path:        "/crm/notes/{noteId}",
			Params:      []endpoint.Param{noteID},
			Summary:     "Note deleted successfully",
		},
	}
}

// Stages extracts the stage list of a single pipeline. The pipeline details
// endpoint answers with a one-element array of pipelines.
func Stages(_ map[string]any, body json.RawMessage) (json.RawMessage, error) {
	pipeline := gjson.ParseBytes(body)
	if pipeline.IsArray() {
		pipeline = pipeline.Get("0")
	}
	stages := pipeline.Get("stages")
	if !stages.IsArray() {
		return body, nil
	}

	out, err := sjson.SetRawBytes([]byte(`{}`), "stages", []byte(stages.Raw))
	if err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "count", len(stages.Array())); err != nil {
		return nil, err
	}
	for _, field := range []string{"pipeline", "pipeline_name"} {
		if value := pipeline.Get(field); value.Exists() {
			if out, err = sjson.SetRawBytes(out, field, []byte(value.Raw)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
