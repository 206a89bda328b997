// Package endpoint turns rows of a declarative endpoint table into tool
// descriptors. Each row names an HTTP verb, a path template and the mapping of
// tool arguments onto path segments, query parameters and body fields; a
// single interpreter executes every row.
package endpoint

import (
	"encoding/json"

	"github.com/slighter12/brevo-mcp-go/tools/types"
)

// Location says where an argument goes in the request.
type Location int

const (
	InPath Location = iota
	InQuery
	InBody
)

func (l Location) String() string {
	switch l {
	case InPath:
		return "path"
	case InQuery:
		return "query"
	default:
		return "body"
	}
}

// Param binds one tool argument to the request.
type Param struct {
	Name     string
	In       Location
	Wire     string
	Required bool
	AsJSON   bool
	Schema   *types.Schema
}

// Path declares a path segment argument. Path arguments are always required.
func Path(name string, schema *types.Schema) Param {
	return Param{Name: name, In: InPath, Required: true, Schema: schema}
}

// Query declares an optional query argument.
func Query(name string, schema *types.Schema) Param {
	return Param{Name: name, In: InQuery, Schema: schema}
}

// Body declares an optional body field.
func Body(name string, schema *types.Schema) Param {
	return Param{Name: name, In: InBody, Schema: schema}
}

// Require marks the argument as mandatory.
func (p Param) Require() Param {
	p.Required = true
	return p
}

// As renames the argument on the wire. Body wire names may be dotted paths
// such as "filter.listIds".
func (p Param) As(wire string) Param {
	p.Wire = wire
	return p
}

// JSONEncoded sends a query argument as a JSON string.
func (p Param) JSONEncoded() Param {
	p.AsJSON = true
	return p
}

func (p Param) wireName() string {
	if p.Wire != "" {
		return p.Wire
	}
	return p.Name
}

// Transform reshapes a successful response before it is returned.
type Transform func(args map[string]any, body json.RawMessage) (json.RawMessage, error)

// Endpoint is one row of the tool table.
type Endpoint struct {
	Name        string
	Description string
	Method      string
	Path        string
	Params      []Param
	// Fixed body fields sent on every call, such as a target status.
	Fixed map[string]any
	// ListField names the array normalized into {items, total}.
	ListField string
	// Summary is a template such as "Contact created with ID: {id}" filled
	// from the response.
	Summary   string
	Transform Transform
}

// Group is an ordered set of endpoints for one resource family.
type Group struct {
	Name      string
	Endpoints []Endpoint
}

// Paging returns the limit and offset arguments shared by list endpoints.
func Paging(maxLimit int) []Param {
	limitDesc := "Number of results per page (default 50)"
	if maxLimit > 0 {
		limitDesc = "Number of results per page (default 50, max " + itoa(maxLimit) + ")"
	}
	return []Param{
		Query("limit", types.Integer(limitDesc).WithDefault(50)),
		Query("offset", types.Integer("Index of the first result (default 0)").WithDefault(0)),
	}
}

// Sort is the common asc/desc ordering argument.
func Sort(description string) Param {
	return Query("sort", types.Enum(description, "asc", "desc"))
}

// InputSchema builds the object schema advertised for the endpoint.
func (e Endpoint) InputSchema() *types.Schema {
	props := make([]types.Property, 0, len(e.Params))
	for _, p := range e.Params {
		props = append(props, types.Property{Name: p.Name, Required: p.Required, Schema: p.Schema})
	}
	return types.Object("", props...)
}

func (e Endpoint) hasParam(name string) bool {
	for _, p := range e.Params {
		if p.Name == name {
			return true
		}
	}
	return false
}
