package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/dashboards"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/brevo-mcp-go/resources"
	"github.com/slighter12/brevo-mcp-go/tools"
	"github.com/slighter12/brevo-mcp-go/tools/types"
)

const maxRenderedPromptBytes = 128 * 1024

// Instructions is sent to clients during initialize.
const Instructions = "Tools map one-to-one onto Brevo API operations. List tools return {items, total}; " +
	"page with limit and offset. Dashboard prompts describe which tools to combine for common views."

// Handler serves the MCP methods shared by every transport.
type Handler struct {
	info       mcp.Implementation
	dispatcher *tools.Dispatcher
	resources  *resources.Catalog
	dashboards *dashboards.Catalog
}

// NewHandler binds the catalogs. resources and dashboards may be nil, which
// turns the matching capability off.
func NewHandler(info mcp.Implementation, dispatcher *tools.Dispatcher, res *resources.Catalog, dash *dashboards.Catalog) *Handler {
	return &Handler{info: info, dispatcher: dispatcher, resources: res, dashboards: dash}
}

func (h *Handler) Info() mcp.Implementation {
	return h.info
}

// Capabilities reports the features this handler serves.
func (h *Handler) Capabilities() mcp.ServerCapabilities {
	caps := mcp.ServerCapabilities{Tools: &mcp.ListChangedCapability{}}
	if h.resources != nil {
		caps.Resources = &mcp.ListChangedCapability{ListChanged: h.dashboards != nil}
	}
	if h.dashboards != nil {
		caps.Prompts = &mcp.ListChangedCapability{ListChanged: true}
	}
	return caps
}

// Initialize answers initialize and returns the negotiated protocol version.
func (h *Handler) Initialize(msg jsonrpc.Request) (*jsonrpc.Response, string) {
	var params mcp.InitializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidParams), "Invalid initialize payload", nil), ""
		}
	}
	version := NegotiateProtocolVersion(params.ProtocolVersion)
	logger.Debug("Client initialized", "client", params.ClientInfo.Name, "client_version", params.ClientInfo.Version, "protocol", version)
	return jsonrpc.NewResponse(msg.ID, mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    h.Capabilities(),
		ServerInfo:      h.info,
		Instructions:    Instructions,
	}), version
}

// Dispatch handles every method except initialize. Notifications return nil.
func (h *Handler) Dispatch(ctx context.Context, msg jsonrpc.Request) *jsonrpc.Response {
	switch msg.Method {
	case mcp.MethodPing:
		return jsonrpc.NewResponse(msg.ID, map[string]any{})
	case mcp.MethodToolsList:
		return h.toolsList(msg)
	case mcp.MethodToolsCall:
		return h.toolsCall(ctx, msg)
	case mcp.MethodResourcesList:
		return h.resourcesList(msg)
	case mcp.MethodResourcesRead:
		return h.resourcesRead(ctx, msg)
	case mcp.MethodPromptsList:
		return h.promptsList(msg)
	case mcp.MethodPromptsGet:
		return h.promptsGet(msg)
	default:
		if msg.IsNotification() {
			return nil
		}
		return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrMethodNotFound), "Method not found", map[string]any{
			"method": msg.Method,
		})
	}
}

// Tools lists the registered tools in catalog order.
func (h *Handler) Tools() []mcp.Tool {
	return h.dispatcher.Registry().All()
}

// Resources lists readable resources, nil when none are served.
func (h *Handler) Resources() []mcp.Resource {
	if h.resources == nil {
		return nil
	}
	return h.resources.List()
}

// ReadResource reads one resource by URI.
func (h *Handler) ReadResource(ctx context.Context, uri string) (mcp.ResourceContents, error) {
	if h.resources == nil {
		return mcp.ResourceContents{}, fmt.Errorf("%w: %s", resources.ErrNotFound, uri)
	}
	return h.resources.Read(ctx, uri)
}

func (h *Handler) toolsList(msg jsonrpc.Request) *jsonrpc.Response {
	page, next, err := Page(msg.Params, h.Tools())
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidParams), err.Error(), nil)
	}
	return jsonrpc.NewResponse(msg.ID, mcp.ListToolsResult{Tools: page, NextCursor: next})
}

func (h *Handler) toolsCall(ctx context.Context, msg jsonrpc.Request) *jsonrpc.Response {
	var params mcp.CallToolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return semanticError(msg.ID, jsonrpc.ErrInvalidParams, "Invalid tools/call payload", "invalid_params", map[string]any{
			"field":   "params",
			"problem": "malformed_payload",
		})
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return semanticError(msg.ID, jsonrpc.ErrInvalidParams, "Tool name is required", "invalid_params", map[string]any{
			"field":   "name",
			"problem": "missing",
		})
	}
	return jsonrpc.NewResponse(msg.ID, h.CallTool(ctx, name, params.Arguments))
}

// CallTool runs one tool and converts the envelope to an MCP result.
func (h *Handler) CallTool(ctx context.Context, name string, arguments json.RawMessage) mcp.CallToolResult {
	return ToCallToolResult(h.dispatcher.CallJSON(ctx, name, arguments))
}

// ToCallToolResult renders a dispatcher envelope. Structured content is only
// attached when the data is a JSON object.
func ToCallToolResult(result types.Result) mcp.CallToolResult {
	out := mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent(result.Text())},
		IsError: result.IsError,
	}
	if trimmed := strings.TrimSpace(string(result.Data)); strings.HasPrefix(trimmed, "{") {
		out.StructuredContent = json.RawMessage(trimmed)
	}
	return out
}

func (h *Handler) resourcesList(msg jsonrpc.Request) *jsonrpc.Response {
	if h.resources == nil {
		return notSupported(msg.ID, "resources")
	}
	page, next, err := Page(msg.Params, h.resources.List())
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidParams), err.Error(), nil)
	}
	return jsonrpc.NewResponse(msg.ID, mcp.ListResourcesResult{Resources: page, NextCursor: next})
}

func (h *Handler) resourcesRead(ctx context.Context, msg jsonrpc.Request) *jsonrpc.Response {
	if h.resources == nil {
		return notSupported(msg.ID, "resources")
	}
	var params mcp.ReadResourceParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidParams), "Invalid resources/read payload", nil)
	}
	if params.URI == "" {
		return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidParams), "Resource URI is required", nil)
	}

	contents, err := h.ReadResource(ctx, params.URI)
	if err != nil {
		return resourceError(msg.ID, params.URI, err)
	}
	return jsonrpc.NewResponse(msg.ID, mcp.ReadResourceResult{Contents: []mcp.ResourceContents{contents}})
}

func resourceError(id any, uri string, err error) *jsonrpc.Response {
	if errors.Is(err, resources.ErrNotFound) {
		return jsonrpc.NewErrorResponse(id, int(jsonrpc.ErrResourceNotFound), "Resource not found", map[string]any{"uri": uri})
	}
	extra := map[string]any{"uri": uri, "details": err.Error()}
	if apiErr, ok := brevo.AsAPIError(err); ok && apiErr.Status != 0 {
		extra["status"] = apiErr.Status
	}
	logger.Warn("Resource read failed", "uri", uri, "error", err)
	return semanticError(id, jsonrpc.ErrServerError, "Resource temporarily unavailable", "not_available", extra)
}

// Prompts lists dashboards as MCP prompts.
func (h *Handler) Prompts() []mcp.Prompt {
	listed := h.dashboards.List()
	out := make([]mcp.Prompt, 0, len(listed))
	for _, dashboard := range listed {
		out = append(out, PromptFromDashboard(dashboard))
	}
	return out
}

// PromptFromDashboard describes a dashboard as a prompt.
func PromptFromDashboard(d dashboards.Dashboard) mcp.Prompt {
	prompt := mcp.Prompt{Name: d.Name, Title: d.Title, Description: d.Description}
	for _, arg := range d.Arguments {
		prompt.Arguments = append(prompt.Arguments, mcp.PromptArgument{
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	return prompt
}

func (h *Handler) promptsList(msg jsonrpc.Request) *jsonrpc.Response {
	if h.dashboards == nil {
		return notSupported(msg.ID, "prompts")
	}
	page, next, err := Page(msg.Params, h.Prompts())
	if err != nil {
		return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidParams), err.Error(), nil)
	}
	return jsonrpc.NewResponse(msg.ID, mcp.ListPromptsResult{Prompts: page, NextCursor: next})
}

func (h *Handler) promptsGet(msg jsonrpc.Request) *jsonrpc.Response {
	if h.dashboards == nil {
		return notSupported(msg.ID, "prompts")
	}
	var params mcp.GetPromptParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return semanticError(msg.ID, jsonrpc.ErrInvalidParams, "Invalid prompts/get payload", "invalid_params", map[string]any{
			"field":   "params",
			"problem": "malformed_payload",
		})
	}

	args := make(map[string]string, len(params.Arguments))
	for key, value := range params.Arguments {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			args[trimmed] = normalizePromptArgumentValue(value)
		}
	}

	result, err := h.GetPrompt(params.Name, args)
	if err != nil {
		return promptError(msg.ID, params.Name, err)
	}
	return jsonrpc.NewResponse(msg.ID, result)
}

// GetPrompt renders a dashboard as a single user message.
func (h *Handler) GetPrompt(name string, args map[string]string) (mcp.GetPromptResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return mcp.GetPromptResult{}, errPromptNameMissing
	}
	dashboard, ok := h.dashboards.Get(name)
	if !ok {
		return mcp.GetPromptResult{}, fmt.Errorf("%w: %s", dashboards.ErrNotFound, name)
	}
	text, err := dashboard.Render(args)
	if err != nil {
		return mcp.GetPromptResult{}, err
	}
	if len(text) > maxRenderedPromptBytes {
		return mcp.GetPromptResult{}, errPromptTooLarge
	}
	return mcp.GetPromptResult{
		Description: dashboard.Description,
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(text)},
		},
	}, nil
}

var (
	errPromptNameMissing = errors.New("prompt name is required")
	errPromptTooLarge    = fmt.Errorf("rendered prompt exceeds %d bytes", maxRenderedPromptBytes)
)

func promptError(id any, name string, err error) *jsonrpc.Response {
	if errors.Is(err, errPromptNameMissing) {
		return semanticError(id, jsonrpc.ErrInvalidParams, "Prompt name is required", "invalid_params", map[string]any{
			"field":   "name",
			"problem": "missing",
		})
	}
	if errors.Is(err, dashboards.ErrNotFound) {
		return semanticError(id, jsonrpc.ErrInvalidParams, "Unknown prompt name", "invalid_params", map[string]any{
			"field":   "name",
			"problem": "unknown_prompt",
			"value":   name,
		})
	}
	if missing, ok := errors.AsType[*dashboards.MissingArgumentError](err); ok {
		return semanticError(id, jsonrpc.ErrInvalidParams, missing.Error(), "invalid_params", map[string]any{
			"field":   "arguments." + missing.Argument,
			"problem": "missing",
		})
	}
	if errors.Is(err, errPromptTooLarge) {
		return semanticError(id, jsonrpc.ErrInvalidParams, "Prompt arguments produced oversized output", "invalid_params", map[string]any{
			"field":    "arguments",
			"problem":  "rendered_prompt_too_large",
			"maxBytes": maxRenderedPromptBytes,
		})
	}
	return jsonrpc.NewErrorResponse(id, int(jsonrpc.ErrInternalError), err.Error(), nil)
}

func normalizePromptArgumentValue(value any) string {
	if text, ok := value.(string); ok {
		return strings.ReplaceAll(text, "\x00", "")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return strings.ReplaceAll(fmt.Sprint(value), "\x00", "")
	}
	return strings.ReplaceAll(string(raw), "\x00", "")
}

func notSupported(id any, feature string) *jsonrpc.Response {
	if id == nil {
		return nil
	}
	return semanticError(id, jsonrpc.ErrMethodNotFound, "Feature not supported", "not_supported", map[string]any{
		"feature": feature,
	})
}
