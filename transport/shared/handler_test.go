package shared

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/dashboards"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/brevo-mcp-go/resources"
	"github.com/slighter12/brevo-mcp-go/tools"
)

func TestMain(m *testing.M) {
	logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON)
	os.Exit(m.Run())
}

type brevoStub struct {
	status int
	body   string
	calls  atomic.Int32
}

func (s *brevoStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.calls.Add(1)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	io.WriteString(w, s.body)
}

func newTestHandler(t *testing.T, stub *brevoStub) *Handler {
	t.Helper()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	client, err := brevo.NewClient("test-key", brevo.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	registry, err := tools.NewCatalog(client, tools.Selection{})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	dash, err := dashboards.NewCatalog()
	if err != nil {
		t.Fatalf("dashboards.NewCatalog: %v", err)
	}
	return NewHandler(
		mcp.Implementation{Name: "brevo-mcp", Version: "test"},
		tools.NewDispatcher(registry),
		resources.NewCatalog(client, dash),
		dash,
	)
}

func mustRequest(t *testing.T, method string, params map[string]any) jsonrpc.Request {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		raw = encoded
	}
	return jsonrpc.Request{
		JSONRPC: jsonrpc.Version,
		ID:      1,
		Method:  method,
		Params:  raw,
	}
}

// decodeResult round-trips the response result into out.
func decodeResult(t *testing.T, resp *jsonrpc.Response, out any) {
	t.Helper()
	if resp == nil {
		t.Fatal("expected a response")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error response: %+v", resp.Error)
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func mustErrorDataMap(t *testing.T, resp *jsonrpc.Response) map[string]any {
	t.Helper()
	if resp == nil || resp.Error == nil {
		t.Fatalf("expected an error response, got %+v", resp)
	}
	data, ok := resp.Error.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map error data, got %T", resp.Error.Data)
	}
	return data
}

func TestInitializeNegotiatesVersion(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})

	tests := []struct {
		requested string
		want      string
	}{
		{"2025-06-18", "2025-06-18"},
		{"1999-01-01", mcp.ProtocolVersion},
		{"", mcp.ProtocolVersion},
	}
	for _, tt := range tests {
		resp, version := h.Initialize(mustRequest(t, mcp.MethodInitialize, map[string]any{
			"protocolVersion": tt.requested,
			"clientInfo":      map[string]any{"name": "test", "version": "1"},
		}))
		if version != tt.want {
			t.Errorf("requested %q: negotiated %q, want %q", tt.requested, version, tt.want)
		}
		var result mcp.InitializeResult
		decodeResult(t, resp, &result)
		if result.ProtocolVersion != tt.want || result.ServerInfo.Name != "brevo-mcp" {
			t.Errorf("unexpected initialize result %+v", result)
		}
		if result.Capabilities.Prompts == nil || !result.Capabilities.Prompts.ListChanged {
			t.Error("prompts capability should advertise listChanged")
		}
		if result.Capabilities.Resources == nil || result.Capabilities.Tools == nil {
			t.Error("tools and resources capabilities should be present")
		}
	}
}

func TestCapabilitiesWithoutOptionalCatalogs(t *testing.T) {
	h := NewHandler(mcp.Implementation{Name: "x"}, nil, nil, nil)
	caps := h.Capabilities()
	if caps.Tools == nil || caps.Resources != nil || caps.Prompts != nil {
		t.Errorf("unexpected capabilities %+v", caps)
	}

	resp := h.Dispatch(context.Background(), mustRequest(t, mcp.MethodPromptsList, nil))
	data := mustErrorDataMap(t, resp)
	if data["kind"] != "not_supported" || data["feature"] != "prompts" {
		t.Errorf("unexpected error data %v", data)
	}
}

func TestPingReturnsEmptyObject(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})
	var result map[string]any
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodPing, nil)), &result)
	if len(result) != 0 {
		t.Errorf("expected empty result, got %v", result)
	}
}

func TestToolsListKeepsCatalogOrder(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})
	var result mcp.ListToolsResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodToolsList, nil)), &result)

	if len(result.Tools) == 0 {
		t.Fatal("expected tools")
	}
	if result.Tools[0].Name != "list_contacts" {
		t.Errorf("first tool = %q, want list_contacts", result.Tools[0].Name)
	}
	for _, tool := range result.Tools {
		if tool.InputSchema == nil || tool.InputSchema.Type != "object" {
			t.Errorf("%s: input schema must be an object", tool.Name)
		}
	}
}

func TestToolsCallSuccess(t *testing.T) {
	stub := &brevoStub{status: http.StatusOK, body: `{"email":"ops@example.com","companyName":"Acme"}`}
	h := newTestHandler(t, stub)

	var result mcp.CallToolResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodToolsCall, map[string]any{
		"name":      "get_account",
		"arguments": map[string]any{},
	})), &result)

	if result.IsError {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(result.Content) != 1 || !strings.Contains(result.Content[0].Text, "Acme") {
		t.Errorf("unexpected content %+v", result.Content)
	}
	if len(result.StructuredContent) == 0 {
		t.Error("object payloads should be attached as structured content")
	}
	if stub.calls.Load() != 1 {
		t.Errorf("expected one Brevo call, got %d", stub.calls.Load())
	}
}

func TestToolsCallUnknownToolIsResult(t *testing.T) {
	stub := &brevoStub{status: http.StatusOK, body: `{}`}
	h := newTestHandler(t, stub)

	var result mcp.CallToolResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodToolsCall, map[string]any{
		"name": "does_not_exist",
	})), &result)

	want := []mcp.Content{mcp.TextContent("Error: unknown tool: does_not_exist")}
	if diff := cmp.Diff(want, result.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
	if !result.IsError {
		t.Error("unknown tools must produce an error result")
	}
	var structured struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	if err := json.Unmarshal(result.StructuredContent, &structured); err != nil || structured.Error.Kind != "unknown_tool" {
		t.Errorf("unexpected structured content %s (%v)", result.StructuredContent, err)
	}
	if stub.calls.Load() != 0 {
		t.Error("unknown tools must not reach Brevo")
	}
}

func TestToolsCallMissingName(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})
	resp := h.Dispatch(context.Background(), mustRequest(t, mcp.MethodToolsCall, map[string]any{"name": "  "}))
	data := mustErrorDataMap(t, resp)
	if resp.Error.Code != int(jsonrpc.ErrInvalidParams) || data["field"] != "name" {
		t.Errorf("unexpected error %+v", resp.Error)
	}
}

func TestToCallToolResultSkipsNonObjectData(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `[{"id":1}]`})
	result := h.CallTool(context.Background(), "get_account", nil)
	if result.IsError {
		t.Fatalf("unexpected error %+v", result)
	}
	if result.StructuredContent != nil {
		t.Errorf("arrays must not become structured content, got %s", result.StructuredContent)
	}
}

func TestResourcesListAndRead(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{"email":"ops@example.com"}`})

	var list mcp.ListResourcesResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodResourcesList, nil)), &list)
	if len(list.Resources) == 0 || list.Resources[0].URI != resources.AccountURI {
		t.Fatalf("account resource should come first, got %+v", list.Resources)
	}

	var read mcp.ReadResourceResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodResourcesRead, map[string]any{
		"uri": resources.AccountURI,
	})), &read)
	if len(read.Contents) != 1 || !strings.Contains(read.Contents[0].Text, "ops@example.com") {
		t.Errorf("unexpected contents %+v", read.Contents)
	}

	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodResourcesRead, map[string]any{
		"uri": resources.DashboardURIPrefix + "deal-pipeline",
	})), &read)
	if !strings.Contains(read.Contents[0].Text, "# Deal Pipeline") {
		t.Errorf("unexpected dashboard text %q", read.Contents[0].Text)
	}
}

func TestResourcesReadErrors(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusUnauthorized, body: `{"code":"unauthorized","message":"Key not found"}`})

	resp := h.Dispatch(context.Background(), mustRequest(t, mcp.MethodResourcesRead, map[string]any{
		"uri": "brevo://nowhere",
	}))
	data := mustErrorDataMap(t, resp)
	if resp.Error.Code != int(jsonrpc.ErrResourceNotFound) || data["uri"] != "brevo://nowhere" {
		t.Errorf("unexpected not found error %+v", resp.Error)
	}

	resp = h.Dispatch(context.Background(), mustRequest(t, mcp.MethodResourcesRead, map[string]any{
		"uri": resources.AccountURI,
	}))
	data = mustErrorDataMap(t, resp)
	if data["kind"] != "not_available" {
		t.Errorf("unexpected error data %v", data)
	}
	if status, _ := data["status"].(int); status != http.StatusUnauthorized {
		t.Errorf("status = %v, want 401", data["status"])
	}

	resp = h.Dispatch(context.Background(), mustRequest(t, mcp.MethodResourcesRead, map[string]any{}))
	if resp.Error == nil || resp.Error.Code != int(jsonrpc.ErrInvalidParams) {
		t.Errorf("missing uri should be invalid params, got %+v", resp)
	}
}

func TestPromptsListCoversDashboards(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})
	var result mcp.ListPromptsResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodPromptsList, nil)), &result)

	if len(result.Prompts) != 14 {
		t.Fatalf("expected 14 prompts, got %d", len(result.Prompts))
	}
	var detail *mcp.Prompt
	for i := range result.Prompts {
		if result.Prompts[i].Name == "contact-detail" {
			detail = &result.Prompts[i]
		}
	}
	if detail == nil || len(detail.Arguments) == 0 || !detail.Arguments[0].Required {
		t.Errorf("contact-detail should require its identifier, got %+v", detail)
	}
}

func TestPromptsGetRendersDashboard(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})

	var result mcp.GetPromptResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodPromptsGet, map[string]any{
		"name":      "contact-detail",
		"arguments": map[string]any{"identifier": "jane@example.com"},
	})), &result)

	if len(result.Messages) != 1 || result.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages %+v", result.Messages)
	}
	if !strings.Contains(result.Messages[0].Content.Text, "# Contact jane@example.com") {
		t.Errorf("identifier not substituted: %q", result.Messages[0].Content.Text)
	}
}

func TestPromptsGetNonStringArgument(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})

	var result mcp.GetPromptResult
	decodeResult(t, h.Dispatch(context.Background(), mustRequest(t, mcp.MethodPromptsGet, map[string]any{
		"name":      "contact-grid",
		"arguments": map[string]any{"listId": 7},
	})), &result)
	if !strings.Contains(result.Messages[0].Content.Text, "list `7`") {
		t.Errorf("numeric argument not rendered: %q", result.Messages[0].Content.Text)
	}
}

func TestPromptsGetErrors(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})

	tests := []struct {
		name    string
		params  map[string]any
		field   string
		problem string
	}{
		{"missing name", map[string]any{"name": ""}, "name", "missing"},
		{"unknown prompt", map[string]any{"name": "nope"}, "name", "unknown_prompt"},
		{"missing argument", map[string]any{"name": "contact-detail"}, "arguments.identifier", "missing"},
		{"oversized", map[string]any{
			"name":      "contact-detail",
			"arguments": map[string]any{"identifier": strings.Repeat("x", maxRenderedPromptBytes)},
		}, "arguments", "rendered_prompt_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.Dispatch(context.Background(), mustRequest(t, mcp.MethodPromptsGet, tt.params))
			data := mustErrorDataMap(t, resp)
			if resp.Error.Code != int(jsonrpc.ErrInvalidParams) {
				t.Errorf("code = %d", resp.Error.Code)
			}
			if data["field"] != tt.field || data["problem"] != tt.problem {
				t.Errorf("unexpected error data %v", data)
			}
		})
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	h := newTestHandler(t, &brevoStub{status: http.StatusOK, body: `{}`})

	resp := h.Dispatch(context.Background(), mustRequest(t, "sampling/createMessage", nil))
	if resp == nil || resp.Error == nil || resp.Error.Code != int(jsonrpc.ErrMethodNotFound) {
		t.Errorf("expected method not found, got %+v", resp)
	}

	notification := mustRequest(t, "notifications/cancelled", nil)
	notification.ID = nil
	if resp := h.Dispatch(context.Background(), notification); resp != nil {
		t.Errorf("notifications must not be answered, got %+v", resp)
	}
}
