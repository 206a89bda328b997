package stdio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/dashboards"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/resources"
	"github.com/slighter12/brevo-mcp-go/tools"
	"github.com/slighter12/brevo-mcp-go/transport/shared"
)

func TestMain(m *testing.M) {
	logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON)
	os.Exit(m.Run())
}

type fixture struct {
	server     *StdioServer
	dashboards *dashboards.Catalog
	session    *sdk.ClientSession
	changed    chan struct{}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	brevoStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"email":"ops@example.com","companyName":"Acme"}`)
	}))
	t.Cleanup(brevoStub.Close)

	client, err := brevo.NewClient("test-key", brevo.WithBaseURL(brevoStub.URL))
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
	handler := shared.NewHandler(
		mcp.Implementation{Name: "brevo-mcp-go", Version: "test"},
		tools.NewDispatcher(registry),
		resources.NewCatalog(client, dash),
		dash,
	)
	server := NewStdioServer(handler)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	serverTransport, clientTransport := sdk.NewInMemoryTransports()
	serverSession, err := server.Server().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	changed := make(chan struct{}, 8)
	mcpClient := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "0.1.0"}, &sdk.ClientOptions{
		PromptListChangedHandler: func(context.Context, *sdk.PromptListChangedRequest) {
			changed <- struct{}{}
		},
	})
	session, err := mcpClient.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })

	return &fixture{server: server, dashboards: dash, session: session, changed: changed}
}

func TestListToolsMatchesCatalog(t *testing.T) {
	f := newFixture(t)
	result, err := f.session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(result.Tools) != len(f.server.handler.Tools()) {
		t.Errorf("listed %d tools, catalog has %d", len(result.Tools), len(f.server.handler.Tools()))
	}
}

func TestCallTool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.session.CallTool(ctx, &sdk.CallToolParams{Name: "get_account", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if result.IsError || len(result.Content) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	text, ok := result.Content[0].(*sdk.TextContent)
	if !ok || !strings.Contains(text.Text, "Acme") {
		t.Errorf("unexpected content %+v", result.Content[0])
	}

	result, err = f.session.CallTool(ctx, &sdk.CallToolParams{Name: "get_contact", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Error("missing required argument should be an error result")
	}
	text, _ = result.Content[0].(*sdk.TextContent)
	if text == nil || !strings.Contains(text.Text, "identifier") {
		t.Errorf("validation message should name the field, got %+v", result.Content[0])
	}
}

func TestResources(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	listed, err := f.session.ListResources(ctx, nil)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(listed.Resources) != 15 {
		t.Errorf("expected account plus 14 dashboards, got %d", len(listed.Resources))
	}

	read, err := f.session.ReadResource(ctx, &sdk.ReadResourceParams{URI: resources.AccountURI})
	if err != nil {
		t.Fatalf("ReadResource: %v", err)
	}
	if len(read.Contents) != 1 || !strings.Contains(read.Contents[0].Text, "ops@example.com") {
		t.Errorf("unexpected contents %+v", read.Contents)
	}

	if _, err := f.session.ReadResource(ctx, &sdk.ReadResourceParams{URI: "brevo://dashboards/nope"}); err == nil {
		t.Error("unknown dashboards should not be readable")
	}
}

func TestPrompts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.session.GetPrompt(ctx, &sdk.GetPromptParams{
		Name:      "contact-detail",
		Arguments: map[string]string{"identifier": "jane@example.com"},
	})
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	text, ok := result.Messages[0].Content.(*sdk.TextContent)
	if !ok || !strings.Contains(text.Text, "# Contact jane@example.com") {
		t.Errorf("unexpected prompt %+v", result.Messages[0])
	}

	if _, err := f.session.GetPrompt(ctx, &sdk.GetPromptParams{Name: "contact-detail"}); err == nil {
		t.Error("missing required argument should fail")
	}
}

func TestSyncPublishesReloadedDashboards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dir := t.TempDir()
	custom := "---\nname: churn-watch\ntitle: Churn Watch\ndescription: Contacts that stopped opening\n---\nList contacts with no opens.\n"
	if err := os.WriteFile(filepath.Join(dir, "churn-watch.md"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := f.dashboards.Load([]string{dir}, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	f.server.Sync()

	select {
	case <-f.changed:
	case <-time.After(2 * time.Second):
		t.Fatal("no prompts list_changed notification")
	}

	prompts, err := f.session.ListPrompts(ctx, nil)
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	found := false
	for _, prompt := range prompts.Prompts {
		found = found || prompt.Name == "churn-watch"
	}
	if !found || len(prompts.Prompts) != 15 {
		t.Errorf("reloaded prompt missing, got %d prompts", len(prompts.Prompts))
	}
}
