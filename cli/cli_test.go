package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/slighter12/brevo-mcp-go/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON)
	os.Exit(m.Run())
}

// newTestRoot creates a fresh command tree for each test.
func newTestRoot() *cobra.Command {
	return NewRootCmd("test")
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// isolateEnv points config, logs and home at a temp dir so that no developer
// settings leak into the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("MCP_CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("MCP_LOG_PATH", filepath.Join(dir, "mcp.log"))
	t.Setenv("BREVO_API_KEY", "")
	t.Setenv("BREVO_BASE_URL", "")
	for _, key := range []string{"MCP_TRANSPORTS", "MCP_TOOL_PREFIX", "MCP_TOOL_GROUPS", "MCP_DASHBOARD_PATHS", "MCP_LOG_LEVEL", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}
	return dir
}

type brevoStub struct {
	server *httptest.Server
	calls  atomic.Int32
	apiKey atomic.Value
}

func newBrevoStub(t *testing.T, status int, body string) *brevoStub {
	t.Helper()
	stub := &brevoStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.calls.Add(1)
		stub.apiKey.Store(r.Header.Get("api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(stub.server.Close)
	t.Setenv("BREVO_API_KEY", "xkeysib-test")
	t.Setenv("BREVO_BASE_URL", stub.server.URL)
	return stub
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	exitErr, ok := errors.AsType[*ExitError](err)
	if !ok {
		t.Fatalf("expected *ExitError, got %T: %v", err, err)
	}
	return exitErr.Code
}

func TestToolsJSON(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCommand(newTestRoot(), "tools", "--json")
	if err != nil {
		t.Fatalf("tools --json: %v", err)
	}
	var listed []struct {
		Name        string         `json:"name"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if len(listed) == 0 || listed[0].Name != "list_contacts" {
		t.Fatalf("unexpected listing head %+v", listed[:min(len(listed), 1)])
	}
	for _, tool := range listed {
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %s has schema type %v", tool.Name, tool.InputSchema["type"])
		}
	}
}

func TestToolsTableWithoutAPIKey(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCommand(newTestRoot(), "tools")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	if !strings.HasPrefix(stdout, "NAME") || !strings.Contains(stdout, "get_account") {
		t.Errorf("unexpected table:\n%s", stdout)
	}
	if !strings.Contains(stdout, " tools\n") {
		t.Errorf("expected a tool count footer:\n%s", stdout)
	}
}

func TestCallPrintsPayload(t *testing.T) {
	isolateEnv(t)
	stub := newBrevoStub(t, http.StatusOK, `{"email":"owner@example.com","companyName":"Acme"}`)

	stdout, _, err := executeCommand(newTestRoot(), "call", "get_account", "--text")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !strings.Contains(stdout, `"companyName": "Acme"`) {
		t.Errorf("unexpected output:\n%s", stdout)
	}
	if got := stub.apiKey.Load(); got != "xkeysib-test" {
		t.Errorf("api-key header = %v", got)
	}
}

func TestCallJSONEnvelope(t *testing.T) {
	isolateEnv(t)
	newBrevoStub(t, http.StatusOK, `{"email":"owner@example.com"}`)

	stdout, _, err := executeCommand(newTestRoot(), "call", "get_account")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	var envelope map[string]any
	if err := json.Unmarshal([]byte(stdout), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"ok":      true,
		"payload": map[string]any{"email": "owner@example.com"},
		"isError": false,
	}
	if diff := cmp.Diff(want, envelope); diff != "" {
		t.Errorf("envelope mismatch (-want +got):\n%s", diff)
	}
}

func TestCallValidationErrorExitsTwo(t *testing.T) {
	isolateEnv(t)
	stub := newBrevoStub(t, http.StatusOK, `{}`)

	stdout, _, err := executeCommand(newTestRoot(), "call", "get_contact", "--args", "{}", "--text")
	if code := exitCode(t, err); code != exitToolError {
		t.Fatalf("exit code = %d, want %d", code, exitToolError)
	}
	if err.Error() != "" {
		t.Errorf("tool errors are already printed, got message %q", err.Error())
	}
	if !strings.HasPrefix(stdout, "Error: ") || !strings.Contains(stdout, "identifier") {
		t.Errorf("unexpected output %q", stdout)
	}
	if stub.calls.Load() != 0 {
		t.Errorf("validation failure reached the API %d time(s)", stub.calls.Load())
	}
}

func TestCallRemoteErrorExitsTwo(t *testing.T) {
	isolateEnv(t)
	newBrevoStub(t, http.StatusNotFound, `{"code":"document_not_found","message":"Contact does not exist"}`)

	stdout, _, err := executeCommand(newTestRoot(), "call", "get_contact", "--args", `{"identifier":"nobody@example.com"}`)
	if code := exitCode(t, err); code != exitToolError {
		t.Fatalf("exit code = %d, want %d", code, exitToolError)
	}
	var envelope struct {
		OK      bool   `json:"ok"`
		Payload string `json:"payload"`
		IsError bool   `json:"isError"`
	}
	if err := json.Unmarshal([]byte(stdout), &envelope); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if envelope.OK || !envelope.IsError || !strings.Contains(envelope.Payload, "Contact does not exist") {
		t.Errorf("unexpected envelope %+v", envelope)
	}
}

func TestCallReadsArgumentsFromStdin(t *testing.T) {
	isolateEnv(t)
	stub := newBrevoStub(t, http.StatusOK, `{"email":"jane@example.com"}`)

	root := newTestRoot()
	root.SetIn(strings.NewReader(`{"identifier":"jane@example.com"}`))
	stdout, _, err := executeCommand(root, "call", "get_contact", "--args", "-")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !strings.Contains(stdout, "jane@example.com") || stub.calls.Load() != 1 {
		t.Errorf("unexpected output %q after %d call(s)", stdout, stub.calls.Load())
	}
}

func TestCallRejectsInvalidJSON(t *testing.T) {
	isolateEnv(t)
	newBrevoStub(t, http.StatusOK, `{}`)

	_, _, err := executeCommand(newTestRoot(), "call", "get_account", "--args", "{not json")
	if code := exitCode(t, err); code != exitRuntime {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(err.Error(), "--args must be valid JSON") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestMissingAPIKey(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "call", args: []string{"call", "get_account"}},
		{name: "serve", args: []string{"serve"}},
		{name: "root", args: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			_, _, err := executeCommand(newTestRoot(), tt.args...)
			if code := exitCode(t, err); code != exitRuntime {
				t.Fatalf("exit code = %d, want %d", code, exitRuntime)
			}
			if !strings.Contains(err.Error(), "BREVO_API_KEY") || !strings.Contains(err.Error(), apiKeyHint) {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestServeRejectsUnknownTransport(t *testing.T) {
	isolateEnv(t)
	t.Setenv("BREVO_API_KEY", "xkeysib-test")

	_, _, err := executeCommand(newTestRoot(), "serve", "--transport", "websocket")
	if code := exitCode(t, err); code != exitRuntime {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(err.Error(), `unknown transport "websocket"`) {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestDashboardsList(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCommand(newTestRoot(), "dashboards")
	if err != nil {
		t.Fatalf("dashboards: %v", err)
	}
	for _, want := range []string{"NAME", "deal-pipeline", "contact-detail", "identifier*", "builtin"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("listing lacks %q:\n%s", want, stdout)
		}
	}
}

func TestDashboardsListIncludesConfiguredTemplates(t *testing.T) {
	dir := isolateEnv(t)
	templates := filepath.Join(dir, "dashboards")
	if err := os.MkdirAll(templates, 0o755); err != nil {
		t.Fatal(err)
	}
	custom := "---\nname: churn-watch\ntitle: Churn Watch\n---\nList contacts idle since {{ since }}.\n"
	if err := os.WriteFile(filepath.Join(templates, "churn-watch.md"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("dashboards:\n  enabled: true\n  paths:\n    - "+templates+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := executeCommand(newTestRoot(), "dashboards", "--config", configPath)
	if err != nil {
		t.Fatalf("dashboards: %v", err)
	}
	if !strings.Contains(stdout, "Churn Watch") || !strings.Contains(stdout, "churn-watch.md") {
		t.Errorf("custom template missing:\n%s", stdout)
	}

	stdout, _, err = executeCommand(newTestRoot(), "dashboards", "show", "churn-watch", "--config", configPath, "--arg", "since=2026-01-01")
	if err != nil {
		t.Fatalf("dashboards show: %v", err)
	}
	if !strings.Contains(stdout, "List contacts idle since 2026-01-01.") {
		t.Errorf("unexpected render:\n%s", stdout)
	}
}

func TestDashboardsShow(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := executeCommand(newTestRoot(), "dashboards", "show", "contact-detail", "--arg", "identifier=jane@example.com")
	if err != nil {
		t.Fatalf("dashboards show: %v", err)
	}
	if !strings.Contains(stdout, "# Contact jane@example.com") {
		t.Errorf("unexpected render:\n%s", stdout)
	}

	_, _, err = executeCommand(newTestRoot(), "dashboards", "show", "contact-detail")
	if code := exitCode(t, err); code != exitRuntime || !strings.Contains(err.Error(), "identifier") {
		t.Errorf("expected a missing argument error, got %v", err)
	}

	_, _, err = executeCommand(newTestRoot(), "dashboards", "show", "nope")
	if code := exitCode(t, err); code != exitRuntime || !strings.Contains(err.Error(), `unknown dashboard "nope"`) {
		t.Errorf("expected an unknown dashboard error, got %v", err)
	}
}

func TestSummarizeLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    []string
		limit int
		want  []string
	}{
		{name: "empty", in: nil, limit: 5, want: []string{}},
		{name: "under limit", in: []string{"a", "b"}, limit: 5, want: []string{"a", "b"}},
		{name: "truncated", in: []string{"a", "b", "c", "d"}, limit: 2, want: []string{"a", "b", "... 2 more warning(s)"}},
		{name: "no limit", in: []string{"a", "b", "c"}, limit: 0, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarizeLoadErrors(tt.in, tt.limit)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
