package dashboards

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/slighter12/brevo-mcp-go/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON)
	os.Exit(m.Run())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestBuiltinCatalog(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	var names []string
	for _, dashboard := range catalog.List() {
		names = append(names, dashboard.Name)
		if !dashboard.Builtin || dashboard.Title == "" || dashboard.Description == "" || dashboard.Style == "" {
			t.Errorf("dashboard %s is missing metadata: %+v", dashboard.Name, dashboard)
		}
		if strings.HasPrefix(dashboard.Template, "---") {
			t.Errorf("dashboard %s kept its frontmatter in the body", dashboard.Name)
		}
	}
	want := []string{
		"automation-dashboard", "campaign-builder", "campaign-dashboard", "contact-dashboard",
		"contact-detail", "contact-grid", "deal-pipeline", "email-template-gallery",
		"import-wizard", "list-manager", "report-dashboard", "sms-dashboard",
		"transactional-monitor", "webhook-manager",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("builtin dashboards mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFrontmatterAndArguments(t *testing.T) {
	content := "---\r\nname: Pipeline-View\r\ntitle: Pipeline View\r\ndescription: \"Deals by stage\"\r\n" +
		"arguments:\r\n  - name: pipelineId\r\n    description: Pipeline\r\n    required: true\r\n---\r\n\r\n" +
		"Show {{ pipelineId }} for {{owner}} and {{ owner }}.\r\n"

	dashboard, err := Parse("custom/pipeline.md", []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if dashboard.Name != "Pipeline-View" || dashboard.Title != "Pipeline View" || dashboard.Description != "Deals by stage" {
		t.Errorf("unexpected metadata %+v", dashboard)
	}
	if strings.Contains(dashboard.Template, "\r") {
		t.Errorf("expected normalized line endings, got %q", dashboard.Template)
	}
	want := []Argument{
		{Name: "owner"},
		{Name: "pipelineId", Description: "Pipeline", Required: true},
	}
	if diff := cmp.Diff(want, dashboard.Arguments); diff != "" {
		t.Errorf("arguments mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	dashboard, err := Parse("/tmp/weekly-digest.md", []byte("Plain body"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if dashboard.Name != "weekly-digest" || dashboard.Title != "weekly-digest" {
		t.Errorf("expected the file name as fallback, got %+v", dashboard)
	}
	if dashboard.Arguments != nil {
		t.Errorf("expected no arguments, got %+v", dashboard.Arguments)
	}
}

func TestParseRejectsBrokenTemplates(t *testing.T) {
	tests := map[string]string{
		"unterminated": "---\nname: x\nbody",
		"bad yaml":     "---\nname: [x\n---\nbody",
		"empty body":   "---\nname: x\n---\n   \n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse("x.md", []byte(content)); err == nil {
				t.Error("expected a parse error")
			}
		})
	}
}

func TestRender(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	out, err := catalog.Render("contact-detail", map[string]string{"identifier": "ann@example.com"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "# Contact ann@example.com") {
		t.Errorf("argument not substituted:\n%s", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("placeholders left in output:\n%s", out)
	}
	if !strings.Contains(out, "<style>") {
		t.Errorf("style block missing:\n%s", out)
	}

	_, err = catalog.Render("contact-detail", nil)
	var missing *MissingArgumentError
	if !errors.As(err, &missing) || missing.Argument != "identifier" {
		t.Errorf("expected a missing identifier error, got %v", err)
	}

	if _, err := catalog.Render("no-such-dashboard", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	out, err = catalog.Render("CONTACT-GRID", nil)
	if err != nil {
		t.Fatalf("Render optional-only dashboard: %v", err)
	}
	if !strings.Contains(out, "for list ``") {
		t.Errorf("optional placeholder should render empty:\n%s", out)
	}
}

func TestLoadRecursiveAndOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "weekly.md"), "---\nname: weekly\n---\nweekly body\n")
	writeFile(t, filepath.Join(root, "b", "nested", "sms.md"), "---\nname: sms-dashboard\ndescription: custom sms\n---\ncustom\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, ".hidden", "secret.md"), "ignored")

	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	builtinCount := catalog.Len()

	if err := catalog.Load([]string{root}, nil); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := catalog.Len(); got != builtinCount+1 {
		t.Errorf("Len() = %d, want %d", got, builtinCount+1)
	}
	if _, ok := catalog.Get("weekly"); !ok {
		t.Error("expected dashboard weekly")
	}
	sms, ok := catalog.Get("sms-dashboard")
	if !ok || sms.Builtin || sms.Description != "custom sms" {
		t.Errorf("loaded dashboard should override the built-in, got %+v", sms)
	}

	if err := catalog.Load(nil, nil); err != nil {
		t.Fatalf("Load(nil): %v", err)
	}
	sms, _ = catalog.Get("sms-dashboard")
	if !sms.Builtin {
		t.Error("clearing paths should restore the built-in dashboard")
	}
	if _, ok := catalog.Get("weekly"); ok {
		t.Error("reload should drop dashboards that are gone")
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one.md"), "---\nname: Dup\n---\nfirst\n")
	writeFile(t, filepath.Join(root, "two.md"), "---\nname: dup\n---\nsecond\n")
	writeFile(t, filepath.Join(root, "bad.md"), "---\nname: bad\n")

	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing")
	if err := catalog.Load([]string{root, missing}, nil); err == nil {
		t.Fatal("expected load errors")
	}
	if got := len(catalog.LoadErrors()); got != 3 {
		t.Errorf("expected 3 load errors, got %d: %v", got, catalog.LoadErrors())
	}
	dup, ok := catalog.Get("DUP")
	if !ok || dup.Template != "first" {
		t.Errorf("expected the first duplicate to win, got %+v", dup)
	}
}

func TestLoadRespectsAllowedRoots(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(allowed, "inside.md"), "inside")
	writeFile(t, filepath.Join(outside, "outside.md"), "outside")

	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	err = catalog.Load([]string{allowed, outside}, []string{allowed})
	if err == nil || !strings.Contains(err.Error(), "outside the allowed roots") {
		t.Fatalf("expected an allowed-roots error, got %v", err)
	}
	if _, ok := catalog.Get("inside"); !ok {
		t.Error("expected the dashboard inside the root")
	}
	if _, ok := catalog.Get("outside"); ok {
		t.Error("dashboard outside the root must not load")
	}
}

func TestLoadRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	allowed := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "escape.md"), "escape")
	if err := os.Symlink(filepath.Join(outside, "escape.md"), filepath.Join(allowed, "link.md")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if err := catalog.Load([]string{allowed}, nil); err == nil {
		t.Fatal("expected the symlink escape to be reported")
	}
	if _, ok := catalog.Get("escape"); ok {
		t.Error("symlinked dashboard outside the root must not load")
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "weekly.md")
	writeFile(t, file, "v1")

	first, errs := Fingerprint([]string{root}, nil)
	if len(errs) != 0 || first == "" {
		t.Fatalf("Fingerprint: %q %v", first, errs)
	}
	again, _ := Fingerprint([]string{root}, nil)
	if again != first {
		t.Error("fingerprint should be stable without changes")
	}

	writeFile(t, file, "v2 with more content")
	changed, _ := Fingerprint([]string{root}, nil)
	if changed == first {
		t.Error("fingerprint should change with the content")
	}
}
