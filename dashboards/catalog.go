// Package dashboards holds the markdown dashboard templates served as MCP
// prompts and resources. Built-in templates are embedded; more can be loaded
// from configured directories.
package dashboards

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/slighter12/brevo-mcp-go/logger"
)

//go:embed templates/*.md
var builtinFS embed.FS

// ErrNotFound is returned when no dashboard has the requested name.
var ErrNotFound = errors.New("dashboard not found")

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Dashboard is one renderable template.
type Dashboard struct {
	Name        string
	Title       string
	Description string
	Style       string
	Arguments   []Argument
	Template    string
	Source      string
	Builtin     bool
}

// Argument describes one {{ placeholder }} of a template.
type Argument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// MissingArgumentError reports a required argument absent from Render.
type MissingArgumentError struct {
	Dashboard string
	Argument  string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("dashboard %s: missing required argument %q", e.Dashboard, e.Argument)
}

// FileSnapshot captures one template file's identity for change detection.
type FileSnapshot struct {
	Path            string
	Size            int64
	ModTimeUnixNano int64
	ContentSHA256   string
}

type frontmatter struct {
	Name        string     `yaml:"name"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Style       string     `yaml:"style"`
	Arguments   []Argument `yaml:"arguments"`
}

// Catalog stores built-in and loaded dashboards. Loaded dashboards replace
// built-ins of the same name.
type Catalog struct {
	builtins map[string]Dashboard

	mu         sync.RWMutex
	loaded     map[string]Dashboard
	loadErrors []string
}

// NewCatalog parses the embedded templates.
func NewCatalog() (*Catalog, error) {
	entries, err := fs.ReadDir(builtinFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded dashboards: %w", err)
	}

	builtins := make(map[string]Dashboard, len(entries))
	for _, entry := range entries {
		source := path.Join("templates", entry.Name())
		content, err := builtinFS.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read embedded dashboard %s: %w", source, err)
		}
		dashboard, err := Parse(source, content)
		if err != nil {
			return nil, err
		}
		dashboard.Builtin = true
		key := dashboardKey(dashboard.Name)
		if _, dup := builtins[key]; dup {
			return nil, fmt.Errorf("duplicate embedded dashboard %q", dashboard.Name)
		}
		builtins[key] = dashboard
	}

	return &Catalog{
		builtins: builtins,
		loaded:   map[string]Dashboard{},
	}, nil
}

// Len returns the number of visible dashboards.
func (c *Catalog) Len() int {
	return len(c.List())
}

// List returns every dashboard sorted by name.
func (c *Catalog) List() []Dashboard {
	if c == nil {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	merged := make(map[string]Dashboard, len(c.builtins)+len(c.loaded))
	for key, dashboard := range c.builtins {
		merged[key] = dashboard
	}
	for key, dashboard := range c.loaded {
		merged[key] = dashboard
	}

	out := make([]Dashboard, 0, len(merged))
	for _, dashboard := range merged {
		out = append(out, dashboard)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Get returns one dashboard by name, case-insensitively.
func (c *Catalog) Get(name string) (Dashboard, bool) {
	if c == nil {
		return Dashboard{}, false
	}
	key := dashboardKey(name)
	if key == "" {
		return Dashboard{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if dashboard, ok := c.loaded[key]; ok {
		return dashboard, true
	}
	dashboard, ok := c.builtins[key]
	return dashboard, ok
}

// Render substitutes args into the named template. Placeholders without a
// value render empty.
func (c *Catalog) Render(name string, args map[string]string) (string, error) {
	dashboard, ok := c.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return dashboard.Render(args)
}

// Render substitutes args into the template and appends the style block.
func (d Dashboard) Render(args map[string]string) (string, error) {
	for _, arg := range d.Arguments {
		if arg.Required && strings.TrimSpace(args[arg.Name]) == "" {
			return "", &MissingArgumentError{Dashboard: d.Name, Argument: arg.Name}
		}
	}

	body := placeholderPattern.ReplaceAllStringFunc(d.Template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return args[key]
	})
	if d.Style == "" {
		return body, nil
	}
	return body + "\n\n<style>\n" + d.Style + "\n</style>\n", nil
}

// LoadErrors returns non-fatal errors seen by the last Load.
func (c *Catalog) LoadErrors() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.loadErrors))
	copy(out, c.loadErrors)
	return out
}

// Load discovers *.md templates under paths, keeping only files inside
// allowedRoots (the paths themselves when empty), and replaces every
// previously loaded dashboard. Files that fail to parse are skipped and
// reported in the returned error.
func (c *Catalog) Load(paths []string, allowedRoots []string) error {
	files, loadErrors := discoverWithPolicy(paths, allowedRoots)
	next := make(map[string]Dashboard, len(files))

	for _, file := range files {
		dashboard, err := ParseFile(file)
		if err != nil {
			loadErrors = append(loadErrors, err.Error())
			continue
		}
		key := dashboardKey(dashboard.Name)
		if _, ok := next[key]; ok {
			loadErrors = append(loadErrors, fmt.Sprintf("duplicate dashboard name %q", dashboard.Name))
			continue
		}
		if _, ok := c.builtins[key]; ok {
			logger.Debug("dashboard overrides built-in", "name", dashboard.Name, "source", file)
		}
		next[key] = dashboard
	}

	c.mu.Lock()
	c.loaded = next
	c.loadErrors = append([]string(nil), loadErrors...)
	c.mu.Unlock()

	logger.Debug("dashboards loaded", "files", len(files), "loaded", len(next), "errors", len(loadErrors))
	if len(loadErrors) == 0 {
		return nil
	}
	return errors.New(strings.Join(loadErrors, "; "))
}

// Snapshots returns deterministic snapshots of the template files Load would read.
func Snapshots(paths []string, allowedRoots []string) ([]FileSnapshot, []string) {
	files, loadErrors := discoverWithPolicy(paths, allowedRoots)
	snapshots := make([]FileSnapshot, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("stat dashboard %s: %v", file, err))
			continue
		}
		sum, err := fileSHA256(file)
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("hash dashboard %s: %v", file, err))
		}
		snapshots = append(snapshots, FileSnapshot{
			Path:            file,
			Size:            info.Size(),
			ModTimeUnixNano: info.ModTime().UnixNano(),
			ContentSHA256:   sum,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Path < snapshots[j].Path
	})
	return snapshots, loadErrors
}

// Fingerprint returns a stable digest of the template files under paths.
// Two equal fingerprints mean a reload would see the same content.
func Fingerprint(paths []string, allowedRoots []string) (string, []string) {
	snapshots, loadErrors := Snapshots(paths, allowedRoots)
	data, err := json.Marshal(snapshots)
	if err != nil {
		return "", append(loadErrors, fmt.Sprintf("marshal dashboard snapshots: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), loadErrors
}

// ParseFile reads and parses one template file.
func ParseFile(file string) (Dashboard, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Dashboard{}, fmt.Errorf("read dashboard %s: %w", file, err)
	}
	return Parse(file, content)
}

// Parse converts markdown with optional YAML frontmatter into a Dashboard.
// The name falls back to the file name without extension.
func Parse(source string, content []byte) (Dashboard, error) {
	header, body, err := splitFrontmatter(string(content))
	if err != nil {
		return Dashboard{}, fmt.Errorf("parse dashboard %s: %w", source, err)
	}

	var meta frontmatter
	if header != "" {
		if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
			return Dashboard{}, fmt.Errorf("parse dashboard %s frontmatter: %w", source, err)
		}
	}

	base := filepath.Base(source)
	name := firstNonEmpty(meta.Name, strings.TrimSuffix(base, filepath.Ext(base)))
	template := strings.TrimSpace(body)
	if template == "" {
		return Dashboard{}, fmt.Errorf("dashboard %s has an empty body", source)
	}

	return Dashboard{
		Name:        name,
		Title:       firstNonEmpty(meta.Title, name),
		Description: firstNonEmpty(meta.Description, fmt.Sprintf("Dashboard loaded from %s", base)),
		Style:       strings.TrimSpace(meta.Style),
		Arguments:   mergeArguments(meta.Arguments, template),
		Template:    template,
		Source:      filepath.Clean(source),
	}, nil
}

func splitFrontmatter(raw string) (string, string, error) {
	normalized := normalizeLineEndings(strings.TrimPrefix(raw, "\ufeff"))
	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", normalized, nil
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", errors.New("unterminated frontmatter")
}

// mergeArguments keeps declared arguments and adds undeclared placeholders
// as optional ones, sorted by name.
func mergeArguments(declared []Argument, template string) []Argument {
	byName := make(map[string]Argument, len(declared))
	for _, arg := range declared {
		name := strings.TrimSpace(arg.Name)
		if name == "" {
			continue
		}
		if _, ok := byName[name]; ok {
			continue
		}
		arg.Name = name
		arg.Description = strings.TrimSpace(arg.Description)
		byName[name] = arg
	}
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := byName[match[1]]; !ok {
			byName[match[1]] = Argument{Name: match[1]}
		}
	}
	if len(byName) == 0 {
		return nil
	}

	out := make([]Argument, 0, len(byName))
	for _, arg := range byName {
		out = append(out, arg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

func discoverWithPolicy(paths []string, allowedRoots []string) ([]string, []string) {
	files := make([]string, 0)
	seen := make(map[string]struct{})
	loadErrors := make([]string, 0)

	roots := normalizePolicyRoots(allowedRoots)
	if len(roots) == 0 {
		roots = normalizePolicyRoots(paths)
	}

	for _, rawPath := range paths {
		discovered, err := discover(rawPath)
		if err != nil {
			loadErrors = append(loadErrors, err.Error())
		}
		for _, file := range discovered {
			canonical := canonicalPath(file)
			if len(roots) > 0 && !withinRoots(canonical, roots) {
				loadErrors = append(loadErrors, fmt.Sprintf("dashboard %s is outside the allowed roots", canonical))
				continue
			}
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			files = append(files, canonical)
		}
	}

	sort.Strings(files)
	return files, loadErrors
}

func discover(rawPath string) ([]string, error) {
	root := strings.TrimSpace(rawPath)
	if root == "" {
		return nil, nil
	}

	root = expandUser(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat dashboard path %s: %w", filepath.Clean(root), err)
	}
	if !info.IsDir() {
		if isTemplateFile(root) {
			return []string{filepath.Clean(root)}, nil
		}
		return nil, nil
	}

	var results []string
	walkErr := filepath.WalkDir(root, func(current string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if current != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isTemplateFile(current) {
			results = append(results, filepath.Clean(current))
		}
		return nil
	})
	if walkErr != nil {
		return results, fmt.Errorf("walk dashboard path %s: %w", filepath.Clean(root), walkErr)
	}
	return results, nil
}

func isTemplateFile(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".md")
}

func normalizePolicyRoots(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, raw := range paths {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		canonical := canonicalPath(expandUser(trimmed))
		if _, ok := seen[canonical]; ok {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	sort.Strings(out)
	return out
}

// canonicalPath resolves symlinks so that root checks cannot be bypassed
// through a link pointing outside an allowed root.
func canonicalPath(p string) string {
	cleaned := filepath.Clean(p)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if resolved, err := filepath.EvalSymlinks(cleaned); err == nil {
		cleaned = resolved
	}
	return filepath.Clean(cleaned)
}

func withinRoots(p string, roots []string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}

func expandUser(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

func fileSHA256(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func normalizeLineEndings(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	return strings.ReplaceAll(input, "\r", "\n")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func dashboardKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
