package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slighter12/brevo-mcp-go/mcp"
)

const (
	// DefaultBaseURL is the Brevo v3 REST endpoint.
	DefaultBaseURL = "https://api.brevo.com/v3"

	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"
)

// ErrMissingAPIKey is returned by RequireAPIKey when BREVO_API_KEY is unset.
var ErrMissingAPIKey = errors.New("BREVO_API_KEY environment variable is required")

// Config represents the MCP server configuration
type Config struct {
	Name        string      `json:"name" yaml:"name"`
	Version     string      `json:"version" yaml:"version"`
	Description string      `json:"description" yaml:"description"`
	Server      Server      `json:"server" yaml:"server"`
	Transports  []Transport `json:"transports" yaml:"transports"`
	Logging     Logging     `json:"logging" yaml:"logging"`
	Brevo       Brevo       `json:"brevo" yaml:"brevo"`
	Tools       Tools       `json:"tools" yaml:"tools"`
	Dashboards  Dashboards  `json:"dashboards" yaml:"dashboards"`
	Telemetry   Telemetry   `json:"telemetry" yaml:"telemetry"`
}

// Server represents server configuration
type Server struct {
	Host  string `json:"host" yaml:"host"`
	Port  int    `json:"port" yaml:"port"`
	Debug bool   `json:"debug" yaml:"debug"`
	// SessionIdleMinutes bounds how long an HTTP session survives without traffic.
	SessionIdleMinutes int `json:"session_idle_minutes" yaml:"session_idle_minutes"`
}

// Transport represents a transport configuration
type Transport struct {
	Type    string            `json:"type" yaml:"type"`
	Enabled bool              `json:"enabled" yaml:"enabled"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Logging represents logging configuration
type Logging struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Path       string `json:"path" yaml:"path"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
}

// Brevo holds the remote API settings. The API key only ever comes from the
// environment and is never serialized.
type Brevo struct {
	APIKey         string `json:"-" yaml:"-"`
	BaseURL        string `json:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the per-request bound, zero meaning none.
func (b Brevo) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Tools controls which tool groups are registered and how they are named.
type Tools struct {
	Prefix string   `json:"prefix" yaml:"prefix"`
	Groups []string `json:"groups" yaml:"groups"`
}

// Dashboards configures the dashboard template catalog.
type Dashboards struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	Paths        []string `json:"paths" yaml:"paths"`
	AllowedRoots []string `json:"allowed_roots" yaml:"allowed_roots"`
	Watch        bool     `json:"watch" yaml:"watch"`
}

// Telemetry configures OpenTelemetry export.
type Telemetry struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	ServiceName  string `json:"service_name" yaml:"service_name"`
	OTLPEndpoint string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	Insecure     bool   `json:"insecure" yaml:"insecure"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &Config{
		Name:        "brevo-mcp-go",
		Version:     "0.1.0",
		Description: "Model Context Protocol server for the Brevo API",
		Server: Server{
			Host:               "localhost",
			Port:               9080,
			Debug:              false,
			SessionIdleMinutes: 30,
		},
		Transports: []Transport{
			{
				Type:    TransportStdio,
				Enabled: true,
			},
			{
				Type:    TransportStreamableHTTP,
				Enabled: false,
				URL:     "http://localhost:9080/mcp",
				Headers: map[string]string{
					"Accept":               "application/json, text/event-stream",
					"Content-Type":         "application/json",
					"MCP-Protocol-Version": mcp.ProtocolVersion,
				},
			},
		},
		Logging: Logging{
			Level:      "info",
			Format:     "json",
			Path:       filepath.Join(home, ".brevo-mcp", "logs", "mcp.log"),
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
		Brevo: Brevo{
			BaseURL: DefaultBaseURL,
		},
		Tools: Tools{
			Groups: []string{},
		},
		Dashboards: Dashboards{
			Enabled:      true,
			Paths:        []string{},
			AllowedRoots: []string{},
			Watch:        false,
		},
		Telemetry: Telemetry{
			Enabled:     true,
			ServiceName: "brevo-mcp-go",
		},
	}
}

// LoadConfig loads the configuration from a file. An empty path or a missing
// file yields the defaults with environment overrides applied.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// Override with environment variables (highest priority).
	applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// SaveConfig saves the configuration to a file
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Brevo.APIKey = strings.TrimSpace(os.Getenv("BREVO_API_KEY"))

	if baseURL := os.Getenv("BREVO_BASE_URL"); baseURL != "" {
		cfg.Brevo.BaseURL = baseURL
	}

	if timeout := os.Getenv("BREVO_TIMEOUT_SECONDS"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil {
			cfg.Brevo.TimeoutSeconds = parsed
		} else {
			log.Printf("warning: ignoring invalid BREVO_TIMEOUT_SECONDS value %q: %v", timeout, err)
		}
	}

	if portStr := os.Getenv("MCP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("warning: ignoring invalid MCP_PORT value %q: %v", portStr, err)
		}
	}

	if host := os.Getenv("MCP_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if debug := os.Getenv("MCP_DEBUG"); debug != "" {
		if parsed, err := strconv.ParseBool(debug); err == nil {
			cfg.Server.Debug = parsed
		} else {
			log.Printf("warning: ignoring invalid MCP_DEBUG value %q: %v", debug, err)
		}
	}

	if logLevel := os.Getenv("MCP_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("MCP_LOG_FORMAT"); logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if logPath := os.Getenv("MCP_LOG_PATH"); logPath != "" {
		cfg.Logging.Path = logPath
	}

	if transports := os.Getenv("MCP_TRANSPORTS"); transports != "" {
		enabled := map[string]bool{}
		for _, name := range parseCSV(transports) {
			enabled[strings.ToLower(name)] = true
		}
		for i := range cfg.Transports {
			cfg.Transports[i].Enabled = enabled[strings.ToLower(cfg.Transports[i].Type)]
		}
	}

	if prefix := os.Getenv("MCP_TOOL_PREFIX"); prefix != "" {
		cfg.Tools.Prefix = prefix
	}

	if groups := os.Getenv("MCP_TOOL_GROUPS"); groups != "" {
		cfg.Tools.Groups = parseCSV(groups)
	}

	if paths := os.Getenv("MCP_DASHBOARD_PATHS"); paths != "" {
		cfg.Dashboards.Paths = parseCSV(paths)
	}

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Telemetry.OTLPEndpoint = endpoint
	}
}

// Normalize canonicalizes config values so downstream validation and runtime
// logic operate on stable representations.
func (c *Config) Normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.SessionIdleMinutes <= 0 {
		c.Server.SessionIdleMinutes = 30
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
	c.Brevo.BaseURL = strings.TrimRight(strings.TrimSpace(c.Brevo.BaseURL), "/")
	if c.Brevo.BaseURL == "" {
		c.Brevo.BaseURL = DefaultBaseURL
	}
	c.Tools.Prefix = strings.TrimSpace(c.Tools.Prefix)
	for i, group := range c.Tools.Groups {
		c.Tools.Groups[i] = strings.ToLower(strings.TrimSpace(group))
	}
	c.Dashboards.Paths = normalizePaths(c.Dashboards.Paths)
	c.Dashboards.AllowedRoots = normalizePaths(c.Dashboards.AllowedRoots)
	c.Telemetry.ServiceName = strings.TrimSpace(c.Telemetry.ServiceName)
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	c.Telemetry.OTLPEndpoint = strings.TrimSpace(c.Telemetry.OTLPEndpoint)
	for i := range c.Transports {
		c.Transports[i].Type = strings.ToLower(strings.TrimSpace(c.Transports[i].Type))
		c.Transports[i].URL = strings.TrimSpace(c.Transports[i].URL)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid port number")
	}

	if c.Server.Host == "" {
		return errors.New("host cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return errors.New("log rotation bounds cannot be negative")
	}

	parsed, err := url.Parse(c.Brevo.BaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid brevo base url %q", c.Brevo.BaseURL)
	}

	if c.Brevo.TimeoutSeconds < 0 {
		return errors.New("brevo timeout cannot be negative")
	}

	if len(c.Transports) == 0 {
		return errors.New("at least one transport must be enabled")
	}

	validTransportTypes := map[string]bool{
		TransportStdio:          true,
		TransportStreamableHTTP: true,
	}

	enabledTransports := 0
	for _, t := range c.Transports {
		if !validTransportTypes[t.Type] {
			return fmt.Errorf("invalid transport type: %s", t.Type)
		}
		if t.Enabled {
			enabledTransports++
		}
	}

	if enabledTransports == 0 {
		return errors.New("at least one transport must be enabled")
	}

	return nil
}

// RequireAPIKey reports ErrMissingAPIKey when no key was supplied.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Brevo.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// TransportEnabled reports whether the named transport is switched on.
func (c *Config) TransportEnabled(kind string) bool {
	for _, t := range c.Transports {
		if t.Type == kind {
			return t.Enabled
		}
	}
	return false
}

// ResolveConfigPath returns the path that should be used for configuration.
// The returned path may not exist; LoadConfig treats that as defaults.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("MCP_CONFIG_PATH")); path != "" {
		return path, nil
	}

	for _, candidate := range []string{"config/mcp_config.yaml", "config/mcp_config.yml", "config/mcp_config.json"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	yamlPath := filepath.Join(home, ".brevo-mcp", "config.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath, nil
	}
	return filepath.Join(home, ".brevo-mcp", "config.json"), nil
}

// EnsureDefaultConfig creates a default config file if one does not exist.
func EnsureDefaultConfig(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	return SaveConfig(NewConfig(), path)
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := map[string]struct{}{}
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		cleaned := filepath.Clean(trimmed)
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}
