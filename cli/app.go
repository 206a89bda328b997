package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/dashboards"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/resources"
	"github.com/slighter12/brevo-mcp-go/telemetry"
	"github.com/slighter12/brevo-mcp-go/tools"
	"github.com/slighter12/brevo-mcp-go/transport/shared"
)

const apiKeyHint = "Set it before starting the server, for example: export BREVO_API_KEY=xkeysib-..."

// app holds everything one process serves.
type app struct {
	config     *config.Config
	configPath string
	client     *brevo.Client
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	dashboards *dashboards.Catalog
	resources  *resources.Catalog
	telemetry  *telemetry.Provider
	handler    *shared.Handler
}

// loadConfig resolves the config path from --config or the defaults and
// applies --log-level.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if strings.TrimSpace(path) == "" {
		resolved, err := config.ResolveConfigPath()
		if err != nil {
			return nil, "", exitError(exitRuntime, "Error: %v", err)
		}
		path = resolved
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, "", exitError(exitRuntime, "Error: %v", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	return cfg, path, nil
}

func requireAPIKey(cfg *config.Config) error {
	if err := cfg.RequireAPIKey(); err != nil {
		return exitError(exitRuntime, "Error: %v\n%s", err, apiKeyHint)
	}
	return nil
}

func initLogging(cfg *config.Config) error {
	rotation := logger.DefaultRotation
	if cfg.Logging.MaxSizeMB > 0 {
		rotation.MaxSizeMB = cfg.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups > 0 {
		rotation.MaxBackups = cfg.Logging.MaxBackups
	}
	level := logger.GetLevelFromString(cfg.Logging.Level)
	if cfg.Server.Debug {
		level = logger.GetLevelFromString("debug")
	}
	if err := logger.InitWithRotation(level, logger.Format(cfg.Logging.Format), rotation, cfg.Logging.Path); err != nil {
		return exitError(exitRuntime, "Error: failed to initialize logger: %v", err)
	}
	return nil
}

// newApp builds the client, catalogs and handler. The config must carry an
// API key.
func newApp(ctx context.Context, cfg *config.Config, configPath, version string) (*app, error) {
	client, err := brevo.NewClient(cfg.Brevo.APIKey,
		brevo.WithBaseURL(cfg.Brevo.BaseURL),
		brevo.WithTimeout(cfg.Brevo.Timeout()),
		brevo.WithUserAgent(cfg.Name+"/"+version),
	)
	if err != nil {
		return nil, err
	}

	registry, err := tools.NewCatalog(client, tools.Selection{Prefix: cfg.Tools.Prefix, Groups: cfg.Tools.Groups})
	if err != nil {
		return nil, err
	}

	provider, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	var opts []tools.DispatcherOption
	if observer := provider.Observer(); observer != nil {
		opts = append(opts, tools.WithObserver(observer))
	}
	dispatcher := tools.NewDispatcher(registry, opts...)

	a := &app{
		config:     cfg,
		configPath: configPath,
		client:     client,
		registry:   registry,
		dispatcher: dispatcher,
		telemetry:  provider,
	}
	if cfg.Dashboards.Enabled {
		catalog, err := dashboards.NewCatalog()
		if err != nil {
			return nil, err
		}
		if err := catalog.Load(cfg.Dashboards.Paths, cfg.Dashboards.AllowedRoots); err != nil {
			logger.Warn("Dashboard templates loaded with warnings", "error", err)
		}
		a.dashboards = catalog
	}
	a.resources = resources.NewCatalog(client, a.dashboards)
	a.handler = shared.NewHandler(
		mcp.Implementation{Name: cfg.Name, Title: "Brevo MCP", Version: version},
		dispatcher,
		a.resources,
		a.dashboards,
	)

	logger.Info("Brevo MCP ready",
		"tools", registry.Len(),
		"groups", describeGroups(cfg.Tools.Groups),
		"dashboards", a.dashboards.Len(),
		"base_url", client.BaseURL(),
		"telemetry", provider.Enabled(),
	)
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.telemetry.Shutdown(ctx); err != nil {
		logger.Warn("Telemetry shutdown failed", "error", err)
	}
}

func describeGroups(groups []string) string {
	if len(groups) == 0 {
		return "all"
	}
	return fmt.Sprint(groups)
}
