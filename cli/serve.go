package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/logger"
	httptransport "github.com/slighter12/brevo-mcp-go/transport/http"
	"github.com/slighter12/brevo-mcp-go/transport/stdio"
)

const (
	reloadDebounce  = 250 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over the enabled transports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, version)
		},
	}
	cmd.Flags().StringSlice("transport", nil, "Transports to enable, overriding the config: stdio, streamable_http")
	cmd.Flags().Int("port", 0, "Streamable HTTP listen port")
	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}
	if err := requireAPIKey(cfg); err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, configPath, version)
	if err != nil {
		return exitError(exitRuntime, "Error: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Close(shutdownCtx)
	}()

	r := &reloader{app: a}
	g, gctx := errgroup.WithContext(ctx)

	if cfg.TransportEnabled(config.TransportStreamableHTTP) {
		server, err := httptransport.NewServer(cfg, a.handler, a.telemetry)
		if err != nil {
			return exitError(exitRuntime, "Error: %v", err)
		}
		r.http = server
		g.Go(func() error {
			return server.Run(gctx)
		})
	}
	if cfg.TransportEnabled(config.TransportStdio) {
		server := stdio.NewStdioServer(a.handler)
		r.stdio = server
		g.Go(func() error {
			err := server.Run(gctx)
			// A closed stdin ends the process even when HTTP is also up.
			stop()
			return err
		})
	}
	g.Go(func() error {
		return r.onHangup(gctx)
	})
	if watcher, err := r.watch(); err != nil {
		logger.Warn("Config watching disabled", "error", err)
	} else if watcher != nil {
		defer watcher.Close()
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logger.Warn("Config watcher stopped", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		return exitError(exitRuntime, "Error: %v", err)
	}
	logger.Info("Server stopped")
	return nil
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Lookup("transport") == nil {
		return nil
	}
	if cmd.Flags().Changed("transport") {
		enabled, _ := cmd.Flags().GetStringSlice("transport")
		want := map[string]bool{}
		for _, name := range enabled {
			want[name] = true
		}
		for i := range cfg.Transports {
			cfg.Transports[i].Enabled = want[cfg.Transports[i].Type]
			delete(want, cfg.Transports[i].Type)
		}
		for name := range want {
			return exitError(exitRuntime, "Error: unknown transport %q", name)
		}
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if err := cfg.Validate(); err != nil {
		return exitError(exitRuntime, "Error: %v", err)
	}
	return nil
}
