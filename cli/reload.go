package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/dashboards"
	"github.com/slighter12/brevo-mcp-go/logger"
	httptransport "github.com/slighter12/brevo-mcp-go/transport/http"
	"github.com/slighter12/brevo-mcp-go/transport/stdio"
)

// reloader applies config and dashboard template edits to a running server.
// Only the log level and the dashboard settings are hot; everything else
// needs a restart.
type reloader struct {
	app   *app
	http  *httptransport.Server
	stdio *stdio.StdioServer

	mu          sync.Mutex
	fingerprint string
}

// watch starts the file watcher. It returns nil when there is nothing to
// watch.
func (r *reloader) watch() (*config.Watcher, error) {
	cfg := r.app.config
	watchDashboards := cfg.Dashboards.Enabled && cfg.Dashboards.Watch && len(cfg.Dashboards.Paths) > 0
	_, statErr := os.Stat(r.app.configPath)
	watchConfig := r.app.configPath != "" && statErr == nil
	if !watchDashboards && !watchConfig {
		return nil, nil
	}

	r.fingerprint, _ = dashboards.Fingerprint(cfg.Dashboards.Paths, cfg.Dashboards.AllowedRoots)

	watcher, err := config.NewWatcher(reloadDebounce, r.onChange)
	if err != nil {
		return nil, err
	}
	if watchConfig {
		if err := watcher.AddFile(r.app.configPath); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	if watchDashboards {
		for _, dir := range cfg.Dashboards.Paths {
			if err := watcher.AddDir(dir); err != nil {
				logger.Warn("Cannot watch dashboard directory", "path", dir, "error", err)
			}
		}
	}
	logger.Debug("Watching for changes", "config", watchConfig, "dashboards", watchDashboards)
	return watcher, nil
}

// onHangup reloads on SIGHUP until ctx ends.
func (r *reloader) onHangup(ctx context.Context) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			logger.Info("SIGHUP received, reloading")
			r.reloadConfig()
			r.reloadDashboards(true)
		}
	}
}

func (r *reloader) onChange(path string) {
	if sameFile(path, r.app.configPath) {
		r.reloadConfig()
	}
	r.reloadDashboards(false)
}

func (r *reloader) reloadConfig() {
	if r.app.configPath == "" {
		return
	}
	next, err := config.LoadConfig(r.app.configPath)
	if err != nil {
		logger.Warn("Ignoring invalid config change", "path", r.app.configPath, "error", err)
		return
	}

	r.mu.Lock()
	cfg := r.app.config
	cfg.Logging.Level = next.Logging.Level
	cfg.Dashboards.Paths = next.Dashboards.Paths
	cfg.Dashboards.AllowedRoots = next.Dashboards.AllowedRoots
	r.mu.Unlock()

	logger.SetLevel(logger.GetLevelFromString(next.Logging.Level))
	logger.Info("Configuration reloaded", "path", r.app.configPath, "log_level", next.Logging.Level)
}

// reloadDashboards reloads templates when their files changed, or always when
// force is set, and notifies connected clients.
func (r *reloader) reloadDashboards(force bool) {
	if r.app.dashboards == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := r.app.config.Dashboards.Paths
	roots := r.app.config.Dashboards.AllowedRoots
	fingerprint, _ := dashboards.Fingerprint(paths, roots)
	if !force && fingerprint == r.fingerprint {
		return
	}
	r.fingerprint = fingerprint

	if err := r.app.dashboards.Load(paths, roots); err != nil {
		logger.Warn("Dashboard templates reloaded with warnings",
			"warnings", summarizeLoadErrors(r.app.dashboards.LoadErrors(), 5))
	}

	notified := 0
	if r.http != nil {
		notified = r.http.BroadcastCatalogChanged()
	}
	if r.stdio != nil {
		r.stdio.Sync()
	}
	logger.Info("Dashboards reloaded", "count", r.app.dashboards.Len(), "notified_sessions", notified)
}

func summarizeLoadErrors(loadErrors []string, limit int) []string {
	if limit <= 0 || len(loadErrors) <= limit {
		return append([]string(nil), loadErrors...)
	}
	out := append([]string(nil), loadErrors[:limit]...)
	return append(out, fmt.Sprintf("... %d more warning(s)", len(loadErrors)-limit))
}

func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
