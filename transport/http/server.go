package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/telemetry"
	"github.com/slighter12/brevo-mcp-go/transport/shared"
)

const (
	sessionSweepSchedule = "@every 1m"
	shutdownTimeout      = 5 * time.Second
)

// Server serves MCP over Streamable HTTP.
type Server struct {
	config         *config.Config
	handler        *shared.Handler
	telemetry      *telemetry.Provider
	sessionManager *SessionManager
	echo           *echo.Echo
	cron           *cron.Cron
}

// NewServer wires routes and the idle-session sweep. provider may be nil.
func NewServer(cfg *config.Config, handler *shared.Handler, provider *telemetry.Provider) (*Server, error) {
	s := &Server{
		config:         cfg,
		handler:        handler,
		telemetry:      provider,
		sessionManager: NewSessionManager(),
		echo:           echo.New(),
		cron:           cron.New(),
	}
	if _, err := s.cron.AddFunc(sessionSweepSchedule, s.sweepSessions); err != nil {
		return nil, err
	}
	s.setupEcho()
	return s, nil
}

func (s *Server) setupEcho() {
	// stdout belongs to the stdio transport when both run.
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("HTTP request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_addr", v.RemoteIP,
			)
			return nil
		},
	}))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, headerSessionID, headerProtocolVersion, "Last-Event-ID"},
		ExposeHeaders: []string{headerSessionID},
	}))
	RegisterRoutes(s.echo, s)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Sessions() *SessionManager {
	return s.sessionManager
}

func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
}

// Run listens until ctx is cancelled, then drains within shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	s.cron.Start()
	defer s.cron.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Streamable HTTP server listening", "address", s.Addr())
		errCh <- s.echo.Start(s.Addr())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	for _, id := range s.sessionManager.SessionIDsWithTransport() {
		s.sessionManager.RemoveSession(id)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down streamable HTTP server")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

func (s *Server) idleTimeout() time.Duration {
	minutes := s.config.Server.SessionIdleMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Server) sweepSessions() {
	if removed := s.sessionManager.CleanupSessions(s.idleTimeout()); removed > 0 {
		logger.Info("Expired idle MCP sessions", "count", removed)
	}
}

// BroadcastCatalogChanged tells every open stream that prompts and resources
// changed. It returns how many sessions were notified.
func (s *Server) BroadcastCatalogChanged() int {
	sent := 0
	for _, sessionID := range s.sessionManager.SessionIDsWithTransport() {
		if s.notifySession(sessionID, mcp.NotificationPromptsListChanged) &&
			s.notifySession(sessionID, mcp.NotificationResourcesListChanged) {
			sent++
		}
	}
	return sent
}

func (s *Server) notifySession(sessionID, method string) bool {
	transport, ok := s.sessionManager.GetTransport(sessionID)
	if !ok {
		return false
	}
	if err := transport.Notify(method, nil); err != nil {
		logger.Warn("Failed to send SSE notification", "session_id", sessionID, "method", method, "error", err)
		s.sessionManager.ClearTransportIfMatch(sessionID, transport)
		return false
	}
	return true
}
