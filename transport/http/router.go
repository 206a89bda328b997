package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/brevo-mcp-go/tools/types"
	"github.com/slighter12/brevo-mcp-go/transport/shared"
)

const maxJSONRPCBodyBytes = 1 << 20

const (
	headerSessionID       = "MCP-Session-Id"
	headerProtocolVersion = "MCP-Protocol-Version"
)

func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/", s.handleHTTPInfo)
	e.GET("/healthz", s.handleHealth)
	e.GET("/debug/metrics", s.handleMetrics)
	e.POST("/mcp", s.handleStreamableHTTPPost)
	e.GET("/mcp", s.handleStreamableHTTPGet)
	e.DELETE("/mcp", s.handleStreamableHTTPDelete)
	e.OPTIONS("/mcp", s.handleOptions)
}

func (s *Server) handleHTTPInfo(c echo.Context) error {
	info := s.handler.Info()
	return c.JSON(http.StatusOK, map[string]any{
		"name":    info.Name,
		"version": info.Version,
		"capabilities": map[string]any{
			config.TransportStdio:          s.config.TransportEnabled(config.TransportStdio),
			config.TransportStreamableHTTP: true,
		},
		"streamable_http_endpoint": "/mcp",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.handler.Info().Version,
		"sessions": s.sessionManager.Len(),
	})
}

func (s *Server) handleMetrics(c echo.Context) error {
	snapshot, err := s.telemetry.Snapshot(c.Request().Context())
	if err != nil {
		logger.Warn("Failed to collect metrics", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleOptions(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func jsonRPCError(c echo.Context, status int, code jsonrpc.ErrorCode, message string) error {
	return c.JSON(status, jsonrpc.NewErrorResponse(nil, int(code), message, nil))
}

func (s *Server) handleStreamableHTTPPost(c echo.Context) error {
	limitedBody := http.MaxBytesReader(c.Response(), c.Request().Body, maxJSONRPCBodyBytes)
	defer limitedBody.Close()

	body, err := io.ReadAll(limitedBody)
	if err != nil {
		if _, ok := errors.AsType[*http.MaxBytesError](err); ok {
			logger.Warn("Request body too large", "limit_bytes", maxJSONRPCBodyBytes, "remote_addr", c.RealIP())
			return jsonRPCError(c, http.StatusRequestEntityTooLarge, jsonrpc.ErrInvalidRequest, "Request body too large")
		}
		logger.Error("Failed to read request body", "error", err)
		return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrParseError, "Parse error")
	}

	requests, prebuiltResponses, acceptedOneWay, err := shared.ParseJSONRPCFrame(body)
	if err != nil {
		logger.Debug("Rejected JSON-RPC frame", "error", err)
		return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrParseError, "Parse error")
	}
	if len(prebuiltResponses) > 0 {
		return c.JSON(http.StatusBadRequest, prebuiltResponses[0])
	}

	sessionID := c.Request().Header.Get(headerSessionID)
	requestedProtocolVersion := strings.TrimSpace(c.Request().Header.Get(headerProtocolVersion))
	if requestedProtocolVersion != "" && !shared.IsSupportedProtocolVersion(requestedProtocolVersion) {
		return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, "Unsupported MCP-Protocol-Version header")
	}

	isInitialize := len(requests) == 1 && requests[0].Method == mcp.MethodInitialize
	if isInitialize {
		if sessionID != "" && !s.sessionManager.TouchSession(sessionID) {
			return jsonRPCError(c, http.StatusNotFound, jsonrpc.ErrInvalidRequest, "Unknown MCP session")
		}
		if sessionID == "" {
			sessionID = s.sessionManager.CreateSession()
			logger.Debug("Created MCP session", "session_id", sessionID)
		}
	} else {
		if sessionID == "" {
			return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, "Missing MCP-Session-Id header")
		}
		if !s.sessionManager.TouchSession(sessionID) {
			return jsonRPCError(c, http.StatusNotFound, jsonrpc.ErrInvalidRequest, "Unknown MCP session")
		}
		if problem := s.protocolVersionProblem(sessionID, requestedProtocolVersion); problem != "" {
			return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, problem)
		}
	}
	c.Response().Header().Set(headerSessionID, sessionID)

	if acceptedOneWay {
		return c.NoContent(http.StatusAccepted)
	}

	request := requests[0]
	logger.Debug("Streamable HTTP request received", "method", request.Method, "id", request.ID, "session_id", sessionID)
	response := s.handleMessage(c.Request().Context(), request, sessionID)
	if request.IsNotification() || response == nil {
		return c.NoContent(http.StatusAccepted)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) handleStreamableHTTPGet(c echo.Context) error {
	sessionID := c.Request().Header.Get(headerSessionID)
	if handled, err := s.rejectSession(c, sessionID); handled {
		return err
	}
	requestedProtocolVersion := strings.TrimSpace(c.Request().Header.Get(headerProtocolVersion))
	if problem := s.protocolVersionProblem(sessionID, requestedProtocolVersion); problem != "" {
		return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, problem)
	}
	if !acceptsEventStream(c.Request().Header.Get(echo.HeaderAccept)) {
		return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, "Accept header must include text/event-stream")
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return jsonRPCError(c, http.StatusMethodNotAllowed, jsonrpc.ErrInvalidRequest, "SSE stream is not available")
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set(headerSessionID, sessionID)
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	streamCtx, stopStream := context.WithCancel(c.Request().Context())
	defer stopStream()

	transport := NewStreamableHTTPTransport(c.Response().Writer, flusher, stopStream)
	if err := transport.SendComment("stream opened"); err != nil {
		logger.Warn("Failed to write initial SSE comment", "session_id", sessionID, "error", err)
		return nil
	}

	// Bind only once headers and the first frame are out, so notifications
	// never race the stream setup.
	if !s.sessionManager.SetTransport(sessionID, transport) {
		transport.Close()
		logger.Warn("SSE session disappeared before stream binding", "session_id", sessionID)
		return nil
	}
	defer s.sessionManager.ClearTransportIfMatch(sessionID, transport)
	logger.Debug("SSE stream opened", "session_id", sessionID)

	<-streamCtx.Done()
	transport.Close()
	logger.Debug("SSE stream closed", "session_id", sessionID)
	return nil
}

func (s *Server) handleStreamableHTTPDelete(c echo.Context) error {
	sessionID := c.Request().Header.Get(headerSessionID)
	if handled, err := s.rejectSession(c, sessionID); handled {
		return err
	}
	requestedProtocolVersion := strings.TrimSpace(c.Request().Header.Get(headerProtocolVersion))
	if problem := s.protocolVersionProblem(sessionID, requestedProtocolVersion); problem != "" {
		return jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, problem)
	}
	s.sessionManager.RemoveSession(sessionID)
	logger.Debug("MCP session ended", "session_id", sessionID)
	return c.NoContent(http.StatusNoContent)
}

// rejectSession answers requests whose session header is missing or unknown
// and reports whether it did.
func (s *Server) rejectSession(c echo.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return true, jsonRPCError(c, http.StatusBadRequest, jsonrpc.ErrInvalidRequest, "Missing MCP-Session-Id header")
	}
	if !s.sessionManager.HasSession(sessionID) {
		return true, jsonRPCError(c, http.StatusNotFound, jsonrpc.ErrInvalidRequest, "Unknown MCP session")
	}
	return false, nil
}

func (s *Server) handleMessage(ctx context.Context, msg jsonrpc.Request, sessionID string) *jsonrpc.Response {
	switch msg.Method {
	case mcp.MethodInitialize:
		response, version := s.handler.Initialize(msg)
		if version != "" {
			s.sessionManager.SetProtocolVersion(sessionID, version)
		}
		return response
	case mcp.MethodInitialized:
		if !msg.IsNotification() {
			return jsonrpc.NewErrorResponse(msg.ID, int(jsonrpc.ErrInvalidRequest), "Invalid request", nil)
		}
		s.sessionManager.MarkInitialized(sessionID)
		return nil
	default:
		ctx = types.WithMCPContext(ctx, types.MCPContext{
			Transport: config.TransportStreamableHTTP,
			SessionID: sessionID,
		})
		return s.handler.Dispatch(ctx, msg)
	}
}

// protocolVersionProblem checks the MCP-Protocol-Version header against the
// negotiated version. A missing header is tolerated and the negotiated
// version assumed.
func (s *Server) protocolVersionProblem(sessionID, requested string) string {
	if requested == "" {
		return ""
	}
	if !shared.IsSupportedProtocolVersion(requested) {
		return "Unsupported MCP-Protocol-Version header"
	}
	if negotiated, ok := s.sessionManager.GetProtocolVersion(sessionID); ok && negotiated != "" && negotiated != requested {
		return "Invalid MCP-Protocol-Version header"
	}
	return ""
}

func acceptsEventStream(acceptHeader string) bool {
	for part := range strings.SplitSeq(acceptHeader, ",") {
		mime := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.EqualFold(mime, "text/event-stream") || mime == "*/*" {
			return true
		}
	}
	return false
}
