// Package stdio serves MCP over stdin/stdout using the official Go SDK.
// Tool, resource and prompt semantics come from the shared handler so both
// transports answer identically.
package stdio

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/slighter12/brevo-mcp-go/config"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/resources"
	"github.com/slighter12/brevo-mcp-go/tools/types"
	"github.com/slighter12/brevo-mcp-go/transport/shared"
)

// StdioServer bridges the shared handler onto an SDK server.
type StdioServer struct {
	handler *shared.Handler
	server  *sdk.Server

	mu        sync.Mutex
	prompts   []string
	resources []string
}

// NewStdioServer registers every tool, resource and prompt of handler.
func NewStdioServer(handler *shared.Handler) *StdioServer {
	info := handler.Info()
	s := &StdioServer{
		handler: handler,
		server: sdk.NewServer(
			&sdk.Implementation{Name: info.Name, Title: info.Title, Version: info.Version},
			&sdk.ServerOptions{
				Instructions: shared.Instructions,
				Logger:       logger.Slog(),
			},
		),
	}
	for _, tool := range handler.Tools() {
		s.server.AddTool(&sdk.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema,
		}, s.callTool)
	}
	s.Sync()
	return s
}

// Server exposes the SDK server, used by tests to connect in memory.
func (s *StdioServer) Server() *sdk.Server {
	return s.server
}

// Run serves stdin/stdout until the client disconnects or ctx ends.
func (s *StdioServer) Run(ctx context.Context) error {
	logger.Info("Stdio transport ready", "tools", len(s.handler.Tools()))
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Sync re-registers resources and prompts after the dashboard catalog
// changed. The SDK notifies connected clients of the new lists.
func (s *StdioServer) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.prompts) > 0 {
		s.server.RemovePrompts(s.prompts...)
	}
	s.prompts = s.prompts[:0]
	for _, prompt := range s.handler.Prompts() {
		s.server.AddPrompt(toSDKPrompt(prompt), s.getPrompt)
		s.prompts = append(s.prompts, prompt.Name)
	}

	if len(s.resources) > 0 {
		s.server.RemoveResources(s.resources...)
	}
	s.resources = s.resources[:0]
	for _, resource := range s.handler.Resources() {
		s.server.AddResource(&sdk.Resource{
			URI:         resource.URI,
			Name:        resource.Name,
			Description: resource.Description,
			MIMEType:    resource.MIMEType,
		}, s.readResource)
		s.resources = append(s.resources, resource.URI)
	}
}

func (s *StdioServer) callTool(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
	info := types.MCPContext{Transport: config.TransportStdio}
	if req.Session != nil {
		info.SessionID = req.Session.ID()
	}
	ctx = types.WithMCPContext(ctx, info)

	result := s.handler.CallTool(ctx, req.Params.Name, req.Params.Arguments)
	out := &sdk.CallToolResult{IsError: result.IsError}
	for _, content := range result.Content {
		out.Content = append(out.Content, &sdk.TextContent{Text: content.Text})
	}
	if len(result.StructuredContent) > 0 {
		out.StructuredContent = json.RawMessage(result.StructuredContent)
	}
	return out, nil
}

func (s *StdioServer) readResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	contents, err := s.handler.ReadResource(ctx, uri)
	if errors.Is(err, resources.ErrNotFound) {
		return nil, sdk.ResourceNotFoundError(uri)
	}
	if err != nil {
		logger.Warn("Resource read failed", "uri", uri, "error", err)
		return nil, err
	}
	return &sdk.ReadResourceResult{Contents: []*sdk.ResourceContents{{
		URI:      contents.URI,
		MIMEType: contents.MIMEType,
		Text:     contents.Text,
	}}}, nil
}

func (s *StdioServer) getPrompt(_ context.Context, req *sdk.GetPromptRequest) (*sdk.GetPromptResult, error) {
	result, err := s.handler.GetPrompt(req.Params.Name, req.Params.Arguments)
	if err != nil {
		return nil, err
	}
	out := &sdk.GetPromptResult{Description: result.Description}
	for _, message := range result.Messages {
		out.Messages = append(out.Messages, &sdk.PromptMessage{
			Role:    sdk.Role(message.Role),
			Content: &sdk.TextContent{Text: message.Content.Text},
		})
	}
	return out, nil
}

func toSDKPrompt(p mcp.Prompt) *sdk.Prompt {
	prompt := &sdk.Prompt{Name: p.Name, Title: p.Title, Description: p.Description}
	for _, arg := range p.Arguments {
		prompt.Arguments = append(prompt.Arguments, &sdk.PromptArgument{
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	return prompt
}
