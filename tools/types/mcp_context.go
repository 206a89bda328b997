package types

import (
	"context"
	"strings"
)

// MCPContext carries transport/session metadata into tool execution.
type MCPContext struct {
	Transport string
	SessionID string
}

type mcpContextKey struct{}

// WithMCPContext attaches session metadata to ctx.
func WithMCPContext(ctx context.Context, info MCPContext) context.Context {
	info.SessionID = strings.TrimSpace(info.SessionID)
	return context.WithValue(ctx, mcpContextKey{}, info)
}

// MCPContextFrom returns the metadata attached by WithMCPContext.
func MCPContextFrom(ctx context.Context) MCPContext {
	if ctx == nil {
		return MCPContext{}
	}
	info, _ := ctx.Value(mcpContextKey{}).(MCPContext)
	return info
}
