package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced in isError results.
const (
	KindUnknownTool = "unknown_tool"
	KindValidation  = "validation"
	KindRemote      = "remote_api"
	KindTransport   = "transport"
	KindTimeout     = "timeout"
	KindInternal    = "internal"
)

// ToolError marks tool failures that should be surfaced as structured isError payloads.
type ToolError struct {
	Kind    string
	Message string
	Data    map[string]any
	Err     error
}

func (e *ToolError) Error() string {
	if e == nil {
		return "tool error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Kind != "" {
		return fmt.Sprintf("tool error: %s", e.Kind)
	}
	return "tool error"
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(kind, message string, data map[string]any) *ToolError {
	return &ToolError{Kind: kind, Message: message, Data: data}
}

// NewUnknownToolError reports a name missing from the registry.
func NewUnknownToolError(name string) *ToolError {
	return NewToolError(KindUnknownTool, fmt.Sprintf("unknown tool: %s", name), map[string]any{"tool": name})
}

func AsToolError(err error) (*ToolError, bool) {
	if err == nil {
		return nil, false
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr, true
	}
	return nil, false
}

// ValidationError names the argument and the rule it broke.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	field := e.Field
	if field == "" {
		field = "arguments"
	}
	if e.Message == "" {
		return fmt.Sprintf("invalid argument %q: %s", field, e.Rule)
	}
	return fmt.Sprintf("invalid argument %q (%s): %s", field, e.Rule, e.Message)
}

// Validation rules.
const (
	RuleRequired = "required"
	RuleType     = "type"
	RuleEnum     = "enum"
	RuleFormat   = "format"
	RuleSchema   = "schema"
)

func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
