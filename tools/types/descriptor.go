package types

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Executor runs a tool with validated arguments.
type Executor func(ctx context.Context, args map[string]any) (Output, error)

// Descriptor is the static declaration of one tool. It is built once at
// startup and never mutated.
type Descriptor struct {
	Name        string
	Description string
	Group       string
	InputSchema *Schema
	Execute     Executor
}

// Output is what an executor returns. Summary, when set, is the
// human-readable payload; Data is the structured remote result.
type Output struct {
	Summary string
	Data    json.RawMessage
}

// Result is the uniform envelope returned for every tool call.
type Result struct {
	OK      bool            `json:"ok"`
	Payload any             `json:"payload"`
	IsError bool            `json:"isError"`
	Data    json.RawMessage `json:"-"`
}

// Success wraps an executor output.
func Success(out Output) Result {
	if out.Summary != "" {
		return Result{OK: true, Payload: out.Summary, Data: out.Data}
	}
	data := out.Data
	if len(data) == 0 {
		data = json.RawMessage(`null`)
	}
	return Result{OK: true, Payload: data, Data: data}
}

// Failure wraps an error message.
func Failure(message string) Result {
	return Result{OK: false, Payload: message, IsError: true}
}

// Text renders the payload for text content blocks. Structured payloads are
// indented JSON; errors carry an "Error: " prefix.
func (r Result) Text() string {
	var text string
	switch payload := r.Payload.(type) {
	case string:
		text = payload
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Indent(&buf, payload, "", "  "); err != nil {
			text = string(payload)
		} else {
			text = buf.String()
		}
	case nil:
		text = ""
	default:
		raw, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			text = fmt.Sprint(payload)
		} else {
			text = string(raw)
		}
	}
	if r.IsError {
		return "Error: " + text
	}
	return text
}

// Outcome labels for observations.
const (
	OutcomeOK = "ok"
)

// Observation records one finished tool call.
type Observation struct {
	InvocationID string
	Tool         string
	Transport    string
	SessionID    string
	Outcome      string
	Status       int
	Started      time.Time
	Duration     time.Duration
}

// Validator checks and coerces arguments against a schema.
type Validator interface {
	Validate(schema *Schema, args map[string]any) (map[string]any, error)
}
