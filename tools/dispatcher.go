package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/slighter12/brevo-mcp-go/brevo"
	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/tools/types"
)

// Observer is notified around every dispatched call. Start may return a
// derived context that is passed to the executor and to Finish.
type Observer interface {
	Start(ctx context.Context, obs types.Observation) context.Context
	Finish(ctx context.Context, obs types.Observation)
}

// Dispatcher resolves, validates and executes tool calls. It never returns
// an error: every failure becomes an isError result.
type Dispatcher struct {
	registry  *Registry
	validator types.Validator
	observers []Observer
	now       func() time.Time
}

type DispatcherOption func(*Dispatcher)

func WithValidator(v types.Validator) DispatcherOption {
	return func(d *Dispatcher) {
		d.validator = v
	}
}

func WithObserver(o Observer) DispatcherOption {
	return func(d *Dispatcher) {
		if o != nil {
			d.observers = append(d.observers, o)
		}
	}
}

func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry:  registry,
		validator: NewValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// CallJSON decodes raw arguments and dispatches. Empty or null arguments
// mean no arguments.
func (d *Dispatcher) CallJSON(ctx context.Context, name string, raw json.RawMessage) types.Result {
	var args map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return d.dispatch(ctx, name, nil, &types.ValidationError{Rule: types.RuleType, Message: "arguments must be a JSON object"})
		}
	}
	return d.dispatch(ctx, name, args, nil)
}

// Call dispatches one tool call with decoded arguments.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) types.Result {
	return d.dispatch(ctx, name, args, nil)
}

// dispatch runs the call. decodeErr, when set, short-circuits the call after
// resolution so the failure is observed like any other.
func (d *Dispatcher) dispatch(ctx context.Context, name string, args map[string]any, decodeErr error) (result types.Result) {
	info := types.MCPContextFrom(ctx)
	obs := types.Observation{
		InvocationID: uuid.NewString(),
		Tool:         name,
		Transport:    info.Transport,
		SessionID:    info.SessionID,
		Started:      d.now(),
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "Tool panicked", "tool", name, "invocation", obs.InvocationID, "panic", recovered)
			result = d.fail(&types.ToolError{Kind: types.KindInternal, Message: fmt.Sprintf("internal error in tool %s", name)}, &obs)
		}
		obs.Duration = d.now().Sub(obs.Started)
		for _, o := range d.observers {
			finishObserver(ctx, o, obs)
		}
	}()
	for _, o := range d.observers {
		ctx = startObserver(ctx, o, obs)
	}

	desc, err := d.registry.Resolve(name)
	if err != nil {
		return d.fail(types.NewUnknownToolError(name), &obs)
	}
	if decodeErr != nil {
		return d.fail(decodeErr, &obs)
	}

	validated, err := d.validator.Validate(desc.InputSchema, args)
	if err != nil {
		return d.fail(err, &obs)
	}

	logger.DebugContext(ctx, "Executing tool", "tool", name, "invocation", obs.InvocationID, "transport", info.Transport)
	out, err := desc.Execute(ctx, validated)
	if err != nil {
		return d.fail(err, &obs)
	}

	obs.Outcome = types.OutcomeOK
	logger.DebugContext(ctx, "Tool finished", "tool", name, "invocation", obs.InvocationID)
	return types.Success(out)
}

// startObserver runs o.Start, keeping ctx when the observer panics.
func startObserver(ctx context.Context, o Observer, obs types.Observation) (out context.Context) {
	out = ctx
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "Observer panicked on start", "tool", obs.Tool, "invocation", obs.InvocationID, "panic", recovered)
		}
	}()
	if next := o.Start(ctx, obs); next != nil {
		out = next
	}
	return out
}

func finishObserver(ctx context.Context, o Observer, obs types.Observation) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "Observer panicked on finish", "tool", obs.Tool, "invocation", obs.InvocationID, "panic", recovered)
		}
	}()
	o.Finish(ctx, obs)
}

func (d *Dispatcher) fail(err error, obs *types.Observation) types.Result {
	kind, message, status := classify(err)
	obs.Outcome = kind
	obs.Status = status

	logArgs := []any{"tool", obs.Tool, "invocation", obs.InvocationID, "kind", kind, "error", message}
	if kind == types.KindInternal {
		logger.Error("Tool call failed", logArgs...)
	} else {
		logger.Warn("Tool call failed", logArgs...)
	}

	result := types.Failure(message)
	detail := map[string]any{"kind": kind, "message": message}
	if status != 0 {
		detail["status"] = status
	}
	if apiErr, ok := brevo.AsAPIError(err); ok && apiErr.Code != "" {
		detail["code"] = apiErr.Code
	}
	if raw, marshalErr := json.Marshal(map[string]any{"error": detail}); marshalErr == nil {
		result.Data = raw
	}
	return result
}

// classify maps an execution error onto a result kind and message.
func classify(err error) (kind, message string, status int) {
	if validationErr, ok := types.AsValidationError(err); ok {
		return types.KindValidation, validationErr.Error(), 0
	}
	if apiErr, ok := brevo.AsAPIError(err); ok {
		switch apiErr.Kind {
		case brevo.KindTimeout:
			return types.KindTimeout, apiErr.Error(), apiErr.Status
		case brevo.KindTransport:
			return types.KindTransport, apiErr.Error(), apiErr.Status
		default:
			return types.KindRemote, apiErr.Error(), apiErr.Status
		}
	}
	if toolErr, ok := types.AsToolError(err); ok {
		kind := toolErr.Kind
		if kind == "" {
			kind = types.KindInternal
		}
		return kind, toolErr.Error(), 0
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.KindTimeout, err.Error(), 0
	}
	if errors.Is(err, context.Canceled) {
		return types.KindTransport, err.Error(), 0
	}
	return types.KindInternal, err.Error(), 0
}
