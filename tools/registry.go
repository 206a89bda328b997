package tools

import (
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/slighter12/brevo-mcp-go/logger"
	"github.com/slighter12/brevo-mcp-go/mcp"
	"github.com/slighter12/brevo-mcp-go/tools/types"
)

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("duplicate tool name")
	ErrInvalidTool   = errors.New("invalid tool descriptor")
)

func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

// Registry is the immutable, ordered set of tools. It is safe for concurrent
// use because nothing is mutated after NewRegistry returns.
type Registry struct {
	ordered []types.Descriptor
	index   map[string]int
	listing []mcp.Tool
}

// NewRegistry concatenates groups in order. Names must be unique and every
// input schema must resolve.
func NewRegistry(groups ...[]types.Descriptor) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}
	for _, group := range groups {
		for _, desc := range group {
			if err := r.add(desc); err != nil {
				return nil, err
			}
		}
	}
	logger.Debug("Tool registry built", "count", len(r.ordered))
	return r, nil
}

func (r *Registry) add(desc types.Descriptor) error {
	if desc.Name == "" {
		return fmt.Errorf("%w: tool name cannot be empty", ErrInvalidTool)
	}
	if desc.Execute == nil {
		return fmt.Errorf("%w: tool %q has no executor", ErrInvalidTool, desc.Name)
	}
	if _, exists := r.index[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, desc.Name)
	}
	if desc.InputSchema == nil {
		desc.InputSchema = types.Object("")
	}

	schema := desc.InputSchema.JSONSchema()
	if _, err := schema.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true}); err != nil {
		return fmt.Errorf("%w: tool %q: %v", ErrInvalidTool, desc.Name, err)
	}

	r.index[desc.Name] = len(r.ordered)
	r.ordered = append(r.ordered, desc)
	r.listing = append(r.listing, mcp.Tool{
		Name:        desc.Name,
		Description: desc.Description,
		InputSchema: schema,
	})
	return nil
}

// Resolve finds a tool by exact name.
func (r *Registry) Resolve(name string) (types.Descriptor, error) {
	i, ok := r.index[name]
	if !ok {
		return types.Descriptor{}, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return r.ordered[i], nil
}

// All lists the advertised tool definitions in registration order. The
// listing is computed once, so repeated calls serialize identically.
func (r *Registry) All() []mcp.Tool {
	out := make([]mcp.Tool, len(r.listing))
	copy(out, r.listing)
	return out
}

// Descriptors returns the registered descriptors in order.
func (r *Registry) Descriptors() []types.Descriptor {
	out := make([]types.Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *Registry) Len() int {
	return len(r.ordered)
}
