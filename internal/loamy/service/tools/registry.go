// Package tools holds the catalog of tools the generative backend may call.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
)

// Handler implements a tool. It receives arguments that already passed
// validation against the tool's signature, numbers normalized to float64.
type Handler func(ctx context.Context, args Arguments) (entity.ToolResult, error)

// Tool pairs a signature with its implementation.
type Tool struct {
	Signature entity.ToolSignature
	Handler   Handler
}

// Registry is the fixed tool catalog. Registration happens at startup and is
// closed by Freeze; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[entity.ToolID]Tool
	order  []entity.ToolID
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[entity.ToolID]Tool),
	}
}

// Register adds a tool. Returns an error for unknown identifiers, duplicate
// names, malformed signatures or when the registry is frozen.
func (r *Registry) Register(sig entity.ToolSignature, handler Handler) error {
	if err := validateSignature(sig); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: tool %s has no handler", errno.ErrInvalidSignature, sig.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", sig.Name, errno.ErrRegistryFrozen)
	}
	if _, ok := r.tools[sig.Name]; ok {
		return fmt.Errorf("register %s: %w", sig.Name, errno.ErrToolExists)
	}

	params := make([]entity.Parameter, len(sig.Parameters))
	copy(params, sig.Parameters)
	sig.Parameters = params

	r.tools[sig.Name] = Tool{Signature: sig, Handler: handler}
	r.order = append(r.order, sig.Name)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(sig entity.ToolSignature, handler Handler) {
	if err := r.Register(sig, handler); err != nil {
		panic(err)
	}
}

// Freeze closes the registry for further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[entity.ToolID(name)]
	return t, ok
}

// DescribeAll returns the catalog in registration order.
func (r *Registry) DescribeAll() []entity.ToolSignature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.ToolSignature, 0, len(r.order))
	for _, id := range r.order {
		sig := r.tools[id].Signature
		params := make([]entity.Parameter, len(sig.Parameters))
		copy(params, sig.Parameters)
		sig.Parameters = params
		out = append(out, sig)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ToolInfos renders the catalog in the backend's tool schema.
func ToolInfos(catalog []entity.ToolSignature) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(catalog))
	for _, sig := range catalog {
		params := make(map[string]*schema.ParameterInfo, len(sig.Parameters))
		for _, p := range sig.Parameters {
			params[p.Name] = &schema.ParameterInfo{
				Type:     toSchemaDataType(p.Type),
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        sig.Name.String(),
			Desc:        sig.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func toSchemaDataType(t entity.ParamType) schema.DataType {
	switch t {
	case entity.ParamNumber:
		return schema.Number
	case entity.ParamBoolean:
		return schema.Boolean
	default:
		return schema.String
	}
}

func validateSignature(sig entity.ToolSignature) error {
	if sig.Name == "" {
		return fmt.Errorf("%w: empty tool name", errno.ErrInvalidSignature)
	}
	if !sig.Name.IsKnown() {
		return fmt.Errorf("%w: %q", errno.ErrUnknownToolID, sig.Name)
	}
	seen := make(map[string]struct{}, len(sig.Parameters))
	for _, p := range sig.Parameters {
		if p.Name == "" {
			return fmt.Errorf("%w: tool %s has an unnamed parameter", errno.ErrInvalidSignature, sig.Name)
		}
		if !p.Type.Valid() {
			return fmt.Errorf("%w: tool %s parameter %s has unsupported type %q", errno.ErrInvalidSignature, sig.Name, p.Name, p.Type)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: tool %s declares parameter %s twice", errno.ErrInvalidSignature, sig.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
