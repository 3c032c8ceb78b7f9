package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
)

// Request is one encoded round trip to the generative backend: the whole
// conversation (system directive first) plus the tool catalog.
type Request struct {
	Messages []*schema.Message
	Tools    []*schema.ToolInfo
}

// Backend sends a request to the generative backend and returns its reply.
// Any returned error is a transport failure, except errno.ErrToolBinding.
type Backend interface {
	Generate(ctx context.Context, req *Request) (*schema.Message, error)
}

// ToolBinder is implemented by backends that can bind the tool catalog once,
// ahead of the first request.
type ToolBinder interface {
	BindTools(tools []*schema.ToolInfo) error
}

// ChatModelBackend adapts an eino tool-calling chat model to Backend.
type ChatModelBackend struct {
	model model.ToolCallingChatModel

	mu    sync.RWMutex
	bound model.ToolCallingChatModel
}

var (
	_ Backend    = (*ChatModelBackend)(nil)
	_ ToolBinder = (*ChatModelBackend)(nil)
)

// NewChatModelBackend creates a ChatModelBackend.
func NewChatModelBackend(cm model.ToolCallingChatModel) *ChatModelBackend {
	return &ChatModelBackend{model: cm}
}

// BindTools binds the catalog used by every later Generate call.
func (b *ChatModelBackend) BindTools(tools []*schema.ToolInfo) error {
	bound, err := b.model.WithTools(tools)
	if err != nil {
		return fmt.Errorf("%w: %v", errno.ErrToolBinding, err)
	}
	b.mu.Lock()
	b.bound = bound
	b.mu.Unlock()
	return nil
}

// Generate performs one generation. Without a prior BindTools the request's
// catalog is bound for this call only.
func (b *ChatModelBackend) Generate(ctx context.Context, req *Request) (*schema.Message, error) {
	b.mu.RLock()
	cm := b.bound
	b.mu.RUnlock()

	if cm == nil {
		cm = b.model
		if len(req.Tools) > 0 {
			bound, err := cm.WithTools(req.Tools)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errno.ErrToolBinding, err)
			}
			cm = bound
		}
	}
	return cm.Generate(ctx, req.Messages)
}
