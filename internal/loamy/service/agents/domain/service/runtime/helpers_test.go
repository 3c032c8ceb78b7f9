package runtime

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// scriptedBackend replays replies in order and records every request.
type scriptedBackend struct {
	mu       sync.Mutex
	replies  []func(ctx context.Context, req *Request) (*schema.Message, error)
	requests []*Request
}

func (b *scriptedBackend) Generate(ctx context.Context, req *Request) (*schema.Message, error) {
	b.mu.Lock()
	n := len(b.requests)
	b.requests = append(b.requests, req)
	b.mu.Unlock()
	if n >= len(b.replies) {
		return textReply("out of script"), nil
	}
	return b.replies[n](ctx, req)
}

func (b *scriptedBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *scriptedBackend) then(msg *schema.Message) *scriptedBackend {
	b.replies = append(b.replies, func(context.Context, *Request) (*schema.Message, error) {
		return msg, nil
	})
	return b
}

func (b *scriptedBackend) thenFunc(fn func(ctx context.Context, req *Request) (*schema.Message, error)) *scriptedBackend {
	b.replies = append(b.replies, fn)
	return b
}

func textReply(text string) *schema.Message {
	return schema.AssistantMessage(text, nil)
}

func toolCallReply(name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-" + name,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}
