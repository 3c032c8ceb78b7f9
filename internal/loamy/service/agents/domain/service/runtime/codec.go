package runtime

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/kiosk404/loamy/pkg/utils/json"
)

// DecodedKind tags the interpretation of one backend reply.
type DecodedKind int

const (
	DecodedText DecodedKind = iota + 1
	DecodedToolCall
)

// Decoded is a backend reply reduced to either text or a single tool call.
type Decoded struct {
	Kind DecodedKind

	// Text is set for DecodedText.
	Text string

	// CallID, ToolName and Arguments are set for DecodedToolCall.
	CallID    string
	ToolName  string
	Arguments map[string]interface{}
}

// TurnCodec translates between conversations and the backend wire format.
type TurnCodec struct{}

// NewTurnCodec creates a TurnCodec.
func NewTurnCodec() *TurnCodec { return &TurnCodec{} }

// EncodeRequest serializes the directive, every turn in order and the tool
// catalog into a backend request.
func (c *TurnCodec) EncodeRequest(conv *entity.Conversation, catalog []entity.ToolSignature, directive string) (*Request, error) {
	turns := conv.Turns()
	msgs := make([]*schema.Message, 0, len(turns)+1)
	if directive != "" {
		msgs = append(msgs, schema.SystemMessage(directive))
	}
	for i, t := range turns {
		m, err := encodeTurn(t)
		if err != nil {
			return nil, fmt.Errorf("encode turn %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return &Request{
		Messages: msgs,
		Tools:    tools.ToolInfos(catalog),
	}, nil
}

func encodeTurn(t entity.Turn) (*schema.Message, error) {
	switch t.Kind {
	case entity.TurnUser:
		return schema.UserMessage(t.Text), nil
	case entity.TurnAgent:
		return schema.AssistantMessage(t.Text, nil), nil
	case entity.TurnToolRequest:
		args := t.Arguments
		if args == nil {
			args = map[string]interface{}{}
		}
		data, err := json.MarshalString(args)
		if err != nil {
			return nil, fmt.Errorf("marshal arguments of %s: %w", t.ToolName, err)
		}
		return schema.AssistantMessage("", []schema.ToolCall{{
			ID:   callIDOf(t.CallID, t.ToolName),
			Type: "function",
			Function: schema.FunctionCall{
				Name:      t.ToolName,
				Arguments: data,
			},
		}}), nil
	case entity.TurnToolResult:
		data, err := json.MarshalString(t.Result)
		if err != nil {
			return nil, fmt.Errorf("marshal result of %s: %w", t.ToolName, err)
		}
		return &schema.Message{
			Role:       schema.Tool,
			Content:    data,
			ToolCallID: callIDOf(t.CallID, t.ToolName),
			ToolName:   t.ToolName,
		}, nil
	default:
		return nil, fmt.Errorf("unknown turn kind %q", t.Kind)
	}
}

// callIDOf falls back to the tool name, which is how Gemini pairs a function
// response with its call.
func callIDOf(callID, toolName string) string {
	if callID != "" {
		return callID
	}
	return toolName
}

// DecodeResponse interprets one backend reply. Exactly one of text or a
// single tool call must be present; anything else is reported as
// errno.ErrMalformedReply.
func (c *TurnCodec) DecodeResponse(msg *schema.Message) (*Decoded, error) {
	if msg == nil {
		return nil, malformed("no candidate output")
	}

	hasText := strings.TrimSpace(msg.Content) != ""
	switch n := len(msg.ToolCalls); {
	case n > 1:
		return nil, malformed("%d tool calls in one reply", n)
	case n == 1 && hasText:
		return nil, malformed("reply carries both text and a tool call")
	case n == 0 && !hasText:
		return nil, malformed("reply carries neither text nor a tool call")
	case n == 0:
		return &Decoded{Kind: DecodedText, Text: msg.Content}, nil
	}

	tc := msg.ToolCalls[0]
	if tc.Function.Name == "" {
		return nil, malformed("tool call without a function name")
	}
	args, err := decodeArguments(tc.Function.Arguments)
	if err != nil {
		return nil, malformed("tool call %s: %v", tc.Function.Name, err)
	}
	return &Decoded{
		Kind:      DecodedToolCall,
		CallID:    callIDOf(tc.ID, tc.Function.Name),
		ToolName:  tc.Function.Name,
		Arguments: args,
	}, nil
}

func decodeArguments(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.UnmarshalString(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errno.ErrMalformedReply, fmt.Sprintf(format, args...))
}
