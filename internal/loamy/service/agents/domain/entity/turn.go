package entity

import (
	"time"
)

// TurnKind tags the variant held by a Turn.
type TurnKind string

const (
	TurnUser        TurnKind = "user"
	TurnAgent       TurnKind = "agent"
	TurnToolRequest TurnKind = "tool_request"
	TurnToolResult  TurnKind = "tool_result"
)

// Turn is one atomic unit of conversation.
//
// Which fields are meaningful depends on Kind:
//   - user, agent:   Text
//   - tool_request:  CallID, ToolName, Arguments
//   - tool_result:   CallID, ToolName, Result
type Turn struct {
	Kind      TurnKind               `json:"kind"`
	Text      string                 `json:"text,omitempty"`
	CallID    string                 `json:"call_id,omitempty"`
	ToolName  string                 `json:"tool_name,omitempty"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Result    *Envelope              `json:"result,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewUserTurn creates a user message turn.
func NewUserTurn(text string) Turn {
	return Turn{Kind: TurnUser, Text: text, CreatedAt: time.Now()}
}

// NewAgentTurn creates an agent text turn.
func NewAgentTurn(text string) Turn {
	return Turn{Kind: TurnAgent, Text: text, CreatedAt: time.Now()}
}

// NewToolRequestTurn creates an agent tool request turn.
func NewToolRequestTurn(callID, toolName string, args map[string]interface{}) Turn {
	return Turn{Kind: TurnToolRequest, CallID: callID, ToolName: toolName, Arguments: args, CreatedAt: time.Now()}
}

// NewToolResultTurn creates a tool result turn.
func NewToolResultTurn(callID, toolName string, env Envelope) Turn {
	return Turn{Kind: TurnToolResult, CallID: callID, ToolName: toolName, Result: &env, CreatedAt: time.Now()}
}
