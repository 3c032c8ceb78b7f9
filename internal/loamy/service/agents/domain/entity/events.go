package entity

// LoopEventType is the type of a progress event emitted during a run.
type LoopEventType string

const (
	EventToolCall   LoopEventType = "tool_call"
	EventToolResult LoopEventType = "tool_result"
	EventReply      LoopEventType = "reply"
	EventFailure    LoopEventType = "failure"
)

// LoopEvent reports one step of an orchestration run to streaming clients.
type LoopEvent struct {
	Type LoopEventType `json:"type"`
	Step int           `json:"step"`
	// Turn is set for tool_call, tool_result and reply events.
	Turn *Turn `json:"turn,omitempty"`
	// Outcome is set on the terminal reply / failure event.
	Outcome *LoopOutcome `json:"outcome,omitempty"`
}
