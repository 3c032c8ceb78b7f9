package entity

import (
	"fmt"
	"maps"
)

// Conversation is an ordered, append-only sequence of turns.
//
// A tool_result turn must immediately follow the tool_request it answers,
// and a pending tool_request blocks any other turn until it is answered.
// A Conversation is not safe for concurrent use; one request owns it.
type Conversation struct {
	turns []Turn
}

// NewConversation builds a conversation from prior turns, validating order.
func NewConversation(turns ...Turn) (*Conversation, error) {
	c := &Conversation{turns: make([]Turn, 0, len(turns)+4)}
	for i, t := range turns {
		if err := c.Append(t); err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
	}
	return c, nil
}

// Append adds a turn at the end of the conversation.
func (c *Conversation) Append(t Turn) error {
	if err := validateTurn(t); err != nil {
		return err
	}
	last, hasLast := c.Last()
	pending := hasLast && last.Kind == TurnToolRequest

	switch {
	case t.Kind == TurnToolResult:
		if !pending {
			return fmt.Errorf("%w: tool result %q without a preceding tool request", ErrTurnOrder, t.ToolName)
		}
		if last.ToolName != t.ToolName || last.CallID != t.CallID {
			return fmt.Errorf("%w: tool result %q/%q does not answer request %q/%q",
				ErrTurnOrder, t.ToolName, t.CallID, last.ToolName, last.CallID)
		}
	case pending:
		return fmt.Errorf("%w: tool request %q is still unanswered", ErrTurnOrder, last.ToolName)
	}

	c.turns = append(c.turns, t)
	return nil
}

// Len returns the number of turns.
func (c *Conversation) Len() int { return len(c.turns) }

// Last returns the most recent turn.
func (c *Conversation) Last() (Turn, bool) {
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// Turns returns a deep copy of all turns.
func (c *Conversation) Turns() []Turn {
	return c.Since(0)
}

// Since returns a deep copy of the turns from index from onwards.
func (c *Conversation) Since(from int) []Turn {
	if from < 0 {
		from = 0
	}
	if from >= len(c.turns) {
		return []Turn{}
	}
	out := make([]Turn, 0, len(c.turns)-from)
	for _, t := range c.turns[from:] {
		out = append(out, t.clone())
	}
	return out
}

func (t Turn) clone() Turn {
	if t.Arguments != nil {
		t.Arguments = maps.Clone(t.Arguments)
	}
	if t.Result != nil {
		env := *t.Result
		if env.Error != nil {
			e := *env.Error
			env.Error = &e
		}
		env.Result = cloneResult(env.Result)
		t.Result = &env
	}
	return t
}

func cloneResult(r ToolResult) ToolResult {
	switch v := r.(type) {
	case *StatusResult:
		if v != nil {
			c := *v
			return &c
		}
	case *EligibilityResult:
		if v != nil {
			c := *v
			return &c
		}
	case *DocumentResult:
		if v != nil {
			c := *v
			return &c
		}
	}
	return r
}

func validateTurn(t Turn) error {
	switch t.Kind {
	case TurnUser, TurnAgent:
		return nil
	case TurnToolRequest:
		if t.ToolName == "" {
			return fmt.Errorf("%w: tool request without tool name", ErrInvalidTurn)
		}
		return nil
	case TurnToolResult:
		if t.ToolName == "" {
			return fmt.Errorf("%w: tool result without tool name", ErrInvalidTurn)
		}
		if t.Result == nil {
			return fmt.Errorf("%w: tool result %q without envelope", ErrInvalidTurn, t.ToolName)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown turn kind %q", ErrInvalidTurn, t.Kind)
	}
}
