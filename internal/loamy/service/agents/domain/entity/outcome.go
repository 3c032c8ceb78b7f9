package entity

import "fmt"

// FailureKind classifies a fatal orchestration failure.
type FailureKind string

const (
	FailureMalformedResponse  FailureKind = "MalformedBackendResponse"
	FailureBackendUnreachable FailureKind = "BackendUnreachable"
	FailureStepBudgetExceeded FailureKind = "StepBudgetExceeded"
	// FailureAborted is reported when the caller cancels the run.
	FailureAborted FailureKind = "Aborted"
)

// LoopFailure is the failure payload of a LoopOutcome.
type LoopFailure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (f *LoopFailure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// LoopOutcome is the terminal value of one orchestration run.
// Exactly one of Reply (with Failure == nil) or Failure is meaningful.
type LoopOutcome struct {
	Reply   string       `json:"reply,omitempty"`
	Failure *LoopFailure `json:"failure,omitempty"`
	// Steps is the number of backend round trips performed.
	Steps int `json:"steps"`
}

// FinalReply builds a successful outcome.
func FinalReply(text string, steps int) *LoopOutcome {
	return &LoopOutcome{Reply: text, Steps: steps}
}

// Failed builds a failed outcome.
func Failed(kind FailureKind, steps int, format string, args ...interface{}) *LoopOutcome {
	return &LoopOutcome{
		Failure: &LoopFailure{Kind: kind, Message: fmt.Sprintf(format, args...)},
		Steps:   steps,
	}
}

// OK reports whether the outcome is a final reply.
func (o *LoopOutcome) OK() bool { return o != nil && o.Failure == nil }
