package entity

import (
	"fmt"

	"github.com/kiosk404/loamy/pkg/utils/json"
)

// ToolErrorKind classifies a failed tool invocation.
type ToolErrorKind string

const (
	ToolErrUnknownTool      ToolErrorKind = "UnknownTool"
	ToolErrInvalidArguments ToolErrorKind = "InvalidArguments"
	ToolErrExecution        ToolErrorKind = "ToolExecutionError"
)

// ToolError is the failure payload of an Envelope.
type ToolError struct {
	Kind    ToolErrorKind `json:"kind"`
	Message string        `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ToolResult is the success payload of one tool. Implementations are the
// per-tool result shapes below.
type ToolResult interface {
	toolResult()
	// Tool returns the tool that produces this shape.
	Tool() ToolID
}

// CustomerStatus is the identity verification state of a customer.
type CustomerStatus string

const (
	StatusVerified CustomerStatus = "verified"
	StatusPending  CustomerStatus = "pending"
	StatusFailed   CustomerStatus = "failed"
	StatusNotFound CustomerStatus = "not_found"
)

// StatusResult is returned by verify_status.
type StatusResult struct {
	Status CustomerStatus `json:"status"`
}

// EligibilityResult is returned by evaluate_eligibility.
type EligibilityResult struct {
	Score    float64 `json:"score"`
	Limit    float64 `json:"limit"`
	NotFound bool    `json:"not_found,omitempty"`
}

// DocumentResult is returned by generate_document.
type DocumentResult struct {
	ArtifactLink string  `json:"artifact_link"`
	CustomerName string  `json:"customer_name"`
	Amount       float64 `json:"amount"`
}

func (*StatusResult) toolResult()      {}
func (*EligibilityResult) toolResult() {}
func (*DocumentResult) toolResult()    {}

func (*StatusResult) Tool() ToolID      { return ToolVerifyStatus }
func (*EligibilityResult) Tool() ToolID { return ToolEvaluateEligibility }
func (*DocumentResult) Tool() ToolID    { return ToolGenerateDocument }

// IsNilResult reports whether r is nil or a nil pointer of one of the variants.
func IsNilResult(r ToolResult) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *StatusResult:
		return v == nil
	case *EligibilityResult:
		return v == nil
	case *DocumentResult:
		return v == nil
	}
	return false
}

// Envelope is the uniform response of every tool invocation: exactly one of
// Result and Error is set.
type Envelope struct {
	Tool   ToolID
	Result ToolResult
	Error  *ToolError
}

// Success wraps a tool result.
func Success(tool ToolID, result ToolResult) Envelope {
	return Envelope{Tool: tool, Result: result}
}

// Failure builds a failure envelope.
func Failure(tool ToolID, kind ToolErrorKind, format string, args ...interface{}) Envelope {
	return Envelope{Tool: tool, Error: &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// OK reports whether the envelope carries a success payload.
func (e Envelope) OK() bool { return e.Error == nil }

type envelopeJSON struct {
	OK     bool            `json:"ok"`
	Tool   ToolID          `json:"tool"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ToolError      `json:"error,omitempty"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	out := envelopeJSON{OK: e.OK(), Tool: e.Tool, Error: e.Error}
	if e.Error == nil && e.Result != nil {
		data, err := json.Marshal(e.Result)
		if err != nil {
			return nil, err
		}
		out.Result = data
	}
	return json.Marshal(out)
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var in envelopeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.Tool = in.Tool
	e.Error = in.Error
	e.Result = nil
	if !in.OK {
		if e.Error == nil {
			e.Error = &ToolError{Kind: ToolErrExecution}
		}
		return nil
	}
	e.Error = nil
	var result ToolResult
	switch in.Tool {
	case ToolVerifyStatus:
		result = &StatusResult{}
	case ToolEvaluateEligibility:
		result = &EligibilityResult{}
	case ToolGenerateDocument:
		result = &DocumentResult{}
	default:
		return fmt.Errorf("envelope: unknown tool %q", in.Tool)
	}
	if len(in.Result) > 0 {
		if err := json.Unmarshal(in.Result, result); err != nil {
			return fmt.Errorf("envelope: decode %s result: %w", in.Tool, err)
		}
	}
	e.Result = result
	return nil
}
