package entity

// ToolID enumerates the tools the backend may request.
type ToolID string

const (
	ToolVerifyStatus        ToolID = "verify_status"
	ToolEvaluateEligibility ToolID = "evaluate_eligibility"
	ToolGenerateDocument    ToolID = "generate_document"
)

// KnownToolIDs lists every tool identifier in catalog order.
var KnownToolIDs = []ToolID{ToolVerifyStatus, ToolEvaluateEligibility, ToolGenerateDocument}

// IsKnown reports whether id is one of the enumerated tools.
func (id ToolID) IsKnown() bool {
	for _, k := range KnownToolIDs {
		if k == id {
			return true
		}
	}
	return false
}

func (id ToolID) String() string { return string(id) }

// ParamType is the primitive type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Valid reports whether t is a supported primitive type.
func (t ParamType) Valid() bool {
	switch t {
	case ParamString, ParamNumber, ParamBoolean:
		return true
	}
	return false
}

// Parameter describes one named tool parameter.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Description string    `json:"description,omitempty"`
}

// ToolSignature is the contract of a tool as advertised to the backend.
type ToolSignature struct {
	// Name is the unique tool key.
	Name ToolID `json:"name"`
	// Parameters are ordered as declared.
	Parameters []Parameter `json:"parameters"`
	// Description guides the backend's call planning.
	Description string `json:"description"`
}

// Param returns the parameter with the given name.
func (s ToolSignature) Param(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}
