package tools

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
)

// Arguments are the validated arguments of one tool call.
type Arguments map[string]interface{}

// String returns a string argument, or "" when absent.
func (a Arguments) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Number returns a number argument, or 0 when absent.
func (a Arguments) Number(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// Bool returns a boolean argument, or false when absent.
func (a Arguments) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Has reports whether the argument is present.
func (a Arguments) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// ArgumentError names the offending parameter of a rejected call.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("parameter %q %s", e.Param, e.Reason)
}

// Validate checks raw arguments against sig and returns them normalized.
// Required parameters must be present and non-null, present values must match
// the declared primitive type and undeclared parameters are rejected.
func Validate(sig entity.ToolSignature, raw map[string]interface{}) (Arguments, error) {
	// Parameters are checked in declaration order so the reported one is stable.
	out := make(Arguments, len(raw))
	for _, p := range sig.Parameters {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, &ArgumentError{Param: p.Name, Reason: "is required"}
			}
			continue
		}
		nv, ok := coerce(p.Type, v)
		if !ok {
			return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("must be a %s, got %T", p.Type, v)}
		}
		out[p.Name] = nv
	}
	for _, name := range slices.Sorted(maps.Keys(raw)) {
		if _, ok := sig.Param(name); !ok {
			return nil, &ArgumentError{Param: name, Reason: "is not declared by " + sig.Name.String()}
		}
	}
	return out, nil
}

func coerce(t entity.ParamType, v interface{}) (interface{}, bool) {
	switch t {
	case entity.ParamString:
		s, ok := v.(string)
		return s, ok
	case entity.ParamBoolean:
		b, ok := v.(bool)
		return b, ok
	case entity.ParamNumber:
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int32:
			return float64(n), true
		case int64:
			return float64(n), true
		case uint:
			return float64(n), true
		case uint32:
			return float64(n), true
		case uint64:
			return float64(n), true
		}
	}
	return nil, false
}
