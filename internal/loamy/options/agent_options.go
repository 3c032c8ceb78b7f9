package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// AgentOptions configures the conversation loop.
type AgentOptions struct {
	MaxSteps        int           `json:"max-steps"         mapstructure:"max-steps"`
	BackendTimeout  time.Duration `json:"backend-timeout"   mapstructure:"backend-timeout"`
	ToolTimeout     time.Duration `json:"tool-timeout"      mapstructure:"tool-timeout"`
	RunTimeout      time.Duration `json:"run-timeout"       mapstructure:"run-timeout"`
	DirectiveFile   string        `json:"directive-file"    mapstructure:"directive-file"`
	MaxHistoryTurns int           `json:"max-history-turns" mapstructure:"max-history-turns"`
}

func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		MaxSteps:       10,
		BackendTimeout: 60 * time.Second,
		ToolTimeout:    10 * time.Second,
		RunTimeout:     5 * time.Minute,
	}
}

func (o *AgentOptions) Validate() []error {
	var errs []error
	if o.MaxSteps < 1 {
		errs = append(errs, fmt.Errorf("--agent.max-steps must be at least 1"))
	}
	if o.BackendTimeout <= 0 || o.ToolTimeout <= 0 || o.RunTimeout <= 0 {
		errs = append(errs, fmt.Errorf("agent timeouts must be positive"))
	}
	if o.MaxHistoryTurns < 0 {
		errs = append(errs, fmt.Errorf("--agent.max-history-turns must not be negative"))
	}
	return errs
}

func (o *AgentOptions) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxSteps, "agent.max-steps", o.MaxSteps, "Maximum backend round trips per user message.")
	fs.DurationVar(&o.BackendTimeout, "agent.backend-timeout", o.BackendTimeout, "Timeout of one backend round trip.")
	fs.DurationVar(&o.ToolTimeout, "agent.tool-timeout", o.ToolTimeout, "Timeout of one tool invocation.")
	fs.DurationVar(&o.RunTimeout, "agent.run-timeout", o.RunTimeout, "Timeout of a whole user message.")
	fs.StringVar(&o.DirectiveFile, "agent.directive-file", o.DirectiveFile, "File holding the system directive, reloaded on change. Empty uses the built-in one.")
	fs.IntVar(&o.MaxHistoryTurns, "agent.max-history-turns", o.MaxHistoryTurns, "Keep only this many recent user messages of history, 0 keeps all.")
}
