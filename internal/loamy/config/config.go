package config

import (
	"github.com/jinzhu/copier"
	"github.com/kiosk404/loamy/internal/loamy/options"
	"github.com/kiosk404/loamy/internal/loamy/service/agents"
	"github.com/kiosk404/loamy/internal/loamy/service/llm"
	"github.com/kiosk404/loamy/pkg/logger"
)

// Config is the running configuration structure of the loamy service.
type Config struct {
	*options.Options
}

// CreateConfigFromOptions creates a running configuration instance based
// on the given command line or configuration file option.
func CreateConfigFromOptions(opts *options.Options) (*Config, error) {
	return &Config{opts}, nil
}

// LoggerOptions maps the log flags onto the logger package.
func (c *Config) LoggerOptions() (*logger.Options, error) {
	out := &logger.Options{}
	if err := copier.Copy(out, c.LogOptions); err != nil {
		return nil, err
	}
	return out, nil
}

// AgentsConfig maps the agent, store and server flags onto the agents module.
func (c *Config) AgentsConfig() (*agents.Config, error) {
	out := &agents.Config{}
	if err := copier.Copy(out, c.AgentOptions); err != nil {
		return nil, err
	}
	out.StoreType = c.StoreOptions.Type
	out.StorePath = c.StoreOptions.Path
	out.Seed = c.StoreOptions.Seed
	out.StaticDir = c.ServerOptions.StaticDir
	return out, nil
}

// LLMConfig maps the model flags onto the llm module.
func (c *Config) LLMConfig() *llm.Config {
	m := c.ModelOptions
	out := &llm.Config{
		APIKey:         m.APIKey,
		BaseURL:        m.BaseURL,
		Model:          m.Model,
		MaxTokens:      m.MaxTokens,
		EnableThinking: m.EnableThinking,
	}
	if m.Temperature >= 0 {
		t := m.Temperature
		out.Temperature = &t
	}
	return out
}
