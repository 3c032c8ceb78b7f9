// Package llm builds the generative backend the conversation loop talks to.
package llm

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gptr"
	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/kiosk404/loamy/pkg/logger"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/"
	DefaultModel   = "gemini-2.5-flash"
)

// Config holds the configuration for the LLM module.
// Follows K8S-style: Config → Complete() → New(ctx).
type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// Temperature is left to the model default when nil.
	Temperature *float32
	// MaxTokens is left to the model default when 0.
	MaxTokens int
	// EnableThinking asks the model to include its thoughts.
	EnableThinking bool
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	return CompletedConfig{c}
}

// Validate reports configuration errors.
func (c CompletedConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("gemini api key is required")
	}
	return nil
}

// Module holds the tool-calling chat model.
type Module struct {
	ChatModel model.ToolCallingChatModel
	Model     string
}

// New creates the Gemini chat model.
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: c.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	cm, err := einoGemini.NewChatModel(ctx, geminiConfig(c.Config, client))
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model %s: %w", c.Model, err)
	}

	logger.Info("[LLM] gemini chat model %s ready (base_url=%s)", c.Model, c.BaseURL)
	return &Module{ChatModel: cm, Model: c.Model}, nil
}

func geminiConfig(c *Config, client *genai.Client) *einoGemini.Config {
	cfg := &einoGemini.Config{
		Client: client,
		Model:  c.Model,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: c.EnableThinking,
		},
	}
	if c.Temperature != nil {
		cfg.Temperature = gptr.Of(*c.Temperature)
	}
	if c.MaxTokens > 0 {
		cfg.MaxTokens = gptr.Of(c.MaxTokens)
	}
	return cfg
}
