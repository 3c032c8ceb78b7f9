package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// ModelOptions configures the Gemini backend.
type ModelOptions struct {
	APIKey  string `json:"-"        mapstructure:"api-key"`
	BaseURL string `json:"base-url" mapstructure:"base-url"`
	Model   string `json:"model"    mapstructure:"model"`
	// Temperature < 0 leaves the model default.
	Temperature    float32 `json:"temperature"     mapstructure:"temperature"`
	MaxTokens      int     `json:"max-tokens"      mapstructure:"max-tokens"`
	EnableThinking bool    `json:"enable-thinking" mapstructure:"enable-thinking"`
}

func NewModelOptions() *ModelOptions {
	return &ModelOptions{
		BaseURL:     "https://generativelanguage.googleapis.com/",
		Model:       "gemini-2.5-flash",
		Temperature: -1,
	}
}

func (o *ModelOptions) Validate() []error {
	var errs []error
	if o.APIKey == "" {
		errs = append(errs, fmt.Errorf("--models.api-key is required (or set LOAMY_MODELS_API_KEY)"))
	}
	if o.Temperature > 2 {
		errs = append(errs, fmt.Errorf("--models.temperature %.2f must not exceed 2", o.Temperature))
	}
	if o.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("--models.max-tokens must not be negative"))
	}
	return errs
}

func (o *ModelOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.APIKey, "models.api-key", o.APIKey, "Gemini API key.")
	fs.StringVar(&o.BaseURL, "models.base-url", o.BaseURL, "Gemini API base URL.")
	fs.StringVar(&o.Model, "models.model", o.Model, "Gemini model name.")
	fs.Float32Var(&o.Temperature, "models.temperature", o.Temperature, "Sampling temperature, negative for the model default.")
	fs.IntVar(&o.MaxTokens, "models.max-tokens", o.MaxTokens, "Maximum output tokens, 0 for the model default.")
	fs.BoolVar(&o.EnableThinking, "models.enable-thinking", o.EnableThinking, "Ask the model to include its thoughts.")
}
