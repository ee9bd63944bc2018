package provider

import "fmt"

// Config holds sampling parameters for a single completion request. The
// zero value is valid (greedy sampling, no streaming). A Config is
// constructed fresh per call and never mutated after dispatch.
type Config struct {
	// Name labels the sampling profile for observability. It never affects
	// generation.
	Name string

	// Model overrides the provider's default model when non-empty.
	Model string

	// Temperature must be within [0, 2].
	Temperature float64

	// TopP must be within [0, 1].
	TopP float64

	// Stream selects incremental chunk delivery over a single response.
	Stream bool

	PresencePenalty  float64
	FrequencyPenalty float64
}

// Validate checks the sampling parameter ranges. It is called by the
// provider before dispatch so that bad configs never reach the network.
func (c Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: temperature %g must be between 0 and 2", ErrInvalidConfig, c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("%w: top_p %g must be between 0 and 1", ErrInvalidConfig, c.TopP)
	}
	return nil
}

// Preset configs for common tasks. These mirror the sampling profiles the
// gateway ships with; callers adjust Stream and Model as needed.

// ChatbotConfig is the balanced conversational profile.
func ChatbotConfig() Config {
	return Config{Name: "chatbot", Temperature: 0.5, TopP: 0.5}
}

// CodeGenerationConfig favors syntactically correct code.
func CodeGenerationConfig() Config {
	return Config{Name: "code_generation", Temperature: 0.2, TopP: 0.1}
}

// CreativeWritingConfig favors diverse text generation.
func CreativeWritingConfig() Config {
	return Config{Name: "creative_writing", Temperature: 0.7, TopP: 0.8}
}

// CodeCommentsConfig favors concise code comments.
func CodeCommentsConfig() Config {
	return Config{Name: "code_comments", Temperature: 0.3, TopP: 0.2}
}

// DataAnalysisConfig favors correct and efficient scripts.
func DataAnalysisConfig() Config {
	return Config{Name: "data_analysis", Temperature: 0.2, TopP: 0.1}
}

// ExploratoryCodeConfig favors creative code solutions.
func ExploratoryCodeConfig() Config {
	return Config{Name: "exploratory_code", Temperature: 0.6, TopP: 0.7}
}
