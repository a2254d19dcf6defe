// Package llm provides options pattern for LLM generation parameters.
//
// Options are set at initialization (from config.yaml) and applied by every
// provider adapter the same way.
package llm

// Defaults used when config.yaml leaves a field empty.
const (
	DefaultMaxTokens = 1024
)

// GenerateOptions holds parameters for LLM generation.
type GenerateOptions struct {
	// Model is the model identifier (e.g., "gpt-4o-mini", "llama3-70b-8192")
	Model string

	// Temperature controls randomness in responses (0.0 = deterministic, 1.0 = random)
	Temperature float64

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateOption is a functional option for configuring GenerateOptions.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithTemperature sets the temperature for generation.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// WithMaxTokens sets the maximum tokens for generation.
func WithMaxTokens(tokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = tokens
	}
}

// NewGenerateOptions applies opts on top of zero values and fills defaults.
func NewGenerateOptions(opts ...GenerateOption) GenerateOptions {
	var o GenerateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	return o
}
