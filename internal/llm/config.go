// Package llm provides the language-model client used by the optional outreach drafter.
package llm

import "time"

// ModelTier represents the capability level of a model.
type ModelTier string

const (
	// TierLite is for short, cheap generations such as greeting drafts
	TierLite ModelTier = "lite"
	// TierStandard is for longer or more careful drafts
	TierStandard ModelTier = "standard"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultSystemInstruction frames every drafting request.
const DefaultSystemInstruction = "You write brief, polite, professional networking messages. " +
	"Never invent facts that are not in the supplied profile."

// Config holds the model configuration for the drafter
type Config struct {
	Provider          Provider
	Models            map[ModelTier]string
	Temperature       float32
	MaxTokens         int32
	SystemInstruction string
	// Timeout bounds a single generation call. Zero means no per-call bound.
	Timeout time.Duration
	// RequestsPerMinute throttles calls to the provider. Zero disables throttling.
	RequestsPerMinute int
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature:       0.4,
		MaxTokens:         256,
		SystemInstruction: DefaultSystemInstruction,
		Timeout:           30 * time.Second,
		RequestsPerMinute: 15,
	}
}

// GetModel returns the model name for tier, falling back to whichever tier is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model := c.Models[t]; model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of the Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := *c
	next.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return &next
}
