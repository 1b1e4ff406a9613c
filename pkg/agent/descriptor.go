package agent

import "strings"

// Default inference values for reasoning-class models.
const (
	defaultReasoningEffort = "medium"
	defaultVerbosity       = "medium"
)

// Descriptor is the immutable configuration of a registered agent.
// Sampling fields are optional; nil means provider default.
type Descriptor struct {
	Name            string
	Instructions    string
	Model           string
	Temperature     *float64
	TopP            *float64
	MaxOutputTokens int
	SystemPrompt    string
	ReasoningEffort string
	Verbosity       string
}

// reasoningModel reports whether the model belongs to the reasoning class
// for which effort and verbosity hints apply.
func reasoningModel(model string) bool {
	m := strings.ToLower(model)
	return strings.HasPrefix(m, "o") || strings.HasPrefix(m, "gpt-5")
}

// Normalize returns a copy with reasoning and verbosity defaults inferred
// from the model name when unset. Called once at registration.
func (d Descriptor) Normalize() Descriptor {
	if reasoningModel(d.Model) {
		if d.ReasoningEffort == "" {
			d.ReasoningEffort = defaultReasoningEffort
		}
		if d.Verbosity == "" {
			d.Verbosity = defaultVerbosity
		}
	}
	return d
}
