// Package config loads the workspace configuration file: agent
// descriptors, orchestrator bounds, and the retry policy.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"agentflow/pkg/agent"
	"agentflow/pkg/workflow"
)

// AgentConfig declares one agent: descriptor fields plus the scoped tool
// names visible to it (empty exposes the whole registry).
type AgentConfig struct {
	Name            string   `yaml:"name"`
	Model           string   `yaml:"model"`
	Instructions    string   `yaml:"instructions,omitempty"`
	SystemPrompt    string   `yaml:"system_prompt,omitempty"`
	Temperature     *float64 `yaml:"temperature,omitempty"`
	TopP            *float64 `yaml:"top_p,omitempty"`
	MaxOutputTokens int      `yaml:"max_output_tokens,omitempty"`
	ReasoningEffort string   `yaml:"reasoning_effort,omitempty"`
	Verbosity       string   `yaml:"verbosity,omitempty"`
	Tools           []string `yaml:"tools,omitempty"`
}

// Descriptor converts the config entry into an agent descriptor.
func (a AgentConfig) Descriptor() agent.Descriptor {
	return agent.Descriptor{
		Name:            a.Name,
		Model:           a.Model,
		Instructions:    a.Instructions,
		SystemPrompt:    a.SystemPrompt,
		Temperature:     a.Temperature,
		TopP:            a.TopP,
		MaxOutputTokens: a.MaxOutputTokens,
		ReasoningEffort: a.ReasoningEffort,
		Verbosity:       a.Verbosity,
	}
}

// OrchestratorConfig bounds the run loop.
type OrchestratorConfig struct {
	MaxTurns           int `yaml:"max_turns,omitempty"`
	MaxDelegationDepth int `yaml:"max_delegation_depth,omitempty"`
}

// RetryConfig configures the generate retry policy.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	Delay       time.Duration `yaml:"delay,omitempty"`
}

// Policy converts the config entry into a workflow retry policy, falling
// back to defaults for unset fields.
func (r RetryConfig) Policy() workflow.RetryPolicy {
	policy := workflow.DefaultRetryPolicy
	if r.MaxAttempts > 0 {
		policy.MaxAttempts = r.MaxAttempts
	}
	if r.Delay > 0 {
		policy.Delay = r.Delay
	}
	return policy
}

// Config is the parsed workspace configuration.
type Config struct {
	Agents       []AgentConfig      `yaml:"agents"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator,omitempty"`
	Retry        RetryConfig        `yaml:"retry,omitempty"`
	ToolsFile    string             `yaml:"tools_file,omitempty"`
}

// Load reads and validates the workspace configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent is required")
	}
	seen := make(map[string]struct{}, len(c.Agents))
	for i, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent %d: name cannot be empty", i)
		}
		if a.Model == "" {
			return fmt.Errorf("agent %q: model cannot be empty", a.Name)
		}
		if a.Temperature != nil && (*a.Temperature < 0 || *a.Temperature > 2) {
			return fmt.Errorf("agent %q: temperature must be between 0.0 and 2.0", a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return fmt.Errorf("agent %q: duplicate name", a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	if c.Orchestrator.MaxTurns < 0 {
		return fmt.Errorf("orchestrator max_turns must not be negative")
	}
	if c.Orchestrator.MaxDelegationDepth < 0 {
		return fmt.Errorf("orchestrator max_delegation_depth must not be negative")
	}
	if c.Retry.MaxAttempts < 0 {
		return fmt.Errorf("retry max_attempts must not be negative")
	}
	return nil
}

// OrchestratorOptions converts the config into orchestrator options.
func (c *Config) OrchestratorOptions() []workflow.Option {
	opts := []workflow.Option{workflow.WithRetryPolicy(c.Retry.Policy())}
	if c.Orchestrator.MaxTurns > 0 {
		opts = append(opts, workflow.WithMaxTurns(c.Orchestrator.MaxTurns))
	}
	if c.Orchestrator.MaxDelegationDepth > 0 {
		opts = append(opts, workflow.WithMaxDelegationDepth(c.Orchestrator.MaxDelegationDepth))
	}
	return opts
}
