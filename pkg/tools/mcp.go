package tools

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ToolEndpoint locates a remotely hosted tool. Header values may contain
// ${ENV:VAR} placeholders, expanded at load time.
type ToolEndpoint struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// ToolDescriptor is one entry of the external tool configuration file.
// Exactly one of Endpoint or Command must be set.
type ToolDescriptor struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	InputSchema *InputSchema  `yaml:"input_schema"`
	Endpoint    *ToolEndpoint `yaml:"endpoint,omitempty"`
	Command     []string      `yaml:"command,omitempty"`
}

// ToolConfig is the parsed tool configuration document.
type ToolConfig struct {
	Tools []ToolDescriptor `yaml:"tools"`
}

var envPlaceholderRe = regexp.MustCompile(`\$\{ENV:([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvPlaceholders replaces ${ENV:VAR} references using the process
// environment first, then the supplied .env fallback values.
func expandEnvPlaceholders(s string, dotenv map[string]string) (string, error) {
	var missing string
	out := envPlaceholderRe.ReplaceAllStringFunc(s, func(match string) string {
		key := envPlaceholderRe.FindStringSubmatch(match)[1]
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		if v, ok := dotenv[key]; ok {
			return v
		}
		if missing == "" {
			missing = key
		}
		return match
	})
	if missing != "" {
		return "", fmt.Errorf("environment variable %q referenced but not set", missing)
	}
	return out, nil
}

// LoadToolConfig reads and validates a tool configuration file. Placeholder
// values are resolved from the process environment or, failing that, from a
// .env file next to the working directory (missing .env is not an error).
func LoadToolConfig(path string) (*ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tool config: %w", err)
	}

	var cfg ToolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tool config %s: %w", path, err)
	}

	dotenv, err := godotenv.Read()
	if err != nil {
		// .env is optional; only the placeholders care about its absence.
		dotenv = map[string]string{}
	}

	for i := range cfg.Tools {
		if err := cfg.Tools[i].validate(); err != nil {
			return nil, fmt.Errorf("tool config %s entry %d: %w", path, i, err)
		}
		if err := cfg.Tools[i].expand(dotenv); err != nil {
			return nil, fmt.Errorf("tool config %s entry %q: %w", path, cfg.Tools[i].Name, err)
		}
	}
	return &cfg, nil
}

func (d *ToolDescriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if d.InputSchema == nil {
		return fmt.Errorf("tool %q: input schema is required", d.Name)
	}
	hasEndpoint := d.Endpoint != nil
	hasCommand := len(d.Command) > 0
	if hasEndpoint == hasCommand {
		return fmt.Errorf("tool %q: exactly one of endpoint or command is required", d.Name)
	}
	if hasEndpoint && d.Endpoint.URL == "" {
		return fmt.Errorf("tool %q: endpoint url cannot be empty", d.Name)
	}
	return nil
}

func (d *ToolDescriptor) expand(dotenv map[string]string) error {
	if d.Endpoint == nil {
		return nil
	}
	for k, v := range d.Endpoint.Headers {
		expanded, err := expandEnvPlaceholders(v, dotenv)
		if err != nil {
			return fmt.Errorf("header %s: %w", k, err)
		}
		d.Endpoint.Headers[k] = expanded
	}
	return nil
}

// MCPClient executes tool calls against externally hosted tools. The wire
// protocol lives behind this interface; implementations are provided by
// the embedding application.
type MCPClient interface {
	CallTool(ctx context.Context, desc ToolDescriptor, args map[string]any) (output string, isError bool, err error)
}

// RemoteTool adapts a configured tool descriptor and an MCP client into
// the Tool interface.
type RemoteTool struct {
	desc   ToolDescriptor
	client MCPClient
}

// NewRemoteTool binds a descriptor to an MCP client.
func NewRemoteTool(desc ToolDescriptor, client MCPClient) *RemoteTool {
	return &RemoteTool{desc: desc, client: client}
}

// Name implements Tool.
func (r *RemoteTool) Name() string { return r.desc.Name }

// Definition implements Tool.
func (r *RemoteTool) Definition() ToolDefinition {
	def := ToolDefinition{
		Name:        r.desc.Name,
		Description: r.desc.Description,
	}
	if r.desc.InputSchema != nil {
		def.InputSchema = *r.desc.InputSchema
	}
	return def
}

// Invoke implements Tool.
func (r *RemoteTool) Invoke(ctx context.Context, inv InvocationContext) (Result, error) {
	output, isError, err := r.client.CallTool(ctx, r.desc, inv.Call.Arguments)
	if err != nil {
		return Result{}, fmt.Errorf("remote tool %q call failed: %w", r.desc.Name, err)
	}
	return Result{CallID: inv.Call.CallID, Output: output, IsError: isError}, nil
}
