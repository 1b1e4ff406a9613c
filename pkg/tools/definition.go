// Package tools provides the tool contract, the tool registry used by the
// workflow orchestrator, and loading of external tool configuration files.
package tools

// Property describes a single field of a tool's input schema. Nested
// object and array types reference further properties recursively.
type Property struct {
	Type        string               `yaml:"type" json:"type"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	Enum        []string             `yaml:"enum,omitempty" json:"enum,omitempty"`
	Items       *Property            `yaml:"items,omitempty" json:"items,omitempty"`
	Properties  map[string]*Property `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// InputSchema is the provider-agnostic parameter schema advertised for a
// tool. It is carried opaquely; argument validation is not performed here.
type InputSchema struct {
	Type       string              `yaml:"type" json:"type"`
	Properties map[string]Property `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required   []string            `yaml:"required,omitempty" json:"required,omitempty"`
}

// ToolDefinition describes a tool to an agent: name, human description,
// and parameter schema.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema InputSchema
}

// ObjectSchema builds an object input schema from properties and required
// field names.
func ObjectSchema(properties map[string]Property, required ...string) InputSchema {
	return InputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}
