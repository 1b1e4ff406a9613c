package agent

import (
	"fmt"
	"strings"

	"agentflow/pkg/llm"
	"agentflow/pkg/tools"
)

// sanitizeTools maps the visible tool set into provider tool params with
// names restricted to the external alphabet. The sanitized-to-original
// mapping is rebuilt from scratch on every call; it only has to cover the
// current turn's tool set. Caller holds the mutex.
func (t *Translator) sanitizeTools(visible []tools.ToolDefinition) []llm.ToolParam {
	t.sanitized = make(map[string]string, len(visible))

	params := make([]llm.ToolParam, 0, len(visible))
	for _, def := range visible {
		name := sanitizeToolName(def.Name)
		if _, taken := t.sanitized[name]; taken {
			// Deterministic _2, _3, ... suffixes on collision.
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s_%d", name, n)
				if _, taken := t.sanitized[candidate]; !taken {
					name = candidate
					break
				}
			}
		}
		t.sanitized[name] = def.Name

		params = append(params, llm.ToolParam{
			Name:        name,
			Description: def.Description,
			Parameters:  schemaToMap(def.InputSchema),
		})
	}
	return params
}

// sanitizeToolName replaces every character outside the provider alphabet
// (letters, digits, dash, underscore) with an underscore.
func sanitizeToolName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "tool"
	}
	return sb.String()
}

// schemaToMap converts an input schema to the JSON-schema document shape
// the provider expects.
func schemaToMap(schema tools.InputSchema) map[string]any {
	schemaType := schema.Type
	if schemaType == "" {
		schemaType = "object"
	}
	out := map[string]any{"type": schemaType}

	if len(schema.Properties) > 0 {
		props := make(map[string]any, len(schema.Properties))
		for name := range schema.Properties {
			prop := schema.Properties[name]
			props[name] = propertyToMap(&prop)
		}
		out["properties"] = props
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}

func propertyToMap(prop *tools.Property) map[string]any {
	out := map[string]any{"type": prop.Type}
	if prop.Description != "" {
		out["description"] = prop.Description
	}
	if len(prop.Enum) > 0 {
		out["enum"] = prop.Enum
	}
	if prop.Type == "array" && prop.Items != nil {
		out["items"] = propertyToMap(prop.Items)
	}
	if prop.Type == "object" && len(prop.Properties) > 0 {
		props := make(map[string]any, len(prop.Properties))
		for name, child := range prop.Properties {
			if child != nil {
				props[name] = propertyToMap(child)
			}
		}
		out["properties"] = props
	}
	return out
}
