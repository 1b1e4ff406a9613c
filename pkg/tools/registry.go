package tools

import (
	"sort"
	"strings"
	"sync"
)

// Registry stores tools by case-insensitive name. Registration overwrites
// any prior entry under the same name. Registration is expected to happen
// once at startup; it is not safe to interleave with lookups from running
// workflows.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register stores a tool under its lowercased name, replacing any previous
// registration.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[strings.ToLower(t.Name())] = t
}

// Get looks a tool up by case-insensitive name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[strings.ToLower(name)]
	return t, ok
}

// Definitions returns definitions for the named tools, in registry name
// order when names is empty, otherwise restricted to the intersection of
// names and the registry. Unknown names are silently dropped; the
// orchestrator fails on them only when the agent actually calls one.
func (r *Registry) Definitions(names []string) []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	if len(names) == 0 {
		keys = make([]string, 0, len(r.tools))
		for k := range r.tools {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	} else {
		for _, n := range names {
			if _, ok := r.tools[strings.ToLower(n)]; ok {
				keys = append(keys, strings.ToLower(n))
			}
		}
	}

	defs := make([]ToolDefinition, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, r.tools[k].Definition())
	}
	return defs
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
