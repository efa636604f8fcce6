// Package tools provides the market data tools exposed to the research agent.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Tool is a named, synchronous data-fetch capability. The description is
// handed verbatim to the reasoning backend so it can decide when the tool is
// useful. Execute must not fail for any non-empty asset.
type Tool interface {
	Name() string
	Description() string
	Execute(ctx context.Context, asset string) (json.RawMessage, error)
}

// Registry stores tools keyed by name. Constructed once at startup and
// read-only afterwards; safe for concurrent use across research calls.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// NewMarketRegistry creates a registry with the standard market tool set.
func NewMarketRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(&MarketPriceTool{})
	r.MustRegister(&InternalSentimentTool{})
	return r
}

// Register adds a tool under its name.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is required")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered for %s", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a tool or panics.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get returns the tool registered under name, or nil.
func (r *Registry) Get(name string) Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns all tools in registration order.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute runs the named tool.
func (r *Registry) Execute(ctx context.Context, name, asset string) (json.RawMessage, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("no tool registered for %s", name)
	}
	return tool.Execute(ctx, asset)
}
