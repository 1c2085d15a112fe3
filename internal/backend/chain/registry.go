package chain

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pixelmill/internal/services"
)

// Plugin is one external minifier: bytes in, re-encoded bytes out.
type Plugin func(ctx context.Context, data []byte, opts map[string]any) ([]byte, error)

// Registry maps plugin identifiers to their implementations.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register binds name to a plugin. Empty names and nil plugins are
// configuration errors; re-registering a name replaces the previous entry.
func (r *Registry) Register(name string, p Plugin) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return services.Wrap(services.ErrConfiguration, "chain", "register", "plugin name must not be empty", nil)
	}
	if p == nil {
		return services.Wrap(services.ErrConfiguration, "chain", "register", fmt.Sprintf("plugin %q is nil", name), nil)
	}
	r.mu.Lock()
	r.plugins[name] = p
	r.mu.Unlock()
	return nil
}

// Resolve looks name up, trying the imgmin-<name> convention before the
// bare name. Unknown identifiers fail with the registered names listed.
func (r *Registry) Resolve(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.plugins["imgmin-"+name]; ok {
		return p, nil
	}
	if p, ok := r.plugins[name]; ok {
		return p, nil
	}
	known := make([]string, 0, len(r.plugins))
	for k := range r.plugins {
		known = append(known, k)
	}
	sort.Strings(known)
	return nil, services.Wrap(services.ErrConfiguration, "chain", "resolve",
		fmt.Sprintf("plugin %q is not registered (registered: %s)", name, strings.Join(known, ", ")), nil)
}
