package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Masterminds/semver/v3"
)

const logPrefix = "plugin:registry"

// defaultVersion is assigned to plugins that do not implement Versioned or
// report a version that does not parse as semver.
const defaultVersion = "1.0.0"

type entry struct {
	plugin  Plugin
	version string
}

// Registry maps capability names to handler units. It is populated at worker
// startup before the session connects and is read-only during steady state;
// the lock only matters for late registration in tests.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register inserts a plugin under its own name. Registering over an existing
// name silently replaces the prior plugin (last write wins); collisions are
// logged but never rejected, which supports hot-swapping during bring-up.
func (r *Registry) Register(p Plugin) {
	name := p.Name()
	version := defaultVersion
	if v, ok := p.(Versioned); ok {
		if _, err := semver.NewVersion(v.Version()); err != nil {
			slog.Warn(fmt.Sprintf("%s - plugin %s reports invalid version %q, using %s", logPrefix, name, v.Version(), defaultVersion))
		} else {
			version = v.Version()
		}
	}

	r.mu.Lock()
	_, replaced := r.entries[name]
	r.entries[name] = entry{plugin: p, version: version}
	r.mu.Unlock()

	if replaced {
		slog.Info(fmt.Sprintf("%s - replaced plugin %s", logPrefix, name))
	} else {
		slog.Info(fmt.Sprintf("%s - registered plugin %s (v%s)", logPrefix, name, version))
	}
}

// Lookup returns the plugin registered under name, or false when absent.
func (r *Registry) Lookup(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.plugin, true
}

// Len reports the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Descriptors enumerates all registered plugins' manifest entries.
// Order follows map iteration and is not stable across runs.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		descriptors = append(descriptors, Descriptor{
			Name:           e.plugin.Name(),
			Description:    e.plugin.Description(),
			HTTPMethod:     "POST",
			Version:        e.version,
			RequiredParams: e.plugin.RequiredParams(),
			OptionalParams: e.plugin.OptionalParams(),
		})
	}
	return descriptors
}

// Dispatch looks up the named capability, parses paramsJSON into the handler
// parameter object, executes the handler, and returns the JSON-encoded
// result. Every failure is a *DispatchError carrying one of the dispatch
// error codes; none of them are fatal to the caller's serve loop.
func (r *Registry) Dispatch(ctx context.Context, ec *ExecutionContext, name string, paramsJSON json.RawMessage) (json.RawMessage, error) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, notFoundError(name)
	}

	params := make(map[string]any)
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &params); err != nil {
			return nil, malformedParamsError(name, err)
		}
	}

	result, err := p.Execute(ctx, params, ec)
	if err != nil {
		return nil, executionError(name, err)
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, executionError(name, fmt.Errorf("result not serializable: %w", err))
	}
	return encoded, nil
}
