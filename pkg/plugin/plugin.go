// Package plugin defines the handler-unit contract and the in-memory
// capability registry that routes inbound requests to handlers.
package plugin

import "context"

// Plugin is a named, describable unit of work the worker can perform.
// Implementations must be safe for concurrent execution across unrelated
// requests; they own no cross-request state.
type Plugin interface {
	Name() string
	Description() string
	RequiredParams() []string
	OptionalParams() []string
	Execute(ctx context.Context, params map[string]any, ec *ExecutionContext) (map[string]any, error)
}

// Versioned is implemented by plugins that report their own version.
// Plugins without it are registered as version 1.0.0.
type Versioned interface {
	Version() string
}

// CallWorkerFunc invokes a capability on another worker through the hub.
type CallWorkerFunc func(ctx context.Context, target, capability string, params map[string]any) (map[string]any, error)

// ExecutionContext carries per-worker context into handler execution.
// CallWorker is nil when the session does not support worker-to-worker calls.
type ExecutionContext struct {
	WorkerID   string
	WorkerType string
	CallWorker CallWorkerFunc
}

// Descriptor describes one capability for the registration manifest.
type Descriptor struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	HTTPMethod     string   `json:"http_method"`
	Version        string   `json:"version,omitempty"`
	RequiredParams []string `json:"required_params"`
	OptionalParams []string `json:"optional_params"`
}
