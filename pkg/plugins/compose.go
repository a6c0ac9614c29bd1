package plugins

import (
	"context"
	"fmt"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// Compose pipelines string_ops then base64 on another worker through the
// hub, demonstrating worker-to-worker calls. The target defaults to the
// worker itself.
type Compose struct{}

// NewCompose creates the compose plugin.
func NewCompose() *Compose { return &Compose{} }

func (p *Compose) Name() string { return "compose" }
func (p *Compose) Description() string {
	return "Transform text via string_ops on a target worker, then base64-encode the result"
}
func (p *Compose) Version() string { return "1.0.0" }

func (p *Compose) RequiredParams() []string { return []string{"text"} }
func (p *Compose) OptionalParams() []string { return []string{"operation", "target"} }

func (p *Compose) Execute(ctx context.Context, params map[string]any, ec *plugin.ExecutionContext) (map[string]any, error) {
	if ec.CallWorker == nil {
		return nil, fmt.Errorf("worker-to-worker calls are not available")
	}

	text, ok := params["text"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("missing required parameter: text")
	}
	operation := "uppercase"
	if op, ok := params["operation"].(string); ok && op != "" {
		operation = op
	}
	target := ec.WorkerID
	if t, ok := params["target"].(string); ok && t != "" {
		target = t
	}

	transformed, err := ec.CallWorker(ctx, target, "string_ops", map[string]any{
		"text":      text,
		"operation": operation,
	})
	if err != nil {
		return nil, fmt.Errorf("string_ops step: %v", err)
	}
	intermediate, ok := transformed["result"].(string)
	if !ok {
		return nil, fmt.Errorf("string_ops step returned no string result")
	}

	encoded, err := ec.CallWorker(ctx, target, "base64", map[string]any{
		"text":   intermediate,
		"action": "encode",
	})
	if err != nil {
		return nil, fmt.Errorf("base64 step: %v", err)
	}

	return map[string]any{
		"input":        text,
		"operation":    operation,
		"target":       target,
		"intermediate": intermediate,
		"result":       encoded["result"],
		"status":       "success",
	}, nil
}
