// Package plugins contains the built-in handler units shipped with the
// worker. Each one is a self-contained capability; none of them hold
// cross-request state.
package plugins

import (
	"context"
	"fmt"
	"time"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// Hello returns a greeting message from the worker.
type Hello struct{}

// NewHello creates the hello plugin.
func NewHello() *Hello { return &Hello{} }

func (p *Hello) Name() string        { return "hello" }
func (p *Hello) Description() string { return "Returns a greeting from the worker" }
func (p *Hello) Version() string     { return "1.0.0" }

func (p *Hello) RequiredParams() []string { return []string{} }
func (p *Hello) OptionalParams() []string { return []string{"name"} }

func (p *Hello) Execute(ctx context.Context, params map[string]any, ec *plugin.ExecutionContext) (map[string]any, error) {
	name := "World"
	if v, ok := params["name"].(string); ok && v != "" {
		name = v
	}

	return map[string]any{
		"message":   fmt.Sprintf("Hello %s!", name),
		"worker_id": ec.WorkerID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    "success",
	}, nil
}
