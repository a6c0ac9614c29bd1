package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// StringOps performs basic string transformations.
type StringOps struct{}

// NewStringOps creates the string_ops plugin.
func NewStringOps() *StringOps { return &StringOps{} }

func (p *StringOps) Name() string { return "string_ops" }
func (p *StringOps) Description() string {
	return "Perform string operations (uppercase, lowercase, reverse, length)"
}
func (p *StringOps) Version() string { return "1.1.0" }

func (p *StringOps) RequiredParams() []string { return []string{"text"} }
func (p *StringOps) OptionalParams() []string { return []string{"operation"} }

func (p *StringOps) Execute(ctx context.Context, params map[string]any, ec *plugin.ExecutionContext) (map[string]any, error) {
	text, ok := params["text"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required parameter: text")
	}

	operation := "uppercase"
	if op, ok := params["operation"].(string); ok && op != "" {
		operation = op
	}

	var result any
	switch operation {
	case "uppercase":
		result = strings.ToUpper(text)
	case "lowercase":
		result = strings.ToLower(text)
	case "reverse":
		result = reverse(text)
	case "length":
		result = len(text)
	default:
		return nil, fmt.Errorf("unknown operation: %s", operation)
	}

	return map[string]any{
		"input":     text,
		"operation": operation,
		"result":    result,
		"status":    "success",
	}, nil
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
