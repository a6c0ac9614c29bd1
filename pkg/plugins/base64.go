package plugins

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// Base64 encodes and decodes base64 strings.
type Base64 struct{}

// NewBase64 creates the base64 plugin.
func NewBase64() *Base64 { return &Base64{} }

func (p *Base64) Name() string        { return "base64" }
func (p *Base64) Description() string { return "Encode or decode base64 strings" }
func (p *Base64) Version() string     { return "1.0.0" }

func (p *Base64) RequiredParams() []string { return []string{"text"} }
func (p *Base64) OptionalParams() []string { return []string{"action"} }

func (p *Base64) Execute(ctx context.Context, params map[string]any, ec *plugin.ExecutionContext) (map[string]any, error) {
	text, ok := params["text"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("missing required parameter: text")
	}

	action := "encode"
	if a, ok := params["action"].(string); ok && a != "" {
		action = a
	}

	var result string
	switch action {
	case "encode":
		result = base64.StdEncoding.EncodeToString([]byte(text))
	case "decode":
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decode error: %v", err)
		}
		result = string(decoded)
	default:
		return nil, fmt.Errorf("unsupported action: %s", action)
	}

	return map[string]any{
		"input":  text,
		"action": action,
		"result": result,
		"status": "success",
	}, nil
}
