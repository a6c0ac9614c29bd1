package plugins

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// Checksum computes hash digests of text.
type Checksum struct{}

// NewChecksum creates the checksum plugin.
func NewChecksum() *Checksum { return &Checksum{} }

func (p *Checksum) Name() string        { return "checksum" }
func (p *Checksum) Description() string { return "Compute a hash digest (sha256, sha1, md5) of text" }
func (p *Checksum) Version() string     { return "1.0.0" }

func (p *Checksum) RequiredParams() []string { return []string{"text"} }
func (p *Checksum) OptionalParams() []string { return []string{"algorithm"} }

func (p *Checksum) Execute(ctx context.Context, params map[string]any, ec *plugin.ExecutionContext) (map[string]any, error) {
	text, ok := params["text"].(string)
	if !ok || text == "" {
		return nil, fmt.Errorf("missing required parameter: text")
	}

	algorithm := "sha256"
	if a, ok := params["algorithm"].(string); ok && a != "" {
		algorithm = strings.ToLower(a)
	}

	var digest string
	switch algorithm {
	case "sha256":
		digest = fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
	case "sha1":
		digest = fmt.Sprintf("%x", sha1.Sum([]byte(text)))
	case "md5":
		digest = fmt.Sprintf("%x", md5.Sum([]byte(text)))
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", algorithm)
	}

	return map[string]any{
		"text":      text,
		"algorithm": algorithm,
		"digest":    digest,
		"status":    "success",
	}, nil
}
