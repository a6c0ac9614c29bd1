package protocol

import (
	"encoding/json"
	"fmt"
)

// RequestBody extracts the capability name and parameter payload from a
// REQUEST (or WORKER_CALL) envelope. The capability comes from envelope
// metadata first, falling back to a "capability" field inside the content.
// Params come from a "params" sub-field when present; otherwise the whole
// content is the parameter object, so both wrapped and unwrapped request
// shapes are accepted. The returned errors are wire-visible: they become
// the error field of the RESPONSE.
func (m *Message) RequestBody() (capability string, params json.RawMessage, err error) {
	var content map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
		return "", nil, fmt.Errorf("malformed request content: %v", err)
	}

	capability = m.Metadata["capability"]
	if capability == "" {
		if raw, ok := content["capability"]; ok {
			// A non-string capability field is treated as absent.
			_ = json.Unmarshal(raw, &capability)
		}
	}
	if capability == "" {
		return "", nil, fmt.Errorf("request %s names no capability", m.ID)
	}

	params = json.RawMessage(m.Content)
	if raw, ok := content["params"]; ok {
		params = raw
	}
	return capability, params, nil
}
