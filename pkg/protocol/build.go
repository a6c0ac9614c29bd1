package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// StatusActive is the status a worker advertises in its manifest.
const StatusActive = "active"

// sdkVersion is reported in registration metadata.
const sdkVersion = "1.0.0"

func newID(kind string) string {
	return kind + "-" + uuid.Must(uuid.NewV7()).String()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewRegistration builds the REGISTER manifest announcing the worker's
// identity and capabilities to the hub.
func NewRegistration(identity WorkerIdentity, capabilities []plugin.Descriptor) (*Message, error) {
	content, err := json.Marshal(RegistrationContent{
		WorkerID:     identity.WorkerID,
		WorkerType:   identity.WorkerType,
		Capabilities: capabilities,
		Status:       StatusActive,
		Metadata:     map[string]string{"sdk_version": sdkVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal registration: %w", err)
	}

	return &Message{
		Type:      MessageTypeRegister,
		ID:        newID("register"),
		From:      identity.WorkerID,
		To:        HubID,
		Content:   string(content),
		Timestamp: timestamp(),
	}, nil
}

// NewResponse builds the success RESPONSE for a served request: same
// correlation id, addressed back to the request's sender. Responses to
// WORKER_CALL requests additionally carry the request id in metadata so the
// calling worker can match them.
func NewResponse(workerID string, req *Message, result json.RawMessage) (*Message, error) {
	return respond(workerID, req, ResponseContent{Success: true, Result: result})
}

// NewErrorResponse builds the failure RESPONSE for a served request.
func NewErrorResponse(workerID string, req *Message, errMsg string) (*Message, error) {
	return respond(workerID, req, ResponseContent{Success: false, Error: errMsg})
}

func respond(workerID string, req *Message, body ResponseContent) (*Message, error) {
	content, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	msg := &Message{
		Type:      MessageTypeResponse,
		ID:        req.ID,
		From:      workerID,
		To:        req.From,
		Content:   string(content),
		Timestamp: timestamp(),
	}
	if req.Type == MessageTypeWorkerCall {
		msg.Metadata = map[string]string{"request_id": req.ID}
	}
	return msg, nil
}

// NewHeartbeat builds the periodic HEARTBEAT message.
func NewHeartbeat(identity WorkerIdentity, capabilities int) (*Message, error) {
	content, err := json.Marshal(HeartbeatContent{
		WorkerID:     identity.WorkerID,
		Status:       StatusActive,
		Capabilities: capabilities,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal heartbeat: %w", err)
	}

	return &Message{
		Type:      MessageTypeHeartbeat,
		ID:        newID("heartbeat"),
		From:      identity.WorkerID,
		To:        HubID,
		Content:   string(content),
		Timestamp: timestamp(),
	}, nil
}

// NewWorkerCall builds a WORKER_CALL request targeting a capability on
// another worker, routed through the hub.
func NewWorkerCall(from, target, capability string, params map[string]any) (*Message, error) {
	content, err := json.Marshal(map[string]any{
		"capability": capability,
		"params":     params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal worker call: %w", err)
	}

	return &Message{
		Type:      MessageTypeWorkerCall,
		ID:        newID("call"),
		From:      from,
		To:        target,
		Content:   string(content),
		Timestamp: timestamp(),
		Metadata:  map[string]string{"capability": capability},
	}, nil
}
