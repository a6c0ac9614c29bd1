// Package protocol defines the wire envelope exchanged with the hub and the
// helpers that build and parse it. The content field of every message is a
// serialized JSON payload; the shapes for each message type live here too.
package protocol

import (
	"encoding/json"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
)

// MessageType is the kind of a wire envelope.
type MessageType string

// Message kinds understood by the worker. Envelopes of any other type are
// silently ignored by the serve loop (forward-compatibility policy).
const (
	MessageTypeRegister   MessageType = "REGISTER"
	MessageTypeRequest    MessageType = "REQUEST"
	MessageTypeResponse   MessageType = "RESPONSE"
	MessageTypeHeartbeat  MessageType = "HEARTBEAT"
	MessageTypeWorkerCall MessageType = "WORKER_CALL"
)

// HubID is the well-known recipient identity of the hub.
const HubID = "hub"

// WorkerIdentity identifies one worker process. Immutable after construction.
type WorkerIdentity struct {
	WorkerID   string `json:"worker_id"`
	WorkerType string `json:"worker_type"`
}

// Message is the wire envelope. ID is the correlation token: hub-assigned on
// REQUEST, echoed on RESPONSE. Metadata is an optional side channel; for a
// REQUEST it may carry the capability name.
type Message struct {
	Type      MessageType       `json:"type"`
	ID        string            `json:"id"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Content   string            `json:"content"`
	Timestamp string            `json:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// RegistrationContent is the REGISTER payload.
type RegistrationContent struct {
	WorkerID     string              `json:"worker_id"`
	WorkerType   string              `json:"worker_type"`
	Capabilities []plugin.Descriptor `json:"capabilities"`
	Status       string              `json:"status"`
	Metadata     map[string]string   `json:"metadata,omitempty"`
}

// ResponseContent is the RESPONSE payload: exactly one of Result or Error is
// populated, according to Success.
type ResponseContent struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// HeartbeatContent is the HEARTBEAT payload.
type HeartbeatContent struct {
	WorkerID     string `json:"worker_id"`
	Status       string `json:"status"`
	Capabilities int    `json:"capabilities"`
}

// Encode serializes a message for the wire.
func Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode deserializes a wire message.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
