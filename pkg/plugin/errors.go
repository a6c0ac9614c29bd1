package plugin

import "fmt"

// Dispatch error codes. Every error returned by Registry.Dispatch carries
// exactly one of these.
const (
	CodeCapabilityNotFound = "CAPABILITY_NOT_FOUND"
	CodeMalformedParams    = "MALFORMED_PARAMS"
	CodeExecutionFailed    = "EXECUTION_FAILED"
)

// DispatchError is the structured failure returned by Registry.Dispatch.
// The message is wire-visible: it ends up in the error RESPONSE sent back
// to the hub.
type DispatchError struct {
	Code    string
	Message string
}

func (e *DispatchError) Error() string {
	return e.Message
}

func notFoundError(capability string) *DispatchError {
	return &DispatchError{
		Code:    CodeCapabilityNotFound,
		Message: fmt.Sprintf("capability not found: %s", capability),
	}
}

func malformedParamsError(capability string, err error) *DispatchError {
	return &DispatchError{
		Code:    CodeMalformedParams,
		Message: fmt.Sprintf("malformed params for capability %s: %v", capability, err),
	}
}

func executionError(capability string, err error) *DispatchError {
	return &DispatchError{
		Code:    CodeExecutionFailed,
		Message: fmt.Sprintf("capability %s failed: %v", capability, err),
	}
}
