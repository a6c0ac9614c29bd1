package session

// State is the session lifecycle state. Transitions:
//
//	Disconnected -> Connecting            Connect starts
//	Connecting   -> Disconnected          Connect fails (supervisor retries)
//	Connecting   -> Registered            Register's manifest write succeeds
//	Registered   -> Serving               Serve enters the receive loop
//	Serving      -> Closed                stream read fails or remote closes
//	any          -> ShuttingDown          Shutdown called
//	ShuttingDown -> Closed                stream released, final status checked
//
// Closed is terminal; the state machine does not self-heal in place.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateRegistered   State = "registered"
	StateServing      State = "serving"
	StateShuttingDown State = "shutting_down"
	StateClosed       State = "closed"
)
