package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const supervisorPrefix = "session:supervisor"

// ErrRetriesExhausted is returned by Supervisor.Run when every connection
// attempt failed. Callers are expected to log it, not escalate it.
var ErrRetriesExhausted = errors.New("connection retries exhausted")

// Runner is the session surface the supervisor drives.
type Runner interface {
	Connect(url string) bool
	Register() error
	Serve()
}

// Supervisor wraps a session with bounded fixed-delay retry around
// connection establishment. One successful session lifetime is the whole
// run: it does not reconnect after a session that connected and later ended,
// only after failed connection attempts. No backoff, no jitter.
type Supervisor struct {
	session    Runner
	hubURL     string
	maxRetries int
	retryDelay time.Duration
}

// NewSupervisor creates a Supervisor for the given session.
func NewSupervisor(session Runner, hubURL string, maxRetries int, retryDelay time.Duration) *Supervisor {
	return &Supervisor{
		session:    session,
		hubURL:     hubURL,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Run attempts to connect up to maxRetries times. On success it registers
// (a registration write failure is a soft warning, the session serves
// anyway) and serves to completion. Exhausting all retries returns
// ErrRetriesExhausted after a log line.
func (sv *Supervisor) Run() error {
	for attempt := 1; attempt <= sv.maxRetries; attempt++ {
		if sv.session.Connect(sv.hubURL) {
			if err := sv.session.Register(); err != nil {
				slog.Warn(fmt.Sprintf("%s - registration failed, serving anyway: %v", supervisorPrefix, err))
			}
			sv.session.Serve()
			return nil
		}

		slog.Info(fmt.Sprintf("%s - connect attempt %d/%d failed, retrying in %s", supervisorPrefix, attempt, sv.maxRetries, sv.retryDelay))
		time.Sleep(sv.retryDelay)
	}

	slog.Error(fmt.Sprintf("%s - giving up after %d connect attempts", supervisorPrefix, sv.maxRetries))
	return ErrRetriesExhausted
}
