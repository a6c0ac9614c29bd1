// Package session implements the worker side of the hub session protocol:
// connect with supervisor-driven retry, capability registration, and the
// synchronous receive/dispatch/respond loop over the worker's inbox.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/commsutil"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/protocol"
)

const logPrefix = "session:session"

// Config holds session tuning parameters.
type Config struct {
	// HubSubject is where the worker publishes REGISTER, RESPONSE, and
	// HEARTBEAT messages.
	HubSubject string
	// HeartbeatInterval is the period between HEARTBEAT messages while
	// serving; zero disables the heartbeat.
	HeartbeatInterval time.Duration
	// RequestTimeout bounds a single dispatch.
	RequestTimeout time.Duration
	// ReadPollInterval bounds how long a shutdown waits for the next
	// stream-read boundary.
	ReadPollInterval time.Duration
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		HubSubject:        commsutil.SubjectHubInbox,
		HeartbeatInterval: 30 * time.Second,
		RequestTimeout:    25 * time.Second,
		ReadPollInterval:  250 * time.Millisecond,
	}
}

// busConn is the connection resource backing one session: the COMMS
// connection plus the inbox subscription, acquired atomically in Connect and
// released exactly once on every exit path.
type busConn struct {
	nc   *comms.Conn
	sub  *comms.Subscription
	once sync.Once
}

// release half-closes the write side (unsubscribe, flush pending writes),
// closes the connection, and checks the final connection status. A non-ok
// final status is logged, never escalated.
func (c *busConn) release() {
	c.once.Do(func() {
		c.sub.Unsubscribe()
		c.nc.FlushTimeout(2 * time.Second)
		err := c.nc.LastError()
		c.nc.Close()
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - stream closed with error: %v", logPrefix, err))
		}
	})
}

// Session owns the stream to the hub and drives the
// connect/register/serve/shutdown lifecycle. A Session whose stream has
// closed is spent: reconnection means a fresh Connect, which builds a fresh
// connection resource.
type Session struct {
	identity protocol.WorkerIdentity
	registry *plugin.Registry
	cfg      Config
	ec       *plugin.ExecutionContext

	mu    sync.Mutex
	state State
	conn  *busConn

	running atomic.Bool
}

// New creates a disconnected Session over the given registry. The registry
// must be fully populated before Connect; it is read-only afterwards.
func New(identity protocol.WorkerIdentity, registry *plugin.Registry, cfg Config) *Session {
	def := DefaultConfig()
	if cfg.HubSubject == "" {
		cfg.HubSubject = def.HubSubject
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.ReadPollInterval <= 0 {
		cfg.ReadPollInterval = def.ReadPollInterval
	}

	s := &Session{
		identity: identity,
		registry: registry,
		cfg:      cfg,
		state:    StateDisconnected,
	}
	s.ec = &plugin.ExecutionContext{
		WorkerID:   identity.WorkerID,
		WorkerType: identity.WorkerType,
		CallWorker: s.Invoke,
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Connect establishes the connection resource for one session: the COMMS
// connection and the worker's inbox subscription. It returns false instead
// of an error on any failure so the supervisor can retry; a failed attempt
// leaves nothing behind, and every attempt builds a fresh resource.
func (s *Session) Connect(url string) bool {
	s.setState(StateConnecting)

	nc, err := commsutil.Connect(url, s.identity.WorkerID)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - connect failed: %v", logPrefix, err))
		s.setState(StateDisconnected)
		return false
	}

	sub, err := nc.SubscribeSync(commsutil.BuildWorkerSubject(s.identity.WorkerID))
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - inbox subscribe failed: %v", logPrefix, err))
		nc.Close()
		s.setState(StateDisconnected)
		return false
	}

	s.mu.Lock()
	s.conn = &busConn{nc: nc, sub: sub}
	s.mu.Unlock()

	slog.Info(fmt.Sprintf("%s - connected to hub, inbox %s", logPrefix, sub.Subject))
	return true
}

// Register writes the capability manifest to the stream. A write failure is
// reported but is deliberately soft: the caller should keep serving, since a
// partially registered worker can still answer well-formed requests.
func (s *Session) Register() error {
	msg, err := protocol.NewRegistration(s.identity, s.registry.Descriptors())
	if err != nil {
		return fmt.Errorf("%s - build registration: %w", logPrefix, err)
	}

	if err := s.write(msg); err != nil {
		return fmt.Errorf("%s - registration write: %w", logPrefix, err)
	}

	s.setState(StateRegistered)
	slog.Info(fmt.Sprintf("%s - registered %d capabilities", logPrefix, s.registry.Len()))
	return nil
}

// Serve blocks reading the inbox one message at a time. Each REQUEST (or
// WORKER_CALL) runs synchronously to completion, response write included,
// before the next read; other message types are silently dropped. The loop
// exits when the stream read fails, the remote closes, or Shutdown clears
// the running flag, and always leaves the session Closed.
func (s *Session) Serve() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		slog.Warn(fmt.Sprintf("%s - serve called without a connection", logPrefix))
		s.setState(StateClosed)
		return
	}

	s.running.Store(true)
	s.setState(StateServing)
	slog.Info(fmt.Sprintf("%s - listening for requests", logPrefix))

	hbStop := make(chan struct{})
	if s.cfg.HeartbeatInterval > 0 {
		go s.heartbeatLoop(hbStop)
	}

	for s.running.Load() {
		raw, err := conn.sub.NextMsg(s.cfg.ReadPollInterval)
		if err == comms.ErrTimeout {
			continue
		}
		if err != nil {
			if s.running.Load() {
				slog.Info(fmt.Sprintf("%s - stream ended: %v", logPrefix, err))
			}
			break
		}

		msg, err := protocol.Decode(raw.Data)
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - dropping undecodable message: %v", logPrefix, err))
			continue
		}

		switch msg.Type {
		case protocol.MessageTypeRequest, protocol.MessageTypeWorkerCall:
			s.handleRequest(raw, msg)
		default:
			// Unknown or irrelevant message types are dropped, never errors.
		}
	}

	s.running.Store(false)
	close(hbStop)
	conn.release()
	s.setState(StateClosed)
	slog.Info(fmt.Sprintf("%s - serve loop exited", logPrefix))
}

// Shutdown stops the session cooperatively. It is idempotent and safe to
// call from a signal goroutine at any lifecycle point; an in-flight handler
// is not aborted, the loop exits at the next read boundary.
func (s *Session) Shutdown() {
	wasServing := s.running.Swap(false)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateShuttingDown
	conn := s.conn
	s.mu.Unlock()

	slog.Info(fmt.Sprintf("%s - shutting down", logPrefix))
	if wasServing {
		// The serve loop notices the cleared flag within one read poll and
		// releases the connection on its own exit path, so an in-flight
		// response is still written before the stream closes.
		return
	}
	if conn != nil {
		conn.release()
	}
	s.setState(StateClosed)
}

// handleRequest runs the per-request procedure. No failure here may
// terminate the serve loop: every failure becomes an error RESPONSE
// addressed back to the sender under the request's correlation id.
func (s *Session) handleRequest(raw *comms.Msg, msg *protocol.Message) {
	capability, params, err := msg.RequestBody()
	if err != nil {
		s.respondError(raw, msg, err.Error())
		return
	}

	slog.Info(fmt.Sprintf("%s - request %s: %s from %s", logPrefix, msg.ID, capability, msg.From))

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.registry.Dispatch(ctx, s.ec, capability, params)
	if err != nil {
		s.respondError(raw, msg, err.Error())
		return
	}

	resp, err := protocol.NewResponse(s.identity.WorkerID, msg, result)
	if err != nil {
		s.respondError(raw, msg, err.Error())
		return
	}
	if err := s.reply(raw, resp); err != nil {
		slog.Warn(fmt.Sprintf("%s - response write failed for %s: %v", logPrefix, msg.ID, err))
	}
}

func (s *Session) respondError(raw *comms.Msg, msg *protocol.Message, errMsg string) {
	resp, err := protocol.NewErrorResponse(s.identity.WorkerID, msg, errMsg)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - build error response for %s: %v", logPrefix, msg.ID, err))
		return
	}
	if err := s.reply(raw, resp); err != nil {
		slog.Warn(fmt.Sprintf("%s - error response write failed for %s: %v", logPrefix, msg.ID, err))
	}
}

// reply routes a response either to the request's reply inbox (hub used
// request-reply) or to the hub subject (hub reads its inbox).
func (s *Session) reply(raw *comms.Msg, resp *protocol.Message) error {
	data, err := protocol.Encode(resp)
	if err != nil {
		return err
	}
	if raw.Reply != "" {
		return raw.Respond(data)
	}
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no connection")
	}
	return conn.nc.Publish(s.cfg.HubSubject, data)
}

// write publishes a worker-originated message to the hub subject and flushes
// so write failures surface to the caller.
func (s *Session) write(msg *protocol.Message) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no connection")
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	if err := conn.nc.Publish(s.cfg.HubSubject, data); err != nil {
		return err
	}
	return conn.nc.FlushTimeout(5 * time.Second)
}

// heartbeatLoop publishes HEARTBEAT messages until stopped.
func (s *Session) heartbeatLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			msg, err := protocol.NewHeartbeat(s.identity, s.registry.Len())
			if err != nil {
				continue
			}
			if err := s.write(msg); err != nil {
				slog.Warn(fmt.Sprintf("%s - heartbeat write failed: %v", logPrefix, err))
			}
		}
	}
}

// Invoke calls a capability on another worker through the hub and waits for
// the correlated response or ctx expiry. It is what ExecutionContext's
// CallWorker is bound to. The call is a hub request-reply, so it does not
// interleave with the serve loop's one-request-at-a-time cycle.
func (s *Session) Invoke(ctx context.Context, target, capability string, params map[string]any) (map[string]any, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("worker is not connected")
	}

	msg, err := protocol.NewWorkerCall(s.identity.WorkerID, target, capability, params)
	if err != nil {
		return nil, err
	}
	data, err := protocol.Encode(msg)
	if err != nil {
		return nil, err
	}

	reply, err := conn.nc.RequestWithContext(ctx, s.cfg.HubSubject, data)
	if err != nil {
		return nil, fmt.Errorf("no response from %s for %s: %w", target, capability, err)
	}

	resp, err := protocol.Decode(reply.Data)
	if err != nil {
		return nil, fmt.Errorf("undecodable response from %s: %w", target, err)
	}
	var body protocol.ResponseContent
	if err := json.Unmarshal([]byte(resp.Content), &body); err != nil {
		return nil, fmt.Errorf("malformed response content from %s: %w", target, err)
	}
	if !body.Success {
		return nil, fmt.Errorf("%s.%s failed: %s", target, capability, body.Error)
	}

	result := make(map[string]any)
	if len(body.Result) > 0 {
		if err := json.Unmarshal(body.Result, &result); err != nil {
			return nil, fmt.Errorf("malformed result from %s: %w", target, err)
		}
	}
	return result, nil
}
