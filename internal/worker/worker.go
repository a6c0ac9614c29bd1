// Package worker orchestrates all components: config, plugin registry,
// session, supervisor, signal handling, and the HTTP health endpoint.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/internal/config"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugins"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/protocol"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/session"
)

const logPrefix = "worker:worker"

// BuiltinRegistry returns a registry populated with the worker's built-in
// handler units.
func BuiltinRegistry() *plugin.Registry {
	reg := plugin.NewRegistry()
	reg.Register(plugins.NewHello())
	reg.Register(plugins.NewStringOps())
	reg.Register(plugins.NewBase64())
	reg.Register(plugins.NewChecksum())
	reg.Register(plugins.NewCompose())
	return reg
}

// Run starts the worker, blocks until the session ends or a shutdown signal
// arrives, then cleans up. Connection-retry exhaustion is logged, not
// escalated: the process still exits cleanly.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	identity := protocol.WorkerIdentity{WorkerID: cfg.WorkerID, WorkerType: cfg.WorkerType}
	slog.Info(fmt.Sprintf("%s - Starting worker %s (type %s)", logPrefix, identity.WorkerID, identity.WorkerType))

	// Registry is populated once here, before the session connects; it is
	// read-only from then on.
	registry := BuiltinRegistry()

	sess := session.New(identity, registry, session.Config{
		HubSubject:        cfg.HubSubject,
		HeartbeatInterval: cfg.HeartbeatInterval,
		RequestTimeout:    cfg.RequestTimeout,
	})

	var httpServer *http.Server
	if cfg.HTTPPort > 0 {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler: newHealthMux(identity, registry, sess),
		}
		go func() {
			slog.Info(fmt.Sprintf("%s - HTTP health server listening on %s", logPrefix, httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
			}
		}()
	}

	// Signal handling drives shutdown through the explicit session handle;
	// there is no process-wide worker singleton.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig, ok := <-sigCh
		if !ok {
			return
		}
		slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))
		sess.Shutdown()
	}()

	sup := session.NewSupervisor(sess, cfg.HubURL, cfg.MaxRetries, cfg.RetryDelay)
	if err := sup.Run(); err != nil {
		if errors.Is(err, session.ErrRetriesExhausted) {
			slog.Error(fmt.Sprintf("%s - could not reach hub at %s", logPrefix, cfg.HubURL))
		} else {
			slog.Error(fmt.Sprintf("%s - supervisor error: %v", logPrefix, err))
		}
	}

	signal.Stop(sigCh)
	close(sigCh)
	sess.Shutdown()
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(ctx)
	}

	slog.Info(fmt.Sprintf("%s - Worker finished", logPrefix))
	return nil
}
