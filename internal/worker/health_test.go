package worker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/protocol"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/session"
)

const healthTestPrefix = "worker:health_test"

func TestBuiltinRegistry(t *testing.T) {
	reg := BuiltinRegistry()
	if reg.Len() != 5 {
		t.Fatalf("%s - Len = %d, want 5 built-in capabilities", healthTestPrefix, reg.Len())
	}
	for _, name := range []string{"hello", "string_ops", "base64", "checksum", "compose"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Errorf("%s - built-in %s missing", healthTestPrefix, name)
		}
	}

	// The manifest carries each plugin's own version, not the default.
	for _, d := range reg.Descriptors() {
		if d.Name == "string_ops" && d.Version != "1.1.0" {
			t.Errorf("%s - string_ops version = %q, want 1.1.0", healthTestPrefix, d.Version)
		}
	}
}

func TestHealthMux(t *testing.T) {
	identity := protocol.WorkerIdentity{WorkerID: "test-worker", WorkerType: "go"}
	registry := BuiltinRegistry()
	sess := session.New(identity, registry, session.Config{})
	mux := newHealthMux(identity, registry, sess)

	// Not serving: /health reports unhealthy with 503.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("%s - /health status = %d, want 503 while disconnected", healthTestPrefix, rec.Code)
	}
	var h healthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("%s - /health body not JSON: %v", healthTestPrefix, err)
	}
	if h.Status != "unhealthy" || h.SessionState != session.StateDisconnected {
		t.Errorf("%s - /health body = %+v", healthTestPrefix, h)
	}
	if h.WorkerID != "test-worker" || h.Capabilities != 5 {
		t.Errorf("%s - /health identity = %+v", healthTestPrefix, h)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("%s - /ready status = %d, want 200", healthTestPrefix, rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/capabilities", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("%s - /capabilities status = %d, want 200", healthTestPrefix, rec.Code)
	}
	var descriptors []plugin.Descriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &descriptors); err != nil {
		t.Fatalf("%s - /capabilities body not JSON: %v", healthTestPrefix, err)
	}
	if len(descriptors) != 5 {
		t.Errorf("%s - /capabilities returned %d entries, want 5", healthTestPrefix, len(descriptors))
	}
}
