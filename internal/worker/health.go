package worker

import (
	"encoding/json"
	"net/http"

	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/plugin"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/protocol"
	"github.com/doanngocthanh9x/deepapp-golang-grpc-hub/pkg/session"
)

// healthStatus is the /health response body.
type healthStatus struct {
	Status       string        `json:"status"`
	WorkerID     string        `json:"worker_id"`
	WorkerType   string        `json:"worker_type"`
	SessionState session.State `json:"session_state"`
	Capabilities int           `json:"capabilities"`
}

// newHealthMux builds the worker's HTTP surface: /health, /ready, and
// /capabilities, all JSON. The worker is "healthy" only while its session
// is serving.
func newHealthMux(identity protocol.WorkerIdentity, registry *plugin.Registry, sess *session.Session) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		state := sess.State()
		h := healthStatus{
			Status:       "healthy",
			WorkerID:     identity.WorkerID,
			WorkerType:   identity.WorkerType,
			SessionState: state,
			Capabilities: registry.Len(),
		}
		w.Header().Set("Content-Type", "application/json")
		if state != session.StateServing {
			h.Status = "unhealthy"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	mux.HandleFunc("/capabilities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(registry.Descriptors())
	})

	return mux
}
