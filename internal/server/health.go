package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves the liveness and readiness checks of the HTTP
// transport. It starts out ready; the HTTP server flips it during shutdown.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a ready HealthChecker. sc may be nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state reported by /readyz.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server accepts traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	HealthResponse
	Uptime         string `json:"uptime"`
	CachedAccounts int    `json:"cached_accounts"`
	TokenStore     bool   `json:"token_store"`
	EnvToken       bool   `json:"env_token"`
}

// evaluate runs the readiness checks and returns the overall status and the
// HTTP status code to answer with.
func (h *HealthChecker) evaluate() (HealthResponse, int) {
	resp := HealthResponse{
		Status: healthStatusOK,
		Checks: map[string]string{"ready": healthStatusOK, "shutdown": healthStatusOK},
	}
	code := http.StatusOK

	if !h.ready.Load() {
		resp.Checks["ready"] = healthStatusNotReady
		resp.Status = healthStatusNotReady
		code = http.StatusServiceUnavailable
	}
	if h.serverContext != nil && h.serverContext.IsShutdown() {
		resp.Checks["shutdown"] = healthStatusShuttingDown
		if resp.Status == healthStatusOK {
			resp.Status = healthStatusShuttingDown
		}
		code = http.StatusServiceUnavailable
	}
	return resp, code
}

func writeHealth(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// LivenessHandler answers /healthz. It only fails when the process cannot
// serve HTTP at all.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler answers /readyz with 503 while not ready or shutting down.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp, code := h.evaluate()
		writeHealth(w, code, resp)
	})
}

// DetailedHealthHandler answers /healthz/detailed with the readiness checks
// plus uptime and the credential sources of the ClickUp clients.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		base, code := h.evaluate()
		resp := DetailedHealthResponse{
			HealthResponse: base,
			Uptime:         time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if sc := h.serverContext; sc != nil {
			resp.CachedAccounts = sc.CachedAccounts()
			resp.TokenStore = sc.TokenStore() != nil
			resp.EnvToken = sc.baseConfig.AccessToken != ""
		}
		writeHealth(w, code, resp)
	})
}

// RegisterHealthEndpoints mounts the health endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
