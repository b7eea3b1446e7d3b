package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/clickup-mcp/internal/instrumentation"
)

func TestHTTPServer_HealthEndpoints(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Shutdown()

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	srv := NewHTTPServer(mcpSrv, sc, HTTPServerConfig{Addr: ":0"})
	defer srv.sessions.Stop()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}

	srv.HealthChecker().SetReady(false)
	resp, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz status = %d, want 503", resp.StatusCode)
	}
}

func TestHTTPServer_HTTPContext(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Shutdown()

	srv := NewHTTPServer(mcpserver.NewMCPServer("test", "0.0.0"), sc, HTTPServerConfig{})
	defer srv.sessions.Stop()

	r := httptest.NewRequest(http.MethodPost, MCPEndpointPath, nil)
	r.Header.Set(AccountHeader, "work")
	ctx := srv.httpContext(context.Background(), r)
	if got, ok := AccountFromContext(ctx); !ok || got != "work" {
		t.Errorf("AccountFromContext() = %q, %v; want work, true", got, ok)
	}

	r = httptest.NewRequest(http.MethodPost, MCPEndpointPath, nil)
	ctx = srv.httpContext(context.Background(), r)
	if _, ok := AccountFromContext(ctx); ok {
		t.Error("expected no account without header")
	}
}

func TestMetricsMiddleware(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := NewServerContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Shutdown()
	sc.SetMetrics(metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	handler := MetricsMiddleware(sc, mux)

	for _, path := range []string{"/healthz", "/healthz", "/random/123"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}

	byPath := map[string]int64{}
	statuses := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				path, _ := dp.Attributes.Value(attribute.Key("path"))
				status, _ := dp.Attributes.Value(attribute.Key("status"))
				byPath[path.AsString()] += dp.Value
				statuses[status.AsString()] += dp.Value
			}
		}
	}

	if byPath["/healthz"] != 2 {
		t.Errorf("/healthz requests = %d, want 2", byPath["/healthz"])
	}
	if byPath["other"] != 1 {
		t.Errorf("other requests = %d, want 1", byPath["other"])
	}
	if statuses["404"] != 1 || statuses["200"] != 2 {
		t.Errorf("statuses = %v, want 200:2 404:1", statuses)
	}
}

func TestHTTPServer_RateLimit(t *testing.T) {
	sc, err := NewServerContext(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer sc.Shutdown()

	srv := NewHTTPServer(mcpserver.NewMCPServer("test", "0.0.0"), sc, HTTPServerConfig{RateLimit: 0.001, RateBurst: 1})
	defer srv.Shutdown(context.Background())

	handler := srv.Handler()
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, MCPEndpointPath, strings.NewReader("not json"))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] == http.StatusTooManyRequests {
		t.Errorf("first request was rate limited")
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", codes[1])
	}

	// health endpoints are not limited
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", rec.Code)
	}
}
