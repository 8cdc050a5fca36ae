// Package e2e provides end-to-end tests for the complete tiergate flow.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crowelogic/tiergate/adapters/hasher"
	"github.com/crowelogic/tiergate/bootstrap"
	"github.com/crowelogic/tiergate/domain/tier"
	"golang.org/x/crypto/bcrypt"
)

const (
	testKey  = "sk_e2e_caller"
	adminKey = "e2e-operator"
)

// TestE2E_FullGenerateFlow tests the complete metered flow:
// 1. Start backend mock server
// 2. Start tiergate with sqlite stores and a seeded subscription
// 3. Make an authenticated generation request
// 4. Verify the branded response and usage tracking
func TestE2E_FullGenerateFlow(t *testing.T) {
	backend, calls := newBackend(t, http.StatusOK)
	env := setupTestApp(t, backend.URL, "essentials")

	resp := env.do(t, http.MethodPost, "/v1/generate", testKey, map[string]any{
		"prompt": "Summarize Q3",
		"model":  tier.ModelAnalytics,
	})
	body := readJSON(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %v", resp.StatusCode, body)
	}
	if body["text"] != "generated: Summarize Q3" {
		t.Errorf("text = %v", body["text"])
	}
	if body["tier"] != "essentials" || body["usage_tracked"] != true {
		t.Errorf("body = %v", body)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}

	resp = env.do(t, http.MethodGet, "/v1/subscription", testKey, nil)
	summary := readJSON(t, resp)
	if summary["calls_used"] != float64(1) || summary["quota"] != float64(10000) {
		t.Errorf("summary = %v", summary)
	}
	models, _ := summary["models_used"].(map[string]any)
	if models[tier.ModelAnalytics] != float64(1) {
		t.Errorf("models_used = %v", models)
	}
}

func TestE2E_AuthFailures(t *testing.T) {
	backend, calls := newBackend(t, http.StatusOK)
	env := setupTestApp(t, backend.URL, "freemium")

	tests := []struct {
		name   string
		apiKey string
		status int
		code   string
	}{
		{"missing key", "", http.StatusUnauthorized, "missing_api_key"},
		{"unknown key", "sk_nobody", http.StatusNotFound, "no_subscription"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/v1/generate", tt.apiKey, map[string]any{
				"prompt": "hi",
				"model":  tier.ModelAssistant,
			})
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if code := errorCode(t, resp); code != tt.code {
				t.Errorf("code = %s, want %s", code, tt.code)
			}
		})
	}
	if calls.Load() != 0 {
		t.Errorf("backend should not be called, got %d calls", calls.Load())
	}
}

// TestE2E_QuotaExhaustion fills a freemium quota to one below its limit,
// spends the last call, then expects the next to be refused.
func TestE2E_QuotaExhaustion(t *testing.T) {
	backend, calls := newBackend(t, http.StatusOK)
	env := setupTestApp(t, backend.URL, "freemium")

	if err := env.app.Engine.RecordUsage(context.Background(), hasher.CallerID(testKey), tier.ModelAssistant, 999); err != nil {
		t.Fatalf("preload usage: %v", err)
	}

	req := map[string]any{"prompt": "last one", "model": tier.ModelAssistant}
	resp := env.do(t, http.MethodPost, "/v1/generate", testKey, req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("call 1000 status = %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/v1/generate", testKey, req)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("call 1001 status = %d, want 429", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Quota-Remaining"); got != "0" {
		t.Errorf("X-Quota-Remaining = %q, want 0", got)
	}
	if code := errorCode(t, resp); code != "quota_exceeded" {
		t.Errorf("code = %s, want quota_exceeded", code)
	}
	if calls.Load() != 1 {
		t.Errorf("backend calls = %d, want 1", calls.Load())
	}
}

// TestE2E_UpgradeFlow walks a denied caller through an upgrade request that
// stays pending until an operator applies the tier.
func TestE2E_UpgradeFlow(t *testing.T) {
	backend, _ := newBackend(t, http.StatusOK)
	env := setupTestApp(t, backend.URL, "freemium")
	req := map[string]any{"prompt": "deep analysis", "model": tier.ModelIntelligence}

	resp := env.do(t, http.MethodPost, "/v1/generate", testKey, req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/v1/subscription/upgrade", testKey, map[string]any{"tier": "professional"})
	upgrade := readJSON(t, resp)
	if resp.StatusCode != http.StatusAccepted || upgrade["status"] != "pending_payment" {
		t.Fatalf("upgrade status = %d, body = %v", resp.StatusCode, upgrade)
	}

	resp = env.do(t, http.MethodPost, "/v1/generate", testKey, req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("pending upgrade should not change access, status = %d", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPut, "/admin/subscriptions/"+hasher.CallerID(testKey)+"/tier", adminKey, map[string]any{"tier": "professional"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin set tier status = %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/v1/generate", testKey, req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("after upgrade status = %d, want 200", resp.StatusCode)
	}

	resp = env.do(t, http.MethodPost, "/v1/subscription/upgrade", testKey, map[string]any{"tier": "essentials"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("downgrade request status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "not_an_upgrade" {
		t.Errorf("code = %s, want not_an_upgrade", code)
	}
}

func TestE2E_BackendFailureNotMetered(t *testing.T) {
	backend, calls := newBackend(t, http.StatusInternalServerError)
	env := setupTestApp(t, backend.URL, "essentials")

	resp := env.do(t, http.MethodPost, "/v1/generate", testKey, map[string]any{
		"prompt": "hi",
		"model":  tier.ModelAssistant,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if calls.Load() == 0 {
		t.Error("backend should have been called")
	}

	sum, err := env.app.Engine.UsageSummary(context.Background(), hasher.CallerID(testKey))
	if err != nil {
		t.Fatalf("UsageSummary error: %v", err)
	}
	if sum.CallsUsed != 0 {
		t.Errorf("CallsUsed = %d, want 0 after backend failure", sum.CallsUsed)
	}
}

func TestE2E_HealthEndpoints(t *testing.T) {
	backend, _ := newBackend(t, http.StatusOK)
	env := setupTestApp(t, backend.URL, "freemium")

	for _, path := range []string{"/health", "/health/live", "/health/ready", "/version", "/v1/pricing"} {
		resp := env.do(t, http.MethodGet, path, "", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}

	resp := env.do(t, http.MethodGet, "/admin/doctor", adminKey, nil)
	doctor := readJSON(t, resp)
	if s := doctor["status"]; s != "healthy" && s != "degraded" {
		t.Errorf("doctor = %v", doctor)
	}
}

func TestE2E_XAPIKeyHeader(t *testing.T) {
	backend, _ := newBackend(t, http.StatusOK)
	env := setupTestApp(t, backend.URL, "freemium")

	data, _ := json.Marshal(map[string]any{"prompt": "hi", "model": tier.ModelAssistant})
	req, _ := http.NewRequest(http.MethodPost, env.baseURL+"/v1/generate", bytes.NewReader(data))
	req.Header.Set("X-API-Key", testKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

// Helper functions

type testEnv struct {
	app     *bootstrap.App
	baseURL string
	client  *http.Client
}

func setupTestApp(t *testing.T, backendURL, seedTier string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "test.db")

	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}

	configContent := fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: 0

auth:
  admin_key_hash: "%s"

storage:
  subscriptions: sqlite
  usage: sqlite
  dsn: "%s"

backend:
  kind: remote
  url: "%s"
  timeout: 5s

usage:
  prune_interval: 1h

logging:
  level: error
  format: json

subscriptions:
  - api_key: "%s"
    tier: %s
`, hash, dbPath, backendURL, testKey, seedTier)

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	app, err := bootstrap.New(bootstrap.Options{ConfigPath: configPath, Version: "e2e", LogOutput: io.Discard})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	t.Cleanup(func() { app.Shutdown() })

	return &testEnv{
		app:     app,
		baseURL: "http://" + startServer(t, app),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func newBackend(t *testing.T, status int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/generate" {
			t.Errorf("backend path = %s, want /generate", r.URL.Path)
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]string{"error": "backend down"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"text":          "generated: " + req.Prompt,
			"input_tokens":  3,
			"output_tokens": 5,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func startServer(t *testing.T, app *bootstrap.App) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	app.HTTPServer.Addr = addr

	go func() {
		// ErrServerClosed after Shutdown is expected
		_ = app.HTTPServer.Serve(listener)
	}()

	waitForServer(t, addr)
	return addr
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()
	client := &http.Client{Timeout: 100 * time.Millisecond}

	for i := 0; i < 50; i++ {
		resp, err := client.Get("http://" + addr + "/health")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready", addr)
}

func (e *testEnv) do(t *testing.T, method, path, key string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// errorCode returns the code of the first JSON:API error in resp.
func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := readJSON(t, resp)
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected errors array, got %v", body)
	}
	first, _ := errs[0].(map[string]any)
	code, _ := first["code"].(string)
	return code
}
