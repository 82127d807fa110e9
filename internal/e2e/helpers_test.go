package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tetherworker/internal/gateway"
	"tetherworker/internal/health"
	"tetherworker/internal/httpapi"
	"tetherworker/internal/provider"
)

// fakeProvider is an OpenAI-compatible chat completions endpoint.
type fakeProvider struct {
	*httptest.Server
	calls atomic.Int32
}

func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{}
	fp.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.calls.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fp.Close)
	return fp
}

// newWorker wires the worker the way main does. baseURL empty means no provider client.
func newWorker(t *testing.T, apiKey, baseURL string) *httptest.Server {
	t.Helper()
	t.Setenv(provider.EnvAPIKey, apiKey)
	t.Setenv(provider.EnvAccessToken, "")

	var completer gateway.Completer
	if c, err := provider.New(provider.Config{APIKey: apiKey, BaseURL: baseURL, Timeout: 2 * time.Second}); err == nil {
		completer = c
	}
	gw := gateway.New(completer, provider.HasCredential, zerolog.Nop())
	rep := health.NewReporter(nil, health.WithInterval(10*time.Millisecond))
	srv := httptest.NewServer(httpapi.NewMux(rep, gw))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}
