package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tetherworker/pkg/types"
)

type mockHealth struct{ resp types.HealthResponse }

func (m *mockHealth) Report(ctx context.Context) types.HealthResponse { return m.resp }

type mockInfer struct {
	calls int
	last  types.InferRequest
	resp  *types.InferResponse
}

func (m *mockInfer) Infer(ctx context.Context, req types.InferRequest) types.InferResponse {
	m.calls++
	m.last = req
	if m.resp != nil {
		return *m.resp
	}
	return types.InferResponse{Model: req.Model, Output: "Echo: " + req.Prompt, MaxTokens: req.MaxTokens, Provider: types.ProviderEcho}
}

func newTestMux() (http.Handler, *mockHealth, *mockInfer) {
	hr := &mockHealth{resp: types.HealthResponse{Status: "ok", CPUPercent: 4.2, Memory: types.MemorySnapshot{Total: 100, Available: 40, Used: 60, Percent: 60}}}
	inf := &mockInfer{}
	return NewMux(hr, inf), hr, inf
}

func postInfer(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") { t.Fatalf("content-type=%s", ct) }
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
	if body["status"] != "ok" || body["cpu_percent"].(float64) != 4.2 { t.Fatalf("unexpected body: %v", body) }
	mem, ok := body["memory"].(map[string]any)
	if !ok { t.Fatalf("memory missing: %v", body) }
	for _, k := range []string{"total", "available", "used", "percent"} {
		if _, ok := mem[k].(float64); !ok { t.Fatalf("memory.%s not numeric: %v", k, mem) }
	}
}

func TestInferEcho(t *testing.T) {
	r, _, inf := newTestMux()
	w := postInfer(r, `{"model":"m","prompt":"hello","max_tokens":5}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
	want := map[string]any{"model": "m", "output": "Echo: hello", "max_tokens": float64(5), "provider": "echo"}
	if len(body) != len(want) { t.Fatalf("body=%v want=%v", body, want) }
	for k, v := range want {
		if body[k] != v { t.Fatalf("%s=%v want %v", k, body[k], v) }
	}
	if inf.calls != 1 { t.Fatalf("calls=%d", inf.calls) }
}

func TestInferDefaultsMaxTokens(t *testing.T) {
	r, _, inf := newTestMux()
	w := postInfer(r, `{"model":"m","prompt":"hello"}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	if inf.last.MaxTokens != 128 { t.Fatalf("max_tokens=%d", inf.last.MaxTokens) }
	var body types.InferResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.MaxTokens != 128 { t.Fatalf("response max_tokens=%d", body.MaxTokens) }
}

func TestInferPassesMaxTokensThrough(t *testing.T) {
	r, _, inf := newTestMux()
	for _, body := range []string{`{"model":"m","prompt":"p","max_tokens":-4}`, `{"model":"m","prompt":"p","max_tokens":0}`, `{"model":"m","prompt":"p","max_tokens":1000000000}`} {
		w := postInfer(r, body)
		if w.Code != http.StatusOK { t.Fatalf("%s: status=%d", body, w.Code) }
	}
	if inf.last.MaxTokens != 1000000000 { t.Fatalf("max_tokens=%d", inf.last.MaxTokens) }
}

func TestInferFallbackStays200(t *testing.T) {
	r, _, inf := newTestMux()
	inf.resp = &types.InferResponse{Model: "m", Output: "Echo (provider error fallback): hi", MaxTokens: 1, Error: "boom"}
	w := postInfer(r, `{"model":"m","prompt":"hi","max_tokens":1}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "boom" { t.Fatalf("error=%v", body["error"]) }
	if _, ok := body["provider"]; ok { t.Fatalf("provider should be omitted on fallback: %v", body) }
}

func TestInferBadJSON(t *testing.T) {
	r, _, inf := newTestMux()
	w := postInfer(r, "not-json")
	if w.Code != http.StatusBadRequest { t.Fatalf("status=%d", w.Code) }
	if inf.calls != 0 { t.Fatalf("service should not be called") }
}

func TestInferWrongTypes(t *testing.T) {
	r, _, inf := newTestMux()
	cases := map[string]string{
		`{"model":"m","prompt":"p","max_tokens":"many"}`: "max_tokens",
		`{"model":"m","prompt":"p","max_tokens":2.5}`:    "max_tokens",
		`{"model":"m","prompt":"p","max_tokens":null}`:   "max_tokens",
		`{"model":"m","prompt":"p","max_tokens":true}`:   "max_tokens",
		`{"model":"m","prompt":42}`:                      "prompt",
		`{"model":["m"],"prompt":"p"}`:                   "model",
		`{"model":null,"prompt":"p"}`:                    "model",
		`{"prompt":{"model":"x"}}`:                       "model",
	}
	for body, field := range cases {
		w := postInfer(r, body)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%s: status=%d", body, w.Code)
		}
		var resp types.ValidationErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil { t.Fatalf("json: %v", err) }
		if len(resp.Fields[field]) == 0 { t.Fatalf("%s: fields=%v want %s", body, resp.Fields, field) }
	}
	if inf.calls != 0 { t.Fatalf("service should not be called") }
}

func TestInferNotAnObject(t *testing.T) {
	r, _, _ := newTestMux()
	for _, body := range []string{`["m","p"]`, `"hello"`, ``} {
		if w := postInfer(r, body); w.Code != http.StatusBadRequest {
			t.Fatalf("%q: status=%d", body, w.Code)
		}
	}
}

func TestInferCoercesMaxTokens(t *testing.T) {
	r, _, inf := newTestMux()
	for _, body := range []string{
		`{"model":"m","prompt":"p","max_tokens":5.0}`,
		`{"model":"m","prompt":"p","max_tokens":"5"}`,
		`{"model":"m","prompt":"p","max_tokens":" 5 "}`,
	} {
		inf.last = types.InferRequest{}
		w := postInfer(r, body)
		if w.Code != http.StatusOK { t.Fatalf("%s: status=%d body=%s", body, w.Code, w.Body.String()) }
		if inf.last.MaxTokens != 5 { t.Fatalf("%s: max_tokens=%d", body, inf.last.MaxTokens) }
	}
}

func TestInferMissingFields(t *testing.T) {
	r, _, inf := newTestMux()
	w := postInfer(r, `{"max_tokens":3}`)
	if w.Code != http.StatusUnprocessableEntity { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	var body types.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
	if len(body.Fields["model"]) == 0 || len(body.Fields["prompt"]) == 0 { t.Fatalf("fields=%v", body.Fields) }
	if body.Code != http.StatusUnprocessableEntity { t.Fatalf("code=%d", body.Code) }
	if inf.calls != 0 { t.Fatalf("service should not be called") }
}

func TestInferEmptyStringsAccepted(t *testing.T) {
	r, _, inf := newTestMux()
	w := postInfer(r, `{"model":"m","prompt":""}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil { t.Fatalf("json: %v", err) }
	if body["output"] != "Echo: " || body["provider"] != "echo" || body["max_tokens"] != float64(128) {
		t.Fatalf("unexpected body: %v", body)
	}

	w = postInfer(r, `{"model":"","prompt":"hi"}`)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	if inf.last.Model != "" || inf.last.Prompt != "hi" { t.Fatalf("last=%+v", inf.last) }
	if inf.calls != 2 { t.Fatalf("calls=%d", inf.calls) }
}

func TestInferWithoutContentType(t *testing.T) {
	r, _, inf := newTestMux()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(`{"model":"m","prompt":"hi"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK { t.Fatalf("status=%d body=%s", w.Code, w.Body.String()) }
	if inf.last.Prompt != "hi" { t.Fatalf("last=%+v", inf.last) }
}

func TestInferUnsupportedMediaType(t *testing.T) {
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(`{"model":"m","prompt":"hi"}`))
	req.Header.Set("Content-Type", "text/plain")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType { t.Fatalf("status=%d", w.Code) }
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/infer", bytes.NewBufferString(`{"model":"m","prompt":"hi"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK { t.Fatalf("expected 200 with mixed-case content-type, got %d", w.Code) }
}

func TestInferBodyTooLarge(t *testing.T) {
	r, _, _ := newTestMux()
	// Create >1MiB body
	big := `{"model":"m","prompt":"` + strings.Repeat("a", (1<<20)+10) + `"}`
	if w := postInfer(r, big); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestSetMaxBodyBytes(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(16)
	r, _, _ := newTestMux()
	if w := postInfer(r, `{"model":"m","prompt":"longer than sixteen bytes"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 over the configured limit, got %d", w.Code)
	}
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 { t.Fatalf("maxBodyBytes=%d", maxBodyBytes) }
}

func TestInferMethodNotAllowed(t *testing.T) {
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/infer", nil))
	if w.Code != http.StatusMethodNotAllowed { t.Fatalf("status=%d", w.Code) }
}

func TestSecurityHeaderAndRequestID(t *testing.T) {
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
}

func TestCORSOptIn(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	r, _, _ := newTestMux()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	r, _, _ := newTestMux()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}

func TestSwaggerMountedWhenEnabled(t *testing.T) {
	SetSwaggerEnabled(true)
	defer SetSwaggerEnabled(false)
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusOK { t.Fatalf("status=%d", w.Code) }
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil { t.Fatalf("doc.json: %v", err) }
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/infer"]; !ok { t.Fatalf("missing /infer in doc: %v", paths) }
}

func TestSwaggerNotMountedByDefault(t *testing.T) {
	r, _, _ := newTestMux()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	if w.Code != http.StatusNotFound { t.Fatalf("status=%d", w.Code) }
}
