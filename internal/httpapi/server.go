// Package httpapi exposes the worker over HTTP: GET /health, POST /infer and
// GET /metrics, plus the optional Swagger UI.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tetherworker/pkg/types"
)

// HealthReporter samples host resource usage.
type HealthReporter interface {
	Report(ctx context.Context) types.HealthResponse
}

// Inferencer serves an inference request. It never fails; provider problems
// are carried in the response.
type Inferencer interface {
	Infer(ctx context.Context, req types.InferRequest) types.InferResponse
}

type handlers struct {
	health HealthReporter
	infer  Inferencer
}

// NewMux builds the router.
func NewMux(hr HealthReporter, inf Inferencer) http.Handler {
	h := &handlers{health: hr, infer: inf}

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/health", h.getHealth)
	r.Post("/infer", h.postInfer)

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	if swaggerEnabled {
		MountSwagger(r)
	}
	return r
}

// getHealth godoc
// @Summary      Host health snapshot
// @Description  Samples host CPU utilization (about 100ms) and virtual memory.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func (h *handlers) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Report(r.Context()))
}

// postInfer godoc
// @Summary      Run inference
// @Description  Forwards the prompt to the configured provider, or echoes it when no provider is available.
// @Description  Provider failures still return 200 with an echo and an error field.
// @Tags         inference
// @Accept       json
// @Produce      json
// @Param        request  body      types.InferRequest  true  "Inference request"
// @Success      200      {object}  types.InferResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      422      {object}  types.ValidationErrorResponse
// @Router       /infer [post]
func (h *handlers) postInfer(w http.ResponseWriter, r *http.Request) {
	// a missing Content-Type is read as JSON
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req, decodeErr, fields := decodeInferRequest(r)
	if decodeErr != "" {
		// oversized bodies land here too; keep the message generic
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	lvl := requestLogLevel(r)
	rid := middleware.GetReqID(r.Context())
	if lvl >= LevelDebug {
		if zlog != nil {
			zlog.Debug().Str("model", req.Model).Int("max_tokens", req.MaxTokens).Int("prompt_len", len(req.Prompt)).Str("request_id", rid).Msg("infer start")
		} else {
			log.Printf("infer start model=%s max_tokens=%d request_id=%s", req.Model, req.MaxTokens, rid)
		}
	}

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	start := time.Now()
	resp := h.infer.Infer(ctx, req)

	if lvl >= LevelInfo {
		if zlog != nil {
			z := zlog.Info().Str("model", resp.Model).Str("provider", resp.Provider).Dur("dur", time.Since(start)).Str("request_id", rid)
			if resp.Error != "" {
				z = z.Str("provider_error", resp.Error)
			}
			z.Msg("infer end")
		} else {
			log.Printf("infer end model=%s provider=%s dur=%s request_id=%s", resp.Model, resp.Provider, time.Since(start), rid)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
