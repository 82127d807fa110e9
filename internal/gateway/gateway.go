// Package gateway decides how an inference request is served: a single call
// to the configured completion provider, or a local echo of the prompt.
package gateway

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"tetherworker/internal/provider"
	"tetherworker/pkg/types"
)

// Echo prefixes and the number of prompt characters echoed back.
const (
	EchoPrefix         = "Echo: "
	FallbackEchoPrefix = "Echo (provider error fallback): "
	EchoLimit          = 200
)

// Outcome labels for the infer_total metric.
const (
	outcomeOpenAI   = "openai"
	outcomeEcho     = "echo"
	outcomeFallback = "fallback"
)

var (
	inferTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tetherworker",
			Subsystem: "gateway",
			Name:      "infer_total",
			Help:      "Inference requests by outcome (openai, echo, fallback)",
		},
		[]string{"outcome"},
	)
	providerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tetherworker",
			Subsystem: "gateway",
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider completion calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(inferTotal, providerDuration)
}

// Completer performs one remote completion.
type Completer interface {
	Complete(ctx context.Context, p provider.Completion) (string, error)
}

// CredentialFunc reports whether a provider credential is present right now.
type CredentialFunc func() bool

// Gateway is immutable after New and safe for concurrent use.
type Gateway struct {
	completer Completer
	creds     CredentialFunc
	log       zerolog.Logger
}

// New returns a Gateway. completer may be nil when no provider client could be
// built at start-up; creds defaults to provider.HasCredential.
func New(completer Completer, creds CredentialFunc, log zerolog.Logger) *Gateway {
	if creds == nil {
		creds = provider.HasCredential
	}
	return &Gateway{completer: completer, creds: creds, log: log}
}

// Remote reports whether Infer would attempt a provider call.
func (g *Gateway) Remote() bool {
	return g.completer != nil && g.creds()
}

// Outcome is the result of a single remote attempt.
type Outcome struct {
	Text string
	Err  error
}

func (g *Gateway) attempt(ctx context.Context, req types.InferRequest) Outcome {
	start := time.Now()
	text, err := g.completer.Complete(ctx, provider.Completion{Prompt: req.Prompt, MaxTokens: req.MaxTokens})
	providerDuration.Observe(time.Since(start).Seconds())
	return Outcome{Text: text, Err: err}
}

// Infer serves req. It always returns a response; provider failures are
// reported in the Error field rather than as an error value.
func (g *Gateway) Infer(ctx context.Context, req types.InferRequest) types.InferResponse {
	resp := types.InferResponse{Model: req.Model, MaxTokens: req.MaxTokens}

	if !g.Remote() {
		resp.Output = EchoPrefix + Truncate(req.Prompt, EchoLimit)
		resp.Provider = types.ProviderEcho
		inferTotal.WithLabelValues(outcomeEcho).Inc()
		return resp
	}

	out := g.attempt(ctx, req)
	if out.Err != nil {
		g.log.Warn().Err(out.Err).Str("model", req.Model).Msg("provider call failed, echoing prompt")
		resp.Output = FallbackEchoPrefix + Truncate(req.Prompt, EchoLimit)
		resp.Error = out.Err.Error()
		inferTotal.WithLabelValues(outcomeFallback).Inc()
		return resp
	}
	resp.Output = out.Text
	resp.Provider = types.ProviderOpenAI
	inferTotal.WithLabelValues(outcomeOpenAI).Inc()
	return resp
}

// Truncate returns the first n characters (code points) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
