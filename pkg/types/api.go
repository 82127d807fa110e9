package types

// DefaultMaxTokens is applied when an inference request omits max_tokens.
const DefaultMaxTokens = 128

// Provider tags reported in InferResponse.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderEcho   = "echo"
)

// InferRequest represents an inference request payload.
type InferRequest struct {
	// Model name supplied by the caller. Echoed back verbatim; it does not select
	// the upstream provider model.
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// Prompt text to complete.
	// example: What is the capital of France?
	Prompt string `json:"prompt" example:"What is the capital of France?"`
	// Maximum number of tokens the provider may generate. Not bounds checked.
	// example: 128
	MaxTokens int `json:"max_tokens" example:"128"`
}

// InferResponse is returned by POST /infer.
type InferResponse struct {
	// Model name from the request.
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// Generated text, or the echoed prompt when no remote call succeeded.
	// example: Paris
	Output string `json:"output" example:"Paris"`
	// max_tokens from the request.
	// example: 128
	MaxTokens int `json:"max_tokens" example:"128"`
	// Which path produced Output: "openai" or "echo". Omitted on provider-error fallback.
	// example: openai
	Provider string `json:"provider,omitempty" example:"openai"`
	// Provider error description, present only on provider-error fallback.
	Error string `json:"error,omitempty"`
}

// MemorySnapshot is a point-in-time read of host virtual memory. Sizes are bytes.
type MemorySnapshot struct {
	// example: 16777216000
	Total uint64 `json:"total" example:"16777216000"`
	// example: 8388608000
	Available uint64 `json:"available" example:"8388608000"`
	// Used memory as a percentage of total.
	// example: 50.0
	Percent  float64 `json:"percent" example:"50.0"`
	Used     uint64  `json:"used"`
	Free     uint64  `json:"free"`
	Active   uint64  `json:"active"`
	Inactive uint64  `json:"inactive"`
	Buffers  uint64  `json:"buffers"`
	Cached   uint64  `json:"cached"`
	Shared   uint64  `json:"shared"`
	Slab     uint64  `json:"slab"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Always "ok".
	// example: ok
	Status string `json:"status" example:"ok"`
	// Host CPU utilization over the sampling interval.
	// example: 12.5
	CPUPercent float64        `json:"cpu_percent" example:"12.5"`
	Memory     MemorySnapshot `json:"memory"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ValidationErrorResponse is returned with 422 when required request fields are missing.
type ValidationErrorResponse struct {
	ErrorResponse
	// Messages keyed by request field.
	Fields map[string][]string `json:"fields"`
}
