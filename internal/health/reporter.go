// Package health samples host CPU and memory usage for GET /health.
//
// Sampling never fails from the caller's point of view: a backend error is
// logged and the affected value is reported as zero.
package health

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"tetherworker/pkg/types"
)

// StatusOK is the only status a Reporter emits.
const StatusOK = "ok"

var (
	hostCPUPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tetherworker",
		Subsystem: "host",
		Name:      "cpu_percent",
		Help:      "Host CPU utilization observed by the last health sample",
	})
	hostMemoryUsedPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tetherworker",
		Subsystem: "host",
		Name:      "memory_used_percent",
		Help:      "Host virtual memory usage observed by the last health sample",
	})
)

func init() {
	prometheus.MustRegister(hostCPUPercent, hostMemoryUsedPercent)
}

// Reporter builds health snapshots.
type Reporter struct {
	sampler  Sampler
	interval time.Duration
	log      zerolog.Logger
}

// Option customizes a Reporter.
type Option func(*Reporter)

// WithInterval overrides the CPU sampling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(r *Reporter) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithLogger sets the logger used for sampling failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reporter) { r.log = l }
}

// NewReporter returns a Reporter reading from s. A nil sampler means HostSampler.
func NewReporter(s Sampler, opts ...Option) *Reporter {
	if s == nil {
		s = HostSampler{}
	}
	r := &Reporter{sampler: s, interval: DefaultInterval, log: zerolog.Nop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Report samples the host. It blocks for the CPU sampling interval.
func (r *Reporter) Report(ctx context.Context) types.HealthResponse {
	cpuPct, err := r.sampler.CPUPercent(ctx, r.interval)
	if err != nil {
		r.log.Warn().Err(err).Msg("health: cpu sample failed")
		cpuPct = 0
	}
	if cpuPct < 0 {
		cpuPct = 0
	}
	memSnap, err := r.sampler.VirtualMemory(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("health: memory sample failed")
		memSnap = types.MemorySnapshot{}
	}

	hostCPUPercent.Set(cpuPct)
	hostMemoryUsedPercent.Set(memSnap.Percent)

	return types.HealthResponse{
		Status:     StatusOK,
		CPUPercent: cpuPct,
		Memory:     memSnap,
	}
}
