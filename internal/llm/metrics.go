package llm

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports LLM call events to Prometheus.
type MetricsObserver struct {
	calls    *prometheus.CounterVec
	attempts *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetricsObserver registers the LLM collectors on reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &MetricsObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mandalart",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "LLM calls by task, provider and status.",
		}, []string{"task", "provider", "status"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mandalart",
			Subsystem: "llm",
			Name:      "attempts_total",
			Help:      "Provider round trips, retries included.",
		}, []string{"task", "provider"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mandalart",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Wall time of uncached LLM calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"task", "provider"}),
	}
	var err error
	if m.calls, err = register(reg, m.calls); err != nil {
		return nil, err
	}
	if m.attempts, err = register(reg, m.attempts); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register llm metric: %w", err)
	}
	return c, nil
}

func (m *MetricsObserver) OnCallComplete(event LLMCallEvent) {
	status := "ok"
	switch {
	case event.Cached:
		status = "cached"
	case !event.Success:
		status = "error"
	}
	task, provider := string(event.Task), string(event.Provider)
	m.calls.WithLabelValues(task, provider, status).Inc()
	if event.Cached {
		return
	}
	m.attempts.WithLabelValues(task, provider).Add(float64(event.Attempts))
	m.latency.WithLabelValues(task, provider).Observe(float64(event.LatencyMs) / 1000)
}
