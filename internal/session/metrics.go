package session

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports store activity to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	dispatches    *prometheus.CounterVec
	persistErrors *prometheus.CounterVec
	subscribers   prometheus.Gauge
}

// NewMetrics registers the session metrics on reg, reusing collectors that
// are already registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mandalart",
			Subsystem: "session",
			Name:      "dispatch_total",
			Help:      "Session actions dispatched, by action and outcome.",
		}, []string{"action", "outcome"}),
		persistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mandalart",
			Subsystem: "session",
			Name:      "persist_errors_total",
			Help:      "Session writes that failed and were not applied.",
		}, []string{"action"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mandalart",
			Subsystem: "session",
			Name:      "subscribers",
			Help:      "Live session subscribers across all stores.",
		}),
	}
	var err error
	if m.dispatches, err = register(reg, m.dispatches); err != nil {
		return nil, err
	}
	if m.persistErrors, err = register(reg, m.persistErrors); err != nil {
		return nil, err
	}
	if m.subscribers, err = register(reg, m.subscribers); err != nil {
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
		return c, fmt.Errorf("register session metric: %w", err)
	}
	return c, nil
}

func (m *Metrics) observeDispatch(action string, outcome Outcome) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(action, string(outcome)).Inc()
}

func (m *Metrics) observePersistError(action string) {
	if m == nil {
		return
	}
	m.persistErrors.WithLabelValues(action).Inc()
}

func (m *Metrics) subscriberDelta(d float64) {
	if m == nil {
		return
	}
	m.subscribers.Add(d)
}
