package bridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"walletbridge/channel"
)

// unknownMethod labels calls to methods no handler implements, so callers
// cannot grow the label space.
const unknownMethod = "unknown"

// Metrics records call outcomes. It is a channel.Observer.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the call metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletbridge",
			Name:      "calls_total",
			Help:      "Channel calls by outcome.",
		}, []string{"channel", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "walletbridge",
			Name:      "call_duration_seconds",
			Help:      "Time from dispatch to resolution of a channel call.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"channel", "method"}),
	}
	reg.MustRegister(m.calls, m.duration)
	return m
}

// CallResolved implements channel.Observer.
func (m *Metrics) CallResolved(ch, method string, res channel.Result, elapsed time.Duration) {
	if res.IsNotImplemented() {
		method = unknownMethod
	}
	m.calls.WithLabelValues(ch, method, res.Outcome.String()).Inc()
	m.duration.WithLabelValues(ch, method).Observe(elapsed.Seconds())
}
