package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avrorra/storebot/internal/checkout"
	"github.com/avrorra/storebot/internal/session"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of processed updates labeled by handler and status",
		},
		[]string{"handler", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	checkoutTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_transitions_total",
			Help: "Total number of checkout dialogue transitions",
		},
		[]string{"from", "to"},
	)
	ordersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of finalized orders",
		},
	)
	orderTotalAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_total_amount",
			Help:    "Distribution of order totals in currency units",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10),
		},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of live user sessions",
		},
	)
	sessionsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sessions_by_checkout_state",
			Help: "Number of sessions per checkout dialogue state",
		},
		[]string{"state"},
	)
)

func init() {
	checkout.RegisterTransitionRecorder(RecordCheckoutTransition)
}

// RecordUpdate increments the update counter and records handling duration.
func RecordUpdate(handler, status string, duration time.Duration) {
	if handler == "" {
		handler = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(handler, status).Inc()
	updateDurationSeconds.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordCheckoutTransition tracks dialogue state changes.
func RecordCheckoutTransition(from, to checkout.State) {
	checkoutTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
}

// RecordOrder counts a finalized order and observes its total.
func RecordOrder(total int64) {
	ordersTotal.Inc()
	orderTotalAmount.Observe(float64(total))
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// SessionCollector periodically gathers session counts from the
// registry and updates the gauges.
type SessionCollector struct {
	registry session.Registry
	interval time.Duration
}

// NewSessionCollector builds a collector bound to the registry.
func NewSessionCollector(registry session.Registry) *SessionCollector {
	return &SessionCollector{registry: registry, interval: 10 * time.Second}
}

// Run polls the registry on every interval until ctx is canceled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.registry == nil {
		return
	}

	for {
		c.collect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *SessionCollector) collect() {
	activeSessions.Set(float64(c.registry.Len()))

	stats := c.registry.Stats()
	sessionsByState.Reset()

	for _, state := range checkout.AllStates() {
		sessionsByState.WithLabelValues(string(state)).Set(float64(stats[state]))
		delete(stats, state)
	}
	for state, count := range stats {
		sessionsByState.WithLabelValues(string(state)).Set(float64(count))
	}
}
