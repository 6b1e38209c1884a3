package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the enrollment module.
type Metrics struct {
	Created           prometheus.Counter
	Transitions       *prometheus.CounterVec
	IdempotentReplays prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New registers the enrollment collectors on reg (the default registry when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_created_total",
			Help: "Total number of enrollments created",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_transitions_total",
			Help: "Total number of status transitions applied, by target status",
		}, []string{"to"}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_idempotent_replays_total",
			Help: "Creates answered from an existing Idempotency-Key binding",
		}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrollment_operation_duration_seconds",
			Help:    "Duration of lifecycle operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.Created.Inc()
}

func (m *Metrics) IncrementTransition(to string) {
	m.Transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) IncrementIdempotentReplay() {
	m.IdempotentReplays.Inc()
}

// ObserveOperation records the duration of op.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time) {
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
