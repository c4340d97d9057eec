package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the provisioning core. Counters are
// labelled by record kind (teacher/student/operator) where outcomes differ
// per flow.
type Metrics struct {
	ProvisionedTotal    *prometheus.CounterVec
	RollbacksTotal      *prometheus.CounterVec
	RollbackFailures    prometheus.Counter
	LinkFailures        prometheus.Counter
	AuthorizationDenied prometheus.Counter
	FlowDuration        *prometheus.HistogramVec
}

// New creates a Metrics instance with all provisioning metrics registered.
func New() *Metrics {
	return &Metrics{
		ProvisionedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scolara_provisioned_total",
			Help: "Successful provisioning flows by record kind",
		}, []string{"kind"}),
		RollbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scolara_rollbacks_total",
			Help: "Compensating rollbacks by record kind",
		}, []string{"kind"}),
		RollbackFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scolara_rollback_failures_total",
			Help: "Compensating deletes that themselves failed (orphaned identities)",
		}),
		LinkFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scolara_link_failures_total",
			Help: "Guardian link writes that failed non-fatally",
		}),
		AuthorizationDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scolara_authorization_denied_total",
			Help: "Mutations rejected by the permission resolver",
		}),
		FlowDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scolara_provision_flow_duration_seconds",
			Help:    "End-to-end duration of provisioning flows",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"kind"}),
	}
}

// ObserveFlow records the duration of a provisioning flow. Call with
// time.Now() captured at the start of the flow.
func (m *Metrics) ObserveFlow(kind string, start time.Time) {
	m.FlowDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
