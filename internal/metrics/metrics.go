// Package metrics exposes Prometheus instrumentation for the comment service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for comment operations.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type Metrics struct {
	operations         *prometheus.CounterVec
	discussionDuration prometheus.Histogram
}

// New registers the collectors on reg. A nil reg leaves them unregistered,
// which tests use to get isolated instances.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osf",
			Subsystem: "comment",
			Name:      "operations_total",
			Help:      "Comment operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		discussionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "osf",
			Subsystem: "comment",
			Name:      "discussion_duration_seconds",
			Help:      "Time spent collecting and ranking a discussion.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.operations, m.discussionDuration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Operation counts one finished operation. Safe on a nil receiver.
func (m *Metrics) Operation(op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) DiscussionDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.discussionDuration.Observe(d.Seconds())
}

// OperationCollector exposes the counter for tests.
func (m *Metrics) OperationCollector() *prometheus.CounterVec {
	return m.operations
}
