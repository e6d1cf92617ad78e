package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Operation("create", OutcomeSuccess)
	m.Operation("create", OutcomeSuccess)
	m.Operation("create", OutcomeRejected)
	m.DiscussionDuration(5 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationCollector().WithLabelValues("create", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationCollector().WithLabelValues("create", OutcomeRejected)))

	count, err := testutil.GatherAndCount(reg, "osf_comment_operations_total", "osf_comment_discussion_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Operation("edit", OutcomeError)
		m.DiscussionDuration(time.Second)
	})
}
