package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	started := time.Now()
	m.Observe("vote", "fallback", started, nil)
	m.Observe("vote", "fallback", started, nil)
	m.Observe("vote", "fallback", started, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations().WithLabelValues("vote", "fallback", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations().WithLabelValues("vote", "fallback", OutcomeError)))

	n, err := testutil.GatherAndCount(m.Registry(), "shadowvote_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe("vote", "remote", time.Now(), nil)
	})
	assert.Nil(t, m.Registry())
}
