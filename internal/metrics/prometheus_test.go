package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewPrometheus(reg, "test")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families)
}

func TestPrometheusCollector_Assigner(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordWorkQueued("unordered")
	p.RecordWorkQueued("unordered")
	p.RecordQueueError("unordered")
	p.RecordWorkFinished(2)
	p.RecordCoordinationError()
	p.RecordTrackedWork(5)

	require.InDelta(t, 2, testutil.ToFloat64(p.workQueued.WithLabelValues("unordered")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.queueErrors.WithLabelValues("unordered")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(p.workFinished), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.coordinationErrors), 0)
	require.InDelta(t, 5, testutil.ToFloat64(p.trackedWork), 0)
}

func TestPrometheusCollector_SchedulerAndWorker(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.RecordTick(0.01, true)
	p.RecordTick(0.02, false)
	p.RecordWorkProcessed(1, true)
	p.RecordClaimConflict()

	require.InDelta(t, 1, testutil.ToFloat64(p.ticks.WithLabelValues("success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.ticks.WithLabelValues("failure")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.processed.WithLabelValues("success")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(p.claimConflicts), 0)

	count, err := testutil.GatherAndCount(reg, "replwork_scheduler_ticks_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
