package evaluationengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

func successResult(id, score int, latency time.Duration) pipeline.Result {
	return pipeline.Result{
		ID:      id,
		Score:   score,
		Latency: pipeline.StageLatency{Total: latency},
		Status:  pipeline.StatusSuccess,
	}
}

func errorResult(id int, latency time.Duration) pipeline.Result {
	return pipeline.Result{
		ID:       id,
		Latency:  pipeline.StageLatency{Total: latency},
		Status:   pipeline.StatusError,
		ErrorMsg: "synthesis failed",
	}
}

func TestRunAggregateZeroValue(t *testing.T) {
	var agg RunAggregate

	assert.Zero(t, agg.AverageScore())
	assert.Zero(t, agg.AverageLatency())
	assert.Zero(t, agg.SuccessRate())

	stats := agg.Snapshot(0)
	assert.Equal(t, Stats{}, stats)
}

func TestRunAggregateAveragesSuccessfulItemsOnly(t *testing.T) {
	var agg RunAggregate
	agg.Observe(successResult(1, 80, 2*time.Second))
	agg.Observe(successResult(2, 100, 4*time.Second))
	agg.Observe(errorResult(3, 10*time.Second))

	require.Equal(t, 3, agg.Processed)
	require.Equal(t, 2, agg.Succeeded)

	assert.InDelta(t, 90.0, agg.AverageScore(), 1e-9)
	assert.Equal(t, 3*time.Second, agg.AverageLatency())
	assert.InDelta(t, 2.0/3.0, agg.SuccessRate(), 1e-9)
}

func TestRunAggregateSnapshot(t *testing.T) {
	var agg RunAggregate
	agg.Observe(successResult(1, 70, 1500*time.Millisecond))

	stats := agg.Snapshot(5)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 5, stats.Total)
	assert.InDelta(t, 70.0, stats.AvgScore, 1e-9)
	assert.InDelta(t, 1.5, stats.AvgLatency, 1e-9)
}

func TestRunAggregateAllFailures(t *testing.T) {
	var agg RunAggregate
	agg.Observe(errorResult(1, time.Second))
	agg.Observe(errorResult(2, time.Second))

	assert.Equal(t, 2, agg.Processed)
	assert.Zero(t, agg.Succeeded)
	assert.Zero(t, agg.AverageScore())
	assert.Zero(t, agg.AverageLatency())
	assert.Zero(t, agg.SuccessRate())
}
