package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

func TestMetricsObserveResult(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveResult(pipeline.Result{
		Status: pipeline.StatusSuccess,
		Latency: pipeline.StageLatency{
			Synthesis:   500 * time.Millisecond,
			Recognition: 300 * time.Millisecond,
			Query:       time.Second,
			Evaluation:  200 * time.Millisecond,
		},
	})
	m.ObserveResult(pipeline.Result{
		Status:  pipeline.StatusError,
		Latency: pipeline.StageLatency{Synthesis: 100 * time.Millisecond},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemsProcessed.WithLabelValues(pipeline.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemsProcessed.WithLabelValues(pipeline.StatusError)))

	assert.Equal(t, 4, testutil.CollectAndCount(m.stageLatency, "voiceeval_stage_latency_seconds"))
}

func TestMetricsSkipsStagesThatNeverRan(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveResult(pipeline.Result{
		Status:  pipeline.StatusError,
		Latency: pipeline.StageLatency{Synthesis: 100 * time.Millisecond},
	})

	// Only the synthesis series exists; the skipped stages stay silent.
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageLatency, "voiceeval_stage_latency_seconds"))
}

func TestMetricsSetRunScore(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetRunScore(87.5)
	assert.Equal(t, 87.5, testutil.ToFloat64(m.runScore))
}
