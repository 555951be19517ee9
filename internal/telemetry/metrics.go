// Package telemetry exposes run progress as Prometheus metrics.
package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

// Metrics holds the platform's collectors. Construct once per process.
type Metrics struct {
	itemsProcessed *prometheus.CounterVec
	stageLatency   *prometheus.HistogramVec
	runScore       prometheus.Gauge
}

// NewMetrics registers the collectors with reg (nil means the default
// registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		itemsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voiceeval_items_processed_total",
				Help: "Total number of pipeline items processed",
			},
			[]string{"status"},
		),
		stageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voiceeval_stage_latency_seconds",
				Help:    "Wall-clock duration of each pipeline stage in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"stage"},
		),
		runScore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "voiceeval_run_score",
				Help: "Average score of the most recently completed run",
			},
		),
	}
}

// ObserveResult folds one pipeline result into the collectors. Stages
// that never ran keep zero latency and are not observed.
func (m *Metrics) ObserveResult(res pipeline.Result) {
	m.itemsProcessed.WithLabelValues(res.Status).Inc()
	m.observeStage("tts", res.Latency.Synthesis)
	m.observeStage("stt", res.Latency.Recognition)
	m.observeStage("chat", res.Latency.Query)
	m.observeStage("eval", res.Latency.Evaluation)
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if d <= 0 {
		return
	}
	m.stageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// SetRunScore records the finished run's average score.
func (m *Metrics) SetRunScore(avg float64) {
	m.runScore.Set(avg)
}

// Handler serves the default registry at /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
