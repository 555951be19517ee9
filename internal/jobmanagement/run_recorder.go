package jobmanagement

import (
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/datastore"
	"voice-ai-eval-platform/internal/logging"
	"voice-ai-eval-platform/internal/telemetry"
)

// RunRecorder wraps a stream consumer and records what flows through it:
// per-item rows in the datastore, stage latencies in the metrics, and the
// run's final status. Recording failures are logged and never interrupt
// the stream; the wrapped consumer decides whether the run goes on.
type RunRecorder struct {
	inner   evaluationengine.StreamConsumer
	run     *datastore.EvaluationRun
	metrics *telemetry.Metrics
	logger  *zap.SugaredLogger

	agg      evaluationengine.RunAggregate
	finished bool
}

// NewRunRecorder builds a recorder around inner. run and metrics may each
// be nil to disable that side of the recording.
func NewRunRecorder(inner evaluationengine.StreamConsumer, run *datastore.EvaluationRun, metrics *telemetry.Metrics, logger *zap.Logger) *RunRecorder {
	return &RunRecorder{
		inner:   inner,
		run:     run,
		metrics: metrics,
		logger:  logging.OrNop(logger).Sugar(),
	}
}

func (r *RunRecorder) SendUpdate(res pipeline.Result, stats evaluationengine.Stats) error {
	r.agg.Observe(res)
	if r.metrics != nil {
		r.metrics.ObserveResult(res)
	}
	if r.run != nil {
		if _, err := datastore.InsertItemResult(datastore.ItemResultFromPipeline(r.run.ID, res)); err != nil {
			r.logger.Warnf("Failed to persist result for item %d: %v", res.ID, err)
		}
	}
	return r.inner.SendUpdate(res, stats)
}

func (r *RunRecorder) SendComplete() error {
	if r.metrics != nil {
		r.metrics.SetRunScore(r.agg.AverageScore())
	}
	r.finish(datastore.RunStatusCompleted)
	return r.inner.SendComplete()
}

func (r *RunRecorder) SendError(message string) error {
	r.finish(datastore.RunStatusFailed)
	return r.inner.SendError(message)
}

// finish closes out the run record once; later terminal signals keep the
// first status.
func (r *RunRecorder) finish(status string) {
	if r.finished || r.run == nil {
		r.finished = true
		return
	}
	r.finished = true
	if err := datastore.FinishRun(r.run.ID, status, r.agg.Processed, r.agg.Succeeded, r.agg.AverageScore(), r.agg.AverageLatency().Seconds()); err != nil {
		r.logger.Warnf("Failed to finish run %s: %v", r.run.ID, err)
	}
}
