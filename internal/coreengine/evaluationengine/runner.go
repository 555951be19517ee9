// Package evaluationengine drives batches of test items through the
// pipeline, folding results into aggregates and fanning them out to
// sinks (CSV tables, database rows) or a live stream consumer. Item
// failures are isolated by the pipeline; the engine only fails a run for
// run-level faults such as an unusable sink or a dead consumer.
package evaluationengine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/logging"
)

// ItemProcessor runs one item through all stages. *pipeline.Pipeline
// satisfies it.
type ItemProcessor interface {
	ProcessItem(ctx context.Context, item pipeline.TestItem, opts pipeline.Options) pipeline.Result
}

// StreamConsumer receives live run progress. A send error means the
// consumer is gone and stops the run before the next item.
type StreamConsumer interface {
	SendUpdate(res pipeline.Result, stats Stats) error
	SendComplete() error
	SendError(message string) error
}

// Runner sequences items through an ItemProcessor.
type Runner struct {
	processor ItemProcessor
	logger    *zap.SugaredLogger
}

// NewRunner builds a Runner. logger may be nil.
func NewRunner(processor ItemProcessor, logger *zap.Logger) *Runner {
	return &Runner{
		processor: processor,
		logger:    logging.OrNop(logger).Sugar(),
	}
}

// RunStream processes items in input order, pushing one update per item
// followed by exactly one complete frame. An empty item list produces a
// single error frame. Context cancellation is observed between items;
// the consumer's send error terminates the run.
func (r *Runner) RunStream(ctx context.Context, items []pipeline.TestItem, opts pipeline.Options, consumer StreamConsumer) error {
	if len(items) == 0 {
		if err := consumer.SendError("No items to process"); err != nil {
			return fmt.Errorf("sending empty-run error frame: %w", err)
		}
		return nil
	}

	var agg RunAggregate
	total := len(items)
	for _, item := range items {
		select {
		case <-ctx.Done():
			r.logger.Infof("Stream run cancelled after %d/%d items", agg.Processed, total)
			return ctx.Err()
		default:
		}

		res := r.processor.ProcessItem(ctx, item, opts)
		agg.Observe(res)
		r.logger.Infof("Processed item %d (%d/%d, status=%s, score=%d)", res.ID, agg.Processed, total, res.Status, res.Score)

		if err := consumer.SendUpdate(res, agg.Snapshot(total)); err != nil {
			return fmt.Errorf("sending update for item %d: %w", res.ID, err)
		}
	}

	if err := consumer.SendComplete(); err != nil {
		return fmt.Errorf("sending completion frame: %w", err)
	}
	return nil
}
