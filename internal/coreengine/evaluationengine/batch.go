package evaluationengine

import (
	"context"
	"fmt"

	"voice-ai-eval-platform/internal/coreengine/metricscalculator"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/textnorm"
)

// BatchRecord is one batch row: the pipeline result plus the offline
// correctness verdicts. The pointer fields stay nil when the relevant
// check was not configured or the item errored before it could run.
type BatchRecord struct {
	pipeline.Result

	// IntentHit reports the strict intent check: the normalized transcript
	// equals the normalized question.
	IntentHit *bool

	// AICorrect is the answer verdict from keywords or the judge.
	AICorrect *bool

	// E2ESuccess combines IntentHit (in strict mode) with AICorrect.
	E2ESuccess *bool

	KeywordsUsed    string
	MissingKeywords []string
}

// BatchSink persists the accumulated record table. Persist receives the
// full table every time so autosave snapshots stay whole.
type BatchSink interface {
	Persist(records []BatchRecord) error
}

// BatchOptions configure one offline run.
type BatchOptions struct {
	// Pipeline options applied to every item.
	Pipeline pipeline.Options

	// Keywords maps item ids to comma-separated keyword specs.
	Keywords map[int]string

	// UseLLMEval judges items that carry a reference answer; items
	// without one fall back to their keyword spec.
	UseLLMEval bool

	// KeywordsAsReference substitutes the keyword text for an absent
	// reference answer so the judge has something to grade against. Only
	// meaningful together with UseLLMEval; never inferred.
	KeywordsAsReference bool

	// IntentStrict enables the exact-match intent check.
	IntentStrict bool

	// Autosave re-persists the table to every sink after each item.
	Autosave bool

	Sinks []BatchSink
}

// BatchSummary aggregates a finished batch. The accuracy pointers are nil
// when no item produced the corresponding verdict.
type BatchSummary struct {
	Aggregate      RunAggregate
	IntentAccuracy *float64
	AIAccuracy     *float64
	E2EAccuracy    *float64
}

// RunBatch drives items through the pipeline in input order and applies
// the configured correctness checks to each result. Item failures are
// recorded and processing continues; sink failures and cancellation abort
// the run with the records accumulated so far.
func (r *Runner) RunBatch(ctx context.Context, items []pipeline.TestItem, opts BatchOptions) ([]BatchRecord, BatchSummary, error) {
	records := make([]BatchRecord, 0, len(items))
	var summary BatchSummary

	for _, item := range items {
		select {
		case <-ctx.Done():
			return records, summarize(records, summary.Aggregate), ctx.Err()
		default:
		}

		keywords := opts.Keywords[item.ID]
		prepared := prepareItem(item, keywords, opts)

		res := r.processor.ProcessItem(ctx, prepared, opts.Pipeline)
		summary.Aggregate.Observe(res)

		record := r.gradeRecord(res, item, keywords, opts)
		records = append(records, record)
		r.logger.Infof("Batch item %d done (status=%s, score=%d)", res.ID, res.Status, res.Score)

		if opts.Autosave {
			if err := persistAll(opts.Sinks, records); err != nil {
				return records, summarize(records, summary.Aggregate), err
			}
		}
	}

	if err := persistAll(opts.Sinks, records); err != nil {
		return records, summarize(records, summary.Aggregate), err
	}
	return records, summarize(records, summary.Aggregate), nil
}

// prepareItem decides what the judge will see as the reference answer.
func prepareItem(item pipeline.TestItem, keywords string, opts BatchOptions) pipeline.TestItem {
	if !opts.UseLLMEval {
		// Keyword grading happens after the pipeline; stage four must not
		// judge, so the item is sent through without a reference.
		item.ReferenceAnswer = ""
		return item
	}
	if item.ReferenceAnswer == "" && opts.KeywordsAsReference && keywords != "" {
		item.ReferenceAnswer = keywords
	}
	return item
}

func (r *Runner) gradeRecord(res pipeline.Result, original pipeline.TestItem, keywords string, opts BatchOptions) BatchRecord {
	record := BatchRecord{Result: res, KeywordsUsed: keywords}
	if !res.Succeeded() {
		return record
	}

	if opts.IntentStrict {
		hit := res.STTText == textnorm.Normalize(original.Question)
		record.IntentHit = &hit
	}

	judged := opts.UseLLMEval && res.ReferenceAnswer != ""
	switch {
	case judged:
		correct := res.Score >= 60
		record.AICorrect = &correct
	case keywords != "":
		correct, missing := metricscalculator.CheckAnswerWithKeywords(res.AIAnswer, keywords)
		record.AICorrect = &correct
		record.MissingKeywords = missing
	}

	if record.AICorrect != nil {
		e2e := *record.AICorrect
		if opts.IntentStrict {
			e2e = e2e && record.IntentHit != nil && *record.IntentHit
		}
		record.E2ESuccess = &e2e
	}
	return record
}

func persistAll(sinks []BatchSink, records []BatchRecord) error {
	for _, sink := range sinks {
		if err := sink.Persist(records); err != nil {
			return fmt.Errorf("persisting %d batch records: %w", len(records), err)
		}
	}
	return nil
}

func summarize(records []BatchRecord, agg RunAggregate) BatchSummary {
	summary := BatchSummary{Aggregate: agg}
	summary.IntentAccuracy = accuracy(records, func(rec BatchRecord) *bool { return rec.IntentHit })
	summary.AIAccuracy = accuracy(records, func(rec BatchRecord) *bool { return rec.AICorrect })
	summary.E2EAccuracy = accuracy(records, func(rec BatchRecord) *bool { return rec.E2ESuccess })
	return summary
}

func accuracy(records []BatchRecord, pick func(BatchRecord) *bool) *float64 {
	var hits, total int
	for _, rec := range records {
		if v := pick(rec); v != nil {
			total++
			if *v {
				hits++
			}
		}
	}
	if total == 0 {
		return nil
	}
	rate := float64(hits) / float64(total)
	return &rate
}
