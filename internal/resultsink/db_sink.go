package resultsink

import (
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/datastore"
	"voice-ai-eval-platform/internal/logging"
)

// DBBatchSink mirrors batch records into the datastore as item result
// rows under one run. Persist receives the whole table every time, so
// only rows beyond the high-water mark are inserted.
type DBBatchSink struct {
	runID  string
	seen   int
	logger *zap.SugaredLogger
}

func NewDBBatchSink(runID string, logger *zap.Logger) *DBBatchSink {
	return &DBBatchSink{
		runID:  runID,
		logger: logging.OrNop(logger).Sugar(),
	}
}

func (s *DBBatchSink) Persist(records []evaluationengine.BatchRecord) error {
	if s.seen > len(records) {
		s.seen = len(records)
	}
	for _, rec := range records[s.seen:] {
		if _, err := datastore.InsertItemResult(datastore.ItemResultFromPipeline(s.runID, rec.Result)); err != nil {
			return err
		}
		s.seen++
	}
	return nil
}
