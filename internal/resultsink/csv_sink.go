// Package resultsink writes run results as dated CSV tables. Every
// persist rewrites the whole table so an interrupted run still leaves a
// readable file, and a second file carries just the failed rows for quick
// triage.
package resultsink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/logging"
)

const dateLayout = "20060102"

var batchHeader = []string{
	"id", "question", "reference_answer", "audio_path",
	"stt_raw", "stt_normalized", "ai_answer", "score", "reason",
	"stt_intent_hit", "ai_correct", "e2e_success",
	"keywords_used", "missing_keywords",
	"tts_latency", "stt_latency", "chat_latency", "eval_latency", "total_latency",
	"status", "error",
}

// BatchCSVSink persists batch records to e2e_results_<date>.csv and the
// failing subset to error_cases_e2e_<date>.csv.
type BatchCSVSink struct {
	dir    string
	date   string
	logger *zap.SugaredLogger
}

// NewBatchCSVSink creates the output directory and returns a sink keyed
// by at's date.
func NewBatchCSVSink(dir string, at time.Time, logger *zap.Logger) (*BatchCSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &BatchCSVSink{
		dir:    dir,
		date:   at.Format(dateLayout),
		logger: logging.OrNop(logger).Sugar(),
	}, nil
}

// ResultsPath is the full-table CSV path.
func (s *BatchCSVSink) ResultsPath() string {
	return filepath.Join(s.dir, fmt.Sprintf("e2e_results_%s.csv", s.date))
}

// ErrorsPath is the failing-subset CSV path.
func (s *BatchCSVSink) ErrorsPath() string {
	return filepath.Join(s.dir, fmt.Sprintf("error_cases_e2e_%s.csv", s.date))
}

// Persist rewrites the result table and, when any row failed, the error
// table.
func (s *BatchCSVSink) Persist(records []evaluationengine.BatchRecord) error {
	rows := make([][]string, 0, len(records))
	errorRows := make([][]string, 0)
	for _, rec := range records {
		row := batchRow(rec)
		rows = append(rows, row)
		if batchRecordFailed(rec) {
			errorRows = append(errorRows, row)
		}
	}

	if err := writeCSV(s.ResultsPath(), batchHeader, rows); err != nil {
		return err
	}
	if len(errorRows) > 0 {
		if err := writeCSV(s.ErrorsPath(), batchHeader, errorRows); err != nil {
			return err
		}
	}
	s.logger.Debugf("Persisted %d batch records (%d failing)", len(rows), len(errorRows))
	return nil
}

// batchRecordFailed selects rows for the error table: hard errors plus
// rows an enabled correctness check voted down.
func batchRecordFailed(rec evaluationengine.BatchRecord) bool {
	if rec.ErrorMsg != "" {
		return true
	}
	if rec.AICorrect != nil && !*rec.AICorrect {
		return true
	}
	if rec.E2ESuccess != nil && !*rec.E2ESuccess {
		return true
	}
	return false
}

func batchRow(rec evaluationengine.BatchRecord) []string {
	return []string{
		strconv.Itoa(rec.ID),
		rec.Question,
		rec.ReferenceAnswer,
		rec.AudioPath,
		rec.STTRaw,
		rec.STTText,
		rec.AIAnswer,
		strconv.Itoa(rec.Score),
		rec.Reason,
		formatBoolPtr(rec.IntentHit),
		formatBoolPtr(rec.AICorrect),
		formatBoolPtr(rec.E2ESuccess),
		rec.KeywordsUsed,
		joinKeywords(rec.MissingKeywords),
		formatSeconds(rec.Latency.Synthesis.Seconds()),
		formatSeconds(rec.Latency.Recognition.Seconds()),
		formatSeconds(rec.Latency.Query.Seconds()),
		formatSeconds(rec.Latency.Evaluation.Seconds()),
		formatSeconds(rec.Latency.Total.Seconds()),
		rec.Status,
		rec.ErrorMsg,
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func joinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}
