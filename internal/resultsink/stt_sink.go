package resultsink

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

// STTRecord is one row of a recognition-only run. CER and WER are nil on
// rows that errored before scoring.
type STTRecord struct {
	ID            int
	WAVPath       string
	RefTranscript string
	STTRaw        string
	STTNormalized string
	CER           *float64
	WER           *float64
	IntentHit     *bool
	Error         string
}

var sttHeader = []string{
	"id", "wav_path", "ref_transcript", "stt_raw", "stt_normalized",
	"cer", "wer", "intent_hit", "error",
}

// STTCSVSink persists recognition records to stt_results_<date>.csv and
// the failing subset to error_cases_stt_<date>.csv.
type STTCSVSink struct {
	dir    string
	date   string
	logger *zap.SugaredLogger
}

func NewSTTCSVSink(dir string, at time.Time, logger *zap.Logger) (*STTCSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &STTCSVSink{
		dir:    dir,
		date:   at.Format(dateLayout),
		logger: logging.OrNop(logger).Sugar(),
	}, nil
}

func (s *STTCSVSink) ResultsPath() string {
	return filepath.Join(s.dir, fmt.Sprintf("stt_results_%s.csv", s.date))
}

func (s *STTCSVSink) ErrorsPath() string {
	return filepath.Join(s.dir, fmt.Sprintf("error_cases_stt_%s.csv", s.date))
}

// Persist rewrites the result table and, when any row failed, the error
// table. Failing rows are those with an error or a missed intent check.
func (s *STTCSVSink) Persist(records []STTRecord) error {
	rows := make([][]string, 0, len(records))
	errorRows := make([][]string, 0)
	for _, rec := range records {
		row := sttRow(rec)
		rows = append(rows, row)
		if rec.Error != "" || (rec.IntentHit != nil && !*rec.IntentHit) {
			errorRows = append(errorRows, row)
		}
	}

	if err := writeCSV(s.ResultsPath(), sttHeader, rows); err != nil {
		return err
	}
	if len(errorRows) > 0 {
		if err := writeCSV(s.ErrorsPath(), sttHeader, errorRows); err != nil {
			return err
		}
	}
	s.logger.Debugf("Persisted %d recognition records (%d failing)", len(rows), len(errorRows))
	return nil
}

func sttRow(rec STTRecord) []string {
	return []string{
		strconv.Itoa(rec.ID),
		rec.WAVPath,
		rec.RefTranscript,
		rec.STTRaw,
		rec.STTNormalized,
		formatFloatPtr(rec.CER),
		formatFloatPtr(rec.WER),
		formatBoolPtr(rec.IntentHit),
		rec.Error,
	}
}
