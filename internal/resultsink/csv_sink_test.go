package resultsink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

var testDate = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func boolPtr(v bool) *bool { return &v }

func successRecord(id int, correct bool) evaluationengine.BatchRecord {
	return evaluationengine.BatchRecord{
		Result: pipeline.Result{
			ID:       id,
			Question: "q",
			AIAnswer: "a",
			Score:    80,
			Latency:  pipeline.StageLatency{Total: 1500 * time.Millisecond},
			Status:   pipeline.StatusSuccess,
		},
		AICorrect:  boolPtr(correct),
		E2ESuccess: boolPtr(correct),
	}
}

func TestBatchCSVSinkWritesDatedTable(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewBatchCSVSink(dir, testDate, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "e2e_results_20250314.csv"), sink.ResultsPath())

	require.NoError(t, sink.Persist([]evaluationengine.BatchRecord{successRecord(1, true)}))

	rows := readCSVFile(t, sink.ResultsPath())
	require.Len(t, rows, 2)
	assert.Equal(t, batchHeader, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "true", rows[1][10])
	assert.Equal(t, "1.500", rows[1][18])
}

func TestBatchCSVSinkErrorSubset(t *testing.T) {
	sink, err := NewBatchCSVSink(t.TempDir(), testDate, nil)
	require.NoError(t, err)

	failed := evaluationengine.BatchRecord{
		Result: pipeline.Result{ID: 2, Status: pipeline.StatusError, ErrorMsg: "synthesis failed"},
	}
	voted := successRecord(3, false)

	require.NoError(t, sink.Persist([]evaluationengine.BatchRecord{
		successRecord(1, true), failed, voted,
	}))

	rows := readCSVFile(t, sink.ErrorsPath())
	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[1][0])
	assert.Equal(t, "synthesis failed", rows[1][20])
	assert.Equal(t, "3", rows[2][0])
}

func TestBatchCSVSinkNoErrorFileWhenAllPass(t *testing.T) {
	sink, err := NewBatchCSVSink(t.TempDir(), testDate, nil)
	require.NoError(t, err)

	require.NoError(t, sink.Persist([]evaluationengine.BatchRecord{successRecord(1, true)}))

	_, statErr := os.Stat(sink.ErrorsPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestBatchCSVSinkRewritesWholeTable(t *testing.T) {
	sink, err := NewBatchCSVSink(t.TempDir(), testDate, nil)
	require.NoError(t, err)

	require.NoError(t, sink.Persist([]evaluationengine.BatchRecord{successRecord(1, true)}))
	require.NoError(t, sink.Persist([]evaluationengine.BatchRecord{
		successRecord(1, true), successRecord(2, true),
	}))

	rows := readCSVFile(t, sink.ResultsPath())
	assert.Len(t, rows, 3)
}

func TestBatchCSVSinkNilFlagsStayBlank(t *testing.T) {
	sink, err := NewBatchCSVSink(t.TempDir(), testDate, nil)
	require.NoError(t, err)

	rec := evaluationengine.BatchRecord{
		Result: pipeline.Result{ID: 1, Status: pipeline.StatusSuccess},
	}
	require.NoError(t, sink.Persist([]evaluationengine.BatchRecord{rec}))

	rows := readCSVFile(t, sink.ResultsPath())
	assert.Equal(t, "", rows[1][9])
	assert.Equal(t, "", rows[1][10])
	assert.Equal(t, "", rows[1][11])
}

func floatPtr(v float64) *float64 { return &v }

func TestSTTCSVSink(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSTTCSVSink(dir, testDate, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "stt_results_20250314.csv"), sink.ResultsPath())

	records := []STTRecord{
		{ID: 1, WAVPath: "a.wav", RefTranscript: "r", STTRaw: "r", STTNormalized: "r",
			CER: floatPtr(0), WER: floatPtr(0), IntentHit: boolPtr(true)},
		{ID: 2, WAVPath: "b.wav", RefTranscript: "r", STTRaw: "x", STTNormalized: "x",
			CER: floatPtr(1), WER: floatPtr(1), IntentHit: boolPtr(false)},
		{ID: 3, WAVPath: "c.wav", Error: "audio file not found: c.wav"},
	}
	require.NoError(t, sink.Persist(records))

	rows := readCSVFile(t, sink.ResultsPath())
	require.Len(t, rows, 4)
	assert.Equal(t, sttHeader, rows[0])
	assert.Equal(t, "0", rows[1][5])
	assert.Equal(t, "", rows[3][5])

	errorRows := readCSVFile(t, sink.ErrorsPath())
	require.Len(t, errorRows, 3)
	assert.Equal(t, "2", errorRows[1][0])
	assert.Equal(t, "3", errorRows[2][0])
}
