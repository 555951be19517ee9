package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

// STTSample is one row of a speech-recognition testset: a WAV file, the
// transcript it was synthesized from, and labels describing how it was
// recorded. CanonicalQueryID links a degraded variant back to the dataset
// row it derives from.
type STTSample struct {
	ID               int
	WAVPath          string
	RefTranscript    string
	CanonicalQueryID int
	SpeakerType      string
	NoiseLevel       string
}

var testsetHeader = []string{"id", "wav_path", "speaker_type", "noise_level", "ref_transcript", "canonical_query_id"}

// LoadSTTTestset reads a testset CSV. id, wav_path and ref_transcript are
// required columns; canonical_query_id falls back to the row id when
// absent or unparseable.
func LoadSTTTestset(path string, logger *zap.Logger) ([]STTSample, error) {
	log := logging.OrNop(logger).Sugar()

	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	for _, required := range []string{"id", "wav_path", "ref_transcript"} {
		if _, ok := t.index[required]; !ok {
			return nil, fmt.Errorf("testset %s has no %q column", path, required)
		}
	}

	var samples []STTSample
	for _, row := range t.rows {
		id, err := ParseQuestionID(t.cell(row, "id"))
		if err != nil {
			log.Warnf("Skipping testset row with invalid id: %v", err)
			continue
		}
		sample := STTSample{
			ID:               id,
			WAVPath:          strings.TrimSpace(t.cell(row, "wav_path")),
			RefTranscript:    strings.TrimSpace(t.cell(row, "ref_transcript")),
			CanonicalQueryID: id,
			SpeakerType:      strings.TrimSpace(t.cell(row, "speaker_type")),
			NoiseLevel:       strings.TrimSpace(t.cell(row, "noise_level")),
		}
		if canonical, err := ParseQuestionID(t.cell(row, "canonical_query_id")); err == nil {
			sample.CanonicalQueryID = canonical
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// WriteSTTTestset emits samples as a testset CSV, creating parent
// directories as needed.
func WriteSTTTestset(path string, samples []STTSample) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating testset directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating testset %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(testsetHeader); err != nil {
		return fmt.Errorf("writing testset header: %w", err)
	}
	for _, sample := range samples {
		record := []string{
			strconv.Itoa(sample.ID),
			sample.WAVPath,
			sample.SpeakerType,
			sample.NoiseLevel,
			sample.RefTranscript,
			strconv.Itoa(sample.CanonicalQueryID),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing testset row %d: %w", sample.ID, err)
		}
	}
	w.Flush()
	return w.Error()
}
