package vendoradapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

// WhisperSTTAdapter transcribes WAV files with OpenAI Whisper. It is the
// general-purpose recognizer: no phrase hinting, broad language coverage.
type WhisperSTTAdapter struct {
	client *openai.Client
	logger *zap.SugaredLogger
}

// NewWhisperSTTAdapter builds the adapter from an API key. logger may be
// nil.
func NewWhisperSTTAdapter(apiKey string, logger *zap.Logger) *WhisperSTTAdapter {
	return &WhisperSTTAdapter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logging.OrNop(logger).Sugar(),
	}
}

// isoLanguage folds a BCP-47 code into the ISO-639-1 codes Whisper
// accepts. Anything that is not an English variant maps to "zh", the
// harness's home language.
func isoLanguage(languageCode string) string {
	if strings.Contains(strings.ToLower(languageCode), "en") {
		return "en"
	}
	return "zh"
}

// Transcribe uploads the WAV file to the transcription endpoint. Phrase
// hints in the request are ignored.
func (a *WhisperSTTAdapter) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	f, err := os.Open(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("audio file not found: %s", req.AudioPath)
	}
	defer f.Close()

	language := isoLanguage(req.LanguageCode)
	a.logger.Infof("Transcribing %s with OpenAI Whisper (language=%s)", req.AudioPath, language)

	resp, err := a.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    openai.F(openai.AudioModelWhisper1),
		File:     openai.FileParam(f, filepath.Base(req.AudioPath), "audio/wav"),
		Language: openai.F(language),
	})
	if err != nil {
		return "", fmt.Errorf("Whisper transcription failed for %s: %w", req.AudioPath, err)
	}

	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		return "", fmt.Errorf("empty transcript returned for %s", req.AudioPath)
	}
	return transcript, nil
}
