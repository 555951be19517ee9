package vendoradapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/logging"
)

// synthesisTimeout bounds one SpeakSsmlAsync outcome wait.
const synthesisTimeout = 60 * time.Second

// AzureTTSAdapter renders question text to WAV files with Azure Cognitive
// Services speech synthesis.
type AzureTTSAdapter struct {
	cfg             config.AzureConfig
	defaultLanguage string
	logger          *zap.SugaredLogger
}

// NewAzureTTSAdapter builds the synthesizer adapter. defaultLanguage is
// used when a request carries no language code. logger may be nil.
func NewAzureTTSAdapter(cfg config.AzureConfig, defaultLanguage string, logger *zap.Logger) *AzureTTSAdapter {
	return &AzureTTSAdapter{
		cfg:             cfg,
		defaultLanguage: defaultLanguage,
		logger:          logging.OrNop(logger).Sugar(),
	}
}

// Synthesize speaks the request as SSML and writes the audio bytes to
// req.OutputPath. The synthesizer renders in memory; an empty audio
// payload is an error even when the service reports completion.
func (a *AzureTTSAdapter) Synthesize(ctx context.Context, req SynthesisRequest) error {
	speechConfig, err := speech.NewSpeechConfigFromSubscription(a.cfg.Key, a.cfg.Region)
	if err != nil {
		return fmt.Errorf("failed to create Azure SpeechConfig: %w", err)
	}
	defer speechConfig.Close()

	if err := speechConfig.SetSpeechSynthesisOutputFormat(common.Riff24Khz16BitMonoPcm); err != nil {
		return fmt.Errorf("failed to set synthesis output format: %w", err)
	}

	synthesizer, err := speech.NewSpeechSynthesizerFromConfig(speechConfig, nil)
	if err != nil {
		return fmt.Errorf("failed to create Azure SpeechSynthesizer: %w", err)
	}
	defer synthesizer.Close()

	voice := req.Voice
	if voice == "" {
		voice = a.cfg.Voice
	}
	language := req.LanguageCode
	if language == "" {
		language = a.defaultLanguage
	}
	ssml := BuildSSML(req.Text, voice, language, req.Rate)
	a.logger.Infof("Synthesizing %d chars to %s (voice=%s, language=%s)", len(req.Text), req.OutputPath, voice, language)

	task := synthesizer.SpeakSsmlAsync(ssml)
	var outcome speech.SpeechSynthesisOutcome
	select {
	case outcome = <-task:
	case <-time.After(synthesisTimeout):
		return fmt.Errorf("azure TTS synthesis timed out after %s", synthesisTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	defer outcome.Close()

	if outcome.Error != nil {
		return fmt.Errorf("azure TTS synthesis error: %w", outcome.Error)
	}
	result := outcome.Result
	if result.Reason != common.SynthesizingAudioCompleted {
		return fmt.Errorf("azure TTS synthesis failed: reason=%v", result.Reason)
	}
	if len(result.AudioData) == 0 {
		return fmt.Errorf("azure TTS returned empty audio data")
	}

	if dir := filepath.Dir(req.OutputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating audio directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(req.OutputPath, result.AudioData, 0o644); err != nil {
		return fmt.Errorf("writing audio file %s: %w", req.OutputPath, err)
	}
	return nil
}
