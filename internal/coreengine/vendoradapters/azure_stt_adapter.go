package vendoradapters

import (
	"context"
	"fmt"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/logging"
)

// recognitionTimeout bounds one RecognizeOnceAsync outcome wait.
const recognitionTimeout = 60 * time.Second

// AzureSTTAdapter transcribes WAV files with the same Azure speech
// resource the synthesizer uses. Phrase hints are ignored; this adapter
// performs plain one-shot file recognition.
type AzureSTTAdapter struct {
	cfg             config.AzureConfig
	defaultLanguage string
	logger          *zap.SugaredLogger
}

// NewAzureSTTAdapter builds the recognizer adapter. defaultLanguage is
// used when a request carries no language code. logger may be nil.
func NewAzureSTTAdapter(cfg config.AzureConfig, defaultLanguage string, logger *zap.Logger) *AzureSTTAdapter {
	return &AzureSTTAdapter{
		cfg:             cfg,
		defaultLanguage: defaultLanguage,
		logger:          logging.OrNop(logger).Sugar(),
	}
}

// Transcribe runs one-shot recognition over the WAV file and returns the
// recognized text.
func (a *AzureSTTAdapter) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	speechConfig, err := speech.NewSpeechConfigFromSubscription(a.cfg.Key, a.cfg.Region)
	if err != nil {
		return "", fmt.Errorf("failed to create Azure SpeechConfig: %w", err)
	}
	defer speechConfig.Close()

	language := req.LanguageCode
	if language == "" {
		language = a.defaultLanguage
	}
	if err := speechConfig.SetSpeechRecognitionLanguage(language); err != nil {
		return "", fmt.Errorf("failed to set recognition language %s: %w", language, err)
	}

	audioConfig, err := audio.NewAudioConfigFromWavFileInput(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for recognition: %w", req.AudioPath, err)
	}
	defer audioConfig.Close()

	recognizer, err := speech.NewSpeechRecognizerFromConfig(speechConfig, audioConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create Azure SpeechRecognizer: %w", err)
	}
	defer recognizer.Close()

	a.logger.Infof("Transcribing %s with Azure (language=%s)", req.AudioPath, language)

	task := recognizer.RecognizeOnceAsync()
	var outcome speech.SpeechRecognitionOutcome
	select {
	case outcome = <-task:
	case <-time.After(recognitionTimeout):
		return "", fmt.Errorf("azure recognition timed out after %s", recognitionTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer outcome.Close()

	if outcome.Error != nil {
		return "", fmt.Errorf("azure recognition error: %w", outcome.Error)
	}
	result := outcome.Result
	switch result.Reason {
	case common.RecognizedSpeech:
		if result.Text == "" {
			return "", fmt.Errorf("azure returned an empty transcript for %s", req.AudioPath)
		}
		return result.Text, nil
	case common.NoMatch:
		return "", fmt.Errorf("no speech could be recognized in %s", req.AudioPath)
	default:
		return "", fmt.Errorf("azure recognition failed: reason=%v", result.Reason)
	}
}
