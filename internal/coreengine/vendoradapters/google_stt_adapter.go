package vendoradapters

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/logging"
)

// GoogleSTTAdapter transcribes WAV files with Google Cloud
// Speech-to-Text. Phrase hints are forwarded as speech contexts, which
// is what makes this the preferred provider for zh-TW domain vocabulary.
type GoogleSTTAdapter struct {
	creds           config.GoogleConfig
	defaultLanguage string
	logger          *zap.SugaredLogger
}

// NewGoogleSTTAdapter builds the adapter. defaultLanguage is used when a
// request carries no language code. logger may be nil.
func NewGoogleSTTAdapter(creds config.GoogleConfig, defaultLanguage string, logger *zap.Logger) *GoogleSTTAdapter {
	return &GoogleSTTAdapter{
		creds:           creds,
		defaultLanguage: defaultLanguage,
		logger:          logging.OrNop(logger).Sugar(),
	}
}

func (a *GoogleSTTAdapter) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if len(a.creds.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(a.creds.CredentialsJSON))
	} else if a.creds.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(a.creds.CredentialsFile))
	}
	return opts
}

// Transcribe sends the WAV content through the synchronous Recognize RPC
// and returns the top alternative of the first result. Absent results,
// absent alternatives and blank transcripts are errors.
func (a *GoogleSTTAdapter) Transcribe(ctx context.Context, req TranscribeRequest) (string, error) {
	if _, err := os.Stat(req.AudioPath); err != nil {
		return "", fmt.Errorf("audio file not found: %s", req.AudioPath)
	}

	language := req.LanguageCode
	if language == "" {
		language = a.defaultLanguage
	}
	sampleRate, err := wavSampleRate(req.AudioPath)
	if err != nil {
		return "", err
	}
	a.logger.Infof("Transcribing %s with Google STT (sample_rate=%d, language=%s)", req.AudioPath, sampleRate, language)

	client, err := speech.NewClient(ctx, a.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to create Google Speech client: %w", err)
	}
	defer client.Close()

	content, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return "", fmt.Errorf("reading audio file %s: %w", req.AudioPath, err)
	}

	cfg := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            sampleRate,
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
	}
	if len(req.PhraseHints) > 0 {
		cfg.SpeechContexts = []*speechpb.SpeechContext{{Phrases: req.PhraseHints}}
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("Google STT API call failed for %s: %w", req.AudioPath, err)
	}

	if len(resp.Results) == 0 {
		return "", fmt.Errorf("no transcription results returned for %s", req.AudioPath)
	}
	top := resp.Results[0]
	if len(top.Alternatives) == 0 {
		return "", fmt.Errorf("STT result had no alternatives for %s", req.AudioPath)
	}
	transcript := strings.TrimSpace(top.Alternatives[0].Transcript)
	if transcript == "" {
		return "", fmt.Errorf("empty transcript returned for %s", req.AudioPath)
	}
	return transcript, nil
}
