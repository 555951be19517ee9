// Package vendoradapters wraps the external speech vendors behind two
// small interfaces: a synthesizer that turns question text into a WAV
// artifact and interchangeable recognizers that turn the artifact back
// into text. Recognizers are selected by provider name through a
// Registry.
package vendoradapters

import (
	"context"
	"encoding/binary"
	"fmt"
	"html"
	"io"
	"os"
)

// Provider names accepted by the Registry.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// SynthesisRequest describes one text-to-speech call. Rate is a speed
// multiplier where 1.0 is the voice's natural pace; non-positive values
// fall back to 1.0.
type SynthesisRequest struct {
	Text         string
	OutputPath   string
	LanguageCode string
	Voice        string
	Rate         float64
}

// SpeechSynthesizer renders a WAV file for the request.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) error
}

// TranscribeRequest describes one speech-to-text call over a local WAV
// file. PhraseHints bias recognition toward expected vocabulary; only
// providers that support hinting use them.
type TranscribeRequest struct {
	AudioPath    string
	LanguageCode string
	PhraseHints  []string
}

// SpeechRecognizer transcribes a WAV file. Implementations return an
// error for API failures and for empty or absent transcription results.
type SpeechRecognizer interface {
	Transcribe(ctx context.Context, req TranscribeRequest) (string, error)
}

// BuildSSML wraps escaped text in the voice and prosody envelope the
// synthesis endpoint expects.
func BuildSSML(text, voice, languageCode string, rate float64) string {
	if rate <= 0 {
		rate = 1.0
	}
	return fmt.Sprintf(
		"<speak version='1.0' xml:lang='%s'><voice name='%s'><prosody rate='%g'>%s</prosody></voice></speak>",
		languageCode, voice, rate, html.EscapeString(text),
	)
}

// wavSampleRate reads the sample rate from a canonical RIFF/WAVE header.
func wavSampleRate(path string) (int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := make([]byte, 28)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, fmt.Errorf("reading WAV header of %s: %w", path, err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, fmt.Errorf("%s is not a RIFF/WAVE file", path)
	}
	return int32(binary.LittleEndian.Uint32(header[24:28])), nil
}
