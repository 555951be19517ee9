// Package pipeline sequences the four stages of one end-to-end probe:
// synthesize the question to audio, recognize it back to text, query the
// chatbot with the transcript, and judge the answer. The orchestrator
// instruments each stage and absorbs every stage failure into the
// returned Result; it never returns an error for a single item.
package pipeline

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/chatbase"
	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/coreengine/answerjudge"
	"voice-ai-eval-platform/internal/coreengine/vendoradapters"
	"voice-ai-eval-platform/internal/logging"
	"voice-ai-eval-platform/internal/textnorm"
)

// EnglishVoice is the synthesis voice substituted when the run language
// is an English variant and no explicit voice is configured.
const EnglishVoice = "en-US-AvaNeural"

// Chatbot is the conversational collaborator queried with the recognized
// text. *chatbase.Client satisfies it.
type Chatbot interface {
	Ask(ctx context.Context, question, conversationID string) (chatbase.Response, error)
}

// ArtifactStore uploads a local audio file under an object key and
// returns its public locator. *objectstore.MinioClient satisfies it.
type ArtifactStore interface {
	UploadFile(ctx context.Context, localPath, objectName string) (string, error)
}

// Config wires a Pipeline.
type Config struct {
	Synthesizer vendoradapters.SpeechSynthesizer
	Recognizers *vendoradapters.Registry
	Chatbot     Chatbot
	Judge       answerjudge.Evaluator

	// Artifacts is optional; nil keeps results on local paths.
	Artifacts ArtifactStore

	// AudioDir caches synthesized WAV files between runs.
	AudioDir string

	Logger *zap.Logger
}

// Options tune one ProcessItem call. The zero value selects the Google
// recognizer, the default language and the cached artifact when present.
type Options struct {
	// Provider names the recognizer in the registry.
	Provider string

	// LanguageCode drives synthesis and recognition.
	LanguageCode string

	// AnswerLanguage is appended to the chatbot query as a trailing
	// directive; defaults to LanguageCode.
	AnswerLanguage string

	// PhraseHints bias recognition (providers that support hinting).
	PhraseHints []string

	// Voice overrides the synthesis voice.
	Voice string

	// SpeechRate is the synthesis speed multiplier (1.0 when zero).
	SpeechRate float64

	// ForceSynthesis resynthesizes even when the cached artifact exists.
	ForceSynthesis bool
}

// Pipeline runs items through the four stages sequentially.
type Pipeline struct {
	synthesizer vendoradapters.SpeechSynthesizer
	recognizers *vendoradapters.Registry
	chatbot     Chatbot
	judge       answerjudge.Evaluator
	artifacts   ArtifactStore
	audioDir    string
	logger      *zap.SugaredLogger
}

// New builds a Pipeline and ensures the audio cache directory exists.
func New(cfg Config) (*Pipeline, error) {
	audioDir := cfg.AudioDir
	if audioDir == "" {
		audioDir = "audio"
	}
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory %s: %w", audioDir, err)
	}
	return &Pipeline{
		synthesizer: cfg.Synthesizer,
		recognizers: cfg.Recognizers,
		chatbot:     cfg.Chatbot,
		judge:       cfg.Judge,
		artifacts:   cfg.Artifacts,
		audioDir:    audioDir,
		logger:      logging.OrNop(cfg.Logger).Sugar(),
	}, nil
}

// ArtifactName derives the cache filename for a question: the item id
// plus a short hash of the question text, so edited questions resynthesize
// while repeated runs reuse the artifact.
func ArtifactName(itemID int, question string) string {
	sum := md5.Sum([]byte(question))
	return fmt.Sprintf("q%d_%x.wav", itemID, sum[:4])
}

// ProcessItem runs one item through all four stages. A stage failure
// finalizes the Result with StatusError and the stage's error text
// verbatim; later stages are skipped and their latencies stay zero.
// Latencies of completed stages are always retained, and Total is set on
// every path.
func (p *Pipeline) ProcessItem(ctx context.Context, item TestItem, opts Options) (res Result) {
	res = Result{
		ID:              item.ID,
		Question:        item.Question,
		ReferenceAnswer: item.ReferenceAnswer,
		Status:          StatusPending,
	}
	startTotal := time.Now()
	defer func() {
		res.Latency.Total = time.Since(startTotal)
	}()

	language := opts.LanguageCode
	if language == "" {
		language = config.DefaultLanguageCode
	}

	// Synthesize.
	filename := ArtifactName(item.ID, item.Question)
	wavPath := filepath.Join(p.audioDir, filename)
	stageStart := time.Now()
	if _, err := os.Stat(wavPath); err != nil || opts.ForceSynthesis {
		voice := opts.Voice
		if voice == "" && strings.HasPrefix(strings.ToLower(language), "en") {
			voice = EnglishVoice
		}
		err := p.synthesizer.Synthesize(ctx, vendoradapters.SynthesisRequest{
			Text:         item.Question,
			OutputPath:   wavPath,
			LanguageCode: language,
			Voice:        voice,
			Rate:         opts.SpeechRate,
		})
		if err != nil {
			p.fail(&res, err)
			return res
		}
	}
	res.Latency.Synthesis = time.Since(stageStart)
	res.AudioPath = p.storeArtifact(ctx, wavPath, filename)

	// Recognize.
	provider := opts.Provider
	if provider == "" {
		provider = vendoradapters.ProviderGoogle
	}
	recognizer, err := p.recognizers.Get(provider)
	if err != nil {
		p.fail(&res, err)
		return res
	}
	stageStart = time.Now()
	raw, err := recognizer.Transcribe(ctx, vendoradapters.TranscribeRequest{
		AudioPath:    wavPath,
		LanguageCode: language,
		PhraseHints:  opts.PhraseHints,
	})
	if err != nil {
		p.fail(&res, err)
		return res
	}
	res.STTRaw = raw
	res.STTText = textnorm.Normalize(raw)
	res.Latency.Recognition = time.Since(stageStart)

	// Query.
	answerLanguage := opts.AnswerLanguage
	if answerLanguage == "" {
		answerLanguage = language
	}
	query := fmt.Sprintf("%s Please answer in the language: %s", res.STTText, answerLanguage)
	stageStart = time.Now()
	chatResp, err := p.chatbot.Ask(ctx, query, "")
	if err != nil {
		p.fail(&res, err)
		return res
	}
	res.AIAnswer = chatResp.AnswerText
	res.Latency.Query = time.Since(stageStart)

	// Evaluate. Judging itself is fail-closed; the stage can only fail
	// when a reference demands a judge that was never configured.
	stageStart = time.Now()
	if item.ReferenceAnswer != "" {
		if p.judge == nil {
			p.fail(&res, fmt.Errorf("answer judge is not configured"))
			return res
		}
		judgment := p.judge.Evaluate(ctx, item.Question, item.ReferenceAnswer, res.AIAnswer)
		res.Score = judgment.Score
		res.Reason = judgment.Reason
	} else {
		res.Reason = "no reference answer provided"
	}
	res.Latency.Evaluation = time.Since(stageStart)

	res.Status = StatusSuccess
	return res
}

func (p *Pipeline) fail(res *Result, err error) {
	p.logger.Errorf("Error processing item %d: %v", res.ID, err)
	res.Status = StatusError
	res.ErrorMsg = err.Error()
}

// storeArtifact prefers the uploaded locator and falls back to the local
// path on any upload failure; the item itself never fails here.
func (p *Pipeline) storeArtifact(ctx context.Context, localPath, filename string) string {
	if p.artifacts == nil {
		return localPath
	}
	url, err := p.artifacts.UploadFile(ctx, localPath, "audio/"+filename)
	if err != nil {
		p.logger.Errorf("Artifact upload failed for %s, keeping local path: %v", filename, err)
		return localPath
	}
	return url
}
