// Command stt-test measures recognition accuracy alone: it transcribes
// each WAV in a testset, scores the transcript against its reference with
// CER and WER, and writes dated result tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/configmanagement"
	"voice-ai-eval-platform/internal/coreengine/metricscalculator"
	"voice-ai-eval-platform/internal/coreengine/vendoradapters"
	"voice-ai-eval-platform/internal/dataset"
	"voice-ai-eval-platform/internal/logging"
	"voice-ai-eval-platform/internal/resultsink"
	"voice-ai-eval-platform/internal/textnorm"
)

func main() {
	testsetPath := flag.String("stt-testset", "stt_testset.csv", "STT testset CSV")
	outdir := flag.String("outdir", "results", "directory for result CSVs")
	language := flag.String("language", "", "override STT language code")
	provider := flag.String("provider", vendoradapters.ProviderGoogle, "speech recognition provider")
	limit := flag.Int("limit", 0, "limit rows for debugging")
	intentStrict := flag.Bool("intent-strict", false, "enable strict exact-match intent evaluation")
	flag.Parse()

	config.Load()
	logger := logging.MustNew()
	defer logger.Sync()
	log := logger.Sugar()

	if *language == "" {
		*language = config.GetDefaultLanguageCode()
	}

	samples, err := dataset.LoadSTTTestset(*testsetPath, logger)
	if err != nil {
		log.Fatalf("Failed to load testset: %v", err)
	}
	if *limit > 0 && *limit < len(samples) {
		samples = samples[:*limit]
	}

	recognizers := vendoradapters.NewRegistry()
	if azureCfg, err := config.GetAzureConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderAzure, vendoradapters.NewAzureSTTAdapter(azureCfg, *language, logger))
	}
	if googleCfg, err := config.GetGoogleConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderGoogle, vendoradapters.NewGoogleSTTAdapter(googleCfg, *language, logger))
	}
	if openaiCfg, err := config.GetOpenAIConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderOpenAI, vendoradapters.NewWhisperSTTAdapter(openaiCfg.APIKey, logger))
	}
	recognizer, err := recognizers.Get(*provider)
	if err != nil {
		log.Fatalf("Provider %q is not available: %v", *provider, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	records := make([]resultsink.STTRecord, 0, len(samples))
	for _, sample := range samples {
		if ctx.Err() != nil {
			log.Warnf("Interrupted after %d samples", len(records))
			break
		}

		record := resultsink.STTRecord{
			ID:            sample.ID,
			WAVPath:       sample.WAVPath,
			RefTranscript: sample.RefTranscript,
		}
		transcript, err := recognizer.Transcribe(ctx, vendoradapters.TranscribeRequest{
			AudioPath:    sample.WAVPath,
			LanguageCode: *language,
			PhraseHints:  configmanagement.DefaultPhraseHints(),
		})
		if err != nil {
			record.Error = err.Error()
			log.Warnf("Error processing id=%d: %v", sample.ID, err)
			records = append(records, record)
			continue
		}

		record.STTRaw = transcript
		record.STTNormalized = textnorm.Normalize(transcript)
		refNormalized := textnorm.Normalize(sample.RefTranscript)

		scores := metricscalculator.ScoreTranscript(refNormalized, record.STTNormalized)
		record.CER = &scores.CER
		record.WER = &scores.WER
		if *intentStrict {
			hit := record.STTNormalized == refNormalized
			record.IntentHit = &hit
		}
		records = append(records, record)
	}

	sink, err := resultsink.NewSTTCSVSink(*outdir, time.Now(), logger)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}
	if err := sink.Persist(records); err != nil {
		log.Fatalf("Failed to persist results: %v", err)
	}
	fmt.Printf("Saved STT results to %s\n", sink.ResultsPath())

	printSummary(records)
}

func printSummary(records []resultsink.STTRecord) {
	var cerSum, werSum float64
	var scored int
	var intentHits, intentTotal int
	for _, rec := range records {
		if rec.CER != nil {
			cerSum += *rec.CER
			werSum += *rec.WER
			scored++
		}
		if rec.IntentHit != nil {
			intentTotal++
			if *rec.IntentHit {
				intentHits++
			}
		}
	}

	if scored > 0 {
		fmt.Printf("Average CER: %.4f\n", cerSum/float64(scored))
		fmt.Printf("Average WER: %.4f\n", werSum/float64(scored))
	}
	if intentTotal > 0 {
		fmt.Printf("STT Intent Accuracy: %.2f%%\n", float64(intentHits)/float64(intentTotal)*100)
	}
}
