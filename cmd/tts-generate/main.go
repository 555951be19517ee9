// Command tts-generate pre-renders dataset questions to WAV files with
// Azure speech synthesis, optionally emitting a baseline STT testset that
// references the generated audio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/coreengine/vendoradapters"
	"voice-ai-eval-platform/internal/dataset"
	"voice-ai-eval-platform/internal/logging"
)

func main() {
	input := flag.String("input", "zoo_dataset.csv", "dataset CSV path")
	outdir := flag.String("outdir", "audio", "directory for generated audio")
	language := flag.String("language", "", "synthesis language code")
	voice := flag.String("voice", "", "synthesis voice name")
	idColumn := flag.String("id-column", "", "id column name or alias")
	questionColumn := flag.String("question-column", "", "question column name or alias")
	versionTag := flag.String("version-tag", "v1", "version tag for file naming")
	limit := flag.Int("limit", 0, "limit number of rows")
	generateTestset := flag.Bool("generate-testset", false, "emit a baseline STT testset alongside the audio files")
	testsetOutput := flag.String("testset-output", "stt_testset.csv", "destination CSV for the generated testset")
	speakerType := flag.String("speaker-type", "azure_tts", "speaker type label")
	noiseLevel := flag.String("noise-level", "quiet", "noise level label")
	overwrite := flag.Bool("overwrite", false, "overwrite existing WAV files")
	speed := flag.Float64("speed", 1.0, "speech rate multiplier, 1.0 is natural pace")
	flag.Parse()

	config.Load()
	logger := logging.MustNew()
	defer logger.Sync()
	log := logger.Sugar()

	items, err := dataset.LoadItems(*input, *idColumn, *questionColumn, "", logger)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if *limit > 0 && *limit < len(items) {
		items = items[:*limit]
	}

	if err := os.MkdirAll(*outdir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	azureCfg, err := config.GetAzureConfig()
	if err != nil {
		log.Fatalf("Speech synthesis is not configured: %v", err)
	}
	if *language == "" {
		*language = config.GetDefaultLanguageCode()
	}
	synthesizer := vendoradapters.NewAzureTTSAdapter(azureCfg, *language, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var testset []dataset.STTSample
	for i, item := range items {
		if ctx.Err() != nil {
			log.Warnf("Interrupted after %d items", i)
			break
		}

		outputPath := filepath.Join(*outdir, fmt.Sprintf("q%d_%s.wav", item.ID, *versionTag))
		if _, err := os.Stat(outputPath); err == nil && !*overwrite {
			log.Infof("Skipping existing file: %s", outputPath)
		} else {
			log.Infof("Synthesizing %d -> %s", item.ID, outputPath)
			err := synthesizer.Synthesize(ctx, vendoradapters.SynthesisRequest{
				Text:         item.Question,
				OutputPath:   outputPath,
				LanguageCode: *language,
				Voice:        *voice,
				Rate:         *speed,
			})
			if err != nil {
				log.Fatalf("Synthesis failed for id=%d: %v", item.ID, err)
			}
		}

		if *generateTestset {
			testset = append(testset, dataset.STTSample{
				ID:               item.ID,
				WAVPath:          outputPath,
				RefTranscript:    item.Question,
				CanonicalQueryID: item.ID,
				SpeakerType:      *speakerType,
				NoiseLevel:       *noiseLevel,
			})
		}
	}

	if *generateTestset && len(testset) > 0 {
		if err := dataset.WriteSTTTestset(*testsetOutput, testset); err != nil {
			log.Fatalf("Failed to write testset: %v", err)
		}
		fmt.Printf("Wrote STT testset to %s\n", *testsetOutput)
	}
	fmt.Println("Azure TTS generation complete.")
}
