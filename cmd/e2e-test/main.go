// Command e2e-test runs the full pipeline over a QA dataset offline:
// every question is synthesized, recognized, asked at the chatbot and
// graded, and the graded table lands in dated result CSVs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"voice-ai-eval-platform/internal/chatbase"
	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/configmanagement"
	"voice-ai-eval-platform/internal/coreengine/answerjudge"
	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/coreengine/vendoradapters"
	"voice-ai-eval-platform/internal/dataset"
	"voice-ai-eval-platform/internal/datastore"
	"voice-ai-eval-platform/internal/logging"
	"voice-ai-eval-platform/internal/resultsink"
)

func main() {
	datasetPath := flag.String("dataset", "zoo_dataset.csv", "QA dataset CSV")
	keywordsPath := flag.String("keywords", "", "answer keywords CSV for auto grading")
	outdir := flag.String("outdir", "results", "directory for result CSVs")
	audioDir := flag.String("audio-dir", "audio", "directory caching synthesized WAV files")
	language := flag.String("language", "", "override STT language code")
	provider := flag.String("provider", vendoradapters.ProviderGoogle, "speech recognition provider")
	limit := flag.Int("limit", 0, "limit rows for dry runs")
	intentStrict := flag.Bool("intent-strict", false, "enable exact match intent evaluation")
	useLLMEval := flag.Bool("use-llm-eval", false, "use the LLM judge to evaluate answer correctness")
	keywordsAsReference := flag.Bool("keywords-as-reference", false, "judge against the keyword text when the dataset has no reference answer")
	autosave := flag.Bool("autosave", false, "rewrite the result CSV after every item")
	forceSynthesis := flag.Bool("force-synthesis", false, "regenerate cached audio artifacts")
	idColumn := flag.String("dataset-id-column", "", "dataset id column name or alias")
	questionColumn := flag.String("dataset-question-column", "", "question column name or alias")
	answerColumn := flag.String("dataset-answer-column", "", "reference answer column name or alias")
	flag.Parse()

	config.Load()
	logger := logging.MustNew()
	defer logger.Sync()
	log := logger.Sugar()

	if *language == "" {
		*language = config.GetDefaultLanguageCode()
	}

	items, err := dataset.LoadItems(*datasetPath, *idColumn, *questionColumn, *answerColumn, logger)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	if *limit > 0 && *limit < len(items) {
		items = items[:*limit]
	}

	keywords := map[int]string{}
	if *keywordsPath != "" {
		if keywords, err = dataset.LoadKeywordMap(*keywordsPath, logger); err != nil {
			log.Fatalf("Failed to load keywords: %v", err)
		}
	}

	azureCfg, err := config.GetAzureConfig()
	if err != nil {
		log.Fatalf("Speech synthesis is not configured: %v", err)
	}
	chatbaseCfg, err := config.GetChatbaseConfig()
	if err != nil {
		log.Fatalf("Chatbase is not configured: %v", err)
	}

	recognizers := vendoradapters.NewRegistry()
	recognizers.Register(vendoradapters.ProviderAzure, vendoradapters.NewAzureSTTAdapter(azureCfg, *language, logger))
	if googleCfg, err := config.GetGoogleConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderGoogle, vendoradapters.NewGoogleSTTAdapter(googleCfg, *language, logger))
	}
	var judge answerjudge.Evaluator
	if openaiCfg, err := config.GetOpenAIConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderOpenAI, vendoradapters.NewWhisperSTTAdapter(openaiCfg.APIKey, logger))
		judge = answerjudge.NewLLMJudge(answerjudge.NewOpenAIChat(openaiCfg.APIKey), logger)
	}
	if _, err := recognizers.Get(*provider); err != nil {
		log.Fatalf("Provider %q is not available: %v", *provider, err)
	}
	if *useLLMEval && judge == nil {
		log.Fatalf("--use-llm-eval requires OPENAI_API_KEY")
	}

	pipe, err := pipeline.New(pipeline.Config{
		Synthesizer: vendoradapters.NewAzureTTSAdapter(azureCfg, *language, logger),
		Recognizers: recognizers,
		Chatbot:     chatbase.NewClient(chatbaseCfg.APIURL, chatbaseCfg.APIKey, chatbaseCfg.BotID, logger),
		Judge:       judge,
		AudioDir:    *audioDir,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	csvSink, err := resultsink.NewBatchCSVSink(*outdir, time.Now(), logger)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}
	sinks := []evaluationengine.BatchSink{csvSink}

	var run *datastore.EvaluationRun
	if dsn := config.GetDatabaseURL(); dsn != "" {
		if err := datastore.InitDB(dsn); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer datastore.DB.Close()
		if err := datastore.EnsureSchema(); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		run = &datastore.EvaluationRun{Mode: "batch", Provider: *provider, LanguageCode: *language, TotalItems: len(items)}
		if err := datastore.CreateRun(run); err != nil {
			log.Fatalf("Failed to create run record: %v", err)
		}
		sinks = append(sinks, resultsink.NewDBBatchSink(run.ID, logger))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := evaluationengine.NewRunner(pipe, logger)
	records, summary, err := runner.RunBatch(ctx, items, evaluationengine.BatchOptions{
		Pipeline: pipeline.Options{
			Provider:       *provider,
			LanguageCode:   *language,
			PhraseHints:    configmanagement.DefaultPhraseHints(),
			ForceSynthesis: *forceSynthesis,
		},
		Keywords:            keywords,
		UseLLMEval:          *useLLMEval,
		KeywordsAsReference: *keywordsAsReference,
		IntentStrict:        *intentStrict,
		Autosave:            *autosave,
		Sinks:               sinks,
	})

	if run != nil {
		status := datastore.RunStatusCompleted
		if err != nil {
			status = datastore.RunStatusFailed
		}
		agg := summary.Aggregate
		if finishErr := datastore.FinishRun(run.ID, status, agg.Processed, agg.Succeeded, agg.AverageScore(), agg.AverageLatency().Seconds()); finishErr != nil {
			log.Warnf("Failed to finish run record: %v", finishErr)
		}
	}
	if err != nil {
		log.Fatalf("Batch run aborted after %d items: %v", len(records), err)
	}

	fmt.Printf("Saved E2E results to %s\n", csvSink.ResultsPath())
	agg := summary.Aggregate
	fmt.Printf("Processed %d items, %d succeeded\n", agg.Processed, agg.Succeeded)
	if agg.Succeeded > 0 {
		fmt.Printf("Average score: %.1f\n", agg.AverageScore())
		fmt.Printf("Average latency: %.2fs\n", agg.AverageLatency().Seconds())
	}
	printAccuracy("STT Intent Accuracy", summary.IntentAccuracy)
	printAccuracy("AI Answer Accuracy", summary.AIAccuracy)
	printAccuracy("End-to-End Accuracy", summary.E2EAccuracy)
}

func printAccuracy(label string, value *float64) {
	if value == nil {
		return
	}
	fmt.Printf("%s: %.2f%%\n", label, *value*100)
}
