// Command server runs the voice evaluation web service: dataset upload,
// the websocket test stream, runtime configuration, synthesized audio and
// run history.
package main

import (
	"flag"

	"voice-ai-eval-platform/internal/apigateway"
	"voice-ai-eval-platform/internal/chatbase"
	"voice-ai-eval-platform/internal/config"
	"voice-ai-eval-platform/internal/configmanagement"
	"voice-ai-eval-platform/internal/coreengine/answerjudge"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/coreengine/vendoradapters"
	"voice-ai-eval-platform/internal/datastore"
	"voice-ai-eval-platform/internal/jobmanagement"
	"voice-ai-eval-platform/internal/logging"
	"voice-ai-eval-platform/internal/objectstore"
	"voice-ai-eval-platform/internal/telemetry"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	audioDir := flag.String("audio-dir", "audio", "directory caching synthesized WAV files")
	configPath := flag.String("config", "config.json", "runtime config file")
	flag.Parse()

	config.Load()
	logger := logging.MustNew()
	defer logger.Sync()
	log := logger.Sugar()

	azureCfg, err := config.GetAzureConfig()
	if err != nil {
		log.Fatalf("Speech synthesis is not configured: %v", err)
	}
	synthesizer := vendoradapters.NewAzureTTSAdapter(azureCfg, config.GetDefaultLanguageCode(), logger)

	chatbaseCfg, err := config.GetChatbaseConfig()
	if err != nil {
		log.Fatalf("Chatbase is not configured: %v", err)
	}
	chatbot := chatbase.NewClient(chatbaseCfg.APIURL, chatbaseCfg.APIKey, chatbaseCfg.BotID, logger)

	recognizers := vendoradapters.NewRegistry()
	recognizers.Register(vendoradapters.ProviderAzure, vendoradapters.NewAzureSTTAdapter(azureCfg, config.GetDefaultLanguageCode(), logger))
	if googleCfg, err := config.GetGoogleConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderGoogle, vendoradapters.NewGoogleSTTAdapter(googleCfg, config.GetDefaultLanguageCode(), logger))
	} else {
		log.Warnf("Google recognition disabled: %v", err)
	}

	var judge answerjudge.Evaluator
	if openaiCfg, err := config.GetOpenAIConfig(); err == nil {
		recognizers.Register(vendoradapters.ProviderOpenAI, vendoradapters.NewWhisperSTTAdapter(openaiCfg.APIKey, logger))
		judge = answerjudge.NewLLMJudge(answerjudge.NewOpenAIChat(openaiCfg.APIKey), logger)
	} else {
		log.Warnf("OpenAI disabled, whisper recognition and answer judging unavailable: %v", err)
	}
	log.Infof("Speech recognizers available: %v", recognizers.Names())

	var artifacts pipeline.ArtifactStore
	if objectstore.Enabled() {
		if err := objectstore.InitMinioClient(logger); err != nil {
			log.Warnf("Artifact uploads disabled: %v", err)
		} else {
			client, _ := objectstore.GetGlobalMinioClient()
			artifacts = client
		}
	}

	if dsn := config.GetDatabaseURL(); dsn != "" {
		if err := datastore.InitDB(dsn); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer datastore.DB.Close()
		if err := datastore.EnsureSchema(); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
	} else {
		log.Infof("DATABASE_URL not set, run history disabled")
	}

	pipe, err := pipeline.New(pipeline.Config{
		Synthesizer: synthesizer,
		Recognizers: recognizers,
		Chatbot:     chatbot,
		Judge:       judge,
		Artifacts:   artifacts,
		AudioDir:    *audioDir,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	store := configmanagement.NewStore(*configPath, logger)
	metrics := telemetry.NewMetrics(nil)
	handlers := jobmanagement.NewHandlers(pipe, store, metrics, logger)

	router := apigateway.SetupRouter(apigateway.Options{
		Handlers:   handlers,
		Store:      store,
		AdminToken: config.GetAdminToken(),
		AudioDir:   *audioDir,
	})

	log.Infof("Listening on %s", *addr)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
