// Package configmanagement holds the live-tunable run settings of the
// dashboard server: the recognition phrase hints and the active STT
// provider. Settings survive restarts through a small JSON file.
package configmanagement

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

// DefaultSTTProvider is used when a client omits the provider.
const DefaultSTTProvider = "google"

// defaultPhraseHints biases recognition toward the zoo-domain vocabulary
// the demo datasets are built around.
var defaultPhraseHints = []string{
	"獅子", "老虎", "大象", "長頸鹿", "斑馬", "河馬", "犀牛",
	"無尾熊", "貓熊", "企鵝", "紅鶴", "孔雀", "獼猴", "梅花鹿",
	"台灣黑熊", "石虎", "穿山甲", "食蟻獸", "紅毛猩猩", "大猩猩",
	"長臂猿", "駱駝", "羊駝", "鴕鳥", "鱷魚", "蟒蛇", "水獺", "海豹",
}

// RuntimeConfig is the tunable state exposed at /config.
type RuntimeConfig struct {
	PhraseHints []string `json:"phrase_hints"`
	STTProvider string   `json:"stt_provider"`
}

// DefaultRuntimeConfig returns a fresh copy of the built-in defaults.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		PhraseHints: append([]string(nil), defaultPhraseHints...),
		STTProvider: DefaultSTTProvider,
	}
}

// DefaultPhraseHints returns a copy of the built-in hint list for callers
// outside the server (the batch CLIs use the same vocabulary).
func DefaultPhraseHints() []string {
	return append([]string(nil), defaultPhraseHints...)
}

// Store is the process-wide runtime configuration. Reads are concurrent;
// the config handler is the sole writer.
type Store struct {
	mu     sync.RWMutex
	path   string
	config RuntimeConfig
	logger *zap.SugaredLogger
}

// NewStore loads the persisted configuration from path, falling back to
// the defaults when the file is missing or unreadable.
func NewStore(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:   path,
		config: DefaultRuntimeConfig(),
		logger: logging.OrNop(logger).Sugar(),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Errorf("Failed to load config: %v", err)
		}
		return
	}
	var cfg RuntimeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Errorf("Failed to load config: %v", err)
		return
	}
	if cfg.STTProvider == "" {
		cfg.STTProvider = DefaultSTTProvider
	}
	if cfg.PhraseHints == nil {
		cfg.PhraseHints = DefaultPhraseHints()
	}
	s.config = cfg
}

// Get returns a copy of the current configuration.
func (s *Store) Get() RuntimeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return RuntimeConfig{
		PhraseHints: append([]string(nil), s.config.PhraseHints...),
		STTProvider: s.config.STTProvider,
	}
}

// Update replaces the configuration and persists it.
func (s *Store) Update(cfg RuntimeConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = RuntimeConfig{
		PhraseHints: append([]string(nil), cfg.PhraseHints...),
		STTProvider: cfg.STTProvider,
	}
	return s.save()
}

// SetProvider switches the active STT provider in memory only. Uploads
// carry a provider choice that applies to the session; the file keeps the
// last explicitly saved configuration.
func (s *Store) SetProvider(provider string) {
	if provider == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config.STTProvider = provider
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", s.path, err)
	}
	return nil
}
