package vendoradapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRecognizer struct {
	text string
}

func (s *staticRecognizer) Transcribe(context.Context, TranscribeRequest) (string, error) {
	return s.text, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	google := &staticRecognizer{text: "g"}
	whisper := &staticRecognizer{text: "w"}
	reg.Register(ProviderGoogle, google)
	reg.Register(ProviderOpenAI, whisper)

	got, err := reg.Get(ProviderGoogle)
	require.NoError(t, err)
	assert.Same(t, google, got)

	assert.Equal(t, []string{ProviderGoogle, ProviderOpenAI}, reg.Names())
}

func TestRegistryUnknownProvider(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ProviderGoogle, &staticRecognizer{})

	_, err := reg.Get("tencent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"tencent"`)
	assert.Contains(t, err.Error(), ProviderGoogle)
}

func TestRegistryReplaceKeepsLatest(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ProviderGoogle, &staticRecognizer{text: "old"})
	latest := &staticRecognizer{text: "new"}
	reg.Register(ProviderGoogle, latest)

	got, err := reg.Get(ProviderGoogle)
	require.NoError(t, err)
	assert.Same(t, latest, got)
}
