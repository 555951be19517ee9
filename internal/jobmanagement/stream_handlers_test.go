package jobmanagement

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/configmanagement"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

// streamProcessor fabricates results and records the options each item ran
// with. The handler runs in the server goroutine, hence the mutex.
type streamProcessor struct {
	mu      sync.Mutex
	opts    []pipeline.Options
	results map[int]pipeline.Result
}

func (p *streamProcessor) ProcessItem(_ context.Context, item pipeline.TestItem, opts pipeline.Options) pipeline.Result {
	p.mu.Lock()
	p.opts = append(p.opts, opts)
	p.mu.Unlock()
	if res, ok := p.results[item.ID]; ok {
		return res
	}
	return pipeline.Result{
		ID:       item.ID,
		Question: item.Question,
		STTText:  item.Question,
		AIAnswer: "answer",
		Score:    100,
		Status:   pipeline.StatusSuccess,
		Latency: pipeline.StageLatency{
			Synthesis:   100 * time.Millisecond,
			Recognition: 200 * time.Millisecond,
			Query:       300 * time.Millisecond,
			Evaluation:  400 * time.Millisecond,
			Total:       time.Second,
		},
	}
}

func (p *streamProcessor) observedOpts() []pipeline.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pipeline.Options(nil), p.opts...)
}

func newStreamServer(t *testing.T, proc *streamProcessor) (*httptest.Server, *configmanagement.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := configmanagement.NewStore(filepath.Join(t.TempDir(), "config.json"), zap.NewNop())
	handlers := NewHandlers(proc, store, nil, zap.NewNop())
	router := gin.New()
	router.GET("/ws/test", handlers.StreamTest)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func dialStream(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/test"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type wireFrame struct {
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
	Stats   json.RawMessage `json:"stats"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var frame wireFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestStreamTestPushesUpdatesThenComplete(t *testing.T) {
	proc := &streamProcessor{}
	srv, _ := newStreamServer(t, proc)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(streamRequest{Items: []pipeline.TestItem{
		{ID: 1, Question: "獅子吃什麼"},
		{ID: 2, Question: "企鵝會飛嗎"},
	}}))

	for i := 1; i <= 2; i++ {
		frame := readFrame(t, conn)
		require.Equal(t, "update", frame.Type)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(frame.Result, &result))
		assert.EqualValues(t, i, result["id"])
		assert.Equal(t, "success", result["status"])
		assert.InDelta(t, 1.0, result["latency"], 1e-9)

		breakdown, ok := result["breakdown"].(map[string]interface{})
		require.True(t, ok)
		assert.InDelta(t, 0.3, breakdown["chatbase"], 1e-9)
		assert.InDelta(t, 0.4, breakdown["eval"], 1e-9)

		var stats map[string]interface{}
		require.NoError(t, json.Unmarshal(frame.Stats, &stats))
		assert.EqualValues(t, i, stats["processed"])
		assert.EqualValues(t, 2, stats["total"])
	}

	assert.Equal(t, "complete", readFrame(t, conn).Type)

	opts := proc.observedOpts()
	require.Len(t, opts, 2)
	assert.Equal(t, "google", opts[0].Provider)
	assert.Equal(t, "zh-TW", opts[0].LanguageCode)
	assert.NotEmpty(t, opts[0].PhraseHints)
}

func TestStreamTestUsesEnglishForWhisperSessions(t *testing.T) {
	proc := &streamProcessor{}
	srv, store := newStreamServer(t, proc)
	store.SetProvider("openai")
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(streamRequest{Items: []pipeline.TestItem{{ID: 1, Question: "what do lions eat"}}}))

	require.Equal(t, "update", readFrame(t, conn).Type)
	require.Equal(t, "complete", readFrame(t, conn).Type)

	opts := proc.observedOpts()
	require.Len(t, opts, 1)
	assert.Equal(t, "openai", opts[0].Provider)
	assert.Equal(t, "en-US", opts[0].LanguageCode)
}

func TestStreamTestEmptyItemsSendsErrorFrame(t *testing.T) {
	srv, _ := newStreamServer(t, &streamProcessor{})
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(streamRequest{Items: []pipeline.TestItem{}}))

	frame := readFrame(t, conn)
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, "No items to process", frame.Message)
}

func TestStreamTestMapsAudioPathsToURLs(t *testing.T) {
	proc := &streamProcessor{results: map[int]pipeline.Result{
		1: {ID: 1, Status: pipeline.StatusSuccess},
		2: {ID: 2, Status: pipeline.StatusSuccess, AudioPath: "https://cdn.example.com/audio/q2.wav"},
		3: {ID: 3, Status: pipeline.StatusSuccess, AudioPath: "output/audio/q3_ab12cd34.wav"},
	}}
	srv, _ := newStreamServer(t, proc)
	conn := dialStream(t, srv)

	require.NoError(t, conn.WriteJSON(streamRequest{Items: []pipeline.TestItem{
		{ID: 1, Question: "a"}, {ID: 2, Question: "b"}, {ID: 3, Question: "c"},
	}}))

	want := []interface{}{nil, "https://cdn.example.com/audio/q2.wav", "/audio/q3_ab12cd34.wav"}
	for i := 0; i < 3; i++ {
		frame := readFrame(t, conn)
		require.Equal(t, "update", frame.Type)
		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(frame.Result, &result))
		url, present := result["audio_url"]
		require.True(t, present)
		assert.Equal(t, want[i], url)
	}
}

func TestStreamLanguage(t *testing.T) {
	assert.Equal(t, "en-US", streamLanguage("openai"))
	assert.Equal(t, "zh-TW", streamLanguage("google"))
	assert.Equal(t, "zh-TW", streamLanguage(""))
}

func TestAudioURL(t *testing.T) {
	assert.Nil(t, audioURL(""))

	remote := audioURL("http://host/bucket/audio/q1.wav")
	require.NotNil(t, remote)
	assert.Equal(t, "http://host/bucket/audio/q1.wav", *remote)

	local := audioURL("output/audio/q7_0011aabb.wav")
	require.NotNil(t, local)
	assert.Equal(t, "/audio/q7_0011aabb.wav", *local)
}
