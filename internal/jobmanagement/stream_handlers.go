package jobmanagement

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voice-ai-eval-platform/internal/coreengine/evaluationengine"
	"voice-ai-eval-platform/internal/coreengine/pipeline"
	"voice-ai-eval-platform/internal/datastore"
)

// streamLanguage picks the recognition language for a stream session.
// Whisper sessions run the English dataset; everything else is zh-TW.
func streamLanguage(provider string) string {
	if provider == "openai" {
		return "en-US"
	}
	return "zh-TW"
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamRequest is the first message a client sends after connecting.
type streamRequest struct {
	Items []pipeline.TestItem `json:"items"`
}

// latencyBreakdown carries per-stage latencies in seconds.
type latencyBreakdown struct {
	TTS      float64 `json:"tts"`
	STT      float64 `json:"stt"`
	Chatbase float64 `json:"chatbase"`
	Eval     float64 `json:"eval"`
}

// resultPayload is the per-item body of an update frame. AudioURL is null
// when no artifact exists, the remote URL when the artifact store took the
// upload, and a local /audio/ path otherwise.
type resultPayload struct {
	ID        int              `json:"id"`
	AudioURL  *string          `json:"audio_url"`
	Question  string           `json:"question"`
	STTText   string           `json:"stt_text"`
	AIAnswer  string           `json:"ai_answer"`
	Score     int              `json:"score"`
	Latency   float64          `json:"latency"`
	Breakdown latencyBreakdown `json:"breakdown"`
	Status    string           `json:"status"`
	Error     string           `json:"error"`
}

type updateFrame struct {
	Type   string                 `json:"type"`
	Result resultPayload          `json:"result"`
	Stats  evaluationengine.Stats `json:"stats"`
}

type completeFrame struct {
	Type string `json:"type"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func audioURL(path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http") {
		return &path
	}
	url := "/audio/" + filepath.Base(path)
	return &url
}

func resultFromPipeline(res pipeline.Result) resultPayload {
	return resultPayload{
		ID:       res.ID,
		AudioURL: audioURL(res.AudioPath),
		Question: res.Question,
		STTText:  res.STTText,
		AIAnswer: res.AIAnswer,
		Score:    res.Score,
		Latency:  res.Latency.Total.Seconds(),
		Breakdown: latencyBreakdown{
			TTS:      res.Latency.Synthesis.Seconds(),
			STT:      res.Latency.Recognition.Seconds(),
			Chatbase: res.Latency.Query.Seconds(),
			Eval:     res.Latency.Evaluation.Seconds(),
		},
		Status: res.Status,
		Error:  res.ErrorMsg,
	}
}

// wsConn is the slice of *websocket.Conn the consumer needs.
type wsConn interface {
	WriteJSON(v interface{}) error
}

// wsConsumer translates stream callbacks into websocket frames.
type wsConsumer struct {
	conn wsConn
}

func (w *wsConsumer) SendUpdate(res pipeline.Result, stats evaluationengine.Stats) error {
	return w.conn.WriteJSON(updateFrame{Type: "update", Result: resultFromPipeline(res), Stats: stats})
}

func (w *wsConsumer) SendComplete() error {
	return w.conn.WriteJSON(completeFrame{Type: "complete"})
}

func (w *wsConsumer) SendError(message string) error {
	return w.conn.WriteJSON(errorFrame{Type: "error", Message: message})
}

// StreamTest upgrades the connection, reads the item list and runs the
// pipeline over it, pushing one update frame per item. Results are also
// recorded as a run when the datastore is configured.
func (h *Handlers) StreamTest(c *gin.Context) {
	log := h.logger.Sugar()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	var req streamRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Warnf("Failed to read stream request: %v", err)
		return
	}

	cfg := h.store.Get()
	opts := pipeline.Options{
		Provider:     cfg.STTProvider,
		LanguageCode: streamLanguage(cfg.STTProvider),
		PhraseHints:  cfg.PhraseHints,
	}

	var run *datastore.EvaluationRun
	if datastore.Enabled() {
		run = &datastore.EvaluationRun{
			Mode:         "stream",
			Provider:     opts.Provider,
			LanguageCode: opts.LanguageCode,
			TotalItems:   len(req.Items),
		}
		if err := datastore.CreateRun(run); err != nil {
			log.Warnf("Failed to create run record: %v", err)
			run = nil
		}
	}
	recorder := NewRunRecorder(&wsConsumer{conn: conn}, run, h.metrics, h.logger)

	runner := evaluationengine.NewRunner(h.processor, h.logger)
	if err := runner.RunStream(c.Request.Context(), req.Items, opts, recorder); err != nil {
		log.Errorf("Stream run aborted: %v", err)
		if sendErr := recorder.SendError(err.Error()); sendErr != nil {
			log.Warnf("Failed to report stream error to client: %v", sendErr)
		}
	}
}
