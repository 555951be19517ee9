package pipeline

import "time"

// Result status values.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// TestItem is one dataset row: a question to speak at the system and the
// reference answer (possibly empty) to judge the chatbot against.
type TestItem struct {
	ID              int    `json:"id"`
	Question        string `json:"question"`
	ReferenceAnswer string `json:"reference_answer"`
}

// StageLatency records the wall-clock duration of each stage plus the
// total for the item. A stage that never ran, or that failed, stays zero;
// Total is always set.
type StageLatency struct {
	Synthesis   time.Duration `json:"tts"`
	Recognition time.Duration `json:"stt"`
	Query       time.Duration `json:"chat"`
	Evaluation  time.Duration `json:"eval"`
	Total       time.Duration `json:"total"`
}

// Result is the audit record of one item's trip through the pipeline.
// Exactly one Result exists per processed item whatever happened to it.
type Result struct {
	ID              int    `json:"id"`
	Question        string `json:"question"`
	ReferenceAnswer string `json:"reference_answer"`

	// AudioPath is the remote locator of the synthesized artifact when an
	// artifact store accepted it, the local path otherwise.
	AudioPath string `json:"audio_path"`

	// STTRaw is the transcript as returned by the provider; STTText is its
	// normalized form, which every downstream stage consumes.
	STTRaw  string `json:"stt_raw"`
	STTText string `json:"stt_text"`

	AIAnswer string `json:"ai_answer"`

	Score  int    `json:"score"`
	Reason string `json:"reason"`

	Latency StageLatency `json:"latency"`

	Status   string `json:"status"`
	ErrorMsg string `json:"error_msg,omitempty"`
}

// Succeeded reports whether every stage completed.
func (r *Result) Succeeded() bool {
	return r.Status == StatusSuccess
}
