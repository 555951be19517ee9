package datastore

import (
	"database/sql"
	"time"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// EvaluationRun maps to the evaluation_runs table: one batch or stream run
// with its final aggregate statistics.
type EvaluationRun struct {
	ID                string       `json:"id"` // UUID
	Mode              string       `json:"mode"` // e.g. stream, batch
	Provider          string       `json:"provider"`
	LanguageCode      string       `json:"language_code"`
	Status            string       `json:"status"`
	TotalItems        int          `json:"total_items"`
	ProcessedItems    int          `json:"processed_items"`
	SucceededItems    int          `json:"succeeded_items"`
	AvgScore          float64      `json:"avg_score"`
	AvgLatencySeconds float64      `json:"avg_latency_seconds"`
	CreatedAt         time.Time    `json:"created_at"`
	CompletedAt       sql.NullTime `json:"completed_at,omitempty"`
}

// ItemResult maps to the item_results table: one pipeline result row
// belonging to a run. Latencies are stored in milliseconds.
type ItemResult struct {
	ID              int64     `json:"id"`
	RunID           string    `json:"run_id"`
	ItemID          int       `json:"item_id"`
	Question        string    `json:"question"`
	ReferenceAnswer string    `json:"reference_answer"`
	AudioPath       string    `json:"audio_path"`
	STTRaw          string    `json:"stt_raw"`
	STTText         string    `json:"stt_text"`
	AIAnswer        string    `json:"ai_answer"`
	Score           int       `json:"score"`
	Reason          string    `json:"reason"`
	TTSLatencyMS    int64     `json:"tts_latency_ms"`
	STTLatencyMS    int64     `json:"stt_latency_ms"`
	ChatLatencyMS   int64     `json:"chat_latency_ms"`
	EvalLatencyMS   int64     `json:"eval_latency_ms"`
	TotalLatencyMS  int64     `json:"total_latency_ms"`
	Status          string    `json:"status"`
	ErrorMsg        string    `json:"error_msg,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ItemResultFromPipeline flattens a pipeline result into a row for runID.
func ItemResultFromPipeline(runID string, res pipeline.Result) *ItemResult {
	return &ItemResult{
		RunID:           runID,
		ItemID:          res.ID,
		Question:        res.Question,
		ReferenceAnswer: res.ReferenceAnswer,
		AudioPath:       res.AudioPath,
		STTRaw:          res.STTRaw,
		STTText:         res.STTText,
		AIAnswer:        res.AIAnswer,
		Score:           res.Score,
		Reason:          res.Reason,
		TTSLatencyMS:    res.Latency.Synthesis.Milliseconds(),
		STTLatencyMS:    res.Latency.Recognition.Milliseconds(),
		ChatLatencyMS:   res.Latency.Query.Milliseconds(),
		EvalLatencyMS:   res.Latency.Evaluation.Milliseconds(),
		TotalLatencyMS:  res.Latency.Total.Milliseconds(),
		Status:          res.Status,
		ErrorMsg:        res.ErrorMsg,
	}
}
