// Package answerjudge scores a chatbot answer against a reference answer
// with a judge model. Judging is fail-closed: whatever goes wrong, the
// caller receives a zero-score, not-correct Judgment carrying the failure
// text, never an error.
package answerjudge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"voice-ai-eval-platform/internal/logging"
)

// Judgment is the verdict for one question/reference/answer triple.
// IsCorrect tracks the rubric threshold: true iff Score >= 60.
type Judgment struct {
	IsCorrect bool   `json:"is_correct"`
	Score     int    `json:"score"`
	Reason    string `json:"reason"`
}

// Evaluator judges one answer. Implementations must not return errors;
// failures degrade into the Judgment itself.
type Evaluator interface {
	Evaluate(ctx context.Context, question, reference, answer string) Judgment
}

// ChatCompleter is the judge's delegate model: one system+user exchange,
// returning the raw completion text.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const systemPrompt = "You are a helpful and strict evaluator."

const promptTemplate = `You are an expert judge evaluating the correctness of an AI assistant's response.

Question: %s
Standard Answer (Ground Truth): %s
AI Answer: %s

Task:
1. Determine if the AI Answer is factually consistent with the Standard Answer.
2. Assign a score from 0 to 100.
   - 100: Perfect match in meaning and key details.
   - 80-99: Correct meaning, minor missing details or slight phrasing differences.
   - 60-79: Mostly correct, but misses some important details or includes minor inaccuracies.
   - 40-59: Partially correct, but misses key information or has noticeable errors.
   - 0-39: Incorrect, irrelevant, or hallucinated.

Output Format:
Return ONLY a JSON object with the following format:
{
    "is_correct": true/false,
    "score": <int 0-100>,
    "reason": "Brief explanation of your judgment"
}`

// LLMJudge evaluates answers through a ChatCompleter.
type LLMJudge struct {
	completer ChatCompleter
	logger    *zap.SugaredLogger
}

// NewLLMJudge wires a judge to the given delegate. logger may be nil.
func NewLLMJudge(completer ChatCompleter, logger *zap.Logger) *LLMJudge {
	return &LLMJudge{
		completer: completer,
		logger:    logging.OrNop(logger).Sugar(),
	}
}

// Evaluate asks the delegate to grade the answer against the reference.
// Transport failures, empty completions, malformed JSON and missing fields
// all collapse into a fail-closed Judgment.
func (j *LLMJudge) Evaluate(ctx context.Context, question, reference, answer string) Judgment {
	prompt := fmt.Sprintf(promptTemplate, question, reference, answer)

	content, err := j.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		j.logger.Errorf("LLM evaluation failed: %v", err)
		return failClosed(err.Error())
	}

	var parsed struct {
		IsCorrect bool    `json:"is_correct"`
		Score     float64 `json:"score"`
		Reason    string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		j.logger.Errorf("LLM evaluation returned malformed JSON: %v", err)
		return failClosed(fmt.Sprintf("malformed judge response: %v", err))
	}

	reason := parsed.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	return Judgment{
		IsCorrect: parsed.IsCorrect,
		Score:     clampScore(parsed.Score),
		Reason:    reason,
	}
}

func failClosed(cause string) Judgment {
	return Judgment{
		IsCorrect: false,
		Score:     0,
		Reason:    "evaluation failed: " + cause,
	}
}

func clampScore(score float64) int {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}
