package answerjudge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	content string
	err     error
	gotUser string
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, error) {
	f.gotUser = user
	return f.content, f.err
}

func TestEvaluateParsesVerdict(t *testing.T) {
	fake := &fakeCompleter{content: `{"is_correct": true, "score": 85, "reason": "matches the reference"}`}
	judge := NewLLMJudge(fake, nil)

	got := judge.Evaluate(context.Background(), "what do lions eat", "meat", "lions eat meat")
	assert.True(t, got.IsCorrect)
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, "matches the reference", got.Reason)
}

func TestEvaluatePromptCarriesInputs(t *testing.T) {
	fake := &fakeCompleter{content: `{"is_correct": false, "score": 10, "reason": "r"}`}
	judge := NewLLMJudge(fake, nil)

	judge.Evaluate(context.Background(), "Q?", "REF", "ANS")
	assert.Contains(t, fake.gotUser, "Question: Q?")
	assert.Contains(t, fake.gotUser, "Standard Answer (Ground Truth): REF")
	assert.Contains(t, fake.gotUser, "AI Answer: ANS")
}

func TestEvaluateFailsClosedOnDelegateError(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection refused")}
	judge := NewLLMJudge(fake, nil)

	got := judge.Evaluate(context.Background(), "q", "r", "a")
	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0, got.Score)
	assert.True(t, strings.HasPrefix(got.Reason, "evaluation failed: "))
	assert.Contains(t, got.Reason, "connection refused")
}

func TestEvaluateFailsClosedOnMalformedJSON(t *testing.T) {
	fake := &fakeCompleter{content: "the answer looks fine to me"}
	judge := NewLLMJudge(fake, nil)

	got := judge.Evaluate(context.Background(), "q", "r", "a")
	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0, got.Score)
	assert.Contains(t, got.Reason, "evaluation failed")
}

func TestEvaluateDefaultsMissingFields(t *testing.T) {
	fake := &fakeCompleter{content: `{}`}
	judge := NewLLMJudge(fake, nil)

	got := judge.Evaluate(context.Background(), "q", "r", "a")
	assert.False(t, got.IsCorrect)
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, "No reason provided", got.Reason)
}

func TestEvaluateClampsScore(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{`{"is_correct": true, "score": 120, "reason": "r"}`, 100},
		{`{"is_correct": false, "score": -3, "reason": "r"}`, 0},
		{`{"is_correct": true, "score": 79.6, "reason": "r"}`, 80},
	}
	for _, tc := range cases {
		judge := NewLLMJudge(&fakeCompleter{content: tc.raw}, nil)
		assert.Equal(t, tc.want, judge.Evaluate(context.Background(), "q", "r", "a").Score)
	}
}
