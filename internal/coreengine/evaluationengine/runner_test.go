package evaluationengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

// scriptedProcessor returns a canned result per item id. Unknown ids
// succeed with a score of 100.
type scriptedProcessor struct {
	results map[int]pipeline.Result
	onItem  func(item pipeline.TestItem)
}

func (p *scriptedProcessor) ProcessItem(_ context.Context, item pipeline.TestItem, _ pipeline.Options) pipeline.Result {
	if p.onItem != nil {
		p.onItem(item)
	}
	if res, ok := p.results[item.ID]; ok {
		return res
	}
	return successResult(item.ID, 100, time.Second)
}

type updateFrame struct {
	res   pipeline.Result
	stats Stats
}

type recordingConsumer struct {
	updates   []updateFrame
	completes int
	errors    []string

	failUpdates bool
}

func (c *recordingConsumer) SendUpdate(res pipeline.Result, stats Stats) error {
	if c.failUpdates {
		return errors.New("peer went away")
	}
	c.updates = append(c.updates, updateFrame{res: res, stats: stats})
	return nil
}

func (c *recordingConsumer) SendComplete() error {
	c.completes++
	return nil
}

func (c *recordingConsumer) SendError(message string) error {
	c.errors = append(c.errors, message)
	return nil
}

func streamItems(n int) []pipeline.TestItem {
	items := make([]pipeline.TestItem, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, pipeline.TestItem{ID: i, Question: "q"})
	}
	return items
}

func TestRunStreamEmitsOneUpdatePerItemThenComplete(t *testing.T) {
	proc := &scriptedProcessor{results: map[int]pipeline.Result{
		1: successResult(1, 80, time.Second),
		2: errorResult(2, time.Second),
		3: successResult(3, 100, 3*time.Second),
	}}
	consumer := &recordingConsumer{}
	runner := NewRunner(proc, nil)

	err := runner.RunStream(context.Background(), streamItems(3), pipeline.Options{}, consumer)
	require.NoError(t, err)

	require.Len(t, consumer.updates, 3)
	assert.Equal(t, 1, consumer.completes)
	assert.Empty(t, consumer.errors)

	for i, frame := range consumer.updates {
		assert.Equal(t, i+1, frame.res.ID)
		assert.Equal(t, i+1, frame.stats.Processed)
		assert.Equal(t, 3, frame.stats.Total)
	}

	// The error item is excluded from the running averages.
	last := consumer.updates[2].stats
	assert.InDelta(t, 90.0, last.AvgScore, 1e-9)
	assert.InDelta(t, 2.0, last.AvgLatency, 1e-9)
}

func TestRunStreamEmptyItemsSendsErrorFrame(t *testing.T) {
	consumer := &recordingConsumer{}
	runner := NewRunner(&scriptedProcessor{}, nil)

	err := runner.RunStream(context.Background(), nil, pipeline.Options{}, consumer)
	require.NoError(t, err)

	assert.Equal(t, []string{"No items to process"}, consumer.errors)
	assert.Empty(t, consumer.updates)
	assert.Zero(t, consumer.completes)
}

func TestRunStreamStopsWhenConsumerFails(t *testing.T) {
	var processed int
	proc := &scriptedProcessor{onItem: func(pipeline.TestItem) { processed++ }}
	consumer := &recordingConsumer{failUpdates: true}
	runner := NewRunner(proc, nil)

	err := runner.RunStream(context.Background(), streamItems(3), pipeline.Options{}, consumer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending update for item 1")
	assert.Contains(t, err.Error(), "peer went away")

	assert.Equal(t, 1, processed)
	assert.Zero(t, consumer.completes)
}

func TestRunStreamObservesCancellationBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	proc := &scriptedProcessor{onItem: func(pipeline.TestItem) { cancel() }}
	consumer := &recordingConsumer{}
	runner := NewRunner(proc, nil)

	err := runner.RunStream(ctx, streamItems(3), pipeline.Options{}, consumer)
	require.ErrorIs(t, err, context.Canceled)

	// The first item completed and was reported before the cancellation
	// was noticed.
	assert.Len(t, consumer.updates, 1)
	assert.Zero(t, consumer.completes)
}
