package evaluationengine

import (
	"time"

	"voice-ai-eval-platform/internal/coreengine/pipeline"
)

// RunAggregate folds arriving results into running statistics in O(1) per
// item. Scores and latencies are averaged over successful items only, so
// a failed item widens the error count without dragging the averages.
// Every accessor returns 0 before the first observation.
type RunAggregate struct {
	Processed int
	Succeeded int

	scoreSum   int64
	latencySum time.Duration
}

// Observe folds one result into the aggregate.
func (a *RunAggregate) Observe(res pipeline.Result) {
	a.Processed++
	if res.Succeeded() {
		a.Succeeded++
		a.scoreSum += int64(res.Score)
		a.latencySum += res.Latency.Total
	}
}

// AverageScore is the mean score of successful items.
func (a *RunAggregate) AverageScore() float64 {
	if a.Succeeded == 0 {
		return 0
	}
	return float64(a.scoreSum) / float64(a.Succeeded)
}

// AverageLatency is the mean total latency of successful items.
func (a *RunAggregate) AverageLatency() time.Duration {
	if a.Succeeded == 0 {
		return 0
	}
	return a.latencySum / time.Duration(a.Succeeded)
}

// SuccessRate is the fraction of processed items that succeeded.
func (a *RunAggregate) SuccessRate() float64 {
	if a.Processed == 0 {
		return 0
	}
	return float64(a.Succeeded) / float64(a.Processed)
}

// Stats is the aggregate snapshot attached to every stream update.
// AvgLatency is in seconds to match the wire format.
type Stats struct {
	Processed  int     `json:"processed"`
	Total      int     `json:"total"`
	AvgScore   float64 `json:"avg_score"`
	AvgLatency float64 `json:"avg_latency"`
}

// Snapshot freezes the aggregate for a run of the given total size.
func (a *RunAggregate) Snapshot(total int) Stats {
	return Stats{
		Processed:  a.Processed,
		Total:      total,
		AvgScore:   a.AverageScore(),
		AvgLatency: a.AverageLatency().Seconds(),
	}
}
