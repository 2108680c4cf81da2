// Package pipeline implements the three generation stages: topics,
// problem-type prompts, and problems.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mathpipe/mathpipe/internal/ai"
)

// ItemResult records the outcome of one processed input item. A non-nil
// Err means the item's reply was unusable; the run continues regardless.
type ItemResult struct {
	Name    string
	Kept    int
	Dropped int
	Err     error
}

// Report summarizes one stage run: per-item results plus token usage.
type Report struct {
	RunID        string
	Stage        string
	StartedAt    time.Time
	Items        []ItemResult
	InputTokens  int
	OutputTokens int
}

// NewReport starts a report for a stage run.
func NewReport(stage string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Stage:     stage,
		StartedAt: time.Now(),
	}
}

// Add appends one item result.
func (r *Report) Add(item ItemResult) {
	r.Items = append(r.Items, item)
}

// Track accumulates token usage from a completion.
func (r *Report) Track(resp ai.CompletionResponse) {
	r.InputTokens += resp.InputTokens
	r.OutputTokens += resp.OutputTokens
}

// Kept returns the total records kept across items.
func (r *Report) Kept() int {
	var n int
	for _, item := range r.Items {
		n += item.Kept
	}
	return n
}

// Dropped returns the total records dropped across items.
func (r *Report) Dropped() int {
	var n int
	for _, item := range r.Items {
		n += item.Dropped
	}
	return n
}

// Failed returns the number of items whose reply was unusable.
func (r *Report) Failed() int {
	var n int
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// LogSummary writes the run summary to the default logger.
func (r *Report) LogSummary() {
	slog.Info("stage finished",
		"run_id", r.RunID,
		"stage", r.Stage,
		"items", len(r.Items),
		"kept", r.Kept(),
		"dropped", r.Dropped(),
		"failed", r.Failed(),
		"input_tokens", r.InputTokens,
		"output_tokens", r.OutputTokens,
		"elapsed", time.Since(r.StartedAt).Round(time.Millisecond).String(),
	)
}
