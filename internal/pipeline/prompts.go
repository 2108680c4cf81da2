package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/curriculum"
)

// Prompts breaks each topic down into problem subtypes with generation
// prompts and writes the aggregate prompts.json.
type Prompts struct {
	Gateway    *ai.Gateway
	Class      string
	TopicsPath string
	OutPath    string
	Template   string
}

// Run processes every topic sequentially. A malformed reply for one topic
// is recorded and the loop continues; transport failures abort the stage.
func (s *Prompts) Run(ctx context.Context) (*Report, error) {
	report := NewReport("prompts")

	topics, err := curriculum.LoadTopics(s.TopicsPath)
	if err != nil {
		return report, fmt.Errorf("run generate-topics first: %w", err)
	}
	slog.Info("breaking down topics",
		"run_id", report.RunID,
		"class", s.Class,
		"topics", len(topics.Topics),
	)

	all := make([]curriculum.ProblemType, 0)
	for i, topic := range topics.Topics {
		slog.Info("processing topic",
			"run_id", report.RunID,
			"topic", topic,
			"progress", fmt.Sprintf("%d/%d", i+1, len(topics.Topics)),
		)

		raw, resp, err := s.Gateway.CompleteJSON(ctx, renderBreakdownPrompt(s.Template, topic, s.Class))
		if err != nil {
			// Transport/HTTP failure is fatal for the whole stage.
			return report, fmt.Errorf("breakdown call for %q: %w", topic, err)
		}
		report.Track(resp)

		kept, dropped, itemErr := collectProblemTypes(raw, &all)
		report.Add(ItemResult{Name: topic, Kept: kept, Dropped: dropped, Err: itemErr})
		if itemErr != nil {
			slog.Error("topic breakdown unusable, continuing", "topic", topic, "error", itemErr)
		}
	}

	if err := curriculum.SaveJSON(s.OutPath, all); err != nil {
		return report, err
	}

	slog.Info("prompts saved", "run_id", report.RunID, "path", s.OutPath, "problem_types", len(all))
	return report, nil
}

// collectProblemTypes validates one reply and appends its well-shaped
// entries to the aggregate.
func collectProblemTypes(raw json.RawMessage, all *[]curriculum.ProblemType) (kept, dropped int, err error) {
	if raw == nil {
		return 0, 0, fmt.Errorf("reply is not valid JSON")
	}

	var parsed struct {
		ProblemTypes []curriculum.ProblemType `json:"problem_types"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, 0, fmt.Errorf("parse reply: %w", err)
	}
	if parsed.ProblemTypes == nil {
		return 0, 0, fmt.Errorf("reply has no problem_types key")
	}

	for _, pt := range parsed.ProblemTypes {
		if !pt.Valid() {
			dropped++
			continue
		}
		*all = append(*all, pt)
		kept++
	}
	return kept, dropped, nil
}
