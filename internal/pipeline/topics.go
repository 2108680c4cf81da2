package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/curriculum"
)

// Topics generates the flat topic list for one class and writes
// topics.json.
type Topics struct {
	Gateway  *ai.Gateway
	Class    string
	OutPath  string
	Template string
}

// Run performs the single topic-list call and saves the result.
func (s *Topics) Run(ctx context.Context) (*Report, error) {
	report := NewReport("topics")

	slog.Info("generating topic list", "run_id", report.RunID, "class", s.Class)

	raw, resp, err := s.Gateway.CompleteJSON(ctx, renderTopicsPrompt(s.Template, s.Class))
	if err != nil {
		return report, fmt.Errorf("topic list call: %w", err)
	}
	report.Track(resp)

	if raw == nil {
		report.Add(ItemResult{Name: s.Class, Err: fmt.Errorf("reply is not valid JSON")})
		return report, fmt.Errorf("topic list reply is not valid JSON")
	}

	var topics curriculum.TopicList
	if err := json.Unmarshal(raw, &topics); err != nil {
		report.Add(ItemResult{Name: s.Class, Err: err})
		return report, fmt.Errorf("parse topic list: %w", err)
	}
	if len(topics.Topics) == 0 {
		report.Add(ItemResult{Name: s.Class, Err: fmt.Errorf("no topics key in reply")})
		return report, fmt.Errorf("reply has no topics for %q", s.Class)
	}

	if err := curriculum.SaveJSON(s.OutPath, &topics); err != nil {
		return report, err
	}

	report.Add(ItemResult{Name: s.Class, Kept: len(topics.Topics)})
	slog.Info("topic list saved", "run_id", report.RunID, "path", s.OutPath, "topics", len(topics.Topics))
	return report, nil
}
