package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/bank"
	"github.com/mathpipe/mathpipe/internal/curriculum"
)

// RecentHinter supplies recently generated problem texts for one prompt
// title, newest first. The Redis cache implements it; the problem bank's
// RecentProblems serves as the fallback.
type RecentHinter interface {
	Recent(ctx context.Context, promptTitle string, n int) ([]string, error)
	PushRecent(ctx context.Context, promptTitle, text string, keep int) error
}

// Problems generates concrete problems for every problem type in
// prompts.json, writes the aggregate problems.json, and optionally fills
// the relational problem bank.
type Problems struct {
	Gateway     *ai.Gateway
	PromptsPath string
	OutPath     string
	Template    string
	PerPrompt   int
	RecentHints int

	// Store is the optional relational sink; nil keeps the run
	// file-only.
	Store bank.ProblemStore

	// Hints is the optional recent-problem cache; nil falls back to
	// Store.RecentProblems.
	Hints RecentHinter
}

// Run processes every problem type sequentially. A malformed reply for
// one type is recorded and the loop continues; transport failures abort
// the stage.
func (s *Problems) Run(ctx context.Context) (*Report, error) {
	report := NewReport("problems")

	types, err := curriculum.LoadProblemTypes(s.PromptsPath)
	if err != nil {
		return report, fmt.Errorf("run generate-prompts first: %w", err)
	}
	slog.Info("generating problems",
		"run_id", report.RunID,
		"problem_types", len(types),
		"per_prompt", s.PerPrompt,
	)

	all := make([]curriculum.Problem, 0)
	for i, pt := range types {
		slog.Info("processing prompt",
			"run_id", report.RunID,
			"title", pt.Title,
			"progress", fmt.Sprintf("%d/%d", i+1, len(types)),
		)

		avoid := s.recentFor(ctx, pt.Title)
		prompt := renderProblemsPrompt(s.Template, pt.Prompt, pt.Title, pt.Topic, pt.Tags, s.PerPrompt, avoid)

		raw, resp, err := s.Gateway.CompleteJSON(ctx, prompt)
		if err != nil {
			return report, fmt.Errorf("problem call for %q: %w", pt.Title, err)
		}
		report.Track(resp)

		kept, dropped, itemErr := s.collect(ctx, raw, pt, &all)
		report.Add(ItemResult{Name: pt.Title, Kept: kept, Dropped: dropped, Err: itemErr})
		if itemErr != nil {
			slog.Error("problem batch unusable, continuing", "title", pt.Title, "error", itemErr)
		}
	}

	if err := curriculum.SaveJSON(s.OutPath, all); err != nil {
		return report, err
	}

	slog.Info("problems saved", "run_id", report.RunID, "path", s.OutPath, "problems", len(all))
	return report, nil
}

// collect validates one reply, appends complete problems to the
// aggregate, and persists them to the configured sinks.
func (s *Problems) collect(ctx context.Context, raw json.RawMessage, pt curriculum.ProblemType, all *[]curriculum.Problem) (kept, dropped int, err error) {
	if raw == nil {
		return 0, 0, fmt.Errorf("reply is not valid JSON")
	}

	var parsed struct {
		Problems []curriculum.Problem `json:"problems"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, 0, fmt.Errorf("parse reply: %w", err)
	}
	if parsed.Problems == nil {
		return 0, 0, fmt.Errorf("reply has no problems key")
	}

	for _, problem := range parsed.Problems {
		if !problem.Complete() {
			dropped++
			continue
		}
		*all = append(*all, problem)
		kept++

		if s.Store != nil {
			if _, err := s.Store.InsertProblem(ctx, bank.ProblemRecord{
				Problem:     problem.Problem,
				Answer:      problem.Answer,
				Solution:    problem.Solution,
				PromptTitle: pt.Title,
				Tags:        pt.Tags,
			}); err != nil {
				return kept, dropped, fmt.Errorf("store problem: %w", err)
			}
		}
		if s.Hints != nil {
			if err := s.Hints.PushRecent(ctx, pt.Title, problem.Problem, s.RecentHints); err != nil {
				slog.Warn("recording recent problem failed", "title", pt.Title, "error", err)
			}
		}
	}
	return kept, dropped, nil
}

// recentFor returns the duplication-avoidance hint texts for one prompt
// title. Hint lookups are best-effort; failures log and return nothing.
func (s *Problems) recentFor(ctx context.Context, promptTitle string) []string {
	if s.RecentHints <= 0 {
		return nil
	}

	if s.Hints != nil {
		texts, err := s.Hints.Recent(ctx, promptTitle, s.RecentHints)
		if err == nil && len(texts) > 0 {
			return texts
		}
		if err != nil {
			slog.Warn("hint cache lookup failed", "title", promptTitle, "error", err)
		}
	}

	if s.Store != nil {
		texts, err := s.Store.RecentProblems(ctx, promptTitle, s.RecentHints)
		if err != nil {
			slog.Warn("recent problems lookup failed", "title", promptTitle, "error", err)
			return nil
		}
		return texts
	}
	return nil
}
