package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/curriculum"
)

func writeTopicsFile(t *testing.T, topics ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "topics.json")
	if err := curriculum.SaveJSON(path, &curriculum.TopicList{Topics: topics}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPrompts_Run_SingleTopic(t *testing.T) {
	// One topic in, the returned problem type lands in prompts.json
	// exactly as the model shaped it.
	mock := ai.NewMockProvider(`{"problem_types": [{"id": "fractions_1", "title": "Adding Fractions", "topic": "Fractions", "tags": ["fractions"], "prompt": "Generate an addition-of-fractions problem."}]}`)
	topicsPath := writeTopicsFile(t, "Fractions")
	out := filepath.Join(t.TempDir(), "prompts.json")

	stage := &Prompts{
		Gateway:    ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:      "Pre-Algebra",
		TopicsPath: topicsPath,
		OutPath:    out,
	}

	report, err := stage.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if mock.Calls != 1 {
		t.Errorf("API calls = %d, want one per topic", mock.Calls)
	}
	if report.Kept() != 1 || report.Dropped() != 0 {
		t.Errorf("kept/dropped = %d/%d, want 1/0", report.Kept(), report.Dropped())
	}

	got, err := curriculum.LoadProblemTypes(out)
	if err != nil {
		t.Fatalf("LoadProblemTypes() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("prompts file has %d entries, want 1", len(got))
	}
	want := curriculum.ProblemType{
		ID:     "fractions_1",
		Title:  "Adding Fractions",
		Topic:  "Fractions",
		Tags:   []string{"fractions"},
		Prompt: "Generate an addition-of-fractions problem.",
	}
	if got[0].ID != want.ID || got[0].Title != want.Title || got[0].Topic != want.Topic || got[0].Prompt != want.Prompt {
		t.Errorf("entry = %+v, want %+v", got[0], want)
	}
}

func TestPrompts_Run_DropsInvalidEntries(t *testing.T) {
	// The second entry has no title and must be filtered out.
	mock := ai.NewMockProvider(`{"problem_types": [
		{"id": "a_1", "title": "A", "topic": "T", "tags": [], "prompt": "p"},
		{"id": "a_2", "topic": "T", "tags": [], "prompt": "p"}
	]}`)
	topicsPath := writeTopicsFile(t, "T")
	out := filepath.Join(t.TempDir(), "prompts.json")

	stage := &Prompts{
		Gateway:    ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:      "Algebra 1",
		TopicsPath: topicsPath,
		OutPath:    out,
	}

	report, err := stage.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Kept() != 1 || report.Dropped() != 1 {
		t.Errorf("kept/dropped = %d/%d, want 1/1", report.Kept(), report.Dropped())
	}
}

func TestPrompts_Run_MalformedReplyContinues(t *testing.T) {
	// First topic gets prose, second gets a good reply; the run keeps
	// going and the aggregate holds the good entry.
	mock := &ai.MockProvider{Responses: []string{
		"no json here, sorry",
		`{"problem_types": [{"id": "b_1", "title": "B", "topic": "T2", "tags": [], "prompt": "p"}]}`,
	}}
	topicsPath := writeTopicsFile(t, "T1", "T2")
	out := filepath.Join(t.TempDir(), "prompts.json")

	stage := &Prompts{
		Gateway:    ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:      "Algebra 1",
		TopicsPath: topicsPath,
		OutPath:    out,
	}

	report, err := stage.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, malformed items must not abort the run", err)
	}
	if report.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", report.Failed())
	}
	if report.Kept() != 1 {
		t.Errorf("Kept() = %d, want 1", report.Kept())
	}

	got, _ := curriculum.LoadProblemTypes(out)
	if len(got) != 1 || got[0].ID != "b_1" {
		t.Errorf("prompts file = %+v", got)
	}
}

func TestPrompts_Run_TransportErrorAborts(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("connection refused")}
	topicsPath := writeTopicsFile(t, "T1")

	stage := &Prompts{
		Gateway:    ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:      "Algebra 1",
		TopicsPath: topicsPath,
		OutPath:    filepath.Join(t.TempDir(), "prompts.json"),
	}

	if _, err := stage.Run(context.Background()); err == nil {
		t.Fatal("Run() should abort on transport failure")
	}
}

func TestPrompts_Run_MissingTopicsFile(t *testing.T) {
	stage := &Prompts{
		Gateway:    ai.NewGateway(ai.NewMockProvider("{}"), "deepseek-chat", 0.5, 0),
		Class:      "Algebra 1",
		TopicsPath: filepath.Join(t.TempDir(), "absent.json"),
		OutPath:    filepath.Join(t.TempDir(), "prompts.json"),
	}

	if _, err := stage.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail without a topics file")
	}
}
