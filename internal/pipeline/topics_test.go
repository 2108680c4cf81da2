package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mathpipe/mathpipe/internal/ai"
	"github.com/mathpipe/mathpipe/internal/curriculum"
)

func TestTopics_Run(t *testing.T) {
	mock := ai.NewMockProvider(`{"topics": ["Fractions", "Decimals", "Percentages"]}`)
	out := filepath.Join(t.TempDir(), "topics.json")

	stage := &Topics{
		Gateway: ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:   "Pre-Algebra",
		OutPath: out,
	}

	report, err := stage.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if mock.Calls != 1 {
		t.Errorf("API calls = %d, want 1", mock.Calls)
	}
	if report.Kept() != 3 {
		t.Errorf("Kept() = %d, want 3", report.Kept())
	}
	if !mock.LastRequest.JSONResponse {
		t.Error("stage should request a JSON response")
	}
	if !strings.Contains(mock.LastRequest.Messages[0].Content, "Pre-Algebra") {
		t.Error("prompt should embed the class name")
	}

	topics, err := curriculum.LoadTopics(out)
	if err != nil {
		t.Fatalf("LoadTopics() error = %v", err)
	}
	if len(topics.Topics) != 3 || topics.Topics[0] != "Fractions" {
		t.Errorf("Topics = %v", topics.Topics)
	}
}

func TestTopics_Run_FencedReply(t *testing.T) {
	mock := ai.NewMockProvider("Here you go:\n```json\n{\"topics\": [\"Limits\"]}\n```")
	out := filepath.Join(t.TempDir(), "topics.json")

	stage := &Topics{
		Gateway: ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:   "Calculus 1",
		OutPath: out,
	}

	if _, err := stage.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	topics, _ := curriculum.LoadTopics(out)
	if len(topics.Topics) != 1 || topics.Topics[0] != "Limits" {
		t.Errorf("Topics = %v, want [Limits]", topics.Topics)
	}
}

func TestTopics_Run_NotJSON(t *testing.T) {
	mock := ai.NewMockProvider("I cannot help with that.")
	out := filepath.Join(t.TempDir(), "topics.json")

	stage := &Topics{
		Gateway: ai.NewGateway(mock, "deepseek-chat", 0.5, 0),
		Class:   "Algebra 1",
		OutPath: out,
	}

	report, err := stage.Run(context.Background())
	if err == nil {
		t.Fatal("Run() should fail when the single reply is unusable")
	}
	if report.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", report.Failed())
	}
}
