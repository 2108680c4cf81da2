package pipeline

import (
	"strings"
	"testing"
)

func TestSnakeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Adding Fractions", "adding_fractions"},
		{"Linear Equations (Single Variable)", "linear_equations_single_variable"},
		{"  Completing the Square  ", "completing_the_square"},
	}

	for _, tt := range tests {
		if got := snakeID(tt.in); got != tt.want {
			t.Errorf("snakeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderBreakdownPrompt(t *testing.T) {
	got := renderBreakdownPrompt("", "Adding Fractions", "Pre-Algebra")

	if !strings.Contains(got, "Adding Fractions") {
		t.Error("prompt should embed the topic title")
	}
	if !strings.Contains(got, "Pre-Algebra") {
		t.Error("prompt should embed the class name")
	}
	if !strings.Contains(got, `"adding_fractions_"`) {
		t.Error("prompt should embed the snake_case id prefix")
	}
}

func TestRenderProblemsPrompt(t *testing.T) {
	got := renderProblemsPrompt("", "Generate a problem.", "Adding Fractions", "Fractions",
		[]string{"fractions", "addition"}, 3, nil)

	if !strings.Contains(got, "Generate 3 different math problems") {
		t.Error("prompt should embed the count")
	}
	if !strings.Contains(got, `"fractions", "addition"`) {
		t.Error("prompt should embed the quoted tag list")
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unreplaced placeholder in prompt: %s", got)
	}
}

func TestRenderProblemsPrompt_AvoidBlock(t *testing.T) {
	got := renderProblemsPrompt("", "p", "T", "Topic", nil, 2,
		[]string{"old one", "old two"})

	if !strings.Contains(got, "Do not repeat") {
		t.Error("prompt should carry the avoid block")
	}
	if !strings.Contains(got, "- old one\n") || !strings.Contains(got, "- old two\n") {
		t.Error("avoid block should list each recent problem")
	}
}

func TestRenderTopicsPrompt_CustomTemplate(t *testing.T) {
	got := renderTopicsPrompt("List topics for {{class}} now", "Calculus 1")
	if got != "List topics for Calculus 1 now" {
		t.Errorf("got %q", got)
	}
}
