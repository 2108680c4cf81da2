package curriculum_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mathpipe/mathpipe/internal/curriculum"
)

func TestSaveJSON_RoundTripTopics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.json")

	want := &curriculum.TopicList{Topics: []string{"Fractions", "Decimals"}}
	if err := curriculum.SaveJSON(path, want); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "  \"topics\"") {
		t.Error("output should be two-space indented")
	}

	got, err := curriculum.LoadTopics(path)
	if err != nil {
		t.Fatalf("LoadTopics() error = %v", err)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "Fractions" {
		t.Errorf("Topics = %v, want [Fractions Decimals]", got.Topics)
	}
}

func TestLoadTopics_MissingFile(t *testing.T) {
	_, err := curriculum.LoadTopics(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Error("LoadTopics() should fail for an absent file")
	}
}

func TestLoadTopics_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	if _, err := curriculum.LoadTopics(path); err == nil {
		t.Error("LoadTopics() should fail for malformed JSON")
	}
}

func TestLoadProblemTypes_BareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	content := `[{"id":"fractions_1","title":"Adding Fractions","topic":"Fractions","tags":["fractions"],"prompt":"Generate..."}]`
	os.WriteFile(path, []byte(content), 0o644)

	got, err := curriculum.LoadProblemTypes(path)
	if err != nil {
		t.Fatalf("LoadProblemTypes() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "fractions_1" {
		t.Errorf("got %+v", got)
	}
}

func TestLoadProblemTypes_WrappedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	content := `{"problem_types":[{"id":"fractions_1","title":"Adding Fractions","topic":"Fractions","tags":["fractions"],"prompt":"Generate..."}]}`
	os.WriteFile(path, []byte(content), 0o644)

	got, err := curriculum.LoadProblemTypes(path)
	if err != nil {
		t.Fatalf("LoadProblemTypes() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Adding Fractions" {
		t.Errorf("got %+v", got)
	}
}

func TestProblemType_Valid(t *testing.T) {
	full := curriculum.ProblemType{ID: "a_1", Title: "A", Topic: "T", Prompt: "p"}
	if !full.Valid() {
		t.Error("complete entry should be valid")
	}

	missing := curriculum.ProblemType{ID: "a_1", Topic: "T", Prompt: "p"}
	if missing.Valid() {
		t.Error("entry without a title should be invalid")
	}
}

func TestProblem_Complete(t *testing.T) {
	full := curriculum.Problem{Problem: "p", Answer: "a", Solution: "s"}
	if !full.Complete() {
		t.Error("problem with all fields should be complete")
	}

	noAnswer := curriculum.Problem{Problem: "p", Solution: "s"}
	if noAnswer.Complete() {
		t.Error("problem without an answer should be incomplete")
	}
}
