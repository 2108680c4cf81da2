package curriculum

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveJSON writes v to path as two-space-indented JSON.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadTopics reads a topics.json file.
func LoadTopics(path string) (*TopicList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var topics TopicList
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(topics.Topics) == 0 {
		return nil, fmt.Errorf("%s has no topics", path)
	}
	return &topics, nil
}

// LoadProblemTypes reads a prompts.json file. Both the bare array form and
// the {"problem_types": [...]} wrapper are accepted.
func LoadProblemTypes(path string) ([]ProblemType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var list []ProblemType
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		ProblemTypes []ProblemType `json:"problem_types"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if wrapped.ProblemTypes == nil {
		return nil, fmt.Errorf("%s has no problem types", path)
	}
	return wrapped.ProblemTypes, nil
}

// LoadProblems reads a problems.json file.
func LoadProblems(path string) ([]Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var problems []Problem
	if err := json.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return problems, nil
}
