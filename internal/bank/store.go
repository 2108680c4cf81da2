// Package bank persists generated problems in the relational problem
// bank: a problems table, a tags table, and a problem_tags junction.
package bank

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a problem ID does not exist.
var ErrNotFound = errors.New("problem not found")

// ProblemRecord is one stored problem with its tags. PromptTitle is
// carried denormalized as text; the prompt itself is not persisted here.
type ProblemRecord struct {
	ID          int64    `json:"id"`
	Problem     string   `json:"problem"`
	Answer      string   `json:"answer"`
	Solution    string   `json:"solution"`
	PromptTitle string   `json:"prompt_title"`
	Tags        []string `json:"tags"`
}

// ProblemSummary is the list-view projection of a problem: tags are
// aggregated into a single comma-joined string.
type ProblemSummary struct {
	ID          int64
	Problem     string
	PromptTitle string
	Tags        string
}

// TagCount is one tag with the number of problems linked to it.
type TagCount struct {
	Name     string
	Problems int64
}

// ProblemStore persists and queries the problem bank.
type ProblemStore interface {
	// EnsureSchema creates the three tables if they do not exist.
	EnsureSchema(ctx context.Context) error

	// InsertProblem stores one problem and links its tags, upserting
	// tag rows by name. Returns the new problem ID.
	InsertProblem(ctx context.Context, rec ProblemRecord) (int64, error)

	// RecentProblems returns up to n problem texts for a prompt title,
	// newest first. Used for the duplication-avoidance hint.
	RecentProblems(ctx context.Context, promptTitle string, n int) ([]string, error)

	// ListProblems returns problems in insertion order, optionally
	// filtered to those carrying the given tag, optionally limited.
	// tag == "" means no filter; limit <= 0 means no limit.
	ListProblems(ctx context.Context, tag string, limit int) ([]ProblemSummary, error)

	// GetProblem returns one problem with its tags, or ErrNotFound.
	GetProblem(ctx context.Context, id int64) (*ProblemRecord, error)

	// ListTags returns all tags with their problem counts, descending.
	ListTags(ctx context.Context) ([]TagCount, error)
}
