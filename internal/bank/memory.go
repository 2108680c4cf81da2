package bank

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory ProblemStore for tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	problems []ProblemRecord // insertion order; IDs are 1-based positions
	tags     map[string]int64
	links    map[[2]int64]struct{} // (problem id, tag id)
	tagNames []string              // tag id order
}

// NewMemoryStore creates an empty in-memory problem store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tags:  make(map[string]int64),
		links: make(map[[2]int64]struct{}),
	}
}

func (s *MemoryStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (s *MemoryStore) InsertProblem(_ context.Context, rec ProblemRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = int64(len(s.problems) + 1)
	tags := rec.Tags
	rec.Tags = nil
	s.problems = append(s.problems, rec)

	for _, name := range tags {
		id, ok := s.tags[name]
		if !ok {
			id = int64(len(s.tagNames) + 1)
			s.tags[name] = id
			s.tagNames = append(s.tagNames, name)
		}
		// Composite key keeps the pair insert idempotent.
		s.links[[2]int64{rec.ID, id}] = struct{}{}
	}
	return rec.ID, nil
}

func (s *MemoryStore) RecentProblems(_ context.Context, promptTitle string, n int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var texts []string
	for i := len(s.problems) - 1; i >= 0 && len(texts) < n; i-- {
		if s.problems[i].PromptTitle == promptTitle {
			texts = append(texts, s.problems[i].Problem)
		}
	}
	return texts, nil
}

func (s *MemoryStore) ListProblems(_ context.Context, tag string, limit int) ([]ProblemSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ProblemSummary
	for _, p := range s.problems {
		if tag != "" && !s.hasTag(p.ID, tag) {
			continue
		}
		out = append(out, ProblemSummary{
			ID:          p.ID,
			Problem:     p.Problem,
			PromptTitle: p.PromptTitle,
			Tags:        strings.Join(s.tagsOf(p.ID), ", "),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) GetProblem(_ context.Context, id int64) (*ProblemRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.problems)) {
		return nil, ErrNotFound
	}
	rec := s.problems[id-1]
	rec.Tags = s.tagsOf(id)
	return &rec, nil
}

func (s *MemoryStore) ListTags(_ context.Context) ([]TagCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int64)
	for link := range s.links {
		counts[link[1]]++
	}

	out := make([]TagCount, 0, len(s.tagNames))
	for i, name := range s.tagNames {
		out = append(out, TagCount{Name: name, Problems: counts[int64(i+1)]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Problems > out[j].Problems
	})
	return out, nil
}

func (s *MemoryStore) hasTag(problemID int64, tag string) bool {
	tagID, ok := s.tags[tag]
	if !ok {
		return false
	}
	_, linked := s.links[[2]int64{problemID, tagID}]
	return linked
}

// tagsOf returns the tag names linked to a problem, in tag id order.
func (s *MemoryStore) tagsOf(problemID int64) []string {
	var names []string
	for i, name := range s.tagNames {
		if _, ok := s.links[[2]int64{problemID, int64(i + 1)}]; ok {
			names = append(names, name)
		}
	}
	return names
}
