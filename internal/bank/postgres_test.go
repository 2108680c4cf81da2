package bank_test

import (
	"context"
	"os"
	"testing"

	"github.com/mathpipe/mathpipe/internal/bank"
	"github.com/mathpipe/mathpipe/internal/platform/database"
)

// newPostgresStore connects to the database named by
// MATHPIPE_TEST_DATABASE_URL, skipping the test when it is unset.
func newPostgresStore(t *testing.T) *bank.PostgresStore {
	t.Helper()

	url := os.Getenv("MATHPIPE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MATHPIPE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, url, 4, 1)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	store, err := bank.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	t.Cleanup(func() {
		// context.Background() is already canceled during cleanup.
		cleanupCtx := context.Background()
		db.Pool.Exec(cleanupCtx, `DELETE FROM problem_tags`)
		db.Pool.Exec(cleanupCtx, `DELETE FROM tags`)
		db.Pool.Exec(cleanupCtx, `DELETE FROM problems`)
	})
	return store
}

func TestPostgresStore_InsertAndQuery(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	id, err := store.InsertProblem(ctx, bank.ProblemRecord{
		Problem:     "Solve $$x + 2 = 5$$.",
		Answer:      "$$x = 3$$",
		Solution:    "Subtract 2 from both sides.",
		PromptTitle: "Linear Equations",
		Tags:        []string{"algebra", "linear equations"},
	})
	if err != nil {
		t.Fatalf("InsertProblem() error = %v", err)
	}

	got, err := store.GetProblem(ctx, id)
	if err != nil {
		t.Fatalf("GetProblem() error = %v", err)
	}
	if got.PromptTitle != "Linear Equations" || len(got.Tags) != 2 {
		t.Errorf("got %+v", got)
	}

	summaries, err := store.ListProblems(ctx, "algebra", 0)
	if err != nil {
		t.Fatalf("ListProblems() error = %v", err)
	}
	if len(summaries) != 1 || summaries[0].Tags != "algebra, linear equations" {
		t.Errorf("summaries = %+v", summaries)
	}

	tags, err := store.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags() error = %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("tags = %+v, want 2 rows", tags)
	}

	recent, err := store.RecentProblems(ctx, "Linear Equations", 5)
	if err != nil {
		t.Fatalf("RecentProblems() error = %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("recent = %v", recent)
	}
}

func TestPostgresStore_EnsureSchemaIdempotent(t *testing.T) {
	store := newPostgresStore(t)

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema() error = %v", err)
	}
}
