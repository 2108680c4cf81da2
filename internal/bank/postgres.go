package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed ProblemStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed problem store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS problems (
			id           BIGSERIAL PRIMARY KEY,
			problem      TEXT NOT NULL,
			answer       TEXT NOT NULL,
			solution     TEXT NOT NULL,
			prompt_title TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id   BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS problem_tags (
			problem_id BIGINT NOT NULL REFERENCES problems(id),
			tag_id     BIGINT NOT NULL REFERENCES tags(id),
			PRIMARY KEY (problem_id, tag_id)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) InsertProblem(ctx context.Context, rec ProblemRecord) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	// One transaction per problem: the row and its tag links land
	// together or not at all.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO problems (problem, answer, solution, prompt_title)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		rec.Problem, rec.Answer, rec.Solution, rec.PromptTitle,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert problem: %w", err)
	}

	for _, name := range rec.Tags {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		); err != nil {
			return 0, fmt.Errorf("upsert tag %q: %w", name, err)
		}

		var tagID int64
		if err := tx.QueryRow(ctx,
			`SELECT id FROM tags WHERE name = $1`, name,
		).Scan(&tagID); err != nil {
			return 0, fmt.Errorf("find tag %q: %w", name, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO problem_tags (problem_id, tag_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			id, tagID,
		); err != nil {
			return 0, fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit problem: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) RecentProblems(ctx context.Context, promptTitle string, n int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT problem FROM problems
		 WHERE prompt_title = $1
		 ORDER BY id DESC
		 LIMIT $2`,
		promptTitle, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent problems: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan recent problem: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent problems: %w", err)
	}
	return texts, nil
}

func (s *PostgresStore) ListProblems(ctx context.Context, tag string, limit int) ([]ProblemSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT p.id, p.problem, p.prompt_title,
	       COALESCE(string_agg(t.name, ', ' ORDER BY t.id), '') AS tags
	  FROM problems p
	  LEFT JOIN problem_tags pt ON p.id = pt.problem_id
	  LEFT JOIN tags t ON pt.tag_id = t.id`

	var args []any
	if tag != "" {
		args = append(args, tag)
		query += `
	 WHERE p.id IN (
		SELECT problem_id FROM problem_tags
		  JOIN tags ON tags.id = problem_tags.tag_id
		 WHERE tags.name = $1
	 )`
	}

	query += `
	 GROUP BY p.id, p.problem, p.prompt_title
	 ORDER BY p.id`

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	defer rows.Close()

	var out []ProblemSummary
	for rows.Next() {
		var p ProblemSummary
		if err := rows.Scan(&p.ID, &p.Problem, &p.PromptTitle, &p.Tags); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate problems: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetProblem(ctx context.Context, id int64) (*ProblemRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var rec ProblemRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, problem, answer, solution, prompt_title
		 FROM problems
		 WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Problem, &rec.Answer, &rec.Solution, &rec.PromptTitle)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query problem %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT t.name
		 FROM tags t
		 JOIN problem_tags pt ON pt.tag_id = t.id
		 WHERE pt.problem_id = $1
		 ORDER BY t.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query problem tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		rec.Tags = append(rec.Tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) ListTags(ctx context.Context) ([]TagCount, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT t.name, COUNT(pt.problem_id) AS problem_count
		 FROM tags t
		 LEFT JOIN problem_tags pt ON t.id = pt.tag_id
		 GROUP BY t.name
		 ORDER BY problem_count DESC, t.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Name, &tc.Problems); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		out = append(out, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag counts: %w", err)
	}
	return out, nil
}
