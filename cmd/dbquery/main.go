// Command dbquery browses the relational problem bank. Read-only.
//
// Usage:
//
//	dbquery list [--tag T] [--limit N]
//	dbquery view <id> [--solution]
//	dbquery tags
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mathpipe/mathpipe/internal/bank"
	"github.com/mathpipe/mathpipe/internal/platform/config"
	"github.com/mathpipe/mathpipe/internal/platform/database"
)

const problemPreviewRunes = 100

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.HasDatabase() {
		slog.Error("MATHPIPE_DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := bank.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to create problem store", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, store, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		slog.Error("query failed", "error", err)
		os.Exit(1)
	}
}

// run dispatches one subcommand against the store.
func run(ctx context.Context, store bank.ProblemStore, command string, args []string, out io.Writer) error {
	switch command {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		tag := fs.String("tag", "", "filter by tag")
		limit := fs.Int("limit", 0, "limit number of results")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return listProblems(ctx, store, *tag, *limit, out)

	case "view":
		if len(args) < 1 {
			return fmt.Errorf("usage: dbquery view <id> [--solution]")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid problem ID %q", args[0])
		}
		fs := flag.NewFlagSet("view", flag.ContinueOnError)
		solution := fs.Bool("solution", false, "show solution")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return viewProblem(ctx, store, id, *solution, out)

	case "tags":
		return listTags(ctx, store, out)

	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func listProblems(ctx context.Context, store bank.ProblemStore, tag string, limit int, out io.Writer) error {
	problems, err := store.ListProblems(ctx, tag, limit)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Fprintln(out, "No problems found.")
		return nil
	}

	for _, p := range problems {
		fmt.Fprintf(out, "ID: %d\n", p.ID)
		fmt.Fprintf(out, "Problem Type: %s\n", p.PromptTitle)
		fmt.Fprintf(out, "Tags: %s\n", orNone(p.Tags))
		fmt.Fprintf(out, "Problem: %s\n", preview(p.Problem, problemPreviewRunes))
		fmt.Fprintln(out, strings.Repeat("-", 40))
	}
	fmt.Fprintf(out, "Found %d problems.\n", len(problems))
	return nil
}

func viewProblem(ctx context.Context, store bank.ProblemStore, id int64, withSolution bool, out io.Writer) error {
	problem, err := store.GetProblem(ctx, id)
	if errors.Is(err, bank.ErrNotFound) {
		fmt.Fprintf(out, "No problem found with ID %d\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ID: %d\n", problem.ID)
	fmt.Fprintf(out, "Problem Type: %s\n", problem.PromptTitle)
	fmt.Fprintf(out, "Tags: %s\n", orNone(strings.Join(problem.Tags, ", ")))
	fmt.Fprintf(out, "\nPROBLEM:\n%s\n", problem.Problem)
	fmt.Fprintf(out, "\nANSWER:\n%s\n", problem.Answer)
	if withSolution {
		fmt.Fprintf(out, "\nSOLUTION:\n%s\n", problem.Solution)
	}
	return nil
}

func listTags(ctx context.Context, store bank.ProblemStore, out io.Writer) error {
	tags, err := store.ListTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintln(out, "No tags found.")
		return nil
	}

	fmt.Fprintln(out, "Available tags:")
	for _, tag := range tags {
		fmt.Fprintf(out, "- %s (%d problems)\n", tag.Name, tag.Problems)
	}
	return nil
}

// preview truncates text to n runes for list output.
func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  dbquery list [--tag T] [--limit N]   List problems")
	fmt.Fprintln(out, "  dbquery view <id> [--solution]       View one problem")
	fmt.Fprintln(out, "  dbquery tags                         List tags with counts")
}
