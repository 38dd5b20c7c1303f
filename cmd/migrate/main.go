// CLI tool that brings the database up to date with the schema files in db/.
// Migration files are named YYYY-MM-DD-NNN-short-description.sql and applied
// in lexical order; the migrations table records what already ran so the
// tool is safe to re-run. Each file and its bookkeeping row commit together.
// Usage: go run ./cmd/migrate (from the repo root)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

// migrationPrefix is the date-and-sequence prefix on migration filenames,
// stripped when deriving the human-readable description.
var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// appliedMigrations returns the set of filenames already recorded. On a
// fresh database the migrations table doesn't exist yet, so a query error
// just means nothing has been applied.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) map[string]bool {
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		return applied
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if rows.Scan(&name) == nil {
			applied[name] = true
		}
	}
	return applied
}

// applyMigration runs one schema file plus its bookkeeping insert in a
// single transaction, so a failed migration leaves no trace.
func applyMigration(ctx context.Context, conn *pgx.Conn, path string) error {
	filename := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("running %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
		filename, describeMigration(filename)); err != nil {
		return fmt.Errorf("recording %s: %w", filename, err)
	}
	return tx.Commit(ctx)
}

// describeMigration turns "2026-08-01-002-energy-events-and-impact-log.sql"
// into "energy events and impact log".
func describeMigration(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	name = migrationPrefix.ReplaceAllString(name, "")
	return strings.ReplaceAll(name, "-", " ")
}

func main() {
	if err := godotenv.Load(); err != nil {
		fatalf("Error loading .env: %v", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		fatalf("Unable to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	files, err := filepath.Glob(filepath.Join("db", "*.sql"))
	if err != nil || len(files) == 0 {
		fatalf("No migration files found in db/")
	}
	sort.Strings(files)

	applied := appliedMigrations(ctx, conn)

	ran := 0
	for _, f := range files {
		filename := filepath.Base(f)
		if applied[filename] {
			fmt.Printf("  skip: %s\n", filename)
			continue
		}
		if err := applyMigration(ctx, conn, f); err != nil {
			fatalf("Error applying migration: %v", err)
		}
		fmt.Printf("  applied: %s\n", filename)
		ran++
	}

	if ran == 0 {
		fmt.Println("No pending migrations.")
	} else {
		fmt.Printf("\n%d migration(s) applied.\n", ran)
	}
}
