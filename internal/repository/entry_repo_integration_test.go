package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"guestbook-backend/internal/database"
)

func getTestDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres integration test")
	}
	return url
}

func TestEntryRepo_AppendAndListOrdering(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(getTestDatabaseURL(t))
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Running twice must be harmless.
	if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
		t.Fatalf("migrate again: %v", err)
	}

	repo := NewEntryRepo(pool)
	marker := "it-" + time.Now().Format("150405.000000")

	first, err := repo.Append(ctx, marker, "first")
	if err != nil {
		t.Fatalf("append first: %v", err)
	}
	second, err := repo.Append(ctx, marker, "second")
	if err != nil {
		t.Fatalf("append second: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), "DELETE FROM guestbook WHERE name = $1", marker)
	})

	if second.ID <= first.ID {
		t.Fatalf("ids must increase: %d then %d", first.ID, second.ID)
	}
	if second.CreatedAt.Before(first.CreatedAt) {
		t.Fatalf("timestamps went backwards")
	}

	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var seen []string
	for _, e := range entries {
		if e.Name == marker {
			seen = append(seen, e.Message)
		}
	}
	if len(seen) != 2 || seen[0] != "second" || seen[1] != "first" {
		t.Fatalf("expected newest first, got %v", seen)
	}

	again, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list again: %v", err)
	}
	if len(again) != len(entries) {
		t.Fatalf("reads are not stable: %d vs %d", len(entries), len(again))
	}
}

func TestEntryRepo_OverlongNameRollsBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(getTestDatabaseURL(t))
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	defer pool.Close()
	if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewEntryRepo(pool)
	tooLong := "rollback-" + strings.Repeat("x", 60)

	if _, err := repo.Append(ctx, tooLong, "x"); !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed for VARCHAR(50) violation, got %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM guestbook WHERE name = $1", tooLong).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed insert left %d rows", count)
	}
}
