package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestFileRepo(t *testing.T) (*FileEntryRepo, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data", "guestbook.json")
	repo, err := NewFileEntryRepo(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return repo, p
}

func TestFileEntryRepo_AppendAndList(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 3, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := repo.Append(ctx, "Kim", "Hello")
	if err != nil {
		t.Fatalf("append1: %v", err)
	}
	if first.Timestamp() != "2025-05-01 12:00:01" {
		t.Fatalf("unexpected KST timestamp: %q", first.Timestamp())
	}
	if _, err := repo.Append(ctx, "Lee", "Annyeong"); err != nil {
		t.Fatalf("append2: %v", err)
	}

	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2, got %d", len(entries))
	}
	if entries[0].Name != "Lee" || entries[1].Name != "Kim" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if !entries[1].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("timestamp did not round-trip: %s vs %s", entries[1].CreatedAt, first.CreatedAt)
	}
}

func TestFileEntryRepo_EmptyWhenMissing(t *testing.T) {
	repo, _ := newTestFileRepo(t)

	entries, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestFileEntryRepo_CorruptDocumentTreatedAsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"object instead of list", `{"name":"Kim"}`},
		{"truncated", `[{"name":"Kim",`},
		{"list of numbers", `[1, 2, 3]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, p := newTestFileRepo(t)
			if err := os.WriteFile(p, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("seed: %v", err)
			}

			entries, err := repo.ListAll(context.Background())
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(entries) != 0 {
				t.Fatalf("expected empty list, got %d", len(entries))
			}

			if _, err := repo.Append(context.Background(), "Park", "Fixed"); err != nil {
				t.Fatalf("append: %v", err)
			}

			raw, _ := os.ReadFile(p)
			var records []fileRecord
			if err := json.Unmarshal(raw, &records); err != nil {
				t.Fatalf("document not repaired: %v\n%s", err, raw)
			}
			if len(records) != 1 || records[0].Name != "Park" {
				t.Fatalf("unexpected records: %+v", records)
			}
		})
	}
}

func TestFileEntryRepo_ReadsLegacyDisplayTimestamps(t *testing.T) {
	repo, p := newTestFileRepo(t)
	legacy := `[{"name":"Kim","message":"old","timestamp":"2024-12-31 23:59:59"}]`
	if err := os.WriteFile(p, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	entries, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("want 1, got %d", len(entries))
	}
	if got := entries[0].Timestamp(); got != "2024-12-31 23:59:59" {
		t.Fatalf("legacy timestamp changed: %q", got)
	}
}

func TestFileEntryRepo_TimestampsNeverGoBackwards(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	ctx := context.Background()

	later := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return later }
	if _, err := repo.Append(ctx, "a", "1"); err != nil {
		t.Fatalf("append: %v", err)
	}

	repo.now = func() time.Time { return later.Add(-time.Hour) }
	second, err := repo.Append(ctx, "b", "2")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.CreatedAt.Before(later) {
		t.Fatalf("timestamp went backwards: %s", second.CreatedAt)
	}
}

func TestFileEntryRepo_ConcurrentAppendsKeepEveryEntry(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := repo.Append(ctx, fmt.Sprintf("guest-%d", i), "hi"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("append: %v", err)
	}

	entries, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != writers {
		t.Fatalf("lost writes: want %d, got %d", writers, len(entries))
	}
}

func TestFileEntryRepo_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	// A directory where the document should be cannot be read as a file.
	p := filepath.Join(dir, "guestbook.json")
	if err := os.Mkdir(p, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	repo, err := NewFileEntryRepo(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := repo.ListAll(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := repo.Append(context.Background(), "Kim", "Hello"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFileEntryRepo_CanceledContext(t *testing.T) {
	repo, _ := newTestFileRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Append(ctx, "Kim", "Hello"); !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}
	entries, _ := repo.ListAll(context.Background())
	if len(entries) != 0 {
		t.Fatalf("canceled append must not persist, got %d entries", len(entries))
	}
}
