package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"guestbook-backend/internal/models"
)

// fileRecord is one element of the JSON array on disk.
type fileRecord struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// FileEntryRepo keeps every entry in one JSON document, oldest first.
// All access goes through mu, so concurrent appends never lose writes.
type FileEntryRepo struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileEntryRepo(path string) (*FileEntryRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	return &FileEntryRepo{path: path, now: time.Now}, nil
}

func (r *FileEntryRepo) Append(ctx context.Context, name, message string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	records, err := r.loadUnlocked()
	if err != nil {
		return nil, err
	}

	createdAt := r.now().UTC()
	if n := len(records); n > 0 {
		// Keep the stored order and the timestamp order in agreement.
		if last, ok := parseRecordTime(records[n-1].Timestamp); ok && createdAt.Before(last) {
			createdAt = last
		}
	}

	records = append(records, fileRecord{
		Name:      name,
		Message:   message,
		Timestamp: createdAt.Format(time.RFC3339Nano),
	})
	if err := r.writeUnlocked(records); err != nil {
		return nil, err
	}

	return &models.Entry{Name: name, Message: message, CreatedAt: createdAt}, nil
}

// ListAll returns entries newest first.
func (r *FileEntryRepo) ListAll(ctx context.Context) ([]models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	records, err := r.loadUnlocked()
	if err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		createdAt, ok := parseRecordTime(rec.Timestamp)
		if !ok {
			log.Printf("WARNING: guestbook record %d has unreadable timestamp %q", i, rec.Timestamp)
		}
		entries = append(entries, models.Entry{Name: rec.Name, Message: rec.Message, CreatedAt: createdAt})
	}
	return entries, nil
}

// loadUnlocked reads the document. A missing file is an empty guestbook; a document
// that is not a JSON array is logged and treated as empty so the next append repairs it.
func (r *FileEntryRepo) loadUnlocked() ([]fileRecord, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []fileRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, r.path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return []fileRecord{}, nil
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("WARNING: guestbook file %s is not a list of entries, treating as empty: %v", r.path, err)
		return []fileRecord{}, nil
	}
	if records == nil {
		records = []fileRecord{}
	}
	return records, nil
}

// writeUnlocked replaces the document atomically: readers see the old or the new list, never a partial one.
func (r *FileEntryRepo) writeUnlocked(records []fileRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrWriteFailed, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrWriteFailed, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp: %v", ErrWriteFailed, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync temp: %v", ErrWriteFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %v", ErrWriteFailed, err)
	}
	return nil
}

// parseRecordTime accepts RFC 3339 and the display layout used by older documents (KST).
func parseRecordTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(models.DisplayLayout, s, models.KST); err == nil {
		return t, true
	}
	return time.Time{}, false
}
