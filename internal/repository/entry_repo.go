package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"guestbook-backend/internal/models"
)

// EntryRepo stores guestbook entries in the guestbook table.
type EntryRepo struct {
	pool *pgxpool.Pool
}

func NewEntryRepo(pool *pgxpool.Pool) *EntryRepo {
	return &EntryRepo{pool: pool}
}

// Append inserts one row in its own transaction. The database assigns id and timestamp.
func (r *EntryRepo) Append(ctx context.Context, name, message string) (*models.Entry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	e := &models.Entry{}
	query := `INSERT INTO guestbook (name, message) VALUES ($1, $2)
		RETURNING id, name, message, timestamp`

	err = tx.QueryRow(ctx, query, name, message).Scan(&e.ID, &e.Name, &e.Message, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert: %v", ErrWriteFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrWriteFailed, err)
	}
	return e, nil
}

func (r *EntryRepo) ListAll(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, message, timestamp FROM guestbook ORDER BY timestamp DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrUnavailable, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrUnavailable, err)
	}
	return entries, nil
}
