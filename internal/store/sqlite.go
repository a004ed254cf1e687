package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/nakupko/internal/model"
)

// SQLite is a Store backed by a local SQLite database. Record IDs are
// UUIDs so they stay opaque strings like the Notion backend's page IDs.
type SQLite struct {
	DB *sql.DB
}

// NewSQLite returns a SQLite store over an open database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{DB: db}
}

// CreateItem creates a pending item and returns its ID.
func (s *SQLite) CreateItem(ctx context.Context, name, registrant string, registeredAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO items (id, name, registrant, status, registered_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, registrant, model.StatusPending, registeredAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("creating item: %w", err)
	}
	return id, nil
}

// PendingItems returns all pending items, oldest registration first.
func (s *SQLite) PendingItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, registrant, status, registered_at, completed_at
		 FROM items WHERE status = ? ORDER BY registered_at ASC`,
		model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem returns an item by ID, or (nil, nil) if it does not exist.
func (s *SQLite) GetItem(ctx context.Context, id string) (*model.Item, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, name, registrant, status, registered_at, completed_at
		 FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// CompleteItem marks an item done. Completing an already-done item is not
// an error; only a missing row is.
func (s *SQLite) CompleteItem(ctx context.Context, id string, completedAt time.Time) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE items SET status = ?, completed_at = ? WHERE id = ?`,
		model.StatusDone, completedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("completing item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("completing item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var completedAt sql.NullTime
	err := s.Scan(&item.ID, &item.Name, &item.Registrant, &item.Status, &item.RegisteredAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}
	return item, nil
}
