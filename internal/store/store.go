// Package store defines the record-store contract the bot dispatches
// against, plus the SQLite-backed implementation for self-hosted
// deployments. The Notion-backed implementation lives in internal/notion.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/erazemk/nakupko/internal/model"
)

// ErrNotFound is returned when an operation targets a record that does not
// exist in the store.
var ErrNotFound = errors.New("record not found")

// Store is the authoritative record store for shopping-list items. The bot
// holds no state of its own; every operation is a remote call.
type Store interface {
	// CreateItem creates a pending item and returns its store-assigned ID.
	CreateItem(ctx context.Context, name, registrant string, registeredAt time.Time) (string, error)

	// PendingItems returns all pending items, oldest registration first.
	PendingItems(ctx context.Context) ([]model.Item, error)

	// GetItem returns an item by ID, or (nil, nil) if it does not exist.
	GetItem(ctx context.Context, id string) (*model.Item, error)

	// CompleteItem marks an item done and records the completion time.
	// Returns ErrNotFound if the item does not exist.
	CompleteItem(ctx context.Context, id string, completedAt time.Time) error
}
