// Package bot executes classified commands against the record store. It is
// the only layer that talks to the store; webhook glue hands it parsed
// commands and renders whatever comes back.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/nakupko/internal/model"
	"github.com/erazemk/nakupko/internal/store"
)

// ErrItemNotFound is returned by CompleteItem when the ID does not resolve
// to a record.
var ErrItemNotFound = errors.New("item not found")

// StoreError wraps a record-store failure with the operation that caused
// it. Raw store errors never cross the bot boundary unannotated.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// RegistrationResult reports the outcome of a registration batch. Both
// slices keep the input order, so confirmation messages are deterministic.
type RegistrationResult struct {
	Registered []string
	Failed     []string
}

// Bot dispatches commands. All collaborators are passed in explicitly;
// there is no ambient state.
type Bot struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Bot over the given store.
func New(s store.Store, logger *zap.Logger) *Bot {
	return &Bot{store: s, logger: logger, now: time.Now}
}

// Register creates one record per item. Every item is attempted even when
// earlier ones fail; per-item failures are collected, not fatal to the
// batch.
func (b *Bot) Register(ctx context.Context, items []string, registrant string) RegistrationResult {
	result := RegistrationResult{}
	for _, item := range items {
		id, err := b.store.CreateItem(ctx, item, registrant, b.now())
		if err != nil {
			b.logger.Warn("item registration failed",
				zap.String("item", item),
				zap.String("registrant", registrant),
				zap.Error(err))
			result.Failed = append(result.Failed, item)
			continue
		}
		b.logger.Info("item registered",
			zap.String("item", item),
			zap.String("id", id),
			zap.String("registrant", registrant))
		result.Registered = append(result.Registered, item)
	}
	return result
}

// ListPending returns all pending items, oldest registration first. An
// empty list is a valid, non-error outcome.
func (b *Bot) ListPending(ctx context.Context) ([]model.Item, error) {
	items, err := b.store.PendingItems(ctx)
	if err != nil {
		b.logger.Error("pending item query failed", zap.Error(err))
		return nil, &StoreError{Op: "query", Err: err}
	}
	return items, nil
}

// CompleteItem resolves the item's current name, then transitions it to
// done with the completion time. The name is returned for the confirmation
// message. Completing an already-done item is not an error; the store is
// the source of truth and the update is at-least-once.
func (b *Bot) CompleteItem(ctx context.Context, id string) (string, error) {
	item, err := b.store.GetItem(ctx, id)
	if err != nil {
		b.logger.Error("item lookup failed", zap.String("id", id), zap.Error(err))
		return "", &StoreError{Op: "retrieve", Err: err}
	}
	if item == nil {
		return "", ErrItemNotFound
	}

	if err := b.store.CompleteItem(ctx, id, b.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrItemNotFound
		}
		b.logger.Error("item completion failed", zap.String("id", id), zap.Error(err))
		return "", &StoreError{Op: "update", Err: err}
	}

	b.logger.Info("item completed", zap.String("id", id), zap.String("item", item.Name))
	return item.Name, nil
}
