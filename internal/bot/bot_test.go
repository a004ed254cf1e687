package bot

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/nakupko/internal/model"
	"github.com/erazemk/nakupko/internal/store"
)

// fakeStore is a scripted in-memory store.Store.
type fakeStore struct {
	created    []string
	failCreate map[string]bool

	pending    []model.Item
	pendingErr error

	items  map[string]*model.Item
	getErr error

	completed   []string
	completeErr error
}

func (f *fakeStore) CreateItem(_ context.Context, name, _ string, _ time.Time) (string, error) {
	if f.failCreate[name] {
		return "", errors.New("create refused")
	}
	f.created = append(f.created, name)
	return fmt.Sprintf("id-%d", len(f.created)), nil
}

func (f *fakeStore) PendingItems(context.Context) ([]model.Item, error) {
	return f.pending, f.pendingErr
}

func (f *fakeStore) GetItem(_ context.Context, id string) (*model.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.items[id], nil
}

func (f *fakeStore) CompleteItem(_ context.Context, id string, _ time.Time) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, id)
	return nil
}

func newTestBot(s store.Store) *Bot {
	return New(s, zap.NewNop())
}

func TestRegister(t *testing.T) {
	fs := &fakeStore{}
	b := newTestBot(fs)

	result := b.Register(context.Background(), []string{"牛乳", "卵", "パン"}, "U123")
	if want := []string{"牛乳", "卵", "パン"}; !reflect.DeepEqual(result.Registered, want) {
		t.Errorf("expected registered %v, got %v", want, result.Registered)
	}
	if len(result.Failed) != 0 {
		t.Errorf("expected no failures, got %v", result.Failed)
	}
	if !reflect.DeepEqual(fs.created, []string{"牛乳", "卵", "パン"}) {
		t.Errorf("unexpected create order: %v", fs.created)
	}
}

func TestRegisterPartialFailure(t *testing.T) {
	// A failing create must not abort the rest of the batch, and the
	// confirmed list must only name items actually created.
	fs := &fakeStore{failCreate: map[string]bool{"卵": true}}
	b := newTestBot(fs)

	result := b.Register(context.Background(), []string{"牛乳", "卵", "パン"}, "U123")
	if want := []string{"牛乳", "パン"}; !reflect.DeepEqual(result.Registered, want) {
		t.Errorf("expected registered %v, got %v", want, result.Registered)
	}
	if want := []string{"卵"}; !reflect.DeepEqual(result.Failed, want) {
		t.Errorf("expected failed %v, got %v", want, result.Failed)
	}
}

func TestRegisterSecondItemFails(t *testing.T) {
	fs := &fakeStore{failCreate: map[string]bool{"卵": true}}
	b := newTestBot(fs)

	result := b.Register(context.Background(), []string{"牛乳", "卵"}, "U123")
	if want := []string{"牛乳"}; !reflect.DeepEqual(result.Registered, want) {
		t.Errorf("expected registered %v, got %v", want, result.Registered)
	}
}

func TestListPending(t *testing.T) {
	fs := &fakeStore{pending: []model.Item{
		{ID: "id-1", Name: "牛乳"},
		{ID: "id-2", Name: "卵"},
	}}
	b := newTestBot(fs)

	items, err := b.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestListPendingStoreError(t *testing.T) {
	fs := &fakeStore{pendingErr: errors.New("query refused")}
	b := newTestBot(fs)

	_, err := b.ListPending(context.Background())
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if se.Op != "query" {
		t.Errorf("expected op query, got %q", se.Op)
	}
}

func TestCompleteItem(t *testing.T) {
	fs := &fakeStore{items: map[string]*model.Item{
		"id-1": {ID: "id-1", Name: "牛乳", Status: model.StatusPending},
	}}
	b := newTestBot(fs)

	name, err := b.CompleteItem(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("CompleteItem: %v", err)
	}
	if name != "牛乳" {
		t.Errorf("expected 牛乳, got %q", name)
	}
	if !reflect.DeepEqual(fs.completed, []string{"id-1"}) {
		t.Errorf("expected completion of id-1, got %v", fs.completed)
	}
}

func TestCompleteItemNotFound(t *testing.T) {
	fs := &fakeStore{items: map[string]*model.Item{}}
	b := newTestBot(fs)

	_, err := b.CompleteItem(context.Background(), "missing")
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	// The update must never run for an unresolved ID.
	if len(fs.completed) != 0 {
		t.Errorf("expected no completion calls, got %v", fs.completed)
	}
}

func TestCompleteItemUpdateError(t *testing.T) {
	fs := &fakeStore{
		items:       map[string]*model.Item{"id-1": {ID: "id-1", Name: "牛乳"}},
		completeErr: errors.New("update refused"),
	}
	b := newTestBot(fs)

	_, err := b.CompleteItem(context.Background(), "id-1")
	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if se.Op != "update" {
		t.Errorf("expected op update, got %q", se.Op)
	}
}
