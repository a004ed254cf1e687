package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/nakupko/internal/model"
	"github.com/erazemk/nakupko/internal/store"
)

var _ store.Store = (*Client)(nil)

// newTestClient returns a Client pointed at a stub API server.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New("secret-token", "db-1")
	c.BaseURL = server.URL
	return c
}

func TestCreateItem(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/pages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != apiVersion {
			t.Errorf("unexpected api version: %q", got)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"id": "page-1"})
	})

	registeredAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	id, err := c.CreateItem(context.Background(), "牛乳", "U123", registeredAt)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if id != "page-1" {
		t.Errorf("expected page-1, got %q", id)
	}

	props, _ := gotBody["properties"].(map[string]any)
	if props == nil {
		t.Fatalf("request missing properties: %v", gotBody)
	}
	for _, want := range []string{propName, propStatus, propRegistrant, propRegisteredAt} {
		if _, ok := props[want]; !ok {
			t.Errorf("request missing property %q", want)
		}
	}
}

func TestPendingItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/databases/db-1/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["filter"] == nil || req["sorts"] == nil {
			t.Errorf("expected filter and sorts in query request, got %v", req)
		}

		w.Write([]byte(`{"results": [
			{"id": "page-1", "properties": {
				"アイテム名": {"title": [{"plain_text": "牛乳"}]},
				"ステータス": {"status": {"name": "未着手"}},
				"登録者": {"rich_text": [{"plain_text": "U123"}]},
				"登録日": {"date": {"start": "2026-08-01T12:00:00Z"}}
			}},
			{"id": "page-2", "properties": {}}
		]}`))
	})

	items, err := c.PendingItems(context.Background())
	if err != nil {
		t.Fatalf("PendingItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "page-1" || first.Name != "牛乳" || first.Registrant != "U123" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.Status != model.StatusPending {
		t.Errorf("expected pending status, got %q", first.Status)
	}
	if first.RegisteredAt.IsZero() {
		t.Error("expected registration time to be parsed")
	}

	// A page with no properties decodes to display defaults.
	second := items[1]
	if second.Name != model.UnnamedItem {
		t.Errorf("expected fallback name, got %q", second.Name)
	}
	if second.Registrant != model.UnknownRegistrant {
		t.Errorf("expected fallback registrant, got %q", second.Registrant)
	}
	if !second.RegisteredAt.IsZero() {
		t.Errorf("expected zero registration time, got %v", second.RegisteredAt)
	}
}

func TestGetItemNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Could not find page"}`))
	})

	item, err := c.GetItem(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil for missing page, got %+v", item)
	}
}

func TestCompleteItem(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/v1/pages/page-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"id": "page-1"}`))
	})

	completedAt := time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC)
	if err := c.CompleteItem(context.Background(), "page-1", completedAt); err != nil {
		t.Fatalf("CompleteItem: %v", err)
	}

	props, _ := gotBody["properties"].(map[string]any)
	if _, ok := props[propStatus]; !ok {
		t.Error("update missing status property")
	}
	if _, ok := props[propCompletedAt]; !ok {
		t.Error("update missing completion date property")
	}
}

func TestCompleteItemNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Could not find page"}`))
	})

	err := c.CompleteItem(context.Background(), "missing", time.Now())
	if err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAPIErrorIncludesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "body failed validation"}`))
	})

	_, err := c.CreateItem(context.Background(), "牛乳", "U123", time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "body failed validation") {
		t.Errorf("expected API message in error, got %q", err.Error())
	}
}

func TestCheckDatabase(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/databases/db-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"id": "db-1"}`))
	})

	if err := c.CheckDatabase(context.Background()); err != nil {
		t.Errorf("CheckDatabase: %v", err)
	}
}
