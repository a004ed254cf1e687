// Package notion implements the record-store contract on top of the Notion
// API. Each shopping-list item is one page in a Notion database; the page
// properties carry the item name, status, registrant and timestamps.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erazemk/nakupko/internal/model"
	"github.com/erazemk/nakupko/internal/store"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
)

// Property names and status options in the target database.
const (
	propName         = "アイテム名"
	propStatus       = "ステータス"
	propRegistrant   = "登録者"
	propRegisteredAt = "登録日"
	propCompletedAt  = "完了日時"

	statusPending = "未着手"
	statusDone    = "完了"
)

// Client is a Notion-backed store.Store. The zero value is not usable;
// construct with New.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	DatabaseID string
}

// New returns a Client for the given integration token and database.
func New(token, databaseID string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    defaultBaseURL,
		Token:      token,
		DatabaseID: databaseID,
	}
}

// CreateItem creates a pending item page and returns its page ID.
func (c *Client) CreateItem(ctx context.Context, name, registrant string, registeredAt time.Time) (string, error) {
	req := createPageRequest{
		Parent: parent{DatabaseID: c.DatabaseID},
		Properties: map[string]property{
			propName:         {Title: []richText{{Text: &textContent{Content: name}}}},
			propStatus:       {Status: &statusValue{Name: statusPending}},
			propRegistrant:   {RichText: []richText{{Text: &textContent{Content: registrant}}}},
			propRegisteredAt: {Date: &dateValue{Start: registeredAt.UTC().Format(time.RFC3339)}},
		},
	}

	var resp page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &resp); err != nil {
		return "", fmt.Errorf("creating item page: %w", err)
	}
	return resp.ID, nil
}

// PendingItems queries the database for pending items, oldest registration
// first. The sort is applied server-side by Notion.
func (c *Client) PendingItems(ctx context.Context) ([]model.Item, error) {
	req := queryRequest{
		Filter: &statusFilter{
			Property: propStatus,
			Status:   statusEquals{Equals: statusPending},
		},
		Sorts: []querySort{{Property: propRegisteredAt, Direction: "ascending"}},
	}

	var resp queryResponse
	path := fmt.Sprintf("/v1/databases/%s/query", c.DatabaseID)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("querying pending items: %w", err)
	}

	items := make([]model.Item, 0, len(resp.Results))
	for _, p := range resp.Results {
		items = append(items, decodeItem(p))
	}
	return items, nil
}

// GetItem retrieves an item page by ID, or (nil, nil) if it does not exist.
func (c *Client) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var resp page
	err := c.do(ctx, http.MethodGet, "/v1/pages/"+id, nil, &resp)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving item page: %w", err)
	}
	item := decodeItem(resp)
	return &item, nil
}

// CompleteItem flips an item page to the done status and records the
// completion time.
func (c *Client) CompleteItem(ctx context.Context, id string, completedAt time.Time) error {
	req := updatePageRequest{
		Properties: map[string]property{
			propStatus:      {Status: &statusValue{Name: statusDone}},
			propCompletedAt: {Date: &dateValue{Start: completedAt.UTC().Format(time.RFC3339)}},
		},
	}

	err := c.do(ctx, http.MethodPatch, "/v1/pages/"+id, req, nil)
	if isNotFound(err) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating item page: %w", err)
	}
	return nil
}

// CheckDatabase verifies the configured database exists and the token can
// reach it. Used as a startup probe.
func (c *Client) CheckDatabase(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+c.DatabaseID, nil, nil); err != nil {
		return fmt.Errorf("checking database: %w", err)
	}
	return nil
}

// apiError is a non-2xx response from the Notion API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notion api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("notion api: %s (status %d)", e.Message, e.StatusCode)
}

func isNotFound(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// do sends one API request, encoding body (if any) as JSON and decoding the
// response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return &apiError{StatusCode: resp.StatusCode, Message: errBody.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
