// Package slack is the thin transport layer for the Slack Web API and the
// payloads Slack delivers to the webhook endpoints.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/nakupko/internal/blocks"
)

const defaultBaseURL = "https://slack.com/api"

// Client posts messages through the Slack Web API.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

// NewClient returns a Client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    defaultBaseURL,
		Token:      token,
	}
}

type postMessageRequest struct {
	Channel string         `json:"channel"`
	Text    string         `json:"text"`
	Blocks  []blocks.Block `json:"blocks,omitempty"`
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage sends a message to a channel. Text is always set so clients
// that cannot render blocks still show something; blks may be nil for
// plain-text replies.
func (c *Client) PostMessage(ctx context.Context, channelID, text string, blks []blocks.Block) error {
	payload := postMessageRequest{Channel: channelID, Text: text, Blocks: blks}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat.postMessage", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack api: %s", result.Error)
	}
	return nil
}
