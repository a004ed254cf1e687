// Package web exposes the bot over HTTP: the Slack events and interactions
// webhooks plus a health probe. Handlers acknowledge Slack within its
// response deadline and do the actual store work asynchronously.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/nakupko/internal/blocks"
	"github.com/erazemk/nakupko/internal/bot"
	"github.com/erazemk/nakupko/internal/parser"
	"github.com/erazemk/nakupko/internal/slack"
)

// dispatchTimeout bounds the asynchronous work done after a webhook has
// been acknowledged.
const dispatchTimeout = 30 * time.Second

// maxBodySize caps inbound webhook bodies.
const maxBodySize = 1 << 20

// User-facing fallback texts. Store failures never leak raw errors.
const (
	helpFallbackText = "🛒 買い物リスト管理Bot ヘルプ"
	errRegisterText  = "登録処理でエラーが発生しました。"
	errListText      = "リスト表示でエラーが発生しました。"
	errCompleteText  = "完了処理でエラーが発生しました。"
	errNotFoundText  = "対象のアイテムが見つかりませんでした。"
)

// Messenger posts replies back to Slack.
type Messenger interface {
	PostMessage(ctx context.Context, channelID, text string, blks []blocks.Block) error
}

// Handler serves the webhook endpoints. All collaborators are injected;
// signingSecret may be empty to disable signature verification (local
// development).
type Handler struct {
	parser        *parser.Parser
	bot           *bot.Bot
	messenger     Messenger
	signingSecret string
	logger        *zap.Logger
	now           func() time.Time
}

// NewHandler wires the webhook handler.
func NewHandler(p *parser.Parser, b *bot.Bot, m Messenger, signingSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		parser:        p,
		bot:           b,
		messenger:     m,
		signingSecret: signingSecret,
		logger:        logger,
		now:           time.Now,
	}
}

// Events handles POST /slack/events: the URL verification challenge and
// app_mention event callbacks. Callbacks are acknowledged immediately and
// processed in the background.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var payload slack.EventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	switch payload.Type {
	case slack.PayloadURLVerification:
		jsonResponse(w, http.StatusOK, map[string]string{"challenge": payload.Challenge})
	case slack.PayloadEventCallback:
		if payload.Event != nil && payload.Event.Type == slack.EventAppMention {
			event := *payload.Event
			go h.handleMention(event)
		}
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// Interactions handles POST /slack/interactions: block action payloads,
// of which only the per-item complete button exists.
func (h *Handler) Interactions(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	var payload slack.InteractionPayload
	if err := json.Unmarshal([]byte(form.Get("payload")), &payload); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid interaction payload")
		return
	}

	go h.handleInteraction(payload)
	jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readBody reads and, when a signing secret is configured, authenticates
// the request body. Writes the error response itself when verification
// fails.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read body")
		return nil, false
	}

	if h.signingSecret != "" {
		timestamp := r.Header.Get("X-Slack-Request-Timestamp")
		signature := r.Header.Get("X-Slack-Signature")
		if err := slack.VerifySignature(h.signingSecret, timestamp, signature, body, h.now()); err != nil {
			h.logger.Warn("rejected webhook request", zap.Error(err))
			jsonError(w, http.StatusUnauthorized, "invalid signature")
			return nil, false
		}
	}
	return body, true
}

// handleMention runs the classify → dispatch → render → post pipeline for
// one mention, after the webhook has already been acknowledged.
func (h *Handler) handleMention(event slack.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	cmd := h.parser.Parse(event.Text)
	h.logger.Info("mention classified",
		zap.String("type", string(cmd.Type)),
		zap.Int("items", len(cmd.Items)),
		zap.String("user", event.User),
		zap.String("channel", event.Channel))

	switch cmd.Type {
	case parser.TypeRegister:
		h.handleRegister(ctx, cmd.Items, event)
	case parser.TypeList:
		h.handleList(ctx, event)
	default:
		h.post(ctx, event.Channel, helpFallbackText, blocks.Help())
	}
}

func (h *Handler) handleRegister(ctx context.Context, rawItems []string, event slack.Event) {
	items := parser.NormalizeItems(rawItems)
	if len(items) == 0 {
		h.post(ctx, event.Channel, blocks.NoItemsFoundText, blocks.Help())
		return
	}

	result := h.bot.Register(ctx, items, event.User)
	if len(result.Registered) == 0 {
		h.post(ctx, event.Channel, errRegisterText, nil)
		return
	}

	text := blocks.RegistrationText(result.Registered)
	if len(result.Failed) > 0 {
		text += "\n" + blocks.RegistrationFailureText(result.Failed)
	}
	h.post(ctx, event.Channel, text, nil)
}

func (h *Handler) handleList(ctx context.Context, event slack.Event) {
	items, err := h.bot.ListPending(ctx)
	if err != nil {
		h.post(ctx, event.Channel, errListText, nil)
		return
	}

	text := blocks.ListTitle
	if len(items) == 0 {
		text = blocks.NoItemsText
	}
	h.post(ctx, event.Channel, text, blocks.ItemList(items))
}

func (h *Handler) handleInteraction(payload slack.InteractionPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	for _, action := range payload.Actions {
		if action.ActionID != blocks.ActionCompleteItem {
			continue
		}

		name, err := h.bot.CompleteItem(ctx, action.Value)
		switch {
		case errors.Is(err, bot.ErrItemNotFound):
			h.post(ctx, payload.Channel.ID, errNotFoundText, nil)
		case err != nil:
			h.post(ctx, payload.Channel.ID, errCompleteText, nil)
		default:
			h.post(ctx, payload.Channel.ID, blocks.CompletionText(name), nil)
		}
		return
	}
}

func (h *Handler) post(ctx context.Context, channelID, text string, blks []blocks.Block) {
	if err := h.messenger.PostMessage(ctx, channelID, text, blks); err != nil {
		h.logger.Error("posting reply failed",
			zap.String("channel", channelID),
			zap.Error(err))
	}
}
