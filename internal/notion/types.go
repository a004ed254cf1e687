package notion

import (
	"time"

	"github.com/erazemk/nakupko/internal/model"
)

// Wire types for the handful of Notion API shapes the bot touches. The
// same property struct serves both requests (via text) and responses
// (via plain_text); unused fields are omitted when marshalling.

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type updatePageRequest struct {
	Properties map[string]property `json:"properties"`
}

type queryRequest struct {
	Filter *statusFilter `json:"filter,omitempty"`
	Sorts  []querySort   `json:"sorts,omitempty"`
}

type statusFilter struct {
	Property string       `json:"property"`
	Status   statusEquals `json:"status"`
}

type statusEquals struct {
	Equals string `json:"equals"`
}

type querySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results []page `json:"results"`
}

type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

type property struct {
	Title    []richText   `json:"title,omitempty"`
	RichText []richText   `json:"rich_text,omitempty"`
	Status   *statusValue `json:"status,omitempty"`
	Date     *dateValue   `json:"date,omitempty"`
}

type richText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *textContent `json:"text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type statusValue struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// decodeItem maps a raw page into the domain entity. Missing or malformed
// properties fall back to display defaults here and nowhere else; callers
// never reach into page properties directly.
func decodeItem(p page) model.Item {
	item := model.Item{
		ID:         p.ID,
		Name:       model.UnnamedItem,
		Registrant: model.UnknownRegistrant,
		Status:     model.StatusPending,
	}

	if title := p.Properties[propName].Title; len(title) > 0 && title[0].PlainText != "" {
		item.Name = title[0].PlainText
	}
	if rt := p.Properties[propRegistrant].RichText; len(rt) > 0 && rt[0].PlainText != "" {
		item.Registrant = rt[0].PlainText
	}
	if st := p.Properties[propStatus].Status; st != nil && st.Name == statusDone {
		item.Status = model.StatusDone
	}
	if d := p.Properties[propRegisteredAt].Date; d != nil {
		if t, err := time.Parse(time.RFC3339, d.Start); err == nil {
			item.RegisteredAt = t
		}
	}
	if d := p.Properties[propCompletedAt].Date; d != nil {
		if t, err := time.Parse(time.RFC3339, d.Start); err == nil {
			item.CompletedAt = &t
		}
	}
	return item
}
