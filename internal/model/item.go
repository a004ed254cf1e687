// Package model defines the domain types shared across the bot.
package model

import "time"

// Item represents a shopping-list entry tracked from registration to completion.
type Item struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Registrant   string     `json:"registrant"`
	Status       string     `json:"status"`
	RegisteredAt time.Time  `json:"registered_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Item statuses. An item starts pending and moves to done exactly once;
// it never reverts and is never deleted.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// Fallback display values applied at the store decode boundary when a
// record comes back with missing properties.
const (
	UnnamedItem       = "無名アイテム"
	UnknownRegistrant = "不明"
)
