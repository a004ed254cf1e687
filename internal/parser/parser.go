// Package parser classifies inbound Slack messages into bot commands.
//
// Classification is pure keyword matching: a message containing a register
// keyword is a registration, a message containing only a list keyword is a
// list request, anything else is unknown. Registration messages are split
// into individual item names using a fixed, ordered set of separators.
package parser

import (
	"regexp"
	"strings"
)

// CommandType is the classified intent of a message.
type CommandType string

// Supported command types.
const (
	TypeRegister CommandType = "register"
	TypeList     CommandType = "list"
	TypeUnknown  CommandType = "unknown"
)

// Command is the result of classifying a message. Items is only populated
// for register commands and may be empty when no item names survived
// extraction; callers are expected to degrade to a guidance reply in that
// case.
type Command struct {
	Type  CommandType
	Items []string
}

// Keyword sets. Matching is case-insensitive substring matching, and
// register keywords win over list keywords when both are present.
var (
	registerKeywords = []string{"登録", "追加", "add", "register"}
	listKeywords     = []string{"教えて", "一覧", "リスト", "list", "show", "表示"}
)

// separators, in application order. Order matters: each separator splits
// the fragments produced by the previous one.
var separators = []string{"、", ",", ", ", "・", "と", "and", " "}

// mentionPattern matches Slack mention markup like <@U12AB34CD>.
var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// Parser turns raw message text into commands. The zero value is not
// usable; construct with New.
type Parser struct {
	registerStrip []*regexp.Regexp
}

// New returns a Parser with the keyword-stripping patterns compiled.
func New() *Parser {
	strip := make([]*regexp.Regexp, len(registerKeywords))
	for i, kw := range registerKeywords {
		strip[i] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(kw))
	}
	return &Parser{registerStrip: strip}
}

// Parse classifies a raw message. It never fails: malformed or empty input
// yields an unknown command.
func (p *Parser) Parse(raw string) Command {
	text := StripMention(raw)

	switch {
	case containsAny(text, registerKeywords):
		return Command{Type: TypeRegister, Items: p.ExtractItems(text)}
	case containsAny(text, listKeywords):
		return Command{Type: TypeList, Items: []string{}}
	default:
		return Command{Type: TypeUnknown, Items: []string{}}
	}
}

// StripMention removes all mention markup from a message and trims the
// surrounding whitespace.
func StripMention(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

// ExtractItems pulls individual item names out of a registration message.
// Register keywords are removed first, then the remainder is split on each
// separator in turn, every separator operating on the fragments left by the
// one before it. Surviving fragments are trimmed and empties dropped;
// relative order is preserved and duplicates are kept.
func (p *Parser) ExtractItems(text string) []string {
	cleaned := text
	for _, re := range p.registerStrip {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return []string{}
	}

	fragments := []string{cleaned}
	for _, sep := range separators {
		next := make([]string, 0, len(fragments))
		for _, f := range fragments {
			next = append(next, strings.Split(f, sep)...)
		}
		fragments = next
	}

	items := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			items = append(items, f)
		}
	}
	return items
}

// NormalizeItems trims every item and removes exact duplicates, keeping
// first-seen order.
func NormalizeItems(items []string) []string {
	seen := make(map[string]bool, len(items))
	normalized := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if seen[item] {
			continue
		}
		seen[item] = true
		normalized = append(normalized, item)
	}
	return normalized
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
