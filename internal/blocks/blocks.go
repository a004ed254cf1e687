// Package blocks renders bot replies as Slack Block Kit payloads and plain
// message text. Everything here is a pure function over domain values;
// no I/O happens in this package.
package blocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/nakupko/internal/model"
)

// ActionCompleteItem is the action_id carried by every per-item complete
// button; the interactions handler dispatches on it.
const ActionCompleteItem = "complete_item"

// Fixed reply texts.
const (
	ListTitle   = "🛒 未完了のアイテム一覧"
	NoItemsText = "📝 未完了のアイテムはありません。"
)

// itemDateFormat renders registration dates for Japanese display.
const itemDateFormat = "2006年1月2日 15:04"

// Block is a single Block Kit layout block. Only the fields the bot uses
// are modelled.
type Block struct {
	Type      string  `json:"type"`
	Text      *Text   `json:"text,omitempty"`
	Accessory *Button `json:"accessory,omitempty"`
	Elements  []Text  `json:"elements,omitempty"`
}

// Text is a Block Kit text object, either plain_text or mrkdwn.
type Text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Button is a Block Kit button accessory.
type Button struct {
	Type     string `json:"type"`
	Text     Text   `json:"text"`
	Value    string `json:"value"`
	ActionID string `json:"action_id"`
	Style    string `json:"style,omitempty"`
}

// ItemList renders the pending-item overview. An empty list yields a single
// informational section, never an empty block list. Each item gets a
// 1-based index, optional registrant and date lines, and a complete button
// whose value is the item's record ID.
func ItemList(items []model.Item) []Block {
	if len(items) == 0 {
		return []Block{section(NoItemsText)}
	}

	result := []Block{header(ListTitle), divider()}
	for i, item := range items {
		result = append(result, Block{
			Type: "section",
			Text: &Text{Type: "mrkdwn", Text: formatItem(item, i+1)},
			Accessory: &Button{
				Type:     "button",
				Text:     Text{Type: "plain_text", Text: "✅ 完了", Emoji: true},
				Value:    item.ID,
				ActionID: ActionCompleteItem,
				Style:    "primary",
			},
		})
	}
	result = append(result, divider(), contextNote(fmt.Sprintf("📊 合計 %d 件のアイテム", len(items))))
	return result
}

// RegistrationText renders the confirmation for successfully created items.
// Callers must not pass an empty list; empty registrations are expected to
// short-circuit into guidance before rendering.
func RegistrationText(names []string) string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, "• "+name)
	}
	return "🛒 登録しました:\n" + strings.Join(lines, "\n")
}

// RegistrationFailureText names the items that could not be created.
func RegistrationFailureText(names []string) string {
	return "⚠️ 登録できませんでした: " + strings.Join(names, "、")
}

// CompletionText renders the single-line completion confirmation.
func CompletionText(name string) string {
	return fmt.Sprintf("✅ 完了しました: %s", name)
}

// NoItemsFoundText is the guidance lead-in when a register command carried
// no extractable items.
const NoItemsFoundText = "⚠️ 登録するアイテムが見つかりませんでした。"

// Help renders the static usage message.
func Help() []Block {
	return []Block{
		header("🛒 買い物リスト管理Bot ヘルプ"),
		divider(),
		section("*📝 使用方法*\n\n" +
			"• `@ShoppingBot 登録 アイテム1、アイテム2` - アイテムを登録\n" +
			"• `@ShoppingBot 教えて` - 未完了アイテムを表示\n\n" +
			"*🔧 対応セパレータ*\n" +
			"`、`, `,`, `, `, `・`, `と`, `and`, `空白`\n\n" +
			"*💡 例*\n" +
			"• `@ShoppingBot 登録 牛乳、卵、パン`\n" +
			"• `@ShoppingBot 登録 牛乳 卵 パン`\n" +
			"• `@ShoppingBot 教えて`"),
	}
}

// ErrorBlocks wraps an error message in the standard error frame. The
// message is expected to be a short human-readable text, never a raw error.
func ErrorBlocks(message string) []Block {
	return []Block{section("❌ *エラーが発生しました*\n" + message)}
}

// formatItem renders one item line: bold index and name, then registrant
// and date lines when known.
func formatItem(item model.Item, index int) string {
	text := fmt.Sprintf("*%d. %s*", index, item.Name)
	if item.Registrant != "" && item.Registrant != model.UnknownRegistrant {
		text += "\n👤 登録者: " + item.Registrant
	}
	if !item.RegisteredAt.IsZero() {
		text += "\n📅 登録日: " + formatDate(item.RegisteredAt)
	}
	return text
}

func formatDate(t time.Time) string {
	return t.Format(itemDateFormat)
}

func section(text string) Block {
	return Block{Type: "section", Text: &Text{Type: "mrkdwn", Text: text}}
}

func header(text string) Block {
	return Block{Type: "header", Text: &Text{Type: "plain_text", Text: text, Emoji: true}}
}

func divider() Block {
	return Block{Type: "divider"}
}

func contextNote(text string) Block {
	return Block{Type: "context", Elements: []Text{{Type: "mrkdwn", Text: text}}}
}
