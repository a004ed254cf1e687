package slack

// Inbound payload types. Only the fields the bot reads are modelled.

// Payload kinds on the events endpoint.
const (
	PayloadURLVerification = "url_verification"
	PayloadEventCallback   = "event_callback"
)

// EventAppMention is the only event type the bot subscribes to.
const EventAppMention = "app_mention"

// EventPayload is the envelope Slack posts to the events endpoint.
type EventPayload struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge,omitempty"`
	Event     *Event `json:"event,omitempty"`
}

// Event is the inner event of an event_callback envelope.
type Event struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	User    string `json:"user"`
	Channel string `json:"channel"`
}

// InteractionPayload is the form-encoded payload posted when a user clicks
// a block action, such as a per-item complete button.
type InteractionPayload struct {
	Type    string   `json:"type"`
	Actions []Action `json:"actions"`
	Channel Channel  `json:"channel"`
	User    User     `json:"user"`
}

// Action is one triggered block action.
type Action struct {
	ActionID string `json:"action_id"`
	Value    string `json:"value"`
}

// Channel identifies the conversation an interaction came from.
type Channel struct {
	ID string `json:"id"`
}

// User identifies who triggered an interaction.
type User struct {
	ID string `json:"id"`
}
