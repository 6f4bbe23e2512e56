package domain

// Message is the canonical chat message. Legacy documents stored with the
// from/to/message field names are normalized to this shape at the repository
// boundary; the rest of the system never sees the old names.
type Message struct {
	ID          string `json:"id,omitempty"`
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	Timestamp   string `json:"timestamp"`
	Read        bool   `json:"read"`
	ReadAt      string `json:"read_at,omitempty"`
}

// DefaultMessageType is applied when a message carries no explicit type.
const DefaultMessageType = "text"

// Counterpart returns the other participant of the message relative to user.
func (m Message) Counterpart(user string) string {
	if m.Sender == user {
		return m.Recipient
	}
	return m.Sender
}

// ProfileFragment is a partial profile record for one counterpart, as stored
// in the primary contacts document or returned by the fallback store.
type ProfileFragment struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Age       string `json:"age"`
	Photo     string `json:"photo"`
}

// ConversationSummary is the derived per-counterpart record returned by the
// conversation list. Profile fields stay "" until an enrichment pass fills
// them; each field is filled at most once by the fallback pass.
type ConversationSummary struct {
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	Age           string `json:"age"`
	Photo         string `json:"photo"`
	LastMessage   string `json:"last_message"`
	LastMessageAt string `json:"last_message_at"`
}

// NeedsEnrichment reports whether any profile field is still unset.
func (s ConversationSummary) NeedsEnrichment() bool {
	return s.FirstName == "" || s.Age == "" || s.Photo == ""
}

// UserStatus is the presence record for one user.
type UserStatus struct {
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
}
