// Package turns is the append-only conversational turn log. Turns are
// never updated or deleted through this service; each exchange appends
// exactly two records.
package turns

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one immutable message in a conversation.
type Turn struct {
	UserID string `json:"user_id"`
	// SortKey is timestamp#session_id#turn_id. Lexicographic order on it
	// is chronological within a user; the random suffix makes it unique.
	SortKey   string `json:"ts#session_id#turn_id"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	ModelID   string `json:"model_id,omitempty"`
}

// SortKey builds the composite ordering key for a turn.
func SortKey(timestamp, sessionID, turnID string) string {
	return timestamp + "#" + sessionID + "#" + turnID
}

// Store is the ordered, append-only turn log keyed by user.
type Store interface {
	// Append writes a single turn. Keys are never overwritten; a
	// collision on SortKey is an error.
	Append(ctx context.Context, t Turn) error
	// QueryRecent returns up to limit turns newest-first by sort key.
	// A user with no history yields an empty slice, not an error.
	QueryRecent(ctx context.Context, userID string, limit int) ([]Turn, error)
	Close() error
}
