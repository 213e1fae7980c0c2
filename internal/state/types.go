package state

import "context"

// DefaultInterviewMode is assigned to users with no persisted state.
const DefaultInterviewMode = "guided"

// UserState is the single mutable record per user. It is read at the start
// of an exchange and overwritten wholesale at the end; profile fields are
// merge-only and never deleted by this flow.
type UserState struct {
	UserID          string            `json:"user_id"`
	ProfileSnapshot map[string]string `json:"profile_snapshot"`
	ActiveThreads   []string          `json:"active_threads"`
	OpenLoops       []string          `json:"open_loops"`
	InterviewMode   string            `json:"interview_mode"`
	LastSessionID   string            `json:"last_session_id,omitempty"`
	UpdatedAt       string            `json:"updated_at"`
}

// Default synthesizes the in-memory record used when a user has no
// persisted state yet. It is never partially persisted: the record only
// reaches the store after a fully successful exchange.
func Default(userID, updatedAt string) UserState {
	return UserState{
		UserID:          userID,
		ProfileSnapshot: map[string]string{},
		ActiveThreads:   []string{},
		OpenLoops:       []string{},
		InterviewMode:   DefaultInterviewMode,
		UpdatedAt:       updatedAt,
	}
}

// Store persists one current-state record per user.
type Store interface {
	// Get returns the user's state and whether a record exists.
	Get(ctx context.Context, userID string) (UserState, bool, error)
	// Put overwrites the whole record (last-writer-wins).
	Put(ctx context.Context, st UserState) error
	Close() error
}
