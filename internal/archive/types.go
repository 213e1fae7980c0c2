// Package archive is the write-once, per-exchange durable log. It is
// independent of the queryable turn log and is write-only from the
// service's perspective; readers are offline audit/analysis jobs.
package archive

import "context"

// Record captures one full user/assistant exchange.
type Record struct {
	Timestamp        string `json:"timestamp"`
	UserID           string `json:"user_id"`
	SessionID        string `json:"session_id"`
	UserMessage      string `json:"user_message"`
	AssistantMessage string `json:"assistant_message"`
	ModelID          string `json:"model_id"`
}

// Writer appends exchange records under derived, collision-free keys.
type Writer interface {
	// Put stores the record and returns the derived object key. Keys are
	// never reused; an existing object is never overwritten.
	Put(ctx context.Context, rec Record) (string, error)
	Close() error
}
