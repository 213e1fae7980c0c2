// Package interview contains the core of the conversational interview
// agent: context assembly from durable user state, the per-request
// exchange orchestration, and the failure taxonomy.
package interview

// Request is the canonical, transport-normalized exchange input. The
// HTTP resolver (or a direct caller) produces it; nothing past this
// point sniffs payload shapes.
type Request struct {
	UserID    string
	SessionID string
	Message   string
	// Email is an optional one-time profile seed from identity claims.
	Email string
}

// Response is the successful exchange result.
type Response struct {
	SessionID string `json:"session_id"`
	Assistant string `json:"assistant"`
	ElapsedMS int64  `json:"elapsed_ms"`
}
