package interview

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// utcISO formats a timestamp as ISO-8601 UTC with microsecond precision,
// the canonical timestamp form across turn keys and archive records.
func utcISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// NewSessionID synthesizes a session identifier. The sess_ prefix keeps
// generated session ids distinguishable from turn suffixes in logs.
func NewSessionID() string {
	return "sess_" + randomHex(10)
}

// turnSuffixPair returns two distinct random 8-hex turn ids with the
// first ordered strictly before the second. Both turns of an exchange
// share one timestamp, so assigning the smaller suffix to the user turn
// keeps user-before-assistant ordering under the composite sort key.
func turnSuffixPair() (string, string) {
	for {
		a, b := randomHex(8), randomHex(8)
		if a < b {
			return a, b
		}
		if b < a {
			return b, a
		}
	}
}

func randomHex(n int) string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:n]
}
