package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kinin-app/interviewer/internal/interview"
)

// Identity claim headers injected by the upstream gateway after token
// verification. The service trusts them as-is; auth policy lives upstream.
const (
	headerIdentitySub   = "X-Identity-Sub"
	headerIdentityEmail = "X-Identity-Email"
)

// messageBody is the request body for both gateway-mediated and direct
// invocations. user_id is only honored when no verified claim is present.
type messageBody struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// resolveRequest normalizes every supported payload shape into one
// canonical interview.Request. All shape-sniffing stays here.
func resolveRequest(r *http.Request) (interview.Request, error) {
	// A missing or malformed body is treated as empty: identity is
	// checked first, so an unauthenticated probe gets 401, not 400.
	var body messageBody
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, errEmptyBody) {
		body = messageBody{}
	}

	userID := strings.TrimSpace(r.Header.Get(headerIdentitySub))
	if userID == "" {
		userID = strings.TrimSpace(body.UserID)
	}
	if userID == "" {
		return interview.Request{}, interview.ErrUnauthorized
	}

	if strings.TrimSpace(body.Message) == "" {
		return interview.Request{}, interview.ErrMessageRequired
	}

	return interview.Request{
		UserID:    userID,
		SessionID: strings.TrimSpace(body.SessionID),
		Message:   body.Message,
		Email:     strings.TrimSpace(r.Header.Get(headerIdentityEmail)),
	}, nil
}
