package interview

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kinin-app/interviewer/internal/state"
	"github.com/kinin-app/interviewer/internal/turns"
)

// maxRecentTurns bounds the rendered history handed to the model.
const maxRecentTurns = 20

// ContextPack is the bounded summary handed to the reply generator. It
// lives for one exchange and is never persisted.
type ContextPack struct {
	ProfileSnapshot map[string]string `json:"profile_snapshot"`
	ActiveThreads   []string          `json:"active_threads"`
	OpenLoops       []string          `json:"open_loops"`
	RecentTurns     []string          `json:"recent_turns"`
}

// BuildContextPack assembles the pack from user state and recently
// fetched turns. The input list arrives newest-first (that is how the
// turn store serves it) and is deliberately not reordered; the final
// last-N window is applied to the rendered list as-is.
func BuildContextPack(st state.UserState, recent []turns.Turn) ContextPack {
	rendered := make([]string, 0, len(recent))
	for _, t := range recent {
		rendered = append(rendered, fmt.Sprintf("%s: %s", strings.ToUpper(t.Role), t.Content))
	}
	if len(rendered) > maxRecentTurns {
		rendered = rendered[len(rendered)-maxRecentTurns:]
	}

	pack := ContextPack{
		ProfileSnapshot: st.ProfileSnapshot,
		ActiveThreads:   st.ActiveThreads,
		OpenLoops:       st.OpenLoops,
		RecentTurns:     rendered,
	}
	if pack.ProfileSnapshot == nil {
		pack.ProfileSnapshot = map[string]string{}
	}
	if pack.ActiveThreads == nil {
		pack.ActiveThreads = []string{}
	}
	if pack.OpenLoops == nil {
		pack.OpenLoops = []string{}
	}
	return pack
}

// JSON serializes the pack for use as a prompt fragment.
func (p ContextPack) JSON() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal context pack: %w", err)
	}
	return string(b), nil
}
