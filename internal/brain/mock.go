package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator produces deterministic interviewer questions when no
// model backend is configured.
type MockGenerator struct {
	modelID string
}

func NewMockGenerator(modelID string) *MockGenerator {
	if strings.TrimSpace(modelID) == "" {
		modelID = "interviewer-mock"
	}
	return &MockGenerator{modelID: modelID}
}

func (g *MockGenerator) Generate(ctx context.Context, userMessage, contextPackJSON string) (Reply, error) {
	select {
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	default:
	}

	return Reply{Text: buildMockQuestion(userMessage, contextPackJSON), ModelID: g.modelID}, nil
}

func buildMockQuestion(userMessage, contextPackJSON string) string {
	msg := strings.TrimSpace(userMessage)
	if msg == "" {
		return "What would you like to talk about today?"
	}

	// First exchange gets an opener; later ones acknowledge continuity.
	if strings.Contains(contextPackJSON, `"recent_turns":[]`) {
		return fmt.Sprintf("Thank you for sharing that. When you say %q, what moment comes to mind first?", clip(msg, 80))
	}
	return fmt.Sprintf("You mentioned %q. How did that shape what came next for you?", clip(msg, 80))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
