// Package brain abstracts the reply-generating model backend behind a
// prompt-in, text-out capability so vendors can be swapped without
// touching the orchestrator.
package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// systemPrompt is the fixed interviewer persona, placed ahead of the
// context payload in every backend prompt.
const systemPrompt = "You are The Interviewer, a warm, persistent biographical interviewer. " +
	"You ask one thoughtful question at a time, keep it concise, and build on prior context. " +
	"Avoid repeating questions already answered. Use the provided context pack."

// Reply is the generated assistant text plus the identifier of the model
// that produced it.
type Reply struct {
	Text    string
	ModelID string
}

// Generator produces assistant text from the user message and the
// serialized context pack.
type Generator interface {
	Generate(ctx context.Context, userMessage, contextPackJSON string) (Reply, error)
}

// Config controls generator construction.
type Config struct {
	Mode        string
	HTTPURL     string
	ModelID     string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
}

func NewGenerator(cfg Config) (Generator, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewHTTPGenerator(cfg), nil
		}
		return NewMockGenerator(cfg.ModelID), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("model HTTP url is required for http mode")
		}
		return NewHTTPGenerator(cfg), nil
	case "mock":
		return NewMockGenerator(cfg.ModelID), nil
	default:
		return nil, fmt.Errorf("unsupported model adapter mode %q", cfg.Mode)
	}
}

func buildPrompt(userMessage, contextPackJSON string) string {
	return fmt.Sprintf("%s\n\nCONTEXT_PACK_JSON:\n%s\n\nUser: %s\nInterviewer:",
		systemPrompt, contextPackJSON, userMessage)
}
