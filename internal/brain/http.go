package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// rawFallbackLimit bounds the degraded raw-response dump returned when
// the backend answers in an unexpected but parseable shape.
const rawFallbackLimit = 5000

// HTTPGenerator invokes a model endpoint over HTTP using a text-generation
// wire shape: inputText in, results[].outputText out.
type HTTPGenerator struct {
	url         string
	modelID     string
	maxTokens   int
	temperature float64
	topP        float64
	client      *http.Client
}

type generationConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	StopSequences []string `json:"stopSequences"`
}

type invokeRequest struct {
	ModelID              string           `json:"model_id"`
	InputText            string           `json:"inputText"`
	TextGenerationConfig generationConfig `json:"textGenerationConfig"`
}

type invokeResult struct {
	OutputText string `json:"outputText"`
}

type invokeResponse struct {
	Results []invokeResult `json:"results"`
}

func NewHTTPGenerator(cfg Config) *HTTPGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPGenerator{
		url:         strings.TrimSpace(cfg.HTTPURL),
		modelID:     cfg.ModelID,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, userMessage, contextPackJSON string) (Reply, error) {
	payload, err := json.Marshal(invokeRequest{
		ModelID:   g.modelID,
		InputText: buildPrompt(userMessage, contextPackJSON),
		TextGenerationConfig: generationConfig{
			MaxTokenCount: g.maxTokens,
			Temperature:   g.temperature,
			TopP:          g.topP,
			// The model must stop before continuing the user's side of
			// the conversation.
			StopSequences: []string{"User:", "\nUser:"},
		},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("marshal invoke request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return Reply{}, fmt.Errorf("create invoke request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	res, err := g.client.Do(httpReq)
	if err != nil {
		return Reply{}, fmt.Errorf("model invoke failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return Reply{}, fmt.Errorf("model invoke status %d: %s", res.StatusCode, string(body))
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read invoke response: %w", err)
	}

	var parsed invokeResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && len(parsed.Results) > 0 {
		return Reply{Text: strings.TrimSpace(parsed.Results[0].OutputText), ModelID: g.modelID}, nil
	}

	// Unexpected but parseable shape: surface a bounded raw dump instead
	// of failing, so the exchange is still observable downstream.
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Reply{}, fmt.Errorf("unparseable invoke response: %s", truncate(string(raw), 512))
	}
	return Reply{Text: truncate(string(raw), rawFallbackLimit), ModelID: g.modelID}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
