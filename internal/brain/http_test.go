package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestGenerator(url string) *HTTPGenerator {
	return NewHTTPGenerator(Config{
		HTTPURL:     url,
		ModelID:     "model-x",
		MaxTokens:   350,
		Temperature: 0.7,
		TopP:        0.9,
	})
}

func TestHTTPGenerateSuccess(t *testing.T) {
	var gotReq invokeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"outputText":"  What is your earliest memory?  "}]}`))
	}))
	defer srv.Close()

	reply, err := newTestGenerator(srv.URL).Generate(context.Background(), "Tell me about your childhood", `{"recent_turns":[]}`)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply.Text != "What is your earliest memory?" {
		t.Fatalf("Text = %q, want trimmed output", reply.Text)
	}
	if reply.ModelID != "model-x" {
		t.Fatalf("ModelID = %q, want %q", reply.ModelID, "model-x")
	}

	if !strings.HasPrefix(gotReq.InputText, "You are The Interviewer") {
		t.Fatalf("prompt does not start with the persona instruction: %q", gotReq.InputText[:40])
	}
	if !strings.Contains(gotReq.InputText, "CONTEXT_PACK_JSON:\n{\"recent_turns\":[]}") {
		t.Fatalf("prompt missing context pack payload")
	}
	if !strings.Contains(gotReq.InputText, "User: Tell me about your childhood") {
		t.Fatalf("prompt missing user message")
	}
	if gotReq.TextGenerationConfig.MaxTokenCount != 350 {
		t.Fatalf("MaxTokenCount = %d, want 350", gotReq.TextGenerationConfig.MaxTokenCount)
	}
	if len(gotReq.TextGenerationConfig.StopSequences) == 0 || gotReq.TextGenerationConfig.StopSequences[0] != "User:" {
		t.Fatalf("StopSequences = %v, want leading %q", gotReq.TextGenerationConfig.StopSequences, "User:")
	}
}

func TestHTTPGenerateUnexpectedShapeFallsBackToRawDump(t *testing.T) {
	long := strings.Repeat("x", 6000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unexpected":"` + long + `"}`))
	}))
	defer srv.Close()

	reply, err := newTestGenerator(srv.URL).Generate(context.Background(), "hi", "{}")
	if err != nil {
		t.Fatalf("Generate() error = %v, want degraded success", err)
	}
	if len(reply.Text) != rawFallbackLimit {
		t.Fatalf("fallback length = %d, want %d", len(reply.Text), rawFallbackLimit)
	}
	if !strings.HasPrefix(reply.Text, `{"unexpected":`) {
		t.Fatalf("fallback should be the raw response dump, got %q", reply.Text[:20])
	}
}

func TestHTTPGenerateBackendErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "throttled", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), "hi", "{}")
	if err == nil {
		t.Fatalf("Generate() expected error for backend 503")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error %q should carry the underlying status", err)
	}
}

func TestHTTPGenerateTransportErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), "hi", "{}")
	if err == nil {
		t.Fatalf("Generate() expected error for refused connection")
	}
}

func TestHTTPGenerateUnparseableResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Generate(context.Background(), "hi", "{}")
	if err == nil {
		t.Fatalf("Generate() expected error for non-JSON response")
	}
}

func TestNewGeneratorModes(t *testing.T) {
	if _, err := NewGenerator(Config{Mode: "http"}); err == nil {
		t.Fatalf("NewGenerator(http) expected error without URL")
	}

	g, err := NewGenerator(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("NewGenerator(auto) error = %v", err)
	}
	if _, ok := g.(*MockGenerator); !ok {
		t.Fatalf("auto without URL = %T, want *MockGenerator", g)
	}

	g, err = NewGenerator(Config{Mode: "auto", HTTPURL: "http://localhost:1/invoke"})
	if err != nil {
		t.Fatalf("NewGenerator(auto+url) error = %v", err)
	}
	if _, ok := g.(*HTTPGenerator); !ok {
		t.Fatalf("auto with URL = %T, want *HTTPGenerator", g)
	}

	if _, err := NewGenerator(Config{Mode: "carrier-pigeon"}); err == nil {
		t.Fatalf("NewGenerator expected error for unknown mode")
	}
}
