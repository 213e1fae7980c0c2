package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kinin-app/interviewer/internal/archive"
	"github.com/kinin-app/interviewer/internal/brain"
	"github.com/kinin-app/interviewer/internal/config"
	"github.com/kinin-app/interviewer/internal/interview"
	"github.com/kinin-app/interviewer/internal/observability"
	"github.com/kinin-app/interviewer/internal/state"
	"github.com/kinin-app/interviewer/internal/turns"
)

var sessionPattern = regexp.MustCompile(`^sess_[0-9a-f]{10}$`)

type testEnv struct {
	states  *state.InMemoryStore
	turnLog *turns.InMemoryStore
	arch    *archive.InMemoryWriter
	server  *httptest.Server
}

func newTestEnv(t *testing.T, gen brain.Generator) *testEnv {
	t.Helper()
	if gen == nil {
		gen = brain.NewMockGenerator("model-test")
	}

	cfg := config.Config{
		RequestTimeout:   5 * time.Second,
		ModelAdapterMode: "mock",
		RecentTurnLimit:  12,
	}
	metrics := observability.NewMetrics(fmt.Sprintf("interviewer_test_api_%d", time.Now().UnixNano()))

	env := &testEnv{
		states:  state.NewInMemoryStore(),
		turnLog: turns.NewInMemoryStore(),
		arch:    archive.NewInMemoryWriter(),
	}
	orch := interview.NewOrchestrator(env.states, env.turnLog, env.arch, gen, metrics, cfg.RecentTurnLimit)
	env.server = httptest.NewServer(New(cfg, orch, metrics).Router())
	t.Cleanup(env.server.Close)
	return env
}

func postMessage(t *testing.T, env *testEnv, headers map[string]string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/messages", strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer res.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return res, decoded
}

func TestMessageWithoutIdentityIs401AndWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	res, body := postMessage(t, env, nil, `{"message":"hello"}`)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", res.StatusCode)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Fatalf("error message missing from response: %v", body)
	}
	if env.turnLog.Count("u1") != 0 || env.arch.Len() != 0 {
		t.Fatalf("stores were written on an unauthorized request")
	}
}

func TestMessageWithoutContentIs400AndWritesNothing(t *testing.T) {
	env := newTestEnv(t, nil)

	res, _ := postMessage(t, env, map[string]string{"X-Identity-Sub": "u1"}, `{}`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
	if env.turnLog.Count("u1") != 0 || env.arch.Len() != 0 {
		t.Fatalf("stores were written on a bad request")
	}
}

func TestMessageHappyPathWithGatewayIdentity(t *testing.T) {
	env := newTestEnv(t, nil)

	res, body := postMessage(t, env,
		map[string]string{"X-Identity-Sub": "u1", "X-Identity-Email": "u1@example.com"},
		`{"message":"Tell me about your childhood"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %v)", res.StatusCode, body)
	}

	sessionID, _ := body["session_id"].(string)
	if !sessionPattern.MatchString(sessionID) {
		t.Fatalf("session_id = %q, want sess_<10 hex>", sessionID)
	}
	if assistant, _ := body["assistant"].(string); assistant == "" {
		t.Fatalf("assistant reply missing: %v", body)
	}
	if _, ok := body["elapsed_ms"]; !ok {
		t.Fatalf("elapsed_ms missing: %v", body)
	}

	if env.turnLog.Count("u1") != 2 {
		t.Fatalf("turn count = %d, want 2", env.turnLog.Count("u1"))
	}
	st, found, err := env.states.Get(context.Background(), "u1")
	if err != nil || !found {
		t.Fatalf("state Get() = (found=%v, err=%v), want persisted record", found, err)
	}
	if st.ProfileSnapshot["email"] != "u1@example.com" {
		t.Fatalf("profile email = %q, want claim value seeded", st.ProfileSnapshot["email"])
	}
	if env.arch.Len() != 1 {
		t.Fatalf("archive objects = %d, want 1", env.arch.Len())
	}
}

func TestMessageDirectInvokeUsesBodyUserID(t *testing.T) {
	env := newTestEnv(t, nil)

	res, _ := postMessage(t, env, nil, `{"user_id":"u9","session_id":"sess_fixed00001","message":"hi"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if env.turnLog.Count("u9") != 2 {
		t.Fatalf("turn count for body user = %d, want 2", env.turnLog.Count("u9"))
	}
}

func TestMessageGatewayIdentityWinsOverBody(t *testing.T) {
	env := newTestEnv(t, nil)

	res, _ := postMessage(t, env, map[string]string{"X-Identity-Sub": "verified"}, `{"user_id":"spoofed","message":"hi"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if env.turnLog.Count("verified") != 2 {
		t.Fatalf("turns for verified user = %d, want 2", env.turnLog.Count("verified"))
	}
	if env.turnLog.Count("spoofed") != 0 {
		t.Fatalf("turns for spoofed user = %d, want 0", env.turnLog.Count("spoofed"))
	}
}

type boomGenerator struct{}

func (boomGenerator) Generate(context.Context, string, string) (brain.Reply, error) {
	return brain.Reply{}, errors.New("dial tcp: connection refused")
}

func TestMessageGenerationFailureIs500WithoutDetail(t *testing.T) {
	env := newTestEnv(t, boomGenerator{})

	res, body := postMessage(t, env, map[string]string{"X-Identity-Sub": "u1"}, `{"message":"hi"}`)
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", res.StatusCode)
	}
	if code, _ := body["code"].(string); code != "generation_failure" {
		t.Fatalf("code = %q, want generation_failure", code)
	}
	if msg, _ := body["error"].(string); strings.Contains(msg, "dial tcp") {
		t.Fatalf("error %q leaks backend detail", msg)
	}
	if env.turnLog.Count("u1") != 0 || env.arch.Len() != 0 {
		t.Fatalf("stores were written despite generation failure")
	}
}

func TestHealthAndPerfEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/healthz", "/readyz", "/v1/perf/stages", "/metrics"} {
		res, err := http.Get(env.server.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("GET %s status = %d, want 200", path, res.StatusCode)
		}
	}
}
