// interviewctl sends one message through a running interviewer service,
// using either the gateway-identity headers or the direct-invoke body
// field, and retries transient failures with capped backoff.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kinin-app/interviewer/internal/reliability"
)

type options struct {
	baseURL   string
	userID    string
	sessionID string
	email     string
	message   string
	direct    bool
	retries   int
	timeout   time.Duration
	verbose   bool
}

type messageRequest struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type messageResponse struct {
	SessionID string `json:"session_id"`
	Assistant string `json:"assistant"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error"`
	Code      string `json:"code"`
}

func main() {
	opts := parseFlags()

	res, err := send(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("session: %s\n", res.SessionID)
	fmt.Printf("assistant: %s\n", res.Assistant)
	if opts.verbose {
		fmt.Printf("elapsed: %dms\n", res.ElapsedMS)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.baseURL, "url", "http://localhost:8080", "base URL of the interviewer service")
	flag.StringVar(&opts.userID, "user", "local-user", "user identifier")
	flag.StringVar(&opts.sessionID, "session", "", "session identifier (empty lets the service create one)")
	flag.StringVar(&opts.email, "email", "", "identity email claim (gateway mode only)")
	flag.StringVar(&opts.message, "message", "", "message to send (required)")
	flag.BoolVar(&opts.direct, "direct", false, "put user_id in the body instead of identity headers")
	flag.IntVar(&opts.retries, "retries", 3, "max attempts on retryable statuses")
	flag.DurationVar(&opts.timeout, "timeout", 90*time.Second, "per-attempt HTTP timeout")
	flag.BoolVar(&opts.verbose, "v", false, "verbose output")
	flag.Parse()

	if strings.TrimSpace(opts.message) == "" {
		fmt.Fprintln(os.Stderr, "-message is required")
		os.Exit(2)
	}
	if opts.retries < 1 {
		opts.retries = 1
	}
	return opts
}

func send(opts options) (messageResponse, error) {
	body := messageRequest{
		SessionID: opts.sessionID,
		Message:   opts.message,
	}
	if opts.direct {
		body.UserID = opts.userID
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return messageResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: opts.timeout}
	url := strings.TrimRight(opts.baseURL, "/") + "/v1/messages"

	var lastErr error
	for attempt := 0; attempt < opts.retries; attempt++ {
		if attempt > 0 {
			wait := reliability.ExponentialBackoff(attempt, 500*time.Millisecond, 8*time.Second)
			if opts.verbose {
				fmt.Fprintf(os.Stderr, "retrying in %v (attempt %d/%d)\n", wait, attempt+1, opts.retries)
			}
			time.Sleep(wait)
		}

		res, err := doRequest(client, url, payload, opts)
		if err != nil {
			lastErr = err
			continue
		}
		if res.status == http.StatusOK {
			return res.body, nil
		}
		lastErr = fmt.Errorf("status %d: %s", res.status, res.body.Error)
		if !reliability.IsRetryableHTTPStatus(res.status) {
			return messageResponse{}, lastErr
		}
	}
	return messageResponse{}, lastErr
}

type attemptResult struct {
	status int
	body   messageResponse
}

func doRequest(client *http.Client, url string, payload []byte, opts options) (attemptResult, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return attemptResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !opts.direct {
		req.Header.Set("X-Identity-Sub", opts.userID)
		if opts.email != "" {
			req.Header.Set("X-Identity-Email", opts.email)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return attemptResult{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return attemptResult{}, fmt.Errorf("read response: %w", err)
	}

	var decoded messageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return attemptResult{}, fmt.Errorf("status %d: unparseable response: %s", res.StatusCode, strings.TrimSpace(string(raw)))
	}
	return attemptResult{status: res.StatusCode, body: decoded}, nil
}
