package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reservation_insight/backend/internal/errs"
)

func TestSendPostsRequest(t *testing.T) {
	var got CompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		for _, key := range []string{"model", "input", "max_output_tokens"} {
			if _, ok := raw[key]; !ok {
				t.Errorf("body missing %q: %s", key, body)
			}
		}
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"resp_1","status":"completed","output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"complaints\":0}"}]}]}`)
	}))
	defer srv.Close()

	c := ResponsesClient{URL: srv.URL, APIKey: "sk-test"}
	env, err := c.Send(context.Background(), CompletionRequest{Model: "gpt-4.1-mini", Input: "prompt:\n\ncsv", MaxOutputTokens: 1500})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Model != "gpt-4.1-mini" || got.Input != "prompt:\n\ncsv" || got.MaxOutputTokens != 1500 {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if env.ID != "resp_1" || len(env.Output) != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if _, ok := env.Output[0].(*Message); !ok {
		t.Fatalf("expected *Message, got %T", env.Output[0])
	}
}

func TestSendNon2xxIsRequestFailed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "invalid api key")
	}))
	defer srv.Close()

	c := ResponsesClient{URL: srv.URL, APIKey: "bad"}
	_, err := c.Send(context.Background(), CompletionRequest{Model: "m", Input: "x", MaxOutputTokens: 10})
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errs.Error, got %v", err)
	}
	if e.Kind != errs.KindRequestFailed {
		t.Fatalf("expected RequestFailed, got %s", e.Kind)
	}
	if e.Body != "invalid api key" || e.Error() != "invalid api key" {
		t.Fatalf("expected body text to be carried verbatim, got body=%q msg=%q", e.Body, e.Error())
	}
	if e.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", e.StatusCode)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single attempt, got %d", n)
	}
}

func TestSendNonEnvelopeIsExtractionFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>gateway</html>`)
	}))
	defer srv.Close()

	_, err := ResponsesClient{URL: srv.URL}.Send(context.Background(), CompletionRequest{})
	if !errors.Is(err, errs.ErrExtractionFailed) {
		t.Fatalf("expected ExtractionFailed, got %v", err)
	}
}

func TestSendHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := ResponsesClient{URL: srv.URL}.Send(ctx, CompletionRequest{})
	if !errors.Is(err, errs.ErrRequestFailed) {
		t.Fatalf("expected RequestFailed on timeout, got %v", err)
	}
}

func TestMockClientDeterministic(t *testing.T) {
	m := MockClient{ModelVersion: "mock-v1"}
	req := CompletionRequest{Input: "prompt:\n\nDate,Description\n"}
	a, err := m.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	b, _ := m.Send(context.Background(), req)
	ia, err := ExtractInsight(a)
	if err != nil {
		t.Fatalf("mock envelope must extract: %v", err)
	}
	ib, _ := ExtractInsight(b)
	if ia.Summary != ib.Summary || ia.Complaints != ib.Complaints || ia.Sentiment != ib.Sentiment {
		t.Fatalf("expected deterministic mock output")
	}
}
