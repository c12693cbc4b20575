package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/reservation_insight/backend/internal/errs"
)

const (
	DefaultURL     = "https://api.openai.com/v1/responses"
	defaultTimeout = 120 * time.Second
	maxErrorBody   = 1 << 20
)

// ResponsesClient posts to an OpenAI compatible /v1/responses endpoint. It
// makes exactly one attempt per Send.
type ResponsesClient struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

func (c ResponsesClient) Send(ctx context.Context, creq CompletionRequest) (Envelope, error) {
	url := strings.TrimSpace(c.URL)
	if url == "" {
		url = DefaultURL
	}

	b, err := json.Marshal(creq)
	if err != nil {
		return Envelope{}, errs.Wrap(errs.KindRequestFailed, "encoding completion request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return Envelope{}, errs.Wrap(errs.KindRequestFailed, "building completion request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.HTTPClient
	if client == nil {
		timeout := defaultTimeout
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
		client = &http.Client{Timeout: timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Envelope{}, errs.Wrap(errs.KindRequestFailed, "completion request timed out", err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Envelope{}, errs.Wrap(errs.KindRequestFailed, "completion request timed out", err)
		}
		return Envelope{}, errs.Wrap(errs.KindRequestFailed, "completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := string(body)
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("completion endpoint returned %s", resp.Status)
		}
		return Envelope{}, &errs.Error{
			Kind:       errs.KindRequestFailed,
			Message:    msg,
			Body:       string(body),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, errs.Wrap(errs.KindRequestFailed, "reading completion response", err)
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, errs.Wrap(errs.KindExtractionFailed, "completion response is not a response envelope", err)
	}
	return env, nil
}
