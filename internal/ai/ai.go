package ai

import "context"

// CompletionRequest is the body posted to the Responses endpoint.
type CompletionRequest struct {
	Model           string `json:"model"`
	Input           string `json:"input"`
	MaxOutputTokens int    `json:"max_output_tokens"`
}

// Client sends one completion request and returns the decoded envelope.
type Client interface {
	Send(ctx context.Context, req CompletionRequest) (Envelope, error)
}
