package service

import (
	"github.com/rs/zerolog"

	"github.com/reservation_insight/backend/internal/ai"
	"github.com/reservation_insight/backend/internal/config"
	"github.com/reservation_insight/backend/internal/prompt"
)

// NewPipeline builds the pipeline from cfg. Without an API key the mock
// client is used. runs may be nil.
func NewPipeline(cfg config.Config, runs RunRecorder, logger zerolog.Logger) *Pipeline {
	var client ai.Client
	if cfg.OpenAIAPIKey == "" {
		client = ai.MockClient{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock AI client")
	} else {
		client = ai.ResponsesClient{URL: cfg.OpenAIURL, APIKey: cfg.OpenAIAPIKey}
	}

	tokens, err := prompt.NewTokenCounter(cfg.Model)
	if err != nil {
		logger.Warn().Err(err).Msg("tokenizer unavailable, using rune estimate")
		tokens = prompt.RuneEstimate{}
	}

	return &Pipeline{
		Composer: prompt.Composer{
			Model:           cfg.Model,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
		AI:               client,
		Tokens:           tokens,
		Runs:             runs,
		Logger:           logger,
		Timeout:          cfg.CompletionTimeout,
		InputTokenBudget: cfg.InputTokenBudget,
	}
}
