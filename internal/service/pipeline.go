package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reservation_insight/backend/internal/ai"
	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/ingest"
	"github.com/reservation_insight/backend/internal/models"
	"github.com/reservation_insight/backend/internal/prompt"
	"github.com/reservation_insight/backend/internal/session"
)

const (
	RunStatusRunning    = "RUNNING"
	RunStatusSuccess    = "SUCCESS"
	RunStatusFailed     = "FAILED"
	RunStatusSuperseded = "SUPERSEDED"

	defaultCompletionTimeout = 120 * time.Second
)

// Source is one user-selected file.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// RunRecorder persists upload history. A nil recorder disables it.
type RunRecorder interface {
	CreateRun(ctx context.Context, run models.Run) (string, error)
	FinishRun(ctx context.Context, runID string, status string, errorKind string, rowCount int, summary []byte) error
}

type Pipeline struct {
	Composer prompt.Composer
	AI       ai.Client
	Tokens   prompt.TokenCounter
	Runs     RunRecorder
	Logger   zerolog.Logger

	// Timeout bounds the completion call. Zero means 120s.
	Timeout time.Duration
	// InputTokenBudget only triggers a warning; the prompt is sent as is.
	InputTokenBudget int
}

// Hooks let a caller observe progress before Analyze returns.
type Hooks struct {
	OnRows    func(table ingest.Table)
	OnSending func()
}

type Result struct {
	Table   ingest.Table
	Insight models.ReservationInsight
}

// Submit starts a new upload on sess. The file is read before Submit returns;
// parsing and the model call continue in the background. The returned channel
// is closed once the run has finished, whether its result was applied or
// discarded as stale.
func (p *Pipeline) Submit(sess *session.Session, src Source, instruction string) (<-chan struct{}, error) {
	ticket, ctx := sess.Begin(context.Background(), src.Name)
	logger := p.Logger.With().Str("session_id", sess.ID).Uint64("generation", ticket.Generation()).Str("file", src.Name).Logger()

	raw, err := readSource(src)
	if err != nil {
		ticket.Fail(err)
		logger.Warn().Err(err).Msg("file read failed")
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.run(ctx, ticket, src.Name, raw, instruction, logger)
	}()
	return done, nil
}

func (p *Pipeline) run(ctx context.Context, ticket *session.Ticket, fileName string, raw []byte, instruction string, logger zerolog.Logger) {
	runID := p.startRun(ticket, fileName, logger)
	start := time.Now()

	res, err := p.Analyze(ctx, raw, instruction, Hooks{
		OnRows: func(table ingest.Table) {
			if !ticket.PublishRows(table.Header, table.Rows) {
				logger.Debug().Msg("discarding rows of superseded upload")
			}
		},
		OnSending: func() { ticket.Sending() },
	})

	rowCount := len(res.Table.Rows)
	if err != nil {
		if !ticket.Fail(err) {
			logger.Info().Err(err).Msg("discarding failure of superseded upload")
			p.finishRun(runID, RunStatusSuperseded, "", rowCount, nil, logger)
			return
		}
		logger.Error().Err(err).Str("kind", string(errs.KindOf(err))).Dur("elapsed", time.Since(start)).Msg("upload failed")
		p.finishRun(runID, RunStatusFailed, string(errs.KindOf(err)), rowCount, nil, logger)
		return
	}

	if !ticket.Complete(res.Insight) {
		logger.Info().Msg("discarding insight of superseded upload")
		p.finishRun(runID, RunStatusSuperseded, "", rowCount, nil, logger)
		return
	}
	logger.Info().Int("rows", rowCount).Dur("elapsed", time.Since(start)).Msg("upload analysed")
	summary, _ := json.Marshal(res.Insight)
	p.finishRun(runID, RunStatusSuccess, "", rowCount, summary, logger)
}

// Analyze parses raw for display and asks the model about it concurrently.
// Parse problems never fail the analysis; only the completion path can.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte, instruction string, hooks Hooks) (Result, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultCompletionTimeout
	}

	var res Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.Table = ingest.Parse(bytes.NewReader(raw))
		if len(res.Table.Errors) > 0 {
			p.Logger.Warn().Int("errors", len(res.Table.Errors)).Str("first", res.Table.Errors[0]).Msg("csv parsed with errors")
		}
		if hooks.OnRows != nil {
			hooks.OnRows(res.Table)
		}
		return nil
	})

	g.Go(func() error {
		composer := p.Composer.WithInstruction(instruction)
		req := composer.Request(string(raw))
		p.logTokenEstimate(req.Input)

		if hooks.OnSending != nil {
			hooks.OnSending()
		}
		reqCtx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()
		env, err := p.AI.Send(reqCtx, req)
		if err != nil {
			return err
		}
		insight, err := ai.ExtractInsight(env)
		if err != nil {
			if errors.Is(err, errs.ErrExtractionFailed) {
				p.Logger.Debug().RawJSON("envelope", rawOrEmpty(env.Raw)).Msg("unexpected response envelope")
			}
			return err
		}
		res.Insight = insight
		return nil
	})

	if err := g.Wait(); err != nil {
		return Result{Table: res.Table}, err
	}
	return res, nil
}

func (p *Pipeline) logTokenEstimate(input string) {
	if p.Tokens == nil {
		return
	}
	n := p.Tokens.Count(input)
	ev := p.Logger.Debug()
	if p.InputTokenBudget > 0 && n > p.InputTokenBudget {
		ev = p.Logger.Warn()
	}
	ev.Int("estimated_tokens", n).Int("budget", p.InputTokenBudget).Msg("prompt composed")
}

func (p *Pipeline) startRun(ticket *session.Ticket, fileName string, logger zerolog.Logger) string {
	if p.Runs == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := p.Runs.CreateRun(ctx, models.Run{
		SessionID:  ticket.SessionID(),
		Generation: ticket.Generation(),
		FileName:   fileName,
		Status:     RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to create run")
		return ""
	}
	return id
}

func (p *Pipeline) finishRun(runID, status, errorKind string, rowCount int, summary []byte, logger zerolog.Logger) {
	if p.Runs == nil || runID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Runs.FinishRun(ctx, runID, status, errorKind, rowCount, summary); err != nil {
		logger.Error().Err(err).Msg("failed to finish run")
	}
}

func readSource(src Source) ([]byte, error) {
	if src.Open == nil {
		return nil, errs.New(errs.KindNoFileSelected, "Please choose a file.")
	}
	f, err := src.Open()
	if err != nil {
		return nil, errs.Wrap(errs.KindFileReadFailed, "Failed to read file", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, errs.Wrap(errs.KindFileReadFailed, "Failed to read file", err)
	}
	return raw, nil
}

func rawOrEmpty(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
