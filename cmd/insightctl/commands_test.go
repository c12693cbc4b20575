package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reservation_insight/backend/internal/ai"
	"github.com/reservation_insight/backend/internal/config"
	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/prompt"
	"github.com/reservation_insight/backend/internal/service"
)

func useMockPipeline(t *testing.T) {
	t.Helper()
	orig := newPipeline
	newPipeline = func(cfg config.Config, logger zerolog.Logger) *service.Pipeline {
		return &service.Pipeline{
			Composer: prompt.Composer{Model: cfg.Model, MaxOutputTokens: cfg.MaxOutputTokens},
			AI:       ai.MockClient{ModelVersion: "mock-v1"},
			Logger:   zerolog.Nop(),
		}
	}
	t.Cleanup(func() { newPipeline = orig })
}

func execute(args ...string) (string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzePrintsInsight(t *testing.T) {
	useMockPipeline(t)
	path := filepath.Join(t.TempDir(), "events.csv")
	content := "Date,Description,Event Type\n10-07-2023 14:57,By Hamida Khan,Request\n10-07-2023 15:16,Offer made,Note Added\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := execute("analyze", "--file", path, "--rows")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var got analyzeOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.File != "events.csv" || got.RowCount != 2 || len(got.Rows) != 2 {
		t.Fatalf("unexpected output %+v", got)
	}
	if got.Insight.Summary == "" || len(got.Insight.TicketIDs) != 1 {
		t.Fatalf("expected mock insight, got %+v", got.Insight)
	}

	again, err := execute("analyze", "--file", path, "--rows")
	if err != nil || again != out {
		t.Fatalf("expected deterministic output, err=%v", err)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	useMockPipeline(t)
	if _, err := execute("analyze"); !errors.Is(err, errs.ErrNoFileSelected) {
		t.Fatalf("expected NO_FILE_SELECTED, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.csv")
	if _, err := execute("analyze", "--file", missing); !errors.Is(err, errs.ErrFileReadFailed) {
		t.Fatalf("expected FILE_READ_FAILED, got %v", err)
	}
}

func TestPromptCommand(t *testing.T) {
	out, err := execute("prompt")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if !strings.HasPrefix(out, prompt.DefaultInstruction) || !strings.Contains(out, "ticketIds") {
		t.Fatalf("unexpected template %q", out)
	}

	out, err = execute("prompt", "--instruction", "Count damages only")
	if err != nil || !strings.HasPrefix(out, "Count damages only\n\n") {
		t.Fatalf("expected override, got %q (%v)", out, err)
	}
}
