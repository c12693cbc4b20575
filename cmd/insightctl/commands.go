package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reservation_insight/backend/internal/config"
	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/models"
	"github.com/reservation_insight/backend/internal/prompt"
	"github.com/reservation_insight/backend/internal/service"
)

// newPipeline is replaced in tests.
var newPipeline = func(cfg config.Config, logger zerolog.Logger) *service.Pipeline {
	return service.NewPipeline(cfg, nil, logger)
}

type analyzeOutput struct {
	File        string                    `json:"file"`
	Insight     models.ReservationInsight `json:"insight"`
	RowCount    int                       `json:"row_count"`
	Rows        []models.RawEventRow      `json:"rows,omitempty"`
	ParseErrors []string                  `json:"parse_errors,omitempty"`
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "insightctl",
		Short:         "Summarise reservation event exports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newPromptCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one CSV export and print the insight as JSON",
		Long: `Analyze one CSV export and print the insight as JSON.

Examples:
  insightctl analyze --file ./events.csv
  insightctl analyze --file ./events.csv --rows
  insightctl analyze --file ./events.csv --instruction "List only damage reports"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			instruction, _ := cmd.Flags().GetString("instruction")
			withRows, _ := cmd.Flags().GetBool("rows")

			if file == "" {
				return errs.New(errs.KindNoFileSelected, "Please choose a file.")
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return errs.Wrap(errs.KindFileReadFailed, "Failed to read file", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level, _ := zerolog.ParseLevel(cfg.LogLevel)
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level).With().Timestamp().Str("service", "insightctl").Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := newPipeline(cfg, logger).Analyze(ctx, raw, instruction, service.Hooks{})
			if err != nil {
				return err
			}

			out := analyzeOutput{
				File:        filepath.Base(file),
				Insight:     res.Insight,
				RowCount:    len(res.Table.Rows),
				ParseErrors: res.Table.Errors,
			}
			if withRows {
				out.Rows = res.Table.Rows
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().String("file", "", "path to the CSV export")
	cmd.Flags().String("instruction", "", "replace the default instruction")
	cmd.Flags().Bool("rows", false, "include parsed rows in the output")
	return cmd
}

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the instruction template sent ahead of the file text",
		RunE: func(cmd *cobra.Command, args []string) error {
			instruction, _ := cmd.Flags().GetString("instruction")
			composer := prompt.Composer{}.WithInstruction(instruction)
			_, err := cmd.OutOrStdout().Write([]byte(composer.Template() + "\n"))
			return err
		},
	}
	cmd.Flags().String("instruction", "", "replace the default instruction")
	return cmd
}
