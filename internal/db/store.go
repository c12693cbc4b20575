package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservation_insight/backend/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	generation  BIGINT NOT NULL,
	file_name   TEXT NOT NULL,
	status      TEXT NOT NULL,
	error_kind  TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	summary     JSONB,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS runs_started_at_idx ON runs (started_at DESC);
`

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) CreateRun(ctx context.Context, run models.Run) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO runs (id, session_id, generation, file_name, status, started_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, run.SessionID, int64(run.Generation), run.FileName, run.Status, startedAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, errorKind string, rowCount int, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE runs SET status = $1, error_kind = $2, row_count = $3, summary = $4, finished_at = NOW()
		WHERE id = $5
	`, status, errorKind, rowCount, summary, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, session_id, generation, file_name, status, error_kind, row_count, summary, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT 1
	`)
	var (
		run        models.Run
		generation int64
		summary    []byte
	)
	if err := row.Scan(&run.ID, &run.SessionID, &generation, &run.FileName, &run.Status, &run.ErrorKind, &run.RowCount, &summary, &run.StartedAt, &run.FinishedAt); err != nil {
		return models.Run{}, err
	}
	run.Generation = uint64(generation)
	if len(summary) > 0 {
		run.Summary = summary
	}
	return run, nil
}

// IsNotFound reports whether err means no matching row.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
