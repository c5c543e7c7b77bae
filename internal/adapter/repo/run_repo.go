package repo

import (
	"context"
	"fmt"
	"time"

	"mockupstudio/internal/infra"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/sqlinline"
)

// RunSummary is one row of run history.
type RunSummary struct {
	ID        string    `json:"id"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	Outcome   string    `json:"outcome,omitempty"`
	ColorHex  string    `json:"color_hex,omitempty"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunRepositoryPG records settled pipeline stages in Postgres.
type RunRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewRunRepository creates a run history repository on top of the SQL runner.
func NewRunRepository(sql infra.SQLExecutor) *RunRepositoryPG {
	return &RunRepositoryPG{sql: sql}
}

// RecordStage upserts the run row and appends the stage row.
func (r *RunRepositoryPG) RecordStage(ctx context.Context, rec pipeline.StageRecord) error {
	settled := rec.SettledAt
	if settled.IsZero() {
		settled = time.Now().UTC()
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QUpsertRun,
		rec.RunID,
		string(rec.Mode),
		string(rec.Status),
		string(rec.Outcome),
		rec.ColorHex,
		rec.Succeeded,
		rec.Failed,
		settled,
	); err != nil {
		return fmt.Errorf("repo: upsert run %s: %w", rec.RunID, err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertRunStage,
		rec.RunID,
		string(rec.Stage),
		string(rec.Status),
		string(rec.Outcome),
		rec.Error,
		settled,
	); err != nil {
		return fmt.Errorf("repo: insert stage %s/%s: %w", rec.RunID, rec.Stage, err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepositoryPG) ListRecent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListRecentRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("repo: list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Mode, &s.Status, &s.Outcome, &s.ColorHex, &s.Succeeded, &s.Failed, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repo: scan run: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var _ pipeline.Recorder = (*RunRepositoryPG)(nil)
