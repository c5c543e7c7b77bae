package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mockupstudio/internal/domain"
	"mockupstudio/internal/imagegen"
	"mockupstudio/internal/pipeline"
	"mockupstudio/internal/sqlinline"
)

type execCall struct {
	query string
	args  []any
}

type stubExecutor struct {
	execs   []execCall
	execErr error
	rows    pgx.Rows
	queried []any
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return nil
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.queried = args
	if s.rows == nil {
		return nil, errors.New("no rows configured")
	}
	return s.rows, nil
}

type stubRows struct {
	data   []RunSummary
	pos    int
	closed bool
}

func (r *stubRows) Close()                                       { r.closed = true }
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (r *stubRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	s := r.data[r.pos-1]
	if len(dest) != 9 {
		return fmt.Errorf("expected 9 destinations, got %d", len(dest))
	}
	*dest[0].(*string) = s.ID
	*dest[1].(*string) = s.Mode
	*dest[2].(*string) = s.Status
	*dest[3].(*string) = s.Outcome
	*dest[4].(*string) = s.ColorHex
	*dest[5].(*int) = s.Succeeded
	*dest[6].(*int) = s.Failed
	*dest[7].(*time.Time) = s.CreatedAt
	*dest[8].(*time.Time) = s.UpdatedAt
	return nil
}

func TestRecordStageWritesRunAndStage(t *testing.T) {
	exec := &stubExecutor{}
	repo := NewRunRepository(exec)
	settled := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := repo.RecordStage(context.Background(), pipeline.StageRecord{
		RunID:     "run-1",
		Mode:      imagegen.ModeClone,
		Stage:     pipeline.StageMockups,
		Status:    domain.StatusFailed,
		Outcome:   pipeline.OutcomePartial,
		Succeeded: 2,
		Failed:    1,
		ColorHex:  "#112233",
		SettledAt: settled,
	})
	if err != nil {
		t.Fatalf("RecordStage error: %v", err)
	}
	if len(exec.execs) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(exec.execs))
	}
	if exec.execs[0].query != sqlinline.QUpsertRun || exec.execs[1].query != sqlinline.QInsertRunStage {
		t.Fatal("unexpected statement order")
	}
	run := exec.execs[0].args
	if run[0] != "run-1" || run[1] != "clone" || run[3] != "partial_failure" || run[5] != 2 || run[6] != 1 {
		t.Fatalf("run args mismatch: %v", run)
	}
	stage := exec.execs[1].args
	if stage[1] != "mockups" || stage[5] != settled {
		t.Fatalf("stage args mismatch: %v", stage)
	}
}

func TestRecordStageWrapsErrors(t *testing.T) {
	exec := &stubExecutor{execErr: errors.New("boom")}
	err := NewRunRepository(exec).RecordStage(context.Background(), pipeline.StageRecord{RunID: "r"})
	if err == nil || !strings.Contains(err.Error(), "upsert run r") {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(exec.execs) != 1 {
		t.Fatalf("stage row must not be written after a failed upsert, got %d statements", len(exec.execs))
	}
}

func TestListRecent(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := &stubRows{data: []RunSummary{
		{ID: "b", Mode: "redesign", Status: "success", CreatedAt: created, UpdatedAt: created},
		{ID: "a", Mode: "clone", Status: "failed", Outcome: "failed", Failed: 3, CreatedAt: created, UpdatedAt: created},
	}}
	exec := &stubExecutor{rows: rows}

	got, err := NewRunRepository(exec).ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].Failed != 3 {
		t.Fatalf("unexpected runs: %#v", got)
	}
	if exec.queried[0] != 20 {
		t.Fatalf("expected default limit 20, got %v", exec.queried[0])
	}
	if !rows.closed {
		t.Fatal("rows must be closed")
	}
}
