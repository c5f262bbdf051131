package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"savo/internal/config"
	"savo/internal/services"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.OutputDir = base + "/out"
	cfg.Paths.StateDir = base + "/state"
	cfg.Paths.LogDir = base + "/logs"

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "piece.wav")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if run.ID == "" || run.Status != StatusRunning {
		t.Fatalf("unexpected run: %+v", run)
	}

	outcome := Outcome{
		OutputPath:      "/out/piece_visualization.mp4",
		DurationSeconds: 90.5,
		Frames:          2715,
		DegradedFrames:  1,
	}
	if err := store.FinishRun(ctx, run.ID, outcome); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ID != run.ID || got.Status != StatusCompleted {
		t.Errorf("run = %+v", got)
	}
	if got.Frames != 2715 || got.DegradedFrames != 1 || got.DurationSeconds != 90.5 {
		t.Errorf("outcome fields = %+v", got)
	}
	if got.FinishedAt.IsZero() {
		t.Error("finished_at not recorded")
	}
}

func TestFinishRunRecordsFailure(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "piece.wav")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if err := store.FinishRun(ctx, run.ID, Outcome{Err: errors.New("encoder exploded")}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if runs[0].Status != StatusFailed || runs[0].Error != "encoder exploded" {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestFinishRunUnknownID(t *testing.T) {
	store := testStore(t)
	err := store.FinishRun(context.Background(), "no-such-run", Outcome{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := store.StartRun(ctx, "first.wav")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := store.StartRun(ctx, "second.wav")
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Errorf("unexpected order: %s, %s", runs[0].Source, runs[1].Source)
	}

	limited, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Errorf("limit ignored: %+v", limited)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	store := testStore(t)
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	path := store.Path()
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	cfg := config.Default()
	base := path[:len(path)-len("/history.db")]
	cfg.Paths.StateDir = base
	cfg.Paths.OutputDir = base
	cfg.Paths.LogDir = base

	_, err := Open(&cfg)
	if !errors.Is(err, services.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
