package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"scenerender/internal/domain"
	"scenerender/internal/sqlinline"
)

func TestCreateFillsDefaults(t *testing.T) {
	exec := &stubExecutor{}
	repo := NewGenerationRepository(exec)
	rec := &domain.GenerationRecord{
		StyleKey:   "japandi",
		Provider:   "openai",
		Model:      "dall-e-3",
		Status:     domain.RecordStatusSucceeded,
		ImageURL:   "https://x/img.png",
		DurationMS: 1200,
	}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be filled, got %+v", rec)
	}
	if exec.execQuery != sqlinline.QInsertGeneration {
		t.Fatal("unexpected query")
	}
	if len(exec.execArgs) != 10 {
		t.Fatalf("expected 10 args, got %d", len(exec.execArgs))
	}
	if v, ok := exec.execArgs[5].(string); !ok || v != "succeeded" {
		t.Fatalf("status arg = %T %v", exec.execArgs[5], exec.execArgs[5])
	}
}

func TestCreatePropagatesError(t *testing.T) {
	boom := errors.New("insert failed")
	repo := NewGenerationRepository(&stubExecutor{execErr: boom})
	if err := repo.Create(context.Background(), &domain.GenerationRecord{}); !errors.Is(err, boom) {
		t.Fatalf("expected insert error, got %v", err)
	}
	if err := repo.Create(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil record")
	}
}

func TestListRecent(t *testing.T) {
	created := time.Date(2026, 10, 4, 9, 5, 3, 0, time.UTC)
	rows := &sliceRows{rows: [][]any{
		{"id-1", "rid-1", "japandi", "replicate", "abc123", "timed_out", "", "still processing", int64(300000), created},
		{"id-2", "rid-2", "studio_wit", "openai", "dall-e-3", "succeeded", "https://x/img.png", "", int64(900), created.Add(-time.Minute)},
	}}
	exec := &stubExecutor{rows: rows}
	records, err := NewGenerationRepository(exec).ListRecent(context.Background(), 500)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Status != domain.RecordStatusTimedOut || records[0].ErrorMessage != "still processing" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].ImageURL != "https://x/img.png" || !records[1].CreatedAt.Equal(created.Add(-time.Minute)) {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
	if v := exec.queryArgs[0].(int); v != maxListLimit {
		t.Fatalf("limit arg = %d, want %d", v, maxListLimit)
	}
	if !rows.closed {
		t.Fatal("rows must be closed")
	}
}

func TestListRecentRowsError(t *testing.T) {
	boom := errors.New("conn reset")
	exec := &stubExecutor{rows: &sliceRows{err: boom}}
	if _, err := NewGenerationRepository(exec).ListRecent(context.Background(), 5); !errors.Is(err, boom) {
		t.Fatalf("expected rows error, got %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{-1: 20, 0: 20, 1: 1, 50: 50, 100: 100, 101: 100}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
