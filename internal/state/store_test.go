package state_test

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"showdown/internal/rotation"
	"showdown/internal/services"
	"showdown/internal/testsupport"
)

func sampleState() rotation.State {
	return rotation.State{
		RunCounter:   7,
		SnapshotHash: "abc123",
		Entries: []rotation.Entry{
			{Slug: "heist-movies", Title: "Heist Movies", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 5, StageSince: 7, MatchCount: 9},
			{Slug: "slow-cinema", Title: "Slow Cinema", Stage: rotation.StageLibraryVisible, Rank: 2, EnteredAt: 4, StageSince: 6, MatchCount: 7},
			{Slug: "one-location", Title: "One Location", Stage: rotation.StageClosing, Rank: 3, EnteredAt: 2, StageSince: 7, MatchCount: 0},
		},
	}
}

func TestLoadWithoutPriorRunReturnsEmptyState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RunCounter != 0 || len(loaded.Entries) != 0 {
		t.Fatalf("expected empty state, got %+v", loaded)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	want := sampleState()
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestSaveReplacesPreviousWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("initial Save failed: %v", err)
	}

	next := rotation.State{
		RunCounter:   8,
		SnapshotHash: "def456",
		Entries: []rotation.Entry{
			{Slug: "slow-cinema", Title: "Slow Cinema", Stage: rotation.StageSpotlight, Rank: 1, EnteredAt: 4, StageSince: 8, MatchCount: 7},
		},
	}
	if err := store.Save(ctx, next); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, next) {
		t.Fatalf("stale window survived replacement:\ngot  %+v\nwant %+v", got, next)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first := testsupport.MustOpenStore(t, cfg)
	if err := first.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := testsupport.MustOpenStore(t, cfg)
	got, err := second.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	if got.RunCounter != 7 || len(got.Entries) != 3 {
		t.Fatalf("unexpected state after reopen: %+v", got)
	}
}

func TestLastRunMeta(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, ok, err := store.LastRun(ctx); err != nil || ok {
		t.Fatalf("expected no meta before first save, got ok=%v err=%v", ok, err)
	}

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, ok, err := store.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if !ok {
		t.Fatal("expected meta after save")
	}
	if meta.RunCounter != 7 || meta.SnapshotHash != "abc123" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if meta.CompletedAt.IsZero() {
		t.Fatal("completed_at was not recorded")
	}
}

func TestResetClearsState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reset failed: %v", err)
	}
	if loaded.RunCounter != 0 || len(loaded.Entries) != 0 {
		t.Fatalf("reset left state behind: %+v", loaded)
	}
	if _, ok, err := store.LastRun(ctx); err != nil || ok {
		t.Fatalf("reset left meta behind, ok=%v err=%v", ok, err)
	}
}

func TestLoadRejectsUnknownStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Corrupt a stage value behind the store's back.
	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, `UPDATE rotation_entries SET stage = 'limbo' WHERE slug = 'heist-movies'`); err != nil {
		t.Fatalf("corrupt stage: %v", err)
	}

	_, err = store.Load(ctx)
	if err == nil {
		t.Fatal("expected load to fail on unknown stage")
	}
	if !errors.Is(err, services.ErrStateLoad) {
		t.Fatalf("expected state load marker, got %v", err)
	}
}
