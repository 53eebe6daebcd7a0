package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "build", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBeginFinishRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: "run-1", Board: "sipeed_tang_nano_20k", RootFS: "mmcblk0p2"}
	if err := store.Begin(ctx, run); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.Finish(ctx, "run-1", "build/sipeed_tang_nano_20k/gateware/top.fs"); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusSucceeded {
		t.Fatalf("status = %q", got.Status)
	}
	if got.Bitstream == "" || got.FinishedAt.IsZero() {
		t.Fatalf("finish fields not recorded: %+v", got)
	}
}

func TestFailRecordsStage(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Begin(ctx, Run{ID: "run-2", Board: "digilent_arty", RootFS: "ram0"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.Fail(ctx, "run-2", "dtc", "dtc exited with status 1"); err != nil {
		t.Fatalf("fail: %v", err)
	}

	got, err := store.Get(ctx, "run-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusFailed || got.Stage != "dtc" {
		t.Fatalf("unexpected run: %+v", got)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	err := store.Finish(context.Background(), "missing", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := Run{
			ID:        id,
			Board:     "qmtech_wukong",
			RootFS:    "mmcblk0p2",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Begin(ctx, run); err != nil {
			t.Fatalf("begin %s: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Fatalf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store
	ctx := context.Background()
	if err := store.Begin(ctx, Run{ID: "x"}); err != nil {
		t.Fatalf("begin on nil store: %v", err)
	}
	if err := store.Finish(ctx, "x", ""); err != nil {
		t.Fatalf("finish on nil store: %v", err)
	}
	if runs, err := store.List(ctx, 5); err != nil || runs != nil {
		t.Fatalf("list on nil store: %v %v", runs, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close on nil store: %v", err)
	}
}
