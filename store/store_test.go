package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/arraycreate/vm"
	"github.com/chazu/arraycreate/vm/snapshot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "profiles", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLatestEmpty(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Latest(context.Background()); !errors.Is(err, ErrNoSnapshots) {
		t.Errorf("expected ErrNoSnapshots, got %v", err)
	}
}

func TestSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rt := vm.NewRuntime(vm.Options{})
	rt.ArrayCreateAt(1, vm.FromSmallInt(3))

	first := snapshot.Take(rt, time.Unix(100, 0))
	if _, err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rt.ArrayCreateAt(1, vm.FromSmallInt(1<<31))
	second := snapshot.Take(rt, time.Unix(200, 0))
	if _, err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("Latest mismatch (-want +got):\n%s", diff)
	}

	n, err := s.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v; want 2", n, err)
	}
}

func TestHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rt := vm.NewRuntime(vm.Options{})
	for i := 0; i < 3; i++ {
		rt.ArrayCreateAt(7, vm.FromSmallInt(10))
		if _, err := s.Save(ctx, snapshot.Take(rt, time.Unix(int64(i+1), 0))); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	hist, err := s.History(ctx, 7, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}
	if hist[0].TakenAt != time.Unix(3, 0).UnixNano() || hist[0].Invocations != 3 || hist[0].Hits != 2 {
		t.Errorf("unexpected newest entry %+v", hist[0])
	}
	if hist[1].Invocations != 2 || hist[1].Level != "monomorphic" || hist[1].Last != "dense" {
		t.Errorf("unexpected second entry %+v", hist[1])
	}

	none, err := s.History(ctx, 99, 10)
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty history for unknown site, got %v, %v", none, err)
	}
}
