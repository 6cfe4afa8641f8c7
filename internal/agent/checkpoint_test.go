package agent

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"qlearn/internal/qtable"
	"qlearn/internal/storage"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.Store{
		"memory": func(t *testing.T) storage.Store { return storage.NewMemoryStore() },
		"file":   func(t *testing.T) storage.Store { return storage.NewFileStore(t.TempDir()) },
		"sqlite": func(t *testing.T) storage.Store {
			return storage.NewSQLiteStore(filepath.Join(t.TempDir(), "q.db"))
		},
	}
	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init: %v", err)
			}
			t.Cleanup(func() { _ = storage.CloseIfSupported(store) })

			src := newTestAgent(t, 0, 0.5, 0.9, store)
			transitions := []struct {
				s1 qtable.State
				a  qtable.Action
				r  float64
				s2 qtable.State
			}{
				{qtable.Strings("1", "2"), "left", 1.5, qtable.Strings("2", "2")},
				{qtable.Strings("2", "2"), "forward", -0.75, qtable.Strings("1", "2")},
				{qtable.NewState(qtable.Float(0.5), qtable.Bool(true)), "right", 3, qtable.Strings("x")},
				{qtable.Strings("1", "2"), "left", 2, qtable.Strings("2", "2")},
			}
			for _, tr := range transitions {
				if err := src.Learn(ctx, tr.s1, tr.a, tr.r, tr.s2); err != nil {
					t.Fatalf("learn: %v", err)
				}
			}
			if err := src.SaveQ(ctx, "manual"); err != nil {
				t.Fatalf("save: %v", err)
			}

			dst := newTestAgent(t, 0, 0.5, 0.9, store)
			if err := dst.LoadQ(ctx, "manual"); err != nil {
				t.Fatalf("load: %v", err)
			}
			want := src.Entries()
			if len(dst.Entries()) != len(want) {
				t.Fatalf("expected %d entries, got %d", len(want), len(dst.Entries()))
			}
			for _, e := range want {
				if got := dst.Value(e.State, e.Action); got != e.Value {
					t.Fatalf("%s/%s: expected %f, got %f", e.State, e.Action, e.Value, got)
				}
			}
		})
	}
}

func TestSaveQWithNonFiniteFloatStates(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	a := newTestAgent(t, 0, 0.5, 0.9, store)
	inf := qtable.NewState(qtable.Float(math.Inf(1)))
	nan := qtable.NewState(qtable.Float(math.NaN()), qtable.String("x"))

	if err := a.Learn(ctx, inf, "left", 1, qtable.Strings("ok")); err != nil {
		t.Fatalf("learn inf state: %v", err)
	}
	if err := a.Learn(ctx, nan, "right", 2, qtable.Strings("ok")); err != nil {
		t.Fatalf("learn nan state: %v", err)
	}
	if err := a.Learn(ctx, qtable.Strings("ok"), "left", 3, inf); err != nil {
		t.Fatalf("learn after non-finite states: %v", err)
	}
	if len(store.saves) != 3 {
		t.Fatalf("expected every record reward to save best_policy, got %v", store.saves)
	}
	if err := a.SaveQ(ctx, "manual"); err != nil {
		t.Fatalf("save: %v", err)
	}

	b := newTestAgent(t, 0, 0.5, 0.9, store)
	if err := b.LoadQ(ctx, "manual"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := b.Value(inf, "left"); got != 1 {
		t.Fatalf("expected 1 for +Inf state, got %f", got)
	}
	if got := b.Value(nan, "right"); got != 2 {
		t.Fatalf("expected 2 for NaN state, got %f", got)
	}
}

func TestLoadQReplacesTable(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	a := newTestAgent(t, 0, 0.5, 0.9, store)
	if err := a.Learn(ctx, qtable.Strings("kept"), "left", 1, qtable.Strings("kept")); err != nil {
		t.Fatalf("learn: %v", err)
	}
	if err := a.SaveQ(ctx, "snapshot"); err != nil {
		t.Fatalf("save: %v", err)
	}
	a.table.Set(qtable.Strings("later"), "right", 9)

	if err := a.LoadQ(ctx, "snapshot"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := a.table.Lookup(qtable.Strings("later"), "right"); ok {
		t.Fatal("expected load to drop entries added after the save")
	}
	if got := a.Value(qtable.Strings("kept"), "left"); got != 1 {
		t.Fatalf("expected 1, got %f", got)
	}
	if a.BestReward() != 1 {
		t.Fatalf("load must not touch the watermark, got %f", a.BestReward())
	}
}

func TestLoadBestPolicy(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	trainer := newTestAgent(t, 0, 0.5, 0.9, store)
	s := qtable.Strings("s")
	if err := trainer.Learn(ctx, s, "right", 4, s); err != nil {
		t.Fatalf("learn: %v", err)
	}
	// Lower reward: no new best policy, so the checkpoint keeps value 4.
	if err := trainer.Learn(ctx, s, "right", -10, s); err != nil {
		t.Fatalf("learn: %v", err)
	}

	fresh := newTestAgent(t, 0, 0.5, 0.9, store)
	if err := fresh.LoadBestPolicy(ctx); err != nil {
		t.Fatalf("load best policy: %v", err)
	}
	if got := fresh.Value(s, "right"); got != 4 {
		t.Fatalf("expected best policy value 4, got %f", got)
	}
	if got := fresh.ChooseAction(s); got != "right" {
		t.Fatalf("expected greedy action right, got %s", got)
	}
}

func TestLoadQMissingCheckpoint(t *testing.T) {
	a := newTestAgent(t, 0, 0.5, 0.9, nil)
	err := a.LoadQ(context.Background(), "absent")
	var se *storage.Error
	if !errors.As(err, &se) || se.Op != "load" || se.Name != "absent" {
		t.Fatalf("expected load *storage.Error, got %v", err)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadQCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := storage.NewFileStore(dir)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := writeFile(store.Path("bad"), `{"schema_version":1,"codec_version":1,"name":"bad","entry_count":1,"checksum":"00","entries":[]}`); err != nil {
		t.Fatalf("write: %v", err)
	}

	a := newTestAgent(t, 0, 0.5, 0.9, store)
	err := a.LoadQ(ctx, "bad")
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestSaveQRejectsInvalidName(t *testing.T) {
	a := newTestAgent(t, 0, 0.5, 0.9, nil)
	err := a.SaveQ(context.Background(), "../outside")
	var se *storage.Error
	if !errors.As(err, &se) || !errors.Is(err, storage.ErrInvalidName) {
		t.Fatalf("expected invalid name *storage.Error, got %v", err)
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
