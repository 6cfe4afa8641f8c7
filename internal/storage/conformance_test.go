package storage

import (
	"context"
	"errors"
	"testing"
)

// runStoreConformance checks behaviour every backend shares.
func runStoreConformance(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("round trip", func(t *testing.T) {
		ctx := context.Background()
		store := initStore(t, newStore)

		input := sampleCheckpoint("best_policy")
		if err := store.SaveCheckpoint(ctx, input); err != nil {
			t.Fatalf("save checkpoint: %v", err)
		}
		output, ok, err := store.GetCheckpoint(ctx, "best_policy")
		if err != nil {
			t.Fatalf("get checkpoint: %v", err)
		}
		if !ok {
			t.Fatal("expected persisted checkpoint")
		}
		if output.ID != input.ID || len(output.Entries) != len(input.Entries) {
			t.Fatalf("unexpected checkpoint: %+v", output)
		}
		if output.Entries[0].Value != 5 || output.Entries[0].Action != "forward" {
			t.Fatalf("unexpected first entry: %+v", output.Entries[0])
		}
	})

	t.Run("missing", func(t *testing.T) {
		store := initStore(t, newStore)
		_, ok, err := store.GetCheckpoint(context.Background(), "absent")
		if err != nil {
			t.Fatalf("get checkpoint: %v", err)
		}
		if ok {
			t.Fatal("expected missing checkpoint")
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		ctx := context.Background()
		store := initStore(t, newStore)

		first := sampleCheckpoint("manual")
		if err := store.SaveCheckpoint(ctx, first); err != nil {
			t.Fatalf("save first: %v", err)
		}
		second := sampleCheckpoint("manual")
		second.ID = "second"
		second.Entries = second.Entries[:1]
		if err := store.SaveCheckpoint(ctx, second); err != nil {
			t.Fatalf("save second: %v", err)
		}

		output, ok, err := store.GetCheckpoint(ctx, "manual")
		if err != nil || !ok {
			t.Fatalf("get: ok=%v err=%v", ok, err)
		}
		if output.ID != "second" || len(output.Entries) != 1 {
			t.Fatalf("expected overwritten checkpoint, got %+v", output)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		ctx := context.Background()
		store := initStore(t, newStore)

		for _, name := range []string{"b", "a", "best_policy"} {
			if err := store.SaveCheckpoint(ctx, sampleCheckpoint(name)); err != nil {
				t.Fatalf("save %s: %v", name, err)
			}
		}
		infos, err := store.ListCheckpoints(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(infos) != 3 || infos[0].Name != "a" || infos[2].Name != "best_policy" {
			t.Fatalf("unexpected listing: %+v", infos)
		}
		if infos[0].EntryCount != 2 || infos[0].ID != "cp-a" {
			t.Fatalf("unexpected info: %+v", infos[0])
		}

		if err := store.DeleteCheckpoint(ctx, "a"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := store.DeleteCheckpoint(ctx, "a"); err != nil {
			t.Fatalf("delete twice: %v", err)
		}
		if _, ok, _ := store.GetCheckpoint(ctx, "a"); ok {
			t.Fatal("expected deleted checkpoint to be gone")
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		store := initStore(t, newStore)
		for _, name := range []string{"", "../escape", ".hidden"} {
			err := store.SaveCheckpoint(context.Background(), sampleCheckpoint(name))
			if !errors.Is(err, ErrInvalidName) {
				t.Fatalf("name %q: expected ErrInvalidName, got %v", name, err)
			}
		}
	})
}

func initStore(t *testing.T, newStore func(t *testing.T) Store) Store {
	t.Helper()
	store := newStore(t)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = CloseIfSupported(store)
	})
	return store
}
