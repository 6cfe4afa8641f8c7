package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"qlearn/internal/model"
	"qlearn/internal/qtable"
	"qlearn/internal/storage"

	"github.com/google/uuid"
)

// SaveQ writes the whole table under name, replacing any earlier contents.
func (a *Agent) SaveQ(ctx context.Context, name string) error {
	return a.save(ctx, name, a.bestReward)
}

// LoadQ replaces the whole table with the checkpoint stored under name. The
// best-reward watermark is not restored.
func (a *Agent) LoadQ(ctx context.Context, name string) error {
	if err := storage.ValidateName(name); err != nil {
		return storage.Wrap("load", name, err)
	}
	checkpoint, ok, err := a.store.GetCheckpoint(ctx, name)
	if err != nil {
		return storage.Wrap("load", name, err)
	}
	if !ok {
		return storage.Wrap("load", name, storage.ErrNotFound)
	}

	entries := make([]qtable.Entry, 0, len(checkpoint.Entries))
	for i, rec := range checkpoint.Entries {
		state, err := qtable.StateFromRecord(rec.State)
		if err != nil {
			return storage.Wrap("load", name, fmt.Errorf("%w: entry %d: %v", storage.ErrCorrupt, i, err))
		}
		entries = append(entries, qtable.Entry{State: state, Action: qtable.Action(rec.Action), Value: rec.Value})
	}
	a.table.Replace(entries)

	a.logger.InfoContext(ctx, "loaded checkpoint",
		"checkpoint", name,
		"entries", len(entries),
	)
	return nil
}

// LoadBestPolicy loads the checkpoint written by Learn on reward records.
func (a *Agent) LoadBestPolicy(ctx context.Context) error {
	return a.LoadQ(ctx, BestPolicyCheckpoint)
}

func (a *Agent) save(ctx context.Context, name string, bestReward float64) error {
	if err := storage.ValidateName(name); err != nil {
		return storage.Wrap("save", name, err)
	}

	entries := a.table.Entries()
	records := make([]model.QEntry, len(entries))
	for i, e := range entries {
		records[i] = model.QEntry{State: e.State.Record(), Action: string(e.Action), Value: e.Value}
	}
	actions := make([]string, len(a.actions))
	for i, action := range a.actions {
		actions[i] = string(action)
	}

	checkpoint := model.Checkpoint{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           uuid.NewString(),
		Name:         name,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Actions:      actions,
		Entries:      records,
	}
	if !math.IsInf(bestReward, 0) && !math.IsNaN(bestReward) {
		checkpoint.BestReward = &bestReward
	}

	if err := a.store.SaveCheckpoint(ctx, checkpoint); err != nil {
		return storage.Wrap("save", name, err)
	}
	a.logger.InfoContext(ctx, "wrote checkpoint",
		"checkpoint", name,
		"entries", len(records),
	)
	return nil
}
