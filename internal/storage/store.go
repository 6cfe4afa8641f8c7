package storage

import (
	"context"

	"qlearn/internal/model"
)

// Store persists named Q-table checkpoints. Saving a name that already exists
// replaces it as a whole.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, checkpoint model.Checkpoint) error
	GetCheckpoint(ctx context.Context, name string) (model.Checkpoint, bool, error)
	ListCheckpoints(ctx context.Context) ([]model.CheckpointInfo, error)
	DeleteCheckpoint(ctx context.Context, name string) error
}
