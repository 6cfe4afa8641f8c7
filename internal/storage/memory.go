package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"qlearn/internal/model"
)

// MemoryStore keeps encoded checkpoints in process memory. Payloads are
// stored encoded so a later read never aliases the caller's record.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	checkpoints map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	s.initialized = true
	s.checkpoints = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	if err := ValidateName(checkpoint.Name); err != nil {
		return err
	}
	payload, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInit
	}
	s.checkpoints[checkpoint.Name] = payload
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, name string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Checkpoint{}, false, ErrNotInit
	}
	payload, ok := s.checkpoints[name]
	if !ok {
		return model.Checkpoint{}, false, nil
	}
	checkpoint, err := DecodeCheckpoint(payload)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode checkpoint %s: %w", name, err)
	}
	return checkpoint, true, nil
}

func (s *MemoryStore) ListCheckpoints(_ context.Context) ([]model.CheckpointInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInit
	}
	infos := make([]model.CheckpointInfo, 0, len(s.checkpoints))
	for name, payload := range s.checkpoints {
		checkpoint, err := DecodeCheckpoint(payload)
		if err != nil {
			return nil, fmt.Errorf("decode checkpoint %s: %w", name, err)
		}
		infos = append(infos, infoOf(checkpoint))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *MemoryStore) DeleteCheckpoint(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInit
	}
	delete(s.checkpoints, name)
	return nil
}
