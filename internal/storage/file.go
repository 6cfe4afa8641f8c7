package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"qlearn/internal/model"
)

// FileSuffix is appended to a checkpoint name to form its file name.
const FileSuffix = ".qtable.json"

// FileStore keeps one file per checkpoint under dir. Writes go to a temp file
// in the same directory and are renamed over the target, so readers only ever
// see a complete checkpoint.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Init(_ context.Context) error {
	if s.dir == "" {
		return errors.New("checkpoint directory is required")
	}
	return os.MkdirAll(s.dir, 0o755)
}

// Path returns the file backing name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+FileSuffix)
}

func (s *FileStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	if err := ValidateName(checkpoint.Name); err != nil {
		return err
	}
	payload, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.Path(checkpoint.Name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (s *FileStore) GetCheckpoint(_ context.Context, name string) (model.Checkpoint, bool, error) {
	if err := ValidateName(name); err != nil {
		return model.Checkpoint{}, false, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return model.Checkpoint{}, false, nil
		}
		return model.Checkpoint{}, false, err
	}
	checkpoint, err := DecodeCheckpoint(data)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode checkpoint %s: %w", name, err)
	}
	return checkpoint, true, nil
}

func (s *FileStore) ListCheckpoints(ctx context.Context) ([]model.CheckpointInfo, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var infos []model.CheckpointInfo
	for _, d := range dirEntries {
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") || !strings.HasSuffix(d.Name(), FileSuffix) {
			continue
		}
		name := strings.TrimSuffix(d.Name(), FileSuffix)
		checkpoint, ok, err := s.GetCheckpoint(ctx, name)
		if errors.Is(err, ErrCorrupt) || errors.Is(err, ErrVersionMismatch) || errors.Is(err, ErrInvalidName) {
			// corrupt or foreign-version files are left out of the listing
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok {
			infos = append(infos, infoOf(checkpoint))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *FileStore) DeleteCheckpoint(_ context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
