package storage

import "fmt"

const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

func DefaultStoreKind() string {
	return KindFile
}

// NewStore builds a backend by kind. path is the checkpoint directory for
// "file" and the database path for "sqlite"; "memory" ignores it.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindFile:
		return NewFileStore(path), nil
	case KindSQLite:
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
