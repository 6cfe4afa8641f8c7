package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound    = errors.New("checkpoint not found")
	ErrCorrupt     = errors.New("checkpoint corrupt")
	ErrInvalidName = errors.New("invalid checkpoint name")
	ErrNotInit     = errors.New("store is not initialized")
)

// Error reports a failed checkpoint operation. Err carries the cause and can
// be matched with errors.Is against the sentinels above.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s checkpoint %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err as an *Error for op on name. A nil err stays nil and an
// existing *Error is returned unchanged.
func Wrap(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Name: name, Err: err}
}

// ValidateName rejects names that cannot map to a single checkpoint file.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	}
	return nil
}
