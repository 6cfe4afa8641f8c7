package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"qlearn/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeCheckpoint stamps the entry count and checksum and marshals the record.
func EncodeCheckpoint(c model.Checkpoint) ([]byte, error) {
	sum, err := Checksum(c.Entries)
	if err != nil {
		return nil, err
	}
	c.EntryCount = len(c.Entries)
	c.Checksum = sum
	return json.Marshal(c)
}

func DecodeCheckpoint(data []byte) (model.Checkpoint, error) {
	var checkpoint model.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return model.Checkpoint{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := checkVersion(checkpoint.VersionedRecord); err != nil {
		return model.Checkpoint{}, err
	}
	if checkpoint.Name == "" {
		return model.Checkpoint{}, fmt.Errorf("%w: missing name", ErrCorrupt)
	}
	if len(checkpoint.Entries) != checkpoint.EntryCount {
		return model.Checkpoint{}, fmt.Errorf("%w: entry count %d, found %d", ErrCorrupt, checkpoint.EntryCount, len(checkpoint.Entries))
	}
	sum, err := Checksum(checkpoint.Entries)
	if err != nil {
		return model.Checkpoint{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if sum != checkpoint.Checksum {
		return model.Checkpoint{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return checkpoint, nil
}

// Checksum is the hex SHA-256 of the JSON encoding of entries.
func Checksum(entries []model.QEntry) (string, error) {
	if entries == nil {
		entries = []model.QEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func infoOf(c model.Checkpoint) model.CheckpointInfo {
	return model.CheckpointInfo{
		Name:         c.Name,
		ID:           c.ID,
		CreatedAtUTC: c.CreatedAtUTC,
		EntryCount:   len(c.Entries),
	}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
