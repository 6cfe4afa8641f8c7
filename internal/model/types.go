package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Checkpoint is a named snapshot of a whole Q-value table.
type Checkpoint struct {
	VersionedRecord
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CreatedAtUTC string   `json:"created_at_utc"`
	Actions      []string `json:"actions"`
	BestReward   *float64 `json:"best_reward,omitempty"`
	EntryCount   int      `json:"entry_count"`
	Checksum     string   `json:"checksum"`
	Entries      []QEntry `json:"entries"`
}

type QEntry struct {
	State  []StateComponent `json:"state"`
	Action string           `json:"action"`
	Value  float64          `json:"value"`
}

// StateComponent is one typed element of a persisted state tuple. Kind selects
// which of the value fields is meaningful. Float holds the strconv text form so
// NaN and the infinities survive a round trip.
type StateComponent struct {
	Kind  string `json:"kind"`
	Int   int64  `json:"int,omitempty"`
	Float string `json:"float,omitempty"`
	Str   string `json:"str,omitempty"`
	Bool  bool   `json:"bool,omitempty"`
}

// CheckpointInfo is the listing view of a stored checkpoint.
type CheckpointInfo struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	CreatedAtUTC string `json:"created_at_utc"`
	EntryCount   int    `json:"entry_count"`
}
