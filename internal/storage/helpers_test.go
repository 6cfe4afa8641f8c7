package storage

import "qlearn/internal/model"

func sampleCheckpoint(name string) model.Checkpoint {
	best := 5.0
	return model.Checkpoint{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "cp-" + name,
		Name:            name,
		CreatedAtUTC:    "2026-01-02T03:04:05Z",
		Actions:         []string{"left", "right", "forward"},
		BestReward:      &best,
		Entries: []model.QEntry{
			{
				State:  []model.StateComponent{{Kind: "string", Str: "1"}, {Kind: "string", Str: "2"}},
				Action: "forward",
				Value:  5,
			},
			{
				State:  []model.StateComponent{{Kind: "int", Int: 0}, {Kind: "float", Float: "-0.25"}},
				Action: "left",
				Value:  -1.5,
			},
		},
	}
}
