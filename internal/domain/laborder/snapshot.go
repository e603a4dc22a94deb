package laborder

import (
	"encoding/json"
	"fmt"
	"io"
)

// snapshotEnvelope accepts either a bare array of encounters or the
// {"results": [...]} wrapper returned by encounter search endpoints.
type snapshotEnvelope struct {
	Results []LabEncounter `json:"results"`
}

// DecodeSnapshot reads encounters from r. Malformed timestamps inside the
// payload do not fail decoding; a malformed document does.
func DecodeSnapshot(r io.Reader) (Snapshot, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	var list []LabEncounter
	if err := json.Unmarshal(raw, &list); err == nil {
		return Snapshot{Encounters: list}, nil
	}

	var env snapshotEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return Snapshot{Encounters: env.Results}, nil
}
