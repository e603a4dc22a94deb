package laborder

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested encounter or patient does not
// exist.
var ErrNotFound = errors.New("not found")

// EncounterRepository fetches laboratory encounters with their orders and
// results.
type EncounterRepository interface {
	ListLabEncounters(ctx context.Context, patientID uuid.UUID) ([]LabEncounter, error)
	GetLabEncounter(ctx context.Context, id uuid.UUID) (*LabEncounter, error)
}

// PatientRepository looks up patient demographics.
type PatientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
}
