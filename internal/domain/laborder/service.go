package laborder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	encounters EncounterRepository
	patients   PatientRepository
	opts       Options
}

func NewService(enc EncounterRepository, pat PatientRepository, opts Options) *Service {
	return &Service{encounters: enc, patients: pat, opts: opts}
}

// Options returns the table options the service was built with.
func (s *Service) Options() Options {
	return s.opts
}

// Fetch loads a patient's laboratory encounters as a snapshot. A failed
// fetch is reported through Snapshot.Err.
func (s *Service) Fetch(ctx context.Context, patientID uuid.UUID) Snapshot {
	if patientID == uuid.Nil {
		return Snapshot{Err: fmt.Errorf("patient_id is required")}
	}
	items, err := s.encounters.ListLabEncounters(ctx, patientID)
	if err != nil {
		return Snapshot{Err: fmt.Errorf("fetch lab encounters: %w", err)}
	}
	return Snapshot{Encounters: items}
}

// TableRequest carries the host's input state for one table render.
type TableRequest struct {
	Search    string
	RowFilter string
	Page      int
	PageSize  int
	Expand    []string
}

// BuildTable fetches the patient's encounters and applies req to a fresh
// table.
func (s *Service) BuildTable(ctx context.Context, patientID uuid.UUID, req TableRequest) View {
	t := NewTable(s.opts)
	t.Load(s.Fetch(ctx, patientID))
	ApplyRequest(t, req)
	return t.View()
}

// ApplyRequest sets t to the state req describes. Page size goes first so
// the page number is clamped against the right range. Expand lists the rows
// to show expanded, so repeated IDs do not collapse them again.
func ApplyRequest(t *Table, req TableRequest) {
	if req.PageSize > 0 {
		t.SetPageSize(req.PageSize)
	}
	if req.Page > 0 {
		t.GoToPage(req.Page)
	}
	t.SetSearch(req.Search)
	t.SetRowFilter(req.RowFilter)
	for _, id := range req.Expand {
		t.Expand(id)
	}
}

// GetEncounter returns one laboratory encounter.
func (s *Service) GetEncounter(ctx context.Context, id uuid.UUID) (*LabEncounter, error) {
	return s.encounters.GetLabEncounter(ctx, id)
}

// PrintDescriptor resolves the encounter and its patient and returns the
// print action for it.
func (s *Service) PrintDescriptor(ctx context.Context, encounterID uuid.UUID) (*ActionDescriptor, error) {
	enc, err := s.encounters.GetLabEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	pid, err := uuid.Parse(enc.Patient.UUID)
	if err != nil {
		return nil, fmt.Errorf("encounter %s has invalid patient reference: %w", enc.ID, err)
	}
	patient, err := s.patients.GetByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	d := PrintAction(enc, patient)
	return &d, nil
}

// EmailDescriptor returns the email action for an encounter.
func (s *Service) EmailDescriptor(ctx context.Context, encounterID uuid.UUID) (*ActionDescriptor, error) {
	enc, err := s.encounters.GetLabEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	d := EmailAction(enc)
	return &d, nil
}
