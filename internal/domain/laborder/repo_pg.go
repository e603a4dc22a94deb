package laborder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/laborders/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Encounter Repository ===========

type encounterRepoPG struct{ pool *pgxpool.Pool }

func NewEncounterRepoPG(pool *pgxpool.Pool) EncounterRepository {
	return &encounterRepoPG{pool: pool}
}

func (r *encounterRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const encCols = `e.id, e.patient_id, e.encounter_datetime, l.id, COALESCE(l.name, '')`

const encFrom = ` FROM encounter e LEFT JOIN location l ON l.id = e.location_id`

func scanEncounter(row pgx.Row) (*LabEncounter, error) {
	var (
		id, patientID uuid.UUID
		at            *time.Time
		locationID    *uuid.UUID
		enc           LabEncounter
	)
	if err := row.Scan(&id, &patientID, &at, &locationID, &enc.Location.Display); err != nil {
		return nil, err
	}
	enc.ID = id.String()
	enc.Patient.UUID = patientID.String()
	enc.EncounterDatetime = DatetimeFromPtr(at)
	if locationID != nil {
		enc.Location.UUID = locationID.String()
	}
	return &enc, nil
}

// ListLabEncounters returns every encounter of the patient that carries at
// least one order. Ordering is left to the caller.
func (r *encounterRepoPG) ListLabEncounters(ctx context.Context, patientID uuid.UUID) ([]LabEncounter, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+encCols+encFrom+`
		WHERE e.patient_id = $1
		  AND EXISTS (SELECT 1 FROM lab_order o WHERE o.encounter_id = e.id)
		ORDER BY e.created_at`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query lab encounters: %w", err)
	}
	var (
		items []LabEncounter
		ids   []string
	)
	for rows.Next() {
		enc, err := scanEncounter(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan lab encounter: %w", err)
		}
		items = append(items, *enc)
		ids = append(ids, enc.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lab encounters: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	if err := r.attach(ctx, ids, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *encounterRepoPG) GetLabEncounter(ctx context.Context, id uuid.UUID) (*LabEncounter, error) {
	enc, err := scanEncounter(r.conn(ctx).QueryRow(ctx, `SELECT `+encCols+encFrom+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lab encounter: %w", err)
	}
	items := []LabEncounter{*enc}
	if err := r.attach(ctx, []string{enc.ID}, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// attach loads orders and observations for the encounters in ids and stores
// them on the matching element of items.
func (r *encounterRepoPG) attach(ctx context.Context, ids []string, items []LabEncounter) error {
	pos := make(map[string]int, len(items))
	for i := range items {
		pos[items[i].ID] = i
	}

	orders, err := r.conn(ctx).Query(ctx, `
		SELECT id, encounter_id, order_type, COALESCE(concept_code, ''), concept_display,
			date_activated, date_stopped, COALESCE(stop_reason, '')
		FROM lab_order WHERE encounter_id = ANY($1::uuid[])
		ORDER BY date_activated NULLS LAST, created_at`, ids)
	if err != nil {
		return fmt.Errorf("query lab orders: %w", err)
	}
	for orders.Next() {
		var (
			o                  TestOrder
			id, encounterID    uuid.UUID
			activated, stopped *time.Time
		)
		if err := orders.Scan(&id, &encounterID, &o.Type, &o.Concept.UUID, &o.Concept.Display,
			&activated, &stopped, &o.StopReason); err != nil {
			orders.Close()
			return fmt.Errorf("scan lab order: %w", err)
		}
		o.ID = id.String()
		o.DateActivated = DatetimeFromPtr(activated)
		o.DateStopped = DatetimeFromPtr(stopped)
		if i, ok := pos[encounterID.String()]; ok {
			items[i].Orders = append(items[i].Orders, o)
		}
	}
	orders.Close()
	if err := orders.Err(); err != nil {
		return fmt.Errorf("read lab orders: %w", err)
	}

	obs, err := r.conn(ctx).Query(ctx, `
		SELECT id, encounter_id, COALESCE(concept_code, ''), concept_display, COALESCE(value_text, ''),
			COALESCE(unit, ''), COALESCE(reference_range, ''), obs_datetime
		FROM observation WHERE encounter_id = ANY($1::uuid[])
		ORDER BY obs_datetime NULLS LAST, created_at`, ids)
	if err != nil {
		return fmt.Errorf("query observations: %w", err)
	}
	defer obs.Close()
	for obs.Next() {
		var (
			ob              Observation
			id, encounterID uuid.UUID
			at              *time.Time
		)
		if err := obs.Scan(&id, &encounterID, &ob.Concept.UUID, &ob.Concept.Display, &ob.Value,
			&ob.Unit, &ob.ReferenceRange, &at); err != nil {
			return fmt.Errorf("scan observation: %w", err)
		}
		ob.ID = id.String()
		ob.ObsDatetime = DatetimeFromPtr(at)
		if i, ok := pos[encounterID.String()]; ok {
			items[i].Obs = append(items[i].Obs, ob)
		}
	}
	if err := obs.Err(); err != nil {
		return fmt.Errorf("read observations: %w", err)
	}
	return nil
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var (
		p   Patient
		pid uuid.UUID
	)
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, mrn, first_name, last_name, gender, birth_date
		FROM patient WHERE id = $1`, id).
		Scan(&pid, &p.MRN, &p.FirstName, &p.LastName, &p.Gender, &p.BirthDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	p.ID = pid.String()
	return &p, nil
}
