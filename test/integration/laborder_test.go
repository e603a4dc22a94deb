//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/laborders/internal/domain/laborder"
	"github.com/ehr/laborders/internal/platform/auth"
	"github.com/ehr/laborders/internal/platform/db"
	"github.com/ehr/laborders/migrations"
)

type seeded struct {
	patientID  uuid.UUID
	olderEnc   uuid.UUID
	newerEnc   uuid.UUID
	drugOnlyID uuid.UUID
}

// seedLabOrders stores two lab encounters, one encounter without orders and
// one for another patient.
func seedLabOrders(t *testing.T, ctx context.Context, tenantID string) seeded {
	t.Helper()
	s := seeded{
		patientID:  uuid.New(),
		olderEnc:   uuid.New(),
		newerEnc:   uuid.New(),
		drugOnlyID: uuid.New(),
	}
	otherPatient := uuid.New()
	ward, lab := uuid.New(), uuid.New()
	jan := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

	execSQL(t, ctx, tenantID, `INSERT INTO patient (id, mrn, first_name, last_name) VALUES ($1, 'MRN-1', 'Ada', 'Okafor'), ($2, 'MRN-2', 'Ben', 'Hale')`,
		s.patientID, otherPatient)
	execSQL(t, ctx, tenantID, `INSERT INTO location (id, name) VALUES ($1, 'Ward 3'), ($2, 'Outpatient Lab')`, ward, lab)

	execSQL(t, ctx, tenantID, `INSERT INTO encounter (id, patient_id, location_id, encounter_datetime) VALUES
		($1, $4, $5, $6), ($2, $4, $7, $8), ($3, $4, $7, $8), (gen_random_uuid(), $9, $7, $8)`,
		s.olderEnc, s.newerEnc, s.drugOnlyID, s.patientID, lab, jan, ward, mar, otherPatient)

	execSQL(t, ctx, tenantID, `INSERT INTO lab_order (encounter_id, concept_display, date_activated) VALUES ($1, 'Hemoglobin', $2)`,
		s.olderEnc, jan)
	execSQL(t, ctx, tenantID, `INSERT INTO lab_order (encounter_id, concept_display, date_activated, date_stopped, stop_reason) VALUES
		($1, 'Serum Glucose', $2, $3, 'completed'), ($1, 'CBC', $2, $3, 'revoked')`,
		s.newerEnc, mar, ptrTime(mar.Add(20*time.Hour)))
	execSQL(t, ctx, tenantID, `INSERT INTO observation (encounter_id, concept_display, value_text, unit, obs_datetime) VALUES ($1, 'Serum Glucose', '5.4', 'mmol/L', $2)`,
		s.newerEnc, mar.Add(20*time.Hour))
	return s
}

func TestLabOrderRepo_ListLabEncounters(t *testing.T) {
	ctx := context.Background()
	tenantID := uniqueTenantID("lab")
	createTenantSchema(t, ctx, tenantID)
	s := seedLabOrders(t, ctx, tenantID)

	var items []laborder.LabEncounter
	err := withTenantConn(ctx, tenantID, func(ctx context.Context) error {
		var err error
		items, err = laborder.NewEncounterRepoPG(globalPool).ListLabEncounters(ctx, s.patientID)
		return err
	})
	if err != nil {
		t.Fatalf("ListLabEncounters: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 lab encounters, got %d", len(items))
	}
	byID := map[string]laborder.LabEncounter{}
	for _, it := range items {
		byID[it.ID] = it
	}
	newer, ok := byID[s.newerEnc.String()]
	if !ok {
		t.Fatal("expected the March encounter")
	}
	if len(newer.Orders) != 2 || len(newer.Obs) != 1 {
		t.Errorf("expected 2 orders and 1 observation, got %d and %d", len(newer.Orders), len(newer.Obs))
	}
	if newer.Location.Display != "Ward 3" || !newer.EncounterDatetime.Valid {
		t.Errorf("unexpected encounter header %+v", newer)
	}
	if _, ok := byID[s.drugOnlyID.String()]; ok {
		t.Error("expected encounter without orders to be excluded")
	}
}

func TestLabOrderRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	tenantID := uniqueTenantID("lab")
	createTenantSchema(t, ctx, tenantID)

	err := withTenantConn(ctx, tenantID, func(ctx context.Context) error {
		if _, err := laborder.NewEncounterRepoPG(globalPool).GetLabEncounter(ctx, uuid.New()); !errors.Is(err, laborder.ErrNotFound) {
			t.Errorf("expected ErrNotFound for encounter, got %v", err)
		}
		if _, err := laborder.NewPatientRepoPG(globalPool).GetByID(ctx, uuid.New()); !errors.Is(err, laborder.ErrNotFound) {
			t.Errorf("expected ErrNotFound for patient, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestLabOrders_EndToEnd(t *testing.T) {
	ctx := context.Background()
	tenantID := uniqueTenantID("lab")
	createTenantSchema(t, ctx, tenantID)
	s := seedLabOrders(t, ctx, tenantID)

	svc := laborder.NewService(
		laborder.NewEncounterRepoPG(globalPool),
		laborder.NewPatientRepoPG(globalPool),
		laborder.Options{PageSize: 10},
	)
	e := echo.New()
	api := e.Group("/api/v1", auth.DevAuthMiddleware(), db.TenantMiddleware(globalPool, "default"))
	laborder.NewHandler(svc, zerolog.Nop()).RegisterRoutes(api)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set(db.TenantHeader, tenantID)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := get("/api/v1/patients/" + s.patientID.String() + "/lab-orders")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var v laborder.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(v.Rows) != 2 || v.Rows[0].ID != s.newerEnc.String() {
		t.Fatalf("expected March encounter first, got %+v", v.Rows)
	}
	colors := map[string]string{}
	for _, tag := range v.Rows[0].Tests {
		colors[tag.Name] = tag.Color
	}
	if colors["Serum Glucose"] != "green" || colors["CBC"] != "red" {
		t.Errorf("unexpected tag colors %v", colors)
	}
	if v.Rows[1].Tests[0].Color != "#6F6F6F" {
		t.Errorf("expected pending Hemoglobin to be gray, got %s", v.Rows[1].Tests[0].Color)
	}

	rec = get("/api/v1/lab-encounters/" + s.newerEnc.String() + "/print")
	if rec.Code != http.StatusOK {
		t.Fatalf("print: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var d laborder.ActionDescriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if d.Summary == nil || d.Summary.MRN != "MRN-1" || len(d.Summary.Results) != 1 {
		t.Errorf("unexpected print summary %+v", d.Summary)
	}
}

func TestMigrator_StatusAfterUp(t *testing.T) {
	ctx := context.Background()
	tenantID := uniqueTenantID("mig")
	createTenantSchema(t, ctx, tenantID)

	m := db.NewMigrator(globalPool, migrations.FS)
	count, err := m.Up(ctx, db.TenantSchema(tenantID))
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no pending migrations after tenant creation, got %d", count)
	}

	statuses, err := m.Status(ctx, db.TenantSchema(tenantID))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, st := range statuses {
		if !st.Applied {
			t.Errorf("expected %s applied", st.Name)
		}
	}
}
