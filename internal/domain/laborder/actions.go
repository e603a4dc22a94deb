package laborder

// Action kinds a host can trigger from a row.
const (
	ActionPrint = "print"
	ActionEmail = "email"
)

// EmailModal names the dialog the host opens for the email action.
const EmailModal = "send-email-dialog"

// ActionDescriptor tells the host which side effect to run for an
// encounter. The descriptor itself does nothing.
type ActionDescriptor struct {
	Kind        string   `json:"kind"`
	EncounterID string   `json:"encounter_id"`
	PatientID   string   `json:"patient_id,omitempty"`
	Modal       string   `json:"modal,omitempty"`
	Patient     *Patient `json:"patient,omitempty"`
	// Summary is the payload for a printed results summary; only set once
	// the patient has been resolved.
	Summary *ResultsSummary `json:"summary,omitempty"`
}

// ResultsSummary is what a printed results sheet shows.
type ResultsSummary struct {
	PatientName string        `json:"patient_name"`
	MRN         string        `json:"mrn"`
	Date        string        `json:"date"`
	Location    string        `json:"location"`
	Tests       []Tag         `json:"tests"`
	Results     []Observation `json:"results"`
}

// PrintAction describes printing the results summary of enc. patient may be
// nil when it has not been looked up yet; the host then resolves it from
// PatientID.
func PrintAction(enc *LabEncounter, patient *Patient) ActionDescriptor {
	d := ActionDescriptor{
		Kind:        ActionPrint,
		EncounterID: enc.ID,
		PatientID:   enc.Patient.UUID,
		Patient:     patient,
	}
	if patient != nil {
		d.Summary = &ResultsSummary{
			PatientName: patient.FullName(),
			MRN:         patient.MRN,
			Date:        enc.EncounterDatetime.Format(DefaultDateLayout, missingDate),
			Location:    enc.Location.Display,
			Tests:       testTags(enc.Orders),
			Results:     enc.Obs,
		}
	}
	return d
}

// EmailAction describes opening the send-email dialog for enc.
func EmailAction(enc *LabEncounter) ActionDescriptor {
	return ActionDescriptor{
		Kind:        ActionEmail,
		EncounterID: enc.ID,
		PatientID:   enc.Patient.UUID,
		Modal:       EmailModal,
	}
}
