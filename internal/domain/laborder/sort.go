package laborder

import "sort"

// SortNewestFirst returns a copy of encounters ordered by encounter datetime,
// most recent first. Encounters with equal datetimes keep their input order
// and encounters with a missing or malformed datetime go last.
func SortNewestFirst(encounters []LabEncounter) []LabEncounter {
	sorted := make([]LabEncounter, len(encounters))
	copy(sorted, encounters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].EncounterDatetime.Before(sorted[i].EncounterDatetime)
	})
	return sorted
}
