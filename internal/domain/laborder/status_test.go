package laborder

import "testing"

func TestClassify(t *testing.T) {
	at := day("2024-01-01")
	stop := day("2024-01-02")
	none := Datetime{}

	tests := []struct {
		name      string
		activated Datetime
		stopped   Datetime
		reason    string
		want      StatusCategory
	}{
		{"neither date", none, none, "", StatusRequested},
		{"activated only", at, none, "", StatusRequested},
		{"stopped without reason", at, stop, "", StatusCompleted},
		{"stopped completed", at, stop, "completed", StatusCompleted},
		{"stopped without activation", none, stop, "", StatusCompleted},
		{"revoked", at, stop, "revoked", StatusRejected},
		{"rejected mixed case", at, stop, " Rejected ", StatusRejected},
		{"entered in error", at, stop, "entered-in-error", StatusRejected},
		{"cancelled without activation", none, stop, "cancelled", StatusRejected},
		{"reason ignored while open", at, none, "revoked", StatusRequested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.activated, tt.stopped, tt.reason); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStatusCategory_Color(t *testing.T) {
	tests := []struct {
		cat  StatusCategory
		want string
	}{
		{StatusRequested, "#6F6F6F"},
		{StatusCompleted, "green"},
		{StatusRejected, "red"},
		{StatusCategory("unknown"), "#6F6F6F"},
	}
	for _, tt := range tests {
		if got := tt.cat.Color(); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.cat, tt.want, got)
		}
	}
}

func TestLegend(t *testing.T) {
	legend := Legend()
	if len(legend) != 3 {
		t.Fatalf("expected 3 legend entries, got %d", len(legend))
	}
	want := []struct {
		cat   StatusCategory
		title string
	}{
		{StatusRequested, "Result Requested"},
		{StatusCompleted, "Result Complete"},
		{StatusRejected, "Result Rejected"},
	}
	for i, w := range want {
		if legend[i].Category != w.cat || legend[i].Title != w.title || legend[i].Color != w.cat.Color() {
			t.Errorf("entry %d: unexpected %+v", i, legend[i])
		}
	}
}
