package shift

import (
	"errors"
	"reflect"
	"testing"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
)

func stops(bins ...string) []models.StopRef {
	out := make([]models.StopRef, len(bins))
	for i, b := range bins {
		out[i] = models.StopRef{BinID: b}
	}
	return out
}

func bins(s []models.StopRef) []string {
	out := make([]string, len(s))
	for i, st := range s {
		out[i] = st.BinID
	}
	return out
}

func TestInsertStop(t *testing.T) {
	tests := []struct {
		name      string
		stops     []models.StopRef
		newBin    string
		placement Placement
		want      []string
		wantKind  apperr.Kind
	}{
		{
			name:      "insert after middle anchor",
			stops:     stops("A", "B", "C"),
			newBin:    "NEW",
			placement: Placement{InsertAfterBinID: "B"},
			want:      []string{"A", "B", "NEW", "C"},
		},
		{
			name:      "insert after last anchor",
			stops:     stops("A", "B", "C"),
			newBin:    "NEW",
			placement: Placement{InsertAfterBinID: "C"},
			want:      []string{"A", "B", "C", "NEW"},
		},
		{
			name:      "prepend",
			stops:     stops("A", "B"),
			newBin:    "NEW",
			placement: Placement{Position: PositionStart},
			want:      []string{"NEW", "A", "B"},
		},
		{
			name:      "append",
			stops:     stops("A", "B"),
			newBin:    "NEW",
			placement: Placement{Position: PositionEnd},
			want:      []string{"A", "B", "NEW"},
		},
		{
			name:   "default appends locally",
			stops:  stops("A"),
			newBin: "NEW",
			want:   []string{"A", "NEW"},
		},
		{
			name:      "missing anchor",
			stops:     stops("A", "B", "C"),
			newBin:    "NEW",
			placement: Placement{InsertAfterBinID: "Z"},
			wantKind:  apperr.KindAnchorNotFound,
		},
		{
			name:     "duplicate stop",
			stops:    stops("A", "B"),
			newBin:   "B",
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]models.StopRef(nil), tt.stops...)
			got, err := InsertStop(tt.stops, models.StopRef{BinID: tt.newBin}, tt.placement)
			if tt.wantKind != "" {
				if apperr.KindOf(err) != tt.wantKind {
					t.Fatalf("InsertStop() error = %v, want kind %q", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("InsertStop() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(bins(got), tt.want) {
				t.Errorf("InsertStop() = %v, want %v", bins(got), tt.want)
			}
			if !reflect.DeepEqual(tt.stops, before) {
				t.Errorf("InsertStop() modified its input: %v", bins(tt.stops))
			}
		})
	}
}

func TestInsertStopSameBinDifferentRequests(t *testing.T) {
	in := []models.StopRef{{BinID: "A", MoveRequestID: "MR-1"}}
	got, err := InsertStop(in, models.StopRef{BinID: "A", MoveRequestID: "MR-2"}, Placement{})
	if err != nil {
		t.Fatalf("InsertStop() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestValidatePlacement(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		p       Placement
		wantErr bool
	}{
		{"anchor on active shift", models.ShiftStatusActive, Placement{InsertAfterBinID: "B"}, false},
		{"anchor on paused shift", models.ShiftStatusPaused, Placement{InsertAfterBinID: "B"}, false},
		{"anchor on scheduled shift", models.ShiftStatusScheduled, Placement{InsertAfterBinID: "B"}, true},
		{"position on scheduled shift", models.ShiftStatusScheduled, Placement{Position: PositionEnd}, false},
		{"position on ready shift", models.ShiftStatusReady, Placement{Position: PositionStart}, false},
		{"position on active shift", models.ShiftStatusActive, Placement{Position: PositionEnd}, true},
		{"bad position", models.ShiftStatusScheduled, Placement{Position: "middle"}, true},
		{"both set", models.ShiftStatusActive, Placement{InsertAfterBinID: "B", Position: PositionEnd}, true},
		{"default on active", models.ShiftStatusActive, Placement{}, false},
		{"ended shift", models.ShiftStatusEnded, Placement{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlacement(tt.status, tt.p)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("ValidatePlacement() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidatePlacement() unexpected error: %v", err)
			}
		})
	}
}

func TestRemoveStop(t *testing.T) {
	in := []models.StopRef{
		{BinID: "A"},
		{BinID: "B", MoveRequestID: "MR-1"},
		{BinID: "C"},
	}
	got := RemoveStop(in, "MR-1")
	if !reflect.DeepEqual(bins(got), []string{"A", "C"}) {
		t.Errorf("RemoveStop() = %v, want [A C]", bins(got))
	}
	if len(in) != 3 {
		t.Error("RemoveStop() modified its input")
	}
}
