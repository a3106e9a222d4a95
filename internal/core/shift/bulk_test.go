package shift

import (
	"errors"
	"reflect"
	"testing"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
)

func TestBulkOrder(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		moveOrder []string
		want      []string
		wantErr   bool
	}{
		{"input order", []string{"X", "Y", "Z"}, nil, []string{"X", "Y", "Z"}, false},
		{"explicit order", []string{"X", "Y", "Z"}, []string{"Z", "X", "Y"}, []string{"Z", "X", "Y"}, false},
		{"empty ids", nil, nil, nil, true},
		{"duplicate ids", []string{"X", "X"}, nil, nil, true},
		{"order too short", []string{"X", "Y"}, []string{"X"}, nil, true},
		{"order unknown id", []string{"X", "Y"}, []string{"X", "Q"}, nil, true},
		{"order repeats id", []string{"X", "Y"}, []string{"X", "X"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BulkOrder(tt.ids, tt.moveOrder)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("BulkOrder() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BulkOrder() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BulkOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextPlacement(t *testing.T) {
	inserted := models.StopRef{BinID: "NEW", MoveRequestID: "MR-7"}

	got := NextPlacement(Placement{InsertAfterBinID: "B"}, inserted)
	if got.InsertAfterBinID != "NEW" || got.AfterMoveRequestID != "MR-7" {
		t.Errorf("NextPlacement(anchor) = %+v, want anchor NEW pinned to MR-7", got)
	}
	got = NextPlacement(Placement{Position: PositionEnd}, inserted)
	if got != (Placement{Position: PositionEnd}) {
		t.Errorf("NextPlacement(end) = %+v, want unchanged", got)
	}
}

func TestChainedPlacementKeepsBatchOrder(t *testing.T) {
	s := []models.StopRef{{BinID: "A"}, {BinID: "B"}, {BinID: "C"}}
	p := Placement{InsertAfterBinID: "B"}
	for _, st := range []models.StopRef{{BinID: "X", MoveRequestID: "MR-1"}, {BinID: "Y", MoveRequestID: "MR-2"}} {
		var err error
		s, err = InsertStop(s, st, p)
		if err != nil {
			t.Fatalf("InsertStop(%s) error: %v", st.MoveRequestID, err)
		}
		p = NextPlacement(p, st)
	}
	if got, want := bins(s), []string{"A", "B", "X", "Y", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("stops = %v, want %v", got, want)
	}
}

func TestChainedPlacementRejectsShadowedBin(t *testing.T) {
	// MR-2 revisits bin A; the backend would anchor after the first A.
	s := []models.StopRef{{BinID: "A", MoveRequestID: "MR-0"}, {BinID: "B"}, {BinID: "A", MoveRequestID: "MR-2"}}
	p := NextPlacement(Placement{InsertAfterBinID: "B"}, models.StopRef{BinID: "A", MoveRequestID: "MR-2"})

	_, err := InsertStop(s, models.StopRef{BinID: "Y", MoveRequestID: "MR-3"}, p)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("InsertStop() error = %v, want validation", err)
	}
}
