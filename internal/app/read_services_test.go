package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/models"
)

func TestGetShift(t *testing.T) {
	api := newMockFleetAPI()
	api.addShift("SH-1", models.ShiftStatusActive, "A", "B")
	svc := NewShiftService(newTestDashboard(t, api))

	sh, err := svc.GetShift(context.Background(), "SH-1")
	if err != nil {
		t.Fatalf("GetShift() error = %v", err)
	}
	if len(sh.Stops) != 2 || sh.Stops[1].BinID != "B" {
		t.Errorf("GetShift() stops = %+v", sh.Stops)
	}

	if _, err := svc.GetShift(context.Background(), ""); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("GetShift(\"\") error = %v, want validation", err)
	}
}

func TestListBins_Address(t *testing.T) {
	api := newMockFleetAPI()
	api.bins = models.BinList{{ID: "BIN-1", BinNumber: 4, CurrentStreet: "1 Main St", City: "Springfield"}}
	svc := NewFleetService(newTestDashboard(t, api))

	bins, err := svc.ListBins(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(bins) != 1 || bins[0].Address != "1 Main St, Springfield" {
		t.Errorf("ListBins() = %+v", bins)
	}
}

func TestGetAuditTrail(t *testing.T) {
	tests := []struct {
		name    string
		events  models.AuditEventList
		wantErr bool
		wantN   int
	}{
		{
			name: "ordered",
			events: models.AuditEventList{
				{ID: "E1", SubjectID: "MR-1", ActionType: "assign", CreatedAt: 100,
					Diff: json.RawMessage(`[{"field":"status","before":"pending","after":"assigned"}]`)},
				{ID: "E2", SubjectID: "MR-1", ActionType: "cancel", CreatedAt: 200},
			},
			wantN: 2,
		},
		{
			name: "out of order",
			events: models.AuditEventList{
				{ID: "E1", SubjectID: "MR-1", CreatedAt: 200},
				{ID: "E2", SubjectID: "MR-1", CreatedAt: 200},
			},
			wantErr: true,
		},
		{
			name: "change without field",
			events: models.AuditEventList{
				{ID: "E1", SubjectID: "MR-1", CreatedAt: 100, Diff: json.RawMessage(`[{"after":"x"}]`)},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMockFleetAPI()
			api.audit["MR-1"] = tt.events
			svc := NewAuditService(newTestDashboard(t, api))

			entries, err := svc.GetAuditTrail(context.Background(), "MR-1")
			if tt.wantErr {
				if !apperr.IsKind(err, apperr.KindValidation) {
					t.Errorf("GetAuditTrail() error = %v, want validation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAuditTrail() error = %v", err)
			}
			if len(entries) != tt.wantN {
				t.Fatalf("got %d entries, want %d", len(entries), tt.wantN)
			}
			c := entries[0].Changes[0]
			if c.Field != "status" || c.Kind != "modified" || c.Before != "pending" || c.After != "assigned" {
				t.Errorf("change = %+v", c)
			}
		})
	}
}
