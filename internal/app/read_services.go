package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
	coreaudit "github.com/example/fleetops/internal/core/audit"
	"github.com/example/fleetops/internal/models"
	"github.com/example/fleetops/internal/ports/primary"
)

// ShiftServiceImpl implements the ShiftService interface.
type ShiftServiceImpl struct {
	dash *Dashboard
}

// NewShiftService creates a new ShiftService.
func NewShiftService(dash *Dashboard) *ShiftServiceImpl {
	return &ShiftServiceImpl{dash: dash}
}

// ListShifts lists all shifts.
func (s *ShiftServiceImpl) ListShifts(ctx context.Context) ([]*primary.Shift, error) {
	list, _, err := read[models.ShiftList](ctx, s.dash, cache.KeyShifts, s.dash.collectionFetchers()[cache.KeyShifts])
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	out := make([]*primary.Shift, 0, len(list))
	for _, sh := range list {
		out = append(out, toShiftView(sh))
	}
	return out, nil
}

// GetShift retrieves a shift with its stops.
func (s *ShiftServiceImpl) GetShift(ctx context.Context, id string) (*primary.Shift, error) {
	if id == "" {
		return nil, apperr.Validation("get shift", "shift ID is required")
	}
	sh, ok, err := read[models.Shift](ctx, s.dash, cache.ShiftKey(id), s.dash.shiftFetcher(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get shift %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("shift %s not found", id)
	}
	return toShiftView(sh), nil
}

func toShiftView(sh models.Shift) *primary.Shift {
	v := &primary.Shift{ID: sh.ID, DriverID: sh.DriverID, Status: sh.Status}
	for _, st := range sh.Stops {
		v.Stops = append(v.Stops, primary.Stop{BinID: st.BinID, MoveRequestID: st.MoveRequestID})
	}
	return v
}

// FleetServiceImpl implements the FleetService interface.
type FleetServiceImpl struct {
	dash *Dashboard
}

// NewFleetService creates a new FleetService.
func NewFleetService(dash *Dashboard) *FleetServiceImpl {
	return &FleetServiceImpl{dash: dash}
}

// ListBins lists all bins.
func (s *FleetServiceImpl) ListBins(ctx context.Context) ([]*primary.Bin, error) {
	list, _, err := read[models.BinList](ctx, s.dash, cache.KeyBins, s.dash.collectionFetchers()[cache.KeyBins])
	if err != nil {
		return nil, fmt.Errorf("failed to list bins: %w", err)
	}
	out := make([]*primary.Bin, 0, len(list))
	for _, b := range list {
		out = append(out, &primary.Bin{
			ID:             b.ID,
			Number:         b.BinNumber,
			Address:        joinAddress(b.CurrentStreet, b.City, b.Zip),
			FillPercentage: b.FillPercentage,
			Status:         b.Status,
		})
	}
	return out, nil
}

// ListDrivers lists all drivers.
func (s *FleetServiceImpl) ListDrivers(ctx context.Context) ([]*primary.Driver, error) {
	list, _, err := read[models.DriverList](ctx, s.dash, cache.KeyDrivers, s.dash.collectionFetchers()[cache.KeyDrivers])
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	out := make([]*primary.Driver, 0, len(list))
	for _, d := range list {
		out = append(out, &primary.Driver{ID: d.ID, Name: d.Name, Status: d.Status, ShiftID: d.ShiftID})
	}
	return out, nil
}

func joinAddress(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}

// AuditServiceImpl implements the AuditService interface.
type AuditServiceImpl struct {
	dash *Dashboard
}

// NewAuditService creates a new AuditService.
func NewAuditService(dash *Dashboard) *AuditServiceImpl {
	return &AuditServiceImpl{dash: dash}
}

// GetAuditTrail returns the validated trail for a subject, oldest first.
func (s *AuditServiceImpl) GetAuditTrail(ctx context.Context, subjectID string) ([]*primary.AuditEntry, error) {
	if subjectID == "" {
		return nil, apperr.Validation("audit trail", "subject ID is required")
	}
	fetch := func(ctx context.Context) (any, error) { return s.dash.api.ListAuditEvents(ctx, subjectID) }
	raw, _, err := read[models.AuditEventList](ctx, s.dash, cache.AuditKey(subjectID), fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail: %w", err)
	}
	events, err := coreaudit.Trail(raw)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.AuditEntry, 0, len(events))
	for _, e := range events {
		entry := &primary.AuditEntry{
			ID:         e.ID,
			ActionType: e.ActionType,
			ActorID:    e.ActorID,
			CreatedAt:  time.Unix(e.CreatedAt, 0),
		}
		for _, c := range e.Diff {
			entry.Changes = append(entry.Changes, primary.Change{
				Field:  c.Field,
				Kind:   string(c.Kind),
				Before: c.BeforeString(),
				After:  c.AfterString(),
			})
		}
		out = append(out, entry)
	}
	return out, nil
}
