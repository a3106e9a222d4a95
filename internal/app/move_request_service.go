package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
	coremr "github.com/example/fleetops/internal/core/moverequest"
	coreshift "github.com/example/fleetops/internal/core/shift"
	"github.com/example/fleetops/internal/models"
	"github.com/example/fleetops/internal/mutation"
	"github.com/example/fleetops/internal/ports/primary"
	"github.com/example/fleetops/internal/query"
)

// Prefixes invalidated after any committed move-request mutation.
var moveRequestFanout = []string{cache.KeyShifts, cache.KeyMoveRequests, cache.KeyAudit}

// MoveRequestServiceImpl implements the MoveRequestService interface.
type MoveRequestServiceImpl struct {
	dash   *Dashboard
	policy mutation.Policy
}

// NewMoveRequestService creates a new MoveRequestService over the dashboard.
// policy decides what happens when a mutation targets a key that is busy.
func NewMoveRequestService(dash *Dashboard, policy mutation.Policy) *MoveRequestServiceImpl {
	return &MoveRequestServiceImpl{dash: dash, policy: policy}
}

// ListMoveRequests lists move requests with urgency computed at read time.
func (s *MoveRequestServiceImpl) ListMoveRequests(ctx context.Context, filters primary.MoveRequestFilters) ([]*primary.MoveRequest, error) {
	if filters.Status != "" {
		if _, err := coremr.ParseStatus(filters.Status); err != nil {
			return nil, err
		}
	}
	f := models.MoveRequestFilter{Status: filters.Status, ShiftID: filters.ShiftID, BinID: filters.BinID}
	key := cache.MoveRequestsKey(map[string]string{
		"status":   f.Status,
		"shift_id": f.ShiftID,
		"bin_id":   f.BinID,
	})
	list, _, err := read[models.MoveRequestList](ctx, s.dash, key, s.dash.moveRequestsFetcher(f))
	if err != nil {
		return nil, fmt.Errorf("failed to list move requests: %w", err)
	}
	now := s.dash.store.Now()
	out := make([]*primary.MoveRequest, 0, len(list))
	for _, m := range list {
		out = append(out, toMoveRequestView(m, now))
	}
	return out, nil
}

// GetMoveRequest retrieves a move request by ID.
func (s *MoveRequestServiceImpl) GetMoveRequest(ctx context.Context, id string) (*primary.MoveRequest, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMoveRequestView(m, s.dash.store.Now()), nil
}

// AssignMoveRequest assigns a pending move request to a shift or a user.
func (s *MoveRequestServiceImpl) AssignMoveRequest(ctx context.Context, req primary.AssignMoveRequestRequest) error {
	placement := coreshift.Placement{
		InsertAfterBinID: req.InsertAfterBinID,
		Position:         coreshift.Position(req.InsertPosition),
	}
	_, err := s.assign(ctx, req, placement, false)
	return err
}

// BulkAssign issues one assignment per ID, in moveOrder when given. Each
// call re-reads the shift. The first failure stops the batch; earlier
// assignments are kept.
func (s *MoveRequestServiceImpl) BulkAssign(ctx context.Context, req primary.BulkAssignRequest) (*primary.BulkResult, error) {
	order, err := coreshift.BulkOrder(req.MoveRequestIDs, req.MoveOrder)
	if err != nil {
		return nil, err
	}
	if req.ShiftID == "" && req.UserID == "" {
		return nil, apperr.Validation("bulk assign", "shift ID or user ID is required")
	}

	placement := coreshift.Placement{
		InsertAfterBinID: req.InsertAfterBinID,
		Position:         coreshift.Position(req.InsertPosition),
	}
	result := &primary.BulkResult{}
	for i, id := range order {
		inserted, err := s.assign(ctx, primary.AssignMoveRequestRequest{
			MoveRequestID: id,
			ShiftID:       req.ShiftID,
			UserID:        req.UserID,
		}, placement, true)
		if err != nil {
			result.FailedID = id
			result.Remaining = append([]string(nil), order[i+1:]...)
			result.Err = err
			return result, fmt.Errorf("bulk assign stopped at %s after %d of %d: %w", id, i, len(order), err)
		}
		result.Succeeded = append(result.Succeeded, id)
		placement = coreshift.NextPlacement(placement, inserted)
	}
	return result, nil
}

// ClearAssignment returns an assigned move request to pending.
func (s *MoveRequestServiceImpl) ClearAssignment(ctx context.Context, id string) error {
	return s.transition(ctx, id, coremr.EventClearAssignment, func(ctx context.Context) (any, error) {
		return s.dash.api.ClearAssignment(ctx, id)
	})
}

// StartMoveRequest marks an assigned move request in progress.
func (s *MoveRequestServiceImpl) StartMoveRequest(ctx context.Context, id string) error {
	return s.transition(ctx, id, coremr.EventDriverStartsTask, func(ctx context.Context) (any, error) {
		return s.dash.api.UpdateMoveRequestStatus(ctx, id, string(coremr.StatusInProgress))
	})
}

// CompleteMoveRequest marks an in-progress move request completed.
func (s *MoveRequestServiceImpl) CompleteMoveRequest(ctx context.Context, id string) error {
	return s.transition(ctx, id, coremr.EventDriverCompletes, func(ctx context.Context) (any, error) {
		return s.dash.api.UpdateMoveRequestStatus(ctx, id, string(coremr.StatusCompleted))
	})
}

// CancelMoveRequest cancels a non-terminal move request.
func (s *MoveRequestServiceImpl) CancelMoveRequest(ctx context.Context, id, reason string) error {
	return s.transition(ctx, id, coremr.EventManagerCancels, func(ctx context.Context) (any, error) {
		return s.dash.api.CancelMoveRequest(ctx, id, reason)
	})
}

// BulkCancel cancels each ID in order and stops at the first failure.
func (s *MoveRequestServiceImpl) BulkCancel(ctx context.Context, ids []string, reason string) (*primary.BulkResult, error) {
	order, err := coreshift.BulkOrder(ids, nil)
	if err != nil {
		return nil, err
	}
	result := &primary.BulkResult{}
	for i, id := range order {
		if err := s.CancelMoveRequest(ctx, id, reason); err != nil {
			result.FailedID = id
			result.Remaining = append([]string(nil), order[i+1:]...)
			result.Err = err
			return result, fmt.Errorf("bulk cancel stopped at %s after %d of %d: %w", id, i, len(order), err)
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result, nil
}

// assign validates and runs one assignment. freshShift forces a re-read of
// the shift's stops. Returns the stop that was inserted.
//
// Status guards, placement rules and the stop insertion run inside Predict,
// against the cached value seen while the mutation holds its keys, so a
// queued assignment never builds on another mutation's unconfirmed write.
func (s *MoveRequestServiceImpl) assign(ctx context.Context, req primary.AssignMoveRequestRequest, placement coreshift.Placement, freshShift bool) (models.StopRef, error) {
	const op = "assign move request"
	toShift := req.ShiftID != ""
	if toShift && req.UserID != "" {
		return models.StopRef{}, apperr.Validation(op, "assign to a shift or a user, not both")
	}
	if !toShift && !placement.IsDefault() {
		return models.StopRef{}, apperr.Validation(op, "placement applies only to shift assignments")
	}

	loaded, err := s.loadStrict(ctx, req.MoveRequestID)
	if err != nil {
		return models.StopRef{}, err
	}
	var loadedShift models.Shift
	if toShift {
		if loadedShift, err = s.loadShift(ctx, req.ShiftID, freshShift); err != nil {
			return models.StopRef{}, err
		}
	}

	now := s.dash.store.Now()
	assignment := &models.Assignment{Type: models.AssignmentManual, UserID: req.UserID}
	if toShift {
		assignment = &models.Assignment{Type: models.AssignmentShift, ShiftID: req.ShiftID}
	}

	// Targets are predicted in order, so predicted is set before the list
	// and shift targets read it.
	var predicted models.MoveRequest
	targets := []mutation.Target{
		{Key: cache.MoveRequestKey(loaded.ID), Predict: func(current any) (any, error) {
			mr := moveRequestOr(current, loaded)
			if err := coremr.CanAssign(coremr.AssignContext{
				MoveRequestID: mr.ID,
				Status:        coremr.Status(mr.Status),
				ToShift:       toShift,
				ShiftID:       req.ShiftID,
				UserID:        req.UserID,
			}).Error(); err != nil {
				return nil, err
			}
			predicted = mr.Clone()
			predicted.Status = string(coremr.StatusAssigned)
			predicted.Assignment = assignment
			predicted.UpdatedAt = now.Unix()
			return predicted, nil
		}},
		{Key: cache.KeyMoveRequests, Predict: func(current any) (any, error) {
			return replaceInList(predicted)(current)
		}},
	}
	if toShift {
		targets = append(targets, mutation.Target{Key: cache.ShiftKey(req.ShiftID), Predict: func(current any) (any, error) {
			sh := shiftOr(current, loadedShift)
			if err := coreshift.ValidatePlacement(sh.Status, placement); err != nil {
				return nil, err
			}
			stops, err := coreshift.InsertStop(sh.Stops, stopFor(predicted), placement)
			if err != nil {
				return nil, err
			}
			next := sh.Clone()
			next.Stops = stops
			return next, nil
		}})
	}

	wire := models.AssignRequest{
		MoveRequestID:    loaded.ID,
		Type:             assignment.Type,
		ShiftID:          req.ShiftID,
		UserID:           req.UserID,
		InsertAfterBinID: placement.InsertAfterBinID,
		InsertPosition:   string(placement.Position),
	}
	_, err = s.dash.mutations.Mutate(ctx, mutation.Request{
		Targets:            targets,
		Perform:            func(ctx context.Context) (any, error) { return s.dash.api.AssignMoveRequest(ctx, wire) },
		InvalidatePrefixes: moveRequestFanout,
		Policy:             s.policy,
	})
	if err != nil {
		return models.StopRef{}, fmt.Errorf("failed to assign %s: %w", loaded.ID, err)
	}
	return stopFor(predicted), nil
}

// transition runs a status change guarded by the lifecycle table. The guard
// runs inside Predict against the status cached under the mutation's keys.
func (s *MoveRequestServiceImpl) transition(ctx context.Context, id string, ev coremr.Event, perform func(context.Context) (any, error)) error {
	loaded, err := s.loadStrict(ctx, id)
	if err != nil {
		return err
	}
	now := s.dash.store.Now()

	var predicted models.MoveRequest
	targets := []mutation.Target{
		{Key: cache.MoveRequestKey(loaded.ID), Predict: func(current any) (any, error) {
			mr := moveRequestOr(current, loaded)
			res, err := coremr.ApplyTransition(coremr.Status(mr.Status), ev, now)
			if err != nil {
				return nil, err
			}
			predicted = mr.Clone()
			predicted.Status = string(res.NewStatus)
			predicted.UpdatedAt = res.UpdatedAt
			if ev == coremr.EventClearAssignment {
				predicted.Assignment = nil
			}
			return predicted, nil
		}},
		{Key: cache.KeyMoveRequests, Predict: func(current any) (any, error) {
			return replaceInList(predicted)(current)
		}},
	}

	// Clearing or cancelling drops the request's stop from its shift.
	leavesShift := ev == coremr.EventClearAssignment || ev == coremr.EventManagerCancels
	if a := loaded.Assignment; leavesShift && a != nil && a.Type == models.AssignmentShift && a.ShiftID != "" {
		targets = append(targets, mutation.Target{
			Key:     cache.ShiftKey(a.ShiftID),
			Predict: removeStop(loaded.ID),
		})
	}

	_, err = s.dash.mutations.Mutate(ctx, mutation.Request{
		Targets:            targets,
		Perform:            perform,
		InvalidatePrefixes: moveRequestFanout,
		Policy:             s.policy,
	})
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", ev, id, err)
	}
	return nil
}

// load reads a move request for display; a 401 degrades to cached data.
func (s *MoveRequestServiceImpl) load(ctx context.Context, id string) (models.MoveRequest, error) {
	return s.loadWith(ctx, id, read[models.MoveRequest])
}

// loadStrict reads a move request for a mutation; a 401 is returned as is.
func (s *MoveRequestServiceImpl) loadStrict(ctx context.Context, id string) (models.MoveRequest, error) {
	return s.loadWith(ctx, id, readStrict[models.MoveRequest])
}

func (s *MoveRequestServiceImpl) loadWith(ctx context.Context, id string,
	get func(context.Context, *Dashboard, string, query.Fetcher) (models.MoveRequest, bool, error)) (models.MoveRequest, error) {
	if id == "" {
		return models.MoveRequest{}, apperr.Validation("get move request", "move request ID is required")
	}
	m, ok, err := get(ctx, s.dash, cache.MoveRequestKey(id), s.dash.moveRequestFetcher(id))
	if err != nil {
		return models.MoveRequest{}, fmt.Errorf("failed to get move request %s: %w", id, err)
	}
	if !ok {
		return models.MoveRequest{}, apperr.Validation("get move request", "move request %s not found", id)
	}
	return m, nil
}

// loadShift reads a shift for a mutation. Auth errors are not degraded.
func (s *MoveRequestServiceImpl) loadShift(ctx context.Context, id string, fresh bool) (models.Shift, error) {
	key := cache.ShiftKey(id)
	var (
		sh  models.Shift
		ok  bool
		err error
	)
	if fresh {
		sh, ok, err = refetch[models.Shift](ctx, s.dash, key, s.dash.shiftFetcher(id))
	} else {
		sh, ok, err = readStrict[models.Shift](ctx, s.dash, key, s.dash.shiftFetcher(id))
	}
	if err != nil {
		return models.Shift{}, fmt.Errorf("failed to get shift %s: %w", id, err)
	}
	if !ok {
		return models.Shift{}, apperr.Validation("get shift", "shift %s not found", id)
	}
	return sh, nil
}

// moveRequestOr returns the cached move request, or fallback when the key
// was evicted between the load and the mutation.
func moveRequestOr(current any, fallback models.MoveRequest) models.MoveRequest {
	if mr, ok := current.(models.MoveRequest); ok {
		return mr
	}
	return fallback.Clone()
}

func shiftOr(current any, fallback models.Shift) models.Shift {
	if sh, ok := current.(models.Shift); ok {
		return sh
	}
	return fallback.Clone()
}

func stopFor(m models.MoveRequest) models.StopRef {
	return models.StopRef{BinID: m.BinID, MoveRequestID: m.ID}
}

// replaceInList updates m inside a cached list; an uncached list stays uncached.
func replaceInList(m models.MoveRequest) func(any) (any, error) {
	return func(current any) (any, error) {
		list, ok := current.(models.MoveRequestList)
		if !ok {
			return current, nil
		}
		return list.Replace(m), nil
	}
}

func removeStop(moveRequestID string) func(any) (any, error) {
	return func(current any) (any, error) {
		sh, ok := current.(models.Shift)
		if !ok {
			return current, nil
		}
		sh.Stops = coreshift.RemoveStop(sh.Stops, moveRequestID)
		return sh, nil
	}
}

func toMoveRequestView(m models.MoveRequest, now time.Time) *primary.MoveRequest {
	v := &primary.MoveRequest{
		ID:            m.ID,
		BinID:         m.BinID,
		Status:        m.Status,
		Urgency:       string(coremr.UrgencyOf(m.ScheduledDate, now)),
		ScheduledDate: time.Unix(m.ScheduledDate, 0),
		MoveType:      m.MoveType,
		CreatedAt:     time.Unix(m.CreatedAt, 0),
		UpdatedAt:     time.Unix(m.UpdatedAt, 0),
	}
	if a := m.Assignment; a != nil {
		v.AssignmentType = string(a.Type)
		v.ShiftID = a.ShiftID
		v.UserID = a.UserID
	}
	return v
}
