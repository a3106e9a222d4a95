package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
	"github.com/example/fleetops/internal/models"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockFleetAPI implements secondary.FleetAPI as an in-memory backend.
type mockFleetAPI struct {
	mu           sync.Mutex
	bins         models.BinList
	drivers      models.DriverList
	shifts       map[string]*models.Shift
	moveRequests map[string]*models.MoveRequest
	audit        map[string]models.AuditEventList

	listErr   error
	getErr    error // GetShift and GetMoveRequest
	assignErr error
	failOn    map[string]error // move request ID -> error for assign/cancel

	// assignHook runs before an assignment is applied, outside the lock.
	// A non-nil error fails the call.
	assignHook func(req models.AssignRequest) error

	assignCalls []models.AssignRequest
	cancelCalls []string
	statusCalls []string
}

func newMockFleetAPI() *mockFleetAPI {
	return &mockFleetAPI{
		shifts:       make(map[string]*models.Shift),
		moveRequests: make(map[string]*models.MoveRequest),
		audit:        make(map[string]models.AuditEventList),
		failOn:       make(map[string]error),
	}
}

func (m *mockFleetAPI) addShift(id, status string, stopBins ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sh := &models.Shift{ID: id, Status: status, DriverID: "DRV-1"}
	for _, b := range stopBins {
		sh.Stops = append(sh.Stops, models.StopRef{BinID: b})
	}
	m.shifts[id] = sh
}

func (m *mockFleetAPI) addMoveRequest(id, binID, status string, scheduled int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveRequests[id] = &models.MoveRequest{ID: id, BinID: binID, Status: status, ScheduledDate: scheduled}
}

func (m *mockFleetAPI) shiftStops(id string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, s := range m.shifts[id].Stops {
		out = append(out, s.BinID)
	}
	return out
}

func (m *mockFleetAPI) assignCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assignCalls)
}

func (m *mockFleetAPI) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if password != "secret" {
		return nil, apperr.New(apperr.KindAuth, "login", "invalid credentials")
	}
	return &models.LoginResponse{OK: true, Token: "tok-" + email, User: &models.User{ID: "USR-1", Email: email}}, nil
}

func (m *mockFleetAPI) ListBins(ctx context.Context) (models.BinList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.bins.DeepCopy().(models.BinList), nil
}

func (m *mockFleetAPI) ListDrivers(ctx context.Context) (models.DriverList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.drivers.DeepCopy().(models.DriverList), nil
}

func (m *mockFleetAPI) ListShifts(ctx context.Context) (models.ShiftList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out models.ShiftList
	for _, s := range m.shifts {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (m *mockFleetAPI) GetShift(ctx context.Context, id string) (*models.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.shifts[id]
	if !ok {
		return nil, &apperr.Error{Kind: apperr.KindServer, Status: 404, Msg: "shift not found"}
	}
	c := s.Clone()
	return &c, nil
}

func (m *mockFleetAPI) ListMoveRequests(ctx context.Context, f models.MoveRequestFilter) (models.MoveRequestList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out models.MoveRequestList
	for _, mr := range m.moveRequests {
		if f.Status != "" && mr.Status != f.Status {
			continue
		}
		out = append(out, mr.Clone())
	}
	return out, nil
}

func (m *mockFleetAPI) GetMoveRequest(ctx context.Context, id string) (*models.MoveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	mr, ok := m.moveRequests[id]
	if !ok {
		return nil, &apperr.Error{Kind: apperr.KindServer, Status: 404, Msg: "move request not found"}
	}
	c := mr.Clone()
	return &c, nil
}

func (m *mockFleetAPI) AssignMoveRequest(ctx context.Context, req models.AssignRequest) (*models.MoveRequest, error) {
	var hookErr error
	if m.assignHook != nil {
		hookErr = m.assignHook(req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignCalls = append(m.assignCalls, req)
	if hookErr != nil {
		return nil, hookErr
	}
	if m.assignErr != nil {
		return nil, m.assignErr
	}
	if err := m.failOn[req.MoveRequestID]; err != nil {
		return nil, err
	}
	mr := m.moveRequests[req.MoveRequestID]
	mr.Status = "assigned"
	mr.Assignment = &models.Assignment{Type: req.Type, ShiftID: req.ShiftID, UserID: req.UserID}

	if req.ShiftID != "" {
		sh := m.shifts[req.ShiftID]
		stop := models.StopRef{BinID: mr.BinID, MoveRequestID: mr.ID}
		at := len(sh.Stops)
		switch {
		case req.InsertAfterBinID != "":
			for i, s := range sh.Stops {
				if s.BinID == req.InsertAfterBinID {
					at = i + 1
					break
				}
			}
		case req.InsertPosition == "start":
			at = 0
		}
		stops := append([]models.StopRef(nil), sh.Stops[:at]...)
		stops = append(stops, stop)
		sh.Stops = append(stops, sh.Stops[at:]...)
	}
	c := mr.Clone()
	return &c, nil
}

func (m *mockFleetAPI) ClearAssignment(ctx context.Context, id string) (*models.MoveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mr := m.moveRequests[id]
	if a := mr.Assignment; a != nil && a.ShiftID != "" {
		sh := m.shifts[a.ShiftID]
		var kept []models.StopRef
		for _, s := range sh.Stops {
			if s.MoveRequestID != id {
				kept = append(kept, s)
			}
		}
		sh.Stops = kept
	}
	mr.Status = "pending"
	mr.Assignment = nil
	c := mr.Clone()
	return &c, nil
}

func (m *mockFleetAPI) UpdateMoveRequestStatus(ctx context.Context, id, status string) (*models.MoveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls = append(m.statusCalls, id+"="+status)
	mr := m.moveRequests[id]
	mr.Status = status
	c := mr.Clone()
	return &c, nil
}

func (m *mockFleetAPI) CancelMoveRequest(ctx context.Context, id, reason string) (*models.MoveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls = append(m.cancelCalls, id)
	if err := m.failOn[id]; err != nil {
		return nil, err
	}
	mr := m.moveRequests[id]
	mr.Status = "cancelled"
	c := mr.Clone()
	return &c, nil
}

func (m *mockFleetAPI) ListAuditEvents(ctx context.Context, subjectID string) (models.AuditEventList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audit[subjectID].DeepCopy().(models.AuditEventList), nil
}

// mockSessionStore implements secondary.SessionStore in memory.
type mockSessionStore struct {
	mu        sync.Mutex
	session   models.Session
	cookie    string
	expiresAt time.Time
	saveErr   error
}

func (m *mockSessionStore) Load(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	return &s, nil
}

func (m *mockSessionStore) Save(ctx context.Context, s *models.Session, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.session = *s
	m.cookie = s.Token
	m.expiresAt = expiresAt
	return nil
}

func (m *mockSessionStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = models.Session{RememberedEmail: m.session.RememberedEmail}
	m.cookie = ""
	m.expiresAt = time.Time{}
	return nil
}

func (m *mockSessionStore) CookieToken(ctx context.Context, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cookie == "" || !now.Before(m.expiresAt) {
		return "", nil
	}
	return m.cookie, nil
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// newTestDashboard builds a dashboard over api with a frozen clock, so
// entries only go stale when invalidated.
func newTestDashboard(t *testing.T, api *mockFleetAPI) *Dashboard {
	t.Helper()
	store, err := cache.NewStore(cache.WithCapacity(64), cache.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	d := NewDashboard(store, api, WithPolicy(cache.Policy{StaleAfter: time.Hour}))
	t.Cleanup(d.Close)
	return d
}
