package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
	"github.com/example/fleetops/internal/models"
)

func TestPrefetch_WarmsCollections(t *testing.T) {
	api := newMockFleetAPI()
	api.bins = models.BinList{{ID: "BIN-1"}}
	api.drivers = models.DriverList{{ID: "DRV-1"}}
	api.addShift("SH-1", models.ShiftStatusActive)
	d := newTestDashboard(t, api)

	if err := d.Prefetch(context.Background()); err != nil {
		t.Fatalf("Prefetch() error = %v", err)
	}
	for _, key := range []string{cache.KeyBins, cache.KeyDrivers, cache.KeyShifts, cache.KeyMoveRequests} {
		if _, ok := d.Store().Get(key); !ok {
			t.Errorf("key %s not cached after Prefetch", key)
		}
	}
}

func TestPrefetch_SurfacesFailure(t *testing.T) {
	api := newMockFleetAPI()
	api.listErr = &apperr.Error{Kind: apperr.KindNetwork, Msg: "offline"}
	d := newTestDashboard(t, api)

	err := d.Prefetch(context.Background())
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("Prefetch() error = %v, want network error", err)
	}
}

func TestRead_AuthFailureDegradesToEmpty(t *testing.T) {
	api := newMockFleetAPI()
	api.listErr = &apperr.Error{Kind: apperr.KindAuth, Status: 401}
	d := newTestDashboard(t, api)

	bins, err := NewFleetService(d).ListBins(context.Background())
	if err != nil {
		t.Fatalf("ListBins() error = %v, want degraded result", err)
	}
	if len(bins) != 0 {
		t.Errorf("ListBins() = %v, want empty", bins)
	}
}

func TestRead_NetworkFailureKeepsCache(t *testing.T) {
	api := newMockFleetAPI()
	d := newTestDashboard(t, api)
	d.Store().Set(cache.KeyBins, models.BinList{{ID: "BIN-1"}}, d.policy)
	d.Store().Invalidate(cache.KeyBins)
	api.listErr = &apperr.Error{Kind: apperr.KindNetwork, Msg: "offline"}

	_, err := d.queries.Refetch(context.Background(), cache.KeyBins, d.collectionFetchers()[cache.KeyBins], d.policy)
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("Refetch() error = %v, want network error", err)
	}
	e, ok := d.Store().Get(cache.KeyBins)
	if !ok || len(e.Data.(models.BinList)) != 1 {
		t.Errorf("cached bins after failed fetch = %+v, want prior data", e.Data)
	}
}

func TestReset_DropsEntries(t *testing.T) {
	d := newTestDashboard(t, newMockFleetAPI())
	d.Store().Set(cache.KeyShifts, models.ShiftList{}, d.policy)
	d.Reset()
	if d.Store().Len() != 0 {
		t.Errorf("Len() = %d after Reset, want 0", d.Store().Len())
	}
}
