package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
	"github.com/example/fleetops/internal/models"
	"github.com/example/fleetops/internal/mutation"
	"github.com/example/fleetops/internal/ports/secondary"
	"github.com/example/fleetops/internal/query"
	"github.com/example/fleetops/internal/realtime"
)

// Dashboard owns the cache and the coordinators built on it. One Dashboard
// serves one logged-in session; services share it instead of a global cache.
type Dashboard struct {
	store     *cache.Store
	queries   *query.Coordinator
	mutations *mutation.Coordinator
	api       secondary.FleetAPI
	policy    cache.Policy
	logger    *slog.Logger
}

// DashboardOption configures a Dashboard.
type DashboardOption func(*dashboardOptions)

type dashboardOptions struct {
	policy       cache.Policy
	logger       *slog.Logger
	fetchTimeout time.Duration
}

// WithPolicy sets the freshness policy applied to every key.
func WithPolicy(p cache.Policy) DashboardOption {
	return func(o *dashboardOptions) { o.policy = p }
}

// WithLogger sets the logger handed to the coordinators.
func WithLogger(l *slog.Logger) DashboardOption {
	return func(o *dashboardOptions) { o.logger = l }
}

// WithFetchTimeout bounds each backend fetch.
func WithFetchTimeout(d time.Duration) DashboardOption {
	return func(o *dashboardOptions) { o.fetchTimeout = d }
}

// NewDashboard wires coordinators over store and api.
func NewDashboard(store *cache.Store, api secondary.FleetAPI, opts ...DashboardOption) *Dashboard {
	o := dashboardOptions{
		policy: cache.Policy{StaleAfter: 30 * time.Second},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	qopts := []query.Option{query.WithLogger(o.logger)}
	if o.fetchTimeout > 0 {
		qopts = append(qopts, query.WithFetchTimeout(o.fetchTimeout))
	}
	return &Dashboard{
		store:     store,
		queries:   query.New(store, qopts...),
		mutations: mutation.New(store, mutation.WithLogger(o.logger)),
		api:       api,
		policy:    o.policy,
		logger:    o.logger,
	}
}

// Store returns the underlying cache.
func (d *Dashboard) Store() *cache.Store { return d.store }

// Mutations returns the mutation coordinator.
func (d *Dashboard) Mutations() *mutation.Coordinator { return d.mutations }

// Prefetch warms the collection keys the dashboard opens with, in parallel.
func (d *Dashboard) Prefetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for key, fetch := range d.collectionFetchers() {
		g.Go(func() error {
			if _, err := d.queries.EnsureFresh(gctx, key, fetch, d.policy); err != nil {
				return fmt.Errorf("prefetch %s: %w", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Follow keeps the collection keys polled at the policy's refetch interval
// until the returned function is called. It is a no-op when polling is off.
func (d *Dashboard) Follow() (stop func()) {
	var unsubs []func()
	for key, fetch := range d.collectionFetchers() {
		unsubs = append(unsubs, d.queries.Subscribe(key, fetch, d.policy))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Watch runs ch and applies its invalidations to the cache until ctx is
// done or ch gives up.
func (d *Dashboard) Watch(ctx context.Context, ch *realtime.Channel) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ch.Run(gctx) })
	g.Go(func() error { return d.store.Consume(gctx, ch.Invalidations()) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Reset drops every cached entry. Used on logout.
func (d *Dashboard) Reset() {
	d.store.Clear()
}

// Close stops background polling.
func (d *Dashboard) Close() {
	d.queries.Close()
}

func (d *Dashboard) collectionFetchers() map[string]query.Fetcher {
	return map[string]query.Fetcher{
		cache.KeyBins:         func(ctx context.Context) (any, error) { return d.api.ListBins(ctx) },
		cache.KeyDrivers:      func(ctx context.Context) (any, error) { return d.api.ListDrivers(ctx) },
		cache.KeyShifts:       func(ctx context.Context) (any, error) { return d.api.ListShifts(ctx) },
		cache.KeyMoveRequests: d.moveRequestsFetcher(models.MoveRequestFilter{}),
	}
}

func (d *Dashboard) moveRequestsFetcher(f models.MoveRequestFilter) query.Fetcher {
	return func(ctx context.Context) (any, error) { return d.api.ListMoveRequests(ctx, f) }
}

func (d *Dashboard) shiftFetcher(id string) query.Fetcher {
	return func(ctx context.Context) (any, error) {
		s, err := d.api.GetShift(ctx, id)
		if err != nil {
			return nil, err
		}
		return *s, nil
	}
}

func (d *Dashboard) moveRequestFetcher(id string) query.Fetcher {
	return func(ctx context.Context) (any, error) {
		m, err := d.api.GetMoveRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		return *m, nil
	}
}

// read returns the cached value for key as T, fetching as needed.
// An auth failure degrades to whatever is cached, or the zero value.
// ok is false when no data is available.
func read[T any](ctx context.Context, d *Dashboard, key string, fetch query.Fetcher) (value T, ok bool, err error) {
	e, err := d.queries.EnsureFresh(ctx, key, fetch, d.policy)
	if err != nil {
		if !apperr.IsKind(err, apperr.KindAuth) {
			return value, false, err
		}
		d.logger.Warn("read degraded after auth failure", "key", key, "error", err)
		e, _ = d.store.Get(key)
	}
	value, ok = e.Data.(T)
	return value, ok, nil
}

// readStrict is read without the auth fallback. Mutations use it so a 401
// surfaces as an auth error instead of a missing record.
func readStrict[T any](ctx context.Context, d *Dashboard, key string, fetch query.Fetcher) (T, bool, error) {
	var zero T
	e, err := d.queries.EnsureFresh(ctx, key, fetch, d.policy)
	if err != nil {
		return zero, false, err
	}
	v, ok := e.Data.(T)
	return v, ok, nil
}

// refetch forces a fetch of key and returns it as T.
func refetch[T any](ctx context.Context, d *Dashboard, key string, fetch query.Fetcher) (T, bool, error) {
	var zero T
	e, err := d.queries.Refetch(ctx, key, fetch, d.policy)
	if err != nil {
		return zero, false, err
	}
	v, ok := e.Data.(T)
	return v, ok, nil
}
