// Package wire builds the application graph for one CLI invocation.
// Everything is constructed explicitly and owned by a Container; nothing
// is held in package-level state.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	cliadapter "github.com/example/fleetops/internal/adapters/cli"
	"github.com/example/fleetops/internal/adapters/rest"
	"github.com/example/fleetops/internal/adapters/sqlite"
	"github.com/example/fleetops/internal/app"
	"github.com/example/fleetops/internal/cache"
	"github.com/example/fleetops/internal/config"
	"github.com/example/fleetops/internal/db"
	"github.com/example/fleetops/internal/mutation"
	"github.com/example/fleetops/internal/realtime"
)

// Container holds the services for one session.
type Container struct {
	Config    *config.Config
	Logger    *slog.Logger
	Registry  *prometheus.Registry
	Dashboard *app.Dashboard

	MoveRequests *app.MoveRequestServiceImpl
	Shifts       *app.ShiftServiceImpl
	Fleet        *app.FleetServiceImpl
	Audit        *app.AuditServiceImpl
	Sessions     *app.SessionServiceImpl

	tokens   *app.TokenHolder
	database *sql.DB
}

// New opens the session database, restores the session and wires services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	path := cfg.SessionDB
	if path == "" {
		p, err := db.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	registry := prometheus.NewRegistry()
	store, err := cache.NewStore(
		cache.WithCapacity(cfg.CacheCapacity),
		cache.WithMetrics(cache.NewMetrics(registry)),
	)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	tokens := &app.TokenHolder{}
	api := rest.New(cfg.APIURL, tokens, rest.WithLogger(logger))
	dash := app.NewDashboard(store, api,
		app.WithLogger(logger),
		app.WithPolicy(cache.Policy{StaleAfter: cfg.StaleAfter, RefetchInterval: cfg.RefetchInterval}),
	)
	sessions := app.NewSessionService(api, sqlite.NewSessionStore(database), tokens, dash, cfg.CookieMaxAge)
	if err := sessions.Restore(ctx); err != nil {
		database.Close()
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Registry:     registry,
		Dashboard:    dash,
		MoveRequests: app.NewMoveRequestService(dash, mutation.PolicyQueue),
		Shifts:       app.NewShiftService(dash),
		Fleet:        app.NewFleetService(dash),
		Audit:        app.NewAuditService(dash),
		Sessions:     sessions,
		tokens:       tokens,
		database:     database,
	}, nil
}

// Realtime returns a channel that invalidates this container's cache.
func (c *Container) Realtime(observer func(realtime.Message)) *realtime.Channel {
	opts := []realtime.Option{realtime.WithLogger(c.Logger)}
	if observer != nil {
		opts = append(opts, realtime.WithObserver(observer))
	}
	return realtime.New(realtime.Config{URL: c.Config.RealtimeURL()}, c.tokens.Token, opts...)
}

// MoveRequestAdapter returns a move-request adapter writing to out.
func (c *Container) MoveRequestAdapter(out io.Writer) *cliadapter.MoveRequestAdapter {
	return cliadapter.NewMoveRequestAdapter(c.MoveRequests, c.Audit, out)
}

// ShiftAdapter returns a shift adapter writing to out.
func (c *Container) ShiftAdapter(out io.Writer) *cliadapter.ShiftAdapter {
	return cliadapter.NewShiftAdapter(c.Shifts, out)
}

// FleetAdapter returns a bins/drivers/session adapter writing to out.
func (c *Container) FleetAdapter(out io.Writer) *cliadapter.FleetAdapter {
	return cliadapter.NewFleetAdapter(c.Fleet, c.Sessions, out)
}

// Close stops background work and closes the database.
func (c *Container) Close() error {
	c.Dashboard.Close()
	return c.database.Close()
}
