// Package realtime maintains the authenticated push connection and turns
// server events into cache invalidations. It never writes cache data.
package realtime

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
)

// Config holds connection settings.
type Config struct {
	URL        string
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Buffer     int
}

func (c Config) withDefaults() Config {
	if c.MinBackoff <= 0 {
		c.MinBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.Buffer <= 0 {
		c.Buffer = 64
	}
	return c
}

// Channel publishes invalidations for inbound push messages.
type Channel struct {
	cfg      Config
	token    func() string
	dialer   *websocket.Dialer
	logger   *slog.Logger
	observer func(Message)
	out      chan cache.Invalidation

	mu        sync.Mutex
	connected bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver is called for every decoded message, known or not.
func WithObserver(fn func(Message)) Option {
	return func(c *Channel) { c.observer = fn }
}

// WithDialer overrides websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// New creates a Channel. token is read on every (re)connect.
func New(cfg Config, token func() string, opts ...Option) *Channel {
	cfg = cfg.withDefaults()
	c := &Channel{
		cfg:    cfg,
		token:  token,
		dialer: websocket.DefaultDialer,
		logger: slog.New(slog.DiscardHandler),
		out:    make(chan cache.Invalidation, cfg.Buffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidations is closed when Run returns.
func (c *Channel) Invalidations() <-chan cache.Invalidation {
	return c.out
}

// Connected reports whether a connection is currently open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Channel) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// DialURL returns the connection URL with the bearer token as a query parameter.
func DialURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", apperr.Validation("realtime url", "invalid websocket url %q: %v", base, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run connects and reconnects with capped, jittered exponential backoff
// until ctx is done. It returns an auth error without retrying when no
// token is available.
func (c *Channel) Run(ctx context.Context) error {
	defer close(c.out)
	b := c.newBackOff()
	for {
		token := c.token()
		if token == "" {
			return apperr.New(apperr.KindAuth, "realtime connect", "not logged in")
		}
		connected, err := c.session(ctx, token)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			b.Reset()
		}
		wait := b.NextBackOff()
		c.logger.Warn("realtime connection lost", "error", err, "retry_in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// newBackOff never gives up; Run stops only when ctx is done.
func (c *Channel) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.MinBackoff
	b.MaxInterval = c.cfg.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// session runs one connection until it fails or ctx is done.
func (c *Channel) session(ctx context.Context, token string) (connected bool, err error) {
	target, err := DialURL(c.cfg.URL, token)
	if err != nil {
		return false, err
	}
	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return false, apperr.Wrap(apperr.KindNetwork, "realtime dial", err)
	}
	c.setConnected(true)
	defer c.setConnected(false)
	c.logger.Info("realtime connected")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return true, apperr.Wrap(apperr.KindNetwork, "realtime read", err)
		}
		msg, err := Decode(data)
		if err != nil {
			c.logger.Debug("ignoring malformed realtime frame", "error", err)
			continue
		}
		if c.observer != nil {
			c.observer(msg)
		}
		invs := Invalidations(msg)
		if len(invs) == 0 {
			c.logger.Debug("ignoring realtime message", "event_type", msg.Type)
			continue
		}
		for _, inv := range invs {
			select {
			case c.out <- inv:
			case <-ctx.Done():
				return true, nil
			}
		}
	}
}
