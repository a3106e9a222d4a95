// Package query issues and deduplicates fetches per cache key, applies the
// staleness and polling policy, and writes results into the cache store.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
)

// DefaultFetchTimeout bounds a single fetch.
const DefaultFetchTimeout = 15 * time.Second

// maxJoinAttempts bounds how often a waiter re-joins after its fetch was superseded.
const maxJoinAttempts = 3

// Fetcher loads the authoritative value for a key.
type Fetcher func(ctx context.Context) (any, error)

// Coordinator serves reads from the store and keeps keys fresh.
// Fetches run on the coordinator's own context so a shared fetch is not
// cancelled when one of its waiters gives up.
type Coordinator struct {
	store        *cache.Store
	group        singleflight.Group
	logger       *slog.Logger
	fetchTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	subs map[string]*subscription
}

type subscription struct {
	refs int
	stop chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// New creates a Coordinator writing into store.
func New(store *cache.Store, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		store:        store,
		logger:       slog.New(slog.DiscardHandler),
		fetchTimeout: DefaultFetchTimeout,
		ctx:          ctx,
		cancel:       cancel,
		subs:         make(map[string]*subscription),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureFresh returns the cached entry for key, fetching it first only when
// nothing is cached. A cached but stale entry is returned immediately and a
// background refetch is started; reads never block on staleness.
func (c *Coordinator) EnsureFresh(ctx context.Context, key string, fetch Fetcher, p cache.Policy) (cache.Entry, error) {
	metrics := c.store.Metrics()
	if e, ok := c.store.Get(key); ok {
		if !e.IsStale(c.store.Now()) {
			metrics.Read("hit")
			return e, nil
		}
		metrics.Read("stale")
		c.start(key, fetch, p, false)
		return e, nil
	}
	metrics.Read("miss")
	return c.wait(ctx, key, fetch, p, c.start(key, fetch, p, false))
}

// Refetch issues a new fetch for key and waits for it. Any fetch already in
// flight for key is superseded: its result will be discarded on arrival.
// Errors are surfaced and the previously cached data is left untouched.
func (c *Coordinator) Refetch(ctx context.Context, key string, fetch Fetcher, p cache.Policy) (cache.Entry, error) {
	return c.wait(ctx, key, fetch, p, c.start(key, fetch, p, true))
}

// start joins the in-flight fetch for key or begins one. With force set, a
// new fetch is begun even if one is in flight.
func (c *Coordinator) start(key string, fetch Fetcher, p cache.Policy, force bool) <-chan singleflight.Result {
	if force {
		c.group.Forget(key)
	}
	return c.group.DoChan(key, func() (any, error) {
		return c.run(key, fetch, p)
	})
}

func (c *Coordinator) run(key string, fetch Fetcher, p cache.Policy) (cache.Entry, error) {
	ticket := c.store.BeginFetch(key)
	log := c.logger.With("key", key, "generation", ticket)

	ctx, cancel := context.WithTimeout(c.ctx, c.fetchTimeout)
	defer cancel()

	data, err := fetch(ctx)
	if err != nil {
		c.store.Metrics().Fetch("failed")
		log.Warn("fetch failed", "error", err)
		return cache.Entry{}, err
	}
	if err := c.store.CommitFetch(key, ticket, data, p); err != nil {
		c.store.Metrics().Fetch("discarded")
		log.Debug("fetch result discarded", "reason", err)
		return cache.Entry{}, err
	}
	c.store.Metrics().Fetch("committed")
	log.Debug("fetch committed")
	e, _ := c.store.Get(key)
	return e, nil
}

func (c *Coordinator) wait(ctx context.Context, key string, fetch Fetcher, p cache.Policy, ch <-chan singleflight.Result) (cache.Entry, error) {
	for attempt := 1; ; attempt++ {
		var res singleflight.Result
		select {
		case <-ctx.Done():
			return cache.Entry{}, ctx.Err()
		case res = <-ch:
		}
		if res.Err == nil {
			return res.Val.(cache.Entry), nil
		}
		if !apperr.IsKind(res.Err, apperr.KindStaleResult) {
			return cache.Entry{}, res.Err
		}
		// Superseded: whatever is cached now is newer than our result.
		if e, ok := c.store.Get(key); ok {
			return e, nil
		}
		if attempt >= maxJoinAttempts {
			return cache.Entry{Key: key}, nil
		}
		ch = c.start(key, fetch, p, false)
	}
}

// Subscribe registers interest in key. The first subscriber starts a
// repeating refetch at p.RefetchInterval; the returned function releases the
// subscription and the last release stops the timer.
func (c *Coordinator) Subscribe(key string, fetch Fetcher, p cache.Policy) (unsubscribe func()) {
	c.mu.Lock()
	sub, ok := c.subs[key]
	if !ok {
		sub = &subscription{stop: make(chan struct{})}
		c.subs[key] = sub
		if p.RefetchInterval > 0 {
			c.wg.Add(1)
			go c.poll(key, fetch, p, sub.stop)
		}
	}
	sub.refs++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			sub.refs--
			if sub.refs == 0 && c.subs[key] == sub {
				close(sub.stop)
				delete(c.subs, key)
			}
		})
	}
}

// Subscribers returns the number of active subscribers for key.
func (c *Coordinator) Subscribers(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, ok := c.subs[key]; ok {
		return sub.refs
	}
	return 0
}

func (c *Coordinator) poll(key string, fetch Fetcher, p cache.Policy, stop <-chan struct{}) {
	defer c.wg.Done()
	ticker := time.NewTicker(p.RefetchInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.start(key, fetch, p, false)
		}
	}
}

// Close stops all polling and cancels in-flight fetches.
func (c *Coordinator) Close() {
	c.cancel()
	c.mu.Lock()
	for key, sub := range c.subs {
		close(sub.stop)
		delete(c.subs, key)
	}
	c.mu.Unlock()
	c.wg.Wait()
}
