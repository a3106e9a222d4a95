package mutation

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/example/fleetops/internal/apperr"
	"github.com/example/fleetops/internal/cache"
)

// Policy decides what happens when a key already has a mutation in flight.
type Policy int

const (
	// PolicyQueue waits for the in-flight mutation, honoring ctx.
	PolicyQueue Policy = iota
	// PolicyReject fails fast with a MutationInFlight error.
	PolicyReject
)

// Target is one key written optimistically. Predict receives a deep copy of
// the current data (nil if absent) and returns the optimistic value. It runs
// after the mutation holds all of its keys, in Targets order. A Predict error
// aborts the mutation before anything is written.
type Target struct {
	Key     string
	Predict func(current any) (any, error)
}

// Request describes one mutation.
type Request struct {
	Targets []Target
	// Perform is the network call.
	Perform func(ctx context.Context) (any, error)
	// Reconcile is called with the server result after a successful Perform.
	Reconcile func(result any)
	// InvalidatePrefixes are marked stale on success in addition to the targets.
	InvalidatePrefixes []string
	Policy             Policy
}

// Coordinator runs mutations against a cache store.
type Coordinator struct {
	store  *cache.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]chan struct{}
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

// New creates a Coordinator writing into store.
func New(store *cache.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		locks:  make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) lockFor(key string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = make(chan struct{}, 1)
		c.locks[key] = l
	}
	return l
}

// acquire takes the per-key locks in sorted order. On failure every lock
// already taken is released.
func (c *Coordinator) acquire(ctx context.Context, keys []string, policy Policy) (release func(), err error) {
	var held []chan struct{}
	release = func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	for _, k := range keys {
		l := c.lockFor(k)
		if policy == PolicyReject {
			select {
			case l <- struct{}{}:
			default:
				release()
				return nil, apperr.New(apperr.KindMutationInFlight, "mutate", "another mutation is in flight for %s", k)
			}
		} else {
			select {
			case l <- struct{}{}:
			case <-ctx.Done():
				release()
				return nil, ctx.Err()
			}
		}
		held = append(held, l)
	}
	return release, nil
}

// InFlight reports whether key is held by a pending mutation.
func (c *Coordinator) InFlight(key string) bool {
	return len(c.lockFor(key)) > 0
}

// Mutate runs req. The returned Mutation is committed or rolled back; the
// error is the Perform error on rollback, or a pre-network rejection.
func (c *Coordinator) Mutate(ctx context.Context, req Request) (*Mutation, error) {
	if len(req.Targets) == 0 || req.Perform == nil {
		return nil, apperr.Validation("mutate", "mutation needs at least one target and a perform call")
	}
	keys := make([]string, 0, len(req.Targets))
	seen := make(map[string]bool, len(req.Targets))
	for _, t := range req.Targets {
		if t.Key == "" || seen[t.Key] {
			return nil, apperr.Validation("mutate", "empty or duplicate target key %q", t.Key)
		}
		seen[t.Key] = true
		keys = append(keys, t.Key)
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	release, err := c.acquire(ctx, sorted, req.Policy)
	if err != nil {
		c.store.Metrics().Mutation("rejected")
		return nil, err
	}
	defer release()

	m := newMutation(uuid.NewString(), keys)
	log := c.logger.With("mutation_id", m.ID)

	// Snapshot and predict everything before touching the store, so a
	// rejected prediction leaves the cache exactly as it was.
	for _, t := range req.Targets {
		e, existed := c.store.Get(t.Key)
		e.Data = cache.DeepCopy(e.Data)
		m.snapshots[t.Key] = snapshot{entry: e, existed: existed}

		var current any
		if existed {
			current = cache.DeepCopy(e.Data)
		}
		next := current
		if t.Predict != nil {
			next, err = t.Predict(current)
			if err != nil {
				c.store.Metrics().Mutation("rejected")
				log.Debug("mutation rejected by prediction", "key", t.Key, "error", err)
				return nil, err
			}
		}
		m.optimistic[t.Key] = next
	}

	for _, k := range keys {
		s := m.snapshots[k]
		v := m.optimistic[k]
		// Nothing cached and nothing predicted: leave the key for the next fetch.
		if !s.existed && v == nil {
			continue
		}
		c.store.Patch(k, func(any) any { return v })
		s.patched = true
		m.snapshots[k] = s
	}
	log.Debug("optimistic values applied", "keys", keys)

	result, err := req.Perform(ctx)
	if err != nil {
		for _, k := range keys {
			if s := m.snapshots[k]; s.patched {
				c.store.Restore(k, s.entry, s.existed)
			}
		}
		_ = m.rollback(err)
		c.store.Metrics().Mutation("rolled_back")
		log.Info("mutation rolled back", "keys", keys, "error", err)
		return m, err
	}

	_ = m.commit()
	for _, k := range keys {
		c.store.Invalidate(k)
	}
	for _, p := range req.InvalidatePrefixes {
		c.store.InvalidatePrefix(p)
	}
	if req.Reconcile != nil {
		req.Reconcile(result)
	}
	c.store.Metrics().Mutation("committed")
	log.Debug("mutation committed", "keys", keys)
	return m, nil
}
