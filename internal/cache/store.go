// Package cache holds fetched entity collections keyed by query key, with
// per-key generation bookkeeping. No network or timing logic lives here.
package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/fleetops/internal/apperr"
)

// DefaultCapacity is the number of keys kept before LRU eviction.
const DefaultCapacity = 256

// Policy is the freshness policy recorded with an entry.
type Policy struct {
	StaleAfter      time.Duration
	RefetchInterval time.Duration
}

// Store is the single shared mutable cache. Only the query and mutation
// coordinators write data; invalidation only flips the staleness flag.
//
// Eviction is least-recently-fetched: reads, patches and invalidations do not
// refresh an entry's position, only successful writes do.
//
// Generation counters are kept for every key ever fetched, evicted keys
// included, and are never pruned: dropping one would let a fetch issued
// before eviction reuse a ticket number issued after it. Growth is bounded
// by the distinct keys one session touches (collections, shifts, move
// requests and their filters).
type Store struct {
	mu       sync.Mutex
	entries  *lru.Cache[string, *Entry]
	gens     map[string]uint64 // survives eviction so generations stay monotonic
	now      func() time.Time
	metrics  *Metrics
	capacity int
	removing bool
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity sets the maximum number of cached keys.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock overrides time.Now for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics records store activity on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		gens:     make(map[string]uint64),
		now:      time.Now,
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	entries, err := lru.NewWithEvict[string, *Entry](s.capacity, func(string, *Entry) {
		if !s.removing {
			s.metrics.evicted()
		}
	})
	if err != nil {
		return nil, err
	}
	s.entries = entries
	return s, nil
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time { return s.now() }

// Metrics returns the store's metrics, possibly nil.
func (s *Store) Metrics() *Metrics { return s.metrics }

// Get returns a copy of the entry for key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries.Peek(key)
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Generation returns the current generation for key (0 if never touched).
func (s *Store) Generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// bump must be called with mu held.
func (s *Store) bump(key string) uint64 {
	s.gens[key]++
	g := s.gens[key]
	if e, ok := s.entries.Peek(key); ok {
		e.Generation = g
	}
	return g
}

// BeginFetch records a fetch initiation and returns its ticket.
func (s *Store) BeginFetch(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bump(key)
}

// CommitFetch writes data fetched under ticket. If any fetch or write has
// been initiated for key since the ticket was issued, nothing is written and
// a StaleResult error is returned.
func (s *Store) CommitFetch(key string, ticket uint64, data any, p Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] != ticket {
		return apperr.New(apperr.KindStaleResult, "commit fetch",
			"%s: ticket %d superseded by generation %d", key, ticket, s.gens[key])
	}
	s.write(key, data, p)
	return nil
}

// Set unconditionally writes data, bumping the generation and resetting fetchedAt.
func (s *Store) Set(key string, data any, p Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(key, data, p)
}

func (s *Store) write(key string, data any, p Policy) {
	g := s.bump(key)
	s.entries.Add(key, &Entry{
		Key:             key,
		Data:            data,
		FetchedAt:       s.now(),
		StaleAfter:      p.StaleAfter,
		RefetchInterval: p.RefetchInterval,
		Generation:      g,
	})
}

// Patch applies updater to the current data (nil if absent) for optimistic
// writes. The generation is bumped so in-flight fetches are discarded;
// fetchedAt and the staleness flag are left alone.
func (s *Store) Patch(key string, updater func(current any) any) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.bump(key)
	e, ok := s.entries.Peek(key)
	if !ok {
		e = &Entry{Key: key, Generation: g}
		s.entries.Add(key, e)
	}
	e.Data = updater(e.Data)
	return *e
}

// Restore puts back a snapshot taken with Get. If existed is false the key
// was absent before and is removed again.
func (s *Store) Restore(key string, snap Entry, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.bump(key)
	if !existed {
		s.remove(key)
		return
	}
	restored := snap
	restored.Key = key
	restored.Generation = g
	if e, ok := s.entries.Peek(key); ok {
		*e = restored
		return
	}
	s.entries.Add(key, &restored)
}

// Invalidate marks key stale without touching its data. Returns false if
// the key is not cached. Idempotent.
func (s *Store) Invalidate(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidate(key)
}

func (s *Store) invalidate(key string) bool {
	e, ok := s.entries.Peek(key)
	if !ok {
		return false
	}
	if !e.Invalidated {
		e.Invalidated = true
		s.metrics.invalidated()
	}
	return true
}

// InvalidatePrefix marks every key matching prefix stale and returns them.
func (s *Store) InvalidatePrefix(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var marked []string
	for _, k := range s.entries.Keys() {
		if MatchesPrefix(k, prefix) && s.invalidate(k) {
			marked = append(marked, k)
		}
	}
	return marked
}

// Apply applies one invalidation and returns the keys it marked.
func (s *Store) Apply(inv Invalidation) []string {
	if inv.Prefix {
		return s.InvalidatePrefix(inv.Key)
	}
	if s.Invalidate(inv.Key) {
		return []string{inv.Key}
	}
	return nil
}

// Consume applies invalidations from ch until ch is closed or ctx is done.
func (s *Store) Consume(ctx context.Context, ch <-chan Invalidation) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case inv, ok := <-ch:
			if !ok {
				return nil
			}
			s.Apply(inv)
		}
	}
}

// Remove drops key. Its generation is kept.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(key)
}

func (s *Store) remove(key string) {
	s.removing = true
	s.entries.Remove(key)
	s.removing = false
}

// Clear drops every entry, e.g. on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removing = true
	s.entries.Purge()
	s.removing = false
}

// Keys returns cached keys from least to most recently fetched.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Keys()
}

// Len returns the number of cached keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}
