// Package mutation executes optimistic writes against the cache store:
// snapshot, speculative apply, network call, then commit-by-invalidation or
// rollback. Mutations on one key are serialized.
package mutation

import (
	"fmt"

	"github.com/example/fleetops/internal/cache"
)

// Status is the state of a single mutation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
)

type snapshot struct {
	entry   cache.Entry
	existed bool
	patched bool
}

// Mutation records one optimistic write. Snapshots are held only while the
// mutation is pending.
type Mutation struct {
	ID           string
	AffectedKeys []string
	Status       Status
	Err          error

	snapshots  map[string]snapshot
	optimistic map[string]any
}

func newMutation(id string, keys []string) *Mutation {
	return &Mutation{
		ID:           id,
		AffectedKeys: keys,
		Status:       StatusPending,
		snapshots:    make(map[string]snapshot, len(keys)),
		optimistic:   make(map[string]any, len(keys)),
	}
}

// Snapshot returns the pre-mutation entry for key while pending.
func (m *Mutation) Snapshot(key string) (cache.Entry, bool) {
	s, ok := m.snapshots[key]
	return s.entry, ok && s.existed
}

// OptimisticValue returns the predicted value applied for key while pending.
func (m *Mutation) OptimisticValue(key string) (any, bool) {
	v, ok := m.optimistic[key]
	return v, ok
}

func (m *Mutation) commit() error {
	if m.Status != StatusPending {
		return fmt.Errorf("mutation %s: cannot commit from %s", m.ID, m.Status)
	}
	m.Status = StatusCommitted
	m.snapshots = nil
	m.optimistic = nil
	return nil
}

func (m *Mutation) rollback(cause error) error {
	if m.Status != StatusPending {
		return fmt.Errorf("mutation %s: cannot roll back from %s", m.ID, m.Status)
	}
	m.Status = StatusRolledBack
	m.Err = cause
	m.snapshots = nil
	m.optimistic = nil
	return nil
}
