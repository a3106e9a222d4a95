package cache

import "time"

// Entry is a snapshot of one cached collection plus its freshness metadata.
// Entries returned by the Store are copies; Data must be treated as immutable.
type Entry struct {
	Key             string
	Data            any
	FetchedAt       time.Time // zero until the first successful fetch
	StaleAfter      time.Duration
	RefetchInterval time.Duration
	Generation      uint64 // bumped on every fetch initiation and every write
	Invalidated     bool
}

// IsStale reports whether a background refetch should be scheduled.
// Staleness is advisory; stale data is still served.
func (e Entry) IsStale(now time.Time) bool {
	if e.Invalidated || e.FetchedAt.IsZero() {
		return true
	}
	return !now.Before(e.FetchedAt.Add(e.StaleAfter))
}

// Cloner is implemented by cached values that need a deep copy for
// mutation snapshots.
type Cloner interface {
	DeepCopy() any
}

// DeepCopy returns a deep copy of v when v implements Cloner. Other values
// are returned as is and must be immutable.
func DeepCopy(v any) any {
	if c, ok := v.(Cloner); ok {
		return c.DeepCopy()
	}
	return v
}

// Invalidation is a request to mark keys stale. With Prefix set, every key
// equal to Key or starting with Key+":" is marked.
type Invalidation struct {
	Key    string
	Prefix bool
	Reason string
}
