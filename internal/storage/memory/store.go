package memory

import (
	"time"

	"github.com/yndnr/respkv/pkg/cmap"
	"github.com/yndnr/respkv/pkg/resp"
)

// DefaultShardCount keeps the whole keyspace behind one lock.
const DefaultShardCount = 1

// Store is the in-memory key-value store.
type Store struct {
	entries *cmap.Map[Entry]
	now     func() time.Time
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
	now    func() time.Time
}

// WithShards splits the keyspace into n shards. n must be a power of 2.
func WithShards(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// WithClock replaces time.Now. The clock must carry a monotonic reading
// for expiry to be immune to wall-clock changes.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		o.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	o := storeOptions{
		shards: DefaultShardCount,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store{
		entries: cmap.NewWithShards[Entry](o.shards),
		now:     o.now,
	}
}

// Get returns the value stored under key. A lapsed entry reads as absent
// but is left in place.
func (s *Store) Get(key string) (resp.Value, bool) {
	e, ok := s.entries.Get(key)
	if !ok || e.Expired(s.now()) {
		return resp.Value{}, false
	}
	return e.Value, true
}

// Set stores value under key, replacing any previous entry. A nil ttl means
// the entry never expires.
func (s *Store) Set(key string, value resp.Value, ttl *time.Duration) {
	e := Entry{
		Value:      value,
		InsertedAt: s.now(),
	}
	if ttl != nil {
		e.TTL = *ttl
		e.HasTTL = true
	}
	s.entries.Set(key, e)
}

// Len returns the number of stored entries, lapsed ones included.
func (s *Store) Len() int {
	return s.entries.Count()
}

// Shards returns the number of lock shards.
func (s *Store) Shards() int {
	return s.entries.ShardCount()
}
