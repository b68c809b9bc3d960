// Package lockout tracks failed login attempts per account with
// time-bounded memory. It replaces the upstream idea of a third-party
// loading cache with a small sharded table so unrelated accounts never
// contend on the same lock.
package lockout

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"
)

const (
	// DefaultMaxAttempts is the failure count at which an account is
	// considered locked.
	DefaultMaxAttempts = 5

	// DefaultTTL is how long an untouched attempt record survives. The
	// window resets on every write.
	DefaultTTL = 15 * time.Minute

	// DefaultCapacity bounds the number of distinct accounts tracked at
	// once. Beyond it the least recently written record is dropped.
	DefaultCapacity = 100

	shardCount = 4
)

// Config tunes a Tracker. Zero values fall back to the defaults above.
type Config struct {
	MaxAttempts int
	TTL         time.Duration
	Capacity    int

	// Clock overrides the time source, for tests.
	Clock func() time.Time
}

// Tracker is a bounded, expiring counter of failed login attempts keyed by
// account identifier. All methods are safe for concurrent use; operations
// on different accounts proceed in parallel on separate shards, operations
// on the same account are serialised by its shard lock.
type Tracker struct {
	maxAttempts int
	ttl         time.Duration
	now         func() time.Time
	shards      [shardCount]shard
}

type shard struct {
	mu      sync.Mutex
	cap     int
	entries map[string]*list.Element
	order   *list.List // front = most recently written
}

type record struct {
	key       string
	count     int
	expiresAt time.Time
}

// NewTracker builds a Tracker from cfg.
func NewTracker(cfg Config) *Tracker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	// Capacity is split across shards; eviction is LRU within a shard.
	perShard := cfg.Capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}

	t := &Tracker{
		maxAttempts: cfg.MaxAttempts,
		ttl:         cfg.TTL,
		now:         cfg.Clock,
	}
	for i := range t.shards {
		t.shards[i].cap = perShard
		t.shards[i].entries = make(map[string]*list.Element, perShard)
		t.shards[i].order = list.New()
	}
	return t
}

// Increment records one failed attempt for the account and returns the new
// count. A missing or expired record counts from zero. The write refreshes
// the record's TTL and recency.
func (t *Tracker) Increment(accountID string) int {
	s := t.shard(accountID)
	now := t.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[accountID]; ok {
		rec := elem.Value.(*record)
		if now.After(rec.expiresAt) {
			rec.count = 0
		}
		rec.count++
		rec.expiresAt = now.Add(t.ttl)
		s.order.MoveToFront(elem)
		return rec.count
	}

	rec := &record{key: accountID, count: 1, expiresAt: now.Add(t.ttl)}
	s.entries[accountID] = s.order.PushFront(rec)

	if s.order.Len() > s.cap {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(*record).key)
		}
	}
	return rec.count
}

// Count returns the current attempt count, treating missing and expired
// records as zero. Reading does not refresh the TTL.
func (t *Tracker) Count(accountID string) int {
	s := t.shard(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[accountID]
	if !ok {
		return 0
	}
	rec := elem.Value.(*record)
	if t.now().After(rec.expiresAt) {
		return 0
	}
	return rec.count
}

// Exceeded reports whether the account has reached the attempt limit.
func (t *Tracker) Exceeded(accountID string) bool {
	return t.Count(accountID) >= t.maxAttempts
}

// Evict drops the account's record outright. Called on successful login and
// on the unlock path so a re-examined account starts from zero.
func (t *Tracker) Evict(accountID string) {
	s := t.shard(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[accountID]; ok {
		s.order.Remove(elem)
		delete(s.entries, accountID)
	}
}

func (t *Tracker) shard(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &t.shards[h.Sum32()%shardCount]
}
