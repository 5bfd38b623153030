package market

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pegzap/zap-engine/internal/domain"
)

// DefaultSnapshotTTL matches the chain's block cadence: state older than one
// block is stale anyway, so there is no point holding it longer.
const DefaultSnapshotTTL = 12 * time.Second

type snapshotEntry struct {
	snap      domain.PoolSnapshot
	fetchedAt time.Time
}

// SnapshotCache holds one immutable snapshot per pool for a short TTL.
// A refresh replaces the entry wholesale; entries are never mutated in place,
// so a snapshot handed out stays coherent however long the caller keeps it.
type SnapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[common.Address]snapshotEntry

	now func() time.Time // swappable in tests
}

func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCache{
		ttl:     ttl,
		entries: make(map[common.Address]snapshotEntry),
		now:     time.Now,
	}
}

// Get returns the cached snapshot for a pool, or false when absent or expired.
func (c *SnapshotCache) Get(addr common.Address) (domain.PoolSnapshot, bool) {
	c.mu.RLock()
	entry, ok := c.entries[addr]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.snap, true
}

// Put replaces the pool's entry with a fresh snapshot.
func (c *SnapshotCache) Put(addr common.Address, snap domain.PoolSnapshot) {
	c.mu.Lock()
	c.entries[addr] = snapshotEntry{snap: snap, fetchedAt: c.now()}
	c.mu.Unlock()
}

// Size returns the number of entries, expired ones included; expiry is lazy.
func (c *SnapshotCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
