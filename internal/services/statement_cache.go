package services

import (
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"bullion/internal/ledger"
)

// StatementCache memoizes aggregation results per account. Keys carry the
// account's registry version, so a write makes older entries unreachable
// and they age out of the LRU. A nil *StatementCache is a valid, disabled cache.
type StatementCache struct {
	mu       sync.Mutex
	versions map[string]uint64
	lru      *expirable.LRU[string, *ledger.Result]
}

// NewStatementCache returns a cache holding up to size results for ttl.
// A size of zero or less disables caching.
func NewStatementCache(size int, ttl time.Duration) *StatementCache {
	if size <= 0 {
		return nil
	}
	return &StatementCache{
		versions: make(map[string]uint64),
		lru:      expirable.NewLRU[string, *ledger.Result](size, nil, ttl),
	}
}

// Version returns the current registry version of an account.
func (c *StatementCache) Version(accountID string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[accountID]
}

// Invalidate implements RegistryObserver.
func (c *StatementCache) Invalidate(accountID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.versions[accountID]++
	c.mu.Unlock()
}

// Len reports the number of cached results, including unreachable ones.
func (c *StatementCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

func (c *StatementCache) get(accountID string, version uint64, fingerprint string) (*ledger.Result, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(cacheKey(accountID, version, fingerprint))
}

func (c *StatementCache) add(accountID string, version uint64, fingerprint string, v *ledger.Result) {
	if c == nil {
		return
	}
	c.lru.Add(cacheKey(accountID, version, fingerprint), v)
}

func cacheKey(accountID string, version uint64, fingerprint string) string {
	return accountID + "@" + strconv.FormatUint(version, 10) + "|" + fingerprint
}
