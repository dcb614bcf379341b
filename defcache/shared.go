package defcache

import "sync"

var (
	sharedMu    sync.Mutex
	sharedCache *Cache
)

// Shared returns the process-wide cache, creating it on first use.
// Prefer passing an explicit *Cache around; this exists for callers that
// cannot.
func Shared() *Cache {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if sharedCache == nil {
		sharedCache = New()
	}
	return sharedCache
}

// TeardownShared evicts everything from the process-wide cache and drops
// it. The next call to Shared starts from an empty cache.
func TeardownShared() {
	sharedMu.Lock()
	c := sharedCache
	sharedCache = nil
	sharedMu.Unlock()

	if c != nil {
		c.Purge()
	}
}
