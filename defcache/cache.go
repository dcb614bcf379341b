// Package defcache keeps decoded animation definitions keyed by the
// canonical path of their source file.
//
// A Cache holds at most one definition per file. FetchOrLoad returns the
// resident entry or reads and decodes the file on a miss; concurrent misses
// for the same file share a single decode. Definitions are never mutated
// after they are cached, so an Entry stays readable after Evict; use
// Current to find out whether it is still the resident one. Sprites are
// different: when the decoder is a Releaser, dropping an entry hands its
// sprites back and holders must stop using them.
package defcache

import (
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ddvk/sajson/sam"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Decoder turns the bytes of source into a definition.
type Decoder interface {
	Decode(source string, data []byte) (*sam.Definition, error)
}

// Releaser is implemented by decoders whose definitions hold resources that
// must be given back when the definition leaves the cache.
type Releaser interface {
	Release(def *sam.Definition) int
}

// ReadFunc reads a whole file. A missing file must be reported with an
// error wrapping fs.ErrNotExist.
type ReadFunc func(path string) ([]byte, error)

// Entry is a resident definition.
type Entry struct {
	Key        string
	Definition *sam.Definition
	// Generation identifies this load; a reload of the same key gets a new one
	Generation uuid.UUID
	LoadedAt   time.Time
}

type Option func(*Cache)

func WithDecoder(d Decoder) Option {
	return func(c *Cache) {
		c.decoder = d
	}
}

func WithReader(r ReadFunc) Option {
	return func(c *Cache) {
		c.read = r
	}
}

func WithLogger(l log.FieldLogger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// Cache is safe for concurrent use.
type Cache struct {
	decoder Decoder
	read    ReadFunc
	logger  log.FieldLogger

	mu      sync.RWMutex
	entries map[string]*Entry
	loads   singleflight.Group

	// evictions count up on every Evict and Purge. A load that started
	// before an eviction of its key does not insert its result.
	epoch     uint64
	evictedAt map[string]uint64
	purgedAt  uint64
}

func New(opts ...Option) *Cache {
	c := &Cache{
		decoder: sam.NewDecoder(),
		read:    os.ReadFile,
		logger:  log.StandardLogger(),
		entries:   make(map[string]*Entry),
		evictedAt: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("prefix", "defcache")
	return c
}

// FetchOrLoad returns the entry for path, loading it on a miss. On failure
// the cache is left untouched and the error is a *LoadError.
func (c *Cache) FetchOrLoad(path string) (*Entry, error) {
	key, err := Key(path)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageResolve, Err: err}
	}

	if entry, ok := c.get(key); ok {
		c.logger.WithField("key", key).Debug("cache hit")
		return entry, nil
	}

	v, err, shared := c.loads.Do(key, func() (interface{}, error) {
		// another flight may have finished between the probe and Do
		if entry, ok := c.get(key); ok {
			return entry, nil
		}
		return c.load(path, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.WithField("key", key).Debug("joined in-flight load")
	}
	return v.(*Entry), nil
}

func (c *Cache) load(path, key string) (*Entry, error) {
	logger := c.logger.WithField("key", key)
	logger.Debug("cache miss")

	c.mu.RLock()
	started := c.epoch
	c.mu.RUnlock()

	data, err := c.read(key)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageRead, Err: err}
	}
	def, err := c.decoder.Decode(key, data)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: StageDecode, Err: err}
	}
	if def == nil {
		return nil, &LoadError{Path: path, Stage: StageDecode, Err: errNoDefinition}
	}

	entry := &Entry{
		Key:        key,
		Definition: def,
		Generation: uuid.New(),
		LoadedAt:   time.Now(),
	}

	c.mu.Lock()
	stale := c.purgedAt > started || c.evictedAt[key] > started
	if !stale {
		c.entries[key] = entry
		delete(c.evictedAt, key)
	}
	c.mu.Unlock()

	if stale {
		logger.WithField("generation", entry.Generation).Debug("evicted while loading, not cached")
		c.release(entry)
		return entry, nil
	}

	logger.WithFields(log.Fields{
		"generation": entry.Generation,
		"frames":     len(def.Frames),
		"images":     len(def.Images),
		"bytes":      len(data),
	}).Debug("loaded definition")
	return entry, nil
}

func (c *Cache) get(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Lookup returns the resident entry for path without loading it.
func (c *Cache) Lookup(path string) (*Entry, bool) {
	key, err := Key(path)
	if err != nil {
		return nil, false
	}
	return c.get(key)
}

// Current reports whether entry is still the resident entry for its key.
func (c *Cache) Current(entry *Entry) bool {
	if entry == nil {
		return false
	}
	resident, ok := c.get(entry.Key)
	return ok && resident.Generation == entry.Generation
}

// Evict drops the entry for path and releases its sprites. A load of the
// same path that is in flight still returns its definition to its callers
// but does not cache it. Evicting a missing entry is a no-op.
func (c *Cache) Evict(path string) {
	key, err := Key(path)
	if err != nil {
		c.logger.WithError(err).Warn("cannot evict")
		return
	}

	c.mu.Lock()
	entry, ok := c.entries[key]
	delete(c.entries, key)
	c.epoch++
	c.evictedAt[key] = c.epoch
	c.mu.Unlock()

	if ok {
		c.logger.WithFields(log.Fields{
			"key":        key,
			"generation": entry.Generation,
		}).Debug("evicted definition")
		c.release(entry)
	}
}

// Purge evicts everything.
func (c *Cache) Purge() {
	c.mu.Lock()
	dropped := c.entries
	c.entries = make(map[string]*Entry)
	c.epoch++
	c.purgedAt = c.epoch
	c.evictedAt = make(map[string]uint64)
	c.mu.Unlock()

	c.logger.WithField("count", len(dropped)).Debug("purged cache")
	for _, entry := range dropped {
		c.release(entry)
	}
}

func (c *Cache) release(entry *Entry) {
	releaser, ok := c.decoder.(Releaser)
	if !ok {
		return
	}
	if n := releaser.Release(entry.Definition); n > 0 {
		c.logger.WithFields(log.Fields{
			"key":     entry.Key,
			"sprites": n,
		}).Debug("released sprites")
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the resident keys in sorted order
func (c *Cache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
