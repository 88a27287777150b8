package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/bilmo5352/nsequotes/models"
)

// entry holds a cached response with its creation timestamp.
type entry struct {
	response  *models.QuoteResponse
	createdAt time.Time
}

// Cache is a simple in-memory cache for quote responses.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
}

// New creates a Cache with the given capacity and entry lifetime. A zero
// maxAge disables caching entirely. A background goroutine evicts expired
// entries every 5 minutes.
func New(maxEntries int, maxAge time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}

	if maxAge > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool {
	return c != nil && c.maxAge > 0
}

// Key generates a cache key from the symbol and the per-request options
// that change the result shape.
func Key(symbol string, headless, screenshot bool) string {
	h := sha256.New()
	h.Write([]byte(symbol))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatBool(headless)))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatBool(screenshot)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached response if it exists and is younger than the
// configured lifetime. Returns the response and whether it was a hit.
func (c *Cache) Get(key string) (*models.QuoteResponse, bool) {
	if !c.Enabled() {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > c.maxAge {
		return nil, false
	}

	return e.response, true
}

// Set stores a response. If the cache is at capacity, a random entry is
// evicted to make room (map iteration is random in Go).
func (c *Cache) Set(key string, resp *models.QuoteResponse) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  resp,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts expired entries every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.maxAge)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
