package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
)

type entry struct {
	scores    map[domain.Coord]int
	expiresAt time.Time
}

type cache struct {
	entries map[string]*entry
	ttl     time.Duration
	clock   domain.Clock
	mu      *sync.RWMutex
}

// New returns an in-process score cache. Entries expire ttl after their
// last update; ttl <= 0 keeps them forever.
func New(clock domain.Clock, ttl time.Duration) *cache {
	return &cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		clock:   clock,
		mu:      &sync.RWMutex{},
	}
}

func (c *cache) Load(_ context.Context, key string) (map[domain.Coord]int, error) {
	now := c.clock.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.expired(e, now) {
		return map[domain.Coord]int{}, nil
	}
	return clone(e.scores), nil
}

func (c *cache) Add(_ context.Context, key string, scores map[domain.Coord]int) (map[domain.Coord]int, error) {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purge(now)
	e, ok := c.entries[key]
	if !ok {
		e = &entry{scores: make(map[domain.Coord]int, len(scores))}
		c.entries[key] = e
	}
	for move, score := range scores {
		e.scores[move] += score
	}
	e.expiresAt = now.Add(c.ttl)
	return clone(e.scores), nil
}

func (c *cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *cache) expired(e *entry, now time.Time) bool {
	return c.ttl > 0 && !now.Before(e.expiresAt)
}

func (c *cache) purge(now time.Time) {
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
		}
	}
}

func clone(scores map[domain.Coord]int) map[domain.Coord]int {
	out := make(map[domain.Coord]int, len(scores))
	for move, score := range scores {
		out[move] = score
	}
	return out
}
