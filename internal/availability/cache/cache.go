// Package cache holds resolved rule sets in memory so the hot slot-listing
// path skips Mongo for repeat reads. Entries expire after a TTL and are
// invalidated explicitly on profile writes.
package cache

import (
	"sync"
	"time"

	"bookable/internal/scheduling/rules"
)

type entry struct {
	ruleSet   rules.RuleSet
	expiresAt time.Time
}

type RuleSetCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	done    chan struct{}
}

func NewRuleSetCache(ttl time.Duration) *RuleSetCache {
	c := &RuleSetCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	go c.cleanupLoop()

	return c
}

// Get returns the cached rule set for a host, if present and unexpired.
func (c *RuleSetCache) Get(hostID string) (rules.RuleSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[hostID]
	if !exists || time.Now().After(e.expiresAt) {
		return rules.RuleSet{}, false
	}
	return e.ruleSet, true
}

func (c *RuleSetCache) Set(hostID string, rs rules.RuleSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[hostID] = entry{
		ruleSet:   rs,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops a host's entry. Called on every profile write so
// stale availability is never served past the write.
func (c *RuleSetCache) Invalidate(hostID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, hostID)
}

func (c *RuleSetCache) Close() {
	close(c.done)
}

func (c *RuleSetCache) cleanupLoop() {
	interval := c.ttl
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.done:
			return
		}
	}
}

func (c *RuleSetCache) evictExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for hostID, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, hostID)
		}
	}
}
