// File: internal/services/whatsapp/dedupe.go
package whatsapp

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper remembers inbound message ids. Meta redelivers a webhook until it
// is acknowledged, so one message can arrive more than once.
type Deduper interface {
	// FirstSeen records id and reports whether it had not been seen within the TTL.
	FirstSeen(ctx context.Context, id string) (bool, error)
}

type memoryDeduper struct {
	mu        sync.Mutex
	seen      map[string]time.Time
	ttl       time.Duration
	nextSweep time.Time
	now       func() time.Time
}

// NewMemoryDeduper keeps seen ids in process memory for ttl.
func NewMemoryDeduper(ttl time.Duration) Deduper {
	return &memoryDeduper{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (d *memoryDeduper) FirstSeen(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if now.After(d.nextSweep) {
		for k, at := range d.seen {
			if now.Sub(at) >= d.ttl {
				delete(d.seen, k)
			}
		}
		d.nextSweep = now.Add(d.ttl)
	}

	if at, ok := d.seen[id]; ok && now.Sub(at) < d.ttl {
		return false, nil
	}
	d.seen[id] = now
	return true, nil
}

const seenKeyPrefix = "whatsapp:seen:"

func seenKey(id string) string { return seenKeyPrefix + id }

type redisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper marks ids with SETNX so every replica shares one seen set.
func NewRedisDeduper(client *redis.Client, ttl time.Duration) Deduper {
	return &redisDeduper{client: client, ttl: ttl}
}

func (d *redisDeduper) FirstSeen(ctx context.Context, id string) (bool, error) {
	return d.client.SetNX(ctx, seenKey(id), 1, d.ttl).Result()
}
