// File: internal/services/whatsapp/window.go
package whatsapp

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

func statusFor(last time.Time, window time.Duration, now time.Time) WindowStatus {
	remaining := window - now.Sub(last)
	if remaining <= 0 {
		return WindowStatus{LastMessage: last}
	}
	return WindowStatus{Open: true, LastMessage: last, Remaining: remaining}
}

type memoryWindow struct {
	mu     sync.RWMutex
	last   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

// NewMemoryWindow tracks send windows in process memory.
func NewMemoryWindow(window time.Duration) WindowTracker {
	return &memoryWindow{last: make(map[string]time.Time), window: window, now: time.Now}
}

func (w *memoryWindow) Record(ctx context.Context, number string) error {
	w.mu.Lock()
	w.last[number] = w.now()
	w.mu.Unlock()
	return nil
}

func (w *memoryWindow) Status(ctx context.Context, number string) (WindowStatus, error) {
	w.mu.RLock()
	last, ok := w.last[number]
	w.mu.RUnlock()
	if !ok {
		return WindowStatus{}, nil
	}
	return statusFor(last, w.window, w.now()), nil
}

const windowKeyPrefix = "whatsapp:window:"

func windowKey(number string) string { return windowKeyPrefix + number }

type redisWindow struct {
	client *redis.Client
	window time.Duration
}

// NewRedisWindow stores the last inbound time per number with a TTL equal
// to the window, so closed windows expire on their own.
func NewRedisWindow(client *redis.Client, window time.Duration) WindowTracker {
	return &redisWindow{client: client, window: window}
}

func (w *redisWindow) Record(ctx context.Context, number string) error {
	now := time.Now().UTC().UnixNano()
	return w.client.Set(ctx, windowKey(number), strconv.FormatInt(now, 10), w.window).Err()
}

func (w *redisWindow) Status(ctx context.Context, number string) (WindowStatus, error) {
	raw, err := w.client.Get(ctx, windowKey(number)).Result()
	if errors.Is(err, redis.Nil) {
		return WindowStatus{}, nil
	}
	if err != nil {
		return WindowStatus{}, err
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return WindowStatus{}, err
	}
	return statusFor(time.Unix(0, nanos).UTC(), w.window, time.Now().UTC()), nil
}
