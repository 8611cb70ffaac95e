// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum requests per window
	CleanupPeriod time.Duration // How often to clean up old entries
	BanDuration   time.Duration // Block after exceeding the limit; zero blocks only until the window resets
}

// ChatConfig limits question traffic per client.
func ChatConfig(perMinute int) *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   perMinute,
		CleanupPeriod: 5 * time.Minute,
	}
}

type record struct {
	count     int
	firstSeen time.Time
	bannedAt  time.Time
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

// MemoryRateLimiter implements fixed-window, in-memory rate limiting
type MemoryRateLimiter struct {
	config  *Config
	records map[string]*record
	mu      sync.Mutex
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:  config,
		records: make(map[string]*record),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	if config.CleanupPeriod > 0 {
		go limiter.cleanupLoop()
	}
	return limiter
}

// Allow counts a request for identifier and reports whether it may proceed.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info := RateLimitInfo{Limit: rl.config.MaxAttempts}
	rec, ok := rl.records[identifier]

	if ok && !rec.bannedAt.IsZero() {
		if wait := rl.config.BanDuration - now.Sub(rec.bannedAt); wait > 0 {
			info.ResetTime = rec.bannedAt.Add(rl.config.BanDuration)
			info.RetryAfter = wait
			info.Banned = true
			return false, info
		}
		ok = false
	}
	if !ok || now.Sub(rec.firstSeen) >= rl.config.WindowSize {
		rec = &record{firstSeen: now}
		rl.records[identifier] = rec
	}

	rec.count++
	info.ResetTime = rec.firstSeen.Add(rl.config.WindowSize)
	if rec.count > rl.config.MaxAttempts {
		if rl.config.BanDuration > 0 {
			rec.bannedAt = now
			info.ResetTime = now.Add(rl.config.BanDuration)
			info.Banned = true
		}
		info.RetryAfter = info.ResetTime.Sub(now)
		return false, info
	}

	info.Allowed = true
	info.Remaining = rl.config.MaxAttempts - rec.count
	return true, info
}

// Reset forgets identifier's history.
func (rl *MemoryRateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	delete(rl.records, identifier)
	rl.mu.Unlock()
}

func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for id, rec := range rl.records {
		banOver := rec.bannedAt.IsZero() || now.Sub(rec.bannedAt) > rl.config.BanDuration
		if banOver && now.Sub(rec.firstSeen) > rl.config.WindowSize {
			delete(rl.records, id)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
