package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryStateRepository is the single-process fallback for throttling
// counters.
type MemoryStateRepository struct {
	mu         sync.Mutex
	rateLimits map[string]*rateLimitEntry
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{rateLimits: make(map[string]*rateLimitEntry)}
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{count: 1, expiresAt: now.Add(window)}
		r.rateLimits[key] = entry
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
