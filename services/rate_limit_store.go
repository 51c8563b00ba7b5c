package services

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/hafizh-dev/portfolio_api/dto"
	"github.com/hafizh-dev/portfolio_api/model"
)

// RateLimitStore answers whether one more request fits into the trailing
// window for an identifier. Implementations must not record denied attempts:
// probing while blocked never extends the block past the original window end.
type RateLimitStore interface {
	Check(ctx context.Context, identifier string, limit int, window time.Duration) (*dto.RateLimitResult, error)
}

// MemoryRateLimitStore keeps per-identifier timestamp lists in process
// memory. Key count is unbounded; acceptable for a personal site, a known
// growth risk on anything bigger.
type MemoryRateLimitStore struct {
	entries map[string]*model.RateLimitEntry
	mutex   sync.Mutex

	now func() time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		entries: make(map[string]*model.RateLimitEntry),
		now:     time.Now,
	}
}

func (s *MemoryRateLimitStore) Check(_ context.Context, identifier string, limit int, window time.Duration) (*dto.RateLimitResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()

	entry, exists := s.entries[identifier]
	if !exists {
		entry = &model.RateLimitEntry{Identifier: identifier}
		s.entries[identifier] = entry
	}

	// Prune timestamps that fell out of the trailing window.
	kept := entry.Timestamps[:0]
	for _, t := range entry.Timestamps {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}
	entry.Timestamps = kept

	if len(entry.Timestamps) >= limit {
		oldest := entry.Timestamps[0]
		retryAfter := int(math.Ceil((window - now.Sub(oldest)).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}

		return &dto.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	entry.Timestamps = append(entry.Timestamps, now)

	return &dto.RateLimitResult{
		Allowed:   true,
		Remaining: limit - len(entry.Timestamps),
	}, nil
}
