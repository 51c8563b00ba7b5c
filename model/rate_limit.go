package model

import "time"

// RateLimitEntry tracks the request timestamps of one client identifier
// inside the trailing window. Entries live in process memory (or Redis when
// configured); nothing is persisted.
type RateLimitEntry struct {
	Identifier string
	Timestamps []time.Time
}

type RateLimitConfig struct {
	MaxRequests int
	WindowSize  time.Duration
	Description string
}
