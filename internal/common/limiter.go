package common

import (
	"sync"

	"golang.org/x/time/rate"
)

// KeyedLimiter hands out one token bucket per key (user id, remote address).
type KeyedLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	exempt   map[string]bool
}

func NewKeyedLimiter(limit rate.Limit, burst int, exempt ...string) *KeyedLimiter {
	kl := &KeyedLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		exempt:   make(map[string]bool, len(exempt)),
	}
	for _, key := range exempt {
		kl.exempt[key] = true
	}
	return kl
}

func (kl *KeyedLimiter) get(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if limiter, exists := kl.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(kl.limit, kl.burst)
	kl.limiters[key] = limiter
	return limiter
}

// Allow reports whether key may proceed now.
func (kl *KeyedLimiter) Allow(key string) bool {
	if kl.exempt[key] {
		return true
	}
	return kl.get(key).Allow()
}
