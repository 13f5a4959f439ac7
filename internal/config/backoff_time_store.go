package config

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

type backoffData struct {
	BackoffDelay time.Duration
	NextRetryAt  time.Time
}

// BackoffStore tracks, per key, when the next attempt is allowed after failures.
// Keys are feed identifiers.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[string]backoffData
	now      func() time.Time
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[string]backoffData),
		now:      time.Now,
	}
}

// NextRetryAt returns the earliest time of the next attempt for key.
// The boolean is false when key is not backing off.
func (s *BackoffStore) NextRetryAt(key string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if backoff, exists := s.backoffs[key]; exists {
		return backoff.NextRetryAt, true
	}
	return time.Time{}, false
}

// ShouldSkip reports whether an attempt for key at the current time falls
// inside its backoff window.
func (s *BackoffStore) ShouldSkip(key string) bool {
	next, ok := s.NextRetryAt(key)
	return ok && s.now().Before(next)
}

// UpdateBackoff records a failure for key and grows its delay.
func (s *BackoffStore) UpdateBackoff(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := BASE_BACKOFF
	if backoff, exists := s.backoffs[key]; exists {
		delay = calculateNewBackoffDelay(backoff.BackoffDelay)
	}
	s.backoffs[key] = backoffData{
		BackoffDelay: delay,
		NextRetryAt:  s.now().Add(withJitter(delay)).UTC(),
	}
}

// ResetBackoff forgets every recorded failure for key.
func (s *BackoffStore) ResetBackoff(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, key)
}

func withJitter(backoff time.Duration) time.Duration {
	backoff += time.Duration(rand.Float64() * float64(backoff) * JITTER_FACTOR)
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return backoff
}

func calculateNewBackoffDelay(backoffDelay time.Duration) time.Duration {
	backoffDelay *= BACKOFF_FACTOR
	if backoffDelay >= MAX_BACKOFF {
		backoffDelay = MAX_BACKOFF
	}
	return backoffDelay
}
