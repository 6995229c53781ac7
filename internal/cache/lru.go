// Package cache keeps a bounded, in-memory record of finished extraction
// attempts for the current session.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxItems is the number of attempts kept when no size is given.
const DefaultMaxItems = 32

// Outcome is how an attempt ended.
type Outcome string

const (
	OutcomeSucceeded      Outcome = "succeeded"
	OutcomeFailed         Outcome = "failed"
	OutcomeTransportError Outcome = "transport_error"
)

// Attempt summarises one finished submission.
type Attempt struct {
	ID       string
	File     string
	Outcome  Outcome
	Detail   string // service output or transport message, empty on success
	Started  time.Time
	Finished time.Time
}

// Duration returns how long the attempt took.
func (a Attempt) Duration() time.Duration {
	return a.Finished.Sub(a.Started)
}

// History provides thread-safe LRU storage of finished attempts. Once full,
// the oldest attempt is evicted.
type History struct {
	cache *lru.Cache[string, Attempt]
}

// NewHistory creates a history holding at most maxItems attempts.
func NewHistory(maxItems int) (*History, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	c, err := lru.New[string, Attempt](maxItems)
	if err != nil {
		return nil, err
	}
	return &History{cache: c}, nil
}

// Record adds or replaces an attempt.
func (h *History) Record(a Attempt) {
	h.cache.Add(a.ID, a)
}

// Get retrieves an attempt by its ID.
func (h *History) Get(id string) (Attempt, bool) {
	return h.cache.Get(id)
}

// Recent returns the stored attempts, newest first.
func (h *History) Recent() []Attempt {
	keys := h.cache.Keys()
	out := make([]Attempt, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if a, ok := h.cache.Peek(keys[i]); ok {
			out = append(out, a)
		}
	}
	return out
}

// Len returns the current number of attempts held.
func (h *History) Len() int {
	return h.cache.Len()
}
