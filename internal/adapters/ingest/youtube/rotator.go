package youtube

import (
	"sync"
	"time"
)

// KeyRotator manages a FIFO pool of API credentials with per-key cooldown.
// The poller and the manual fetch endpoint share one instance from parallel
// goroutines, so every operation takes the mutex
type KeyRotator struct {
	mu       sync.Mutex
	queue    []rotatorEntry
	cooldown time.Duration
	now      func() time.Time
}

type rotatorEntry struct {
	key     string
	readyAt time.Time
}

// NewKeyRotator builds a rotator over keys; every key starts ready
func NewKeyRotator(keys []string, cooldown time.Duration) *KeyRotator {
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	r := &KeyRotator{cooldown: cooldown, now: time.Now}
	for _, k := range keys {
		if k != "" {
			// zero readyAt means ready under any clock, including injected ones
			r.queue = append(r.queue, rotatorEntry{key: k})
		}
	}
	return r
}

// Len reports how many keys are in the pool, cooling or not
func (r *KeyRotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// PopAvailable returns the first key whose cooldown has elapsed, scanning the
// queue in FIFO order and rotating non-ready entries to the back without
// reordering them among themselves. The key stays at the front so a
// subsequent MarkExhausted targets it. Returns false when the pool is empty
// or every key is still cooling down
func (r *KeyRotator) PopAvailable() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return "", false
	}
	now := r.now()
	for range r.queue {
		front := r.queue[0]
		if !now.Before(front.readyAt) {
			return front.key, true
		}
		r.queue = append(r.queue[1:], front)
	}
	return "", false
}

// MarkExhausted moves the front key to the back with readyAt = now + cooldown.
// No key is ever dropped, only re-timestamped
func (r *KeyRotator) MarkExhausted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		return
	}
	front := r.queue[0]
	front.readyAt = r.now().Add(r.cooldown)
	r.queue = append(r.queue[1:], front)
}
