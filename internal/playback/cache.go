package playback

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Default cache timings.
const (
	DefaultRefreshInterval = time.Second
	DefaultSettleDelay     = 300 * time.Millisecond
)

// Cache wraps a Controller and throttles state fetches. Refresh and Do are
// called from the tick loop; State may be read from any goroutine.
type Cache struct {
	ctrl     Controller
	interval time.Duration
	settle   time.Duration

	mu      sync.RWMutex
	state   State
	next    time.Time
	fetched bool
	lastErr string
}

// NewCache returns a cache that refreshes at most once per interval and waits
// settle after a track change before fetching again.
func NewCache(ctrl Controller, interval, settle time.Duration) *Cache {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if settle < 0 {
		settle = 0
	}
	return &Cache{
		ctrl:     ctrl,
		interval: interval,
		settle:   settle,
	}
}

// Controller returns the wrapped controller.
func (c *Cache) Controller() Controller {
	return c.ctrl
}

// State returns the last successfully fetched state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Refresh fetches the player state if the refresh is due. On failure the
// previous state is kept and a repeated error is logged once. It reports
// whether a fetch was attempted.
func (c *Cache) Refresh(ctx context.Context, now time.Time) bool {
	c.mu.Lock()
	if c.fetched && now.Before(c.next) {
		c.mu.Unlock()
		return false
	}
	c.fetched = true
	c.next = now.Add(c.interval)
	c.mu.Unlock()

	state, err := c.ctrl.State(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case errors.Is(err, ErrNoActiveDevice):
		c.state.IsPlaying = false
		c.lastErr = ""
	case err != nil:
		if msg := err.Error(); msg != c.lastErr {
			log.Printf("Playback update error: %v", err)
			c.lastErr = msg
		}
	default:
		c.state = state
		c.lastErr = ""
	}
	return true
}

// Do runs action and schedules a refresh once the backend has had time to
// switch tracks.
func (c *Cache) Do(ctx context.Context, action Action, now time.Time) error {
	if err := Do(ctx, c.ctrl, action); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if action.ChangesTrack() {
		c.next = now.Add(c.settle)
	} else {
		c.next = now
	}
	return nil
}
