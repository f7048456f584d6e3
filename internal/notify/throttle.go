package notify

import (
	"context"
	"sync"
	"time"
)

// Slack allows roughly one message per second per channel
const (
	slackPostsPerSecond = 1.0
	slackPostBurst      = 3
)

// throttle is a token bucket shared by every post through one notifier
type throttle struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

func newThrottle(perSecond float64, burst int) *throttle {
	t := &throttle{
		tokens:   float64(burst),
		capacity: float64(burst),
		perSec:   perSecond,
		now:      time.Now,
	}
	t.last = t.now()
	return t
}

func (t *throttle) refill() {
	now := t.now()
	t.tokens += now.Sub(t.last).Seconds() * t.perSec
	if t.tokens > t.capacity {
		t.tokens = t.capacity
	}
	t.last = now
}

// take consumes a token if one is available. Otherwise it reports how long
// until the next token.
func (t *throttle) take() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refill()
	if t.tokens >= 1 {
		t.tokens--
		return 0, true
	}
	wait := time.Duration((1 - t.tokens) / t.perSec * float64(time.Second))
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait, false
}

// Wait blocks until a post may proceed or ctx is done
func (t *throttle) Wait(ctx context.Context) error {
	for {
		wait, ok := t.take()
		if ok {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
