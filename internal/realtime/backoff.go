package realtime

import (
	"context"
	"math/rand"
	"time"
)

type Backoff struct {
	BaseDelay time.Duration // e.g. 500ms
	MaxDelay  time.Duration // e.g. 30s
}

func DefaultBackoff() Backoff {
	return Backoff{
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  30 * time.Second,
	}
}

// Delay computes the wait before reconnect attempt n using exponential
// backoff with full jitter. attempt is 1-based (1 => BaseDelay).
func (b Backoff) Delay(attempt int, rng *rand.Rand) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if b.BaseDelay <= 0 {
		b.BaseDelay = 500 * time.Millisecond
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = 30 * time.Second
	}

	delay := b.MaxDelay
	if attempt < 32 {
		if d := b.BaseDelay << (attempt - 1); d > 0 && d < b.MaxDelay {
			delay = d
		}
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(rng.Int63n(int64(delay) + 1))
}

// Sleep waits for the attempt's delay or until ctx is done.
func (b Backoff) Sleep(ctx context.Context, attempt int, rng *rand.Rand) error {
	t := time.NewTimer(b.Delay(attempt, rng))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
