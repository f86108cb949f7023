package realtime

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestDelay_Bounds(t *testing.T) {
	b := Backoff{BaseDelay: 1 * time.Second, MaxDelay: 60 * time.Second}

	// attempt=1 => [0..1s]
	if d := b.Delay(1, rand.New(rand.NewSource(1))); d < 0 || d > 1*time.Second {
		t.Fatalf("attempt 1 out of range: %s", d)
	}
	// attempt=2 => [0..2s]
	if d := b.Delay(2, rand.New(rand.NewSource(1))); d < 0 || d > 2*time.Second {
		t.Fatalf("attempt 2 out of range: %s", d)
	}
	// attempt=6 => base*32 => [0..32s]
	if d := b.Delay(6, rand.New(rand.NewSource(1))); d < 0 || d > 32*time.Second {
		t.Fatalf("attempt 6 out of range: %s", d)
	}
}

func TestDelay_Capped(t *testing.T) {
	b := Backoff{BaseDelay: 10 * time.Second, MaxDelay: 60 * time.Second}

	for _, attempt := range []int{10, 40, 100} {
		d := b.Delay(attempt, rand.New(rand.NewSource(42)))
		if d < 0 || d > 60*time.Second {
			t.Fatalf("attempt %d out of range: %s", attempt, d)
		}
	}
}

func TestDelay_AttemptLessThanOne(t *testing.T) {
	b := DefaultBackoff()
	d := b.Delay(0, rand.New(rand.NewSource(7)))
	if d < 0 || d > b.BaseDelay {
		t.Fatalf("attempt 0 should behave like attempt 1: %s", d)
	}
}

func TestSleep_StopsOnCancel(t *testing.T) {
	b := Backoff{BaseDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := b.Sleep(ctx, 1, rand.New(rand.NewSource(3))); err == nil {
		t.Fatalf("expected ctx error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleep ignored cancellation")
	}
}
