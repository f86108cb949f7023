package toast

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestAdd_VisibleThenExpires(t *testing.T) {
	s := New(50 * time.Millisecond)
	defer s.Close()

	added := s.Add("hi", Info)

	list := s.List()
	if len(list) != 1 || list[0].Message != "hi" || list[0].Kind != Info || list[0].ID != added.ID {
		t.Fatalf("list=%+v", list)
	}

	if !waitFor(t, 2*time.Second, func() bool { return len(s.List()) == 0 }) {
		t.Fatalf("toast did not expire: %+v", s.List())
	}
}

func TestAdd_DefaultKindAndTTL(t *testing.T) {
	s := New(0)
	defer s.Close()
	if s.ttl != DefaultTTL {
		t.Fatalf("ttl=%s", s.ttl)
	}
	if got := s.Add("plain", ""); got.Kind != Info {
		t.Fatalf("kind=%q", got.Kind)
	}
}

func TestAddFor_CustomDuration(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	s.Add("sticky", Success)
	s.AddFor("brief", Error, 20*time.Millisecond)

	if !waitFor(t, 2*time.Second, func() bool { return len(s.List()) == 1 }) {
		t.Fatalf("list=%+v", s.List())
	}
	if s.List()[0].Message != "sticky" {
		t.Fatalf("wrong toast expired: %+v", s.List())
	}
}

func TestRemove(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	a := s.Add("a", Info)
	b := s.Add("b", Warning)

	s.Remove(a.ID)
	s.Remove("unknown")

	list := s.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("list=%+v", list)
	}
	s.mu.Lock()
	_, pending := s.timers[a.ID]
	s.mu.Unlock()
	if pending {
		t.Fatalf("timer for removed toast still pending")
	}
}

func TestConcurrentAddsHaveUniqueIDs(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(fmt.Sprintf("msg %d", i), Info)
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, toast := range s.List() {
		if seen[toast.ID] {
			t.Fatalf("duplicate id %s", toast.ID)
		}
		seen[toast.ID] = true
	}
	if len(seen) != 100 {
		t.Fatalf("got %d toasts", len(seen))
	}
}

func TestSubscribe(t *testing.T) {
	s := New(time.Hour)
	defer s.Close()

	var mu sync.Mutex
	var sizes []int
	unsub := s.Subscribe(func(ts []Toast) {
		mu.Lock()
		sizes = append(sizes, len(ts))
		mu.Unlock()
	})
	a := s.Add("a", Info)
	s.Remove(a.ID)
	unsub()
	s.Add("ignored", Info)

	mu.Lock()
	defer mu.Unlock()
	want := []int{0, 1, 0}
	if fmt.Sprint(sizes) != fmt.Sprint(want) {
		t.Fatalf("sizes=%v want %v", sizes, want)
	}
}

func TestClose_StopsExpiry(t *testing.T) {
	s := New(200 * time.Millisecond)
	s.Add("kept", Info)
	s.Close()

	time.Sleep(400 * time.Millisecond)
	if len(s.List()) != 1 {
		t.Fatalf("expiry ran after Close: %+v", s.List())
	}
}
