package ticker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestManualFiresOnEachInterval(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)

	var fired []time.Time
	m.Every(time.Minute, func(now time.Time) {
		fired = append(fired, now)
	})

	m.Advance(30 * time.Second)
	if len(fired) != 0 {
		t.Fatalf("fired %d times before the first interval", len(fired))
	}

	m.Advance(150 * time.Second)
	if len(fired) != 3 {
		t.Fatalf("fired %d times, want 3", len(fired))
	}
	for i, at := range fired {
		want := start.Add(time.Duration(i+1) * time.Minute)
		if !at.Equal(want) {
			t.Errorf("tick %d at %v, want %v", i, at, want)
		}
	}
	if !m.Now().Equal(start.Add(3 * time.Minute)) {
		t.Errorf("Now() = %v, want %v", m.Now(), start.Add(3*time.Minute))
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	count := 0
	h := m.Every(time.Minute, func(time.Time) { count++ })

	m.Advance(2 * time.Minute)
	h.Stop()
	h.Stop()
	m.Advance(10 * time.Minute)

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestManualStopFromCallback(t *testing.T) {
	m := NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	count := 0
	var h Handle
	h = m.Every(time.Minute, func(time.Time) {
		count++
		h.Stop()
	})

	m.Advance(5 * time.Minute)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestManualOrdersTasks(t *testing.T) {
	m := NewManual(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	var order []string
	m.Every(2*time.Minute, func(time.Time) { order = append(order, "slow") })
	m.Every(time.Minute, func(time.Time) { order = append(order, "fast") })

	m.Advance(2 * time.Minute)

	want := []string{"fast", "slow", "fast"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRealStop(t *testing.T) {
	var count atomic.Int32
	r := NewReal(context.Background())
	h := r.Every(5*time.Millisecond, func(time.Time) { count.Add(1) })

	time.Sleep(30 * time.Millisecond)
	h.Stop()
	h.Stop()
	after := count.Load()
	time.Sleep(20 * time.Millisecond)

	if count.Load() != after {
		t.Errorf("callbacks ran after Stop: %d -> %d", after, count.Load())
	}
	if after == 0 {
		t.Error("expected at least one tick")
	}
}

func TestRealStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReal(ctx)
	h := r.Every(time.Hour, func(time.Time) {})

	cancel()

	done := make(chan struct{})
	go func() {
		h.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
