package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLimiterSpacing(t *testing.T) {
	const interval = 20 * time.Millisecond
	l := New(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 4; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// Four acquires must span at least three intervals.
	if min := 3 * interval; elapsed < min {
		t.Errorf("4 acquires took %v, want >= %v", elapsed, min)
	}
}

func TestLimiterSerializesConcurrentWaiters(t *testing.T) {
	const interval = 15 * time.Millisecond
	l := New(interval)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		times []time.Time
		wg    sync.WaitGroup
	)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Wait(ctx); err != nil {
				t.Errorf("wait: %v", err)
				return
			}
			mu.Lock()
			times = append(times, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(times) != 3 {
		t.Fatalf("expected 3 completions, got %d", len(times))
	}
	var first, last time.Time
	for i, ts := range times {
		if i == 0 || ts.Before(first) {
			first = ts
		}
		if i == 0 || ts.After(last) {
			last = ts
		}
	}
	if span := last.Sub(first); span < 2*interval-2*time.Millisecond {
		t.Errorf("3 concurrent acquires spanned %v, want >= %v", span, 2*interval)
	}
}

func TestLimiterCancelledContext(t *testing.T) {
	l := New(time.Second)
	ctx := context.Background()

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	before := l.nextAllowed

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	start := time.Now()
	err := l.Wait(cancelCtx)
	if err == nil {
		t.Fatal("expected error from cancelled wait")
	}
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("cancelled wait took %v, expected prompt return", elapsed)
	}
	if !l.nextAllowed.Equal(before) {
		t.Error("cancelled wait must not advance the schedule")
	}
}

func TestLimiterCancelDuringSleep(t *testing.T) {
	l := New(500 * time.Millisecond)
	ctx := context.Background()

	if err := l.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	if err := l.Wait(cancelCtx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("cancel during sleep took %v, expected prompt return", elapsed)
	}
}

func TestLimiterDefaultInterval(t *testing.T) {
	if got := New(0).Interval(); got != DefaultInterval {
		t.Errorf("New(0).Interval() = %v, want %v", got, DefaultInterval)
	}
	if got := New(-time.Second).Interval(); got != DefaultInterval {
		t.Errorf("New(-1s).Interval() = %v, want %v", got, DefaultInterval)
	}
	if got := New(time.Second).Interval(); got != time.Second {
		t.Errorf("New(1s).Interval() = %v, want 1s", got)
	}
}
