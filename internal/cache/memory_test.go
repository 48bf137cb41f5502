package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMemoryProviderExpiry(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryProvider(16, time.Hour)
	c.now = func() time.Time { return clock }

	if err := c.Set(ctx, "symptoms", []byte("payload"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "symptoms")
	if err != nil || string(got) != "payload" {
		t.Fatalf("expected cached payload, got %q (%v)", got, err)
	}

	got[0] = 'X'
	again, _ := c.Get(ctx, "symptoms")
	if string(again) != "payload" {
		t.Fatalf("cached bytes must not alias caller slices")
	}

	clock = clock.Add(2 * time.Minute)
	if _, err := c.Get(ctx, "symptoms"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after expiry, got %v", err)
	}
}

func TestMemoryProviderDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProvider(16, time.Hour)
	_ = c.Set(ctx, "foods", []byte("x"), 0)
	_ = c.Del(ctx, "foods")
	if _, err := c.Get(ctx, "foods"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestMemoryProviderBoundedBySize(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProvider(2, time.Hour)
	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte(key), time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected least recently used entry to be evicted, got %v", err)
	}
}

func TestMemoryProviderReclaimsUnreadExpiredEntries(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProvider(100000, 20*time.Millisecond)
	for i := 0; i < 1000; i++ {
		_ = c.Set(ctx, fmt.Sprintf("logbook:symptoms:%d", i), []byte("x"), 0)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entries to be reclaimed without reads, %d remain", c.Len())
	}
}

func TestNoopProvider(t *testing.T) {
	var p Provider = NoopProvider{}
	_ = p.Set(context.Background(), "k", []byte("v"), time.Minute)
	if _, err := p.Get(context.Background(), "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("noop cache must always miss")
	}
}

func TestRangeKeyNormalisesZone(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	zone := time.FixedZone("UTC+2", 2*60*60)

	a := RangeKey("logbook", "foods", start, end)
	b := RangeKey("logbook", "foods", start.In(zone), end.In(zone))
	if a != b {
		t.Fatalf("expected zone-independent keys, got %q and %q", a, b)
	}
	if a == RangeKey("logbook", "symptoms", start, end) {
		t.Fatalf("kinds must not share keys")
	}
}
