package utils

import (
	"slices"
	"sync"
	"time"
)

// LatencyTracker keeps the most recent analysis durations in a fixed ring.
type LatencyTracker struct {
	mu      sync.Mutex
	ring    []time.Duration
	next    int
	full    bool
	total   int
	maxSize int
}

// LatencySummary is a point-in-time view of the tracked window.
type LatencySummary struct {
	Samples int
	P50     time.Duration
	P95     time.Duration
	Max     time.Duration
}

// NewLatencyTracker creates a tracker holding up to maxSize samples.
func NewLatencyTracker(maxSize int) *LatencyTracker {
	if maxSize <= 0 {
		maxSize = 512
	}
	return &LatencyTracker{ring: make([]time.Duration, maxSize), maxSize: maxSize}
}

// Observe records d, overwriting the oldest sample once the ring is full.
func (l *LatencyTracker) Observe(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.next] = d
	l.next = (l.next + 1) % l.maxSize
	if l.next == 0 {
		l.full = true
	}
	l.total++
}

// Count returns the number of samples currently held.
func (l *LatencyTracker) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size()
}

// Total returns every observation ever recorded, including evicted ones.
func (l *LatencyTracker) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Percentile returns the nearest-rank p-th percentile (0-100), or zero without samples.
func (l *LatencyTracker) Percentile(p float64) time.Duration {
	l.mu.Lock()
	sorted := l.sortedLocked()
	l.mu.Unlock()
	return percentile(sorted, p)
}

// Summary returns p50, p95 and max over the held samples.
func (l *LatencyTracker) Summary() LatencySummary {
	l.mu.Lock()
	sorted := l.sortedLocked()
	l.mu.Unlock()
	if len(sorted) == 0 {
		return LatencySummary{}
	}
	return LatencySummary{
		Samples: len(sorted),
		P50:     percentile(sorted, 50),
		P95:     percentile(sorted, 95),
		Max:     sorted[len(sorted)-1],
	}
}

func (l *LatencyTracker) size() int {
	if l.full {
		return l.maxSize
	}
	return l.next
}

func (l *LatencyTracker) sortedLocked() []time.Duration {
	out := slices.Clone(l.ring[:l.size()])
	slices.Sort(out)
	return out
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}
	rank := int(p/100*float64(n) + 0.999999)
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
