package window

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks window activity. Counters are atomic so monitoring
// goroutines can read them while the owning matcher mutates the window.
type Statistics struct {
	pushes    int64
	evictions int64

	mu         sync.RWMutex
	startTime  time.Time
	currentLen int64
	maxLen     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Push records an item being appended.
func (s *Statistics) Push() {
	atomic.AddInt64(&s.pushes, 1)
}

// Evict records an item being removed from the front.
func (s *Statistics) Evict() {
	atomic.AddInt64(&s.evictions, 1)
}

// UpdateLen updates the current window length high-water tracking.
func (s *Statistics) UpdateLen(length int64) {
	s.mu.Lock()
	s.currentLen = length
	if length > s.maxLen {
		s.maxLen = length
	}
	s.mu.Unlock()
}

// Pushes returns the total number of items ever pushed.
func (s *Statistics) Pushes() int64 {
	return atomic.LoadInt64(&s.pushes)
}

// Evictions returns the total number of items evicted.
func (s *Statistics) Evictions() int64 {
	return atomic.LoadInt64(&s.evictions)
}

// CurrentLen returns the number of items currently retained.
func (s *Statistics) CurrentLen() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentLen
}

// MaxLen returns the largest number of items the window has held.
func (s *Statistics) MaxLen() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxLen
}

// EvictionRate returns the fraction of pushes that caused an eviction
// (0.0 to 1.0).
func (s *Statistics) EvictionRate() float64 {
	pushes := s.Pushes()
	if pushes == 0 {
		return 0.0
	}
	return float64(s.Evictions()) / float64(pushes)
}

// Uptime returns how long the window has existed.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.pushes, 0)
	atomic.StoreInt64(&s.evictions, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentLen = 0
	s.maxLen = 0
	s.mu.Unlock()
}

// StatsSummary is a JSON-ready snapshot of all statistics.
type StatsSummary struct {
	Pushes       int64         `json:"pushes"`
	Evictions    int64         `json:"evictions"`
	CurrentLen   int64         `json:"current_len"`
	MaxLen       int64         `json:"max_len"`
	EvictionRate float64       `json:"eviction_rate"`
	Uptime       time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Pushes:       s.Pushes(),
		Evictions:    s.Evictions(),
		CurrentLen:   s.CurrentLen(),
		MaxLen:       s.MaxLen(),
		EvictionRate: s.EvictionRate(),
		Uptime:       s.Uptime(),
	}
}
