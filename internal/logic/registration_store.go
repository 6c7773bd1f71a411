package logic

import (
	"math"
	"sync"

	"github.com/mettlestate/tournament-site/internal/models"
)

// LowSpotsThreshold is the spots-left value under which the page warns that
// registration is filling up.
const LowSpotsThreshold = 20

// RegistrationStore owns the count of confirmed registrations. It is created
// once at startup and handed to everything that reads or bumps the count.
// The count only ever grows; there is no persistence.
type RegistrationStore struct {
	mu    sync.RWMutex
	count int64
	subs  map[chan int64]struct{}
}

func NewRegistrationStore(seed int64) *RegistrationStore {
	if seed < 0 {
		seed = 0
	}
	return &RegistrationStore{
		count: seed,
		subs:  make(map[chan int64]struct{}),
	}
}

// Read returns the current count.
func (s *RegistrationStore) Read() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Increment adds exactly one registration, notifies subscribers and returns
// the new count. Not idempotent.
func (s *RegistrationStore) Increment() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	n := s.count
	for ch := range s.subs {
		deliverLatest(ch, n)
	}
	return n
}

// Subscribe returns a channel that receives every new count. A subscriber
// that falls behind only ever sees the latest value. The returned func
// unsubscribes and closes the channel.
func (s *RegistrationStore) Subscribe() (<-chan int64, func()) {
	ch := make(chan int64, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers reports how many subscriptions are open.
func (s *RegistrationStore) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Stats reads the count and derives the counter section against max.
func (s *RegistrationStore) Stats(max int64) models.RegistrationStats {
	return ComputeStats(s.Read(), max)
}

// deliverLatest replaces a pending stale value with n. Callers hold the
// store lock, so nothing else sends on ch concurrently.
func deliverLatest(ch chan int64, n int64) {
	select {
	case ch <- n:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- n:
	default:
	}
}

// ComputeStats derives progress, spots left and the low-spots flag. max is a
// display constant; count above max yields negative spots and >100%.
func ComputeStats(count, max int64) models.RegistrationStats {
	stats := models.RegistrationStats{
		Count:     count,
		Max:       max,
		SpotsLeft: max - count,
	}
	if max > 0 {
		stats.Percentage = math.Round(float64(count)/float64(max)*1000) / 10
	}
	stats.LowSpots = stats.SpotsLeft < LowSpotsThreshold
	return stats
}
