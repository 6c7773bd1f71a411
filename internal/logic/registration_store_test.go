package logic

import (
	"sync"
	"testing"
	"time"
)

func TestRegistrationStore_ReadIncrement(t *testing.T) {
	store := NewRegistrationStore(87)

	if got := store.Read(); got != 87 {
		t.Fatalf("Read() = %d, want seed 87", got)
	}
	if got := store.Increment(); got != 88 {
		t.Errorf("Increment() = %d, want 88", got)
	}
	if got := store.Increment(); got != 89 {
		t.Errorf("second Increment() = %d, want 89 (not idempotent)", got)
	}
	if got := store.Read(); got != 89 {
		t.Errorf("Read() = %d, want 89", got)
	}
}

func TestRegistrationStore_NegativeSeed(t *testing.T) {
	if got := NewRegistrationStore(-5).Read(); got != 0 {
		t.Errorf("Read() = %d, want 0 for negative seed", got)
	}
}

func TestRegistrationStore_ConcurrentIncrements(t *testing.T) {
	store := NewRegistrationStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Increment()
		}()
	}
	wg.Wait()

	if got := store.Read(); got != 200 {
		t.Errorf("Read() = %d, want 200", got)
	}
}

func TestRegistrationStore_NoUpperBound(t *testing.T) {
	store := NewRegistrationStore(128)
	store.Increment()

	stats := store.Stats(128)
	if stats.Count != 129 || stats.SpotsLeft != -1 {
		t.Errorf("Stats = %+v, want count 129 and spotsLeft -1", stats)
	}
}

func TestRegistrationStore_SubscribeGetsLatest(t *testing.T) {
	store := NewRegistrationStore(10)
	ch, unsubscribe := store.Subscribe()
	defer unsubscribe()

	store.Increment()
	store.Increment()
	store.Increment()

	select {
	case got := <-ch:
		if got != 13 {
			t.Errorf("subscriber got %d, want latest value 13", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no value delivered to subscriber")
	}

	select {
	case extra := <-ch:
		t.Errorf("unexpected extra value %d", extra)
	default:
	}
}

func TestRegistrationStore_Unsubscribe(t *testing.T) {
	store := NewRegistrationStore(0)
	ch, unsubscribe := store.Subscribe()

	if store.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", store.Subscribers())
	}
	unsubscribe()
	unsubscribe()

	if store.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, want 0", store.Subscribers())
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	// Must not panic on the closed channel.
	store.Increment()
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		max       int64
		wantPct   float64
		wantSpots int64
		wantLow   bool
	}{
		{"Seed", 87, 128, 68.0, 41, false},
		{"Empty", 0, 128, 0, 128, false},
		{"Almost Full", 110, 128, 85.9, 18, true},
		{"Threshold", 108, 128, 84.4, 20, false},
		{"Full", 128, 128, 100, 0, true},
		{"Zero Max", 5, 0, 0, -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.count, tt.max)
			if got.Percentage != tt.wantPct {
				t.Errorf("Percentage = %v, want %v", got.Percentage, tt.wantPct)
			}
			if got.SpotsLeft != tt.wantSpots {
				t.Errorf("SpotsLeft = %d, want %d", got.SpotsLeft, tt.wantSpots)
			}
			if got.LowSpots != tt.wantLow {
				t.Errorf("LowSpots = %v, want %v", got.LowSpots, tt.wantLow)
			}
		})
	}
}
