package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

// TestConcurrentWithdrawalClamp simulates many goroutines simultaneously
// approving withdrawals against a shared principal, each clamped at zero —
// protected by a mutex. This verifies the fund-wide serialization pattern
// compiles and passes -race.
//
// In the real FundingService, the process mutex plus the DB FOR UPDATE row
// lock provide this guarantee. Here we replicate the same guard with sync
// primitives so the race detector can confirm the pattern is sound.
func TestConcurrentWithdrawalClamp(t *testing.T) {
	const workers = 50

	invested := decimal.NewFromInt(3000)
	requested := decimal.NewFromInt(200) // 50 × 200 = 10000, far above principal
	var mu sync.Mutex
	totalApplied := decimal.Zero

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			mu.Lock()
			defer mu.Unlock()

			applied := requested
			if applied.GreaterThan(invested) {
				applied = invested
			}
			invested = invested.Sub(applied)
			totalApplied = totalApplied.Add(applied)
		}()
	}
	wg.Wait()

	// The principal must land on exactly zero, never negative.
	if !invested.IsZero() {
		t.Errorf("final principal should be 0, got %s", invested)
	}
	// The applied total equals the starting principal, not the requested sum.
	if !totalApplied.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("total applied should be 3000, got %s", totalApplied)
	}
}

// TestConcurrentResolutionGuard verifies that the once-only day resolution
// holds under concurrent triggers: only one of N goroutines resolves the day.
func TestConcurrentResolutionGuard(t *testing.T) {
	const workers = 20
	type dayState struct {
		mu       sync.Mutex
		resolved bool
	}

	var (
		d        dayState
		resolved int64
		rejected int64
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			d.mu.Lock()
			defer d.mu.Unlock()

			if d.resolved {
				// Second+ trigger: the unique date constraint rejects it
				atomic.AddInt64(&rejected, 1)
				return
			}
			d.resolved = true
			atomic.AddInt64(&resolved, 1)
		}()
	}
	wg.Wait()

	if resolved != 1 {
		t.Errorf("exactly 1 goroutine should have resolved the day, got %d", resolved)
	}
	if rejected != workers-1 {
		t.Errorf("expected %d rejections, got %d", workers-1, rejected)
	}
}
