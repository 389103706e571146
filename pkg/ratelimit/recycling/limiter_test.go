package recycling

import (
	"context"
	"testing"
	"time"

	"github.com/vnykmshr/repermit/internal/testutil"
	"github.com/vnykmshr/repermit/pkg/common/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		window    float64
		wantError bool
	}{
		{"valid parameters", 10, 5, false},
		{"zero burst window", 10, 0, false},
		{"zero rate", 0, 5, true},
		{"negative rate", -1, 5, true},
		{"negative burst window", 10, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter, err := New(tt.rate, tt.window)

			if tt.wantError {
				testutil.AssertError(t, err)
				if !errors.IsValidationError(err) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if limiter != nil {
					t.Error("expected nil limiter on error")
				}
				return
			}

			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, limiter.Rate(), tt.rate)
			testutil.AssertEqual(t, limiter.BurstWindow(), tt.window)
			testutil.AssertEqual(t, limiter.Available(), 0.0)
		})
	}
}

func TestAcquirePacing(t *testing.T) {
	// 100 permits/sec: each fresh permit costs 10ms. The first acquire
	// is immediate; its cost lands on the second.
	limiter, err := New(100, 1)
	testutil.AssertNoError(t, err)

	first := limiter.Acquire()
	testutil.AssertEqual(t, first, time.Duration(0))

	start := time.Now()
	second := limiter.Acquire()
	elapsed := time.Since(start)

	if second <= 0 {
		t.Errorf("second acquire should wait, waited %v", second)
	}
	if elapsed < 5*time.Millisecond {
		t.Errorf("second acquire returned after %v, expected ~10ms sleep", elapsed)
	}
}

func TestAcquireSpendsBankedCredit(t *testing.T) {
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 5, BurstWindow: 2, Clock: clock})
	testutil.AssertNoError(t, err)

	clock.Advance(time.Second)
	testutil.AssertEqual(t, limiter.Available(), 5.0)

	// Fully banked reservations never sleep.
	testutil.AssertEqual(t, limiter.AcquireN(5), time.Duration(0))
	testutil.AssertEqual(t, limiter.Available(), 0.0)
}

func TestWaitContextCanceled(t *testing.T) {
	limiter, err := New(10, 1)
	testutil.AssertNoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait on canceled context = %v, want context.Canceled", err)
	}
}

func TestWaitCancellationRecycles(t *testing.T) {
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 1, BurstWindow: 1, Clock: clock})
	testutil.AssertNoError(t, err)

	// First wait is free; the second owes a full second.
	testutil.AssertNoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- limiter.Wait(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; err != context.Canceled {
		t.Fatalf("Wait = %v, want context.Canceled", err)
	}

	// The abandoned permit went back, shrinking the queue to just the
	// first wait's debt. Once that passes, the next reservation is
	// immediate again; had the permit stayed committed, the cursor would
	// still be a full second out.
	clock.Advance(time.Second)
	if !limiter.TryAcquire() {
		t.Error("permit should be available again after cancellation recycled it")
	}
}

func TestWaitNonPositivePermits(t *testing.T) {
	limiter, err := New(1, 1)
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, limiter.WaitN(context.Background(), 0))
	testutil.AssertNoError(t, limiter.WaitN(context.Background(), -3))
}

func TestTryAcquire(t *testing.T) {
	limiter, err := New(10, 1)
	testutil.AssertNoError(t, err)

	// Fresh limiter: the queue is empty, so an immediate grab succeeds
	// and queues its cost behind it.
	if !limiter.TryAcquire() {
		t.Fatal("first TryAcquire should succeed")
	}

	// The cursor now sits 100ms out; a zero-timeout attempt refuses
	// without committing anything.
	if limiter.TryAcquire() {
		t.Error("second immediate TryAcquire should fail")
	}

	// A timeout covering the backlog commits and sleeps it out.
	start := time.Now()
	if !limiter.TryAcquireN(1, 200*time.Millisecond) {
		t.Fatal("TryAcquireN within timeout should succeed")
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("TryAcquireN returned after %v, expected ~100ms sleep", elapsed)
	}
}

func TestTryAcquireDoesNotCommitOnRefusal(t *testing.T) {
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 5, BurstWindow: 2, Clock: clock})
	testutil.AssertNoError(t, err)

	limiter.AcquireN(10) // cursor two seconds out

	for i := 0; i < 5; i++ {
		if limiter.TryAcquireN(1, 0) {
			t.Fatal("TryAcquireN should refuse while deep in debt")
		}
	}

	// Refusals committed nothing: once the debt passes, credit accrues
	// exactly as if the refused attempts never happened.
	clock.Advance(4 * time.Second)
	testutil.AssertEqual(t, limiter.Available(), 10.0)
}

func TestRecycleThroughLimiter(t *testing.T) {
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 5, BurstWindow: 2, Clock: clock})
	testutil.AssertNoError(t, err)

	clock.Advance(time.Second)
	limiter.AcquireN(5)
	testutil.AssertEqual(t, limiter.Available(), 0.0)

	limiter.Recycle(3)
	testutil.AssertEqual(t, limiter.Available(), 3.0)
}

func TestSetRateThroughLimiter(t *testing.T) {
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 5, BurstWindow: 2, Clock: clock})
	testutil.AssertNoError(t, err)

	clock.Advance(time.Second)
	testutil.AssertEqual(t, limiter.Available(), 5.0)

	testutil.AssertNoError(t, limiter.SetRate(10))
	testutil.AssertEqual(t, limiter.Rate(), 10.0)
	testutil.AssertEqual(t, limiter.Available(), 10.0)

	testutil.AssertError(t, limiter.SetRate(0))
}

func TestImmediatelyAvailableThroughLimiter(t *testing.T) {
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 5, BurstWindow: 2, Clock: clock})
	testutil.AssertNoError(t, err)

	clock.Advance(time.Second)
	if !limiter.ImmediatelyAvailable(5) {
		t.Error("5 permits should be immediately available")
	}
	if limiter.ImmediatelyAvailable(6) {
		t.Error("6 permits should not be immediately available")
	}
}

func TestConcurrentAcquire(t *testing.T) {
	// Many goroutines race reservations; the accounting must stay
	// consistent and every caller must get a ticket.
	clock := testutil.NewFakeClock(0)
	limiter, err := NewWithConfig(Config{Rate: 1000, BurstWindow: 1, Clock: clock})
	testutil.AssertNoError(t, err)

	clock.Advance(time.Second) // bank the full 1000

	const goroutines = 20
	const perGoroutine = 50

	done := make(chan struct{}, goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < perGoroutine; j++ {
				limiter.AcquireN(1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < goroutines; i++ {
		<-done
	}

	// Exactly the banked amount was consumed with no sleeps owed.
	testutil.AssertEqual(t, limiter.Available(), 0.0)
}
