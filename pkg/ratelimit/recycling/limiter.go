package recycling

import (
	"context"
	"math"
	"time"
)

// Limiter controls the frequency of events with a recyclable token
// bucket. Beyond the usual acquire/wait surface it lets callers return
// permits they reserved but did not use, so a retried or abandoned
// operation is not charged twice, and it banks credit for idle time
// over a configurable burst window rather than a fixed one second.
type Limiter interface {
	// Acquire blocks until one permit is available and returns the time
	// actually spent waiting.
	Acquire() time.Duration

	// AcquireN blocks until n permits are available and returns the time
	// actually spent waiting.
	AcquireN(n int) time.Duration

	// Wait blocks until one permit is available. It returns an error if
	// the context is canceled first; the committed permit is recycled.
	Wait(ctx context.Context) error

	// WaitN blocks until n permits are available. It returns an error if
	// the context is canceled first; the committed permits are recycled.
	WaitN(ctx context.Context, n int) error

	// TryAcquire acquires one permit only if it is available immediately.
	TryAcquire() bool

	// TryAcquireN acquires n permits only if the reservation would
	// complete within the timeout. It decides by peeking at the queue,
	// so a negative decision commits nothing.
	TryAcquireN(n int, timeout time.Duration) bool

	// Recycle returns n permits previously acquired but not used.
	Recycle(n int)

	// Available returns the number of permits currently banked as credit.
	Available() float64

	// ImmediatelyAvailable reports whether n permits would be granted
	// without any wait.
	ImmediatelyAvailable(n int) bool

	// SetRate changes the rate limit, rescaling banked credit
	// proportionally.
	SetRate(ratePerSecond float64) error

	// Rate returns the current rate in permits per second.
	Rate() float64

	// BurstWindow returns the accumulation window in seconds.
	BurstWindow() float64
}

// Config holds configuration options for creating a new Limiter.
type Config struct {
	// Rate is the number of permits replenished per second.
	Rate float64

	// BurstWindow is how many seconds' worth of unused permits may be
	// banked as credit. Zero disables banking.
	BurstWindow float64

	// Clock provides monotonic time. If nil, a SystemClock is used.
	Clock Clock
}

// limiter implements Limiter by pairing a Ledger with a Clock and
// performing the actual sleeps. The ledger's lock is never held while
// sleeping, so concurrent callers serialize only on O(1) accounting.
type limiter struct {
	ledger *Ledger
	clock  Clock
}

// New creates a recyclable rate limiter with the given rate and burst
// window. The limiter starts with no banked credit; credit accrues only
// while it sits idle.
func New(ratePerSecond, burstWindowSeconds float64) (Limiter, error) {
	return NewWithConfig(Config{
		Rate:        ratePerSecond,
		BurstWindow: burstWindowSeconds,
	})
}

// NewWithConfig creates a recyclable rate limiter from a Config.
func NewWithConfig(config Config) (Limiter, error) {
	if config.Clock == nil {
		config.Clock = NewSystemClock()
	}

	ledger, err := NewLedger(config.Rate, config.BurstWindow, config.Clock.NowMicros())
	if err != nil {
		return nil, err
	}

	return &limiter{
		ledger: ledger,
		clock:  config.Clock,
	}, nil
}

// Acquire blocks until one permit is available.
func (lim *limiter) Acquire() time.Duration {
	return lim.AcquireN(1)
}

// AcquireN blocks until n permits are available.
func (lim *limiter) AcquireN(n int) time.Duration {
	now := lim.clock.NowMicros()
	ticket := lim.ledger.Reserve(n, now)

	wait := ticketDelay(ticket, now)
	if wait > 0 {
		time.Sleep(wait)
	}
	return wait
}

// Wait blocks until one permit is available or ctx is canceled.
func (lim *limiter) Wait(ctx context.Context) error {
	return lim.WaitN(ctx, 1)
}

// WaitN blocks until n permits are available or ctx is canceled.
// Cancellation recycles the permits this call had already committed, so
// an abandoned wait does not keep later callers queued behind it.
func (lim *limiter) WaitN(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := lim.clock.NowMicros()
	ticket := lim.ledger.Reserve(n, now)

	wait := ticketDelay(ticket, now)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		lim.ledger.Recycle(n, lim.clock.NowMicros())
		return ctx.Err()
	}
}

// TryAcquire acquires one permit only if it is available immediately.
func (lim *limiter) TryAcquire() bool {
	return lim.TryAcquireN(1, 0)
}

// TryAcquireN acquires n permits only if the reservation would complete
// within the timeout, sleeping out any wait shorter than the timeout.
func (lim *limiter) TryAcquireN(n int, timeout time.Duration) bool {
	now := lim.clock.NowMicros()
	if !lim.wouldCompleteWithin(now, timeout) {
		return false
	}

	ticket := lim.ledger.Reserve(n, now)
	if wait := ticketDelay(ticket, now); wait > 0 {
		time.Sleep(wait)
	}
	return true
}

// wouldCompleteWithin peeks at the queue without committing anything.
// The cursor is read un-resynced: a stale (past) cursor only makes the
// answer more permissive, and the subsequent Reserve settles the truth.
func (lim *limiter) wouldCompleteWithin(nowMicros int64, timeout time.Duration) bool {
	return lim.ledger.EarliestAvailable()-timeout.Microseconds() <= nowMicros
}

// Recycle returns n permits previously acquired but not used.
func (lim *limiter) Recycle(n int) {
	lim.ledger.Recycle(n, lim.clock.NowMicros())
}

// Available returns the number of permits currently banked as credit.
func (lim *limiter) Available() float64 {
	return lim.ledger.AvailablePermits(lim.clock.NowMicros())
}

// ImmediatelyAvailable reports whether n permits would be granted now.
func (lim *limiter) ImmediatelyAvailable(n int) bool {
	return lim.ledger.ImmediatelyAvailable(n, lim.clock.NowMicros())
}

// SetRate changes the rate limit.
func (lim *limiter) SetRate(ratePerSecond float64) error {
	return lim.ledger.SetRate(ratePerSecond, lim.clock.NowMicros())
}

// Rate returns the current rate limit.
func (lim *limiter) Rate() float64 {
	return lim.ledger.Rate()
}

// BurstWindow returns the accumulation window in seconds.
func (lim *limiter) BurstWindow() float64 {
	return lim.ledger.BurstWindow()
}

// ticketDelay converts a reservation ticket into the wait the caller
// owes, zero when the ticket is already due. A backlog near the
// saturated cursor caps at the maximum Duration rather than wrapping.
func ticketDelay(ticketMicros, nowMicros int64) time.Duration {
	if ticketMicros <= nowMicros {
		return 0
	}
	micros := ticketMicros - nowMicros
	if micros > math.MaxInt64/int64(time.Microsecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(micros) * time.Microsecond
}
