/*
Package ratelimit provides rate limiting primitives for Go applications.

The recycling package implements a token bucket with two twists over
the classic algorithm:

  - Permits reserved but never consumed can be given back, so retries
    and abandoned speculative requests are not charged
  - Idle credit accumulates over a configurable burst window rather
    than a fixed one second

	limiter, _ := recycling.New(10, 5) // 10 permits/sec, bank up to 5s
	limiter.Acquire()

The limiter supports:
  - Context-aware blocking operations (Wait/WaitN) that recycle
    their permits on cancellation
  - Bounded acquisition (TryAcquireN) that refuses without committing
  - Dynamic rate changes with proportional rescaling of banked credit
  - Prometheus instrumentation via NewWithMetrics
*/
package ratelimit
