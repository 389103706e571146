/*
Package recycling provides a token bucket rate limiter that can take
permits back.

Two things set it apart from a plain token bucket. Permits reserved but
never used can be recycled: a retried call is not charged twice, and an
abandoned speculative request gives its capacity back to whoever is
queued behind it. And idle credit accumulates over a configurable burst
window rather than a fixed one second, so a limiter left alone for a
while can absorb a proportionally larger burst.

Basic usage:

	limiter, err := recycling.New(100, 5) // 100 permits/sec, bank up to 5s of credit
	if err != nil {
		log.Fatal(err)
	}

	limiter.Acquire() // blocks until a permit is available
	resp, err := client.Do(req)
	if errors.Is(err, errDuplicate) {
		limiter.Recycle(1) // the permit went unused; give it back
	}

Unlike most token buckets, a fresh limiter starts empty: credit is
earned by idling, never granted up front. The first reservation is still
immediate, because the cost of a reservation is paid by whoever comes
next.

The accounting core is exposed as Ledger for callers that want to drive
time themselves; Limiter wraps a Ledger with a monotonic clock and
performs the actual sleeps. The ledger serializes concurrent
reservations through a virtual-time cursor, so its lock is only ever
held for O(1) arithmetic and throughput under contention is independent
of how long individual callers sleep.

Use NewWithMetrics to get Prometheus instrumentation for permit traffic,
wait times and banked credit.
*/
package recycling
