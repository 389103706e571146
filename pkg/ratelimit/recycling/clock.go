package recycling

import "time"

// Clock supplies monotonic microsecond timestamps for the ledger.
// Implementations must never run backwards, wall-clock adjustments
// included. It can be mocked for testing.
type Clock interface {
	NowMicros() int64
}

// SystemClock implements Clock by reading elapsed time since an epoch
// captured at construction, which rides Go's monotonic clock and is
// immune to wall-clock steps.
type SystemClock struct {
	epoch time.Time
}

// NewSystemClock creates a SystemClock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{epoch: time.Now()}
}

// NowMicros returns microseconds elapsed since the clock was created.
func (c *SystemClock) NowMicros() int64 {
	return time.Since(c.epoch).Microseconds()
}
