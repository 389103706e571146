package recycling

import (
	"fmt"
	"math"
	"sync"

	"github.com/vnykmshr/repermit/pkg/common/validation"
)

const microsPerSecond = 1e6

// Ledger is the permit accounting core of the recyclable rate limiter.
// It banks credit for idle time (up to one burst window's worth), hands
// out reservations as virtual-time tickets, and accepts unused permits
// back. All methods are O(1) under a single mutex; nothing ever sleeps
// while holding it. Time is supplied by the caller as monotonic
// microseconds, which keeps the ledger deterministic under test.
type Ledger struct {
	mu sync.Mutex

	// storedPermits is the credit currently banked, 0 <= storedPermits <= maxPermits.
	storedPermits float64

	// maxPermits is the burst cap, always ratePerSecond * burstWindowSeconds.
	maxPermits float64

	// stableIntervalMicros is the cost of one permit at the current rate.
	stableIntervalMicros float64

	// nextFreeTicketMicros is the virtual-time cursor: the instant at which
	// the next reservation is fully satisfied. In the past when the limiter
	// is idle, in the future when it is in debt. Saturates at MaxInt64.
	nextFreeTicketMicros int64

	// burstWindowSeconds is how many seconds' worth of permits may be
	// banked. Fixed at construction; zero disables banking entirely.
	burstWindowSeconds float64
}

// NewLedger creates a ledger with the given rate and burst window,
// anchored at nowMicros. The ledger starts with zero stored credit;
// banking begins only once the limiter has been idle.
// The rate must be positive and the window non-negative.
func NewLedger(ratePerSecond, burstWindowSeconds float64, nowMicros int64) (*Ledger, error) {
	if err := validation.ValidateNonNegative("recycling", "burstWindowSeconds", burstWindowSeconds); err != nil {
		return nil, err
	}

	l := &Ledger{
		burstWindowSeconds:   burstWindowSeconds,
		nextFreeTicketMicros: nowMicros,
	}
	if err := l.SetRate(ratePerSecond, nowMicros); err != nil {
		return nil, err
	}
	return l, nil
}

// AvailablePermits returns the credit currently banked, after crediting
// any idle time up to nowMicros.
func (l *Ledger) AvailablePermits(nowMicros int64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resync(nowMicros)
	return l.storedPermits
}

// ImmediatelyAvailable reports whether a reservation for the given number
// of permits would be granted without any wait.
func (l *Ledger) ImmediatelyAvailable(permits int, nowMicros int64) bool {
	checkPermits(permits)
	return l.AvailablePermits(nowMicros) >= float64(permits)
}

// Reserve commits a reservation for the given number of permits and
// returns the ticket: the instant the reservation's permits become
// available, which the caller must wait until. A ticket at or before
// nowMicros means the permits are available immediately.
//
// Stored credit is spent first; the remainder is charged as wait time
// appended to the cursor, so concurrent reservations queue behind each
// other without ever blocking inside the ledger.
func (l *Ledger) Reserve(permits int, nowMicros int64) int64 {
	checkPermits(permits)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.resync(nowMicros)
	ticket := l.nextFreeTicketMicros
	spend := math.Min(float64(permits), l.storedPermits)
	fresh := float64(permits) - spend

	l.nextFreeTicketMicros = saturatingAddMicros(l.nextFreeTicketMicros, permitsToMicros(fresh, l.stableIntervalMicros))
	l.storedPermits -= spend
	return ticket
}

// EarliestAvailable returns the raw virtual-time cursor without resyncing.
// It is a peek for callers deciding whether a reservation would complete
// within a deadline; it commits nothing and accrues no credit.
func (l *Ledger) EarliestAvailable() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextFreeTicketMicros
}

// Recycle returns permits previously obtained via Reserve but not used.
// Returned permits first shrink the queue of reservations still pending
// in virtual time, shortening the wait for everyone queued behind;
// anything beyond the pending amount drains the queue entirely and is
// banked as stored credit, capped at the burst limit.
func (l *Ledger) Recycle(permits int, nowMicros int64) {
	checkPermits(permits)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.resync(nowMicros)
	pending := math.Trunc(float64(l.nextFreeTicketMicros-nowMicros) / l.stableIntervalMicros)
	surplus := float64(permits) - pending

	waitMicros := clampMicros(-math.Min(surplus*l.stableIntervalMicros, 0))
	l.nextFreeTicketMicros = saturatingAddMicros(nowMicros, waitMicros)
	l.storedPermits = math.Min(l.maxPermits, l.storedPermits+math.Max(surplus, 0))
}

// SetRate changes the rate, effective for all subsequent reservations.
// Stored credit is rescaled so the banked fraction of the burst cap is
// preserved; tickets already handed out are not revisited. The rate must
// be positive.
func (l *Ledger) SetRate(ratePerSecond float64, nowMicros int64) error {
	if err := validation.ValidatePositiveFloat("recycling", "ratePerSecond", ratePerSecond); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.resync(nowMicros)
	l.stableIntervalMicros = microsPerSecond / ratePerSecond
	oldMaxPermits := l.maxPermits
	l.maxPermits = l.burstWindowSeconds * ratePerSecond
	if oldMaxPermits == 0 {
		// Initial state: a rate assignment alone grants no credit.
		l.storedPermits = 0
	} else {
		l.storedPermits = l.storedPermits * l.maxPermits / oldMaxPermits
	}
	return nil
}

// Rate returns the current rate in permits per second.
func (l *Ledger) Rate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return microsPerSecond / l.stableIntervalMicros
}

// BurstWindow returns the configured accumulation window in seconds.
func (l *Ledger) BurstWindow() float64 {
	return l.burstWindowSeconds
}

// resync converts idle time since the last reservation into stored
// credit and advances the cursor to nowMicros. It is the only place
// elapsed time becomes credit; every mutating or reading operation
// calls it first. A cursor in the future means the limiter is still in
// debt and nothing accrues.
func (l *Ledger) resync(nowMicros int64) {
	if nowMicros > l.nextFreeTicketMicros {
		l.storedPermits = math.Min(l.maxPermits,
			l.storedPermits+float64(nowMicros-l.nextFreeTicketMicros)/l.stableIntervalMicros)
		l.nextFreeTicketMicros = nowMicros
	}
}

// permitsToMicros converts a permit count into wait time at the given
// interval, pinning at MaxInt64 instead of overflowing the conversion.
func permitsToMicros(permits, stableIntervalMicros float64) int64 {
	return clampMicros(permits * stableIntervalMicros)
}

// clampMicros converts a non-negative microsecond quantity to int64,
// pinning at MaxInt64 where the float conversion would overflow.
func clampMicros(micros float64) int64 {
	if micros >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(micros)
}

// saturatingAddMicros adds a non-negative wait to an instant, pinning at
// MaxInt64 so an extreme backlog degrades to "wait forever" rather than
// wrapping the cursor.
func saturatingAddMicros(instantMicros, waitMicros int64) int64 {
	if instantMicros > math.MaxInt64-waitMicros {
		return math.MaxInt64
	}
	return instantMicros + waitMicros
}

func checkPermits(permits int) {
	if permits < 0 {
		panic(fmt.Sprintf("recycling: permit count cannot be negative: %d", permits))
	}
}
