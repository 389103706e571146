package testutil

import (
	"sync"
	"testing"
	"time"
)

// FakeClock implements the recycling.Clock interface for testing with
// controllable time. It is used across rate limiter tests to avoid
// actual time delays.
type FakeClock struct {
	mu  sync.Mutex
	now int64
}

// NewFakeClock creates a new FakeClock starting at the given microsecond
// instant.
func NewFakeClock(startMicros int64) *FakeClock {
	return &FakeClock{now: startMicros}
}

// NowMicros returns the current fake time in microseconds.
func (c *FakeClock) NowMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the fake clock forward by the given duration.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d.Microseconds()
}

// AdvanceMicros moves the fake clock forward by the given number of
// microseconds.
func (c *FakeClock) AdvanceMicros(micros int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += micros
}

// Set sets the fake clock to a specific microsecond instant.
func (c *FakeClock) Set(micros int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = micros
}

// CallbackTracker records callback invocations for tests that need to
// assert a callback fired with a particular value.
type CallbackTracker struct {
	mu    sync.Mutex
	count int
	value interface{}
}

// NewCallbackTracker creates a new CallbackTracker.
func NewCallbackTracker() *CallbackTracker {
	return &CallbackTracker{}
}

// Mark records an invocation, optionally with a value.
func (ct *CallbackTracker) Mark(value ...interface{}) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.count++
	if len(value) > 0 {
		ct.value = value[len(value)-1]
	}
}

// Called reports whether the callback has been invoked at least once.
func (ct *CallbackTracker) Called() bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.count > 0
}

// CallCount returns the number of invocations recorded.
func (ct *CallbackTracker) CallCount() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.count
}

// Value returns the most recently recorded value.
func (ct *CallbackTracker) Value() interface{} {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.value
}

// Reset clears all recorded invocations.
func (ct *CallbackTracker) Reset() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.count = 0
	ct.value = nil
}

// AssertCalled fails the test if the callback was never invoked.
func (ct *CallbackTracker) AssertCalled(t testing.TB) {
	t.Helper()
	if !ct.Called() {
		t.Error("expected callback to be called")
	}
}

// AssertNotCalled fails the test if the callback was invoked.
func (ct *CallbackTracker) AssertNotCalled(t testing.TB) {
	t.Helper()
	if ct.Called() {
		t.Error("expected callback not to be called")
	}
}

// AssertCallCount fails the test if the invocation count differs from want.
func (ct *CallbackTracker) AssertCallCount(t testing.TB, want int) {
	t.Helper()
	if got := ct.CallCount(); got != want {
		t.Errorf("call count = %d, want %d", got, want)
	}
}
