/*
Package repermit provides a recyclable token-bucket rate limiter for Go.

Rate Limiting (pkg/ratelimit):
  - recycling: Token bucket that takes unused permits back and banks
    idle credit over a configurable burst window

Scheduling (pkg/scheduling):
  - rateplan: Cron-scheduled rate changes for time-of-day shaping

Example usage:

	import (
		"github.com/vnykmshr/repermit/pkg/ratelimit/recycling"
	)

	limiter, _ := recycling.New(100, 5) // 100 permits/sec, bank up to 5s

	limiter.Acquire()
	resp, err := client.Do(req)
	if isDuplicate(resp) {
		limiter.Recycle(1) // don't charge for retried work
	}
*/
package repermit
