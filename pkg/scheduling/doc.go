/*
Package scheduling provides time-based control over rate limiters.

The rateplan package applies cron-scheduled rate changes to a limiter,
the usual tool for time-of-day traffic shaping:

	plan, _ := rateplan.New("ingest", limiter,
		rateplan.Entry{Schedule: "0 9 * * 1-5", Rate: 50},
		rateplan.Entry{Schedule: "0 19 * * 1-5", Rate: 200},
	)
	plan.Start()
	defer plan.Stop()
*/
package scheduling
