/*
Package rateplan applies scheduled rate changes to a rate limiter.

A Plan holds cron-scheduled rate windows and installs each rate on its
target limiter when the schedule fires. The typical use is time-of-day
shaping: a generous limit overnight when the downstream is quiet, a
conservative one during business hours.

	limiter, _ := recycling.New(50, 5)

	plan, err := rateplan.New("ingest", limiter,
		rateplan.Entry{Schedule: "0 9 * * 1-5", Rate: 50},   // business hours
		rateplan.Entry{Schedule: "0 19 * * 1-5", Rate: 200}, // evenings
	)
	if err != nil {
		log.Fatal(err)
	}
	plan.Start()
	defer plan.Stop()

Schedules use the standard 5-field cron format plus descriptors like
"@hourly". All schedules and rates are validated at construction, so a
plan that builds will not fail to parse later.

Because the recyclable limiter rescales banked credit proportionally on
a rate change, a plan switching rates preserves the fraction of burst
capacity the limiter had saved up.
*/
package rateplan
