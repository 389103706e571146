package rateplan

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/repermit/pkg/common/errors"
	"github.com/vnykmshr/repermit/pkg/common/validation"
	"github.com/vnykmshr/repermit/pkg/metrics"
)

// RateSetter is the slice of a rate limiter a plan drives. The
// recyclable limiter in pkg/ratelimit/recycling satisfies it.
type RateSetter interface {
	SetRate(ratePerSecond float64) error
}

// Entry pairs a cron schedule with the rate to install when it fires.
type Entry struct {
	// Schedule is a standard 5-field cron expression or a descriptor
	// such as "@hourly".
	Schedule string

	// Rate is the limit, in permits per second, applied when the
	// schedule fires.
	Rate float64
}

// ScheduledEntry is an Entry together with its next activation time.
type ScheduledEntry struct {
	Entry
	Next time.Time
}

// Config holds configuration options for creating a new Plan.
type Config struct {
	// Name identifies the plan in errors and metrics.
	Name string

	// Target is the limiter whose rate the plan drives.
	Target RateSetter

	// Entries are the scheduled rate windows.
	Entries []Entry

	// Location is the timezone for schedule evaluation. If nil,
	// time.Local is used.
	Location *time.Location

	// OnError is called when applying an entry's rate fails. Optional.
	OnError func(entry Entry, err error)
}

// Plan applies scheduled rate changes to a rate limiter. Operators use
// it to widen a limit during off-peak windows and tighten it again for
// business hours without redeploying.
type Plan struct {
	name     string
	target   RateSetter
	entries  []Entry
	location *time.Location
	onError  func(Entry, error)

	registry *metrics.Registry

	mu   sync.Mutex
	cron *cron.Cron
}

// standard 5-field cron plus @descriptors, matching what operators
// write in crontabs.
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a plan applying the given entries to target.
func New(name string, target RateSetter, entries ...Entry) (*Plan, error) {
	return NewWithConfig(Config{
		Name:    name,
		Target:  target,
		Entries: entries,
	})
}

// NewWithConfig creates a plan from a Config. Every entry's schedule
// and rate are validated up front, so a plan that constructs will not
// fail to parse at activation time.
func NewWithConfig(config Config) (*Plan, error) {
	if err := validation.ValidateNotEmpty("rateplan", "name", config.Name); err != nil {
		return nil, err
	}
	if config.Target == nil {
		return nil, errors.NewValidationError("rateplan", "target", nil, "cannot be nil").
			WithHint("provide the limiter the plan should drive")
	}
	if len(config.Entries) == 0 {
		return nil, errors.NewValidationError("rateplan", "entries", 0, "cannot be empty").
			WithHint("a plan needs at least one scheduled rate")
	}

	for _, entry := range config.Entries {
		if err := validation.ValidatePositiveFloat("rateplan", "rate", entry.Rate); err != nil {
			return nil, err
		}
		if _, err := parser.Parse(entry.Schedule); err != nil {
			return nil, errors.NewValidationError("rateplan", "schedule", entry.Schedule, "not a valid cron expression").
				WithHint(err.Error())
		}
	}

	location := config.Location
	if location == nil {
		location = time.Local
	}

	return &Plan{
		name:     config.Name,
		target:   config.Target,
		entries:  config.Entries,
		location: location,
		onError:  config.OnError,
	}, nil
}

// Name returns the plan's name.
func (p *Plan) Name() string {
	return p.name
}

// Start begins evaluating the plan's schedules. It is a no-op if the
// plan is already running.
func (p *Plan) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil {
		return
	}

	runner := cron.New(cron.WithLocation(p.location), cron.WithParser(parser))
	for _, entry := range p.entries {
		entry := entry
		// Schedules were validated at construction; AddFunc cannot fail.
		_, _ = runner.AddFunc(entry.Schedule, func() {
			p.apply(entry)
		})
	}
	runner.Start()
	p.cron = runner
}

// Stop halts schedule evaluation. Entries already firing complete; no
// new ones start. The plan can be started again afterwards.
func (p *Plan) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron == nil {
		return
	}
	p.cron.Stop()
	p.cron = nil
}

// Entries returns the plan's entries with their next activation times,
// evaluated from now in the plan's location.
func (p *Plan) Entries() []ScheduledEntry {
	now := time.Now().In(p.location)

	scheduled := make([]ScheduledEntry, 0, len(p.entries))
	for _, entry := range p.entries {
		schedule, err := parser.Parse(entry.Schedule)
		if err != nil {
			continue // validated at construction; unreachable
		}
		scheduled = append(scheduled, ScheduledEntry{
			Entry: entry,
			Next:  schedule.Next(now),
		})
	}
	return scheduled
}

// apply installs an entry's rate on the target.
func (p *Plan) apply(entry Entry) {
	if err := p.target.SetRate(entry.Rate); err != nil {
		if p.registry != nil {
			p.registry.RatePlanFailed.WithLabelValues(p.name).Inc()
		}
		if p.onError != nil {
			p.onError(entry, errors.NewOperationError("rateplan", "apply", err).
				WithContext("plan "+p.name))
		}
		return
	}
	if p.registry != nil {
		p.registry.RatePlanApplied.WithLabelValues(p.name).Inc()
	}
}
