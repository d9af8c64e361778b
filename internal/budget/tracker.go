// Package budget tracks external API spend against a per-resource daily cap
// and a shared monthly cap. Counters are process-local by design: the caps
// are a soft operational guard, not a billing-critical invariant, and they
// reset on restart.
package budget

import (
	"sync"
	"time"
)

// PerResourceDailyCap limits how many times one resource (a city) may be
// refreshed within a calendar day. Two slots per day round-robins coverage
// across the twice-daily sync passes.
const PerResourceDailyCap = 2

type dailyUsage struct {
	day   string
	count int
}

type monthlyUsage struct {
	month string
	count int
}

// Tracker decides whether a scheduled external fetch may proceed. Period
// keys roll over automatically when the observed wall-clock day or month
// changes; no reset job is needed.
type Tracker struct {
	mu         sync.Mutex
	monthlyCap int
	now        func() time.Time

	monthly monthlyUsage
	daily   map[string]dailyUsage
}

// New creates a tracker with the given monthly cap. now is injectable for
// deterministic tests; pass nil for wall-clock time.
func New(monthlyCap int, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		monthlyCap: monthlyCap,
		now:        now,
		daily:      make(map[string]dailyUsage),
	}
}

func (t *Tracker) dayKey() string   { return t.now().UTC().Format("2006-01-02") }
func (t *Tracker) monthKey() string { return t.now().UTC().Format("2006-01") }

// CanFetch reports whether resource may be fetched now: its daily count is
// under the per-resource cap and the shared monthly count is under the
// monthly cap.
func (t *Tracker) CanFetch(resource string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.monthlyCount() >= t.monthlyCap {
		return false
	}

	usage, ok := t.daily[resource]
	if !ok || usage.day != t.dayKey() {
		return true
	}
	return usage.count < PerResourceDailyCap
}

// RecordFetch attributes one external call to resource, incrementing both
// the daily and monthly counters. Call exactly once per successful call
// attribution, regardless of how many items it returned.
func (t *Tracker) RecordFetch(resource string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	day := t.dayKey()
	usage, ok := t.daily[resource]
	if !ok || usage.day != day {
		t.daily[resource] = dailyUsage{day: day, count: 1}
	} else {
		usage.count++
		t.daily[resource] = usage
	}

	month := t.monthKey()
	if t.monthly.month != month {
		t.monthly = monthlyUsage{month: month, count: 1}
	} else {
		t.monthly.count++
	}
}

// Exhausted reports whether the shared monthly cap has been reached. Used
// to short-circuit an entire scheduling pass before iterating resources.
func (t *Tracker) Exhausted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.monthlyCount() >= t.monthlyCap
}

// Usage returns the current monthly count and the configured cap.
func (t *Tracker) Usage() (used, cap int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.monthlyCount(), t.monthlyCap
}

// monthlyCount reads the monthly counter, rolling it over if the month
// changed. Callers must hold mu.
func (t *Tracker) monthlyCount() int {
	month := t.monthKey()
	if t.monthly.month != month {
		t.monthly = monthlyUsage{month: month}
	}
	return t.monthly.count
}
