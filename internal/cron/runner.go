// Package cron schedules the background refresh passes: external event
// ingestion and places cache maintenance.
package cron

import (
	"context"
	"log"
	"time"
)

// Job is a single maintenance pass. Errors are logged, never fatal; the
// next scheduled run always happens.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner fires a job daily at one or more fixed UTC hours.
type Runner struct {
	job   Job
	hours []int
	now   func() time.Time
}

func NewRunner(job Job, utcHours ...int) *Runner {
	return &Runner{job: job, hours: utcHours, now: time.Now}
}

// Start launches the schedule loop in a goroutine. It stops when ctx is
// cancelled. When kickOff is set, the job also runs once shortly after
// startup, which keeps local development environments populated.
func (r *Runner) Start(ctx context.Context, kickOff bool) {
	go r.loop(ctx, kickOff)
}

func (r *Runner) loop(ctx context.Context, kickOff bool) {
	if kickOff {
		select {
		case <-time.After(10 * time.Second):
			r.runOnce(ctx)
		case <-ctx.Done():
			return
		}
	}

	for {
		wait := r.untilNextRun()
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			r.runOnce(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

func (r *Runner) untilNextRun() time.Duration {
	now := r.now().UTC()
	var next time.Time
	for _, hour := range r.hours {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
		if !candidate.After(now) {
			candidate = candidate.Add(24 * time.Hour)
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next.Sub(now)
}

func (r *Runner) runOnce(ctx context.Context) {
	started := r.now()
	log.Printf("[cron] %s: starting", r.job.Name())
	if err := r.job.Run(ctx); err != nil {
		log.Printf("[cron] %s: failed after %s: %v", r.job.Name(), time.Since(started).Round(time.Millisecond), err)
		return
	}
	log.Printf("[cron] %s: done in %s", r.job.Name(), time.Since(started).Round(time.Millisecond))
}
