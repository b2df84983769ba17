// Package scheduler runs jobs on wall-clock aligned boundaries, so a
// 5-minute job ticks at :00, :05, :10 regardless of when the process
// started. An offset shifts a job's boundary, letting the alert scan
// trail the trending publish inside the same interval.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/dexpulse/trendwatch/internal/metrics"
	"github.com/sirupsen/logrus"
)

// pollGranularity bounds how far past a boundary a tick can start
const pollGranularity = 5 * time.Second

// Job is a named unit of work with its own cadence
type Job struct {
	Name     string
	Interval time.Duration
	Offset   time.Duration
	Run      func(ctx context.Context) error

	next time.Time
}

// Scheduler drives jobs sequentially from a single goroutine
type Scheduler struct {
	jobs []*Job
	log  *logrus.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a scheduler over the given jobs
func New(log *logrus.Logger, jobs ...*Job) *Scheduler {
	return &Scheduler{
		jobs:  jobs,
		log:   log,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// NextAligned returns the first instant strictly after now that lands
// on an interval boundary shifted by offset. A now exactly on a
// boundary yields the following one.
func NextAligned(now time.Time, interval, offset time.Duration) time.Time {
	shifted := now.Add(-offset)
	next := shifted.Truncate(interval).Add(interval).Add(offset)
	return next
}

// Run executes due jobs until the context is cancelled. The first tick
// of every job waits for its upcoming boundary; nothing runs at startup.
func (s *Scheduler) Run(ctx context.Context) {
	for _, j := range s.jobs {
		j.next = NextAligned(s.now(), j.Interval, j.Offset)
		s.log.WithFields(logrus.Fields{
			"job":      j.Name,
			"interval": j.Interval.String(),
			"first":    j.next.UTC().Format(time.RFC3339),
		}).Info("Job scheduled")
	}

	for {
		if ctx.Err() != nil {
			return
		}

		now := s.now()
		due := make([]*Job, 0, len(s.jobs))
		for _, j := range s.jobs {
			if !now.Before(j.next) {
				due = append(due, j)
			}
		}
		// Earlier boundary runs first; ties keep registration order
		sort.SliceStable(due, func(a, b int) bool { return due[a].next.Before(due[b].next) })

		for _, j := range due {
			s.runJob(ctx, j)
			j.next = NextAligned(s.now(), j.Interval, j.Offset)
		}

		s.sleep(ctx, pollGranularity)
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *Job) {
	start := s.now()
	err := j.Run(ctx)
	elapsed := s.now().Sub(start)

	metrics.RecordTick(j.Name, elapsed, err)
	entry := s.log.WithFields(logrus.Fields{
		"job":        j.Name,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Job tick failed")
		return
	}
	entry.Info("Job tick complete")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
