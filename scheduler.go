package main

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

// The station runs a single cooperative loop. Each task declares an
// interval; when a task fires its boundary advances by exactly that
// interval, not by the observed elapsed time, so a slow iteration never
// accumulates drift. A task that falls several intervals behind fires once
// per iteration until it catches up.

const schedulerPoll = 50 * time.Millisecond

type task struct {
	name     string
	interval func() time.Duration
	next     time.Time
	fire     func()
}

type scheduler struct {
	clock clockwork.Clock
	tasks []*task
}

func newScheduler(clock clockwork.Clock) *scheduler {
	return &scheduler{clock: clock}
}

func (s *scheduler) add(name string, interval func() time.Duration, fire func()) {
	s.tasks = append(s.tasks, &task{name: name, interval: interval, fire: fire})
}

func every(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

// prime sets every task's first boundary one interval from now.
func (s *scheduler) prime() {
	now := s.clock.Now()
	for _, t := range s.tasks {
		t.next = now.Add(t.interval())
	}
}

// runOnce fires every task whose boundary has passed, at most once each.
func (s *scheduler) runOnce() {
	now := s.clock.Now()
	for _, t := range s.tasks {
		if !now.Before(t.next) {
			t.fire()
			t.next = t.next.Add(t.interval())
		}
	}
}

func (s *scheduler) run(ctx context.Context) {
	logger.Infof("Scheduler started with %d tasks", len(s.tasks))
	s.prime()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return
		default:
		}
		s.runOnce()
		s.clock.Sleep(schedulerPoll)
	}
}
