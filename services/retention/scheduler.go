// Package retention runs the room retention sweep on a fixed interval.
package retention

import (
	"Trivium/services/match"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper is satisfied by *match.Manager.
type Sweeper interface {
	Sweep(ctx context.Context, policy match.RetentionPolicy) (match.SweepReport, error)
}

// Forgetter drops cached references to deleted rooms. Satisfied by the
// socket.io notifier.
type Forgetter interface {
	Forget(identifiers ...string)
}

type Scheduler struct {
	sweeper Sweeper
	policy  match.RetentionPolicy
	forget  Forgetter
	timeout time.Duration
	sched   gocron.Scheduler
}

// NewScheduler registers the sweep job. Nothing runs until Start. forget may
// be nil.
func NewScheduler(sweeper Sweeper, policy match.RetentionPolicy, interval time.Duration, forget Forgetter) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("error creating scheduler: %w", err)
	}

	s := &Scheduler{
		sweeper: sweeper,
		policy:  policy,
		forget:  forget,
		timeout: interval,
		sched:   sched,
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.RunOnce),
		gocron.WithName("room-retention"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("error scheduling retention sweep: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	log.Printf("[SWEEP] retention sweep scheduled (started rooms %s, waiting rooms %s, finished rooms %s)",
		s.policy.MatchMaxDuration, s.policy.WaitingRoomTTL, s.policy.FinishedRoomRetention)
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}

// RunOnce performs a single sweep.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	report, err := s.sweeper.Sweep(ctx, s.policy)
	if err != nil {
		log.Printf("[SWEEP] sweep failed: %v", err)
	}
	if s.forget != nil && len(report.Purged) > 0 {
		s.forget.Forget(report.Purged...)
	}
	if report.Finished > 0 || report.Deleted > 0 {
		log.Printf("[SWEEP] finished %d rooms, deleted %d rooms", report.Finished, report.Deleted)
	}
}
