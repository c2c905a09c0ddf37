// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartStateSweeper runs the periodic session-state sweep. The memory store
// forgets states this way; the redis store expires keys itself and reports
// zero.
func (s *GameService) StartStateSweeper(ctx context.Context) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 5 minutes: drop abandoned game states
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if removed := s.States.Sweep(ctx); removed > 0 {
				log.Printf("[Scheduler] swept %d expired game state(s)", removed)
			}
		}),
	)
}
