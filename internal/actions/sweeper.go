package actions

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically drops settled actions once their grace period is up.
type Sweeper struct {
	scheduler gocron.Scheduler
	manager   *Manager
}

// NewSweeper creates a sweeper for the given manager.
func NewSweeper(m *Manager) (*Sweeper, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Sweeper{scheduler: s, manager: m}, nil
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(1*time.Second),
		gocron.NewTask(func() {
			if n := s.manager.Sweep(); n > 0 {
				log.Printf("Swept %d settled actions", n)
			}
		}),
		gocron.WithName("action-sweeper"),
	)
	if err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}
