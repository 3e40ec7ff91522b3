package assignment

import (
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/darasa/core"
)

// Scheduler runs the reminder sweep on a fixed interval. It is one supervised
// loop owning exactly one ticker; Stop waits for the loop to exit so shutdown
// never leaves a dangling timer.
type Scheduler struct {
	svc      *Service
	logger   core.Logger
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(svc *Service, logger core.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		svc:      svc,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if err := s.svc.RunReminderSweep(now.UTC()); err != nil {
				s.logger.Error(fmt.Sprintf("reminder sweep: %v", err), err)
			}
		}
	}
}

// Stop terminates the loop and blocks until it has exited.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
