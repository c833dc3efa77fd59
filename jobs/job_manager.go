package jobs

import (
	"context"
	"fmt"
	"time"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	relay   *OutboxRelayJob
	cleanup *CleanupJob
}

// NewJobManager wires the relay and cleanup jobs
func NewJobManager(dispatcher Dispatcher, interval time.Duration, requests RequestPurger, events EventPurger) *JobManager {
	return &JobManager{
		relay:   NewOutboxRelayJob(dispatcher, interval),
		cleanup: NewCleanupJob(requests, events),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.relay.Start(); err != nil {
		return fmt.Errorf("failed to start outbox relay job: %w", err)
	}

	if err := jm.cleanup.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.relay.Stop()
		return fmt.Errorf("failed to start cleanup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully. The relay gets one final
// pass so events committed during shutdown are not left for the next start.
func (jm *JobManager) StopAll() {
	jm.cleanup.Stop()
	jm.relay.Stop()
	jm.relay.RunOnce(context.Background())
}
