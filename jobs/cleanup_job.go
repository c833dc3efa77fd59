package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// RequestRetention is how long request ids are kept for replay detection.
	RequestRetention = 7 * 24 * time.Hour

	// EventRetention is how long dispatched outbox events are kept.
	EventRetention = 14 * 24 * time.Hour
)

// RequestPurger forgets old idempotency records
type RequestPurger interface {
	PurgeTransitionRequests(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventPurger drops delivered outbox events
type EventPurger interface {
	PurgeDispatched(ctx context.Context, olderThan time.Time) (int64, error)
}

// CleanupJob trims idempotency records and delivered events every hour
type CleanupJob struct {
	requests RequestPurger
	events   EventPurger
	now      func() time.Time
	cron     *cron.Cron
}

// NewCleanupJob creates the hourly cleanup job
func NewCleanupJob(requests RequestPurger, events EventPurger) *CleanupJob {
	return &CleanupJob{
		requests: requests,
		events:   events,
		now:      time.Now,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// RunOnce performs one cleanup pass
func (j *CleanupJob) RunOnce(ctx context.Context) {
	now := j.now()

	if n, err := j.requests.PurgeTransitionRequests(ctx, now.Add(-RequestRetention)); err != nil {
		log.Printf("Cleanup: failed to purge request ids: %v", err)
	} else if n > 0 {
		log.Printf("Cleanup: purged %d request id(s)", n)
	}

	if n, err := j.events.PurgeDispatched(ctx, now.Add(-EventRetention)); err != nil {
		log.Printf("Cleanup: failed to purge outbox events: %v", err)
	} else if n > 0 {
		log.Printf("Cleanup: purged %d dispatched event(s)", n)
	}
}

// Start schedules the cleanup
func (j *CleanupJob) Start() error {
	if _, err := j.cron.AddFunc("@hourly", func() {
		j.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	j.cron.Start()
	log.Printf("Cleanup job started (hourly)")
	return nil
}

// Stop stops the cleanup job
func (j *CleanupJob) Stop() {
	<-j.cron.Stop().Done()
	log.Printf("Cleanup job stopped")
}
