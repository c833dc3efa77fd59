package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Dispatcher delivers pending outbox events
type Dispatcher interface {
	DispatchPending(ctx context.Context) (int, error)
}

// OutboxRelayJob periodically delivers committed events to subscribers.
// A pass that is still running when the next tick fires is not overlapped.
type OutboxRelayJob struct {
	dispatcher Dispatcher
	interval   time.Duration
	cron       *cron.Cron
}

// NewOutboxRelayJob creates a relay job running every interval
func NewOutboxRelayJob(dispatcher Dispatcher, interval time.Duration) *OutboxRelayJob {
	return &OutboxRelayJob{
		dispatcher: dispatcher,
		interval:   interval,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// RunOnce performs one relay pass
func (j *OutboxRelayJob) RunOnce(ctx context.Context) {
	delivered, err := j.dispatcher.DispatchPending(ctx)
	if err != nil {
		log.Printf("Outbox relay: delivered %d event(s) before failing: %v", delivered, err)
		return
	}
	if delivered > 0 {
		log.Printf("Outbox relay: delivered %d event(s)", delivered)
	}
}

// Start schedules the relay
func (j *OutboxRelayJob) Start() error {
	spec := fmt.Sprintf("@every %s", j.interval)
	if _, err := j.cron.AddFunc(spec, func() {
		j.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	j.cron.Start()
	log.Printf("Outbox relay job started (every %s)", j.interval)
	return nil
}

// Stop waits for a running pass to finish
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	log.Printf("Outbox relay job stopped")
}
