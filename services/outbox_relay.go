package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/signworks/orderflow-api/models"
	"gorm.io/gorm"
)

const (
	// defaultRelayBatch bounds how many events one relay pass considers.
	defaultRelayBatch = 100

	// DefaultMaxDeliveryAttempts is how often a sink retries one event before
	// dead-lettering it and moving on.
	DefaultMaxDeliveryAttempts = 10
)

// EventSink receives committed outbox events
type EventSink interface {
	Name() string
	Deliver(ctx context.Context, event *models.OutboxEvent) error
}

// OutboxRelay moves pending outbox rows to the configured sinks. Each sink has
// its own queue position, so an unavailable sink never holds back the others.
type OutboxRelay struct {
	db          *gorm.DB
	sinks       []EventSink
	batchSize   int
	maxAttempts int
}

// NewOutboxRelay creates a relay delivering to sinks
func NewOutboxRelay(db *gorm.DB, sinks ...EventSink) *OutboxRelay {
	return &OutboxRelay{
		db:          db,
		sinks:       sinks,
		batchSize:   defaultRelayBatch,
		maxAttempts: DefaultMaxDeliveryAttempts,
	}
}

// WithMaxAttempts sets the per-sink retry cutoff. Values below 1 keep the default.
func (r *OutboxRelay) WithMaxAttempts(n int) *OutboxRelay {
	if n > 0 {
		r.maxAttempts = n
	}
	return r
}

// DispatchPending delivers undispatched events in id order to every sink and
// returns how many events became fully dispatched. A sink stops at its first
// failure so it never sees an order's events out of order; the failed event is
// retried next pass until the sink reaches the attempt cutoff, after which the
// event is dead-lettered for that sink and its queue moves on.
func (r *OutboxRelay) DispatchPending(ctx context.Context) (int, error) {
	db := r.db.WithContext(ctx)

	var pending []models.OutboxEvent
	if err := db.Where("dispatched_at IS NULL").
		Order("id ASC").
		Limit(r.batchSize).
		Find(&pending).Error; err != nil {
		return 0, fmt.Errorf("failed to load pending events: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ids := make([]uint, len(pending))
	for i := range pending {
		ids[i] = pending[i].ID
	}
	var rows []models.OutboxDelivery
	if err := db.Where("outbox_event_id IN ?", ids).Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("failed to load delivery state: %w", err)
	}
	state := make(map[string]map[uint]*models.OutboxDelivery, len(r.sinks))
	for i := range rows {
		d := &rows[i]
		if state[d.Sink] == nil {
			state[d.Sink] = map[uint]*models.OutboxDelivery{}
		}
		state[d.Sink][d.OutboxEventID] = d
	}

	var errs []error
	for _, sink := range r.sinks {
		if state[sink.Name()] == nil {
			state[sink.Name()] = map[uint]*models.OutboxDelivery{}
		}
		if err := r.drain(ctx, sink, pending, state[sink.Name()]); err != nil {
			errs = append(errs, err)
		}
	}

	dispatched := 0
	for i := range pending {
		event := &pending[i]
		if !r.settledEverywhere(event.ID, state) {
			continue
		}
		updates := map[string]interface{}{"dispatched_at": time.Now()}
		if !r.deadLetteredAnywhere(event.ID, state) {
			updates["last_error"] = ""
		}
		if err := db.Model(&models.OutboxEvent{}).Where("id = ?", event.ID).Updates(updates).Error; err != nil {
			errs = append(errs, fmt.Errorf("failed to mark event %s dispatched: %w", event.EventID, err))
			continue
		}
		dispatched++
	}

	return dispatched, errors.Join(errs...)
}

// drain walks one sink's queue until it fails on an event it may still retry.
func (r *OutboxRelay) drain(ctx context.Context, sink EventSink, pending []models.OutboxEvent, state map[uint]*models.OutboxDelivery) error {
	for i := range pending {
		event := &pending[i]
		current := state[event.ID]
		if current.Settled() {
			continue
		}

		deliverErr := sink.Deliver(ctx, event)
		next, err := r.record(ctx, sink.Name(), event, current, deliverErr)
		if err != nil {
			return err
		}
		state[event.ID] = next

		if deliverErr == nil {
			continue
		}
		if next.DeadLetteredAt != nil {
			log.Printf("Outbox: %s gave up on event %s after %d attempts: %v", sink.Name(), event.EventID, next.Attempts, deliverErr)
			continue
		}
		return fmt.Errorf("%s: event %s: %w", sink.Name(), event.EventID, deliverErr)
	}
	return nil
}

// record stores the outcome of one delivery attempt for a sink.
func (r *OutboxRelay) record(ctx context.Context, sink string, event *models.OutboxEvent, current *models.OutboxDelivery, deliverErr error) (*models.OutboxDelivery, error) {
	next := models.OutboxDelivery{OutboxEventID: event.ID, Sink: sink}
	if current != nil {
		next = *current
	}
	next.Attempts++

	now := time.Now()
	if deliverErr == nil {
		next.DeliveredAt = &now
		next.LastError = ""
	} else {
		next.LastError = deliverErr.Error()
		if next.Attempts >= r.maxAttempts {
			next.DeadLetteredAt = &now
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if current == nil {
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&models.OutboxDelivery{}).
			Where("id = ?", next.ID).
			Updates(map[string]interface{}{
				"attempts":         next.Attempts,
				"last_error":       next.LastError,
				"delivered_at":     next.DeliveredAt,
				"dead_lettered_at": next.DeadLetteredAt,
			}).Error; err != nil {
			return err
		}
		if deliverErr == nil {
			return nil
		}
		return tx.Model(&models.OutboxEvent{}).
			Where("id = ?", event.ID).
			Updates(map[string]interface{}{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": fmt.Sprintf("%s: %s", sink, deliverErr.Error()),
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record %s delivery of event %s: %w", sink, event.EventID, err)
	}
	return &next, nil
}

func (r *OutboxRelay) settledEverywhere(eventID uint, state map[string]map[uint]*models.OutboxDelivery) bool {
	for _, sink := range r.sinks {
		if !state[sink.Name()][eventID].Settled() {
			return false
		}
	}
	return true
}

func (r *OutboxRelay) deadLetteredAnywhere(eventID uint, state map[string]map[uint]*models.OutboxDelivery) bool {
	for _, sink := range r.sinks {
		if d := state[sink.Name()][eventID]; d != nil && d.DeadLetteredAt != nil {
			return true
		}
	}
	return false
}

// PurgeDispatched deletes dispatched events older than the cutoff together
// with their delivery records
func (r *OutboxRelay) PurgeDispatched(ctx context.Context, olderThan time.Time) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		old := tx.Model(&models.OutboxEvent{}).
			Select("id").
			Where("dispatched_at IS NOT NULL AND dispatched_at < ?", olderThan)
		if err := tx.Where("outbox_event_id IN (?)", old).Delete(&models.OutboxDelivery{}).Error; err != nil {
			return err
		}
		res := tx.Where("dispatched_at IS NOT NULL AND dispatched_at < ?", olderThan).Delete(&models.OutboxEvent{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
