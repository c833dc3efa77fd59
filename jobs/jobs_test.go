package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDispatcher struct {
	calls atomic.Int32
	err   error
}

func (d *countingDispatcher) DispatchPending(context.Context) (int, error) {
	d.calls.Add(1)
	return 1, d.err
}

type recordingPurger struct {
	requestCutoff time.Time
	eventCutoff   time.Time
}

func (p *recordingPurger) PurgeTransitionRequests(_ context.Context, cutoff time.Time) (int64, error) {
	p.requestCutoff = cutoff
	return 2, nil
}

func (p *recordingPurger) PurgeDispatched(_ context.Context, olderThan time.Time) (int64, error) {
	p.eventCutoff = olderThan
	return 0, errors.New("boom")
}

func TestOutboxRelayJob_RunsOnSchedule(t *testing.T) {
	d := &countingDispatcher{}
	job := NewOutboxRelayJob(d, time.Second)

	require.NoError(t, job.Start())
	defer job.Stop()

	assert.Eventually(t, func() bool { return d.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestOutboxRelayJob_RunOnceToleratesErrors(t *testing.T) {
	d := &countingDispatcher{err: errors.New("sink down")}
	job := NewOutboxRelayJob(d, time.Second)

	job.RunOnce(context.Background())
	job.RunOnce(context.Background())

	assert.Equal(t, int32(2), d.calls.Load())
}

func TestCleanupJob_UsesRetentionWindows(t *testing.T) {
	p := &recordingPurger{}
	job := NewCleanupJob(p, p)
	fixed := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	job.RunOnce(context.Background())

	assert.Equal(t, fixed.Add(-RequestRetention), p.requestCutoff)
	assert.Equal(t, fixed.Add(-EventRetention), p.eventCutoff, "a failing purge must not stop the other")
}

func TestJobManager_StartStop(t *testing.T) {
	d := &countingDispatcher{}
	p := &recordingPurger{}
	jm := NewJobManager(d, time.Second, p, p)

	require.NoError(t, jm.StartAll())
	jm.StopAll()

	assert.GreaterOrEqual(t, d.calls.Load(), int32(1), "stopping flushes the outbox once")
}
