package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/bfauber71/MyParkingMgr-sub002/testing"
)

type stubPurger struct {
	cutoff time.Time
	purged int64
}

func (s *stubPurger) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.purged, nil
}

func TestSessionsPurgeAppliesGrace(t *testing.T) {
	purger := &stubPurger{purged: 4}
	job := NewSessionsPurgeJob(purger, nil, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	task, err := NewSessionsPurgeTask(24)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, fixed.Add(-24*time.Hour), purger.cutoff)
}

func TestSessionsPurgeBadPayloadSkipsRetry(t *testing.T) {
	job := NewSessionsPurgeJob(&stubPurger{}, nil, nil)
	task := asynq.NewTask(TaskSessionsPurge, []byte("{not json"))

	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type stubStats struct {
	count int64
	maxID int64
}

func (s *stubStats) AuditWatermark(ctx context.Context) (int64, int64, error) {
	return s.count, s.maxID, nil
}

func integrityFixture(t *testing.T) (*stubStats, *AuditIntegrityJob) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	stats := &stubStats{}
	return stats, NewAuditIntegrityJob(stats, client, nil, nil)
}

func TestAuditIntegrityAcceptsGrowth(t *testing.T) {
	stats, job := integrityFixture(t)
	task, err := NewAuditIntegrityTask()
	require.NoError(t, err)

	stats.count, stats.maxID = 10, 10
	require.NoError(t, job.Handle(context.Background(), task))

	stats.count, stats.maxID = 15, 15
	require.NoError(t, job.Handle(context.Background(), task))
}

func TestAuditIntegrityRejectsRegression(t *testing.T) {
	stats, job := integrityFixture(t)
	task, err := NewAuditIntegrityTask()
	require.NoError(t, err)

	stats.count, stats.maxID = 10, 10
	require.NoError(t, job.Handle(context.Background(), task))

	stats.count, stats.maxID = 7, 10
	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regressed")
}
