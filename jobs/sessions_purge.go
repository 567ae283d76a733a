package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bfauber71/MyParkingMgr-sub002/internal/jobs"
)

// SessionPurger removes expired session rows.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionsPurgeJob deletes session rows whose expiry has passed. The Redis
// copies expire on their own; this keeps the postgres mirror from growing
// without bound.
type SessionsPurgeJob struct {
	sessions SessionPurger
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
	now      func() time.Time
}

// NewSessionsPurgeJob constructs the job.
func NewSessionsPurgeJob(sessions SessionPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionsPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionsPurgeJob{sessions: sessions, logger: logger, metrics: metrics, now: time.Now}
}

// Handle processes TaskSessionsPurge tasks.
func (j *SessionsPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskSessionsPurge)
	var payload SessionsPurgePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(asynq.SkipRetry)
		}
	}
	cutoff := j.now().Add(-time.Duration(payload.GraceHours) * time.Hour)
	purged, err := j.sessions.DeleteExpiredSessions(ctx, cutoff)
	if err != nil {
		j.logger.Error("purge sessions", slog.Any("error", err))
		return tracker.End(err)
	}
	_ = tracker.End(nil)
	j.logger.Info("purged expired sessions",
		slog.String("job", TaskSessionsPurge),
		slog.Int64("purged", purged))
	return nil
}
