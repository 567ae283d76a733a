package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	jobmetrics "github.com/bfauber71/MyParkingMgr-sub002/internal/jobs"
)

const auditWatermarkKey = "audit:integrity:watermark"

// AuditStats reads the current shape of the audit trail.
type AuditStats interface {
	AuditWatermark(ctx context.Context) (count int64, maxID int64, err error)
}

type auditWatermark struct {
	Count     int64     `json:"count"`
	MaxID     int64     `json:"max_id"`
	CheckedAt time.Time `json:"checked_at"`
}

// AuditIntegrityJob verifies the append-only property of the audit trail:
// between two runs the row count and the highest entry ID may only grow.
// A regression means rows were deleted or rewritten out of band.
type AuditIntegrityJob struct {
	stats   AuditStats
	redis   *redis.Client
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewAuditIntegrityJob constructs the job.
func NewAuditIntegrityJob(stats AuditStats, client *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *AuditIntegrityJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditIntegrityJob{stats: stats, redis: client, logger: logger, metrics: metrics, now: time.Now}
}

// Handle processes TaskAuditIntegrity tasks.
func (j *AuditIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskAuditIntegrity)
	count, maxID, err := j.stats.AuditWatermark(ctx)
	if err != nil {
		j.logger.Error("read audit watermark", slog.Any("error", err))
		return tracker.End(err)
	}

	previous, err := j.loadWatermark(ctx)
	if err != nil {
		return tracker.End(err)
	}
	if previous != nil {
		if count < previous.Count || maxID < previous.MaxID {
			j.logger.Error("audit trail regressed",
				slog.String("job", TaskAuditIntegrity),
				slog.Int64("count", count), slog.Int64("previous_count", previous.Count),
				slog.Int64("max_id", maxID), slog.Int64("previous_max_id", previous.MaxID))
			return tracker.End(fmt.Errorf("audit trail regressed: count %d<%d or max id %d<%d",
				count, previous.Count, maxID, previous.MaxID))
		}
	}

	if err := j.storeWatermark(ctx, auditWatermark{Count: count, MaxID: maxID, CheckedAt: j.now()}); err != nil {
		j.logger.Warn("store audit watermark", slog.Any("error", err))
	}
	j.logger.Info("audit trail verified",
		slog.String("job", TaskAuditIntegrity),
		slog.Int64("count", count), slog.Int64("max_id", maxID))
	return tracker.End(nil)
}

func (j *AuditIntegrityJob) loadWatermark(ctx context.Context) (*auditWatermark, error) {
	data, err := j.redis.Get(ctx, auditWatermarkKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var mark auditWatermark
	if err := json.Unmarshal(data, &mark); err != nil {
		// Unreadable watermark: discard it and start a new baseline.
		return nil, nil
	}
	return &mark, nil
}

func (j *AuditIntegrityJob) storeWatermark(ctx context.Context, mark auditWatermark) error {
	data, err := json.Marshal(mark)
	if err != nil {
		return err
	}
	return j.redis.Set(ctx, auditWatermarkKey, data, 0).Err()
}
