// Package jobs holds background processing: the Asynq worker, the scheduled
// maintenance tasks, and the queue client used to enqueue them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge removes expired session rows from postgres.
	TaskSessionsPurge = "sessions:purge"
	// TaskAuditIntegrity verifies the audit trail only ever grows.
	TaskAuditIntegrity = "audit:integrity"
)

// SessionsPurgePayload parameterizes the purge task.
type SessionsPurgePayload struct {
	// GraceHours keeps rows for this many hours past expiry, for forensics.
	GraceHours int `json:"grace_hours"`
}

// NewSessionsPurgeTask constructs an Asynq task for session cleanup.
func NewSessionsPurgeTask(graceHours int) (*asynq.Task, error) {
	data, err := json.Marshal(SessionsPurgePayload{GraceHours: graceHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPurge, data), nil
}

// NewAuditIntegrityTask constructs an Asynq task for the audit trail check.
func NewAuditIntegrityTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskAuditIntegrity, nil), nil
}
