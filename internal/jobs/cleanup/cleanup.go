package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultEventRetention = 90 * 24 * time.Hour

type eventPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job prunes analytics events past their retention window.
type Job struct {
	events    eventPruner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewEventRetentionJob(events eventPruner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = defaultEventRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		events:    events,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Retention() time.Duration {
	return j.retention
}

func (j *Job) Run(ctx context.Context) (int64, error) {
	if j.events == nil {
		return 0, nil
	}

	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.events.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup analytics events: %w", err)
	}
	if deleted > 0 {
		j.logger.Info("cleanup analytics events completed",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
