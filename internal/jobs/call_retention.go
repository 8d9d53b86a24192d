package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type CallPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CallRetentionJob prunes old call audit records on a cron schedule
type CallRetentionJob struct {
	pruner    CallPruner
	schedule  string
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
	logger    *zap.Logger
}

func NewCallRetentionJob(pruner CallPruner, schedule string, retention time.Duration, logger *zap.Logger) *CallRetentionJob {
	return &CallRetentionJob{
		pruner:    pruner,
		schedule:  schedule,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
		logger:    logger,
	}
}

// Start schedules the job. An invalid schedule is reported before anything runs.
func (j *CallRetentionJob) Start() error {
	j.logger.Info("Starting call retention job",
		zap.String("schedule", j.schedule),
		zap.Duration("retention", j.retention))

	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("Call retention run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule call retention job: %w", err)
	}

	j.cron.Start()
	return nil
}

// Stop waits for a running prune to finish
func (j *CallRetentionJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.logger.Info("Call retention job stopped")
	}
}

func (j *CallRetentionJob) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune call records: %w", err)
	}
	if deleted > 0 {
		j.logger.Info("Pruned call records", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}
