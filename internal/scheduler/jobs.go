package scheduler

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/finbase/portfolio-engine/internal/pricefeed"
	"github.com/finbase/portfolio-engine/internal/repository"
	"github.com/finbase/portfolio-engine/internal/service"
)

// SnapshotJob is the daily pass: refresh prices from the feed, then
// recompute every user and persist their daily snapshots. A feed failure
// downgrades to recomputing against the last stored prices rather than
// skipping the pass.
type SnapshotJob struct {
	refresher *pricefeed.Refresher
	recompute *service.RecomputeService
	log       zerolog.Logger
}

// NewSnapshotJob creates the daily snapshot job. The refresher may be nil
// when no price feed is configured.
func NewSnapshotJob(refresher *pricefeed.Refresher, recompute *service.RecomputeService, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		refresher: refresher,
		recompute: recompute,
		log:       log.With().Str("component", "snapshot-job").Logger(),
	}
}

// Name implements Job.
func (j *SnapshotJob) Name() string { return "daily-snapshot" }

// Run implements Job.
func (j *SnapshotJob) Run() error {
	ctx := context.Background()

	if j.refresher != nil {
		if err := j.refresher.Refresh(ctx); err != nil {
			j.log.Warn().Err(err).Msg("Price refresh failed, recomputing with stored prices")
		}
	}

	failed, err := j.recompute.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	if failed > 0 {
		j.log.Warn().Int("failed", failed).Msg("Some users failed to recompute")
	}

	return nil
}

// AlertJob is the periodic alert evaluation pass.
type AlertJob struct {
	recompute *service.RecomputeService
	alertRepo *repository.AlertRepository
	log       zerolog.Logger
}

// NewAlertJob creates the alert evaluation job.
func NewAlertJob(recompute *service.RecomputeService, alertRepo *repository.AlertRepository, log zerolog.Logger) *AlertJob {
	return &AlertJob{
		recompute: recompute,
		alertRepo: alertRepo,
		log:       log.With().Str("component", "alert-job").Logger(),
	}
}

// Name implements Job.
func (j *AlertJob) Name() string { return "alert-evaluation" }

// Run implements Job.
func (j *AlertJob) Run() error {
	failed, err := j.recompute.EvaluateAllAlerts(context.Background(), j.alertRepo)
	if err != nil {
		return err
	}
	if failed > 0 {
		j.log.Warn().Int("failed", failed).Msg("Some users failed alert evaluation")
	}

	return nil
}
