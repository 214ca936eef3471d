package cron

import (
	"context"
	"fmt"

	"github.com/reciclaja/reciclaja-backend/pkg/logger"
	"github.com/reciclaja/reciclaja-backend/pkg/metrics"
)

type dailyCodeIssuer interface {
	IssueTodayCodes(ctx context.Context) (int, error)
}

// DailyCodesJobParams configures the daily code issuance job.
type DailyCodesJobParams struct {
	Logger  *logger.Logger
	Issuer  dailyCodeIssuer
	Metrics *metrics.CronJobMetrics
}

// NewDailyCodesJob constructs the job that issues today's QR codes for
// every active collection point. Issuance is idempotent per (point, day),
// so a rerun after a partial failure only fills the gaps.
func NewDailyCodesJob(params DailyCodesJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Issuer == nil {
		return nil, fmt.Errorf("daily code issuer required")
	}
	return &dailyCodesJob{
		logg:    params.Logger,
		issuer:  params.Issuer,
		metrics: params.Metrics,
	}, nil
}

type dailyCodesJob struct {
	logg    *logger.Logger
	issuer  dailyCodeIssuer
	metrics *metrics.CronJobMetrics
}

func (j *dailyCodesJob) Name() string { return "daily-codes" }

func (j *dailyCodesJob) Run(ctx context.Context) error {
	issued, err := j.issuer.IssueTodayCodes(ctx)
	if err != nil {
		return fmt.Errorf("issue daily codes: %w", err)
	}
	j.metrics.AddProcessed(j.Name(), issued)
	logCtx := j.logg.WithFields(ctx, map[string]any{"issued": issued})
	j.logg.Info(logCtx, "daily code issuance complete")
	return nil
}
