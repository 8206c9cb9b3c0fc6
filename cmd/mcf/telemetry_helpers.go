package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mcf/internal/runner"
	"mcf/pkg/config"
	"mcf/pkg/telemetry"
)

// runRecorder stores run results in the telemetry database and prunes
// entries past the retention window.
type runRecorder struct {
	db            *telemetry.TelemetryDB
	retentionDays int
	logger        zerolog.Logger
}

// openRecorder returns nil when telemetry is disabled or the database
// cannot be opened; a run never fails because history is unavailable.
func openRecorder(cfg *config.Config, logger zerolog.Logger) *runRecorder {
	if !cfg.Telemetry.Enabled {
		return nil
	}

	db, err := telemetry.NewTelemetryDB(cfg.Telemetry.DBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.Telemetry.DBPath).Msg("run history disabled")
		return nil
	}

	return &runRecorder{db: db, retentionDays: cfg.Telemetry.RetentionDays, logger: logger}
}

func (r *runRecorder) Record(ctx context.Context, res *runner.Result) error {
	run := telemetry.Run{
		ID:                  res.RunID,
		StartedAt:           res.StartedAt,
		TemplateID:          res.TemplateID,
		TemplateName:        res.TemplateName,
		TargetDir:           res.TargetDir,
		Success:             res.Success(),
		FailedStep:          res.FailedStep,
		Duration:            res.Duration,
		StepsTotal:          res.StepsTotal,
		StepsCompleted:      res.StepsCompleted,
		PostInstallFailures: len(res.PostInstallFailures),
	}
	if !res.Success() {
		run.Stage = string(res.AbortedIn)
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}

	if err := r.db.SaveRun(run); err != nil {
		return err
	}

	if r.retentionDays > 0 {
		if err := r.db.DeleteOldRuns(time.Duration(r.retentionDays) * 24 * time.Hour); err != nil {
			r.logger.Warn().Err(err).Msg("failed to prune run history")
		}
	}
	return nil
}

func (r *runRecorder) Close() error {
	return r.db.Close()
}

func openTelemetryDB(a *app) (*telemetry.TelemetryDB, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := telemetry.NewTelemetryDB(cfg.Telemetry.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}
	return db, nil
}
