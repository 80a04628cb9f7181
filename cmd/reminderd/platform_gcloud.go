//go:build gcloud

package main

import (
	"context"
	"log/slog"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/config"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/waketimer"
)

func initWakeTimer(ctx context.Context, cfg *config.Config, _ clock.Clock) (waketimer.WakeTimer, func(func(*waketimer.FirePayload)), func() error, error) {
	cloudTasksTimer, err := waketimer.NewCloudTasksTimer(ctx, waketimer.CloudTasksConfig{
		ProjectID:  cfg.WakeTimer.GCloudProjectID,
		LocationID: cfg.WakeTimer.GCloudLocationID,
		QueueID:    cfg.WakeTimer.GCloudQueueID,
		TargetURL:  cfg.WakeTimer.GCloudTargetURL,
		MaxRetries: cfg.WakeTimer.MaxRetries,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	slog.Info("wake timer initialized",
		slog.String("type", "cloud_tasks"),
		slog.String("project", cfg.WakeTimer.GCloudProjectID),
		slog.String("location", cfg.WakeTimer.GCloudLocationID),
		slog.String("queue", cfg.WakeTimer.GCloudQueueID),
	)

	cleanup := func() error {
		if err := cloudTasksTimer.Close(); err != nil {
			slog.Warn("failed to close cloud tasks timer", slog.String("error", err.Error()))

			return err
		}

		return nil
	}

	return cloudTasksTimer, nil, cleanup, nil
}
