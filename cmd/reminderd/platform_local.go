//go:build !gcloud

package main

import (
	"context"
	"log/slog"

	"github.com/jmhodges/clock"

	"github.com/KasumiMercury/primind-action-reminder/internal/config"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/waketimer"
)

func initWakeTimer(_ context.Context, cfg *config.Config, clk clock.Clock) (waketimer.WakeTimer, func(func(*waketimer.FirePayload)), func() error, error) {
	if cfg.WakeTimer.TasksURL == "" {
		slog.Warn("WAKE_TASKS_URL not set, running wake timers in process")

		t := waketimer.NewInProcessTimer(clk)

		return t, t.Bind, nil, nil
	}

	wt := waketimer.NewTasksClient(
		cfg.WakeTimer.TasksURL,
		cfg.WakeTimer.QueueName,
		cfg.WakeTimer.MaxRetries,
	)

	slog.Info("wake timer initialized",
		slog.String("type", "wake_tasks"),
		slog.String("url", cfg.WakeTimer.TasksURL),
		slog.String("queue", cfg.WakeTimer.QueueName),
	)

	return wt, nil, nil, nil
}
