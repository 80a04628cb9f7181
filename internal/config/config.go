package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	// NotifyWebhookURL switches reminder display from log lines to an
	// HTTP webhook. Empty keeps the log notifier.
	NotifyWebhookURL string

	WakeTimer WakeTimerConfig
	Redis     *RedisConfig
	Fire      *FireConfig
	Playback  *PlaybackConfig
}

type WakeTimerConfig struct {
	// TasksURL points at the HTTP tasks service. Empty means timers run
	// in process.
	TasksURL  string
	QueueName string

	GCloudProjectID  string
	GCloudLocationID string
	GCloudQueueID    string
	GCloudTargetURL  string

	MaxRetries int
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	queueName := os.Getenv("WAKE_TASKS_QUEUE_NAME")
	if queueName == "" {
		queueName = "default"
	}

	maxRetries := 3
	if v := os.Getenv("WAKE_TASKS_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:             port,
		LogLevel:         parseLogLevel(os.Getenv("LOG_LEVEL")),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		WakeTimer: WakeTimerConfig{
			TasksURL:  os.Getenv("WAKE_TASKS_URL"),
			QueueName: queueName,

			GCloudProjectID:  os.Getenv("GCLOUD_PROJECT_ID"),
			GCloudLocationID: os.Getenv("GCLOUD_LOCATION_ID"),
			GCloudQueueID:    os.Getenv("GCLOUD_QUEUE_ID"),
			GCloudTargetURL:  os.Getenv("GCLOUD_TARGET_URL"),

			MaxRetries: maxRetries,
		},
		Redis:    redisConfig,
		Fire:     LoadFireConfig(),
		Playback: LoadPlaybackConfig(),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
