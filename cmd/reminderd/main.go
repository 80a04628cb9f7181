package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmhodges/clock"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-action-reminder/internal/config"
	"github.com/KasumiMercury/primind-action-reminder/internal/handler"
	"github.com/KasumiMercury/primind-action-reminder/internal/health"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/audio"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/notify"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/waketimer"
	"github.com/KasumiMercury/primind-action-reminder/internal/infra/wakeres"
	"github.com/KasumiMercury/primind-action-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/fire"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/playback"
	"github.com/KasumiMercury/primind-action-reminder/internal/service/scheduler"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})))

	reminderMetrics, err := metrics.NewReminderMetrics()
	if err != nil {
		slog.Error("failed to initialize reminder metrics", slog.String("error", err.Error()))
		return 1
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			slog.Error("failed to instrument redis tracing",
				slog.String("event", "redis.otel.tracing.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}

		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			slog.Error("failed to instrument redis metrics",
				slog.String("event", "redis.otel.metrics.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}

		// Persistence is best effort: a dead redis at startup leaves the
		// store running on its in-memory view alone.
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, persistence degraded to memory only",
				slog.String("event", "redis.connect.fail"),
				slog.String("error", err.Error()),
			)
		} else {
			slog.Info("redis connected",
				slog.String("addr", cfg.Redis.Addr),
			)
		}

		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Warn("failed to close redis client", slog.String("error", err.Error()))
			}
		}()
	} else {
		slog.Warn("REDIS_ADDR not set, running with in-memory state only")
	}

	store := repository.NewActionStore(redisClient)
	clk := clock.New()

	var player audio.Player
	if cfg.Playback.SoundDir != "" {
		otoPlayer := audio.NewOtoPlayer()
		if err := otoPlayer.LoadDir(cfg.Playback.SoundDir); err != nil {
			slog.Error("failed to load sound clips",
				slog.String("dir", cfg.Playback.SoundDir),
				slog.String("error", err.Error()),
			)
			return 1
		}
		player = otoPlayer
	} else {
		slog.Warn("PLAYBACK_SOUND_DIR not set, sound playback disabled")
		player = audio.NewNoopPlayer()
	}

	guard := wakeres.NewProcessGuard()
	queue := playback.NewQueue(player, guard, clk, cfg.Playback.DefaultSound, cfg.Playback.DefaultStop, reminderMetrics)

	timer, bindFire, cleanup, err := initWakeTimer(ctx, cfg, clk)
	if err != nil {
		slog.Error("failed to initialize wake timer", slog.String("error", err.Error()))
		return 1
	}
	if cleanup != nil {
		defer func() {
			if err := cleanup(); err != nil {
				slog.Error("wake timer cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	var notifier notify.Notifier = notify.NewLogNotifier()
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyWebhookURL)
	}

	schedulerService := scheduler.NewService(store, timer, queue, clk, time.Local, reminderMetrics)
	fireService := fire.NewHandler(
		store,
		notifier,
		queue,
		schedulerService,
		clk,
		cfg.Fire.Lookback,
		cfg.Fire.Window,
		reminderMetrics,
	)

	// In-process timers deliver fires directly instead of through the
	// HTTP endpoint.
	if bindFire != nil {
		bindFire(func(p *waketimer.FirePayload) {
			if err := fireService.HandleFire(context.Background(), p.RequestID); err != nil {
				slog.Error("fire handling failed",
					slog.Int("request_id", p.RequestID),
					slog.String("error", err.Error()),
				)
			}
		})
	}

	if restored, err := schedulerService.Restore(ctx); err != nil {
		slog.Warn("failed to restore persisted actions", slog.String("error", err.Error()))
	} else if restored > 0 {
		slog.Info("restored persisted actions", slog.Int("count", restored))
	}

	fireHandler := handler.NewFireHandler(fireService)
	reminderHandler := handler.NewReminderHandler(schedulerService)

	r := gin.New()
	r.Use(handler.PanicRecovery())

	// Health check endpoints
	healthChecker := health.NewChecker(redisClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// API routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/fire", fireHandler.HandleFire)
		v1.POST("/reminders", reminderHandler.HandleSchedule)
		v1.GET("/reminders/:id", reminderHandler.HandleStatus)
		v1.DELETE("/reminders/:id", reminderHandler.HandleCancel)
		v1.POST("/reminders/cancel", reminderHandler.HandleCancelAll)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Bool("redis", cfg.Redis.Enabled()),
			slog.String("default_sound", cfg.Playback.DefaultSound),
		)
		serverErr <- srv.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		queue.CancelAll()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
