package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/scholarspace/scholarspace/internal/auth/app"
	"github.com/scholarspace/scholarspace/internal/auth/notify"
	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// The worker drains queued mail for MAIL_MODE=queue deployments. Delivery
// goes through SMTP when SMTP_HOST is set and to the log otherwise.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slogx.New(slogx.Config{
		Service: "auth-worker",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("redis close", slog.Any("error", err))
	}

	var delivery notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPHost != "" {
		smtpNotifier, err := app.NewSMTPNotifier(cfg.MailConfig)
		if err != nil {
			logger.Error("init smtp notifier", slog.Any("error", err))
			os.Exit(1)
		}
		delivery = smtpNotifier
	}

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{notify.QueueDefault: 1},
	})

	mux := asynq.NewServeMux()
	worker := &notify.Worker{Delivery: delivery, Logger: logger}
	worker.Register(mux)

	if err := srv.Start(mux); err != nil {
		logger.Error("start worker", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker started", slog.String("redis", cfg.RedisAddr), slog.Int("concurrency", cfg.WorkerConcurrency))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	srv.Shutdown()
	logger.Info("worker stopped")
}
