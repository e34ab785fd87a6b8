package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"example.com/debt-tracker/internal/achievements"
	"example.com/debt-tracker/internal/config"
	"example.com/debt-tracker/internal/database"
	"example.com/debt-tracker/internal/events"
	"example.com/debt-tracker/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	dbCfg, amqpCfg, err := config.LoadWorker()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, dbCfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	client, err := events.NewClient(amqpCfg, logger)
	if err != nil {
		logger.Error("failed to connect to broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer client.Close()

	// SSE-подписчики живут в процессе сервера, поэтому воркер не рассылает уведомления.
	service := achievements.NewService(
		repository.NewDebtRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewBadgeRepository(db),
		nil,
		logger,
	)

	logger.Info("achievements worker started", slog.String("queue", amqpCfg.Queue))
	err = client.Consume(ctx, func(ctx context.Context, msg events.PaymentRecorded) error {
		awarded, err := service.Evaluate(ctx, msg.UserID)
		if err != nil {
			return err
		}
		logger.Info("payment event processed",
			slog.String("user_id", msg.UserID.String()),
			slog.Int64("payment_id", int64(msg.PaymentID)),
			slog.Int("awarded", len(awarded)),
		)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("achievements worker stopped")
}
