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

	"example.com/debt-tracker/internal/config"
	"example.com/debt-tracker/internal/database"
	"example.com/debt-tracker/internal/events"
	"example.com/debt-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.Open(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	// Без брокера server.New обрабатывает события о платежах в процессе.
	var publisher events.Publisher
	if cfg.AMQP.URL != "" {
		client, err := events.NewClient(cfg.AMQP, logger)
		if err != nil {
			logger.Error("failed to connect to broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("payment events go to broker", slog.String("exchange", cfg.AMQP.Exchange))
	}

	e := server.New(cfg, logger, db, publisher)
	httpServer := server.NewHTTPServer(cfg.Server, e)

	go func() {
		logger.Info("http server started", slog.String("addr", httpServer.Addr), slog.String("env", cfg.Env))
		if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
		}
	}()

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownSignal

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
