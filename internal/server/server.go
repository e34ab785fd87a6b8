package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/debt-tracker/internal/achievements"
	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/config"
	"example.com/debt-tracker/internal/events"
	"example.com/debt-tracker/internal/handlers"
	"example.com/debt-tracker/internal/notifications"
	"example.com/debt-tracker/internal/repayment"
	"example.com/debt-tracker/internal/repository"
)

// New собирает HTTP-сервер Echo. Без publisher события о платежах обрабатываются в процессе.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, publisher events.Publisher) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()
	projector := repayment.NewProjector(debtRepo, paymentRepo)

	if publisher == nil {
		awards := achievements.NewService(debtRepo, paymentRepo, badgeRepo, notificationHub, logger)
		publisher = events.NewInlinePublisher(func(ctx context.Context, msg events.PaymentRecorded) error {
			_, err := awards.Evaluate(ctx, msg.UserID)
			return err
		}, logger)
	}

	registerRoutes(e, routes{
		auth:          handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager),
		debts:         handlers.NewDebtHandler(debtRepo, projector, notificationHub),
		payments:      handlers.NewPaymentHandler(paymentRepo, publisher, notificationHub, logger),
		plan:          handlers.NewPlanHandler(projector, cfg.Projection),
		stats:         handlers.NewStatsHandler(statsRepo),
		achievements:  handlers.NewAchievementHandler(badgeRepo),
		notifications: handlers.NewNotificationHandler(notificationHub),
		admin:         handlers.NewAdminHandler(adminRepo, badgeRepo),
		health:        handlers.Health(db),

		authMiddleware:  auth.JWTMiddleware(tokenManager),
		adminMiddleware: handlers.AdminMiddleware(userRepo, cfg.Admin.Emails),
		authRateLimiter: authRateLimiter(cfg.Auth),
	})

	return e
}

// NewHTTPServer создает net/http сервер с таймаутами из конфигурации.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("request_id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if userID, ok := auth.UserIDFromContext(c); ok {
				attrs = append(attrs, slog.String("user_id", userID.String()))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0),
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
