package achievements

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/notifications"
	"example.com/debt-tracker/internal/repository"
)

type DebtLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Debt, error)
}

type PaymentLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
}

type BadgeAwarder interface {
	Award(ctx context.Context, userID uuid.UUID, code string) (models.Badge, bool, error)
}

type Service struct {
	debts    DebtLister
	payments PaymentLister
	badges   BadgeAwarder
	notifier notifications.Notifier
	logger   *slog.Logger
}

// NewService создает сервис начисления бейджей; notifier может быть nil.
func NewService(debts DebtLister, payments PaymentLister, badges BadgeAwarder, notifier notifications.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		debts:    debts,
		payments: payments,
		badges:   badges,
		notifier: notifier,
		logger:   logger,
	}
}

// Evaluate пересчитывает достижения пользователя и возвращает впервые выданные бейджи.
func (s *Service) Evaluate(ctx context.Context, userID uuid.UUID) ([]models.Badge, error) {
	debts, err := s.debts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}

	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	awarded := make([]models.Badge, 0)
	for _, code := range Measure(debts, payments).Earned() {
		badge, created, err := s.badges.Award(ctx, userID, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("badge is not configured", slog.String("code", code))
				continue
			}
			return awarded, fmt.Errorf("award %s: %w", code, err)
		}
		if !created {
			continue
		}

		awarded = append(awarded, badge)
		s.logger.Info("badge awarded", slog.String("user_id", userID.String()), slog.String("code", code))
		if s.notifier != nil {
			s.notifier.Notify(userID, notifications.EventBadgeAwarded, badge)
		}
	}

	return awarded, nil
}
