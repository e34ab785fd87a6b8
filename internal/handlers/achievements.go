package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/repository"
)

type BadgeStore interface {
	ListActive(ctx context.Context) ([]models.Badge, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error)
	Create(ctx context.Context, input repository.BadgeInput) (models.Badge, error)
}

type AchievementHandler struct {
	Badges BadgeStore
}

// NewAchievementHandler создает обработчик достижений.
func NewAchievementHandler(badges BadgeStore) *AchievementHandler {
	return &AchievementHandler{Badges: badges}
}

// List возвращает каталог активных бейджей.
func (h *AchievementHandler) List(c echo.Context) error {
	badges, err := h.Badges.ListActive(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.Badge{"badges": badges})
}

// Mine возвращает бейджи текущего пользователя.
func (h *AchievementHandler) Mine(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	badges, err := h.Badges.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, map[string][]models.UserBadge{"badges": badges})
}
