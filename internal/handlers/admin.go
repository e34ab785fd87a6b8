package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/debt-tracker/internal/auth"
	"example.com/debt-tracker/internal/models"
	"example.com/debt-tracker/internal/repository"
)

type AdminHandler struct {
	Repo   *repository.AdminRepository
	Badges BadgeStore
}

// NewAdminHandler создает обработчик админских эндпоинтов.
func NewAdminHandler(repo *repository.AdminRepository, badges BadgeStore) *AdminHandler {
	return &AdminHandler{Repo: repo, Badges: badges}
}

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type AdminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Debts     int       `json:"debts"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

type AdminUsersResponse struct {
	Total int                 `json:"total"`
	Users []AdminUserResponse `json:"users"`
}

type AdminUsageDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AdminUsageResponse struct {
	Users         int             `json:"users"`
	Debts         int             `json:"debts"`
	ActiveDebts   int             `json:"active_debts"`
	Payments      int             `json:"payments"`
	BadgesAwarded int             `json:"badges_awarded"`
	PaymentsByDay []AdminUsageDay `json:"payments_by_day"`
}

type BadgeRequest struct {
	Code        string  `json:"code" validate:"required,max=64,badge_code"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Icon        *string `json:"icon" validate:"omitempty,max=64"`
}

// ListUsers возвращает пользователей с числом долгов.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, offset, err := parsePagination(c, 50, 200)
	if err != nil {
		return badRequest(c, err.Error())
	}

	users, err := h.Repo.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return serverError(c)
	}

	total, err := h.Repo.CountUsers(c.Request().Context())
	if err != nil {
		return serverError(c)
	}

	response := make([]AdminUserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, AdminUserResponse{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Debts:     user.Debts,
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
			UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, AdminUsersResponse{Total: total, Users: response})
}

// Usage возвращает счетчики использования и платежи по дням.
func (h *AdminHandler) Usage(c echo.Context) error {
	days := 7
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid days")
		}
		if parsed > 30 {
			parsed = 30
		}
		days = parsed
	}

	stats, err := h.Repo.UsageStats(c.Request().Context(), days)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid days")
		}
		return serverError(c)
	}

	byDay := make([]AdminUsageDay, 0, len(stats.PaymentsByDay))
	for _, day := range stats.PaymentsByDay {
		byDay = append(byDay, AdminUsageDay{Date: day.Day.Format(dateLayout), Count: day.Count})
	}

	return c.JSON(http.StatusOK, AdminUsageResponse{
		Users:         stats.Users,
		Debts:         stats.Debts,
		ActiveDebts:   stats.ActiveDebts,
		Payments:      stats.Payments,
		BadgesAwarded: stats.BadgesAwarded,
		PaymentsByDay: byDay,
	})
}

// CreateBadge добавляет бейдж в каталог.
func (h *AdminHandler) CreateBadge(c echo.Context) error {
	var req BadgeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	badge, err := h.Badges.Create(c.Request().Context(), repository.BadgeInput{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: normalizeName(req.Description),
		Icon:        normalizeName(req.Icon),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, "badge already exists")
		}
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, badge)
}

// AdminMiddleware пускает к админским роутам только пользователей из списка email.
func AdminMiddleware(users UserLookup, emails []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if trimmed := strings.ToLower(strings.TrimSpace(email)); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := auth.UserIDFromContext(c)
			if !ok {
				return unauthorized(c)
			}

			if len(allowed) == 0 {
				return forbidden(c)
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return forbidden(c)
				}
				return serverError(c)
			}

			if _, ok := allowed[strings.ToLower(strings.TrimSpace(user.Email))]; !ok {
				return forbidden(c)
			}

			return next(c)
		}
	}
}

func parsePagination(c echo.Context, defaultLimit, maxLimit int) (int, int, error) {
	limit := defaultLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = min(parsed, maxLimit)
	}

	offset := 0
	if raw := strings.TrimSpace(c.QueryParam("offset")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = parsed
	}

	return limit, offset, nil
}
