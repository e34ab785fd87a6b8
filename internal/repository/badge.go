package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/debt-tracker/internal/models"
)

const badgeColumns = `id, code, name, description, icon, is_active, created_at`

type BadgeRepository struct {
	db *pgxpool.Pool
}

type BadgeInput struct {
	Code        string
	Name        string
	Description *string
	Icon        *string
}

// NewBadgeRepository создает репозиторий достижений.
func NewBadgeRepository(db *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// ListActive возвращает все активные бейджи.
func (r *BadgeRepository) ListActive(ctx context.Context) ([]models.Badge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+badgeColumns+`
		 FROM badges
		 WHERE is_active
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]models.Badge, 0)
	for rows.Next() {
		badge, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return badges, nil
}

// ListByUser возвращает бейджи, полученные пользователем.
func (r *BadgeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ub.id, ub.user_id, ub.earned_date,
		        b.id, b.code, b.name, b.description, b.icon, b.is_active, b.created_at
		 FROM user_badges ub
		 JOIN badges b ON b.id = ub.badge_id
		 WHERE ub.user_id = $1
		 ORDER BY ub.earned_date, ub.id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.UserBadge, 0)
	for rows.Next() {
		var item models.UserBadge
		var badgeID int64
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.EarnedDate,
			&badgeID,
			&item.Badge.Code,
			&item.Badge.Name,
			&item.Badge.Description,
			&item.Badge.Icon,
			&item.Badge.IsActive,
			&item.Badge.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		item.BadgeID = models.BadgeID(badgeID)
		item.Badge.ID = item.BadgeID
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Create добавляет новый бейдж.
func (r *BadgeRepository) Create(ctx context.Context, input BadgeInput) (models.Badge, error) {
	badge, err := scanBadge(r.db.QueryRow(ctx,
		`INSERT INTO badges (code, name, description, icon)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+badgeColumns,
		input.Code, input.Name, input.Description, input.Icon,
	))
	if err != nil {
		return badge, mapPgError(err)
	}

	return badge, nil
}

// Award выдает пользователю активный бейдж по коду.
// Возвращает false, если бейдж уже был выдан ранее.
func (r *BadgeRepository) Award(ctx context.Context, userID uuid.UUID, code string) (models.Badge, bool, error) {
	badge, err := scanBadge(r.db.QueryRow(ctx,
		`SELECT `+badgeColumns+`
		 FROM badges
		 WHERE code = $1 AND is_active`,
		code,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return badge, false, ErrNotFound
		}
		return badge, false, err
	}

	cmd, err := r.db.Exec(ctx,
		`INSERT INTO user_badges (user_id, badge_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID, int64(badge.ID),
	)
	if err != nil {
		return badge, false, mapPgError(err)
	}

	return badge, cmd.RowsAffected() > 0, nil
}

func scanBadge(row pgx.Row) (models.Badge, error) {
	var badge models.Badge
	var id int64

	err := row.Scan(&id, &badge.Code, &badge.Name, &badge.Description, &badge.Icon, &badge.IsActive, &badge.CreatedAt)
	badge.ID = models.BadgeID(id)
	return badge, err
}
