package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
)

// UserRepository отвечает за профили пользователей и их баллы.
// Учётными данными владеет внешний провайдер идентификации.
type UserRepository struct {
	db *sqlx.DB
}

var ErrUserNotFound = errors.New("user not found")

// NewUserRepository создаёт новый экземпляр.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, display_name, enable_collector, city, state, country,
		       global_points, reporter_points, collector_points, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}
	return &user, nil
}

// Leaderboard возвращает пользователей по убыванию суммарных баллов.
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var entries []models.LeaderboardEntry
	query := `
		SELECT id, display_name, global_points, reporter_points, collector_points
		FROM users
		WHERE global_points > 0
		ORDER BY global_points DESC, id ASC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("user repository: leaderboard %w", err)
	}
	return entries, nil
}
