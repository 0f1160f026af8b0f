package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Виды начислений в журнале наград.
const (
	RewardKindReport  = "report"
	RewardKindCollect = "collect"
)

// RewardRepository ведёт журнал начислений и счётчики баллов пользователей.
type RewardRepository struct {
	db *sqlx.DB
}

// NewRewardRepository создаёт новый экземпляр.
func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// Credit атомарно записывает строку журнала и увеличивает счётчики пользователя.
// Уникальный индекс (report_id, kind) не даёт начислить баллы за заявку дважды;
// повторная попытка возвращает false без изменения счётчиков.
func (r *RewardRepository) Credit(ctx context.Context, reportID, userID uuid.UUID, kind string, points int) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("reward repository: begin tx %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO reward_transactions (report_id, user_id, kind, points)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, query, reportID, userID, kind, points); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return false, nil
		}
		return false, fmt.Errorf("reward repository: insert transaction %w", err)
	}

	var column string
	switch kind {
	case RewardKindReport:
		column = "reporter_points"
	case RewardKindCollect:
		column = "collector_points"
	default:
		return false, fmt.Errorf("reward repository: неизвестный вид начисления %q", kind)
	}

	update := fmt.Sprintf(`
		UPDATE users
		SET global_points = global_points + $1, %s = %s + $1, updated_at = NOW()
		WHERE id = $2
	`, column, column)
	if _, err := tx.ExecContext(ctx, update, points, userID); err != nil {
		return false, fmt.Errorf("reward repository: update points %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("reward repository: commit %w", err)
	}
	return true, nil
}
