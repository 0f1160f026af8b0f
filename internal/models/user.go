package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя платформы. Аутентификацией владеет внешний
// провайдер, здесь хранится только профиль и счёт баллов.
type User struct {
	ID              uuid.UUID `db:"id" json:"id"`
	DisplayName     string    `db:"display_name" json:"display_name"`
	EnableCollector bool      `db:"enable_collector" json:"enable_collector"`
	City            *string   `db:"city" json:"city,omitempty"`
	State           *string   `db:"state" json:"state,omitempty"`
	Country         *string   `db:"country" json:"country,omitempty"`
	GlobalPoints    int       `db:"global_points" json:"global_points"`
	ReporterPoints  int       `db:"reporter_points" json:"reporter_points"`
	CollectorPoints int       `db:"collector_points" json:"collector_points"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasFullAddress проверяет, что адресные поля профиля заполнены.
// Без полного адреса пользователь не может ни подавать заявки, ни собирать.
func (u *User) HasFullAddress() bool {
	return u.City != nil && *u.City != "" &&
		u.State != nil && *u.State != "" &&
		u.Country != nil && *u.Country != ""
}

// RewardTransaction — строка журнала начисления баллов.
type RewardTransaction struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ReportID  uuid.UUID `db:"report_id" json:"report_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Kind      string    `db:"kind" json:"kind"`
	Points    int       `db:"points" json:"points"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry — позиция пользователя в таблице лидеров.
type LeaderboardEntry struct {
	UserID          uuid.UUID `db:"id" json:"user_id"`
	DisplayName     string    `db:"display_name" json:"display_name"`
	GlobalPoints    int       `db:"global_points" json:"global_points"`
	ReporterPoints  int       `db:"reporter_points" json:"reporter_points"`
	CollectorPoints int       `db:"collector_points" json:"collector_points"`
}
