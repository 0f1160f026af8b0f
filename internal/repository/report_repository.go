package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/ecotrack-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ecotrack-backend/internal/models"
)

// ReportRepository отвечает за работу с заявками о свалках.
type ReportRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrReportNotFound = errors.New("report not found")
)

// NewReportRepository создаёт новый экземпляр.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `
	id, reporter_id, collector_id, status, latitude, longitude,
	city, state, country, waste_type, estimated_weight_kg,
	original_image_path, before_image_path, after_image_path,
	reported_at, collected_at
`

// GetByID возвращает заявку по идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WasteReport, error) {
	var report models.WasteReport
	query := `SELECT ` + reportColumns + ` FROM waste_reports WHERE id = $1`
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("report repository: get by id %w", err)
	}
	return &report, nil
}

// Create сохраняет новую заявку в статусе PENDING.
func (r *ReportRepository) Create(ctx context.Context, report *models.WasteReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	query := `
		INSERT INTO waste_reports (id, reporter_id, status, latitude, longitude, city, state, country,
		                           waste_type, estimated_weight_kg, original_image_path, reported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.ExecContext(ctx, query,
		report.ID, report.ReporterID, valueobject.ReportStatusPending,
		report.Latitude, report.Longitude, report.City, report.State, report.Country,
		report.WasteType, report.EstimatedWeightKg, report.OriginalImagePath, report.ReportedAt,
	); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}
	report.Status = valueobject.ReportStatusPending
	return nil
}

// ClaimPending атомарно переводит PENDING -> IN_PROGRESS с назначением сборщика.
// Условие по статусу в WHERE гарантирует, что из гонки двух claim выигрывает
// ровно один: проигравший получит false по количеству затронутых строк.
func (r *ReportRepository) ClaimPending(ctx context.Context, reportID, collectorID uuid.UUID) (bool, error) {
	query := `
		UPDATE waste_reports
		SET status = $1, collector_id = $2
		WHERE id = $3 AND status = $4
	`
	res, err := r.db.ExecContext(ctx, query,
		valueobject.ReportStatusInProgress, collectorID,
		reportID, valueobject.ReportStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("report repository: claim %w", err)
	}
	return affected(res)
}

// Release возвращает заявку в PENDING и снимает сборщика.
// Срабатывает только если заявка в работе именно у этого сборщика.
func (r *ReportRepository) Release(ctx context.Context, reportID, collectorID uuid.UUID) (bool, error) {
	query := `
		UPDATE waste_reports
		SET status = $1, collector_id = NULL, before_image_path = NULL
		WHERE id = $2 AND status = $3 AND collector_id = $4
	`
	res, err := r.db.ExecContext(ctx, query,
		valueobject.ReportStatusPending,
		reportID, valueobject.ReportStatusInProgress, collectorID,
	)
	if err != nil {
		return false, fmt.Errorf("report repository: release %w", err)
	}
	return affected(res)
}

// SetBeforeImage сохраняет путь фото «до», пока заявка в работе у сборщика.
func (r *ReportRepository) SetBeforeImage(ctx context.Context, reportID, collectorID uuid.UUID, path string) (bool, error) {
	query := `
		UPDATE waste_reports
		SET before_image_path = $1
		WHERE id = $2 AND status = $3 AND collector_id = $4
	`
	res, err := r.db.ExecContext(ctx, query,
		path, reportID, valueobject.ReportStatusInProgress, collectorID,
	)
	if err != nil {
		return false, fmt.Errorf("report repository: set before image %w", err)
	}
	return affected(res)
}

// Complete атомарно закрывает заявку: IN_PROGRESS -> COLLECTED.
// Требует уже сохранённого фото «до» — этап «после» не может его обогнать.
func (r *ReportRepository) Complete(ctx context.Context, reportID, collectorID uuid.UUID, afterPath string, collectedAt time.Time) (bool, error) {
	query := `
		UPDATE waste_reports
		SET status = $1, after_image_path = $2, collected_at = $3
		WHERE id = $4 AND status = $5 AND collector_id = $6 AND before_image_path IS NOT NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		valueobject.ReportStatusCollected, afterPath, collectedAt,
		reportID, valueobject.ReportStatusInProgress, collectorID,
	)
	if err != nil {
		return false, fmt.Errorf("report repository: complete %w", err)
	}
	return affected(res)
}

// FindByStatus возвращает заявки в заданном статусе, старые первыми.
func (r *ReportRepository) FindByStatus(ctx context.Context, status valueobject.ReportStatus) ([]models.WasteReport, error) {
	var reports []models.WasteReport
	query := `SELECT ` + reportColumns + ` FROM waste_reports WHERE status = $1 ORDER BY reported_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &reports, query, status); err != nil {
		return nil, fmt.Errorf("report repository: find by status %w", err)
	}
	return reports, nil
}

// FindUnresolved возвращает все незакрытые заявки в детерминированном порядке.
// Порядок фиксирован, потому что кластеризация горячих точек зависит от порядка входа.
func (r *ReportRepository) FindUnresolved(ctx context.Context) ([]models.WasteReport, error) {
	var reports []models.WasteReport
	query := `SELECT ` + reportColumns + ` FROM waste_reports WHERE status <> $1 ORDER BY reported_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &reports, query, valueobject.ReportStatusCollected); err != nil {
		return nil, fmt.Errorf("report repository: find unresolved %w", err)
	}
	return reports, nil
}

// FindByCollector возвращает активный маршрут сборщика, старые заявки первыми.
func (r *ReportRepository) FindByCollector(ctx context.Context, collectorID uuid.UUID) ([]models.WasteReport, error) {
	var reports []models.WasteReport
	query := `
		SELECT ` + reportColumns + `
		FROM waste_reports
		WHERE collector_id = $1 AND status = $2
		ORDER BY reported_at ASC, id ASC
	`
	if err := r.db.SelectContext(ctx, &reports, query, collectorID, valueobject.ReportStatusInProgress); err != nil {
		return nil, fmt.Errorf("report repository: find by collector %w", err)
	}
	return reports, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("report repository: rows affected %w", err)
	}
	return n > 0, nil
}
