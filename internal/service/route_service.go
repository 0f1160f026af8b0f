package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

// RouteService ведёт активный маршрут сборщика: заявки, взятые в работу,
// в порядке подачи (старые первыми). Переходами статусов владеет
// LifecycleService, маршрут лишь делегирует ему.
type RouteService struct {
	lifecycle *LifecycleService
	reports   ReportRepository
}

// NewRouteService создаёт сервис маршрутов.
func NewRouteService(lifecycle *LifecycleService, reports ReportRepository) *RouteService {
	return &RouteService{
		lifecycle: lifecycle,
		reports:   reports,
	}
}

// Add добавляет заявку в маршрут сборщика через claim.
func (s *RouteService) Add(ctx context.Context, collectorID, reportID uuid.UUID) (*models.WasteReport, error) {
	if reportID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "идентификатор заявки обязателен")
	}
	return s.lifecycle.Claim(ctx, reportID, collectorID)
}

// Remove убирает заявку из маршрута через release.
func (s *RouteService) Remove(ctx context.Context, collectorID, reportID uuid.UUID) (*models.WasteReport, error) {
	if reportID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "идентификатор заявки обязателен")
	}
	return s.lifecycle.Release(ctx, reportID, collectorID)
}

// List возвращает маршрут сборщика. Только чтение, без переходов.
func (s *RouteService) List(ctx context.Context, collectorID uuid.UUID) ([]models.WasteReport, error) {
	return s.reports.FindByCollector(ctx, collectorID)
}
