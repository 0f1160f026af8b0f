package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ecotrack-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ecotrack-backend/internal/geo"
	"github.com/ignatzorin/ecotrack-backend/internal/logger"
	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
	"github.com/ignatzorin/ecotrack-backend/internal/repository"
	"github.com/ignatzorin/ecotrack-backend/internal/ws"
)

// Имена проверок в ответе VerificationFailed.
const (
	CheckBefore   = "before"
	CheckAfter    = "after"
	CheckLocation = "location"
)

var errVerifierNotConfigured = errors.New("сервис проверки изображений не настроен")

// ReportRepository описывает взаимодействие сервиса с хранилищем заявок.
// Условные обновления возвращают false, если строка не подошла под условие.
type ReportRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.WasteReport, error)
	Create(ctx context.Context, report *models.WasteReport) error
	ClaimPending(ctx context.Context, reportID, collectorID uuid.UUID) (bool, error)
	Release(ctx context.Context, reportID, collectorID uuid.UUID) (bool, error)
	SetBeforeImage(ctx context.Context, reportID, collectorID uuid.UUID, path string) (bool, error)
	Complete(ctx context.Context, reportID, collectorID uuid.UUID, afterPath string, collectedAt time.Time) (bool, error)
	FindByStatus(ctx context.Context, status valueobject.ReportStatus) ([]models.WasteReport, error)
	FindByCollector(ctx context.Context, collectorID uuid.UUID) ([]models.WasteReport, error)
}

// UserRepository описывает доступ к профилям пользователей.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// VisionVerifier описывает контракт с подсистемой сравнения изображений.
type VisionVerifier interface {
	CompareBefore(ctx context.Context, original, before models.ImageSource) (*models.VerificationResult, error)
	CompareAfter(ctx context.Context, before, after models.ImageSource) (*models.VerificationResult, error)
}

// PhotoStore описывает блоб-хранилище фотографий.
type PhotoStore interface {
	Save(ctx context.Context, reportID uuid.UUID, kind string, r io.Reader) (string, int64, error)
	Load(ctx context.Context, relativePath string) ([]byte, error)
	Delete(ctx context.Context, relativePath string) error
}

// RewardCrediter начисляет баллы по событиям жизненного цикла.
type RewardCrediter interface {
	CreditReport(ctx context.Context, report *models.WasteReport)
	CreditCollection(ctx context.Context, report *models.WasteReport)
}

// WSNotifier интерфейс для отправки WebSocket событий.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// LifecycleConfig — пороги верификации и геопроверки.
type LifecycleConfig struct {
	MinConfidence    float64
	GeofenceRadiusKm float64
}

// LifecycleService владеет машиной состояний заявки:
// PENDING -> IN_PROGRESS -> COLLECTED, с release как единственным обратным ходом.
type LifecycleService struct {
	reports  ReportRepository
	users    UserRepository
	verifier VisionVerifier
	photos   PhotoStore
	rewards  RewardCrediter
	hub      WSNotifier
	cfg      LifecycleConfig
	log      *logrus.Entry
}

// NewLifecycleService создаёт сервис жизненного цикла.
func NewLifecycleService(reports ReportRepository, users UserRepository, verifier VisionVerifier, photos PhotoStore, rewards RewardCrediter, cfg LifecycleConfig) *LifecycleService {
	return &LifecycleService{
		reports:  reports,
		users:    users,
		verifier: verifier,
		photos:   photos,
		rewards:  rewards,
		cfg:      cfg,
		log:      logger.WithComponent("lifecycle"),
	}
}

// SetHub устанавливает WebSocket hub для отправки событий.
func (s *LifecycleService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CreateReportInput описывает входные данные новой заявки.
type CreateReportInput struct {
	ReporterID uuid.UUID
	Image      []byte
	Location   *models.Location
	City       *string
	State      *string
	Country    *string
	// Результат AI классификации на стороне подачи заявки.
	WasteType         *string
	EstimatedWeightKg *float64
	ReportedAt        time.Time
}

// CreateReport создаёт заявку в статусе PENDING и начисляет баллы жителю.
func (s *LifecycleService) CreateReport(ctx context.Context, in CreateReportInput) (*models.WasteReport, error) {
	if len(in.Image) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "фото свалки обязательно")
	}
	if in.Location != nil && !geo.ValidCoordinates(in.Location.Latitude, in.Location.Longitude) {
		return nil, apperror.New(apperror.ErrCodeValidation, "координаты вне допустимого диапазона")
	}

	reporter, err := s.getUser(ctx, in.ReporterID)
	if err != nil {
		return nil, err
	}
	if !reporter.HasFullAddress() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заполните город, регион и страну в профиле перед подачей заявки")
	}

	report := &models.WasteReport{
		ID:                uuid.New(),
		ReporterID:        in.ReporterID,
		Status:            valueobject.ReportStatusPending,
		City:              in.City,
		State:             in.State,
		Country:           in.Country,
		WasteType:         in.WasteType,
		EstimatedWeightKg: in.EstimatedWeightKg,
		ReportedAt:        in.ReportedAt,
	}
	if in.Location != nil {
		report.Latitude = &in.Location.Latitude
		report.Longitude = &in.Location.Longitude
	}

	// Фото сохраняется до записи в БД: заявка без фото бессмысленна.
	path, _, err := s.photos.Save(ctx, report.ID, "original", bytes.NewReader(in.Image))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить фото")
	}
	report.OriginalImagePath = path

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	if s.rewards != nil {
		s.rewards.CreditReport(ctx, report)
	}

	s.log.WithFields(logrus.Fields{"report_id": report.ID, "reporter_id": report.ReporterID}).Info("заявка создана")
	return report, nil
}

// Claim переводит заявку PENDING -> IN_PROGRESS с эксклюзивным назначением сборщика.
// Точка эксклюзивности: условное обновление по статусу, из гонки выигрывает один.
func (s *LifecycleService) Claim(ctx context.Context, reportID, collectorID uuid.UUID) (*models.WasteReport, error) {
	if err := s.requireEligibleCollector(ctx, collectorID); err != nil {
		return nil, err
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != valueobject.ReportStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка уже взята в работу или закрыта")
	}

	ok, err := s.reports.ClaimPending(ctx, reportID, collectorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Проигравший в гонке: между чтением и обновлением статус изменился.
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка уже взята в работу или закрыта")
	}

	report.Status = valueobject.ReportStatusInProgress
	report.CollectorID = &collectorID

	s.notify(report.ReporterID, ws.EventReportClaimed, report)
	s.log.WithFields(logrus.Fields{"report_id": reportID, "collector_id": collectorID}).Info("заявка взята в работу")
	return report, nil
}

// Release возвращает заявку IN_PROGRESS -> PENDING. Допускается только для
// назначенного сборщика.
func (s *LifecycleService) Release(ctx context.Context, reportID, collectorID uuid.UUID) (*models.WasteReport, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status != valueobject.ReportStatusInProgress {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка не находится в работе")
	}
	if report.CollectorID == nil || *report.CollectorID != collectorID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заявка закреплена за другим сборщиком")
	}

	ok, err := s.reports.Release(ctx, reportID, collectorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка не находится в работе")
	}

	report.Status = valueobject.ReportStatusPending
	report.CollectorID = nil
	report.BeforeImagePath = nil

	s.notify(report.ReporterID, ws.EventReportReleased, report)
	return report, nil
}

// VerifyBefore сравнивает фото «до» с исходным фото заявки и сохраняет его
// только при положительном вердикте с достаточной уверенностью.
// Эта проверка отсекает попытку присвоить чужую уборку.
func (s *LifecycleService) VerifyBefore(ctx context.Context, reportID, collectorID uuid.UUID, beforeImage []byte) (*models.VerificationResult, error) {
	if len(beforeImage) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "фото «до» обязательно")
	}

	if s.verifier == nil {
		return nil, apperror.NewVerificationUnavailable(errVerifierNotConfigured)
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := s.requireInProgressBy(report, collectorID); err != nil {
		return nil, err
	}

	original, err := s.photos.Load(ctx, report.OriginalImagePath)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось прочитать исходное фото")
	}

	result, err := s.verifier.CompareBefore(ctx,
		models.ImageSource{Data: original},
		models.ImageSource{Data: beforeImage},
	)
	if err != nil {
		// VERIFICATION_UNAVAILABLE: заявка остаётся нетронутой, можно повторить.
		return nil, err
	}

	if !result.IsValid || result.Confidence < s.cfg.MinConfidence {
		return result, apperror.NewVerificationFailed([]string{CheckBefore}, result.Confidence)
	}

	path, _, err := s.photos.Save(ctx, report.ID, "before", bytes.NewReader(beforeImage))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить фото «до»")
	}

	ok, err := s.reports.SetBeforeImage(ctx, reportID, collectorID, path)
	if err != nil {
		s.discardPhoto(ctx, path)
		return nil, err
	}
	if !ok {
		// Условное обновление не прошло: файл уже не привязать к заявке.
		s.discardPhoto(ctx, path)
		return nil, apperror.New(apperror.ErrCodeInvalidState, "заявка не находится в работе")
	}

	s.log.WithFields(logrus.Fields{
		"report_id":  reportID,
		"confidence": result.Confidence,
	}).Info("фото «до» подтверждено")
	return result, nil
}

// VerifyAfterAndComplete сравнивает фото «до» и «после», проверяет геопривязку
// и закрывает заявку только если все условия выполнены. Часы и позиция
// передаются явно, чтобы тесты подставляли детерминированные значения.
func (s *LifecycleService) VerifyAfterAndComplete(ctx context.Context, reportID, collectorID uuid.UUID, afterImage []byte, currentLocation *models.Location, now time.Time) (*models.WasteReport, *models.VerificationResult, error) {
	if len(afterImage) == 0 {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "фото «после» обязательно")
	}
	if s.verifier == nil {
		return nil, nil, apperror.NewVerificationUnavailable(errVerifierNotConfigured)
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requireInProgressBy(report, collectorID); err != nil {
		return nil, nil, err
	}
	// Этап «после» не может обогнать этап «до».
	if report.BeforeImagePath == nil {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "сначала подтвердите фото «до»")
	}

	before, err := s.photos.Load(ctx, *report.BeforeImagePath)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось прочитать фото «до»")
	}

	result, err := s.verifier.CompareAfter(ctx,
		models.ImageSource{Data: before},
		models.ImageSource{Data: afterImage},
	)
	if err != nil {
		return nil, nil, err
	}

	var failed []string
	if !result.IsValid || result.Confidence < s.cfg.MinConfidence {
		failed = append(failed, CheckAfter)
	}

	// Геопроверка пропускается, если у самой заявки нет координат.
	if report.HasCoordinates() {
		if currentLocation == nil {
			return nil, result, apperror.New(apperror.ErrCodeValidation, "текущие координаты обязательны для завершения")
		}
		dist := geo.HaversineKm(*report.Latitude, *report.Longitude, currentLocation.Latitude, currentLocation.Longitude)
		if dist > s.cfg.GeofenceRadiusKm {
			failed = append(failed, CheckLocation)
		}
	}

	if len(failed) > 0 {
		return nil, result, apperror.NewVerificationFailed(failed, result.Confidence)
	}

	path, _, err := s.photos.Save(ctx, report.ID, "after", bytes.NewReader(afterImage))
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить фото «после»")
	}

	ok, err := s.reports.Complete(ctx, reportID, collectorID, path, now)
	if err != nil {
		s.discardPhoto(ctx, path)
		return nil, nil, err
	}
	if !ok {
		s.discardPhoto(ctx, path)
		return nil, nil, apperror.New(apperror.ErrCodeInvalidState, "заявка не находится в работе")
	}

	report.Status = valueobject.ReportStatusCollected
	report.AfterImagePath = &path
	report.CollectedAt = &now

	// COLLECTED терминален, повторное начисление структурно невозможно.
	if s.rewards != nil {
		s.rewards.CreditCollection(ctx, report)
	}

	s.notify(report.ReporterID, ws.EventReportCollected, report)
	s.log.WithFields(logrus.Fields{
		"report_id":    reportID,
		"collector_id": collectorID,
		"confidence":   result.Confidence,
	}).Info("заявка закрыта, уборка подтверждена")
	return report, result, nil
}

// GetReport возвращает заявку по идентификатору.
func (s *LifecycleService) GetReport(ctx context.Context, reportID uuid.UUID) (*models.WasteReport, error) {
	return s.getReport(ctx, reportID)
}

// ListByStatus возвращает заявки в заданном статусе.
func (s *LifecycleService) ListByStatus(ctx context.Context, status valueobject.ReportStatus) ([]models.WasteReport, error) {
	if !status.IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s.reports.FindByStatus(ctx, status)
}

// requireEligibleCollector проверяет право пользователя брать заявки.
func (s *LifecycleService) requireEligibleCollector(ctx context.Context, collectorID uuid.UUID) error {
	user, err := s.getUser(ctx, collectorID)
	if err != nil {
		return err
	}
	if !user.EnableCollector {
		return apperror.New(apperror.ErrCodeUnauthorized, "сбор отходов не включён для этого профиля")
	}
	if !user.HasFullAddress() {
		return apperror.New(apperror.ErrCodeUnauthorized, "заполните город, регион и страну в профиле перед сбором")
	}
	return nil
}

func (s *LifecycleService) requireInProgressBy(report *models.WasteReport, collectorID uuid.UUID) error {
	if report.Status != valueobject.ReportStatusInProgress {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка не находится в работе")
	}
	if report.CollectorID == nil || *report.CollectorID != collectorID {
		return apperror.New(apperror.ErrCodeForbidden, "заявка закреплена за другим сборщиком")
	}
	return nil
}

func (s *LifecycleService) getReport(ctx context.Context, reportID uuid.UUID) (*models.WasteReport, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *LifecycleService) getUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// discardPhoto удаляет файл, который не удалось привязать к заявке.
func (s *LifecycleService) discardPhoto(ctx context.Context, relativePath string) {
	if err := s.photos.Delete(ctx, relativePath); err != nil {
		s.log.WithError(err).WithField("path", relativePath).Warn("не удалось удалить непривязанное фото")
	}
}

func (s *LifecycleService) notify(userID uuid.UUID, event string, data interface{}) {
	if s.hub == nil {
		return
	}
	if err := s.hub.BroadcastToUser(userID, event, data); err != nil {
		s.log.WithError(err).Warn("не удалось отправить событие")
	}
}
