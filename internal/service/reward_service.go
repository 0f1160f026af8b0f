package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ecotrack-backend/internal/logger"
	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/repository"
)

// RewardRepository начисляет баллы транзакционно. false без ошибки
// означает, что начисление по этой паре (заявка, вид) уже было.
type RewardRepository interface {
	Credit(ctx context.Context, reportID, userID uuid.UUID, kind string, points int) (bool, error)
}

// LeaderboardSource отдаёт таблицу лидеров по суммарным баллам.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// RewardConfig — размеры начислений.
type RewardConfig struct {
	ReportPoints  int
	CollectPoints int
}

// RewardService начисляет баллы за события жизненного цикла заявки.
// Ошибки начисления не роняют основную операцию: заявка важнее баллов,
// а уникальный индекс в БД защищает от двойного начисления при повторе.
type RewardService struct {
	rewards RewardRepository
	users   LeaderboardSource
	cfg     RewardConfig
	log     *logrus.Entry
}

// NewRewardService создаёт сервис баллов.
func NewRewardService(rewards RewardRepository, users LeaderboardSource, cfg RewardConfig) *RewardService {
	return &RewardService{
		rewards: rewards,
		users:   users,
		cfg:     cfg,
		log:     logger.WithComponent("reward"),
	}
}

// CreditReport начисляет жителю баллы за поданную заявку.
func (s *RewardService) CreditReport(ctx context.Context, report *models.WasteReport) {
	s.credit(ctx, report.ID, report.ReporterID, repository.RewardKindReport, s.cfg.ReportPoints)
}

// CreditCollection начисляет сборщику баллы за подтверждённую уборку.
func (s *RewardService) CreditCollection(ctx context.Context, report *models.WasteReport) {
	if report.CollectorID == nil {
		s.log.WithField("report_id", report.ID).Error("начисление за уборку без сборщика")
		return
	}
	s.credit(ctx, report.ID, *report.CollectorID, repository.RewardKindCollect, s.cfg.CollectPoints)
}

// Leaderboard возвращает таблицу лидеров.
func (s *RewardService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return s.users.Leaderboard(ctx, limit)
}

func (s *RewardService) credit(ctx context.Context, reportID, userID uuid.UUID, kind string, points int) {
	credited, err := s.rewards.Credit(ctx, reportID, userID, kind, points)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"report_id": reportID,
			"user_id":   userID,
			"kind":      kind,
		}).Error("не удалось начислить баллы")
		return
	}
	if !credited {
		s.log.WithFields(logrus.Fields{"report_id": reportID, "kind": kind}).Warn("повторное начисление пропущено")
		return
	}
	s.log.WithFields(logrus.Fields{
		"report_id": reportID,
		"user_id":   userID,
		"kind":      kind,
		"points":    points,
	}).Info("баллы начислены")
}
