package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/repository"
)

type creditCall struct {
	reportID uuid.UUID
	userID   uuid.UUID
	kind     string
	points   int
}

type mockRewardRepository struct {
	calls    []creditCall
	credited map[string]bool
}

func newMockRewardRepository() *mockRewardRepository {
	return &mockRewardRepository{credited: make(map[string]bool)}
}

func (m *mockRewardRepository) Credit(ctx context.Context, reportID, userID uuid.UUID, kind string, points int) (bool, error) {
	m.calls = append(m.calls, creditCall{reportID, userID, kind, points})
	key := reportID.String() + ":" + kind
	if m.credited[key] {
		return false, nil
	}
	m.credited[key] = true
	return true, nil
}

type stubLeaderboard struct {
	entries []models.LeaderboardEntry
}

func (s *stubLeaderboard) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return s.entries, nil
}

func TestRewardService_CreditReport(t *testing.T) {
	repo := newMockRewardRepository()
	svc := NewRewardService(repo, &stubLeaderboard{}, RewardConfig{ReportPoints: 10, CollectPoints: 20})

	report := &models.WasteReport{ID: uuid.New(), ReporterID: uuid.New()}
	svc.CreditReport(context.Background(), report)

	assert.Len(t, repo.calls, 1)
	assert.Equal(t, report.ReporterID, repo.calls[0].userID)
	assert.Equal(t, repository.RewardKindReport, repo.calls[0].kind)
	assert.Equal(t, 10, repo.calls[0].points)
}

func TestRewardService_CreditCollectionIdempotent(t *testing.T) {
	repo := newMockRewardRepository()
	svc := NewRewardService(repo, &stubLeaderboard{}, RewardConfig{ReportPoints: 10, CollectPoints: 20})

	collectorID := uuid.New()
	report := &models.WasteReport{ID: uuid.New(), ReporterID: uuid.New(), CollectorID: &collectorID}

	// Повтор не должен приводить ко второму начислению.
	svc.CreditCollection(context.Background(), report)
	svc.CreditCollection(context.Background(), report)

	assert.Len(t, repo.calls, 2)
	assert.Equal(t, 20, repo.calls[0].points)
	assert.Len(t, repo.credited, 1, "вторая попытка должна быть отклонена уникальностью")
}

func TestRewardService_CreditCollectionWithoutCollector(t *testing.T) {
	repo := newMockRewardRepository()
	svc := NewRewardService(repo, &stubLeaderboard{}, RewardConfig{ReportPoints: 10, CollectPoints: 20})

	report := &models.WasteReport{ID: uuid.New(), ReporterID: uuid.New()}
	svc.CreditCollection(context.Background(), report)

	assert.Empty(t, repo.calls)
}
