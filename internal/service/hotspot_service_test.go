package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/ecotrack-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ecotrack-backend/internal/models"
)

type stubUnresolvedFinder struct {
	reports []models.WasteReport
	calls   int
}

func (s *stubUnresolvedFinder) FindUnresolved(ctx context.Context) ([]models.WasteReport, error) {
	s.calls++
	return s.reports, nil
}

func locatedReport(lat, lng float64) models.WasteReport {
	return models.WasteReport{
		ID:        uuid.New(),
		Status:    valueobject.ReportStatusPending,
		Latitude:  &lat,
		Longitude: &lng,
	}
}

func TestComputeHotspots_ClusterAndOutlier(t *testing.T) {
	// Пять заявок в пределах ~400 метров и одна в двух километрах.
	reports := []models.WasteReport{
		locatedReport(12.9716, 77.5946),
		locatedReport(12.9720, 77.5950),
		locatedReport(12.9730, 77.5940),
		locatedReport(12.9710, 77.5952),
		locatedReport(12.9725, 77.5946),
		locatedReport(12.9896, 77.5946),
	}

	hotspots := ComputeHotspots(reports, 500, 3)

	assert.Len(t, hotspots, 1)
	assert.Equal(t, 5, hotspots[0].Count)
	assert.InDelta(t, 12.9716, hotspots[0].Latitude, 0.0001)
}

func TestComputeHotspots_BelowMinimum(t *testing.T) {
	reports := []models.WasteReport{
		locatedReport(12.9716, 77.5946),
		locatedReport(12.9720, 77.5950),
	}

	hotspots := ComputeHotspots(reports, 500, 3)
	assert.Empty(t, hotspots)
}

func TestComputeHotspots_SkipsReportsWithoutCoordinates(t *testing.T) {
	noCoords := models.WasteReport{ID: uuid.New(), Status: valueobject.ReportStatusPending}
	reports := []models.WasteReport{
		locatedReport(12.9716, 77.5946),
		locatedReport(12.9720, 77.5950),
		noCoords,
		locatedReport(12.9725, 77.5946),
	}

	hotspots := ComputeHotspots(reports, 500, 3)

	assert.Len(t, hotspots, 1)
	assert.Equal(t, 3, hotspots[0].Count)
}

func TestComputeHotspots_FailedSeedKeepsNeighborsAvailable(t *testing.T) {
	// Цепочка из четырёх заявок: A-B, B-C и B-D на ~450 метрах,
	// остальные пары дальше 500. Кластер вокруг A недобирает минимум,
	// поэтому B остаётся свободной и собирает очаг из трёх заявок.
	a := locatedReport(12.97565, 77.5946)
	b := locatedReport(12.9716, 77.5946)
	c := locatedReport(12.96755, 77.5946)
	d := locatedReport(12.9716, 77.59876)

	hotspots := ComputeHotspots([]models.WasteReport{a, b, c, d}, 500, 3)

	assert.Len(t, hotspots, 1)
	assert.Equal(t, 3, hotspots[0].Count)
	assert.InDelta(t, *b.Latitude, hotspots[0].Latitude, 0.00001)
	assert.InDelta(t, *b.Longitude, hotspots[0].Longitude, 0.00001)
}

func TestComputeHotspots_Deterministic(t *testing.T) {
	reports := []models.WasteReport{
		locatedReport(12.9716, 77.5946),
		locatedReport(12.9720, 77.5950),
		locatedReport(12.9730, 77.5940),
		locatedReport(12.9896, 77.5946),
	}

	first := ComputeHotspots(reports, 500, 3)
	second := ComputeHotspots(reports, 500, 3)
	assert.Equal(t, first, second)
}

func TestHotspotService_CachesResult(t *testing.T) {
	finder := &stubUnresolvedFinder{reports: []models.WasteReport{
		locatedReport(12.9716, 77.5946),
		locatedReport(12.9720, 77.5950),
		locatedReport(12.9725, 77.5946),
	}}
	svc := NewHotspotService(finder, NewCacheService(), HotspotConfig{
		RadiusM:    500,
		MinReports: 3,
		CacheTTL:   time.Minute,
	})

	first, err := svc.Current(context.Background())
	assert.NoError(t, err)
	second, err := svc.Current(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, finder.calls, "повторный запрос должен идти из кэша")
}

func TestHotspotService_InvalidateRecomputes(t *testing.T) {
	finder := &stubUnresolvedFinder{reports: []models.WasteReport{
		locatedReport(12.9716, 77.5946),
		locatedReport(12.9720, 77.5950),
		locatedReport(12.9725, 77.5946),
	}}
	svc := NewHotspotService(finder, NewCacheService(), HotspotConfig{
		RadiusM:    500,
		MinReports: 3,
		CacheTTL:   time.Minute,
	})

	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("current вернул ошибку: %v", err)
	}
	svc.Invalidate(context.Background())

	if _, err := svc.Current(context.Background()); err != nil {
		t.Fatalf("current после invalidate вернул ошибку: %v", err)
	}
	assert.Equal(t, 2, finder.calls)
}
