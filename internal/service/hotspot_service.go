package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ecotrack-backend/internal/geo"
	"github.com/ignatzorin/ecotrack-backend/internal/logger"
	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/ws"
)

const hotspotCacheKey = "hotspots:current"

// UnresolvedFinder отдаёт незакрытые заявки в стабильном порядке
// (по времени подачи, затем по идентификатору).
type UnresolvedFinder interface {
	FindUnresolved(ctx context.Context) ([]models.WasteReport, error)
}

// HotspotConfig — параметры кластеризации.
type HotspotConfig struct {
	RadiusM    float64
	MinReports int
	CacheTTL   time.Duration
}

// HotspotService считает очаги: кластеры незакрытых заявок,
// где в радиусе скопилось достаточно точек.
type HotspotService struct {
	reports UnresolvedFinder
	cache   *CacheService
	hub     WSBroadcaster
	cfg     HotspotConfig
	log     *logrus.Entry
}

// WSBroadcaster рассылает событие всем подключённым клиентам.
type WSBroadcaster interface {
	BroadcastAll(event string, data interface{}) error
}

// NewHotspotService создаёт сервис очагов.
func NewHotspotService(reports UnresolvedFinder, cache *CacheService, cfg HotspotConfig) *HotspotService {
	return &HotspotService{
		reports: reports,
		cache:   cache,
		cfg:     cfg,
		log:     logger.WithComponent("hotspot"),
	}
}

// SetHub устанавливает WebSocket hub для события hotspots_updated.
func (s *HotspotService) SetHub(hub WSBroadcaster) {
	s.hub = hub
}

// Current возвращает очаги по незакрытым заявкам. Результат кэшируется:
// пересчёт по каждому запросу карты не нужен.
func (s *HotspotService) Current(ctx context.Context) ([]models.Hotspot, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(hotspotCacheKey); ok {
			if hotspots, ok := cached.([]models.Hotspot); ok {
				return hotspots, nil
			}
		}
	}

	reports, err := s.reports.FindUnresolved(ctx)
	if err != nil {
		return nil, err
	}

	hotspots := ComputeHotspots(reports, s.cfg.RadiusM, s.cfg.MinReports)

	if s.cache != nil {
		s.cache.Set(hotspotCacheKey, hotspots, s.cfg.CacheTTL)
	}
	return hotspots, nil
}

// Invalidate сбрасывает кэш и рассылает свежие очаги подписчикам.
// Вызывается после создания и закрытия заявок.
func (s *HotspotService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(hotspotCacheKey)
	}
	if s.hub == nil {
		return
	}
	hotspots, err := s.Current(ctx)
	if err != nil {
		s.log.WithError(err).Warn("не удалось пересчитать очаги")
		return
	}
	if err := s.hub.BroadcastAll(ws.EventHotspotsUpdated, hotspots); err != nil {
		s.log.WithError(err).Warn("не удалось разослать очаги")
	}
}

// ComputeHotspots выполняет жадную кластеризацию за один проход:
// каждая ещё не обработанная заявка становится центром и собирает соседей
// в радиусе. Соседи поглощаются кластером только при достижении минимума;
// соседи недобравшего кластера остаются доступными и могут образовать
// или пополнить очаг вокруг более удачного центра дальше по списку.
// Порядок входа фиксирует результат: при стабильной сортировке заявок
// одинаковый вход даёт одинаковые очаги.
func ComputeHotspots(reports []models.WasteReport, radiusM float64, minReports int) []models.Hotspot {
	if minReports < 1 {
		minReports = 1
	}

	located := make([]models.WasteReport, 0, len(reports))
	for _, r := range reports {
		if r.HasCoordinates() {
			located = append(located, r)
		}
	}

	hotspots := make([]models.Hotspot, 0)
	consumed := make([]bool, len(located))

	for i, center := range located {
		if consumed[i] {
			continue
		}
		consumed[i] = true

		var neighbors []int
		for j := range located {
			if consumed[j] {
				continue
			}
			dist := geo.HaversineM(*center.Latitude, *center.Longitude,
				*located[j].Latitude, *located[j].Longitude)
			if dist <= radiusM {
				neighbors = append(neighbors, j)
			}
		}

		if len(neighbors)+1 < minReports {
			continue
		}

		for _, j := range neighbors {
			consumed[j] = true
		}
		hotspots = append(hotspots, models.Hotspot{
			Latitude:  *center.Latitude,
			Longitude: *center.Longitude,
			Count:     len(neighbors) + 1,
		})
	}
	return hotspots
}
