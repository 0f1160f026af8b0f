package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/ecotrack-backend/internal/service"
)

// HotspotHandler отдаёт очаги скопления свалок для карты.
type HotspotHandler struct {
	hotspots *service.HotspotService
}

// NewHotspotHandler создаёт новый хэндлер.
func NewHotspotHandler(hotspots *service.HotspotService) *HotspotHandler {
	return &HotspotHandler{hotspots: hotspots}
}

// List обрабатывает GET /api/hotspots.
func (h *HotspotHandler) List(c *gin.Context) {
	hotspots, err := h.hotspots.Current(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotspots": hotspots, "count": len(hotspots)})
}
