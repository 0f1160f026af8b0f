package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ecotrack-backend/internal/service"
)

// CollectionHandler обслуживает двухэтапную верификацию уборки.
type CollectionHandler struct {
	lifecycle *service.LifecycleService
	hotspots  *service.HotspotService
}

// NewCollectionHandler создаёт новый хэндлер.
func NewCollectionHandler(lifecycle *service.LifecycleService, hotspots *service.HotspotService) *CollectionHandler {
	return &CollectionHandler{lifecycle: lifecycle, hotspots: hotspots}
}

// Claim обрабатывает POST /api/reports/:id/claim.
func (h *CollectionHandler) Claim(c *gin.Context) {
	userID, reportID, ok := h.ids(c)
	if !ok {
		return
	}

	report, err := h.lifecycle.Claim(c.Request.Context(), reportID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Release обрабатывает POST /api/reports/:id/release.
func (h *CollectionHandler) Release(c *gin.Context) {
	userID, reportID, ok := h.ids(c)
	if !ok {
		return
	}

	report, err := h.lifecycle.Release(c.Request.Context(), reportID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// VerifyBefore обрабатывает POST /api/reports/:id/verify-before
// (multipart/form-data с полем image).
func (h *CollectionHandler) VerifyBefore(c *gin.Context) {
	userID, reportID, ok := h.ids(c)
	if !ok {
		return
	}

	image, ok := h.imageField(c)
	if !ok {
		return
	}

	result, err := h.lifecycle.VerifyBefore(c.Request.Context(), reportID, userID, image)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// VerifyAfter обрабатывает POST /api/reports/:id/verify-after
// (multipart/form-data: image, опционально latitude и longitude сборщика).
func (h *CollectionHandler) VerifyAfter(c *gin.Context) {
	userID, reportID, ok := h.ids(c)
	if !ok {
		return
	}

	image, ok := h.imageField(c)
	if !ok {
		return
	}

	location, ok := formLocation(c)
	if !ok {
		badRequest(c, "координаты должны быть числами")
		return
	}

	report, result, err := h.lifecycle.VerifyAfterAndComplete(
		c.Request.Context(), reportID, userID, image, location, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	if h.hotspots != nil {
		h.hotspots.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "verification": result})
}

func (h *CollectionHandler) ids(c *gin.Context) (userID, reportID uuid.UUID, ok bool) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return uuid.Nil, uuid.Nil, false
	}

	reportID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "невалидный идентификатор заявки")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, reportID, true
}

func (h *CollectionHandler) imageField(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "поле image обязательно")
		return nil, false
	}

	data, err := readImageFile(file)
	if err != nil {
		badRequest(c, "не удалось прочитать файл")
		return nil, false
	}
	return data, true
}
