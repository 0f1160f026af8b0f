package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/ecotrack-backend/internal/domain/valueobject"
	"github.com/ignatzorin/ecotrack-backend/internal/service"
)

// ReportHandler обслуживает заявки на уборку свалок.
type ReportHandler struct {
	lifecycle *service.LifecycleService
	hotspots  *service.HotspotService
}

// NewReportHandler создаёт новый хэндлер.
func NewReportHandler(lifecycle *service.LifecycleService, hotspots *service.HotspotService) *ReportHandler {
	return &ReportHandler{lifecycle: lifecycle, hotspots: hotspots}
}

// Create обрабатывает POST /api/reports (multipart/form-data).
func (h *ReportHandler) Create(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "поле image обязательно")
		return
	}
	if file.Size == 0 {
		badRequest(c, "файл не может быть пустым")
		return
	}

	data, err := readImageFile(file)
	if err != nil {
		badRequest(c, "не удалось прочитать файл")
		return
	}
	if !filetype.IsImage(data) {
		badRequest(c, "разрешены только изображения")
		return
	}

	location, ok := formLocation(c)
	if !ok {
		badRequest(c, "координаты должны быть числами")
		return
	}

	input := service.CreateReportInput{
		ReporterID: userID,
		Image:      data,
		Location:   location,
		City:       optionalForm(c, "city"),
		State:      optionalForm(c, "state"),
		Country:    optionalForm(c, "country"),
		WasteType:  optionalForm(c, "waste_type"),
		ReportedAt: time.Now(),
	}
	if weightStr := c.PostForm("estimated_weight_kg"); weightStr != "" {
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil || weight < 0 {
			badRequest(c, "estimated_weight_kg должен быть неотрицательным числом")
			return
		}
		input.EstimatedWeightKg = &weight
	}

	report, err := h.lifecycle.CreateReport(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.hotspots != nil {
		h.hotspots.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusCreated, report)
}

// Get обрабатывает GET /api/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "невалидный идентификатор заявки")
		return
	}

	report, err := h.lifecycle.GetReport(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// List обрабатывает GET /api/reports?status=PENDING.
func (h *ReportHandler) List(c *gin.Context) {
	status, err := valueobject.NewReportStatus(c.DefaultQuery("status", string(valueobject.ReportStatusPending)))
	if err != nil {
		badRequest(c, "некорректный статус заявки")
		return
	}

	reports, err := h.lifecycle.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}
