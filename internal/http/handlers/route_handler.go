package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ecotrack-backend/internal/service"
)

// RouteHandler обслуживает маршрут сборщика.
type RouteHandler struct {
	routes *service.RouteService
}

// NewRouteHandler создаёт новый хэндлер.
func NewRouteHandler(routes *service.RouteService) *RouteHandler {
	return &RouteHandler{routes: routes}
}

// List обрабатывает GET /api/route.
func (h *RouteHandler) List(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	reports, err := h.routes.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// Add обрабатывает POST /api/route/:id.
func (h *RouteHandler) Add(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "невалидный идентификатор заявки")
		return
	}

	report, err := h.routes.Add(c.Request.Context(), userID, reportID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Remove обрабатывает DELETE /api/route/:id.
func (h *RouteHandler) Remove(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "невалидный идентификатор заявки")
		return
	}

	report, err := h.routes.Remove(c.Request.Context(), userID, reportID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
