package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/ecotrack-backend/internal/service"
)

// LeaderboardHandler отдаёт таблицу лидеров по баллам.
type LeaderboardHandler struct {
	rewards *service.RewardService
}

// NewLeaderboardHandler создаёт новый хэндлер.
func NewLeaderboardHandler(rewards *service.RewardService) *LeaderboardHandler {
	return &LeaderboardHandler{rewards: rewards}
}

// List обрабатывает GET /api/leaderboard?limit=20.
func (h *LeaderboardHandler) List(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			badRequest(c, "limit должен быть неотрицательным числом")
			return
		}
		limit = parsed
	}

	entries, err := h.rewards.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
