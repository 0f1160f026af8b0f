package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/ecotrack-backend/internal/http/middleware"
	"github.com/ignatzorin/ecotrack-backend/internal/models"
)

var errUserNotFound = errors.New("пользователь не найден в контексте")

// currentUserID извлекает userID из контекста.
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errUserNotFound
	}

	return userID, nil
}

// respondError отвечает по типизированному коду ошибки.
func respondError(c *gin.Context, err error) {
	status, body := middleware.ErrorResponse(err)
	c.JSON(status, body)
}

// readImageFile читает файл из multipart формы целиком.
func readImageFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// formLocation собирает координаты из полей формы. Оба поля либо заданы,
// либо отсутствуют.
func formLocation(c *gin.Context) (*models.Location, bool) {
	latStr := c.PostForm("latitude")
	lngStr := c.PostForm("longitude")
	if latStr == "" && lngStr == "" {
		return nil, true
	}

	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr != nil || lngErr != nil {
		return nil, false
	}
	return &models.Location{Latitude: lat, Longitude: lng}, true
}

// optionalForm возвращает указатель на непустое значение поля формы.
func optionalForm(c *gin.Context, name string) *string {
	if v := c.PostForm(name); v != "" {
		return &v
	}
	return nil
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
