package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/ecotrack-backend/internal/logger"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно: статус и тело ответа
// определяются типизированным кодом ошибки, а не текстом сообщения.
// Внутренние ошибки маскируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		status, body := ErrorResponse(err)
		c.JSON(status, body)
	}
}

// ErrorResponse раскладывает ошибку в HTTP статус и тело ответа.
// Также используется хэндлерами, отвечающими без c.Error.
func ErrorResponse(err error) (int, gin.H) {
	var vfErr *apperror.VerificationFailedError
	if errors.As(err, &vfErr) {
		return vfErr.HTTPStatus, gin.H{
			"error":         vfErr.Message,
			"code":          vfErr.Code,
			"failed_checks": vfErr.FailedChecks,
			"confidence":    vfErr.Confidence,
		}
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == apperror.ErrCodeInternal {
			return http.StatusInternalServerError, gin.H{
				"error": "внутренняя ошибка сервера",
				"code":  appErr.Code,
			}
		}
		return appErr.HTTPStatus, gin.H{
			"error": appErr.Message,
			"code":  appErr.Code,
		}
	}

	return http.StatusInternalServerError, gin.H{
		"error": "внутренняя ошибка сервера",
		"code":  apperror.ErrCodeInternal,
	}
}
