package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCollectionHandler_Claim_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CollectionHandler{}
	r.POST("/reports/:id/claim", handler.Claim)

	reportID := uuid.New()
	req, _ := http.NewRequest("POST", "/reports/"+reportID.String()+"/claim", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCollectionHandler_VerifyBefore_InvalidReportID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CollectionHandler{}
	r.POST("/reports/:id/verify-before", func(c *gin.Context) {
		c.Set("userID", uuid.New())
		handler.VerifyBefore(c)
	})

	req, _ := http.NewRequest("POST", "/reports/invalid-uuid/verify-before", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollectionHandler_VerifyAfter_MissingImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CollectionHandler{}
	reportID := uuid.New()
	r.POST("/reports/:id/verify-after", func(c *gin.Context) {
		c.Set("userID", uuid.New())
		handler.VerifyAfter(c)
	})

	req, _ := http.NewRequest("POST", "/reports/"+reportID.String()+"/verify-after", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
