package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

// newStubServer поднимает сервер, отвечающий фиксированным содержимым
// choices[0].message.content.
func newStubServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *Client {
	c := NewClient(baseURL, "gpt-4o-mini", 5*time.Second)
	return c
}

func TestCompareBefore_Valid(t *testing.T) {
	srv := newStubServer(t, `{"isValid": true, "confidence": 0.82, "message": "совпадает", "location_match": true, "waste_match": true, "landmarks_match": true}`)
	defer srv.Close()

	c := newTestClient(srv.URL)
	res, err := c.CompareBefore(context.Background(), models.ImageSource{Data: pngHeader}, models.ImageSource{Data: pngHeader})
	require.NoError(t, err)

	assert.Equal(t, models.VerificationBefore, res.Kind)
	assert.True(t, res.IsValid)
	assert.InDelta(t, 0.82, res.Confidence, 1e-9)
	assert.True(t, res.Checks.WasteMatch)
}

func TestCompareAfter_NegativeVerdict(t *testing.T) {
	srv := newStubServer(t, "```json\n{\"isValid\": false, \"confidence\": 0.91, \"message\": \"мусор не убран\", \"waste_removed\": false, \"ground_clean\": false}\n```")
	defer srv.Close()

	c := newTestClient(srv.URL)
	res, err := c.CompareAfter(context.Background(), models.ImageSource{Data: pngHeader}, models.ImageSource{Data: pngHeader})
	require.NoError(t, err)

	// Отрицательный вердикт — нормальный результат, не ошибка.
	assert.Equal(t, models.VerificationAfter, res.Kind)
	assert.False(t, res.IsValid)
	assert.False(t, res.Checks.WasteRemoved)
}

func TestCompare_MalformedOutputIsUnavailable(t *testing.T) {
	srv := newStubServer(t, "не могу определить")
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CompareBefore(context.Background(), models.ImageSource{Data: pngHeader}, models.ImageSource{Data: pngHeader})
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err))
}

func TestCompare_HTTPErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CompareAfter(context.Background(), models.ImageSource{Data: pngHeader}, models.ImageSource{Data: pngHeader})
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err))
}

func TestCompare_NoBaseURL(t *testing.T) {
	c := NewClient("", "", time.Second)
	_, err := c.CompareBefore(context.Background(), models.ImageSource{Data: pngHeader}, models.ImageSource{Data: pngHeader})
	require.Error(t, err)
	assert.True(t, apperror.IsRetryable(err))
}
