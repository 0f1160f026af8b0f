package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

// Минимальный валидный заголовок PNG для определения MIME типа.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestNormalizeImage_RawBytes(t *testing.T) {
	uri, err := NormalizeImage(context.Background(), http.DefaultClient, models.ImageSource{Data: pngHeader})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestNormalizeImage_UnknownBytesFallbackJPEG(t *testing.T) {
	uri, err := NormalizeImage(context.Background(), http.DefaultClient, models.ImageSource{Data: []byte{0x01, 0x02, 0x03}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uri, "data:image/jpeg;base64,"))
}

func TestNormalizeImage_DataURIPassthrough(t *testing.T) {
	src := models.ImageSource{URL: "data:image/jpeg;base64,AAAA"}
	uri, err := NormalizeImage(context.Background(), http.DefaultClient, src)
	require.NoError(t, err)
	assert.Equal(t, src.URL, uri)
}

func TestNormalizeImage_RemoteURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	uri, err := NormalizeImage(context.Background(), srv.Client(), models.ImageSource{URL: srv.URL + "/photo.png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestNormalizeImage_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NormalizeImage(context.Background(), srv.Client(), models.ImageSource{URL: srv.URL})
	require.Error(t, err)
	// Недоступность источника — транзитная проблема, можно повторить.
	assert.True(t, apperror.IsRetryable(err))
}

func TestNormalizeImage_Empty(t *testing.T) {
	_, err := NormalizeImage(context.Background(), http.DefaultClient, models.ImageSource{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestNormalizeImage_UnsupportedScheme(t *testing.T) {
	_, err := NormalizeImage(context.Background(), http.DefaultClient, models.ImageSource{URL: "ftp://example.com/a.jpg"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}
