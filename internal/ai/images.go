package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/h2non/filetype"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

// Максимальный размер изображения, скачиваемого по URL.
const maxRemoteImageBytes = 20 * 1024 * 1024

// NormalizeImage приводит разнородный источник изображения (сырые байты,
// удалённый URL или data-URI) к единой форме data-URI для передачи модели.
func NormalizeImage(ctx context.Context, client *http.Client, src models.ImageSource) (string, error) {
	if len(src.Data) > 0 {
		return encodeDataURI(src.Data), nil
	}

	url := strings.TrimSpace(src.URL)
	switch {
	case url == "":
		return "", apperror.New(apperror.ErrCodeValidation, "изображение не передано")
	case strings.HasPrefix(url, "data:"):
		return url, nil
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		data, err := fetchImage(ctx, client, url)
		if err != nil {
			return "", apperror.NewVerificationUnavailable(err)
		}
		return encodeDataURI(data), nil
	default:
		return "", apperror.New(apperror.ErrCodeValidation, "неподдерживаемый источник изображения")
	}
}

// encodeDataURI кодирует байты в data-URI, определяя MIME тип по сигнатуре файла.
func encodeDataURI(data []byte) string {
	mime := "image/jpeg"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// fetchImage скачивает изображение по URL с ограничением размера.
func fetchImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai: не удалось скачать изображение: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ai: изображение недоступно, код %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxRemoteImageBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("ai: ошибка чтения изображения: %w", err)
	}
	if len(data) > maxRemoteImageBytes {
		return nil, fmt.Errorf("ai: изображение превышает лимит %d байт", maxRemoteImageBytes)
	}

	return data, nil
}
