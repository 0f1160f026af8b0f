package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

const beforePrompt = `Сравни два фото одного места. Первое — исходная заявка о свалке, второе — фото сборщика перед уборкой.
Определи, то же ли это место и та же ли свалка.
Ответь строго одним JSON объектом без пояснений:
{"isValid": bool, "confidence": число от 0 до 1, "message": "краткое объяснение", "location_match": bool, "waste_match": bool, "landmarks_match": bool}`

const afterPrompt = `Сравни два фото одного места. Первое — до уборки, второе — после.
Определи, убрана ли свалка и чистая ли поверхность, и то же ли это место.
Ответь строго одним JSON объектом без пояснений:
{"isValid": bool, "confidence": число от 0 до 1, "message": "краткое объяснение", "waste_removed": bool, "ground_clean": bool, "landmarks_match": bool}`

// Client вызывает мультимодальную модель через OpenAI-совместимый API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создаёт экземпляр клиента.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	apiKey := os.Getenv("AI_API_KEY")

	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CompareBefore сравнивает исходное фото заявки с фото «до» сборщика.
func (c *Client) CompareBefore(ctx context.Context, original, before models.ImageSource) (*models.VerificationResult, error) {
	return c.compare(ctx, beforePrompt, original, before, models.VerificationBefore)
}

// CompareAfter сравнивает фото «до» и «после» уборки.
func (c *Client) CompareAfter(ctx context.Context, before, after models.ImageSource) (*models.VerificationResult, error) {
	return c.compare(ctx, afterPrompt, before, after, models.VerificationAfter)
}

func (c *Client) compare(ctx context.Context, prompt string, first, second models.ImageSource, kind models.VerificationKind) (*models.VerificationResult, error) {
	if c.baseURL == "" {
		return nil, apperror.NewVerificationUnavailable(fmt.Errorf("ai: baseURL не задан"))
	}

	firstURI, err := NormalizeImage(ctx, c.httpClient, first)
	if err != nil {
		return nil, err
	}
	secondURI, err := NormalizeImage(ctx, c.httpClient, second)
	if err != nil {
		return nil, err
	}

	raw, err := c.chatCompletion(ctx, prompt, firstURI, secondURI)
	if err != nil {
		// Сетевые и протокольные сбои — транзитная недоступность, не негативный вердикт.
		return nil, apperror.NewVerificationUnavailable(err)
	}

	result, err := ParseVerdict(raw, kind)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// chatCompletion выполняет запрос к OpenAI-совместимому API с двумя изображениями.
func (c *Client) chatCompletion(ctx context.Context, prompt, firstURI, secondURI string) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]any{"url": firstURI}},
					{"type": "image_url", "image_url": map[string]any{"url": secondURI}},
				},
			},
		},
		"max_tokens":  512,
		"temperature": 0.1,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := c.baseURL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	url += "chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("ai: код ответа %d: %v", resp.StatusCode, errorBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("ai: пустой ответ")
	}

	return result.Choices[0].Message.Content, nil
}
