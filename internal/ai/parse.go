package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

var codeFenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// verdictEnvelope — строгая схема ответа модели. Поля isValid и confidence
// обязательны: их отсутствие означает нарушение контракта, а не негативный
// вердикт. Булевы подпроверки опциональны и по умолчанию false.
type verdictEnvelope struct {
	IsValid        *bool    `json:"isValid"`
	Confidence     *float64 `json:"confidence"`
	Message        string   `json:"message"`
	LocationMatch  *bool    `json:"location_match"`
	WasteMatch     *bool    `json:"waste_match"`
	LandmarksMatch *bool    `json:"landmarks_match"`
	WasteRemoved   *bool    `json:"waste_removed"`
	GroundClean    *bool    `json:"ground_clean"`
}

// ParseVerdict извлекает структурированный вердикт из текста модели.
// Снимает markdown-ограждения, затем требует ровно одного JSON объекта с
// обязательными isValid и confidence. Любое нарушение формы —
// VERIFICATION_UNAVAILABLE: неоднозначность нельзя схлопывать в отказ.
func ParseVerdict(text string, kind models.VerificationKind) (*models.VerificationResult, error) {
	jsonStr, err := extractJSON(text)
	if err != nil {
		return nil, apperror.NewVerificationUnavailable(err)
	}

	var env verdictEnvelope
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	if err := dec.Decode(&env); err != nil {
		return nil, apperror.NewVerificationUnavailable(fmt.Errorf("ai: невалидный JSON в ответе: %w", err))
	}

	if env.IsValid == nil {
		return nil, apperror.NewVerificationUnavailable(fmt.Errorf("ai: в ответе отсутствует поле isValid"))
	}
	if env.Confidence == nil {
		return nil, apperror.NewVerificationUnavailable(fmt.Errorf("ai: в ответе отсутствует поле confidence"))
	}

	return &models.VerificationResult{
		Kind:       kind,
		IsValid:    *env.IsValid,
		Confidence: clampConfidence(*env.Confidence),
		Message:    env.Message,
		Checks: models.VisionChecks{
			LocationMatch:  boolOrFalse(env.LocationMatch),
			WasteMatch:     boolOrFalse(env.WasteMatch),
			LandmarksMatch: boolOrFalse(env.LandmarksMatch),
			WasteRemoved:   boolOrFalse(env.WasteRemoved),
			GroundClean:    boolOrFalse(env.GroundClean),
		},
	}, nil
}

// extractJSON находит JSON объект в тексте, который может содержать markdown.
func extractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("ai: пустой текст ответа")
	}

	// Сначала пробуем markdown блок с кодом.
	if match := codeFenceRe.FindStringSubmatch(text); len(match) > 1 {
		text = match[1]
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("ai: в ответе не найден JSON объект")
	}

	return text[start : end+1], nil
}

// clampConfidence приводит значение к диапазону [0,1], модель может вернуть выход за границы.
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boolOrFalse(v *bool) bool {
	return v != nil && *v
}
