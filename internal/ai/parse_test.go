package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/ecotrack-backend/internal/models"
	"github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"
)

func TestParseVerdict_PlainJSON(t *testing.T) {
	raw := `{"isValid": true, "confidence": 0.85, "message": "то же место", "location_match": true, "waste_match": true}`

	res, err := ParseVerdict(raw, models.VerificationBefore)
	require.NoError(t, err)

	assert.Equal(t, models.VerificationBefore, res.Kind)
	assert.True(t, res.IsValid)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	assert.Equal(t, "то же место", res.Message)
	assert.True(t, res.Checks.LocationMatch)
	assert.True(t, res.Checks.WasteMatch)
	// Отсутствующие подпроверки по умолчанию false.
	assert.False(t, res.Checks.LandmarksMatch)
	assert.False(t, res.Checks.WasteRemoved)
}

func TestParseVerdict_MarkdownFence(t *testing.T) {
	raw := "Вот результат:\n```json\n{\"isValid\": false, \"confidence\": 0.9, \"message\": \"другое место\"}\n```"

	res, err := ParseVerdict(raw, models.VerificationAfter)
	require.NoError(t, err)

	assert.False(t, res.IsValid)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
}

func TestParseVerdict_SurroundingText(t *testing.T) {
	raw := `Анализ завершён. {"isValid": true, "confidence": 0.7, "message": "ok"} Надеюсь, помог.`

	res, err := ParseVerdict(raw, models.VerificationBefore)
	require.NoError(t, err)
	assert.True(t, res.IsValid)
}

func TestParseVerdict_ClampsConfidence(t *testing.T) {
	over, err := ParseVerdict(`{"isValid": true, "confidence": 1.7}`, models.VerificationAfter)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, over.Confidence, 1e-9)

	under, err := ParseVerdict(`{"isValid": true, "confidence": -0.2}`, models.VerificationAfter)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, under.Confidence, 1e-9)
}

func TestParseVerdict_MissingRequiredFields(t *testing.T) {
	// Отсутствие обязательных полей — нарушение контракта модели,
	// а не негативный вердикт.
	cases := []string{
		`{"confidence": 0.9}`,
		`{"isValid": true}`,
		`{}`,
	}

	for _, raw := range cases {
		_, err := ParseVerdict(raw, models.VerificationBefore)
		require.Error(t, err, "вход: %s", raw)
		assert.True(t, apperror.IsRetryable(err), "вход: %s", raw)
	}
}

func TestParseVerdict_Garbage(t *testing.T) {
	cases := []string{
		"",
		"модель отказалась отвечать",
		"```json\nне json\n```",
		`{"isValid": true, "confidence": 0.9`,
	}

	for _, raw := range cases {
		_, err := ParseVerdict(raw, models.VerificationBefore)
		require.Error(t, err, "вход: %q", raw)
		assert.True(t, apperror.IsRetryable(err), "вход: %q", raw)
	}
}

func TestParseVerdict_NegativeVerdictIsNotError(t *testing.T) {
	res, err := ParseVerdict(`{"isValid": false, "confidence": 0.95, "message": "свалка на месте", "waste_removed": false}`, models.VerificationAfter)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.False(t, res.Checks.WasteRemoved)
}
