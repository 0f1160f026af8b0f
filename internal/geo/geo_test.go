package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm_SamePoint(t *testing.T) {
	d := HaversineKm(12.97, 77.59, 12.97, 77.59)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Бангалор -> Ченнаи, около 290 км по прямой.
	d := HaversineKm(12.9716, 77.5946, 13.0827, 80.2707)
	assert.InDelta(t, 290, d, 10)
}

func TestHaversineM_ShortDistance(t *testing.T) {
	// Сдвиг по широте на 0.001 градуса — примерно 111 метров.
	d := HaversineM(12.97, 77.59, 12.971, 77.59)
	assert.InDelta(t, 111, d, 2)
}

func TestWithinRadiusKm(t *testing.T) {
	assert.True(t, WithinRadiusKm(12.97, 77.59, 12.98, 77.60, 10))
	// Точка в ~15 км не проходит радиус 10 км.
	assert.False(t, WithinRadiusKm(12.97, 77.59, 13.10, 77.62, 10))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(91, 0))
	assert.False(t, ValidCoordinates(0, -181))
}
