package geo

import "math"

// Радиус Земли в километрах.
const earthRadiusKm = 6371.0

// HaversineKm возвращает расстояние по сфере между двумя точками в километрах.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// HaversineM возвращает расстояние в метрах.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineKm(lat1, lon1, lat2, lon2) * 1000
}

// WithinRadiusKm проверяет, что точки находятся не дальше radiusKm друг от друга.
func WithinRadiusKm(lat1, lon1, lat2, lon2, radiusKm float64) bool {
	return HaversineKm(lat1, lon1, lat2, lon2) <= radiusKm
}

// ValidCoordinates проверяет диапазоны широты и долготы.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
