package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/ecotrack-backend/internal/domain/valueobject"
)

// WasteReport описывает заявку о свалке, поданную жителем.
// CollectorID заполнен тогда и только тогда, когда статус IN_PROGRESS или COLLECTED.
type WasteReport struct {
	ID                uuid.UUID                `db:"id" json:"id"`
	ReporterID        uuid.UUID                `db:"reporter_id" json:"reporter_id"`
	CollectorID       *uuid.UUID               `db:"collector_id" json:"collector_id,omitempty"`
	Status            valueobject.ReportStatus `db:"status" json:"status"`
	Latitude          *float64                 `db:"latitude" json:"latitude,omitempty"`
	Longitude         *float64                 `db:"longitude" json:"longitude,omitempty"`
	City              *string                  `db:"city" json:"city,omitempty"`
	State             *string                  `db:"state" json:"state,omitempty"`
	Country           *string                  `db:"country" json:"country,omitempty"`
	WasteType         *string                  `db:"waste_type" json:"waste_type,omitempty"`
	EstimatedWeightKg *float64                 `db:"estimated_weight_kg" json:"estimated_weight_kg,omitempty"`
	OriginalImagePath string                   `db:"original_image_path" json:"original_image_path"`
	BeforeImagePath   *string                  `db:"before_image_path" json:"before_image_path,omitempty"`
	AfterImagePath    *string                  `db:"after_image_path" json:"after_image_path,omitempty"`
	ReportedAt        time.Time                `db:"reported_at" json:"reported_at"`
	CollectedAt       *time.Time               `db:"collected_at" json:"collected_at,omitempty"`
}

// HasCoordinates сообщает, заданы ли у заявки координаты.
// Без координат заявка не участвует в кластеризации и геопроверке.
func (r *WasteReport) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Location — пара координат, передаётся в операции явно, а не берётся из глобального состояния.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ImageSource описывает изображение в одном из трёх видов:
// сырые байты, удалённый URL или строка data-URI.
type ImageSource struct {
	Data []byte
	URL  string
}

// VerificationKind — этап проверки: фото «до» или «после».
type VerificationKind string

const (
	VerificationBefore VerificationKind = "BEFORE"
	VerificationAfter  VerificationKind = "AFTER"
)

// VisionChecks — именованные булевы подпроверки из ответа модели.
// Информативны, на вердикт влияют только через IsValid и Confidence.
type VisionChecks struct {
	LocationMatch  bool `json:"location_match"`
	WasteMatch     bool `json:"waste_match"`
	LandmarksMatch bool `json:"landmarks_match"`
	WasteRemoved   bool `json:"waste_removed"`
	GroundClean    bool `json:"ground_clean"`
}

// VerificationResult — структурированный вердикт мультимодальной модели.
type VerificationResult struct {
	Kind       VerificationKind `json:"kind"`
	IsValid    bool             `json:"is_valid"`
	Confidence float64          `json:"confidence"`
	Message    string           `json:"message"`
	Checks     VisionChecks     `json:"checks"`
}

// Hotspot — центр кластера нерешённых заявок.
type Hotspot struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
}
