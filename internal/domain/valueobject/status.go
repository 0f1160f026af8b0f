package valueobject

import "github.com/ignatzorin/ecotrack-backend/internal/pkg/apperror"

type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusCollected  ReportStatus = "COLLECTED"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusPending, ReportStatusInProgress, ReportStatusCollected:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода статуса.
// Единственный обратный переход — release: IN_PROGRESS -> PENDING.
// COLLECTED терминален и не покидается никогда.
func (s ReportStatus) CanTransitionTo(newStatus ReportStatus) bool {
	transitions := map[ReportStatus][]ReportStatus{
		ReportStatusPending:    {ReportStatusInProgress},
		ReportStatusInProgress: {ReportStatusCollected, ReportStatusPending},
		ReportStatusCollected:  {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal сообщает, завершён ли жизненный цикл заявки.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCollected
}

func NewReportStatus(status string) (ReportStatus, error) {
	s := ReportStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}
