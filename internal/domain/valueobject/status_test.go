package valueobject

import "testing"

func TestReportStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    ReportStatus
		to      ReportStatus
		allowed bool
	}{
		{ReportStatusPending, ReportStatusInProgress, true},
		{ReportStatusPending, ReportStatusCollected, false},
		{ReportStatusInProgress, ReportStatusCollected, true},
		{ReportStatusInProgress, ReportStatusPending, true},
		{ReportStatusCollected, ReportStatusPending, false},
		{ReportStatusCollected, ReportStatusInProgress, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: ожидали %v, получили %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestReportStatus_Terminal(t *testing.T) {
	if !ReportStatusCollected.IsTerminal() {
		t.Fatalf("COLLECTED должен быть терминальным")
	}
	if ReportStatusPending.IsTerminal() || ReportStatusInProgress.IsTerminal() {
		t.Fatalf("PENDING и IN_PROGRESS не терминальны")
	}
}

func TestNewReportStatus(t *testing.T) {
	if _, err := NewReportStatus("PENDING"); err != nil {
		t.Fatalf("PENDING должен быть валидным: %v", err)
	}
	if _, err := NewReportStatus("DONE"); err == nil {
		t.Fatalf("неизвестный статус должен отклоняться")
	}
}
