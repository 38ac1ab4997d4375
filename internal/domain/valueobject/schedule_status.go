package valueobject

import (
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// ScheduleStatus
// ---------------------------------------------------------------------------

// ScheduleStatus is termine once every installment is payee.
type ScheduleStatus struct {
	value string
}

const (
	scheduleStatusInProgress = "en_cours"
	scheduleStatusCompleted  = "termine"
)

var (
	ScheduleStatusInProgress = ScheduleStatus{value: scheduleStatusInProgress}
	ScheduleStatusCompleted  = ScheduleStatus{value: scheduleStatusCompleted}
)

var validScheduleStatuses = map[string]ScheduleStatus{
	scheduleStatusInProgress: ScheduleStatusInProgress,
	scheduleStatusCompleted:  ScheduleStatusCompleted,
}

// NewScheduleStatus creates a ScheduleStatus from a raw string.
func NewScheduleStatus(s string) (ScheduleStatus, error) {
	v, ok := validScheduleStatuses[s]
	if !ok {
		return ScheduleStatus{}, fmt.Errorf("invalid schedule status: %q", s)
	}
	return v, nil
}

func (s ScheduleStatus) String() string { return s.value }
func (s ScheduleStatus) IsZero() bool { return s.value == "" }
func (s ScheduleStatus) Equal(other ScheduleStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// ScheduleMode
// ---------------------------------------------------------------------------

// ScheduleMode records how the installments were produced.
type ScheduleMode struct {
	value string
}

var (
	ScheduleModeAuto   = ScheduleMode{value: "auto"}
	ScheduleModeManual = ScheduleMode{value: "manual"}
)

// NewScheduleMode creates a ScheduleMode from a raw string. Empty means manual.
func NewScheduleMode(s string) (ScheduleMode, error) {
	switch s {
	case "auto":
		return ScheduleModeAuto, nil
	case "manual", "":
		return ScheduleModeManual, nil
	}
	return ScheduleMode{}, fmt.Errorf("invalid schedule mode: %q", s)
}

func (m ScheduleMode) String() string { return m.value }

// ---------------------------------------------------------------------------
// InstallmentStatus
// ---------------------------------------------------------------------------

// InstallmentStatus is the status exposed to callers. Only payee is stored;
// the others are derived from the due date at read time.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusUpcoming = "a_venir"
	installmentStatusOverdue  = "en_retard"
	installmentStatusPaid     = "payee"
)

var (
	InstallmentStatusUpcoming = InstallmentStatus{value: installmentStatusUpcoming}
	InstallmentStatusOverdue  = InstallmentStatus{value: installmentStatusOverdue}
	InstallmentStatusPaid     = InstallmentStatus{value: installmentStatusPaid}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusUpcoming: InstallmentStatusUpcoming,
	installmentStatusOverdue:  InstallmentStatusOverdue,
	installmentStatusPaid:     InstallmentStatusPaid,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

func (s InstallmentStatus) String() string { return s.value }
func (s InstallmentStatus) IsZero() bool { return s.value == "" }
func (s InstallmentStatus) Equal(other InstallmentStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Frequency
// ---------------------------------------------------------------------------

// Frequency is the spacing between generated installments.
type Frequency struct {
	value  string
	months int
}

var (
	FrequencyMonthly    = Frequency{value: "monthly", months: 1}
	FrequencyQuarterly  = Frequency{value: "quarterly", months: 3}
	FrequencySemiannual = Frequency{value: "semiannual", months: 6}
	FrequencyAnnual     = Frequency{value: "annual", months: 12}
)

var validFrequencies = map[string]Frequency{
	"monthly":    FrequencyMonthly,
	"quarterly":  FrequencyQuarterly,
	"semiannual": FrequencySemiannual,
	"annual":     FrequencyAnnual,
}

// NewFrequency creates a Frequency from a raw string.
func NewFrequency(s string) (Frequency, error) {
	v, ok := validFrequencies[s]
	if !ok {
		return Frequency{}, fmt.Errorf("invalid frequency: %q", s)
	}
	return v, nil
}

func (f Frequency) String() string { return f.value }
func (f Frequency) IsZero() bool { return f.months == 0 }

// MonthStep is the number of calendar months between two due dates.
func (f Frequency) MonthStep() int { return f.months }

// DueDate returns the i-th due date counted from first. The day of month is
// anchored on first and clamped to the length of the target month, so a plan
// starting on the 31st falls on the last day of shorter months.
func (f Frequency) DueDate(first time.Time, i int) time.Time {
	y, m, d := first.Date()
	target := time.Date(y, m+time.Month(i*f.months), 1, 0, 0, 0, 0, first.Location())
	if last := daysIn(target.Year(), target.Month(), first.Location()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d,
		first.Hour(), first.Minute(), first.Second(), first.Nanosecond(), first.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
