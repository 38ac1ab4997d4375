package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Schedule aggregate root
// ---------------------------------------------------------------------------

// Schedule is the installment plan of one sale payment. Paid and remaining
// amounts are computed from the installments, so they cannot drift from the
// installment statuses. Immutable; mutations return a new copy.
type Schedule struct {
	id           string
	tenantID     string
	paymentID    string
	mode         valueobject.ScheduleMode
	total        decimal.Decimal
	installments []Installment
	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// NewSchedule validates drafts against total and builds a schedule keeping
// the supplied order.
func NewSchedule(
	tenantID, paymentID string,
	mode valueobject.ScheduleMode,
	total decimal.Decimal,
	drafts []InstallmentDraft,
	now time.Time,
) (Schedule, error) {
	if paymentID == "" {
		return Schedule{}, NewValidationError("paymentId", "is required")
	}
	if err := ValidateInstallments(drafts, total); err != nil {
		return Schedule{}, err
	}

	installments := make([]Installment, len(drafts))
	for i, d := range drafts {
		installments[i] = Installment{
			ID:       uuid.New().String(),
			Position: i,
			DueDate:  dateOf(d.DueDate),
			Amount:   d.Amount,
		}
		if d.Notes != nil {
			installments[i].Notes = *d.Notes
		}
	}

	s := Schedule{
		id:           uuid.New().String(),
		tenantID:     tenantID,
		paymentID:    paymentID,
		mode:         mode,
		total:        total,
		installments: installments,
		createdAt:    now,
		updatedAt:    now,
	}
	s.domainEvents = append(s.domainEvents, event.NewScheduleCreated(
		s.id, tenantID, paymentID, mode.String(), total, len(installments), now,
	))
	return s, nil
}

// ReconstructSchedule rebuilds a Schedule from persistence.
func ReconstructSchedule(
	id, tenantID, paymentID string,
	mode valueobject.ScheduleMode,
	total decimal.Decimal,
	installments []Installment,
	version int,
	createdAt, updatedAt time.Time,
) Schedule {
	return Schedule{
		id:           id,
		tenantID:     tenantID,
		paymentID:    paymentID,
		mode:         mode,
		total:        total,
		installments: installments,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Mutations
// ---------------------------------------------------------------------------

// MarkInstallmentPaid settles one installment.
func (s Schedule) MarkInstallmentPaid(installmentID string, now time.Time) (Schedule, error) {
	idx := s.indexOf(installmentID)
	if idx < 0 {
		return s, fmt.Errorf("installment %s: %w", installmentID, ErrNotFound)
	}
	if s.installments[idx].Paid {
		return s, fmt.Errorf("installment %d: %w", idx, ErrInstallmentAlreadyPaid)
	}

	next := s.clone()
	next.installments[idx].Paid = true
	next.installments[idx].ActualPaymentDate = now
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewInstallmentPaid(
		s.id, s.tenantID, s.paymentID, installmentID,
		next.installments[idx].Amount, next.PaidAmount(), next.RemainingAmount(), now,
	))
	if next.Status().Equal(valueobject.ScheduleStatusCompleted) {
		next.domainEvents = append(next.domainEvents,
			event.NewScheduleCompleted(s.id, s.tenantID, s.paymentID, now))
	}
	return next, nil
}

// Replace swaps the whole installment list for drafts. Drafts carrying an ID
// update that installment; drafts without one are new. Paid installments
// must be resubmitted with their date and amount unchanged. Payment state
// always comes from the stored installment, and notes too unless the draft
// sets them. Moving an unpaid due date requires allowDueDateChange.
func (s Schedule) Replace(drafts []InstallmentDraft, allowDueDateChange bool, now time.Time) (Schedule, error) {
	if err := ValidateInstallments(drafts, s.total); err != nil {
		return s, err
	}

	seen := make(map[string]bool, len(drafts))
	installments := make([]Installment, len(drafts))
	added := 0
	for i, d := range drafts {
		if d.ID == "" {
			installments[i] = Installment{
				ID:       uuid.New().String(),
				Position: i,
				DueDate:  dateOf(d.DueDate),
				Amount:   d.Amount,
			}
			if d.Notes != nil {
				installments[i].Notes = *d.Notes
			}
			added++
			continue
		}

		if seen[d.ID] {
			return s, NewInstallmentError(i, "id", "appears more than once")
		}
		seen[d.ID] = true

		idx := s.indexOf(d.ID)
		if idx < 0 {
			return s, NewInstallmentError(i, "id", "does not belong to this schedule")
		}
		cur := s.installments[idx]

		dateChanged := !sameDay(cur.DueDate, d.DueDate)
		if cur.Paid && (dateChanged || !cur.Amount.Equal(d.Amount)) {
			return s, fmt.Errorf("installment %d cannot change: %w", i, ErrInstallmentAlreadyPaid)
		}
		if dateChanged && !allowDueDateChange {
			return s, fmt.Errorf("installment %d: %w", i,
				&ForbiddenError{Capability: valueobject.CapScheduleEditDue})
		}

		cur.Position = i
		cur.DueDate = dateOf(d.DueDate)
		cur.Amount = d.Amount
		if d.Notes != nil {
			cur.Notes = *d.Notes
		}
		installments[i] = cur
	}

	removed := 0
	for _, cur := range s.installments {
		if seen[cur.ID] {
			continue
		}
		if cur.Paid {
			return s, fmt.Errorf("installment %s was paid and cannot be removed: %w", cur.ID, ErrInstallmentAlreadyPaid)
		}
		removed++
	}

	next := s.clone()
	next.installments = installments
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewScheduleReplaced(
		s.id, s.tenantID, s.paymentID, len(installments), removed, added, now,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// Derived state
// ---------------------------------------------------------------------------

// PaidAmount sums the paid installments.
func (s Schedule) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, inst := range s.installments {
		if inst.Paid {
			paid = paid.Add(inst.Amount)
		}
	}
	return paid
}

// RemainingAmount is total − paid, floored at zero.
func (s Schedule) RemainingAmount() decimal.Decimal {
	r := s.total.Sub(s.PaidAmount())
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Status is termine once every installment is paid.
func (s Schedule) Status() valueobject.ScheduleStatus {
	if len(s.installments) == 0 {
		return valueobject.ScheduleStatusInProgress
	}
	for _, inst := range s.installments {
		if !inst.Paid {
			return valueobject.ScheduleStatusInProgress
		}
	}
	return valueobject.ScheduleStatusCompleted
}

// Installment returns the installment with the given ID.
func (s Schedule) Installment(id string) (Installment, bool) {
	if idx := s.indexOf(id); idx >= 0 {
		return s.installments[idx], true
	}
	return Installment{}, false
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (s Schedule) ID() string { return s.id }
func (s Schedule) TenantID() string { return s.tenantID }
func (s Schedule) PaymentID() string { return s.paymentID }
func (s Schedule) Mode() valueobject.ScheduleMode { return s.mode }
func (s Schedule) TotalAmount() decimal.Decimal { return s.total }
func (s Schedule) Version() int { return s.version }
func (s Schedule) CreatedAt() time.Time { return s.createdAt }
func (s Schedule) UpdatedAt() time.Time { return s.updatedAt }
func (s Schedule) DomainEvents() []event.DomainEvent { return s.domainEvents }

// Installments returns a copy of the ordered installments.
func (s Schedule) Installments() []Installment {
	out := make([]Installment, len(s.installments))
	copy(out, s.installments)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (s Schedule) ClearEvents() Schedule {
	next := s
	next.domainEvents = nil
	return next
}

func (s Schedule) indexOf(id string) int {
	for i, inst := range s.installments {
		if inst.ID == id {
			return i
		}
	}
	return -1
}

func (s Schedule) clone() Schedule {
	next := s
	next.installments = s.Installments()
	next.domainEvents = copyEvents(s.domainEvents)
	return next
}
