package statemachine

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/medicore/medicore-api/internal/models"
)

// InstallmentFSM wraps an installment with its state machine. The
// transition table is deliberately permissive — any status may move to any
// other, matching how the books are corrected in practice (a mistaken
// "paid" can go back to "pending") — but the table is explicit, and the one
// real invariant (paid date never before the due date) is enforced on the
// paid transition instead of floating in request validation.
type InstallmentFSM struct {
	installment *models.InvestorInstallment
	fsm         *fsm.FSM
}

// Transition event names, one per target status
const (
	EventMarkPending = "mark_pending"
	EventMarkPaid    = "mark_paid"
	EventMarkOverdue = "mark_overdue"
	EventWaive       = "waive"
)

// eventFor maps a target status to its transition event
func eventFor(status string) (string, bool) {
	switch status {
	case models.InstallmentStatusPending:
		return EventMarkPending, true
	case models.InstallmentStatusPaid:
		return EventMarkPaid, true
	case models.InstallmentStatusOverdue:
		return EventMarkOverdue, true
	case models.InstallmentStatusWaived:
		return EventWaive, true
	}
	return "", false
}

// othersThan returns every status except the given one, used as the source
// set of each event.
func othersThan(status string) []string {
	var src []string
	for _, s := range models.InstallmentStatuses {
		if s != status {
			src = append(src, s)
		}
	}
	return src
}

// NewInstallmentFSM creates a state machine seeded with the installment's
// current status.
func NewInstallmentFSM(installment *models.InvestorInstallment) *InstallmentFSM {
	return &InstallmentFSM{
		installment: installment,
		fsm: fsm.NewFSM(
			installment.Status,
			fsm.Events{
				{Name: EventMarkPending, Src: othersThan(models.InstallmentStatusPending), Dst: models.InstallmentStatusPending},
				{Name: EventMarkPaid, Src: othersThan(models.InstallmentStatusPaid), Dst: models.InstallmentStatusPaid},
				{Name: EventMarkOverdue, Src: othersThan(models.InstallmentStatusOverdue), Dst: models.InstallmentStatusOverdue},
				{Name: EventWaive, Src: othersThan(models.InstallmentStatusWaived), Dst: models.InstallmentStatusWaived},
			},
			fsm.Callbacks{},
		),
	}
}

// TransitionTo moves the installment to the target status. A no-op when the
// installment already holds that status. For the paid transition, paidDate
// and effectiveDueDate carry the date-ordering guard; paidDate may be nil
// for non-paid targets.
func (m *InstallmentFSM) TransitionTo(ctx context.Context, target string, paidDate *time.Time, effectiveDueDate time.Time) error {
	if !models.IsValidInstallmentStatus(target) {
		return fmt.Errorf("unknown installment status: %s", target)
	}

	if target == models.InstallmentStatusPaid || paidDate != nil {
		if err := ValidatePaidDate(effectiveDueDate, paidDate); err != nil {
			return err
		}
	}

	if m.installment.Status == target {
		return nil
	}

	event, ok := eventFor(target)
	if !ok {
		return fmt.Errorf("no transition event for status: %s", target)
	}

	if err := m.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("cannot move installment from %s to %s: %w", m.installment.Status, target, err)
	}

	m.installment.Status = m.fsm.Current()
	return nil
}

// Current returns the current state
func (m *InstallmentFSM) Current() string {
	return m.fsm.Current()
}

// Can checks if a transition event is possible
func (m *InstallmentFSM) Can(event string) bool {
	return m.fsm.Can(event)
}

// ErrPaidBeforeDue is returned when a supplied paid date precedes the
// effective due date. Callers surface it as a field error on paid_date.
type ErrPaidBeforeDue struct {
	DueDate  time.Time
	PaidDate time.Time
}

func (e *ErrPaidBeforeDue) Error() string {
	return fmt.Sprintf("paid date %s is before due date %s",
		e.PaidDate.Format("2006-01-02"), e.DueDate.Format("2006-01-02"))
}

// ValidatePaidDate enforces the date-ordering invariant: when a paid date is
// present it must not precede the effective due date. Comparison is at day
// granularity since both columns are dates.
func ValidatePaidDate(effectiveDueDate time.Time, paidDate *time.Time) error {
	if paidDate == nil {
		return nil
	}
	due := truncateToDay(effectiveDueDate)
	paid := truncateToDay(*paidDate)
	if paid.Before(due) {
		return &ErrPaidBeforeDue{DueDate: due, PaidDate: paid}
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
