package statemachine

import (
	"context"
	"testing"
	"time"

	"github.com/medicore/medicore-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestValidatePaidDate_BeforeDue(t *testing.T) {
	due := date(2025, 3, 15)
	paid := date(2025, 3, 14)

	err := ValidatePaidDate(due, ptr(paid))
	assert.Error(t, err)

	var pbd *ErrPaidBeforeDue
	assert.ErrorAs(t, err, &pbd)
	assert.Equal(t, due, pbd.DueDate)
}

func TestValidatePaidDate_OnOrAfterDue(t *testing.T) {
	due := date(2025, 3, 15)

	assert.NoError(t, ValidatePaidDate(due, ptr(date(2025, 3, 15))))
	assert.NoError(t, ValidatePaidDate(due, ptr(date(2025, 4, 1))))
	assert.NoError(t, ValidatePaidDate(due, nil))
}

func TestValidatePaidDate_DayGranularity(t *testing.T) {
	// Same calendar day but later clock time on the due side must pass
	due := time.Date(2025, 3, 15, 23, 30, 0, 0, time.UTC)
	paid := time.Date(2025, 3, 15, 0, 5, 0, 0, time.UTC)

	assert.NoError(t, ValidatePaidDate(due, ptr(paid)))
}

func TestTransitionTo_PaidRequiresDateOrdering(t *testing.T) {
	installment := &models.InvestorInstallment{
		Status:  models.InstallmentStatusPending,
		DueDate: date(2025, 6, 1),
	}

	m := NewInstallmentFSM(installment)
	err := m.TransitionTo(context.Background(), models.InstallmentStatusPaid, ptr(date(2025, 5, 20)), installment.DueDate)
	assert.Error(t, err)
	assert.Equal(t, models.InstallmentStatusPending, installment.Status)

	m = NewInstallmentFSM(installment)
	err = m.TransitionTo(context.Background(), models.InstallmentStatusPaid, ptr(date(2025, 6, 1)), installment.DueDate)
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, installment.Status)
}

func TestTransitionTo_AnyStatusReachable(t *testing.T) {
	for _, from := range models.InstallmentStatuses {
		for _, to := range models.InstallmentStatuses {
			installment := &models.InvestorInstallment{
				Status:  from,
				DueDate: date(2025, 6, 1),
			}
			m := NewInstallmentFSM(installment)
			err := m.TransitionTo(context.Background(), to, nil, installment.DueDate)
			assert.NoError(t, err, "from %s to %s", from, to)
			assert.Equal(t, to, installment.Status)
		}
	}
}

func TestTransitionTo_UnknownStatus(t *testing.T) {
	installment := &models.InvestorInstallment{
		Status:  models.InstallmentStatusPending,
		DueDate: date(2025, 6, 1),
	}
	m := NewInstallmentFSM(installment)
	err := m.TransitionTo(context.Background(), "cancelled", nil, installment.DueDate)
	assert.Error(t, err)
}

func TestTransitionTo_SameStatusIsNoOp(t *testing.T) {
	installment := &models.InvestorInstallment{
		Status:  models.InstallmentStatusWaived,
		DueDate: date(2025, 6, 1),
	}
	m := NewInstallmentFSM(installment)
	err := m.TransitionTo(context.Background(), models.InstallmentStatusWaived, nil, installment.DueDate)
	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusWaived, installment.Status)
}
