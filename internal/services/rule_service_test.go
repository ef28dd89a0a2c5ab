package services

import (
	"context"
	"testing"
	"time"

	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

type mockRuleRepo struct {
	repository.RuleRepository
	mockFindByID func(ctx context.Context, id uint) (*models.InstallmentRule, error)
	mockCreate   func(ctx context.Context, rule *models.InstallmentRule) error
	mockUpdate   func(ctx context.Context, rule *models.InstallmentRule) error
}

func (m *mockRuleRepo) FindByID(ctx context.Context, id uint) (*models.InstallmentRule, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *models.InstallmentRule) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) Update(ctx context.Context, rule *models.InstallmentRule) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, rule)
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(s string) *string     { return &s }

func TestRuleCreate_EMIRequiresAmountAndDuration(t *testing.T) {
	svc := NewRuleService(&mockRuleRepo{}, nil, nil)

	rule := &models.InstallmentRule{
		Name:         "Premium Wing 24",
		PaymentType:  models.PaymentTypeEMIInstallment,
		RegularPrice: 120000,
		OfferPrice:   110000,
	}

	err := svc.Create(context.Background(), rule, 1, "", "")
	assert.Error(t, err)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "emi_amount")
	assert.Contains(t, ve.Fields, "duration_months")
}

func TestRuleCreate_FullPaymentSkipsEMIFields(t *testing.T) {
	created := false
	repo := &mockRuleRepo{
		mockCreate: func(ctx context.Context, rule *models.InstallmentRule) error {
			created = true
			return nil
		},
	}
	svc := NewRuleService(repo, nil, nil)

	rule := &models.InstallmentRule{
		Name:         "One Time Offer",
		PaymentType:  models.PaymentTypeFullPayment,
		RegularPrice: 120000,
		OfferPrice:   110000,
	}

	err := svc.Create(context.Background(), rule, 1, "", "")
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RuleStatusActive, rule.Status)
}

func TestRuleCreate_DownPaymentRequiresAmount(t *testing.T) {
	svc := NewRuleService(&mockRuleRepo{}, nil, nil)

	rule := &models.InstallmentRule{
		Name:           "Starter Plan",
		PaymentType:    models.PaymentTypeDownPayment,
		RegularPrice:   50000,
		OfferPrice:     48000,
		EMIAmount:      floatPtr(2000),
		DurationMonths: intPtr(24),
	}

	err := svc.Create(context.Background(), rule, 1, "", "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "down_payment_amount")
}

func TestRuleCreate_DurationBounds(t *testing.T) {
	svc := NewRuleService(&mockRuleRepo{}, nil, nil)

	for _, months := range []int{0, 121} {
		rule := &models.InstallmentRule{
			Name:           "Out of Range",
			PaymentType:    models.PaymentTypeEMIInstallment,
			RegularPrice:   50000,
			OfferPrice:     48000,
			EMIAmount:      floatPtr(2000),
			DurationMonths: intPtr(months),
		}

		err := svc.Create(context.Background(), rule, 1, "", "")
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "duration_months")
	}
}

func TestRuleCreate_InvalidPaymentType(t *testing.T) {
	svc := NewRuleService(&mockRuleRepo{}, nil, nil)

	rule := &models.InstallmentRule{
		Name:         "Bad Type",
		PaymentType:  "layaway",
		RegularPrice: 50000,
	}

	err := svc.Create(context.Background(), rule, 1, "", "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "payment_type")
}

func TestRuleCreate_EnqueuesAuditWrite(t *testing.T) {
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	svc := NewRuleService(&mockRuleRepo{}, NewAuditService(nil), worker)

	rule := &models.InstallmentRule{
		Name:         "Audited Plan",
		PaymentType:  models.PaymentTypeFullPayment,
		RegularPrice: 50000,
		OfferPrice:   48000,
	}

	err := svc.Create(context.Background(), rule, 3, "10.0.0.9", "go-test")
	assert.NoError(t, err)

	// The audit entry is written through the worker; wait for the job to run
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if worker.GetStats().FinishedJobs > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no audit job reached the worker")
}

func TestRuleCreate_SkipsAuditWithoutActor(t *testing.T) {
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	svc := NewRuleService(&mockRuleRepo{}, NewAuditService(nil), worker)

	rule := &models.InstallmentRule{
		Name:         "Anonymous Plan",
		PaymentType:  models.PaymentTypeFullPayment,
		RegularPrice: 50000,
		OfferPrice:   48000,
	}

	err := svc.Create(context.Background(), rule, 0, "", "")
	assert.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 0, worker.GetStats().FinishedJobs)
}

func TestRuleUpdate_PartialPatch(t *testing.T) {
	stored := &models.InstallmentRule{
		ID:           4,
		Name:         "Premium Wing 24",
		PaymentType:  models.PaymentTypeEMIInstallment,
		RegularPrice: 120000,
		OfferPrice:   110000,
		Status:       models.RuleStatusActive,
	}
	repo := &mockRuleRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InstallmentRule, error) {
			return stored, nil
		},
	}
	svc := NewRuleService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), 4, &UpdateRuleInput{
		Name:       strPtr("Premium Wing 36"),
		OfferPrice: floatPtr(105000),
	}, 1, "", "")

	assert.NoError(t, err)
	assert.Equal(t, "Premium Wing 36", updated.Name)
	assert.Equal(t, 105000.0, updated.OfferPrice)
	assert.Equal(t, 120000.0, updated.RegularPrice)
}

func TestRuleUpdate_RejectsBadDuration(t *testing.T) {
	repo := &mockRuleRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InstallmentRule, error) {
			return &models.InstallmentRule{ID: 4, PaymentType: models.PaymentTypeEMIInstallment}, nil
		},
	}
	svc := NewRuleService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 4, &UpdateRuleInput{DurationMonths: intPtr(200)}, 1, "", "")

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "duration_months")
}

func TestRuleSetActive_Toggles(t *testing.T) {
	stored := &models.InstallmentRule{ID: 7, Status: models.RuleStatusActive}
	repo := &mockRuleRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InstallmentRule, error) {
			return stored, nil
		},
	}
	svc := NewRuleService(repo, nil, nil)

	rule, err := svc.SetActive(context.Background(), 7, 1, "", "")
	assert.NoError(t, err)
	assert.Equal(t, models.RuleStatusInactive, rule.Status)

	rule, err = svc.SetActive(context.Background(), 7, 1, "", "")
	assert.NoError(t, err)
	assert.Equal(t, models.RuleStatusActive, rule.Status)
}

func TestSchedulePreview_DownPaymentWithWaivers(t *testing.T) {
	stored := &models.InstallmentRule{
		ID:                    9,
		Name:                  "Family Plan",
		PaymentType:           models.PaymentTypeDownPayment,
		RegularPrice:          60000,
		OfferPrice:            58000,
		DownPaymentAmount:     floatPtr(10000),
		EMIAmount:             floatPtr(2000),
		DurationMonths:        intPtr(12),
		WaiverFrequencyMonths: intPtr(6),
		NumberOfWaivers:       intPtr(2),
	}
	repo := &mockRuleRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InstallmentRule, error) {
			return stored, nil
		},
	}
	svc := NewRuleService(repo, nil, nil)

	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	rule, rows, err := svc.SchedulePreview(context.Background(), 9, start)

	assert.NoError(t, err)
	assert.Equal(t, stored, rule)
	assert.Len(t, rows, 13)

	assert.Equal(t, "down_payment", rows[0].Kind)
	assert.Equal(t, 10000.0, rows[0].Amount)
	assert.Equal(t, start, rows[0].DueDate)

	assert.Equal(t, "emi", rows[1].Kind)
	assert.Equal(t, start.AddDate(0, 1, 0), rows[1].DueDate)

	// Months 6 and 12 of the EMI run are waived
	assert.Equal(t, "waived", rows[6].Kind)
	assert.Equal(t, 0.0, rows[6].Amount)
	assert.Equal(t, "waived", rows[12].Kind)

	numbers := make([]int, 0, len(rows))
	for _, row := range rows {
		numbers = append(numbers, row.InstallmentNumber)
	}
	assert.Equal(t, 1, numbers[0])
	assert.Equal(t, 13, numbers[len(numbers)-1])
}

func TestSchedulePreview_FullPaymentSingleRow(t *testing.T) {
	repo := &mockRuleRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InstallmentRule, error) {
			return &models.InstallmentRule{
				ID:          3,
				PaymentType: models.PaymentTypeFullPayment,
				OfferPrice:  99000,
			}, nil
		},
	}
	svc := NewRuleService(repo, nil, nil)

	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, rows, err := svc.SchedulePreview(context.Background(), 3, start)

	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "full_payment", rows[0].Kind)
	assert.Equal(t, 99000.0, rows[0].Amount)
	assert.Equal(t, start, rows[0].DueDate)
}
