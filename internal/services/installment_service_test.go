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

type mockInstallmentRepo struct {
	repository.InstallmentRepository
	mockFindByID             func(ctx context.Context, id uint) (*models.InvestorInstallment, error)
	mockFindByIDWithInvestor func(ctx context.Context, id uint) (*models.InvestorInstallment, error)
	mockFindPastDue          func(ctx context.Context, asOf time.Time) ([]models.InvestorInstallment, error)
	mockCreate               func(ctx context.Context, installment *models.InvestorInstallment) error
	mockUpdate               func(ctx context.Context, installment *models.InvestorInstallment) error
	mockList                 func(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error)
}

func (m *mockInstallmentRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error) {
	return m.mockList(ctx, query)
}

func (m *mockInstallmentRepo) FindByID(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockInstallmentRepo) FindByIDWithInvestor(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	return m.mockFindByIDWithInvestor(ctx, id)
}

func (m *mockInstallmentRepo) FindPastDue(ctx context.Context, asOf time.Time) ([]models.InvestorInstallment, error) {
	return m.mockFindPastDue(ctx, asOf)
}

func (m *mockInstallmentRepo) Create(ctx context.Context, installment *models.InvestorInstallment) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, installment)
	}
	return nil
}

func (m *mockInstallmentRepo) Update(ctx context.Context, installment *models.InvestorInstallment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, installment)
	}
	return nil
}

type mockInvestorRepo struct {
	repository.InvestorRepository
	mockExists   func(ctx context.Context, id uint) (bool, error)
	mockFindByID func(ctx context.Context, id uint) (*models.Investor, error)
}

func (m *mockInvestorRepo) Exists(ctx context.Context, id uint) (bool, error) {
	return m.mockExists(ctx, id)
}

func (m *mockInvestorRepo) FindByID(ctx context.Context, id uint) (*models.Investor, error) {
	return m.mockFindByID(ctx, id)
}

func newInstallmentService(repo *mockInstallmentRepo, investorRepo *mockInvestorRepo, worker *jobs.Worker) *InstallmentService {
	return NewInstallmentService(repo, investorRepo, nil, nil, nil, worker)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestInstallmentCreate_DefaultsToPending(t *testing.T) {
	var created *models.InvestorInstallment
	repo := &mockInstallmentRepo{
		mockCreate: func(ctx context.Context, installment *models.InvestorInstallment) error {
			installment.ID = 11
			created = installment
			return nil
		},
		mockFindByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return created, nil
		},
	}
	investorRepo := &mockInvestorRepo{
		mockExists: func(ctx context.Context, id uint) (bool, error) { return true, nil },
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, investorRepo, worker)
	result, err := svc.Create(context.Background(), &CreateInstallmentInput{
		InvestorID:        3,
		InstallmentNumber: 1,
		Amount:            2500,
		DueDate:           day(2025, 7, 1),
	}, 1, "127.0.0.1", "test")

	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPending, result.Status)
	assert.Equal(t, day(2025, 7, 1), result.DueDate)
	assert.Nil(t, result.PaidDate)
}

func TestInstallmentCreate_SkipsDateOrderingGuard(t *testing.T) {
	// At creation the paid date may precede the due date: historical
	// imports carry rows paid early under a different original schedule.
	var created *models.InvestorInstallment
	repo := &mockInstallmentRepo{
		mockCreate: func(ctx context.Context, installment *models.InvestorInstallment) error {
			installment.ID = 12
			created = installment
			return nil
		},
		mockFindByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return created, nil
		},
	}
	investorRepo := &mockInvestorRepo{
		mockExists: func(ctx context.Context, id uint) (bool, error) { return true, nil },
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, investorRepo, worker)
	result, err := svc.Create(context.Background(), &CreateInstallmentInput{
		InvestorID:        3,
		InstallmentNumber: 2,
		Amount:            2500,
		DueDate:           day(2025, 7, 1),
		PaidDate:          timePtr(day(2025, 6, 15)),
		Status:            models.InstallmentStatusPaid,
	}, 1, "127.0.0.1", "test")

	assert.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, result.Status)
	assert.Equal(t, day(2025, 6, 15), *result.PaidDate)
}

func TestInstallmentCreate_UnknownInvestor(t *testing.T) {
	investorRepo := &mockInvestorRepo{
		mockExists: func(ctx context.Context, id uint) (bool, error) { return false, nil },
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(&mockInstallmentRepo{}, investorRepo, worker)
	result, err := svc.Create(context.Background(), &CreateInstallmentInput{
		InvestorID:        99,
		InstallmentNumber: 1,
		Amount:            2500,
		DueDate:           day(2025, 7, 1),
	}, 1, "127.0.0.1", "test")

	assert.Nil(t, result)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "investor_id")
}

func TestInstallmentCreate_RejectsBadAmountAndNumber(t *testing.T) {
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svc := newInstallmentService(&mockInstallmentRepo{}, &mockInvestorRepo{}, worker)

	_, err := svc.Create(context.Background(), &CreateInstallmentInput{
		InvestorID:        3,
		InstallmentNumber: 1,
		Amount:            -1,
		DueDate:           day(2025, 7, 1),
	}, 1, "", "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "amount")

	_, err = svc.Create(context.Background(), &CreateInstallmentInput{
		InvestorID:        3,
		InstallmentNumber: 0,
		Amount:            100,
		DueDate:           day(2025, 7, 1),
	}, 1, "", "")
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "installment_number")
}

func TestInstallmentUpdate_PaidBeforeDueRejected(t *testing.T) {
	stored := &models.InvestorInstallment{
		ID:                5,
		InvestorID:        3,
		InstallmentNumber: 4,
		Amount:            2500,
		DueDate:           day(2025, 7, 1),
		Status:            models.InstallmentStatusPending,
	}
	repo := &mockInstallmentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, &mockInvestorRepo{}, worker)
	status := models.InstallmentStatusPaid
	result, err := svc.Update(context.Background(), 5, &UpdateInstallmentInput{
		Status:   &status,
		PaidDate: timePtr(day(2025, 6, 20)),
	}, 1, "127.0.0.1", "test")

	assert.Nil(t, result)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields["paid_date"], "must be on or after the due date")
	assert.Equal(t, models.InstallmentStatusPending, stored.Status)
}

func TestInstallmentUpdate_PaidOnDueDateSucceeds(t *testing.T) {
	stored := &models.InvestorInstallment{
		ID:                5,
		InvestorID:        3,
		InstallmentNumber: 4,
		Amount:            2500,
		DueDate:           day(2025, 7, 1),
		Status:            models.InstallmentStatusPending,
		Investor:          models.Investor{ID: 3, Name: "Rahim Uddin"},
	}
	updated := false
	repo := &mockInstallmentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
		mockFindByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
		mockUpdate: func(ctx context.Context, installment *models.InvestorInstallment) error {
			updated = true
			return nil
		},
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, &mockInvestorRepo{}, worker)
	status := models.InstallmentStatusPaid
	method := "bank_transfer"
	result, err := svc.Update(context.Background(), 5, &UpdateInstallmentInput{
		Status:        &status,
		PaidDate:      timePtr(day(2025, 7, 1)),
		PaymentMethod: &method,
	}, 1, "127.0.0.1", "test")

	assert.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, models.InstallmentStatusPaid, result.Status)
	assert.Equal(t, day(2025, 7, 1), *result.PaidDate)
	assert.Equal(t, "bank_transfer", *result.PaymentMethod)
}

func TestInstallmentUpdate_GuardUsesRequestedDueDate(t *testing.T) {
	stored := &models.InvestorInstallment{
		ID:      6,
		DueDate: day(2025, 7, 1),
		Status:  models.InstallmentStatusPending,
	}
	repo := &mockInstallmentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
		mockFindByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, &mockInvestorRepo{}, worker)
	status := models.InstallmentStatusPaid

	// Paid 2025-06-20 fails against the stored due date but passes once
	// the due date moves to 2025-06-15 in the same request.
	result, err := svc.Update(context.Background(), 6, &UpdateInstallmentInput{
		Status:   &status,
		DueDate:  timePtr(day(2025, 6, 15)),
		PaidDate: timePtr(day(2025, 6, 20)),
	}, 1, "127.0.0.1", "test")

	assert.NoError(t, err)
	assert.Equal(t, day(2025, 6, 15), result.DueDate)
	assert.Equal(t, models.InstallmentStatusPaid, result.Status)
}

func TestInstallmentUpdate_StoredPaidDateStillGuarded(t *testing.T) {
	// Moving a paid installment's due date past its stored paid date
	// must be rejected even when the patch omits paid_date.
	paid := day(2025, 7, 1)
	stored := &models.InvestorInstallment{
		ID:       7,
		DueDate:  day(2025, 7, 1),
		PaidDate: &paid,
		Status:   models.InstallmentStatusPaid,
	}
	repo := &mockInstallmentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, &mockInvestorRepo{}, worker)
	result, err := svc.Update(context.Background(), 7, &UpdateInstallmentInput{
		DueDate: timePtr(day(2025, 8, 1)),
	}, 1, "127.0.0.1", "test")

	assert.Nil(t, result)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "paid_date")
}

type mockNotificationRepo struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, notification *models.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	return m.mockCreate(ctx, notification)
}

func TestCheckPastDueInstallments_NotifiesWithoutMutating(t *testing.T) {
	pastDue := []models.InvestorInstallment{
		{ID: 1, InvestorID: 3, InstallmentNumber: 2, Amount: 2500, DueDate: day(2025, 5, 1), Status: models.InstallmentStatusPending},
		{ID: 2, InvestorID: 4, InstallmentNumber: 1, Amount: 1500, DueDate: day(2025, 6, 1), Status: models.InstallmentStatusPending},
	}

	updateCalled := false
	repo := &mockInstallmentRepo{
		mockFindPastDue: func(ctx context.Context, asOf time.Time) ([]models.InvestorInstallment, error) {
			return pastDue, nil
		},
		mockUpdate: func(ctx context.Context, installment *models.InvestorInstallment) error {
			updateCalled = true
			return nil
		},
	}

	var notified []models.Notification
	notificationRepo := &mockNotificationRepo{
		mockCreate: func(ctx context.Context, notification *models.Notification) error {
			notified = append(notified, *notification)
			return nil
		},
	}
	adminRepo := &adminListingUserRepo{admins: []models.User{{ID: 1}, {ID: 2}}}

	notificationSvc := NewNotificationService(notificationRepo, adminRepo)

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := NewInstallmentService(repo, &mockInvestorRepo{}, notificationSvc, nil, nil, worker)
	err := svc.CheckPastDueInstallments(context.Background())

	assert.NoError(t, err)
	assert.False(t, updateCalled)
	assert.Len(t, notified, 2)
	assert.Equal(t, models.NotificationTypeOverdueSummary, *notified[0].NotificationType)
	assert.Contains(t, notified[0].Message, "2 pending installments")
	assert.Contains(t, notified[0].Message, "4000.00")
	for _, inst := range pastDue {
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
	}
}

type adminListingUserRepo struct {
	repository.UserRepository
	admins []models.User
}

func (r *adminListingUserRepo) FindAdmins(ctx context.Context) ([]models.User, error) {
	return r.admins, nil
}

func TestInstallmentUpdate_InvalidStatus(t *testing.T) {
	repo := &mockInstallmentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return &models.InvestorInstallment{ID: 8, DueDate: day(2025, 7, 1), Status: models.InstallmentStatusPending}, nil
		},
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	svc := newInstallmentService(repo, &mockInvestorRepo{}, worker)
	status := "cancelled"
	_, err := svc.Update(context.Background(), 8, &UpdateInstallmentInput{Status: &status}, 1, "", "")

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "status")
}
