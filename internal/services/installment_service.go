package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/internal/statemachine"
	"github.com/medicore/medicore-api/pkg/logger"
)

// InstallmentService manages investor installment lifecycles
type InstallmentService struct {
	repo            repository.InstallmentRepository
	investorRepo    repository.InvestorRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

// NewInstallmentService creates a new installment service
func NewInstallmentService(
	repo repository.InstallmentRepository,
	investorRepo repository.InvestorRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *InstallmentService {
	return &InstallmentService{
		repo:            repo,
		investorRepo:    investorRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *InstallmentService) FindByID(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	return s.repo.FindByIDWithInvestor(ctx, id)
}

func (s *InstallmentService) List(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *InstallmentService) GetStats(ctx context.Context) (*repository.InstallmentStats, error) {
	return s.repo.GetStats(ctx)
}

// CreateInstallmentInput carries the fields accepted at creation
type CreateInstallmentInput struct {
	InvestorID           uint
	InstallmentNumber    int
	Amount               float64
	DueDate              time.Time
	PaidDate             *time.Time
	Status               string
	PaymentMethod        *string
	TransactionReference *string
	Notes                *string
}

// Create persists a new installment. Status defaults to pending. The
// investor must exist by primary key; the check deliberately counts
// soft-deleted rows, matching how the books treat discarded investors with
// open obligations. The paid/due date ordering is NOT checked here — only
// updates guard it.
func (s *InstallmentService) Create(ctx context.Context, input *CreateInstallmentInput, actorID uint, ip, userAgent string) (*models.InvestorInstallment, error) {
	if err := validateInstallmentAmount(input.Amount); err != nil {
		return nil, err
	}
	if input.InstallmentNumber < 1 {
		return nil, NewValidationError().Add("installment_number", "must be a positive integer")
	}

	status := input.Status
	if status == "" {
		status = models.InstallmentStatusPending
	}
	if !models.IsValidInstallmentStatus(status) {
		return nil, NewValidationError().Add("status", "must be one of pending, paid, overdue, waived")
	}

	exists, err := s.investorRepo.Exists(ctx, input.InvestorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, NewValidationError().Add("investor_id", "must reference an existing investor")
	}

	installment := &models.InvestorInstallment{
		InvestorID:           input.InvestorID,
		InstallmentNumber:    input.InstallmentNumber,
		Amount:               input.Amount,
		DueDate:              input.DueDate,
		PaidDate:             input.PaidDate,
		Status:               status,
		PaymentMethod:        input.PaymentMethod,
		TransactionReference: input.TransactionReference,
		Notes:                input.Notes,
	}

	if err := s.repo.Create(ctx, installment); err != nil {
		return nil, err
	}

	s.audit(actorID, "CREATE", installment.ID,
		fmt.Sprintf("installment #%d for investor %d, amount %.2f", installment.InstallmentNumber, installment.InvestorID, installment.Amount),
		ip, userAgent)

	return s.repo.FindByIDWithInvestor(ctx, installment.ID)
}

// UpdateInstallmentInput carries a partial patch for an installment
type UpdateInstallmentInput struct {
	InstallmentNumber    *int
	Amount               *float64
	DueDate              *time.Time
	PaidDate             *time.Time
	Status               *string
	PaymentMethod        *string
	TransactionReference *string
	Notes                *string
}

// Update applies a partial patch, running the status change through the
// state machine. The date-ordering invariant is evaluated against the
// effective due date: the requested value when supplied, else the stored
// one.
func (s *InstallmentService) Update(ctx context.Context, id uint, input *UpdateInstallmentInput, actorID uint, ip, userAgent string) (*models.InvestorInstallment, error) {
	installment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if err := validateInstallmentAmount(*input.Amount); err != nil {
			return nil, err
		}
	}
	if input.InstallmentNumber != nil && *input.InstallmentNumber < 1 {
		return nil, NewValidationError().Add("installment_number", "must be a positive integer")
	}

	target := installment.Status
	if input.Status != nil {
		if !models.IsValidInstallmentStatus(*input.Status) {
			return nil, NewValidationError().Add("status", "must be one of pending, paid, overdue, waived")
		}
		target = *input.Status
	}

	effectiveDue := installment.EffectiveDueDate(input.DueDate)
	paidDate := input.PaidDate
	if paidDate == nil {
		paidDate = installment.PaidDate
	}

	machine := statemachine.NewInstallmentFSM(installment)
	if err := machine.TransitionTo(ctx, target, paidDate, effectiveDue); err != nil {
		var dateErr *statemachine.ErrPaidBeforeDue
		if errors.As(err, &dateErr) {
			return nil, NewValidationError().Add("paid_date", "must be on or after the due date")
		}
		return nil, ErrInvalidState
	}

	if input.InstallmentNumber != nil {
		installment.InstallmentNumber = *input.InstallmentNumber
	}
	if input.Amount != nil {
		installment.Amount = *input.Amount
	}
	if input.DueDate != nil {
		installment.DueDate = *input.DueDate
	}
	if input.PaidDate != nil {
		installment.PaidDate = input.PaidDate
	}
	if input.PaymentMethod != nil {
		installment.PaymentMethod = input.PaymentMethod
	}
	if input.TransactionReference != nil {
		installment.TransactionReference = input.TransactionReference
	}
	if input.Notes != nil {
		installment.Notes = input.Notes
	}

	if err := s.repo.Update(ctx, installment); err != nil {
		return nil, err
	}

	s.audit(actorID, "UPDATE", installment.ID,
		fmt.Sprintf("installment #%d status %s", installment.InstallmentNumber, installment.Status),
		ip, userAgent)

	if input.Status != nil && *input.Status == models.InstallmentStatusPaid {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			updated, err := s.repo.FindByIDWithInvestor(ctx, installment.ID)
			if err != nil {
				return err
			}
			if err := s.notificationSvc.NotifyAdmins(ctx,
				models.NotificationTypePaymentRecorded,
				"Installment payment recorded",
				fmt.Sprintf("Installment #%d of %s was marked paid (%.2f)", updated.InstallmentNumber, updated.Investor.Name, updated.Amount),
			); err != nil {
				return err
			}
			return s.emailSvc.SendPaymentReceipt(ctx, updated)
		})
	}

	return s.repo.FindByIDWithInvestor(ctx, installment.ID)
}

// SoftDelete hides the installment; the parent investor is untouched
func (s *InstallmentService) SoftDelete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	installment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(actorID, "DELETE", installment.ID,
		fmt.Sprintf("installment #%d for investor %d", installment.InstallmentNumber, installment.InvestorID),
		ip, userAgent)
	return nil
}

// CheckPastDueInstallments reports pending installments whose due date has
// passed. It notifies admins and emails reminders but never flips the
// stored status — overdue is an explicit admin action.
func (s *InstallmentService) CheckPastDueInstallments(ctx context.Context) error {
	pastDue, err := s.repo.FindPastDue(ctx, time.Now())
	if err != nil {
		return err
	}
	if len(pastDue) == 0 {
		return nil
	}

	var total float64
	for _, inst := range pastDue {
		total += inst.Amount
	}

	if err := s.notificationSvc.NotifyAdmins(ctx,
		models.NotificationTypeOverdueSummary,
		"Installments past due",
		fmt.Sprintf("%d pending installments are past due, totalling %.2f", len(pastDue), total),
	); err != nil {
		logger.Error("Failed to create past-due notification", "error", err)
	}

	for i := range pastDue {
		if err := s.emailSvc.SendPastDueReminder(ctx, &pastDue[i]); err != nil {
			logger.Error("Failed to send past-due reminder", "installment_id", pastDue[i].ID, "error", err)
		}
	}

	return nil
}

func (s *InstallmentService) audit(actorID uint, action string, entityID uint, details, ip, userAgent string) {
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.auditSvc.Log(ctx, actorID, action, "InvestorInstallment", entityID, details, ip, userAgent)
	})
}

func validateInstallmentAmount(amount float64) error {
	if amount < 0 {
		return NewValidationError().Add("amount", "must be greater than or equal to 0")
	}
	if amount > models.MaxInstallmentAmount {
		return NewValidationError().Add("amount", "must not exceed 999999999.99")
	}
	return nil
}
