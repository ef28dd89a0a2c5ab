package services

import (
	"context"
	"fmt"

	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
)

// InvestorService manages investor records
type InvestorService struct {
	repo            repository.InvestorRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
	worker          *jobs.Worker
}

// NewInvestorService creates a new investor service
func NewInvestorService(
	repo repository.InvestorRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *InvestorService {
	return &InvestorService{
		repo:            repo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		worker:          worker,
	}
}

func (s *InvestorService) FindByID(ctx context.Context, id uint) (*models.Investor, error) {
	return s.repo.FindByIDWithInstallments(ctx, id)
}

func (s *InvestorService) List(ctx context.Context, query *repository.ListQuery) ([]models.Investor, int64, error) {
	return s.repo.List(ctx, query)
}

// Create persists a new investor. Monetary fields are stored verbatim;
// nothing cross-checks total_price against price_per_hss × number_of_hss.
// actorID is zero for public submissions.
func (s *InvestorService) Create(ctx context.Context, investor *models.Investor, actorID uint, ip, userAgent string) (*models.Investor, error) {
	if err := s.repo.Create(ctx, investor); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		if actorID != 0 {
			if err := s.auditSvc.Log(ctx, actorID, "CREATE", "Investor", investor.ID, investor.Name, ip, userAgent); err != nil {
				return err
			}
		}
		return s.notificationSvc.NotifyAdmins(ctx,
			models.NotificationTypeInvestorCreated,
			"New investor application",
			fmt.Sprintf("Investor %s was registered", investor.Name),
		)
	})

	return investor, nil
}

// Update saves the already-merged investor record
func (s *InvestorService) Update(ctx context.Context, investor *models.Investor, actorID uint, ip, userAgent string) (*models.Investor, error) {
	if err := s.repo.Update(ctx, investor); err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.auditSvc.Log(ctx, actorID, "UPDATE", "Investor", investor.ID, investor.Name, ip, userAgent)
	})

	return investor, nil
}

// SoftDelete hides the investor from default queries. Installments keep
// their status and stay queryable through the installment endpoints; only a
// hard delete of the parent row would cascade into them.
func (s *InvestorService) SoftDelete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	investor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.auditSvc.Log(ctx, actorID, "DELETE", "Investor", investor.ID, investor.Name, ip, userAgent)
	})

	return nil
}
