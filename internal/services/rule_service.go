package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
)

// RuleService manages installment rule templates
type RuleService struct {
	repo     repository.RuleRepository
	auditSvc *AuditService
	worker   *jobs.Worker
}

// NewRuleService creates a new rule service
func NewRuleService(repo repository.RuleRepository, auditSvc *AuditService, worker *jobs.Worker) *RuleService {
	return &RuleService{repo: repo, auditSvc: auditSvc, worker: worker}
}

func (s *RuleService) FindByID(ctx context.Context, id uint) (*models.InstallmentRule, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RuleService) List(ctx context.Context, query *repository.ListQuery) ([]models.InstallmentRule, int64, error) {
	return s.repo.List(ctx, query)
}

// Create validates and persists a new rule. The conditionally required
// fields are enforced here, at creation time only: a down payment plan
// needs its down payment amount, and any plan with an EMI leg needs the EMI
// amount and a duration between 1 and 120 months.
func (s *RuleService) Create(ctx context.Context, rule *models.InstallmentRule, actorID uint, ip, userAgent string) error {
	if err := validateRuleConsistency(rule); err != nil {
		return err
	}

	rule.RoundAmounts()
	if rule.Status == "" {
		rule.Status = models.RuleStatusActive
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return err
	}
	s.audit(actorID, "CREATE", rule.ID, rule.Name, ip, userAgent)
	return nil
}

// UpdateRuleInput carries a partial patch: only non-nil fields are applied.
// Fields omitted from the patch are not re-validated against the (possibly
// new) payment type, so a rule can be patched into a state that Create
// would have rejected. Closing that gap would break callers that patch
// payment_type first and amounts second, so the patch path stays permissive.
type UpdateRuleInput struct {
	Name                       *string
	PaymentType                *string
	RegularPrice               *float64
	SpecialDiscount            *float64
	OfferPrice                 *float64
	DownPaymentAmount          *float64
	EMIAmount                  *float64
	DurationMonths             *int
	WaiverFrequencyMonths      *int
	NumberOfWaivers            *int
	WaiverAmountPerInstallment *float64
	TotalWaiverAmount          *float64
	IsLimitedTimeOffer         *bool
}

// Update merges the supplied fields into the stored rule
func (s *RuleService) Update(ctx context.Context, id uint, input *UpdateRuleInput, actorID uint, ip, userAgent string) (*models.InstallmentRule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.PaymentType != nil {
		if !models.IsValidPaymentType(*input.PaymentType) {
			return nil, NewValidationError().Add("payment_type", "must be one of full_payment, down_payment, emi_installment")
		}
		rule.PaymentType = *input.PaymentType
	}
	if input.DurationMonths != nil {
		if *input.DurationMonths < 1 || *input.DurationMonths > 120 {
			return nil, NewValidationError().Add("duration_months", "must be between 1 and 120")
		}
		rule.DurationMonths = input.DurationMonths
	}
	if input.Name != nil {
		rule.Name = *input.Name
	}
	if input.RegularPrice != nil {
		rule.RegularPrice = *input.RegularPrice
	}
	if input.SpecialDiscount != nil {
		rule.SpecialDiscount = *input.SpecialDiscount
	}
	if input.OfferPrice != nil {
		rule.OfferPrice = *input.OfferPrice
	}
	if input.DownPaymentAmount != nil {
		rule.DownPaymentAmount = input.DownPaymentAmount
	}
	if input.EMIAmount != nil {
		rule.EMIAmount = input.EMIAmount
	}
	if input.WaiverFrequencyMonths != nil {
		rule.WaiverFrequencyMonths = input.WaiverFrequencyMonths
	}
	if input.NumberOfWaivers != nil {
		rule.NumberOfWaivers = input.NumberOfWaivers
	}
	if input.WaiverAmountPerInstallment != nil {
		rule.WaiverAmountPerInstallment = input.WaiverAmountPerInstallment
	}
	if input.TotalWaiverAmount != nil {
		rule.TotalWaiverAmount = input.TotalWaiverAmount
	}
	if input.IsLimitedTimeOffer != nil {
		rule.IsLimitedTimeOffer = *input.IsLimitedTimeOffer
	}

	rule.RoundAmounts()

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.audit(actorID, "UPDATE", rule.ID, rule.Name, ip, userAgent)
	return rule, nil
}

// SoftDelete hides the rule from default queries. A new rule with the same
// name and duration may be created afterwards; no duplicate detection runs.
func (s *RuleService) SoftDelete(ctx context.Context, id uint, actorID uint, ip, userAgent string) error {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.audit(actorID, "DELETE", id, rule.Name, ip, userAgent)
	return nil
}

// SetActive flips the rule between active and inactive
func (s *RuleService) SetActive(ctx context.Context, id uint, actorID uint, ip, userAgent string) (*models.InstallmentRule, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.ToggleStatus()
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.audit(actorID, "SET_ACTIVE", rule.ID, rule.Name+" -> "+rule.Status, ip, userAgent)
	return rule, nil
}

func (s *RuleService) audit(actorID uint, action string, entityID uint, details, ip, userAgent string) {
	if s.auditSvc == nil || actorID == 0 {
		return
	}
	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.auditSvc.Log(ctx, actorID, action, "InstallmentRule", entityID, details, ip, userAgent)
	})
}

// validateRuleConsistency checks the conditionally required fields against
// the declared payment type.
func validateRuleConsistency(rule *models.InstallmentRule) error {
	ve := NewValidationError()

	if !models.IsValidPaymentType(rule.PaymentType) {
		ve.Add("payment_type", "must be one of full_payment, down_payment, emi_installment")
		return ve
	}

	if rule.RequiresDownPayment() && rule.DownPaymentAmount == nil {
		ve.Add("down_payment_amount", "is required when payment_type is down_payment")
	}
	if rule.RequiresEMI() {
		if rule.EMIAmount == nil {
			ve.Add("emi_amount", fmt.Sprintf("is required when payment_type is %s", rule.PaymentType))
		}
		if rule.DurationMonths == nil {
			ve.Add("duration_months", fmt.Sprintf("is required when payment_type is %s", rule.PaymentType))
		} else if *rule.DurationMonths < 1 || *rule.DurationMonths > 120 {
			ve.Add("duration_months", "must be between 1 and 120")
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// PreviewInstallment is one computed row of a schedule preview. Previews
// are never persisted; rules and stored installments stay unlinked.
type PreviewInstallment struct {
	InstallmentNumber int       `json:"installment_number"`
	Amount            float64   `json:"amount"`
	DueDate           time.Time `json:"due_date"`
	Kind              string    `json:"kind"` // down_payment, emi, waived
}

// SchedulePreview computes the payment rows a rule implies, starting from
// startDate. Waiver months (every waiver_frequency_months, up to
// number_of_waivers times) appear as zero-amount waived rows.
func (s *RuleService) SchedulePreview(ctx context.Context, id uint, startDate time.Time) (*models.InstallmentRule, []PreviewInstallment, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var rows []PreviewInstallment
	number := 1

	if rule.PaymentType == models.PaymentTypeFullPayment {
		rows = append(rows, PreviewInstallment{
			InstallmentNumber: number,
			Amount:            rule.OfferPrice,
			DueDate:           startDate,
			Kind:              "full_payment",
		})
		return rule, rows, nil
	}

	if rule.PaymentType == models.PaymentTypeDownPayment && rule.DownPaymentAmount != nil {
		rows = append(rows, PreviewInstallment{
			InstallmentNumber: number,
			Amount:            *rule.DownPaymentAmount,
			DueDate:           startDate,
			Kind:              "down_payment",
		})
		number++
	}

	if rule.EMIAmount == nil || rule.DurationMonths == nil {
		return rule, rows, nil
	}

	waiversLeft := 0
	if rule.NumberOfWaivers != nil {
		waiversLeft = *rule.NumberOfWaivers
	}
	frequency := 0
	if rule.WaiverFrequencyMonths != nil {
		frequency = *rule.WaiverFrequencyMonths
	}

	firstEMIDate := startDate.AddDate(0, 1, 0)
	for i := 0; i < *rule.DurationMonths; i++ {
		dueDate := firstEMIDate.AddDate(0, i, 0)
		row := PreviewInstallment{
			InstallmentNumber: number,
			Amount:            math.Round(*rule.EMIAmount*100) / 100,
			DueDate:           dueDate,
			Kind:              "emi",
		}

		// A waiver month forgives the EMI
		if frequency > 0 && waiversLeft > 0 && (i+1)%frequency == 0 {
			row.Amount = 0
			row.Kind = "waived"
			waiversLeft--
		}

		rows = append(rows, row)
		number++
	}

	return rule, rows, nil
}
