package models

import (
	"time"
)

// InvestorInstallment represents one scheduled payment obligation of an
// investor. Rows are created explicitly by admin calls; there is no
// generation routine linking them to an InstallmentRule.
type InvestorInstallment struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	InvestorID           uint       `gorm:"not null;index" json:"investor_id"`
	InstallmentNumber    int        `gorm:"not null" json:"installment_number"`
	Amount               float64    `gorm:"type:decimal(12,2);not null" json:"amount"`
	DueDate              time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	PaidDate             *time.Time `gorm:"type:date" json:"paid_date"`
	Status               string     `gorm:"default:pending;not null;index" json:"status"`
	PaymentMethod        *string    `gorm:"size:50" json:"payment_method"`
	TransactionReference *string    `gorm:"size:100" json:"transaction_reference"`
	Notes                *string    `gorm:"type:text" json:"notes"`
	DiscardedAt          *time.Time `gorm:"index" json:"-"`
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Associations
	Investor Investor `gorm:"foreignKey:InvestorID" json:"investor,omitempty"`
}

// TableName specifies the table name for InvestorInstallment
func (InvestorInstallment) TableName() string {
	return "investor_installments"
}

// Installment status constants
const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
	InstallmentStatusWaived  = "waived"
)

// InstallmentStatuses lists every valid status value.
var InstallmentStatuses = []string{
	InstallmentStatusPending,
	InstallmentStatusPaid,
	InstallmentStatusOverdue,
	InstallmentStatusWaived,
}

// IsValidInstallmentStatus reports whether s is a member of the status enum
func IsValidInstallmentStatus(s string) bool {
	for _, status := range InstallmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// MaxInstallmentAmount is the upper bound accepted for a single installment
const MaxInstallmentAmount = 999999999.99

// IsPastDue returns true if the installment is pending and past its due
// date. Nothing flips the stored status automatically; overdue is set by an
// explicit admin update.
func (i *InvestorInstallment) IsPastDue() bool {
	return i.Status == InstallmentStatusPending && time.Now().After(i.DueDate)
}

// PastDueDays returns the number of days past due
func (i *InvestorInstallment) PastDueDays() int {
	if !i.IsPastDue() {
		return 0
	}
	return int(time.Since(i.DueDate).Hours() / 24)
}

// EffectiveDueDate returns the due date an update should be validated
// against: the requested value when supplied, else the stored one.
func (i *InvestorInstallment) EffectiveDueDate(requested *time.Time) time.Time {
	if requested != nil {
		return *requested
	}
	return i.DueDate
}

// InstallmentResponse is the JSON response format for installments
type InstallmentResponse struct {
	ID                   uint             `json:"id"`
	InvestorID           uint             `json:"investor_id"`
	InstallmentNumber    int              `json:"installment_number"`
	Amount               float64          `json:"amount"`
	DueDate              time.Time        `json:"due_date"`
	PaidDate             *time.Time       `json:"paid_date"`
	Status               string           `json:"status"`
	PaymentMethod        *string          `json:"payment_method"`
	TransactionReference *string          `json:"transaction_reference"`
	Notes                *string          `json:"notes"`
	PastDueDays          int              `json:"past_due_days"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
	Investor             *InvestorSummary `json:"investor,omitempty"`
}

// ToResponse converts InvestorInstallment to InstallmentResponse
func (i *InvestorInstallment) ToResponse() InstallmentResponse {
	resp := InstallmentResponse{
		ID:                   i.ID,
		InvestorID:           i.InvestorID,
		InstallmentNumber:    i.InstallmentNumber,
		Amount:               i.Amount,
		DueDate:              i.DueDate,
		PaidDate:             i.PaidDate,
		Status:               i.Status,
		PaymentMethod:        i.PaymentMethod,
		TransactionReference: i.TransactionReference,
		Notes:                i.Notes,
		PastDueDays:          i.PastDueDays(),
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
	}

	if i.Investor.ID != 0 {
		summary := i.Investor.ToSummary()
		resp.Investor = &summary
	}

	return resp
}
