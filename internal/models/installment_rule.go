package models

import (
	"math"
	"time"
)

// InstallmentRule is a named payment-plan template: full payment, down
// payment plus EMI, or pure EMI. Rules describe offers shown to investors;
// they are not linked to InvestorInstallment rows by any foreign key.
type InstallmentRule struct {
	ID                         uint       `gorm:"primaryKey" json:"id"`
	Name                       string     `gorm:"not null;index" json:"name"`
	PaymentType                string     `gorm:"not null" json:"payment_type"`
	RegularPrice               float64    `gorm:"type:decimal(12,2);not null" json:"regular_price"`
	SpecialDiscount            float64    `gorm:"type:decimal(12,2);default:0" json:"special_discount"`
	OfferPrice                 float64    `gorm:"type:decimal(12,2)" json:"offer_price"`
	DownPaymentAmount          *float64   `gorm:"type:decimal(12,2)" json:"down_payment_amount"`
	EMIAmount                  *float64   `gorm:"column:emi_amount;type:decimal(12,2)" json:"emi_amount"`
	DurationMonths             *int       `json:"duration_months"`
	WaiverFrequencyMonths      *int       `json:"waiver_frequency_months"`
	NumberOfWaivers            *int       `json:"number_of_waivers"`
	WaiverAmountPerInstallment *float64   `gorm:"type:decimal(12,2)" json:"waiver_amount_per_installment"`
	TotalWaiverAmount          *float64   `gorm:"type:decimal(12,2)" json:"total_waiver_amount"`
	IsLimitedTimeOffer         bool       `gorm:"default:false" json:"is_limited_time_offer"`
	Status                     string     `gorm:"default:active;index" json:"status"`
	DiscardedAt                *time.Time `gorm:"index" json:"-"`
	CreatedAt                  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for InstallmentRule
func (InstallmentRule) TableName() string {
	return "installment_rules"
}

// Payment type constants
const (
	PaymentTypeFullPayment    = "full_payment"
	PaymentTypeDownPayment    = "down_payment"
	PaymentTypeEMIInstallment = "emi_installment"
)

// Rule status constants
const (
	RuleStatusActive   = "active"
	RuleStatusInactive = "inactive"
)

// IsValidPaymentType reports whether t is a member of the payment type enum
func IsValidPaymentType(t string) bool {
	return t == PaymentTypeFullPayment || t == PaymentTypeDownPayment || t == PaymentTypeEMIInstallment
}

// RequiresDownPayment returns true when the plan type needs a down payment
// amount at creation time.
func (r *InstallmentRule) RequiresDownPayment() bool {
	return r.PaymentType == PaymentTypeDownPayment
}

// RequiresEMI returns true when the plan type needs an EMI amount and
// duration at creation time.
func (r *InstallmentRule) RequiresEMI() bool {
	return r.PaymentType == PaymentTypeDownPayment || r.PaymentType == PaymentTypeEMIInstallment
}

// IsActive returns true if the rule status is active
func (r *InstallmentRule) IsActive() bool {
	return r.Status == RuleStatusActive
}

// ToggleStatus flips the rule between active and inactive
func (r *InstallmentRule) ToggleStatus() {
	if r.Status == RuleStatusActive {
		r.Status = RuleStatusInactive
	} else {
		r.Status = RuleStatusActive
	}
}

// RoundAmounts normalizes every monetary field to two decimal places
// before persistence.
func (r *InstallmentRule) RoundAmounts() {
	r.RegularPrice = round2(r.RegularPrice)
	r.SpecialDiscount = round2(r.SpecialDiscount)
	r.OfferPrice = round2(r.OfferPrice)
	roundPtr(r.DownPaymentAmount)
	roundPtr(r.EMIAmount)
	roundPtr(r.WaiverAmountPerInstallment)
	roundPtr(r.TotalWaiverAmount)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundPtr(v *float64) {
	if v != nil {
		*v = round2(*v)
	}
}

// RuleResponse is the JSON response format for installment rules
type RuleResponse struct {
	ID                         uint      `json:"id"`
	Name                       string    `json:"name"`
	PaymentType                string    `json:"payment_type"`
	RegularPrice               float64   `json:"regular_price"`
	SpecialDiscount            float64   `json:"special_discount"`
	OfferPrice                 float64   `json:"offer_price"`
	DownPaymentAmount          *float64  `json:"down_payment_amount"`
	EMIAmount                  *float64  `json:"emi_amount"`
	DurationMonths             *int      `json:"duration_months"`
	WaiverFrequencyMonths      *int      `json:"waiver_frequency_months"`
	NumberOfWaivers            *int      `json:"number_of_waivers"`
	WaiverAmountPerInstallment *float64  `json:"waiver_amount_per_installment"`
	TotalWaiverAmount          *float64  `json:"total_waiver_amount"`
	IsLimitedTimeOffer         bool      `json:"is_limited_time_offer"`
	Status                     string    `json:"status"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// ToResponse converts InstallmentRule to RuleResponse
func (r *InstallmentRule) ToResponse() RuleResponse {
	return RuleResponse{
		ID:                         r.ID,
		Name:                       r.Name,
		PaymentType:                r.PaymentType,
		RegularPrice:               r.RegularPrice,
		SpecialDiscount:            r.SpecialDiscount,
		OfferPrice:                 r.OfferPrice,
		DownPaymentAmount:          r.DownPaymentAmount,
		EMIAmount:                  r.EMIAmount,
		DurationMonths:             r.DurationMonths,
		WaiverFrequencyMonths:      r.WaiverFrequencyMonths,
		NumberOfWaivers:            r.NumberOfWaivers,
		WaiverAmountPerInstallment: r.WaiverAmountPerInstallment,
		TotalWaiverAmount:          r.TotalWaiverAmount,
		IsLimitedTimeOffer:         r.IsLimitedTimeOffer,
		Status:                     r.Status,
		CreatedAt:                  r.CreatedAt,
		UpdatedAt:                  r.UpdatedAt,
	}
}
