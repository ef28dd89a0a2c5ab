package models

import (
	"time"
)

// Investor represents an applicant/counterparty for a hospital share
// (HSS) purchase. Almost every descriptive field is nullable: records
// arrive from a public submission form as well as from admin data entry,
// and monetary figures are stored exactly as supplied — the server never
// derives totals or discounts.
type Investor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Identity & contact
	Name          string     `gorm:"not null" json:"name"`
	Email         *string    `gorm:"index" json:"email"`
	Phone         *string    `json:"phone"`
	NationalID    *string    `json:"national_id"`
	Occupation    *string    `json:"occupation"`
	FatherName    *string    `json:"father_name"`
	MotherName    *string    `json:"mother_name"`
	SpouseName    *string    `json:"spouse_name"`
	DateOfBirth   *time.Time `gorm:"type:date" json:"date_of_birth"`
	PresentAddr   *string    `gorm:"column:present_address;type:text" json:"present_address"`
	PermanentAddr *string    `gorm:"column:permanent_address;type:text" json:"permanent_address"`

	// Nominee
	NomineeName     *string `json:"nominee_name"`
	NomineeRelation *string `json:"nominee_relation"`
	NomineePhone    *string `json:"nominee_phone"`

	// Commercial terms, all caller-supplied and stored verbatim
	PricePerHSS       *float64   `gorm:"column:price_per_hss;type:decimal(12,2)" json:"price_per_hss"`
	NumberOfHSS       *int       `gorm:"column:number_of_hss" json:"number_of_hss"`
	TotalPrice        *float64   `gorm:"type:decimal(12,2)" json:"total_price"`
	SpecialDiscount   *float64   `gorm:"type:decimal(12,2)" json:"special_discount"`
	AgreedPrice       *float64   `gorm:"type:decimal(12,2)" json:"agreed_price"`
	BookingMoney      *float64   `gorm:"type:decimal(12,2)" json:"booking_money"`
	BookingMoneyDate  *time.Time `gorm:"type:date" json:"booking_money_date"`
	DownPaymentAmount *float64   `gorm:"type:decimal(12,2)" json:"down_payment_amount"`
	DownPaymentDate   *time.Time `gorm:"type:date" json:"down_payment_date"`
	RestAmount        *float64   `gorm:"type:decimal(12,2)" json:"rest_amount"`

	// Images: either an uploaded-file path under the public disk or an
	// externally supplied URL, whichever the request carried
	ApplicantImage *string `gorm:"size:500" json:"applicant_image"`
	NomineeImage   *string `gorm:"size:500" json:"nominee_image"`

	Notes       *string    `gorm:"type:text" json:"notes"`
	DiscardedAt *time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Child installments are removed by the database when the parent row
	// is hard-deleted, regardless of their soft-delete state
	Installments []InvestorInstallment `gorm:"foreignKey:InvestorID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
}

// TableName specifies the table name for Investor
func (Investor) TableName() string {
	return "investors"
}

// IsDiscarded returns true if the investor has been soft-deleted
func (i *Investor) IsDiscarded() bool {
	return i.DiscardedAt != nil
}

// InvestorSummary is the compact representation embedded in installment
// responses.
type InvestorSummary struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// ToSummary converts Investor to InvestorSummary
func (i *Investor) ToSummary() InvestorSummary {
	return InvestorSummary{
		ID:    i.ID,
		Name:  i.Name,
		Email: i.Email,
		Phone: i.Phone,
	}
}

// InvestorResponse is the JSON response format for investors
type InvestorResponse struct {
	ID                uint       `json:"id"`
	Name              string     `json:"name"`
	Email             *string    `json:"email"`
	Phone             *string    `json:"phone"`
	NationalID        *string    `json:"national_id"`
	Occupation        *string    `json:"occupation"`
	FatherName        *string    `json:"father_name"`
	MotherName        *string    `json:"mother_name"`
	SpouseName        *string    `json:"spouse_name"`
	DateOfBirth       *time.Time `json:"date_of_birth"`
	PresentAddress    *string    `json:"present_address"`
	PermanentAddress  *string    `json:"permanent_address"`
	NomineeName       *string    `json:"nominee_name"`
	NomineeRelation   *string    `json:"nominee_relation"`
	NomineePhone      *string    `json:"nominee_phone"`
	PricePerHSS       *float64   `json:"price_per_hss"`
	NumberOfHSS       *int       `json:"number_of_hss"`
	TotalPrice        *float64   `json:"total_price"`
	SpecialDiscount   *float64   `json:"special_discount"`
	AgreedPrice       *float64   `json:"agreed_price"`
	BookingMoney      *float64   `json:"booking_money"`
	BookingMoneyDate  *time.Time `json:"booking_money_date"`
	DownPaymentAmount *float64   `json:"down_payment_amount"`
	DownPaymentDate   *time.Time `json:"down_payment_date"`
	RestAmount        *float64   `json:"rest_amount"`
	ApplicantImage    *string    `json:"applicant_image"`
	NomineeImage      *string    `json:"nominee_image"`
	Notes             *string    `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Installments []InstallmentResponse `json:"installments,omitempty"`
}

// ToResponse converts Investor to InvestorResponse
func (i *Investor) ToResponse() InvestorResponse {
	resp := InvestorResponse{
		ID:                i.ID,
		Name:              i.Name,
		Email:             i.Email,
		Phone:             i.Phone,
		NationalID:        i.NationalID,
		Occupation:        i.Occupation,
		FatherName:        i.FatherName,
		MotherName:        i.MotherName,
		SpouseName:        i.SpouseName,
		DateOfBirth:       i.DateOfBirth,
		PresentAddress:    i.PresentAddr,
		PermanentAddress:  i.PermanentAddr,
		NomineeName:       i.NomineeName,
		NomineeRelation:   i.NomineeRelation,
		NomineePhone:      i.NomineePhone,
		PricePerHSS:       i.PricePerHSS,
		NumberOfHSS:       i.NumberOfHSS,
		TotalPrice:        i.TotalPrice,
		SpecialDiscount:   i.SpecialDiscount,
		AgreedPrice:       i.AgreedPrice,
		BookingMoney:      i.BookingMoney,
		BookingMoneyDate:  i.BookingMoneyDate,
		DownPaymentAmount: i.DownPaymentAmount,
		DownPaymentDate:   i.DownPaymentDate,
		RestAmount:        i.RestAmount,
		ApplicantImage:    i.ApplicantImage,
		NomineeImage:      i.NomineeImage,
		Notes:             i.Notes,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}

	for _, inst := range i.Installments {
		resp.Installments = append(resp.Installments, inst.ToResponse())
	}

	return resp
}
