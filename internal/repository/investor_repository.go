package repository

import (
	"context"
	"time"

	"github.com/medicore/medicore-api/internal/models"
	"gorm.io/gorm"
)

// InvestorRepository defines the interface for investor data access
type InvestorRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Investor, error)
	FindByIDWithInstallments(ctx context.Context, id uint) (*models.Investor, error)
	// Exists checks the row exists by primary key. Soft-deleted rows still
	// count: installment creation accepts a discarded investor's id.
	Exists(ctx context.Context, id uint) (bool, error)
	Create(ctx context.Context, investor *models.Investor) error
	Update(ctx context.Context, investor *models.Investor) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Investor, int64, error)
}

// investorSortColumns maps sort keys accepted on investor lists to real columns
var investorSortColumns = map[string]string{
	"name":         "name",
	"email":        "email",
	"total_price":  "total_price",
	"agreed_price": "agreed_price",
	"created_at":   "created_at",
}

type investorRepository struct {
	db *gorm.DB
}

// NewInvestorRepository creates a new investor repository
func NewInvestorRepository(db *gorm.DB) InvestorRepository {
	return &investorRepository{db: db}
}

func (r *investorRepository) FindByID(ctx context.Context, id uint) (*models.Investor, error) {
	var investor models.Investor
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&investor, id).Error
	if err != nil {
		return nil, err
	}
	return &investor, nil
}

func (r *investorRepository) FindByIDWithInstallments(ctx context.Context, id uint) (*models.Investor, error) {
	var investor models.Investor
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Where("discarded_at IS NULL").Order("installment_number ASC")
		}).
		First(&investor, id).Error
	if err != nil {
		return nil, err
	}
	return &investor, nil
}

func (r *investorRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Investor{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *investorRepository) Create(ctx context.Context, investor *models.Investor) error {
	return r.db.WithContext(ctx).Create(investor).Error
}

func (r *investorRepository) Update(ctx context.Context, investor *models.Investor) error {
	return r.db.WithContext(ctx).Save(investor).Error
}

func (r *investorRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Investor{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *investorRepository) List(ctx context.Context, query *ListQuery) ([]models.Investor, int64, error) {
	var investors []models.Investor
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Investor{}).Where("discarded_at IS NULL")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR national_id ILIKE ?",
			search, search, search, search)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, investorSortColumns, "created_at DESC")

	err := db.Find(&investors).Error
	return investors, total, err
}

// InstallmentRepository defines the interface for installment data access
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.InvestorInstallment, error)
	FindByIDWithInvestor(ctx context.Context, id uint) (*models.InvestorInstallment, error)
	FindByInvestor(ctx context.Context, investorID uint) ([]models.InvestorInstallment, error)
	FindPastDue(ctx context.Context, asOf time.Time) ([]models.InvestorInstallment, error)
	Create(ctx context.Context, installment *models.InvestorInstallment) error
	Update(ctx context.Context, installment *models.InvestorInstallment) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.InvestorInstallment, int64, error)
	GetStats(ctx context.Context) (*InstallmentStats, error)
}

// installmentSortColumns maps sort keys accepted on installment lists to
// table-qualified columns, since the list query joins the investor
var installmentSortColumns = map[string]string{
	"installment_number": "investor_installments.installment_number",
	"amount":             "investor_installments.amount",
	"due_date":           "investor_installments.due_date",
	"paid_date":          "investor_installments.paid_date",
	"status":             "investor_installments.status",
	"created_at":         "investor_installments.created_at",
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByID(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	var installment models.InvestorInstallment
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByIDWithInvestor(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	var installment models.InvestorInstallment
	err := r.db.WithContext(ctx).
		Where("investor_installments.discarded_at IS NULL").
		Preload("Investor").
		First(&installment, id).Error
	if err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByInvestor(ctx context.Context, investorID uint) ([]models.InvestorInstallment, error) {
	var installments []models.InvestorInstallment
	err := r.db.WithContext(ctx).
		Where("investor_id = ? AND discarded_at IS NULL", investorID).
		Order("installment_number ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindPastDue(ctx context.Context, asOf time.Time) ([]models.InvestorInstallment, error) {
	var installments []models.InvestorInstallment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ? AND discarded_at IS NULL", models.InstallmentStatusPending, asOf).
		Preload("Investor").
		Order("due_date ASC").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) Create(ctx context.Context, installment *models.InvestorInstallment) error {
	return r.db.WithContext(ctx).Create(installment).Error
}

func (r *installmentRepository) Update(ctx context.Context, installment *models.InvestorInstallment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

func (r *installmentRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.InvestorInstallment{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *installmentRepository) List(ctx context.Context, query *ListQuery) ([]models.InvestorInstallment, int64, error) {
	var installments []models.InvestorInstallment
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.InvestorInstallment{}).
		Where("investor_installments.discarded_at IS NULL")

	if status := query.Filters["status"]; status != "" {
		db = db.Where("investor_installments.status = ?", status)
	}
	if investorID := query.Filters["investor_id"]; investorID != "" {
		db = db.Where("investor_installments.investor_id = ?", investorID)
	}
	if from := query.Filters["due_from"]; from != "" {
		db = db.Where("investor_installments.due_date >= ?", from)
	}
	if to := query.Filters["due_to"]; to != "" {
		db = db.Where("investor_installments.due_date <= ?", to)
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, installmentSortColumns, "investor_installments.created_at DESC")

	err := db.Preload("Investor").Find(&installments).Error
	return installments, total, err
}

// InstallmentStats holds installment counts and sums grouped by status
type InstallmentStats struct {
	Total         int64   `json:"total"`
	Pending       int64   `json:"pending"`
	Paid          int64   `json:"paid"`
	Overdue       int64   `json:"overdue"`
	Waived        int64   `json:"waived"`
	PendingAmount float64 `json:"pending_amount"`
	PaidAmount    float64 `json:"paid_amount"`
}

func (r *installmentRepository) GetStats(ctx context.Context) (*InstallmentStats, error) {
	stats := &InstallmentStats{}

	rows, err := r.db.WithContext(ctx).
		Model(&models.InvestorInstallment{}).
		Select("status, count(*) as count, COALESCE(SUM(amount), 0) as amount").
		Where("discarded_at IS NULL").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		var amount float64
		if err := rows.Scan(&status, &count, &amount); err != nil {
			return nil, err
		}
		stats.Total += count
		switch status {
		case models.InstallmentStatusPending:
			stats.Pending = count
			stats.PendingAmount = amount
		case models.InstallmentStatusPaid:
			stats.Paid = count
			stats.PaidAmount = amount
		case models.InstallmentStatusOverdue:
			stats.Overdue = count
		case models.InstallmentStatusWaived:
			stats.Waived = count
		}
	}

	return stats, rows.Err()
}

// RuleRepository defines the interface for installment rule data access
type RuleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.InstallmentRule, error)
	Create(ctx context.Context, rule *models.InstallmentRule) error
	Update(ctx context.Context, rule *models.InstallmentRule) error
	SoftDelete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.InstallmentRule, int64, error)
}

// ruleSortColumns maps sort keys accepted on rule lists to real columns
var ruleSortColumns = map[string]string{
	"name":            "name",
	"payment_type":    "payment_type",
	"regular_price":   "regular_price",
	"offer_price":     "offer_price",
	"duration_months": "duration_months",
	"status":          "status",
	"created_at":      "created_at",
}

type ruleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new installment rule repository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) FindByID(ctx context.Context, id uint) (*models.InstallmentRule, error) {
	var rule models.InstallmentRule
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&rule, id).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.InstallmentRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *ruleRepository) Update(ctx context.Context, rule *models.InstallmentRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *ruleRepository) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.InstallmentRule{}).
		Where("id = ?", id).
		Update("discarded_at", time.Now()).Error
}

func (r *ruleRepository) List(ctx context.Context, query *ListQuery) ([]models.InstallmentRule, int64, error) {
	var rules []models.InstallmentRule
	var total int64

	db := r.db.WithContext(ctx).Model(&models.InstallmentRule{}).Where("discarded_at IS NULL")

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if paymentType := query.Filters["payment_type"]; paymentType != "" {
		db = db.Where("payment_type = ?", paymentType)
	}
	if query.Search != "" {
		db = db.Where("name ILIKE ?", "%"+query.Search+"%")
	}

	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = applySortAndPage(db, query, ruleSortColumns, "created_at DESC")

	err := db.Find(&rules).Error
	return rules, total, err
}
