package services

import (
	"github.com/medicore/medicore-api/internal/config"
	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Investor     *InvestorService
	Installment  *InstallmentService
	Rule         *RuleService
	Content      *ContentService
	Notification *NotificationService
	Audit        *AuditService
	Email        *EmailService
	Image        *ImageService
	Export       *ExportService
	Report       *ReportService
	Job          *JobService
	Storage      *storage.LocalStorage
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(db)
	imageSvc := NewImageService(cfg.StoragePath + "/uploads")

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, emailSvc, auditSvc),
		Investor:     NewInvestorService(repos.Investor, notificationSvc, auditSvc, worker),
		Installment:  NewInstallmentService(repos.Installment, repos.Investor, notificationSvc, emailSvc, auditSvc, worker),
		Rule:         NewRuleService(repos.Rule, auditSvc, worker),
		Content:      NewContentService(repos.Department, repos.Doctor, repos.Blog, repos.HeroSection, auditSvc, worker),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Email:        emailSvc,
		Image:        imageSvc,
		Export:       NewExportService(repos.Installment),
		Report:       NewReportService(repos.Investor, repos.Installment),
		Job:          NewJobService(worker),
		Storage:      store,
	}
}
