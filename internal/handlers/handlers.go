package handlers

import (
	"github.com/medicore/medicore-api/internal/services"
	"github.com/medicore/medicore-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Investor     *InvestorHandler
	Installment  *InstallmentHandler
	Rule         *RuleHandler
	Content      *ContentHandler
	Notification *NotificationHandler
	Report       *ReportHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, store *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth, svcs.User),
		User:         NewUserHandler(svcs.User),
		Investor:     NewInvestorHandler(svcs.Investor, store),
		Installment:  NewInstallmentHandler(svcs.Installment),
		Rule:         NewRuleHandler(svcs.Rule),
		Content:      NewContentHandler(svcs.Content, svcs.Image),
		Notification: NewNotificationHandler(svcs.Notification),
		Report:       NewReportHandler(svcs.Report, svcs.Export),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
