package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/medicore/medicore-api/internal/config"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/pkg/logger"
	"github.com/resend/resend-go/v2"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// EmailService sends transactional email through Resend
type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

// SendPaymentReceipt emails the investor when one of their installments
// is recorded as paid. Investors without an email address are skipped.
func (s *EmailService) SendPaymentReceipt(ctx context.Context, installment *models.InvestorInstallment) error {
	if s == nil {
		return nil
	}
	if installment.Investor.Email == nil || *installment.Investor.Email == "" {
		logger.Debug("skipping payment receipt, investor has no email", "investor_id", installment.InvestorID)
		return nil
	}

	paidDate := ""
	if installment.PaidDate != nil {
		paidDate = installment.PaidDate.Format("02/01/2006")
	}

	data := struct {
		Name              string
		InstallmentNumber int
		Amount            string
		DueDate           string
		PaidDate          string
		PaymentMethod     string
		Reference         string
	}{
		Name:              installment.Investor.Name,
		InstallmentNumber: installment.InstallmentNumber,
		Amount:            fmt.Sprintf("%.2f", installment.Amount),
		DueDate:           installment.DueDate.Format("02/01/2006"),
		PaidDate:          paidDate,
		PaymentMethod:     derefString(installment.PaymentMethod),
		Reference:         derefString(installment.TransactionReference),
	}

	body, err := s.renderTemplate("payment_receipt.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{*installment.Investor.Email},
		Subject: fmt.Sprintf("Payment received for installment #%d", installment.InstallmentNumber),
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", *installment.Investor.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Payment receipt #%d", *installment.Investor.Email, installment.InstallmentNumber))
	return nil
}

// SendPastDueReminder emails the investor about a pending installment
// whose due date has passed. Investors without an email address are skipped.
func (s *EmailService) SendPastDueReminder(ctx context.Context, installment *models.InvestorInstallment) error {
	if s == nil {
		return nil
	}
	if installment.Investor.Email == nil || *installment.Investor.Email == "" {
		logger.Debug("skipping past due reminder, investor has no email", "investor_id", installment.InvestorID)
		return nil
	}

	data := struct {
		Name              string
		InstallmentNumber int
		Amount            string
		DueDate           string
		DaysPastDue       int
	}{
		Name:              installment.Investor.Name,
		InstallmentNumber: installment.InstallmentNumber,
		Amount:            fmt.Sprintf("%.2f", installment.Amount),
		DueDate:           installment.DueDate.Format("02/01/2006"),
		DaysPastDue:       installment.PastDueDays(),
	}

	body, err := s.renderTemplate("past_due_reminder.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{*installment.Investor.Email},
		Subject: fmt.Sprintf("Installment #%d is past due", installment.InstallmentNumber),
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", *installment.Investor.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Past due reminder #%d", *installment.Investor.Email, installment.InstallmentNumber))
	return nil
}

// SendAccountCreated welcomes a newly created admin user
func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	if s == nil {
		return nil
	}
	data := struct {
		Name string
		Role string
	}{
		Name: user.FullName,
		Role: user.Role,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{user.Email},
		Subject: "Your MediCore account is ready",
		Html:    body,
	}
	_, err = s.resendClient.Emails.Send(params)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", user.Email, err))
		return err
	}

	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: Account created", user.Email))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
