package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"gorm.io/gorm"
)

// ReportService renders printable investor documents
type ReportService struct {
	investorRepo    repository.InvestorRepository
	installmentRepo repository.InstallmentRepository
}

func NewReportService(investorRepo repository.InvestorRepository, installmentRepo repository.InstallmentRepository) *ReportService {
	return &ReportService{
		investorRepo:    investorRepo,
		installmentRepo: installmentRepo,
	}
}

// GenerateInvestorStatementPDF renders the investor's profile, pricing
// summary and installment history as an A4 statement.
func (s *ReportService) GenerateInvestorStatementPDF(ctx context.Context, investorID uint) ([]byte, string, error) {
	investor, err := s.investorRepo.FindByID(ctx, investorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	installments, err := s.installmentRepo.FindByInvestor(ctx, investorID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "MediCore Specialized Hospital")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Investor Statement")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("02/01/2006 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Investor")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	writeField := func(label string, value string) {
		if value == "" {
			return
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(45, 6, label)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, value)
		pdf.Ln(6)
	}
	strVal := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	moneyVal := func(p *float64) string {
		if p == nil {
			return ""
		}
		return fmt.Sprintf("%.2f", *p)
	}

	writeField("Name", investor.Name)
	writeField("Email", strVal(investor.Email))
	writeField("Phone", strVal(investor.Phone))
	writeField("National ID", strVal(investor.NationalID))
	writeField("Nominee", strVal(investor.NomineeName))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Pricing")
	pdf.Ln(8)
	writeField("Price per HSS", moneyVal(investor.PricePerHSS))
	if investor.NumberOfHSS != nil {
		writeField("Number of HSS", fmt.Sprintf("%d", *investor.NumberOfHSS))
	}
	writeField("Total price", moneyVal(investor.TotalPrice))
	writeField("Special discount", moneyVal(investor.SpecialDiscount))
	writeField("Agreed price", moneyVal(investor.AgreedPrice))
	writeField("Booking money", moneyVal(investor.BookingMoney))
	writeField("Down payment", moneyVal(investor.DownPaymentAmount))
	writeField("Rest amount", moneyVal(investor.RestAmount))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Installments")
	pdf.Ln(8)

	if len(installments) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No installments recorded.")
		pdf.Ln(6)
	} else {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(224, 224, 224)
		pdf.CellFormat(15, 7, "#", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Amount", "1", 0, "R", true, 0, "")
		pdf.CellFormat(35, 7, "Due Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Paid Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Status", "1", 0, "C", true, 0, "")
		pdf.Ln(7)

		pdf.SetFont("Arial", "", 9)
		var pendingTotal, paidTotal float64
		for _, inst := range installments {
			paidDate := "-"
			if inst.PaidDate != nil {
				paidDate = inst.PaidDate.Format("02/01/2006")
			}
			pdf.CellFormat(15, 6, fmt.Sprintf("%d", inst.InstallmentNumber), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 6, fmt.Sprintf("%.2f", inst.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, inst.DueDate.Format("02/01/2006"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 6, paidDate, "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, inst.Status, "1", 0, "C", false, 0, "")
			pdf.Ln(6)

			switch inst.Status {
			case models.InstallmentStatusPaid:
				paidTotal += inst.Amount
			case models.InstallmentStatusPending, models.InstallmentStatusOverdue:
				pendingTotal += inst.Amount
			}
		}

		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Paid total: %.2f", paidTotal))
		pdf.Ln(6)
		pdf.Cell(0, 6, fmt.Sprintf("Outstanding total: %.2f", pendingTotal))
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("investor_statement_%d_%s.pdf", investor.ID, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
