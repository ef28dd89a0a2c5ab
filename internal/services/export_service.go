package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService produces downloadable installment reports
type ExportService struct {
	installmentRepo repository.InstallmentRepository
}

func NewExportService(installmentRepo repository.InstallmentRepository) *ExportService {
	return &ExportService{installmentRepo: installmentRepo}
}

// fetchAll pages through the repository so exports are not capped at one page
func (s *ExportService) fetchAll(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, error) {
	const pageSize = 500

	var all []models.InvestorInstallment
	page := 1
	for {
		q := &repository.ListQuery{
			Page:    page,
			PerPage: pageSize,
			SortBy:  "due_date",
			SortDir: "asc",
			Filters: query.Filters,
		}
		rows, total, err := s.installmentRepo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if int64(len(all)) >= total || len(rows) == 0 {
			return all, nil
		}
		page++
	}
}

// ExportInstallmentsCSV writes the filtered installment list as CSV
func (s *ExportService) ExportInstallmentsCSV(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	installments, err := s.fetchAll(ctx, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Installment Report", time.Now().Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Investor", "Installment #", "Amount", "Due Date", "Paid Date", "Status", "Payment Method", "Reference"})

	for _, inst := range installments {
		paidDate := ""
		if inst.PaidDate != nil {
			paidDate = inst.PaidDate.Format("2006-01-02")
		}
		_ = writer.Write([]string{
			inst.Investor.Name,
			fmt.Sprintf("%d", inst.InstallmentNumber),
			fmt.Sprintf("%.2f", inst.Amount),
			inst.DueDate.Format("2006-01-02"),
			paidDate,
			inst.Status,
			derefString(inst.PaymentMethod),
			derefString(inst.TransactionReference),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("installments_%s.csv", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

// ExportInstallmentsXLSX writes the filtered installment list plus a
// status summary as an Excel workbook.
func (s *ExportService) ExportInstallmentsXLSX(ctx context.Context, query *repository.ListQuery) ([]byte, string, error) {
	installments, err := s.fetchAll(ctx, query)
	if err != nil {
		return nil, "", err
	}
	stats, err := s.installmentRepo.GetStats(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Installments"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", "Installment Report")
	_ = f.SetCellValue(sheet, "B1", time.Now().Format("2006-01-02 15:04"))
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	headers := []string{"Investor", "Installment #", "Amount", "Due Date", "Paid Date", "Status", "Payment Method", "Reference"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, inst := range installments {
		paidDate := ""
		if inst.PaidDate != nil {
			paidDate = inst.PaidDate.Format("2006-01-02")
		}
		values := []interface{}{
			inst.Investor.Name,
			inst.InstallmentNumber,
			inst.Amount,
			inst.DueDate.Format("2006-01-02"),
			paidDate,
			inst.Status,
			derefString(inst.PaymentMethod),
			derefString(inst.TransactionReference),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+4)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	summarySheet := "Summary"
	_, err = f.NewSheet(summarySheet)
	if err != nil {
		return nil, "", err
	}
	_ = f.SetCellValue(summarySheet, "A1", "Status Summary")
	_ = f.SetCellStyle(summarySheet, "A1", "A1", headerStyle)
	summary := [][]interface{}{
		{"Total installments", stats.Total},
		{"Pending", stats.Pending},
		{"Paid", stats.Paid},
		{"Overdue", stats.Overdue},
		{"Waived", stats.Waived},
		{"Pending amount", stats.PendingAmount},
		{"Paid amount", stats.PaidAmount},
	}
	for i, row := range summary {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+3), row[0])
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+3), row[1])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("installments_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
