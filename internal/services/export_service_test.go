package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestExportInstallmentsCSV(t *testing.T) {
	method := "bank_transfer"
	paid := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	rows := []models.InvestorInstallment{
		{
			ID:                1,
			InstallmentNumber: 1,
			Amount:            2500,
			DueDate:           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			PaidDate:          &paid,
			Status:            models.InstallmentStatusPaid,
			PaymentMethod:     &method,
			Investor:          models.Investor{ID: 3, Name: "Rahim Uddin"},
		},
		{
			ID:                2,
			InstallmentNumber: 2,
			Amount:            2500,
			DueDate:           time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			Status:            models.InstallmentStatusPending,
			Investor:          models.Investor{ID: 3, Name: "Rahim Uddin"},
		},
	}

	listCalls := 0
	repo := &mockInstallmentRepo{
		mockList: func(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error) {
			listCalls++
			assert.Equal(t, "due_date", query.SortBy)
			return rows, int64(len(rows)), nil
		},
	}

	svc := NewExportService(repo)
	data, filename, err := svc.ExportInstallmentsCSV(context.Background(), repository.NewListQuery())

	assert.NoError(t, err)
	assert.Equal(t, 1, listCalls)
	assert.True(t, strings.HasPrefix(filename, "installments_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	content := string(data)
	assert.Contains(t, content, "Investor,Installment #,Amount,Due Date,Paid Date,Status,Payment Method,Reference")
	assert.Contains(t, content, "Rahim Uddin,1,2500.00,2025-07-01,2025-07-02,paid,bank_transfer,")
	assert.Contains(t, content, "Rahim Uddin,2,2500.00,2025-08-01,,pending,,")
}
