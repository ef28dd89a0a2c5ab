package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/jobs"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/internal/services"
	"github.com/stretchr/testify/assert"
)

type stubInstallmentRepo struct {
	repository.InstallmentRepository
	findByID             func(ctx context.Context, id uint) (*models.InvestorInstallment, error)
	findByIDWithInvestor func(ctx context.Context, id uint) (*models.InvestorInstallment, error)
	create               func(ctx context.Context, installment *models.InvestorInstallment) error
	update               func(ctx context.Context, installment *models.InvestorInstallment) error
	list                 func(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error)
}

func (s *stubInstallmentRepo) FindByID(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	return s.findByID(ctx, id)
}

func (s *stubInstallmentRepo) FindByIDWithInvestor(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
	return s.findByIDWithInvestor(ctx, id)
}

func (s *stubInstallmentRepo) Create(ctx context.Context, installment *models.InvestorInstallment) error {
	return s.create(ctx, installment)
}

func (s *stubInstallmentRepo) Update(ctx context.Context, installment *models.InvestorInstallment) error {
	if s.update != nil {
		return s.update(ctx, installment)
	}
	return nil
}

func (s *stubInstallmentRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error) {
	return s.list(ctx, query)
}

type stubInvestorRepo struct {
	repository.InvestorRepository
	exists func(ctx context.Context, id uint) (bool, error)
}

func (s *stubInvestorRepo) Exists(ctx context.Context, id uint) (bool, error) {
	return s.exists(ctx, id)
}

func newInstallmentTestRouter(t *testing.T, repo *stubInstallmentRepo, investorRepo *stubInvestorRepo) (*gin.Engine, *jobs.Worker) {
	t.Helper()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	svc := services.NewInstallmentService(repo, investorRepo, nil, nil, nil, worker)
	handler := NewInstallmentHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1/investor-installments")
	group.GET("", handler.Index)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Show)
	group.POST("/:id", handler.Update)
	group.DELETE("/:id", handler.Destroy)
	return router, worker
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateInstallment_DefaultsToPending(t *testing.T) {
	var created *models.InvestorInstallment
	repo := &stubInstallmentRepo{
		create: func(ctx context.Context, installment *models.InvestorInstallment) error {
			installment.ID = 21
			created = installment
			return nil
		},
		findByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return created, nil
		},
	}
	investorRepo := &stubInvestorRepo{
		exists: func(ctx context.Context, id uint) (bool, error) { return true, nil },
	}
	router, _ := newInstallmentTestRouter(t, repo, investorRepo)

	w := postJSON(router, "/api/v1/investor-installments", gin.H{
		"investor_id":        3,
		"installment_number": 1,
		"amount":             2500,
		"due_date":           "2025-07-01",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Installment created", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
}

func TestCreateInstallment_ZeroAmountAccepted(t *testing.T) {
	var created *models.InvestorInstallment
	repo := &stubInstallmentRepo{
		create: func(ctx context.Context, installment *models.InvestorInstallment) error {
			installment.ID = 22
			created = installment
			return nil
		},
		findByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return created, nil
		},
	}
	investorRepo := &stubInvestorRepo{
		exists: func(ctx context.Context, id uint) (bool, error) { return true, nil },
	}
	router, _ := newInstallmentTestRouter(t, repo, investorRepo)

	// A waived month is a legitimate zero-amount row
	w := postJSON(router, "/api/v1/investor-installments", gin.H{
		"investor_id":        3,
		"installment_number": 6,
		"amount":             0,
		"due_date":           "2025-12-01",
		"status":             "waived",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 0.0, created.Amount)
	assert.Equal(t, models.InstallmentStatusWaived, created.Status)
}

func TestCreateInstallment_MissingFields(t *testing.T) {
	router, _ := newInstallmentTestRouter(t, &stubInstallmentRepo{}, &stubInvestorRepo{})

	w := postJSON(router, "/api/v1/investor-installments", gin.H{"amount": 2500})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])

	fields := body["errors"].(map[string]interface{})
	assert.Contains(t, fields, "investor_id")
	assert.Contains(t, fields, "due_date")
}

func TestCreateInstallment_BadDateFormat(t *testing.T) {
	router, _ := newInstallmentTestRouter(t, &stubInstallmentRepo{}, &stubInvestorRepo{})

	w := postJSON(router, "/api/v1/investor-installments", gin.H{
		"investor_id":        3,
		"installment_number": 1,
		"amount":             2500,
		"due_date":           "01/07/2025",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, fields, "due_date")
}

func TestUpdateInstallment_PaidBeforeDueRejected(t *testing.T) {
	stored := &models.InvestorInstallment{
		ID:                5,
		InvestorID:        3,
		InstallmentNumber: 4,
		Amount:            2500,
		DueDate:           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:            models.InstallmentStatusPending,
	}
	repo := &stubInstallmentRepo{
		findByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
		findByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
	}
	router, _ := newInstallmentTestRouter(t, repo, &stubInvestorRepo{})

	w := postJSON(router, "/api/v1/investor-installments/5", gin.H{
		"status":    "paid",
		"paid_date": "2025-06-20",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Validation failed", body["message"])

	fields := body["errors"].(map[string]interface{})
	messages := fields["paid_date"].([]interface{})
	assert.Equal(t, "must be on or after the due date", messages[0])
}

func TestUpdateInstallment_PaidAfterDueSucceeds(t *testing.T) {
	stored := &models.InvestorInstallment{
		ID:                5,
		InvestorID:        3,
		InstallmentNumber: 4,
		Amount:            2500,
		DueDate:           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:            models.InstallmentStatusPending,
		Investor:          models.Investor{ID: 3, Name: "Rahim Uddin"},
	}
	repo := &stubInstallmentRepo{
		findByID: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
		findByIDWithInvestor: func(ctx context.Context, id uint) (*models.InvestorInstallment, error) {
			return stored, nil
		},
	}
	router, _ := newInstallmentTestRouter(t, repo, &stubInvestorRepo{})

	w := postJSON(router, "/api/v1/investor-installments/5", gin.H{
		"status":    "paid",
		"paid_date": "2025-07-03",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "paid", data["status"])
}

func TestShowInstallment_InvalidID(t *testing.T) {
	router, _ := newInstallmentTestRouter(t, &stubInstallmentRepo{}, &stubInvestorRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/investor-installments/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id parameter", decodeBody(t, w)["message"])
}

func TestIndexInstallments_PaginationEnvelope(t *testing.T) {
	repo := &stubInstallmentRepo{
		list: func(ctx context.Context, query *repository.ListQuery) ([]models.InvestorInstallment, int64, error) {
			assert.Equal(t, 2, query.Page)
			assert.Equal(t, 10, query.PerPage)
			assert.Equal(t, "pending", query.Filters["status"])
			return []models.InvestorInstallment{
				{ID: 11, InvestorID: 3, InstallmentNumber: 1, Amount: 100, DueDate: time.Now(), Status: models.InstallmentStatusPending},
			}, 11, nil
		},
	}
	router, _ := newInstallmentTestRouter(t, repo, &stubInvestorRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/investor-installments?page=2&status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(10), pagination["per_page"])
	assert.Equal(t, float64(11), pagination["total_count"])
	assert.Equal(t, float64(2), pagination["total_page"])
	assert.Equal(t, float64(2), pagination["current_page"])
	assert.Nil(t, pagination["next_page"])
	assert.Equal(t, float64(1), pagination["previous_page"])
}
