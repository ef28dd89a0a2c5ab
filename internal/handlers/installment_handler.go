package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/services"
)

type InstallmentHandler struct {
	installmentService *services.InstallmentService
}

func NewInstallmentHandler(installmentService *services.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

type CreateInstallmentRequest struct {
	InvestorID           uint     `json:"investor_id" binding:"required"`
	InstallmentNumber    int      `json:"installment_number" binding:"required"`
	Amount               *float64 `json:"amount" binding:"required"`
	DueDate              string   `json:"due_date" binding:"required"`
	PaidDate             *string  `json:"paid_date"`
	Status               string   `json:"status"`
	PaymentMethod        *string  `json:"payment_method"`
	TransactionReference *string  `json:"transaction_reference"`
	Notes                *string  `json:"notes"`
}

type UpdateInstallmentRequest struct {
	InstallmentNumber    *int     `json:"installment_number"`
	Amount               *float64 `json:"amount"`
	DueDate              *string  `json:"due_date"`
	PaidDate             *string  `json:"paid_date"`
	Status               *string  `json:"status"`
	PaymentMethod        *string  `json:"payment_method"`
	TransactionReference *string  `json:"transaction_reference"`
	Notes                *string  `json:"notes"`
}

// @Summary List Installments
// @Description Get a paginated list of installments with investor summaries
// @Tags Installments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param status query string false "Filter by status"
// @Param investor_id query int false "Filter by investor"
// @Param due_from query string false "Due date lower bound (YYYY-MM-DD)"
// @Param due_to query string false "Due date upper bound (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investor-installments [get]
func (h *InstallmentHandler) Index(c *gin.Context) {
	query := buildListQuery(c)

	installments, total, err := h.installmentService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(installments))
	for i := range installments {
		responses = append(responses, installments[i].ToResponse())
	}

	respondList(c, "Installments retrieved", responses, NewPagination(query.Page, query.PerPage, len(responses), total))
}

// @Summary Installment Stats
// @Description Status counts and pending/paid amount totals
// @Tags Installments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investor-installments/stats [get]
func (h *InstallmentHandler) Stats(c *gin.Context) {
	stats, err := h.installmentService.GetStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Installment stats retrieved", stats)
}

// @Summary Get Installment
// @Description Get an installment with its investor summary
// @Tags Installments
// @Produce json
// @Param id path int true "Installment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investor-installments/{id} [get]
func (h *InstallmentHandler) Show(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	installment, err := h.installmentService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Installment retrieved", installment.ToResponse())
}

// @Summary Create Installment
// @Description Create an installment; status defaults to pending
// @Tags Installments
// @Accept json
// @Produce json
// @Param request body CreateInstallmentRequest true "Installment"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investor-installments [post]
func (h *InstallmentHandler) Create(c *gin.Context) {
	var req CreateInstallmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ve := services.NewValidationError()

	dueDate, err := parseDateString(req.DueDate)
	if err != nil {
		ve.Add("due_date", "must be a date in YYYY-MM-DD format")
	}

	input := &services.CreateInstallmentInput{
		InvestorID:           req.InvestorID,
		InstallmentNumber:    req.InstallmentNumber,
		Amount:               *req.Amount,
		Status:               req.Status,
		PaymentMethod:        req.PaymentMethod,
		TransactionReference: req.TransactionReference,
		Notes:                req.Notes,
	}
	if dueDate != nil {
		input.DueDate = *dueDate
	}
	if req.PaidDate != nil && *req.PaidDate != "" {
		paidDate, err := parseDateString(*req.PaidDate)
		if err != nil {
			ve.Add("paid_date", "must be a date in YYYY-MM-DD format")
		} else {
			input.PaidDate = paidDate
		}
	}

	if ve.HasErrors() {
		respondValidation(c, ve.Fields)
		return
	}

	installment, err := h.installmentService.Create(c.Request.Context(), input, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Installment created", installment.ToResponse())
}

// @Summary Update Installment
// @Description Patch installment fields; recording a paid status requires paid_date on or after the effective due_date
// @Tags Installments
// @Accept json
// @Produce json
// @Param id path int true "Installment ID"
// @Param request body UpdateInstallmentRequest true "Partial patch"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investor-installments/{id} [post]
func (h *InstallmentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateInstallmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ve := services.NewValidationError()

	input := &services.UpdateInstallmentInput{
		InstallmentNumber:    req.InstallmentNumber,
		Amount:               req.Amount,
		Status:               req.Status,
		PaymentMethod:        req.PaymentMethod,
		TransactionReference: req.TransactionReference,
		Notes:                req.Notes,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := parseDateString(*req.DueDate)
		if err != nil {
			ve.Add("due_date", "must be a date in YYYY-MM-DD format")
		} else {
			input.DueDate = dueDate
		}
	}
	if req.PaidDate != nil && *req.PaidDate != "" {
		paidDate, err := parseDateString(*req.PaidDate)
		if err != nil {
			ve.Add("paid_date", "must be a date in YYYY-MM-DD format")
		} else {
			input.PaidDate = paidDate
		}
	}

	if ve.HasErrors() {
		respondValidation(c, ve.Fields)
		return
	}

	installment, err := h.installmentService.Update(c.Request.Context(), id, input, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Installment updated", installment.ToResponse())
}

// @Summary Delete Installment
// @Description Soft-delete an installment
// @Tags Installments
// @Produce json
// @Param id path int true "Installment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investor-installments/{id} [delete]
func (h *InstallmentHandler) Destroy(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.installmentService.SoftDelete(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Installment deleted", nil)
}
