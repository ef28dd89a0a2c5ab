package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/services"
)

type RuleHandler struct {
	ruleService *services.RuleService
}

func NewRuleHandler(ruleService *services.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

type CreateRuleRequest struct {
	Name                       string   `json:"name" binding:"required"`
	PaymentType                string   `json:"payment_type" binding:"required"`
	RegularPrice               float64  `json:"regular_price" binding:"required,gt=0"`
	SpecialDiscount            float64  `json:"special_discount"`
	OfferPrice                 float64  `json:"offer_price"`
	DownPaymentAmount          *float64 `json:"down_payment_amount"`
	EMIAmount                  *float64 `json:"emi_amount"`
	DurationMonths             *int     `json:"duration_months"`
	WaiverFrequencyMonths      *int     `json:"waiver_frequency_months"`
	NumberOfWaivers            *int     `json:"number_of_waivers"`
	WaiverAmountPerInstallment *float64 `json:"waiver_amount_per_installment"`
	TotalWaiverAmount          *float64 `json:"total_waiver_amount"`
	IsLimitedTimeOffer         bool     `json:"is_limited_time_offer"`
}

type UpdateRuleRequest struct {
	Name                       *string  `json:"name"`
	PaymentType                *string  `json:"payment_type"`
	RegularPrice               *float64 `json:"regular_price"`
	SpecialDiscount            *float64 `json:"special_discount"`
	OfferPrice                 *float64 `json:"offer_price"`
	DownPaymentAmount          *float64 `json:"down_payment_amount"`
	EMIAmount                  *float64 `json:"emi_amount"`
	DurationMonths             *int     `json:"duration_months"`
	WaiverFrequencyMonths      *int     `json:"waiver_frequency_months"`
	NumberOfWaivers            *int     `json:"number_of_waivers"`
	WaiverAmountPerInstallment *float64 `json:"waiver_amount_per_installment"`
	TotalWaiverAmount          *float64 `json:"total_waiver_amount"`
	IsLimitedTimeOffer         *bool    `json:"is_limited_time_offer"`
}

// @Summary List Installment Rules
// @Description Get a paginated list of payment plan templates
// @Tags Rules
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param status query string false "Filter by status"
// @Param payment_type query string false "Filter by payment type"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules [get]
func (h *RuleHandler) Index(c *gin.Context) {
	query := buildListQuery(c)

	rules, total, err := h.ruleService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(rules))
	for i := range rules {
		responses = append(responses, rules[i].ToResponse())
	}

	respondList(c, "Rules retrieved", responses, NewPagination(query.Page, query.PerPage, len(responses), total))
}

// @Summary Get Installment Rule
// @Tags Rules
// @Produce json
// @Param id path int true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules/{id} [get]
func (h *RuleHandler) Show(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Rule retrieved", rule.ToResponse())
}

// @Summary Create Installment Rule
// @Description Create a payment plan template; conditional fields depend on payment_type
// @Tags Rules
// @Accept json
// @Produce json
// @Param request body CreateRuleRequest true "Rule"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules [post]
func (h *RuleHandler) Create(c *gin.Context) {
	var req CreateRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule := &models.InstallmentRule{
		Name:                       req.Name,
		PaymentType:                req.PaymentType,
		RegularPrice:               req.RegularPrice,
		SpecialDiscount:            req.SpecialDiscount,
		OfferPrice:                 req.OfferPrice,
		DownPaymentAmount:          req.DownPaymentAmount,
		EMIAmount:                  req.EMIAmount,
		DurationMonths:             req.DurationMonths,
		WaiverFrequencyMonths:      req.WaiverFrequencyMonths,
		NumberOfWaivers:            req.NumberOfWaivers,
		WaiverAmountPerInstallment: req.WaiverAmountPerInstallment,
		TotalWaiverAmount:          req.TotalWaiverAmount,
		IsLimitedTimeOffer:         req.IsLimitedTimeOffer,
	}

	if err := h.ruleService.Create(c.Request.Context(), rule, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Rule created", rule.ToResponse())
}

// @Summary Update Installment Rule
// @Description Patch rule fields; only supplied fields are validated and merged
// @Tags Rules
// @Accept json
// @Produce json
// @Param id path int true "Rule ID"
// @Param request body UpdateRuleRequest true "Partial patch"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules/{id} [put]
func (h *RuleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &services.UpdateRuleInput{
		Name:                       req.Name,
		PaymentType:                req.PaymentType,
		RegularPrice:               req.RegularPrice,
		SpecialDiscount:            req.SpecialDiscount,
		OfferPrice:                 req.OfferPrice,
		DownPaymentAmount:          req.DownPaymentAmount,
		EMIAmount:                  req.EMIAmount,
		DurationMonths:             req.DurationMonths,
		WaiverFrequencyMonths:      req.WaiverFrequencyMonths,
		NumberOfWaivers:            req.NumberOfWaivers,
		WaiverAmountPerInstallment: req.WaiverAmountPerInstallment,
		TotalWaiverAmount:          req.TotalWaiverAmount,
		IsLimitedTimeOffer:         req.IsLimitedTimeOffer,
	}

	rule, err := h.ruleService.Update(c.Request.Context(), id, input, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Rule updated", rule.ToResponse())
}

// @Summary Delete Installment Rule
// @Tags Rules
// @Produce json
// @Param id path int true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules/{id} [delete]
func (h *RuleHandler) Destroy(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.ruleService.SoftDelete(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Rule deleted", nil)
}

// @Summary Toggle Rule Status
// @Description Flip the rule between active and inactive
// @Tags Rules
// @Produce json
// @Param id path int true "Rule ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules/{id}/set-active [post]
func (h *RuleHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.SetActive(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Rule status updated", rule.ToResponse())
}

// @Summary Preview Schedule
// @Description Compute the installment schedule a rule implies from a start date; nothing is persisted
// @Tags Rules
// @Produce json
// @Param id path int true "Rule ID"
// @Param start_date query string false "Schedule start date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /installment-rules/{id}/schedule-preview [get]
func (h *RuleHandler) SchedulePreview(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	startDate := time.Now()
	if s := c.Query("start_date"); s != "" {
		parsed, err := parseDateString(s)
		if err != nil {
			respondValidation(c, map[string][]string{"start_date": {"must be a date in YYYY-MM-DD format"}})
			return
		}
		startDate = *parsed
	}

	rule, schedule, err := h.ruleService.SchedulePreview(c.Request.Context(), id, startDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Schedule preview computed", gin.H{
		"rule":     rule.ToResponse(),
		"schedule": schedule,
	})
}
