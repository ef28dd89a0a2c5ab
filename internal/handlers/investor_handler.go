package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/internal/services"
	"github.com/medicore/medicore-api/internal/storage"
)

type InvestorHandler struct {
	investorService *services.InvestorService
	storage         *storage.LocalStorage
}

func NewInvestorHandler(investorService *services.InvestorService, store *storage.LocalStorage) *InvestorHandler {
	return &InvestorHandler{investorService: investorService, storage: store}
}

// InvestorRequest carries every writable investor field. It binds from
// JSON bodies and multipart forms alike; dates arrive as YYYY-MM-DD
// strings, images either as file parts or as URL strings.
type InvestorRequest struct {
	Name          *string `json:"name" form:"name"`
	Email         *string `json:"email" form:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" form:"phone"`
	NationalID    *string `json:"national_id" form:"national_id"`
	Occupation    *string `json:"occupation" form:"occupation"`
	FatherName    *string `json:"father_name" form:"father_name"`
	MotherName    *string `json:"mother_name" form:"mother_name"`
	SpouseName    *string `json:"spouse_name" form:"spouse_name"`
	DateOfBirth   *string `json:"date_of_birth" form:"date_of_birth"`
	PresentAddr   *string `json:"present_address" form:"present_address"`
	PermanentAddr *string `json:"permanent_address" form:"permanent_address"`

	NomineeName     *string `json:"nominee_name" form:"nominee_name"`
	NomineeRelation *string `json:"nominee_relation" form:"nominee_relation"`
	NomineePhone    *string `json:"nominee_phone" form:"nominee_phone"`

	PricePerHSS       *float64 `json:"price_per_hss" form:"price_per_hss"`
	NumberOfHSS       *int     `json:"number_of_hss" form:"number_of_hss"`
	TotalPrice        *float64 `json:"total_price" form:"total_price"`
	SpecialDiscount   *float64 `json:"special_discount" form:"special_discount"`
	AgreedPrice       *float64 `json:"agreed_price" form:"agreed_price"`
	BookingMoney      *float64 `json:"booking_money" form:"booking_money"`
	BookingMoneyDate  *string  `json:"booking_money_date" form:"booking_money_date"`
	DownPaymentAmount *float64 `json:"down_payment_amount" form:"down_payment_amount"`
	DownPaymentDate   *string  `json:"down_payment_date" form:"down_payment_date"`
	RestAmount        *float64 `json:"rest_amount" form:"rest_amount"`

	ApplicantImage *string `json:"applicant_image" form:"applicant_image"`
	NomineeImage   *string `json:"nominee_image" form:"nominee_image"`

	Notes *string `json:"notes" form:"notes"`
}

func (h *InvestorHandler) bindRequest(c *gin.Context) (*InvestorRequest, bool) {
	var req InvestorRequest
	var err error
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		err = c.ShouldBind(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		respondBindingError(c, err)
		return nil, false
	}
	return &req, true
}

func parseDateString(s string) (*time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolveImage resolves one image field from the request: an uploaded
// file part and a URL string are mutually exclusive. Returns the stored
// path or the validated URL, or nil when the field was absent.
func (h *InvestorHandler) resolveImage(c *gin.Context, field string, urlValue *string, ve *services.ValidationError) *string {
	file, header, err := c.Request.FormFile(field)
	hasFile := err == nil
	hasURL := urlValue != nil && *urlValue != ""

	if hasFile {
		defer file.Close()

		if hasURL {
			ve.Add(field, "provide either a file upload or a URL, not both")
			return nil
		}
		if header.Size > storage.MaxFileSize() {
			ve.Add(field, fmt.Sprintf("file exceeds the %dMB limit", storage.MaxFileSize()/(1024*1024)))
			return nil
		}
		if !storage.IsValidContentType(header.Header.Get("Content-Type")) {
			ve.Add(field, "file type must be JPEG, PNG, GIF, WebP or SVG")
			return nil
		}

		path, err := h.storage.Upload(file, header, "investors")
		if err != nil {
			ve.Add(field, "failed to store uploaded file")
			return nil
		}
		webPath := "/uploads/" + path
		return &webPath
	}

	if hasURL {
		if len(*urlValue) > 500 {
			ve.Add(field, "URL must be at most 500 characters")
			return nil
		}
		return urlValue
	}
	return nil
}

// applyTo copies supplied fields onto the investor record. Monetary
// values land verbatim, nothing is recomputed.
func (req *InvestorRequest) applyTo(investor *models.Investor, ve *services.ValidationError) {
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		investor.Name = *req.Name
	}
	if req.Email != nil {
		investor.Email = req.Email
	}
	if req.Phone != nil {
		investor.Phone = req.Phone
	}
	if req.NationalID != nil {
		investor.NationalID = req.NationalID
	}
	if req.Occupation != nil {
		investor.Occupation = req.Occupation
	}
	if req.FatherName != nil {
		investor.FatherName = req.FatherName
	}
	if req.MotherName != nil {
		investor.MotherName = req.MotherName
	}
	if req.SpouseName != nil {
		investor.SpouseName = req.SpouseName
	}
	if req.PresentAddr != nil {
		investor.PresentAddr = req.PresentAddr
	}
	if req.PermanentAddr != nil {
		investor.PermanentAddr = req.PermanentAddr
	}
	if req.NomineeName != nil {
		investor.NomineeName = req.NomineeName
	}
	if req.NomineeRelation != nil {
		investor.NomineeRelation = req.NomineeRelation
	}
	if req.NomineePhone != nil {
		investor.NomineePhone = req.NomineePhone
	}
	if req.PricePerHSS != nil {
		investor.PricePerHSS = req.PricePerHSS
	}
	if req.NumberOfHSS != nil {
		investor.NumberOfHSS = req.NumberOfHSS
	}
	if req.TotalPrice != nil {
		investor.TotalPrice = req.TotalPrice
	}
	if req.SpecialDiscount != nil {
		investor.SpecialDiscount = req.SpecialDiscount
	}
	if req.AgreedPrice != nil {
		investor.AgreedPrice = req.AgreedPrice
	}
	if req.BookingMoney != nil {
		investor.BookingMoney = req.BookingMoney
	}
	if req.DownPaymentAmount != nil {
		investor.DownPaymentAmount = req.DownPaymentAmount
	}
	if req.RestAmount != nil {
		investor.RestAmount = req.RestAmount
	}
	if req.Notes != nil {
		investor.Notes = req.Notes
	}

	applyDate(req.DateOfBirth, &investor.DateOfBirth, "date_of_birth", ve)
	applyDate(req.BookingMoneyDate, &investor.BookingMoneyDate, "booking_money_date", ve)
	applyDate(req.DownPaymentDate, &investor.DownPaymentDate, "down_payment_date", ve)
}

func applyDate(src *string, dst **time.Time, field string, ve *services.ValidationError) {
	if src == nil || *src == "" {
		return
	}
	t, err := parseDateString(*src)
	if err != nil {
		ve.Add(field, "must be a date in YYYY-MM-DD format")
		return
	}
	*dst = t
}

// @Summary List Investors
// @Description Get a paginated list of investors
// @Tags Investors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param search query string false "Search name, email, phone or national id"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investors [get]
func (h *InvestorHandler) Index(c *gin.Context) {
	query := buildListQuery(c)

	investors, total, err := h.investorService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(investors))
	for i := range investors {
		responses = append(responses, investors[i].ToResponse())
	}

	respondList(c, "Investors retrieved", responses, NewPagination(query.Page, query.PerPage, len(responses), total))
}

// @Summary Get Investor
// @Description Get an investor with their installments
// @Tags Investors
// @Produce json
// @Param id path int true "Investor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investors/{id} [get]
func (h *InvestorHandler) Show(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	investor, err := h.investorService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Investor retrieved", investor.ToResponse())
}

// @Summary Create Investor
// @Description Register a new investor (JSON or multipart form)
// @Tags Investors
// @Accept json
// @Accept mpfd
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /investors [post]
func (h *InvestorHandler) Create(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	ve := services.NewValidationError()
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		ve.Add("name", "is required")
	}

	var investor models.Investor
	req.applyTo(&investor, ve)
	investor.ApplicantImage = h.resolveImage(c, "applicant_image", req.ApplicantImage, ve)
	investor.NomineeImage = h.resolveImage(c, "nominee_image", req.NomineeImage, ve)

	if ve.HasErrors() {
		respondValidation(c, ve.Fields)
		return
	}

	created, err := h.investorService.Create(c.Request.Context(), &investor, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Investor created", created.ToResponse())
}

// @Summary Update Investor
// @Description Update investor fields (JSON or multipart form)
// @Tags Investors
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "Investor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investors/{id} [put]
func (h *InvestorHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	investor, err := h.investorService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	ve := services.NewValidationError()
	req.applyTo(investor, ve)
	if img := h.resolveImage(c, "applicant_image", req.ApplicantImage, ve); img != nil {
		investor.ApplicantImage = img
	}
	if img := h.resolveImage(c, "nominee_image", req.NomineeImage, ve); img != nil {
		investor.NomineeImage = img
	}

	if ve.HasErrors() {
		respondValidation(c, ve.Fields)
		return
	}

	updated, err := h.investorService.Update(c.Request.Context(), investor, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Investor updated", updated.ToResponse())
}

// @Summary Delete Investor
// @Description Soft-delete an investor; their installments keep their status
// @Tags Investors
// @Produce json
// @Param id path int true "Investor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /investors/{id} [delete]
func (h *InvestorHandler) Destroy(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.investorService.SoftDelete(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Investor deleted", nil)
}

// parseIDParam reads the :id path segment, rejecting non-numeric values
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id parameter")
		return 0, false
	}
	return uint(id), true
}

// buildListQuery assembles the shared list query from request params
func buildListQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 && perPage <= 100 {
		query.PerPage = perPage
	}
	query.Search = c.Query("search")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	for _, f := range []string{"status", "payment_type", "investor_id", "due_from", "due_to", "department_id", "published", "unread"} {
		if v := c.Query(f); v != "" {
			query.Filters[f] = v
		}
	}
	return query
}
