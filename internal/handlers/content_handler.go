package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/services"
)

type ContentHandler struct {
	contentService *services.ContentService
	imageService   *services.ImageService
}

func NewContentHandler(contentService *services.ContentService, imageService *services.ImageService) *ContentHandler {
	return &ContentHandler{contentService: contentService, imageService: imageService}
}

// --- Departments ---

type DepartmentRequest struct {
	Name        *string `json:"name" form:"name"`
	Slug        *string `json:"slug" form:"slug"`
	Description *string `json:"description" form:"description"`
	IconImage   *string `json:"icon_image" form:"icon_image"`
	SortOrder   *int    `json:"sort_order" form:"sort_order"`
	Status      *string `json:"status" form:"status"`
}

// @Summary List Departments
// @Tags Content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /departments [get]
func (h *ContentHandler) ListDepartments(c *gin.Context) {
	query := buildListQuery(c)

	departments, total, err := h.contentService.ListDepartments(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "Departments retrieved", departments, NewPagination(query.Page, query.PerPage, len(departments), total))
}

// @Summary Get Department
// @Tags Content
// @Produce json
// @Param id path string true "Department ID or slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /departments/{id} [get]
func (h *ContentHandler) ShowDepartment(c *gin.Context) {
	param := c.Param("id")
	// Numeric params look up by id, anything else by slug
	if id, err := strconv.ParseUint(param, 10, 32); err == nil {
		department, err := h.contentService.GetDepartment(c.Request.Context(), uint(id))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Department retrieved", department)
		return
	}

	department, err := h.contentService.GetDepartmentBySlug(c.Request.Context(), param)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Department retrieved", department)
}

// @Summary Create Department
// @Tags Content
// @Accept json
// @Produce json
// @Param request body DepartmentRequest true "Department"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /departments [post]
func (h *ContentHandler) CreateDepartment(c *gin.Context) {
	var req DepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		respondValidation(c, map[string][]string{"name": {"is required"}})
		return
	}

	department := &models.Department{
		Name:        *req.Name,
		Description: req.Description,
		IconImage:   req.IconImage,
	}
	if req.Slug != nil {
		department.Slug = *req.Slug
	}
	if req.SortOrder != nil {
		department.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		department.Status = *req.Status
	}

	if err := h.contentService.CreateDepartment(c.Request.Context(), department, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Department created", department)
}

// @Summary Update Department
// @Tags Content
// @Accept json
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /departments/{id} [put]
func (h *ContentHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	department, err := h.contentService.GetDepartment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req DepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		department.Name = *req.Name
	}
	if req.Slug != nil {
		department.Slug = *req.Slug
	}
	if req.Description != nil {
		department.Description = req.Description
	}
	if req.IconImage != nil {
		department.IconImage = req.IconImage
	}
	if req.SortOrder != nil {
		department.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		department.Status = *req.Status
	}

	if err := h.contentService.UpdateDepartment(c.Request.Context(), department, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Department updated", department)
}

// @Summary Delete Department
// @Tags Content
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /departments/{id} [delete]
func (h *ContentHandler) DestroyDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteDepartment(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Department deleted", nil)
}

// --- Doctors ---

type DoctorRequest struct {
	DepartmentID   *uint   `json:"department_id" form:"department_id"`
	Name           *string `json:"name" form:"name"`
	Designation    *string `json:"designation" form:"designation"`
	Qualifications *string `json:"qualifications" form:"qualifications"`
	Bio            *string `json:"bio" form:"bio"`
	ChamberHours   *string `json:"chamber_hours" form:"chamber_hours"`
	Phone          *string `json:"phone" form:"phone"`
	Email          *string `json:"email" form:"email" binding:"omitempty,email"`
	SortOrder      *int    `json:"sort_order" form:"sort_order"`
	Status         *string `json:"status" form:"status"`
}

func (h *ContentHandler) bindDoctorRequest(c *gin.Context) (*DoctorRequest, bool) {
	var req DoctorRequest
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

// attachDoctorPhoto processes an optional "photo" file part into the
// doctor's photo and thumbnail paths.
func (h *ContentHandler) attachDoctorPhoto(c *gin.Context, doctor *models.Doctor) bool {
	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		return true
	}
	defer file.Close()

	photo, thumb, err := h.imageService.ProcessAndSavePhoto(file, header)
	if err != nil {
		respondValidation(c, map[string][]string{"photo": {err.Error()}})
		return false
	}
	doctor.Photo = &photo
	doctor.PhotoThumb = &thumb
	return true
}

// @Summary List Doctors
// @Tags Content
// @Produce json
// @Param department_id query int false "Filter by department"
// @Success 200 {object} map[string]interface{}
// @Router /doctors [get]
func (h *ContentHandler) ListDoctors(c *gin.Context) {
	query := buildListQuery(c)

	doctors, total, err := h.contentService.ListDoctors(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "Doctors retrieved", doctors, NewPagination(query.Page, query.PerPage, len(doctors), total))
}

// @Summary Get Doctor
// @Tags Content
// @Produce json
// @Param id path int true "Doctor ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /doctors/{id} [get]
func (h *ContentHandler) ShowDoctor(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	doctor, err := h.contentService.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Doctor retrieved", doctor)
}

// @Summary Create Doctor
// @Tags Content
// @Accept json
// @Accept mpfd
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /doctors [post]
func (h *ContentHandler) CreateDoctor(c *gin.Context) {
	req, ok := h.bindDoctorRequest(c)
	if !ok {
		return
	}

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		respondValidation(c, map[string][]string{"name": {"is required"}})
		return
	}

	doctor := &models.Doctor{
		DepartmentID:   req.DepartmentID,
		Name:           *req.Name,
		Designation:    req.Designation,
		Qualifications: req.Qualifications,
		Bio:            req.Bio,
		ChamberHours:   req.ChamberHours,
		Phone:          req.Phone,
		Email:          req.Email,
	}
	if req.SortOrder != nil {
		doctor.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		doctor.Status = *req.Status
	}

	if !h.attachDoctorPhoto(c, doctor) {
		return
	}

	if err := h.contentService.CreateDoctor(c.Request.Context(), doctor, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Doctor created", doctor)
}

// @Summary Update Doctor
// @Tags Content
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "Doctor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /doctors/{id} [put]
func (h *ContentHandler) UpdateDoctor(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	doctor, err := h.contentService.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	req, ok := h.bindDoctorRequest(c)
	if !ok {
		return
	}

	if req.DepartmentID != nil {
		doctor.DepartmentID = req.DepartmentID
	}
	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Designation != nil {
		doctor.Designation = req.Designation
	}
	if req.Qualifications != nil {
		doctor.Qualifications = req.Qualifications
	}
	if req.Bio != nil {
		doctor.Bio = req.Bio
	}
	if req.ChamberHours != nil {
		doctor.ChamberHours = req.ChamberHours
	}
	if req.Phone != nil {
		doctor.Phone = req.Phone
	}
	if req.Email != nil {
		doctor.Email = req.Email
	}
	if req.SortOrder != nil {
		doctor.SortOrder = *req.SortOrder
	}
	if req.Status != nil {
		doctor.Status = *req.Status
	}

	if !h.attachDoctorPhoto(c, doctor) {
		return
	}

	if err := h.contentService.UpdateDoctor(c.Request.Context(), doctor, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Doctor updated", doctor)
}

// @Summary Delete Doctor
// @Tags Content
// @Produce json
// @Param id path int true "Doctor ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /doctors/{id} [delete]
func (h *ContentHandler) DestroyDoctor(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteDoctor(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Doctor deleted", nil)
}

// --- Blog articles ---

type BlogRequest struct {
	Title       *string `json:"title" form:"title"`
	Slug        *string `json:"slug" form:"slug"`
	Excerpt     *string `json:"excerpt" form:"excerpt"`
	Body        *string `json:"body" form:"body"`
	CoverImage  *string `json:"cover_image" form:"cover_image"`
	PublishedAt *string `json:"published_at" form:"published_at"`
	Status      *string `json:"status" form:"status"`
}

// @Summary List Blog Articles
// @Tags Content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /blogs [get]
func (h *ContentHandler) ListBlogs(c *gin.Context) {
	query := buildListQuery(c)

	blogs, total, err := h.contentService.ListBlogs(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondList(c, "Articles retrieved", blogs, NewPagination(query.Page, query.PerPage, len(blogs), total))
}

// @Summary Get Blog Article
// @Tags Content
// @Produce json
// @Param id path string true "Article ID or slug"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /blogs/{id} [get]
func (h *ContentHandler) ShowBlog(c *gin.Context) {
	param := c.Param("id")
	if id, err := strconv.ParseUint(param, 10, 32); err == nil {
		blog, err := h.contentService.GetBlog(c.Request.Context(), uint(id))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, "Article retrieved", blog)
		return
	}

	blog, err := h.contentService.GetBlogBySlug(c.Request.Context(), param)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Article retrieved", blog)
}

// @Summary Create Blog Article
// @Tags Content
// @Accept json
// @Produce json
// @Param request body BlogRequest true "Article"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /blogs [post]
func (h *ContentHandler) CreateBlog(c *gin.Context) {
	var req BlogRequest
	if !bindJSON(c, &req) {
		return
	}

	ve := services.NewValidationError()
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		ve.Add("title", "is required")
	}
	if req.Body == nil || strings.TrimSpace(*req.Body) == "" {
		ve.Add("body", "is required")
	}
	if ve.HasErrors() {
		respondValidation(c, ve.Fields)
		return
	}

	authorID := middleware.GetUserID(c)
	blog := &models.Blog{
		Title:      *req.Title,
		Body:       *req.Body,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		AuthorID:   &authorID,
	}
	if req.Slug != nil {
		blog.Slug = *req.Slug
	}
	if req.Status != nil {
		blog.Status = *req.Status
	}
	if req.PublishedAt != nil && *req.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, *req.PublishedAt)
		if err != nil {
			respondValidation(c, map[string][]string{"published_at": {"must be an RFC3339 timestamp"}})
			return
		}
		blog.PublishedAt = &t
	}

	if err := h.contentService.CreateBlog(c.Request.Context(), blog, authorID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Article created", blog)
}

// @Summary Update Blog Article
// @Tags Content
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /blogs/{id} [put]
func (h *ContentHandler) UpdateBlog(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	blog, err := h.contentService.GetBlog(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req BlogRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Slug != nil {
		blog.Slug = *req.Slug
	}
	if req.Excerpt != nil {
		blog.Excerpt = req.Excerpt
	}
	if req.Body != nil {
		blog.Body = *req.Body
	}
	if req.CoverImage != nil {
		blog.CoverImage = req.CoverImage
	}
	if req.Status != nil {
		blog.Status = *req.Status
	}
	if req.PublishedAt != nil {
		if *req.PublishedAt == "" {
			blog.PublishedAt = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.PublishedAt)
			if err != nil {
				respondValidation(c, map[string][]string{"published_at": {"must be an RFC3339 timestamp"}})
				return
			}
			blog.PublishedAt = &t
		}
	}

	if err := h.contentService.UpdateBlog(c.Request.Context(), blog, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Article updated", blog)
}

// @Summary Delete Blog Article
// @Tags Content
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /blogs/{id} [delete]
func (h *ContentHandler) DestroyBlog(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.contentService.DeleteBlog(c.Request.Context(), id, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Article deleted", nil)
}

// --- Hero section ---

type HeroSectionRequest struct {
	Heading         string  `json:"heading" binding:"required"`
	Subheading      *string `json:"subheading"`
	CTALabel        *string `json:"cta_label"`
	CTALink         *string `json:"cta_link"`
	BackgroundImage *string `json:"background_image"`
}

// @Summary Get Hero Section
// @Description Returns the homepage banner configuration
// @Tags Content
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /hero-section [get]
func (h *ContentHandler) ShowHeroSection(c *gin.Context) {
	hero, err := h.contentService.GetHeroSection(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Hero section retrieved", hero)
}

// @Summary Upsert Hero Section
// @Description Creates or replaces the single homepage banner row
// @Tags Content
// @Accept json
// @Produce json
// @Param request body HeroSectionRequest true "Hero section"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /hero-section [put]
func (h *ContentHandler) UpsertHeroSection(c *gin.Context) {
	var req HeroSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	hero := &models.HeroSection{
		Heading:         req.Heading,
		Subheading:      req.Subheading,
		CTALabel:        req.CTALabel,
		CTALink:         req.CTALink,
		BackgroundImage: req.BackgroundImage,
	}

	if err := h.contentService.UpsertHeroSection(c.Request.Context(), hero, middleware.GetUserID(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Hero section saved", hero)
}
