package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Role     *string `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ForcePasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// @Summary List Users
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	query := buildListQuery(c)

	users, total, err := h.userService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]interface{}, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}

	respondList(c, "Users retrieved", responses, NewPagination(query.Page, query.PerPage, len(responses), total))
}

// @Summary Get User
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User retrieved", user.ToResponse())
}

// @Summary Create User
// @Tags Users
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "User"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
	}

	if err := h.userService.Create(c.Request.Context(), user, req.Password, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "User created", user.ToResponse())
}

// @Summary Update User
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Partial patch"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := h.userService.Update(c.Request.Context(), user, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User updated", user.ToResponse())
}

// @Summary Delete User
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Destroy(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User deleted", nil)
}

// @Summary Toggle User Status
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id}/toggle-status [post]
func (h *UserHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.ToggleStatus(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User status updated", user.ToResponse())
}

// @Summary Change Own Password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/change-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Password changed", nil)
}

// @Summary Reset User Password
// @Description Admin reset of another user's password
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body ForcePasswordRequest true "New password"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /users/{id}/reset-password [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ForcePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ForceChangePassword(c.Request.Context(), id, req.NewPassword, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Password reset", nil)
}
