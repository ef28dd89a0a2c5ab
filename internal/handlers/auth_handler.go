package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/middleware"
	"github.com/medicore/medicore-api/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Login
// @Description Authenticates an admin panel user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	respondSuccess(c, http.StatusOK, "Logged in", gin.H{
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
		"user":          result.User,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary Refresh Token
// @Description Exchanges a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh Token"
// @Success 200 {object} map[string]interface{}
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	respondSuccess(c, http.StatusOK, "Token refreshed", gin.H{
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
		"user":          result.User,
	})
}

// @Summary Logout
// @Description Revokes the given refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh Token"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Logged out", nil)
}

// @Summary Current User
// @Description Returns the authenticated user's profile
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "OK", user.ToResponse())
}
