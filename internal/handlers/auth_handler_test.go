package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore-api/internal/config"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/medicore/medicore-api/internal/services"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type stubUserRepo struct {
	repository.UserRepository
	findByEmail func(ctx context.Context, email string) (*models.User, error)
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findByEmail(ctx, email)
}

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return nil
}

type stubRefreshTokenRepo struct {
	repository.RefreshTokenRepository
}

func (s *stubRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	return nil
}

func newAuthTestRouter(userRepo *stubUserRepo) *gin.Engine {
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 24}
	authSvc := services.NewAuthService(userRepo, &stubRefreshTokenRepo{}, cfg)
	userSvc := services.NewUserService(userRepo, nil, nil)
	handler := NewAuthHandler(authSvc, userSvc)

	router := gin.New()
	router.POST("/api/v1/auth/login", handler.Login)
	return router
}

func TestLogin_EnvelopeCarriesUserResponse(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	assert.NoError(t, err)

	userRepo := &stubUserRepo{
		findByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{
				ID:                8,
				Email:             "accounts@medicore.test",
				FullName:          "Nadia Karim",
				Role:              models.RoleAccounts,
				Status:            models.StatusActive,
				EncryptedPassword: string(hash),
			}, nil
		},
	}
	router := newAuthTestRouter(userRepo)

	w := postJSON(router, "/api/v1/auth/login", gin.H{
		"email":    "accounts@medicore.test",
		"password": "s3cret-pass",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.NotEmpty(t, data["refresh_token"])

	// The user payload is the flattened response shape, not the model
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "accounts@medicore.test", user["email"])
	assert.Equal(t, "Nadia Karim", user["full_name"])
	assert.Equal(t, models.RoleAccounts, user["role"])
	assert.NotContains(t, user, "encrypted_password")
	assert.Contains(t, user, "privileges")
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-pass"), bcrypt.MinCost)
	userRepo := &stubUserRepo{
		findByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{
				ID:                8,
				Email:             email,
				Role:              models.RoleAccounts,
				Status:            models.StatusActive,
				EncryptedPassword: string(hash),
			}, nil
		},
	}
	router := newAuthTestRouter(userRepo)

	w := postJSON(router, "/api/v1/auth/login", gin.H{
		"email":    "accounts@medicore.test",
		"password": "wrong-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["message"])
}
