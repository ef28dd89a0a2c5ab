package services

import (
	"context"
	"testing"
	"time"

	"github.com/medicore/medicore-api/internal/config"
	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
	mockUpdate      func(ctx context.Context, user *models.User) error
	mockCreate      func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.mockFindByEmail(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, user)
	}
	return nil
}

type mockRefreshTokenRepo struct {
	repository.RefreshTokenRepository
	mockCreate      func(ctx context.Context, token *models.RefreshToken) error
	mockFindByToken func(ctx context.Context, token string) (*models.RefreshToken, error)
	mockDelete      func(ctx context.Context, token string) error
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, token)
	}
	return nil
}

func (m *mockRefreshTokenRepo) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return m.mockFindByToken(ctx, token)
}

func (m *mockRefreshTokenRepo) Delete(ctx context.Context, token string) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, token)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 24,
	}
}

func activeUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:                1,
		Email:             "admin@medicore.test",
		FullName:          "Admin User",
		EncryptedPassword: string(hash),
		Role:              models.RoleAdmin,
		Status:            models.StatusActive,
	}
}

func TestLogin_Success(t *testing.T) {
	user := activeUser("secret123")
	userRepo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	rtRepo := &mockRefreshTokenRepo{}

	svc := NewAuthService(userRepo, rtRepo, testConfig())
	result, err := svc.Login(context.Background(), "admin@medicore.test", "secret123")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "admin@medicore.test", result.User.Email)
	assert.NotNil(t, user.LastLoginAt)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return activeUser("secret123"), nil
		},
	}

	svc := NewAuthService(userRepo, &mockRefreshTokenRepo{}, testConfig())
	result, err := svc.Login(context.Background(), "admin@medicore.test", "wrong")

	assert.Nil(t, result)
	assert.EqualError(t, err, "invalid credentials")
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewAuthService(userRepo, &mockRefreshTokenRepo{}, testConfig())
	result, err := svc.Login(context.Background(), "nobody@medicore.test", "secret123")

	assert.Nil(t, result)
	assert.EqualError(t, err, "invalid credentials")
}

func TestLogin_InactiveUser(t *testing.T) {
	user := activeUser("secret123")
	user.Status = models.StatusInactive
	userRepo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewAuthService(userRepo, &mockRefreshTokenRepo{}, testConfig())
	result, err := svc.Login(context.Background(), "admin@medicore.test", "secret123")

	assert.Nil(t, result)
	assert.EqualError(t, err, "account inactive or suspended")
}

func TestRefreshToken_RotatesToken(t *testing.T) {
	user := activeUser("secret123")
	expiresAt := time.Now().Add(time.Hour)
	deleted := ""

	rtRepo := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
		},
		mockDelete: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	userRepo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewAuthService(userRepo, rtRepo, testConfig())
	result, err := svc.RefreshToken(context.Background(), "old-token")

	assert.NoError(t, err)
	assert.Equal(t, "old-token", deleted)
	assert.NotEqual(t, "old-token", result.RefreshToken)
}

func TestRefreshToken_Expired(t *testing.T) {
	expiresAt := time.Now().Add(-time.Hour)
	rtRepo := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return &models.RefreshToken{UserID: 1, Token: token, ExpiresAt: &expiresAt}, nil
		},
	}

	svc := NewAuthService(&mockUserRepo{}, rtRepo, testConfig())
	result, err := svc.RefreshToken(context.Background(), "stale-token")

	assert.Nil(t, result)
	assert.EqualError(t, err, "token expired")
}

func TestRefreshToken_Invalid(t *testing.T) {
	rtRepo := &mockRefreshTokenRepo{
		mockFindByToken: func(ctx context.Context, token string) (*models.RefreshToken, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewAuthService(&mockUserRepo{}, rtRepo, testConfig())
	result, err := svc.RefreshToken(context.Background(), "bogus")

	assert.Nil(t, result)
	assert.EqualError(t, err, "invalid token")
}
