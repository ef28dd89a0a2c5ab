package services

import (
	"context"
	"testing"

	"github.com/medicore/medicore-api/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUserCreate_NormalizesEmailAndHashesPassword(t *testing.T) {
	var created *models.User
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockCreate: func(ctx context.Context, user *models.User) error {
			created = user
			return nil
		},
	}

	svc := NewUserService(repo, nil, nil)
	user := &models.User{
		Email:    "  Admin@MediCore.Test ",
		FullName: "Admin User",
		Role:     models.RoleAdmin,
	}

	err := svc.Create(context.Background(), user, "secret123", 1)

	assert.NoError(t, err)
	assert.Equal(t, "admin@medicore.test", created.Email)
	assert.NotEqual(t, "secret123", created.EncryptedPassword)
	assert.True(t, VerifyPassword("secret123", created.EncryptedPassword))
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 2, Email: email}, nil
		},
	}

	svc := NewUserService(repo, nil, nil)
	err := svc.Create(context.Background(), &models.User{
		Email: "admin@medicore.test",
		Role:  models.RoleEditor,
	}, "secret123", 1)

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserCreate_RejectsBadRoleAndShortPassword(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil)

	err := svc.Create(context.Background(), &models.User{Email: "a@b.c", Role: "superuser"}, "secret123", 1)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "role")

	err = svc.Create(context.Background(), &models.User{Email: "a@b.c", Role: models.RoleEditor}, "short", 1)
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "password")
}

func TestUserDelete_SelfDeleteRejected(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, nil, nil)

	err := svc.Delete(context.Background(), 7, 7)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields["id"], "cannot delete your own account")
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	user := activeUser("correct-password")
	repo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewUserService(repo, nil, nil)
	err := svc.ChangePassword(context.Background(), 1, "wrong-password", "new-password-1")

	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestChangePassword_Success(t *testing.T) {
	user := activeUser("correct-password")
	repo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewUserService(repo, nil, nil)
	err := svc.ChangePassword(context.Background(), 1, "correct-password", "new-password-1")

	assert.NoError(t, err)
	assert.True(t, VerifyPassword("new-password-1", user.EncryptedPassword))
}

func TestToggleStatus_Flips(t *testing.T) {
	user := activeUser("secret123")
	repo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewUserService(repo, nil, nil)
	toggled, err := svc.ToggleStatus(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, models.StatusInactive, toggled.Status)
}
