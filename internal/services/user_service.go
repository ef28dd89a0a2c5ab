package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medicore/medicore-api/internal/models"
	"github.com/medicore/medicore-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// HashPassword hashes a plaintext password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against its bcrypt hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserService manages admin panel accounts
type UserService struct {
	repo         repository.UserRepository
	emailService *EmailService
	auditSvc     *AuditService
}

func NewUserService(repo repository.UserRepository, emailService *EmailService, auditSvc *AuditService) *UserService {
	return &UserService{
		repo:         repo,
		emailService: emailService,
		auditSvc:     auditSvc,
	}
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *UserService) Create(ctx context.Context, user *models.User, password string, actorID uint) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if !models.IsValidRole(user.Role) {
		ve := NewValidationError()
		ve.Add("role", "role must be one of: admin, editor, accounts")
		return ve
	}
	if len(password) < 8 {
		ve := NewValidationError()
		ve.Add("password", "password must be at least 8 characters")
		return ve
	}
	if existing, err := s.repo.FindByEmail(ctx, user.Email); err == nil && existing != nil {
		return ErrDuplicate
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashedPassword

	if err := s.repo.Create(ctx, user); err != nil {
		return err
	}
	// Welcome email is best effort, errors are logged inside the sender
	_ = s.emailService.SendAccountCreated(ctx, user)

	return s.auditSvc.Log(ctx, actorID, "CREATE", "User", user.ID, fmt.Sprintf("User created: %s (%s) role %s", user.FullName, user.Email, user.Role), "", "")
}

func (s *UserService) Update(ctx context.Context, user *models.User, actorID uint) error {
	if !models.IsValidRole(user.Role) {
		ve := NewValidationError()
		ve.Add("role", "role must be one of: admin, editor, accounts")
		return ve
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "UPDATE", "User", user.ID, fmt.Sprintf("User updated: %s", user.Email), "", "")
}

func (s *UserService) Delete(ctx context.Context, id uint, actorID uint) error {
	if id == actorID {
		ve := NewValidationError()
		ve.Add("id", "cannot delete your own account")
		return ve
	}
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "DELETE", "User", id, "User removed", "", "")
}

func (s *UserService) ToggleStatus(ctx context.Context, id uint, actorID uint) (*models.User, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == models.StatusActive {
		user.Status = models.StatusInactive
	} else {
		user.Status = models.StatusActive
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	_ = s.auditSvc.Log(ctx, actorID, "TOGGLE_STATUS", "User", id, fmt.Sprintf("Status changed to %s", user.Status), "", "")
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !VerifyPassword(currentPassword, user.EncryptedPassword) {
		return ErrInvalidPassword
	}
	if len(newPassword) < 8 {
		ve := NewValidationError()
		ve.Add("new_password", "password must be at least 8 characters")
		return ve
	}
	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashedPassword
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, userID, "CHANGE_PASSWORD", "User", userID, "Password updated by the user", "", "")
}

// ForceChangePassword resets a user's password without the current one.
// Reserved for administrators.
func (s *UserService) ForceChangePassword(ctx context.Context, userID uint, newPassword string, actorID uint) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		ve := NewValidationError()
		ve.Add("new_password", "password must be at least 8 characters")
		return ve
	}
	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.EncryptedPassword = hashedPassword
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.auditSvc.Log(ctx, actorID, "FORCE_CHANGE_PASSWORD", "User", userID, "Password reset by administrator", "", "")
}
