package services

import (
	"context"

	"github.com/medicore/medicore-api/internal/models"
	"gorm.io/gorm"
)

// AuditService records who changed what, from where
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry. A nil service discards entries, so callers
// can run without audit storage configured.
func (s *AuditService) Log(ctx context.Context, userID uint, action, entity string, entityID uint, details, ip, userAgent string) error {
	if s == nil {
		return nil
	}
	logEntry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&logs)
	return logs, total, result.Error
}
