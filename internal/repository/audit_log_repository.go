package repository

import (
	"github.com/rolinkstone/new-talawang-sub001/internal/model"
	"gorm.io/gorm"
)

// AuditLogRepository audit-log persistence
type AuditLogRepository interface {
	Save(log *model.AuditLogModel) error
	FindByUserID(userID string) ([]*model.AuditLogModel, error)
	FindByResource(resourceType string, resourceID string) ([]*model.AuditLogModel, error)
}

// auditLogRepository gorm implementation
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates an audit-log repository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Save persists an audit log entry
func (r *auditLogRepository) Save(log *model.AuditLogModel) error {
	return r.db.Save(log).Error
}

// FindByUserID audit entries for one actor, newest first
func (r *auditLogRepository) FindByUserID(userID string) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&logs).Error
	return logs, err
}

// FindByResource audit entries for one resource, newest first
func (r *auditLogRepository) FindByResource(resourceType string, resourceID string) ([]*model.AuditLogModel, error) {
	var logs []*model.AuditLogModel
	err := r.db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
