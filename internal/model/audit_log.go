package model

import (
	"errors"
	"time"
)

// AuditLogModel audit trail for mutating operations
type AuditLogModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	UserID       string    `gorm:"type:varchar(64);not null;index"`
	Username     string    `gorm:"type:varchar(255)"`
	Action       string    `gorm:"type:varchar(64);not null;index"` // create/approve/reject/transfer/complete/cancel
	ResourceType string    `gorm:"type:varchar(32);not null"`       // kegiatan/nominatif
	ResourceID   string    `gorm:"type:varchar(64);not null;index"`
	RequestID    string    `gorm:"type:varchar(64);index"`
	IP           string    `gorm:"type:varchar(45)"`
	UserAgent    string    `gorm:"type:text"`
	Details      []byte    `gorm:"type:jsonb"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

// TableName table name
func (AuditLogModel) TableName() string {
	return "audit_logs"
}

// Validate validates the audit log model
func (alm *AuditLogModel) Validate() error {
	if alm.ID == "" {
		return errors.New("audit log ID is required")
	}
	if alm.UserID == "" {
		return errors.New("user ID is required")
	}
	if alm.Action == "" {
		return errors.New("action is required")
	}
	if alm.ResourceType == "" {
		return errors.New("resource type is required")
	}
	if alm.ResourceID == "" {
		return errors.New("resource ID is required")
	}
	return nil
}
