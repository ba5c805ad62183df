package model

import (
	"errors"
	"time"
)

// UserPinModel bcrypt-hashed transaction PIN per user
type UserPinModel struct {
	UserID    string    `gorm:"primaryKey;type:varchar(64)"`
	PinHash   string    `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName table name
func (UserPinModel) TableName() string {
	return "user_pins"
}

// Validate validates the PIN model
func (um *UserPinModel) Validate() error {
	if um.UserID == "" {
		return errors.New("user ID is required")
	}
	if um.PinHash == "" {
		return errors.New("pin hash is required")
	}
	return nil
}
