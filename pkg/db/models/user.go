package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// User represents a registered citizen or ward administrator.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	FullName       string         `gorm:"column:full_name;not null"`
	Phone          string         `gorm:"column:phone;not null;uniqueIndex:users_phone_key"`
	IDNumber       string         `gorm:"column:id_number;not null;uniqueIndex:users_id_number_key"`
	PasswordHash   string         `gorm:"column:password_hash;not null"`
	Role           enums.UserRole `gorm:"column:role;type:text;not null"`
	Village        *string        `gorm:"column:village"`
	FCMToken       *string        `gorm:"column:fcm_token"`
	IssuesReported int            `gorm:"column:issues_reported;not null"`
	IssuesResolved int            `gorm:"column:issues_resolved;not null"`
	IsActive       bool           `gorm:"column:is_active;not null"`
	LastLoginAt    *time.Time     `gorm:"column:last_login_at"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasDeviceToken reports whether push notifications can reach the user.
func (u *User) HasDeviceToken() bool {
	return u != nil && u.FCMToken != nil && *u.FCMToken != ""
}
