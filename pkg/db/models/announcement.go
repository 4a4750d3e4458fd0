package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// Announcement is a ward-wide notice published by an admin.
type Announcement struct {
	ID        uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	Title     string                     `gorm:"column:title;not null"`
	Content   string                     `gorm:"column:content;not null"`
	Priority  enums.AnnouncementPriority `gorm:"column:priority;type:text;not null"`
	IsActive  bool                       `gorm:"column:is_active;not null"`
	ExpiresAt *time.Time                 `gorm:"column:expires_at"`
	CreatedBy uuid.UUID                  `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (a *Announcement) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
