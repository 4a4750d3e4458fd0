package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// LostIDReport tracks a missing national ID card.
type LostIDReport struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey"`
	ReportNumber       string             `gorm:"column:report_number;not null;uniqueIndex:lost_id_reports_number_key"`
	ReporterID         uuid.UUID          `gorm:"column:reporter_id;type:uuid;not null;index"`
	IDNumber           string             `gorm:"column:id_number;not null;index"`
	FullName           string             `gorm:"column:full_name;not null"`
	DateLost           *time.Time         `gorm:"column:date_lost"`
	LastSeenLocation   string             `gorm:"column:last_seen_location"`
	Description        string             `gorm:"column:description"`
	ContactPhone       string             `gorm:"column:contact_phone"`
	Status             enums.LostIDStatus `gorm:"column:status;type:text;not null;index"`
	CollectionLocation *string            `gorm:"column:collection_location"`
	AdminNotes         *string            `gorm:"column:admin_notes"`
	UpdatedBy          *uuid.UUID         `gorm:"column:updated_by;type:uuid"`
	FoundAt            *time.Time         `gorm:"column:found_at"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (r *LostIDReport) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
