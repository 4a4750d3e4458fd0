package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// BursaryApplication is a student's request for ward education funding.
type BursaryApplication struct {
	ID                uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ApplicationNumber string              `gorm:"column:application_number;not null;uniqueIndex:bursary_applications_number_key"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	InstitutionName   string              `gorm:"column:institution_name;not null"`
	InstitutionType   string              `gorm:"column:institution_type"`
	Course            string              `gorm:"column:course"`
	YearOfStudy       int                 `gorm:"column:year_of_study"`
	AdmissionNumber   string              `gorm:"column:admission_number"`
	AmountRequested   decimal.Decimal     `gorm:"column:amount_requested;type:numeric(12,2);not null"`
	AmountApproved    *decimal.Decimal    `gorm:"column:amount_approved;type:numeric(12,2)"`
	HouseholdIncome   *decimal.Decimal    `gorm:"column:household_income;type:numeric(12,2)"`
	Reason            string              `gorm:"column:reason"`
	GuardianName      string              `gorm:"column:guardian_name"`
	GuardianPhone     string              `gorm:"column:guardian_phone"`
	Status            enums.BursaryStatus `gorm:"column:status;type:text;not null;index"`
	AdminComments     *string             `gorm:"column:admin_comments"`
	DenialReason      *string             `gorm:"column:denial_reason"`
	ReviewedBy        *uuid.UUID          `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt        *time.Time          `gorm:"column:reviewed_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (b *BursaryApplication) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
