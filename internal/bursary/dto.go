package bursary

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// ApplyRequest is the student's bursary application.
type ApplyRequest struct {
	InstitutionName string           `json:"institutionName" validate:"required,max=200"`
	InstitutionType string           `json:"institutionType" validate:"omitempty,max=100"`
	Course          string           `json:"course" validate:"omitempty,max=200"`
	YearOfStudy     int              `json:"yearOfStudy" validate:"omitempty,min=1,max=10"`
	AdmissionNumber string           `json:"admissionNumber" validate:"omitempty,max=100"`
	AmountRequested decimal.Decimal  `json:"amountRequested"`
	HouseholdIncome *decimal.Decimal `json:"householdIncome,omitempty"`
	Reason          string           `json:"reason" validate:"omitempty,max=2000"`
	GuardianName    string           `json:"guardianName" validate:"omitempty,max=200"`
	GuardianPhone   string           `json:"guardianPhone" validate:"omitempty,max=20"`
}

// ApproveRequest is the admin approval payload. A missing amount approves
// the requested amount.
type ApproveRequest struct {
	AmountApproved *decimal.Decimal `json:"amountApproved,omitempty"`
	Comments       *string          `json:"comments,omitempty"`
}

// DenyRequest is the admin denial payload.
type DenyRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// DecisionInput identifies the application and the deciding admin.
type DecisionInput struct {
	ApplicationID uuid.UUID
	ActorID       uuid.UUID
}

// ApplicationDTO is the API shape of a bursary application.
type ApplicationDTO struct {
	ID                uuid.UUID           `json:"id"`
	ApplicationNumber string              `json:"applicationNumber"`
	UserID            uuid.UUID           `json:"userId"`
	InstitutionName   string              `json:"institutionName"`
	InstitutionType   string              `json:"institutionType,omitempty"`
	Course            string              `json:"course,omitempty"`
	YearOfStudy       int                 `json:"yearOfStudy,omitempty"`
	AdmissionNumber   string              `json:"admissionNumber,omitempty"`
	AmountRequested   decimal.Decimal     `json:"amountRequested"`
	AmountApproved    *decimal.Decimal    `json:"amountApproved,omitempty"`
	HouseholdIncome   *decimal.Decimal    `json:"householdIncome,omitempty"`
	Reason            string              `json:"reason,omitempty"`
	GuardianName      string              `json:"guardianName,omitempty"`
	GuardianPhone     string              `json:"guardianPhone,omitempty"`
	Status            enums.BursaryStatus `json:"status"`
	AdminComments     *string             `json:"adminComments,omitempty"`
	DenialReason      *string             `json:"denialReason,omitempty"`
	ReviewedBy        *uuid.UUID          `json:"reviewedBy,omitempty"`
	ReviewedAt        *time.Time          `json:"reviewedAt,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// ListResult is a page of applications.
type ListResult struct {
	Items  []ApplicationDTO `json:"items"`
	Cursor string           `json:"cursor,omitempty"`
}

// FromModel maps a persisted application to its API shape.
func FromModel(m *models.BursaryApplication) ApplicationDTO {
	return ApplicationDTO{
		ID:                m.ID,
		ApplicationNumber: m.ApplicationNumber,
		UserID:            m.UserID,
		InstitutionName:   m.InstitutionName,
		InstitutionType:   m.InstitutionType,
		Course:            m.Course,
		YearOfStudy:       m.YearOfStudy,
		AdmissionNumber:   m.AdmissionNumber,
		AmountRequested:   m.AmountRequested,
		AmountApproved:    m.AmountApproved,
		HouseholdIncome:   m.HouseholdIncome,
		Reason:            m.Reason,
		GuardianName:      m.GuardianName,
		GuardianPhone:     m.GuardianPhone,
		Status:            m.Status,
		AdminComments:     m.AdminComments,
		DenialReason:      m.DenialReason,
		ReviewedBy:        m.ReviewedBy,
		ReviewedAt:        m.ReviewedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func fromModels(rows []models.BursaryApplication) []ApplicationDTO {
	out := make([]ApplicationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
