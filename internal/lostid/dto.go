package lostid

import (
	"time"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// ReportRequest describes a missing national ID.
type ReportRequest struct {
	IDNumber         string     `json:"idNumber" validate:"required,max=20"`
	FullName         string     `json:"fullName" validate:"required,max=200"`
	DateLost         *time.Time `json:"dateLost,omitempty"`
	LastSeenLocation string     `json:"lastSeenLocation" validate:"omitempty,max=300"`
	Description      string     `json:"description" validate:"omitempty,max=2000"`
	ContactPhone     string     `json:"contactPhone" validate:"omitempty,max=20"`
}

// UpdateStatusRequest is the admin status payload.
type UpdateStatusRequest struct {
	Status             string  `json:"status" validate:"required"`
	CollectionLocation *string `json:"collectionLocation,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// UpdateStatusInput carries the report, the acting admin and the request.
type UpdateStatusInput struct {
	ReportID uuid.UUID
	ActorID  uuid.UUID
	Request  UpdateStatusRequest
}

// ListParams are the admin queue query inputs.
type ListParams struct {
	Limit  int
	Cursor string
	Status string
}

// ReportDTO is the API shape of a lost ID report.
type ReportDTO struct {
	ID                 uuid.UUID          `json:"id"`
	ReportNumber       string             `json:"reportNumber"`
	ReporterID         uuid.UUID          `json:"reporterId"`
	IDNumber           string             `json:"idNumber"`
	FullName           string             `json:"fullName"`
	DateLost           *time.Time         `json:"dateLost,omitempty"`
	LastSeenLocation   string             `json:"lastSeenLocation,omitempty"`
	Description        string             `json:"description,omitempty"`
	ContactPhone       string             `json:"contactPhone,omitempty"`
	Status             enums.LostIDStatus `json:"status"`
	CollectionLocation *string            `json:"collectionLocation,omitempty"`
	AdminNotes         *string            `json:"adminNotes,omitempty"`
	FoundAt            *time.Time         `json:"foundAt,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// ListResult is a page of reports.
type ListResult struct {
	Items  []ReportDTO `json:"items"`
	Cursor string      `json:"cursor,omitempty"`
}

// FromModel maps a persisted report to its API shape.
func FromModel(m *models.LostIDReport) ReportDTO {
	return ReportDTO{
		ID:                 m.ID,
		ReportNumber:       m.ReportNumber,
		ReporterID:         m.ReporterID,
		IDNumber:           m.IDNumber,
		FullName:           m.FullName,
		DateLost:           m.DateLost,
		LastSeenLocation:   m.LastSeenLocation,
		Description:        m.Description,
		ContactPhone:       m.ContactPhone,
		Status:             m.Status,
		CollectionLocation: m.CollectionLocation,
		AdminNotes:         m.AdminNotes,
		FoundAt:            m.FoundAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func fromModels(rows []models.LostIDReport) []ReportDTO {
	out := make([]ReportDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
