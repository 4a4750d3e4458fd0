// Package emergencycontacts serves the ward's emergency phone directory.
package emergencycontacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const defaultCategory = "general"

// CreateRequest is the admin contact payload.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Phone       string `json:"phone" validate:"required,max=20"`
	Category    string `json:"category" validate:"omitempty,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
	SortOrder   int    `json:"sortOrder"`
}

// ContactDTO is the API shape of a contact. Built-in contacts have no ID.
type ContactDTO struct {
	ID          *uuid.UUID `json:"id,omitempty"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
}

// Defaults is the national directory served while the table is empty.
func Defaults() []ContactDTO {
	return []ContactDTO{
		{Name: "Police", Phone: "999", Category: "security", Description: "National Police Service emergency line"},
		{Name: "Emergency Services", Phone: "112", Category: "emergency", Description: "Police, fire and ambulance"},
		{Name: "Kenya Red Cross", Phone: "1199", Category: "medical", Description: "Ambulance and disaster response"},
		{Name: "Childline Kenya", Phone: "116", Category: "welfare", Description: "Child protection helpline"},
		{Name: "GBV Hotline", Phone: "1195", Category: "welfare", Description: "Gender-based violence support"},
	}
}

// Service lists and adds contacts.
type Service interface {
	List(ctx context.Context) ([]ContactDTO, error)
	Create(ctx context.Context, req CreateRequest) (*ContactDTO, error)
}

type service struct {
	repo Repository
}

// NewService builds the contacts service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("emergency contacts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]ContactDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list emergency contacts")
	}
	if len(rows) == 0 {
		return Defaults(), nil
	}
	out := make([]ContactDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*ContactDTO, error) {
	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and phone are required")
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = defaultCategory
	}
	contact := &models.EmergencyContact{
		Name:        name,
		Phone:       phone,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if _, err := s.repo.Create(ctx, contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create emergency contact")
	}
	dto := fromModel(contact)
	return &dto, nil
}

func fromModel(m *models.EmergencyContact) ContactDTO {
	id := m.ID
	return ContactDTO{
		ID:          &id,
		Name:        m.Name,
		Phone:       m.Phone,
		Category:    m.Category,
		Description: m.Description,
	}
}
