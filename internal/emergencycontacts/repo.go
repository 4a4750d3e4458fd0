package emergencycontacts

import (
	"context"

	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
)

// Repository exposes emergency contact persistence.
type Repository interface {
	Create(ctx context.Context, contact *models.EmergencyContact) (*models.EmergencyContact, error)
	ListActive(ctx context.Context) ([]models.EmergencyContact, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an emergency contacts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, contact *models.EmergencyContact) (*models.EmergencyContact, error) {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.EmergencyContact, error) {
	var rows []models.EmergencyContact
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
