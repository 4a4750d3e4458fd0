package bursary

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	"github.com/voo-ward/voo-citizen-backend/pkg/pagination"
)

// Repository exposes bursary application persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, app *models.BursaryApplication) (*models.BursaryApplication, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BursaryApplication, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.BursaryApplication, error)
	HasPending(ctx context.Context, userID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BursaryApplication, error)
	ListByStatus(ctx context.Context, status enums.BursaryStatus, cursor *pagination.Cursor, limit int) ([]models.BursaryApplication, error)
	Save(ctx context.Context, app *models.BursaryApplication) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bursary repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, app *models.BursaryApplication) (*models.BursaryApplication, error) {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BursaryApplication, error) {
	var app models.BursaryApplication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.BursaryApplication, error) {
	var app models.BursaryApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repository) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BursaryApplication{}).
		Where("user_id = ? AND status = ?", userID, enums.BursaryStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BursaryApplication, error) {
	var apps []models.BursaryApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// ListByStatus pages newest-first, fetching one extra row for the next cursor.
func (r *repository) ListByStatus(ctx context.Context, status enums.BursaryStatus, cursor *pagination.Cursor, limit int) ([]models.BursaryApplication, error) {
	query := r.db.WithContext(ctx).Where("status = ?", status)
	if cursor != nil {
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var apps []models.BursaryApplication
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repository) Save(ctx context.Context, app *models.BursaryApplication) error {
	return r.db.WithContext(ctx).Save(app).Error
}
