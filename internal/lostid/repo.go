package lostid

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	"github.com/voo-ward/voo-citizen-backend/pkg/pagination"
)

// Repository exposes lost ID report persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, report *models.LostIDReport) (*models.LostIDReport, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.LostIDReport, error)
	HasActive(ctx context.Context, idNumber string) (bool, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.LostIDReport, error)
	List(ctx context.Context, status *enums.LostIDStatus, cursor *pagination.Cursor, limit int) ([]models.LostIDReport, error)
	Save(ctx context.Context, report *models.LostIDReport) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a lost ID repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, report *models.LostIDReport) (*models.LostIDReport, error) {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.LostIDReport, error) {
	var report models.LostIDReport
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// HasActive reports whether the ID number already has a pending or
// processing report.
func (r *repository) HasActive(ctx context.Context, idNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LostIDReport{}).
		Where("id_number = ? AND status IN ?", idNumber, enums.ActiveLostIDStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.LostIDReport, error) {
	var reports []models.LostIDReport
	err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repository) List(ctx context.Context, status *enums.LostIDStatus, cursor *pagination.Cursor, limit int) ([]models.LostIDReport, error) {
	query := r.db.WithContext(ctx).Model(&models.LostIDReport{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}
	var reports []models.LostIDReport
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repository) Save(ctx context.Context, report *models.LostIDReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}
