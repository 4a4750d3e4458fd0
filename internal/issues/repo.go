package issues

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	"github.com/voo-ward/voo-citizen-backend/pkg/pagination"
)

// Repository exposes issue persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Issue, error)
	AppendTimeline(ctx context.Context, entry *models.IssueTimelineEntry) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.IssueStatus, resolvedAt *time.Time) error
	List(ctx context.Context, filter ListFilter) ([]models.Issue, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[enums.IssueStatus]int64, error)
	IncrementUpvotes(ctx context.Context, id uuid.UUID) (int, error)
}

// ListFilter narrows a cursor query. A nil UserID lists every reporter.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.IssueStatus
	Cursor *pagination.Cursor
	Limit  int
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an issues repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the issue together with any timeline entries it carries.
func (r *repository) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return nil, err
	}
	return issue, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate row-locks the issue for the enclosing transaction.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Issue, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repository) find(query *gorm.DB, id uuid.UUID) (*models.Issue, error) {
	var issue models.Issue
	err := query.
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", id).
		First(&issue).Error
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *repository) AppendTimeline(ctx context.Context, entry *models.IssueTimelineEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.IssueStatus, resolvedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if resolvedAt != nil {
		updates["resolved_at"] = *resolvedAt
	}
	result := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns newest-first rows, fetching one extra row so callers can
// detect the next page.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Issue, error) {
	query := r.db.WithContext(ctx).Model(&models.Issue{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var rows []models.Issue
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[enums.IssueStatus]int64, error) {
	var rows []struct {
		Status enums.IssueStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Select("status, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.IssueStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

// IncrementUpvotes bumps the counter and returns the new value.
func (r *repository) IncrementUpvotes(ctx context.Context, id uuid.UUID) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", id).
		UpdateColumn("upvotes", gorm.Expr("upvotes + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var upvotes int
	err := r.db.WithContext(ctx).
		Model(&models.Issue{}).
		Select("upvotes").
		Where("id = ?", id).
		Scan(&upvotes).Error
	if err != nil {
		return 0, err
	}
	return upvotes, nil
}
