package announcements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// priorityOrder ranks rows in SQL so the limit keeps the most important notices.
var priorityOrder = func() string {
	var b strings.Builder
	b.WriteString("CASE priority")
	for _, p := range []enums.AnnouncementPriority{
		enums.AnnouncementPriorityUrgent,
		enums.AnnouncementPriorityHigh,
		enums.AnnouncementPriorityNormal,
		enums.AnnouncementPriorityLow,
	} {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END DESC", enums.AnnouncementPriorityNormal.Rank())
	return b.String()
}()

// Repository exposes announcement persistence.
type Repository interface {
	Create(ctx context.Context, announcement *models.Announcement) (*models.Announcement, error)
	ListActive(ctx context.Context, at time.Time, limit int) ([]models.Announcement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an announcements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, announcement *models.Announcement) (*models.Announcement, error) {
	if err := r.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return nil, err
	}
	return announcement, nil
}

// ListActive returns active announcements that have not expired at the given
// instant, highest priority first and newest first within a priority.
func (r *repository) ListActive(ctx context.Context, at time.Time, limit int) ([]models.Announcement, error) {
	var rows []models.Announcement
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("(expires_at IS NULL OR expires_at > ?)", at).
		Order(priorityOrder).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
