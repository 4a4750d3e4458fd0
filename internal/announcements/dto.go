package announcements

import (
	"time"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

// CreateRequest is the admin announcement payload.
type CreateRequest struct {
	Title     string     `json:"title" validate:"required,notblank,max=200"`
	Content   string     `json:"content" validate:"required,max=5000"`
	Priority  string     `json:"priority,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// AnnouncementDTO is the API shape of an announcement.
type AnnouncementDTO struct {
	ID        uuid.UUID                  `json:"id"`
	Title     string                     `json:"title"`
	Content   string                     `json:"content"`
	Priority  enums.AnnouncementPriority `json:"priority"`
	ExpiresAt *time.Time                 `json:"expiresAt,omitempty"`
	CreatedBy uuid.UUID                  `json:"createdBy"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// FromModel maps a persisted announcement to its API shape.
func FromModel(m *models.Announcement) AnnouncementDTO {
	return AnnouncementDTO{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Priority:  m.Priority,
		ExpiresAt: m.ExpiresAt,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}
