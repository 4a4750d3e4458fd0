// Package feedback records citizen comments for the ward office.
package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const defaultCategory = "general"

// SubmitRequest is the citizen feedback payload.
type SubmitRequest struct {
	Category string `json:"category" validate:"omitempty,max=50"`
	Subject  string `json:"subject" validate:"omitempty,max=200"`
	Message  string `json:"message" validate:"required,notblank,max=5000"`
	Rating   *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}

// FeedbackDTO is the API shape of a feedback entry.
type FeedbackDTO struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository exposes feedback persistence.
type Repository interface {
	Create(ctx context.Context, entry *models.Feedback) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Feedback, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a feedback repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, entry *models.Feedback) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Feedback, error) {
	var rows []models.Feedback
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Service submits and lists a citizen's feedback.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*FeedbackDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]FeedbackDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the feedback service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*FeedbackDTO, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = defaultCategory
	}
	entry := &models.Feedback{
		UserID:    userID,
		Category:  category,
		Subject:   strings.TrimSpace(req.Subject),
		Message:   message,
		Rating:    req.Rating,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "submit feedback")
	}
	dto := fromModel(entry)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]FeedbackDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list feedback")
	}
	out := make([]FeedbackDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i]))
	}
	return out, nil
}

func fromModel(m *models.Feedback) FeedbackDTO {
	return FeedbackDTO{
		ID:        m.ID,
		Category:  m.Category,
		Subject:   m.Subject,
		Message:   m.Message,
		Rating:    m.Rating,
		CreatedAt: m.CreatedAt,
	}
}
