// Package announcements publishes ward notices.
package announcements

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const listLimit = 50

// Service lists and publishes announcements.
type Service interface {
	ListActive(ctx context.Context) ([]AnnouncementDTO, error)
	Create(ctx context.Context, actorID uuid.UUID, req CreateRequest) (*AnnouncementDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the announcements service.
func NewService(repo Repository, clock func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("announcements repository required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &service{repo: repo, now: func() time.Time { return clock().UTC() }}, nil
}

// ListActive drops expired notices and orders the rest by priority, then recency.
func (s *service) ListActive(ctx context.Context) ([]AnnouncementDTO, error) {
	rows, err := s.repo.ListActive(ctx, s.now(), listLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list announcements")
	}
	out := make([]AnnouncementDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, req CreateRequest) (*AnnouncementDTO, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content are required")
	}
	priority := enums.AnnouncementPriorityNormal
	if raw := strings.ToLower(strings.TrimSpace(req.Priority)); raw != "" {
		parsed, err := enums.ParseAnnouncementPriority(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority")
		}
		priority = parsed
	}
	now := s.now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiresAt must be in the future")
	}

	announcement := &models.Announcement{
		Title:     title,
		Content:   content,
		Priority:  priority,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
		CreatedBy: actorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.repo.Create(ctx, announcement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create announcement")
	}
	dto := FromModel(announcement)
	return &dto, nil
}
