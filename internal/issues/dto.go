package issues

import (
	"time"

	"github.com/google/uuid"

	"github.com/voo-ward/voo-citizen-backend/internal/ai"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	"github.com/voo-ward/voo-citizen-backend/pkg/types"
)

// CreateIssueRequest is the citizen-submitted issue payload. Images hold
// data URIs, raw base64 or already hosted URLs; entries past the fifth are
// ignored.
type CreateIssueRequest struct {
	Title       string         `json:"title" validate:"omitempty,max=200"`
	Description string         `json:"description" validate:"omitempty,max=5000"`
	Category    *string        `json:"category,omitempty"`
	Urgency     *string        `json:"urgency,omitempty"`
	Location    types.Location `json:"location"`
	Images      []string       `json:"images"`
}

// UpdateStatusRequest is the admin transition payload.
type UpdateStatusRequest struct {
	Status  string  `json:"status" validate:"required"`
	Comment *string `json:"comment,omitempty"`
}

// CreateInput carries the owner alongside the request body.
type CreateInput struct {
	UserID  uuid.UUID
	Request CreateIssueRequest
}

// TransitionInput identifies the issue, the acting admin and the target status.
type TransitionInput struct {
	IssueID uuid.UUID
	ActorID uuid.UUID
	Status  string
	Comment *string
}

// Viewer is the authenticated caller of a read.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the viewer holds the admin role.
func (v Viewer) IsAdmin() bool {
	return v.Role == enums.UserRoleAdmin
}

// ListParams are the query inputs for the issue lists.
type ListParams struct {
	Limit  int
	Cursor string
	Status string
}

// TimelineEntryDTO is one status event.
type TimelineEntryDTO struct {
	Status    enums.IssueStatus `json:"status"`
	Comment   string            `json:"comment"`
	ActorID   *uuid.UUID        `json:"actorId,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// IssueDTO is the API shape of an issue.
type IssueDTO struct {
	ID                  uuid.UUID           `json:"id"`
	IssueNumber         string              `json:"issueNumber"`
	UserID              uuid.UUID           `json:"userId"`
	Title               string              `json:"title"`
	Description         string              `json:"description"`
	EnhancedDescription *string             `json:"enhancedDescription,omitempty"`
	Category            enums.IssueCategory `json:"category"`
	Urgency             enums.Urgency       `json:"urgency"`
	Status              enums.IssueStatus   `json:"status"`
	Location            types.Location      `json:"location"`
	Images              types.IssueImages   `json:"images"`
	AIAnalysis          *types.AIAnalysis   `json:"aiAnalysis,omitempty"`
	Upvotes             int                 `json:"upvotes"`
	Timeline            []TimelineEntryDTO  `json:"timeline,omitempty"`
	ResolvedAt          *time.Time          `json:"resolvedAt,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// DetailDTO adds the assistant's remediation plan to an issue.
type DetailDTO struct {
	IssueDTO
	AISuggestion *ai.Solution `json:"aiSuggestion,omitempty"`
}

// CreateResult is returned to the reporter after submission.
type CreateResult struct {
	ID          uuid.UUID    `json:"issueId"`
	IssueNumber string       `json:"issueNumber"`
	AIAnalysis  *ai.Analysis `json:"aiAnalysis,omitempty"`
	Issue       *IssueDTO    `json:"issue"`
}

// ListResult is a page of issues.
type ListResult struct {
	Items  []IssueDTO `json:"items"`
	Cursor string     `json:"cursor,omitempty"`
}

// MyIssuesResult is a page of the caller's issues plus per-status totals
// across all of them.
type MyIssuesResult struct {
	ListResult
	Counts map[string]int64 `json:"counts"`
}

// UpvoteResult reports the counter after an upvote attempt.
type UpvoteResult struct {
	Upvotes int  `json:"upvotes"`
	Counted bool `json:"counted"`
}

// FromModel maps a persisted issue to its API shape.
func FromModel(m *models.Issue) IssueDTO {
	dto := IssueDTO{
		ID:                  m.ID,
		IssueNumber:         m.IssueNumber,
		UserID:              m.UserID,
		Title:               m.Title,
		Description:         m.Description,
		EnhancedDescription: m.EnhancedDescription,
		Category:            m.Category,
		Urgency:             m.Urgency,
		Status:              m.Status,
		Location: types.Location{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Address:   m.Address,
		},
		Images:     m.Images,
		AIAnalysis: m.AIAnalysis,
		Upvotes:    m.Upvotes,
		ResolvedAt: m.ResolvedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if dto.Images == nil {
		dto.Images = types.IssueImages{}
	}
	for _, entry := range m.Timeline {
		dto.Timeline = append(dto.Timeline, TimelineEntryDTO{
			Status:    entry.Status,
			Comment:   entry.Comment,
			ActorID:   entry.ActorID,
			Timestamp: entry.CreatedAt,
		})
	}
	return dto
}

func snapshotAnalysis(a ai.Analysis) *types.AIAnalysis {
	return &types.AIAnalysis{
		Category:                a.Category.String(),
		Title:                   a.Title,
		Description:             a.Description,
		Urgency:                 a.Urgency.String(),
		Confidence:              a.Confidence,
		EstimatedResolutionTime: a.EstimatedResolutionTime,
	}
}
