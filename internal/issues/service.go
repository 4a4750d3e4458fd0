package issues

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/voo-ward/voo-citizen-backend/internal/ai"
	"github.com/voo-ward/voo-citizen-backend/internal/media"
	"github.com/voo-ward/voo-citizen-backend/internal/notifications"
	"github.com/voo-ward/voo-citizen-backend/internal/sequence"
	"github.com/voo-ward/voo-citizen-backend/internal/users"
	"github.com/voo-ward/voo-citizen-backend/pkg/db"
	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/pagination"
)

const (
	defaultTitle     = "Issue Report"
	submittedComment = "Issue submitted"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// UpvoteGuard records that a user has upvoted an issue. SetNX reports false
// when the key already existed.
type UpvoteGuard interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	UpvoteKey(issueID, userID string) string
}

// Service runs the issue lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Transition(ctx context.Context, input TransitionInput) (*IssueDTO, error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*DetailDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*MyIssuesResult, error)
	ListAll(ctx context.Context, params ListParams) (*ListResult, error)
	Upvote(ctx context.Context, userID, issueID uuid.UUID) (*UpvoteResult, error)
}

// ServiceParams names the lifecycle dependencies.
type ServiceParams struct {
	Repo     Repository
	Users    users.Repository
	TxRunner txRunner
	Sequence sequence.Allocator
	Media    media.Service
	AI       ai.Service
	Notifier notifications.Notifier
	Upvotes  UpvoteGuard
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     Repository
	users    users.Repository
	tx       txRunner
	sequence sequence.Allocator
	media    media.Service
	ai       ai.Service
	notifier notifications.Notifier
	upvotes  UpvoteGuard
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the issue lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("issues repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Sequence == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media service required")
	}
	if params.AI == nil {
		return nil, fmt.Errorf("ai service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		tx:       params.TxRunner,
		sequence: params.Sequence,
		media:    params.Media,
		ai:       params.AI,
		notifier: params.Notifier,
		upvotes:  params.Upvotes,
		logg:     params.Logger,
		now:      func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user")
	}
	req := input.Request
	description := strings.TrimSpace(req.Description)
	if description == "" && len(req.Images) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description or at least one image is required")
	}

	var explicitCategory *enums.IssueCategory
	if raw := trimmed(req.Category); raw != "" {
		category, err := enums.ParseIssueCategory(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		explicitCategory = &category
	}
	var explicitUrgency *enums.Urgency
	if raw := trimmed(req.Urgency); raw != "" {
		urgency, err := enums.ParseUrgency(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid urgency")
		}
		explicitUrgency = &urgency
	}

	images := s.media.UploadImages(ctx, req.Images)

	var analysis *ai.Analysis
	if len(images) > 0 {
		result := s.ai.AnalyzeImage(ctx, images[0].URL)
		analysis = &result
	}

	category := enums.IssueCategoryOther
	urgency := enums.UrgencyMedium
	title := defaultTitle
	if analysis != nil {
		category = analysis.Category
		urgency = analysis.Urgency
		if t := strings.TrimSpace(analysis.Title); t != "" {
			title = t
		}
		if description == "" {
			description = analysis.Description
		}
	}
	if explicitCategory != nil {
		category = *explicitCategory
	}
	if explicitUrgency != nil {
		urgency = *explicitUrgency
	}
	if t := strings.TrimSpace(req.Title); t != "" {
		title = t
	}
	if description == "" {
		description = title
	}

	var enhanced *string
	if text := strings.TrimSpace(s.ai.EnhanceDescription(ctx, description, category)); text != "" && text != description {
		enhanced = &text
	}

	now := s.now()
	issue := &models.Issue{
		ID:                  uuid.New(),
		UserID:              input.UserID,
		Title:               title,
		Description:         description,
		EnhancedDescription: enhanced,
		Category:            category,
		Urgency:             urgency,
		Status:              enums.IssueStatusNew,
		Latitude:            req.Location.Latitude,
		Longitude:           req.Location.Longitude,
		Address:             strings.TrimSpace(req.Location.Address),
		Images:              images,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if analysis != nil {
		issue.AIAnalysis = snapshotAnalysis(*analysis)
	}
	actor := input.UserID
	issue.Timeline = []models.IssueTimelineEntry{{
		Seq:       1,
		Status:    enums.IssueStatusNew,
		Comment:   submittedComment,
		ActorID:   &actor,
		CreatedAt: now,
	}}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.sequence.Next(ctx, tx, enums.SequencePrefixIssue, now)
		if err != nil {
			return err
		}
		issue.IssueNumber = number
		if _, err := s.repo.WithTx(tx).Create(ctx, issue); err != nil {
			return err
		}
		return s.users.WithTx(tx).IncrementIssuesReported(ctx, input.UserID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create issue")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"issue_id":     issue.ID.String(),
			"issue_number": issue.IssueNumber,
			"category":     issue.Category.String(),
			"images":       len(images),
		})
		s.logg.Info(logCtx, "issues.created")
	}

	dto := FromModel(issue)
	return &CreateResult{
		ID:          issue.ID,
		IssueNumber: issue.IssueNumber,
		AIAnalysis:  analysis,
		Issue:       &dto,
	}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*IssueDTO, error) {
	status, err := enums.ParseIssueStatus(strings.TrimSpace(input.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	comment := trimmed(input.Comment)
	if comment == "" {
		comment = "Status changed to " + status.String()
	}

	var issue *models.Issue
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, input.IssueID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
			}
			return err
		}

		now := s.now()
		actor := input.ActorID
		entry := &models.IssueTimelineEntry{
			IssueID:   current.ID,
			Seq:       nextSeq(current.Timeline),
			Status:    status,
			Comment:   comment,
			ActorID:   &actor,
			CreatedAt: now,
		}
		if err := repo.AppendTimeline(ctx, entry); err != nil {
			return err
		}

		var resolvedAt *time.Time
		if status == enums.IssueStatusResolved {
			resolvedAt = &now
		}
		if err := repo.UpdateStatus(ctx, current.ID, status, resolvedAt); err != nil {
			return err
		}
		if resolvedAt != nil {
			if err := s.users.WithTx(tx).IncrementIssuesResolved(ctx, current.UserID); err != nil {
				return err
			}
			current.ResolvedAt = resolvedAt
		}

		current.Status = status
		current.UpdatedAt = now
		current.Timeline = append(current.Timeline, *entry)
		issue = current
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update issue status")
	}

	s.notifyOwner(ctx, issue)

	dto := FromModel(issue)
	return &dto, nil
}

// nextSeq orders a new timeline entry after every existing one. Callers hold
// the issue row lock.
func nextSeq(timeline []models.IssueTimelineEntry) int {
	last := 0
	for _, entry := range timeline {
		last = max(last, entry.Seq)
	}
	return last + 1
}

func (s *service) notifyOwner(ctx context.Context, issue *models.Issue) {
	owner, err := s.users.FindByID(ctx, issue.UserID)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithIssueID(ctx, issue.ID.String())
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "issues.notify.owner_lookup_failed")
		}
		return
	}
	s.notifier.IssueStatusChanged(ctx, owner, issue)
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*DetailDTO, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load issue")
	}
	if issue.UserID != viewer.UserID && !viewer.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
	}

	return &DetailDTO{
		IssueDTO:     FromModel(issue),
		AISuggestion: s.ai.SuggestSolution(ctx, issue.Category, issue.Description),
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params ListParams) (*MyIssuesResult, error) {
	page, err := s.list(ctx, &userID, params)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count issues")
	}

	totals := make(map[string]int64, len(enums.IssueStatuses())+1)
	var total int64
	for _, status := range enums.IssueStatuses() {
		totals[status.String()] = counts[status]
		total += counts[status]
	}
	totals["total"] = total

	return &MyIssuesResult{ListResult: *page, Counts: totals}, nil
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, nil, params)
}

func (s *service) list(ctx context.Context, userID *uuid.UUID, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter := ListFilter{
		UserID: userID,
		Cursor: cursor,
		Limit:  params.Limit,
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseIssueStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list issues")
	}
	rows, next := pagination.Page(rows, params.Limit, func(issue models.Issue) pagination.Cursor {
		return pagination.Cursor{CreatedAt: issue.CreatedAt, ID: issue.ID}
	})

	items := make([]IssueDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: next}, nil
}

// Upvote counts one vote per user per issue. Repeat votes report the current
// total with Counted false.
func (s *service) Upvote(ctx context.Context, userID, issueID uuid.UUID) (*UpvoteResult, error) {
	if s.upvotes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upvotes unavailable")
	}
	issue, err := s.repo.FindByID(ctx, issueID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "issue not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load issue")
	}

	key := s.upvotes.UpvoteKey(issueID.String(), userID.String())
	first, err := s.upvotes.SetNX(ctx, key, s.now().Format(time.RFC3339), 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record upvote")
	}
	if !first {
		return &UpvoteResult{Upvotes: issue.Upvotes, Counted: false}, nil
	}

	upvotes, err := s.repo.IncrementUpvotes(ctx, issueID)
	if err != nil {
		if delErr := s.upvotes.Del(ctx, key); delErr != nil {
			err = multierr.Append(err, delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment upvotes")
	}
	return &UpvoteResult{Upvotes: upvotes, Counted: true}, nil
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
