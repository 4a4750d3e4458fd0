package bursary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	pendingIndex        = "bursary_applications_one_pending_idx"
	duplicatePendingMsg = "You already have a pending bursary application"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the bursary workflow.
type Service interface {
	Apply(ctx context.Context, userID uuid.UUID, req ApplyRequest) (*ApplicationDTO, error)
	Approve(ctx context.Context, input DecisionInput, req ApproveRequest) (*ApplicationDTO, error)
	Deny(ctx context.Context, input DecisionInput, req DenyRequest) (*ApplicationDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]ApplicationDTO, error)
	Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, id uuid.UUID) (*ApplicationDTO, error)
	ListPending(ctx context.Context, params pagination.Params) (*ListResult, error)
}

// ServiceParams names the bursary dependencies.
type ServiceParams struct {
	Repo     Repository
	Users    users.Repository
	TxRunner txRunner
	Sequence sequence.Allocator
	Notifier notifications.Notifier
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     Repository
	users    users.Repository
	tx       txRunner
	sequence sequence.Allocator
	notifier notifications.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the bursary workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bursary repository required")
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
		notifier: params.Notifier,
		logg:     params.Logger,
		now:      func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) Apply(ctx context.Context, userID uuid.UUID, req ApplyRequest) (*ApplicationDTO, error) {
	institution := strings.TrimSpace(req.InstitutionName)
	if institution == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "institutionName is required")
	}
	if !req.AmountRequested.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amountRequested must be greater than zero")
	}
	if req.HouseholdIncome != nil && req.HouseholdIncome.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "householdIncome cannot be negative")
	}

	now := s.now()
	app := &models.BursaryApplication{
		ID:              uuid.New(),
		UserID:          userID,
		InstitutionName: institution,
		InstitutionType: strings.TrimSpace(req.InstitutionType),
		Course:          strings.TrimSpace(req.Course),
		YearOfStudy:     req.YearOfStudy,
		AdmissionNumber: strings.TrimSpace(req.AdmissionNumber),
		AmountRequested: req.AmountRequested.Round(2),
		HouseholdIncome: req.HouseholdIncome,
		Reason:          strings.TrimSpace(req.Reason),
		GuardianName:    strings.TrimSpace(req.GuardianName),
		GuardianPhone:   strings.TrimSpace(req.GuardianPhone),
		Status:          enums.BursaryStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pending, err := repo.HasPending(ctx, userID)
		if err != nil {
			return err
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, duplicatePendingMsg)
		}
		number, err := s.sequence.Next(ctx, tx, enums.SequencePrefixBursary, now)
		if err != nil {
			return err
		}
		app.ApplicationNumber = number
		_, err = repo.Create(ctx, app)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if db.IsUniqueViolation(err, pendingIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicatePendingMsg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create bursary application")
	}

	dto := FromModel(app)
	return &dto, nil
}

func (s *service) Approve(ctx context.Context, input DecisionInput, req ApproveRequest) (*ApplicationDTO, error) {
	if req.AmountApproved != nil && req.AmountApproved.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amountApproved cannot be negative")
	}
	app, err := s.decide(ctx, input, func(app *models.BursaryApplication) {
		amount := app.AmountRequested
		if req.AmountApproved != nil {
			amount = req.AmountApproved.Round(2)
		}
		app.Status = enums.BursaryStatusApproved
		app.AmountApproved = &amount
		if comments := trimmedOrNil(req.Comments); comments != nil {
			app.AdminComments = comments
		}
	})
	if err != nil {
		return nil, err
	}

	applicant, err := s.users.FindByID(ctx, app.UserID)
	if err != nil {
		s.warn(ctx, app.ID, "bursary.notify.applicant_lookup_failed", err)
	} else {
		s.notifier.BursaryApproved(ctx, applicant, app)
	}

	dto := FromModel(app)
	return &dto, nil
}

// Deny records the decision without contacting the applicant.
func (s *service) Deny(ctx context.Context, input DecisionInput, req DenyRequest) (*ApplicationDTO, error) {
	app, err := s.decide(ctx, input, func(app *models.BursaryApplication) {
		app.Status = enums.BursaryStatusDenied
		app.DenialReason = trimmedOrNil(req.Reason)
	})
	if err != nil {
		return nil, err
	}
	dto := FromModel(app)
	return &dto, nil
}

func (s *service) decide(ctx context.Context, input DecisionInput, apply func(*models.BursaryApplication)) (*models.BursaryApplication, error) {
	var app *models.BursaryApplication
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, input.ApplicationID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
			}
			return err
		}
		now := s.now()
		actor := input.ActorID
		apply(current)
		current.ReviewedBy = &actor
		current.ReviewedAt = &now
		current.UpdatedAt = now
		if err := repo.Save(ctx, current); err != nil {
			return err
		}
		app = current
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update bursary application")
	}
	return app, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ApplicationDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bursary applications")
	}
	return fromModels(rows), nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, role enums.UserRole, id uuid.UUID) (*ApplicationDTO, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bursary application")
	}
	if app.UserID != userID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	dto := FromModel(app)
	return &dto, nil
}

func (s *service) ListPending(ctx context.Context, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByStatus(ctx, enums.BursaryStatusPending, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending applications")
	}
	rows, next := pagination.Page(rows, params.Limit, func(app models.BursaryApplication) pagination.Cursor {
		return pagination.Cursor{CreatedAt: app.CreatedAt, ID: app.ID}
	})
	return &ListResult{Items: fromModels(rows), Cursor: next}, nil
}

func (s *service) warn(ctx context.Context, id uuid.UUID, event string, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"application_id": id.String(),
		"error":          err.Error(),
	})
	s.logg.Warn(logCtx, event)
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
