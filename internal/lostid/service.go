package lostid

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
	"github.com/voo-ward/voo-citizen-backend/pkg/phone"
)

const (
	activeIndex        = "lost_id_reports_one_active_idx"
	duplicateActiveMsg = "A report for this ID number is already active"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the lost ID workflow.
type Service interface {
	Report(ctx context.Context, reporterID uuid.UUID, req ReportRequest) (*ReportDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*ReportDTO, error)
	ListMine(ctx context.Context, reporterID uuid.UUID) ([]ReportDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// ServiceParams names the lost ID dependencies.
type ServiceParams struct {
	Repo        Repository
	Users       users.Repository
	TxRunner    txRunner
	Sequence    sequence.Allocator
	Notifier    notifications.Notifier
	CountryCode string
	Logger      *logger.Logger
	Clock       func() time.Time
}

type service struct {
	repo        Repository
	users       users.Repository
	tx          txRunner
	sequence    sequence.Allocator
	notifier    notifications.Notifier
	countryCode string
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the lost ID workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("lost id repository required")
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
	code := params.CountryCode
	if code == "" {
		code = phone.DefaultCountryCode
	}
	return &service{
		repo:        params.Repo,
		users:       params.Users,
		tx:          params.TxRunner,
		sequence:    params.Sequence,
		notifier:    params.Notifier,
		countryCode: code,
		logg:        params.Logger,
		now:         func() time.Time { return clock().UTC() },
	}, nil
}

func (s *service) Report(ctx context.Context, reporterID uuid.UUID, req ReportRequest) (*ReportDTO, error) {
	idNumber := strings.TrimSpace(req.IDNumber)
	fullName := strings.TrimSpace(req.FullName)
	if idNumber == "" || fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idNumber and fullName are required")
	}

	now := s.now()
	report := &models.LostIDReport{
		ID:               uuid.New(),
		ReporterID:       reporterID,
		IDNumber:         idNumber,
		FullName:         fullName,
		DateLost:         req.DateLost,
		LastSeenLocation: strings.TrimSpace(req.LastSeenLocation),
		Description:      strings.TrimSpace(req.Description),
		ContactPhone:     phone.NormalizeWithCode(req.ContactPhone, s.countryCode),
		Status:           enums.LostIDStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		active, err := repo.HasActive(ctx, idNumber)
		if err != nil {
			return err
		}
		if active {
			return pkgerrors.New(pkgerrors.CodeConflict, duplicateActiveMsg)
		}
		number, err := s.sequence.Next(ctx, tx, enums.SequencePrefixLostID, now)
		if err != nil {
			return err
		}
		report.ReportNumber = number
		_, err = repo.Create(ctx, report)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if db.IsUniqueViolation(err, activeIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateActiveMsg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create lost id report")
	}

	dto := FromModel(report)
	return &dto, nil
}

// UpdateStatus applies any known status. Only found reaches the reporter.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*ReportDTO, error) {
	status, err := enums.ParseLostIDStatus(strings.TrimSpace(input.Request.Status))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	var report *models.LostIDReport
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindByIDForUpdate(ctx, input.ReportID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "report not found")
			}
			return err
		}

		now := s.now()
		actor := input.ActorID
		current.Status = status
		current.UpdatedBy = &actor
		current.UpdatedAt = now
		if location := trimmedOrNil(input.Request.CollectionLocation); location != nil {
			current.CollectionLocation = location
		}
		if notes := trimmedOrNil(input.Request.Notes); notes != nil {
			current.AdminNotes = notes
		}
		if status == enums.LostIDStatusFound {
			current.FoundAt = &now
		}
		if err := repo.Save(ctx, current); err != nil {
			return err
		}
		report = current
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		if db.IsUniqueViolation(err, activeIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateActiveMsg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update lost id report")
	}

	if status == enums.LostIDStatusFound {
		s.notifyReporter(ctx, report)
	}

	dto := FromModel(report)
	return &dto, nil
}

func (s *service) notifyReporter(ctx context.Context, report *models.LostIDReport) {
	reporter, err := s.users.FindByID(ctx, report.ReporterID)
	if err != nil {
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"report_id": report.ID.String(),
				"error":     err.Error(),
			})
			s.logg.Warn(logCtx, "lostid.notify.reporter_lookup_failed")
		}
		return
	}
	s.notifier.LostIDFound(ctx, reporter, report)
}

func (s *service) ListMine(ctx context.Context, reporterID uuid.UUID) ([]ReportDTO, error) {
	rows, err := s.repo.ListByReporter(ctx, reporterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list lost id reports")
	}
	return fromModels(rows), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var status *enums.LostIDStatus
	if raw := strings.TrimSpace(params.Status); raw != "" {
		parsed, err := enums.ParseLostIDStatus(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		status = &parsed
	}
	rows, err := s.repo.List(ctx, status, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list lost id reports")
	}
	rows, next := pagination.Page(rows, params.Limit, func(r models.LostIDReport) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &ListResult{Items: fromModels(rows), Cursor: next}, nil
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
