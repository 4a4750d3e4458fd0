package media

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/voo-ward/voo-citizen-backend/pkg/cloudinary"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/metrics"
	"github.com/voo-ward/voo-citizen-backend/pkg/types"
)

// MaxImages bounds how many photos a single issue keeps.
const MaxImages = 5

const adapterName = "media"

type uploader interface {
	Upload(ctx context.Context, data string) (cloudinary.UploadResult, error)
}

// Service hosts issue photos.
type Service interface {
	// Upload surfaces failures and backs the direct upload endpoint.
	Upload(ctx context.Context, data string) (types.IssueImage, error)
	// UploadImage never fails; ok is false when the image was dropped.
	UploadImage(ctx context.Context, data string) (types.IssueImage, bool)
	// UploadImages uploads up to MaxImages concurrently, keeping input order
	// and omitting failures.
	UploadImages(ctx context.Context, data []string) []types.IssueImage
}

// ServiceParams names the media dependencies. A nil Uploader disables hosting.
type ServiceParams struct {
	Uploader uploader
	Logger   *logger.Logger
	Metrics  *metrics.AdapterMetrics
}

type service struct {
	uploader uploader
	logg     *logger.Logger
	metrics  *metrics.AdapterMetrics
}

// NewService constructs the media service.
func NewService(params ServiceParams) Service {
	return &service{
		uploader: params.Uploader,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}
}

func (s *service) Upload(ctx context.Context, data string) (types.IssueImage, error) {
	if err := validateSource(data); err != nil {
		return types.IssueImage{}, err
	}
	if s.uploader == nil {
		return types.IssueImage{}, pkgerrors.New(pkgerrors.CodeDependency, "image hosting is not configured")
	}

	started := time.Now()
	result, err := s.uploader.Upload(ctx, data)
	s.metrics.Observe(adapterName, started, err)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return types.IssueImage{}, err
		}
		return types.IssueImage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	return types.IssueImage{URL: result.URL, ThumbnailURL: result.ThumbnailURL}, nil
}

func (s *service) UploadImage(ctx context.Context, data string) (types.IssueImage, bool) {
	img, err := s.Upload(ctx, data)
	if err != nil {
		s.warn(ctx, 1, err)
		return types.IssueImage{}, false
	}
	return img, true
}

func (s *service) UploadImages(ctx context.Context, data []string) []types.IssueImage {
	if len(data) == 0 {
		return nil
	}
	if len(data) > MaxImages {
		data = data[:MaxImages]
	}

	slots := make([]*types.IssueImage, len(data))
	errs := make([]error, len(data))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxImages)
	for i, item := range data {
		g.Go(func() error {
			img, err := s.Upload(gctx, item)
			if err != nil {
				errs[i] = fmt.Errorf("image %d: %w", i, err)
				return nil
			}
			slots[i] = &img
			return nil
		})
	}
	_ = g.Wait()

	images := make([]types.IssueImage, 0, len(data))
	for _, slot := range slots {
		if slot != nil {
			images = append(images, *slot)
		}
	}

	if combined := multierr.Combine(errs...); combined != nil {
		s.warn(ctx, len(multierr.Errors(combined)), combined)
	}
	return images
}

func (s *service) warn(ctx context.Context, dropped int, err error) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"dropped": dropped,
		"error":   err.Error(),
	})
	s.logg.Warn(logCtx, "media.upload.failed")
}
