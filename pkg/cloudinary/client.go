// Package cloudinary hosts issue photos on Cloudinary and derives thumbnail URLs.
package cloudinary

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const (
	imageResourceType       = "image"
	uploadTransformation    = "c_limit,h_1200,w_1200/q_auto:good/f_auto"
	thumbnailTransformation = "c_fill,g_auto,h_200,w_200/f_auto/q_auto"
	rawBase64Prefix         = "data:image/jpeg;base64,"
)

// UploadResult is the hosted image plus its thumbnail.
type UploadResult struct {
	URL          string
	ThumbnailURL string
	PublicID     string
}

// Client uploads images into a fixed folder.
type Client struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewClient builds a Cloudinary client from configuration.
func NewClient(cfg config.CloudinaryConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("cloudinary credentials are required")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("initialize cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Client{cld: cld, folder: cfg.Folder}, nil
}

// Upload sends an image to Cloudinary. data may be a data URI, an http(s) URL
// Cloudinary can fetch, or raw base64 which is assumed to be JPEG.
func (c *Client) Upload(ctx context.Context, data string) (UploadResult, error) {
	if c == nil || c.cld == nil {
		return UploadResult{}, pkgerrors.New(pkgerrors.CodeDependency, "cloudinary client not configured")
	}
	source := NormalizeSource(data)
	if source == "" {
		return UploadResult{}, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}

	resp, err := c.cld.Upload.Upload(ctx, source, uploader.UploadParams{
		Folder:         c.folder,
		ResourceType:   imageResourceType,
		Transformation: uploadTransformation,
	})
	if err != nil {
		return UploadResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cloudinary upload")
	}
	if resp == nil {
		return UploadResult{}, pkgerrors.New(pkgerrors.CodeDependency, "cloudinary upload returned no result")
	}
	if resp.Error.Message != "" {
		return UploadResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("%s", resp.Error.Message), "cloudinary upload rejected")
	}

	thumb, err := c.ThumbnailURL(resp.PublicID)
	if err != nil {
		return UploadResult{}, err
	}
	return UploadResult{
		URL:          resp.SecureURL,
		ThumbnailURL: thumb,
		PublicID:     resp.PublicID,
	}, nil
}

// ThumbnailURL builds the 200x200 delivery URL for an uploaded asset.
func (c *Client) ThumbnailURL(publicID string) (string, error) {
	if strings.TrimSpace(publicID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "cloudinary public id missing")
	}
	img, err := c.cld.Image(publicID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cloudinary asset")
	}
	img.Transformation = thumbnailTransformation
	url, err := img.String()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build thumbnail url")
	}
	return url, nil
}

// NormalizeSource passes through data URIs and URLs and prefixes raw base64.
func NormalizeSource(data string) string {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "data:") || strings.HasPrefix(trimmed, "http") {
		return trimmed
	}
	return rawBase64Prefix + trimmed
}
