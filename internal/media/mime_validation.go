package media

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

const maxUploadBytes = 10 * 1024 * 1024

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/heic": {},
}

// validateSource checks inline payloads before they leave the process. URLs are
// fetched by the image host and are not inspected here.
func validateSource(data string) error {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return nil
	}

	payload := trimmed
	if strings.HasPrefix(trimmed, "data:") {
		header, body, ok := strings.Cut(strings.TrimPrefix(trimmed, "data:"), ",")
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "malformed data uri")
		}
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed data uri")
		}
		if _, ok := allowedImageTypes[strings.ToLower(mediaType)]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported image type %q", mediaType))
		}
		payload = body
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > maxUploadBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d MB", maxUploadBytes/(1024*1024)))
	}
	return nil
}
